// Package webstract defines the canonical intermediate document model
// produced by the conversion pipeline, independent of any rendering target.
package webstract

import (
	"github.com/perm-pub/webstract/internal/biblio"
)

// Document is the canonical model of one converted baseprint. It is
// assembled once per conversion run and treated as immutable afterwards.
type Document struct {
	Title        []Inline        `json:"title" yaml:"title"`
	Contributors []Contributor   `json:"contributors,omitempty" yaml:"contributors,omitempty"`
	Abstract     []Block         `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Body         []Section       `json:"body,omitempty" yaml:"body,omitempty"`
	References   []biblio.BibItem `json:"references,omitempty" yaml:"references,omitempty"`
	Edition      *Edition        `json:"edition,omitempty" yaml:"edition,omitempty"`
}

// Contributor is one document author or contributor. Owned exclusively by
// its Document.
type Contributor struct {
	GivenNames  string `json:"given_names,omitempty" yaml:"given_names,omitempty"`
	Surname     string `json:"surname,omitempty" yaml:"surname,omitempty"`
	ORCID       string `json:"orcid,omitempty" yaml:"orcid,omitempty"` // canonical https://orcid.org/ URL
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`
}

// Edition carries optional succession metadata for archived editions.
type Edition struct {
	Succession string `json:"succession,omitempty" yaml:"succession,omitempty"` // document succession identifier (DSI)
	Number     int    `json:"number,omitempty" yaml:"number,omitempty"`
	Archived   string `json:"archived,omitempty" yaml:"archived,omitempty"` // ISO-8601 date
}

// Section is one body section: a cross-reference target with a title, block
// content, and arbitrarily nested subsections.
type Section struct {
	ID       string    `json:"id,omitempty" yaml:"id,omitempty"`
	Title    []Inline  `json:"title,omitempty" yaml:"title,omitempty"`
	Blocks   []Block   `json:"blocks,omitempty" yaml:"blocks,omitempty"`
	Sections []Section `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// BlockKind discriminates the closed set of block node variants.
type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockList      BlockKind = "list"
	BlockDefList   BlockKind = "def-list"
	BlockTable     BlockKind = "table"
	BlockQuote     BlockKind = "quote"
	BlockPreformat BlockKind = "preformat"
	BlockCode      BlockKind = "code"
	BlockFigure    BlockKind = "figure"
)

// Block is a tagged-variant block node. Only the fields matching Kind are
// populated; the rest stay zero so both interchange encodings omit them.
type Block struct {
	Kind BlockKind `json:"kind" yaml:"kind"`

	Content []Inline   `json:"content,omitempty" yaml:"content,omitempty"` // paragraph, preformat, code
	Ordered bool       `json:"ordered,omitempty" yaml:"ordered,omitempty"` // list
	Items   []ListItem `json:"items,omitempty" yaml:"items,omitempty"`     // list
	Defs    []DefItem  `json:"defs,omitempty" yaml:"defs,omitempty"`       // def-list
	Blocks  []Block    `json:"blocks,omitempty" yaml:"blocks,omitempty"`   // quote
	Rows    []TableRow `json:"rows,omitempty" yaml:"rows,omitempty"`       // table
	Figure  *Figure    `json:"figure,omitempty" yaml:"figure,omitempty"`   // figure
}

// ListItem is one list entry; JATS constrains its content to blocks.
type ListItem struct {
	Blocks []Block `json:"blocks,omitempty" yaml:"blocks,omitempty"`
}

// DefItem pairs a definition term with its definition blocks.
type DefItem struct {
	Term []Inline `json:"term,omitempty" yaml:"term,omitempty"`
	Defs []Block  `json:"defs,omitempty" yaml:"defs,omitempty"`
}

// TableRow is one table row.
type TableRow struct {
	Cells []TableCell `json:"cells,omitempty" yaml:"cells,omitempty"`
}

// TableCell is one table cell.
type TableCell struct {
	Header  bool     `json:"header,omitempty" yaml:"header,omitempty"`
	Content []Inline `json:"content,omitempty" yaml:"content,omitempty"`
}

// Figure is a figure block with an optional graphic reference.
type Figure struct {
	ID      string   `json:"id,omitempty" yaml:"id,omitempty"`
	Caption []Inline `json:"caption,omitempty" yaml:"caption,omitempty"`
	Graphic string   `json:"graphic,omitempty" yaml:"graphic,omitempty"`
}

// InlineKind discriminates the closed set of inline node variants.
type InlineKind string

const (
	InlineText     InlineKind = "text"
	InlineEmphasis InlineKind = "emphasis"
	InlineStrong   InlineKind = "strong"
	InlineCode     InlineKind = "code"
	InlineXref     InlineKind = "xref"
	InlineCite     InlineKind = "cite"
	InlineLink     InlineKind = "link"
	InlineBreak    InlineKind = "break"
)

// Inline is a tagged-variant inline node.
type Inline struct {
	Kind InlineKind `json:"kind" yaml:"kind"`

	Text     string   `json:"text,omitempty" yaml:"text,omitempty"`         // text; display text for xref
	Children []Inline `json:"children,omitempty" yaml:"children,omitempty"` // emphasis, strong, code, link, xref
	Target   string   `json:"target,omitempty" yaml:"target,omitempty"`     // xref target section id
	Href     string   `json:"href,omitempty" yaml:"href,omitempty"`         // link
	Keys     []string `json:"keys,omitempty" yaml:"keys,omitempty"`         // cite target reference keys
	Labels   []int    `json:"labels,omitempty" yaml:"labels,omitempty"`     // cite resolved numeric labels
}

// Text returns a plain text inline node.
func Text(s string) Inline {
	return Inline{Kind: InlineText, Text: s}
}

// PlainText flattens an inline run to its visible text, ignoring citation
// labels and markup.
func PlainText(run []Inline) string {
	var b []byte
	var walk func([]Inline)
	walk = func(inlines []Inline) {
		for _, in := range inlines {
			switch in.Kind {
			case InlineText, InlineXref:
				b = append(b, in.Text...)
				walk(in.Children)
			case InlineBreak:
				b = append(b, '\n')
			case InlineCite:
				// labels are rendering concerns, not text
			default:
				walk(in.Children)
			}
		}
	}
	walk(run)
	return string(b)
}
