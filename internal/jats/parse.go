// Package jats converts between JATS XML and the webstract document
// model. Parsing runs the whole forward pipeline: element retargeting,
// metadata synthesis, reference table building, body parsing with
// citation grouping, citation resolution, and final assembly.
package jats

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/perm-pub/webstract/internal/biblio"
	"github.com/perm-pub/webstract/internal/cite"
	"github.com/perm-pub/webstract/internal/frontmatter"
	"github.com/perm-pub/webstract/internal/retarget"
	"github.com/perm-pub/webstract/internal/webstract"
)

// ErrNotArticle indicates XML whose root element is not a JATS article.
var ErrNotArticle = errors.New("root element is not a JATS <article>")

// Parse converts raw JATS XML into a Document. Assembly either fully
// succeeds or fails; no partial document is returned.
func Parse(data []byte) (*webstract.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("reading XML: %w", err)
	}
	return ParseDocument(doc)
}

// ParseFile converts a JATS XML file into a Document.
func ParseFile(path string) (*webstract.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseDocument(doc)
}

// ParseDocument converts an already-parsed XML tree. The tree is mutated
// by the retargeting and synthesis stages and should be discarded after.
func ParseDocument(doc *etree.Document) (*webstract.Document, error) {
	article := doc.Root()
	if article == nil || article.Tag != "article" {
		return nil, ErrNotArticle
	}
	if err := retarget.Apply(article); err != nil {
		return nil, err
	}
	frontmatter.Synthesize(article)

	table, err := biblio.BuildTable(doc.FindElement("//ref-list"))
	if err != nil {
		return nil, err
	}

	p := &parser{table: table}
	d := &webstract.Document{}
	if meta := doc.FindElement("//front/article-meta"); meta != nil {
		p.parseFront(meta, d)
	}
	if body := article.SelectElement("body"); body != nil {
		d.Body = p.parseSectionContent(body)
	}

	if err := cite.Resolve(d, table); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

type parser struct {
	table *biblio.Table
}

func (p *parser) parseFront(meta *etree.Element, d *webstract.Document) {
	if title := meta.FindElement("title-group/article-title"); title != nil {
		d.Title = p.parseInlines(title)
	}
	for _, contrib := range meta.FindElements("contrib-group/contrib") {
		d.Contributors = append(d.Contributors, p.parseContrib(meta, contrib))
	}
	if abstract := meta.SelectElement("abstract"); abstract != nil {
		d.Abstract = p.parseBlocks(abstract)
	}
	d.Edition = parseEdition(meta)
}

func (p *parser) parseContrib(meta, contrib *etree.Element) webstract.Contributor {
	c := webstract.Contributor{}
	if name := contrib.SelectElement("name"); name != nil {
		c.Surname = childText(name, "surname")
		c.GivenNames = childText(name, "given-names")
	}
	c.Email = childText(contrib, "email")
	for _, id := range contrib.SelectElements("contrib-id") {
		if id.SelectAttrValue("contrib-id-type", "") != "orcid" {
			continue
		}
		// invalid ORCIDs are dropped: identifier metadata is cosmetic
		if orcid, err := webstract.ParseORCID(textOf(id)); err == nil {
			c.ORCID = orcid
		}
	}
	if aff := contrib.SelectElement("aff"); aff != nil {
		c.Affiliation = textOf(aff)
	} else {
		for _, xref := range contrib.SelectElements("xref") {
			if xref.SelectAttrValue("ref-type", "") != "aff" {
				continue
			}
			rid := xref.SelectAttrValue("rid", "")
			for _, aff := range meta.SelectElements("aff") {
				if aff.SelectAttrValue("id", "") == rid {
					c.Affiliation = textOf(aff)
				}
			}
		}
	}
	return c
}

func parseEdition(meta *etree.Element) *webstract.Edition {
	e := &webstract.Edition{}
	for _, id := range meta.SelectElements("article-id") {
		if id.SelectAttrValue("pub-id-type", "") == "dsi" {
			e.Succession = textOf(id)
		}
	}
	if v := meta.SelectElement("article-version"); v != nil {
		e.Number, _ = strconv.Atoi(textOf(v))
	}
	for _, date := range meta.FindElements("history/date") {
		if date.SelectAttrValue("date-type", "") == "archived" {
			e.Archived = isoDate(date)
		}
	}
	if e.Succession == "" && e.Number == 0 && e.Archived == "" {
		return nil
	}
	return e
}

// parseSectionContent splits an element's children into leading blocks
// and nested sections. Loose blocks before the first <sec> are gathered
// into an anonymous leading section so the body stays a section sequence.
func (p *parser) parseSectionContent(e *etree.Element) []webstract.Section {
	var sections []webstract.Section
	var loose []webstract.Block
	for _, child := range e.ChildElements() {
		switch child.Tag {
		case "sec":
			sections = append(sections, p.parseSection(child))
		case "title":
			// handled by parseSection
		default:
			loose = append(loose, p.parseBlockElement(child)...)
		}
	}
	if len(loose) > 0 {
		sections = append([]webstract.Section{{Blocks: loose}}, sections...)
	}
	return sections
}

func (p *parser) parseSection(sec *etree.Element) webstract.Section {
	s := webstract.Section{ID: sec.SelectAttrValue("id", "")}
	if title := sec.SelectElement("title"); title != nil {
		s.Title = p.parseInlines(title)
	}
	for _, child := range sec.ChildElements() {
		switch child.Tag {
		case "sec":
			s.Sections = append(s.Sections, p.parseSection(child))
		case "title":
		default:
			s.Blocks = append(s.Blocks, p.parseBlockElement(child)...)
		}
	}
	return s
}

// parseBlocks converts all block-level children of e.
func (p *parser) parseBlocks(e *etree.Element) []webstract.Block {
	var blocks []webstract.Block
	for _, child := range e.ChildElements() {
		blocks = append(blocks, p.parseBlockElement(child)...)
	}
	return blocks
}

// parseBlockElement converts one block-level element. A <p> may carry
// nested block content (the retargeter wraps blocks in synthetic
// paragraphs); such blocks are promoted, with the surrounding inline runs
// becoming paragraphs of their own.
func (p *parser) parseBlockElement(e *etree.Element) []webstract.Block {
	switch e.Tag {
	case "p":
		return p.splitParagraph(e)
	case "list":
		return []webstract.Block{p.parseList(e)}
	case "def-list":
		return []webstract.Block{p.parseDefList(e)}
	case "disp-quote", "blockquote":
		return []webstract.Block{{Kind: webstract.BlockQuote, Blocks: p.parseBlocks(e)}}
	case "preformat", "pre":
		return []webstract.Block{{Kind: webstract.BlockPreformat, Content: p.parseInlines(e)}}
	case "code":
		return []webstract.Block{{Kind: webstract.BlockCode, Content: p.parseInlines(e)}}
	case "table-wrap", "table":
		return []webstract.Block{p.parseTable(e)}
	case "fig":
		return []webstract.Block{p.parseFigure(e)}
	default:
		// no matching rule: unknown block elements are dropped
		return nil
	}
}

var nestedBlockTags = map[string]bool{
	"list":       true,
	"def-list":   true,
	"disp-quote": true,
	"blockquote": true,
	"preformat":  true,
	"pre":        true,
	"code":       true,
	"table-wrap": true,
	"table":      true,
	"fig":        true,
}

func (p *parser) splitParagraph(e *etree.Element) []webstract.Block {
	var blocks []webstract.Block
	var run []etree.Token
	flush := func() {
		if len(run) == 0 {
			return
		}
		content := p.parseInlineTokens(run)
		run = nil
		if blankRun(content) {
			return
		}
		blocks = append(blocks, webstract.Block{Kind: webstract.BlockParagraph, Content: content})
	}
	for _, tok := range e.Child {
		if child, ok := tok.(*etree.Element); ok && nestedBlockTags[child.Tag] {
			flush()
			blocks = append(blocks, p.parseBlockElement(child)...)
			continue
		}
		run = append(run, tok)
	}
	flush()
	return blocks
}

func (p *parser) parseList(e *etree.Element) webstract.Block {
	block := webstract.Block{
		Kind:    webstract.BlockList,
		Ordered: e.SelectAttrValue("list-type", "") == "order",
	}
	for _, item := range e.SelectElements("list-item") {
		block.Items = append(block.Items, webstract.ListItem{Blocks: p.parseBlocks(item)})
	}
	return block
}

func (p *parser) parseDefList(e *etree.Element) webstract.Block {
	block := webstract.Block{Kind: webstract.BlockDefList}
	for _, item := range e.SelectElements("def-item") {
		def := webstract.DefItem{}
		if term := item.SelectElement("term"); term != nil {
			def.Term = p.parseInlines(term)
		}
		for _, d := range item.SelectElements("def") {
			def.Defs = append(def.Defs, p.parseBlocks(d)...)
		}
		block.Defs = append(block.Defs, def)
	}
	return block
}

func (p *parser) parseTable(e *etree.Element) webstract.Block {
	table := e
	if e.Tag == "table-wrap" {
		if t := e.SelectElement("table"); t != nil {
			table = t
		}
	}
	block := webstract.Block{Kind: webstract.BlockTable}
	var scanRows func(el *etree.Element)
	scanRows = func(el *etree.Element) {
		for _, child := range el.ChildElements() {
			switch child.Tag {
			case "thead", "tbody", "tfoot":
				scanRows(child)
			case "tr":
				row := webstract.TableRow{}
				for _, cell := range child.ChildElements() {
					if cell.Tag != "td" && cell.Tag != "th" {
						continue
					}
					row.Cells = append(row.Cells, webstract.TableCell{
						Header:  cell.Tag == "th",
						Content: p.parseInlines(cell),
					})
				}
				block.Rows = append(block.Rows, row)
			}
		}
	}
	scanRows(table)
	return block
}

func (p *parser) parseFigure(e *etree.Element) webstract.Block {
	fig := &webstract.Figure{ID: e.SelectAttrValue("id", "")}
	if caption := e.SelectElement("caption"); caption != nil {
		if cp := caption.SelectElement("p"); cp != nil {
			fig.Caption = p.parseInlines(cp)
		} else if ct := caption.SelectElement("title"); ct != nil {
			fig.Caption = p.parseInlines(ct)
		}
	}
	if graphic := e.SelectElement("graphic"); graphic != nil {
		fig.Graphic = href(graphic)
	}
	return webstract.Block{Kind: webstract.BlockFigure, Figure: fig}
}

// parseInlines converts the mixed content of e.
func (p *parser) parseInlines(e *etree.Element) []webstract.Inline {
	return p.parseInlineTokens(e.Child)
}

func (p *parser) parseInlineTokens(tokens []etree.Token) []webstract.Inline {
	var run []webstract.Inline
	for i := 0; i < len(tokens); {
		switch tok := tokens[i].(type) {
		case *etree.CharData:
			if tok.Data != "" {
				run = append(run, webstract.Text(tok.Data))
			}
			i++
		case *etree.Element:
			if p.isCitation(tok) {
				node, consumed := p.parseCitationGroup(tokens, i)
				run = append(run, node)
				i = consumed
				continue
			}
			if node, ok := p.parseInlineElement(tok); ok {
				run = append(run, node)
			} else {
				// unknown inline wrapper: keep its content
				run = append(run, p.parseInlines(tok)...)
			}
			i++
		default:
			i++
		}
	}
	return run
}

func (p *parser) parseInlineElement(e *etree.Element) (webstract.Inline, bool) {
	switch e.Tag {
	case "italic":
		return webstract.Inline{Kind: webstract.InlineEmphasis, Children: p.parseInlines(e)}, true
	case "bold":
		return webstract.Inline{Kind: webstract.InlineStrong, Children: p.parseInlines(e)}, true
	case "monospace":
		return webstract.Inline{Kind: webstract.InlineCode, Children: p.parseInlines(e)}, true
	case "break":
		return webstract.Inline{Kind: webstract.InlineBreak}, true
	case "ext-link":
		return webstract.Inline{
			Kind:     webstract.InlineLink,
			Href:     href(e),
			Children: p.parseInlines(e),
		}, true
	case "xref":
		return webstract.Inline{
			Kind:   webstract.InlineXref,
			Target: e.SelectAttrValue("rid", ""),
			Text:   flatText(e),
		}, true
	}
	return webstract.Inline{}, false
}

// isCitation reports whether e is a bibliographic citation: an <xref>
// marked ref-type="bibr", an <xref> whose rid matches a reference key, or
// a <sup> wrapping only such xrefs.
func (p *parser) isCitation(e *etree.Element) bool {
	switch e.Tag {
	case "xref":
		if e.SelectAttrValue("ref-type", "") == "bibr" {
			return true
		}
		return p.table.Has(e.SelectAttrValue("rid", ""))
	case "sup":
		seen := false
		for _, tok := range e.Child {
			switch t := tok.(type) {
			case *etree.Element:
				if t.Tag != "xref" || !p.isCitation(t) {
					return false
				}
				seen = true
			case *etree.CharData:
				if !isSeparator(t.Data) {
					return false
				}
			}
		}
		return seen
	}
	return false
}

// parseCitationGroup merges a run of adjacent citation elements starting
// at tokens[start] into a single citation node. Adjacent means separated
// only by whitespace or a single comma/semicolon; the numeric style
// renders such groups collapsed. Returns the node and the index of the
// first unconsumed token.
func (p *parser) parseCitationGroup(tokens []etree.Token, start int) (webstract.Inline, int) {
	node := webstract.Inline{Kind: webstract.InlineCite}
	// Labels temporarily carry the source-text number of each xref, zero
	// when the text is not numeric; the resolver rewrites them.
	add := func(e *etree.Element) {
		node.Keys = append(node.Keys, e.SelectAttrValue("rid", ""))
		hint, _ := strconv.Atoi(textOf(e))
		node.Labels = append(node.Labels, hint)
	}
	collect := func(e *etree.Element) {
		if e.Tag == "sup" {
			for _, child := range e.ChildElements() {
				add(child)
			}
			return
		}
		add(e)
	}
	collect(tokens[start].(*etree.Element))

	end := start + 1
	for i := end; i < len(tokens); i++ {
		switch tok := tokens[i].(type) {
		case *etree.CharData:
			if !isSeparator(tok.Data) {
				return node, end
			}
		case *etree.Element:
			if !p.isCitation(tok) {
				return node, end
			}
			collect(tok)
			end = i + 1
		}
	}
	return node, end
}

// isSeparator reports whether text only separates grouped citations:
// whitespace with at most one comma or semicolon.
func isSeparator(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "," || s == ";"
}

func blankRun(run []webstract.Inline) bool {
	for _, in := range run {
		if in.Kind != webstract.InlineText || strings.TrimSpace(in.Text) != "" {
			return false
		}
	}
	return true
}

func childText(e *etree.Element, tag string) string {
	if child := e.SelectElement(tag); child != nil {
		return textOf(child)
	}
	return ""
}

// flatText concatenates all character data under e, markup stripped and
// whitespace untouched. Cross-reference display text goes through this
// so significant surrounding whitespace survives a round trip.
func flatText(e *etree.Element) string {
	var b strings.Builder
	var walk func(*etree.Element)
	walk = func(el *etree.Element) {
		for _, tok := range el.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(e)
	return b.String()
}

// textOf flattens all character data under e, trimmed.
func textOf(e *etree.Element) string {
	return strings.TrimSpace(flatText(e))
}

// href returns the xlink:href of an element, tolerating the unprefixed
// form HTML-flavored input uses.
func href(e *etree.Element) string {
	if h := e.SelectAttrValue("xlink:href", ""); h != "" {
		return h
	}
	return e.SelectAttrValue("href", "")
}

func isoDate(date *etree.Element) string {
	if iso := date.SelectAttrValue("iso-8601-date", ""); iso != "" {
		return iso
	}
	parts := []string{}
	for _, tag := range []string{"year", "month", "day"} {
		v := childText(date, tag)
		if v == "" {
			break
		}
		if len(v) == 1 {
			v = "0" + v
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, "-")
}
