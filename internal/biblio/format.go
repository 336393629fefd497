package biblio

import (
	"fmt"
	"strings"
)

// Formatter renders one bibliography item as display text. The citation
// style engine is pluggable; the pipeline treats it as a black box that
// formats items already ordered by citation number.
type Formatter interface {
	Format(item BibItem) string
}

// RenderedReference pairs a citation number with formatted citation text,
// the shape the presentation stage consumes.
type RenderedReference struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Render formats an already-ordered reference list into numbered entries.
func Render(refs []BibItem, f Formatter) []RenderedReference {
	out := make([]RenderedReference, 0, len(refs))
	for i, item := range refs {
		out = append(out, RenderedReference{Number: i + 1, Text: f.Format(item)})
	}
	return out
}

// NumericFormatter is the default numeric-style formatter:
// "Authors. Title. Container. Year;Volume(Issue):Pages. doi".
type NumericFormatter struct{}

// Format renders one item. Items captured from a mixed-citation fall back
// to their raw text.
func (NumericFormatter) Format(item BibItem) string {
	if item.Raw != "" && item.Title == "" {
		return item.Raw
	}

	var b strings.Builder
	if len(item.Authors) > 0 {
		b.WriteString(joinAuthors(item.Authors))
		b.WriteString(". ")
	}
	if item.Title != "" {
		b.WriteString(item.Title)
		b.WriteString(". ")
	}
	if item.ContainerTitle != "" {
		b.WriteString(item.ContainerTitle)
		b.WriteString(". ")
	}
	if item.Year > 0 {
		fmt.Fprintf(&b, "%d", item.Year)
		if item.Volume != "" {
			b.WriteString(";")
			b.WriteString(item.Volume)
			if item.Issue != "" {
				fmt.Fprintf(&b, "(%s)", item.Issue)
			}
			if item.Pages != "" {
				b.WriteString(":")
				b.WriteString(item.Pages)
			}
		}
		b.WriteString(". ")
	}
	if item.DOI != "" {
		b.WriteString("https://doi.org/")
		b.WriteString(item.DOI)
	} else if item.URL != "" {
		b.WriteString(item.URL)
	}
	if item.AccessDate != "" {
		fmt.Fprintf(&b, " [accessed %s]", item.AccessDate)
	}
	return strings.TrimSpace(b.String())
}

// joinAuthors formats authors as "A, B and C".
func joinAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return authors[0]
	default:
		return strings.Join(authors[:len(authors)-1], ", ") + " and " + authors[len(authors)-1]
	}
}
