package biblio

import (
	"fmt"
	"strings"
)

// ToBibTeX converts a bibliography item to BibTeX format.
func ToBibTeX(item BibItem) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType(item), item.Key))

	if len(item.Authors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", strings.Join(item.Authors, " and ")))
	}
	if item.Title != "" {
		b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(item.Title)))
	}
	if item.ContainerTitle != "" {
		b.WriteString(fmt.Sprintf("  journal = {%s},\n", escapeLatex(item.ContainerTitle)))
	}
	if item.Year > 0 {
		b.WriteString(fmt.Sprintf("  year = {%d},\n", item.Year))
	}
	if item.Volume != "" {
		b.WriteString(fmt.Sprintf("  volume = {%s},\n", item.Volume))
	}
	if item.Issue != "" {
		b.WriteString(fmt.Sprintf("  number = {%s},\n", item.Issue))
	}
	if item.Pages != "" {
		b.WriteString(fmt.Sprintf("  pages = {%s},\n", strings.ReplaceAll(item.Pages, "-", "--")))
	}
	if item.DOI != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", item.DOI))
	}
	if item.URL != "" {
		b.WriteString(fmt.Sprintf("  url = {%s},\n", item.URL))
	}
	if item.Raw != "" && item.Title == "" {
		b.WriteString(fmt.Sprintf("  note = {%s},\n", escapeLatex(item.Raw)))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple items to BibTeX format.
func ToBibTeXList(items []BibItem) string {
	var entries []string
	for _, item := range items {
		entries = append(entries, ToBibTeX(item))
	}
	return strings.Join(entries, "\n")
}

// entryType returns the BibTeX entry type for an item.
func entryType(item BibItem) string {
	if item.ContainerTitle == "" && item.URL != "" {
		return "misc"
	}
	venue := strings.ToLower(item.ContainerTitle)
	if strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}
	return "article"
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
