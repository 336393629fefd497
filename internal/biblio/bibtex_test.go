package biblio

import (
	"strings"
	"testing"
)

func TestToBibTeX_Article(t *testing.T) {
	item := BibItem{
		Key:            "ref-smith",
		Authors:        []string{"Jane Smith", "John Doe"},
		Title:          "Costs & benefits of DSIs",
		ContainerTitle: "Journal of Testing",
		Year:           2023,
		Volume:         "12",
		Issue:          "3",
		Pages:          "100-110",
		DOI:            "10.1234/abc",
	}
	got := ToBibTeX(item)

	wants := []string{
		"@article{ref-smith,",
		"author = {Jane Smith and John Doe}",
		`title = {Costs \& benefits of DSIs}`,
		"journal = {Journal of Testing}",
		"year = {2023}",
		"volume = {12}",
		"number = {3}",
		"pages = {100--110}",
		"doi = {10.1234/abc}",
	}
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("ToBibTeX() missing %q in:\n%s", want, got)
		}
	}
}

func TestToBibTeX_EntryType(t *testing.T) {
	tests := []struct {
		name string
		item BibItem
		want string
	}{
		{"journal article", BibItem{Key: "a", ContainerTitle: "Journal of X"}, "@article{"},
		{"proceedings", BibItem{Key: "a", ContainerTitle: "Proceedings of Y"}, "@inproceedings{"},
		{"web page", BibItem{Key: "a", URL: "https://example.org"}, "@misc{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToBibTeX(tt.item); !strings.HasPrefix(got, tt.want) {
				t.Errorf("ToBibTeX() = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestToBibTeX_RawNote(t *testing.T) {
	item := BibItem{Key: "ref-wiki", Raw: "Wikipedia. Git. 2024."}
	got := ToBibTeX(item)
	if !strings.Contains(got, "note = {Wikipedia. Git. 2024.}") {
		t.Errorf("ToBibTeX() missing raw note:\n%s", got)
	}
}

func TestToBibTeXList(t *testing.T) {
	items := []BibItem{
		{Key: "a", Raw: "first"},
		{Key: "b", Raw: "second"},
	}
	got := ToBibTeXList(items)
	if !strings.Contains(got, "@article{a,") || !strings.Contains(got, "@article{b,") {
		t.Errorf("ToBibTeXList() = %q", got)
	}
	if strings.Count(got, "}\n") < 2 {
		t.Errorf("ToBibTeXList() entries not separated:\n%s", got)
	}
}
