package biblio

import "testing"

func TestNumericFormatter_Format(t *testing.T) {
	tests := []struct {
		name string
		item BibItem
		want string
	}{
		{
			name: "full article",
			item: BibItem{
				Authors:        []string{"Jane Smith", "John Doe"},
				Title:          "Intrinsic identifiers",
				ContainerTitle: "Journal of Testing",
				Year:           2023,
				Volume:         "12",
				Issue:          "3",
				Pages:          "100-110",
				DOI:            "10.1234/abc",
			},
			want: "Jane Smith and John Doe. Intrinsic identifiers. Journal of Testing. 2023;12(3):100-110. https://doi.org/10.1234/abc",
		},
		{
			name: "three authors",
			item: BibItem{
				Authors: []string{"A", "B", "C"},
				Title:   "T",
			},
			want: "A, B and C. T.",
		},
		{
			name: "url only",
			item: BibItem{
				Title:      "What is a baseprint?",
				URL:        "https://baseprints.singlesource.pub",
				AccessDate: "2024-05-01",
			},
			want: "What is a baseprint?. https://baseprints.singlesource.pub [accessed 2024-05-01]",
		},
		{
			name: "mixed citation falls back to raw",
			item: BibItem{
				Raw:  "Wikipedia. Git. 2024.",
				Year: 2024,
			},
			want: "Wikipedia. Git. 2024.",
		},
		{
			name: "year without volume",
			item: BibItem{
				Title: "T",
				Year:  2020,
				Pages: "5",
			},
			want: "T. 2020.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (NumericFormatter{}).Format(tt.item); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	refs := []BibItem{
		{Key: "ref-a", Raw: "first entry"},
		{Key: "ref-b", Raw: "second entry"},
	}
	rendered := Render(refs, NumericFormatter{})
	if len(rendered) != 2 {
		t.Fatalf("Render() len = %d, want 2", len(rendered))
	}
	if rendered[0].Number != 1 || rendered[0].Text != "first entry" {
		t.Errorf("rendered[0] = %+v", rendered[0])
	}
	if rendered[1].Number != 2 || rendered[1].Text != "second entry" {
		t.Errorf("rendered[1] = %+v", rendered[1])
	}
}

func TestJoinAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{"none", nil, ""},
		{"one", []string{"A"}, "A"},
		{"two", []string{"A", "B"}, "A and B"},
		{"four", []string{"A", "B", "C", "D"}, "A, B, C and D"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinAuthors(tt.authors); got != tt.want {
				t.Errorf("joinAuthors(%v) = %q, want %q", tt.authors, got, tt.want)
			}
		})
	}
}
