package webstract

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// richDocument exercises every block and inline variant so round-trip
// failures in any branch of the schema show up.
func richDocument() *Document {
	return &Document{
		Title: []Inline{Text("Why "), {Kind: InlineEmphasis, Children: []Inline{Text("sharing")}}, Text(" helps")},
		Contributors: []Contributor{
			{
				GivenNames:  "Jane",
				Surname:     "Smith",
				ORCID:       "https://orcid.org/0000-0002-1825-0097",
				Email:       "jane@example.org",
				Affiliation: "University of Testing",
			},
		},
		Abstract: []Block{para("We test everything.")},
		Body: []Section{{
			ID:    "results",
			Title: []Inline{Text("Results")},
			Blocks: []Block{
				{Kind: BlockParagraph, Content: []Inline{
					Text("As shown"),
					{Kind: InlineCite, Keys: []string{"ref-a", "ref-b"}, Labels: []int{1, 2}},
					Text(" and in "),
					{Kind: InlineXref, Target: "fig1", Text: "figure 1"},
					{Kind: InlineBreak},
					{Kind: InlineLink, Href: "https://example.org", Children: []Inline{Text("online")}},
					Text(", "),
					{Kind: InlineStrong, Children: []Inline{Text("bold")}},
					{Kind: InlineCode, Children: []Inline{Text("mono")}},
				}},
				{Kind: BlockList, Ordered: true, Items: []ListItem{
					{Blocks: []Block{para("first")}},
					{Blocks: []Block{para("second"), {Kind: BlockPreformat, Content: []Inline{Text("raw\ntext")}}}},
				}},
				{Kind: BlockDefList, Defs: []DefItem{
					{Term: []Inline{Text("DSI")}, Defs: []Block{para("document succession identifier")}},
				}},
				{Kind: BlockQuote, Blocks: []Block{para("quoted")}},
				{Kind: BlockCode, Content: []Inline{Text("x := 1")}},
				{Kind: BlockTable, Rows: []TableRow{
					{Cells: []TableCell{{Header: true, Content: []Inline{Text("h")}}}},
					{Cells: []TableCell{{Content: []Inline{Text("v")}}}},
				}},
				{Kind: BlockFigure, Figure: &Figure{ID: "fig1", Caption: []Inline{Text("A figure")}, Graphic: "fig1.png"}},
			},
			Sections: []Section{{ID: "sub", Title: []Inline{Text("Sub")}, Blocks: []Block{para("nested")}}},
		}},
		Edition: &Edition{Succession: "dsi:abc123", Number: 2, Archived: "2024-06-01"},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			d := richDocument()
			data, err := Encode(d, format)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			got, err := Decode(data, format)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, d) {
				t.Errorf("round trip mismatch\ngot:  %+v\nwant: %+v", got, d)
			}
		})
	}
}

func TestEncode_JSONDoesNotEscapeHTML(t *testing.T) {
	d := &Document{
		Title:    []Inline{Text("a & b < c")},
		Abstract: []Block{para("x")},
	}
	data, err := Encode(d, FormatJSON)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(string(data), "a & b < c") {
		t.Errorf("Encode() escaped HTML: %s", data)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{".json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{".yml", FormatYAML, false},
		{"YAML", FormatYAML, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestWriteReadFile(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"doc.json", "doc.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(tmpDir, name)
			d := richDocument()
			if err := WriteFile(d, path); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if !reflect.DeepEqual(got, d) {
				t.Errorf("file round trip mismatch for %s", name)
			}
		})
	}
}

func TestWriteFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.xml")
	if err := WriteFile(richDocument(), path); err == nil {
		t.Error("WriteFile(doc.xml) error = nil, want unsupported format error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("WriteFile should not create a file for unsupported formats")
	}
}
