package jats

import (
	"reflect"
	"strings"
	"testing"

	"github.com/perm-pub/webstract/internal/biblio"
	"github.com/perm-pub/webstract/internal/webstract"
)

const roundTripXML = `<article xmlns:xlink="http://www.w3.org/1999/xlink"><front><article-meta>` +
	`<article-id pub-id-type="dsi">wk1LzCaCSKkIvLAYObAvaoLNGPc</article-id>` +
	`<article-version>2</article-version>` +
	`<title-group><article-title>Round <bold>trip</bold></article-title></title-group>` +
	`<contrib-group><contrib contrib-type="author">` +
	`<contrib-id contrib-id-type="orcid">https://orcid.org/0000-0002-1825-0097</contrib-id>` +
	`<name><surname>Smith</surname><given-names>Jane</given-names></name>` +
	`<email>jane@example.org</email>` +
	`<aff>University of Testing</aff>` +
	`</contrib></contrib-group>` +
	`<abstract><p>Abstract with a citation<xref ref-type="bibr" rid="ref-a"/>.</p></abstract>` +
	`<history><date date-type="archived" iso-8601-date="2024-06-01"/></history>` +
	`</article-meta></front><body>` +
	`<p>Lead paragraph.</p>` +
	`<sec id="methods"><title>Methods</title>` +
	`<p>Uses <italic>italics</italic>, <bold>bold</bold>, <monospace>mono</monospace>,<break/>` +
	`a link <ext-link ext-link-type="uri" xlink:href="https://example.org">here</ext-link>, ` +
	`a figure reference <xref rid="fig1">figure 1</xref> ` +
	`and citations<xref ref-type="bibr" rid="ref-b"/>, <xref ref-type="bibr" rid="ref-c"/>.</p>` +
	`<list list-type="order"><list-item><p>one</p></list-item><list-item><p>two</p></list-item></list>` +
	`<def-list><def-item><term>DSI</term><def><p>succession identifier</p></def></def-item></def-list>` +
	`<disp-quote><p>quoted</p></disp-quote>` +
	`<preformat>pre text</preformat>` +
	`<code>x := 1</code>` +
	`<table-wrap><table><tr><th>h</th></tr><tr><td>v</td></tr></table></table-wrap>` +
	`<fig id="fig1"><caption><p>A plot</p></caption><graphic xlink:href="plot.png"/></fig>` +
	`<sec id="sub"><title>Sub</title><p>nested</p></sec>` +
	`</sec></body><back><ref-list>` +
	`<ref id="ref-a"><element-citation>` +
	`<person-group person-group-type="author"><string-name>Jane Smith</string-name></person-group>` +
	`<article-title>First</article-title><source>Journal of Testing</source>` +
	`<year>2023</year><volume>12</volume><issue>3</issue>` +
	`<fpage>100</fpage><lpage>110</lpage>` +
	`<pub-id pub-id-type="doi">10.1234/abc</pub-id>` +
	`</element-citation></ref>` +
	`<ref id="ref-b"><element-citation>` +
	`<article-title>Second</article-title><uri>https://example.org/second</uri>` +
	`<date-in-citation content-type="access-date" iso-8601-date="2024-01-15"/>` +
	`</element-citation></ref>` +
	`<ref id="ref-c"><mixed-citation>Wikipedia, Git, 2024. https://en.wikipedia.org/wiki/Git</mixed-citation></ref>` +
	`</ref-list></back></article>`

func TestWriteParse_RoundTrip(t *testing.T) {
	first, err := Parse([]byte(roundTripXML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	data, err := WriteBytes(first)
	if err != nil {
		t.Fatalf("WriteBytes() error = %v", err)
	}
	second, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(written) error = %v\noutput:\n%s", err, data)
	}

	if !reflect.DeepEqual(second, first) {
		t.Errorf("round trip mismatch\nfirst:  %+v\nsecond: %+v\noutput:\n%s", first, second, data)
	}
}

func TestWrite_CitationMarkup(t *testing.T) {
	doc, err := Parse([]byte(roundTripXML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	data, err := WriteBytes(doc)
	if err != nil {
		t.Fatalf("WriteBytes() error = %v", err)
	}
	out := string(data)

	// grouped citation rendered as a sup of numbered bibr xrefs
	if !strings.Contains(out, `<xref rid="ref-b" ref-type="bibr">2</xref>`) {
		t.Errorf("missing numbered xref for ref-b in:\n%s", out)
	}
	if !strings.Contains(out, `<xref rid="ref-c" ref-type="bibr">3</xref>`) {
		t.Errorf("missing numbered xref for ref-c in:\n%s", out)
	}
	if !strings.Contains(out, `<ref id="ref-a">`) {
		t.Errorf("missing ref-list entry in:\n%s", out)
	}
}

func TestWrite_MixedCitationFallback(t *testing.T) {
	doc := &webstract.Document{
		Title:    []webstract.Inline{webstract.Text("T")},
		Abstract: []webstract.Block{{Kind: webstract.BlockParagraph, Content: []webstract.Inline{webstract.Text("A.")}}},
		References: []biblio.BibItem{
			{Key: "ref-raw", Raw: "An unstructured entry."},
		},
	}
	data, err := WriteBytes(doc)
	if err != nil {
		t.Fatalf("WriteBytes() error = %v", err)
	}
	if !strings.Contains(string(data), `<mixed-citation>An unstructured entry.</mixed-citation>`) {
		t.Errorf("mixed citation not preserved:\n%s", data)
	}
	if strings.Contains(string(data), "element-citation") {
		t.Errorf("raw-only entry serialized as element-citation:\n%s", data)
	}
}

func TestWriteParse_MixedCitationWithStructuredTitle(t *testing.T) {
	// A mixed-citation that also yielded a structured title re-exports
	// as an element-citation: structured fields survive, raw text does
	// not. Raw-only entries are covered by the full round-trip test.
	first, err := Parse([]byte(`<article><front><article-meta>
		<title-group><article-title>T</article-title></title-group>
		<abstract><p>A.</p></abstract>
	</article-meta></front><body/><back><ref-list>
		<ref id="ref-m"><mixed-citation>Wikipedia, <article-title>Git</article-title>, <year>2024</year>.</mixed-citation></ref>
	</ref-list></back></article>`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if first.References[0].Raw == "" || first.References[0].Title != "Git" {
		t.Fatalf("unexpected first parse: %+v", first.References[0])
	}

	data, err := WriteBytes(first)
	if err != nil {
		t.Fatalf("WriteBytes() error = %v", err)
	}
	second, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(written) error = %v", err)
	}

	got := second.References[0]
	if got.Raw != "" {
		t.Errorf("Raw = %q, want empty after re-export", got.Raw)
	}
	if got.Title != "Git" || got.Year != 2024 {
		t.Errorf("structured fields lost: %+v", got)
	}
}

func TestWrite_AnonymousSectionUnwrapped(t *testing.T) {
	doc := &webstract.Document{
		Title:    []webstract.Inline{webstract.Text("T")},
		Abstract: []webstract.Block{{Kind: webstract.BlockParagraph, Content: []webstract.Inline{webstract.Text("A.")}}},
		Body: []webstract.Section{
			{Blocks: []webstract.Block{{Kind: webstract.BlockParagraph, Content: []webstract.Inline{webstract.Text("loose")}}}},
			{ID: "s1", Title: []webstract.Inline{webstract.Text("One")}},
		},
	}
	data, err := WriteBytes(doc)
	if err != nil {
		t.Fatalf("WriteBytes() error = %v", err)
	}
	if !strings.Contains(string(data), `<body><p>loose</p><sec id="s1">`) {
		t.Errorf("anonymous section not unwrapped:\n%s", data)
	}
}
