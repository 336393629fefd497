package jats

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/perm-pub/webstract/internal/biblio"
	"github.com/perm-pub/webstract/internal/webstract"
)

// Write serializes a Document back to JATS XML. The output is equivalent
// input for Parse: parsing it again reproduces the document (up to the
// raw-text fallback of mixed citations, which cannot be re-structured).
func Write(d *webstract.Document) *etree.Document {
	w := &writer{labels: make(map[string]int)}
	for i, item := range d.References {
		w.labels[item.Key] = i + 1
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	article := doc.CreateElement("article")
	article.CreateAttr("xmlns:xlink", "http://www.w3.org/1999/xlink")

	front := article.CreateElement("front")
	meta := front.CreateElement("article-meta")
	w.writeEdition(meta, d.Edition)
	titleGroup := meta.CreateElement("title-group")
	w.writeInlines(titleGroup.CreateElement("article-title"), d.Title)
	if len(d.Contributors) > 0 {
		group := meta.CreateElement("contrib-group")
		for _, c := range d.Contributors {
			w.writeContrib(group, c)
		}
	}
	if len(d.Abstract) > 0 {
		w.writeBlocks(meta.CreateElement("abstract"), d.Abstract, false)
	}

	body := article.CreateElement("body")
	w.writeSections(body, d.Body)

	if len(d.References) > 0 {
		back := article.CreateElement("back")
		refList := back.CreateElement("ref-list")
		for _, item := range d.References {
			w.writeRef(refList, item)
		}
	}
	return doc
}

// WriteBytes serializes a Document to JATS XML bytes.
func WriteBytes(d *webstract.Document) ([]byte, error) {
	return Write(d).WriteToBytes()
}

type writer struct {
	labels map[string]int // reference key -> citation number
}

func (w *writer) writeEdition(meta *etree.Element, e *webstract.Edition) {
	if e == nil {
		return
	}
	if e.Succession != "" {
		id := meta.CreateElement("article-id")
		id.CreateAttr("pub-id-type", "dsi")
		id.SetText(e.Succession)
	}
	if e.Number > 0 {
		meta.CreateElement("article-version").SetText(strconv.Itoa(e.Number))
	}
	if e.Archived != "" {
		history := meta.CreateElement("history")
		date := history.CreateElement("date")
		date.CreateAttr("date-type", "archived")
		date.CreateAttr("iso-8601-date", e.Archived)
	}
}

func (w *writer) writeContrib(group *etree.Element, c webstract.Contributor) {
	contrib := group.CreateElement("contrib")
	contrib.CreateAttr("contrib-type", "author")
	if c.ORCID != "" {
		id := contrib.CreateElement("contrib-id")
		id.CreateAttr("contrib-id-type", "orcid")
		id.SetText(c.ORCID)
	}
	name := contrib.CreateElement("name")
	if c.Surname != "" {
		name.CreateElement("surname").SetText(c.Surname)
	}
	if c.GivenNames != "" {
		name.CreateElement("given-names").SetText(c.GivenNames)
	}
	if c.Email != "" {
		contrib.CreateElement("email").SetText(c.Email)
	}
	if c.Affiliation != "" {
		contrib.CreateElement("aff").SetText(c.Affiliation)
	}
}

func (w *writer) writeSections(parent *etree.Element, sections []webstract.Section) {
	for _, s := range sections {
		if s.ID == "" && len(s.Title) == 0 && len(s.Sections) == 0 {
			// anonymous leading section: unwrap to loose blocks
			w.writeBlocks(parent, s.Blocks, false)
			continue
		}
		sec := parent.CreateElement("sec")
		if s.ID != "" {
			sec.CreateAttr("id", s.ID)
		}
		if len(s.Title) > 0 {
			w.writeInlines(sec.CreateElement("title"), s.Title)
		}
		w.writeBlocks(sec, s.Blocks, false)
		w.writeSections(sec, s.Sections)
	}
}

// writeBlocks appends blocks to parent. Inside a list-item or def the
// JATS content model requires paragraph wrapping, so wrapped is true
// there and non-paragraph blocks get a synthetic <p>.
func (w *writer) writeBlocks(parent *etree.Element, blocks []webstract.Block, wrapped bool) {
	for _, b := range blocks {
		target := parent
		if wrapped && b.Kind != webstract.BlockParagraph {
			target = parent.CreateElement("p")
		}
		w.writeBlock(target, b)
	}
}

func (w *writer) writeBlock(parent *etree.Element, b webstract.Block) {
	switch b.Kind {
	case webstract.BlockParagraph:
		w.writeInlines(parent.CreateElement("p"), b.Content)
	case webstract.BlockList:
		list := parent.CreateElement("list")
		if b.Ordered {
			list.CreateAttr("list-type", "order")
		} else {
			list.CreateAttr("list-type", "bullet")
		}
		for _, item := range b.Items {
			w.writeBlocks(list.CreateElement("list-item"), item.Blocks, true)
		}
	case webstract.BlockDefList:
		defList := parent.CreateElement("def-list")
		for _, d := range b.Defs {
			item := defList.CreateElement("def-item")
			if len(d.Term) > 0 {
				w.writeInlines(item.CreateElement("term"), d.Term)
			}
			if len(d.Defs) > 0 {
				w.writeBlocks(item.CreateElement("def"), d.Defs, true)
			}
		}
	case webstract.BlockQuote:
		w.writeBlocks(parent.CreateElement("disp-quote"), b.Blocks, false)
	case webstract.BlockPreformat:
		w.writeInlines(parent.CreateElement("preformat"), b.Content)
	case webstract.BlockCode:
		w.writeInlines(parent.CreateElement("code"), b.Content)
	case webstract.BlockTable:
		table := parent.CreateElement("table-wrap").CreateElement("table")
		for _, row := range b.Rows {
			tr := table.CreateElement("tr")
			for _, cell := range row.Cells {
				tag := "td"
				if cell.Header {
					tag = "th"
				}
				w.writeInlines(tr.CreateElement(tag), cell.Content)
			}
		}
	case webstract.BlockFigure:
		if b.Figure == nil {
			return
		}
		fig := parent.CreateElement("fig")
		if b.Figure.ID != "" {
			fig.CreateAttr("id", b.Figure.ID)
		}
		if len(b.Figure.Caption) > 0 {
			caption := fig.CreateElement("caption")
			w.writeInlines(caption.CreateElement("p"), b.Figure.Caption)
		}
		if b.Figure.Graphic != "" {
			graphic := fig.CreateElement("graphic")
			graphic.CreateAttr("xlink:href", b.Figure.Graphic)
		}
	}
}

func (w *writer) writeInlines(parent *etree.Element, run []webstract.Inline) {
	for _, in := range run {
		switch in.Kind {
		case webstract.InlineText:
			parent.CreateText(in.Text)
		case webstract.InlineEmphasis:
			w.writeInlines(parent.CreateElement("italic"), in.Children)
		case webstract.InlineStrong:
			w.writeInlines(parent.CreateElement("bold"), in.Children)
		case webstract.InlineCode:
			w.writeInlines(parent.CreateElement("monospace"), in.Children)
		case webstract.InlineBreak:
			parent.CreateElement("break")
		case webstract.InlineLink:
			link := parent.CreateElement("ext-link")
			link.CreateAttr("ext-link-type", "uri")
			link.CreateAttr("xlink:href", in.Href)
			w.writeInlines(link, in.Children)
		case webstract.InlineXref:
			xref := parent.CreateElement("xref")
			xref.CreateAttr("rid", in.Target)
			if in.Text != "" {
				xref.SetText(in.Text)
			}
		case webstract.InlineCite:
			sup := parent.CreateElement("sup")
			for i, key := range in.Keys {
				if i > 0 {
					sup.CreateText(",")
				}
				xref := sup.CreateElement("xref")
				xref.CreateAttr("rid", key)
				xref.CreateAttr("ref-type", "bibr")
				if num, ok := w.labels[key]; ok {
					xref.SetText(strconv.Itoa(num))
				}
			}
		}
	}
}

func (w *writer) writeRef(refList *etree.Element, item biblio.BibItem) {
	ref := refList.CreateElement("ref")
	ref.CreateAttr("id", item.Key)
	if item.Raw != "" && item.Title == "" {
		ref.CreateElement("mixed-citation").SetText(item.Raw)
		return
	}
	ec := ref.CreateElement("element-citation")
	if len(item.Authors) > 0 {
		group := ec.CreateElement("person-group")
		group.CreateAttr("person-group-type", "author")
		for _, author := range item.Authors {
			group.CreateElement("string-name").SetText(author)
		}
	}
	if item.Title != "" {
		ec.CreateElement("article-title").SetText(item.Title)
	}
	if item.ContainerTitle != "" {
		ec.CreateElement("source").SetText(item.ContainerTitle)
	}
	if item.Year > 0 {
		ec.CreateElement("year").SetText(strconv.Itoa(item.Year))
	}
	if item.Volume != "" {
		ec.CreateElement("volume").SetText(item.Volume)
	}
	if item.Issue != "" {
		ec.CreateElement("issue").SetText(item.Issue)
	}
	if item.Pages != "" {
		fpage, lpage, _ := strings.Cut(item.Pages, "-")
		ec.CreateElement("fpage").SetText(fpage)
		if lpage != "" {
			ec.CreateElement("lpage").SetText(lpage)
		}
	}
	if item.DOI != "" {
		pubID := ec.CreateElement("pub-id")
		pubID.CreateAttr("pub-id-type", "doi")
		pubID.SetText(item.DOI)
	}
	if item.URL != "" {
		ec.CreateElement("uri").SetText(item.URL)
	}
	if item.AccessDate != "" {
		date := ec.CreateElement("date-in-citation")
		date.CreateAttr("content-type", "access-date")
		date.CreateAttr("iso-8601-date", item.AccessDate)
	}
}
