// Package retarget rewrites HTML-shaped subtrees into their JATS
// equivalents so the rest of the pipeline only ever sees JATS-legal
// element names in JATS-legal positions.
package retarget

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// StructureError reports malformed HTML-like nesting, such as an <li>
// outside any list. Nesting is not repaired.
type StructureError struct {
	Tag    string
	Parent string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("element <%s> not allowed under <%s>", e.Tag, e.Parent)
}

// blockTags are element names that may not appear as direct children of
// <list-item> or <def>; they get wrapped in a synthetic <p>.
var blockTags = map[string]bool{
	"list":       true,
	"def-list":   true,
	"disp-quote": true,
	"blockquote": true,
	"code":       true,
	"pre":        true,
	"preformat":  true,
	"table-wrap": true,
	"table":      true,
	"fig":        true,
}

// Apply rewrites the tree rooted at e in place. Renames happen top-down
// so a <dd> becomes <def> before its children are inspected; content
// wrapping happens on the way back up so it sees already-retargeted
// subtrees. Elements with no matching rule pass through unchanged,
// attributes preserved verbatim.
func Apply(e *etree.Element) error {
	if err := rename(e); err != nil {
		return err
	}
	for _, child := range e.ChildElements() {
		if err := Apply(child); err != nil {
			return err
		}
	}
	switch e.Tag {
	case "def-list":
		groupDefItems(e)
	case "list-item", "def":
		wrapBlockContent(e)
	}
	return nil
}

func rename(e *etree.Element) error {
	switch e.Tag {
	case "br":
		e.Tag = "break"
	case "ol":
		e.Tag = "list"
		e.CreateAttr("list-type", "order")
	case "ul":
		e.Tag = "list"
		e.CreateAttr("list-type", "bullet")
	case "li":
		if err := requireParent(e, "list"); err != nil {
			return err
		}
		e.Tag = "list-item"
	case "dl":
		e.Tag = "def-list"
	case "dt":
		if err := requireParent(e, "def-list", "def-item", "div"); err != nil {
			return err
		}
		e.Tag = "term"
	case "dd":
		if err := requireParent(e, "def-list", "def-item", "div"); err != nil {
			return err
		}
		e.Tag = "def"
	}
	return nil
}

func requireParent(e *etree.Element, allowed ...string) error {
	parent := e.Parent()
	parentTag := ""
	if parent != nil {
		parentTag = parent.Tag
	}
	for _, tag := range allowed {
		if parentTag == tag {
			return nil
		}
	}
	return &StructureError{Tag: e.Tag, Parent: parentTag}
}

// groupDefItems restructures a retargeted <def-list> so every term/def
// pair sits inside a <def-item>. HTML-style <div> groupings become
// <def-item> directly; loose term/def runs are paired up. A def-list
// that is already pure JATS is left untouched, whitespace included.
func groupDefItems(e *etree.Element) {
	restructure := false
	for _, child := range e.ChildElements() {
		switch child.Tag {
		case "div", "term", "def":
			restructure = true
		}
	}
	if !restructure {
		return
	}

	var item *etree.Element
	for _, tok := range append([]etree.Token(nil), e.Child...) {
		child, ok := tok.(*etree.Element)
		if !ok {
			if cd, isText := tok.(*etree.CharData); isText && strings.TrimSpace(cd.Data) == "" {
				e.RemoveChild(tok)
			}
			continue
		}
		switch child.Tag {
		case "div":
			child.Tag = "def-item"
			item = nil
		case "def-item", "title":
			item = nil
		case "term":
			item = etree.NewElement("def-item")
			e.InsertChildAt(childIndex(e, child), item)
			e.RemoveChild(child)
			item.AddChild(child)
		case "def":
			if item == nil {
				item = etree.NewElement("def-item")
				e.InsertChildAt(childIndex(e, child), item)
			}
			e.RemoveChild(child)
			item.AddChild(child)
		}
	}
}

// wrapBlockContent enforces the list-item/def content model: block
// children each get their own synthetic <p>; runs of loose inline
// content are gathered into one.
func wrapBlockContent(e *etree.Element) {
	original := append([]etree.Token(nil), e.Child...)

	needsWrap := false
	for _, tok := range original {
		switch t := tok.(type) {
		case *etree.Element:
			if t.Tag != "p" && t.Tag != "label" {
				needsWrap = true
			}
		case *etree.CharData:
			if strings.TrimSpace(t.Data) != "" {
				needsWrap = true
			}
		}
	}
	if !needsWrap {
		return
	}

	for _, tok := range original {
		e.RemoveChild(tok)
	}
	var run *etree.Element // open synthetic <p> gathering inline content
	for _, tok := range original {
		child, isElem := tok.(*etree.Element)
		switch {
		case isElem && (child.Tag == "p" || child.Tag == "label"):
			run = nil
			e.AddChild(child)
		case isElem && blockTags[child.Tag]:
			run = nil
			p := e.CreateElement("p")
			p.AddChild(child)
		default:
			if cd, isText := tok.(*etree.CharData); isText && strings.TrimSpace(cd.Data) == "" && run == nil {
				continue
			}
			if run == nil {
				run = e.CreateElement("p")
			}
			run.AddChild(tok)
		}
	}
}

func childIndex(e *etree.Element, child *etree.Element) int {
	for i, tok := range e.Child {
		if tok == child {
			return i
		}
	}
	return len(e.Child)
}
