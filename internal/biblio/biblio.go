// Package biblio defines bibliographic reference types and builds the
// reference table from a JATS ref-list.
package biblio

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// BibItem represents one bibliography entry in normalized form.
type BibItem struct {
	// Identity
	Key string `json:"key" yaml:"key"` // JATS ref id, unique within the reference list

	// Structured fields (element-citation)
	Authors        []string `json:"authors,omitempty" yaml:"authors,omitempty"` // person names or collab strings
	Title          string   `json:"title,omitempty" yaml:"title,omitempty"`
	ContainerTitle string   `json:"container_title,omitempty" yaml:"container_title,omitempty"`
	Year           int      `json:"year,omitempty" yaml:"year,omitempty"`
	Volume         string   `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue          string   `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages          string   `json:"pages,omitempty" yaml:"pages,omitempty"`
	DOI            string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	URL            string   `json:"url,omitempty" yaml:"url,omitempty"`
	AccessDate     string   `json:"access_date,omitempty" yaml:"access_date,omitempty"`

	// Raw holds the visible text of a mixed-citation, markup stripped.
	Raw string `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// Table maps reference keys to bibliography items while preserving the
// document order of the ref-list.
type Table struct {
	items map[string]BibItem
	order []string
}

// DuplicateKeyError reports two references sharing the same id.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate reference key %q", e.Key)
}

// MalformedRefError reports a ref element carrying neither an
// element-citation nor a mixed-citation.
type MalformedRefError struct {
	Key string
}

func (e *MalformedRefError) Error() string {
	return fmt.Sprintf("reference %q has no element-citation or mixed-citation", e.Key)
}

// BuildTable extracts every <ref> under a ref-list element into a Table.
// refList may be nil, in which case the table is empty.
func BuildTable(refList *etree.Element) (*Table, error) {
	t := &Table{items: make(map[string]BibItem)}
	if refList == nil {
		return t, nil
	}
	for _, ref := range refList.SelectElements("ref") {
		key := ref.SelectAttrValue("id", "")
		if key == "" {
			return nil, &MalformedRefError{Key: "(missing id)"}
		}
		if _, exists := t.items[key]; exists {
			return nil, &DuplicateKeyError{Key: key}
		}
		item, err := buildItem(key, ref)
		if err != nil {
			return nil, err
		}
		t.items[key] = item
		t.order = append(t.order, key)
	}
	return t, nil
}

// Has reports whether key is present in the table.
func (t *Table) Has(key string) bool {
	_, ok := t.items[key]
	return ok
}

// Get returns the item for key and whether it exists.
func (t *Table) Get(key string) (BibItem, bool) {
	item, ok := t.items[key]
	return item, ok
}

// IndexOf returns the zero-based document position of key, or -1.
func (t *Table) IndexOf(key string) int {
	if _, ok := t.items[key]; !ok {
		return -1
	}
	for i, k := range t.order {
		if k == key {
			return i
		}
	}
	return -1
}

// KeyAt returns the key at zero-based document position i.
func (t *Table) KeyAt(i int) string {
	return t.order[i]
}

// Len returns the number of items in the table.
func (t *Table) Len() int {
	return len(t.order)
}

// Items returns all items in document order.
func (t *Table) Items() []BibItem {
	items := make([]BibItem, 0, len(t.order))
	for _, key := range t.order {
		items = append(items, t.items[key])
	}
	return items
}

// buildItem normalizes one <ref> into a BibItem from whichever citation
// form it carries.
func buildItem(key string, ref *etree.Element) (BibItem, error) {
	if ec := ref.SelectElement("element-citation"); ec != nil {
		return fromElementCitation(key, ec), nil
	}
	if mc := ref.SelectElement("mixed-citation"); mc != nil {
		return fromMixedCitation(key, mc), nil
	}
	return BibItem{}, &MalformedRefError{Key: key}
}

func fromElementCitation(key string, ec *etree.Element) BibItem {
	item := BibItem{Key: key}
	for _, group := range ec.SelectElements("person-group") {
		item.Authors = append(item.Authors, personNames(group)...)
	}
	item.Title = childText(ec, "article-title")
	item.ContainerTitle = childText(ec, "source")
	item.Year = yearOf(childText(ec, "year"))
	item.Volume = childText(ec, "volume")
	item.Issue = childText(ec, "issue")
	item.Pages = pageRange(childText(ec, "fpage"), childText(ec, "lpage"))
	for _, pubID := range ec.SelectElements("pub-id") {
		if pubID.SelectAttrValue("pub-id-type", "") == "doi" {
			item.DOI = strings.TrimSpace(pubID.Text())
		}
	}
	if uri := childText(ec, "uri"); uri != "" {
		item.URL = uri
	} else if link := ec.SelectElement("ext-link"); link != nil {
		item.URL = linkHref(link)
	}
	if date := ec.SelectElement("date-in-citation"); date != nil {
		item.AccessDate = accessDate(date)
	}
	return item
}

// fromMixedCitation keeps the stripped visible text as a fallback while
// still pulling out any structured children that happen to be present.
func fromMixedCitation(key string, mc *etree.Element) BibItem {
	item := BibItem{Key: key}
	item.Raw = strings.Join(strings.Fields(flattenText(mc)), " ")
	if title := findDescendant(mc, "article-title"); title != nil {
		item.Title = strings.TrimSpace(flattenText(title))
	}
	if year := findDescendant(mc, "year"); year != nil {
		item.Year = yearOf(year.Text())
	}
	if uri := findDescendant(mc, "uri"); uri != nil {
		item.URL = strings.TrimSpace(flattenText(uri))
	}
	return item
}

// personNames flattens a person-group into "Given Surname" strings,
// keeping <collab> entries verbatim.
func personNames(group *etree.Element) []string {
	var names []string
	for _, child := range group.ChildElements() {
		switch child.Tag {
		case "name":
			surname := childText(child, "surname")
			given := childText(child, "given-names")
			switch {
			case given != "" && surname != "":
				names = append(names, given+" "+surname)
			case surname != "":
				names = append(names, surname)
			case given != "":
				names = append(names, given)
			}
		case "collab", "string-name":
			if s := strings.TrimSpace(flattenText(child)); s != "" {
				names = append(names, s)
			}
		}
	}
	return names
}

func pageRange(fpage, lpage string) string {
	if fpage == "" {
		return ""
	}
	if lpage == "" || lpage == fpage {
		return fpage
	}
	return fpage + "-" + lpage
}

func accessDate(date *etree.Element) string {
	if iso := date.SelectAttrValue("iso-8601-date", ""); iso != "" {
		return iso
	}
	year := childText(date, "year")
	month := childText(date, "month")
	day := childText(date, "day")
	parts := []string{}
	for _, p := range []string{year, month, day} {
		if p == "" {
			break
		}
		if len(p) == 1 {
			p = "0" + p
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, "-")
}

func yearOf(s string) int {
	s = strings.TrimSpace(s)
	year := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		year = year*10 + int(r-'0')
	}
	return year
}

func childText(e *etree.Element, tag string) string {
	if child := e.SelectElement(tag); child != nil {
		return strings.TrimSpace(flattenText(child))
	}
	return ""
}

func linkHref(link *etree.Element) string {
	if href := link.SelectAttrValue("xlink:href", ""); href != "" {
		return href
	}
	if href := link.SelectAttrValue("href", ""); href != "" {
		return href
	}
	return strings.TrimSpace(flattenText(link))
}

// flattenText concatenates all character data under e, markup stripped.
func flattenText(e *etree.Element) string {
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

// findDescendant returns the first descendant element with the given tag,
// depth-first, or nil.
func findDescendant(e *etree.Element, tag string) *etree.Element {
	for _, child := range e.ChildElements() {
		if child.Tag == tag {
			return child
		}
		if found := findDescendant(child, tag); found != nil {
			return found
		}
	}
	return nil
}
