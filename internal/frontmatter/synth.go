// Package frontmatter fills required-but-absent JATS front matter with
// deterministic placeholders so the tree satisfies minimum structural
// requirements. Existing metadata is never overwritten.
package frontmatter

import "github.com/beevik/etree"

// Placeholder content inserted when metadata is entirely absent. The
// pub-date is a deliberately implausible sentinel so synthesized dates
// are recognizable downstream.
const (
	PlaceholderJournalID    = "unknown"
	PlaceholderJournalTitle = "Unknown Journal"
	PlaceholderSubject      = "Other"
	PlaceholderElocationID  = "e0"
	PlaceholderPubYear      = "1999"
	PlaceholderPubMonth     = "12"
	PlaceholderPubDay       = "31"
)

// Synthesize ensures front/journal-meta, front/article-meta with
// article-categories, pub-date, and elocation-id all exist under the
// article root. Safe to call on already-complete input.
func Synthesize(article *etree.Element) {
	front := article.SelectElement("front")
	if front == nil {
		front = etree.NewElement("front")
		article.InsertChildAt(0, front)
	}

	if front.SelectElement("journal-meta") == nil {
		jm := etree.NewElement("journal-meta")
		id := jm.CreateElement("journal-id")
		id.CreateAttr("journal-id-type", "publisher-id")
		id.SetText(PlaceholderJournalID)
		group := jm.CreateElement("journal-title-group")
		group.CreateElement("journal-title").SetText(PlaceholderJournalTitle)
		front.InsertChildAt(0, jm)
	}

	meta := ensureChild(front, "article-meta")

	if meta.SelectElement("article-categories") == nil {
		cats := meta.CreateElement("article-categories")
		group := cats.CreateElement("subj-group")
		group.CreateAttr("subj-group-type", "heading")
		group.CreateElement("subject").SetText(PlaceholderSubject)
	}
	if meta.SelectElement("pub-date") == nil {
		date := meta.CreateElement("pub-date")
		date.CreateAttr("date-type", "pub")
		date.CreateElement("day").SetText(PlaceholderPubDay)
		date.CreateElement("month").SetText(PlaceholderPubMonth)
		date.CreateElement("year").SetText(PlaceholderPubYear)
	}
	if meta.SelectElement("elocation-id") == nil {
		meta.CreateElement("elocation-id").SetText(PlaceholderElocationID)
	}
}

func ensureChild(e *etree.Element, tag string) *etree.Element {
	if child := e.SelectElement(tag); child != nil {
		return child
	}
	return e.CreateElement(tag)
}
