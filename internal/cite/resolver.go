// Package cite resolves in-text citations against the reference table
// using numeric-citation-style rules: ascending numbers in order of first
// appearance, grouped citations collapsed.
package cite

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/perm-pub/webstract/internal/biblio"
	"github.com/perm-pub/webstract/internal/webstract"
)

// UnresolvedCitationError reports a citation targeting a key absent from
// the reference list. A dangling citation indicates a corrupt source
// document, so this is fatal.
type UnresolvedCitationError struct {
	Key       string
	SectionID string
}

func (e *UnresolvedCitationError) Error() string {
	return fmt.Sprintf("citation %q in section %q does not match any reference", e.Key, e.SectionID)
}

// Style carries citation-style configuration. It is passed explicitly so
// conversions stay parallel-safe; there is no ambient style state.
type Style struct {
	// CollapseRanges renders runs of three or more consecutive labels
	// as "a-b" instead of listing every number.
	CollapseRanges bool
}

// DefaultStyle is the numeric style used when the caller has no
// preference.
var DefaultStyle = Style{CollapseRanges: true}

// Resolve walks the abstract and body in reading order and assigns each
// cited key a stable ascending number on first encounter. Citation nodes
// arrive with their source-text numbers as label hints; while those hints
// agree with the original ref-list order the original numbering is kept,
// backfilling skipped references. Every citation node's label list is
// rewritten (sorted, deduplicated) and doc.References is reordered by
// assigned number with uncited items appended after, so the list is in
// ascending number order with no gaps.
func Resolve(doc *webstract.Document, table *biblio.Table) error {
	r := resolver{
		table:     table,
		assigned:  make(map[string]int),
		origOrder: true,
	}

	if err := webstract.VisitRuns(doc.Abstract, func(run []webstract.Inline) error {
		return r.resolveRun(run, "abstract")
	}); err != nil {
		return err
	}
	if err := r.resolveSections(doc.Body); err != nil {
		return err
	}

	doc.References = r.orderedReferences()
	return nil
}

type resolver struct {
	table     *biblio.Table
	used      []string // keys in assignment order; number = index + 1
	assigned  map[string]int
	origOrder bool // assignments so far match the original ref-list order
}

func (r *resolver) resolveSections(sections []webstract.Section) error {
	for i := range sections {
		sec := &sections[i]
		if err := r.resolveRun(sec.Title, sec.ID); err != nil {
			return err
		}
		if err := webstract.VisitRuns(sec.Blocks, func(run []webstract.Inline) error {
			return r.resolveRun(run, sec.ID)
		}); err != nil {
			return err
		}
		if err := r.resolveSections(sec.Sections); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) resolveRun(run []webstract.Inline, sectionID string) error {
	return webstract.VisitInlines(run, func(in *webstract.Inline) error {
		if in.Kind != webstract.InlineCite {
			return nil
		}
		hints := in.Labels // pre-resolution: source-text numbers, 0 when absent
		labels := make([]int, 0, len(in.Keys))
		for i, key := range in.Keys {
			hint := 0
			if i < len(hints) {
				hint = hints[i]
			}
			num, err := r.cite(key, hint, sectionID)
			if err != nil {
				return err
			}
			labels = append(labels, num)
		}
		in.Labels = dedupeSorted(labels)
		return nil
	})
}

// cite returns the number assigned to key, assigning the next one on
// first encounter. A hint matching the key's one-based position in the
// original list keeps original ordering by backfilling skipped keys;
// any other first encounter switches to pure appearance order.
func (r *resolver) cite(key string, hint int, sectionID string) (int, error) {
	if num, ok := r.assigned[key]; ok {
		return num, nil
	}
	origIdx := r.table.IndexOf(key)
	if origIdx < 0 {
		return 0, &UnresolvedCitationError{Key: key, SectionID: sectionID}
	}
	if r.origOrder {
		if origIdx+1 == hint {
			for j := len(r.used); j < origIdx; j++ {
				r.append(r.table.KeyAt(j))
			}
		} else {
			r.origOrder = false
		}
	}
	return r.append(key), nil
}

func (r *resolver) append(key string) int {
	r.used = append(r.used, key)
	r.assigned[key] = len(r.used)
	return len(r.used)
}

// orderedReferences lists cited items by assigned number, then uncited
// items in their original document position, numbering continuing.
func (r *resolver) orderedReferences() []biblio.BibItem {
	if r.table.Len() == 0 {
		return nil
	}
	refs := make([]biblio.BibItem, r.table.Len())
	uncited := len(r.used)
	for _, item := range r.table.Items() {
		if num, ok := r.assigned[item.Key]; ok {
			refs[num-1] = item
		} else {
			refs[uncited] = item
			uncited++
		}
	}
	return refs
}

func dedupeSorted(labels []int) []int {
	sort.Ints(labels)
	out := labels[:0]
	for i, n := range labels {
		if i == 0 || n != labels[i-1] {
			out = append(out, n)
		}
	}
	return out
}

// FormatLabels renders a resolved label list as collapsed display text,
// e.g. [1 2 3 5] becomes "1-3,5" under the default style.
func FormatLabels(labels []int, style Style) string {
	if len(labels) == 0 {
		return ""
	}
	var parts []string
	for i := 0; i < len(labels); {
		j := i
		for j+1 < len(labels) && labels[j+1] == labels[j]+1 {
			j++
		}
		if style.CollapseRanges && j-i >= 2 {
			parts = append(parts, strconv.Itoa(labels[i])+"-"+strconv.Itoa(labels[j]))
			i = j + 1
			continue
		}
		for ; i <= j; i++ {
			parts = append(parts, strconv.Itoa(labels[i]))
		}
	}
	return strings.Join(parts, ",")
}
