package webstract

import (
	"errors"
	"fmt"
)

// NoTitle is the sentinel title used when a document has none. Missing
// titles are cosmetic; missing citations are not.
const NoTitle = "No Title"

// ErrMissingAbstract indicates a document without an abstract.
var ErrMissingAbstract = errors.New("document has no abstract")

// CrossReferenceError reports a non-citation cross-reference whose target
// id does not exist in the document.
type CrossReferenceError struct {
	Target string
}

func (e *CrossReferenceError) Error() string {
	return fmt.Sprintf("cross-reference target %q does not exist", e.Target)
}

// Validate performs the assembler's final structural checks: section ids
// must be unique, every cross-reference target must exist, and the
// abstract must be present. The title is defaulted rather than checked.
func (d *Document) Validate() error {
	if len(d.Title) == 0 {
		d.Title = []Inline{Text(NoTitle)}
	}
	if len(d.Abstract) == 0 {
		return ErrMissingAbstract
	}

	targets := make(map[string]bool)
	if err := collectSectionIDs(d.Body, targets); err != nil {
		return err
	}
	collectFigureIDs(d.Body, targets)

	checkRun := func(run []Inline) error {
		return VisitInlines(run, func(in *Inline) error {
			if in.Kind == InlineXref && !targets[in.Target] {
				return &CrossReferenceError{Target: in.Target}
			}
			return nil
		})
	}
	if err := VisitRuns(d.Abstract, checkRun); err != nil {
		return err
	}
	var check func(sections []Section) error
	check = func(sections []Section) error {
		for i := range sections {
			if err := checkRun(sections[i].Title); err != nil {
				return err
			}
			if err := VisitRuns(sections[i].Blocks, checkRun); err != nil {
				return err
			}
			if err := check(sections[i].Sections); err != nil {
				return err
			}
		}
		return nil
	}
	return check(d.Body)
}

func collectSectionIDs(sections []Section, targets map[string]bool) error {
	for i := range sections {
		if id := sections[i].ID; id != "" {
			if targets[id] {
				return fmt.Errorf("duplicate section id %q", id)
			}
			targets[id] = true
		}
		if err := collectSectionIDs(sections[i].Sections, targets); err != nil {
			return err
		}
	}
	return nil
}

func collectFigureIDs(sections []Section, targets map[string]bool) {
	for i := range sections {
		scanFigures(sections[i].Blocks, targets)
		collectFigureIDs(sections[i].Sections, targets)
	}
}

func scanFigures(blocks []Block, targets map[string]bool) {
	for i := range blocks {
		b := &blocks[i]
		if b.Kind == BlockFigure && b.Figure != nil && b.Figure.ID != "" {
			targets[b.Figure.ID] = true
		}
		scanFigures(b.Blocks, targets)
		for j := range b.Items {
			scanFigures(b.Items[j].Blocks, targets)
		}
		for j := range b.Defs {
			scanFigures(b.Defs[j].Defs, targets)
		}
	}
}
