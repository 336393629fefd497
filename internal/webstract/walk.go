package webstract

// VisitRuns calls fn for every inline run reachable from blocks,
// including runs nested in list items, definitions, table cells, quotes
// and figure captions. fn may mutate run elements in place.
func VisitRuns(blocks []Block, fn func(run []Inline) error) error {
	for i := range blocks {
		b := &blocks[i]
		if b.Content != nil {
			if err := fn(b.Content); err != nil {
				return err
			}
		}
		if b.Figure != nil && b.Figure.Caption != nil {
			if err := fn(b.Figure.Caption); err != nil {
				return err
			}
		}
		for j := range b.Rows {
			for k := range b.Rows[j].Cells {
				if cell := &b.Rows[j].Cells[k]; cell.Content != nil {
					if err := fn(cell.Content); err != nil {
						return err
					}
				}
			}
		}
		for j := range b.Items {
			if err := VisitRuns(b.Items[j].Blocks, fn); err != nil {
				return err
			}
		}
		for j := range b.Defs {
			if b.Defs[j].Term != nil {
				if err := fn(b.Defs[j].Term); err != nil {
					return err
				}
			}
			if err := VisitRuns(b.Defs[j].Defs, fn); err != nil {
				return err
			}
		}
		if err := VisitRuns(b.Blocks, fn); err != nil {
			return err
		}
	}
	return nil
}

// VisitInlines calls visit for every inline node in run, depth-first.
// visit may mutate the node.
func VisitInlines(run []Inline, visit func(*Inline) error) error {
	for i := range run {
		if err := visit(&run[i]); err != nil {
			return err
		}
		if err := VisitInlines(run[i].Children, visit); err != nil {
			return err
		}
	}
	return nil
}
