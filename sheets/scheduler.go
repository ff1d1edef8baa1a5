package sheets

// ChangedCell names one cell whose value changed during an edit, as
// delivered to notification listeners (§4.9 step 5, §6).
type ChangedCell struct {
	Sheet string
	Loc   Location
}

// runUpdate implements §4.9 in full for an edit that just landed on
// (sheet, cell): the edge graph has already been rewired by rewireCell, and
// this recomputes every transitively dependent cell exactly once in
// topological order, or short-circuits to Circular errors if a cycle is
// detected. It returns the cells whose value actually changed.
func (w *Workbook) runUpdate(sheet *Sheet, cell *Cell) []ChangedCell {
	start := cell.Address()
	dependents := w.collectDependents(start)

	pre := make(map[CellAddress]CellValue, len(dependents))
	for addr := range dependents {
		if c := w.cellAt(addr); c != nil {
			pre[addr] = c.Value
		}
	}

	report := w.detectCycles(start)
	if report.HasCycle {
		affected := make(map[CellAddress]bool)
		for _, scc := range report.SCCs {
			for _, addr := range scc {
				affected[addr] = true
			}
		}
		w.logger.Warn().Int("scc_count", len(report.SCCs)).Int("cells", len(affected)).Msg("cycle detected")
		// every cell transitively dependent on any cycle member also goes
		// to Circular (§4.9 step 2, §8 invariant 3).
		for addr := range affected {
			for _, d := range w.collectDependentsExcludingSelf(addr) {
				affected[d] = true
			}
		}
		for addr := range affected {
			if c := w.cellAt(addr); c != nil {
				c.Value = ErrorValue(ErrCircular, "")
			}
		}
		return w.diffChanges(pre, affected)
	}

	order := w.topologicalDependents(start, dependents)
	for _, addr := range order {
		c := w.cellAt(addr)
		if c == nil || c.Tree == nil {
			continue
		}
		ownerSheet, ok := w.sheetByID(c.SheetID)
		if !ok {
			continue
		}
		ectx := &evalContext{wb: w, currentSheet: ownerSheet, missingSheets: make(map[string]struct{})}
		res := ectx.eval(c.Tree)
		if res.rng != nil {
			c.Value = ErrorValue(ErrParse, "range literal outside a function argument is rejected by the grammar")
		} else {
			c.Value = res.value
		}

		for name := range c.InvalidSheetRefs {
			delete(c.InvalidSheetRefs, name)
		}
		w.removeOrphan(addr)
		for name := range ectx.missingSheets {
			c.InvalidSheetRefs[name] = struct{}{}
		}
		if len(c.InvalidSheetRefs) > 0 {
			w.addOrphan(addr)
		}
	}

	return w.diffChanges(pre, dependents)
}

func (w *Workbook) cellAt(addr CellAddress) *Cell {
	sheet, ok := w.sheetByID(addr.SheetID)
	if !ok {
		return nil
	}
	return sheet.get(Location{Col: addr.Col, Row: addr.Row})
}

// collectDependents returns start plus every cell transitively reachable
// via Children edges (i.e. everything whose value could change because of
// this edit).
func (w *Workbook) collectDependents(start CellAddress) map[CellAddress]bool {
	seen := map[CellAddress]bool{start: true}
	stack := []CellAddress{start}
	for len(stack) > 0 {
		addr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c := w.cellAt(addr)
		if c == nil {
			continue
		}
		for ch := range c.Children {
			if !seen[ch] {
				seen[ch] = true
				stack = append(stack, ch)
			}
		}
	}
	return seen
}

// collectDependentsExcludingSelf returns every cell transitively reachable
// via Children edges from start, not including start itself.
func (w *Workbook) collectDependentsExcludingSelf(start CellAddress) []CellAddress {
	all := w.collectDependents(start)
	delete(all, start)
	out := make([]CellAddress, 0, len(all))
	for addr := range all {
		out = append(out, addr)
	}
	return out
}

// topologicalDependents produces an iterative (explicit-queue, no
// recursion — §9) Kahn's-algorithm ordering of dependents so that every
// cell is recomputed only after all of its in-subgraph parents are fresh.
func (w *Workbook) topologicalDependents(start CellAddress, dependents map[CellAddress]bool) []CellAddress {
	indegree := make(map[CellAddress]int, len(dependents))
	for addr := range dependents {
		c := w.cellAt(addr)
		if c == nil {
			continue
		}
		count := 0
		for p := range c.Parents {
			if dependents[p] {
				count++
			}
		}
		indegree[addr] = count
	}

	queue := make([]CellAddress, 0, len(dependents))
	for addr, deg := range indegree {
		if deg == 0 {
			queue = append(queue, addr)
		}
	}

	var order []CellAddress
	for len(queue) > 0 {
		addr := queue[0]
		queue = queue[1:]
		order = append(order, addr)
		c := w.cellAt(addr)
		if c == nil {
			continue
		}
		for ch := range c.Children {
			if !dependents[ch] {
				continue
			}
			indegree[ch]--
			if indegree[ch] == 0 {
				queue = append(queue, ch)
			}
		}
	}
	return order
}

func (w *Workbook) diffChanges(pre map[CellAddress]CellValue, universe map[CellAddress]bool) []ChangedCell {
	var changed []ChangedCell
	for addr := range universe {
		c := w.cellAt(addr)
		if c == nil {
			continue
		}
		before, had := pre[addr]
		if had && valuesIdentical(before, c.Value) {
			continue
		}
		sheet, ok := w.sheetByID(addr.SheetID)
		if !ok || w.sheetBeingDeleted(addr.SheetID) {
			continue
		}
		changed = append(changed, ChangedCell{Sheet: sheet.Name(), Loc: c.Loc})
	}
	return changed
}

// valuesIdentical compares two CellValues for notification-diffing
// purposes (§4.9 step 5, §8 invariant 8). Error detail text is not
// significant — only the Type/Err/value payload is.
func valuesIdentical(a, b CellValue) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeNumber:
		return a.Number.Equal(b.Number)
	case TypeText:
		return a.Text == b.Text
	case TypeBool:
		return a.Bool == b.Bool
	case TypeError:
		return a.Err == b.Err
	default:
		return true
	}
}
