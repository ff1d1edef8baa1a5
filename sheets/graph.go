package sheets

// rewireCell implements §4.6: drop every outgoing edge from c, walk its new
// parse tree (if any) collecting references, and adopt the edges those
// references imply. Self-references are flagged Circular immediately
// rather than waiting for the cycle detector, since a self-edge is always
// a one-cell cycle and the detector would just confirm it.
func (w *Workbook) rewireCell(sheet *Sheet, c *Cell) {
	released := w.releaseOutgoingEdges(sheet, c)

	for name := range c.InvalidSheetRefs {
		delete(c.InvalidSheetRefs, name)
	}
	w.removeOrphan(c.Address())

	if c.Tree == nil {
		if released > 0 {
			w.logger.Debug().Str("sheet", sheet.name).Int("released", released).Msg("edges released")
		}
		return
	}

	refs := CollectRefs(c.Tree, nil)
	selfAddr := c.Address()

	adopted := 0
	for _, ref := range refs {
		targetSheetName := sheet.name
		if ref.HasSheet {
			targetSheetName = ref.Sheet
		}
		targetSheet, ok := w.lookupSheet(targetSheetName)
		if !ok {
			c.InvalidSheetRefs[targetSheetName] = struct{}{}
			w.addOrphan(c.Address())
			w.logger.Debug().Str("sheet", targetSheetName).Msg("orphan registered")
			continue
		}

		if ref.IsRange {
			for col := ref.Start.Col; col <= ref.End.Col; col++ {
				for row := ref.Start.Row; row <= ref.End.Row; row++ {
					w.adoptEdge(sheet, c, selfAddr, targetSheet, Location{Col: col, Row: row})
					adopted++
				}
			}
			continue
		}
		w.adoptEdge(sheet, c, selfAddr, targetSheet, ref.Start)
		adopted++
	}

	if adopted > 0 || released > 0 {
		w.logger.Debug().Str("sheet", sheet.name).Int("adopted", adopted).Int("released", released).Msg("edges rewired")
	}
}

// adoptEdge materializes (if absent) the target cell and records the
// symmetric parent/child edge between c and it. A reference to c's own
// address is a self-cycle, flagged directly rather than left for the
// detector.
func (w *Workbook) adoptEdge(ownerSheet *Sheet, c *Cell, selfAddr CellAddress, targetSheet *Sheet, loc Location) {
	target := targetSheet.getOrCreate(loc)
	targetAddr := target.Address()

	if targetAddr == selfAddr {
		c.Value = ErrorValue(ErrCircular, "")
	}

	c.Parents[targetAddr] = struct{}{}
	target.Children[selfAddr] = struct{}{}
}

// releaseOutgoingEdges drops every edge c→parent, both directions, and
// physically deletes any parent cell left as a childless empty placeholder.
// Returns the number of edges dropped, for the caller's log line.
func (w *Workbook) releaseOutgoingEdges(sheet *Sheet, c *Cell) int {
	selfAddr := c.Address()
	count := 0
	for parentAddr := range c.Parents {
		delete(c.Parents, parentAddr)
		count++
		parentSheet, ok := w.sheetByID(parentAddr.SheetID)
		if !ok {
			continue
		}
		parent := parentSheet.get(Location{Col: parentAddr.Col, Row: parentAddr.Row})
		if parent == nil {
			continue
		}
		delete(parent.Children, selfAddr)
		parentSheet.deleteIfOrphanedPlaceholder(parent)
	}
	return count
}

// addOrphan / removeOrphan maintain the workbook's orphan set (§3 invariant
// 5): membership tracks invalidSheetRefs non-emptiness exactly.
func (w *Workbook) addOrphan(addr CellAddress) {
	w.orphans[addr] = struct{}{}
}

func (w *Workbook) removeOrphan(addr CellAddress) {
	if _, was := w.orphans[addr]; was {
		w.logger.Debug().Uint64("sheet_id", addr.SheetID).Msg("orphan resolved")
	}
	delete(w.orphans, addr)
}

// reresolveOrphans re-runs set_cell_contents for every orphan currently
// naming sheetName, called after that sheet appears (new_sheet, rename,
// copy) so previously-dangling references heal (§4.6, §4.11).
func (w *Workbook) reresolveOrphans(sheetName string) []ChangedCell {
	var toRetry []CellAddress
	lower := lowerName(sheetName)
	for addr := range w.orphans {
		ownerSheet, ok := w.sheetByID(addr.SheetID)
		if !ok {
			continue
		}
		cell := ownerSheet.get(Location{Col: addr.Col, Row: addr.Row})
		if cell == nil {
			continue
		}
		if _, mentions := cell.InvalidSheetRefs[sheetName]; mentions {
			toRetry = append(toRetry, addr)
			continue
		}
		for name := range cell.InvalidSheetRefs {
			if lowerName(name) == lower {
				toRetry = append(toRetry, addr)
				break
			}
		}
	}

	var changed []ChangedCell
	for _, addr := range toRetry {
		ownerSheet, ok := w.sheetByID(addr.SheetID)
		if !ok {
			continue
		}
		cell := ownerSheet.get(Location{Col: addr.Col, Row: addr.Row})
		if cell == nil {
			continue
		}
		changed = append(changed, w.setCellContentsInternal(ownerSheet, cell.Loc, cell.Raw, cell.IsNilRaw)...)
	}
	return changed
}
