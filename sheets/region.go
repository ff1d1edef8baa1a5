package sheets

import "sort"

// normalizeRect corner-normalizes two opposite corners of a rectangle into
// (minCol, minRow, maxCol, maxRow).
func normalizeRect(a, b Location) (uint32, uint32, uint32, uint32) {
	minCol, maxCol := a.Col, b.Col
	if minCol > maxCol {
		minCol, maxCol = maxCol, minCol
	}
	minRow, maxRow := a.Row, b.Row
	if minRow > maxRow {
		minRow, maxRow = maxRow, minRow
	}
	return minCol, minRow, maxCol, maxRow
}

// MoveCells implements move_cells (§4.11, §6): corner-normalizes the source
// rectangle, validates the translated rectangle fits the grid (no mutation
// on failure), erases the sources, then re-inserts each original cell's
// shifted formula at its destination.
func (w *Workbook) MoveCells(sheetName string, start, end, to Location, toSheetName string) error {
	return w.relocateCells(sheetName, start, end, to, toSheetName, true)
}

// CopyCells implements copy_cells: identical to MoveCells but the sources
// are left in place.
func (w *Workbook) CopyCells(sheetName string, start, end, to Location, toSheetName string) error {
	return w.relocateCells(sheetName, start, end, to, toSheetName, false)
}

func (w *Workbook) relocateCells(sheetName string, start, end, to Location, toSheetName string, move bool) error {
	srcSheet, ok := w.lookupSheet(sheetName)
	if !ok {
		return newHostError(ErrUnknownSheet, "unknown sheet %q", sheetName)
	}
	dstSheet := srcSheet
	if toSheetName != "" {
		dstSheet, ok = w.lookupSheet(toSheetName)
		if !ok {
			return newHostError(ErrUnknownSheet, "unknown sheet %q", toSheetName)
		}
	}

	if err := validateRegion(start, end); err != nil {
		return err
	}

	startVerb := "copy_cells"
	if move {
		startVerb = "move_cells"
	}
	w.logger.Info().Str("sheet", sheetName).Msg(startVerb + " start")

	minCol, minRow, maxCol, maxRow := normalizeRect(start, end)
	dcol := int64(to.Col) - int64(minCol)
	drow := int64(to.Row) - int64(minRow)

	destMaxCol := int64(maxCol) + dcol
	destMaxRow := int64(maxRow) + drow
	destMinCol := int64(minCol) + dcol
	destMinRow := int64(minRow) + drow
	if !validLocation(destMinCol, destMinRow) || !validLocation(destMaxCol, destMaxRow) {
		return newHostError(ErrOutOfGrid, "destination rectangle falls outside the grid")
	}

	type snapshot struct {
		loc  Location
		raw  string
		tree Node
	}
	var toPlace []snapshot
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			c := srcSheet.get(Location{Col: col, Row: row})
			if c == nil || (c.IsNilRaw && c.Type == CellEmpty) {
				continue
			}
			toPlace = append(toPlace, snapshot{loc: c.Loc, raw: c.Raw, tree: c.Tree})
		}
	}

	if move {
		for row := minRow; row <= maxRow; row++ {
			for col := minCol; col <= maxCol; col++ {
				loc := Location{Col: col, Row: row}
				c := srcSheet.get(loc)
				if c == nil {
					continue
				}
				w.setCellContentsInternal(srcSheet, loc, "", true)
			}
		}
	}

	var changed []ChangedCell
	for _, s := range toPlace {
		destCol := uint32(int64(s.loc.Col) + dcol)
		destRow := uint32(int64(s.loc.Row) + drow)
		destLoc := Location{Col: destCol, Row: destRow}

		newRaw := s.raw
		if s.tree != nil {
			shifted := ShiftRefs(s.tree, dcol, drow)
			newRaw = "=" + Reconstruct(shifted)
		}
		changed = append(changed, w.setCellContentsInternal(dstSheet, destLoc, newRaw, false)...)
	}
	verb := "copy_cells"
	if move {
		verb = "move_cells"
	}
	w.logger.Info().Str("sheet", sheetName).Int("cells", len(toPlace)).Msg(verb + " end")
	w.notify(changed)
	return nil
}

// SortRegion implements sort_region (§4.11): validates sortCols (nonzero,
// within width, unique by absolute column), gathers rows, stably sorts by
// the multi-key comparator, and rewrites the region so row k of the result
// occupies the k-th row slot via Shift(0, Δrow).
func (w *Workbook) SortRegion(sheetName string, start, end Location, sortCols []int) error {
	sheet, ok := w.lookupSheet(sheetName)
	if !ok {
		return newHostError(ErrUnknownSheet, "unknown sheet %q", sheetName)
	}
	if err := validateRegion(start, end); err != nil {
		return err
	}

	w.logger.Info().Str("sheet", sheetName).Ints("sort_cols", sortCols).Msg("sort_region start")

	minCol, minRow, maxCol, maxRow := normalizeRect(start, end)
	width := int(maxCol-minCol) + 1

	seen := make(map[int]bool, len(sortCols))
	for _, sc := range sortCols {
		if sc == 0 {
			return newHostError(ErrInvalidSortColumns, "sort column index must be nonzero")
		}
		abs := sc
		if abs < 0 {
			abs = -abs
		}
		if abs > width {
			return newHostError(ErrInvalidSortColumns, "sort column %d out of range for width %d", sc, width)
		}
		if seen[abs] {
			return newHostError(ErrInvalidSortColumns, "sort column %d repeated", sc)
		}
		seen[abs] = true
	}

	type row struct {
		rowNum uint32
		keys   []CellValue
	}
	rows := make([]row, 0, maxRow-minRow+1)
	for r := minRow; r <= maxRow; r++ {
		var keys []CellValue
		for _, sc := range sortCols {
			abs := sc
			if abs < 0 {
				abs = -abs
			}
			col := minCol + uint32(abs) - 1
			c := sheet.get(Location{Col: col, Row: r})
			if c == nil {
				keys = append(keys, Empty)
				continue
			}
			keys = append(keys, c.Value)
		}
		rows = append(rows, row{rowNum: r, keys: keys})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for k, sc := range sortCols {
			cmp := compareForSort(rows[i].keys[k], rows[j].keys[k])
			if sc < 0 {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})

	// Snapshot every source row's cells before writing any destination: rows
	// are a permutation of each other's slots, so writing destRow=k while a
	// later iteration still needs to read source row k would otherwise
	// clobber data before it's read.
	type placement struct {
		destRow uint32
		col     uint32
		raw     string
	}
	var toPlace []placement
	var movedRows []uint32
	for k, r := range rows {
		destRow := minRow + uint32(k)
		if destRow == r.rowNum {
			continue
		}
		movedRows = append(movedRows, r.rowNum)
		drow := int64(destRow) - int64(r.rowNum)
		for col := minCol; col <= maxCol; col++ {
			c := sheet.get(Location{Col: col, Row: r.rowNum})
			if c == nil || (c.IsNilRaw && c.Type == CellEmpty) {
				continue
			}
			newRaw := c.Raw
			if c.Tree != nil {
				shifted := ShiftRefs(c.Tree, 0, drow)
				newRaw = "=" + Reconstruct(shifted)
			}
			toPlace = append(toPlace, placement{destRow: destRow, col: col, raw: newRaw})
		}
	}

	var changed []ChangedCell
	// Clear every moved row's full width before placing, same as MoveCells
	// erases its source rectangle first: a destination column that no moved
	// row writes into must end up Empty, not retain its own stale prior
	// content.
	for _, rowNum := range movedRows {
		for col := minCol; col <= maxCol; col++ {
			changed = append(changed, w.setCellContentsInternal(sheet, Location{Col: col, Row: rowNum}, "", true)...)
		}
	}
	for _, p := range toPlace {
		changed = append(changed, w.setCellContentsInternal(sheet, Location{Col: p.col, Row: p.destRow}, p.raw, false)...)
	}
	w.logger.Info().Str("sheet", sheetName).Int("rows_moved", len(movedRows)).Msg("sort_region end")
	w.notify(changed)
	return nil
}

// compareForSort implements §4.11's sort comparator: the usual cross-type
// ranking from §4.8, but with Empty ranked 1 and Error ranked 2 ahead of
// any value, so non-values consistently sort to one end.
func compareForSort(a, b CellValue) int {
	ra, rb := sortRank(a), sortRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	return compareSameType(a, b)
}
