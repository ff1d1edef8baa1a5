package sheets

import "container/heap"

// Sheet is a single named sheet within a Workbook (§3): a case-preserving
// display name, a sparse cell map, and incrementally maintained extent
// bookkeeping. A Sheet's id is immutable for its lifetime — distinct from
// its display position in the Workbook's ordered list, which move_sheet can
// change freely without disturbing any CellAddress referencing this sheet.
type Sheet struct {
	id   uint64
	name string

	cells map[uint64]*Cell // key: packed (col,row)

	colCounts map[uint32]int
	rowCounts map[uint32]int
	colHeap   *maxHeap
	rowHeap   *maxHeap
}

func packLoc(col, row uint32) uint64 {
	return uint64(col)<<32 | uint64(row)
}

func newSheet(id uint64, name string) *Sheet {
	return &Sheet{
		id:        id,
		name:      name,
		cells:     make(map[uint64]*Cell),
		colCounts: make(map[uint32]int),
		rowCounts: make(map[uint32]int),
		colHeap:   newMaxHeap(),
		rowHeap:   newMaxHeap(),
	}
}

// Name returns the sheet's current display name.
func (s *Sheet) Name() string { return s.name }

// get returns the cell at loc, or nil if the sheet has no entry there.
func (s *Sheet) get(loc Location) *Cell {
	return s.cells[packLoc(loc.Col, loc.Row)]
}

// getOrCreate returns the cell at loc, materializing an Empty placeholder
// if none exists yet (used when adopting a dependency edge, §4.6).
func (s *Sheet) getOrCreate(loc Location) *Cell {
	key := packLoc(loc.Col, loc.Row)
	if c, ok := s.cells[key]; ok {
		return c
	}
	c := newCell(s, loc)
	s.cells[key] = c
	s.occupy(loc)
	return c
}

// occupy records loc as occupied for extent tracking.
func (s *Sheet) occupy(loc Location) {
	if s.colCounts[loc.Col] == 0 {
		heap.Push(s.colHeap, loc.Col)
	}
	s.colCounts[loc.Col]++
	if s.rowCounts[loc.Row] == 0 {
		heap.Push(s.rowHeap, loc.Row)
	}
	s.rowCounts[loc.Row]++
}

// vacate decrements occupancy for loc. The heaps are left with the stale
// entry; extent() lazily skips entries whose counter has reached zero
// (§4.5) rather than paying for a heap deletion here.
func (s *Sheet) vacate(loc Location) {
	if s.colCounts[loc.Col] > 0 {
		s.colCounts[loc.Col]--
	}
	if s.rowCounts[loc.Row] > 0 {
		s.rowCounts[loc.Row]--
	}
}

// deleteIfOrphanedPlaceholder removes c from the sheet if it is both empty
// and childless (§4.5's physical-deletion rule).
func (s *Sheet) deleteIfOrphanedPlaceholder(c *Cell) {
	if !c.isEmptyPlaceholder() {
		return
	}
	key := packLoc(c.Loc.Col, c.Loc.Row)
	delete(s.cells, key)
	s.vacate(c.Loc)
}

// Extent returns (maxCol, maxRow) over non-empty cells, (0,0) if the sheet
// is empty (§3 invariant 4).
func (s *Sheet) Extent() (uint32, uint32) {
	var maxCol, maxRow uint32
	for s.colHeap.Len() > 0 {
		top := (*s.colHeap)[0]
		if s.colCounts[top] > 0 {
			maxCol = top
			break
		}
		heap.Pop(s.colHeap)
	}
	for s.rowHeap.Len() > 0 {
		top := (*s.rowHeap)[0]
		if s.rowCounts[top] > 0 {
			maxRow = top
			break
		}
		heap.Pop(s.rowHeap)
	}
	return maxCol, maxRow
}

// cellAddresses returns every live cell's address, in no particular order;
// used by structural ops that need to enumerate a whole sheet (del_sheet,
// copy_sheet).
func (s *Sheet) cellAddresses() []CellAddress {
	out := make([]CellAddress, 0, len(s.cells))
	for _, c := range s.cells {
		out = append(out, c.Address())
	}
	return out
}

// maxHeap is a max-heap of uint32 column/row indices, used by Extent for
// O(log n) incremental extent maintenance (§3, §4.5). Stale entries (whose
// occupancy counter has dropped to zero) are left in place and skipped
// lazily rather than removed eagerly.
type maxHeap []uint32

func newMaxHeap() *maxHeap {
	h := make(maxHeap, 0)
	return &h
}

func (h maxHeap) Len() int            { return len(h) }
func (h maxHeap) Less(i, j int) bool  { return h[i] > h[j] }
func (h maxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x any)         { *h = append(*h, x.(uint32)) }
func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
