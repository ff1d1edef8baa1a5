package sheets

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func locMust(t *testing.T, text string) Location {
	t.Helper()
	loc, err := ParseLocation(text)
	require.NoError(t, err)
	return loc
}

func TestSheetExtentEmpty(t *testing.T) {
	s := newSheet(1, "Sheet1")
	col, row := s.Extent()
	assert.Equal(t, uint32(0), col)
	assert.Equal(t, uint32(0), row)
}

func TestSheetExtentTracksFarthestOccupiedCell(t *testing.T) {
	s := newSheet(1, "Sheet1")
	s.getOrCreate(locMust(t, "B2"))
	s.getOrCreate(locMust(t, "D4"))
	col, row := s.Extent()
	assert.Equal(t, uint32(4), col)
	assert.Equal(t, uint32(4), row)
}

func TestSheetExtentShrinksWhenFarthestCellVacated(t *testing.T) {
	s := newSheet(1, "Sheet1")
	far := s.getOrCreate(locMust(t, "D4"))
	s.getOrCreate(locMust(t, "B2"))

	s.deleteIfOrphanedPlaceholder(far)

	col, row := s.Extent()
	assert.Equal(t, uint32(2), col)
	assert.Equal(t, uint32(2), row)
}

func TestSheetGetOrCreateIsIdempotent(t *testing.T) {
	s := newSheet(1, "Sheet1")
	loc := locMust(t, "A1")
	a := s.getOrCreate(loc)
	b := s.getOrCreate(loc)
	assert.Same(t, a, b)
}

func TestSheetDeleteIfOrphanedPlaceholderKeepsCellsWithChildren(t *testing.T) {
	s := newSheet(1, "Sheet1")
	loc := locMust(t, "A1")
	c := s.getOrCreate(loc)
	c.Children[CellAddress{SheetID: 1, Col: 2, Row: 2}] = struct{}{}

	s.deleteIfOrphanedPlaceholder(c)
	assert.NotNil(t, s.get(loc))
}

func TestMaxHeapOrdering(t *testing.T) {
	h := newMaxHeap()
	for _, v := range []uint32{3, 1, 4, 1, 5, 9} {
		heap.Push(h, v)
	}
	var popped []uint32
	for h.Len() > 0 {
		popped = append(popped, heap.Pop(h).(uint32))
	}
	assert.Equal(t, []uint32{9, 5, 4, 3, 1, 1}, popped)
}
