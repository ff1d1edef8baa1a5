package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewireCellCreatesSymmetricEdges(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)

	mustSet(t, w, "Sheet1", "A1", "1")
	mustSet(t, w, "Sheet1", "B1", "=A1+1")

	sheet, _ := w.lookupSheet("Sheet1")
	a1 := sheet.get(locMust(t, "A1"))
	b1 := sheet.get(locMust(t, "B1"))

	_, aHasChild := a1.Children[b1.Address()]
	assert.True(t, aHasChild)
	_, bHasParent := b1.Parents[a1.Address()]
	assert.True(t, bHasParent)
}

func TestRewireCellDropsStaleEdgesOnReassignment(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)

	mustSet(t, w, "Sheet1", "A1", "1")
	mustSet(t, w, "Sheet1", "B1", "=A1")
	mustSet(t, w, "Sheet1", "B1", "5")

	sheet, _ := w.lookupSheet("Sheet1")
	a1 := sheet.get(locMust(t, "A1"))
	b1 := sheet.get(locMust(t, "B1"))
	assert.Len(t, b1.Parents, 0)
	_, stillChild := a1.Children[b1.Address()]
	assert.False(t, stillChild)
}

func TestRewireCellRangeExpandsToPerCellEdges(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)

	mustSet(t, w, "Sheet1", "C1", "=SUM(A1:A3)")

	sheet, _ := w.lookupSheet("Sheet1")
	c1 := sheet.get(locMust(t, "C1"))
	assert.Len(t, c1.Parents, 3)
}

func TestRewireCellUnresolvedSheetMarksOrphan(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)

	mustSet(t, w, "Sheet1", "A1", "=Ghost!A1")

	sheet, _ := w.lookupSheet("Sheet1")
	a1 := sheet.get(locMust(t, "A1"))
	assert.True(t, a1.IsOrphan())
	_, ok := w.orphans[a1.Address()]
	assert.True(t, ok)
}

func TestAdoptEdgeSelfReferenceIsImmediatelyCircular(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)

	mustSet(t, w, "Sheet1", "A1", "=A1")
	v := valueOf(t, w, "Sheet1", "A1")
	assert.Equal(t, ErrCircular, v.Err)
}
