package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSheetAutoGeneratesName(t *testing.T) {
	w := NewWorkbook()
	_, name, err := w.NewSheet("")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", name)

	_, name2, err := w.NewSheet("")
	require.NoError(t, err)
	assert.Equal(t, "Sheet2", name2)
}

func TestNewSheetRejectsDuplicateName(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)
	_, _, err = w.NewSheet("Sheet1")
	assert.Error(t, err)
}

func TestNewSheetResolvesExistingOrphans(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)
	mustSet(t, w, "Sheet1", "A1", "=Other!A1")

	v := valueOf(t, w, "Sheet1", "A1")
	assert.Equal(t, ErrBadReference, v.Err)

	_, _, err = w.NewSheet("Other")
	require.NoError(t, err)
	mustSet(t, w, "Other", "A1", "99")

	v2 := valueOf(t, w, "Sheet1", "A1")
	assert.Equal(t, "99", v2.Number.String())
}

func TestDelSheetPropagatesBadReferenceAndNotifies(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)
	_, _, err = w.NewSheet("Sheet2")
	require.NoError(t, err)

	mustSet(t, w, "Sheet2", "A1", "1")
	mustSet(t, w, "Sheet1", "A1", "=Sheet2!A1")

	var got []ChangedCell
	w.NotifyCellsChanged(func(wb *Workbook, changed []ChangedCell) { got = append(got, changed...) })

	require.NoError(t, w.DelSheet("Sheet2"))

	v := valueOf(t, w, "Sheet1", "A1")
	assert.Equal(t, ErrBadReference, v.Err)

	found := false
	for _, c := range got {
		if c.Sheet == "Sheet1" && StringifyLocation(c.Loc, false) == "a1" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDelSheetPropagatesBadReferenceFromEmptyPlaceholderWithChildren(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)
	_, _, err = w.NewSheet("Sheet2")
	require.NoError(t, err)

	// Sheet2!A1 is never written directly, but Sheet1!A1 referencing it
	// creates a live Empty placeholder with a cross-sheet child.
	mustSet(t, w, "Sheet1", "A1", "=Sheet2!A1")
	v := valueOf(t, w, "Sheet1", "A1")
	require.Equal(t, TypeEmpty, v.Type)

	require.NoError(t, w.DelSheet("Sheet2"))

	v2 := valueOf(t, w, "Sheet1", "A1")
	assert.Equal(t, ErrBadReference, v2.Err)
}

func TestRenameSheetRewritesReferencesAndIsIdempotent(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)
	_, _, err = w.NewSheet("Sheet2")
	require.NoError(t, err)
	mustSet(t, w, "Sheet2", "A1", "1")
	mustSet(t, w, "Sheet1", "A1", "=Sheet2!A1")

	require.NoError(t, w.RenameSheet("Sheet2", "Renamed"))
	contents, err := w.GetCellContents("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "=Renamed!a1", contents)

	require.NoError(t, w.RenameSheet("Renamed", "Renamed"))
	contents2, err := w.GetCellContents("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, contents, contents2)
}

func TestMoveSheetReordersDisplayList(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("A")
	require.NoError(t, err)
	_, _, err = w.NewSheet("B")
	require.NoError(t, err)
	_, _, err = w.NewSheet("C")
	require.NoError(t, err)

	require.NoError(t, w.MoveSheet("C", 0))
	assert.Equal(t, []string{"C", "A", "B"}, w.ListSheets())

	require.NoError(t, w.MoveSheet("C", 2))
	assert.Equal(t, []string{"A", "B", "C"}, w.ListSheets())
}

func TestCopySheetDuplicatesContentsUnderSynthesizedName(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)
	mustSet(t, w, "Sheet1", "A1", "42")

	_, newName, err := w.CopySheet("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1_1", newName)

	v, err := w.GetCellValue(newName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "42", v.Number.String())
}

func TestUnknownSheetOperationsReturnHostError(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.GetSheetExtent("Nope")
	assert.Error(t, err)

	err = w.SetCellContents("Nope", "A1", "1", false)
	assert.Error(t, err)

	err = w.DelSheet("Nope")
	assert.Error(t, err)
}
