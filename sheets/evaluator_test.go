package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSet(t *testing.T, w *Workbook, sheet, loc, raw string) {
	t.Helper()
	require.NoError(t, w.SetCellContents(sheet, loc, raw, false))
}

func valueOf(t *testing.T, w *Workbook, sheet, loc string) CellValue {
	t.Helper()
	v, err := w.GetCellValue(sheet, loc)
	require.NoError(t, err)
	return v
}

func TestEvaluateBasicArithmeticFormula(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)

	mustSet(t, w, "Sheet1", "A1", "1")
	mustSet(t, w, "Sheet1", "A2", "=A1+1")

	v := valueOf(t, w, "Sheet1", "A2")
	assert.Equal(t, TypeNumber, v.Type)
	assert.Equal(t, "2", v.Number.String())
}

func TestEvaluateRangeSumSkipsEmpties(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)

	mustSet(t, w, "Sheet1", "A1", "1")
	mustSet(t, w, "Sheet1", "A3", "3")
	mustSet(t, w, "Sheet1", "B1", "=SUM(A1:A3)")

	v := valueOf(t, w, "Sheet1", "B1")
	assert.Equal(t, "4", v.Number.String())
}

func TestEvaluateAverageOfEmptyRangeDivZero(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)

	mustSet(t, w, "Sheet1", "A1", "=AVERAGE(B1:B5)")
	v := valueOf(t, w, "Sheet1", "A1")
	assert.True(t, v.IsError())
	assert.Equal(t, ErrDivZero, v.Err)
}

func TestEvaluateBareRangeAtTopLevelIsParseError(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)

	mustSet(t, w, "Sheet1", "A1", "1")
	mustSet(t, w, "Sheet1", "B1", "2")
	mustSet(t, w, "Sheet1", "C1", "=A1:B1")

	v := valueOf(t, w, "Sheet1", "C1")
	assert.True(t, v.IsError())
	assert.Equal(t, ErrParse, v.Err)
}

func TestEvaluateRangeAsOperatorOperandIsParseError(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)

	mustSet(t, w, "Sheet1", "A1", "1")
	mustSet(t, w, "Sheet1", "B1", "2")
	mustSet(t, w, "Sheet1", "C1", "=A1:B1+1")

	v := valueOf(t, w, "Sheet1", "C1")
	assert.True(t, v.IsError())
	assert.Equal(t, ErrParse, v.Err)
}

func TestEvaluateDivideByZero(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)
	mustSet(t, w, "Sheet1", "A1", "=1/0")
	v := valueOf(t, w, "Sheet1", "A1")
	assert.Equal(t, ErrDivZero, v.Err)
}

func TestEvaluateStringConcat(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)
	mustSet(t, w, "Sheet1", "A1", `="foo"&"bar"`)
	v := valueOf(t, w, "Sheet1", "A1")
	assert.Equal(t, "foobar", v.Text)
}

func TestEvaluateComparisonCrossType(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)
	mustSet(t, w, "Sheet1", "A1", `=1<"a"`)
	v := valueOf(t, w, "Sheet1", "A1")
	assert.True(t, v.Bool)
}

func TestEvaluateUnresolvedSheetYieldsBadReference(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)
	mustSet(t, w, "Sheet1", "A1", "=Missing!A1")
	v := valueOf(t, w, "Sheet1", "A1")
	assert.Equal(t, ErrBadReference, v.Err)
}

func TestEvaluateLowestErrorRankWins(t *testing.T) {
	w := NewWorkbook()
	_, _, err := w.NewSheet("Sheet1")
	require.NoError(t, err)
	mustSet(t, w, "Sheet1", "A1", "#VALUE!")
	mustSet(t, w, "Sheet1", "A2", "=Missing!A1+A1")
	v := valueOf(t, w, "Sheet1", "A2")
	assert.Equal(t, ErrBadReference, v.Err)
}
