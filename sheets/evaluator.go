package sheets

import (
	"strings"

	"github.com/shopspring/decimal"
)

// evalContext carries the state threaded through one evaluation of a parse
// tree (§4.8): the workbook being read, the sheet a bare reference resolves
// against, and the set of sheet names that turned out to be missing, which
// the scheduler folds back into invalidSheetRefs after the walk (§4.9 step
// 4) instead of mutating cell state mid-evaluation.
type evalContext struct {
	wb            *Workbook
	currentSheet  *Sheet
	missingSheets map[string]struct{}
}

// rangeValues is the lazy-ish flattened result of evaluating a RangeNode:
// materialized eagerly here (workbooks are small enough, §9) but kept
// distinct from CellValue so ordinary operator evaluation can reject it
// with a Type error outside a function argument position.
type rangeValues struct {
	rows [][]CellValue
}

func (r rangeValues) flatten() []CellValue {
	var out []CellValue
	for _, row := range r.rows {
		out = append(out, row...)
	}
	return out
}

// evalResult is either a CellValue or a rangeValues; exactly one is set.
type evalResult struct {
	value CellValue
	rng   *rangeValues
}

func scalarResult(v CellValue) evalResult { return evalResult{value: v} }

// Evaluate walks tree against the workbook, resolving unqualified
// references against currentSheet (§4.8). It never returns a Go error:
// every failure mode the grammar and evaluator can hit is represented as an
// Error CellValue, per §7.
func Evaluate(wb *Workbook, currentSheet *Sheet, tree Node) CellValue {
	ctx := &evalContext{wb: wb, currentSheet: currentSheet, missingSheets: make(map[string]struct{})}
	res := ctx.eval(tree)
	if res.rng != nil {
		return ErrorValue(ErrParse, "range literal outside a function argument is rejected by the grammar")
	}
	return res.value
}

func (ctx *evalContext) eval(n Node) evalResult {
	switch t := n.(type) {
	case *NumberLit:
		d, err := decimal.NewFromString(t.Text)
		if err != nil {
			return scalarResult(ErrorValue(ErrParse, err.Error()))
		}
		return scalarResult(NumberValue(d))
	case *StringLit:
		return scalarResult(TextValue(t.Value))
	case *BoolLit:
		return scalarResult(BoolValue(t.Value))
	case *ErrorLit:
		return scalarResult(ErrorValue(t.Kind, ""))
	case *CellRefNode:
		return scalarResult(ctx.evalCellRef(t.Sheet, t.HasSheet, t.Loc))
	case *RangeNode:
		return evalResult{rng: ctx.evalRange(t.Sheet, t.HasSheet, t.Start, t.End)}
	case *UnaryNode:
		return scalarResult(ctx.evalUnary(t))
	case *BinaryNode:
		return scalarResult(ctx.evalBinary(t))
	case *CallNode:
		return scalarResult(ctx.evalCall(t))
	}
	return scalarResult(ErrorValue(ErrParse, "unrecognized node"))
}

// evalScalar evaluates n and coerces a range result to a Type error, for use
// inside a function's argument list when that function doesn't accept a
// range in that position (§4.8: "any other context produces Type for a
// range argument").
func (ctx *evalContext) evalScalar(n Node) CellValue {
	res := ctx.eval(n)
	if res.rng != nil {
		return ErrorValue(ErrType, "range not allowed here")
	}
	return res.value
}

// evalOperand evaluates n and coerces a range result to a Parse error, for
// use as a unary/binary operator's operand — a range literal entirely
// outside a function-call argument position is rejected by the grammar,
// not merely type-mismatched (§4.8: "a range literal outside a function is
// Parse").
func (ctx *evalContext) evalOperand(n Node) CellValue {
	res := ctx.eval(n)
	if res.rng != nil {
		return ErrorValue(ErrParse, "range not allowed outside a function call")
	}
	return res.value
}

func (ctx *evalContext) resolveSheet(name string, hasSheet bool) (*Sheet, string, bool) {
	target := ctx.currentSheet.Name()
	if hasSheet {
		target = name
	}
	sheet, ok := ctx.wb.lookupSheet(target)
	return sheet, target, ok
}

func (ctx *evalContext) evalCellRef(sheetName string, hasSheet bool, loc Location) CellValue {
	sheet, target, ok := ctx.resolveSheet(sheetName, hasSheet)
	if !ok {
		ctx.missingSheets[target] = struct{}{}
		return ErrorValue(ErrBadReference, "unknown sheet "+target)
	}
	cell := sheet.get(loc)
	if cell == nil {
		return Empty
	}
	return cell.Value
}

func (ctx *evalContext) evalRange(sheetName string, hasSheet bool, start, end Location) *rangeValues {
	sheet, target, ok := ctx.resolveSheet(sheetName, hasSheet)
	if !ok {
		ctx.missingSheets[target] = struct{}{}
		return &rangeValues{rows: [][]CellValue{{ErrorValue(ErrBadReference, "unknown sheet "+target)}}}
	}
	var rows [][]CellValue
	for row := start.Row; row <= end.Row; row++ {
		var line []CellValue
		for col := start.Col; col <= end.Col; col++ {
			cell := sheet.get(Location{Col: col, Row: row})
			if cell == nil {
				line = append(line, Empty)
				continue
			}
			line = append(line, cell.Value)
		}
		rows = append(rows, line)
	}
	return &rangeValues{rows: rows}
}

// coerceNumberOK implements the arithmetic-context coercion rules of
// §4.2/§4.8: empty → 0, a numeric-looking trimmed string → that number,
// anything else is a Type error. Errors propagate by ErrorKind rank.
func coerceNumberOK(v CellValue) (decimal.Decimal, *ErrorKind) {
	switch v.Type {
	case TypeEmpty:
		return decimal.Zero, nil
	case TypeNumber:
		return v.Number, nil
	case TypeText:
		trimmed := strings.TrimSpace(v.Text)
		if decimalPattern.MatchString(trimmed) {
			if d, err := decimal.NewFromString(trimmed); err == nil {
				return d, nil
			}
		}
		k := ErrType
		return decimal.Zero, &k
	case TypeError:
		k := v.Err
		return decimal.Zero, &k
	default:
		k := ErrType
		return decimal.Zero, &k
	}
}

func (ctx *evalContext) evalUnary(t *UnaryNode) CellValue {
	operand := ctx.evalOperand(t.Operand)
	if operand.IsError() {
		return operand
	}
	n, errKind := coerceNumberOK(operand)
	if errKind != nil {
		return ErrorValue(*errKind, "")
	}
	if t.Op == TokMinus {
		n = n.Neg()
	}
	return NumberValue(n)
}

// lowestError returns the value with the lowest-ranked ErrorKind among any
// of the given values that are errors, or false if none are errors (§7).
func lowestError(values ...CellValue) (CellValue, bool) {
	var best CellValue
	found := false
	for _, v := range values {
		if !v.IsError() {
			continue
		}
		if !found || v.Err < best.Err {
			best = v
			found = true
		}
	}
	return best, found
}

func (ctx *evalContext) evalBinary(t *BinaryNode) CellValue {
	left := ctx.evalOperand(t.Left)
	right := ctx.evalOperand(t.Right)

	if errVal, ok := lowestError(left, right); ok {
		return errVal
	}

	switch t.Op {
	case TokPlus, TokMinus, TokStar, TokSlash:
		return evalArithmetic(t.Op, left, right)
	case TokAmp:
		return evalConcat(left, right)
	default:
		return evalComparison(t.Op, left, right)
	}
}

func evalArithmetic(op TokenType, left, right CellValue) CellValue {
	l, lerr := coerceNumberOK(left)
	if lerr != nil {
		return ErrorValue(*lerr, "")
	}
	r, rerr := coerceNumberOK(right)
	if rerr != nil {
		return ErrorValue(*rerr, "")
	}
	switch op {
	case TokPlus:
		return NumberValue(l.Add(r))
	case TokMinus:
		return NumberValue(l.Sub(r))
	case TokStar:
		return NumberValue(l.Mul(r))
	case TokSlash:
		if r.IsZero() {
			return ErrorValue(ErrDivZero, "")
		}
		return NumberValue(l.Div(r))
	}
	return ErrorValue(ErrParse, "unknown arithmetic operator")
}

// stringifyForConcat implements §4.8's concatenation coercion: empty → "",
// booleans render TRUE/FALSE, numbers use their canonical string form,
// strings pass through.
func stringifyForConcat(v CellValue) string {
	switch v.Type {
	case TypeEmpty:
		return ""
	case TypeBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case TypeNumber:
		return v.Number.String()
	case TypeText:
		return v.Text
	default:
		return ""
	}
}

func evalConcat(left, right CellValue) CellValue {
	return TextValue(stringifyForConcat(left) + stringifyForConcat(right))
}

// evalComparison implements §4.8's cross-type comparison rules: empty vs
// empty is equal; empty vs typed takes the typed side's zero value; within
// a type, numbers and booleans compare by value and strings compare
// case-insensitively; across types the Number < Text < Bool ranking
// decides every comparison including ordering operators.
func evalComparison(op TokenType, left, right CellValue) CellValue {
	left, right = coerceEmptyForComparison(left, right)

	var cmp int
	if left.Type == right.Type {
		cmp = compareSameType(left, right)
	} else {
		lr, rr := typeRank(left), typeRank(right)
		if lr < rr {
			cmp = -1
		} else {
			cmp = 1
		}
	}

	result := false
	switch op {
	case TokEq, TokEqEq:
		result = cmp == 0
	case TokNe, TokNe2:
		result = cmp != 0
	case TokLt:
		result = cmp < 0
	case TokGt:
		result = cmp > 0
	case TokLe:
		result = cmp <= 0
	case TokGe:
		result = cmp >= 0
	}
	return BoolValue(result)
}

func coerceEmptyForComparison(left, right CellValue) (CellValue, CellValue) {
	if left.Type == TypeEmpty && right.Type == TypeEmpty {
		return left, right
	}
	if left.Type == TypeEmpty {
		left = zeroValueLike(right)
	}
	if right.Type == TypeEmpty {
		right = zeroValueLike(left)
	}
	return left, right
}

func zeroValueLike(v CellValue) CellValue {
	switch v.Type {
	case TypeNumber:
		return NumberValue(decimal.Zero)
	case TypeBool:
		return BoolValue(false)
	default:
		return TextValue("")
	}
}

func compareSameType(left, right CellValue) int {
	switch left.Type {
	case TypeNumber:
		return left.Number.Cmp(right.Number)
	case TypeText:
		l, r := strings.ToLower(left.Text), strings.ToLower(right.Text)
		return strings.Compare(l, r)
	case TypeBool:
		if left.Bool == right.Bool {
			return 0
		}
		if !left.Bool {
			return -1
		}
		return 1
	default:
		return 0
	}
}

func (ctx *evalContext) evalCall(t *CallNode) CellValue {
	fn, ok := lookupBuiltin(t.Name)
	if !ok {
		return ErrorValue(ErrBadName, "unknown function "+t.Name)
	}
	return fn(ctx, t.Args)
}

