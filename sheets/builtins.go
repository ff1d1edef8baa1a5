package sheets

import (
	"strings"

	"github.com/shopspring/decimal"
)

// EngineVersion is returned by the VERSION() builtin (§4.8, §9's "global
// mutable state reduces to a version string").
const EngineVersion = "1.0.0"

// builtinFunc implements one function's call semantics (§4.8): it receives
// the evaluation context (for resolving any cell/range argument against the
// current sheet) and the unevaluated argument nodes, since some functions
// treat an argument position specially (IF's branches return verbatim).
type builtinFunc func(ctx *evalContext, args []Node) CellValue

var builtinTable map[string]builtinFunc

func init() {
	builtinTable = map[string]builtinFunc{
		"AND":      fnAnd,
		"OR":       fnOr,
		"XOR":      fnXor,
		"NOT":      fnNot,
		"EXACT":    fnExact,
		"IF":       fnIf,
		"IFERROR":  fnIfError,
		"CHOOSE":   fnChoose,
		"ISBLANK":  fnIsBlank,
		"ISERROR":  fnIsError,
		"VERSION":  fnVersion,
		"INDIRECT": fnIndirect,
		"MIN":      fnMin,
		"MAX":      fnMax,
		"SUM":      fnSum,
		"AVERAGE":  fnAverage,
		"HLOOKUP":  fnHLookup,
		"VLOOKUP":  fnVLookup,
	}
}

func lookupBuiltin(name string) (builtinFunc, bool) {
	fn, ok := builtinTable[strings.ToUpper(name)]
	return fn, ok
}

// coerceBool implements the boolean-context coercion used by AND/OR/XOR/NOT:
// empty → false, bool passes through, a numeric/numeric-string value is
// truthy iff nonzero, anything else (plain text) is a Type error.
func coerceBool(v CellValue) (bool, *ErrorKind) {
	switch v.Type {
	case TypeEmpty:
		return false, nil
	case TypeBool:
		return v.Bool, nil
	case TypeNumber:
		return !v.Number.IsZero(), nil
	case TypeError:
		k := v.Err
		return false, &k
	case TypeText:
		trimmed := strings.TrimSpace(v.Text)
		if decimalPattern.MatchString(trimmed) {
			if d, err := decimal.NewFromString(trimmed); err == nil {
				return !d.IsZero(), nil
			}
		}
		k := ErrType
		return false, &k
	default:
		k := ErrType
		return false, &k
	}
}

// evalScalarArgs evaluates every argument node, flattening any range
// argument into its constituent values, matching §4.8's "a range argument
// is flattened where it appears."
func evalScalarArgs(ctx *evalContext, args []Node) []CellValue {
	var out []CellValue
	for _, a := range args {
		res := ctx.eval(a)
		if res.rng != nil {
			out = append(out, res.rng.flatten()...)
			continue
		}
		out = append(out, res.value)
	}
	return out
}

func fnAnd(ctx *evalContext, args []Node) CellValue {
	return logicalReduce(ctx, args, func(acc, v bool) bool { return acc && v }, true)
}

func fnOr(ctx *evalContext, args []Node) CellValue {
	return logicalReduce(ctx, args, func(acc, v bool) bool { return acc || v }, false)
}

func fnXor(ctx *evalContext, args []Node) CellValue {
	values := evalScalarArgs(ctx, args)
	if errVal, ok := lowestError(values...); ok {
		return errVal
	}
	trues := 0
	for _, v := range values {
		b, errKind := coerceBool(v)
		if errKind != nil {
			return ErrorValue(*errKind, "")
		}
		if b {
			trues++
		}
	}
	return BoolValue(trues%2 == 1)
}

func logicalReduce(ctx *evalContext, args []Node, combine func(acc, v bool) bool, seed bool) CellValue {
	values := evalScalarArgs(ctx, args)
	if errVal, ok := lowestError(values...); ok {
		return errVal
	}
	acc := seed
	for _, v := range values {
		b, errKind := coerceBool(v)
		if errKind != nil {
			return ErrorValue(*errKind, "")
		}
		acc = combine(acc, b)
	}
	return BoolValue(acc)
}

func fnNot(ctx *evalContext, args []Node) CellValue {
	if len(args) != 1 {
		return ErrorValue(ErrType, "NOT takes exactly one argument")
	}
	v := ctx.evalScalar(args[0])
	if v.IsError() {
		return v
	}
	b, errKind := coerceBool(v)
	if errKind != nil {
		return ErrorValue(*errKind, "")
	}
	return BoolValue(!b)
}

// coerceTextForExact treats Empty as "" per §9's resolved open question:
// both operands are coerced independently, not just the first.
func coerceTextForExact(v CellValue) (string, *ErrorKind) {
	if v.Type == TypeError {
		k := v.Err
		return "", &k
	}
	if v.Type == TypeEmpty {
		return "", nil
	}
	return stringifyForConcat(v), nil
}

func fnExact(ctx *evalContext, args []Node) CellValue {
	if len(args) != 2 {
		return ErrorValue(ErrType, "EXACT takes exactly two arguments")
	}
	a := ctx.evalScalar(args[0])
	b := ctx.evalScalar(args[1])
	if errVal, ok := lowestError(a, b); ok {
		return errVal
	}
	at, aerr := coerceTextForExact(a)
	if aerr != nil {
		return ErrorValue(*aerr, "")
	}
	bt, berr := coerceTextForExact(b)
	if berr != nil {
		return ErrorValue(*berr, "")
	}
	return BoolValue(at == bt)
}

// fnIf returns the chosen branch verbatim, including Empty — per §9's
// resolved open question, there is no coercion of an empty branch result
// to 0 or false.
func fnIf(ctx *evalContext, args []Node) CellValue {
	if len(args) < 2 || len(args) > 3 {
		return ErrorValue(ErrType, "IF takes 2 or 3 arguments")
	}
	cond := ctx.evalScalar(args[0])
	if cond.IsError() {
		return cond
	}
	truthy, errKind := coerceBool(cond)
	if errKind != nil {
		return ErrorValue(*errKind, "")
	}
	if truthy {
		return ctx.evalScalar(args[1])
	}
	if len(args) == 3 {
		return ctx.evalScalar(args[2])
	}
	return BoolValue(false)
}

func fnIfError(ctx *evalContext, args []Node) CellValue {
	if len(args) < 1 || len(args) > 2 {
		return ErrorValue(ErrType, "IFERROR takes 1 or 2 arguments")
	}
	v := ctx.evalScalar(args[0])
	if !v.IsError() {
		return v
	}
	if len(args) == 2 {
		return ctx.evalScalar(args[1])
	}
	return TextValue("")
}

func fnChoose(ctx *evalContext, args []Node) CellValue {
	if len(args) < 2 {
		return ErrorValue(ErrType, "CHOOSE takes an index and at least one value")
	}
	idxVal := ctx.evalScalar(args[0])
	if idxVal.IsError() {
		return idxVal
	}
	idxDec, errKind := coerceNumberOK(idxVal)
	if errKind != nil {
		return ErrorValue(*errKind, "")
	}
	if !idxDec.Equal(idxDec.Truncate(0)) || idxDec.Sign() <= 0 {
		return ErrorValue(ErrType, "CHOOSE index must be a positive integer")
	}
	idx := idxDec.IntPart()
	choices := args[1:]
	if idx < 1 || idx > int64(len(choices)) {
		return ErrorValue(ErrType, "CHOOSE index out of range")
	}
	return ctx.evalScalar(choices[idx-1])
}

func fnIsBlank(ctx *evalContext, args []Node) CellValue {
	if len(args) != 1 {
		return ErrorValue(ErrType, "ISBLANK takes exactly one argument")
	}
	v := ctx.evalScalar(args[0])
	return BoolValue(v.IsEmpty())
}

func fnIsError(ctx *evalContext, args []Node) CellValue {
	if len(args) != 1 {
		return ErrorValue(ErrType, "ISERROR takes exactly one argument")
	}
	v := ctx.evalScalar(args[0])
	return BoolValue(v.IsError())
}

func fnVersion(ctx *evalContext, args []Node) CellValue {
	return TextValue(EngineVersion)
}

func fnIndirect(ctx *evalContext, args []Node) CellValue {
	if len(args) != 1 {
		return ErrorValue(ErrType, "INDIRECT takes exactly one argument")
	}
	v := ctx.evalScalar(args[0])
	if v.IsError() {
		return v
	}
	if v.Type != TypeText {
		return ErrorValue(ErrType, "INDIRECT requires a string argument")
	}

	text := v.Text
	sheetName := ""
	hasSheet := false
	if bangIdx := strings.LastIndex(text, "!"); bangIdx >= 0 {
		sheetName = strings.Trim(text[:bangIdx], "'")
		hasSheet = true
		text = text[bangIdx+1:]
	}
	loc, err := ParseLocation(text)
	if err != nil {
		return ErrorValue(ErrBadReference, err.Error())
	}
	return ctx.evalCellRef(sheetName, hasSheet, loc)
}

// numericAggregateArg coerces one scalar for MIN/MAX/SUM/AVERAGE: empties
// are skipped by the caller before this is reached, so here everything
// must resolve to a number.
func numericAggregateArg(v CellValue) (decimal.Decimal, *ErrorKind) {
	return coerceNumberOK(v)
}

func aggregateNumbers(ctx *evalContext, args []Node) ([]decimal.Decimal, *CellValue) {
	values := evalScalarArgs(ctx, args)
	var nums []decimal.Decimal
	for _, v := range values {
		if v.IsEmpty() {
			continue
		}
		if v.IsError() {
			errVal := v
			return nil, &errVal
		}
		d, errKind := numericAggregateArg(v)
		if errKind != nil {
			errVal := ErrorValue(*errKind, "")
			return nil, &errVal
		}
		nums = append(nums, d)
	}
	return nums, nil
}

func fnMin(ctx *evalContext, args []Node) CellValue {
	nums, errVal := aggregateNumbers(ctx, args)
	if errVal != nil {
		return *errVal
	}
	if len(nums) == 0 {
		return NumberValue(decimal.Zero)
	}
	best := nums[0]
	for _, n := range nums[1:] {
		if n.LessThan(best) {
			best = n
		}
	}
	return NumberValue(best)
}

func fnMax(ctx *evalContext, args []Node) CellValue {
	nums, errVal := aggregateNumbers(ctx, args)
	if errVal != nil {
		return *errVal
	}
	if len(nums) == 0 {
		return NumberValue(decimal.Zero)
	}
	best := nums[0]
	for _, n := range nums[1:] {
		if n.GreaterThan(best) {
			best = n
		}
	}
	return NumberValue(best)
}

func fnSum(ctx *evalContext, args []Node) CellValue {
	nums, errVal := aggregateNumbers(ctx, args)
	if errVal != nil {
		return *errVal
	}
	sum := decimal.Zero
	for _, n := range nums {
		sum = sum.Add(n)
	}
	return NumberValue(sum)
}

func fnAverage(ctx *evalContext, args []Node) CellValue {
	nums, errVal := aggregateNumbers(ctx, args)
	if errVal != nil {
		return *errVal
	}
	if len(nums) == 0 {
		return ErrorValue(ErrDivZero, "AVERAGE of no values")
	}
	sum := decimal.Zero
	for _, n := range nums {
		sum = sum.Add(n)
	}
	return NumberValue(sum.Div(decimal.NewFromInt(int64(len(nums)))))
}

// valuesEqualExact implements HLOOKUP/VLOOKUP's "exact match on type and
// value" rule (§4.8): different types never match, even if coercible.
func valuesEqualExact(a, b CellValue) bool {
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
	case TypeEmpty:
		return true
	case TypeError:
		return a.Err == b.Err
	}
	return false
}

func fnHLookup(ctx *evalContext, args []Node) CellValue {
	return lookupImpl(ctx, args, true)
}

func fnVLookup(ctx *evalContext, args []Node) CellValue {
	return lookupImpl(ctx, args, false)
}

func lookupImpl(ctx *evalContext, args []Node, horizontal bool) CellValue {
	if len(args) != 3 {
		return ErrorValue(ErrType, "lookup takes exactly three arguments")
	}
	key := ctx.evalScalar(args[0])
	if key.IsError() {
		return key
	}

	rangeRes := ctx.eval(args[1])
	if rangeRes.rng == nil {
		return ErrorValue(ErrType, "lookup's second argument must be a range")
	}

	idxVal := ctx.evalScalar(args[2])
	if idxVal.IsError() {
		return idxVal
	}
	idxDec, errKind := coerceNumberOK(idxVal)
	if errKind != nil {
		return ErrorValue(*errKind, "")
	}
	idx := int(idxDec.IntPart())

	rows := rangeRes.rng.rows
	if horizontal {
		// Scan the first row for the key; return row idx (1-based) of that
		// column.
		if len(rows) == 0 {
			return ErrorValue(ErrType, "empty range")
		}
		first := rows[0]
		for col, v := range first {
			if !valuesEqualExact(v, key) {
				continue
			}
			if idx < 1 || idx > len(rows) {
				return ErrorValue(ErrType, "lookup index out of range")
			}
			return rows[idx-1][col]
		}
		return ErrorValue(ErrType, "lookup key not found")
	}

	// Vertical: scan the first column for the key; return column idx
	// (1-based) of that row.
	for row, line := range rows {
		if len(line) == 0 {
			continue
		}
		if !valuesEqualExact(line[0], key) {
			continue
		}
		if idx < 1 || idx > len(line) {
			return ErrorValue(ErrType, "lookup index out of range")
		}
		return rows[row][idx-1]
	}
	return ErrorValue(ErrType, "lookup key not found")
}
