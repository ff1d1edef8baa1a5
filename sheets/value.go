package sheets

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ErrorKind enumerates the cell-value error taxonomy (spec §3/§7). The
// integer rank is meaningful: when several errors flow into one operator,
// the lowest-ranked one wins (§4.8, §7).
type ErrorKind int

const (
	ErrParse ErrorKind = iota + 1
	ErrCircular
	ErrBadReference
	ErrBadName
	ErrType
	ErrDivZero
)

var errorKindLiterals = map[ErrorKind]string{
	ErrParse:        "#ERROR!",
	ErrCircular:     "#CIRCREF!",
	ErrBadReference: "#REF!",
	ErrBadName:      "#NAME?",
	ErrType:         "#VALUE!",
	ErrDivZero:      "#DIV/0!",
}

var literalToErrorKind = func() map[string]ErrorKind {
	m := make(map[string]ErrorKind, len(errorKindLiterals))
	for k, v := range errorKindLiterals {
		m[v] = k
	}
	return m
}()

// String renders the error kind as its canonical formula literal, e.g.
// "#DIV/0!".
func (k ErrorKind) String() string {
	return errorKindLiterals[k]
}

// parseErrorLiteral recognizes one of the six error literals, case
// insensitively, after the caller has already trimmed the input.
func parseErrorLiteral(trimmed string) (ErrorKind, bool) {
	kind, ok := literalToErrorKind[strings.ToUpper(trimmed)]
	return kind, ok
}

// ValueType tags the variant held by a CellValue.
type ValueType int

const (
	TypeEmpty ValueType = iota
	TypeNumber
	TypeText
	TypeBool
	TypeError
)

// CellValue is the tagged union described in spec §3: Empty, Number, Text,
// Bool, or Error(kind, detail). Exactly one of Number/Text/Bool/Error is
// meaningful, selected by Type.
type CellValue struct {
	Type   ValueType
	Number decimal.Decimal
	Text   string
	Bool   bool
	Err    ErrorKind
	Detail string
}

// Empty is the canonical empty cell value.
var Empty = CellValue{Type: TypeEmpty}

// NumberValue wraps a decimal as a CellValue, normalizing trailing zeros.
func NumberValue(d decimal.Decimal) CellValue {
	return CellValue{Type: TypeNumber, Number: normalizeDecimal(d)}
}

// TextValue wraps a string as a CellValue.
func TextValue(s string) CellValue {
	return CellValue{Type: TypeText, Text: s}
}

// BoolValue wraps a boolean as a CellValue.
func BoolValue(b bool) CellValue {
	return CellValue{Type: TypeBool, Bool: b}
}

// ErrorValue constructs an error CellValue.
func ErrorValue(kind ErrorKind, detail string) CellValue {
	return CellValue{Type: TypeError, Err: kind, Detail: detail}
}

// normalizeDecimal strips trailing zeros to the right of the decimal point
// (spec §4.2). shopspring/decimal keeps whatever exponent an arithmetic
// operation produced; its String() already omits trailing fractional
// zeros, and every result that becomes a CellValue also passes through
// here, which re-parses that trimmed text when it still has a fraction.
func normalizeDecimal(d decimal.Decimal) decimal.Decimal {
	s := d.String()
	if !strings.ContainsRune(s, '.') {
		return d
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	normalized, err := decimal.NewFromString(s)
	if err != nil {
		return d
	}
	return normalized
}

// IsEmpty reports whether v is the Empty variant (spec §4.8 ISBLANK).
func (v CellValue) IsEmpty() bool {
	return v.Type == TypeEmpty
}

// IsError reports whether v is any Error variant.
func (v CellValue) IsError() bool {
	return v.Type == TypeError
}

// Display renders v the way a cell would show it: booleans uppercase,
// numbers with no trailing zeros, errors as their literal, empty as "".
func (v CellValue) Display() string {
	switch v.Type {
	case TypeEmpty:
		return ""
	case TypeNumber:
		return v.Number.String()
	case TypeText:
		return v.Text
	case TypeBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case TypeError:
		return v.Err.String()
	default:
		return ""
	}
}

// typeRank implements the cross-type comparison ranking from §4.8
// (Number < Text < Bool).
func typeRank(v CellValue) int {
	switch v.Type {
	case TypeNumber:
		return 0
	case TypeText:
		return 1
	case TypeBool:
		return 2
	default:
		return 3
	}
}

// sortRank implements §4.11's sort-specific ranking, where Empty sorts
// lowest (1) and Error next (2), ahead of any value.
func sortRank(v CellValue) int {
	switch v.Type {
	case TypeEmpty:
		return 1
	case TypeError:
		return 2
	case TypeNumber:
		return 3
	case TypeText:
		return 4
	case TypeBool:
		return 5
	default:
		return 6
	}
}
