package sheets

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// CellType tags how raw cell contents were classified (§4.4).
type CellType int

const (
	CellEmpty CellType = iota
	CellText
	CellFormula
	CellErrorLiteral
	CellNumber
	CellBool
)

// decimalPattern is the §4.4 regex for a bare numeric literal: optional
// sign, then either digits with an optional fractional part, or a bare
// fractional part.
var decimalPattern = regexp.MustCompile(`^[+-]?((\d+(\.\d*)?)|(\.\d+))$`)

// Classified is the result of running the literal classifier over raw cell
// contents: the resolved type, the value it settles to immediately (for
// every type except Formula, whose value instead comes from evaluation),
// and — for formulas — the parsed tree (nil on parse failure).
type Classified struct {
	Type  CellType
	Value CellValue
	Tree  Node
	// Quoted marks a CellText that was introduced with a leading apostrophe
	// (§4.4). The apostrophe must be preserved in the cell's canonical
	// contents so that a string which would otherwise reclassify as a
	// number/bool/formula/error-literal round-trips as text (§8 invariant 7).
	Quoted bool
}

// Classify implements §4.4 exactly, given the raw contents as typed by the
// user (nil is represented by the caller passing "" with isNil=true, since
// Go has no null string).
func Classify(raw string, isNil bool) Classified {
	if isNil || strings.TrimSpace(raw) == "" {
		return Classified{Type: CellEmpty, Value: Empty}
	}

	if strings.HasPrefix(raw, "'") {
		text := raw[1:]
		return Classified{Type: CellText, Value: TextValue(text), Quoted: true}
	}

	leftTrimmed := strings.TrimLeft(raw, " \t\r\n")
	if strings.HasPrefix(leftTrimmed, "=") {
		expr := leftTrimmed[1:]
		tree, err := ParseFormula(expr)
		if err != nil {
			return Classified{Type: CellFormula, Value: ErrorValue(ErrParse, err.Error())}
		}
		return Classified{Type: CellFormula, Tree: tree}
	}

	trimmed := strings.TrimSpace(raw)

	if kind, ok := parseErrorLiteral(trimmed); ok {
		return Classified{Type: CellErrorLiteral, Value: ErrorValue(kind, "")}
	}

	if decimalPattern.MatchString(trimmed) {
		d, err := decimal.NewFromString(trimmed)
		if err == nil {
			return Classified{Type: CellNumber, Value: NumberValue(d)}
		}
	}

	upper := strings.ToUpper(trimmed)
	if upper == "TRUE" {
		return Classified{Type: CellBool, Value: BoolValue(true)}
	}
	if upper == "FALSE" {
		return Classified{Type: CellBool, Value: BoolValue(false)}
	}

	return Classified{Type: CellText, Value: TextValue(trimmed)}
}

// CanonicalContents renders the contents a cell would persist/display for
// its classified state, used by both the JSON dump (§6) and the formula
// rewriter's re-emission of a changed cell's text.
func CanonicalContents(c Classified, originalFormula string) string {
	switch c.Type {
	case CellEmpty:
		return ""
	case CellText:
		if c.Quoted {
			return "'" + c.Value.Text
		}
		return c.Value.Text
	case CellFormula:
		return "=" + originalFormula
	case CellErrorLiteral:
		return c.Value.Err.String()
	case CellNumber:
		return c.Value.Number.String()
	case CellBool:
		return c.Value.Display()
	default:
		return ""
	}
}
