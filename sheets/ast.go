package sheets

import "strings"

// Node is a formula parse-tree node. Any tree can be rendered back to
// canonical text by Reconstruct (the reconstructor, §4.10), and the
// cell/range references it mentions are gathered by CollectRefs (used by
// the dependency graph, §4.6).
type Node interface {
	node()
}

// NumberLit is a decimal literal, stored as text so that the parser never
// has to round-trip through decimal.Decimal just to reconstruct it.
type NumberLit struct {
	Text string
}

// StringLit is a double-quoted string literal, already unescaped.
type StringLit struct {
	Value string
}

// BoolLit is the TRUE/FALSE keyword.
type BoolLit struct {
	Value bool
}

// ErrorLit is one of the six error literals appearing directly in a formula.
type ErrorLit struct {
	Kind ErrorKind
}

// CellRefNode is a single-cell reference, optionally sheet-qualified.
type CellRefNode struct {
	Sheet    string // "" if unqualified
	HasSheet bool
	Loc      Location
}

// RangeNode is a two-cell range reference, optionally sheet-qualified. Both
// ends share the same sheet qualifier in the grammar (§4.3).
type RangeNode struct {
	Sheet      string
	HasSheet   bool
	Start, End Location
}

// UnaryNode is a prefix +/- applied to an operand.
type UnaryNode struct {
	Op      TokenType // TokPlus or TokMinus
	Operand Node
}

// BinaryNode is any binary operator: arithmetic, concatenation, or
// comparison (§4.3's precedence chain collapses to one node shape).
type BinaryNode struct {
	Op          TokenType
	Left, Right Node
}

// CallNode is a function call with eagerly-parsed arguments (ranges among
// them are evaluated lazily by the evaluator, not the parser).
type CallNode struct {
	Name string
	Args []Node
}

func (*NumberLit) node()   {}
func (*StringLit) node()   {}
func (*BoolLit) node()     {}
func (*ErrorLit) node()    {}
func (*CellRefNode) node() {}
func (*RangeNode) node()   {}
func (*UnaryNode) node()   {}
func (*BinaryNode) node()  {}
func (*CallNode) node()    {}

// ReferencedSheet is a (sheet, location) pair collected by CollectRefs,
// naming either a single cell (IsRange == false) or the start of a range
// (in which case End is also populated).
type ReferencedSheet struct {
	Sheet    string
	HasSheet bool
	IsRange  bool
	Start    Location
	End      Location
}

// CollectRefs walks tree and appends every cell/range reference found,
// regardless of nesting inside function calls or operators (§4.6 step 2).
func CollectRefs(n Node, out []ReferencedSheet) []ReferencedSheet {
	switch t := n.(type) {
	case *CellRefNode:
		out = append(out, ReferencedSheet{Sheet: t.Sheet, HasSheet: t.HasSheet, Start: t.Loc})
	case *RangeNode:
		out = append(out, ReferencedSheet{Sheet: t.Sheet, HasSheet: t.HasSheet, IsRange: true, Start: t.Start, End: t.End})
	case *UnaryNode:
		out = CollectRefs(t.Operand, out)
	case *BinaryNode:
		out = CollectRefs(t.Left, out)
		out = CollectRefs(t.Right, out)
	case *CallNode:
		for _, arg := range t.Args {
			out = CollectRefs(arg, out)
		}
	}
	return out
}

// Reconstruct renders n back to canonical formula text (without the leading
// '='), per §4.10: a modified tree must re-emit text that parses back to an
// equivalent tree, quoting sheet names only when they fail the identifier
// pattern.
func Reconstruct(n Node) string {
	var b strings.Builder
	writeExpr(&b, n, 0)
	return b.String()
}

// binOpPrec ranks a binary operator by §4.3's precedence chain (tightest
// last): comparisons all bind loosest at one shared level, then &, then
// binary +/-, then */. Unary +/- binds tighter than any binary operator.
func binOpPrec(op TokenType) int {
	switch op {
	case TokStar, TokSlash:
		return 4
	case TokPlus, TokMinus:
		return 3
	case TokAmp:
		return 2
	default:
		return 1 // comparison operators
	}
}

const unaryPrec = 5

// writeExpr renders n, wrapping it in parentheses iff its own precedence is
// lower than minPrec — the precedence required by the context it sits in.
// The parser discards explicit parentheses once they've done their job of
// grouping (§4.3's grammar has no Paren node), so the reconstructor must
// re-derive where parentheses are needed from operator precedence alone;
// otherwise a rewritten "(1+2)*3" would re-emit as "1+2*3", a different
// value, not just different text (§4.10's rewrite-then-reconstruct must stay
// semantically equivalent).
func writeExpr(b *strings.Builder, n Node, minPrec int) {
	switch t := n.(type) {
	case *BinaryNode:
		p := binOpPrec(t.Op)
		needParens := p < minPrec
		if needParens {
			b.WriteByte('(')
		}
		// Left-associative: the left operand tolerates its own precedence,
		// but the right operand needs strictly higher precedence than this
		// operator or it would silently re-associate (e.g. "a-(b-c)" must
		// not reconstruct as "a-b-c").
		writeExpr(b, t.Left, p)
		writeOpText(b, t.Op)
		writeExpr(b, t.Right, p+1)
		if needParens {
			b.WriteByte(')')
		}
	case *UnaryNode:
		needParens := unaryPrec < minPrec
		if needParens {
			b.WriteByte('(')
		}
		writeOpText(b, t.Op)
		writeExpr(b, t.Operand, unaryPrec)
		if needParens {
			b.WriteByte(')')
		}
	default:
		writeAtom(b, n)
	}
}

func writeAtom(b *strings.Builder, n Node) {
	switch t := n.(type) {
	case *NumberLit:
		b.WriteString(t.Text)
	case *StringLit:
		b.WriteByte('"')
		for _, r := range t.Value {
			if r == '"' {
				b.WriteString(`\"`)
				continue
			}
			b.WriteRune(r)
		}
		b.WriteByte('"')
	case *BoolLit:
		if t.Value {
			b.WriteString("TRUE")
		} else {
			b.WriteString("FALSE")
		}
	case *ErrorLit:
		b.WriteString(t.Kind.String())
	case *CellRefNode:
		writeSheetPrefix(b, t.Sheet, t.HasSheet)
		b.WriteString(StringifyLocation(t.Loc, false))
	case *RangeNode:
		writeSheetPrefix(b, t.Sheet, t.HasSheet)
		b.WriteString(StringifyLocation(t.Start, false))
		b.WriteByte(':')
		b.WriteString(StringifyLocation(t.End, false))
	case *CallNode:
		b.WriteString(t.Name)
		b.WriteByte('(')
		for i, arg := range t.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			writeExpr(b, arg, 0)
		}
		b.WriteByte(')')
	}
}

func writeSheetPrefix(b *strings.Builder, sheet string, hasSheet bool) {
	if !hasSheet {
		return
	}
	if matchesIdentifierPattern(sheet) {
		b.WriteString(sheet)
	} else {
		b.WriteByte('\'')
		b.WriteString(sheet)
		b.WriteByte('\'')
	}
	b.WriteByte('!')
}

func writeOpText(b *strings.Builder, op TokenType) {
	switch op {
	case TokPlus:
		b.WriteByte('+')
	case TokMinus:
		b.WriteByte('-')
	case TokStar:
		b.WriteByte('*')
	case TokSlash:
		b.WriteByte('/')
	case TokAmp:
		b.WriteByte('&')
	case TokEq:
		b.WriteByte('=')
	case TokEqEq:
		b.WriteString("==")
	case TokNe:
		b.WriteString("<>")
	case TokNe2:
		b.WriteString("!=")
	case TokLt:
		b.WriteByte('<')
	case TokGt:
		b.WriteByte('>')
	case TokLe:
		b.WriteString("<=")
	case TokGe:
		b.WriteString(">=")
	}
}
