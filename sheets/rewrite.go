package sheets

// RenameSheetRefs returns a tree identical to n except that every
// reference whose sheet component equals oldName (case-insensitive) is
// rewritten to newName (§4.10). If nothing in the tree mentions oldName,
// the same node (by identity) is returned so callers can cheaply detect a
// no-op. The tree is otherwise left structurally immutable — a rewrite
// produces new nodes rather than mutating in place (§9).
func RenameSheetRefs(n Node, oldName, newName string) Node {
	switch t := n.(type) {
	case *CellRefNode:
		if t.HasSheet && lowerName(t.Sheet) == lowerName(oldName) {
			cp := *t
			cp.Sheet = newName
			return &cp
		}
		return n
	case *RangeNode:
		if t.HasSheet && lowerName(t.Sheet) == lowerName(oldName) {
			cp := *t
			cp.Sheet = newName
			return &cp
		}
		return n
	case *UnaryNode:
		operand := RenameSheetRefs(t.Operand, oldName, newName)
		if operand == t.Operand {
			return n
		}
		return &UnaryNode{Op: t.Op, Operand: operand}
	case *BinaryNode:
		left := RenameSheetRefs(t.Left, oldName, newName)
		right := RenameSheetRefs(t.Right, oldName, newName)
		if left == t.Left && right == t.Right {
			return n
		}
		return &BinaryNode{Op: t.Op, Left: left, Right: right}
	case *CallNode:
		changed := false
		args := make([]Node, len(t.Args))
		for i, a := range t.Args {
			args[i] = RenameSheetRefs(a, oldName, newName)
			if args[i] != a {
				changed = true
			}
		}
		if !changed {
			return n
		}
		return &CallNode{Name: t.Name, Args: args}
	default:
		return n
	}
}

// ShiftRefs returns a tree identical to n except that every reference
// without an absolute marker on a given axis has its row/col shifted by
// (Δcol, Δrow). A shifted reference that leaves the grid is replaced with
// a #REF! error literal in place, so the surrounding formula stays
// parseable and keeps propagating that error (§4.10).
func ShiftRefs(n Node, dcol, drow int64) Node {
	switch t := n.(type) {
	case *CellRefNode:
		loc, ok := shiftLocation(t.Loc, dcol, drow)
		if !ok {
			return &ErrorLit{Kind: ErrBadReference}
		}
		cp := *t
		cp.Loc = loc
		return &cp
	case *RangeNode:
		start, ok1 := shiftLocation(t.Start, dcol, drow)
		end, ok2 := shiftLocation(t.End, dcol, drow)
		if !ok1 || !ok2 {
			return &ErrorLit{Kind: ErrBadReference}
		}
		cp := *t
		cp.Start, cp.End = start, end
		return &cp
	case *UnaryNode:
		operand := ShiftRefs(t.Operand, dcol, drow)
		if operand == t.Operand {
			return n
		}
		return &UnaryNode{Op: t.Op, Operand: operand}
	case *BinaryNode:
		left := ShiftRefs(t.Left, dcol, drow)
		right := ShiftRefs(t.Right, dcol, drow)
		if left == t.Left && right == t.Right {
			return n
		}
		return &BinaryNode{Op: t.Op, Left: left, Right: right}
	case *CallNode:
		changed := false
		args := make([]Node, len(t.Args))
		for i, a := range t.Args {
			args[i] = ShiftRefs(a, dcol, drow)
			if args[i] != a {
				changed = true
			}
		}
		if !changed {
			return n
		}
		return &CallNode{Name: t.Name, Args: args}
	default:
		return n
	}
}

// shiftLocation shifts loc by (dcol, drow) on whichever axes aren't marked
// absolute, reporting false if the result leaves the grid.
func shiftLocation(loc Location, dcol, drow int64) (Location, bool) {
	col, row := int64(loc.Col), int64(loc.Row)
	if !loc.AbsCol {
		col += dcol
	}
	if !loc.AbsRow {
		row += drow
	}
	if !validLocation(col, row) {
		return Location{}, false
	}
	out := loc
	out.Col, out.Row = uint32(col), uint32(row)
	return out, true
}
