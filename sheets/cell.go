package sheets

// CellAddress identifies a cell globally within a workbook by its owning
// sheet's stable id (not its display position, which can change on
// move_sheet) and its (col, row) location. This is the arena key from
// spec §9: dependency edges are expressed as CellAddress pairs, never as
// pointers, so that a cell with live children can be freed down to an
// Empty placeholder without invalidating anything referencing it.
type CellAddress struct {
	SheetID uint64
	Col     uint32
	Row     uint32
}

// Cell is a single grid cell, owned exclusively by its Sheet (§3). Edges to
// other cells are peer references (CellAddress), carrying no ownership.
type Cell struct {
	Loc     Location
	SheetID uint64

	Raw      string
	IsNilRaw bool
	Type     CellType
	Value    CellValue
	Tree     Node
	// Quoted marks a CellText introduced with a leading apostrophe, so its
	// canonical contents can re-emit that apostrophe (§4.4, §8 invariant 7).
	Quoted bool
	// FormulaText is the canonical reconstruction of Tree (or the raw
	// expression text, if Tree is nil because parsing failed), without the
	// leading '='.
	FormulaText string

	// Parents are the cells this cell's formula depends on; Children are
	// the cells whose formulas depend on this one. Edge symmetry (invariant
	// 1) holds across the whole workbook graph at all times.
	Parents  map[CellAddress]struct{}
	Children map[CellAddress]struct{}

	// InvalidSheetRefs names sheets mentioned in this cell's formula that
	// do not currently exist (§3, §4.6). Non-empty membership here is what
	// puts the cell in the workbook's orphan set.
	InvalidSheetRefs map[string]struct{}
}

func newCell(sheet *Sheet, loc Location) *Cell {
	return &Cell{
		Loc:              loc,
		SheetID:          sheet.id,
		Type:             CellEmpty,
		Value:            Empty,
		Parents:          make(map[CellAddress]struct{}),
		Children:         make(map[CellAddress]struct{}),
		InvalidSheetRefs: make(map[string]struct{}),
	}
}

// Address returns this cell's arena key.
func (c *Cell) Address() CellAddress {
	return CellAddress{SheetID: c.SheetID, Col: c.Loc.Col, Row: c.Loc.Row}
}

// IsOrphan reports whether this cell currently names an unresolved sheet.
func (c *Cell) IsOrphan() bool {
	return len(c.InvalidSheetRefs) > 0
}

// isEmptyPlaceholder reports whether the cell holds no user content and
// exists only to be a stable edge target for its children (§4.5).
func (c *Cell) isEmptyPlaceholder() bool {
	return c.Type == CellEmpty && len(c.Children) == 0
}

// contents renders the canonical text a client would see from
// get_cell_contents / the JSON dump: FormulaText for formulas (prefixed
// with '='), or the canonical rendering for every other type.
func (c *Cell) contents() string {
	return CanonicalContents(Classified{Type: c.Type, Value: c.Value, Tree: c.Tree, Quoted: c.Quoted}, c.FormulaText)
}
