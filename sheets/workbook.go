package sheets

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Listener receives one notification per settled edit: the workbook and
// the list of cells whose value changed (§6's notify_cells_changed).
type Listener func(wb *Workbook, changed []ChangedCell)

type listenerEntry struct {
	handle ListenerHandle
	fn     Listener
}

// ListenerHandle identifies a registered change listener so it can later be
// unregistered with StopNotifying. It wraps a uuid rather than an integer
// index so handles stay valid across registration/unregistration churn.
type ListenerHandle struct {
	id uuid.UUID
}

// Workbook is the top-level object: an ordered list of sheets (position is
// user-visible, §3), a case-insensitive name index, the orphan set, and the
// listener registry.
type Workbook struct {
	sheets      []*Sheet
	nameIndex   map[string]*Sheet // lowercased name -> sheet
	idIndex     map[uint64]*Sheet
	nextSheetID uint64
	nextAnon    int

	orphans map[CellAddress]struct{}

	listeners []listenerEntry

	deletingSheetID uint64
	isDeleting      bool

	logger zerolog.Logger
}

// NewWorkbook creates an empty workbook with no sheets.
func NewWorkbook() *Workbook {
	return &Workbook{
		nameIndex: make(map[string]*Sheet),
		idIndex:   make(map[uint64]*Sheet),
		orphans:   make(map[CellAddress]struct{}),
		logger:    log.Logger,
	}
}

func lowerName(s string) string { return strings.ToLower(s) }

func (w *Workbook) lookupSheet(name string) (*Sheet, bool) {
	s, ok := w.nameIndex[lowerName(name)]
	return s, ok
}

func (w *Workbook) sheetByID(id uint64) (*Sheet, bool) {
	s, ok := w.idIndex[id]
	return s, ok
}

func (w *Workbook) sheetBeingDeleted(id uint64) bool {
	return w.isDeleting && w.deletingSheetID == id
}

// NumSheets returns the number of sheets, in display order.
func (w *Workbook) NumSheets() int { return len(w.sheets) }

// ListSheets returns sheet names in display order.
func (w *Workbook) ListSheets() []string {
	names := make([]string, len(w.sheets))
	for i, s := range w.sheets {
		names[i] = s.name
	}
	return names
}

// validateSheetName enforces §6's sheet-name rule: non-empty, no
// leading/trailing whitespace, and a restricted character set.
func validateSheetName(name string) error {
	if name == "" {
		return newHostError(ErrInvalidName, "sheet name must not be empty")
	}
	if strings.TrimSpace(name) != name {
		return newHostError(ErrInvalidName, "sheet name %q has leading or trailing whitespace", name)
	}
	for _, r := range name {
		if !sheetNameCharAllowed(r) {
			return newHostError(ErrInvalidName, "sheet name %q contains an invalid character %q", name, r)
		}
	}
	return nil
}

func sheetNameCharAllowed(r rune) bool {
	if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
		return true
	}
	switch r {
	case '_', ' ', '-', '.', '?', '!', ',', ':', ';', '@', '#', '$', '%', '^', '&', '*', '(', ')':
		return true
	}
	return false
}

// NewSheet implements new_sheet: auto-generates "Sheet<N>" when name is
// empty, then re-resolves any orphan referencing it (§4.11).
func (w *Workbook) NewSheet(name string) (int, string, error) {
	if name == "" {
		name = w.generateSheetName()
	}
	if err := validateNewSheetName(name); err != nil {
		return 0, "", err
	}
	if _, exists := w.lookupSheet(name); exists {
		return 0, "", newHostError(ErrInvalidName, "a sheet named %q already exists", name)
	}

	w.nextSheetID++
	sheet := newSheet(w.nextSheetID, name)
	w.sheets = append(w.sheets, sheet)
	w.nameIndex[lowerName(name)] = sheet
	w.idIndex[sheet.id] = sheet

	changed := w.reresolveOrphans(name)
	w.logger.Debug().Str("sheet", name).Msg("sheet created")
	w.notify(changed)
	return len(w.sheets) - 1, name, nil
}

func (w *Workbook) generateSheetName() string {
	for {
		w.nextAnon++
		candidate := "Sheet" + uitoa(uint32(w.nextAnon))
		if _, exists := w.lookupSheet(candidate); !exists {
			return candidate
		}
	}
}

// DelSheet implements del_sheet: every live cell in the sheet is first set
// to a #REF! literal (propagating BadReference to every dependent anywhere
// in the workbook), then the sheet itself is dropped.
func (w *Workbook) DelSheet(name string) error {
	sheet, ok := w.lookupSheet(name)
	if !ok {
		return newHostError(ErrUnknownSheet, "unknown sheet %q", name)
	}

	w.logger.Info().Str("sheet", name).Msg("del_sheet start")

	w.isDeleting = true
	w.deletingSheetID = sheet.id
	defer func() {
		w.isDeleting = false
		w.deletingSheetID = 0
	}()

	var changed []ChangedCell
	for _, addr := range sheet.cellAddresses() {
		cell := sheet.get(Location{Col: addr.Col, Row: addr.Row})
		if cell == nil || cell.isEmptyPlaceholder() {
			continue
		}
		changed = append(changed, w.setCellContentsInternal(sheet, cell.Loc, "#REF!", false)...)
	}

	delete(w.nameIndex, lowerName(name))
	delete(w.idIndex, sheet.id)
	for i, s := range w.sheets {
		if s == sheet {
			w.sheets = append(w.sheets[:i], w.sheets[i+1:]...)
			break
		}
	}
	w.logger.Info().Str("sheet", name).Int("changed", len(changed)).Msg("del_sheet end")
	w.notify(changed)
	return nil
}

// RenameSheet implements rename_sheet: validates the new name, rewrites
// every parse tree across the whole workbook referring to old, and
// triggers an orphan recheck for the new name.
func (w *Workbook) RenameSheet(oldName, newName string) error {
	sheet, ok := w.lookupSheet(oldName)
	if !ok {
		return newHostError(ErrUnknownSheet, "unknown sheet %q", oldName)
	}
	if lowerName(oldName) != lowerName(newName) {
		if err := validateNewSheetName(newName); err != nil {
			return err
		}
		if _, exists := w.lookupSheet(newName); exists {
			return newHostError(ErrInvalidName, "a sheet named %q already exists", newName)
		}
	}

	w.logger.Info().Str("old", oldName).Str("new", newName).Msg("rename_sheet start")

	delete(w.nameIndex, lowerName(sheet.name))
	sheet.name = newName
	w.nameIndex[lowerName(newName)] = sheet

	var changed []ChangedCell
	for _, s := range w.sheets {
		for _, c := range s.cells {
			if c.Tree == nil {
				continue
			}
			rewritten := RenameSheetRefs(c.Tree, oldName, newName)
			if rewritten == c.Tree {
				continue
			}
			c.Tree = rewritten
			c.FormulaText = Reconstruct(rewritten)
			w.rewireCell(s, c)
			changed = append(changed, w.runUpdate(s, c)...)
		}
	}

	changed = append(changed, w.reresolveOrphans(newName)...)
	w.logger.Info().Str("old", oldName).Str("new", newName).Int("changed", len(changed)).Msg("rename_sheet end")
	w.notify(changed)
	return nil
}

// MoveSheet implements move_sheet: a 0-based destination index.
func (w *Workbook) MoveSheet(name string, index int) error {
	sheet, ok := w.lookupSheet(name)
	if !ok {
		return newHostError(ErrUnknownSheet, "unknown sheet %q", name)
	}
	if index < 0 || index >= len(w.sheets) {
		return newHostError(ErrInvalidIndex, "sheet index %d out of range", index)
	}
	cur := -1
	for i, s := range w.sheets {
		if s == sheet {
			cur = i
			break
		}
	}
	w.sheets = append(w.sheets[:cur], w.sheets[cur+1:]...)
	w.sheets = append(w.sheets[:index], append([]*Sheet{sheet}, w.sheets[index:]...)...)
	return nil
}

// CopySheet implements copy_sheet: synthesizes a "<name>_<k>" name and
// replays set_cell_contents for each source cell.
func (w *Workbook) CopySheet(name string) (int, string, error) {
	src, ok := w.lookupSheet(name)
	if !ok {
		return 0, "", newHostError(ErrUnknownSheet, "unknown sheet %q", name)
	}
	newName := w.generateCopyName(name)
	w.logger.Info().Str("source", name).Str("copy", newName).Msg("copy_sheet start")
	idx, _, err := w.NewSheet(newName)
	if err != nil {
		return 0, "", err
	}
	dst := w.sheets[idx]

	var changed []ChangedCell
	for _, c := range src.cells {
		if c.IsNilRaw && c.Type == CellEmpty {
			continue
		}
		changed = append(changed, w.setCellContentsInternal(dst, c.Loc, c.Raw, c.IsNilRaw)...)
	}
	w.logger.Info().Str("source", name).Str("copy", newName).Int("cells", len(src.cells)).Msg("copy_sheet end")
	w.notify(changed)
	return idx, newName, nil
}

func (w *Workbook) generateCopyName(base string) string {
	for k := 1; ; k++ {
		candidate := base + "_" + uitoa(uint32(k))
		if _, exists := w.lookupSheet(candidate); !exists {
			return candidate
		}
	}
}

// GetSheetExtent implements get_sheet_extent.
func (w *Workbook) GetSheetExtent(name string) (uint32, uint32, error) {
	sheet, ok := w.lookupSheet(name)
	if !ok {
		return 0, 0, newHostError(ErrUnknownSheet, "unknown sheet %q", name)
	}
	cols, rows := sheet.Extent()
	return cols, rows, nil
}

// SetCellContents implements set_cell_contents: classify, parse, store,
// rewire, and run the update scheduler, then notify listeners.
func (w *Workbook) SetCellContents(sheetName string, locText string, raw string, isNil bool) error {
	sheet, ok := w.lookupSheet(sheetName)
	if !ok {
		return newHostError(ErrUnknownSheet, "unknown sheet %q", sheetName)
	}
	loc, err := ParseLocation(locText)
	if err != nil {
		return err
	}
	changed := w.setCellContentsInternal(sheet, loc, raw, isNil)
	w.notify(changed)
	return nil
}

// setCellContentsInternal performs one edit's full pipeline (§5's ordering:
// classify → parse → store → rewire → detect cycle → evaluate → diff) and
// returns the changed cells, without notifying listeners — callers that
// perform several edits as one structural op (move/copy/sort/rename) batch
// their own notification.
func (w *Workbook) setCellContentsInternal(sheet *Sheet, loc Location, raw string, isNil bool) []ChangedCell {
	cell := sheet.getOrCreate(loc)

	classified := Classify(raw, isNil)
	cell.Raw = raw
	cell.IsNilRaw = isNil
	cell.Type = classified.Type
	cell.Value = classified.Value
	cell.Tree = classified.Tree
	cell.Quoted = classified.Quoted
	if classified.Type == CellFormula {
		if classified.Tree != nil {
			cell.FormulaText = Reconstruct(classified.Tree)
		} else {
			cell.FormulaText = strings.TrimLeft(strings.TrimLeft(raw, " \t\r\n"), "=")
		}
	} else {
		cell.FormulaText = ""
	}

	w.logger.Debug().Str("sheet", sheet.name).Str("loc", StringifyLocation(loc, false)).Int("type", int(cell.Type)).Msg("cell edit accepted")

	w.rewireCell(sheet, cell)
	changed := w.runUpdate(sheet, cell)
	sheet.deleteIfOrphanedPlaceholder(cell)
	return changed
}

// GetCellContents implements get_cell_contents.
func (w *Workbook) GetCellContents(sheetName, locText string) (string, error) {
	sheet, ok := w.lookupSheet(sheetName)
	if !ok {
		return "", newHostError(ErrUnknownSheet, "unknown sheet %q", sheetName)
	}
	loc, err := ParseLocation(locText)
	if err != nil {
		return "", err
	}
	cell := sheet.get(loc)
	if cell == nil {
		return "", nil
	}
	return cell.contents(), nil
}

// GetCellValue implements get_cell_value.
func (w *Workbook) GetCellValue(sheetName, locText string) (CellValue, error) {
	sheet, ok := w.lookupSheet(sheetName)
	if !ok {
		return CellValue{}, newHostError(ErrUnknownSheet, "unknown sheet %q", sheetName)
	}
	loc, err := ParseLocation(locText)
	if err != nil {
		return CellValue{}, err
	}
	cell := sheet.get(loc)
	if cell == nil {
		return Empty, nil
	}
	return cell.Value, nil
}

// NotifyCellsChanged registers a listener and returns a handle that can
// later be passed to StopNotifying.
func (w *Workbook) NotifyCellsChanged(fn Listener) ListenerHandle {
	h := ListenerHandle{id: uuid.New()}
	w.listeners = append(w.listeners, listenerEntry{handle: h, fn: fn})
	return h
}

// StopNotifying unregisters a previously registered listener. Remaining
// listeners keep their relative registration order.
func (w *Workbook) StopNotifying(h ListenerHandle) {
	for i, entry := range w.listeners {
		if entry.handle.id == h.id {
			w.listeners = append(w.listeners[:i], w.listeners[i+1:]...)
			return
		}
	}
}

// notify invokes every listener in registration order (§5). A listener
// that panics is isolated: the panic is logged and subsequent listeners
// still run, matching the "exception is swallowed" contract for a
// language where listeners can't raise checked exceptions.
func (w *Workbook) notify(changed []ChangedCell) {
	if len(changed) == 0 || len(w.listeners) == 0 {
		return
	}
	for _, entry := range w.listeners {
		w.invokeListener(entry, changed)
	}
}

func (w *Workbook) invokeListener(entry listenerEntry, changed []ChangedCell) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Warn().Interface("panic", r).Msg("notification listener panicked")
		}
	}()
	entry.fn(w, changed)
}
