package sheets

import (
	"encoding/json"
	"io"
	"strings"
)

// workbookDoc mirrors §6's persistence format exactly: a single object
// keyed "sheets" holding an ordered list of sheet documents. JSON
// (encoding/json) is used here deliberately rather than a third-party
// codec — this boundary is explicitly named in the specification as a
// thin adapter with no design depth of its own.
type workbookDoc struct {
	Sheets []sheetDoc `json:"sheets"`
}

type sheetDoc struct {
	Name         string            `json:"name"`
	CellContents map[string]string `json:"cell-contents"`
}

// SaveWorkbook writes w to the §6 JSON format: sheets in display order,
// uppercase locations, canonical stripped cell contents.
func SaveWorkbook(w *Workbook, out io.Writer) error {
	doc := workbookDoc{Sheets: make([]sheetDoc, 0, len(w.sheets))}
	for _, s := range w.sheets {
		contents := make(map[string]string)
		for _, c := range s.cells {
			if c.IsNilRaw && c.Type == CellEmpty {
				continue
			}
			locText := StringifyLocation(c.Loc, true)
			contents[locText] = c.contents()
		}
		doc.Sheets = append(doc.Sheets, sheetDoc{Name: s.name, CellContents: contents})
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return newHostError(ErrDecode, "failed to encode workbook: %v", err)
	}
	return nil
}

// LoadWorkbook reads the §6 JSON format and reconstructs a Workbook by
// replaying new_sheet/set_cell_contents for every entry, so dependency
// edges and values are rebuilt the normal way rather than deserialized
// directly.
func LoadWorkbook(in io.Reader) (*Workbook, error) {
	var doc workbookDoc
	dec := json.NewDecoder(in)
	if err := dec.Decode(&doc); err != nil {
		return nil, newHostError(ErrDecode, "malformed JSON: %v", err)
	}
	if doc.Sheets == nil {
		return nil, newHostError(ErrMalformedWorkbook, "missing required key \"sheets\"")
	}

	wb := NewWorkbook()
	for _, sd := range doc.Sheets {
		if sd.Name == "" {
			return nil, newHostError(ErrMalformedWorkbook, "sheet entry missing required key \"name\"")
		}
		if sd.CellContents == nil {
			return nil, newHostError(ErrMalformedWorkbook, "sheet %q missing required key \"cell-contents\"", sd.Name)
		}
		if _, _, err := wb.NewSheet(sd.Name); err != nil {
			return nil, err
		}
		for locText, contents := range sd.CellContents {
			loc, err := ParseLocation(strings.ToLower(locText))
			if err != nil {
				return nil, newHostError(ErrMalformedWorkbook, "invalid cell location %q: %v", locText, err)
			}
			if err := wb.SetCellContents(sd.Name, StringifyLocation(loc, false), contents, false); err != nil {
				return nil, err
			}
		}
	}
	return wb, nil
}
