package sheets

import "github.com/go-playground/validator/v10"

// validate is a single shared validator instance, following the package's
// documented recommendation to construct one and reuse it (struct tag
// caching makes repeated construction wasteful).
var validate = validator.New()

// newSheetRequest is the host-boundary shape for new_sheet/rename_sheet
// requests: Name is optional for new_sheet (empty means auto-generate); the
// tag only bounds its length to 255. The character-set rule is enforced by
// validateSheetName, which validateNewSheetName runs after the tag check.
type newSheetRequest struct {
	Name string `validate:"omitempty,max=255"`
}

// regionRequest is the host-boundary shape for move_cells/copy_cells/
// sort_region requests: the two corners of a rectangle.
type regionRequest struct {
	StartCol uint32 `validate:"required,max=475254"`
	StartRow uint32 `validate:"required,max=9999"`
	EndCol   uint32 `validate:"required,max=475254"`
	EndRow   uint32 `validate:"required,max=9999"`
}

// validateNewSheetName folds go-playground/validator's struct validation
// into the existing HostError taxonomy rather than introducing a second
// error type at the boundary (SPEC_FULL §4.13): a length/shape violation
// surfaces exactly like the hand-rolled character-set check does.
func validateNewSheetName(name string) error {
	req := newSheetRequest{Name: name}
	if err := validate.Struct(req); err != nil {
		return newHostError(ErrInvalidName, "invalid sheet name %q: %v", name, err)
	}
	return validateSheetName(name)
}

// validateRegion checks a rectangle's coordinates are within grid bounds
// before any structural op attempts to use them, surfacing the same
// ErrOutOfGrid host error the op itself would eventually hit deeper in the
// pipeline, but before any mutation has begun.
func validateRegion(start, end Location) error {
	req := regionRequest{StartCol: start.Col, StartRow: start.Row, EndCol: end.Col, EndRow: end.Row}
	if err := validate.Struct(req); err != nil {
		return newHostError(ErrOutOfGrid, "invalid region: %v", err)
	}
	return nil
}
