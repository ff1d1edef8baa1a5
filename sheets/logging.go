package sheets

import (
	"io"

	"github.com/rs/zerolog"
)

// SetLogOutput redirects this workbook's structured log sites (cell edits,
// edge rewiring, orphan changes, detected cycles, structural ops, listener
// panics) to w, at the given minimum level. A Workbook from NewWorkbook
// logs through zerolog's default global logger; call this to wire it into
// a host application's own log sink. The evaluator itself never logs
// (§4.12); the per-edit sites log at Debug and a detected cycle at Warn.
func (wb *Workbook) SetLogOutput(w io.Writer, level zerolog.Level) {
	wb.logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// DisableLogging silences this workbook's log sites entirely.
func (wb *Workbook) DisableLogging() {
	wb.logger = zerolog.Nop()
}
