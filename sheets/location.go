package sheets

import "strings"

// Grid bounds enforced by the location codec (spec §4.1).
const (
	MaxCol = 475254
	MaxRow = 9999
)

// Location is a parsed, structured cell reference: a 1-based (col, row) pair
// plus whether each axis carried an absolute-reference marker ($).
type Location struct {
	Col, Row       uint32
	AbsCol, AbsRow bool
}

// ParseLocation parses a textual cell reference of the form
// "[$]<letters>[$]<digits>" (no sheet prefix — that's peeled off by the
// formula parser/lexer before this is called). Column letters are a
// bijective base-26 over A..Z: A=1, Z=26, AA=27.
func ParseLocation(text string) (Location, error) {
	s := text
	var loc Location

	if len(s) == 0 {
		return Location{}, newHostError(ErrInvalidLocation, "empty cell location")
	}

	if s[0] == '$' {
		loc.AbsCol = true
		s = s[1:]
	}

	letterEnd := 0
	for letterEnd < len(s) && isAsciiAlpha(s[letterEnd]) {
		letterEnd++
	}
	if letterEnd == 0 {
		return Location{}, newHostError(ErrInvalidLocation, "invalid cell location %q", text)
	}
	colStr := s[:letterEnd]
	rest := s[letterEnd:]

	if len(rest) > 0 && rest[0] == '$' {
		loc.AbsRow = true
		rest = rest[1:]
	}

	if len(rest) == 0 {
		return Location{}, newHostError(ErrInvalidLocation, "invalid cell location %q", text)
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return Location{}, newHostError(ErrInvalidLocation, "invalid cell location %q", text)
		}
	}

	col, ok := columnLettersToIndex(colStr)
	if !ok {
		return Location{}, newHostError(ErrInvalidLocation, "invalid cell location %q", text)
	}
	row, ok := parseDigitsToRow(rest)
	if !ok {
		return Location{}, newHostError(ErrInvalidLocation, "invalid cell location %q", text)
	}

	if col < 1 || col > MaxCol || row < 1 || row > MaxRow {
		return Location{}, newHostError(ErrInvalidLocation, "cell location %q is out of the supported grid", text)
	}

	loc.Col, loc.Row = col, row
	return loc, nil
}

func columnLettersToIndex(letters string) (uint32, bool) {
	var col uint64
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		var digit uint64
		switch {
		case c >= 'A' && c <= 'Z':
			digit = uint64(c-'A') + 1
		case c >= 'a' && c <= 'z':
			digit = uint64(c-'a') + 1
		default:
			return 0, false
		}
		col = col*26 + digit
		if col > MaxCol {
			return 0, false
		}
	}
	if col == 0 {
		return 0, false
	}
	return uint32(col), true
}

func parseDigitsToRow(digits string) (uint32, bool) {
	if len(digits) == 0 {
		return 0, false
	}
	var row uint64
	for i := 0; i < len(digits); i++ {
		row = row*10 + uint64(digits[i]-'0')
		if row > MaxRow {
			return 0, false
		}
	}
	if row == 0 {
		return 0, false
	}
	return uint32(row), true
}

// columnIndexToLetters renders a 1-based column index as lowercase letters
// (the default rendering; uppercase is used only by the JSON dump).
func columnIndexToLetters(col uint32) string {
	var buf []byte
	for col > 0 {
		col--
		buf = append([]byte{byte('a' + col%26)}, buf...)
		col /= 26
	}
	return string(buf)
}

// StringifyLocation renders a (col, row) pair back to canonical text,
// lowercase by default. Pass upper=true for the JSON persistence format.
func StringifyLocation(loc Location, upper bool) string {
	var b strings.Builder
	if loc.AbsCol {
		b.WriteByte('$')
	}
	letters := columnIndexToLetters(loc.Col)
	if upper {
		letters = strings.ToUpper(letters)
	}
	b.WriteString(letters)
	if loc.AbsRow {
		b.WriteByte('$')
	}
	b.WriteString(uitoa(loc.Row))
	return b.String()
}

func uitoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

func isAsciiAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// validLocation reports whether (col, row) both fall within the supported
// grid, without requiring any textual parsing — used by the rewriter when
// clamping shifted references.
func validLocation(col, row int64) bool {
	return col >= 1 && col <= MaxCol && row >= 1 && row <= MaxRow
}
