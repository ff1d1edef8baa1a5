package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyNil(t *testing.T) {
	c := Classify("", true)
	assert.Equal(t, CellEmpty, c.Type)
	assert.True(t, c.Value.IsEmpty())
}

func TestClassifyBlankString(t *testing.T) {
	c := Classify("   ", false)
	assert.Equal(t, CellEmpty, c.Type)
}

func TestClassifyLeadingQuoteForcesText(t *testing.T) {
	c := Classify("'42", false)
	assert.Equal(t, CellText, c.Type)
	assert.Equal(t, "42", c.Value.Text)
}

func TestClassifyFormula(t *testing.T) {
	c := Classify("=1+2", false)
	require.Equal(t, CellFormula, c.Type)
	require.NotNil(t, c.Tree)
}

func TestClassifyFormulaParseFailureYieldsParseError(t *testing.T) {
	c := Classify("=1+", false)
	assert.Equal(t, CellFormula, c.Type)
	assert.Nil(t, c.Tree)
	assert.True(t, c.Value.IsError())
	assert.Equal(t, ErrParse, c.Value.Err)
}

func TestClassifyErrorLiteral(t *testing.T) {
	c := Classify("#REF!", false)
	assert.Equal(t, CellErrorLiteral, c.Type)
	assert.Equal(t, ErrBadReference, c.Value.Err)
}

func TestClassifyNumber(t *testing.T) {
	for _, raw := range []string{"42", "-3.5", "+7", ".5", "3."} {
		c := Classify(raw, false)
		assert.Equal(t, CellNumber, c.Type, raw)
	}
}

func TestClassifyBoolean(t *testing.T) {
	assert.Equal(t, CellBool, Classify("true", false).Type)
	assert.Equal(t, CellBool, Classify("FALSE", false).Type)
	assert.True(t, Classify("True", false).Value.Bool)
}

func TestClassifyPlainTextFallback(t *testing.T) {
	c := Classify("hello world", false)
	assert.Equal(t, CellText, c.Type)
	assert.Equal(t, "hello world", c.Value.Text)
}

func TestCanonicalContentsRoundTrip(t *testing.T) {
	c := Classify("42", false)
	assert.Equal(t, "42", CanonicalContents(c, ""))

	f := Classify("=A1+1", false)
	assert.Equal(t, "=A1+1", CanonicalContents(f, "A1+1"))

	assert.Equal(t, "", CanonicalContents(Classified{Type: CellEmpty}, ""))
}
