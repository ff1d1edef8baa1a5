package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocationBasic(t *testing.T) {
	loc, err := ParseLocation("A1")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), loc.Col)
	assert.Equal(t, uint32(1), loc.Row)
	assert.False(t, loc.AbsCol)
	assert.False(t, loc.AbsRow)
}

func TestParseLocationAbsoluteMarkers(t *testing.T) {
	loc, err := ParseLocation("$ZZZZ$9999")
	require.NoError(t, err)
	assert.True(t, loc.AbsCol)
	assert.True(t, loc.AbsRow)
	assert.Equal(t, uint32(MaxRow), loc.Row)
}

func TestParseLocationBijectiveColumns(t *testing.T) {
	cases := map[string]uint32{"A": 1, "Z": 26, "AA": 27, "AZ": 52}
	for text, want := range cases {
		loc, err := ParseLocation(text + "1")
		require.NoError(t, err)
		assert.Equal(t, want, loc.Col, text)
	}
}

func TestParseLocationRejectsOutOfGrid(t *testing.T) {
	_, err := ParseLocation("A10000")
	assert.Error(t, err)

	_, err = ParseLocation("A0")
	assert.Error(t, err)

	_, err = ParseLocation("1A")
	assert.Error(t, err)
}

func TestStringifyLocationRoundTrip(t *testing.T) {
	loc, err := ParseLocation("$b$12")
	require.NoError(t, err)
	assert.Equal(t, "$b$12", StringifyLocation(loc, false))
	assert.Equal(t, "$B$12", StringifyLocation(loc, true))

	back, err := ParseLocation(StringifyLocation(loc, false))
	require.NoError(t, err)
	assert.Equal(t, loc, back)
}
