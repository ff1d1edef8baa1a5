package sheets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateNewSheetNameAcceptsOrdinaryName(t *testing.T) {
	assert.NoError(t, validateNewSheetName("Sheet1"))
}

func TestValidateNewSheetNameRejectsTooLong(t *testing.T) {
	err := validateNewSheetName(strings.Repeat("a", 256))
	assert.Error(t, err)
}

func TestValidateNewSheetNameRejectsEmpty(t *testing.T) {
	err := validateNewSheetName("")
	assert.Error(t, err)
}

func TestValidateNewSheetNameRejectsBadCharacter(t *testing.T) {
	err := validateNewSheetName("Sheet/1")
	assert.Error(t, err)
}

func TestValidateRegionAcceptsInGridRectangle(t *testing.T) {
	start := locMust(t, "A1")
	end := locMust(t, "C3")
	assert.NoError(t, validateRegion(start, end))
}
