package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFormula(formula string) bool {
	_, err := ParseFormula(formula)
	return err == nil
}

func TestParserBasicFormulas(t *testing.T) {
	validFormulas := []string{
		"1+2",
		"A1",
		"SUM(A1:A10)",
		"Sheet2!A1",
		`"Hello world"`,
		"(1+2)*3",
		"-A1",
		"+5",
		"A1&B1",
		"A1=B1",
		"A1<>B1",
		"IF(A1>0,1,0)",
		"TRUE",
		"FALSE",
		"#REF!",
		"'My Sheet'!A1:B2",
		"$A$1",
	}
	for _, f := range validFormulas {
		assert.True(t, parseFormula(f), f)
	}
}

func TestParserInvalidFormulas(t *testing.T) {
	invalid := []string{
		"1+",
		"(1+2",
		"SUM(A1:A10",
		"A1:",
		"",
	}
	for _, f := range invalid {
		assert.False(t, parseFormula(f), f)
	}
}

func TestReconstructRestoresParensNeededByPrecedence(t *testing.T) {
	tree, err := ParseFormula("(1+2)*3")
	require.NoError(t, err)
	assert.Equal(t, "(1+2)*3", Reconstruct(tree))

	tree, err = ParseFormula("1+2*3")
	require.NoError(t, err)
	assert.Equal(t, "1+2*3", Reconstruct(tree))
}

func TestReconstructRestoresParensOnRightAssociativeBreak(t *testing.T) {
	tree, err := ParseFormula("10-(2-3)")
	require.NoError(t, err)
	assert.Equal(t, "10-(2-3)", Reconstruct(tree))

	tree, err = ParseFormula("(10-2)-3")
	require.NoError(t, err)
	assert.Equal(t, "10-2-3", Reconstruct(tree))
}

func TestReconstructRestoresParensAroundUnaryOperand(t *testing.T) {
	tree, err := ParseFormula("-(A1+A2)")
	require.NoError(t, err)
	assert.Equal(t, "-(a1+a2)", Reconstruct(tree))
}

func TestParserPrecedence(t *testing.T) {
	tree, err := ParseFormula("1+2*3")
	require.NoError(t, err)
	bin, ok := tree.(*BinaryNode)
	require.True(t, ok)
	assert.Equal(t, TokPlus, bin.Op)
	_, rightIsMul := bin.Right.(*BinaryNode)
	require.True(t, rightIsMul)
	_, leftIsNum := bin.Left.(*NumberLit)
	assert.True(t, leftIsNum)
}

func TestParserUnaryBindsTighterThanMultiplication(t *testing.T) {
	tree, err := ParseFormula("-2*3")
	require.NoError(t, err)
	bin, ok := tree.(*BinaryNode)
	require.True(t, ok)
	assert.Equal(t, TokStar, bin.Op)
	_, leftIsUnary := bin.Left.(*UnaryNode)
	assert.True(t, leftIsUnary)
}

func TestParserRangeNode(t *testing.T) {
	tree, err := ParseFormula("A1:B2")
	require.NoError(t, err)
	rng, ok := tree.(*RangeNode)
	require.True(t, ok)
	assert.False(t, rng.HasSheet)
	assert.Equal(t, uint32(1), rng.Start.Col)
	assert.Equal(t, uint32(2), rng.End.Col)
}

func TestParserSheetQualifiedRef(t *testing.T) {
	tree, err := ParseFormula("Sheet2!A1")
	require.NoError(t, err)
	ref, ok := tree.(*CellRefNode)
	require.True(t, ok)
	assert.True(t, ref.HasSheet)
	assert.Equal(t, "Sheet2", ref.Sheet)
}

func TestParserQuotedSheetQualifiedRange(t *testing.T) {
	tree, err := ParseFormula("'My Sheet'!A1:B2")
	require.NoError(t, err)
	rng, ok := tree.(*RangeNode)
	require.True(t, ok)
	assert.Equal(t, "My Sheet", rng.Sheet)
}

func TestParserCallWithMultipleArgs(t *testing.T) {
	tree, err := ParseFormula("IF(A1>0,1,0)")
	require.NoError(t, err)
	call, ok := tree.(*CallNode)
	require.True(t, ok)
	assert.Equal(t, "IF", call.Name)
	assert.Len(t, call.Args, 3)
}

func TestParserTrailingGarbageRejected(t *testing.T) {
	_, err := ParseFormula("1+2 3")
	assert.Error(t, err)
}

func TestReconstructRoundTrip(t *testing.T) {
	exprs := []string{"1+2*3", "A1&B1", "SUM(A1:A10)", "Sheet2!A1", `"hi"`, "-A1"}
	for _, e := range exprs {
		tree, err := ParseFormula(e)
		require.NoError(t, err, e)
		text := Reconstruct(tree)
		again, err := ParseFormula(text)
		require.NoError(t, err, text)
		assert.Equal(t, text, Reconstruct(again), e)
	}
}

func TestReconstructQuotesNonIdentifierSheetNames(t *testing.T) {
	tree, err := ParseFormula("'My Sheet'!A1")
	require.NoError(t, err)
	assert.Equal(t, "'My Sheet'!a1", Reconstruct(tree))
}

func TestCollectRefsFindsNestedReferences(t *testing.T) {
	tree, err := ParseFormula("SUM(A1:A10)+B1")
	require.NoError(t, err)
	refs := CollectRefs(tree, nil)
	require.Len(t, refs, 2)
	assert.True(t, refs[0].IsRange)
	assert.False(t, refs[1].IsRange)
}
