package sheets

// TokenType enumerates the lexical categories produced by the formula
// lexer (spec §4.3).
type TokenType int

const (
	TokEOF TokenType = iota
	TokNumber
	TokString
	TokBoolean
	TokErrorLiteral
	TokIdentifier  // bare identifier: function name, sheet name, or cell/range start
	TokQuotedSheet // 'sheet name' before a '!'
	TokBang        // '!'
	TokColon
	TokComma
	TokLParen
	TokRParen
	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokAmp
	TokEq   // '='
	TokEqEq // '=='
	TokNe   // '<>'
	TokNe2  // '!='
	TokLt
	TokGt
	TokLe
	TokGe
)

// Token is a single lexical token with its source position (rune offset
// into the formula text, after the leading '=').
type Token struct {
	Type TokenType
	Text string
	Pos  int
}
