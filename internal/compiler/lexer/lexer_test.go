package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexLiterals(t *testing.T) {
	toks, err := Lex(`"hi" 42 3.5 true false null`)
	require.NoError(t, err)
	require.Len(t, toks, 12) // 6 values, the 5 application spaces between them, EOF

	assert.Equal(t, KindString, toks[0].Kind)
	assert.Equal(t, "hi", toks[0].Literal)
	assert.Equal(t, float64(42), toks[2].Literal)
	assert.Equal(t, float64(3.5), toks[4].Literal)
	assert.Equal(t, true, toks[6].Literal)
	assert.Equal(t, false, toks[8].Literal)
	assert.Equal(t, KindNull, toks[10].Kind)
	assert.Equal(t, EOF, toks[11].Type)
}

func TestLexContextAndRoot(t *testing.T) {
	toks, err := Lex("@ $")
	require.NoError(t, err)
	require.Len(t, toks, 4) // @, application space, $, EOF
	assert.Equal(t, REF, toks[0].Type)
	assert.Equal(t, "@", toks[0].Literal)
	assert.Equal(t, REF, toks[2].Type)
	assert.Equal(t, "$", toks[2].Literal)
}

func TestLexOperatorsMaximalMunch(t *testing.T) {
	toks, err := Lex("a <= b")
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, "<=", toks[1].Literal)
}

func TestLexWhitespaceAbsorption(t *testing.T) {
	toks, err := Lex("a . b")
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, ".", toks[1].Literal)
}

func TestLexApplicationSpacePreserved(t *testing.T) {
	toks, err := Lex("filter x xs")
	require.NoError(t, err)
	// filter, SPACE, x, SPACE, xs, EOF
	require.Len(t, toks, 6)
	assert.Equal(t, spaceLexeme, toks[1].Lexeme())
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := Lex(`"unterminated`)
	assert.Error(t, err)
}

func TestLexUnexpectedCharacter(t *testing.T) {
	_, err := Lex("a ~ b")
	assert.Error(t, err)
}

func TestLexStringLiteralNeverAbsorbs(t *testing.T) {
	// A string whose content happens to be punctuation must not behave like
	// punctuation during whitespace absorption.
	toks, err := Lex(`"." @`)
	require.NoError(t, err)
	// "." VALUE, SPACE, @, EOF
	require.Len(t, toks, 4)
	assert.Equal(t, VALUE, toks[0].Type)
	assert.Equal(t, spaceLexeme, toks[1].Lexeme())
}

func TestLexNumberExponents(t *testing.T) {
	toks, err := Lex("1e3 2.5E-2")
	require.NoError(t, err)
	assert.Equal(t, float64(1000), toks[0].Literal)
	assert.Equal(t, float64(0.025), toks[2].Literal)
}

func TestLexEscapedQuoteDoesNotTerminate(t *testing.T) {
	toks, err := Lex(`"a\"b"`)
	require.NoError(t, err)
	assert.Equal(t, `a"b`, toks[0].Literal)
}

func TestLexPositionsAreByteOffsets(t *testing.T) {
	toks, err := Lex("ab + cd")
	require.NoError(t, err)
	assert.Equal(t, 0, toks[0].Pos)
	assert.Equal(t, 3, toks[1].Pos)
	assert.Equal(t, 5, toks[2].Pos)
}
