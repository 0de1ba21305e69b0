package lexer_test

import (
	"testing"

	"github.com/mna/minicc/lang/lexer"
	"github.com/mna/minicc/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toks(t *testing.T, src string) []token.Token {
	t.Helper()
	tvs, err := lexer.Tokenize([]byte(src))
	require.NoError(t, err)
	out := make([]token.Token, len(tvs))
	for i, tv := range tvs {
		out[i] = tv.Token
	}
	return out
}

func TestTokenizeKeywordsAndIdents(t *testing.T) {
	got := toks(t, "int main(void) { return x; }")
	want := []token.Token{
		token.KwInt, token.IDENT, token.LPAREN, token.KwVoid, token.RPAREN,
		token.LBRACE, token.KwReturn, token.IDENT, token.SEMI, token.RBRACE,
		token.EOF,
	}
	assert.Equal(t, want, got)
}

func TestTokenizeCompoundOperatorsWinOverPrefix(t *testing.T) {
	got := toks(t, "a <<= b >> c <= d == e != f")
	want := []token.Token{
		token.IDENT, token.SHLEQ, token.IDENT, token.SHR, token.IDENT, token.LE,
		token.IDENT, token.EQEQ, token.IDENT, token.BANGEQ, token.IDENT,
		token.EOF,
	}
	assert.Equal(t, want, got)
}

func TestTokenizeIntegerLiteral(t *testing.T) {
	tvs, err := lexer.Tokenize([]byte("12345"))
	require.NoError(t, err)
	require.Len(t, tvs, 2)
	assert.Equal(t, token.INT, tvs[0].Token)
	assert.EqualValues(t, 12345, tvs[0].Int)
	assert.Equal(t, token.EOF, tvs[1].Token)
}

func TestTokenizeKeywordBeatsIdentForSameSpan(t *testing.T) {
	got := toks(t, "static externally")
	assert.Equal(t, []token.Token{token.KwStatic, token.IDENT, token.EOF}, got)
}

func TestTokenizeRejectsInvalidNumberSuffix(t *testing.T) {
	_, err := lexer.Tokenize([]byte("123abc"))
	require.Error(t, err)
}

func TestTokenizeRejectsUnknownByte(t *testing.T) {
	_, err := lexer.Tokenize([]byte("int x = 1 @ 2;"))
	require.Error(t, err)
}

func TestTokenizeWhitespaceIgnored(t *testing.T) {
	got := toks(t, "  int\tx\n=\r\n1;")
	assert.Equal(t, []token.Token{token.KwInt, token.IDENT, token.ASSIGN, token.INT, token.SEMI, token.EOF}, got)
}
