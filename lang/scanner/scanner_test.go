package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/nppc2/lang/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()

	var s Scanner
	s.Init([]byte(src))
	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
		require.Less(t, len(toks), 1000, "scanner does not terminate")
	}
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}

func TestScanTokens(t *testing.T) {
	cases := []struct {
		src  string
		want []token.Kind
	}{
		{"", []token.Kind{token.EOF}},
		{"   \t\r\n", []token.Kind{token.EOF}},
		{"// just a comment", []token.Kind{token.EOF}},
		{"( ) { } , . ; + - * /", []token.Kind{
			token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
			token.COMMA, token.DOT, token.SEMI, token.PLUS, token.MINUS,
			token.STAR, token.SLASH, token.EOF,
		}},
		{"! != = == < <= > >=", []token.Kind{
			token.BANG, token.BANGEQ, token.EQ, token.EQEQ,
			token.LT, token.LE, token.GT, token.GE, token.EOF,
		}},
		{"var x = 1;", []token.Kind{
			token.VAR, token.IDENT, token.EQ, token.NUMBER, token.SEMI, token.EOF,
		}},
		{`fun f() { return "hi"; }`, []token.Kind{
			token.FUN, token.IDENT, token.LPAREN, token.RPAREN, token.LBRACE,
			token.RETURN, token.STRING, token.SEMI, token.RBRACE, token.EOF,
		}},
		{"class A < B {}", []token.Kind{
			token.CLASS, token.IDENT, token.LT, token.IDENT,
			token.LBRACE, token.RBRACE, token.EOF,
		}},
		{"a // trailing\nb", []token.Kind{token.IDENT, token.IDENT, token.EOF}},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			assert.Equal(t, c.want, kinds(scanAll(t, c.src)))
		})
	}
}

func TestScanLiterals(t *testing.T) {
	toks := scanAll(t, `var count = 12.5 + "ab cd";`)
	require.Len(t, toks, 8)
	assert.Equal(t, "count", toks[1].Lit)
	assert.Equal(t, "12.5", toks[3].Lit)
	assert.Equal(t, "ab cd", toks[5].Lit)
	assert.Equal(t, `"ab cd"`, toks[5].Lexeme)
}

func TestScanNumberDot(t *testing.T) {
	// a trailing dot is not part of the number
	toks := scanAll(t, "1.foo")
	assert.Equal(t, []token.Kind{token.NUMBER, token.DOT, token.IDENT, token.EOF}, kinds(toks))
	assert.Equal(t, "1", toks[0].Lit)
}

func TestScanLines(t *testing.T) {
	toks := scanAll(t, "a\nb\n\nc")
	require.Len(t, toks, 4)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, 4, toks[2].Line)
}

func TestScanErrors(t *testing.T) {
	t.Run("unterminated string", func(t *testing.T) {
		toks := scanAll(t, `"abc`)
		require.Equal(t, token.ILLEGAL, toks[0].Kind)
		assert.Equal(t, "unterminated string", toks[0].Lit)
	})
	t.Run("unexpected character", func(t *testing.T) {
		toks := scanAll(t, "@")
		require.Equal(t, token.ILLEGAL, toks[0].Kind)
		assert.Equal(t, "unexpected character", toks[0].Lit)
	})
	t.Run("multiline string counts lines", func(t *testing.T) {
		toks := scanAll(t, "\"a\nb\" c")
		require.Equal(t, token.STRING, toks[0].Kind)
		assert.Equal(t, 1, toks[0].Line)
		assert.Equal(t, 2, toks[1].Line)
	})
}
