package lexer

import (
	"testing"

	"arblangc/internal/token"
)

func typesOf(t *testing.T, toks []token.Token) []token.Type {
	t.Helper()
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestScanTokensRecognizesDeclarationKeywords(t *testing.T) {
	src := `density hh { parameter gbar = 0.12 [S]; state n; }`
	toks := New("test.arb", src).ScanTokens()
	got := typesOf(t, toks)

	want := []token.Type{
		token.DENSITY, token.IDENT, token.LBRACE,
		token.PARAMETER, token.IDENT, token.ASSIGN, token.FLOAT, token.LBRACKET, token.IDENT, token.RBRACKET, token.SEMI,
		token.STATE, token.IDENT, token.SEMI,
		token.RBRACE, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("ScanTokens() produced %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScanTokensSkipsLineComments(t *testing.T) {
	src := "state n; // trailing comment\nstate m;"
	toks := New("test.arb", src).ScanTokens()
	got := typesOf(t, toks)
	want := []token.Type{token.STATE, token.IDENT, token.SEMI, token.STATE, token.IDENT, token.SEMI, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("ScanTokens() = %v, want %v", got, want)
	}
}

func TestScanTokensDistinguishesOperators(t *testing.T) {
	src := `a == b != c <= d >= e && f || g`
	toks := New("test.arb", src).ScanTokens()
	got := typesOf(t, toks)
	want := []token.Type{
		token.IDENT, token.EQEQ, token.IDENT, token.NEQ, token.IDENT, token.LE, token.IDENT,
		token.GE, token.IDENT, token.ANDAND, token.IDENT, token.OROR, token.IDENT, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("ScanTokens() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScanTokensEmitsErrorTokenOnUnexpectedRune(t *testing.T) {
	toks := New("test.arb", "state n ~ junk;").ScanTokens()
	found := false
	for _, tok := range toks {
		if tok.Type == token.ERROR {
			found = true
		}
	}
	if !found {
		t.Errorf("ScanTokens() = %v, want an ERROR token for the stray '~'", toks)
	}
}
