package printer

import (
	"testing"

	"arblangc/internal/ast"
	"arblangc/internal/lexer"
	"arblangc/internal/parser"
)

func parseOne(t *testing.T, src string) *ast.Mechanism {
	t.Helper()
	toks := lexer.New("t.arb", src).ScanTokens()
	mechs, err := parser.ParseMechanisms(toks)
	if err != nil {
		t.Fatalf("ParseMechanisms(%q) error = %v", src, err)
	}
	if len(mechs) != 1 {
		t.Fatalf("ParseMechanisms(%q) = %d mechanisms, want 1", src, len(mechs))
	}
	return mechs[0]
}

func TestPrintReparsesToStructurallyEqualTree(t *testing.T) {
	src := `density hh {
    parameter gbar: conductance = 0.12 [S/cm^2];
    state n;
    bind v = membrane_potential;
    initial n = 0.3;
    evolve n' = (ninf - n) / tau;
    effect current_density_contribution = gbar * n * v;
    export n;
}
`
	m1 := parseOne(t, src)
	printed := Print(m1)
	m2 := parseOne(t, printed)

	if m1.Name != m2.Name || m1.Kind != m2.Kind {
		t.Fatalf("re-parsed mechanism header = %s %s, want %s %s", m2.Kind, m2.Name, m1.Kind, m1.Name)
	}
	if len(m1.Decls) != len(m2.Decls) {
		t.Fatalf("re-parsed decl count = %d, want %d\nprinted source:\n%s", len(m2.Decls), len(m1.Decls), printed)
	}
}

func TestPrintRoundTripsExpressionForms(t *testing.T) {
	src := `density test {
    function f(x: real): real = let y = x * 2 in if y > 0 { y } else { -y };
    parameter p: real = f(3) + 1;
}
`
	m1 := parseOne(t, src)
	printed := Print(m1)
	m2 := parseOne(t, printed)

	if len(m2.Decls) != len(m1.Decls) {
		t.Fatalf("re-parsed decl count = %d, want %d\nprinted source:\n%s", len(m2.Decls), len(m1.Decls), printed)
	}
}
