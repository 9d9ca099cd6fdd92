package parser

import (
	"testing"

	"arblangc/internal/ast"
	"arblangc/internal/lexer"
)

func parseSrc(t *testing.T, src string) *ast.Mechanism {
	t.Helper()
	toks := lexer.New("test.arb", src).ScanTokens()
	mechs, err := ParseMechanisms(toks)
	if err != nil {
		t.Fatalf("ParseMechanisms() error = %v", err)
	}
	if len(mechs) != 1 {
		t.Fatalf("ParseMechanisms() = %d mechanisms, want 1", len(mechs))
	}
	return mechs[0]
}

func TestParseMechanismDeclarations(t *testing.T) {
	src := `density hh {
    parameter gbar = 0.12 [S];
    state n;
    bind v = membrane_potential;
    initial n = 0.3;
    evolve n' = (1 - n) / 10.0;
    effect current_density_contribution = gbar * n * v;
    export n;
}`
	m := parseSrc(t, src)

	if m.Name != "hh" {
		t.Errorf("Name = %q, want %q", m.Name, "hh")
	}
	if m.Kind != ast.Density {
		t.Errorf("Kind = %q, want %q", m.Kind, ast.Density)
	}
	if len(m.Decls) != 7 {
		t.Fatalf("Decls = %d, want 7", len(m.Decls))
	}

	param, ok := m.Decls[0].(ast.Parameter)
	if !ok {
		t.Fatalf("Decls[0] = %T, want ast.Parameter", m.Decls[0])
	}
	lit, isFloat := param.Value.(ast.Float)
	if param.Name != "gbar" || !isFloat || lit.Unit == nil {
		t.Errorf("Decls[0] = %+v, want name gbar with a unit annotation on its literal value", param)
	}

	if _, ok := m.Decls[1].(ast.State); !ok {
		t.Errorf("Decls[1] = %T, want ast.State", m.Decls[1])
	}
}

func TestParseExprRespectsPrecedence(t *testing.T) {
	// a + b * c should parse as a + (b * c), not (a + b) * c.
	m := parseSrc(t, `density d { constant k = a + b * c; }`)
	decl := m.Decls[0].(ast.Constant)
	top, ok := decl.Value.(ast.Binary)
	if !ok {
		t.Fatalf("value = %T, want ast.Binary", decl.Value)
	}
	if top.Op != "+" {
		t.Fatalf("top operator = %q, want %q", top.Op, "+")
	}
	rhs, ok := top.Rhs.(ast.Binary)
	if !ok || rhs.Op != "*" {
		t.Fatalf("rhs = %+v, want a Binary '*' node", top.Rhs)
	}
}

func TestParseExprCaretIsRightAssociative(t *testing.T) {
	// a ^ b ^ c should parse as a ^ (b ^ c).
	m := parseSrc(t, `density d { constant k = a ^ b ^ c; }`)
	decl := m.Decls[0].(ast.Constant)
	top, ok := decl.Value.(ast.Binary)
	if !ok || top.Op != "^" {
		t.Fatalf("value = %+v, want a top-level '^' Binary", decl.Value)
	}
	if _, ok := top.Lhs.(ast.Identifier); !ok {
		t.Fatalf("lhs = %T, want ast.Identifier (a)", top.Lhs)
	}
	rhs, ok := top.Rhs.(ast.Binary)
	if !ok || rhs.Op != "^" {
		t.Fatalf("rhs = %+v, want a nested '^' Binary (b ^ c)", top.Rhs)
	}
}

func TestParseMechanismRejectsUnknownKind(t *testing.T) {
	toks := lexer.New("test.arb", `widget w { state n; }`).ScanTokens()
	if _, err := ParseMechanisms(toks); err == nil {
		t.Fatal("ParseMechanisms() error = nil, want a parse error for an unknown mechanism kind")
	}
}

func TestParseMechanismRejectsMissingSemicolon(t *testing.T) {
	toks := lexer.New("test.arb", `density d { state n }`).ScanTokens()
	if _, err := ParseMechanisms(toks); err == nil {
		t.Fatal("ParseMechanisms() error = nil, want a parse error for a missing ';'")
	}
}
