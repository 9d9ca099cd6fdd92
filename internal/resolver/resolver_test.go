package resolver

import (
	"errors"
	"testing"

	cerrors "arblangc/internal/errors"
	"arblangc/internal/lexer"
	"arblangc/internal/parser"
	"arblangc/internal/resolved"
	"arblangc/internal/types"
)

func resolveSrc(t *testing.T, src string) ([]*resolved.Mechanism, error) {
	t.Helper()
	toks := lexer.New("test.arb", src).ScanTokens()
	mechs, err := parser.ParseMechanisms(toks)
	if err != nil {
		t.Fatalf("ParseMechanisms() error = %v", err)
	}
	return Resolve(mechs)
}

func compileErrorKind(t *testing.T, err error) cerrors.Kind {
	t.Helper()
	var ce *cerrors.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("error %v is not a *errors.CompileError", err)
	}
	return ce.Kind
}

func TestResolveAcceptsEqualDimensionAddition(t *testing.T) {
	src := `density d {
    parameter a = 1.0 [mV];
    parameter b = 2.0 [mV];
    constant k = a + b;
}`
	if _, err := resolveSrc(t, src); err != nil {
		t.Fatalf("Resolve() error = %v, want equal-dimension '+' to type-check", err)
	}
}

func TestResolveRejectsMismatchedDimensionAddition(t *testing.T) {
	src := `density d {
    parameter a = 1.0 [mV];
    parameter b = 2.0 [nA];
    constant k = a + b;
}`
	_, err := resolveSrc(t, src)
	if err == nil {
		t.Fatal("Resolve() error = nil, want a type_error for adding incompatible dimensions")
	}
	if kind := compileErrorKind(t, err); kind != cerrors.TypeError {
		t.Fatalf("Resolve() error kind = %q, want %q", kind, cerrors.TypeError)
	}
}

func TestResolveAllowsFreeDimensionMultiplication(t *testing.T) {
	src := `density d {
    parameter a = 1.0 [mV];
    parameter b = 2.0 [nA];
    constant k = a * b;
}`
	if _, err := resolveSrc(t, src); err != nil {
		t.Fatalf("Resolve() error = %v, want '*' to compose any two dimensions", err)
	}
}

func TestResolveRejectsUnboundIdentifier(t *testing.T) {
	src := `density d {
    constant k = undeclared_name;
}`
	_, err := resolveSrc(t, src)
	if err == nil {
		t.Fatal("Resolve() error = nil, want an unbound_identifier error")
	}
	if kind := compileErrorKind(t, err); kind != cerrors.UnboundIdentifier {
		t.Fatalf("Resolve() error kind = %q, want %q", kind, cerrors.UnboundIdentifier)
	}
}

func TestResolveRejectsInitialOfUndeclaredState(t *testing.T) {
	src := `density d {
    initial n = 0.3;
}`
	if _, err := resolveSrc(t, src); err == nil {
		t.Fatal("Resolve() error = nil, want an unbound_identifier error for an initial of an undeclared state")
	}
}

func TestResolveAcceptsCaretWithIntegerLiteralExponent(t *testing.T) {
	src := `density d {
    parameter a = 2.0 [mV];
    constant k = a ^ 2;
}`
	mechs, err := resolveSrc(t, src)
	if err != nil {
		t.Fatalf("Resolve() error = %v, want '^' with a literal integer exponent to type-check", err)
	}
	k := mechs[0].Constants[0]
	q, ok := k.Typ.(types.Quant)
	if !ok {
		t.Fatalf("constant k type = %T, want types.Quant", k.Typ)
	}
	// mV^2 should double the dimension exponents of mV.
	mVDim, _ := types.DimOf(types.QVoltage)
	want := types.Pow(mVDim, 2)
	if q.Dim != want {
		t.Errorf("k dimension = %v, want %v (mV^2)", q.Dim, want)
	}
}

func TestResolveRejectsCaretWithNonLiteralExponent(t *testing.T) {
	src := `density d {
    parameter a = 2.0 [mV];
    parameter b = 3.0;
    constant k = a ^ b;
}`
	_, err := resolveSrc(t, src)
	if err == nil {
		t.Fatal("Resolve() error = nil, want a type_error for a non-literal '^' exponent")
	}
	if kind := compileErrorKind(t, err); kind != cerrors.TypeError {
		t.Fatalf("Resolve() error kind = %q, want %q", kind, cerrors.TypeError)
	}
}

func TestResolveAcceptsEvolveOfDeclaredState(t *testing.T) {
	src := `density d {
    state n;
    bind dt_ = dt;
    initial n = 0.3;
    evolve n' = -n;
}`
	if _, err := resolveSrc(t, src); err != nil {
		t.Fatalf("Resolve() error = %v, want a declared state's evolve to resolve", err)
	}
}
