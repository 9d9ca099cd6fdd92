package errors

import (
	"errors"
	"strings"
	"testing"

	"arblangc/internal/location"
)

func TestErrorFormatsKindAndMessage(t *testing.T) {
	err := New(TypeError, location.Location{File: "m.arb", Line: 3, Column: 5}, "bad dimension for %q", "x")
	want := `type_error: bad dimension for "x" (at m.arb:3:5)`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestInternalUsesInternalLocation(t *testing.T) {
	err := Internal("unreachable: %s", "bad state")
	if err.Kind != InternalInvariantViolated {
		t.Errorf("Kind = %q, want %q", err.Kind, InternalInvariantViolated)
	}
	if !err.Location.IsInternal() {
		t.Errorf("Location = %+v, want an internal location", err.Location)
	}
	if got := err.Error(); got != "internal_invariant_violated: unreachable: bad state" {
		t.Errorf("Error() = %q, want no location suffix for an internal error", got)
	}
}

func TestWrapPreservesCompileErrorForErrorsAs(t *testing.T) {
	inner := New(UnboundIdentifier, location.Location{File: "m.arb", Line: 1}, "unbound identifier %q", "foo")
	wrapped := Wrap(Wrap(inner, "resolver"), "mechanism \"hh\"")

	var ce *CompileError
	if !errors.As(wrapped, &ce) {
		t.Fatal("errors.As() = false, want the original *CompileError to be recoverable through two Wrap layers")
	}
	if ce.Kind != UnboundIdentifier {
		t.Errorf("recovered Kind = %q, want %q", ce.Kind, UnboundIdentifier)
	}
}

func TestWrapOfNilReturnsNil(t *testing.T) {
	if err := Wrap(nil, "stage"); err != nil {
		t.Errorf("Wrap(nil, ...) = %v, want nil", err)
	}
}

func TestWithSourceAppendsCaretLine(t *testing.T) {
	err := New(ParseError, location.Location{File: "m.arb", Line: 2, Column: 3}, "unexpected token").WithSource("  bad <- token")
	got := err.Error()
	if !strings.Contains(got, "bad <- token") || !strings.Contains(got, "^") {
		t.Errorf("Error() = %q, want the source line and a caret", got)
	}
}
