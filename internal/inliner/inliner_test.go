package inliner

import (
	"strings"
	"testing"

	"arblangc/internal/location"
	"arblangc/internal/resolved"
	"arblangc/internal/types"
)

func TestInlineSubstitutesArgsAtEachCallSite(t *testing.T) {
	loc := location.Location{File: "t.arb", Line: 1, Column: 1}
	real := types.Quant{Loc: loc}

	// FUNCTION double(x) = x * 2
	fn := resolved.Function{
		Name:       "double",
		Args:       []resolved.Param{{Name: "x", Typ: real}},
		ReturnType: real,
		Body: resolved.Binary{
			Op:  "*",
			Lhs: resolved.Identifier{Name: "x", Typ: real, Loc: loc},
			Rhs: resolved.Float{Value: 2, Typ: real, Loc: loc},
			Typ: real, Loc: loc,
		},
		Loc: loc,
	}

	// PARAMETER a = double(1) + double(2)
	callSite := resolved.Binary{
		Op:  "+",
		Lhs: resolved.Call{Callee: "double", Args: []resolved.Expr{resolved.Float{Value: 1, Typ: real, Loc: loc}}, Typ: real, Loc: loc},
		Rhs: resolved.Call{Callee: "double", Args: []resolved.Expr{resolved.Float{Value: 2, Typ: real, Loc: loc}}, Typ: real, Loc: loc},
		Typ: real, Loc: loc,
	}

	mech := &resolved.Mechanism{
		Name:       "test",
		Functions:  []resolved.Function{fn},
		Parameters: []resolved.Parameter{{Name: "a", Typ: real, Value: callSite, Loc: loc}},
		Loc:        loc,
	}

	out, err := Inline([]*resolved.Mechanism{mech})
	if err != nil {
		t.Fatalf("Inline: %v", err)
	}
	if len(out[0].Functions) != 0 {
		t.Errorf("want function table dropped after inlining, got %d entries", len(out[0].Functions))
	}

	val := out[0].Parameters[0].Value
	lhsLet, ok := val.(resolved.Binary).Lhs.(resolved.Let)
	if !ok {
		t.Fatalf("lhs = %T, want resolved.Let wrapping the inlined call", val.(resolved.Binary).Lhs)
	}
	rhsLet, ok := val.(resolved.Binary).Rhs.(resolved.Let)
	if !ok {
		t.Fatalf("rhs = %T, want resolved.Let wrapping the inlined call", val.(resolved.Binary).Rhs)
	}
	if lhsLet.Name == rhsLet.Name {
		t.Errorf("both call sites bound argument under the same name %q, want distinct per-call-site names", lhsLet.Name)
	}
	if !strings.HasPrefix(lhsLet.Name, "x_") || !strings.HasPrefix(rhsLet.Name, "x_") {
		t.Errorf("bound names = %q, %q, want both prefixed with the original argument name", lhsLet.Name, rhsLet.Name)
	}

	lhsBody, ok := lhsLet.Body.(resolved.Binary)
	if !ok {
		t.Fatalf("lhs body = %T, want resolved.Binary (the inlined x * 2)", lhsLet.Body)
	}
	ref, ok := lhsBody.Lhs.(resolved.Identifier)
	if !ok || ref.Name != lhsLet.Name {
		t.Errorf("inlined body does not reference the renamed local: got %#v", lhsBody.Lhs)
	}
}

func TestInlineRejectsRecursion(t *testing.T) {
	loc := location.Location{File: "t.arb", Line: 1, Column: 1}
	real := types.Quant{Loc: loc}

	// FUNCTION loopy(x) = loopy(x)
	fn := resolved.Function{
		Name:       "loopy",
		Args:       []resolved.Param{{Name: "x", Typ: real}},
		ReturnType: real,
		Body: resolved.Call{
			Callee: "loopy",
			Args:   []resolved.Expr{resolved.Identifier{Name: "x", Typ: real, Loc: loc}},
			Typ:    real, Loc: loc,
		},
		Loc: loc,
	}
	mech := &resolved.Mechanism{
		Name:      "test",
		Functions: []resolved.Function{fn},
		Constants: []resolved.Constant{{
			Name: "c", Typ: real,
			Value: resolved.Call{Callee: "loopy", Args: []resolved.Expr{resolved.Float{Value: 1, Typ: real, Loc: loc}}, Typ: real, Loc: loc},
			Loc:   loc,
		}},
		Loc: loc,
	}

	if _, err := Inline([]*resolved.Mechanism{mech}); err == nil {
		t.Fatal("Inline: want error for recursive function, got nil")
	}
}
