package canon

import (
	"testing"

	"arblangc/internal/location"
	"arblangc/internal/resolved"
	"arblangc/internal/types"
)

func TestCanonicalizeHoistsNestedBinary(t *testing.T) {
	loc := location.Location{File: "t.arb", Line: 1, Column: 1}
	real := types.Quant{Loc: loc}
	// (1 + 2) * 3
	inner := resolved.Binary{Op: "+", Lhs: resolved.Float{Value: 1, Typ: real, Loc: loc}, Rhs: resolved.Float{Value: 2, Typ: real, Loc: loc}, Typ: real, Loc: loc}
	outer := resolved.Binary{Op: "*", Lhs: inner, Rhs: resolved.Float{Value: 3, Typ: real, Loc: loc}, Typ: real, Loc: loc}
	mech := &resolved.Mechanism{
		Name: "test",
		Constants: []resolved.Constant{
			{Name: "c", Typ: real, Value: outer, Loc: loc},
		},
		Loc: loc,
	}

	out, err := Canonicalize([]*resolved.Mechanism{mech})
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	val := out[0].Constants[0].Value
	let, ok := val.(resolved.Let)
	if !ok {
		t.Fatalf("value = %T, want resolved.Let", val)
	}
	if _, ok := let.Value.(resolved.Binary); !ok {
		t.Errorf("bound value = %T, want resolved.Binary", let.Value)
	}
	body, ok := let.Body.(resolved.Binary)
	if !ok {
		t.Fatalf("body = %T, want resolved.Binary", let.Body)
	}
	ref, ok := body.Lhs.(resolved.Identifier)
	if !ok || ref.Name != let.Name {
		t.Errorf("body.Lhs = %+v, want reference to %q", body.Lhs, let.Name)
	}
}

func TestSSARenamesShadowedLets(t *testing.T) {
	loc := location.Location{File: "t.arb", Line: 1, Column: 1}
	real := types.Quant{Loc: loc}
	// let x = 1 in let x = 2 in x
	innerLet := resolved.Let{Name: "x", Value: resolved.Float{Value: 2, Typ: real, Loc: loc},
		Body: resolved.Identifier{Name: "x", Typ: real, Loc: loc}, Typ: real, Loc: loc}
	outerLet := resolved.Let{Name: "x", Value: resolved.Float{Value: 1, Typ: real, Loc: loc}, Body: innerLet, Typ: real, Loc: loc}
	mech := &resolved.Mechanism{
		Name:      "test",
		Constants: []resolved.Constant{{Name: "c", Typ: real, Value: outerLet, Loc: loc}},
		Loc:       loc,
	}

	out, err := Canonicalize([]*resolved.Mechanism{mech})
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	top := out[0].Constants[0].Value.(resolved.Let)
	nested := top.Body.(resolved.Let)
	if top.Name == nested.Name {
		t.Errorf("expected distinct SSA names, got %q twice", top.Name)
	}
	ref := nested.Body.(resolved.Identifier)
	if ref.Name != nested.Name {
		t.Errorf("inner x should resolve to the inner binding %q, got %q", nested.Name, ref.Name)
	}
}
