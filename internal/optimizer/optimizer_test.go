package optimizer

import (
	"testing"

	"arblangc/internal/location"
	"arblangc/internal/resolved"
	"arblangc/internal/types"
)

func TestOptimizeFoldsLiteralConditionalToDeadBranch(t *testing.T) {
	loc := location.Location{File: "t.arb", Line: 1, Column: 1}
	real := types.Quant{Loc: loc}
	boolTyp := types.Bool{Loc: loc}

	// if (2 < 3) then 10 else 20 -> 10
	cond := resolved.Binary{
		Op: "<", Lhs: resolved.Float{Value: 2, Typ: real, Loc: loc}, Rhs: resolved.Float{Value: 3, Typ: real, Loc: loc},
		Typ: boolTyp, Loc: loc,
	}
	expr := resolved.Conditional{
		Cond: cond,
		Then: resolved.Float{Value: 10, Typ: real, Loc: loc},
		Else: resolved.Float{Value: 20, Typ: real, Loc: loc},
		Typ:  real, Loc: loc,
	}
	mech := &resolved.Mechanism{
		Name:      "test",
		Constants: []resolved.Constant{{Name: "c", Typ: real, Value: expr, Loc: loc}},
		Loc:       loc,
	}

	out := Optimize([]*resolved.Mechanism{mech})
	val := out[0].Constants[0].Value
	f, ok := val.(resolved.Float)
	if !ok {
		t.Fatalf("value = %T, want resolved.Float after comparison-fold and dead-branch elimination, got %#v", val, val)
	}
	if f.Value != 10 {
		t.Errorf("value = %v, want 10 (the then-branch, since 2 < 3)", f.Value)
	}
}

func TestOptimizeFoldsAndDropsDeadBinding(t *testing.T) {
	loc := location.Location{File: "t.arb", Line: 1, Column: 1}
	real := types.Quant{Loc: loc}
	// let _t1 = 2 + 3 in let unused = _t1 in 10
	innerLet := resolved.Let{
		Name:  "unused",
		Value: resolved.Identifier{Name: "_t1", Typ: real, Loc: loc},
		Body:  resolved.Float{Value: 10, Typ: real, Loc: loc},
		Typ:   real, Loc: loc,
	}
	outerLet := resolved.Let{
		Name: "_t1",
		Value: resolved.Binary{
			Op: "+", Lhs: resolved.Float{Value: 2, Typ: real, Loc: loc}, Rhs: resolved.Float{Value: 3, Typ: real, Loc: loc},
			Typ: real, Loc: loc,
		},
		Body: innerLet, Typ: real, Loc: loc,
	}
	mech := &resolved.Mechanism{
		Name:      "test",
		Constants: []resolved.Constant{{Name: "c", Typ: real, Value: outerLet, Loc: loc}},
		Loc:       loc,
	}

	out := Optimize([]*resolved.Mechanism{mech})
	val := out[0].Constants[0].Value
	f, ok := val.(resolved.Float)
	if !ok {
		t.Fatalf("value = %T, want resolved.Float after folding and DCE, got %#v", val, val)
	}
	if f.Value != 10 {
		t.Errorf("value = %v, want 10", f.Value)
	}
}
