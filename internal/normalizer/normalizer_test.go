package normalizer

import (
	"testing"

	"arblangc/internal/ast"
	"arblangc/internal/location"
	"arblangc/internal/units"
)

func TestNormalizeScalesPrefixedUnit(t *testing.T) {
	loc := location.Location{File: "t.arb", Line: 1, Column: 1}
	mV := units.Simple{Prefix: "m", Symbol: "V", Spelling: "mV", Loc: loc}
	mech := &ast.Mechanism{
		Name: "test",
		Kind: ast.Density,
		Decls: []ast.Expr{
			ast.Parameter{
				Name:  "vrest",
				Value: ast.Float{Value: 65, Unit: mV, Loc: loc},
				Unit:  mV,
				Loc:   loc,
			},
		},
		Loc: loc,
	}

	out, err := Normalize([]*ast.Mechanism{mech})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	param := out[0].Decls[0].(ast.Parameter)
	f := param.Value.(ast.Float)
	if got, want := f.Value, 0.065; got != want {
		t.Errorf("value = %v, want %v", got, want)
	}
	reduced, ok := f.Unit.(units.Reduced)
	if !ok {
		t.Fatalf("unit = %T, want units.Reduced", f.Unit)
	}
	wantDim := units.Dim{units.DimMass: 1, units.DimLength: 2, units.DimTime: -3, units.DimCurrent: -1}
	if reduced.D != wantDim {
		t.Errorf("dim = %v, want %v", reduced.D, wantDim)
	}
}

func TestNormalizeLeavesUnannotatedLiteralsAlone(t *testing.T) {
	loc := location.Location{File: "t.arb", Line: 1, Column: 1}
	mech := &ast.Mechanism{
		Name: "test",
		Kind: ast.Point,
		Decls: []ast.Expr{
			ast.Constant{Name: "two", Value: ast.Integer{Value: 2, Loc: loc}, Loc: loc},
		},
		Loc: loc,
	}
	out, err := Normalize([]*ast.Mechanism{mech})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	c := out[0].Decls[0].(ast.Constant)
	i := c.Value.(ast.Integer)
	if i.Value != 2 {
		t.Errorf("value = %v, want 2", i.Value)
	}
}
