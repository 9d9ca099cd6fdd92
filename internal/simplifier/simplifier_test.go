package simplifier

import (
	"testing"

	"arblangc/internal/ast"
	"arblangc/internal/location"
	"arblangc/internal/resolved"
	"arblangc/internal/types"
)

func TestSimplifyFlattensRecordStateIntoScalarFields(t *testing.T) {
	loc := location.Location{File: "t.arb", Line: 1, Column: 1}
	real := types.Quant{Loc: loc}
	gateType := types.Record{Fields: []types.Field{{Name: "m", Type: real}, {Name: "h", Type: real}}, Loc: loc}

	mech := &resolved.Mechanism{
		Name: "test",
		Kind: ast.Density,
		States: []resolved.State{
			{Name: "gate", Typ: gateType, Loc: loc},
		},
		Initials: []resolved.Initial{
			{
				Target: "gate",
				Value: resolved.Object{
					Fields: []resolved.ObjectField{
						{Name: "m", Value: resolved.Float{Value: 0, Typ: real, Loc: loc}},
						{Name: "h", Value: resolved.Float{Value: 1, Typ: real, Loc: loc}},
					},
					Typ: gateType, Loc: loc,
				},
				Loc: loc,
			},
		},
		Evolves: []resolved.Evolve{
			{
				TargetPrime: "gate",
				Value:       resolved.Identifier{Name: "gate", Typ: gateType, Loc: loc},
				Loc:         loc,
			},
		},
		Loc: loc,
	}

	out, err := Simplify([]*resolved.Mechanism{mech})
	if err != nil {
		t.Fatalf("Simplify() error = %v", err)
	}
	sm := out[0]

	if len(sm.States) != 2 {
		t.Fatalf("States = %d entries, want 2 (flattened), got %#v", len(sm.States), sm.States)
	}
	wantNames := map[string]bool{"gate_m": true, "gate_h": true}
	for _, s := range sm.States {
		if !wantNames[s.Name] {
			t.Errorf("unexpected flattened state name %q", s.Name)
		}
		if _, ok := s.Typ.(types.Quant); !ok {
			t.Errorf("state %q type = %T, want types.Quant", s.Name, s.Typ)
		}
	}

	if len(sm.Initials) != 2 {
		t.Fatalf("Initials = %d entries, want 2", len(sm.Initials))
	}
	for _, in := range sm.Initials {
		if !wantNames[in.Target] {
			t.Errorf("unexpected flattened initial target %q", in.Target)
		}
		if _, ok := in.Value.(resolved.Float); !ok {
			t.Errorf("initial %q value = %T, want resolved.Float", in.Target, in.Value)
		}
	}

	if len(sm.Evolves) != 2 {
		t.Fatalf("Evolves = %d entries, want 2 (one per field of gate)", len(sm.Evolves))
	}
	for _, ev := range sm.Evolves {
		if !wantNames[ev.TargetPrime] {
			t.Errorf("unexpected flattened evolve target %q", ev.TargetPrime)
		}
		arg, ok := ev.Value.(resolved.Argument)
		if !ok {
			t.Fatalf("evolve %q value = %T, want resolved.Argument (flattened field read)", ev.TargetPrime, ev.Value)
		}
		if arg.Name != ev.TargetPrime {
			t.Errorf("evolve %q value argument name = %q, want %q", ev.TargetPrime, arg.Name, ev.TargetPrime)
		}
	}
}

func TestSimplifyRewritesScalarStateReadAsArgument(t *testing.T) {
	loc := location.Location{File: "t.arb", Line: 1, Column: 1}
	real := types.Quant{Loc: loc}

	mech := &resolved.Mechanism{
		Name: "test",
		Kind: ast.Density,
		States: []resolved.State{
			{Name: "n", Typ: real, Loc: loc},
		},
		Effects: []resolved.Effect{
			{
				Kind:  ast.CurrentDensityContribution,
				Value: resolved.Identifier{Name: "n", Typ: real, Loc: loc},
				Loc:   loc,
			},
		},
		Loc: loc,
	}

	out, err := Simplify([]*resolved.Mechanism{mech})
	if err != nil {
		t.Fatalf("Simplify() error = %v", err)
	}
	sm := out[0]

	if len(sm.Effects) != 1 {
		t.Fatalf("Effects = %d entries, want 1", len(sm.Effects))
	}
	if _, ok := sm.Effects[0].Value.(resolved.Argument); !ok {
		t.Fatalf("effect value = %T, want resolved.Argument (bare state read)", sm.Effects[0].Value)
	}
}

func TestBuildPrintableMechanismSplitsConstantAndAssignedParameters(t *testing.T) {
	loc := location.Location{File: "t.arb", Line: 1, Column: 1}
	real := types.Quant{Loc: loc}

	mech := &resolved.Mechanism{
		Name: "test",
		Kind: ast.Density,
		Parameters: []resolved.Parameter{
			{Name: "gbar", Typ: real, Value: resolved.Float{Value: 0.1, Typ: real, Loc: loc}, Loc: loc},
			{
				Name: "scaled",
				Typ:  real,
				Value: resolved.Binary{
					Op:  "*",
					Lhs: resolved.Argument{Name: "celsius", Typ: real, Loc: loc},
					Rhs: resolved.Float{Value: 2, Typ: real, Loc: loc},
					Typ: real, Loc: loc,
				},
				Loc: loc,
			},
		},
		Bindings: []resolved.Binding{
			{Name: "celsius", Kind: ast.Temperature, Typ: real, Loc: loc},
		},
		Loc: loc,
	}

	pm := BuildPrintableMechanism(mech)

	if len(pm.ProcedurePack.ConstantParameters) != 1 {
		t.Errorf("ConstantParameters = %d, want 1 (gbar)", len(pm.ProcedurePack.ConstantParameters))
	}
	if len(pm.ProcedurePack.AssignedParameters) != 1 {
		t.Errorf("AssignedParameters = %d, want 1 (scaled)", len(pm.ProcedurePack.AssignedParameters))
	}
	if _, ok := pm.InitWriteMap.ParameterMap[pointer("scaled")]; !ok {
		t.Errorf("InitWriteMap.ParameterMap missing entry for %q", pointer("scaled"))
	}
	if _, ok := pm.InitReadMap.BindingMap[pointer("celsius")]; !ok {
		t.Errorf("InitReadMap.BindingMap missing entry for %q", pointer("celsius"))
	}
}
