package solver

import (
	"arblangc/internal/ast"
	cerrors "arblangc/internal/errors"
	"arblangc/internal/resolved"
)

// Solve rewrites every evolve block of every mechanism from a derivative
// into a closed-form or implicit-Euler update expression, per
// solve.hpp's `resolved_mechanism solve(...)`. Mechanisms with no
// evolve blocks pass through untouched.
func Solve(mechs []*resolved.Mechanism) ([]*resolved.Mechanism, error) {
	out := make([]*resolved.Mechanism, len(mechs))
	for i, m := range mechs {
		sm, err := solveMechanism(m)
		if err != nil {
			return nil, err
		}
		out[i] = sm
	}
	return out, nil
}

func solveMechanism(m *resolved.Mechanism) (*resolved.Mechanism, error) {
	if len(m.Evolves) == 0 {
		return m, nil
	}
	dt, err := findDt(m)
	if err != nil {
		return nil, err
	}

	out := *m
	out.Evolves = make([]resolved.Evolve, len(m.Evolves))
	for i, ev := range m.Evolves {
		updated, err := solveOneState(ev.TargetPrime, ev.Value, dt)
		if err != nil {
			return nil, err
		}
		out.Evolves[i] = resolved.Evolve{TargetPrime: ev.TargetPrime, Value: updated, Loc: ev.Loc}
	}
	return &out, nil
}

func findDt(m *resolved.Mechanism) (resolved.Identifier, error) {
	for _, b := range m.Bindings {
		if b.Kind == ast.Dt {
			return resolved.Identifier{Name: b.Name, Typ: b.Typ, Loc: b.Loc}, nil
		}
	}
	return resolved.Identifier{}, cerrors.New(cerrors.TypeError, m.Loc,
		"mechanism %q has an evolve block but no binding of kind 'dt'", m.Name)
}
