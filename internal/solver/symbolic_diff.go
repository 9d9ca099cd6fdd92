// Package solver rewrites each evolve block's derivative expression into
// a closed-form or implicit-Euler update expression, grounded on
// original_source/arblang/include/arblang/solver/{solve,solve_ode,
// symbolic_diff}.hpp. Those headers declare the interface only; the
// differentiation rules and the linear/nonlinear classification below
// follow spec.md §4.8 directly.
package solver

import (
	cerrors "arblangc/internal/errors"
	"arblangc/internal/resolved"
)

// diffVar names the variable differentiation is taken with respect to:
// a bare state (sym, no sub-field) or one field of a record-valued
// state (sym, sub-field), mirroring resolved_ir::diff_var.
type diffVar struct {
	sym      string
	subField string // "" unless differentiating one field of a record state
}

func (d diffVar) matches(e resolved.Expr) bool {
	switch v := e.(type) {
	case resolved.Identifier:
		return d.subField == "" && v.Name == d.sym
	case resolved.FieldAccess:
		if d.subField == "" {
			return false
		}
		id, ok := v.Record.(resolved.Identifier)
		return ok && id.Name == d.sym && v.Field == d.subField
	default:
		return false
	}
}

func zero(e resolved.Expr) resolved.Expr {
	return resolved.Float{Value: 0, Typ: e.Type(), Loc: e.Location()}
}

func one(e resolved.Expr) resolved.Expr {
	return resolved.Float{Value: 1, Typ: e.Type(), Loc: e.Location()}
}

// symDiff computes d(e)/d(v), following the standard calculus closures
// (sum, difference, product, quotient, chain) spec.md §4.8 names. abs
// is explicitly excluded — its derivative is piecewise-discontinuous
// at zero and the source text calls that an error, not a rule.
func symDiff(e resolved.Expr, v diffVar) (resolved.Expr, error) {
	if v.matches(e) {
		return one(e), nil
	}
	switch n := e.(type) {
	case resolved.Identifier, resolved.Argument, resolved.Float, resolved.Int:
		return zero(e), nil

	case resolved.Unary:
		if n.Op != "-" {
			return nil, cerrors.New(cerrors.NonDifferentiable, n.Loc, "cannot differentiate unary operator %q", n.Op)
		}
		d, err := symDiff(n.Arg, v)
		if err != nil {
			return nil, err
		}
		return resolved.Unary{Op: "-", Arg: d, Typ: n.Typ, Loc: n.Loc}, nil

	case resolved.Binary:
		switch n.Op {
		case "+", "-":
			dl, err := symDiff(n.Lhs, v)
			if err != nil {
				return nil, err
			}
			dr, err := symDiff(n.Rhs, v)
			if err != nil {
				return nil, err
			}
			return resolved.Binary{Op: n.Op, Lhs: dl, Rhs: dr, Typ: n.Typ, Loc: n.Loc}, nil

		case "*":
			// product rule: (f*g)' = f'*g + f*g'
			dl, err := symDiff(n.Lhs, v)
			if err != nil {
				return nil, err
			}
			dr, err := symDiff(n.Rhs, v)
			if err != nil {
				return nil, err
			}
			term1 := resolved.Binary{Op: "*", Lhs: dl, Rhs: n.Rhs, Typ: n.Typ, Loc: n.Loc}
			term2 := resolved.Binary{Op: "*", Lhs: n.Lhs, Rhs: dr, Typ: n.Typ, Loc: n.Loc}
			return resolved.Binary{Op: "+", Lhs: term1, Rhs: term2, Typ: n.Typ, Loc: n.Loc}, nil

		case "/":
			// quotient rule: (f/g)' = (f'*g - f*g') / g^2
			dl, err := symDiff(n.Lhs, v)
			if err != nil {
				return nil, err
			}
			dr, err := symDiff(n.Rhs, v)
			if err != nil {
				return nil, err
			}
			num := resolved.Binary{
				Op:  "-",
				Lhs: resolved.Binary{Op: "*", Lhs: dl, Rhs: n.Rhs, Typ: n.Typ, Loc: n.Loc},
				Rhs: resolved.Binary{Op: "*", Lhs: n.Lhs, Rhs: dr, Typ: n.Typ, Loc: n.Loc},
				Typ: n.Typ, Loc: n.Loc,
			}
			denom := resolved.Binary{Op: "*", Lhs: n.Rhs, Rhs: n.Rhs, Typ: n.Typ, Loc: n.Loc}
			return resolved.Binary{Op: "/", Lhs: num, Rhs: denom, Typ: n.Typ, Loc: n.Loc}, nil

		case "^":
			// power rule for a constant integer exponent: d(f^n)/dv =
			// n * f^(n-1) * df/dv. The resolver only accepts '^' with a
			// literal-integer rhs, so n.Rhs is always resolved.Int.
			exp, ok := n.Rhs.(resolved.Int)
			if !ok {
				return nil, cerrors.New(cerrors.NonDifferentiable, n.Loc, "'^' exponent must be a compile-time integer literal")
			}
			df, err := symDiff(n.Lhs, v)
			if err != nil {
				return nil, err
			}
			reduced := resolved.Binary{
				Op: "^", Lhs: n.Lhs,
				Rhs: resolved.Int{Value: exp.Value - 1, Typ: exp.Typ, Loc: exp.Loc},
				Typ: n.Typ, Loc: n.Loc,
			}
			coeff := resolved.Binary{
				Op:  "*",
				Lhs: resolved.Float{Value: float64(exp.Value), Typ: n.Typ, Loc: n.Loc},
				Rhs: reduced,
				Typ: n.Typ, Loc: n.Loc,
			}
			return resolved.Binary{Op: "*", Lhs: coeff, Rhs: df, Typ: n.Typ, Loc: n.Loc}, nil

		default:
			return nil, cerrors.New(cerrors.NonDifferentiable, n.Loc, "cannot differentiate operator %q", n.Op)
		}

	case resolved.Conditional:
		// Assumes the condition itself does not depend on v; a
		// piecewise rate differentiates branch-wise.
		dthen, err := symDiff(n.Then, v)
		if err != nil {
			return nil, err
		}
		delse, err := symDiff(n.Else, v)
		if err != nil {
			return nil, err
		}
		return resolved.Conditional{Cond: n.Cond, Then: dthen, Else: delse, Typ: n.Typ, Loc: n.Loc}, nil

	case resolved.Call:
		return diffCall(n, v)

	case resolved.Let:
		// ANF let-bindings are pure, non-recursive names for a
		// subexpression; differentiating through one is equivalent to
		// beta-reducing it away first, then differentiating the result.
		return symDiff(substituteIdent(n.Body, n.Name, n.Value), v)

	case resolved.FieldAccess, resolved.Object:
		return nil, cerrors.New(cerrors.NonDifferentiable, e.Location(), "cannot differentiate expression of kind %T", e)

	default:
		return nil, cerrors.Internal("symDiff: unhandled expression kind %T", e)
	}
}

func diffCall(c resolved.Call, v diffVar) (resolved.Expr, error) {
	if len(c.Args) != 1 {
		return nil, cerrors.New(cerrors.NonDifferentiable, c.Loc, "cannot differentiate %q with %d arguments", c.Callee, len(c.Args))
	}
	u := c.Args[0]
	du, err := symDiff(u, v)
	if err != nil {
		return nil, err
	}
	chain := func(outer resolved.Expr) resolved.Expr {
		return resolved.Binary{Op: "*", Lhs: du, Rhs: outer, Typ: c.Typ, Loc: c.Loc}
	}
	switch c.Callee {
	case "exp":
		return chain(resolved.Call{Callee: "exp", Args: []resolved.Expr{u}, Typ: c.Typ, Loc: c.Loc}), nil
	case "sin":
		return chain(resolved.Call{Callee: "cos", Args: []resolved.Expr{u}, Typ: c.Typ, Loc: c.Loc}), nil
	case "cos":
		return resolved.Unary{
			Op:  "-",
			Arg: chain(resolved.Call{Callee: "sin", Args: []resolved.Expr{u}, Typ: c.Typ, Loc: c.Loc}),
			Typ: c.Typ, Loc: c.Loc,
		}, nil
	case "log":
		return resolved.Binary{Op: "/", Lhs: du, Rhs: u, Typ: c.Typ, Loc: c.Loc}, nil
	default:
		return nil, cerrors.New(cerrors.NonDifferentiable, c.Loc, "%q has no differentiation rule", c.Callee)
	}
}

// containsVar reports whether e references v anywhere in its tree —
// used, after simplification, to classify a*x + b as linear when the
// coefficient a no longer mentions x. This is a structural check, not
// a re-differentiation: symDiff's product/quotient-rule expansions
// already introduce literal-zero terms for every non-matching
// sub-expression, and optimizer.SimplifyExpr folds those away, so by
// the time this runs a genuinely x-independent coefficient has no
// occurrence of x left to find.
func containsVar(e resolved.Expr, v diffVar) bool {
	if v.matches(e) {
		return true
	}
	switch n := e.(type) {
	case resolved.Identifier, resolved.Argument, resolved.Float, resolved.Int:
		return false
	case resolved.Unary:
		return containsVar(n.Arg, v)
	case resolved.Binary:
		return containsVar(n.Lhs, v) || containsVar(n.Rhs, v)
	case resolved.Call:
		for _, a := range n.Args {
			if containsVar(a, v) {
				return true
			}
		}
		return false
	case resolved.Conditional:
		return containsVar(n.Cond, v) || containsVar(n.Then, v) || containsVar(n.Else, v)
	case resolved.FieldAccess:
		return containsVar(n.Record, v)
	case resolved.Object:
		for _, f := range n.Fields {
			if containsVar(f.Value, v) {
				return true
			}
		}
		return false
	case resolved.Let:
		return containsVar(n.Value, v) || containsVar(n.Body, v)
	default:
		return false
	}
}
