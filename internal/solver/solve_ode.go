package solver

import (
	"arblangc/internal/optimizer"
	"arblangc/internal/resolved"
)

// solveOneState rewrites a single evolve's derivative f(x, ...) = x'
// into a closed-form or implicit-Euler update for x, following
// spec.md §4.8. stateName is the bare state this evolve targets;
// dtRef is the resolved identifier bound to the simulator's time step.
func solveOneState(stateName string, rate resolved.Expr, dtRef resolved.Identifier) (resolved.Expr, error) {
	v := diffVar{sym: stateName}
	rawA, err := symDiff(rate, v)
	if err != nil {
		return nil, err
	}
	a := optimizer.SimplifyExpr(rawA)

	var update resolved.Expr
	if !containsVar(a, v) {
		update, err = closedForm(stateName, rate, a, dtRef)
	} else {
		update, err = implicitEuler(stateName, rate, a, dtRef)
	}
	if err != nil {
		return nil, err
	}
	return optimizer.SimplifyExpr(update), nil
}

// closedForm handles x' = a*x + b, a and b independent of x:
// x(t+dt) = xinf + (x - xinf)*exp(a*dt), xinf = -b/a (a == 0: x + b*dt).
func closedForm(stateName string, rate, a resolved.Expr, dtRef resolved.Identifier) (resolved.Expr, error) {
	loc := rate.Location()
	typ := rate.Type()
	x := resolved.Identifier{Name: stateName, Typ: typ, Loc: loc}

	// b = f(0) - recompute the rate with x substituted by zero, since
	// a*x + b - a*x == b only requires one substitution, not a second
	// differentiation.
	zeroX := resolved.Float{Value: 0, Typ: typ, Loc: loc}
	b := substituteIdent(rate, stateName, zeroX)

	if af, ok := a.(resolved.Float); ok && af.Value == 0 {
		// x' = b: x_new = x + b*dt
		return resolved.Binary{
			Op: "+", Lhs: x,
			Rhs: resolved.Binary{Op: "*", Lhs: b, Rhs: dtRef, Typ: typ, Loc: loc},
			Typ: typ, Loc: loc,
		}, nil
	}

	xinf := resolved.Unary{
		Op: "-",
		Arg: resolved.Binary{Op: "/", Lhs: b, Rhs: a, Typ: typ, Loc: loc},
		Typ: typ, Loc: loc,
	}
	decay := resolved.Call{
		Callee: "exp",
		Args:   []resolved.Expr{resolved.Binary{Op: "*", Lhs: a, Rhs: dtRef, Typ: typ, Loc: loc}},
		Typ:    typ, Loc: loc,
	}
	return resolved.Binary{
		Op:  "+",
		Lhs: xinf,
		Rhs: resolved.Binary{Op: "*", Lhs: resolved.Binary{Op: "-", Lhs: x, Rhs: xinf, Typ: typ, Loc: loc}, Rhs: decay, Typ: typ, Loc: loc},
		Typ: typ, Loc: loc,
	}, nil
}

// implicitEuler performs one Newton step of x_new - x = dt*f(x_new),
// linearized around the current x: x_new = x + dt*f(x) / (1 - dt*f'(x)).
func implicitEuler(stateName string, rate, fprime resolved.Expr, dtRef resolved.Identifier) (resolved.Expr, error) {
	loc := rate.Location()
	typ := rate.Type()
	x := resolved.Identifier{Name: stateName, Typ: typ, Loc: loc}

	dtF := resolved.Binary{Op: "*", Lhs: dtRef, Rhs: rate, Typ: typ, Loc: loc}
	denom := resolved.Binary{
		Op: "-", Lhs: resolved.Float{Value: 1, Typ: typ, Loc: loc},
		Rhs: resolved.Binary{Op: "*", Lhs: dtRef, Rhs: fprime, Typ: typ, Loc: loc},
		Typ: typ, Loc: loc,
	}
	step := resolved.Binary{Op: "/", Lhs: dtF, Rhs: denom, Typ: typ, Loc: loc}
	return resolved.Binary{Op: "+", Lhs: x, Rhs: step, Typ: typ, Loc: loc}, nil
}

// substituteIdent replaces every bare reference to name with replacement.
// Used only to evaluate a rate expression at x == 0 when extracting the
// additive term b out of a linear a*x + b rate.
func substituteIdent(e resolved.Expr, name string, replacement resolved.Expr) resolved.Expr {
	switch v := e.(type) {
	case resolved.Identifier:
		if v.Name == name {
			return replacement
		}
		return v
	case resolved.Argument, resolved.Float, resolved.Int:
		return v
	case resolved.Unary:
		return resolved.Unary{Op: v.Op, Arg: substituteIdent(v.Arg, name, replacement), Typ: v.Typ, Loc: v.Loc}
	case resolved.Binary:
		return resolved.Binary{
			Op: v.Op, Lhs: substituteIdent(v.Lhs, name, replacement), Rhs: substituteIdent(v.Rhs, name, replacement),
			Typ: v.Typ, Loc: v.Loc,
		}
	case resolved.Call:
		args := make([]resolved.Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = substituteIdent(a, name, replacement)
		}
		return resolved.Call{Callee: v.Callee, Args: args, Typ: v.Typ, Loc: v.Loc}
	case resolved.Conditional:
		return resolved.Conditional{
			Cond: substituteIdent(v.Cond, name, replacement), Then: substituteIdent(v.Then, name, replacement),
			Else: substituteIdent(v.Else, name, replacement), Typ: v.Typ, Loc: v.Loc,
		}
	case resolved.FieldAccess:
		return resolved.FieldAccess{Record: substituteIdent(v.Record, name, replacement), Field: v.Field, Typ: v.Typ, Loc: v.Loc}
	case resolved.Object:
		fields := make([]resolved.ObjectField, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = resolved.ObjectField{Name: f.Name, Value: substituteIdent(f.Value, name, replacement)}
		}
		return resolved.Object{Fields: fields, Typ: v.Typ, Loc: v.Loc}
	case resolved.Let:
		val := substituteIdent(v.Value, name, replacement)
		if v.Name == name {
			return resolved.Let{Name: v.Name, Value: val, Body: v.Body, Typ: v.Typ, Loc: v.Loc}
		}
		return resolved.Let{Name: v.Name, Value: val, Body: substituteIdent(v.Body, name, replacement), Typ: v.Typ, Loc: v.Loc}
	default:
		return v
	}
}
