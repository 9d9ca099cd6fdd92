// Package optimizer runs the fixed-point optimization loop over
// canonicalized mechanisms: common subexpression elimination, constant
// folding, copy propagation and dead code elimination, repeated until a
// full round makes no further change. The pass order and looping
// condition are taken verbatim from original_source/arblang/include/
// arblang/optimizer/optimizer.hpp's `optimizer<Expr>::optimize()`.
package optimizer

import "arblangc/internal/resolved"

// Optimize drives each mechanism's let-chain to a fixed point.
func Optimize(mechs []*resolved.Mechanism) []*resolved.Mechanism {
	out := make([]*resolved.Mechanism, len(mechs))
	for i, m := range mechs {
		out[i] = optimizeMechanism(m)
	}
	return out
}

func optimizeMechanism(m *resolved.Mechanism) *resolved.Mechanism {
	cur := m
	for {
		changed := false
		cur, changed = passOverMechanism(cur, cse)
		var c2, c3, c4 bool
		cur, c2 = passOverMechanism(cur, constantFold)
		cur, c3 = passOverMechanism(cur, copyPropagate)
		cur, c4 = passOverMechanism(cur, eliminateDeadCode)
		if !(changed || c2 || c3 || c4) {
			return cur
		}
	}
}

// SimplifyExpr runs the same fixed-point loop Optimize runs over whole
// mechanisms on a single, free-standing expression tree. internal/solver
// uses this to fold the mechanical product/quotient-rule expansions
// symbolic differentiation produces before testing whether the result
// still references the differentiation variable.
func SimplifyExpr(e resolved.Expr) resolved.Expr {
	cur := e
	for {
		var c1, c2, c3, c4 bool
		cur, c1 = cse(cur)
		cur, c2 = constantFold(cur)
		cur, c3 = copyPropagate(cur)
		cur, c4 = eliminateDeadCode(cur)
		if !(c1 || c2 || c3 || c4) {
			return cur
		}
	}
}

type exprPass func(resolved.Expr) (resolved.Expr, bool)

// passOverMechanism applies pass to every top-level expression tree in m,
// returning a rebuilt mechanism and whether any tree changed.
func passOverMechanism(m *resolved.Mechanism, pass exprPass) (*resolved.Mechanism, bool) {
	changed := false
	out := &resolved.Mechanism{
		Name: m.Name, Kind: m.Kind, Loc: m.Loc,
		States: m.States, Bindings: m.Bindings, Exports: m.Exports,
	}
	for _, p := range m.Parameters {
		v, c := pass(p.Value)
		changed = changed || c
		out.Parameters = append(out.Parameters, resolved.Parameter{Name: p.Name, Typ: p.Typ, Value: v, Loc: p.Loc})
	}
	for _, cst := range m.Constants {
		v, c := pass(cst.Value)
		changed = changed || c
		out.Constants = append(out.Constants, resolved.Constant{Name: cst.Name, Typ: cst.Typ, Value: v, Loc: cst.Loc})
	}
	for _, f := range m.Functions {
		v, c := pass(f.Body)
		changed = changed || c
		out.Functions = append(out.Functions, resolved.Function{Name: f.Name, Args: f.Args, ReturnType: f.ReturnType, Body: v, Loc: f.Loc})
	}
	for _, in := range m.Initials {
		v, c := pass(in.Value)
		changed = changed || c
		out.Initials = append(out.Initials, resolved.Initial{Target: in.Target, Value: v, Loc: in.Loc})
	}
	for _, ev := range m.Evolves {
		v, c := pass(ev.Value)
		changed = changed || c
		out.Evolves = append(out.Evolves, resolved.Evolve{TargetPrime: ev.TargetPrime, Value: v, Loc: ev.Loc})
	}
	for _, ef := range m.Effects {
		v, c := pass(ef.Value)
		changed = changed || c
		out.Effects = append(out.Effects, resolved.Effect{Kind: ef.Kind, Ion: ef.Ion, Value: v, Loc: ef.Loc})
	}
	return out, changed
}

// walk rebuilds e with f applied bottom-up to every subexpression, a
// shared shape every pass below uses so each one only needs to define
// its node-local rewrite rule.
func walk(e resolved.Expr, f func(resolved.Expr) resolved.Expr) resolved.Expr {
	switch v := e.(type) {
	case resolved.Unary:
		return f(resolved.Unary{Op: v.Op, Arg: walk(v.Arg, f), Typ: v.Typ, Loc: v.Loc})
	case resolved.Binary:
		return f(resolved.Binary{Op: v.Op, Lhs: walk(v.Lhs, f), Rhs: walk(v.Rhs, f), Typ: v.Typ, Loc: v.Loc})
	case resolved.Call:
		args := make([]resolved.Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = walk(a, f)
		}
		return f(resolved.Call{Callee: v.Callee, Args: args, Typ: v.Typ, Loc: v.Loc})
	case resolved.Object:
		fields := make([]resolved.ObjectField, len(v.Fields))
		for i, fl := range v.Fields {
			fields[i] = resolved.ObjectField{Name: fl.Name, Value: walk(fl.Value, f)}
		}
		return f(resolved.Object{Fields: fields, Typ: v.Typ, Loc: v.Loc})
	case resolved.FieldAccess:
		return f(resolved.FieldAccess{Record: walk(v.Record, f), Field: v.Field, Typ: v.Typ, Loc: v.Loc})
	case resolved.Conditional:
		return f(resolved.Conditional{Cond: walk(v.Cond, f), Then: walk(v.Then, f), Else: walk(v.Else, f), Typ: v.Typ, Loc: v.Loc})
	case resolved.Let:
		return f(resolved.Let{Name: v.Name, Value: walk(v.Value, f), Body: walk(v.Body, f), Typ: v.Typ, Loc: v.Loc})
	default:
		return f(v)
	}
}
