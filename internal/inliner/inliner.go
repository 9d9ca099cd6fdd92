// Package inliner expands every call to a user-defined function in place
// at its call site, grounded on
// original_source/arblang/include/arblang/optimizer/inline_func.hpp's
// `pref` per-call-site name disambiguator. Builtin stdlib functions
// (min, max, exp, sin, cos, log, abs, exprelr) are left as calls —
// internal/solver and the final printer both understand them natively.
// Recursive functions are rejected: this language has no looping
// construct, so a recursive function call could never terminate at
// compile time the way a canonicalized let-chain must.
package inliner

import (
	"strings"

	"github.com/google/uuid"

	cerrors "arblangc/internal/errors"
	"arblangc/internal/resolved"
)

var builtins = map[string]bool{
	"min": true, "max": true, "exp": true, "sin": true, "cos": true, "log": true, "abs": true, "exprelr": true,
}

// Inline expands every function call in every mechanism and drops the
// function table from the result — nothing downstream of this pass
// references a function by name again.
func Inline(mechs []*resolved.Mechanism) ([]*resolved.Mechanism, error) {
	out := make([]*resolved.Mechanism, len(mechs))
	for i, m := range mechs {
		im, err := inlineMechanism(m)
		if err != nil {
			return nil, err
		}
		out[i] = im
	}
	return out, nil
}

func inlineMechanism(m *resolved.Mechanism) (*resolved.Mechanism, error) {
	funcs := map[string]resolved.Function{}
	for _, f := range m.Functions {
		funcs[f.Name] = f
	}

	out := &resolved.Mechanism{
		Name: m.Name, Kind: m.Kind, Loc: m.Loc,
		States: m.States, Bindings: m.Bindings, Exports: m.Exports,
	}
	for _, p := range m.Parameters {
		v, err := inlineExpr(p.Value, funcs, nil)
		if err != nil {
			return nil, err
		}
		out.Parameters = append(out.Parameters, resolved.Parameter{Name: p.Name, Typ: p.Typ, Value: v, Loc: p.Loc})
	}
	for _, c := range m.Constants {
		v, err := inlineExpr(c.Value, funcs, nil)
		if err != nil {
			return nil, err
		}
		out.Constants = append(out.Constants, resolved.Constant{Name: c.Name, Typ: c.Typ, Value: v, Loc: c.Loc})
	}
	for _, in := range m.Initials {
		v, err := inlineExpr(in.Value, funcs, nil)
		if err != nil {
			return nil, err
		}
		out.Initials = append(out.Initials, resolved.Initial{Target: in.Target, Value: v, Loc: in.Loc})
	}
	for _, ev := range m.Evolves {
		v, err := inlineExpr(ev.Value, funcs, nil)
		if err != nil {
			return nil, err
		}
		out.Evolves = append(out.Evolves, resolved.Evolve{TargetPrime: ev.TargetPrime, Value: v, Loc: ev.Loc})
	}
	for _, ef := range m.Effects {
		v, err := inlineExpr(ef.Value, funcs, nil)
		if err != nil {
			return nil, err
		}
		out.Effects = append(out.Effects, resolved.Effect{Kind: ef.Kind, Ion: ef.Ion, Value: v, Loc: ef.Loc})
	}
	return out, nil
}

// callSitePrefix derives a short, name-safe disambiguator for one call
// site's locally-introduced bindings, so inlining the same function
// twice never collides on bound names.
func callSitePrefix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "_")
}

// inlineExpr expands calls bottom-up. chain is the set of function names
// currently being expanded on the path from the root to e, used to
// detect recursion.
func inlineExpr(e resolved.Expr, funcs map[string]resolved.Function, chain map[string]bool) (resolved.Expr, error) {
	switch v := e.(type) {
	case resolved.Identifier, resolved.Argument, resolved.Float, resolved.Int, resolved.Bool:
		return e, nil

	case resolved.Unary:
		arg, err := inlineExpr(v.Arg, funcs, chain)
		if err != nil {
			return nil, err
		}
		return resolved.Unary{Op: v.Op, Arg: arg, Typ: v.Typ, Loc: v.Loc}, nil

	case resolved.Binary:
		lhs, err := inlineExpr(v.Lhs, funcs, chain)
		if err != nil {
			return nil, err
		}
		rhs, err := inlineExpr(v.Rhs, funcs, chain)
		if err != nil {
			return nil, err
		}
		return resolved.Binary{Op: v.Op, Lhs: lhs, Rhs: rhs, Typ: v.Typ, Loc: v.Loc}, nil

	case resolved.Object:
		fields := make([]resolved.ObjectField, len(v.Fields))
		for i, f := range v.Fields {
			fv, err := inlineExpr(f.Value, funcs, chain)
			if err != nil {
				return nil, err
			}
			fields[i] = resolved.ObjectField{Name: f.Name, Value: fv}
		}
		return resolved.Object{Fields: fields, Typ: v.Typ, Loc: v.Loc}, nil

	case resolved.FieldAccess:
		rec, err := inlineExpr(v.Record, funcs, chain)
		if err != nil {
			return nil, err
		}
		return resolved.FieldAccess{Record: rec, Field: v.Field, Typ: v.Typ, Loc: v.Loc}, nil

	case resolved.Conditional:
		cond, err := inlineExpr(v.Cond, funcs, chain)
		if err != nil {
			return nil, err
		}
		then, err := inlineExpr(v.Then, funcs, chain)
		if err != nil {
			return nil, err
		}
		els, err := inlineExpr(v.Else, funcs, chain)
		if err != nil {
			return nil, err
		}
		return resolved.Conditional{Cond: cond, Then: then, Else: els, Typ: v.Typ, Loc: v.Loc}, nil

	case resolved.Let:
		val, err := inlineExpr(v.Value, funcs, chain)
		if err != nil {
			return nil, err
		}
		body, err := inlineExpr(v.Body, funcs, chain)
		if err != nil {
			return nil, err
		}
		return resolved.Let{Name: v.Name, Value: val, Body: body, Typ: body.Type(), Loc: v.Loc}, nil

	case resolved.Call:
		args := make([]resolved.Expr, len(v.Args))
		for i, a := range v.Args {
			av, err := inlineExpr(a, funcs, chain)
			if err != nil {
				return nil, err
			}
			args[i] = av
		}
		if builtins[v.Callee] {
			return resolved.Call{Callee: v.Callee, Args: args, Typ: v.Typ, Loc: v.Loc}, nil
		}
		fn, ok := funcs[v.Callee]
		if !ok {
			return nil, cerrors.Internal("inliner: call to unknown function %q reached inlining", v.Callee)
		}
		if chain[v.Callee] {
			return nil, cerrors.New(cerrors.RecursiveFunction, v.Loc, "function %q is recursive, directly or indirectly", v.Callee)
		}
		innerChain := make(map[string]bool, len(chain)+1)
		for k := range chain {
			innerChain[k] = true
		}
		innerChain[v.Callee] = true

		body, err := inlineExpr(fn.Body, funcs, innerChain)
		if err != nil {
			return nil, err
		}
		prefix := callSitePrefix()
		for i := len(fn.Args) - 1; i >= 0; i-- {
			argName := fn.Args[i].Name + "_" + prefix
			body = renameRef(body, fn.Args[i].Name, argName)
			body = resolved.Let{Name: argName, Value: args[i], Body: body, Typ: body.Type(), Loc: v.Loc}
		}
		return body, nil

	default:
		return nil, cerrors.Internal("inliner: unhandled expression kind %T", e)
	}
}

// renameRef substitutes every reference to from with to inside e,
// stopping at any nested let that rebinds the same name.
func renameRef(e resolved.Expr, from, to string) resolved.Expr {
	switch v := e.(type) {
	case resolved.Identifier:
		if v.Name == from {
			return resolved.Identifier{Name: to, Typ: v.Typ, Loc: v.Loc}
		}
		return v
	case resolved.Argument, resolved.Float, resolved.Int, resolved.Bool:
		return v
	case resolved.Unary:
		return resolved.Unary{Op: v.Op, Arg: renameRef(v.Arg, from, to), Typ: v.Typ, Loc: v.Loc}
	case resolved.Binary:
		return resolved.Binary{Op: v.Op, Lhs: renameRef(v.Lhs, from, to), Rhs: renameRef(v.Rhs, from, to), Typ: v.Typ, Loc: v.Loc}
	case resolved.Call:
		args := make([]resolved.Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = renameRef(a, from, to)
		}
		return resolved.Call{Callee: v.Callee, Args: args, Typ: v.Typ, Loc: v.Loc}
	case resolved.Object:
		fields := make([]resolved.ObjectField, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = resolved.ObjectField{Name: f.Name, Value: renameRef(f.Value, from, to)}
		}
		return resolved.Object{Fields: fields, Typ: v.Typ, Loc: v.Loc}
	case resolved.FieldAccess:
		return resolved.FieldAccess{Record: renameRef(v.Record, from, to), Field: v.Field, Typ: v.Typ, Loc: v.Loc}
	case resolved.Conditional:
		return resolved.Conditional{
			Cond: renameRef(v.Cond, from, to), Then: renameRef(v.Then, from, to), Else: renameRef(v.Else, from, to),
			Typ: v.Typ, Loc: v.Loc,
		}
	case resolved.Let:
		val := renameRef(v.Value, from, to)
		if v.Name == from {
			return resolved.Let{Name: v.Name, Value: val, Body: v.Body, Typ: v.Typ, Loc: v.Loc}
		}
		body := renameRef(v.Body, from, to)
		return resolved.Let{Name: v.Name, Value: val, Body: body, Typ: body.Type(), Loc: v.Loc}
	default:
		return v
	}
}
