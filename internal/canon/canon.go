// Package canon canonicalizes resolved expressions into A-normal form and
// then alpha-renames every bound name to single static assignment,
// grounded on original_source/arblang/include/arblang/resolver/
// canonicalize.hpp and single_assign.hpp. After this pass every
// non-trivial subexpression is bound by a `let _tN = ... in ...` and every
// bound name occurs exactly once as a binder (spec.md §4.5).
package canon

import (
	"fmt"

	cerrors "arblangc/internal/errors"
	"arblangc/internal/resolved"
	"arblangc/internal/types"
)

// tempSource hands out unique temporary names for introduced ANF
// bindings, scoped to one mechanism.
type tempSource struct{ n int }

func (t *tempSource) next() string {
	t.n++
	return fmt.Sprintf("_t%d", t.n)
}

// Canonicalize runs ANF binding followed by SSA renaming over every
// mechanism's expressions.
func Canonicalize(mechs []*resolved.Mechanism) ([]*resolved.Mechanism, error) {
	out := make([]*resolved.Mechanism, len(mechs))
	for i, m := range mechs {
		cm, err := canonMechanism(m)
		if err != nil {
			return nil, err
		}
		out[i] = ssaMechanism(cm)
	}
	return out, nil
}

func canonMechanism(m *resolved.Mechanism) (*resolved.Mechanism, error) {
	ts := &tempSource{}
	cm := &resolved.Mechanism{Name: m.Name, Kind: m.Kind, Loc: m.Loc,
		States: m.States, Bindings: m.Bindings, Exports: m.Exports}

	for _, p := range m.Parameters {
		val, err := anf(p.Value, ts)
		if err != nil {
			return nil, err
		}
		cm.Parameters = append(cm.Parameters, resolved.Parameter{Name: p.Name, Typ: p.Typ, Value: val, Loc: p.Loc})
	}
	for _, c := range m.Constants {
		val, err := anf(c.Value, ts)
		if err != nil {
			return nil, err
		}
		cm.Constants = append(cm.Constants, resolved.Constant{Name: c.Name, Typ: c.Typ, Value: val, Loc: c.Loc})
	}
	for _, f := range m.Functions {
		fts := &tempSource{}
		body, err := anf(f.Body, fts)
		if err != nil {
			return nil, err
		}
		cm.Functions = append(cm.Functions, resolved.Function{Name: f.Name, Args: f.Args, ReturnType: f.ReturnType, Body: body, Loc: f.Loc})
	}
	for _, in := range m.Initials {
		val, err := anf(in.Value, ts)
		if err != nil {
			return nil, err
		}
		cm.Initials = append(cm.Initials, resolved.Initial{Target: in.Target, Value: val, Loc: in.Loc})
	}
	for _, ev := range m.Evolves {
		val, err := anf(ev.Value, ts)
		if err != nil {
			return nil, err
		}
		cm.Evolves = append(cm.Evolves, resolved.Evolve{TargetPrime: ev.TargetPrime, Value: val, Loc: ev.Loc})
	}
	for _, ef := range m.Effects {
		val, err := anf(ef.Value, ts)
		if err != nil {
			return nil, err
		}
		cm.Effects = append(cm.Effects, resolved.Effect{Kind: ef.Kind, Ion: ef.Ion, Value: val, Loc: ef.Loc})
	}
	return cm, nil
}

// isAtomic reports whether e needs no further binding to appear as an
// operand: identifiers, arguments and literals are atomic, everything
// else is compound.
func isAtomic(e resolved.Expr) bool {
	switch e.(type) {
	case resolved.Identifier, resolved.Argument, resolved.Float, resolved.Int:
		return true
	default:
		return false
	}
}

// bindAtom canonicalizes e and, if the result is not already atomic,
// wraps it in a fresh let-binding, returning the atomic reference to use
// in the caller's operand position and the wrapping function to apply
// around the final expression.
func bindAtom(e resolved.Expr, ts *tempSource) (resolved.Expr, func(resolved.Expr) resolved.Expr, error) {
	ce, err := anf(e, ts)
	if err != nil {
		return nil, nil, err
	}
	if isAtomic(ce) {
		return ce, func(body resolved.Expr) resolved.Expr { return body }, nil
	}
	name := ts.next()
	ref := resolved.Identifier{Name: name, Typ: ce.Type(), Loc: ce.Location()}
	wrap := func(body resolved.Expr) resolved.Expr {
		return resolved.Let{Name: name, Value: ce, Body: body, Typ: body.Type(), Loc: ce.Location()}
	}
	return ref, wrap, nil
}

// anf rewrites e into A-normal form: every compound subexpression of a
// compound node is hoisted into a preceding let.
func anf(e resolved.Expr, ts *tempSource) (resolved.Expr, error) {
	switch v := e.(type) {
	case resolved.Identifier, resolved.Argument, resolved.Float, resolved.Int:
		return v, nil

	case resolved.Unary:
		arg, wrap, err := bindAtom(v.Arg, ts)
		if err != nil {
			return nil, err
		}
		return wrap(resolved.Unary{Op: v.Op, Arg: arg, Typ: v.Typ, Loc: v.Loc}), nil

	case resolved.Binary:
		lhs, wrapL, err := bindAtom(v.Lhs, ts)
		if err != nil {
			return nil, err
		}
		rhs, wrapR, err := bindAtom(v.Rhs, ts)
		if err != nil {
			return nil, err
		}
		return wrapL(wrapR(resolved.Binary{Op: v.Op, Lhs: lhs, Rhs: rhs, Typ: v.Typ, Loc: v.Loc})), nil

	case resolved.Call:
		args := make([]resolved.Expr, len(v.Args))
		wraps := make([]func(resolved.Expr) resolved.Expr, len(v.Args))
		for i, a := range v.Args {
			ref, wrap, err := bindAtom(a, ts)
			if err != nil {
				return nil, err
			}
			args[i] = ref
			wraps[i] = wrap
		}
		result := resolved.Expr(resolved.Call{Callee: v.Callee, Args: args, Typ: v.Typ, Loc: v.Loc})
		for i := len(wraps) - 1; i >= 0; i-- {
			result = wraps[i](result)
		}
		return result, nil

	case resolved.Object:
		fields := make([]resolved.ObjectField, len(v.Fields))
		wraps := make([]func(resolved.Expr) resolved.Expr, len(v.Fields))
		for i, f := range v.Fields {
			ref, wrap, err := bindAtom(f.Value, ts)
			if err != nil {
				return nil, err
			}
			fields[i] = resolved.ObjectField{Name: f.Name, Value: ref}
			wraps[i] = wrap
		}
		result := resolved.Expr(resolved.Object{Fields: fields, Typ: v.Typ, Loc: v.Loc})
		for i := len(wraps) - 1; i >= 0; i-- {
			result = wraps[i](result)
		}
		return result, nil

	case resolved.FieldAccess:
		rec, wrap, err := bindAtom(v.Record, ts)
		if err != nil {
			return nil, err
		}
		return wrap(resolved.FieldAccess{Record: rec, Field: v.Field, Typ: v.Typ, Loc: v.Loc}), nil

	case resolved.Conditional:
		cond, wrap, err := bindAtom(v.Cond, ts)
		if err != nil {
			return nil, err
		}
		then, err := anf(v.Then, ts)
		if err != nil {
			return nil, err
		}
		els, err := anf(v.Else, ts)
		if err != nil {
			return nil, err
		}
		return wrap(resolved.Conditional{Cond: cond, Then: then, Else: els, Typ: v.Typ, Loc: v.Loc}), nil

	case resolved.Let:
		val, err := anf(v.Value, ts)
		if err != nil {
			return nil, err
		}
		body, err := anf(v.Body, ts)
		if err != nil {
			return nil, err
		}
		return resolved.Let{Name: v.Name, Value: val, Body: body, Typ: body.Type(), Loc: v.Loc}, nil

	case resolved.With:
		// `with` desugars to one let per record field, binding the field
		// name directly to a field access on the (atom-bound) record —
		// there is no separate `with` node past this pass.
		rec, wrap, err := bindAtom(v.Record, ts)
		if err != nil {
			return nil, err
		}
		rt, ok := rec.Type().(types.Record)
		if !ok {
			return nil, cerrors.Internal("canon: 'with' on non-record type %s", rec.Type())
		}
		body, err := anf(v.Body, ts)
		if err != nil {
			return nil, err
		}
		for i := len(rt.Fields) - 1; i >= 0; i-- {
			f := rt.Fields[i]
			body = resolved.Let{
				Name:  f.Name,
				Value: resolved.FieldAccess{Record: rec, Field: f.Name, Typ: f.Type, Loc: v.Loc},
				Body:  body,
				Typ:   body.Type(),
				Loc:   v.Loc,
			}
		}
		return wrap(body), nil

	default:
		return nil, cerrors.Internal("canon: unhandled expression kind %T", e)
	}
}
