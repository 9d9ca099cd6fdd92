// Package normalizer rewrites every unit-annotated literal in a parsed
// mechanism so its value is expressed in base SI units, grounded on
// original_source/arblang/include/arblang/unit_normalizer.hpp (one
// normalize overload per expression kind). After this pass a literal's
// Unit field, if present, is always a units.Reduced carrying the bare
// dimension tuple with no further decimal scale — the scale factor has
// already been folded into the numeric value (spec.md §4.3).
package normalizer

import (
	"math"

	"arblangc/internal/ast"
	cerrors "arblangc/internal/errors"
	"arblangc/internal/units"
)

// Normalize rewrites every mechanism's declarations in place (logically;
// the AST is immutable-by-convention so a fresh tree is returned).
func Normalize(mechs []*ast.Mechanism) ([]*ast.Mechanism, error) {
	out := make([]*ast.Mechanism, len(mechs))
	for i, m := range mechs {
		nm, err := normalizeMechanism(m)
		if err != nil {
			return nil, err
		}
		out[i] = nm
	}
	return out, nil
}

func normalizeMechanism(m *ast.Mechanism) (*ast.Mechanism, error) {
	decls := make([]ast.Expr, len(m.Decls))
	for i, d := range m.Decls {
		nd, err := normalizeDecl(d)
		if err != nil {
			return nil, err
		}
		decls[i] = nd
	}
	return &ast.Mechanism{Name: m.Name, Kind: m.Kind, Decls: decls, Loc: m.Loc}, nil
}

func normalizeDecl(e ast.Expr) (ast.Expr, error) {
	switch v := e.(type) {
	case ast.Import:
		return v, nil
	case ast.Parameter:
		val, err := normalizeExpr(v.Value)
		if err != nil {
			return nil, err
		}
		u, err := normalizeUnit(v.Unit)
		if err != nil {
			return nil, err
		}
		return ast.Parameter{Name: v.Name, Type: v.Type, Value: val, Unit: u, Loc: v.Loc}, nil
	case ast.Constant:
		val, err := normalizeExpr(v.Value)
		if err != nil {
			return nil, err
		}
		u, err := normalizeUnit(v.Unit)
		if err != nil {
			return nil, err
		}
		return ast.Constant{Name: v.Name, Type: v.Type, Value: val, Unit: u, Loc: v.Loc}, nil
	case ast.State:
		return v, nil
	case ast.RecordAlias:
		return v, nil
	case ast.Function:
		body, err := normalizeExpr(v.Body)
		if err != nil {
			return nil, err
		}
		return ast.Function{Name: v.Name, Args: v.Args, ReturnType: v.ReturnType, Body: body, Loc: v.Loc}, nil
	case ast.Binding:
		return v, nil
	case ast.Initial:
		val, err := normalizeExpr(v.Value)
		if err != nil {
			return nil, err
		}
		return ast.Initial{Target: v.Target, Value: val, Loc: v.Loc}, nil
	case ast.Evolve:
		val, err := normalizeExpr(v.Value)
		if err != nil {
			return nil, err
		}
		return ast.Evolve{TargetPrime: v.TargetPrime, Value: val, Loc: v.Loc}, nil
	case ast.Effect:
		val, err := normalizeExpr(v.Value)
		if err != nil {
			return nil, err
		}
		return ast.Effect{Kind: v.Kind, Ion: v.Ion, Value: val, Loc: v.Loc}, nil
	case ast.Export:
		return v, nil
	default:
		return nil, cerrors.Internal("normalizer: unhandled declaration kind %T", e)
	}
}

func normalizeUnit(u units.Expr) (units.Expr, error) {
	if u == nil {
		return nil, nil
	}
	f, err := u.Reduce()
	if err != nil {
		return nil, cerrors.New(cerrors.TypeError, u.Location(), "%s", err.Error())
	}
	return units.Reduced{D: f.Dim, Loc: u.Location()}, nil
}

// scaleLiteralUnit reduces a literal's unit annotation to its base-SI
// factor and returns the multiplier to apply to the literal's value, plus
// the normalized (scale-free) unit to attach in its place.
func scaleLiteralUnit(u units.Expr) (float64, units.Expr, error) {
	if u == nil {
		return 1, nil, nil
	}
	f, err := u.Reduce()
	if err != nil {
		return 0, nil, cerrors.New(cerrors.TypeError, u.Location(), "%s", err.Error())
	}
	return math.Pow(10, float64(f.Exp)), units.Reduced{D: f.Dim, Loc: u.Location()}, nil
}

func normalizeExpr(e ast.Expr) (ast.Expr, error) {
	if e == nil {
		return nil, nil
	}
	switch v := e.(type) {
	case ast.Call:
		args := make([]ast.Expr, len(v.Args))
		for i, a := range v.Args {
			na, err := normalizeExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = na
		}
		return ast.Call{Callee: v.Callee, Args: args, Loc: v.Loc}, nil

	case ast.Object:
		fields := make([]ast.ObjectField, len(v.Fields))
		for i, f := range v.Fields {
			fv, err := normalizeExpr(f.Value)
			if err != nil {
				return nil, err
			}
			fields[i] = ast.ObjectField{Name: f.Name, Value: fv}
		}
		return ast.Object{RecordName: v.RecordName, Fields: fields, Loc: v.Loc}, nil

	case ast.Let:
		val, err := normalizeExpr(v.Value)
		if err != nil {
			return nil, err
		}
		body, err := normalizeExpr(v.Body)
		if err != nil {
			return nil, err
		}
		return ast.Let{Name: v.Name, Value: val, Body: body, Loc: v.Loc}, nil

	case ast.With:
		rec, err := normalizeExpr(v.Record)
		if err != nil {
			return nil, err
		}
		body, err := normalizeExpr(v.Body)
		if err != nil {
			return nil, err
		}
		return ast.With{Record: rec, Body: body, Loc: v.Loc}, nil

	case ast.Conditional:
		cond, err := normalizeExpr(v.Cond)
		if err != nil {
			return nil, err
		}
		then, err := normalizeExpr(v.Then)
		if err != nil {
			return nil, err
		}
		els, err := normalizeExpr(v.Else)
		if err != nil {
			return nil, err
		}
		return ast.Conditional{Cond: cond, Then: then, Else: els, Loc: v.Loc}, nil

	case ast.Identifier:
		return v, nil

	case ast.FieldAccess:
		rec, err := normalizeExpr(v.Record)
		if err != nil {
			return nil, err
		}
		return ast.FieldAccess{Record: rec, Field: v.Field, Loc: v.Loc}, nil

	case ast.Float:
		scale, u, err := scaleLiteralUnit(v.Unit)
		if err != nil {
			return nil, err
		}
		return ast.Float{Value: v.Value * scale, Unit: u, Loc: v.Loc}, nil

	case ast.Integer:
		scale, u, err := scaleLiteralUnit(v.Unit)
		if err != nil {
			return nil, err
		}
		if scale == 1 {
			return v, nil
		}
		// A scaled integer literal (e.g. a prefixed unit) can no longer be
		// represented exactly as an integer; it is promoted to a float, the
		// same widening the resolver already performs for mixed arithmetic.
		return ast.Float{Value: float64(v.Value) * scale, Unit: u, Loc: v.Loc}, nil

	case ast.Unary:
		arg, err := normalizeExpr(v.Arg)
		if err != nil {
			return nil, err
		}
		return ast.Unary{Op: v.Op, Arg: arg, Loc: v.Loc}, nil

	case ast.Binary:
		lhs, err := normalizeExpr(v.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := normalizeExpr(v.Rhs)
		if err != nil {
			return nil, err
		}
		return ast.Binary{Op: v.Op, Lhs: lhs, Rhs: rhs, Loc: v.Loc}, nil

	default:
		return nil, cerrors.Internal("normalizer: unhandled expression kind %T", e)
	}
}
