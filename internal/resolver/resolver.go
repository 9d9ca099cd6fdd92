// Package resolver binds every identifier to its declaration and assigns
// every expression its dimensional type, grounded on
// original_source/arblang/include/arblang/resolver/resolve.hpp. The
// in_scope_map there (six name submaps plus a type_map for record
// aliases) is carried over verbatim as scope; a missing lookup across all
// six submaps is an unbound_identifier error, and a dimensional mismatch
// in an arithmetic operator is a type_error (spec.md §4.4, §7).
package resolver

import (
	"arblangc/internal/ast"
	cerrors "arblangc/internal/errors"
	"arblangc/internal/location"
	"arblangc/internal/resolved"
	"arblangc/internal/types"
	"arblangc/internal/units"

	"golang.org/x/exp/maps"
)

// scope is the in_scope_map of the original resolver: six disjoint name
// submaps plus a record-alias type table. Lookup order when resolving a
// bare identifier is local -> bind -> state -> const -> param, matching
// spec.md §4.4's shadowing rule (innermost let/with bindings win).
type scope struct {
	params  map[string]types.Type
	consts  map[string]types.Type
	states  map[string]types.Type
	binds   map[string]types.Type
	locals  map[string]types.Type
	funcs   map[string]*resolved.Function
	typeMap map[string]types.Type
}

func newScope() *scope {
	return &scope{
		params:  map[string]types.Type{},
		consts:  map[string]types.Type{},
		states:  map[string]types.Type{},
		binds:   map[string]types.Type{},
		locals:  map[string]types.Type{},
		funcs:   map[string]*resolved.Function{},
		typeMap: map[string]types.Type{},
	}
}

// withLocal returns a shallow copy of s with name bound to t in locals,
// shadowing any outer binding of the same name without mutating s.
func (s *scope) withLocal(name string, t types.Type) *scope {
	ns := &scope{
		params: s.params, consts: s.consts, states: s.states,
		binds: s.binds, funcs: s.funcs, typeMap: s.typeMap,
		locals: maps.Clone(s.locals),
	}
	ns.locals[name] = t
	return ns
}

func (s *scope) lookup(name string) (types.Type, bool) {
	if t, ok := s.locals[name]; ok {
		return t, true
	}
	if t, ok := s.binds[name]; ok {
		return t, true
	}
	if t, ok := s.states[name]; ok {
		return t, true
	}
	if t, ok := s.consts[name]; ok {
		return t, true
	}
	if t, ok := s.params[name]; ok {
		return t, true
	}
	return nil, false
}

// Resolve type-checks every normalized mechanism, producing the resolved
// IR each later pass operates on.
func Resolve(mechs []*ast.Mechanism) ([]*resolved.Mechanism, error) {
	out := make([]*resolved.Mechanism, len(mechs))
	for i, m := range mechs {
		rm, err := resolveMechanism(m)
		if err != nil {
			return nil, err
		}
		out[i] = rm
	}
	return out, nil
}

func resolveMechanism(m *ast.Mechanism) (*resolved.Mechanism, error) {
	s := newScope()
	rm := &resolved.Mechanism{Name: m.Name, Kind: m.Kind, Loc: m.Loc}

	// First pass: record aliases and function signatures must be visible
	// regardless of declaration order within the body.
	for _, d := range m.Decls {
		switch v := d.(type) {
		case ast.RecordAlias:
			fields := make([]types.Field, len(v.Fields))
			for i, f := range v.Fields {
				ft, err := resolveType(f.Type, s.typeMap)
				if err != nil {
					return nil, err
				}
				fields[i] = types.Field{Name: f.Name, Type: ft}
			}
			s.typeMap[v.Name] = types.Record{Fields: fields, Loc: v.Loc}
		}
	}

	for _, d := range m.Decls {
		switch v := d.(type) {
		case ast.Import:
			return nil, cerrors.Internal("resolver: unresolved import %q reached resolve stage", v.Path)

		case ast.Parameter:
			val, err := resolveExpr(v.Value, s)
			if err != nil {
				return nil, err
			}
			typ := val.Type()
			if v.Type != nil {
				declared, err := resolveType(v.Type, s.typeMap)
				if err != nil {
					return nil, err
				}
				if !types.Equal(declared, typ) {
					return nil, cerrors.New(cerrors.TypeError, v.Loc,
						"parameter %q declared as %s but value has type %s", v.Name, types.String(declared), types.String(typ))
				}
				typ = declared
			}
			s.params[v.Name] = typ
			rm.Parameters = append(rm.Parameters, resolved.Parameter{Name: v.Name, Typ: typ, Value: val, Loc: v.Loc})

		case ast.Constant:
			val, err := resolveExpr(v.Value, s)
			if err != nil {
				return nil, err
			}
			typ := val.Type()
			if v.Type != nil {
				declared, err := resolveType(v.Type, s.typeMap)
				if err != nil {
					return nil, err
				}
				if !types.Equal(declared, typ) {
					return nil, cerrors.New(cerrors.TypeError, v.Loc,
						"constant %q declared as %s but value has type %s", v.Name, types.String(declared), types.String(typ))
				}
				typ = declared
			}
			s.consts[v.Name] = typ
			rm.Constants = append(rm.Constants, resolved.Constant{Name: v.Name, Typ: typ, Value: val, Loc: v.Loc})

		case ast.State:
			var typ types.Type
			if v.Type != nil {
				t, err := resolveType(v.Type, s.typeMap)
				if err != nil {
					return nil, err
				}
				typ = t
			} else {
				typ = types.Quant{Loc: v.Loc}
			}
			s.states[v.Name] = typ
			rm.States = append(rm.States, resolved.State{Name: v.Name, Typ: typ, Loc: v.Loc})

		case ast.RecordAlias:
			// handled in the pre-pass above

		case ast.Function:
			args := make([]resolved.Param, len(v.Args))
			fscope := newScope()
			fscope.typeMap = s.typeMap
			for i, a := range v.Args {
				at, err := resolveType(a.Type, s.typeMap)
				if err != nil {
					return nil, err
				}
				args[i] = resolved.Param{Name: a.Name, Typ: at}
				fscope.locals[a.Name] = at
			}
			body, err := resolveExpr(v.Body, fscope)
			if err != nil {
				return nil, err
			}
			ret := body.Type()
			if v.ReturnType != nil {
				declared, err := resolveType(v.ReturnType, s.typeMap)
				if err != nil {
					return nil, err
				}
				if !types.Equal(declared, ret) {
					return nil, cerrors.New(cerrors.TypeError, v.Loc,
						"function %q declared to return %s but body has type %s", v.Name, types.String(declared), types.String(ret))
				}
				ret = declared
			}
			rf := resolved.Function{Name: v.Name, Args: args, ReturnType: ret, Body: body, Loc: v.Loc}
			rm.Functions = append(rm.Functions, rf)
			s.funcs[v.Name] = &rf

		case ast.Binding:
			typ := bindableType(v.Kind, v.Loc)
			s.binds[v.Name] = typ
			rm.Bindings = append(rm.Bindings, resolved.Binding{Name: v.Name, Kind: v.Kind, Ion: v.Ion, Typ: typ, Loc: v.Loc})

		case ast.Initial:
			target, ok := s.lookup(v.Target)
			if !ok {
				return nil, cerrors.New(cerrors.UnboundIdentifier, v.Loc, "unbound identifier %q", v.Target)
			}
			val, err := resolveExpr(v.Value, s)
			if err != nil {
				return nil, err
			}
			if !types.Equal(target, val.Type()) {
				return nil, cerrors.New(cerrors.TypeError, v.Loc,
					"initial value for %q has type %s, target has type %s", v.Target, types.String(val.Type()), types.String(target))
			}
			rm.Initials = append(rm.Initials, resolved.Initial{Target: v.Target, Value: val, Loc: v.Loc})

		case ast.Evolve:
			target, ok := s.states[v.TargetPrime]
			if !ok {
				return nil, cerrors.New(cerrors.UnboundIdentifier, v.Loc, "%q is not a declared state variable", v.TargetPrime)
			}
			val, err := resolveExpr(v.Value, s)
			if err != nil {
				return nil, err
			}
			if !types.Equal(target, val.Type()) {
				return nil, cerrors.New(cerrors.TypeError, v.Loc,
					"evolve rate for %q' has type %s, state has type %s", v.TargetPrime, types.String(val.Type()), types.String(target))
			}
			rm.Evolves = append(rm.Evolves, resolved.Evolve{TargetPrime: v.TargetPrime, Value: val, Loc: v.Loc})

		case ast.Effect:
			val, err := resolveExpr(v.Value, s)
			if err != nil {
				return nil, err
			}
			rm.Effects = append(rm.Effects, resolved.Effect{Kind: v.Kind, Ion: v.Ion, Value: val, Loc: v.Loc})

		case ast.Export:
			if _, ok := s.lookup(v.Identifier); !ok {
				return nil, cerrors.New(cerrors.UnboundIdentifier, v.Loc, "export of unbound identifier %q", v.Identifier)
			}
			rm.Exports = append(rm.Exports, resolved.Export{Identifier: v.Identifier, Loc: v.Loc})

		default:
			return nil, cerrors.Internal("resolver: unhandled declaration kind %T", d)
		}
	}
	return rm, nil
}

// bindableType gives the dimensional type the simulator guarantees for
// each bindable kind (spec.md §6).
func bindableType(k ast.BindableKind, loc location.Location) types.Type {
	switch k {
	case ast.MembranePotential, ast.NernstPotential:
		d, _ := types.DimOf(types.QVoltage)
		return types.Quant{Dim: d, Loc: loc}
	case ast.Temperature:
		d, _ := types.DimOf(types.QTemperature)
		return types.Quant{Dim: d, Loc: loc}
	case ast.CurrentDensity:
		// current per area; not in the named-quantity table, built directly.
		cur, _ := types.DimOf(types.QCurrent)
		area, _ := types.DimOf(types.QArea)
		return types.Quant{Dim: types.Div(cur, area), Loc: loc}
	case ast.MolarFlux:
		amt, _ := types.DimOf(types.QAmount)
		area, _ := types.DimOf(types.QArea)
		tim, _ := types.DimOf(types.QTime)
		return types.Quant{Dim: types.Div(amt, types.Mul(area, tim)), Loc: loc}
	case ast.Charge:
		d, _ := types.DimOf(types.QCharge)
		return types.Quant{Dim: d, Loc: loc}
	case ast.InternalConcentration, ast.ExternalConcentration:
		d, _ := types.DimOf(types.QConcentration)
		return types.Quant{Dim: d, Loc: loc}
	case ast.Dt:
		d, _ := types.DimOf(types.QTime)
		return types.Quant{Dim: d, Loc: loc}
	default:
		return types.Quant{Loc: loc}
	}
}

func resolveType(t ast.Type, typeMap map[string]types.Type) (types.Type, error) {
	switch v := t.(type) {
	case nil:
		return nil, cerrors.Internal("resolveType: nil parsed type")
	case ast.BoolType:
		return types.Bool{Loc: v.Loc}, nil
	case ast.QuantityType:
		d, ok := types.DimOf(v.Quantity)
		if !ok {
			return nil, cerrors.New(cerrors.TypeError, v.Loc, "unknown quantity %q", v.Quantity)
		}
		return types.Quant{Dim: d, Loc: v.Loc}, nil
	case ast.RecordType:
		fields := make([]types.Field, len(v.Fields))
		for i, f := range v.Fields {
			ft, err := resolveType(f.Type, typeMap)
			if err != nil {
				return nil, err
			}
			fields[i] = types.Field{Name: f.Name, Type: ft}
		}
		return types.Record{Fields: fields, Loc: v.Loc}, nil
	case ast.RecordAliasType:
		rt, ok := typeMap[v.Name]
		if !ok {
			return nil, cerrors.New(cerrors.UnboundIdentifier, v.Loc, "unbound record type %q", v.Name)
		}
		return rt, nil
	case ast.IntegerType:
		return nil, cerrors.New(cerrors.TypeError, v.Loc, "integer type literal is only valid as a '^' exponent")
	case ast.BinaryQuantityType:
		lhs, err := resolveType(v.Lhs, typeMap)
		if err != nil {
			return nil, err
		}
		lq, ok := lhs.(types.Quant)
		if !ok {
			return nil, cerrors.New(cerrors.TypeError, v.Loc, "left operand of type '%s' must be a quantity", v.Op)
		}
		if v.Op == ast.TypePow {
			n, ok := v.Rhs.(ast.IntegerType)
			if !ok {
				return nil, cerrors.New(cerrors.TypeError, v.Loc, "'^' exponent must be an integer literal")
			}
			return types.Quant{Dim: types.Pow(lq.Dim, n.N), Loc: v.Loc}, nil
		}
		rhs, err := resolveType(v.Rhs, typeMap)
		if err != nil {
			return nil, err
		}
		rq, ok := rhs.(types.Quant)
		if !ok {
			return nil, cerrors.New(cerrors.TypeError, v.Loc, "right operand of type '%s' must be a quantity", v.Op)
		}
		switch v.Op {
		case ast.TypeMul:
			return types.Quant{Dim: types.Mul(lq.Dim, rq.Dim), Loc: v.Loc}, nil
		case ast.TypeDiv:
			return types.Quant{Dim: types.Div(lq.Dim, rq.Dim), Loc: v.Loc}, nil
		default:
			return nil, cerrors.Internal("resolveType: unknown binary type operator %q", v.Op)
		}
	default:
		return nil, cerrors.Internal("resolveType: unhandled parsed type %T", t)
	}
}

var comparisonOps = map[string]bool{"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}
var boolOps = map[string]bool{"&&": true, "||": true}

func unitOf(u units.Expr, loc location.Location) (types.Type, error) {
	if u == nil {
		return types.Quant{Loc: loc}, nil
	}
	f, err := u.Reduce()
	if err != nil {
		return nil, cerrors.New(cerrors.TypeError, loc, "%s", err.Error())
	}
	return types.Quant{Dim: f.Dim, Loc: loc}, nil
}

func resolveExpr(e ast.Expr, s *scope) (resolved.Expr, error) {
	switch v := e.(type) {
	case ast.Identifier:
		t, ok := s.lookup(v.Name)
		if !ok {
			return nil, cerrors.New(cerrors.UnboundIdentifier, v.Loc, "unbound identifier %q", v.Name)
		}
		return resolved.Identifier{Name: v.Name, Typ: t, Loc: v.Loc}, nil

	case ast.Float:
		t, err := unitOf(v.Unit, v.Loc)
		if err != nil {
			return nil, err
		}
		return resolved.Float{Value: v.Value, Typ: t, Loc: v.Loc}, nil

	case ast.Integer:
		t, err := unitOf(v.Unit, v.Loc)
		if err != nil {
			return nil, err
		}
		return resolved.Int{Value: v.Value, Typ: t, Loc: v.Loc}, nil

	case ast.Unary:
		arg, err := resolveExpr(v.Arg, s)
		if err != nil {
			return nil, err
		}
		var t types.Type
		switch v.Op {
		case "!":
			if _, ok := arg.Type().(types.Bool); !ok {
				return nil, cerrors.New(cerrors.TypeError, v.Loc, "'!' requires a bool operand")
			}
			t = types.Bool{Loc: v.Loc}
		case "-":
			q, ok := arg.Type().(types.Quant)
			if !ok {
				return nil, cerrors.New(cerrors.TypeError, v.Loc, "unary '-' requires a quantity operand")
			}
			t = q
		default:
			return nil, cerrors.Internal("resolveExpr: unknown unary operator %q", v.Op)
		}
		return resolved.Unary{Op: v.Op, Arg: arg, Typ: t, Loc: v.Loc}, nil

	case ast.Binary:
		lhs, err := resolveExpr(v.Lhs, s)
		if err != nil {
			return nil, err
		}
		rhs, err := resolveExpr(v.Rhs, s)
		if err != nil {
			return nil, err
		}
		if v.Op == "^" {
			// '^ n' scales a quantity's dimension by the integer constant
			// n; n must be a literal, since binaryType only sees resolved
			// types and has no way to inspect the rhs value.
			lq, ok := lhs.Type().(types.Quant)
			if !ok {
				return nil, cerrors.New(cerrors.TypeError, v.Loc, "left operand of '^' must be a quantity")
			}
			n, ok := rhs.(resolved.Int)
			if !ok {
				return nil, cerrors.New(cerrors.TypeError, v.Loc, "'^' exponent must be a compile-time integer literal")
			}
			t := types.Quant{Dim: types.Pow(lq.Dim, int(n.Value)), Loc: v.Loc}
			return resolved.Binary{Op: "^", Lhs: lhs, Rhs: rhs, Typ: t, Loc: v.Loc}, nil
		}
		t, err := binaryType(v.Op, lhs.Type(), rhs.Type(), v.Loc)
		if err != nil {
			return nil, err
		}
		return resolved.Binary{Op: v.Op, Lhs: lhs, Rhs: rhs, Typ: t, Loc: v.Loc}, nil

	case ast.Call:
		return resolveCall(v, s)

	case ast.Object:
		fields := make([]resolved.ObjectField, len(v.Fields))
		typFields := make([]types.Field, len(v.Fields))
		for i, f := range v.Fields {
			fv, err := resolveExpr(f.Value, s)
			if err != nil {
				return nil, err
			}
			fields[i] = resolved.ObjectField{Name: f.Name, Value: fv}
			typFields[i] = types.Field{Name: f.Name, Type: fv.Type()}
		}
		var t types.Type = types.Record{Fields: typFields, Loc: v.Loc}
		if v.RecordName != nil {
			declared, ok := s.typeMap[*v.RecordName]
			if !ok {
				return nil, cerrors.New(cerrors.UnboundIdentifier, v.Loc, "unbound record type %q", *v.RecordName)
			}
			if !types.Equal(declared, t) {
				return nil, cerrors.New(cerrors.TypeError, v.Loc, "object literal does not match record type %q", *v.RecordName)
			}
			t = declared
		}
		return resolved.Object{Fields: fields, Typ: t, Loc: v.Loc}, nil

	case ast.Let:
		val, err := resolveExpr(v.Value, s)
		if err != nil {
			return nil, err
		}
		inner := s.withLocal(v.Name, val.Type())
		body, err := resolveExpr(v.Body, inner)
		if err != nil {
			return nil, err
		}
		return resolved.Let{Name: v.Name, Value: val, Body: body, Typ: body.Type(), Loc: v.Loc}, nil

	case ast.With:
		rec, err := resolveExpr(v.Record, s)
		if err != nil {
			return nil, err
		}
		rt, ok := rec.Type().(types.Record)
		if !ok {
			return nil, cerrors.New(cerrors.TypeError, v.Loc, "'with' requires a record-typed expression")
		}
		inner := s
		for _, f := range rt.Fields {
			inner = inner.withLocal(f.Name, f.Type)
		}
		body, err := resolveExpr(v.Body, inner)
		if err != nil {
			return nil, err
		}
		return resolved.With{Record: rec, Body: body, Typ: body.Type(), Loc: v.Loc}, nil

	case ast.Conditional:
		cond, err := resolveExpr(v.Cond, s)
		if err != nil {
			return nil, err
		}
		if _, ok := cond.Type().(types.Bool); !ok {
			return nil, cerrors.New(cerrors.TypeError, v.Loc, "'if' condition must be bool")
		}
		then, err := resolveExpr(v.Then, s)
		if err != nil {
			return nil, err
		}
		els, err := resolveExpr(v.Else, s)
		if err != nil {
			return nil, err
		}
		if !types.Equal(then.Type(), els.Type()) {
			return nil, cerrors.New(cerrors.TypeError, v.Loc, "'if' branches have mismatched types %s / %s",
				types.String(then.Type()), types.String(els.Type()))
		}
		return resolved.Conditional{Cond: cond, Then: then, Else: els, Typ: then.Type(), Loc: v.Loc}, nil

	case ast.FieldAccess:
		rec, err := resolveExpr(v.Record, s)
		if err != nil {
			return nil, err
		}
		rt, ok := rec.Type().(types.Record)
		if !ok {
			return nil, cerrors.New(cerrors.TypeError, v.Loc, "field access on non-record type %s", types.String(rec.Type()))
		}
		ft, ok := rt.FieldType(v.Field)
		if !ok {
			return nil, cerrors.New(cerrors.TypeError, v.Loc, "record has no field %q", v.Field)
		}
		return resolved.FieldAccess{Record: rec, Field: v.Field, Typ: ft, Loc: v.Loc}, nil

	default:
		return nil, cerrors.Internal("resolveExpr: unhandled expression kind %T", e)
	}
}

func binaryType(op string, lt, rt types.Type, loc location.Location) (types.Type, error) {
	if comparisonOps[op] {
		lq, lok := lt.(types.Quant)
		rq, rok := rt.(types.Quant)
		if !lok || !rok || lq.Dim != rq.Dim {
			return nil, cerrors.New(cerrors.TypeError, loc, "comparison '%s' requires operands of equal dimension", op)
		}
		return types.Bool{Loc: loc}, nil
	}
	if boolOps[op] {
		if _, lok := lt.(types.Bool); !lok {
			return nil, cerrors.New(cerrors.TypeError, loc, "'%s' requires bool operands", op)
		}
		if _, rok := rt.(types.Bool); !rok {
			return nil, cerrors.New(cerrors.TypeError, loc, "'%s' requires bool operands", op)
		}
		return types.Bool{Loc: loc}, nil
	}
	lq, lok := lt.(types.Quant)
	rq, rok := rt.(types.Quant)
	if !lok || !rok {
		return nil, cerrors.New(cerrors.TypeError, loc, "'%s' requires quantity operands", op)
	}
	switch op {
	case "+", "-":
		if lq.Dim != rq.Dim {
			return nil, cerrors.New(cerrors.TypeError, loc, "'%s' requires operands of equal dimension, got %s and %s",
				op, types.String(lq), types.String(rq))
		}
		return types.Quant{Dim: lq.Dim, Loc: loc}, nil
	case "*":
		return types.Quant{Dim: types.Mul(lq.Dim, rq.Dim), Loc: loc}, nil
	case "/":
		return types.Quant{Dim: types.Div(lq.Dim, rq.Dim), Loc: loc}, nil
	default:
		return nil, cerrors.Internal("binaryType: unknown operator %q", op)
	}
}

// unaryBuiltins is the stdlib unary function table (spec.md §4.1): all
// take and return dimensionless reals. min/max, which are binary and
// dimension-preserving, are not in it.
var unaryBuiltins = map[string]bool{
	"exp": true, "sin": true, "cos": true, "log": true, "abs": true, "exprelr": true,
}

func resolveCall(v ast.Call, s *scope) (resolved.Expr, error) {
	args := make([]resolved.Expr, len(v.Args))
	for i, a := range v.Args {
		ra, err := resolveExpr(a, s)
		if err != nil {
			return nil, err
		}
		args[i] = ra
	}

	switch {
	case unaryBuiltins[v.Callee]:
		if len(args) != 1 {
			return nil, cerrors.New(cerrors.ArityMismatch, v.Loc, "%q takes exactly one argument", v.Callee)
		}
		q, ok := args[0].Type().(types.Quant)
		if !ok || !q.IsReal() {
			return nil, cerrors.New(cerrors.TypeError, v.Loc, "%q requires a dimensionless real argument", v.Callee)
		}
		return resolved.Call{Callee: v.Callee, Args: args, Typ: types.Quant{Loc: v.Loc}, Loc: v.Loc}, nil

	case v.Callee == "min" || v.Callee == "max":
		if len(args) != 2 {
			return nil, cerrors.New(cerrors.ArityMismatch, v.Loc, "%q takes exactly two arguments", v.Callee)
		}
		lq, lok := args[0].Type().(types.Quant)
		rq, rok := args[1].Type().(types.Quant)
		if !lok || !rok || lq.Dim != rq.Dim {
			return nil, cerrors.New(cerrors.TypeError, v.Loc, "%q requires two operands of equal dimension", v.Callee)
		}
		return resolved.Call{Callee: v.Callee, Args: args, Typ: lq, Loc: v.Loc}, nil

	default:
		fn, ok := s.funcs[v.Callee]
		if !ok {
			return nil, cerrors.New(cerrors.UnboundIdentifier, v.Loc, "unbound function %q", v.Callee)
		}
		if len(args) != len(fn.Args) {
			return nil, cerrors.New(cerrors.ArityMismatch, v.Loc, "%q takes %d argument(s), got %d", v.Callee, len(fn.Args), len(args))
		}
		for i, p := range fn.Args {
			if !types.Equal(p.Typ, args[i].Type()) {
				return nil, cerrors.New(cerrors.TypeError, v.Loc,
					"argument %d to %q has type %s, want %s", i+1, v.Callee, types.String(args[i].Type()), types.String(p.Typ))
			}
		}
		return resolved.Call{Callee: v.Callee, Args: args, Typ: fn.ReturnType, Loc: v.Loc}, nil
	}
}
