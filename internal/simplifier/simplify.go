package simplifier

import (
	"strings"

	cerrors "arblangc/internal/errors"
	"arblangc/internal/resolved"
	"arblangc/internal/types"
)

// FlatField is one record field's flattened scalar storage slot.
type FlatField struct {
	Field string
	Flat  string
	Typ   types.Type
}

// FieldMap mirrors original_source's state_field_map: for every
// record-typed state or parameter, the flattened scalar storage name
// assigned to each of its fields, in declaration order.
type FieldMap map[string][]FlatField

func (fm FieldMap) lookup(base, field string) (FlatField, bool) {
	for _, f := range fm[base] {
		if f.Field == field {
			return f, true
		}
	}
	return FlatField{}, false
}

func flatName(base, field string) string {
	return strings.ReplaceAll(base+"_"+field, ".", "_")
}

// buildFieldMap scans every record-typed parameter/state and assigns
// each field a flattened scalar name. Nested records are not supported —
// neither is the original's state_field_map, which is exactly two
// levels deep (source name -> field name -> flat name).
func buildFieldMap(m *resolved.Mechanism) FieldMap {
	fm := FieldMap{}
	register := func(name string, t types.Type) {
		rec, ok := t.(types.Record)
		if !ok {
			return
		}
		var fields []FlatField
		for _, f := range rec.Fields {
			fields = append(fields, FlatField{Field: f.Name, Flat: flatName(name, f.Name), Typ: f.Type})
		}
		fm[name] = fields
	}
	for _, p := range m.Parameters {
		register(p.Name, p.Typ)
	}
	for _, s := range m.States {
		register(s.Name, s.Typ)
	}
	return fm
}

// sourceSet is every scalar name (after flattening) that denotes
// externally-visible mechanism storage rather than a local let binding:
// flattened or scalar parameters, states, and bindings.
func sourceSet(m *resolved.Mechanism, fm FieldMap) map[string]bool {
	out := map[string]bool{}
	add := func(name string, t types.Type) {
		if fields, ok := fm[name]; ok {
			for _, f := range fields {
				out[f.Flat] = true
			}
			return
		}
		out[name] = true
	}
	for _, p := range m.Parameters {
		add(p.Name, p.Typ)
	}
	for _, s := range m.States {
		add(s.Name, s.Typ)
	}
	for _, b := range m.Bindings {
		out[b.Name] = true
	}
	return out
}

// simplifyExpr rewrites every reference to mechanism-scope storage —
// whether a bare scalar identifier or a record field access — into a
// resolved.Argument, and collapses every node's type to the printer's
// scalar-only universe. Local let/with/function-argument names are left
// as resolved.Identifier.
func simplifyExpr(e resolved.Expr, fm FieldMap, sources map[string]bool) (resolved.Expr, error) {
	switch v := e.(type) {
	case resolved.Identifier:
		typ := simplifyType(v.Typ)
		if sources[v.Name] {
			return resolved.Argument{Name: v.Name, Typ: typ, Loc: v.Loc}, nil
		}
		return resolved.Identifier{Name: v.Name, Typ: typ, Loc: v.Loc}, nil

	case resolved.Argument:
		return resolved.Argument{Name: v.Name, Typ: simplifyType(v.Typ), Loc: v.Loc}, nil

	case resolved.Float:
		return resolved.Float{Value: v.Value, Typ: simplifyType(v.Typ), Loc: v.Loc}, nil

	case resolved.Int:
		return resolved.Int{Value: v.Value, Typ: simplifyType(v.Typ), Loc: v.Loc}, nil

	case resolved.Bool:
		return resolved.Bool{Value: v.Value, Typ: simplifyType(v.Typ), Loc: v.Loc}, nil

	case resolved.Unary:
		arg, err := simplifyExpr(v.Arg, fm, sources)
		if err != nil {
			return nil, err
		}
		return resolved.Unary{Op: v.Op, Arg: arg, Typ: simplifyType(v.Typ), Loc: v.Loc}, nil

	case resolved.Binary:
		lhs, err := simplifyExpr(v.Lhs, fm, sources)
		if err != nil {
			return nil, err
		}
		rhs, err := simplifyExpr(v.Rhs, fm, sources)
		if err != nil {
			return nil, err
		}
		return resolved.Binary{Op: v.Op, Lhs: lhs, Rhs: rhs, Typ: simplifyType(v.Typ), Loc: v.Loc}, nil

	case resolved.Call:
		args := make([]resolved.Expr, len(v.Args))
		for i, a := range v.Args {
			sa, err := simplifyExpr(a, fm, sources)
			if err != nil {
				return nil, err
			}
			args[i] = sa
		}
		return resolved.Call{Callee: v.Callee, Args: args, Typ: simplifyType(v.Typ), Loc: v.Loc}, nil

	case resolved.Conditional:
		cond, err := simplifyExpr(v.Cond, fm, sources)
		if err != nil {
			return nil, err
		}
		then, err := simplifyExpr(v.Then, fm, sources)
		if err != nil {
			return nil, err
		}
		els, err := simplifyExpr(v.Else, fm, sources)
		if err != nil {
			return nil, err
		}
		return resolved.Conditional{Cond: cond, Then: then, Else: els, Typ: simplifyType(v.Typ), Loc: v.Loc}, nil

	case resolved.Let:
		val, err := simplifyExpr(v.Value, fm, sources)
		if err != nil {
			return nil, err
		}
		body, err := simplifyExpr(v.Body, fm, sources)
		if err != nil {
			return nil, err
		}
		return resolved.Let{Name: v.Name, Value: val, Body: body, Typ: body.Type(), Loc: v.Loc}, nil

	case resolved.FieldAccess:
		if flat, ok := flattenedAccess(v, fm); ok {
			return resolved.Argument{Name: flat, Typ: simplifyType(v.Typ), Loc: v.Loc}, nil
		}
		rec, err := simplifyExpr(v.Record, fm, sources)
		if err != nil {
			return nil, err
		}
		return resolved.FieldAccess{Record: rec, Field: v.Field, Typ: simplifyType(v.Typ), Loc: v.Loc}, nil

	case resolved.Object:
		fields := make([]resolved.ObjectField, len(v.Fields))
		for i, f := range v.Fields {
			fv, err := simplifyExpr(f.Value, fm, sources)
			if err != nil {
				return nil, err
			}
			fields[i] = resolved.ObjectField{Name: f.Name, Value: fv}
		}
		return resolved.Object{Fields: fields, Typ: simplifyType(v.Typ), Loc: v.Loc}, nil

	default:
		return nil, cerrors.Internal("simplifier: unhandled expression kind %T", e)
	}
}

// flattenedAccess recognizes `base.field` where base is a record-typed
// mechanism source, returning the flattened scalar storage name.
func flattenedAccess(fa resolved.FieldAccess, fm FieldMap) (string, bool) {
	id, ok := fa.Record.(resolved.Identifier)
	if !ok {
		return "", false
	}
	f, ok := fm.lookup(id.Name, fa.Field)
	return f.Flat, ok
}

// projectField extracts the value assigned to one field of a
// record-valued expression: directly, if it is an object literal, or
// via a field access on the expression otherwise.
func projectField(e resolved.Expr, field string, fieldType types.Type) resolved.Expr {
	if obj, ok := e.(resolved.Object); ok {
		for _, f := range obj.Fields {
			if f.Name == field {
				return f.Value
			}
		}
	}
	return resolved.FieldAccess{Record: e, Field: field, Typ: fieldType, Loc: e.Location()}
}
