package simplifier

import (
	"arblangc/internal/location"
	"arblangc/internal/resolved"
	"arblangc/internal/types"
)

// Simplify is the pre-printer pass: it flattens every record-typed
// parameter/state into its scalar fields and rewrites every remaining
// expression tree into the printer's scalar-argument form.
func Simplify(mechs []*resolved.Mechanism) ([]*resolved.Mechanism, error) {
	out := make([]*resolved.Mechanism, len(mechs))
	for i, m := range mechs {
		sm, err := simplifyMechanism(m)
		if err != nil {
			return nil, err
		}
		out[i] = sm
	}
	return out, nil
}

func simplifyMechanism(m *resolved.Mechanism) (*resolved.Mechanism, error) {
	fm := buildFieldMap(m)
	sources := sourceSet(m, fm)

	out := &resolved.Mechanism{Name: m.Name, Kind: m.Kind, Loc: m.Loc}

	for _, p := range m.Parameters {
		flat, err := flattenValueDecl(p.Name, p.Typ, p.Value, p.Loc, fm, sources)
		if err != nil {
			return nil, err
		}
		for _, f := range flat {
			out.Parameters = append(out.Parameters, resolved.Parameter{Name: f.name, Typ: f.typ, Value: f.value, Loc: f.loc})
		}
	}
	for _, c := range m.Constants {
		flat, err := flattenValueDecl(c.Name, c.Typ, c.Value, c.Loc, fm, sources)
		if err != nil {
			return nil, err
		}
		for _, f := range flat {
			out.Constants = append(out.Constants, resolved.Constant{Name: f.name, Typ: f.typ, Value: f.value, Loc: f.loc})
		}
	}
	for _, s := range m.States {
		for _, f := range flattenTypeOnly(s.Name, s.Typ, s.Loc) {
			out.States = append(out.States, resolved.State{Name: f.name, Typ: f.typ, Loc: f.loc})
		}
	}
	for _, b := range m.Bindings {
		out.Bindings = append(out.Bindings, resolved.Binding{Name: b.Name, Kind: b.Kind, Ion: b.Ion, Typ: simplifyType(b.Typ), Loc: b.Loc})
	}
	for _, in := range m.Initials {
		entries, err := flattenTarget(in.Target, in.Value, in.Loc, fm, sources)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			out.Initials = append(out.Initials, resolved.Initial{Target: e.name, Value: e.value, Loc: e.loc})
		}
	}
	for _, ev := range m.Evolves {
		entries, err := flattenTarget(ev.TargetPrime, ev.Value, ev.Loc, fm, sources)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			out.Evolves = append(out.Evolves, resolved.Evolve{TargetPrime: e.name, Value: e.value, Loc: e.loc})
		}
	}
	for _, ef := range m.Effects {
		v, err := simplifyExpr(ef.Value, fm, sources)
		if err != nil {
			return nil, err
		}
		out.Effects = append(out.Effects, resolved.Effect{Kind: ef.Kind, Ion: ef.Ion, Value: v, Loc: ef.Loc})
	}
	for _, ex := range m.Exports {
		if fields, ok := fm[ex.Identifier]; ok {
			for _, f := range fields {
				out.Exports = append(out.Exports, resolved.Export{Identifier: f.Flat, Loc: ex.Loc})
			}
			continue
		}
		out.Exports = append(out.Exports, resolved.Export{Identifier: ex.Identifier, Loc: ex.Loc})
	}
	return out, nil
}

type flatValueField struct {
	name  string
	typ   types.Type
	value resolved.Expr
	loc   location.Location
}

// flattenValueDecl splits a record-typed parameter declaration into one
// flattened entry per field, in declaration order; any declaration the
// field map does not list (a scalar, or any constant) passes through as a
// single entry.
func flattenValueDecl(name string, typ types.Type, value resolved.Expr, loc location.Location, fm FieldMap, sources map[string]bool) ([]flatValueField, error) {
	fields, ok := fm[name]
	if !ok {
		v, err := simplifyExpr(value, fm, sources)
		if err != nil {
			return nil, err
		}
		return []flatValueField{{name: name, typ: simplifyType(typ), value: v, loc: loc}}, nil
	}
	out := make([]flatValueField, 0, len(fields))
	for _, f := range fields {
		proj := projectField(value, f.Field, f.Typ)
		v, err := simplifyExpr(proj, fm, sources)
		if err != nil {
			return nil, err
		}
		out = append(out, flatValueField{name: f.Flat, typ: simplifyType(f.Typ), value: v, loc: loc})
	}
	return out, nil
}

type flatTypeField struct {
	name string
	typ  types.Type
	loc  location.Location
}

func flattenTypeOnly(name string, typ types.Type, loc location.Location) []flatTypeField {
	rec, ok := typ.(types.Record)
	if !ok {
		return []flatTypeField{{name: name, typ: simplifyType(typ), loc: loc}}
	}
	out := make([]flatTypeField, 0, len(rec.Fields))
	for _, f := range rec.Fields {
		out = append(out, flatTypeField{name: flatName(name, f.Name), typ: simplifyType(f.Type), loc: loc})
	}
	return out
}

type flatTarget struct {
	name  string
	value resolved.Expr
	loc   location.Location
}

// flattenTarget splits an initial/evolve declaration whose target names
// a record-typed state into one declaration per field, in declaration
// order.
func flattenTarget(target string, value resolved.Expr, loc location.Location, fm FieldMap, sources map[string]bool) ([]flatTarget, error) {
	fields, ok := fm[target]
	if !ok {
		v, err := simplifyExpr(value, fm, sources)
		if err != nil {
			return nil, err
		}
		return []flatTarget{{name: target, value: v, loc: loc}}, nil
	}
	out := make([]flatTarget, 0, len(fields))
	for _, f := range fields {
		proj := projectField(value, f.Field, f.Typ)
		v, err := simplifyExpr(proj, fm, sources)
		if err != nil {
			return nil, err
		}
		out = append(out, flatTarget{name: f.Flat, value: v, loc: loc})
	}
	return out, nil
}
