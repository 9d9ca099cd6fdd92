package canon

import (
	"fmt"

	"arblangc/internal/resolved"
)

// ssaCounter hands out globally unique suffixes so renamed let-bound
// names never collide across declarations in the same mechanism.
type ssaCounter struct{ n int }

func (c *ssaCounter) fresh(base string) string {
	c.n++
	return fmt.Sprintf("%s_%d", base, c.n)
}

// ssaMechanism alpha-renames every let-bound name in m so each binding
// occurrence is unique mechanism-wide (spec.md §4.5's single static
// assignment requirement), substituting every reference within that
// binding's scope.
func ssaMechanism(m *resolved.Mechanism) *resolved.Mechanism {
	c := &ssaCounter{}
	out := &resolved.Mechanism{
		Name: m.Name, Kind: m.Kind, Loc: m.Loc,
		States: m.States, Bindings: m.Bindings, Exports: m.Exports,
	}
	for _, p := range m.Parameters {
		out.Parameters = append(out.Parameters, resolved.Parameter{
			Name: p.Name, Typ: p.Typ, Value: ssaExpr(p.Value, map[string]string{}, c), Loc: p.Loc,
		})
	}
	for _, cst := range m.Constants {
		out.Constants = append(out.Constants, resolved.Constant{
			Name: cst.Name, Typ: cst.Typ, Value: ssaExpr(cst.Value, map[string]string{}, c), Loc: cst.Loc,
		})
	}
	for _, f := range m.Functions {
		env := map[string]string{}
		for _, a := range f.Args {
			env[a.Name] = a.Name // function parameters keep their names: they bind once per call by construction
		}
		out.Functions = append(out.Functions, resolved.Function{
			Name: f.Name, Args: f.Args, ReturnType: f.ReturnType, Body: ssaExpr(f.Body, env, c), Loc: f.Loc,
		})
	}
	for _, in := range m.Initials {
		out.Initials = append(out.Initials, resolved.Initial{
			Target: in.Target, Value: ssaExpr(in.Value, map[string]string{}, c), Loc: in.Loc,
		})
	}
	for _, ev := range m.Evolves {
		out.Evolves = append(out.Evolves, resolved.Evolve{
			TargetPrime: ev.TargetPrime, Value: ssaExpr(ev.Value, map[string]string{}, c), Loc: ev.Loc,
		})
	}
	for _, ef := range m.Effects {
		out.Effects = append(out.Effects, resolved.Effect{
			Kind: ef.Kind, Ion: ef.Ion, Value: ssaExpr(ef.Value, map[string]string{}, c), Loc: ef.Loc,
		})
	}
	return out
}

// ssaExpr renames every let binding in e to a fresh name and rewrites
// identifier references accordingly. env maps names currently in scope
// (source name -> renamed name); names not in env refer to parameters,
// constants, states or bindings and pass through unchanged. canon's ANF
// pass has already desugared `with` away, so no node of that kind
// reaches here.
func ssaExpr(e resolved.Expr, env map[string]string, c *ssaCounter) resolved.Expr {
	switch v := e.(type) {
	case resolved.Identifier:
		if renamed, ok := env[v.Name]; ok {
			return resolved.Identifier{Name: renamed, Typ: v.Typ, Loc: v.Loc}
		}
		return v

	case resolved.Argument:
		return v

	case resolved.Float:
		return v

	case resolved.Int:
		return v

	case resolved.Unary:
		return resolved.Unary{Op: v.Op, Arg: ssaExpr(v.Arg, env, c), Typ: v.Typ, Loc: v.Loc}

	case resolved.Binary:
		return resolved.Binary{Op: v.Op, Lhs: ssaExpr(v.Lhs, env, c), Rhs: ssaExpr(v.Rhs, env, c), Typ: v.Typ, Loc: v.Loc}

	case resolved.Call:
		args := make([]resolved.Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = ssaExpr(a, env, c)
		}
		return resolved.Call{Callee: v.Callee, Args: args, Typ: v.Typ, Loc: v.Loc}

	case resolved.Object:
		fields := make([]resolved.ObjectField, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = resolved.ObjectField{Name: f.Name, Value: ssaExpr(f.Value, env, c)}
		}
		return resolved.Object{Fields: fields, Typ: v.Typ, Loc: v.Loc}

	case resolved.FieldAccess:
		return resolved.FieldAccess{Record: ssaExpr(v.Record, env, c), Field: v.Field, Typ: v.Typ, Loc: v.Loc}

	case resolved.Conditional:
		return resolved.Conditional{
			Cond: ssaExpr(v.Cond, env, c), Then: ssaExpr(v.Then, env, c), Else: ssaExpr(v.Else, env, c),
			Typ: v.Typ, Loc: v.Loc,
		}

	case resolved.Let:
		val := ssaExpr(v.Value, env, c)
		fresh := c.fresh(v.Name)
		inner := cloneEnv(env)
		inner[v.Name] = fresh
		body := ssaExpr(v.Body, inner, c)
		return resolved.Let{Name: fresh, Value: val, Body: body, Typ: body.Type(), Loc: v.Loc}

	default:
		// resolved.With is desugared away before this pass runs, and every
		// other variant is handled above.
		return v
	}
}

func cloneEnv(env map[string]string) map[string]string {
	out := make(map[string]string, len(env)+1)
	for k, v := range env {
		out[k] = v
	}
	return out
}
