// eliminate_dead_code.go drops let bindings whose name is never
// referenced again, grounded on
// original_source/.../optimizer/eliminate_dead_code.hpp's
// find_dead_code/remove_dead_code pair.
package optimizer

import "arblangc/internal/resolved"

func eliminateDeadCode(e resolved.Expr) (resolved.Expr, bool) {
	changed := false
	var rec func(resolved.Expr) resolved.Expr
	rec = func(e resolved.Expr) resolved.Expr {
		switch v := e.(type) {
		case resolved.Let:
			body := rec(v.Body)
			if !references(body, v.Name) {
				changed = true
				return body
			}
			val := rec(v.Value)
			return resolved.Let{Name: v.Name, Value: val, Body: body, Typ: body.Type(), Loc: v.Loc}
		default:
			return walkOnce(v, rec)
		}
	}
	return rec(e), changed
}

// references reports whether e contains any reference to name, searching
// the full subtree (including nested let values, which may still read an
// outer binding even if the let's own body does not).
func references(e resolved.Expr, name string) bool {
	switch v := e.(type) {
	case resolved.Identifier:
		return v.Name == name
	case resolved.Argument, resolved.Float, resolved.Int, resolved.Bool:
		return false
	case resolved.Unary:
		return references(v.Arg, name)
	case resolved.Binary:
		return references(v.Lhs, name) || references(v.Rhs, name)
	case resolved.Call:
		for _, a := range v.Args {
			if references(a, name) {
				return true
			}
		}
		return false
	case resolved.Object:
		for _, f := range v.Fields {
			if references(f.Value, name) {
				return true
			}
		}
		return false
	case resolved.FieldAccess:
		return references(v.Record, name)
	case resolved.Conditional:
		return references(v.Cond, name) || references(v.Then, name) || references(v.Else, name)
	case resolved.Let:
		return references(v.Value, name) || (v.Name != name && references(v.Body, name))
	default:
		return false
	}
}
