// copy_propagate.go eliminates a let binding whose value is itself a
// bare reference to another name, substituting that name directly at
// every use site instead. Grounded on
// original_source/.../optimizer/copy_propagate.hpp.
package optimizer

import "arblangc/internal/resolved"

func copyPropagate(e resolved.Expr) (resolved.Expr, bool) {
	changed := false
	var rec func(resolved.Expr) resolved.Expr
	rec = func(e resolved.Expr) resolved.Expr {
		switch v := e.(type) {
		case resolved.Let:
			val := rec(v.Value)
			if id, ok := val.(resolved.Identifier); ok {
				changed = true
				return substitute(rec(v.Body), v.Name, id)
			}
			body := rec(v.Body)
			return resolved.Let{Name: v.Name, Value: val, Body: body, Typ: body.Type(), Loc: v.Loc}
		default:
			return walkOnce(v, rec)
		}
	}
	return rec(e), changed
}
