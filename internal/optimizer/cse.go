// cse.go implements common subexpression elimination: every let-bound
// value is structurally hashed; a later binding whose value hashes equal
// to an earlier one is rewritten to reference the earlier name instead,
// grounded on original_source/.../optimizer/cse.hpp's expr_map keyed by
// resolved_expr. The structural hash here uses blake2b over a canonical
// textual encoding rather than the original's operator== overload, since
// Go has no structural-equality operator to hook into a map key the way
// C++'s std::unordered_map<resolved_expr, r_expr> does.
package optimizer

import (
	"fmt"

	"golang.org/x/crypto/blake2b"

	"arblangc/internal/resolved"
)

// structuralHash renders e into a canonical string the hash is taken
// over. Names of let-bound locals are not part of the encoding beyond
// their binding site, since SSA has already made every bound name unique
// — two let-bindings with equal values but different names are still
// the same subexpression for CSE's purposes.
func structuralHash(e resolved.Expr) [32]byte {
	return blake2b.Sum256([]byte(encode(e)))
}

func encode(e resolved.Expr) string {
	switch v := e.(type) {
	case resolved.Identifier:
		return "id:" + v.Name
	case resolved.Argument:
		return "arg:" + v.Name
	case resolved.Float:
		return fmt.Sprintf("f:%x", v.Value)
	case resolved.Int:
		return fmt.Sprintf("i:%d", v.Value)
	case resolved.Bool:
		return fmt.Sprintf("bl:%t", v.Value)
	case resolved.Unary:
		return fmt.Sprintf("u(%s,%s)", v.Op, encode(v.Arg))
	case resolved.Binary:
		return fmt.Sprintf("b(%s,%s,%s)", v.Op, encode(v.Lhs), encode(v.Rhs))
	case resolved.Call:
		s := "c(" + v.Callee
		for _, a := range v.Args {
			s += "," + encode(a)
		}
		return s + ")"
	case resolved.Object:
		s := "o("
		for _, fl := range v.Fields {
			s += fl.Name + "=" + encode(fl.Value) + ";"
		}
		return s + ")"
	case resolved.FieldAccess:
		return fmt.Sprintf("fa(%s,%s)", encode(v.Record), v.Field)
	case resolved.Conditional:
		return fmt.Sprintf("if(%s,%s,%s)", encode(v.Cond), encode(v.Then), encode(v.Else))
	case resolved.Let:
		// A let's own hash is keyed on its value only; CSE never dedupes a
		// whole let, only the atomic expressions available at each binding
		// site (see cse below).
		return "let:" + encode(v.Value)
	default:
		return fmt.Sprintf("?%T", e)
	}
}

// cse rewrites e bottom-up, remembering the first let-bound value seen
// for each structural hash and substituting repeats with a reference to
// that earlier binding.
func cse(e resolved.Expr) (resolved.Expr, bool) {
	changed := false
	seen := map[[32]byte]resolved.Identifier{}
	var rec func(resolved.Expr) resolved.Expr
	rec = func(e resolved.Expr) resolved.Expr {
		switch v := e.(type) {
		case resolved.Let:
			val := rec(v.Value)
			h := structuralHash(val)
			if existing, ok := seen[h]; ok && !isTrivial(val) {
				changed = true
				body := rec(v.Body)
				// Collapse this binding: substitute its name for the earlier
				// one throughout the body rather than rebind it.
				body = substitute(body, v.Name, existing)
				return body
			}
			seen[h] = resolved.Identifier{Name: v.Name, Typ: val.Type(), Loc: v.Loc}
			body := rec(v.Body)
			return resolved.Let{Name: v.Name, Value: val, Body: body, Typ: body.Type(), Loc: v.Loc}
		default:
			return walkOnce(v, rec)
		}
	}
	return rec(e), changed
}

// isTrivial excludes atoms from deduplication — binding two identical
// literals to the same name saves nothing and only obscures the IR.
func isTrivial(e resolved.Expr) bool {
	switch e.(type) {
	case resolved.Identifier, resolved.Argument, resolved.Float, resolved.Int, resolved.Bool:
		return true
	default:
		return false
	}
}

// walkOnce applies rec to e's immediate children only (rec itself
// recurses further via its own Let case), used by passes that need
// custom handling at Let but generic structural recursion elsewhere.
func walkOnce(e resolved.Expr, rec func(resolved.Expr) resolved.Expr) resolved.Expr {
	switch v := e.(type) {
	case resolved.Unary:
		return resolved.Unary{Op: v.Op, Arg: rec(v.Arg), Typ: v.Typ, Loc: v.Loc}
	case resolved.Binary:
		return resolved.Binary{Op: v.Op, Lhs: rec(v.Lhs), Rhs: rec(v.Rhs), Typ: v.Typ, Loc: v.Loc}
	case resolved.Call:
		args := make([]resolved.Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = rec(a)
		}
		return resolved.Call{Callee: v.Callee, Args: args, Typ: v.Typ, Loc: v.Loc}
	case resolved.Object:
		fields := make([]resolved.ObjectField, len(v.Fields))
		for i, fl := range v.Fields {
			fields[i] = resolved.ObjectField{Name: fl.Name, Value: rec(fl.Value)}
		}
		return resolved.Object{Fields: fields, Typ: v.Typ, Loc: v.Loc}
	case resolved.FieldAccess:
		return resolved.FieldAccess{Record: rec(v.Record), Field: v.Field, Typ: v.Typ, Loc: v.Loc}
	case resolved.Conditional:
		return resolved.Conditional{Cond: rec(v.Cond), Then: rec(v.Then), Else: rec(v.Else), Typ: v.Typ, Loc: v.Loc}
	default:
		return v
	}
}

// substitute replaces every reference to name with replacement in e.
func substitute(e resolved.Expr, name string, replacement resolved.Identifier) resolved.Expr {
	switch v := e.(type) {
	case resolved.Identifier:
		if v.Name == name {
			return replacement
		}
		return v
	case resolved.Let:
		val := substitute(v.Value, name, replacement)
		if v.Name == name {
			// shadowed: name is rebound below, stop substituting in the body
			return resolved.Let{Name: v.Name, Value: val, Body: v.Body, Typ: v.Typ, Loc: v.Loc}
		}
		body := substitute(v.Body, name, replacement)
		return resolved.Let{Name: v.Name, Value: val, Body: body, Typ: body.Type(), Loc: v.Loc}
	default:
		return walkOnce(v, func(e resolved.Expr) resolved.Expr { return substitute(e, name, replacement) })
	}
}
