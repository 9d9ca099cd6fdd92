// constant_fold.go folds arithmetic over literal operands using the
// host's float64 (IEEE 754 binary64) arithmetic directly — Go's native
// numeric type already matches the double the original targets, so no
// alternate-rounding concern arises (see DESIGN.md, Open Question (b)).
// Grounded on original_source/.../optimizer/constant_fold.hpp.
package optimizer

import (
	"math"

	"arblangc/internal/resolved"
)

func constantFold(e resolved.Expr) (resolved.Expr, bool) {
	changed := false
	out := walk(e, func(n resolved.Expr) resolved.Expr {
		folded, ok := foldNode(n)
		if ok {
			changed = true
			return folded
		}
		return n
	})
	return out, changed
}

func litValue(e resolved.Expr) (float64, bool) {
	switch v := e.(type) {
	case resolved.Float:
		return v.Value, true
	case resolved.Int:
		return float64(v.Value), true
	default:
		return 0, false
	}
}

func boolLitValue(e resolved.Expr) (bool, bool) {
	v, ok := e.(resolved.Bool)
	return v.Value, ok
}

// boolOps mirrors internal/resolver.boolOps; constant_fold only needs the
// set of operator spellings, not the resolver's type-checking behavior.
var boolOps = map[string]bool{"&&": true, "||": true}

// foldBoolOp folds a literal-operand '&&'/'||' and, failing that, applies
// the short-circuit identities (false && x, true || x) when only one side
// is known.
func foldBoolOp(v resolved.Binary) (resolved.Expr, bool) {
	a, aok := boolLitValue(v.Lhs)
	b, bok := boolLitValue(v.Rhs)
	if aok && bok {
		switch v.Op {
		case "&&":
			return resolved.Bool{Value: a && b, Typ: v.Typ, Loc: v.Loc}, true
		case "||":
			return resolved.Bool{Value: a || b, Typ: v.Typ, Loc: v.Loc}, true
		}
	}
	switch v.Op {
	case "&&":
		if aok && !a {
			return resolved.Bool{Value: false, Typ: v.Typ, Loc: v.Loc}, true
		}
		if bok && !b {
			return resolved.Bool{Value: false, Typ: v.Typ, Loc: v.Loc}, true
		}
		if aok && a {
			return v.Rhs, true
		}
		if bok && b {
			return v.Lhs, true
		}
	case "||":
		if aok && a {
			return resolved.Bool{Value: true, Typ: v.Typ, Loc: v.Loc}, true
		}
		if bok && b {
			return resolved.Bool{Value: true, Typ: v.Typ, Loc: v.Loc}, true
		}
		if aok && !a {
			return v.Rhs, true
		}
		if bok && !b {
			return v.Lhs, true
		}
	}
	return nil, false
}

func foldNode(e resolved.Expr) (resolved.Expr, bool) {
	switch v := e.(type) {
	case resolved.Unary:
		a, ok := litValue(v.Arg)
		if !ok {
			return nil, false
		}
		switch v.Op {
		case "-":
			return resolved.Float{Value: -a, Typ: v.Typ, Loc: v.Loc}, true
		default:
			return nil, false
		}

	case resolved.Binary:
		if boolOps[v.Op] {
			return foldBoolOp(v)
		}
		a, aok := litValue(v.Lhs)
		b, bok := litValue(v.Rhs)
		if aok && bok {
			switch v.Op {
			case "+":
				return resolved.Float{Value: a + b, Typ: v.Typ, Loc: v.Loc}, true
			case "-":
				return resolved.Float{Value: a - b, Typ: v.Typ, Loc: v.Loc}, true
			case "*":
				return resolved.Float{Value: a * b, Typ: v.Typ, Loc: v.Loc}, true
			case "/":
				return resolved.Float{Value: a / b, Typ: v.Typ, Loc: v.Loc}, true
			case "^":
				return resolved.Float{Value: math.Pow(a, b), Typ: v.Typ, Loc: v.Loc}, true
			case "==":
				return resolved.Bool{Value: a == b, Typ: v.Typ, Loc: v.Loc}, true
			case "!=":
				return resolved.Bool{Value: a != b, Typ: v.Typ, Loc: v.Loc}, true
			case "<":
				return resolved.Bool{Value: a < b, Typ: v.Typ, Loc: v.Loc}, true
			case "<=":
				return resolved.Bool{Value: a <= b, Typ: v.Typ, Loc: v.Loc}, true
			case ">":
				return resolved.Bool{Value: a > b, Typ: v.Typ, Loc: v.Loc}, true
			case ">=":
				return resolved.Bool{Value: a >= b, Typ: v.Typ, Loc: v.Loc}, true
			default:
				return nil, false
			}
		}
		// Identity/annihilator simplifications where only one side is
		// a literal — these arise constantly out of symbolic
		// differentiation's mechanical product/quotient-rule expansions
		// (internal/solver), where most terms multiply or add a bare 0 or 1.
		switch v.Op {
		case "*":
			if aok && a == 0 {
				return resolved.Float{Value: 0, Typ: v.Typ, Loc: v.Loc}, true
			}
			if bok && b == 0 {
				return resolved.Float{Value: 0, Typ: v.Typ, Loc: v.Loc}, true
			}
			if aok && a == 1 {
				return v.Rhs, true
			}
			if bok && b == 1 {
				return v.Lhs, true
			}
		case "+":
			if aok && a == 0 {
				return v.Rhs, true
			}
			if bok && b == 0 {
				return v.Lhs, true
			}
		case "-":
			if bok && b == 0 {
				return v.Lhs, true
			}
		case "/":
			if aok && a == 0 {
				return resolved.Float{Value: 0, Typ: v.Typ, Loc: v.Loc}, true
			}
			if bok && b == 1 {
				return v.Lhs, true
			}
		}
		return nil, false

	case resolved.Call:
		if len(v.Args) != 1 {
			return nil, false
		}
		a, ok := litValue(v.Args[0])
		if !ok {
			return nil, false
		}
		var r float64
		switch v.Callee {
		case "exp":
			r = math.Exp(a)
		case "sin":
			r = math.Sin(a)
		case "cos":
			r = math.Cos(a)
		case "log":
			r = math.Log(a)
		case "abs":
			r = math.Abs(a)
		case "exprelr":
			// x / (exp(x) - 1), continuous extension 1 at x == 0.
			if a == 0 {
				r = 1
			} else {
				r = a / (math.Exp(a) - 1)
			}
		default:
			return nil, false
		}
		return resolved.Float{Value: r, Typ: v.Typ, Loc: v.Loc}, true

	case resolved.Conditional:
		if cond, ok := boolLitValue(v.Cond); ok {
			if cond {
				return v.Then, true
			}
			return v.Else, true
		}
		return nil, false

	default:
		return nil, false
	}
}
