// Package units implements the parsed-unit grammar and its reduction to a
// base-SI factor + six-dimension exponent tuple, grounded on
// original_source/arblang/include/arblang/{unit,unit_expressions,
// unit_normalizer}.hpp. A parsed unit is SI-style: an optional prefix times
// a symbol, an integer literal, or a binary composition (spec.md §3).
package units

import (
	"fmt"

	"arblangc/internal/location"
)

// Dim is the six-tuple of integer exponents over the base SI dimensions,
// in the fixed order mass (g), length (m), time (s), current (A),
// temperature (K), amount (mol). This is the same tuple internal/types
// uses for a resolved dimensional type — a unit reduces directly to it.
type Dim [6]int

const (
	DimMass = iota
	DimLength
	DimTime
	DimCurrent
	DimTemp
	DimAmount
)

func (d Dim) Add(o Dim) Dim {
	var r Dim
	for i := range d {
		r[i] = d[i] + o[i]
	}
	return r
}

func (d Dim) Sub(o Dim) Dim {
	var r Dim
	for i := range d {
		r[i] = d[i] - o[i]
	}
	return r
}

func (d Dim) Scale(n int) Dim {
	var r Dim
	for i := range d {
		r[i] = d[i] * n
	}
	return r
}

func (d Dim) IsZero() bool {
	return d == Dim{}
}

// Factor is a unit reduced to base SI units: a decimal exponent (value in
// the original unit times 10^Exp equals the value in base units) and the
// dimension tuple.
type Factor struct {
	Exp int
	Dim Dim
}

func (f Factor) Mul(o Factor) Factor {
	return Factor{Exp: f.Exp + o.Exp, Dim: f.Dim.Add(o.Dim)}
}

func (f Factor) Div(o Factor) Factor {
	return Factor{Exp: f.Exp - o.Exp, Dim: f.Dim.Sub(o.Dim)}
}

func (f Factor) Pow(n int) Factor {
	return Factor{Exp: f.Exp * n, Dim: f.Dim.Scale(n)}
}

// prefixExp is the SI prefix table (unit.hpp's unit_pref enum).
var prefixExp = map[string]int{
	"Y": 24, "Z": 21, "E": 18, "P": 15, "T": 12, "G": 9, "M": 6, "k": 3, "h": 2, "da": 1,
	"d": -1, "c": -2, "m": -3, "u": -6, "n": -9, "p": -12, "f": -15, "a": -18, "z": -21, "y": -24,
}

// symbolFactor is the closed set of unit symbols spec.md §3 enumerates,
// each reduced to its base-SI factor. Because the base mass unit is the
// gram (not the kilogram), every SI-derived conversion here is an exact
// power of ten.
var symbolFactor = map[string]Factor{
	"m":   {Exp: 0, Dim: Dim{DimLength: 1}},
	"g":   {Exp: 0, Dim: Dim{DimMass: 1}},
	"s":   {Exp: 0, Dim: Dim{DimTime: 1}},
	"A":   {Exp: 0, Dim: Dim{DimCurrent: 1}},
	"K":   {Exp: 0, Dim: Dim{DimTemp: 1}},
	"mol": {Exp: 0, Dim: Dim{DimAmount: 1}},
	"Hz":  {Exp: 0, Dim: Dim{DimTime: -1}},
	"L":   {Exp: -3, Dim: Dim{DimLength: 3}},
	"N":   {Exp: 3, Dim: Dim{DimMass: 1, DimLength: 1, DimTime: -2}},
	"Pa":  {Exp: 3, Dim: Dim{DimMass: 1, DimLength: -1, DimTime: -2}},
	"W":   {Exp: 3, Dim: Dim{DimMass: 1, DimLength: 2, DimTime: -3}},
	"J":   {Exp: 3, Dim: Dim{DimMass: 1, DimLength: 2, DimTime: -2}},
	"C":   {Exp: 0, Dim: Dim{DimCurrent: 1, DimTime: 1}},
	"V":   {Exp: 3, Dim: Dim{DimMass: 1, DimLength: 2, DimTime: -3, DimCurrent: -1}},
	"F":   {Exp: -3, Dim: Dim{DimMass: -1, DimLength: -2, DimTime: 4, DimCurrent: 2}},
	"H":   {Exp: 3, Dim: Dim{DimMass: 1, DimLength: 2, DimTime: -2, DimCurrent: -2}},
	"Ohm": {Exp: 3, Dim: Dim{DimMass: 1, DimLength: 2, DimTime: -3, DimCurrent: -2}},
	"S":   {Exp: -3, Dim: Dim{DimMass: -1, DimLength: -2, DimTime: 3, DimCurrent: 2}},
	"M":   {Exp: 3, Dim: Dim{DimAmount: 1, DimLength: -3}},
}

// Parsed unit expression variants (unit_expressions.hpp). Binary's right
// operand must be an integer literal when Op is Pow — the invariant is
// enforced at construction by NewBinary, per spec.md §3.
type Expr interface {
	Reduce() (Factor, error)
	Location() location.Location
}

type BinaryOp string

const (
	Mul BinaryOp = "mul"
	Div BinaryOp = "div"
	Pow BinaryOp = "pow"
)

// Integer is a bare integer literal used as a unit atom. Only the value 1
// (dimensionless identity) is meaningful in this language's unit algebra;
// any other value cannot be expressed as a power-of-ten base-unit factor.
type Integer struct {
	Val int
	Loc location.Location
}

func (i Integer) Location() location.Location { return i.Loc }

func (i Integer) Reduce() (Factor, error) {
	if i.Val != 1 {
		return Factor{}, fmt.Errorf("integer unit literal %d is not dimensionless (only 1 is)", i.Val)
	}
	return Factor{}, nil
}

// Simple is a prefix (or "" for none) applied to a base symbol, e.g. "mV".
type Simple struct {
	Prefix   string // "" means no prefix
	Symbol   string
	Spelling string
	Loc      location.Location
}

func (s Simple) Location() location.Location { return s.Loc }

func (s Simple) Reduce() (Factor, error) {
	base, ok := symbolFactor[s.Symbol]
	if !ok {
		return Factor{}, fmt.Errorf("unknown unit symbol %q", s.Symbol)
	}
	pexp := 0
	if s.Prefix != "" {
		e, ok := prefixExp[s.Prefix]
		if !ok {
			return Factor{}, fmt.Errorf("unknown unit prefix %q", s.Prefix)
		}
		pexp = e
	}
	return Factor{Exp: base.Exp + pexp, Dim: base.Dim}, nil
}

// Reduced is a unit expression already in normal form: a bare dimension
// tuple with no further decimal scaling, the form internal/normalizer
// rewrites every literal's unit annotation into once its scale factor has
// been folded into the literal's value.
type Reduced struct {
	D   Dim
	Loc location.Location
}

func (r Reduced) Location() location.Location { return r.Loc }
func (r Reduced) Reduce() (Factor, error)     { return Factor{Dim: r.D}, nil }

type Binary struct {
	Op  BinaryOp
	Lhs Expr
	Rhs Expr
	Loc location.Location
}

// NewBinary enforces the construction-time invariant that pow's exponent
// is a literal integer (spec.md §3).
func NewBinary(op BinaryOp, lhs, rhs Expr, loc location.Location) (Binary, error) {
	if op == Pow {
		if _, ok := rhs.(Integer); !ok {
			return Binary{}, fmt.Errorf("unit '^' exponent must be an integer literal")
		}
	}
	return Binary{Op: op, Lhs: lhs, Rhs: rhs, Loc: loc}, nil
}

func (b Binary) Location() location.Location { return b.Loc }

func (b Binary) Reduce() (Factor, error) {
	lhs, err := b.Lhs.Reduce()
	if err != nil {
		return Factor{}, err
	}
	switch b.Op {
	case Mul:
		rhs, err := b.Rhs.Reduce()
		if err != nil {
			return Factor{}, err
		}
		return lhs.Mul(rhs), nil
	case Div:
		rhs, err := b.Rhs.Reduce()
		if err != nil {
			return Factor{}, err
		}
		return lhs.Div(rhs), nil
	case Pow:
		n := b.Rhs.(Integer).Val
		return lhs.Pow(n), nil
	default:
		return Factor{}, fmt.Errorf("unknown unit operator %q", b.Op)
	}
}

// symbolNames in descending spelling length, so prefix/symbol splitting
// prefers the longest valid symbol match (e.g. "mol" over "m"+"ol").
var symbolNames = []string{"mol", "Ohm", "Hz", "Pa", "m", "g", "s", "A", "K", "L", "N", "W", "J", "C", "V", "F", "H", "S", "M"}

// ParseSymbol splits a spelling like "mV" into an optional prefix and a
// base symbol, per the SI prefix table in unit.hpp. Returns ok=false if no
// split reduces to a known symbol.
func ParseSymbol(spelling string) (prefix, symbol string, ok bool) {
	for _, sym := range symbolNames {
		if spelling == sym {
			return "", sym, true
		}
		if len(spelling) > len(sym) && spelling[len(spelling)-len(sym):] == sym {
			p := spelling[:len(spelling)-len(sym)]
			if _, known := prefixExp[p]; known {
				return p, sym, true
			}
		}
	}
	return "", "", false
}
