// Package resolved is the typed IR produced by internal/resolver: every
// node carries its resolved_type (internal/types) alongside its tag,
// mirroring original_source/arblang/include/arblang/resolver/
// resolved_expressions.hpp's r_expr variant set. Downstream passes
// (internal/canon, internal/optimizer, internal/inliner, internal/solver,
// internal/simplifier) all operate on this representation.
package resolved

import (
	"arblangc/internal/ast"
	"arblangc/internal/location"
	"arblangc/internal/types"
)

type Expr interface {
	isExpr()
	Type() types.Type
	Location() location.Location
}

type Mechanism struct {
	Name       string
	Kind       ast.MechKind
	Parameters []Parameter
	Constants  []Constant
	States     []State
	Bindings   []Binding
	Functions  []Function
	Initials   []Initial
	Evolves    []Evolve
	Effects    []Effect
	Exports    []Export
	Loc        location.Location
}

type Parameter struct {
	Name  string
	Typ   types.Type
	Value Expr
	Loc   location.Location
}

func (Parameter) isExpr()                       {}
func (p Parameter) Type() types.Type            { return p.Typ }
func (p Parameter) Location() location.Location { return p.Loc }

type Constant struct {
	Name  string
	Typ   types.Type
	Value Expr
	Loc   location.Location
}

func (Constant) isExpr()                       {}
func (c Constant) Type() types.Type            { return c.Typ }
func (c Constant) Location() location.Location { return c.Loc }

type State struct {
	Name string
	Typ  types.Type
	Loc  location.Location
}

func (State) isExpr()                       {}
func (s State) Type() types.Type            { return s.Typ }
func (s State) Location() location.Location { return s.Loc }

type Binding struct {
	Name string
	Kind ast.BindableKind
	Ion  *string
	Typ  types.Type
	Loc  location.Location
}

func (Binding) isExpr()                       {}
func (b Binding) Type() types.Type            { return b.Typ }
func (b Binding) Location() location.Location { return b.Loc }

type Param struct {
	Name string
	Typ  types.Type
}

type Function struct {
	Name       string
	Args       []Param
	ReturnType types.Type
	Body       Expr
	Loc        location.Location
}

func (Function) isExpr()                       {}
func (f Function) Type() types.Type            { return f.ReturnType }
func (f Function) Location() location.Location { return f.Loc }

type Initial struct {
	Target string
	Value  Expr
	Loc    location.Location
}

func (Initial) isExpr()                       {}
func (Initial) Type() types.Type               { return nil }
func (i Initial) Location() location.Location { return i.Loc }

type Evolve struct {
	TargetPrime string
	Value       Expr
	Loc         location.Location
}

func (Evolve) isExpr()                       {}
func (Evolve) Type() types.Type               { return nil }
func (e Evolve) Location() location.Location { return e.Loc }

type Effect struct {
	Kind  ast.AffectableKind
	Ion   *string
	Value Expr
	Loc   location.Location
}

func (Effect) isExpr()                       {}
func (Effect) Type() types.Type               { return nil }
func (e Effect) Location() location.Location { return e.Loc }

type Export struct {
	Identifier string
	Loc        location.Location
}

func (Export) isExpr()                       {}
func (Export) Type() types.Type               { return nil }
func (e Export) Location() location.Location { return e.Loc }

// Identifier references a bound name: a parameter, constant, state,
// binding, local let/with-introduced name, or function argument.
type Identifier struct {
	Name string
	Typ  types.Type
	Loc  location.Location
}

func (Identifier) isExpr()                       {}
func (i Identifier) Type() types.Type            { return i.Typ }
func (i Identifier) Location() location.Location { return i.Loc }

// Argument is the form a FieldAccess is rewritten into by internal/simplifier
// once every record has been flattened to scalar state/parameter storage
// (pre_printer/simplify.hpp: "resolved_field_access is simplified to
// resolved_argument").
type Argument struct {
	Name string
	Typ  types.Type
	Loc  location.Location
}

func (Argument) isExpr()                       {}
func (a Argument) Type() types.Type            { return a.Typ }
func (a Argument) Location() location.Location { return a.Loc }

type FieldAccess struct {
	Record Expr
	Field  string
	Typ    types.Type
	Loc    location.Location
}

func (FieldAccess) isExpr()                       {}
func (f FieldAccess) Type() types.Type            { return f.Typ }
func (f FieldAccess) Location() location.Location { return f.Loc }

type Float struct {
	Value float64
	Typ   types.Type
	Loc   location.Location
}

func (Float) isExpr()                       {}
func (f Float) Type() types.Type            { return f.Typ }
func (f Float) Location() location.Location { return f.Loc }

type Int struct {
	Value int64
	Typ   types.Type
	Loc   location.Location
}

func (Int) isExpr()                       {}
func (i Int) Type() types.Type            { return i.Typ }
func (i Int) Location() location.Location { return i.Loc }

// Bool is a literal boolean value. There is no surface syntax for it —
// it only arises from internal/optimizer folding a literal comparison
// or boolean expression down to a constant.
type Bool struct {
	Value bool
	Typ   types.Type
	Loc   location.Location
}

func (Bool) isExpr()                       {}
func (b Bool) Type() types.Type            { return b.Typ }
func (b Bool) Location() location.Location { return b.Loc }

type Unary struct {
	Op  string
	Arg Expr
	Typ types.Type
	Loc location.Location
}

func (Unary) isExpr()                       {}
func (u Unary) Type() types.Type            { return u.Typ }
func (u Unary) Location() location.Location { return u.Loc }

type Binary struct {
	Op  string
	Lhs Expr
	Rhs Expr
	Typ types.Type
	Loc location.Location
}

func (Binary) isExpr()                       {}
func (b Binary) Type() types.Type            { return b.Typ }
func (b Binary) Location() location.Location { return b.Loc }

type Call struct {
	Callee string
	Args   []Expr
	Typ    types.Type
	Loc    location.Location
}

func (Call) isExpr()                       {}
func (c Call) Type() types.Type            { return c.Typ }
func (c Call) Location() location.Location { return c.Loc }

type ObjectField struct {
	Name  string
	Value Expr
}

type Object struct {
	Fields []ObjectField
	Typ    types.Type
	Loc    location.Location
}

func (Object) isExpr()                       {}
func (o Object) Type() types.Type            { return o.Typ }
func (o Object) Location() location.Location { return o.Loc }

type Let struct {
	Name  string
	Value Expr
	Body  Expr
	Typ   types.Type
	Loc   location.Location
}

func (Let) isExpr()                       {}
func (l Let) Type() types.Type            { return l.Typ }
func (l Let) Location() location.Location { return l.Loc }

type With struct {
	Record Expr
	Body   Expr
	Typ    types.Type
	Loc    location.Location
}

func (With) isExpr()                       {}
func (w With) Type() types.Type            { return w.Typ }
func (w With) Location() location.Location { return w.Loc }

type Conditional struct {
	Cond Expr
	Then Expr
	Else Expr
	Typ  types.Type
	Loc  location.Location
}

func (Conditional) isExpr()                       {}
func (c Conditional) Type() types.Type            { return c.Typ }
func (c Conditional) Location() location.Location { return c.Loc }
