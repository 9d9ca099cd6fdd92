package ast

import (
	"arblangc/internal/location"
	"arblangc/internal/units"
)

// Expr is the parsed-expression variant (spec.md §3). A mechanism body is
// a flat list of top-level Expr declarations.
type Expr interface {
	isExpr()
	Location() location.Location
}

// MechKind is the closed enumeration of mechanism kinds (spec.md §6).
type MechKind string

const (
	Point              MechKind = "point"
	Density            MechKind = "density"
	Concentration      MechKind = "concentration"
	ReversalPotential  MechKind = "reversal_potential"
	Junction           MechKind = "junction"
)

// BindableKind is the closed enumeration of simulator-provided quantities a
// `bind` declaration may reference (spec.md §6).
type BindableKind string

const (
	MembranePotential      BindableKind = "membrane_potential"
	Temperature            BindableKind = "temperature"
	CurrentDensity         BindableKind = "current_density"
	MolarFlux              BindableKind = "molar_flux"
	Charge                 BindableKind = "charge"
	InternalConcentration  BindableKind = "internal_concentration"
	ExternalConcentration  BindableKind = "external_concentration"
	NernstPotential        BindableKind = "nernst_potential"
	Dt                     BindableKind = "dt"
)

// AffectableKind is the closed enumeration of simulator-visible outputs an
// `effect` declaration may contribute to (spec.md §6).
type AffectableKind string

const (
	CurrentDensityContribution        AffectableKind = "current_density_contribution"
	CurrentContribution                AffectableKind = "current_contribution"
	MolarFluxContribution              AffectableKind = "molar_flux_contribution"
	InternalConcentrationRate          AffectableKind = "internal_concentration_rate"
	ExternalConcentrationRate          AffectableKind = "external_concentration_rate"
)

// Mechanism is the top-level parsed node: a kind, a name, and its ordered
// declarations.
type Mechanism struct {
	Name  string
	Kind  MechKind
	Decls []Expr
	Loc   location.Location
}

// Import is the additive `import "file.arb";` declaration (SPEC_FULL.md
// "Mechanism imports"). It is resolved away by internal/imports before
// normalization ever sees it.
type Import struct {
	Path string
	Loc  location.Location
}

func (Import) isExpr()                       {}
func (i Import) Location() location.Location { return i.Loc }

type Parameter struct {
	Name  string
	Type  Type // optional, nil if not annotated
	Value Expr
	Unit  units.Expr // optional, nil if absent
	Loc   location.Location
}

func (Parameter) isExpr()                       {}
func (p Parameter) Location() location.Location { return p.Loc }

type Constant struct {
	Name  string
	Type  Type
	Value Expr
	Unit  units.Expr
	Loc   location.Location
}

func (Constant) isExpr()                       {}
func (c Constant) Location() location.Location { return c.Loc }

type State struct {
	Name string
	Type Type // optional
	Loc  location.Location
}

func (State) isExpr()                       {}
func (s State) Location() location.Location { return s.Loc }

// RecordAlias declares a named record type (`record Foo { ... }`).
type RecordAlias struct {
	Name   string
	Fields []RecordField
	Loc    location.Location
}

func (RecordAlias) isExpr()                       {}
func (r RecordAlias) Location() location.Location { return r.Loc }

type Param struct {
	Name string
	Type Type
}

// Function declares a pure function (spec.md §3).
type Function struct {
	Name       string
	Args       []Param
	ReturnType Type // optional
	Body       Expr
	Loc        location.Location
}

func (Function) isExpr()                       {}
func (f Function) Location() location.Location { return f.Loc }

// Binding ties a local identifier to a simulator-provided quantity.
type Binding struct {
	Name string
	Kind BindableKind
	Ion  *string // optional ion name, e.g. "bind eca = nernst_potential(ca)"
	Loc  location.Location
}

func (Binding) isExpr()                       {}
func (b Binding) Location() location.Location { return b.Loc }

type Initial struct {
	Target string
	Value  Expr
	Loc    location.Location
}

func (Initial) isExpr()                       {}
func (i Initial) Location() location.Location { return i.Loc }

// Evolve declares `target' = value`, the ODE for a state variable.
type Evolve struct {
	TargetPrime string
	Value       Expr
	Loc         location.Location
}

func (Evolve) isExpr()                       {}
func (e Evolve) Location() location.Location { return e.Loc }

type Effect struct {
	Kind  AffectableKind
	Ion   *string
	Value Expr
	Loc   location.Location
}

func (Effect) isExpr()                       {}
func (e Effect) Location() location.Location { return e.Loc }

type Export struct {
	Identifier string
	Loc        location.Location
}

func (Export) isExpr()                       {}
func (e Export) Location() location.Location { return e.Loc }

type Call struct {
	Callee string
	Args   []Expr
	Loc    location.Location
}

func (Call) isExpr()                       {}
func (c Call) Location() location.Location { return c.Loc }

type ObjectField struct {
	Name  string
	Value Expr
}

// Object constructs a record value, optionally naming the record type.
type Object struct {
	RecordName *string
	Fields     []ObjectField
	Loc        location.Location
}

func (Object) isExpr()                       {}
func (o Object) Location() location.Location { return o.Loc }

type Let struct {
	Name  string
	Value Expr
	Body  Expr
	Loc   location.Location
}

func (Let) isExpr()                       {}
func (l Let) Location() location.Location { return l.Loc }

// With opens a record expression's fields as locals in Body, with the same
// shadowing rule as Let (spec.md §9, Open Question (c)).
type With struct {
	Record Expr
	Body   Expr
	Loc    location.Location
}

func (With) isExpr()                       {}
func (w With) Location() location.Location { return w.Loc }

type Conditional struct {
	Cond Expr
	Then Expr
	Else Expr
	Loc  location.Location
}

func (Conditional) isExpr()                       {}
func (c Conditional) Location() location.Location { return c.Loc }

type Identifier struct {
	Name string
	Type Type // optional annotation, e.g. on a function parameter reference
	Loc  location.Location
}

func (Identifier) isExpr()                       {}
func (i Identifier) Location() location.Location { return i.Loc }

type FieldAccess struct {
	Record Expr
	Field  string
	Loc    location.Location
}

func (FieldAccess) isExpr()                       {}
func (f FieldAccess) Location() location.Location { return f.Loc }

type Float struct {
	Value float64
	Unit  units.Expr // optional
	Loc   location.Location
}

func (Float) isExpr()                       {}
func (f Float) Location() location.Location { return f.Loc }

type Integer struct {
	Value int64
	Unit  units.Expr // optional
	Loc   location.Location
}

func (Integer) isExpr()                       {}
func (i Integer) Location() location.Location { return i.Loc }

type Unary struct {
	Op  string
	Arg Expr
	Loc location.Location
}

func (Unary) isExpr()                       {}
func (u Unary) Location() location.Location { return u.Loc }

type Binary struct {
	Op  string
	Lhs Expr
	Rhs Expr
	Loc location.Location
}

func (Binary) isExpr()                       {}
func (b Binary) Location() location.Location { return b.Loc }
