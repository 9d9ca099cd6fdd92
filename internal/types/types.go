// Package types implements the resolved (typed) IR's type system: the
// six-dimension normalized tuple and the resolved_type variant from
// spec.md §3, grounded on original_source/arblang/include/arblang/
// resolver/resolved_types.hpp.
package types

import (
	"fmt"

	"arblangc/internal/location"
	"arblangc/internal/units"
)

// Normalized is the six-tuple of integer exponents over the base SI
// dimensions — mass, length, time, current, temperature, amount. Equality
// of dimensional types is equality of this tuple (spec.md §3).
type Normalized = units.Dim

// Quantity is the closed set of named dimensional type annotations a
// parameter/constant/state declaration may carry (spec.md §3's parsed-type
// quantity enumeration).
type Quantity string

const (
	QReal          Quantity = "real"
	QLength        Quantity = "length"
	QMass          Quantity = "mass"
	QTime          Quantity = "time"
	QCurrent       Quantity = "current"
	QAmount        Quantity = "amount"
	QTemperature   Quantity = "temperature"
	QCharge        Quantity = "charge"
	QFrequency     Quantity = "frequency"
	QVoltage       Quantity = "voltage"
	QResistance    Quantity = "resistance"
	QConductance   Quantity = "conductance"
	QCapacitance   Quantity = "capacitance"
	QInductance    Quantity = "inductance"
	QForce         Quantity = "force"
	QPressure      Quantity = "pressure"
	QEnergy        Quantity = "energy"
	QPower         Quantity = "power"
	QArea          Quantity = "area"
	QVolume        Quantity = "volume"
	QConcentration Quantity = "concentration"
)

// quantityDim maps each named quantity to its base-dimension tuple.
var quantityDim = map[Quantity]Normalized{
	QReal:          {},
	QLength:        {units.DimLength: 1},
	QMass:          {units.DimMass: 1},
	QTime:          {units.DimTime: 1},
	QCurrent:       {units.DimCurrent: 1},
	QAmount:        {units.DimAmount: 1},
	QTemperature:   {units.DimTemp: 1},
	QCharge:        {units.DimCurrent: 1, units.DimTime: 1},
	QFrequency:     {units.DimTime: -1},
	QVoltage:       {units.DimMass: 1, units.DimLength: 2, units.DimTime: -3, units.DimCurrent: -1},
	QResistance:    {units.DimMass: 1, units.DimLength: 2, units.DimTime: -3, units.DimCurrent: -2},
	QConductance:   {units.DimMass: -1, units.DimLength: -2, units.DimTime: 3, units.DimCurrent: 2},
	QCapacitance:   {units.DimMass: -1, units.DimLength: -2, units.DimTime: 4, units.DimCurrent: 2},
	QInductance:    {units.DimMass: 1, units.DimLength: 2, units.DimTime: -2, units.DimCurrent: -2},
	QForce:         {units.DimMass: 1, units.DimLength: 1, units.DimTime: -2},
	QPressure:      {units.DimMass: 1, units.DimLength: -1, units.DimTime: -2},
	QEnergy:        {units.DimMass: 1, units.DimLength: 2, units.DimTime: -2},
	QPower:         {units.DimMass: 1, units.DimLength: 2, units.DimTime: -3},
	QArea:          {units.DimLength: 2},
	QVolume:        {units.DimLength: 3},
	QConcentration: {units.DimAmount: 1, units.DimLength: -3},
}

// DimOf returns the base-dimension tuple for a named quantity.
func DimOf(q Quantity) (Normalized, bool) {
	d, ok := quantityDim[q]
	return d, ok
}

// Type is the resolved-IR type variant: quantity(normalized) | bool | record(fields).
type Type interface {
	isType()
	Location() location.Location
}

type Quant struct {
	Dim Normalized
	Loc location.Location
}

func (Quant) isType()                       {}
func (q Quant) Location() location.Location { return q.Loc }
func (q Quant) IsReal() bool                { return q.Dim.IsZero() }

type Bool struct {
	Loc location.Location
}

func (Bool) isType()                       {}
func (b Bool) Location() location.Location { return b.Loc }

type Field struct {
	Name string
	Type Type
}

type Record struct {
	Fields []Field
	Loc    location.Location
}

func (Record) isType()                       {}
func (r Record) Location() location.Location { return r.Loc }

func (r Record) FieldType(name string) (Type, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// Equal compares two resolved types: quantities by dimension tuple, bools
// trivially, records field-by-field by name and type (spec.md §3).
func Equal(a, b Type) bool {
	switch av := a.(type) {
	case Quant:
		bv, ok := b.(Quant)
		return ok && av.Dim == bv.Dim
	case Bool:
		_, ok := b.(Bool)
		return ok
	case Record:
		bv, ok := b.(Record)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if av.Fields[i].Name != bv.Fields[i].Name || !Equal(av.Fields[i].Type, bv.Fields[i].Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func String(t Type) string {
	switch v := t.(type) {
	case Quant:
		return fmt.Sprintf("quantity%v", v.Dim)
	case Bool:
		return "bool"
	case Record:
		s := "record{"
		for i, f := range v.Fields {
			if i > 0 {
				s += ", "
			}
			s += f.Name + ": " + String(f.Type)
		}
		return s + "}"
	default:
		return "<unknown type>"
	}
}

// Mul/Div/Pow implement the dimensional algebra of spec.md §4.4: '*' adds
// exponent tuples, '/' subtracts, '^ n' scales by the integer constant n.
func Mul(a, b Normalized) Normalized { return a.Add(b) }
func Div(a, b Normalized) Normalized { return a.Sub(b) }
func Pow(a Normalized, n int) Normalized { return a.Scale(n) }
