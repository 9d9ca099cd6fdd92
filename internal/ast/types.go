// Package ast is the parsed AST produced by internal/parser: tagged
// expression and type variants carrying physical-unit and quantity-type
// annotations (spec.md §3). Each variant is a plain struct implementing a
// small interface; passes dispatch with a type switch rather than a
// visitor object (see DESIGN.md, "Visitor pattern vs. exhaustive type
// switch").
package ast

import (
	"arblangc/internal/location"
	"arblangc/internal/types"
)

// Type is the parsed-type variant: integer(n) | quantity(q) |
// binary_quantity(op, lhs, rhs) | bool | record(fields) | record_alias(name).
type Type interface {
	isParsedType()
	Location() location.Location
}

type TypeBinaryOp string

const (
	TypeMul TypeBinaryOp = "mul"
	TypeDiv TypeBinaryOp = "div"
	TypePow TypeBinaryOp = "pow"
)

type IntegerType struct {
	N   int
	Loc location.Location
}

func (IntegerType) isParsedType()              {}
func (t IntegerType) Location() location.Location { return t.Loc }

type QuantityType struct {
	Quantity types.Quantity
	Loc      location.Location
}

func (QuantityType) isParsedType()                 {}
func (t QuantityType) Location() location.Location { return t.Loc }

type BinaryQuantityType struct {
	Op  TypeBinaryOp
	Lhs Type
	Rhs Type
	Loc location.Location
}

func (BinaryQuantityType) isParsedType()                 {}
func (t BinaryQuantityType) Location() location.Location { return t.Loc }

type BoolType struct {
	Loc location.Location
}

func (BoolType) isParsedType()                 {}
func (t BoolType) Location() location.Location { return t.Loc }

type RecordField struct {
	Name string
	Type Type
}

type RecordType struct {
	Fields []RecordField
	Loc    location.Location
}

func (RecordType) isParsedType()                 {}
func (t RecordType) Location() location.Location { return t.Loc }

type RecordAliasType struct {
	Name string
	Loc  location.Location
}

func (RecordAliasType) isParsedType()                 {}
func (t RecordAliasType) Location() location.Location { return t.Loc }
