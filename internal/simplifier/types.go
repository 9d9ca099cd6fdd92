// Package simplifier is the pre-printer pass: it collapses every
// resolved dimensional type down to a plain scalar real (codegen only
// ever emits a host `double`, never a unit-carrying type), and explodes
// every record-typed parameter/state into one flat scalar
// storage slot per field. Grounded on original_source/arblang/include/
// arblang/pre_printer/{simplify,printable_mechanism,
// get_read_arguments}.hpp.
package simplifier

import "arblangc/internal/types"

// simplifyType collapses a resolved type to the printer's scalar-only
// universe: quantity(real) for both every quantity (dimensions no
// longer matter once code generation is the only consumer) and bool
// (represented as a 0/1 real the same way the original's host backend
// does), and a record of recursively simplified fields otherwise — kept
// only so callers mid-flattening can still look up a nested field's
// type; no record type survives into a PrintableMechanism's procedures.
func simplifyType(t types.Type) types.Type {
	switch v := t.(type) {
	case types.Quant:
		return types.Quant{Loc: v.Loc}
	case types.Bool:
		return types.Quant{Loc: v.Loc}
	case types.Record:
		fields := make([]types.Field, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = types.Field{Name: f.Name, Type: simplifyType(f.Type)}
		}
		return types.Record{Fields: fields, Loc: v.Loc}
	default:
		return t
	}
}
