package simplifier

import (
	"arblangc/internal/ast"
	"arblangc/internal/resolved"
)

// pointerPrefix marks every externally-visible storage slot the printer
// must expose as a host-owned pointer, exactly as original_source's
// printable_mechanism prefixes every field_pack entry with "_pp_".
const pointerPrefix = "_pp_"

func pointer(name string) string { return pointerPrefix + name }

// BindSource is one simulator-provided value a mechanism reads.
type BindSource struct {
	Kind ast.BindableKind
	Ion  *string
}

// EffectSource is one simulator-owned output a mechanism writes to.
type EffectSource struct {
	Kind ast.AffectableKind
	Ion  *string
}

// FieldPack collects every named storage slot a mechanism touches,
// mirroring printable_mechanism::mechanism_fields.
type FieldPack struct {
	ParamSources  map[string]bool
	StateSources  map[string]bool
	BindSources   map[string]BindSource
	EffectSources map[string]EffectSource
}

// ReadMap maps pointer name -> local variable name for one procedure's
// reads of state, parameter, and binding storage.
type ReadMap struct {
	StateMap     map[string]string
	ParameterMap map[string]string
	BindingMap   map[string]string
}

func newReadMap() ReadMap {
	return ReadMap{StateMap: map[string]string{}, ParameterMap: map[string]string{}, BindingMap: map[string]string{}}
}

// WriteMap maps pointer name -> local variable name for one procedure's
// writes to state, parameter, and effect storage.
type WriteMap struct {
	StateMap     map[string]string
	ParameterMap map[string]string
	EffectMap    map[string]string
}

func newWriteMap() WriteMap {
	return WriteMap{StateMap: map[string]string{}, ParameterMap: map[string]string{}, EffectMap: map[string]string{}}
}

// ProcedurePack is the expression lists the printer emits per mechanism
// procedure, mirroring printable_mechanism::mechanism_procedures. A
// parameter counts as constant when its simplified value reads no
// external storage — it can be computed once rather than on every step.
type ProcedurePack struct {
	ConstantParameters []resolved.Expr
	AssignedParameters []resolved.Expr
	Initializations    []resolved.Expr
	Effects            []resolved.Expr
	Evolutions         []resolved.Expr
}

// PrintableMechanism is the stable hand-off structure the (out-of-scope)
// code-emitting printer consumes, grounded on original_source's
// printable_mechanism struct.
type PrintableMechanism struct {
	Name string
	Kind ast.MechKind

	ProcedurePack ProcedurePack
	FieldPack     FieldPack

	InitReadMap  ReadMap
	InitWriteMap WriteMap

	EffectReadMap  ReadMap
	EffectWriteMap WriteMap

	EvolveReadMap  ReadMap
	EvolveWriteMap WriteMap
}

// BuildPrintableMechanism assembles the hand-off structure for one
// already-simplified mechanism.
func BuildPrintableMechanism(m *resolved.Mechanism) *PrintableMechanism {
	pm := &PrintableMechanism{
		Name:           m.Name,
		Kind:           m.Kind,
		InitReadMap:    newReadMap(),
		InitWriteMap:   newWriteMap(),
		EffectReadMap:  newReadMap(),
		EffectWriteMap: newWriteMap(),
		EvolveReadMap:  newReadMap(),
		EvolveWriteMap: newWriteMap(),
	}
	pm.FieldPack = buildFieldPack(m)

	for _, p := range m.Parameters {
		if containsArgument(p.Value) {
			pm.ProcedurePack.AssignedParameters = append(pm.ProcedurePack.AssignedParameters, p.Value)
			fillReadMap(&pm.InitReadMap, p.Value, pm.FieldPack)
			pm.InitWriteMap.ParameterMap[pointer(p.Name)] = p.Name
		} else {
			pm.ProcedurePack.ConstantParameters = append(pm.ProcedurePack.ConstantParameters, p.Value)
		}
	}
	for _, in := range m.Initials {
		pm.ProcedurePack.Initializations = append(pm.ProcedurePack.Initializations, in.Value)
		fillReadMap(&pm.InitReadMap, in.Value, pm.FieldPack)
		pm.InitWriteMap.StateMap[pointer(in.Target)] = in.Target
	}
	for _, ef := range m.Effects {
		pm.ProcedurePack.Effects = append(pm.ProcedurePack.Effects, ef.Value)
		fillReadMap(&pm.EffectReadMap, ef.Value, pm.FieldPack)
		name := effectPointerName(ef.Kind, ef.Ion)
		pm.EffectWriteMap.EffectMap[pointer(name)] = name
	}
	for _, ev := range m.Evolves {
		pm.ProcedurePack.Evolutions = append(pm.ProcedurePack.Evolutions, ev.Value)
		fillReadMap(&pm.EvolveReadMap, ev.Value, pm.FieldPack)
		pm.EvolveWriteMap.StateMap[pointer(ev.TargetPrime)] = ev.TargetPrime
	}

	return pm
}

func buildFieldPack(m *resolved.Mechanism) FieldPack {
	fp := FieldPack{
		ParamSources:  map[string]bool{},
		StateSources:  map[string]bool{},
		BindSources:   map[string]BindSource{},
		EffectSources: map[string]EffectSource{},
	}
	for _, p := range m.Parameters {
		fp.ParamSources[p.Name] = true
	}
	for _, s := range m.States {
		fp.StateSources[s.Name] = true
	}
	for _, b := range m.Bindings {
		fp.BindSources[b.Name] = BindSource{Kind: b.Kind, Ion: b.Ion}
	}
	for _, ef := range m.Effects {
		name := effectPointerName(ef.Kind, ef.Ion)
		fp.EffectSources[name] = EffectSource{Kind: ef.Kind, Ion: ef.Ion}
	}
	return fp
}

// effectPointerName synthesizes a stable name for an effect contribution
// that, unlike a state or parameter, has no declared identifier of its
// own — only an affectable kind and an optional ion name.
func effectPointerName(kind ast.AffectableKind, ion *string) string {
	name := string(kind)
	if ion != nil {
		name += "_" + *ion
	}
	return name
}

// containsArgument reports whether e reads any external storage —
// used to split parameters into constant_parameters (computed once) and
// assigned_parameters (recomputed whenever the bindables they read
// change).
func containsArgument(e resolved.Expr) bool {
	switch v := e.(type) {
	case resolved.Argument:
		return true
	case resolved.Identifier, resolved.Float, resolved.Int, resolved.Bool:
		return false
	case resolved.Unary:
		return containsArgument(v.Arg)
	case resolved.Binary:
		return containsArgument(v.Lhs) || containsArgument(v.Rhs)
	case resolved.Call:
		for _, a := range v.Args {
			if containsArgument(a) {
				return true
			}
		}
		return false
	case resolved.Conditional:
		return containsArgument(v.Cond) || containsArgument(v.Then) || containsArgument(v.Else)
	case resolved.Let:
		return containsArgument(v.Value) || containsArgument(v.Body)
	case resolved.FieldAccess:
		return containsArgument(v.Record)
	case resolved.Object:
		for _, f := range v.Fields {
			if containsArgument(f.Value) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// fillReadMap records every resolved.Argument e reads into the
// appropriate read_map bucket, keyed by its "_pp_"-prefixed pointer
// name, mirroring get_read_arguments.hpp's read_arguments.
func fillReadMap(rm *ReadMap, e resolved.Expr, fp FieldPack) {
	for _, name := range readArguments(e) {
		p := pointer(name)
		switch {
		case fp.StateSources[name]:
			rm.StateMap[p] = name
		case fp.ParamSources[name]:
			rm.ParameterMap[p] = name
		default:
			// Not a state or parameter: must be a binding (the only other
			// source an Argument after simplification can denote).
			rm.BindingMap[p] = name
		}
	}
}

func readArguments(e resolved.Expr) []string {
	var out []string
	var walk func(resolved.Expr)
	walk = func(e resolved.Expr) {
		switch v := e.(type) {
		case resolved.Argument:
			out = append(out, v.Name)
		case resolved.Identifier, resolved.Float, resolved.Int, resolved.Bool:
		case resolved.Unary:
			walk(v.Arg)
		case resolved.Binary:
			walk(v.Lhs)
			walk(v.Rhs)
		case resolved.Call:
			for _, a := range v.Args {
				walk(a)
			}
		case resolved.Conditional:
			walk(v.Cond)
			walk(v.Then)
			walk(v.Else)
		case resolved.Let:
			walk(v.Value)
			walk(v.Body)
		case resolved.FieldAccess:
			walk(v.Record)
		case resolved.Object:
			for _, f := range v.Fields {
				walk(f.Value)
			}
		}
	}
	walk(e)
	return out
}
