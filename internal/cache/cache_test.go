package cache

import (
	"path/filepath"
	"testing"

	"arblangc/internal/ast"
	"arblangc/internal/resolved"
	"arblangc/internal/simplifier"
	"arblangc/internal/types"
)

func samplePrintableMechanism() *simplifier.PrintableMechanism {
	m := &resolved.Mechanism{
		Name: "hh",
		Kind: ast.Density,
		Parameters: []resolved.Parameter{
			{Name: "gbar", Typ: types.Quant{}, Value: resolved.Float{Value: 0.12, Typ: types.Quant{}}},
		},
		States: []resolved.State{
			{Name: "n", Typ: types.Quant{}},
		},
		Initials: []resolved.Initial{
			{Target: "n", Value: resolved.Float{Value: 0.3, Typ: types.Quant{}}},
		},
		Evolves: []resolved.Evolve{
			{TargetPrime: "n", Value: resolved.Argument{Name: "n", Typ: types.Quant{}}},
		},
	}
	return simplifier.BuildPrintableMechanism(m)
}

func TestPutThenGetRoundTripsPrintableMechanism(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache.sqlite"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer c.Close()

	want := samplePrintableMechanism()
	hash := Hash("density hh { ... }")

	if err := c.Put(hash, want); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok, err := c.Get(hash)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() = miss, want hit")
	}
	if got.Name != want.Name || got.Kind != want.Kind {
		t.Fatalf("Get() = %s %s, want %s %s", got.Kind, got.Name, want.Kind, want.Name)
	}
	if len(got.ProcedurePack.Evolutions) != 1 {
		t.Fatalf("Get() evolutions = %d, want 1", len(got.ProcedurePack.Evolutions))
	}
	arg, ok := got.ProcedurePack.Evolutions[0].(resolved.Argument)
	if !ok {
		t.Fatalf("Get() evolution value = %T, want resolved.Argument", got.ProcedurePack.Evolutions[0])
	}
	if arg.Name != "n" {
		t.Fatalf("Get() evolution argument name = %q, want %q", arg.Name, "n")
	}
	if pointerName, ok := got.InitWriteMap.StateMap["_pp_n"]; !ok || pointerName != "n" {
		t.Fatalf("Get() InitWriteMap.StateMap[_pp_n] = %q, %v, want %q, true", pointerName, ok, "n")
	}
}

func TestGetMissReturnsFalseWithNoError(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache.sqlite"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer c.Close()

	got, ok, err := c.Get(Hash("no such mechanism"))
	if err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	if ok || got != nil {
		t.Fatalf("Get() = %v, %v, want nil, false", got, ok)
	}
}

func TestPutOverwritesExistingEntry(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache.sqlite"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer c.Close()

	hash := Hash("density hh { ... }")
	first := samplePrintableMechanism()
	if err := c.Put(hash, first); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	second := samplePrintableMechanism()
	second.Name = "hh2"
	if err := c.Put(hash, second); err != nil {
		t.Fatalf("Put() overwrite error = %v", err)
	}

	got, ok, err := c.Get(hash)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v, %v", got, ok, err)
	}
	if got.Name != "hh2" {
		t.Fatalf("Get() Name = %q, want %q", got.Name, "hh2")
	}
}

func TestHashIsDeterministicAndSensitiveToContent(t *testing.T) {
	a := Hash("density hh { state n; }")
	b := Hash("density hh { state n; }")
	c := Hash("density hh { state m; }")

	if a != b {
		t.Fatal("Hash() is not deterministic for identical input")
	}
	if a == c {
		t.Fatal("Hash() collided for different input")
	}
}
