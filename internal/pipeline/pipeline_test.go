package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"golang.org/x/tools/txtar"

	"arblangc/internal/cache"
	"arblangc/internal/simplifier"
)

// facts is a coarse, order-independent summary of a compiled mechanism,
// deliberately shallow: the exact shape of an ANF'd, solved expression tree
// (temp names, CSE'd subexpressions) is an implementation detail of
// internal/canon/internal/optimizer/internal/solver, not something a golden
// fixture should pin down by hand.
type facts struct {
	Name           string
	Kind           string
	Params         []string
	States         []string
	Binds          []string
	EffectSources  []string
	Initializations int
	Effects         int
	Evolutions      int
}

func factsOf(pm *simplifier.PrintableMechanism) facts {
	return facts{
		Name:            pm.Name,
		Kind:            string(pm.Kind),
		Params:          sortedBoolKeys(pm.FieldPack.ParamSources),
		States:          sortedBoolKeys(pm.FieldPack.StateSources),
		Binds:           sortedBindKeys(pm.FieldPack.BindSources),
		EffectSources:   sortedEffectKeys(pm.FieldPack.EffectSources),
		Initializations: len(pm.ProcedurePack.Initializations),
		Effects:         len(pm.ProcedurePack.Effects),
		Evolutions:      len(pm.ProcedurePack.Evolutions),
	}
}

func sortedBoolKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedBindKeys(m map[string]simplifier.BindSource) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedEffectKeys(m map[string]simplifier.EffectSource) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// parseWant reads the "key: value" lines of a golden want.txt fixture into
// the same shape factsOf produces, so the two can be compared directly.
func parseWant(t *testing.T, raw []byte) facts {
	t.Helper()
	var f facts
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			t.Fatalf("malformed want.txt line %q", line)
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "name":
			f.Name = val
		case "kind":
			f.Kind = val
		case "params":
			f.Params = splitSorted(val)
		case "states":
			f.States = splitSorted(val)
		case "binds":
			f.Binds = splitSorted(val)
		case "effect_sources":
			f.EffectSources = splitSorted(val)
		case "initializations":
			f.Initializations = mustAtoi(t, val)
		case "effects":
			f.Effects = mustAtoi(t, val)
		case "evolutions":
			f.Evolutions = mustAtoi(t, val)
		default:
			t.Fatalf("unknown want.txt key %q", key)
		}
	}
	return f
}

func splitSorted(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	sort.Strings(parts)
	return parts
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	if err != nil {
		t.Fatalf("want.txt: %q is not an integer: %v", s, err)
	}
	return n
}

// TestCompileFileGoldenFixtures runs every internal/pipeline/testdata/*.txtar
// archive end to end through CompileFile and checks the resulting
// PrintableMechanism's summary facts against the archive's want.txt.
func TestCompileFileGoldenFixtures(t *testing.T) {
	archives, err := filepath.Glob("testdata/*.txtar")
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	if len(archives) == 0 {
		t.Fatal("no testdata/*.txtar fixtures found")
	}

	for _, archivePath := range archives {
		archivePath := archivePath
		t.Run(filepath.Base(archivePath), func(t *testing.T) {
			ar, err := txtar.ParseFile(archivePath)
			if err != nil {
				t.Fatalf("txtar.ParseFile(%q) error = %v", archivePath, err)
			}

			var input, want []byte
			for _, f := range ar.Files {
				switch f.Name {
				case "input.arb":
					input = f.Data
				case "want.txt":
					want = f.Data
				}
			}
			if input == nil || want == nil {
				t.Fatalf("%s: missing input.arb or want.txt", archivePath)
			}

			dir := t.TempDir()
			inputPath := filepath.Join(dir, "input.arb")
			if err := os.WriteFile(inputPath, input, 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}

			results, err := CompileFile(inputPath, Options{})
			if err != nil {
				t.Fatalf("CompileFile(%q) error = %v", archivePath, err)
			}
			if len(results) != 1 {
				t.Fatalf("CompileFile(%q) = %d mechanisms, want 1", archivePath, len(results))
			}

			got := factsOf(results[0].Mechanism)
			wantFacts := parseWant(t, want)
			if diff := pretty.Diff(wantFacts, got); len(diff) > 0 {
				t.Errorf("%s: facts mismatch:\n%s", archivePath, strings.Join(diff, "\n"))
			}
		})
	}
}

// TestCompileFileUsesCache checks that a second compile of the same input
// against the same Cache is served from the cache rather than recompiled.
func TestCompileFileUsesCache(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.arb")
	src := `density hh {
    parameter gbar = 0.12 [S];
    state n;
    initial n = 0.3;
}
`
	if err := os.WriteFile(inputPath, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	c, err := cache.Open(filepath.Join(dir, "cache.sqlite"))
	if err != nil {
		t.Fatalf("cache.Open() error = %v", err)
	}
	defer c.Close()

	first, err := CompileFile(inputPath, Options{Cache: c})
	if err != nil {
		t.Fatalf("CompileFile() first run error = %v", err)
	}
	if len(first) != 1 || first[0].Cached {
		t.Fatalf("first CompileFile() = %+v, want one uncached result", first)
	}

	second, err := CompileFile(inputPath, Options{Cache: c})
	if err != nil {
		t.Fatalf("CompileFile() second run error = %v", err)
	}
	if len(second) != 1 || !second[0].Cached {
		t.Fatalf("second CompileFile() = %+v, want one cached result", second)
	}
	if second[0].Mechanism.Name != first[0].Mechanism.Name {
		t.Fatalf("cached mechanism name = %q, want %q", second[0].Mechanism.Name, first[0].Mechanism.Name)
	}
}
