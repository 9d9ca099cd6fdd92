package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleMechanism = `density hh {
    parameter gbar = 0.12 [S];
    state n;
    initial n = 0.3;
}
`

const badMechanism = `density hh {
    parameter gbar = 0.12 [S];
    initial n = 0.3;
}
`

func writeInput(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		args       func(input, prefix string) []string
		wantStatus int
		wantFile   bool
	}{
		{
			name: "compiles a well-formed mechanism",
			src:  sampleMechanism,
			args: func(input, prefix string) []string {
				return []string{"-o", prefix, "-N", "arb_demo", input}
			},
			wantStatus: 0,
			wantFile:   true,
		},
		{
			name: "reports an unbound identifier as non-zero",
			src:  badMechanism,
			args: func(input, prefix string) []string {
				return []string{"-o", prefix, input}
			},
			wantStatus: 1,
			wantFile:   false,
		},
		{
			name: "no input files is a usage error",
			src:  "",
			args: func(input, prefix string) []string {
				return []string{"-o", prefix}
			},
			wantStatus: 2,
			wantFile:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			input := writeInput(t, dir, "mech.arb", tt.src)
			prefix := filepath.Join(dir, "out")

			status := run(tt.args(input, prefix))
			if status != tt.wantStatus {
				t.Fatalf("run() = %d, want %d", status, tt.wantStatus)
			}

			matches, _ := filepath.Glob(prefix + ".*.pm")
			if tt.wantFile && len(matches) == 0 {
				t.Fatalf("run() produced no .pm artifact, want at least one matching %s.*.pm", prefix)
			}
			if !tt.wantFile && len(matches) != 0 {
				t.Fatalf("run() produced %v, want no .pm artifacts", matches)
			}
		})
	}
}

func TestRunUsesCacheAcrossInvocations(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "mech.arb", sampleMechanism)
	prefix := filepath.Join(dir, "out")
	cachePath := filepath.Join(dir, "cache.sqlite")

	if status := run([]string{"-o", prefix, "-cache", cachePath, input}); status != 0 {
		t.Fatalf("first run() = %d, want 0", status)
	}
	if status := run([]string{"-o", prefix, "-cache", cachePath, input}); status != 0 {
		t.Fatalf("second run() = %d, want 0", status)
	}

	matches, err := filepath.Glob(prefix + ".*.pm")
	if err != nil || len(matches) != 1 {
		t.Fatalf("Glob() = %v, %v, want exactly one artifact", matches, err)
	}
}

func TestRunCompilesMultipleFilesConcurrently(t *testing.T) {
	dir := t.TempDir()
	var inputs []string
	for i := 0; i < 4; i++ {
		inputs = append(inputs, writeInput(t, dir, strings.Repeat("a", i+1)+".arb", sampleMechanism))
	}
	prefix := filepath.Join(dir, "out")

	args := append([]string{"-o", prefix}, inputs...)
	if status := run(args); status != 0 {
		t.Fatalf("run() = %d, want 0", status)
	}

	matches, err := filepath.Glob(prefix + ".*.pm")
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Glob() = %v, want exactly one artifact (all inputs share a mechanism name and output prefix)", matches)
	}
}
