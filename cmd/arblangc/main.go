// cmd/arblangc is the compiler's command-line entry point: a thin driver
// over internal/pipeline, kept plain per the teacher's own os.Args-driven
// cmd/sentra/main.go rather than reaching for a flag/config framework.
// Final C++ header/source emission from a PrintableMechanism is out of
// scope; this CLI's job ends at producing and reporting that hand-off
// structure, one per mechanism, dumped to <prefix>.<name>.pm for an
// out-of-scope downstream printer to consume.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kr/pretty"
	"golang.org/x/sync/errgroup"

	"arblangc/internal/cache"
	cerrors "arblangc/internal/errors"
	"arblangc/internal/pipeline"
	"arblangc/internal/reporting"
	"arblangc/internal/simplifier"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("arblangc", flag.ContinueOnError)

	var output, namespace, cachePath string
	var verbose, trace bool
	fs.StringVar(&output, "o", "", "output filename prefix (shorthand for -output)")
	fs.StringVar(&output, "output", "", "output filename prefix; defaults to the input path with its extension stripped")
	fs.StringVar(&namespace, "N", "", "namespace wrapper for emitted code (shorthand for -namespace)")
	fs.StringVar(&namespace, "namespace", "", "namespace wrapper for emitted code")
	fs.StringVar(&cachePath, "cache", "", "path to a build cache SQLite file; caching is disabled if empty")
	fs.BoolVar(&verbose, "verbose", false, "print a per-file compile time and size summary")
	fs.BoolVar(&trace, "trace", false, "print the full stage-wrap chain alongside a compile error")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: arblangc [flags] <mechanism.arb> [more.arb ...]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	inputs := fs.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "arblangc: no input files")
		fs.Usage()
		return 2
	}

	var c *cache.Cache
	if cachePath != "" {
		var err error
		c, err = cache.Open(cachePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "arblangc: %v\n", err)
			return 1
		}
		defer c.Close()
	}

	reporter := reporting.NewReporter(os.Stderr)
	opts := pipeline.Options{Cache: c}

	var g errgroup.Group
	for _, input := range inputs {
		input := input
		g.Go(func() error {
			return compileFile(input, output, namespace, verbose, opts)
		})
	}

	if err := g.Wait(); err != nil {
		report(reporter, err, trace)
		return 1
	}
	return 0
}

// compileFile runs the full pipeline over one input file and writes one
// dump artifact per mechanism it declares.
func compileFile(inputPath, outputPrefix, namespace string, verbose bool, opts pipeline.Options) error {
	start := time.Now()
	info, statErr := os.Stat(inputPath)

	results, err := pipeline.CompileFile(inputPath, opts)
	if err != nil {
		return err
	}

	prefix := outputPrefix
	if prefix == "" {
		prefix = strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	}

	for _, r := range results {
		outPath := fmt.Sprintf("%s.%s.pm", prefix, r.Mechanism.Name)
		if err := os.WriteFile(outPath, []byte(dumpMechanism(r.Mechanism, namespace)), 0o644); err != nil {
			return fmt.Errorf("arblangc: failed to write %q: %w", outPath, err)
		}
	}

	if verbose {
		var size uint64
		if statErr == nil {
			size = uint64(info.Size())
		}
		cachedCount := 0
		for _, r := range results {
			if r.Cached {
				cachedCount++
			}
		}
		fmt.Printf("%s: %s, %d mechanism(s) (%d cached), %s\n",
			inputPath, humanize.Bytes(size), len(results), cachedCount, time.Since(start))
	}
	return nil
}

// dumpMechanism renders a PrintableMechanism as a structured text dump —
// the stand-in artifact for the out-of-scope C++ header/source emission,
// which would otherwise consume this exact hand-off structure.
func dumpMechanism(pm *simplifier.PrintableMechanism, namespace string) string {
	var sb strings.Builder
	if namespace != "" {
		fmt.Fprintf(&sb, "namespace %s\n", namespace)
	}
	fmt.Fprintf(&sb, "mechanism %s (%s)\n", pm.Name, pm.Kind)
	fmt.Fprintf(&sb, "%# v\n", pretty.Formatter(pm))
	return sb.String()
}

func report(r *reporting.Reporter, err error, trace bool) {
	var ce *cerrors.CompileError
	if errors.As(err, &ce) {
		r.Report(ce)
	} else {
		fmt.Fprintf(os.Stderr, "arblangc: %v\n", err)
	}
	if trace {
		fmt.Fprintf(os.Stderr, "trace: %+v\n", err)
	}
}
