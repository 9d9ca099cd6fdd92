// Package pipeline drives a mechanism source file through every compiler
// stage in order, adapted from the teacher's internal/build/builder.go
// (a single Build method threading one file through import resolution,
// linking, and bundling, each step wrapped in a stage-named error).
// The stage order is lexer -> parser -> imports -> normalizer -> resolver
// -> canon -> optimizer -> inliner -> optimizer (again) -> solver ->
// simplifier; internal/imports
// runs immediately after parsing so the resolver never sees an
// unresolved ast.Import (it raises an internal_invariant_violated error if
// it does).
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"arblangc/internal/ast"
	"arblangc/internal/cache"
	"arblangc/internal/canon"
	cerrors "arblangc/internal/errors"
	"arblangc/internal/imports"
	"arblangc/internal/inliner"
	"arblangc/internal/lexer"
	"arblangc/internal/normalizer"
	"arblangc/internal/optimizer"
	"arblangc/internal/parser"
	"arblangc/internal/printer"
	"arblangc/internal/resolver"
	"arblangc/internal/simplifier"
	"arblangc/internal/solver"
)

// Options configures one pipeline run. Cache may be nil, in which case
// every mechanism is recompiled from stage 5 (the resolver) onward.
type Options struct {
	Cache *cache.Cache
}

// Result is one compiled mechanism plus whether it was served from Cache
// rather than recompiled.
type Result struct {
	Mechanism *simplifier.PrintableMechanism
	Cached    bool
}

// CompileFile reads, lexes, parses, and fully compiles every mechanism
// declared in the file at path, returning one Result per mechanism in
// declaration order.
func CompileFile(path string, opts Options) ([]Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: failed to read %q: %w", path, err)
	}

	toks := lexer.New(path, string(src)).ScanTokens()

	mechs, err := parser.ParseMechanisms(toks)
	if err != nil {
		return nil, cerrors.Wrap(err, "parse")
	}

	importResolver := imports.New(filepath.Dir(path))
	mechs, err = importResolver.Resolve(mechs)
	if err != nil {
		return nil, cerrors.Wrap(err, "imports")
	}

	mechs, err = normalizer.Normalize(mechs)
	if err != nil {
		return nil, cerrors.Wrap(err, "normalizer")
	}

	results := make([]Result, len(mechs))
	for i, m := range mechs {
		r, err := compileOne(m, opts)
		if err != nil {
			return nil, cerrors.Wrap(err, fmt.Sprintf("mechanism %q", m.Name))
		}
		results[i] = r
	}
	return results, nil
}

// compileOne runs stages 5-10 (resolver through simplifier) on a single
// already-normalized mechanism, consulting and populating opts.Cache when
// present.
func compileOne(m *ast.Mechanism, opts Options) (Result, error) {
	var hash string
	if opts.Cache != nil {
		hash = cache.Hash(printer.Print(m))
		if pm, ok, err := opts.Cache.Get(hash); err != nil {
			return Result{}, fmt.Errorf("cache lookup: %w", err)
		} else if ok {
			return Result{Mechanism: pm, Cached: true}, nil
		}
	}

	mechs, err := resolver.Resolve([]*ast.Mechanism{m})
	if err != nil {
		return Result{}, cerrors.Wrap(err, "resolver")
	}

	mechs, err = canon.Canonicalize(mechs)
	if err != nil {
		return Result{}, cerrors.Wrap(err, "canon")
	}

	mechs = optimizer.Optimize(mechs)

	mechs, err = inliner.Inline(mechs)
	if err != nil {
		return Result{}, cerrors.Wrap(err, "inliner")
	}

	// Inlining exposes new constants and copies (a callee's literal
	// parameters, a body that collapses to its caller's argument) that
	// only a second optimizer pass can exploit.
	mechs = optimizer.Optimize(mechs)

	mechs, err = solver.Solve(mechs)
	if err != nil {
		return Result{}, cerrors.Wrap(err, "solver")
	}

	mechs, err = simplifier.Simplify(mechs)
	if err != nil {
		return Result{}, cerrors.Wrap(err, "simplifier")
	}

	pm := simplifier.BuildPrintableMechanism(mechs[0])

	if opts.Cache != nil {
		if err := opts.Cache.Put(hash, pm); err != nil {
			return Result{}, fmt.Errorf("cache store: %w", err)
		}
	}

	return Result{Mechanism: pm, Cached: false}, nil
}
