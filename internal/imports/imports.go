// Package imports resolves `import "other.arb";` declarations before
// normalization ever runs, adapted from the teacher's internal/module
// loader (a path-searching, caching module loader) trimmed to this
// language's much narrower sharing surface: only `record` and `function`
// declarations cross a file boundary, since parameters/states/bindings are
// always per-mechanism.
package imports

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"arblangc/internal/ast"
	cerrors "arblangc/internal/errors"
	"arblangc/internal/lexer"
	"arblangc/internal/parser"
)

// Resolver loads and caches imported files relative to a base directory,
// rejecting import cycles.
type Resolver struct {
	baseDir string
	mu      sync.Mutex
	cache   map[string][]ast.Expr // path -> its record/function decls
}

// New creates a Resolver whose relative import paths are resolved against
// baseDir (the directory containing the file being compiled).
func New(baseDir string) *Resolver {
	return &Resolver{baseDir: baseDir, cache: map[string][]ast.Expr{}}
}

// Resolve walks every mechanism's declaration list, replacing each
// ast.Import with the record/function declarations of the file it names,
// spliced in at the same position. It is idempotent: a mechanism with no
// imports passes through unchanged.
func (r *Resolver) Resolve(mechs []*ast.Mechanism) ([]*ast.Mechanism, error) {
	out := make([]*ast.Mechanism, len(mechs))
	for i, m := range mechs {
		chain := map[string]bool{}
		if m.Loc.File != "" {
			chain[m.Loc.File] = true
		}
		decls, err := r.resolveDecls(m.Decls, chain)
		if err != nil {
			return nil, err
		}
		out[i] = &ast.Mechanism{Name: m.Name, Kind: m.Kind, Decls: decls, Loc: m.Loc}
	}
	return out, nil
}

func (r *Resolver) resolveDecls(decls []ast.Expr, chain map[string]bool) ([]ast.Expr, error) {
	var out []ast.Expr
	for _, d := range decls {
		imp, ok := d.(ast.Import)
		if !ok {
			out = append(out, d)
			continue
		}
		shared, err := r.load(imp, chain)
		if err != nil {
			return nil, err
		}
		out = append(out, shared...)
	}
	return out, nil
}

// load parses the file named by imp, caching the result, and returns its
// record/function declarations. chain tracks the import path currently
// being resolved along this call stack so a cycle is rejected rather than
// recursing forever.
func (r *Resolver) load(imp ast.Import, chain map[string]bool) ([]ast.Expr, error) {
	abs := filepath.Join(r.baseDir, imp.Path)

	if chain[abs] {
		return nil, cerrors.New(cerrors.ParseError, imp.Loc, "import cycle detected at %q", imp.Path)
	}

	r.mu.Lock()
	if cached, ok := r.cache[abs]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, cerrors.New(cerrors.ParseError, imp.Loc, "cannot read imported file %q: %v", imp.Path, err)
	}

	toks := lexer.New(abs, string(src)).ScanTokens()
	mechs, err := parser.ParseMechanisms(toks)
	if err != nil {
		return nil, cerrors.Wrap(err, fmt.Sprintf("importing %s", imp.Path))
	}

	nextChain := make(map[string]bool, len(chain)+1)
	for k := range chain {
		nextChain[k] = true
	}
	nextChain[abs] = true

	var shared []ast.Expr
	for _, m := range mechs {
		decls, err := r.resolveDecls(m.Decls, nextChain)
		if err != nil {
			return nil, err
		}
		for _, d := range decls {
			switch d.(type) {
			case ast.RecordAlias, ast.Function:
				shared = append(shared, d)
			}
		}
	}

	r.mu.Lock()
	r.cache[abs] = shared
	r.mu.Unlock()

	return shared, nil
}
