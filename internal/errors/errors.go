// Package errors defines the compiler's closed error-kind enumeration
// (spec.md §7) and the location-carrying error type every stage raises.
// Policy is no-recovery: the first error aborts the pipeline.
package errors

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"arblangc/internal/location"
)

// Kind is the closed set of error categories spec.md §7 enumerates.
type Kind string

const (
	LexError                  Kind = "lex_error"
	ParseError                Kind = "parse_error"
	UnboundIdentifier         Kind = "unbound_identifier"
	TypeError                 Kind = "type_error"
	ArityMismatch             Kind = "arity_mismatch"
	RecursiveFunction         Kind = "recursive_function"
	NonDifferentiable         Kind = "non_differentiable"
	InternalInvariantViolated Kind = "internal_invariant_violated"
)

// CompileError is the error type every stage returns. It always carries a
// location ("internal" for invariant violations, per spec.md §7) and a
// human-readable message; stages never attach a recovery strategy.
type CompileError struct {
	Kind     Kind
	Message  string
	Location location.Location
	Source   string // the offending source line, filled in by the caller when available
	cause    error
}

func New(kind Kind, loc location.Location, format string, args ...interface{}) *CompileError {
	return &CompileError{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	}
}

// Internal raises an internal_invariant_violated error — a post-condition
// of an earlier stage was not met by the stage that is supposed to produce
// it. This should never fire on well-formed input; when it does, it's a bug
// in the compiler itself, not in the mechanism source.
func Internal(format string, args ...interface{}) *CompileError {
	return &CompileError{
		Kind:     InternalInvariantViolated,
		Message:  fmt.Sprintf(format, args...),
		Location: location.Internal,
	}
}

func (e *CompileError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if !e.Location.IsInternal() && e.Location.File != "" {
		fmt.Fprintf(&sb, " (at %s)", e.Location)
	}
	if e.Source != "" {
		fmt.Fprintf(&sb, "\n  %d | %s", e.Location.Line, e.Source)
		if e.Location.Column > 0 {
			sb.WriteString("\n  " + strings.Repeat(" ", len(fmt.Sprintf("%d | ", e.Location.Line))+e.Location.Column-1) + "^")
		}
	}
	return sb.String()
}

func (e *CompileError) Unwrap() error {
	return e.cause
}

// WithSource attaches the offending source line for diagnostic rendering.
func (e *CompileError) WithSource(src string) *CompileError {
	e.Source = src
	return e
}

// Wrap records which stage boundary an error crossed, via pkg/errors so a
// --trace CLI flag can print the full wrap chain. This never changes
// compiler semantics — it's purely a debugging aid.
func Wrap(err error, stage string) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrap(err, stage)
}
