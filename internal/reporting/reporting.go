// Package reporting renders a *errors.CompileError to a human-readable
// diagnostic: source line, caret under the offending column, and an
// optional ANSI severity color when stderr is a terminal.
package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-isatty"

	cerrors "arblangc/internal/errors"
)

const (
	colorReset = "\x1b[0m"
	colorRed   = "\x1b[31;1m"
	colorDim   = "\x1b[2m"
)

// Reporter renders diagnostics to a writer, deciding once at construction
// whether that writer supports ANSI color.
type Reporter struct {
	w     io.Writer
	color bool
}

// NewReporter wraps w, detecting color support via isatty when w is an
// *os.File (stderr in the normal CLI path); any other writer (a buffer in
// tests, a log file) renders without color.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w, color: supportsColor(w)}
}

type fder interface {
	Fd() uintptr
}

func supportsColor(w io.Writer) bool {
	f, ok := w.(fder)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Report prints one diagnostic, returning any write error.
func (r *Reporter) Report(err *cerrors.CompileError) error {
	_, werr := io.WriteString(r.w, r.Render(err))
	return werr
}

// Render formats a diagnostic the way Report prints it, without writing it.
func (r *Reporter) Render(err *cerrors.CompileError) string {
	var sb strings.Builder

	kind := string(err.Kind)
	if r.color {
		sb.WriteString(colorRed)
		sb.WriteString(kind)
		sb.WriteString(colorReset)
	} else {
		sb.WriteString(kind)
	}
	sb.WriteString(": ")
	sb.WriteString(err.Message)

	if !err.Location.IsInternal() && err.Location.File != "" {
		fmt.Fprintf(&sb, " (at %s)", err.Location)
	}

	if err.Source != "" {
		gutter := fmt.Sprintf("%d | ", err.Location.Line)
		sb.WriteString("\n")
		if r.color {
			sb.WriteString(colorDim)
			sb.WriteString(gutter)
			sb.WriteString(colorReset)
		} else {
			sb.WriteString(gutter)
		}
		sb.WriteString(err.Source)
		if err.Location.Column > 0 {
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", len(gutter)+err.Location.Column-1))
			if r.color {
				sb.WriteString(colorRed)
				sb.WriteString("^")
				sb.WriteString(colorReset)
			} else {
				sb.WriteString("^")
			}
		}
	}
	sb.WriteString("\n")
	return sb.String()
}
