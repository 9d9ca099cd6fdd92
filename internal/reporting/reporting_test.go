package reporting

import (
	"bytes"
	"strings"
	"testing"

	cerrors "arblangc/internal/errors"
	"arblangc/internal/location"
)

func TestRenderPlainWriterHasNoEscapeCodes(t *testing.T) {
	r := NewReporter(&bytes.Buffer{})
	err := cerrors.New(cerrors.TypeError, location.Location{File: "n.arb", Line: 3, Column: 5}, "bad thing").WithSource("a = b + c")

	out := r.Render(err)
	if strings.Contains(out, "\x1b[") {
		t.Errorf("Render() on a non-terminal writer contains ANSI escapes: %q", out)
	}
	if !strings.Contains(out, "type_error: bad thing") {
		t.Errorf("Render() = %q, want it to contain the kind and message", out)
	}
	if !strings.Contains(out, "a = b + c") {
		t.Errorf("Render() = %q, want the source line included", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("Render() = %q, want a caret under the column", out)
	}
}

func TestRenderInternalErrorOmitsLocation(t *testing.T) {
	r := NewReporter(&bytes.Buffer{})
	err := cerrors.Internal("invariant broke")

	out := r.Render(err)
	if strings.Contains(out, "(at ") {
		t.Errorf("Render() = %q, want no location suffix for an internal error", out)
	}
}

func TestReportWritesToUnderlyingWriter(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)
	err := cerrors.New(cerrors.LexError, location.Location{File: "n.arb", Line: 1, Column: 1}, "unexpected token")

	if rerr := r.Report(err); rerr != nil {
		t.Fatalf("Report() error = %v", rerr)
	}
	if buf.Len() == 0 {
		t.Fatal("Report() wrote nothing to the underlying writer")
	}
}
