// Package location carries source positions through every stage of the
// compiler, from the lexer's tokens all the way to the printable IR.
package location

import "fmt"

// Location pinpoints a single point in a source file. Every AST and IR node
// across every stage carries one, so diagnostics can always point back to
// the original text.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Internal is used for diagnostics raised by an invariant check rather than
// by a specific piece of source text.
var Internal = Location{File: "<internal>"}

func (l Location) IsInternal() bool {
	return l.File == "<internal>"
}
