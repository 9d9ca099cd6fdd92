// Package token defines the lexical atoms produced by internal/lexer and
// consumed by internal/parser. The tag set is the closed enumeration from
// spec.md §4.1/§6.
package token

import (
	"fmt"

	"arblangc/internal/location"
)

type Type string

const (
	// Structural
	EOF   Type = "EOF"
	ERROR Type = "ERROR" // unrecognized character; spelling carries the message

	// Literals
	IDENT   Type = "IDENT"
	INTEGER Type = "INTEGER"
	FLOAT   Type = "FLOAT"

	// Mechanism-kind keywords
	POINT              Type = "point"
	DENSITY            Type = "density"
	CONCENTRATION      Type = "concentration"
	REVERSAL_POTENTIAL Type = "reversal_potential"
	JUNCTION           Type = "junction"

	// Declaration keywords
	PARAMETER Type = "parameter"
	CONSTANT  Type = "constant"
	STATE     Type = "state"
	RECORD    Type = "record"
	FUNCTION  Type = "function"
	IMPORT    Type = "import"
	BIND      Type = "bind"
	EFFECT    Type = "effect"
	EVOLVE    Type = "evolve"
	INITIAL   Type = "initial"
	EXPORT    Type = "export"

	// Expression keywords
	LET  Type = "let"
	WITH Type = "with"
	IN   Type = "in"
	IF   Type = "if"
	ELSE Type = "else"

	STRING Type = "STRING" // quoted import path only

	// Standard-library functions (min/max binary, the rest unary)
	MIN      Type = "min"
	MAX      Type = "max"
	EXP      Type = "exp"
	SIN      Type = "sin"
	COS      Type = "cos"
	LOG      Type = "log"
	ABS      Type = "abs"
	EXPRELR  Type = "exprelr"

	// Type keywords
	TYPE_REAL Type = "real"
	TYPE_BOOL Type = "bool"

	// Punctuation
	LPAREN    Type = "("
	RPAREN    Type = ")"
	LBRACE    Type = "{"
	RBRACE    Type = "}"
	LBRACKET  Type = "["
	RBRACKET  Type = "]"
	COMMA     Type = ","
	SEMI      Type = ";"
	COLON     Type = ":"
	DOT       Type = "."
	PRIME     Type = "'"
	ARROW     Type = "<->"

	// Operators
	PLUS   Type = "+"
	MINUS  Type = "-"
	STAR   Type = "*"
	SLASH  Type = "/"
	CARET  Type = "^"
	ASSIGN Type = "="
	BANG   Type = "!"

	EQEQ Type = "=="
	NEQ  Type = "!="
	LT   Type = "<"
	LE   Type = "<="
	GT   Type = ">"
	GE   Type = ">="

	ANDAND Type = "&&"
	OROR   Type = "||"
)

// Keywords maps every reserved spelling to its token type. Identifiers that
// don't match fall through as IDENT.
var Keywords = map[string]Type{
	"point":              POINT,
	"density":            DENSITY,
	"concentration":      CONCENTRATION,
	"reversal_potential": REVERSAL_POTENTIAL,
	"junction":           JUNCTION,
	"parameter":          PARAMETER,
	"constant":           CONSTANT,
	"state":              STATE,
	"record":             RECORD,
	"function":           FUNCTION,
	"import":             IMPORT,
	"bind":               BIND,
	"effect":             EFFECT,
	"evolve":             EVOLVE,
	"initial":            INITIAL,
	"export":             EXPORT,
	"let":                LET,
	"with":               WITH,
	"in":                 IN,
	"if":                 IF,
	"else":               ELSE,
	"min":                MIN,
	"max":                MAX,
	"exp":                EXP,
	"sin":                SIN,
	"cos":                COS,
	"log":                LOG,
	"abs":                ABS,
	"exprelr":            EXPRELR,
	"real":                TYPE_REAL,
	"bool":                TYPE_BOOL,
}

// Token is a single lexical atom: its tag, its original spelling, and the
// location it was scanned from.
type Token struct {
	Type     Type
	Lexeme   string
	Location location.Location
}

func (t Token) String() string {
	return fmt.Sprintf("[%s %q @ %s]", t.Type, t.Lexeme, t.Location)
}
