// Package printer renders the parsed AST of internal/ast back to arblang
// source text, generalized from the teacher's internal/formatter/
// formatter.go (indent-tracking strings.Builder walker over a tagged
// statement/expression interface) to this language's declaration and
// expression grammar. It exists for spec.md §8 property 1: re-parsing
// Print(Parse(s)) must reproduce a structurally equal tree.
package printer

import (
	"fmt"
	"strings"

	"github.com/kr/text"

	"arblangc/internal/ast"
	"arblangc/internal/units"
)

// Print renders a full mechanism declaration.
func Print(m *ast.Mechanism) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s {\n", m.Kind, m.Name)
	var body strings.Builder
	for _, d := range m.Decls {
		body.WriteString(printDecl(d))
	}
	b.WriteString(text.Indent(body.String(), "    "))
	b.WriteString("}\n")
	return b.String()
}

func printDecl(d ast.Expr) string {
	switch v := d.(type) {
	case ast.Import:
		return fmt.Sprintf("import %q;\n", v.Path)

	case ast.Parameter:
		return printValueDecl("parameter", v.Name, v.Type, v.Value, v.Unit)

	case ast.Constant:
		return printValueDecl("constant", v.Name, v.Type, v.Value, v.Unit)

	case ast.State:
		if v.Type != nil {
			return fmt.Sprintf("state %s: %s;\n", v.Name, printType(v.Type))
		}
		return fmt.Sprintf("state %s;\n", v.Name)

	case ast.RecordAlias:
		return fmt.Sprintf("record %s %s;\n", v.Name, printFieldList(v.Fields))

	case ast.Function:
		var sb strings.Builder
		fmt.Fprintf(&sb, "function %s(", v.Name)
		for i, a := range v.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s: %s", a.Name, printType(a.Type))
		}
		sb.WriteString(")")
		if v.ReturnType != nil {
			fmt.Fprintf(&sb, ": %s", printType(v.ReturnType))
		}
		fmt.Fprintf(&sb, " = %s;\n", printExpr(v.Body))
		return sb.String()

	case ast.Binding:
		if v.Ion != nil {
			return fmt.Sprintf("bind %s = %s(%s);\n", v.Name, v.Kind, *v.Ion)
		}
		return fmt.Sprintf("bind %s = %s;\n", v.Name, v.Kind)

	case ast.Initial:
		return fmt.Sprintf("initial %s = %s;\n", v.Target, printExpr(v.Value))

	case ast.Evolve:
		return fmt.Sprintf("evolve %s' = %s;\n", v.TargetPrime, printExpr(v.Value))

	case ast.Effect:
		if v.Ion != nil {
			return fmt.Sprintf("effect %s(%s) = %s;\n", v.Kind, *v.Ion, printExpr(v.Value))
		}
		return fmt.Sprintf("effect %s = %s;\n", v.Kind, printExpr(v.Value))

	case ast.Export:
		return fmt.Sprintf("export %s;\n", v.Identifier)

	default:
		return fmt.Sprintf("/* unprintable decl %T */\n", d)
	}
}

func printValueDecl(kw, name string, typ ast.Type, value ast.Expr, u units.Expr) string {
	var sb strings.Builder
	sb.WriteString(kw)
	sb.WriteString(" ")
	sb.WriteString(name)
	if typ != nil {
		fmt.Fprintf(&sb, ": %s", printType(typ))
	}
	fmt.Fprintf(&sb, " = %s", printExpr(value))
	if u != nil {
		fmt.Fprintf(&sb, " [%s]", printUnit(u))
	}
	sb.WriteString(";\n")
	return sb.String()
}

func printFieldList(fields []ast.RecordField) string {
	var sb strings.Builder
	sb.WriteString("{ ")
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %s", f.Name, printType(f.Type))
	}
	sb.WriteString(" }")
	return sb.String()
}

func printType(t ast.Type) string {
	switch v := t.(type) {
	case ast.IntegerType:
		return fmt.Sprintf("%d", v.N)
	case ast.QuantityType:
		return string(v.Quantity)
	case ast.BinaryQuantityType:
		var op string
		switch v.Op {
		case ast.TypeMul:
			op = "*"
		case ast.TypeDiv:
			op = "/"
		case ast.TypePow:
			op = "^"
		}
		return fmt.Sprintf("(%s %s %s)", printType(v.Lhs), op, printType(v.Rhs))
	case ast.BoolType:
		return "bool"
	case ast.RecordType:
		return printFieldList(v.Fields)
	case ast.RecordAliasType:
		return v.Name
	default:
		return fmt.Sprintf("/* unprintable type %T */", t)
	}
}

func printUnit(u units.Expr) string {
	switch v := u.(type) {
	case units.Integer:
		return fmt.Sprintf("%d", v.Val)
	case units.Simple:
		return v.Spelling
	case units.Binary:
		var op string
		switch v.Op {
		case units.Mul:
			op = "*"
		case units.Div:
			op = "/"
		case units.Pow:
			op = "^"
		}
		return fmt.Sprintf("(%s %s %s)", printUnit(v.Lhs), op, printUnit(v.Rhs))
	default:
		return fmt.Sprintf("/* unprintable unit %T */", u)
	}
}

func printExpr(e ast.Expr) string {
	switch v := e.(type) {
	case ast.Identifier:
		return v.Name

	case ast.FieldAccess:
		return fmt.Sprintf("%s.%s", printExpr(v.Record), v.Field)

	case ast.Float:
		s := fmt.Sprintf("%g", v.Value)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		if v.Unit != nil {
			return fmt.Sprintf("%s [%s]", s, printUnit(v.Unit))
		}
		return s

	case ast.Integer:
		s := fmt.Sprintf("%d", v.Value)
		if v.Unit != nil {
			return fmt.Sprintf("%s [%s]", s, printUnit(v.Unit))
		}
		return s

	case ast.Unary:
		return fmt.Sprintf("%s%s", v.Op, printExpr(v.Arg))

	case ast.Binary:
		return fmt.Sprintf("(%s %s %s)", printExpr(v.Lhs), v.Op, printExpr(v.Rhs))

	case ast.Call:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = printExpr(a)
		}
		return fmt.Sprintf("%s(%s)", v.Callee, strings.Join(args, ", "))

	case ast.Object:
		fields := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = fmt.Sprintf("%s: %s", f.Name, printExpr(f.Value))
		}
		body := "{ " + strings.Join(fields, ", ") + " }"
		if v.RecordName != nil {
			return *v.RecordName + " " + body
		}
		return body

	case ast.Let:
		return fmt.Sprintf("let %s = %s in %s", v.Name, printExpr(v.Value), printExpr(v.Body))

	case ast.With:
		return fmt.Sprintf("with %s in %s", printExpr(v.Record), printExpr(v.Body))

	case ast.Conditional:
		return fmt.Sprintf("if %s { %s } else { %s }", printExpr(v.Cond), printExpr(v.Then), printExpr(v.Else))

	default:
		return fmt.Sprintf("/* unprintable expr %T */", e)
	}
}
