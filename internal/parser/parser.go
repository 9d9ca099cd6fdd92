// Package parser is a recursive-descent parser with Pratt-style
// precedence climbing for binary operators (spec.md §4.2), generalized
// from the teacher's internal/parser/parser.go. It turns a token stream
// into the parsed AST of internal/ast, attaching physical-unit and
// quantity-type annotations as it goes. There is no error recovery: the
// first unexpected token aborts the parse (spec.md §4.2).
package parser

import (
	"strconv"

	"arblangc/internal/ast"
	cerrors "arblangc/internal/errors"
	"arblangc/internal/location"
	"arblangc/internal/token"
	"arblangc/internal/units"
)

// binaryPrecedence is the operator table of spec.md §4.1.
var binaryPrecedence = map[token.Type]int{
	token.OROR:   2,
	token.ANDAND: 3,
	token.EQEQ:   4,
	token.NEQ:    4,
	token.LT:     5,
	token.LE:     5,
	token.GT:     5,
	token.GE:     5,
	token.PLUS:   6,
	token.MINUS:  6,
	token.STAR:   7,
	token.SLASH:  7,
	token.CARET:  8,
}

var caretIsRightAssoc = true

// builtinCallees is the set of standard-library functions (the binary
// min/max and the unary rest) that parse as ordinary calls (spec.md §4.1).
var builtinCallees = map[token.Type]bool{
	token.MIN: true, token.MAX: true, token.EXP: true, token.SIN: true,
	token.COS: true, token.LOG: true, token.ABS: true, token.EXPRELR: true,
}

var mechKinds = map[token.Type]ast.MechKind{
	token.POINT:              ast.Point,
	token.DENSITY:            ast.Density,
	token.CONCENTRATION:      ast.Concentration,
	token.REVERSAL_POTENTIAL: ast.ReversalPotential,
	token.JUNCTION:           ast.Junction,
}

var bindableKinds = map[string]ast.BindableKind{
	"membrane_potential":     ast.MembranePotential,
	"temperature":            ast.Temperature,
	"current_density":        ast.CurrentDensity,
	"molar_flux":             ast.MolarFlux,
	"charge":                 ast.Charge,
	"internal_concentration": ast.InternalConcentration,
	"external_concentration": ast.ExternalConcentration,
	"nernst_potential":       ast.NernstPotential,
	"dt":                     ast.Dt,
}

var affectableKinds = map[string]ast.AffectableKind{
	"current_density_contribution": ast.CurrentDensityContribution,
	"current_contribution":         ast.CurrentContribution,
	"molar_flux_contribution":      ast.MolarFluxContribution,
	"internal_concentration_rate":  ast.InternalConcentrationRate,
	"external_concentration_rate":  ast.ExternalConcentrationRate,
}

type Parser struct {
	toks []token.Token
	pos  int
}

func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

// ParseMechanisms parses every top-level mechanism declaration in the
// token stream (spec.md §6's grammar alternates mechanism declarations at
// the top level).
func ParseMechanisms(toks []token.Token) ([]*ast.Mechanism, error) {
	p := New(toks)
	var mechs []*ast.Mechanism
	for !p.check(token.EOF) {
		m, err := p.parseMechanism()
		if err != nil {
			return nil, err
		}
		mechs = append(mechs, m)
	}
	return mechs, nil
}

func (p *Parser) cur() token.Token { return p.toks[p.pos] }

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(t token.Type) bool {
	return p.cur().Type == t
}

func (p *Parser) match(t token.Type) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(t token.Type) (token.Token, error) {
	if p.cur().Type == token.ERROR {
		return token.Token{}, cerrors.New(cerrors.LexError, p.cur().Location, "%s", p.cur().Lexeme)
	}
	if !p.check(t) {
		return token.Token{}, cerrors.New(cerrors.ParseError, p.cur().Location,
			"expected %s, got %s %q", t, p.cur().Type, p.cur().Lexeme)
	}
	return p.advance(), nil
}

func (p *Parser) parseMechanism() (*ast.Mechanism, error) {
	kindTok := p.cur()
	kind, ok := mechKinds[kindTok.Type]
	if !ok {
		return nil, cerrors.New(cerrors.ParseError, kindTok.Location,
			"expected mechanism kind (point|density|concentration|reversal_potential|junction), got %q", kindTok.Lexeme)
	}
	p.advance()
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var decls []ast.Expr
	for !p.check(token.RBRACE) {
		d, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.Mechanism{Name: nameTok.Lexeme, Kind: kind, Decls: decls, Loc: kindTok.Location}, nil
}

func (p *Parser) parseDecl() (ast.Expr, error) {
	switch p.cur().Type {
	case token.PARAMETER:
		return p.parseParamOrConst(true)
	case token.CONSTANT:
		return p.parseParamOrConst(false)
	case token.STATE:
		return p.parseState()
	case token.RECORD:
		return p.parseRecordAlias()
	case token.FUNCTION:
		return p.parseFunction()
	case token.IMPORT:
		return p.parseImport()
	case token.BIND:
		return p.parseBinding()
	case token.INITIAL:
		return p.parseInitial()
	case token.EVOLVE:
		return p.parseEvolve()
	case token.EFFECT:
		return p.parseEffect()
	case token.EXPORT:
		return p.parseExport()
	default:
		return nil, cerrors.New(cerrors.ParseError, p.cur().Location, "unexpected token %q at declaration position", p.cur().Lexeme)
	}
}

func (p *Parser) parseParamOrConst(isParam bool) (ast.Expr, error) {
	kw := p.advance()
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	var typ ast.Type
	if p.match(token.COLON) {
		typ, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	var u units.Expr
	if p.check(token.LBRACKET) {
		u, err = p.parseUnit()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	if isParam {
		return ast.Parameter{Name: name.Lexeme, Type: typ, Value: value, Unit: u, Loc: kw.Location}, nil
	}
	return ast.Constant{Name: name.Lexeme, Type: typ, Value: value, Unit: u, Loc: kw.Location}, nil
}

func (p *Parser) parseState() (ast.Expr, error) {
	kw := p.advance()
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	var typ ast.Type
	if p.match(token.COLON) {
		typ, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return ast.State{Name: name.Lexeme, Type: typ, Loc: kw.Location}, nil
}

func (p *Parser) parseFieldList() ([]ast.RecordField, error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var fields []ast.RecordField
	for !p.check(token.RBRACE) {
		fname, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		ftype, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.RecordField{Name: fname.Lexeme, Type: ftype})
		p.match(token.COMMA)
		p.match(token.SEMI)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return fields, nil
}

func (p *Parser) parseRecordAlias() (ast.Expr, error) {
	kw := p.advance()
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	fields, err := p.parseFieldList()
	if err != nil {
		return nil, err
	}
	p.match(token.SEMI)
	return ast.RecordAlias{Name: name.Lexeme, Fields: fields, Loc: kw.Location}, nil
}

func (p *Parser) parseFunction() (ast.Expr, error) {
	kw := p.advance()
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Param
	for !p.check(token.RPAREN) {
		pname, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		ptype, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, ast.Param{Name: pname.Lexeme, Type: ptype})
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	var ret ast.Type
	if p.match(token.COLON) {
		ret, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	body, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return ast.Function{Name: name.Lexeme, Args: args, ReturnType: ret, Body: body, Loc: kw.Location}, nil
}

func (p *Parser) parseImport() (ast.Expr, error) {
	kw := p.advance()
	path, err := p.expect(token.STRING)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return ast.Import{Path: path.Lexeme, Loc: kw.Location}, nil
}

func (p *Parser) parseIonSuffix() (*string, error) {
	if !p.match(token.LPAREN) {
		return nil, nil
	}
	ion, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ion.Lexeme, nil
}

func (p *Parser) parseBinding() (ast.Expr, error) {
	kw := p.advance()
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	kindTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	kind, ok := bindableKinds[kindTok.Lexeme]
	if !ok {
		return nil, cerrors.New(cerrors.ParseError, kindTok.Location, "unknown bindable kind %q", kindTok.Lexeme)
	}
	ion, err := p.parseIonSuffix()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return ast.Binding{Name: name.Lexeme, Kind: kind, Ion: ion, Loc: kw.Location}, nil
}

func (p *Parser) parseInitial() (ast.Expr, error) {
	kw := p.advance()
	target, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return ast.Initial{Target: target.Lexeme, Value: value, Loc: kw.Location}, nil
}

func (p *Parser) parseEvolve() (ast.Expr, error) {
	kw := p.advance()
	target, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.PRIME); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return ast.Evolve{TargetPrime: target.Lexeme, Value: value, Loc: kw.Location}, nil
}

func (p *Parser) parseEffect() (ast.Expr, error) {
	kw := p.advance()
	kindTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	kind, ok := affectableKinds[kindTok.Lexeme]
	if !ok {
		return nil, cerrors.New(cerrors.ParseError, kindTok.Location, "unknown affectable kind %q", kindTok.Lexeme)
	}
	ion, err := p.parseIonSuffix()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return ast.Effect{Kind: kind, Ion: ion, Value: value, Loc: kw.Location}, nil
}

func (p *Parser) parseExport() (ast.Expr, error) {
	kw := p.advance()
	ident, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return ast.Export{Identifier: ident.Lexeme, Loc: kw.Location}, nil
}

// ---- expressions ----

func (p *Parser) parseExpr(minPrec int) (ast.Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		opTok := p.cur()
		prec, ok := binaryPrecedence[opTok.Type]
		if !ok || prec < minPrec {
			break
		}
		p.advance()
		nextMin := prec + 1
		if opTok.Type == token.CARET && caretIsRightAssoc {
			nextMin = prec
		}
		rhs, err := p.parseExpr(nextMin)
		if err != nil {
			return nil, err
		}
		lhs = ast.Binary{Op: string(opTok.Type), Lhs: lhs, Rhs: rhs, Loc: opTok.Location}
	}
	return lhs, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.check(token.MINUS) || p.check(token.BANG) {
		opTok := p.advance()
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Op: string(opTok.Type), Arg: arg, Loc: opTok.Location}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.check(token.DOT) {
		dotTok := p.advance()
		field, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		e = ast.FieldAccess{Record: e, Field: field.Lexeme, Loc: dotTok.Location}
	}
	return e, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch {
	case tok.Type == token.LPAREN:
		p.advance()
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return e, nil

	case tok.Type == token.INTEGER:
		p.advance()
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, cerrors.New(cerrors.ParseError, tok.Location, "invalid integer literal %q", tok.Lexeme)
		}
		var u units.Expr
		if p.check(token.LBRACKET) {
			u, err = p.parseUnit()
			if err != nil {
				return nil, err
			}
		}
		return ast.Integer{Value: v, Unit: u, Loc: tok.Location}, nil

	case tok.Type == token.FLOAT:
		p.advance()
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, cerrors.New(cerrors.ParseError, tok.Location, "invalid real literal %q", tok.Lexeme)
		}
		var u units.Expr
		if p.check(token.LBRACKET) {
			u, err = p.parseUnit()
			if err != nil {
				return nil, err
			}
		}
		return ast.Float{Value: v, Unit: u, Loc: tok.Location}, nil

	case tok.Type == token.LET:
		return p.parseLet()

	case tok.Type == token.WITH:
		return p.parseWith()

	case tok.Type == token.IF:
		return p.parseConditional()

	case tok.Type == token.LBRACE:
		return p.parseObject(nil)

	case tok.Type == token.IDENT, builtinCallees[tok.Type]:
		name := tok.Lexeme
		p.advance()
		if p.check(token.LPAREN) {
			return p.parseCall(name, tok.Location)
		}
		if p.check(token.LBRACE) {
			return p.parseObject(&name)
		}
		return ast.Identifier{Name: name, Loc: tok.Location}, nil

	default:
		return nil, cerrors.New(cerrors.ParseError, tok.Location, "unexpected token %q", tok.Lexeme)
	}
}

func (p *Parser) parseLet() (ast.Expr, error) {
	kw := p.advance()
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IN); err != nil {
		return nil, err
	}
	body, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	return ast.Let{Name: name.Lexeme, Value: value, Body: body, Loc: kw.Location}, nil
}

func (p *Parser) parseWith() (ast.Expr, error) {
	kw := p.advance()
	rec, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IN); err != nil {
		return nil, err
	}
	body, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	return ast.With{Record: rec, Body: body, Loc: kw.Location}, nil
}

func (p *Parser) parseConditional() (ast.Expr, error) {
	kw := p.advance()
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	then, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ELSE); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	elseE, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.Conditional{Cond: cond, Then: then, Else: elseE, Loc: kw.Location}, nil
}

func (p *Parser) parseObject(name *string) (ast.Expr, error) {
	lbrace, err := p.expect(token.LBRACE)
	if err != nil {
		return nil, err
	}
	var fields []ast.ObjectField
	for !p.check(token.RBRACE) {
		fname, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		fval, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.ObjectField{Name: fname.Lexeme, Value: fval})
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.Object{RecordName: name, Fields: fields, Loc: lbrace.Location}, nil
}

func (p *Parser) parseCall(callee string, loc location.Location) (ast.Expr, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.check(token.RPAREN) {
		a, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return ast.Call{Callee: callee, Args: args, Loc: loc}, nil
}
