package parser

import (
	"strconv"

	"arblangc/internal/ast"
	cerrors "arblangc/internal/errors"
	"arblangc/internal/token"
	"arblangc/internal/types"
	"arblangc/internal/units"
)

// quantityNames is the reverse lookup from a parsed-type identifier
// spelling to its quantity, used to disambiguate `quantity_name` from a
// record-alias reference in parseType.
var quantityNames = map[string]types.Quantity{
	"real": types.QReal, "length": types.QLength, "mass": types.QMass,
	"time": types.QTime, "current": types.QCurrent, "amount": types.QAmount,
	"temperature": types.QTemperature, "charge": types.QCharge,
	"frequency": types.QFrequency, "voltage": types.QVoltage,
	"resistance": types.QResistance, "conductance": types.QConductance,
	"capacitance": types.QCapacitance, "inductance": types.QInductance,
	"force": types.QForce, "pressure": types.QPressure, "energy": types.QEnergy,
	"power": types.QPower, "area": types.QArea, "volume": types.QVolume,
	"concentration": types.QConcentration,
}

// parseType parses a parsed-type expression: integer(n), bool, an inline
// record literal, a named quantity, a record alias reference, or a binary
// quantity composition built with '*' '/' '^' (spec.md §3).
func (p *Parser) parseType() (ast.Type, error) {
	return p.parseTypeBin(0)
}

var typePrecedence = map[token.Type]int{
	token.STAR:  1,
	token.SLASH: 1,
	token.CARET: 2,
}

func (p *Parser) parseTypeBin(minPrec int) (ast.Type, error) {
	lhs, err := p.parseTypePrimary()
	if err != nil {
		return nil, err
	}
	for {
		opTok := p.cur()
		prec, ok := typePrecedence[opTok.Type]
		if !ok || prec < minPrec {
			break
		}
		p.advance()
		rhs, err := p.parseTypeBin(prec + 1)
		if err != nil {
			return nil, err
		}
		var op ast.TypeBinaryOp
		switch opTok.Type {
		case token.STAR:
			op = ast.TypeMul
		case token.SLASH:
			op = ast.TypeDiv
		case token.CARET:
			op = ast.TypePow
		}
		lhs = ast.BinaryQuantityType{Op: op, Lhs: lhs, Rhs: rhs, Loc: opTok.Location}
	}
	return lhs, nil
}

func (p *Parser) parseTypePrimary() (ast.Type, error) {
	tok := p.cur()
	switch {
	case tok.Type == token.LPAREN:
		p.advance()
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return t, nil

	case tok.Type == token.TYPE_BOOL:
		p.advance()
		return ast.BoolType{Loc: tok.Location}, nil

	case tok.Type == token.INTEGER:
		p.advance()
		n, err := strconv.Atoi(tok.Lexeme)
		if err != nil {
			return nil, cerrors.New(cerrors.ParseError, tok.Location, "invalid integer type literal %q", tok.Lexeme)
		}
		return ast.IntegerType{N: n, Loc: tok.Location}, nil

	case tok.Type == token.LBRACE:
		return p.parseRecordType()

	case tok.Type == token.IDENT || tok.Type == token.TYPE_REAL:
		p.advance()
		name := tok.Lexeme
		if q, ok := quantityNames[name]; ok {
			return ast.QuantityType{Quantity: q, Loc: tok.Location}, nil
		}
		return ast.RecordAliasType{Name: name, Loc: tok.Location}, nil

	default:
		return nil, cerrors.New(cerrors.ParseError, tok.Location, "expected type, got %q", tok.Lexeme)
	}
}

func (p *Parser) parseRecordType() (ast.Type, error) {
	lbrace, err := p.expect(token.LBRACE)
	if err != nil {
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
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.RecordType{Fields: fields, Loc: lbrace.Location}, nil
}

// parseUnit parses a bracketed unit annotation: '[' unit_expr ']'.
func (p *Parser) parseUnit() (units.Expr, error) {
	if _, err := p.expect(token.LBRACKET); err != nil {
		return nil, err
	}
	u, err := p.parseUnitBin(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return u, nil
}

var unitPrecedence = map[token.Type]int{
	token.STAR:  1,
	token.SLASH: 1,
	token.CARET: 2,
}

func (p *Parser) parseUnitBin(minPrec int) (units.Expr, error) {
	lhs, err := p.parseUnitPrimary()
	if err != nil {
		return nil, err
	}
	for {
		opTok := p.cur()
		prec, ok := unitPrecedence[opTok.Type]
		if !ok || prec < minPrec {
			break
		}
		p.advance()
		rhs, err := p.parseUnitBin(prec + 1)
		if err != nil {
			return nil, err
		}
		var op units.BinaryOp
		switch opTok.Type {
		case token.STAR:
			op = units.Mul
		case token.SLASH:
			op = units.Div
		case token.CARET:
			op = units.Pow
		}
		lhs, err = units.NewBinary(op, lhs, rhs, opTok.Location)
		if err != nil {
			return nil, cerrors.New(cerrors.ParseError, opTok.Location, "%s", err.Error())
		}
	}
	return lhs, nil
}

func (p *Parser) parseUnitPrimary() (units.Expr, error) {
	tok := p.cur()
	switch {
	case tok.Type == token.LPAREN:
		p.advance()
		u, err := p.parseUnitBin(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return u, nil

	case tok.Type == token.INTEGER:
		p.advance()
		n, err := strconv.Atoi(tok.Lexeme)
		if err != nil {
			return nil, cerrors.New(cerrors.ParseError, tok.Location, "invalid unit integer literal %q", tok.Lexeme)
		}
		return units.Integer{Val: n, Loc: tok.Location}, nil

	case tok.Type == token.IDENT:
		p.advance()
		prefix, symbol, ok := units.ParseSymbol(tok.Lexeme)
		if !ok {
			return nil, cerrors.New(cerrors.ParseError, tok.Location, "unknown unit symbol %q", tok.Lexeme)
		}
		return units.Simple{Prefix: prefix, Symbol: symbol, Spelling: tok.Lexeme, Loc: tok.Location}, nil

	default:
		return nil, cerrors.New(cerrors.ParseError, tok.Location, "expected unit, got %q", tok.Lexeme)
	}
}
