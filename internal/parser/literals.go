package parser

import (
	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/config"
	"github.com/funvibe/colexpr/internal/numeric"
	"github.com/funvibe/colexpr/internal/temporal"
	"github.com/funvibe/colexpr/internal/token"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/units"
)

var temporalKeywords = map[token.TokenType]typesystem.TemporalKind{
	token.DATE:          typesystem.KindDate,
	token.TIME:          typesystem.KindTime,
	token.DATEYM:        typesystem.KindDateYM,
	token.DATETIME:      typesystem.KindDateTime,
	token.DATETIMEZONED: typesystem.KindDateTimeZoned,
	token.TIMEZONED:     typesystem.KindTimeZoned,
}

func (p *Parser) parsePrimary() ast.Expression {
	switch p.curToken.Type {
	case token.NUMBER:
		return p.parseNumberLiteral()
	case token.STRING:
		s, _ := p.curToken.Literal.(string)
		return &ast.StringLiteral{Token: p.curToken, Value: s}
	case token.TRUE, token.FALSE:
		return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
	case token.DATE, token.TIME, token.DATEYM, token.DATETIME, token.DATETIMEZONED, token.TIMEZONED:
		return p.parseTemporalLiteral()
	case token.TYPE:
		return p.parseTypeLiteral()
	case token.UNIT:
		return p.parseUnitLiteral()
	case token.AT:
		return p.parseColumnReference()
	case token.IDENT:
		return p.parseIdentifier()
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LPAREN:
		return p.parseGroupedOrRecord()
	case token.IF, token.MATCH, token.DEFINE, token.FN:
		return p.parseExpression()
	}
	p.errorf(p.curToken, "unexpected %s", describe(p.curToken))
	return nil
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	lit := &ast.NumberLiteral{Token: p.curToken}
	n, err := numeric.Parse(p.curToken.Lexeme)
	if err != nil {
		p.errorf(p.curToken, "invalid number %s", p.curToken.Lexeme)
		return nil
	}
	lit.Value = n
	if p.peekTokenIs(token.BRACED) {
		p.nextToken()
		u, ok := p.parseBracedUnit()
		if !ok {
			return nil
		}
		lit.Unit = u
	}
	return lit
}

func (p *Parser) parseBracedUnit() (units.Unit, bool) {
	text, _ := p.curToken.Literal.(string)
	u, err := units.Parse(text)
	if err != nil {
		p.errorf(p.curToken, "invalid unit %q: %v", text, err)
		return units.Unit{}, false
	}
	return u, true
}

func (p *Parser) parseTemporalLiteral() ast.Expression {
	lit := &ast.TemporalLiteral{Token: p.curToken}
	kind := temporalKeywords[p.curToken.Type]
	if !p.expectPeek(token.BRACED) {
		return nil
	}
	text, _ := p.curToken.Literal.(string)
	v, err := temporal.ParseLiteral(kind, text)
	if err != nil {
		p.errorf(p.curToken, "%v", err)
		return nil
	}
	lit.Value = v
	return lit
}

func (p *Parser) parseTypeLiteral() ast.Expression {
	lit := &ast.TypeLiteral{Token: p.curToken}
	if !p.expectPeek(token.BRACED) {
		return nil
	}
	text, _ := p.curToken.Literal.(string)
	spec, err := typesystem.ParseSpec(text)
	if err != nil {
		p.errorf(p.curToken, "invalid type %q: %v", text, err)
		return nil
	}
	lit.Spec = spec
	return lit
}

func (p *Parser) parseUnitLiteral() ast.Expression {
	lit := &ast.UnitLiteral{Token: p.curToken}
	if !p.expectPeek(token.BRACED) {
		return nil
	}
	u, ok := p.parseBracedUnit()
	if !ok {
		return nil
	}
	lit.Unit = u
	return lit
}

// parseColumnReference parses @name, @"any name" and @entire name.
func (p *Parser) parseColumnReference() ast.Expression {
	ref := &ast.ColumnReference{Token: p.curToken}
	p.nextToken()

	if p.curToken.Type == token.IDENT && p.curToken.Lexeme == config.KeywordEntire &&
		(isNameToken(p.peekToken) || p.peekTokenIs(token.STRING)) {
		ref.Entire = true
		p.nextToken()
	}

	switch {
	case p.curTokenIs(token.STRING):
		ref.Name, _ = p.curToken.Literal.(string)
	case isNameToken(p.curToken):
		ref.Name = p.curToken.Lexeme
	default:
		p.errorf(p.curToken, "expected a column name after '@' but found %s", describe(p.curToken))
		return nil
	}
	return ref
}
