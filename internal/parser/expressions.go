package parser

import (
	"github.com/funvibe/colexpr/internal/config"
	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/token"
)

// parseIdentifier parses a variable, a call f(...) or a tag Type:Tag(...).
func (p *Parser) parseIdentifier() ast.Expression {
	if p.peekTokenIs(token.LPAREN) {
		call := &ast.CallExpression{Token: p.curToken, Function: p.curToken.Lexeme}
		p.nextToken()
		args, ok := p.parseExpressionList(token.RPAREN)
		if !ok {
			return nil
		}
		call.Arguments = args
		return call
	}
	if startsTag(p.curToken, p.peekToken, p.peekAt(1)) {
		return p.parseTagExpression()
	}
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
}

func (p *Parser) parseTagExpression() ast.Expression {
	expression := &ast.TagExpression{Token: p.curToken, TypeName: p.curToken.Lexeme}
	p.nextToken() // :
	p.nextToken()
	expression.Tag = p.curToken.Lexeme
	if !p.peekTokenIs(token.LPAREN) {
		return expression
	}
	p.nextToken()
	p.nextToken()
	expression.Inner = p.parseExpression()
	if expression.Inner == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expression
}

// parseExpressionList parses comma separated expressions up to end; curToken
// is the opening delimiter.
func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Expression, bool) {
	list := []ast.Expression{}
	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}
	for {
		p.nextToken()
		expr := p.parseExpression()
		if expr == nil {
			return nil, false
		}
		list = append(list, expr)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(end) {
		return nil, false
	}
	return list, true
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	array := &ast.ArrayLiteral{Token: p.curToken}
	elements, ok := p.parseExpressionList(token.RBRACKET)
	if !ok {
		return nil
	}
	array.Elements = elements
	return array
}

// parseGroupedOrRecord tells (name: value, ...) from a parenthesised expression.
func (p *Parser) parseGroupedOrRecord() ast.Expression {
	if isNameToken(p.peekToken) && p.peekAt(1).Type == token.COLON &&
		!startsTag(p.peekToken, p.peekAt(1), p.peekAt(2)) {
		return p.parseRecordLiteral()
	}
	if p.peekTokenIs(token.RPAREN) {
		p.errorf(p.peekToken, "empty parentheses")
		return nil
	}
	p.nextToken()
	expr := p.parseExpression()
	if expr == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseRecordLiteral() ast.Expression {
	record := &ast.RecordLiteral{Token: p.curToken}
	seen := map[string]bool{}
	for {
		p.nextToken()
		if !isNameToken(p.curToken) {
			p.errorf(p.curToken, "expected a field name but found %s", describe(p.curToken))
			return nil
		}
		name := p.curToken.Lexeme
		if seen[name] {
			p.errorf(p.curToken, "duplicate field %s", name)
			return nil
		}
		seen[name] = true
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		record.Names = append(record.Names, name)
		record.Values = append(record.Values, value)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return record
}

func (p *Parser) parseIfExpression() ast.Expression {
	expression := &ast.IfExpression{Token: p.curToken}

	p.nextToken() // consume 'if'
	expression.Condition = p.parseExpression()
	if expression.Condition == nil || !p.expectPeek(token.THEN) {
		return nil
	}
	p.nextToken()
	expression.Consequence = p.parseExpression()
	if expression.Consequence == nil || !p.expectPeek(token.ELSE) {
		return nil
	}
	p.nextToken()
	expression.Alternative = p.parseExpression()
	if expression.Alternative == nil {
		return nil
	}
	return expression
}

// parseMatchExpression parses
//
//	match subject { p1, p2 when guard -> result; p3 -> result }
func (p *Parser) parseMatchExpression() ast.Expression {
	expression := &ast.MatchExpression{Token: p.curToken}
	p.nextToken()
	expression.Subject = p.parseExpression()
	if expression.Subject == nil || !p.expectPeek(token.LBRACE) {
		return nil
	}
	if p.peekTokenIs(token.RBRACE) {
		p.errorf(p.peekToken, "match needs at least one clause")
		return nil
	}

	for {
		p.nextToken()
		clause := p.parseMatchClause()
		if clause == nil {
			return nil
		}
		expression.Clauses = append(expression.Clauses, clause)

		if p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
			if p.peekTokenIs(token.RBRACE) {
				p.nextToken()
				break
			}
			continue
		}
		if !p.expectPeek(token.RBRACE) {
			return nil
		}
		break
	}
	return expression
}

func (p *Parser) parseMatchClause() *ast.MatchClause {
	clause := &ast.MatchClause{}
	for {
		alt := &ast.MatchAlternative{Pattern: p.parseExpression()}
		if alt.Pattern == nil {
			return nil
		}
		if p.peekTokenIs(token.WHEN) {
			p.nextToken()
			p.nextToken()
			alt.Guard = p.parseExpression()
			if alt.Guard == nil {
				return nil
			}
		}
		clause.Alternatives = append(clause.Alternatives, alt)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.nextToken()
	}
	if !p.expectPeek(token.ARROW) {
		return nil
	}
	clause.Token = p.curToken
	p.nextToken()
	clause.Result = p.parseExpression()
	if clause.Result == nil {
		return nil
	}
	return clause
}

// parseDefineExpression parses define p1 = v1, p2 = v2 in body. Patterns are
// read above the equality level so '=' separates them from their value.
func (p *Parser) parseDefineExpression() ast.Expression {
	expression := &ast.DefineExpression{Token: p.curToken}
	for {
		p.nextToken()
		binding := &ast.DefineBinding{Pattern: p.parseChain(levelComparison)}
		if binding.Pattern == nil || !p.expectPeek(token.EQ) {
			return nil
		}
		binding.Token = p.curToken
		p.nextToken()
		binding.Value = p.parseExpression()
		if binding.Value == nil {
			return nil
		}
		expression.Bindings = append(expression.Bindings, binding)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	expression.Body = p.parseExpression()
	if expression.Body == nil {
		return nil
	}
	return expression
}

// parseLambdaExpression parses fn(a, b) -> body.
func (p *Parser) parseLambdaExpression() ast.Expression {
	lambda := &ast.LambdaExpression{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	seen := map[string]bool{}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
	} else {
		for {
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			name := p.curToken.Lexeme
			if seen[name] && name != config.WildcardName {
				p.errorf(p.curToken, "duplicate parameter %s", name)
				return nil
			}
			seen[name] = true
			lambda.Parameters = append(lambda.Parameters, &ast.Identifier{Token: p.curToken, Value: name})
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
	}
	if !p.expectPeek(token.ARROW) {
		return nil
	}
	p.nextToken()
	lambda.Body = p.parseExpression()
	if lambda.Body == nil {
		return nil
	}
	return lambda
}
