// Package parser turns a token stream into an expression tree.
//
// Binary operators of one precedence level form a single n-ary
// ast.OperatorChain. From loosest to tightest:
//
//	|            or
//	&            and
//	= <>         equality
//	< <= > >=    comparison (chained: a < b <= c)
//	++           text concatenation
//	+ -          additive
//	* /          multiplicative
//	-x           negation
//	^            power (right associative, binds tighter than negation)
//	.field       field access
package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/lexer"
	"github.com/funvibe/colexpr/internal/pipeline"
	"github.com/funvibe/colexpr/internal/token"
)

// MaxNestingDepth bounds recursion on deeply nested input.
const MaxNestingDepth = 256

// Chain levels, loosest first.
const (
	levelOr = iota
	levelAnd
	levelEquality
	levelComparison
	levelConcat
	levelAdditive
	levelMultiplicative
)

var chainLevels = [][]token.TokenType{
	levelOr:             {token.OR},
	levelAnd:            {token.AND},
	levelEquality:       {token.EQ, token.NOT_EQ},
	levelComparison:     {token.LT, token.LTE, token.GT, token.GTE},
	levelConcat:         {token.CONCAT},
	levelAdditive:       {token.PLUS, token.MINUS},
	levelMultiplicative: {token.ASTERISK, token.SLASH},
}

type Parser struct {
	tokens []token.Token
	pos    int
	ctx    *pipeline.PipelineContext
	depth  int

	curToken  token.Token
	peekToken token.Token
}

func New(tokens []token.Token, ctx *pipeline.PipelineContext) *Parser {
	p := &Parser{tokens: tokens, ctx: ctx}
	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()
	return p
}

// Parse lexes and parses a single expression.
func Parse(source string) (ast.Expression, error) {
	ctx := pipeline.New(&lexer.LexerProcessor{}, &ParserProcessor{}).Run(pipeline.NewPipelineContext(source))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ctx.AstRoot, nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
		return
	}
	p.peekToken = token.Token{Type: token.EOF, Line: p.curToken.Line, Column: p.curToken.Column}
}

// peekAt returns the token n positions after peekToken.
func (p *Parser) peekAt(n int) token.Token {
	i := p.pos + n - 1
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	return token.Token{Type: token.EOF}
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) peekIn(types []token.TokenType) bool {
	for _, t := range types {
		if p.peekToken.Type == t {
			return true
		}
	}
	return false
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(p.peekToken, "expected %s but found %s", describeType(t), describe(p.peekToken))
	return false
}

func (p *Parser) errorf(tok token.Token, format string, args ...any) {
	p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(diagnostics.ErrP001, tok, diagnostics.MsgSyntax, fmt.Sprintf(format, args...)))
}

func (p *Parser) enter() bool {
	p.depth++
	if p.depth > MaxNestingDepth {
		p.errorf(p.curToken, "expression is nested too deeply")
		return false
	}
	return true
}

func (p *Parser) leave() { p.depth-- }

// ParseExpression parses the whole stream as one expression.
func (p *Parser) ParseExpression() ast.Expression {
	if p.curTokenIs(token.EOF) {
		p.errorf(p.curToken, "empty expression")
		return nil
	}
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	if !p.peekTokenIs(token.EOF) {
		p.errorf(p.peekToken, "unexpected %s", describe(p.peekToken))
		return nil
	}
	return expr
}

func (p *Parser) parseExpression() ast.Expression {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	switch p.curToken.Type {
	case token.IF:
		return p.parseIfExpression()
	case token.MATCH:
		return p.parseMatchExpression()
	case token.DEFINE:
		return p.parseDefineExpression()
	case token.FN:
		return p.parseLambdaExpression()
	}
	return p.parseChain(levelOr)
}

func (p *Parser) parseChain(level int) ast.Expression {
	if level == len(chainLevels) {
		return p.parseUnary()
	}
	left := p.parseChain(level + 1)
	if left == nil || !p.peekIn(chainLevels[level]) {
		return left
	}

	chain := &ast.OperatorChain{Token: p.peekToken, Operands: []ast.Expression{left}}
	for p.peekIn(chainLevels[level]) {
		p.nextToken()
		chain.Operators = append(chain.Operators, p.curToken.Lexeme)
		p.nextToken()
		right := p.parseChain(level + 1)
		if right == nil {
			return nil
		}
		chain.Operands = append(chain.Operands, right)
	}
	return chain
}

func (p *Parser) parseUnary() ast.Expression {
	if !p.curTokenIs(token.MINUS) {
		return p.parsePower()
	}
	if !p.enter() {
		return nil
	}
	defer p.leave()

	expression := &ast.PrefixExpression{Token: p.curToken, Operator: p.curToken.Lexeme}
	p.nextToken()
	expression.Right = p.parseUnary()
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parsePower() ast.Expression {
	base := p.parsePostfix()
	if base == nil || !p.peekTokenIs(token.CARET) {
		return base
	}
	p.nextToken()
	chain := &ast.OperatorChain{Token: p.curToken, Operands: []ast.Expression{base}, Operators: []string{p.curToken.Lexeme}}
	p.nextToken()
	exponent := p.parseUnary()
	if exponent == nil {
		return nil
	}
	chain.Operands = append(chain.Operands, exponent)
	return chain
}

func (p *Parser) parsePostfix() ast.Expression {
	left := p.parsePrimary()
	for left != nil && p.peekTokenIs(token.DOT) {
		p.nextToken()
		access := &ast.FieldAccess{Token: p.curToken, Left: left}
		if !isNameToken(p.peekToken) {
			p.errorf(p.peekToken, "expected a field name but found %s", describe(p.peekToken))
			return nil
		}
		p.nextToken()
		access.Field = p.curToken.Lexeme
		left = access
	}
	return left
}

// isNameToken reports whether tok can serve as a column or field name.
// Keywords are allowed there.
func isNameToken(tok token.Token) bool {
	return tok.Type == token.IDENT || token.IsKeyword(tok.Lexeme)
}

// adjacent reports whether b starts right where a ends.
func adjacent(a, b token.Token) bool {
	return a.Line == b.Line && a.Column+utf8.RuneCountInString(a.Lexeme) == b.Column
}

// startsTag reports whether a, b, c spell Type:Tag with no blanks.
func startsTag(a, b, c token.Token) bool {
	return a.Type == token.IDENT && b.Type == token.COLON && c.Type == token.IDENT &&
		adjacent(a, b) && adjacent(b, c)
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.BRACED:
		return "'{'"
	}
	return "'" + tok.Lexeme + "'"
}

func describeType(t token.TokenType) string {
	switch t {
	case token.EOF:
		return "end of input"
	case token.IDENT:
		return "a name"
	case token.BRACED:
		return "'{'"
	}
	return "'" + strings.ToLower(string(t)) + "'"
}
