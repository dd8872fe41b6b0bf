// Package prettyprinter renders expression trees and values back to source
// text that the parser accepts.
package prettyprinter

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/config"
	"github.com/funvibe/colexpr/internal/typesystem"
)

// CodePrinter writes an expression on one line. Nested operator chains are
// always parenthesised, so the output never depends on precedence.
type CodePrinter struct {
	buf strings.Builder
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// Print renders e as source text.
func Print(e ast.Expression) string {
	p := NewCodePrinter()
	p.print(e)
	return p.String()
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) print(e ast.Expression) {
	if e == nil {
		p.write("<nil>")
		return
	}
	e.Accept(p)
}

// printNested parenthesises anything that is not a primary expression.
func (p *CodePrinter) printNested(e ast.Expression) {
	if needsParens(e) {
		p.write("(")
		p.print(e)
		p.write(")")
		return
	}
	p.print(e)
}

func needsParens(e ast.Expression) bool {
	switch e := e.(type) {
	case *ast.OperatorChain, *ast.PrefixExpression, *ast.IfExpression,
		*ast.MatchExpression, *ast.DefineExpression, *ast.LambdaExpression:
		return true
	case *ast.NumberLiteral:
		return e.Value.Sign() < 0
	}
	return false
}

func (p *CodePrinter) printList(items []ast.Expression) {
	for i, item := range items {
		if i > 0 {
			p.write(", ")
		}
		p.print(item)
	}
}

func (p *CodePrinter) VisitNumberLiteral(n *ast.NumberLiteral) {
	p.write(n.Value.String())
	if !n.Unit.IsOne() {
		p.write("{" + n.Unit.String() + "}")
	}
}

func (p *CodePrinter) VisitStringLiteral(n *ast.StringLiteral) {
	p.write(strconv.Quote(n.Value))
}

func (p *CodePrinter) VisitBooleanLiteral(n *ast.BooleanLiteral) {
	p.write(strconv.FormatBool(n.Value))
}

func (p *CodePrinter) VisitTemporalLiteral(n *ast.TemporalLiteral) {
	p.write(temporalKeyword(n.Value.TKind) + "{" + n.Value.Inspect() + "}")
}

func (p *CodePrinter) VisitTypeLiteral(n *ast.TypeLiteral) {
	p.write("type{" + n.Spec.String() + "}")
}

func (p *CodePrinter) VisitUnitLiteral(n *ast.UnitLiteral) {
	p.write("unit{" + n.Unit.String() + "}")
}

func (p *CodePrinter) VisitColumnReference(n *ast.ColumnReference) {
	p.write("@")
	if n.Entire {
		p.write(config.KeywordEntire + " ")
	}
	if isPlainName(n.Name) && n.Name != config.KeywordEntire {
		p.write(n.Name)
	} else {
		p.write(strconv.Quote(n.Name))
	}
}

func (p *CodePrinter) VisitIdentifier(n *ast.Identifier) {
	p.write(n.Value)
}

func (p *CodePrinter) VisitCallExpression(n *ast.CallExpression) {
	p.write(n.Function + "(")
	p.printList(n.Arguments)
	p.write(")")
}

func (p *CodePrinter) VisitTagExpression(n *ast.TagExpression) {
	p.write(n.TypeName + ":" + n.Tag)
	if n.Inner != nil {
		p.write("(")
		p.print(n.Inner)
		p.write(")")
	}
}

func (p *CodePrinter) VisitArrayLiteral(n *ast.ArrayLiteral) {
	p.write("[")
	p.printList(n.Elements)
	p.write("]")
}

func (p *CodePrinter) VisitRecordLiteral(n *ast.RecordLiteral) {
	p.write("(")
	for i, name := range n.Names {
		if i > 0 {
			p.write(", ")
		}
		p.write(name + ": ")
		p.print(n.Values[i])
	}
	p.write(")")
}

func (p *CodePrinter) VisitFieldAccess(n *ast.FieldAccess) {
	p.printNested(n.Left)
	p.write("." + n.Field)
}

func (p *CodePrinter) VisitPrefixExpression(n *ast.PrefixExpression) {
	p.write(n.Operator)
	p.printNested(n.Right)
}

func (p *CodePrinter) VisitOperatorChain(n *ast.OperatorChain) {
	for i, operand := range n.Operands {
		if i > 0 {
			p.write(" " + n.Operators[i-1] + " ")
		}
		p.printNested(operand)
	}
}

func (p *CodePrinter) VisitIfExpression(n *ast.IfExpression) {
	p.write("if ")
	p.printNested(n.Condition)
	p.write(" then ")
	p.print(n.Consequence)
	p.write(" else ")
	p.print(n.Alternative)
}

func (p *CodePrinter) VisitMatchExpression(n *ast.MatchExpression) {
	p.write("match ")
	p.printNested(n.Subject)
	p.write(" { ")
	for i, clause := range n.Clauses {
		if i > 0 {
			p.write("; ")
		}
		for j, alt := range clause.Alternatives {
			if j > 0 {
				p.write(", ")
			}
			p.print(alt.Pattern)
			if alt.Guard != nil {
				p.write(" when ")
				p.print(alt.Guard)
			}
		}
		p.write(" -> ")
		p.print(clause.Result)
	}
	p.write(" }")
}

func (p *CodePrinter) VisitDefineExpression(n *ast.DefineExpression) {
	p.write("define ")
	for i, b := range n.Bindings {
		if i > 0 {
			p.write(", ")
		}
		p.printNested(b.Pattern)
		p.write(" = ")
		p.print(b.Value)
	}
	p.write(" in ")
	p.print(n.Body)
}

func (p *CodePrinter) VisitLambdaExpression(n *ast.LambdaExpression) {
	p.write("fn(")
	for i, param := range n.Parameters {
		if i > 0 {
			p.write(", ")
		}
		p.write(param.Value)
	}
	p.write(") -> ")
	p.print(n.Body)
}

func temporalKeyword(kind typesystem.TemporalKind) string {
	return strings.ToLower(kind.String())
}

// isPlainName reports whether name lexes as a single name token.
func isPlainName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		letter := r == '_' || unicode.IsLetter(r)
		if !letter && (i == 0 || r < '0' || r > '9') {
			return false
		}
	}
	return true
}
