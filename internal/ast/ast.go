package ast

import (
	"github.com/funvibe/colexpr/internal/config"
	"github.com/funvibe/colexpr/internal/numeric"
	"github.com/funvibe/colexpr/internal/token"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/units"
	"github.com/funvibe/colexpr/internal/value"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	Accept(v Visitor)
}

// Expression is a Node that represents an expression. Patterns are
// expressions too; see MatchAlternative.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// NumberLiteral is a number with an optional unit: 5, 2.5{m/s}.
type NumberLiteral struct {
	Token token.Token
	Value numeric.Number
	Unit  units.Unit
}

func (nl *NumberLiteral) Accept(v Visitor)      { v.VisitNumberLiteral(nl) }
func (nl *NumberLiteral) expressionNode()       {}
func (nl *NumberLiteral) TokenLiteral() string  { return nl.Token.Lexeme }
func (nl *NumberLiteral) GetToken() token.Token { return nl.Token }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) Accept(v Visitor)      { v.VisitStringLiteral(sl) }
func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token { return sl.Token }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) Accept(v Visitor)      { v.VisitBooleanLiteral(bl) }
func (bl *BooleanLiteral) expressionNode()       {}
func (bl *BooleanLiteral) TokenLiteral() string  { return bl.Token.Lexeme }
func (bl *BooleanLiteral) GetToken() token.Token { return bl.Token }

// TemporalLiteral is date{...}, time{...} and the other temporal literals.
type TemporalLiteral struct {
	Token token.Token
	Value value.Temporal
}

func (tl *TemporalLiteral) Accept(v Visitor)      { v.VisitTemporalLiteral(tl) }
func (tl *TemporalLiteral) expressionNode()       {}
func (tl *TemporalLiteral) TokenLiteral() string  { return tl.Token.Lexeme }
func (tl *TemporalLiteral) GetToken() token.Token { return tl.Token }

// TypeLiteral is type{T}, passed to functions such as as_type and from_text.
type TypeLiteral struct {
	Token token.Token
	Spec  typesystem.TypeSpec
}

func (tl *TypeLiteral) Accept(v Visitor)      { v.VisitTypeLiteral(tl) }
func (tl *TypeLiteral) expressionNode()       {}
func (tl *TypeLiteral) TokenLiteral() string  { return tl.Token.Lexeme }
func (tl *TypeLiteral) GetToken() token.Token { return tl.Token }

// UnitLiteral is unit{u}, passed to functions such as as.
type UnitLiteral struct {
	Token token.Token
	Unit  units.Unit
}

func (ul *UnitLiteral) Accept(v Visitor)      { v.VisitUnitLiteral(ul) }
func (ul *UnitLiteral) expressionNode()       {}
func (ul *UnitLiteral) TokenLiteral() string  { return ul.Token.Lexeme }
func (ul *UnitLiteral) GetToken() token.Token { return ul.Token }

// ColumnReference reads the current row's cell (@name) or the whole column
// as a list (@entire name).
type ColumnReference struct {
	Token  token.Token
	Name   string
	Entire bool
}

func (cr *ColumnReference) Accept(v Visitor)      { v.VisitColumnReference(cr) }
func (cr *ColumnReference) expressionNode()       {}
func (cr *ColumnReference) TokenLiteral() string  { return cr.Token.Lexeme }
func (cr *ColumnReference) GetToken() token.Token { return cr.Token }

// Identifier names a variable bound by define, match or a lambda. In a
// pattern it binds; "_" is the wildcard.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) Accept(v Visitor)      { v.VisitIdentifier(i) }
func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Token }

// IsWildcard reports whether the identifier is "_".
func (i *Identifier) IsWildcard() bool { return i.Value == config.WildcardName }

type CallExpression struct {
	Token     token.Token // the function name
	Function  string
	Arguments []Expression
}

func (ce *CallExpression) Accept(v Visitor)      { v.VisitCallExpression(ce) }
func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }

// TagExpression constructs (or, in a pattern, matches) a tagged value:
// Optional:None, Optional:Is(5).
type TagExpression struct {
	Token    token.Token
	TypeName string
	Tag      string
	Inner    Expression // nil for tags without payload
}

func (te *TagExpression) Accept(v Visitor)      { v.VisitTagExpression(te) }
func (te *TagExpression) expressionNode()       {}
func (te *TagExpression) TokenLiteral() string  { return te.Token.Lexeme }
func (te *TagExpression) GetToken() token.Token { return te.Token }

type ArrayLiteral struct {
	Token    token.Token // [
	Elements []Expression
}

func (al *ArrayLiteral) Accept(v Visitor)      { v.VisitArrayLiteral(al) }
func (al *ArrayLiteral) expressionNode()       {}
func (al *ArrayLiteral) TokenLiteral() string  { return al.Token.Lexeme }
func (al *ArrayLiteral) GetToken() token.Token { return al.Token }

// RecordLiteral is (name: expr, ...). As a pattern, omitted fields match anything.
type RecordLiteral struct {
	Token  token.Token // (
	Names  []string
	Values []Expression
}

func (rl *RecordLiteral) Accept(v Visitor)      { v.VisitRecordLiteral(rl) }
func (rl *RecordLiteral) expressionNode()       {}
func (rl *RecordLiteral) TokenLiteral() string  { return rl.Token.Lexeme }
func (rl *RecordLiteral) GetToken() token.Token { return rl.Token }

type FieldAccess struct {
	Token token.Token // .
	Left  Expression
	Field string
}

func (fa *FieldAccess) Accept(v Visitor)      { v.VisitFieldAccess(fa) }
func (fa *FieldAccess) expressionNode()       {}
func (fa *FieldAccess) TokenLiteral() string  { return fa.Token.Lexeme }
func (fa *FieldAccess) GetToken() token.Token { return fa.Token }

type PrefixExpression struct {
	Token    token.Token // -
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) Accept(v Visitor)      { v.VisitPrefixExpression(pe) }
func (pe *PrefixExpression) expressionNode()       {}
func (pe *PrefixExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token { return pe.Token }

// OperatorChain is an n-ary run of operators of one precedence level:
// a + b - c, a < b <= c, p & q & r. Operators[i] sits between Operands[i]
// and Operands[i+1]. Power is a chain of exactly two operands.
type OperatorChain struct {
	Token     token.Token // the first operator
	Operands  []Expression
	Operators []string
}

func (oc *OperatorChain) Accept(v Visitor)      { v.VisitOperatorChain(oc) }
func (oc *OperatorChain) expressionNode()       {}
func (oc *OperatorChain) TokenLiteral() string  { return oc.Token.Lexeme }
func (oc *OperatorChain) GetToken() token.Token { return oc.Token }

type IfExpression struct {
	Token       token.Token // if
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (ie *IfExpression) Accept(v Visitor)      { v.VisitIfExpression(ie) }
func (ie *IfExpression) expressionNode()       {}
func (ie *IfExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IfExpression) GetToken() token.Token { return ie.Token }

// MatchAlternative is one pattern of a clause with its optional guard.
type MatchAlternative struct {
	Pattern Expression
	Guard   Expression
}

// MatchClause fires when any of its alternatives matches.
type MatchClause struct {
	Token        token.Token // ->
	Alternatives []*MatchAlternative
	Result       Expression
}

type MatchExpression struct {
	Token   token.Token // match
	Subject Expression
	Clauses []*MatchClause
}

func (me *MatchExpression) Accept(v Visitor)      { v.VisitMatchExpression(me) }
func (me *MatchExpression) expressionNode()       {}
func (me *MatchExpression) TokenLiteral() string  { return me.Token.Lexeme }
func (me *MatchExpression) GetToken() token.Token { return me.Token }

type DefineBinding struct {
	Token   token.Token // =
	Pattern Expression
	Value   Expression
}

// DefineExpression binds names for its body: define x = 1, y = x + 1 in y * 2.
// Each binding sees the ones before it.
type DefineExpression struct {
	Token    token.Token // define
	Bindings []*DefineBinding
	Body     Expression
}

func (de *DefineExpression) Accept(v Visitor)      { v.VisitDefineExpression(de) }
func (de *DefineExpression) expressionNode()       {}
func (de *DefineExpression) TokenLiteral() string  { return de.Token.Lexeme }
func (de *DefineExpression) GetToken() token.Token { return de.Token }

// LambdaExpression is a function argument: fn(x) -> x > 3.
type LambdaExpression struct {
	Token      token.Token // fn
	Parameters []*Identifier
	Body       Expression
}

func (le *LambdaExpression) Accept(v Visitor)      { v.VisitLambdaExpression(le) }
func (le *LambdaExpression) expressionNode()       {}
func (le *LambdaExpression) TokenLiteral() string  { return le.Token.Lexeme }
func (le *LambdaExpression) GetToken() token.Token { return le.Token }
