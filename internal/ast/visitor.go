package ast

// Visitor is implemented by passes that walk every node kind.
type Visitor interface {
	VisitNumberLiteral(n *NumberLiteral)
	VisitStringLiteral(n *StringLiteral)
	VisitBooleanLiteral(n *BooleanLiteral)
	VisitTemporalLiteral(n *TemporalLiteral)
	VisitTypeLiteral(n *TypeLiteral)
	VisitUnitLiteral(n *UnitLiteral)
	VisitColumnReference(n *ColumnReference)
	VisitIdentifier(n *Identifier)
	VisitCallExpression(n *CallExpression)
	VisitTagExpression(n *TagExpression)
	VisitArrayLiteral(n *ArrayLiteral)
	VisitRecordLiteral(n *RecordLiteral)
	VisitFieldAccess(n *FieldAccess)
	VisitPrefixExpression(n *PrefixExpression)
	VisitOperatorChain(n *OperatorChain)
	VisitIfExpression(n *IfExpression)
	VisitMatchExpression(n *MatchExpression)
	VisitDefineExpression(n *DefineExpression)
	VisitLambdaExpression(n *LambdaExpression)
}

// Inspect calls fn for n and every node below it, depth first, until fn
// returns false.
func Inspect(n Expression, fn func(Expression) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case *CallExpression:
		for _, a := range n.Arguments {
			Inspect(a, fn)
		}
	case *TagExpression:
		Inspect(n.Inner, fn)
	case *ArrayLiteral:
		for _, e := range n.Elements {
			Inspect(e, fn)
		}
	case *RecordLiteral:
		for _, e := range n.Values {
			Inspect(e, fn)
		}
	case *FieldAccess:
		Inspect(n.Left, fn)
	case *PrefixExpression:
		Inspect(n.Right, fn)
	case *OperatorChain:
		for _, e := range n.Operands {
			Inspect(e, fn)
		}
	case *IfExpression:
		Inspect(n.Condition, fn)
		Inspect(n.Consequence, fn)
		Inspect(n.Alternative, fn)
	case *MatchExpression:
		Inspect(n.Subject, fn)
		for _, c := range n.Clauses {
			for _, alt := range c.Alternatives {
				Inspect(alt.Pattern, fn)
				Inspect(alt.Guard, fn)
			}
			Inspect(c.Result, fn)
		}
	case *DefineExpression:
		for _, b := range n.Bindings {
			Inspect(b.Pattern, fn)
			Inspect(b.Value, fn)
		}
		Inspect(n.Body, fn)
	case *LambdaExpression:
		for _, p := range n.Parameters {
			Inspect(p, fn)
		}
		Inspect(n.Body, fn)
	}
}
