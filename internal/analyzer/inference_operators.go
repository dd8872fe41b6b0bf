package analyzer

import (
	"math/big"

	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/symbols"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/units"
)

type checkKind int

const (
	checkConcatenable checkKind = iota
	checkComparable
)

// deferredCheck is a constraint on a type that unification cannot express.
type deferredCheck struct {
	kind checkKind
	node ast.Expression
	t    typesystem.TypeExp
}

// inferOperatorChain types a run of operators of one precedence level. All
// operators of a chain share a class, so the first one decides the rule.
func (ctx *InferenceContext) inferOperatorChain(n *ast.OperatorChain, table *symbols.SymbolTable) (typesystem.TypeExp, error) {
	if len(n.Operands) != len(n.Operators)+1 || len(n.Operators) == 0 {
		return nil, diagnostics.NewInternalError("malformed operator chain at %d:%d", n.Token.Line, n.Token.Column)
	}
	operands := make([]typesystem.TypeExp, len(n.Operands))
	for i, op := range n.Operands {
		t, err := ctx.infer(op, table)
		if err != nil {
			return nil, err
		}
		operands[i] = t
	}

	switch n.Operators[0] {
	case "+", "-":
		num := ctx.state.NewNumVar()
		if err := ctx.unifyAll(num, n.Operands, operands); err != nil {
			return nil, err
		}
		return num, nil
	case "*", "/":
		return ctx.inferProduct(n, operands)
	case "^":
		return ctx.inferPower(n, operands)
	case "++":
		t := typesystem.TypeExp(ctx.state.NewVar())
		if err := ctx.unifyAll(t, n.Operands, operands); err != nil {
			return nil, err
		}
		ctx.deferred = append(ctx.deferred, deferredCheck{kind: checkConcatenable, node: n, t: t})
		return t, nil
	case "=", "<>":
		if len(n.Operands) > 2 && containsOperator(n.Operators, "<>") {
			return nil, invalid(n, "<> cannot be chained")
		}
		if err := ctx.unifyAll(ctx.state.NewVar(), n.Operands, operands); err != nil {
			return nil, err
		}
		return typesystem.Prim(typesystem.Boolean), nil
	case "<", "<=", ">", ">=":
		if mixedDirections(n.Operators) {
			return nil, typeError(diagnostics.ErrT006, n, diagnostics.MsgMixedChain)
		}
		t := typesystem.TypeExp(ctx.state.NewVar())
		if err := ctx.unifyAll(t, n.Operands, operands); err != nil {
			return nil, err
		}
		ctx.deferred = append(ctx.deferred, deferredCheck{kind: checkComparable, node: n, t: t})
		return typesystem.Prim(typesystem.Boolean), nil
	case "&", "|":
		b := typesystem.Prim(typesystem.Boolean)
		if err := ctx.unifyAll(b, n.Operands, operands); err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, diagnostics.NewInternalError("unknown operator %s", n.Operators[0])
}

func (ctx *InferenceContext) unifyAll(expected typesystem.TypeExp, nodes []ast.Expression, types []typesystem.TypeExp) error {
	for i, t := range types {
		if err := ctx.unify(expected, t, nodes[i]); err != nil {
			return err
		}
	}
	return nil
}

// inferProduct multiplies and divides the operand units.
func (ctx *InferenceContext) inferProduct(n *ast.OperatorChain, operands []typesystem.TypeExp) (typesystem.TypeExp, error) {
	acc := typesystem.FixedUnit(units.One())
	for i, t := range operands {
		u := ctx.state.NewUnitVar()
		if err := ctx.unify(typesystem.NumOf(u), t, n.Operands[i]); err != nil {
			return nil, err
		}
		if i > 0 && n.Operators[i-1] == "/" {
			acc = acc.Divide(u)
		} else {
			acc = acc.Times(u)
		}
	}
	return typesystem.NumOf(ctx.state.PruneUnit(acc)), nil
}

// inferPower types base ^ exponent. A literal exponent raises the base unit;
// any other exponent needs both sides unitless.
func (ctx *InferenceContext) inferPower(n *ast.OperatorChain, operands []typesystem.TypeExp) (typesystem.TypeExp, error) {
	base, exponent := operands[0], operands[1]
	unitless := typesystem.Num(units.One())

	p, literal := literalExponent(n.Operands[1])
	if !literal {
		if err := ctx.unify(unitless, base, n.Operands[0]); err != nil {
			return nil, err
		}
		if err := ctx.unify(unitless, exponent, n.Operands[1]); err != nil {
			return nil, err
		}
		return unitless, nil
	}

	if err := ctx.unify(unitless, exponent, n.Operands[1]); err != nil {
		return nil, err
	}
	u := ctx.state.NewUnitVar()
	if err := ctx.unify(typesystem.NumOf(u), base, n.Operands[0]); err != nil {
		return nil, err
	}
	raised, err := ctx.state.PruneUnit(u).RaisedToRat(p)
	if err != nil {
		return nil, typeError(diagnostics.ErrT005, n, diagnostics.MsgUnit, err.Error())
	}
	return typesystem.NumOf(raised), nil
}

// literalExponent returns the value of a number literal, possibly negated.
func literalExponent(e ast.Expression) (*big.Rat, bool) {
	negate := false
	if pe, ok := e.(*ast.PrefixExpression); ok && pe.Operator == "-" {
		negate = true
		e = pe.Right
	}
	nl, ok := e.(*ast.NumberLiteral)
	if !ok {
		return nil, false
	}
	r, ok := new(big.Rat).SetString(nl.Value.String())
	if !ok {
		return nil, false
	}
	if negate {
		r.Neg(r)
	}
	return r, true
}

func containsOperator(ops []string, op string) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

func mixedDirections(ops []string) bool {
	var up, down bool
	for _, o := range ops {
		switch o {
		case "<", "<=":
			up = true
		case ">", ">=":
			down = true
		}
	}
	return up && down
}
