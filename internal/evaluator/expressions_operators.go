package evaluator

import (
	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/numeric"
	"github.com/funvibe/colexpr/internal/value"
)

func (e *Evaluator) evalPrefixExpression(n *ast.PrefixExpression, env *Environment) (value.Value, error) {
	right, err := e.Eval(n.Right, env)
	if err != nil {
		return nil, err
	}
	num, err := asNumber(right, n)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "-":
		return value.NewNumber(numeric.Negate(num)), nil
	}
	return nil, diagnostics.NewInternalError("unknown prefix operator %s", n.Operator)
}

func (e *Evaluator) evalOperatorChain(n *ast.OperatorChain, env *Environment) (value.Value, error) {
	if len(n.Operands) < 2 || len(n.Operators) != len(n.Operands)-1 {
		return nil, diagnostics.NewInternalError("malformed operator chain at %d:%d", n.Token.Line, n.Token.Column)
	}
	switch n.Operators[0] {
	case "&", "|":
		return e.evalLogical(n, env)
	case "=", "<>", "<", "<=", ">", ">=":
		return e.evalComparison(n, env)
	case "++":
		return e.evalConcat(n, env)
	}
	return e.evalArithmetic(n, env)
}

// evalArithmetic folds + - * / ^ left to right. Power chains have two operands.
func (e *Evaluator) evalArithmetic(n *ast.OperatorChain, env *Environment) (value.Value, error) {
	first, err := e.Eval(n.Operands[0], env)
	if err != nil {
		return nil, err
	}
	acc, err := asNumber(first, n.Operands[0])
	if err != nil {
		return nil, err
	}
	for i, op := range n.Operators {
		next, err := e.Eval(n.Operands[i+1], env)
		if err != nil {
			return nil, err
		}
		rhs, err := asNumber(next, n.Operands[i+1])
		if err != nil {
			return nil, err
		}
		switch op {
		case "+":
			if acc, err = numeric.Add(acc, rhs); err != nil {
				return nil, arithmeticError(err, n)
			}
		case "-":
			if acc, err = numeric.Subtract(acc, rhs); err != nil {
				return nil, arithmeticError(err, n)
			}
		case "*":
			if acc, err = numeric.Multiply(acc, rhs); err != nil {
				return nil, arithmeticError(err, n)
			}
		case "/":
			if acc, err = numeric.Divide(acc, rhs); err != nil {
				return nil, arithmeticError(err, n)
			}
		case "^":
			if acc, err = numeric.Pow(acc, rhs); err != nil {
				return nil, arithmeticError(err, n)
			}
		default:
			return nil, diagnostics.NewInternalError("unknown operator %s", op)
		}
	}
	return value.NewNumber(acc), nil
}

// evalComparison evaluates operands left to right and stops at the first
// link that does not hold.
func (e *Evaluator) evalComparison(n *ast.OperatorChain, env *Environment) (value.Value, error) {
	left, err := e.Eval(n.Operands[0], env)
	if err != nil {
		return nil, err
	}
	for i, op := range n.Operators {
		right, err := e.Eval(n.Operands[i+1], env)
		if err != nil {
			return nil, err
		}
		holds, err := compareLink(op, left, right)
		if err != nil {
			return nil, located(err, n)
		}
		if !holds {
			return value.False, nil
		}
		left = right
	}
	return value.True, nil
}

func compareLink(op string, left, right value.Value) (bool, error) {
	switch op {
	case "=", "<>":
		eq, err := value.Equal(left, right)
		if err != nil {
			return false, err
		}
		return eq == (op == "="), nil
	}
	c, err := value.Compare(left, right)
	if err != nil {
		return false, err
	}
	switch op {
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	}
	return false, diagnostics.NewInternalError("unknown comparison %s", op)
}

func (e *Evaluator) evalLogical(n *ast.OperatorChain, env *Environment) (value.Value, error) {
	stopAt := n.Operators[0] == "|"
	for _, operand := range n.Operands {
		v, err := e.Eval(operand, env)
		if err != nil {
			return nil, err
		}
		b, err := asBool(v, operand)
		if err != nil {
			return nil, err
		}
		if b == stopAt {
			return value.NewBoolean(stopAt), nil
		}
	}
	return value.NewBoolean(!stopAt), nil
}

// evalConcat joins texts, or arrays into one materialized array.
func (e *Evaluator) evalConcat(n *ast.OperatorChain, env *Environment) (value.Value, error) {
	operands := make([]value.Value, len(n.Operands))
	for i, operand := range n.Operands {
		v, err := e.Eval(operand, env)
		if err != nil {
			return nil, err
		}
		operands[i] = v
	}
	switch operands[0].(type) {
	case value.Text:
		var out []byte
		for i, v := range operands {
			t, ok := v.(value.Text)
			if !ok {
				return nil, diagnostics.NewInternalError("cannot concatenate %s at operand %d", v.Kind(), i)
			}
			out = append(out, t.V...)
		}
		return value.NewText(string(out)), nil
	case value.List:
		var items []value.Value
		for i, v := range operands {
			l, ok := v.(value.List)
			if !ok {
				return nil, diagnostics.NewInternalError("cannot concatenate %s at operand %d", v.Kind(), i)
			}
			elems, err := value.Materialize(l)
			if err != nil {
				return nil, located(err, n.Operands[i])
			}
			items = append(items, elems...)
		}
		return value.NewList(items...), nil
	}
	return nil, diagnostics.NewInternalError("cannot concatenate %s", operands[0].Kind())
}

func asNumber(v value.Value, node ast.Expression) (numeric.Number, error) {
	n, ok := v.(value.Number)
	if !ok {
		tok := node.GetToken()
		return numeric.Number{}, diagnostics.NewInternalError("expected a Number at %d:%d, got %s", tok.Line, tok.Column, v.Kind())
	}
	return n.V, nil
}
