package evaluator

import (
	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/value"
)

func (e *Evaluator) evalCallExpression(n *ast.CallExpression, env *Environment) (value.Value, error) {
	call, ok := e.checked.Call(n)
	if !ok {
		return nil, diagnostics.NewInternalError("call to %s was not checked", n.Function)
	}
	args := make([]value.Value, len(n.Arguments))
	for i, arg := range n.Arguments {
		switch a := arg.(type) {
		case *ast.LambdaExpression:
			args[i] = e.lambda(a, env)
		case *ast.TypeLiteral, *ast.UnitLiteral:
			// resolved statically into the instance
		default:
			v, err := e.Eval(arg, env)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
	}
	result, err := call.Instance(args)
	if err != nil {
		return nil, located(err, n)
	}
	return result, nil
}

// lambda closes over env. Each invocation gets its own scope.
func (e *Evaluator) lambda(n *ast.LambdaExpression, env *Environment) value.Lambda {
	return value.Lambda{
		Arity: len(n.Parameters),
		Fn: func(args []value.Value) (value.Value, error) {
			if len(args) != len(n.Parameters) {
				return nil, diagnostics.NewInternalError("lambda takes %d arguments, got %d", len(n.Parameters), len(args))
			}
			scope := NewEnclosedEnvironment(env)
			for i, p := range n.Parameters {
				if p.IsWildcard() {
					continue
				}
				scope.Set(e.checked.BindingKey(p), args[i])
			}
			return e.Eval(n.Body, scope)
		},
	}
}
