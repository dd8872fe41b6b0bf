package evaluator

import (
	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/value"
)

func (e *Evaluator) evalIfExpression(n *ast.IfExpression, env *Environment) (value.Value, error) {
	cond, err := e.Eval(n.Condition, env)
	if err != nil {
		return nil, err
	}
	b, err := asBool(cond, n.Condition)
	if err != nil {
		return nil, err
	}
	if b {
		return e.Eval(n.Consequence, env)
	}
	return e.Eval(n.Alternative, env)
}

// evalMatchExpression tries clauses in order. An alternative whose pattern
// matches but whose guard fails falls through to the next alternative.
func (e *Evaluator) evalMatchExpression(n *ast.MatchExpression, env *Environment) (value.Value, error) {
	subject, err := e.Eval(n.Subject, env)
	if err != nil {
		return nil, err
	}
	for _, clause := range n.Clauses {
		for _, alt := range clause.Alternatives {
			scope := NewEnclosedEnvironment(env)
			ok, err := e.matchPattern(alt.Pattern, subject, scope)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if alt.Guard != nil {
				g, err := e.Eval(alt.Guard, scope)
				if err != nil {
					return nil, err
				}
				pass, err := asBool(g, alt.Guard)
				if err != nil {
					return nil, err
				}
				if !pass {
					continue
				}
			}
			return e.Eval(clause.Result, scope)
		}
	}
	return nil, runtimeError(diagnostics.ErrR001, n, diagnostics.MsgNoMatch, subject.Inspect())
}

func (e *Evaluator) evalDefineExpression(n *ast.DefineExpression, env *Environment) (value.Value, error) {
	scope := env
	for _, b := range n.Bindings {
		v, err := e.Eval(b.Value, scope)
		if err != nil {
			return nil, err
		}
		scope = NewEnclosedEnvironment(scope)
		ok, err := e.matchPattern(b.Pattern, v, scope)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrR001, b.Token, diagnostics.MsgNoMatch, v.Inspect())
		}
	}
	return e.Eval(n.Body, scope)
}
