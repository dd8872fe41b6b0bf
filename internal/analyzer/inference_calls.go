package analyzer

import (
	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/symbols"
	"github.com/funvibe/colexpr/internal/typesystem"
)

// pendingLambda is a lambda argument whose body is checked after the
// overload has fixed its parameter types.
type pendingLambda struct {
	node   *ast.LambdaExpression
	params []typesystem.TypeExp
	result typesystem.TypeExp
}

func (ctx *InferenceContext) inferCallExpression(n *ast.CallExpression, table *symbols.SymbolTable) (typesystem.TypeExp, error) {
	def, ok := ctx.env.Functions.Lookup(n.Function)
	if !ok {
		return nil, typeError(diagnostics.ErrT003, n, diagnostics.MsgUnknownFunction, n.Function)
	}

	args := make([]typesystem.TypeExp, len(n.Arguments))
	var lambdas []pendingLambda
	for i, a := range n.Arguments {
		t, lambda, err := ctx.inferArgument(a, table)
		if err != nil {
			return nil, err
		}
		args[i] = t
		if lambda != nil {
			lambdas = append(lambdas, *lambda)
		}
	}

	res, err := def.Resolve(ctx.state, args)
	if err != nil {
		return nil, located(err, n)
	}
	for _, l := range lambdas {
		if err := ctx.inferLambdaBody(l, table); err != nil {
			return nil, err
		}
	}

	ctx.calls[n] = res
	ctx.callOrder = append(ctx.callOrder, n)
	return res.Result, nil
}

// inferArgument types one call argument. Lambdas, type literals and unit
// literals are only valid here.
func (ctx *InferenceContext) inferArgument(a ast.Expression, table *symbols.SymbolTable) (typesystem.TypeExp, *pendingLambda, error) {
	switch a := a.(type) {
	case *ast.LambdaExpression:
		l := &pendingLambda{node: a, params: make([]typesystem.TypeExp, len(a.Parameters)), result: ctx.state.NewVar()}
		for i := range a.Parameters {
			l.params[i] = ctx.state.NewVar()
		}
		return typesystem.FunctionOf(l.result, l.params...), l, nil
	case *ast.TypeLiteral:
		if err := ctx.checkSpecUnits(a.Spec, a); err != nil {
			return nil, nil, err
		}
		t, err := ctx.state.FromSpec(a.Spec, nil)
		if err != nil {
			return nil, nil, located(err, a)
		}
		return typesystem.TypeValueOf(t), nil, nil
	case *ast.UnitLiteral:
		if err := ctx.env.Units.Check(a.Unit); err != nil {
			return nil, nil, typeError(diagnostics.ErrT005, a, diagnostics.MsgUnit, err.Error())
		}
		return typesystem.UnitValueOf(typesystem.FixedUnit(a.Unit)), nil, nil
	default:
		t, err := ctx.infer(a, table)
		return t, nil, err
	}
}

// checkSpecUnits validates the units written inside a type literal.
func (ctx *InferenceContext) checkSpecUnits(spec typesystem.TypeSpec, at ast.Expression) error {
	switch s := spec.(type) {
	case typesystem.NumberSpec:
		if err := ctx.env.Units.Check(s.Unit); err != nil {
			return typeError(diagnostics.ErrT005, at, diagnostics.MsgUnit, err.Error())
		}
	case typesystem.ArraySpec:
		return ctx.checkSpecUnits(s.Elem, at)
	case typesystem.RecordSpec:
		for _, f := range s.Fields {
			if err := ctx.checkSpecUnits(f.Type, at); err != nil {
				return err
			}
		}
	case typesystem.NamedSpec:
		for _, arg := range s.Args {
			if err := ctx.checkSpecUnits(arg, at); err != nil {
				return err
			}
		}
	}
	return nil
}

// inferLambdaBody checks a lambda body with its parameters in scope. The
// overload has already unified the parameter variables with what the
// function passes.
func (ctx *InferenceContext) inferLambdaBody(l pendingLambda, table *symbols.SymbolTable) error {
	scope := symbols.NewEnclosedSymbolTable(table, symbols.ScopeLambda)
	for i, p := range l.node.Parameters {
		ctx.record(p, l.params[i])
		if p.IsWildcard() {
			continue
		}
		if scope.IsDefinedLocally(p.Value) {
			return invalid(p, "parameter %s is declared twice", p.Value)
		}
		scope.Define(p.Value, l.params[i], p)
	}
	body, err := ctx.infer(l.node.Body, scope)
	if err != nil {
		return err
	}
	return ctx.unify(l.result, body, l.node.Body)
}
