// Package evaluator runs type-checked expressions one row at a time.
//
// An Evaluator is immutable once built and may be shared by goroutines that
// evaluate different rows. The only state that changes across rows lives in
// call-site instances, such as the format caches of temporal parsers, and
// those synchronize themselves.
package evaluator

import (
	"errors"

	"github.com/funvibe/colexpr/internal/analyzer"
	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/rowsource"
	"github.com/funvibe/colexpr/internal/value"
)

type Evaluator struct {
	checked *analyzer.Checked
	source  rowsource.Source
}

// New returns an evaluator of checked reading columns from source.
func New(checked *analyzer.Checked, source rowsource.Source) *Evaluator {
	return &Evaluator{checked: checked, source: source}
}

// Evaluate computes the expression for one row. Errors are user errors
// located at the failing node, or internal errors.
func (e *Evaluator) Evaluate(row int) (value.Value, error) {
	if e.checked == nil || e.checked.Root == nil {
		return nil, diagnostics.NewInternalError("nothing to evaluate")
	}
	return e.Eval(e.checked.Root, NewEnvironment(row))
}

// Eval evaluates one node.
func (e *Evaluator) Eval(node ast.Expression, env *Environment) (value.Value, error) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		return value.NewNumber(n.Value), nil
	case *ast.StringLiteral:
		return value.NewText(n.Value), nil
	case *ast.BooleanLiteral:
		return value.NewBoolean(n.Value), nil
	case *ast.TemporalLiteral:
		return n.Value, nil
	case *ast.ColumnReference:
		return e.evalColumnReference(n, env)
	case *ast.Identifier:
		return e.evalIdentifier(n, env)
	case *ast.CallExpression:
		return e.evalCallExpression(n, env)
	case *ast.TagExpression:
		return e.evalTagExpression(n, env)
	case *ast.ArrayLiteral:
		return e.evalArrayLiteral(n, env)
	case *ast.RecordLiteral:
		return e.evalRecordLiteral(n, env)
	case *ast.FieldAccess:
		return e.evalFieldAccess(n, env)
	case *ast.PrefixExpression:
		return e.evalPrefixExpression(n, env)
	case *ast.OperatorChain:
		return e.evalOperatorChain(n, env)
	case *ast.IfExpression:
		return e.evalIfExpression(n, env)
	case *ast.MatchExpression:
		return e.evalMatchExpression(n, env)
	case *ast.DefineExpression:
		return e.evalDefineExpression(n, env)
	}
	return nil, diagnostics.NewInternalError("cannot evaluate %T", node)
}

// located positions an error raised while evaluating node. User errors keep
// an existing location; anything that is neither a user nor an internal
// error becomes an internal error.
func located(err error, node ast.Expression) error {
	if err == nil {
		return nil
	}
	var internal *diagnostics.InternalError
	if errors.As(err, &internal) {
		return err
	}
	if de, ok := diagnostics.AsUserError(err); ok {
		return de.At(node.GetToken())
	}
	return &diagnostics.InternalError{Message: "evaluation failed", Cause: err}
}

func runtimeError(code diagnostics.ErrorCode, node ast.Expression, key string, args ...any) error {
	return diagnostics.NewError(code, node.GetToken(), key, args...)
}

func arithmeticError(err error, node ast.Expression) error {
	return runtimeError(diagnostics.ErrR004, node, diagnostics.MsgArithmetic, err.Error())
}

func asBool(v value.Value, node ast.Expression) (bool, error) {
	b, ok := v.(value.Boolean)
	if !ok {
		return false, diagnostics.NewInternalError("expected a Boolean at %d:%d, got %s", node.GetToken().Line, node.GetToken().Column, v.Kind())
	}
	return b.V, nil
}
