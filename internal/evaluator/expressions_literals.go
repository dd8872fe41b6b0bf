package evaluator

import (
	"errors"

	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/rowsource"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/value"
)

func (e *Evaluator) evalColumnReference(n *ast.ColumnReference, env *Environment) (value.Value, error) {
	if e.source == nil {
		return nil, diagnostics.NewInternalError("no row source for @%s", n.Name)
	}
	if n.Entire {
		return &value.FuncList{N: e.source.RowCount(), At: func(i int) (value.Value, error) {
			return e.readCell(n, i)
		}}, nil
	}
	return e.readCell(n, env.Row())
}

func (e *Evaluator) readCell(n *ast.ColumnReference, row int) (value.Value, error) {
	v, err := e.source.Value(n.Name, row)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, rowsource.ErrNotReady):
		return nil, runtimeError(diagnostics.ErrR005, n, diagnostics.MsgNotReady, n.Name)
	}
	return nil, &diagnostics.InternalError{Message: "reading @" + n.Name, Cause: err}
}

func (e *Evaluator) evalIdentifier(n *ast.Identifier, env *Environment) (value.Value, error) {
	key, ok := e.checked.Binding(n)
	if !ok {
		return nil, diagnostics.NewInternalError("unbound identifier %s at %d:%d", n.Value, n.Token.Line, n.Token.Column)
	}
	v, ok := env.Get(key)
	if !ok {
		return nil, diagnostics.NewInternalError("no value for %s at %d:%d", n.Value, n.Token.Line, n.Token.Column)
	}
	return v, nil
}

// tagIndex returns the position of a tag in the resolved type of node.
func (e *Evaluator) tagIndex(n *ast.TagExpression) (int, error) {
	t, ok := e.checked.TypeOf(n)
	if !ok {
		return 0, diagnostics.NewInternalError("tag %s:%s has no type", n.TypeName, n.Tag)
	}
	tt, ok := t.(typesystem.TaggedType)
	if !ok {
		return 0, diagnostics.NewInternalError("tag %s:%s has type %s", n.TypeName, n.Tag, t)
	}
	idx := tt.TagIndex(n.Tag)
	if idx < 0 {
		return 0, diagnostics.NewInternalError("type %s has no tag %s", tt, n.Tag)
	}
	return idx, nil
}

func (e *Evaluator) evalTagExpression(n *ast.TagExpression, env *Environment) (value.Value, error) {
	idx, err := e.tagIndex(n)
	if err != nil {
		return nil, err
	}
	tagged := value.Tagged{Index: idx}
	if n.Inner != nil {
		inner, err := e.Eval(n.Inner, env)
		if err != nil {
			return nil, err
		}
		tagged.Inner = inner
	}
	return tagged, nil
}

func (e *Evaluator) evalArrayLiteral(n *ast.ArrayLiteral, env *Environment) (value.Value, error) {
	items := make([]value.Value, len(n.Elements))
	for i, el := range n.Elements {
		v, err := e.Eval(el, env)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return value.NewList(items...), nil
}

func (e *Evaluator) evalRecordLiteral(n *ast.RecordLiteral, env *Environment) (value.Value, error) {
	values := make([]value.Value, len(n.Values))
	for i, el := range n.Values {
		v, err := e.Eval(el, env)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return value.Record{Names: n.Names, Values: values}, nil
}

func (e *Evaluator) evalFieldAccess(n *ast.FieldAccess, env *Environment) (value.Value, error) {
	left, err := e.Eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	rec, ok := left.(value.Record)
	if !ok {
		return nil, diagnostics.NewInternalError("field access on %s", left.Kind())
	}
	v, ok := rec.Field(n.Field)
	if !ok {
		return nil, diagnostics.NewInternalError("record has no field %s", n.Field)
	}
	return v, nil
}
