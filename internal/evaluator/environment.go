package evaluator

import (
	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/value"
)

// Environment holds the bindings of one evaluation, keyed by the identifier
// that bound each name. It is never shared between rows.
type Environment struct {
	store map[*ast.Identifier]value.Value
	outer *Environment
	row   int
}

func NewEnvironment(row int) *Environment {
	return &Environment{store: make(map[*ast.Identifier]value.Value), row: row}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment(outer.row)
	env.outer = outer
	return env
}

func (e *Environment) Get(key *ast.Identifier) (value.Value, bool) {
	v, ok := e.store[key]
	if !ok && e.outer != nil {
		return e.outer.Get(key)
	}
	return v, ok
}

func (e *Environment) Set(key *ast.Identifier, v value.Value) {
	e.store[key] = v
}

// Row is the row being evaluated.
func (e *Environment) Row() int { return e.row }
