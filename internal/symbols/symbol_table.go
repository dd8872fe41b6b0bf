// Package symbols tracks the names bound by define, match and lambda
// parameters while an expression is checked.
package symbols

import (
	"sort"

	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/typesystem"
)

type ScopeType int

const (
	ScopeGlobal ScopeType = iota // columns and functions only; binds nothing
	ScopeDefine
	ScopeClause // one alternative of a match clause
	ScopeLambda
)

type Symbol struct {
	Name string
	Type typesystem.TypeExp
	// DefinitionNode is the identifier that introduced the name. References
	// resolve to it, and the evaluator keys bound values by it.
	DefinitionNode *ast.Identifier
}

type SymbolTable struct {
	store     map[string]Symbol
	outer     *SymbolTable
	scopeType ScopeType
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{store: make(map[string]Symbol), scopeType: ScopeGlobal}
}

func NewEnclosedSymbolTable(outer *SymbolTable, scopeType ScopeType) *SymbolTable {
	st := NewSymbolTable()
	st.outer = outer
	st.scopeType = scopeType
	return st
}

// Outer returns the enclosing scope, nil for the global one.
func (s *SymbolTable) Outer() *SymbolTable { return s.outer }

func (s *SymbolTable) ScopeType() ScopeType { return s.scopeType }

// IsLambdaScope reports whether s is, or sits inside, a lambda body.
func (s *SymbolTable) IsLambdaScope() bool {
	for cur := s; cur != nil; cur = cur.outer {
		if cur.scopeType == ScopeLambda {
			return true
		}
	}
	return false
}

// Define binds name in this scope, shadowing outer bindings.
func (s *SymbolTable) Define(name string, t typesystem.TypeExp, node *ast.Identifier) {
	s.store[name] = Symbol{Name: name, Type: t, DefinitionNode: node}
}

// IsDefinedLocally reports whether name is bound in this very scope.
func (s *SymbolTable) IsDefinedLocally(name string) bool {
	_, ok := s.store[name]
	return ok
}

// Find looks name up from this scope outwards.
func (s *SymbolTable) Find(name string) (Symbol, bool) {
	sym, ok := s.store[name]
	if !ok && s.outer != nil {
		return s.outer.Find(name)
	}
	return sym, ok
}

// LocalNames returns the names bound in this scope, sorted.
func (s *SymbolTable) LocalNames() []string {
	names := make([]string, 0, len(s.store))
	for n := range s.store {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Local returns the binding of name in this scope only.
func (s *SymbolTable) Local(name string) (Symbol, bool) {
	sym, ok := s.store[name]
	return sym, ok
}
