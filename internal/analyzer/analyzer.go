// Package analyzer type-checks expressions.
//
// Check walks the tree bottom-up inside one fresh TypeState: leaves produce
// type expressions, compound nodes unify their children with the shape their
// semantics require, and calls pick their overload. Once the walk succeeds
// every node type is resolved to a concrete DataType and every call site is
// instantiated. Nothing from one Check call is shared with another.
package analyzer

import (
	"sort"

	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/functions"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/units"
)

// ColumnTypes resolves @column references.
type ColumnTypes interface {
	ColumnType(name string) (typesystem.DataType, bool)
}

// ColumnMap is a fixed set of column types.
type ColumnMap map[string]typesystem.DataType

func (m ColumnMap) ColumnType(name string) (typesystem.DataType, bool) {
	t, ok := m[name]
	return t, ok
}

// Environment is everything an expression can refer to.
type Environment struct {
	Columns   ColumnTypes
	Types     *typesystem.TypeManager
	Units     *units.Registry
	Functions *functions.Registry
}

// NewEnvironment returns an environment with the built-in units, types and
// functions and the given columns.
func NewEnvironment(columns ColumnTypes) *Environment {
	return &Environment{
		Columns:   columns,
		Types:     typesystem.NewTypeManager(),
		Units:     units.DefaultRegistry(),
		Functions: functions.Builtins(),
	}
}

func (env *Environment) withDefaults() *Environment {
	e := *env
	if e.Columns == nil {
		e.Columns = ColumnMap{}
	}
	if e.Types == nil {
		e.Types = typesystem.NewTypeManager()
	}
	if e.Units == nil {
		e.Units = units.DefaultRegistry()
	}
	if e.Functions == nil {
		e.Functions = functions.Builtins()
	}
	return &e
}

// Call is a checked call site.
type Call struct {
	Definition *functions.Definition
	Overload   *functions.FunctionType
	Instance   functions.Instance
	Args       []typesystem.ArgType
	Return     typesystem.DataType
}

// Checked is a type-checked expression, ready for evaluation.
type Checked struct {
	Root ast.Expression
	Env  *Environment

	types   map[ast.Expression]typesystem.DataType
	calls   map[*ast.CallExpression]*Call
	refs    map[*ast.Identifier]*ast.Identifier
	aliases map[*ast.Identifier]*ast.Identifier
	columns []string
	entire  []string
}

// Type returns the type of the whole expression.
func (c *Checked) Type() typesystem.DataType { return c.types[c.Root] }

// TypeOf returns the resolved type of a node. Lambdas, type literals and unit
// literals have none.
func (c *Checked) TypeOf(e ast.Expression) (typesystem.DataType, bool) {
	t, ok := c.types[e]
	return t, ok
}

// Call returns the checked call site of ce.
func (c *Checked) Call(ce *ast.CallExpression) (*Call, bool) {
	call, ok := c.calls[ce]
	return call, ok
}

// Binding returns the identifier that bound the name a reference uses. The
// result is already a binding key.
func (c *Checked) Binding(ref *ast.Identifier) (*ast.Identifier, bool) {
	def, ok := c.refs[ref]
	return def, ok
}

// BindingKey maps a binding identifier to the key its value is stored under.
// Alternatives of one match clause bind the same names; all of them store
// under the first alternative's identifiers.
func (c *Checked) BindingKey(def *ast.Identifier) *ast.Identifier {
	if k, ok := c.aliases[def]; ok {
		return k
	}
	return def
}

// Columns returns the columns read cell by cell, sorted.
func (c *Checked) Columns() []string { return c.columns }

// EntireColumns returns the columns read as a whole with @entire, sorted.
func (c *Checked) EntireColumns() []string { return c.entire }

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
