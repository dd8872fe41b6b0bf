package analyzer

import (
	"strings"

	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/symbols"
	"github.com/funvibe/colexpr/internal/typesystem"
)

func (ctx *InferenceContext) inferIfExpression(n *ast.IfExpression, table *symbols.SymbolTable) (typesystem.TypeExp, error) {
	cond, err := ctx.infer(n.Condition, table)
	if err != nil {
		return nil, err
	}
	if err := ctx.unify(typesystem.Prim(typesystem.Boolean), cond, n.Condition); err != nil {
		return nil, err
	}
	then, err := ctx.infer(n.Consequence, table)
	if err != nil {
		return nil, err
	}
	otherwise, err := ctx.infer(n.Alternative, table)
	if err != nil {
		return nil, err
	}
	if err := ctx.unify(then, otherwise, n.Alternative); err != nil {
		return nil, err
	}
	return then, nil
}

// inferMatchExpression checks every clause against the subject type. The
// result of a clause sees the names bound by its first alternative; the
// other alternatives must bind the same names at the same types.
func (ctx *InferenceContext) inferMatchExpression(n *ast.MatchExpression, table *symbols.SymbolTable) (typesystem.TypeExp, error) {
	subject, err := ctx.infer(n.Subject, table)
	if err != nil {
		return nil, err
	}
	if len(n.Clauses) == 0 {
		return nil, invalid(n, "match needs at least one clause")
	}

	var result typesystem.TypeExp
	for _, clause := range n.Clauses {
		var first *symbols.SymbolTable
		for k, alt := range clause.Alternatives {
			scope := symbols.NewEnclosedSymbolTable(table, symbols.ScopeClause)
			if err := ctx.checkPattern(alt.Pattern, subject, scope); err != nil {
				return nil, err
			}
			if alt.Guard != nil {
				g, err := ctx.infer(alt.Guard, scope)
				if err != nil {
					return nil, err
				}
				if err := ctx.unify(typesystem.Prim(typesystem.Boolean), g, alt.Guard); err != nil {
					return nil, err
				}
			}
			if k == 0 {
				first = scope
				continue
			}
			if err := ctx.reconcile(first, scope, alt.Pattern); err != nil {
				return nil, err
			}
		}
		if first == nil {
			return nil, diagnostics.NewInternalError("match clause without alternatives")
		}

		r, err := ctx.infer(clause.Result, first)
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = r
			continue
		}
		if err := ctx.unify(result, r, clause.Result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// reconcile checks that an alternative binds what the first one binds and
// aliases its identifiers to the first alternative's.
func (ctx *InferenceContext) reconcile(first, other *symbols.SymbolTable, pattern ast.Expression) error {
	want, got := first.LocalNames(), other.LocalNames()
	if strings.Join(want, ",") != strings.Join(got, ",") {
		return typeError(diagnostics.ErrT006, pattern, diagnostics.MsgMismatchedBinds, strings.Join(want, ", "), strings.Join(got, ", "))
	}
	for _, name := range want {
		a, _ := first.Local(name)
		b, _ := other.Local(name)
		if err := ctx.unify(a.Type, b.Type, b.DefinitionNode); err != nil {
			return err
		}
		ctx.aliases[b.DefinitionNode] = a.DefinitionNode
	}
	return nil
}

// inferDefineExpression checks bindings in order, each in a scope that sees
// the previous ones.
func (ctx *InferenceContext) inferDefineExpression(n *ast.DefineExpression, table *symbols.SymbolTable) (typesystem.TypeExp, error) {
	scope := table
	for _, b := range n.Bindings {
		vt, err := ctx.infer(b.Value, scope)
		if err != nil {
			return nil, err
		}
		next := symbols.NewEnclosedSymbolTable(scope, symbols.ScopeDefine)
		if err := ctx.checkPattern(b.Pattern, vt, next); err != nil {
			return nil, err
		}
		scope = next
	}
	return ctx.infer(n.Body, scope)
}
