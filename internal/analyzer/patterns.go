package analyzer

import (
	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/symbols"
	"github.com/funvibe/colexpr/internal/typesystem"
)

// checkPattern unifies a pattern with the type t of the value it matches and
// binds its names in scope. Identifiers bind; "_" matches anything; tags,
// records and arrays destructure; any other expression is a value compared
// for equality, checked in the scope enclosing the pattern.
func (ctx *InferenceContext) checkPattern(p ast.Expression, t typesystem.TypeExp, scope *symbols.SymbolTable) error {
	switch p := p.(type) {
	case *ast.Identifier:
		ctx.record(p, t)
		if p.IsWildcard() {
			return nil
		}
		if scope.IsDefinedLocally(p.Value) {
			return invalid(p, "%s is bound twice in one pattern", p.Value)
		}
		scope.Define(p.Value, t, p)
		return nil

	case *ast.TagExpression:
		tagged, inners, err := ctx.freshTag(p)
		if err != nil {
			return err
		}
		if err := ctx.unify(t, tagged, p); err != nil {
			return err
		}
		ctx.record(p, tagged)
		inner := inners[ctx.tagIndex(p)]
		switch {
		case p.Inner == nil:
			return nil
		case inner == nil:
			return invalid(p, "%s:%s carries no value", p.TypeName, p.Tag)
		}
		return ctx.checkPattern(p.Inner, inner, scope)

	case *ast.RecordLiteral:
		rec, err := ctx.knownRecord(t, p)
		if err != nil {
			return err
		}
		ctx.record(p, t)
		for i, name := range p.Names {
			idx := -1
			for j, n := range rec.Names {
				if n == name {
					idx = j
					break
				}
			}
			if idx < 0 {
				return typeError(diagnostics.ErrT003, p, diagnostics.MsgUnknownField, ctx.state.Format(rec), name)
			}
			if err := ctx.checkPattern(p.Values[i], rec.Fields[idx], scope); err != nil {
				return err
			}
		}
		return nil

	case *ast.ArrayLiteral:
		elem := ctx.state.NewVar()
		if err := ctx.unify(t, typesystem.ArrayOf(elem), p); err != nil {
			return err
		}
		ctx.record(p, t)
		for _, e := range p.Elements {
			if err := ctx.checkPattern(e, elem, scope); err != nil {
				return err
			}
		}
		return nil
	}

	outer := scope.Outer()
	if outer == nil {
		outer = scope
	}
	vt, err := ctx.infer(p, outer)
	if err != nil {
		return err
	}
	return ctx.unify(t, vt, p)
}
