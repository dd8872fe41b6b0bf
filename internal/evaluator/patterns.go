package evaluator

import (
	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/value"
)

// matchPattern reports whether v has the shape of p, binding names in env as
// it goes. Bindings made before a failure are left behind; callers discard
// env when the match fails.
func (e *Evaluator) matchPattern(p ast.Expression, v value.Value, env *Environment) (bool, error) {
	switch pat := p.(type) {
	case *ast.Identifier:
		if !pat.IsWildcard() {
			env.Set(e.checked.BindingKey(pat), v)
		}
		return true, nil

	case *ast.TagExpression:
		tagged, ok := v.(value.Tagged)
		if !ok {
			return false, diagnostics.NewInternalError("tag pattern against %s", v.Kind())
		}
		idx, err := e.tagIndex(pat)
		if err != nil {
			return false, err
		}
		if tagged.Index != idx {
			return false, nil
		}
		if pat.Inner == nil {
			return true, nil
		}
		if tagged.Inner == nil {
			return false, diagnostics.NewInternalError("tag %s:%s has no payload", pat.TypeName, pat.Tag)
		}
		return e.matchPattern(pat.Inner, tagged.Inner, env)

	case *ast.RecordLiteral:
		rec, ok := v.(value.Record)
		if !ok {
			return false, diagnostics.NewInternalError("record pattern against %s", v.Kind())
		}
		for i, name := range pat.Names {
			field, ok := rec.Field(name)
			if !ok {
				return false, diagnostics.NewInternalError("record has no field %s", name)
			}
			matched, err := e.matchPattern(pat.Values[i], field, env)
			if err != nil || !matched {
				return matched, err
			}
		}
		return true, nil

	case *ast.ArrayLiteral:
		list, ok := v.(value.List)
		if !ok {
			return false, diagnostics.NewInternalError("array pattern against %s", v.Kind())
		}
		if list.Size() != len(pat.Elements) {
			return false, nil
		}
		for i, el := range pat.Elements {
			item, err := list.Get(i)
			if err != nil {
				return false, located(err, pat)
			}
			matched, err := e.matchPattern(el, item, env)
			if err != nil || !matched {
				return matched, err
			}
		}
		return true, nil
	}

	// Any other expression is a value pattern, evaluated outside the
	// bindings of the pattern itself.
	want, err := e.Eval(p, env.outer)
	if err != nil {
		return false, err
	}
	eq, err := value.Equal(want, v)
	if err != nil {
		return false, located(err, p)
	}
	return eq, nil
}
