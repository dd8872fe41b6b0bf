package analyzer

import (
	"errors"

	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/functions"
	"github.com/funvibe/colexpr/internal/typesystem"
)

// finish resolves every recorded type, runs the deferred checks and
// instantiates the call sites.
func (ctx *InferenceContext) finish(root ast.Expression) (*Checked, error) {
	c := &Checked{
		Root:    root,
		Env:     ctx.env,
		types:   make(map[ast.Expression]typesystem.DataType, len(ctx.order)),
		calls:   make(map[*ast.CallExpression]*Call, len(ctx.callOrder)),
		refs:    make(map[*ast.Identifier]*ast.Identifier, len(ctx.refs)),
		aliases: ctx.aliases,
		columns: sortedKeys(ctx.columns),
		entire:  sortedKeys(ctx.entire),
	}

	// sum([]) has nothing to fix its unit; a free unit is unitless.
	ctx.state.DefaultUnits()

	for _, node := range ctx.order {
		dt, err := ctx.resolve(ctx.TypeMap[node], node)
		if err != nil {
			return nil, err
		}
		c.types[node] = dt
	}

	for _, d := range ctx.deferred {
		dt, err := ctx.resolve(d.t, d.node)
		if err != nil {
			return nil, err
		}
		if err := checkDeferred(d, dt); err != nil {
			return nil, err
		}
	}

	for _, ce := range ctx.callOrder {
		call, err := ctx.instantiate(ce, c.types[ce])
		if err != nil {
			return nil, err
		}
		c.calls[ce] = call
	}

	for ref, def := range ctx.refs {
		c.refs[ref] = c.BindingKey(def)
	}
	return c, nil
}

func (ctx *InferenceContext) resolve(t typesystem.TypeExp, node ast.Expression) (typesystem.DataType, error) {
	dt, err := ctx.state.Resolve(t)
	if err == nil {
		return dt, nil
	}
	var amb *typesystem.AmbiguousError
	if _, isNum := ctx.state.Prune(t).(*typesystem.NumExp); isNum && !errors.As(err, &amb) {
		return nil, typeError(diagnostics.ErrT005, node, diagnostics.MsgUnit, err.Error())
	}
	return nil, located(err, node)
}

func checkDeferred(d deferredCheck, dt typesystem.DataType) error {
	switch d.kind {
	case checkConcatenable:
		switch dt.(type) {
		case typesystem.TextType, typesystem.ArrayType:
			return nil
		}
		return typeError(diagnostics.ErrT001, d.node, diagnostics.MsgMismatch, "Text or an array", dt.String())
	case checkComparable:
		if typesystem.IsComparable(dt) {
			return nil
		}
		return typeError(diagnostics.ErrT001, d.node, diagnostics.MsgMismatch, "a comparable type", dt.String())
	}
	return diagnostics.NewInternalError("unknown deferred check %d", d.kind)
}

// instantiate builds the runtime instance of a call site from the resolved
// types of its overload parameters.
func (ctx *InferenceContext) instantiate(ce *ast.CallExpression, ret typesystem.DataType) (*Call, error) {
	res := ctx.calls[ce]
	args := make([]typesystem.ArgType, len(res.Params))
	for i, p := range res.Params {
		at, err := ctx.state.ResolveArg(p)
		if err != nil {
			return nil, located(err, argumentNode(ce, i))
		}
		args[i] = at
	}
	if ret == nil {
		return nil, diagnostics.NewInternalError("call %s has no resolved type", ce.Function)
	}
	inst, err := res.Overload.Instantiate(functions.InstanceContext{
		Args:   args,
		Return: ret,
		Units:  ctx.env.Units,
		Types:  ctx.env.Types,
	})
	if err != nil {
		return nil, located(err, ce)
	}
	def, _ := ctx.env.Functions.Lookup(ce.Function)
	return &Call{Definition: def, Overload: res.Overload, Instance: inst, Args: args, Return: ret}, nil
}

func argumentNode(ce *ast.CallExpression, i int) ast.Expression {
	if i < len(ce.Arguments) {
		return ce.Arguments[i]
	}
	return ce
}
