package analyzer

import (
	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/functions"
	"github.com/funvibe/colexpr/internal/symbols"
	"github.com/funvibe/colexpr/internal/typesystem"
)

// InferenceContext holds the state of one Check call.
type InferenceContext struct {
	env   *Environment
	state *typesystem.TypeState

	// TypeMap holds the type expression of every value node. order keeps
	// insertion order so that resolution reports the innermost node first.
	TypeMap map[ast.Expression]typesystem.TypeExp
	order   []ast.Expression

	calls     map[*ast.CallExpression]*functions.Resolution
	callOrder []*ast.CallExpression

	// refs maps identifier references to the identifier that bound them.
	refs    map[*ast.Identifier]*ast.Identifier
	aliases map[*ast.Identifier]*ast.Identifier

	// deferred checks run once every type is resolved.
	deferred []deferredCheck

	columns map[string]bool
	entire  map[string]bool
}

func newInferenceContext(env *Environment) *InferenceContext {
	return &InferenceContext{
		env:     env,
		state:   typesystem.NewTypeState(env.Types),
		TypeMap: make(map[ast.Expression]typesystem.TypeExp),
		calls:   make(map[*ast.CallExpression]*functions.Resolution),
		refs:    make(map[*ast.Identifier]*ast.Identifier),
		aliases: make(map[*ast.Identifier]*ast.Identifier),
		columns: make(map[string]bool),
		entire:  make(map[string]bool),
	}
}

// Check type-checks expr against env. Errors are user errors with a code
// and location, or internal errors.
func Check(expr ast.Expression, env *Environment) (*Checked, error) {
	if expr == nil {
		return nil, diagnostics.NewInternalError("nothing to check")
	}
	if env == nil {
		env = NewEnvironment(nil)
	}
	ctx := newInferenceContext(env.withDefaults())
	if _, err := ctx.infer(expr, symbols.NewSymbolTable()); err != nil {
		return nil, err
	}
	return ctx.finish(expr)
}

func (ctx *InferenceContext) record(node ast.Expression, t typesystem.TypeExp) {
	if _, seen := ctx.TypeMap[node]; !seen {
		ctx.order = append(ctx.order, node)
	}
	ctx.TypeMap[node] = t
}

func (ctx *InferenceContext) unify(expected, actual typesystem.TypeExp, at ast.Expression) error {
	return located(ctx.state.Unify(expected, actual), at)
}

// infer computes the type of a value node and records it.
func (ctx *InferenceContext) infer(node ast.Expression, table *symbols.SymbolTable) (typesystem.TypeExp, error) {
	var (
		t   typesystem.TypeExp
		err error
	)
	switch n := node.(type) {
	case *ast.NumberLiteral:
		t, err = ctx.inferNumberLiteral(n)
	case *ast.StringLiteral:
		t = typesystem.Prim(typesystem.Text)
	case *ast.BooleanLiteral:
		t = typesystem.Prim(typesystem.Boolean)
	case *ast.TemporalLiteral:
		t = typesystem.Prim(typesystem.Temporal(n.Value.TKind))
	case *ast.ColumnReference:
		t, err = ctx.inferColumnReference(n)
	case *ast.Identifier:
		t, err = ctx.inferIdentifier(n, table)
	case *ast.CallExpression:
		t, err = ctx.inferCallExpression(n, table)
	case *ast.TagExpression:
		t, err = ctx.inferTagExpression(n, table)
	case *ast.ArrayLiteral:
		t, err = ctx.inferArrayLiteral(n, table)
	case *ast.RecordLiteral:
		t, err = ctx.inferRecordLiteral(n, table)
	case *ast.FieldAccess:
		t, err = ctx.inferFieldAccess(n, table)
	case *ast.PrefixExpression:
		t, err = ctx.inferPrefixExpression(n, table)
	case *ast.OperatorChain:
		t, err = ctx.inferOperatorChain(n, table)
	case *ast.IfExpression:
		t, err = ctx.inferIfExpression(n, table)
	case *ast.MatchExpression:
		t, err = ctx.inferMatchExpression(n, table)
	case *ast.DefineExpression:
		t, err = ctx.inferDefineExpression(n, table)
	case *ast.LambdaExpression:
		return nil, invalid(n, "a lambda can only be passed to a function")
	case *ast.TypeLiteral:
		return nil, invalid(n, "a type literal can only be passed to a function")
	case *ast.UnitLiteral:
		return nil, invalid(n, "a unit literal can only be passed to a function")
	default:
		return nil, diagnostics.NewInternalError("unknown node %T", node)
	}
	if err != nil {
		return nil, err
	}
	ctx.record(node, t)
	return t, nil
}

func (ctx *InferenceContext) inferNumberLiteral(n *ast.NumberLiteral) (typesystem.TypeExp, error) {
	if err := ctx.env.Units.Check(n.Unit); err != nil {
		return nil, typeError(diagnostics.ErrT005, n, diagnostics.MsgUnit, err.Error())
	}
	return typesystem.Num(n.Unit), nil
}

func (ctx *InferenceContext) inferColumnReference(n *ast.ColumnReference) (typesystem.TypeExp, error) {
	dt, ok := ctx.env.Columns.ColumnType(n.Name)
	if !ok {
		return nil, typeError(diagnostics.ErrT003, n, diagnostics.MsgUnknownColumn, n.Name)
	}
	if n.Entire {
		ctx.entire[n.Name] = true
		return typesystem.FromDataType(typesystem.Array(dt)), nil
	}
	ctx.columns[n.Name] = true
	return typesystem.FromDataType(dt), nil
}

func (ctx *InferenceContext) inferIdentifier(n *ast.Identifier, table *symbols.SymbolTable) (typesystem.TypeExp, error) {
	if n.IsWildcard() {
		return nil, invalid(n, "_ can only appear in a pattern")
	}
	sym, ok := table.Find(n.Value)
	if !ok {
		return nil, typeError(diagnostics.ErrT003, n, diagnostics.MsgUnknownName, n.Value)
	}
	ctx.refs[n] = sym.DefinitionNode
	return sym.Type, nil
}

func (ctx *InferenceContext) inferTagExpression(n *ast.TagExpression, table *symbols.SymbolTable) (typesystem.TypeExp, error) {
	tagged, inners, err := ctx.freshTag(n)
	if err != nil {
		return nil, err
	}
	inner := inners[ctx.tagIndex(n)]
	switch {
	case inner == nil && n.Inner != nil:
		return nil, invalid(n, "%s:%s carries no value", n.TypeName, n.Tag)
	case inner != nil && n.Inner == nil:
		return nil, invalid(n, "%s:%s needs a value", n.TypeName, n.Tag)
	case inner != nil:
		it, err := ctx.infer(n.Inner, table)
		if err != nil {
			return nil, err
		}
		if err := ctx.unify(inner, it, n.Inner); err != nil {
			return nil, err
		}
	}
	return tagged, nil
}

// freshTag instantiates the tagged type named by n and checks that the tag
// exists.
func (ctx *InferenceContext) freshTag(n *ast.TagExpression) (*typesystem.ConsExp, []typesystem.TypeExp, error) {
	tagged, inners, err := ctx.state.FreshTagged(n.TypeName)
	if err != nil {
		return nil, nil, located(err, n)
	}
	if ctx.tagIndex(n) < 0 {
		return nil, nil, typeError(diagnostics.ErrT003, n, diagnostics.MsgUnknownTag, n.TypeName, n.Tag)
	}
	return tagged, inners, nil
}

func (ctx *InferenceContext) tagIndex(n *ast.TagExpression) int {
	decl, ok := ctx.env.Types.Lookup(n.TypeName)
	if !ok {
		return -1
	}
	return decl.TagIndex(n.Tag)
}

func (ctx *InferenceContext) inferArrayLiteral(n *ast.ArrayLiteral, table *symbols.SymbolTable) (typesystem.TypeExp, error) {
	elem := typesystem.TypeExp(ctx.state.NewVar())
	for _, e := range n.Elements {
		t, err := ctx.infer(e, table)
		if err != nil {
			return nil, err
		}
		if err := ctx.unify(elem, t, e); err != nil {
			return nil, err
		}
	}
	return typesystem.ArrayOf(elem), nil
}

func (ctx *InferenceContext) inferRecordLiteral(n *ast.RecordLiteral, table *symbols.SymbolTable) (typesystem.TypeExp, error) {
	fields := make([]typesystem.TypeExp, len(n.Values))
	for i, v := range n.Values {
		t, err := ctx.infer(v, table)
		if err != nil {
			return nil, err
		}
		fields[i] = t
	}
	return &typesystem.RecordExp{Names: n.Names, Fields: fields}, nil
}

func (ctx *InferenceContext) inferFieldAccess(n *ast.FieldAccess, table *symbols.SymbolTable) (typesystem.TypeExp, error) {
	lt, err := ctx.infer(n.Left, table)
	if err != nil {
		return nil, err
	}
	rec, err := ctx.knownRecord(lt, n.Left)
	if err != nil {
		return nil, err
	}
	for i, name := range rec.Names {
		if name == n.Field {
			return rec.Fields[i], nil
		}
	}
	return nil, typeError(diagnostics.ErrT003, n, diagnostics.MsgUnknownField, ctx.state.Format(rec), n.Field)
}

// knownRecord returns t as a record. Field access needs the record's layout,
// so t may not be an unbound variable.
func (ctx *InferenceContext) knownRecord(t typesystem.TypeExp, at ast.Expression) (*typesystem.RecordExp, error) {
	switch p := ctx.state.Prune(t).(type) {
	case *typesystem.RecordExp:
		return p, nil
	case *typesystem.VarExp:
		return nil, typeError(diagnostics.ErrT002, at, diagnostics.MsgAmbiguous, ctx.state.Format(p))
	default:
		return nil, typeError(diagnostics.ErrT001, at, diagnostics.MsgMismatch, "a record", ctx.state.Format(p))
	}
}

func (ctx *InferenceContext) inferPrefixExpression(n *ast.PrefixExpression, table *symbols.SymbolTable) (typesystem.TypeExp, error) {
	rt, err := ctx.infer(n.Right, table)
	if err != nil {
		return nil, err
	}
	if n.Operator != "-" {
		return nil, diagnostics.NewInternalError("unknown prefix operator %s", n.Operator)
	}
	num := ctx.state.NewNumVar()
	if err := ctx.unify(num, rt, n.Right); err != nil {
		return nil, err
	}
	return num, nil
}
