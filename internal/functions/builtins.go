package functions

import (
	"fmt"
	"math/big"

	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/numeric"
	"github.com/funvibe/colexpr/internal/token"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/units"
	"github.com/funvibe/colexpr/internal/value"
)

// Builtins returns a registry holding the whole catalogue.
func Builtins() *Registry {
	r := NewRegistry()
	groups := [][]*Definition{
		booleanBuiltins(),
		mathBuiltins(),
		unitBuiltins(),
		listBuiltins(),
		textBuiltins(),
		optionalBuiltins(),
		conversionBuiltins(),
		temporalBuiltins(),
	}
	for _, group := range groups {
		for _, d := range group {
			if err := r.Register(d); err != nil {
				panic(err)
			}
		}
	}
	return r
}

func define(group, name string, overloads ...*FunctionType) *Definition {
	return &Definition{Name: name, Group: group, Overloads: overloads}
}

// fixed instantiates to the same implementation at every call site.
func fixed(fn Instance) func(InstanceContext) (Instance, error) {
	return func(InstanceContext) (Instance, error) { return fn, nil }
}

// signature builds the Types function of an overload whose parameter and
// result types need no shared variables.
func signature(result typesystem.DataType, params ...typesystem.DataType) func(*typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
	return func(*typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
		ps := make([]typesystem.TypeExp, len(params))
		for i, p := range params {
			ps[i] = typesystem.FromDataType(p)
		}
		return ps, typesystem.FromDataType(result)
	}
}

func params(ts ...typesystem.TypeExp) []typesystem.TypeExp { return ts }

var (
	textExp    = typesystem.Prim(typesystem.Text)
	booleanExp = typesystem.Prim(typesystem.Boolean)
)

func unitlessExp() *typesystem.NumExp { return typesystem.Num(units.One()) }

func userError(code diagnostics.ErrorCode, key string, args ...any) error {
	return diagnostics.NewError(code, token.Token{}, key, args...)
}

func arithmeticError(err error) error {
	return userError(diagnostics.ErrR004, diagnostics.MsgArithmetic, err.Error())
}

func numberArg(v value.Value) numeric.Number { return v.(value.Number).V }
func textArg(v value.Value) string           { return v.(value.Text).V }
func boolArg(v value.Value) bool             { return v.(value.Boolean).V }
func listArg(v value.Value) value.List       { return v.(value.List) }
func lambdaArg(v value.Value) value.Lambda   { return v.(value.Lambda) }

// integerArg reads an integral number that fits an int.
func integerArg(v value.Value, what string) (int, error) {
	n := numberArg(v)
	i, ok := n.Int64()
	if !ok || int64(int(i)) != i {
		return 0, userError(diagnostics.ErrR004, diagnostics.MsgArithmetic, fmt.Sprintf("%s must be an integer, got %s", what, n))
	}
	return int(i), nil
}

func number(n numeric.Number) value.Value { return value.NewNumber(n) }

func ratNumber(r *big.Rat) (value.Value, error) {
	n, err := numeric.FromRat(r)
	if err != nil {
		return nil, arithmeticError(err)
	}
	return value.NewNumber(n), nil
}

// predicate calls a one-argument Boolean lambda.
func predicate(fn value.Lambda, v value.Value) (bool, error) {
	out, err := fn.Call(v)
	if err != nil {
		return false, err
	}
	return boolArg(out), nil
}
