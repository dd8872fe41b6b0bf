package functions

import (
	"github.com/funvibe/colexpr/internal/config"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/value"
)

func optionalBuiltins() []*Definition {
	return []*Definition{
		define("optional", "get_or", &FunctionType{
			Signature:   "get_or(Optional(a), a) -> a",
			Description: "The present value, or the fallback",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				a := s.NewVar()
				return params(typesystem.TaggedOf(config.OptionalTypeName, a), a), a
			},
			Instantiate: func(ctx InstanceContext) (Instance, error) {
				is, err := presentTag(ctx)
				if err != nil {
					return nil, err
				}
				return func(args []value.Value) (value.Value, error) {
					if t := args[0].(value.Tagged); t.Index == is {
						return t.Inner, nil
					}
					return args[1], nil
				}, nil
			},
		}),
		define("optional", "is_present", &FunctionType{
			Signature:   "is_present(Optional(a)) -> Boolean",
			Description: "True when the optional holds a value",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				return params(typesystem.TaggedOf(config.OptionalTypeName, s.NewVar())), booleanExp
			},
			Instantiate: func(ctx InstanceContext) (Instance, error) {
				is, err := presentTag(ctx)
				if err != nil {
					return nil, err
				}
				return func(args []value.Value) (value.Value, error) {
					return value.NewBoolean(args[0].(value.Tagged).Index == is), nil
				}, nil
			},
		}),
	}
}

// presentTag finds the index of the tag carrying a value in the first
// argument's Optional type.
func presentTag(ctx InstanceContext) (int, error) {
	t, ok := ctx.Args[0].Data.(typesystem.TaggedType)
	if !ok {
		return 0, diagnostics.NewInternalError("expected an %s argument, got %s", config.OptionalTypeName, ctx.Args[0])
	}
	i := t.TagIndex(config.OptionalSomeTag)
	if i < 0 {
		return 0, diagnostics.NewInternalError("%s has no tag %s", t, config.OptionalSomeTag)
	}
	return i, nil
}
