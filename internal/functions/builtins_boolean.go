package functions

import (
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/value"
)

func booleanBuiltins() []*Definition {
	return []*Definition{
		define("boolean", "not", &FunctionType{
			Signature:   "not(Boolean) -> Boolean",
			Description: "Negates a condition",
			Types:       signature(typesystem.Boolean, typesystem.Boolean),
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				return value.NewBoolean(!boolArg(args[0])), nil
			}),
		}),
		define("boolean", "xor", &FunctionType{
			Signature:   "xor(Boolean, Boolean) -> Boolean",
			Description: "True when exactly one of the two conditions holds",
			Types:       signature(typesystem.Boolean, typesystem.Boolean, typesystem.Boolean),
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				return value.NewBoolean(boolArg(args[0]) != boolArg(args[1])), nil
			}),
		}),
	}
}
