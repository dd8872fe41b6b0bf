package functions

import (
	"github.com/funvibe/colexpr/internal/config"
	"github.com/funvibe/colexpr/internal/numeric"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/units"
	"github.com/funvibe/colexpr/internal/value"
)

func unitBuiltins() []*Definition {
	return []*Definition{
		define("units", config.AsUnitFuncName, &FunctionType{
			Signature:   "as(unit{v}, Number{u}) -> Number{v}",
			Description: "Converts a number to a compatible unit: as(unit{km}, 1500{m}) is 1.5{km}",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				target := s.NewUnitVar()
				return params(typesystem.UnitValueOf(target), s.NewNumVar()), typesystem.NumOf(target)
			},
			Instantiate: instantiateAs,
		}),
		define("units", "strip_units", &FunctionType{
			Signature:   "strip_units(Number{u}) -> Number",
			Description: "Drops the unit, keeping the number as written",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				return params(s.NewNumVar()), unitlessExp()
			},
			Instantiate: fixed(func(args []value.Value) (value.Value, error) { return args[0], nil }),
		}),
		define("units", "with_units", &FunctionType{
			Signature:   "with_units(unit{v}, Number) -> Number{v}",
			Description: "Attaches a unit to a unitless number",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				target := s.NewUnitVar()
				return params(typesystem.UnitValueOf(target), unitlessExp()), typesystem.NumOf(target)
			},
			Instantiate: fixed(func(args []value.Value) (value.Value, error) { return args[1], nil }),
		}),
	}
}

// instantiateAs captures the scale factor of this call site.
func instantiateAs(ctx InstanceContext) (Instance, error) {
	to := *ctx.Args[0].UnitValue
	from := ctx.Args[1].Data.(typesystem.NumberType).Unit
	reg := ctx.Units
	if reg == nil {
		reg = units.DefaultRegistry()
	}
	factor, ok := from.CanScaleTo(to, reg)
	if !ok {
		return nil, &UnitError{From: from, To: to}
	}
	return func(args []value.Value) (value.Value, error) {
		n, err := numeric.ScaleBy(numberArg(args[1]), factor)
		if err != nil {
			return nil, arithmeticError(err)
		}
		return number(n), nil
	}, nil
}
