package functions

import (
	"github.com/funvibe/colexpr/internal/numeric"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/value"
)

// sameUnit is the shape of functions taking numbers of one unit u and
// returning Number{u}.
func sameUnit(arity int) func(*typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
	return func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
		n := s.NewNumVar()
		ps := make([]typesystem.TypeExp, arity)
		for i := range ps {
			ps[i] = n
		}
		return ps, n
	}
}

func numeric1(fn func(numeric.Number) numeric.Number) Instance {
	return func(args []value.Value) (value.Value, error) {
		return number(fn(numberArg(args[0]))), nil
	}
}

func mathBuiltins() []*Definition {
	return []*Definition{
		define("math", "abs", &FunctionType{
			Signature:   "abs(Number{u}) -> Number{u}",
			Description: "Absolute value",
			Types:       sameUnit(1),
			Instantiate: fixed(numeric1(numeric.Abs)),
		}),
		define("math", "round", &FunctionType{
			Signature:   "round(Number{u}) -> Number{u}",
			Description: "Rounds to the nearest integer, ties to even",
			Types:       sameUnit(1),
			Instantiate: fixed(numeric1(numeric.Round)),
		}),
		define("math", "round_decimal", &FunctionType{
			Signature:   "round_decimal(Number{u}, Number) -> Number{u}",
			Description: "Rounds to the given number of decimal places, ties to even",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				n := s.NewNumVar()
				return params(n, unitlessExp()), n
			},
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				places, err := integerArg(args[1], "number of decimal places")
				if err != nil {
					return nil, err
				}
				r, err := numeric.RoundDecimals(numberArg(args[0]), int32(places))
				if err != nil {
					return nil, arithmeticError(err)
				}
				return number(r), nil
			}),
		}),
		define("math", "floor", &FunctionType{
			Signature:   "floor(Number{u}) -> Number{u}",
			Description: "Largest integer not above the number",
			Types:       sameUnit(1),
			Instantiate: fixed(numeric1(numeric.Floor)),
		}),
		define("math", "ceiling", &FunctionType{
			Signature:   "ceiling(Number{u}) -> Number{u}",
			Description: "Smallest integer not below the number",
			Types:       sameUnit(1),
			Instantiate: fixed(numeric1(numeric.Ceil)),
		}),
		define("math", "sqrt", &FunctionType{
			Signature:   "sqrt(Number{u^2}) -> Number{u}",
			Description: "Square root; the unit is rooted as well",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				u := s.NewUnitVar()
				return params(typesystem.NumOf(u.Times(u))), typesystem.NumOf(u)
			},
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				r, err := numeric.Sqrt(numberArg(args[0]))
				if err != nil {
					return nil, arithmeticError(err)
				}
				return number(r), nil
			}),
		}),
		define("math", "mod", &FunctionType{
			Signature:   "mod(Number{u}, Number{u}) -> Number{u}",
			Description: "Remainder of a floored division; takes the sign of the divisor",
			Types:       sameUnit(2),
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				r, err := numeric.Mod(numberArg(args[0]), numberArg(args[1]))
				if err != nil {
					return nil, arithmeticError(err)
				}
				return number(r), nil
			}),
		}),
		define("math", "sign", &FunctionType{
			Signature:   "sign(Number{u}) -> Number",
			Description: "-1, 0 or 1 according to the sign of the number",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				return params(s.NewNumVar()), unitlessExp()
			},
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				return value.Int(int64(numberArg(args[0]).Sign())), nil
			}),
		}),
		define("math", "power", &FunctionType{
			Signature:   "power(Number, Number) -> Number",
			Description: "Raises a unitless number to a unitless power",
			Types: func(*typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				return params(unitlessExp(), unitlessExp()), unitlessExp()
			},
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				r, err := numeric.Pow(numberArg(args[0]), numberArg(args[1]))
				if err != nil {
					return nil, arithmeticError(err)
				}
				return number(r), nil
			}),
		}),
	}
}
