package functions

import (
	"strconv"

	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/numeric"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/value"
)

// elemList is the shape [a] with a fresh a.
func elemList(s *typesystem.TypeState) (*typesystem.ConsExp, *typesystem.VarExp) {
	a := s.NewVar()
	return typesystem.ArrayOf(a), a
}

func listBuiltins() []*Definition {
	defs := []*Definition{
		define("lists", "count",
			&FunctionType{
				Signature:   "count([a]) -> Number",
				Description: "Number of elements of a list",
				Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
					l, _ := elemList(s)
					return params(l), unitlessExp()
				},
				Instantiate: fixed(func(args []value.Value) (value.Value, error) {
					return value.Int(int64(listArg(args[0]).Size())), nil
				}),
			},
			&FunctionType{
				Signature:   "count(Text) -> Number",
				Description: "Number of characters of a text",
				Types:       signature(typesystem.Unitless, typesystem.Text),
				Instantiate: fixed(textLength),
			},
		),
		define("lists", "element", &FunctionType{
			Signature:   "element([a], Number) -> a",
			Description: "The element at a 1-based position",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				l, a := elemList(s)
				return params(l, unitlessExp()), a
			},
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				return element(listArg(args[0]), args[1])
			}),
		}),
		define("lists", "element_or", &FunctionType{
			Signature:   "element_or([a], Number, a) -> a",
			Description: "The element at a 1-based position, or the fallback when out of range",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				l, a := elemList(s)
				return params(l, unitlessExp(), a), a
			},
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				l := listArg(args[0])
				i, err := integerArg(args[1], "index")
				if err != nil {
					return nil, err
				}
				if i < 1 || i > l.Size() {
					return args[2], nil
				}
				return l.Get(i - 1)
			}),
		}),
		define("lists", "sum", &FunctionType{
			Signature:   "sum([Number{u}]) -> Number{u}",
			Description: "Adds up the elements of a list",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				n := s.NewNumVar()
				return params(typesystem.ArrayOf(n)), n
			},
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				total, _, err := sum(listArg(args[0]), "sum")
				if err != nil {
					return nil, err
				}
				return number(total), nil
			}),
		}),
		define("lists", "average", &FunctionType{
			Signature:   "average([Number{u}]) -> Number{u}",
			Description: "Arithmetic mean of the elements of a list",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				n := s.NewNumVar()
				return params(typesystem.ArrayOf(n)), n
			},
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				total, count, err := sum(listArg(args[0]), "average")
				if err != nil {
					return nil, err
				}
				mean, err := numeric.Divide(total, numeric.FromInt64(int64(count)))
				if err != nil {
					return nil, arithmeticError(err)
				}
				return number(mean), nil
			}),
		}),
		define("lists", "any",
			&FunctionType{
				Signature:   "any([Boolean]) -> Boolean",
				Description: "True when at least one element is true",
				Types:       signature(typesystem.Boolean, typesystem.Array(typesystem.Boolean)),
				Instantiate: fixed(quantifier(true, false, identityPredicate)),
			},
			&FunctionType{
				Signature:   "any([a], fn(a) -> Boolean) -> Boolean",
				Description: "True when the condition holds for at least one element",
				Types:       predicateShape(booleanExp),
				Instantiate: fixed(quantifier(true, false, lambdaPredicate)),
			},
		),
		define("lists", "all",
			&FunctionType{
				Signature:   "all([Boolean]) -> Boolean",
				Description: "True when every element is true",
				Types:       signature(typesystem.Boolean, typesystem.Array(typesystem.Boolean)),
				Instantiate: fixed(quantifier(false, true, identityPredicate)),
			},
			&FunctionType{
				Signature:   "all([a], fn(a) -> Boolean) -> Boolean",
				Description: "True when the condition holds for every element",
				Types:       predicateShape(booleanExp),
				Instantiate: fixed(quantifier(false, true, lambdaPredicate)),
			},
		),
		define("lists", "none",
			&FunctionType{
				Signature:   "none([Boolean]) -> Boolean",
				Description: "True when no element is true",
				Types:       signature(typesystem.Boolean, typesystem.Array(typesystem.Boolean)),
				Instantiate: fixed(quantifier(true, true, identityPredicate)),
			},
			&FunctionType{
				Signature:   "none([a], fn(a) -> Boolean) -> Boolean",
				Description: "True when the condition holds for no element",
				Types:       predicateShape(booleanExp),
				Instantiate: fixed(quantifier(true, true, lambdaPredicate)),
			},
		),
		define("lists", "filter", &FunctionType{
			Signature:   "filter([a], fn(a) -> Boolean) -> [a]",
			Description: "The elements for which the condition holds",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				l, a := elemList(s)
				return params(l, typesystem.FunctionOf(booleanExp, a)), l
			},
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				fn := lambdaArg(args[1])
				var kept []value.Value
				err := value.Each(listArg(args[0]), func(_ int, v value.Value) (bool, error) {
					ok, err := predicate(fn, v)
					if ok {
						kept = append(kept, v)
					}
					return true, err
				})
				if err != nil {
					return nil, err
				}
				return value.NewList(kept...), nil
			}),
		}),
		define("lists", "map", &FunctionType{
			Signature:   "map([a], fn(a) -> b) -> [b]",
			Description: "Applies a function to every element",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				l, a := elemList(s)
				b := s.NewVar()
				return params(l, typesystem.FunctionOf(b, a)), typesystem.ArrayOf(b)
			},
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				fn := lambdaArg(args[1])
				l := listArg(args[0])
				out := make([]value.Value, 0, l.Size())
				err := value.Each(l, func(_ int, v value.Value) (bool, error) {
					r, err := fn.Call(v)
					out = append(out, r)
					return true, err
				})
				if err != nil {
					return nil, err
				}
				return value.NewList(out...), nil
			}),
		}),
		define("lists", "count_where", &FunctionType{
			Signature:   "count_where([a], fn(a) -> Boolean) -> Number",
			Description: "Number of elements for which the condition holds",
			Types:       predicateShape(unitlessExp()),
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				fn := lambdaArg(args[1])
				n := int64(0)
				err := value.Each(listArg(args[0]), func(_ int, v value.Value) (bool, error) {
					ok, err := predicate(fn, v)
					if ok {
						n++
					}
					return true, err
				})
				if err != nil {
					return nil, err
				}
				return value.Int(n), nil
			}),
		}),
		define("lists", "join_lists", &FunctionType{
			Signature:   "join_lists([[a]]) -> [a]",
			Description: "Concatenates a list of lists",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				l, _ := elemList(s)
				return params(typesystem.ArrayOf(l)), l
			},
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				var out []value.Value
				err := value.Each(listArg(args[0]), func(_ int, v value.Value) (bool, error) {
					items, err := value.Materialize(listArg(v))
					out = append(out, items...)
					return true, err
				})
				if err != nil {
					return nil, err
				}
				return value.NewList(out...), nil
			}),
		}),
		define("lists", "in_list", &FunctionType{
			Signature:   "in_list(a, [a]) -> Boolean",
			Description: "True when the list holds an element equal to the value",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				l, a := elemList(s)
				return params(a, l), booleanExp
			},
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				found := false
				err := value.Each(listArg(args[1]), func(_ int, v value.Value) (bool, error) {
					eq, err := value.Equal(args[0], v)
					found = eq
					return !eq, err
				})
				if err != nil {
					return nil, err
				}
				return value.NewBoolean(found), nil
			}),
		}),
		define("lists", "single", &FunctionType{
			Signature:   "single([a]) -> a",
			Description: "The only element of a list of exactly one element",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				l, a := elemList(s)
				return params(l), a
			},
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				l := listArg(args[0])
				if l.Size() != 1 {
					return nil, userError(diagnostics.ErrR002, diagnostics.MsgNotSingle, l.Size())
				}
				return l.Get(0)
			}),
		}),
	}
	return append(defs, extremumBuiltins()...)
}

// predicateShape is ([a], fn(a) -> Boolean) -> result.
func predicateShape(result typesystem.TypeExp) func(*typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
	return func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
		l, a := elemList(s)
		return params(l, typesystem.FunctionOf(booleanExp, a)), result
	}
}

type elementTest func(args []value.Value, v value.Value) (bool, error)

func identityPredicate(_ []value.Value, v value.Value) (bool, error) { return boolArg(v), nil }

func lambdaPredicate(args []value.Value, v value.Value) (bool, error) {
	return predicate(lambdaArg(args[1]), v)
}

// quantifier scans until an element's test equals stopOn. The result is
// whether it stopped, negated when negate is set.
func quantifier(stopOn, negate bool, test elementTest) Instance {
	return func(args []value.Value) (value.Value, error) {
		hit := false
		err := value.Each(listArg(args[0]), func(_ int, v value.Value) (bool, error) {
			ok, err := test(args, v)
			if err != nil {
				return false, err
			}
			hit = ok == stopOn
			return !hit, nil
		})
		if err != nil {
			return nil, err
		}
		return value.NewBoolean(hit != negate), nil
	}
}

func element(l value.List, index value.Value) (value.Value, error) {
	i, err := integerArg(index, "index")
	if err != nil {
		return nil, err
	}
	if i < 1 || i > l.Size() {
		return nil, userError(diagnostics.ErrR003, diagnostics.MsgIndex, strconv.Itoa(i), l.Size())
	}
	return l.Get(i - 1)
}

func sum(l value.List, what string) (numeric.Number, int, error) {
	if l.Size() == 0 {
		return numeric.Number{}, 0, userError(diagnostics.ErrR002, diagnostics.MsgEmptyList, what)
	}
	total := numeric.FromInt64(0)
	err := value.Each(l, func(_ int, v value.Value) (bool, error) {
		next, err := numeric.Add(total, numberArg(v))
		if err != nil {
			return false, arithmeticError(err)
		}
		total = next
		return true, nil
	})
	return total, l.Size(), err
}

// extremumBuiltins defines min and max over numbers, text and every
// temporal kind.
func extremumBuiltins() []*Definition {
	var mins, maxs []*FunctionType
	add := func(elemName string, types func(*typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp)) {
		mins = append(mins, &FunctionType{
			Signature:   "min([" + elemName + "]) -> " + elemName,
			Description: "Smallest element of a list",
			Types:       types,
			Instantiate: fixed(extremum("min", -1)),
		})
		maxs = append(maxs, &FunctionType{
			Signature:   "max([" + elemName + "]) -> " + elemName,
			Description: "Largest element of a list",
			Types:       types,
			Instantiate: fixed(extremum("max", 1)),
		})
	}
	add("Number{u}", func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
		n := s.NewNumVar()
		return params(typesystem.ArrayOf(n)), n
	})
	add("Text", signature(typesystem.Text, typesystem.Array(typesystem.Text)))
	for _, kind := range typesystem.TemporalKinds() {
		t := typesystem.Temporal(kind)
		add(t.String(), signature(t, typesystem.Array(t)))
	}
	return []*Definition{define("lists", "min", mins...), define("lists", "max", maxs...)}
}

// extremum keeps the element whose comparison against the current best has
// the sign want.
func extremum(what string, want int) Instance {
	return func(args []value.Value) (value.Value, error) {
		l := listArg(args[0])
		if l.Size() == 0 {
			return nil, userError(diagnostics.ErrR002, diagnostics.MsgEmptyList, what)
		}
		var best value.Value
		err := value.Each(l, func(i int, v value.Value) (bool, error) {
			if i == 0 {
				best = v
				return true, nil
			}
			c, err := value.Compare(v, best)
			if c == want {
				best = v
			}
			return true, err
		})
		if err != nil {
			return nil, err
		}
		return best, nil
	}
}
