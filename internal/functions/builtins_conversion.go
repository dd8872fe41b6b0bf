package functions

import (
	"errors"
	"strings"

	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/config"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/numeric"
	"github.com/funvibe/colexpr/internal/parser"
	"github.com/funvibe/colexpr/internal/temporal"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/units"
	"github.com/funvibe/colexpr/internal/value"
)

func conversionBuiltins() []*Definition {
	fromText := []*FunctionType{
		{
			Signature:   "from_text(type{Number{u}}, Text) -> Number{u}",
			Description: "Reads a number, optionally written with a compatible unit",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				n := s.NewNumVar()
				return params(typesystem.TypeValueOf(n), textExp), n
			},
			Instantiate: instantiateNumberFromText,
		},
		{
			Signature:   "from_text(type{Text}, Text) -> Text",
			Description: "Returns the text unchanged",
			Types:       typedFromText(typesystem.Text),
			Instantiate: fixed(func(args []value.Value) (value.Value, error) { return args[1], nil }),
		},
		{
			Signature:   "from_text(type{Boolean}, Text) -> Boolean",
			Description: "Reads true or false, ignoring case",
			Types:       typedFromText(typesystem.Boolean),
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				s := textArg(args[1])
				switch strings.ToLower(strings.TrimSpace(s)) {
				case "true":
					return value.True, nil
				case "false":
					return value.False, nil
				}
				return nil, userError(diagnostics.ErrR006, diagnostics.MsgParse, s, typesystem.Boolean)
			}),
		},
	}
	for _, kind := range typesystem.TemporalKinds() {
		t := typesystem.Temporal(kind)
		fromText = append(fromText, &FunctionType{
			Signature:   "from_text(type{" + t.String() + "}, Text) -> " + t.String(),
			Description: "Reads a " + t.String() + " in any known format",
			Types:       typedFromText(t),
			Instantiate: temporalReader(kind, 1),
		})
	}

	return []*Definition{
		define("conversion", config.AsTypeFuncName, &FunctionType{
			Signature:   "as_type(type{a}, a) -> a",
			Description: "Fixes the type of an expression: as_type(type{[Text]}, [])",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				a := s.NewVar()
				return params(typesystem.TypeValueOf(a), a), a
			},
			Instantiate: fixed(func(args []value.Value) (value.Value, error) { return args[1], nil }),
		}),
		define("conversion", config.FromTextFuncName, fromText...),
		define("conversion", "number_from_text", &FunctionType{
			Signature:   "number_from_text(Text) -> Number",
			Description: "Reads a unitless number",
			Types:       signature(typesystem.Unitless, typesystem.Text),
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				s := textArg(args[0])
				n, err := numeric.Parse(strings.TrimSpace(s))
				if err != nil {
					return nil, userError(diagnostics.ErrR006, diagnostics.MsgParse, s, typesystem.Unitless)
				}
				return number(n), nil
			}),
		}),
	}
}

func typedFromText(t typesystem.DataType) func(*typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
	return func(*typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
		e := typesystem.FromDataType(t)
		return params(typesystem.TypeValueOf(e), textExp), e
	}
}

// instantiateNumberFromText reads text as a number literal. A unitless
// literal is taken in the target unit; a literal with a unit is scaled to it.
func instantiateNumberFromText(ctx InstanceContext) (Instance, error) {
	target := ctx.Return.(typesystem.NumberType)
	reg := ctx.Units
	if reg == nil {
		reg = units.DefaultRegistry()
	}
	return func(args []value.Value) (value.Value, error) {
		s := textArg(args[1])
		fail := func() (value.Value, error) {
			return nil, userError(diagnostics.ErrR006, diagnostics.MsgParse, s, target)
		}
		if n, err := numeric.Parse(strings.TrimSpace(s)); err == nil {
			return number(n), nil
		}
		n, u, ok := numberLiteral(s)
		if !ok {
			return fail()
		}
		if u.IsOne() {
			return number(n), nil
		}
		factor, ok := u.CanScaleTo(target.Unit, reg)
		if !ok {
			return fail()
		}
		scaled, err := numeric.ScaleBy(n, factor)
		if err != nil {
			return nil, arithmeticError(err)
		}
		return number(scaled), nil
	}, nil
}

// numberLiteral parses s as a possibly negated number literal.
func numberLiteral(s string) (numeric.Number, units.Unit, bool) {
	expr, err := parser.Parse(s)
	if err != nil {
		return numeric.Number{}, units.Unit{}, false
	}
	negate := false
	if p, ok := expr.(*ast.PrefixExpression); ok && p.Operator == "-" {
		negate, expr = true, p.Right
	}
	lit, ok := expr.(*ast.NumberLiteral)
	if !ok {
		return numeric.Number{}, units.Unit{}, false
	}
	if negate {
		return numeric.Negate(lit.Value), lit.Unit, true
	}
	return lit.Value, lit.Unit, true
}

// temporalReader gives each call site its own parser, so the format order
// adapts to the data that site sees. The text is args[textAt].
func temporalReader(kind typesystem.TemporalKind, textAt int) func(InstanceContext) (Instance, error) {
	return func(InstanceContext) (Instance, error) {
		p := temporal.NewParser(kind)
		return func(args []value.Value) (value.Value, error) {
			s := textArg(args[textAt])
			t, err := p.Parse(s)
			if err == nil {
				return t, nil
			}
			var amb *temporal.AmbiguousError
			if errors.As(err, &amb) {
				return nil, userError(diagnostics.ErrR006, diagnostics.MsgAmbiguousParse, s, kind, amb.First.Inspect(), amb.Second.Inspect())
			}
			return nil, userError(diagnostics.ErrR006, diagnostics.MsgParse, s, kind)
		}, nil
	}
}
