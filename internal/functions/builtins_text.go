package functions

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/funvibe/colexpr/internal/config"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/numeric"
	"github.com/funvibe/colexpr/internal/prettyprinter"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/value"
)

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

func textBuiltins() []*Definition {
	text1 := func(name, desc string, fn func(string) string) *Definition {
		return define("text", name, &FunctionType{
			Signature:   name + "(Text) -> Text",
			Description: desc,
			Types:       signature(typesystem.Text, typesystem.Text),
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				return value.NewText(fn(textArg(args[0]))), nil
			}),
		})
	}

	return []*Definition{
		define("text", "text_length", &FunctionType{
			Signature:   "text_length(Text) -> Number",
			Description: "Number of characters of a text",
			Types:       signature(typesystem.Unitless, typesystem.Text),
			Instantiate: fixed(textLength),
		}),
		text1("upper", "Converts to upper case", upperCaser.String),
		text1("lower", "Converts to lower case", lowerCaser.String),
		text1("trim", "Removes leading and trailing blanks", strings.TrimSpace),
		define("text", "replace", &FunctionType{
			Signature:   "replace(Text, Text, Text) -> Text",
			Description: "Replaces every occurrence of the second text with the third",
			Types:       signature(typesystem.Text, typesystem.Text, typesystem.Text, typesystem.Text),
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				s, old := textArg(args[0]), textArg(args[1])
				if old == "" {
					return args[0], nil
				}
				return value.NewText(strings.ReplaceAll(s, old, textArg(args[2]))), nil
			}),
		}),
		define("text", "join_text", &FunctionType{
			Signature:   "join_text([Text], Text) -> Text",
			Description: "Joins texts with a separator",
			Types:       signature(typesystem.Text, typesystem.Array(typesystem.Text), typesystem.Text),
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				var parts []string
				err := value.Each(listArg(args[0]), func(_ int, v value.Value) (bool, error) {
					parts = append(parts, textArg(v))
					return true, nil
				})
				if err != nil {
					return nil, err
				}
				return value.NewText(strings.Join(parts, textArg(args[1]))), nil
			}),
		}),
		define("text", "split_text", &FunctionType{
			Signature:   "split_text(Text, Text) -> [Text]",
			Description: "Splits a text at every separator; an empty separator splits into characters",
			Types:       signature(typesystem.Array(typesystem.Text), typesystem.Text, typesystem.Text),
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				parts := strings.Split(textArg(args[0]), textArg(args[1]))
				out := make([]value.Value, len(parts))
				for i, p := range parts {
					out[i] = value.NewText(p)
				}
				return value.NewList(out...), nil
			}),
		}),
		define("text", "left", &FunctionType{
			Signature:   "left(Text, Number) -> Text",
			Description: "The first n characters",
			Types:       signature(typesystem.Text, typesystem.Text, typesystem.Unitless),
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				n, err := integerArg(args[1], "count")
				if err != nil {
					return nil, err
				}
				return value.NewText(substring(textArg(args[0]), 1, n)), nil
			}),
		}),
		define("text", "right", &FunctionType{
			Signature:   "right(Text, Number) -> Text",
			Description: "The last n characters",
			Types:       signature(typesystem.Text, typesystem.Text, typesystem.Unitless),
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				n, err := integerArg(args[1], "count")
				if err != nil {
					return nil, err
				}
				s := textArg(args[0])
				size := utf8.RuneCountInString(s)
				if n > size {
					n = size
				}
				return value.NewText(substring(s, size-n+1, n)), nil
			}),
		}),
		define("text", "middle", &FunctionType{
			Signature:   "middle(Text, Number, Number) -> Text",
			Description: "n characters starting at a 1-based position",
			Types:       signature(typesystem.Text, typesystem.Text, typesystem.Unitless, typesystem.Unitless),
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				start, err := integerArg(args[1], "start")
				if err != nil {
					return nil, err
				}
				n, err := integerArg(args[2], "count")
				if err != nil {
					return nil, err
				}
				return value.NewText(substring(textArg(args[0]), start, n)), nil
			}),
		}),
		define("text", "contains", &FunctionType{
			Signature:   "contains(Text, Text) -> Boolean",
			Description: "True when the second text occurs in the first",
			Types:       signature(typesystem.Boolean, typesystem.Text, typesystem.Text),
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				return value.NewBoolean(strings.Contains(textArg(args[0]), textArg(args[1]))), nil
			}),
		}),
		define("text", config.ToTextFuncName, &FunctionType{
			Signature:   "to_text(a) -> Text",
			Description: "Renders any value as text",
			Types: func(s *typesystem.TypeState) ([]typesystem.TypeExp, typesystem.TypeExp) {
				return params(s.NewVar()), textExp
			},
			Instantiate: instantiateToText,
		}),
	}
}

func textLength(args []value.Value) (value.Value, error) {
	return value.Int(int64(utf8.RuneCountInString(textArg(args[0])))), nil
}

// substring takes n characters from the 1-based position start, clamped to s.
func substring(s string, start, n int) string {
	if start < 1 {
		n += start - 1
		start = 1
	}
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if start > len(runes) {
		return ""
	}
	end := start - 1 + n
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start-1 : end])
}

func instantiateToText(ctx InstanceContext) (Instance, error) {
	t := ctx.Args[0].Data
	if t == nil {
		return nil, userError(diagnostics.ErrT006, diagnostics.MsgInvalid, "to_text cannot render "+ctx.Args[0].String())
	}
	switch t := t.(type) {
	case typesystem.TextType:
		return func(args []value.Value) (value.Value, error) { return args[0], nil }, nil
	case typesystem.NumberType:
		return func(args []value.Value) (value.Value, error) {
			s, err := formatNumber(numberArg(args[0]), t.Display)
			if err != nil {
				return nil, err
			}
			if !t.Unit.IsOne() {
				s += " " + t.Unit.String()
			}
			return value.NewText(s), nil
		}, nil
	case typesystem.BooleanType, typesystem.TemporalType:
		return func(args []value.Value) (value.Value, error) {
			return value.NewText(args[0].Inspect()), nil
		}, nil
	}
	return func(args []value.Value) (value.Value, error) {
		s, err := prettyprinter.Literal(args[0], t)
		if err != nil {
			return nil, &diagnostics.InternalError{Message: "to_text", Cause: err}
		}
		return value.NewText(s), nil
	}, nil
}

// formatNumber applies a display hint.
func formatNumber(n numeric.Number, d *typesystem.DisplayInfo) (string, error) {
	if d == nil {
		return n.String(), nil
	}
	if d.MaxDecimals >= d.MinDecimals {
		r, err := numeric.RoundDecimals(n, int32(d.MaxDecimals))
		if err != nil {
			return "", arithmeticError(err)
		}
		n = r
	}
	s := n.String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	for len(frac) > d.MinDecimals && strings.HasSuffix(frac, "0") {
		frac = frac[:len(frac)-1]
	}
	for len(frac) < d.MinDecimals {
		frac += "0"
	}
	if d.Thousands {
		whole = groupThousands(whole)
	}
	if frac != "" {
		return sign + whole + "." + frac, nil
	}
	return sign + whole, nil
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	head := len(digits) % 3
	if head > 0 {
		sb.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}
