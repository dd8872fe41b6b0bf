package functions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/numeric"
	"github.com/funvibe/colexpr/internal/temporal"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/units"
	"github.com/funvibe/colexpr/internal/value"
)

var catalogue = Builtins()

var (
	one      = typesystem.Num(units.One())
	metres   = typesystem.Num(units.MustParse("m"))
	numbers  = typesystem.ArrayOf(one)
	texts    = typesystem.ArrayOf(textExp)
	booleans = typesystem.ArrayOf(booleanExp)
	dateExp  = typesystem.FromDataType(typesystem.Temporal(typesystem.KindDate))
)

// call resolves name against args, instantiates the chosen overload and runs it.
func call(t *testing.T, name string, args []typesystem.TypeExp, vals ...value.Value) (value.Value, error) {
	t.Helper()
	def, ok := catalogue.Lookup(name)
	require.True(t, ok, name)
	s := typesystem.NewTypeState(typesystem.NewTypeManager())
	res, err := def.Resolve(s, args)
	require.NoError(t, err)

	ctx := InstanceContext{Units: units.DefaultRegistry(), Types: s.Manager()}
	for _, p := range res.Params {
		a, err := s.ResolveArg(p)
		require.NoError(t, err)
		ctx.Args = append(ctx.Args, a)
	}
	ctx.Return, err = s.Resolve(res.Result)
	require.NoError(t, err)
	inst, err := res.Overload.Instantiate(ctx)
	require.NoError(t, err)
	return inst(vals)
}

func mustCall(t *testing.T, name string, args []typesystem.TypeExp, vals ...value.Value) value.Value {
	t.Helper()
	v, err := call(t, name, args, vals...)
	require.NoError(t, err)
	return v
}

func ints(xs ...int64) *value.ArrayList {
	items := make([]value.Value, len(xs))
	for i, x := range xs {
		items[i] = value.Int(x)
	}
	return value.NewList(items...)
}

func num(text string) value.Value { return value.NewNumber(numeric.MustParse(text)) }

func assertNumber(t *testing.T, want string, got value.Value) {
	t.Helper()
	require.IsType(t, value.Number{}, got)
	assert.True(t, numeric.Equal(numeric.MustParse(want), got.(value.Number).V), "want %s, got %s", want, got.Inspect())
}

func date(t *testing.T, kind typesystem.TemporalKind, text string) value.Temporal {
	t.Helper()
	v, err := temporal.ParseLiteral(kind, text)
	require.NoError(t, err)
	return v
}

func TestAsConvertsUnits(t *testing.T) {
	foot := typesystem.UnitValueOf(typesystem.FixedUnit(units.MustParse("foot")))
	v := mustCall(t, "as", params(foot, metres), nil, value.Int(1))
	assert.InDelta(t, 3.2808399, v.(value.Number).V.Float64(), 1e-7)

	mph := typesystem.UnitValueOf(typesystem.FixedUnit(units.MustParse("mile/hour")))
	speed := typesystem.Num(units.MustParse("m/s"))
	assertNumber(t, "60", mustCall(t, "as", params(mph, speed), nil, num("26.8224")))

	def, _ := catalogue.Lookup("as")
	s := typesystem.NewTypeState(typesystem.NewTypeManager())
	res, err := def.Resolve(s, params(foot, typesystem.Num(units.MustParse("kg"))))
	require.NoError(t, err)
	ctx := InstanceContext{Units: units.DefaultRegistry()}
	for _, p := range res.Params {
		a, err := s.ResolveArg(p)
		require.NoError(t, err)
		ctx.Args = append(ctx.Args, a)
	}
	_, err = res.Overload.Instantiate(ctx)
	var unitErr *UnitError
	assert.ErrorAs(t, err, &unitErr)
}

func TestBooleanFunctions(t *testing.T) {
	assert.Equal(t, value.False, mustCall(t, "not", params(booleanExp), value.True))
	assert.Equal(t, value.True, mustCall(t, "xor", params(booleanExp, booleanExp), value.True, value.False))
	assert.Equal(t, value.False, mustCall(t, "xor", params(booleanExp, booleanExp), value.True, value.True))
}

func TestListAggregates(t *testing.T) {
	assertNumber(t, "6", mustCall(t, "sum", params(numbers), ints(1, 2, 3)))
	assertNumber(t, "2.5", mustCall(t, "average", params(numbers), ints(1, 2, 3, 4)))
	assertNumber(t, "20", mustCall(t, "element", params(numbers, one), ints(10, 20, 30), value.Int(2)))
	assertNumber(t, "7", mustCall(t, "element_or", params(numbers, one, one), ints(10), value.Int(5), value.Int(7)))
	assertNumber(t, "3", mustCall(t, "count", params(numbers), ints(4, 5, 6)))
	assertNumber(t, "5", mustCall(t, "count", params(textExp), value.NewText("héllo")))

	words := value.NewList(value.NewText("pear"), value.NewText("apple"), value.NewText("fig"))
	assert.Equal(t, value.NewText("apple"), mustCall(t, "min", params(texts), words))
	assert.Equal(t, value.NewText("pear"), mustCall(t, "max", params(texts), words))
	assertNumber(t, "9", mustCall(t, "max", params(numbers), ints(3, 9, -2)))

	dates := value.NewList(date(t, typesystem.KindDate, "2024-05-01"), date(t, typesystem.KindDate, "2023-12-31"))
	first := mustCall(t, "min", params(typesystem.ArrayOf(dateExp)), dates)
	assert.Equal(t, "2023-12-31", first.Inspect())

	assert.Equal(t, value.True, mustCall(t, "in_list", params(one, numbers), value.Int(2), ints(1, 2)))
	assert.Equal(t, value.False, mustCall(t, "in_list", params(one, numbers), value.Int(3), ints(1, 2)))
	assertNumber(t, "4", mustCall(t, "single", params(numbers), ints(4)))

	joined := mustCall(t, "join_lists", params(typesystem.ArrayOf(numbers)), value.NewList(ints(1), ints(), ints(2, 3)))
	assert.Equal(t, "[1, 2, 3]", joined.Inspect())
}

func TestListIndexErrors(t *testing.T) {
	_, err := call(t, "element", params(numbers, one), ints(10, 20, 30), value.Int(4))
	assert.Equal(t, diagnostics.ErrR003, diagnostics.CodeOf(err))

	_, err = call(t, "element", params(numbers, one), ints(10, 20, 30), num("1.5"))
	assert.Equal(t, diagnostics.ErrR004, diagnostics.CodeOf(err))

	_, err = call(t, "single", params(numbers), ints(1, 2))
	assert.Equal(t, diagnostics.ErrR002, diagnostics.CodeOf(err))
}

func TestEmptyListErrors(t *testing.T) {
	for _, name := range []string{"sum", "average", "min", "max"} {
		t.Run(name, func(t *testing.T) {
			_, err := call(t, name, params(numbers), ints())
			require.Error(t, err)
			assert.Equal(t, diagnostics.ErrR002, diagnostics.CodeOf(err))
		})
	}
}

func TestQuantifiers(t *testing.T) {
	bools := func(bs ...bool) value.Value {
		items := make([]value.Value, len(bs))
		for i, b := range bs {
			items[i] = value.NewBoolean(b)
		}
		return value.NewList(items...)
	}
	tests := []struct {
		name string
		list value.Value
		want bool
	}{
		{"any", bools(false, true), true},
		{"any", bools(), false},
		{"all", bools(true, false), false},
		{"all", bools(), true},
		{"none", bools(false, false), true},
		{"none", bools(true), false},
	}
	for _, tt := range tests {
		assert.Equal(t, value.NewBoolean(tt.want), mustCall(t, tt.name, params(booleans), tt.list), "%s(%s)", tt.name, tt.list.Inspect())
	}

	calls := 0
	positive := value.Lambda{Arity: 1, Fn: func(args []value.Value) (value.Value, error) {
		calls++
		return value.NewBoolean(args[0].(value.Number).V.Sign() > 0), nil
	}}
	predicateType := typesystem.FunctionOf(booleanExp, one)
	assert.Equal(t, value.True, mustCall(t, "any", params(numbers, predicateType), ints(-1, 2, -3, 4), positive))
	assert.Equal(t, 2, calls, "any stops at the first match")
	assert.Equal(t, value.False, mustCall(t, "all", params(numbers, predicateType), ints(1, -2), positive))

	kept := mustCall(t, "filter", params(numbers, predicateType), ints(-1, 2, -3, 4), positive)
	assert.Equal(t, "[2, 4]", kept.Inspect())
	assertNumber(t, "2", mustCall(t, "count_where", params(numbers, predicateType), ints(-1, 2, -3, 4), positive))
}

func TestMap(t *testing.T) {
	double := value.Lambda{Arity: 1, Fn: func(args []value.Value) (value.Value, error) {
		return value.NewText(args[0].Inspect() + args[0].Inspect()), nil
	}}
	out := mustCall(t, "map", params(numbers, typesystem.FunctionOf(textExp, one)), ints(1, 23), double)
	assert.Equal(t, `["11", "2323"]`, out.Inspect())
}

func TestTextFunctions(t *testing.T) {
	hello := value.NewText("Hello, World")
	assert.Equal(t, value.NewText("HELLO, WORLD"), mustCall(t, "upper", params(textExp), hello))
	assert.Equal(t, value.NewText("hello, world"), mustCall(t, "lower", params(textExp), hello))
	assert.Equal(t, value.NewText("x y"), mustCall(t, "trim", params(textExp), value.NewText("  x y\t")))
	assert.Equal(t, value.NewText("Hello"), mustCall(t, "left", params(textExp, one), hello, value.Int(5)))
	assert.Equal(t, value.NewText("World"), mustCall(t, "right", params(textExp, one), hello, value.Int(5)))
	assert.Equal(t, value.NewText("Hello, World"), mustCall(t, "right", params(textExp, one), hello, value.Int(50)))
	assert.Equal(t, value.NewText("lo"), mustCall(t, "middle", params(textExp, one, one), hello, value.Int(4), value.Int(2)))
	assert.Equal(t, value.NewText("He"), mustCall(t, "middle", params(textExp, one, one), hello, value.Int(-1), value.Int(4)))
	assert.Equal(t, value.NewText(""), mustCall(t, "middle", params(textExp, one, one), hello, value.Int(40), value.Int(4)))
	assert.Equal(t, value.True, mustCall(t, "contains", params(textExp, textExp), hello, value.NewText("World")))
	assert.Equal(t, value.NewText("Hello! World"), mustCall(t, "replace", params(textExp, textExp, textExp), hello, value.NewText(","), value.NewText("!")))
	assertNumber(t, "12", mustCall(t, "text_length", params(textExp), hello))

	parts := mustCall(t, "split_text", params(textExp, textExp), value.NewText("a,b,,c"), value.NewText(","))
	assert.Equal(t, `["a", "b", "", "c"]`, parts.Inspect())
	joined := mustCall(t, "join_text", params(texts, textExp), parts, value.NewText("-"))
	assert.Equal(t, value.NewText("a-b--c"), joined)
}

func TestToText(t *testing.T) {
	assert.Equal(t, value.NewText("plain"), mustCall(t, "to_text", params(textExp), value.NewText("plain")))
	assert.Equal(t, value.NewText("2.5 m"), mustCall(t, "to_text", params(metres), num("2.5")))
	assert.Equal(t, value.NewText("true"), mustCall(t, "to_text", params(booleanExp), value.True))

	money := &typesystem.NumExp{
		Unit:    typesystem.FixedUnit(units.MustParse("USD")),
		Display: &typesystem.DisplayInfo{MinDecimals: 2, MaxDecimals: 2, Thousands: true},
	}
	assert.Equal(t, value.NewText("1,234,567.50 USD"), mustCall(t, "to_text", params(money), num("1234567.5")))
	assert.Equal(t, value.NewText("-0.12 USD"), mustCall(t, "to_text", params(money), num("-0.125")))

	assert.Equal(t, value.NewText("[1, 2]"), mustCall(t, "to_text", params(numbers), ints(1, 2)))
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   string
		hint *typesystem.DisplayInfo
		want string
	}{
		{"1234.5", nil, "1234.5"},
		{"1234.5678", &typesystem.DisplayInfo{MaxDecimals: 2}, "1234.57"},
		{"1234.5", &typesystem.DisplayInfo{MaxDecimals: 3}, "1234.5"},
		{"3", &typesystem.DisplayInfo{MinDecimals: 1, MaxDecimals: 3}, "3.0"},
		{"999", &typesystem.DisplayInfo{Thousands: true}, "999"},
		{"1000000", &typesystem.DisplayInfo{Thousands: true}, "1,000,000"},
	}
	for _, tt := range tests {
		got, err := formatNumber(numeric.MustParse(tt.in), tt.hint)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestOptionalFunctions(t *testing.T) {
	optional := typesystem.TaggedOf("Optional", one)
	present := value.Tagged{Index: 1, Inner: value.Int(5)}
	missing := value.Tagged{Index: 0}

	assertNumber(t, "5", mustCall(t, "get_or", params(optional, one), present, value.Int(0)))
	assertNumber(t, "0", mustCall(t, "get_or", params(optional, one), missing, value.Int(0)))
	assert.Equal(t, value.True, mustCall(t, "is_present", params(optional), present))
	assert.Equal(t, value.False, mustCall(t, "is_present", params(optional), missing))
}

func TestFromText(t *testing.T) {
	km := typesystem.TypeValueOf(typesystem.Num(units.MustParse("km")))
	assertNumber(t, "1.5", mustCall(t, "from_text", params(km, textExp), nil, value.NewText("1500{m}")))
	assertNumber(t, "2", mustCall(t, "from_text", params(km, textExp), nil, value.NewText(" 2 ")))
	assertNumber(t, "-3", mustCall(t, "from_text", params(km, textExp), nil, value.NewText("-3{km}")))

	_, err := call(t, "from_text", params(km, textExp), nil, value.NewText("3{kg}"))
	assert.Equal(t, diagnostics.ErrR006, diagnostics.CodeOf(err))

	boolType := typesystem.TypeValueOf(booleanExp)
	assert.Equal(t, value.True, mustCall(t, "from_text", params(boolType, textExp), nil, value.NewText("TRUE")))
	_, err = call(t, "from_text", params(boolType, textExp), nil, value.NewText("yes"))
	assert.Equal(t, diagnostics.ErrR006, diagnostics.CodeOf(err))

	d := mustCall(t, "from_text", params(typesystem.TypeValueOf(dateExp), textExp), nil, value.NewText("2 January 2024"))
	assert.Equal(t, "2024-01-02", d.Inspect())

	assertNumber(t, "0.25", mustCall(t, "number_from_text", params(textExp), value.NewText("0.25")))
	_, err = call(t, "number_from_text", params(textExp), value.NewText("abc"))
	assert.Equal(t, diagnostics.ErrR006, diagnostics.CodeOf(err))

	assert.Equal(t, value.NewText("x"), mustCall(t, "as_type", params(typesystem.TypeValueOf(textExp), textExp), nil, value.NewText("x")))
}

func TestTemporalFunctions(t *testing.T) {
	v := mustCall(t, "date_from_text", params(textExp), value.NewText("2024-03-01"))
	assert.Equal(t, "2024-03-01", v.Inspect())

	_, err := call(t, "date_from_text", params(textExp), value.NewText("01/02/2024"))
	require.Error(t, err)
	assert.Equal(t, diagnostics.ErrR006, diagnostics.CodeOf(err))
	assert.Contains(t, err.Error(), "ambiguous")

	_, err = call(t, "date_from_text", params(textExp), value.NewText("someday"))
	assert.Equal(t, diagnostics.ErrR006, diagnostics.CodeOf(err))

	jan := date(t, typesystem.KindDate, "2024-01-01")
	mar := date(t, typesystem.KindDate, "2024-03-01")
	assertNumber(t, "60", mustCall(t, "days_between", params(dateExp, dateExp), jan, mar))

	day := typesystem.Num(units.Symbol("day"))
	shifted := mustCall(t, "add_days", params(dateExp, day), date(t, typesystem.KindDate, "2024-02-28"), value.Int(2))
	assert.Equal(t, "2024-03-01", shifted.Inspect())

	dt := typesystem.FromDataType(typesystem.Temporal(typesystem.KindDateTime))
	start := date(t, typesystem.KindDateTime, "2024-03-01 08:00:00")
	end := date(t, typesystem.KindDateTime, "2024-03-01 09:30:00")
	assertNumber(t, "5400", mustCall(t, "seconds_between", params(dt, dt), start, end))
	old := date(t, typesystem.KindDate, "1700-01-01")
	future := date(t, typesystem.KindDate, "2100-01-01")
	assertNumber(t, "146097", mustCall(t, "days_between", params(dateExp, dateExp), old, future))
	assertNumber(t, "-146097", mustCall(t, "days_between", params(dateExp, dateExp), future, old))
	longStart := date(t, typesystem.KindDateTime, "1700-01-01 00:00:00")
	longEnd := date(t, typesystem.KindDateTime, "2100-01-01 00:00:00")
	assertNumber(t, "12622780800", mustCall(t, "seconds_between", params(dt, dt), longStart, longEnd))

	half := mustCall(t, "add_days", params(dt, day), start, num("0.5"))
	assert.Equal(t, "2024-03-01 20:00:00", half.Inspect())

	assertNumber(t, "2024", mustCall(t, "year", params(dateExp), mar))
	assertNumber(t, "3", mustCall(t, "month", params(dateExp), mar))
	assertNumber(t, "1", mustCall(t, "day", params(dateExp), mar))

	built := mustCall(t, "date_from_ymd", params(one, one, one), value.Int(2024), value.Int(2), value.Int(29))
	assert.Equal(t, "2024-02-29", built.Inspect())
	_, err = call(t, "date_from_ymd", params(one, one, one), value.Int(2023), value.Int(2), value.Int(29))
	assert.Equal(t, diagnostics.ErrR004, diagnostics.CodeOf(err))
}

func TestResolve(t *testing.T) {
	t.Run("no overload", func(t *testing.T) {
		def, _ := catalogue.Lookup("not")
		s := typesystem.NewTypeState(typesystem.NewTypeManager())
		_, err := def.Resolve(s, params(textExp))
		var none *NoOverloadError
		require.ErrorAs(t, err, &none)
		assert.Len(t, none.Reasons, 1)
		assert.Equal(t, "Text", none.Args)
	})

	t.Run("single overload", func(t *testing.T) {
		def, _ := catalogue.Lookup("count")
		s := typesystem.NewTypeState(typesystem.NewTypeManager())
		res, err := def.Resolve(s, params(textExp))
		require.NoError(t, err)
		assert.Equal(t, "count(Text) -> Number", res.Overload.Signature)
	})

	t.Run("unresolved argument is ambiguous", func(t *testing.T) {
		def, _ := catalogue.Lookup("count")
		s := typesystem.NewTypeState(typesystem.NewTypeManager())
		arg := s.NewVar()
		_, err := def.Resolve(s, params(arg))
		var amb *typesystem.AmbiguousError
		require.ErrorAs(t, err, &amb)
		assert.False(t, s.IsResolved(arg), "tried overloads leave no bindings behind")
	})

	t.Run("overlapping overloads", func(t *testing.T) {
		same := &FunctionType{Signature: "f(Text) -> Text", Types: signature(typesystem.Text, typesystem.Text)}
		def := define("test", "f", same, same)
		s := typesystem.NewTypeState(typesystem.NewTypeManager())
		_, err := def.Resolve(s, params(textExp))
		require.Error(t, err)
		assert.True(t, diagnostics.IsInternal(err))
	})
}

func TestRegistry(t *testing.T) {
	names := catalogue.Names()
	assert.IsNonDecreasing(t, names)
	for _, n := range []string{"as", "sum", "to_text", "from_text", "date_from_text", "timezoned_from_text"} {
		assert.Contains(t, names, n)
	}

	defs := catalogue.Definitions()
	require.Len(t, defs, len(names))
	for i := 1; i < len(defs); i++ {
		assert.LessOrEqual(t, defs[i-1].Group, defs[i].Group)
	}

	r := NewRegistry()
	require.NoError(t, r.Register(define("g", "f", &FunctionType{})))
	assert.Error(t, r.Register(define("g", "f", &FunctionType{})))
	assert.Error(t, r.Register(define("g", "empty")))
}
