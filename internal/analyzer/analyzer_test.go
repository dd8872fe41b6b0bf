package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/colexpr/internal/ast"
	"github.com/funvibe/colexpr/internal/parser"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/units"
	"github.com/funvibe/colexpr/internal/value"
)

var testColumns = ColumnMap{
	"length":   typesystem.Number(units.Symbol("m")),
	"duration": typesystem.Number(units.Symbol("s")),
	"score":    typesystem.Number(units.One()),
	"name":     typesystem.Text,
	"born":     typesystem.Temporal(typesystem.KindDate),
	"flags":    typesystem.Array(typesystem.Boolean),
}

func checkSource(t *testing.T, input string) (*Checked, error) {
	t.Helper()
	expr, err := parser.Parse(input)
	require.NoError(t, err, input)
	return Check(expr, NewEnvironment(testColumns))
}

func mustCheck(t *testing.T, input string) *Checked {
	t.Helper()
	c, err := checkSource(t, input)
	require.NoError(t, err, input)
	return c
}

func TestInferredTypes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2", "Number"},
		{"@length + 2{m}", "Number{m}"},
		{"-@length", "Number{m}"},
		{"@length / @duration", "Number{m/s}"},
		{"@length * @length", "Number{m^2}"},
		{"@length ^ 2", "Number{m^2}"},
		{"@length ^ -1", "Number{1/m}"},
		{"(@length * @length) ^ 0.5", "Number{m}"},
		{"@score ^ @score", "Number"},
		{`"a" ++ @name`, "Text"},
		{"[1, 2] ++ [3]", "[Number]"},
		{"1 < 2 <= 3", "Boolean"},
		{"@born < date{2024-01-01}", "Boolean"},
		{"1 = 1 = 1", "Boolean"},
		{"true & false | true", "Boolean"},
		{"if @score > 1 then 1{m} else @length", "Number{m}"},
		{"[]  = [1]", "Boolean"},
		{"(a: 1, b: @name).b", "Text"},
		{"Optional:Is(@born)", "Optional(Date)"},
		{"@entire name", "[Text]"},
		{"count(@entire flags)", "Number"},
		{"filter([1, 2, 3], fn(x) -> x > 1)", "[Number]"},
		{"map(@entire name, fn(s) -> text_length(s))", "[Number]"},
		{"map([1{m}], fn(_) -> true)", "[Boolean]"},
		{"as(unit{km}, @length)", "Number{km}"},
		{"as_type(type{[Number{kg}]}, [])", "[Number{kg}]"},
		{"sum(@entire length)", "Number{m}"},
		{"sum([])", "Number"},
		{"average([]) + 1", "Number"},
		{"to_text(@length)", "Text"},
		{"get_or(Optional:None, 3{m})", "Number{m}"},
		{"define x = 2{m}, y = x * x in y", "Number{m^2}"},
		{"define (a: x, b: y) = (a: 1, b: @name) in y", "Text"},
		{"define [a, b] = [1, 2] in a + b", "Number"},
		{"match Optional:Is(5) { Optional:Is(x) -> x; Optional:None -> 0 }", "Number"},
		{`match @score { 1, 2 -> "low"; n when n > 10 -> "high"; _ -> "mid" }`, "Text"},
		{"match (a: 1, b: 2) { (a: x) when x > 5, (b: x) -> x; _ -> 0 }", "Number"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c := mustCheck(t, tt.input)
			assert.Equal(t, tt.want, c.Type().String())
		})
	}
}

func TestDisplayHintSurvivesInference(t *testing.T) {
	display := &typesystem.DisplayInfo{MinDecimals: 2, MaxDecimals: 2}
	env := NewEnvironment(ColumnMap{"price": typesystem.NumberType{Unit: units.Symbol("USD"), Display: display}})
	expr, err := parser.Parse("@price")
	require.NoError(t, err)
	c, err := Check(expr, env)
	require.NoError(t, err)
	nt, ok := c.Type().(typesystem.NumberType)
	require.True(t, ok)
	assert.Equal(t, display, nt.Display)
}

func TestColumnsAreRecorded(t *testing.T) {
	c := mustCheck(t, "@length + sum(@entire length) / count(@entire name) + @length")
	assert.Equal(t, []string{"length"}, c.Columns())
	assert.Equal(t, []string{"length", "name"}, c.EntireColumns())
}

func TestEveryValueNodeIsTyped(t *testing.T) {
	c := mustCheck(t, "filter([1, 2], fn(x) -> x > 1) ++ [if true then 3 else 4]")
	ast.Inspect(c.Root, func(e ast.Expression) bool {
		if _, isLambda := e.(*ast.LambdaExpression); isLambda {
			_, ok := c.TypeOf(e)
			assert.False(t, ok)
			return true
		}
		_, ok := c.TypeOf(e)
		assert.True(t, ok, "%T at %d:%d", e, e.GetToken().Line, e.GetToken().Column)
		return true
	})
}

func identifiers(root ast.Expression, name string) []*ast.Identifier {
	var out []*ast.Identifier
	ast.Inspect(root, func(e ast.Expression) bool {
		if id, ok := e.(*ast.Identifier); ok && id.Value == name {
			out = append(out, id)
		}
		return true
	})
	return out
}

func TestBindings(t *testing.T) {
	c := mustCheck(t, "define x = 1 in x + x")
	ids := identifiers(c.Root, "x")
	require.Len(t, ids, 3)
	for _, ref := range ids[1:] {
		def, ok := c.Binding(ref)
		require.True(t, ok)
		assert.Same(t, ids[0], def)
	}
	_, ok := c.Binding(ids[0])
	assert.False(t, ok)
}

func TestShadowing(t *testing.T) {
	c := mustCheck(t, `define x = 1, x = "one" in x`)
	ids := identifiers(c.Root, "x")
	require.Len(t, ids, 3)
	def, ok := c.Binding(ids[2])
	require.True(t, ok)
	assert.Same(t, ids[1], def)
	assert.Equal(t, "Text", c.Type().String())
}

func TestAlternativesShareBindings(t *testing.T) {
	c := mustCheck(t, "match (a: 1, b: 2) { (a: x) when x > 5, (b: x) -> x; _ -> 0 }")
	// pattern x, guard x, pattern x, result x
	ids := identifiers(c.Root, "x")
	require.Len(t, ids, 4)
	assert.Same(t, ids[0], c.BindingKey(ids[2]))

	guardRef, ok := c.Binding(ids[1])
	require.True(t, ok)
	assert.Same(t, ids[0], guardRef)
	resultRef, ok := c.Binding(ids[3])
	require.True(t, ok)
	assert.Same(t, ids[0], resultRef)
}

func TestCallSitesAreInstantiated(t *testing.T) {
	c := mustCheck(t, "element([10, 20, 30], 2)")
	ce, ok := c.Root.(*ast.CallExpression)
	require.True(t, ok)
	call, ok := c.Call(ce)
	require.True(t, ok)
	assert.Equal(t, "element", call.Definition.Name)
	assert.Equal(t, "Number", call.Return.String())

	got, err := call.Instance([]value.Value{value.NewList(value.Int(10), value.Int(20), value.Int(30)), value.Int(2)})
	require.NoError(t, err)
	assert.Equal(t, "20", got.Inspect())
}

func TestCheckIsRepeatable(t *testing.T) {
	expr, err := parser.Parse("map(@entire length, fn(v) -> v * 2) ++ []")
	require.NoError(t, err)
	env := NewEnvironment(testColumns)
	first, err := Check(expr, env)
	require.NoError(t, err)
	second, err := Check(expr, env)
	require.NoError(t, err)
	assert.Equal(t, first.Type().String(), second.Type().String())
	assert.Equal(t, "[Number{m}]", second.Type().String())
}

func TestNilEnvironment(t *testing.T) {
	expr, err := parser.Parse(`upper("a")`)
	require.NoError(t, err)
	c, err := Check(expr, nil)
	require.NoError(t, err)
	assert.Equal(t, "Text", c.Type().String())
}
