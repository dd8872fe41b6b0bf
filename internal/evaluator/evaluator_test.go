package evaluator

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/colexpr/internal/analyzer"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/numeric"
	"github.com/funvibe/colexpr/internal/parser"
	"github.com/funvibe/colexpr/internal/rowsource"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/units"
	"github.com/funvibe/colexpr/internal/value"
)

func testTable(t *testing.T) *rowsource.Table {
	t.Helper()
	table := rowsource.NewTable()
	require.NoError(t, table.AddColumn("length", typesystem.Number(units.Symbol("m")),
		value.Int(1), value.Int(2), value.Int(3)))
	require.NoError(t, table.AddColumn("score", typesystem.Number(units.One()),
		value.Int(1), value.Int(15), value.Int(5)))
	require.NoError(t, table.AddColumn("name", typesystem.Text,
		value.NewText("ada"), value.NewText("bob"), value.NewText("cy")))
	require.NoError(t, table.AddColumn("pending", typesystem.Number(units.One()),
		value.Int(7), nil, value.Int(9)))
	return table
}

func compile(t *testing.T, input string, source *rowsource.Table) *Evaluator {
	t.Helper()
	expr, err := parser.Parse(input)
	require.NoError(t, err, input)
	checked, err := analyzer.Check(expr, analyzer.NewEnvironment(source))
	require.NoError(t, err, input)
	return New(checked, source)
}

func evalRow(t *testing.T, input string, row int) (value.Value, error) {
	t.Helper()
	return compile(t, input, testTable(t)).Evaluate(row)
}

func mustEval(t *testing.T, input string) value.Value {
	t.Helper()
	v, err := evalRow(t, input, 0)
	require.NoError(t, err, input)
	return v
}

func assertNumber(t *testing.T, want string, got value.Value) {
	t.Helper()
	require.IsType(t, value.Number{}, got)
	assert.True(t, numeric.Equal(numeric.MustParse(want), got.(value.Number).V), "want %s, got %s", want, got.Inspect())
}

func TestEvaluateNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "7"},
		{"10 - 2 - 3", "5"},
		{"-2 ^ 2", "-4"},
		{"2 ^ 10", "1024"},
		{"7 / 2", "3.5"},
		{"@length + 2{m}", "3"},
		{"sum(@entire length)", "6"},
		{"average(@entire score)", "7"},
		{"element([10, 20, 30], 2)", "20"},
		{"count(@entire name)", "3"},
		{"as(unit{mile/hour}, 26.8224{m/s})", "60"},
		{"as(unit{km}, 1500{m})", "1.5"},
		{"define x = 2, y = x + 1 in x * y", "6"},
		{"define [a, b] = [3, 4] in a * b", "12"},
		{"(a: 1, b: 2).b", "2"},
		{"sum(map([1, 2, 3], fn(x) -> x * x))", "14"},
		{"define k = 3 in sum(map(@entire length, fn(x) -> x * k))", "18"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assertNumber(t, tt.want, mustEval(t, tt.input))
		})
	}
}

func TestUnitConversionToFeet(t *testing.T) {
	v := mustEval(t, "as(unit{foot}, 1{m})")
	require.IsType(t, value.Number{}, v)
	assert.InDelta(t, 3.2808399, v.(value.Number).V.Float64(), 1e-4)

	root := mustEval(t, "(4{m} * 4{m}) ^ 0.5")
	assert.InDelta(t, 4.0, root.(value.Number).V.Float64(), 1e-9)
}

func TestEvaluateValues(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"a" ++ @name ++ "!"`, `"aada!"`},
		{"[1] ++ [] ++ [2, 3]", "[1, 2, 3]"},
		{"@entire name", `["ada", "bob", "cy"]`},
		{"1 < 2 <= 2", "true"},
		{"3 > 2 > 2", "false"},
		{"1 = 1 = 1", "true"},
		{"1 = 1 = 2", "false"},
		{"1 <> 2", "true"},
		{"[1, 2] = [1, 2]", "true"},
		{"Optional:Is(3) = Optional:Is(3)", "true"},
		{"not(true)", "false"},
		{"xor(true, false)", "true"},
		{"true & false | true", "true"},
		{"if @score > 1 then \"big\" else \"small\"", `"small"`},
		{"filter([1, 2, 3, 4], fn(x) -> x > 2)", "[3, 4]"},
		{"Optional:Is(2)", "#1(2)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, mustEval(t, tt.input).Inspect())
		})
	}
}

func TestMatch(t *testing.T) {
	ev := compile(t, `match @score { 1, 2 -> "low"; n when n > 10 -> "high"; _ -> "mid" }`, testTable(t))
	for row, want := range []string{"low", "high", "mid"} {
		v, err := ev.Evaluate(row)
		require.NoError(t, err)
		assert.Equal(t, value.NewText(want), v, "row %d", row)
	}

	tests := []struct {
		input string
		want  string
	}{
		{`match 5 { n when n > 10 -> "big"; n -> "small" }`, `"small"`},
		{"match Optional:Is(5) { Optional:Is(x) -> x; Optional:None -> 0 }", "5"},
		{"match Optional:None { Optional:Is(x) -> x; Optional:None -> 0 }", "0"},
		{"match (a: 1, b: 2) { (a: x) when x > 5, (b: x) -> x; _ -> 0 }", "2"},
		{"match (a: 9, b: 2) { (a: x) when x > 5, (b: x) -> x; _ -> 0 }", "9"},
		{"match [1, 2] { [x] -> x; [x, y] -> x + y; _ -> 0 }", "3"},
		{"match 3 { 1 + 1 -> 1; 1 + 2 -> 2; _ -> 0 }", "2"},
		{"define k = 4 in match 3 { k -> k; _ -> 0 }", "3"},
		{`match "b" { "a" -> 1; "b" -> 2; _ -> 3 }`, "2"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, mustEval(t, tt.input).Inspect())
		})
	}
}

func TestShortCircuit(t *testing.T) {
	// element([1], 5) fails when evaluated.
	for _, input := range []string{
		"false & element([1], 5) = 1",
		"true | element([1], 5) = 1",
		"2 < 1 < element([1], 5)",
		"if true then 1 else element([1], 5)",
		"match 1 { 1 -> 1; _ -> element([1], 5) }",
		"any([1, 2, 3], fn(x) -> x = 1 | element([1], 5) = 1)",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := evalRow(t, input, 0)
			assert.NoError(t, err)
		})
	}
}

func expectRuntimeError(t *testing.T, input string, row int, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	_, err := evalRow(t, input, row)
	require.Error(t, err, input)
	de, ok := diagnostics.AsUserError(err)
	require.True(t, ok, "expected a user error, got %v", err)
	assert.Equal(t, code, de.Code, de.Message())
	return de
}

func TestRuntimeErrors(t *testing.T) {
	de := expectRuntimeError(t, "match @score { 2 -> 1 }", 0, diagnostics.ErrR001)
	assert.Contains(t, de.Message(), "no clause matches 1")
	expectRuntimeError(t, "define [a] = [1, 2] in a", 0, diagnostics.ErrR001)
	expectRuntimeError(t, "sum(filter([1], fn(x) -> x > 5))", 0, diagnostics.ErrR002)
	expectRuntimeError(t, "element([1], 5)", 0, diagnostics.ErrR003)
	expectRuntimeError(t, "1 / 0", 0, diagnostics.ErrR004)
	expectRuntimeError(t, "0 ^ -1", 0, diagnostics.ErrR004)
	expectRuntimeError(t, "number_from_text(@name)", 0, diagnostics.ErrR006)
}

func TestRuntimeErrorLocation(t *testing.T) {
	de := expectRuntimeError(t, "1 + element([1], 5)", 0, diagnostics.ErrR003)
	assert.Equal(t, 1, de.Token.Line)
	assert.Equal(t, 5, de.Token.Column)

	de = expectRuntimeError(t, "2 + 1 / 0", 0, diagnostics.ErrR004)
	assert.Equal(t, 7, de.Token.Column)
}

func TestNotReady(t *testing.T) {
	de := expectRuntimeError(t, "@pending + 1", 1, diagnostics.ErrR005)
	assert.Contains(t, de.Message(), "pending")
	assert.Equal(t, 1, de.Token.Column)

	v, err := evalRow(t, "@pending + 1", 2)
	require.NoError(t, err)
	assertNumber(t, "10", v)

	de = expectRuntimeError(t, "1 + sum(@entire pending)", 0, diagnostics.ErrR005)
	assert.Contains(t, de.Message(), "pending")
	assert.Equal(t, 9, de.Token.Column)

	// Elements before the pending cell are still readable.
	v, err = evalRow(t, "element(@entire pending, 1)", 0)
	require.NoError(t, err)
	assertNumber(t, "7", v)
}

func TestCellsBecomeReady(t *testing.T) {
	table := testTable(t)
	ev := compile(t, "@pending * 2", table)
	_, err := ev.Evaluate(1)
	assert.Equal(t, diagnostics.ErrR005, diagnostics.CodeOf(err))

	require.NoError(t, table.Set("pending", 1, value.Int(4)))
	v, err := ev.Evaluate(1)
	require.NoError(t, err)
	assertNumber(t, "8", v)
}

func TestNothingToEvaluate(t *testing.T) {
	_, err := New(nil, nil).Evaluate(0)
	assert.True(t, diagnostics.IsInternal(err))
}

func TestConcurrentRows(t *testing.T) {
	table := rowsource.NewTable()
	const rows = 200
	cells := make([]value.Value, rows)
	for i := range cells {
		cells[i] = value.Int(int64(i))
	}
	require.NoError(t, table.AddColumn("n", typesystem.Number(units.One()), cells...))

	ev := compile(t, `define sq = @n * @n in match sq { 0 -> -1; x when x > 100 -> x - sum(@entire n); x -> x }`, table)
	results := make([]value.Value, rows)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < rows; i += 8 {
				v, err := ev.Evaluate(i)
				assert.NoError(t, err)
				results[i] = v
			}
		}(w)
	}
	wg.Wait()

	for i := 0; i < rows; i++ {
		want := int64(i * i)
		switch {
		case i == 0:
			want = -1
		case want > 100:
			want -= rows * (rows - 1) / 2
		}
		got, ok := results[i].(value.Number).V.Int64()
		require.True(t, ok)
		assert.Equal(t, want, got, "row %d", i)
	}
}
