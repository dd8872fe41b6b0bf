package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/numeric"
	"github.com/funvibe/colexpr/internal/testutil"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/value"
)

func newEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	opts.Logger = testutil.NewTestLogger(t)
	eng, err := New(opts)
	require.NoError(t, err)
	return eng
}

func mustType(t *testing.T, eng *Engine, text string) typesystem.DataType {
	t.Helper()
	typ, err := eng.ParseType(text)
	require.NoError(t, err, text)
	return typ
}

func tripTable(t *testing.T, eng *Engine) []ColumnDef {
	t.Helper()
	return []ColumnDef{
		{Name: "distance", Type: mustType(t, eng, "Number{km}")},
		{Name: "hours", Type: mustType(t, eng, "Number{hour}")},
		{Name: "driver", Type: mustType(t, eng, "Optional(Text)")},
	}
}

func TestCompileAndEvaluate(t *testing.T) {
	eng := newEngine(t, Options{})
	defs := tripTable(t, eng)
	table, err := eng.NewTable(defs, []map[string]any{
		{"distance": 120, "hours": 2, "driver": "ann"},
		{"distance": 30.5, "hours": "0.5", "driver": Tag{Name: "None"}},
	})
	require.NoError(t, err)

	c, err := eng.Compile("as(unit{km/hour}, @distance / @hours)", table)
	require.NoError(t, err)
	assert.Equal(t, mustType(t, eng, "Number{km/hour}").String(), c.Type().String())
	assert.Equal(t, []string{"distance", "hours"}, c.Columns())
	assert.Empty(t, c.EntireColumns())

	v, err := c.Evaluate(table, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(60), mustGo(t, eng, v, c.Type()))

	v, err = c.Evaluate(table, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(61), mustGo(t, eng, v, c.Type()))

	c, err = eng.Compile(`get_or(@driver, "nobody")`, table)
	require.NoError(t, err)
	v, err = c.Evaluate(table, 1)
	require.NoError(t, err)
	assert.Equal(t, value.NewText("nobody"), v)
}

func mustGo(t *testing.T, eng *Engine, v value.Value, typ typesystem.DataType) any {
	t.Helper()
	out, err := eng.Marshaller().FromValue(v, typ)
	require.NoError(t, err)
	return out
}

func TestCompileErrors(t *testing.T) {
	eng := newEngine(t, Options{})

	_, err := eng.Compile("1 +", nil)
	require.Error(t, err)
	assert.Equal(t, diagnostics.ErrP001, diagnostics.CodeOf(err))

	_, err = eng.Compile(`1 + "a"`, nil)
	assert.Equal(t, diagnostics.ErrT001, diagnostics.CodeOf(err))

	_, err = eng.Compile("@missing", nil)
	assert.Equal(t, diagnostics.ErrT003, diagnostics.CodeOf(err))

	_, err = eng.ParseType("Number{furlong}")
	assert.Error(t, err)
	_, err = eng.ParseType("Colour")
	assert.Error(t, err)
}

func TestRuntimeEdgeCases(t *testing.T) {
	eng := newEngine(t, Options{})

	failures := []struct {
		input string
		code  diagnostics.ErrorCode
	}{
		{"10 ^ 200000", diagnostics.ErrR004},
		{"power(10, 200000) = 0", diagnostics.ErrR004},
		{"10 ^ 60000 * 10 ^ 60000", diagnostics.ErrR004},
		{"sum([])", diagnostics.ErrR002},
		{"average([])", diagnostics.ErrR002},
	}
	for _, tt := range failures {
		t.Run(tt.input, func(t *testing.T) {
			c, err := eng.Compile(tt.input, nil)
			require.NoError(t, err)
			_, err = c.Evaluate(nil, 0)
			require.Error(t, err)
			assert.Equal(t, tt.code, diagnostics.CodeOf(err), err.Error())
		})
	}

	spans := []struct {
		input string
		want  int64
	}{
		{"days_between(date{1700-01-01}, date{2100-01-01})", 146097},
		{"seconds_between(datetime{1700-01-01 00:00:00}, datetime{2100-01-01 00:00:00})", 12622780800},
	}
	for _, tt := range spans {
		c, err := eng.Compile(tt.input, nil)
		require.NoError(t, err, tt.input)
		v, err := c.Evaluate(nil, 0)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, mustGo(t, eng, v, c.Type()), tt.input)
	}
}

func TestPrecisionIsProcessWide(t *testing.T) {
	newEngine(t, Options{Precision: numeric.DefaultPrecision})
	newEngine(t, Options{Precision: numeric.DefaultPrecision})

	_, err := New(Options{Precision: 12, Logger: testutil.NewTestLogger(t)})
	assert.ErrorIs(t, err, numeric.ErrPrecisionFixed)
}

func TestEvaluateAll(t *testing.T) {
	eng := newEngine(t, Options{})
	defs := tripTable(t, eng)
	rows := make([]map[string]any, 50)
	for i := range rows {
		rows[i] = map[string]any{"distance": i, "hours": 1}
	}
	rows[7]["distance"] = nil
	table, err := eng.NewTable(defs, rows)
	require.NoError(t, err)

	c, err := eng.Compile("@distance * 2 / @hours", table)
	require.NoError(t, err)

	for _, workers := range []int{0, 1, 4, 100} {
		results, err := c.EvaluateAll(context.Background(), table, workers)
		require.NoError(t, err)
		require.Len(t, results, len(rows))
		for i, r := range results {
			assert.Equal(t, i, r.Row)
			if i == 7 {
				assert.Equal(t, diagnostics.ErrR005, diagnostics.CodeOf(r.Err))
				continue
			}
			require.NoError(t, r.Err)
			assert.Equal(t, int64(2*i), mustGo(t, eng, r.Value, c.Type()), "row %d", i)
		}
	}
}

func TestEvaluateAllStopsOnCancel(t *testing.T) {
	eng := newEngine(t, Options{})
	table, err := eng.NewTable(tripTable(t, eng), []map[string]any{{"distance": 1, "hours": 1}})
	require.NoError(t, err)
	c, err := eng.Compile("@distance", table)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.EvaluateAll(ctx, table, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefinitionFiles(t *testing.T) {
	dir := t.TempDir()
	unitsFile := filepath.Join(dir, "units.yaml")
	typesFile := filepath.Join(dir, "types.yaml")
	require.NoError(t, os.WriteFile(unitsFile, []byte(`
bases:
  - name: widget
    description: one widget
aliases:
  - name: dozen
    unit: 12*widget
`), 0o600))
	require.NoError(t, os.WriteFile(typesFile, []byte(`
types:
  - name: Shape
    tags:
      - name: Circle
        inner: "(radius: Number{m})"
      - name: Point
`), 0o600))

	eng := newEngine(t, Options{UnitsFile: unitsFile, TypesFile: typesFile})
	_, ok := eng.Units().Lookup("dozen")
	assert.True(t, ok)

	c, err := eng.Compile("as(unit{dozen}, 30{widget})", nil)
	require.NoError(t, err)
	v, err := c.Evaluate(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.5, mustGo(t, eng, v, c.Type()))

	c, err = eng.Compile("match Shape:Circle((radius: 2{m})) { Shape:Circle(s) -> s.radius; Shape:Point -> 0{m} }", nil)
	require.NoError(t, err)
	assert.Equal(t, "Number{m}", c.Type().String())
	v, err = c.Evaluate(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), mustGo(t, eng, v, c.Type()))

	_, err = New(Options{UnitsFile: filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	eng := newEngine(t, Options{})
	out, err := eng.Format("define   x=1,y=x+1  in   x*y")
	require.NoError(t, err)
	again, err := eng.Format(out)
	require.NoError(t, err)
	assert.Equal(t, out, again)

	_, err = eng.Format("define x")
	assert.Equal(t, diagnostics.ErrP001, diagnostics.CodeOf(err))
}

type point struct {
	X int
	Y float64
}

func TestMarshaller(t *testing.T) {
	eng := newEngine(t, Options{})
	m := eng.Marshaller()

	rec := mustType(t, eng, "(x: Number, y: Number)")
	v, err := m.ToValue(point{X: 1, Y: 2.5}, rec)
	require.NoError(t, err)
	back, err := m.FromValue(v, rec)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": int64(1), "y": 2.5}, back)

	_, err = m.ToValue(map[string]any{"x": 1}, rec)
	assert.Error(t, err)

	opt := mustType(t, eng, "Optional([Text])")
	v, err = m.ToValue([]string{"a", "b"}, opt)
	require.NoError(t, err)
	back, err = m.FromValue(v, opt)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, back)

	var none *string
	v, err = m.ToValue(none, opt)
	require.NoError(t, err)
	back, err = m.FromValue(v, opt)
	require.NoError(t, err)
	assert.Nil(t, back)

	day := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	v, err = m.ToValue("2024-02-29", mustType(t, eng, "Date"))
	require.NoError(t, err)
	back, err = m.FromValue(v, mustType(t, eng, "Date"))
	require.NoError(t, err)
	assert.True(t, day.Equal(back.(time.Time)))

	_, err = m.ToValue(true, mustType(t, eng, "Number"))
	assert.Error(t, err)
}

func TestTaggedMarshalling(t *testing.T) {
	eng := newEngine(t, Options{})
	require.NoError(t, eng.Types().Define(typesystem.TaggedDecl{
		Name: "Status",
		Tags: []typesystem.TagDecl{{Name: "Active"}, {Name: "Retired", Inner: typesystem.TemporalSpec{Kind: typesystem.KindDate}}},
	}))
	status := mustType(t, eng, "Status")
	m := eng.Marshaller()

	v, err := m.ToValue(Tag{Name: "Retired", Value: "2020-01-31"}, status)
	require.NoError(t, err)
	back, err := m.FromValue(v, status)
	require.NoError(t, err)
	require.IsType(t, Tag{}, back)
	assert.Equal(t, "Retired", back.(Tag).Name)

	_, err = m.ToValue(Tag{Name: "Active", Value: 1}, status)
	assert.Error(t, err)
	_, err = m.ToValue(Tag{Name: "Missing"}, status)
	assert.Error(t, err)
	_, err = m.ToValue("Active", status)
	assert.Error(t, err)
}
