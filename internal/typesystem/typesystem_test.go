package typesystem

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/colexpr/internal/units"
)

func TestDataTypeEquality(t *testing.T) {
	m := NewTypeManager()
	a := RecordType{Fields: []Field{{"x", Text}, {"y", Unitless}}}
	b := RecordType{Fields: []Field{{"y", Unitless}, {"x", Text}}}
	assert.True(t, a.Equal(b), "record field order is insignificant")

	withHint := NumberType{Unit: units.MustParse("m"), Display: &DisplayInfo{MaxDecimals: 2}}
	assert.True(t, withHint.Equal(Number(units.MustParse("m"))), "display hint is ignored")
	assert.False(t, Number(units.MustParse("m")).Equal(Number(units.MustParse("km"))))

	assert.True(t, m.Optional(Text).Equal(m.Optional(Text)))
	assert.False(t, m.Optional(Text).Equal(m.Optional(Boolean)))
	assert.False(t, Array(Text).Equal(Text))
	assert.True(t, Temporal(KindDate).Equal(Temporal(KindDate)))
	assert.False(t, Temporal(KindDate).Equal(Temporal(KindDateYM)))
}

func TestParseSpec(t *testing.T) {
	tests := []string{
		"Number",
		"Number{m/s}",
		"Text",
		"[Boolean]",
		"(name: Text, height: Number{m})",
		"Optional([DateTimeZoned])",
		"[[Number{kg*m/s^2}]]",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			spec, err := ParseSpec(src)
			require.NoError(t, err)
			assert.Equal(t, src, spec.String())
		})
	}

	for _, bad := range []string{"", "[Text", "(a Text)", "Number{m", "Text extra"} {
		_, err := ParseSpec(bad)
		assert.Error(t, err, bad)
	}
}

func TestTypeManagerDefine(t *testing.T) {
	m := NewTypeManager()
	require.NoError(t, m.Define(TaggedDecl{
		Name: "Shape",
		Tags: []TagDecl{
			{Name: "Circle", Inner: RecordSpec{Fields: []FieldSpec{{Name: "r", Type: NumberSpec{Unit: units.MustParse("m")}}}}},
			{Name: "Point"},
		},
	}))

	shape, err := m.Resolve(NamedSpec{Name: "Shape"})
	require.NoError(t, err)
	tagged := shape.(TaggedType)
	assert.Equal(t, 1, tagged.TagIndex("Point"))
	assert.Equal(t, "(r: Number{m})", tagged.Tags[0].Inner.String())

	opt, err := m.Resolve(NamedSpec{Name: "Optional", Args: []TypeSpec{NamedSpec{Name: "Shape"}}})
	require.NoError(t, err)
	assert.Equal(t, "Optional(Shape)", opt.String())
	assert.True(t, opt.(TaggedType).Tags[1].Inner.Equal(shape))

	errs := []TaggedDecl{
		{Name: "Shape", Tags: []TagDecl{{Name: "X"}}},
		{Name: "Text", Tags: []TagDecl{{Name: "X"}}},
		{Name: "Empty"},
		{Name: "Dup", Tags: []TagDecl{{Name: "X"}, {Name: "X"}}},
		{Name: "Self", Tags: []TagDecl{{Name: "X", Inner: NamedSpec{Name: "Self"}}}},
		{Name: "Arity", Tags: []TagDecl{{Name: "X", Inner: NamedSpec{Name: "Optional"}}}},
	}
	for _, d := range errs {
		assert.Error(t, m.Define(d), d.Name)
	}
}

func TestUnifyBindsVariables(t *testing.T) {
	s := NewTypeState(nil)
	a := s.NewVar()
	require.NoError(t, s.Unify(ArrayOf(a), ArrayOf(Prim(Text))))
	got, err := s.Resolve(a)
	require.NoError(t, err)
	assert.Equal(t, Text, got)

	b, c := s.NewVar(), s.NewVar()
	require.NoError(t, s.Unify(b, c))
	require.NoError(t, s.Unify(c, Num(units.MustParse("m"))))
	got, err = s.Resolve(b)
	require.NoError(t, err)
	assert.Equal(t, "Number{m}", got.String())
}

func TestUnifyMismatchMessage(t *testing.T) {
	s := NewTypeState(nil)
	err := s.Unify(TupleOf(Num(units.One()), Prim(Text)), TupleOf(Num(units.One()), Prim(Boolean)))
	require.Error(t, err)
	var mm *MismatchError
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, "(Number, Text)", mm.Expected)
	assert.Equal(t, "(Number, Boolean)", mm.Actual)
	assert.Contains(t, mm.Detail, "expected Text but found Boolean")
}

func TestOccursCheck(t *testing.T) {
	s := NewTypeState(nil)
	a := s.NewVar()
	err := s.Unify(a, ArrayOf(a))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "infinite type")
}

func TestUnitVariables(t *testing.T) {
	s := NewTypeState(nil)
	u := s.NewUnitVar()
	// u * s = m  =>  u = m/s
	require.NoError(t, s.UnifyUnits(u.Times(FixedUnit(units.MustParse("s"))), FixedUnit(units.MustParse("m"))))
	got, err := s.ResolveUnit(u)
	require.NoError(t, err)
	assert.Equal(t, "m/s", got.String())

	// v^2 = m^2  =>  v = m
	v := s.NewUnitVar()
	sq, err := v.RaisedToRat(big.NewRat(2, 1))
	require.NoError(t, err)
	require.NoError(t, s.UnifyUnits(sq, FixedUnit(units.MustParse("m^2"))))
	got, err = s.ResolveUnit(v)
	require.NoError(t, err)
	assert.Equal(t, "m", got.String())

	assert.Error(t, s.UnifyUnits(FixedUnit(units.MustParse("m")), FixedUnit(units.MustParse("s"))))
}

func TestUnresolvedIsAmbiguous(t *testing.T) {
	s := NewTypeState(nil)
	_, err := s.Resolve(s.NewVar())
	var amb *AmbiguousError
	require.ErrorAs(t, err, &amb)

	_, err = s.Resolve(s.NewNumVar())
	require.ErrorAs(t, err, &amb)
	assert.True(t, strings.HasPrefix(amb.Type, "Number{?u"))
}

func TestSnapshotRollback(t *testing.T) {
	s := NewTypeState(nil)
	a := s.NewVar()
	n := s.NewNumVar()
	snap := s.Snapshot()
	require.NoError(t, s.Unify(a, Prim(Text)))
	require.NoError(t, s.Unify(n, Num(units.MustParse("kg"))))
	assert.True(t, s.IsResolved(a))
	assert.True(t, s.IsResolved(n))

	s.Rollback(snap)
	assert.False(t, s.IsResolved(a))
	assert.False(t, s.IsResolved(n))
	require.NoError(t, s.Unify(a, Prim(Boolean)))
	got, err := s.Resolve(a)
	require.NoError(t, err)
	assert.Equal(t, Boolean, got)
}

func TestFreshTagged(t *testing.T) {
	s := NewTypeState(nil)
	opt, inners, err := s.FreshTagged("Optional")
	require.NoError(t, err)
	require.Len(t, inners, 2)
	assert.Nil(t, inners[0])
	require.NoError(t, s.Unify(inners[1], Prim(Text)))
	got, err := s.Resolve(opt)
	require.NoError(t, err)
	assert.Equal(t, "Optional(Text)", got.String())

	_, _, err = s.FreshTagged("Nope")
	var unknown *UnknownTypeError
	assert.ErrorAs(t, err, &unknown)
}

func TestResolveArg(t *testing.T) {
	s := NewTypeState(nil)
	arg, err := s.ResolveArg(FunctionOf(Prim(Boolean), Num(units.One())))
	require.NoError(t, err)
	require.NotNil(t, arg.Lambda)
	assert.Equal(t, "fn(Number) -> Boolean", arg.String())

	arg, err = s.ResolveArg(UnitValueOf(FixedUnit(units.MustParse("km"))))
	require.NoError(t, err)
	assert.Equal(t, "unit{km}", arg.String())

	arg, err = s.ResolveArg(TypeValueOf(Prim(Temporal(KindDate))))
	require.NoError(t, err)
	assert.Equal(t, "type{Date}", arg.String())
}

func TestLoadTypesYAML(t *testing.T) {
	doc := `
types:
  - name: Measurement
    params: [a]
    tags:
      - name: Missing
      - name: Value
        inner: "(value: a, at: DateTime)"
  - name: Speed
    tags:
      - name: Known
        inner: "Number{km/hour}"
`
	m := NewTypeManager()
	require.NoError(t, m.LoadYAML(strings.NewReader(doc), units.DefaultRegistry()))
	d, ok := m.Lookup("Measurement")
	require.True(t, ok)
	assert.Equal(t, "Measurement(a) = Missing | Value((value: a, at: DateTime))", d.String())

	bad := `
types:
  - name: Bad
    tags:
      - name: X
        inner: "Number{parsec}"
`
	assert.Error(t, NewTypeManager().LoadYAML(strings.NewReader(bad), units.DefaultRegistry()))
}
