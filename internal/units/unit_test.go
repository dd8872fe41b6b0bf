package units

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleUnits = []string{"1", "m", "m/s^2", "kg*m/s^2", "1000*m", "381/1250*m", "m^(1/2)", "USD/person", "1/s"}

func TestParseAndString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "1"},
		{"1", "1"},
		{"m", "m"},
		{"m/s^2", "m/s^2"},
		{"10^3 m^2 m", "1000*m^3"},
		{"m*m/m", "m"},
		{"s^-1", "1/s"},
		{"(m/s)^2", "m^2/s^2"},
		{"kg m / s^2", "kg*m/s^2"},
		{"m^(1/2)", "m^(1/2)"},
		{"0.3048*m", "381/1250*m"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			u, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.String())
			again, err := Parse(u.String())
			require.NoError(t, err)
			assert.True(t, again.Equal(u), "round trip of %s", u)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"m^", "(m", "m/", "0*m", "m^(1/0)", "m#"} {
		_, err := Parse(input)
		assert.Error(t, err, input)
	}
}

func TestAlgebraLaws(t *testing.T) {
	for _, a := range sampleUnits {
		for _, b := range sampleUnits {
			ua, ub := MustParse(a), MustParse(b)
			assert.True(t, ua.Divide(ub).Times(ub).Equal(ua), "%s/%s*%s", a, b, b)
			assert.True(t, ua.Divide(ub).Equal(ub.Divide(ua).Reciprocal()), "%s vs %s", a, b)
		}
	}
}

func TestRaiseThenRoot(t *testing.T) {
	for _, a := range sampleUnits {
		u := MustParse(a)
		for n := 1; n <= 10; n++ {
			rooted, err := u.RaisedTo(n).RootedBy(n)
			require.NoError(t, err)
			assert.True(t, rooted.Equal(u), "%s ^%d root %d = %s", a, n, n, rooted)
		}
	}
}

func TestRootedByIrrationalMultiplier(t *testing.T) {
	_, err := MustParse("2*m").RootedBy(2)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not a rational"))
}

func TestRootedByOddExponentStaysRational(t *testing.T) {
	odd, err := MustParse("m^3").RootedBy(2)
	require.NoError(t, err)
	assert.Equal(t, "m^(3/2)", odd.String())

	back := odd.RaisedTo(2)
	assert.True(t, back.Equal(MustParse("m^3")), back.String())

	_, err = MustParse("m").RootedBy(0)
	assert.Error(t, err)
}

func TestCanonicalIsIdempotent(t *testing.T) {
	reg := DefaultRegistry()
	for _, text := range []string{"mile/hour", "N", "J/s", "foot^2", "km/minute", "percent"} {
		once, err := reg.Canonical(MustParse(text))
		require.NoError(t, err)
		twice, err := reg.Canonical(once)
		require.NoError(t, err)
		assert.True(t, once.Equal(twice), text)
	}
}

func TestCanScaleTo(t *testing.T) {
	reg := DefaultRegistry()

	f, ok := reg.CanScaleTo(MustParse("m"), MustParse("foot"))
	require.True(t, ok)
	got, _ := f.Float64()
	assert.InDelta(t, 3.2808399, got, 1e-4)

	f, ok = reg.CanScaleTo(MustParse("m/s"), MustParse("mile/hour"))
	require.True(t, ok)
	assert.Equal(t, 0, new(big.Rat).Mul(f, big.NewRat(268224, 10000)).Cmp(big.NewRat(60, 1)))

	_, ok = reg.CanScaleTo(MustParse("m"), MustParse("s"))
	assert.False(t, ok)

	_, ok = reg.CanScaleTo(MustParse("m"), MustParse("parsec"))
	assert.False(t, ok)
}

func TestCanScaleToIsSymmetric(t *testing.T) {
	reg := DefaultRegistry()
	pairs := [][2]string{{"m", "foot"}, {"mile/hour", "km/s"}, {"N", "kg*m/s^2"}, {"l", "m^3"}, {"m", "USD"}}
	for _, p := range pairs {
		ab, okAB := reg.CanScaleTo(MustParse(p[0]), MustParse(p[1]))
		ba, okBA := reg.CanScaleTo(MustParse(p[1]), MustParse(p[0]))
		require.Equal(t, okAB, okBA, p)
		if okAB {
			assert.Equal(t, 0, ab.Cmp(new(big.Rat).Inv(ba)), p)
		}
	}
}

func TestLoadYAML(t *testing.T) {
	reg := NewRegistry()
	err := reg.LoadYAML(strings.NewReader(`
bases:
  - name: m
    description: metre
aliases:
  - name: km
    unit: 1000*m
  - name: Mm
    unit: 1000*km
`))
	require.NoError(t, err)
	d, ok := reg.Lookup("Mm")
	require.True(t, ok)
	assert.True(t, d.Alias)
	assert.Equal(t, "1000000*m", d.Definition.String())

	err = reg.LoadYAML(strings.NewReader("aliases:\n  - name: bad\n    unit: furlong\n"))
	assert.Error(t, err)
}
