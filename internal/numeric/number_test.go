package numeric

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeepsIntegersNative(t *testing.T) {
	assert.False(t, MustParse("12").IsDecimal())
	assert.False(t, MustParse("-9223372036854775808").IsDecimal())
	assert.True(t, MustParse("9223372036854775808").IsDecimal())
	assert.True(t, MustParse("2.5").IsDecimal())
	_, err := Parse("abc")
	assert.Error(t, err)
}

func mustAdd(t *testing.T, a, b Number) Number {
	t.Helper()
	n, err := Add(a, b)
	require.NoError(t, err)
	return n
}

func TestAddOverflowPromotes(t *testing.T) {
	sum := mustAdd(t, FromInt64(math.MaxInt64), FromInt64(1))
	require.True(t, sum.IsDecimal())
	assert.Equal(t, "9223372036854775808", sum.String())

	diff, err := Subtract(FromInt64(math.MinInt64), FromInt64(1))
	require.NoError(t, err)
	assert.Equal(t, "-9223372036854775809", diff.String())

	assert.False(t, mustAdd(t, FromInt64(2), FromInt64(3)).IsDecimal())
}

func TestMultiplyOverflowPromotes(t *testing.T) {
	p, err := Multiply(FromInt64(math.MinInt64), FromInt64(-1))
	require.NoError(t, err)
	require.True(t, p.IsDecimal())
	assert.Equal(t, "9223372036854775808", p.String())

	p, err = Multiply(FromInt64(2), FromInt64(3))
	require.NoError(t, err)
	assert.Equal(t, "6", p.String())
}

func TestExponentRangeOverflow(t *testing.T) {
	huge := MustParse("1e99999")

	_, err := Multiply(huge, huge)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Pow(FromInt64(10), FromInt64(200000))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Pow(MustParse("10.5"), FromInt64(200000))
	assert.Error(t, err)

	_, err = ScaleBy(huge, big.NewRat(1000, 1))
	assert.ErrorIs(t, err, ErrOverflow)

	p, err := Pow(FromInt64(10), FromInt64(30))
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000000000000000", p.String())
}

func TestSetPrecisionIsFixedOnce(t *testing.T) {
	require.NoError(t, SetPrecision(DefaultPrecision))
	require.NoError(t, SetPrecision(0))
	assert.ErrorIs(t, SetPrecision(12), ErrPrecisionFixed)
	assert.Equal(t, DefaultPrecision, Precision())
}

func TestDivideAlwaysDecimal(t *testing.T) {
	q, err := Divide(FromInt64(10), FromInt64(4))
	require.NoError(t, err)
	assert.True(t, q.IsDecimal())
	assert.True(t, Equal(q, MustParse("2.5")))

	q, err = Divide(FromInt64(4), FromInt64(2))
	require.NoError(t, err)
	assert.True(t, q.IsDecimal())
	assert.True(t, Equal(q, FromInt64(2)))

	_, err = Divide(FromInt64(1), FromInt64(0))
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestAbs(t *testing.T) {
	values := []Number{
		FromInt64(0), FromInt64(5), FromInt64(-5), FromInt64(math.MinInt64),
		FromInt64(math.MaxInt64), MustParse("-2.75"), MustParse("1e40"),
	}
	for _, x := range values {
		a := Abs(x)
		assert.GreaterOrEqual(t, a.Sign(), 0, x.String())
		assert.True(t, Equal(a, x) || Equal(a, Negate(x)), x.String())
	}
	minAbs := Abs(FromInt64(math.MinInt64))
	assert.True(t, minAbs.IsDecimal())
	assert.Equal(t, "9223372036854775808", minAbs.String())
}

func TestRoundHalfEven(t *testing.T) {
	tests := []struct{ in, want string }{
		{"2.5", "2"}, {"3.5", "4"}, {"-2.5", "-2"}, {"2.4999", "2"},
		{"2.51", "3"}, {"7", "7"}, {"-0.5", "0"}, {"1.5", "2"},
	}
	for _, tt := range tests {
		x := MustParse(tt.in)
		r := Round(x)
		assert.True(t, r.IsIntegral(), tt.in)
		assert.True(t, Equal(r, MustParse(tt.want)), "round(%s) = %s", tt.in, r)
		d, err := Subtract(x, r)
		require.NoError(t, err)
		diff := Abs(d)
		assert.LessOrEqual(t, Compare(diff, MustParse("0.5")), 0)
	}
}

func TestRoundDecimals(t *testing.T) {
	r, err := RoundDecimals(MustParse("2.345"), 2)
	require.NoError(t, err)
	assert.Equal(t, "2.34", r.String())
	r, err = RoundDecimals(MustParse("1250"), -2)
	require.NoError(t, err)
	assert.True(t, Equal(r, FromInt64(1200)))
}

func TestCompareConsistentWithEqual(t *testing.T) {
	values := []Number{FromInt64(2), MustParse("2.0"), MustParse("2.00001"), FromInt64(-1), MustParse("-1.0")}
	for _, a := range values {
		for _, b := range values {
			assert.Equal(t, Compare(a, b) == 0, Equal(a, b))
			assert.Equal(t, Compare(a, b), -Compare(b, a))
		}
	}
}

func TestMod(t *testing.T) {
	tests := []struct{ a, b, want string }{
		{"7", "3", "1"}, {"-7", "3", "2"}, {"7", "-3", "-2"}, {"7.5", "2", "1.5"}, {"-7.5", "2", "0.5"},
	}
	for _, tt := range tests {
		got, err := Mod(MustParse(tt.a), MustParse(tt.b))
		require.NoError(t, err)
		assert.True(t, Equal(got, MustParse(tt.want)), "%s mod %s = %s", tt.a, tt.b, got)
	}
	_, err := Mod(FromInt64(1), FromInt64(0))
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestPowAndSqrt(t *testing.T) {
	p, err := Pow(FromInt64(2), FromInt64(10))
	require.NoError(t, err)
	assert.Equal(t, "1024", p.String())

	p, err = Pow(FromInt64(2), FromInt64(-1))
	require.NoError(t, err)
	assert.True(t, Equal(p, MustParse("0.5")))

	s, err := Sqrt(FromInt64(49))
	require.NoError(t, err)
	assert.False(t, s.IsDecimal())
	assert.Equal(t, "7", s.String())

	s, err = Sqrt(FromInt64(2))
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, s.Float64(), 1e-12)

	_, err = Sqrt(FromInt64(-4))
	assert.ErrorIs(t, err, ErrNotRepresentable)
}

func TestScaleBy(t *testing.T) {
	v, err := ScaleBy(MustParse("26.8224"), big.NewRat(450000, 201168))
	require.NoError(t, err)
	assert.True(t, Equal(v, FromInt64(60)), v.String())
}
