// Package numeric implements the numeric tower: values stay native int64 while
// operations are exact and cannot overflow, and are promoted to arbitrary-precision
// decimals (apd) otherwise. Promotion is one way; results are never demoted.
package numeric

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/apd/v3"
)

// DefaultPrecision is the number of significant digits kept by decimal operations
// (roughly IEEE Decimal128).
const DefaultPrecision uint32 = 34

var (
	current   atomic.Pointer[apd.Context]
	fixMu     sync.Mutex
	fixed     bool
	fixedPrec uint32
)

func init() { current.Store(newContext(DefaultPrecision)) }

func newContext(precision uint32) *apd.Context {
	c := apd.BaseContext.WithPrecision(precision)
	c.Rounding = apd.RoundHalfEven
	return c
}

// decimalContext returns the context every decimal operation runs under.
// Rounding is half-even.
func decimalContext() *apd.Context { return current.Load() }

// Precision returns the number of significant digits in effect.
func Precision() uint32 { return decimalContext().Precision }

// SetPrecision fixes the process-wide decimal precision. The first call wins;
// asking again for the same precision is a no-op and asking for a different
// one fails with ErrPrecisionFixed. Zero means DefaultPrecision.
func SetPrecision(precision uint32) error {
	if precision == 0 {
		precision = DefaultPrecision
	}
	fixMu.Lock()
	defer fixMu.Unlock()
	if fixed {
		if precision != fixedPrec {
			return fmt.Errorf("%w: %d digits requested, %d in effect", ErrPrecisionFixed, precision, fixedPrec)
		}
		return nil
	}
	fixed, fixedPrec = true, precision
	current.Store(newContext(precision))
	return nil
}

var (
	// ErrDivisionByZero is returned for x/0 and x mod 0.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrNotRepresentable is returned when a result has no finite decimal value.
	ErrNotRepresentable = errors.New("result is not a representable number")
	// ErrOverflow is returned when a result leaves the decimal exponent range.
	ErrOverflow = errors.New("result is out of the decimal range")
	// ErrPrecisionFixed is returned by SetPrecision once another precision is in effect.
	ErrPrecisionFixed = errors.New("decimal precision is already fixed")
)

// Number is an entry of the numeric tower. The zero value is the integer 0.
type Number struct {
	small int64
	dec   *apd.Decimal // non-nil once promoted; never mutated after construction
}

// FromInt64 returns a native integer number.
func FromInt64(i int64) Number { return Number{small: i} }

// FromDecimal returns a decimal number holding a copy of d.
func FromDecimal(d *apd.Decimal) Number {
	return Number{dec: new(apd.Decimal).Set(d)}
}

// FromRat converts a rational to a decimal number rounded to the context precision.
func FromRat(r *big.Rat) (Number, error) {
	if r.IsInt() && r.Num().IsInt64() {
		return FromInt64(r.Num().Int64()), nil
	}
	num, _, err := apd.NewFromString(r.Num().String())
	if err != nil {
		return Number{}, err
	}
	den, _, err := apd.NewFromString(r.Denom().String())
	if err != nil {
		return Number{}, err
	}
	out := new(apd.Decimal)
	if _, err := decimalContext().Quo(out, num, den); err != nil {
		return Number{}, err
	}
	return Number{dec: out}, nil
}

// FromFloat64 converts a float result (used by transcendental functions).
func FromFloat64(f float64) (Number, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{}, ErrNotRepresentable
	}
	d, err := new(apd.Decimal).SetFloat64(f)
	if err != nil {
		return Number{}, err
	}
	return Number{dec: d}, nil
}

// Parse reads an integer or decimal literal ("12", "-3.50", "1e3").
func Parse(text string) (Number, error) {
	d, _, err := apd.NewFromString(text)
	if err != nil {
		return Number{}, fmt.Errorf("invalid number %q", text)
	}
	if d.Form != apd.Finite {
		return Number{}, fmt.Errorf("invalid number %q", text)
	}
	if d.Exponent == 0 {
		if i, err := d.Int64(); err == nil {
			return FromInt64(i), nil
		}
	}
	return Number{dec: d}, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(text string) Number {
	n, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return n
}

// IsDecimal reports whether n has been promoted to the decimal representation.
func (n Number) IsDecimal() bool { return n.dec != nil }

// Decimal returns n as a fresh decimal.
func (n Number) Decimal() *apd.Decimal {
	if n.dec != nil {
		return new(apd.Decimal).Set(n.dec)
	}
	return apd.New(n.small, 0)
}

// Int64 returns n as an int64 when it is integral and fits.
func (n Number) Int64() (int64, bool) {
	if n.dec == nil {
		return n.small, true
	}
	integral := new(apd.Decimal)
	if _, err := decimalContext().RoundToIntegralValue(integral, n.dec); err != nil || integral.Cmp(n.dec) != 0 {
		return 0, false
	}
	i, err := integral.Int64()
	return i, err == nil
}

// IsIntegral reports whether n has no fractional part.
func (n Number) IsIntegral() bool {
	if n.dec == nil {
		return true
	}
	integral := new(apd.Decimal)
	if _, err := decimalContext().RoundToIntegralValue(integral, n.dec); err != nil {
		return false
	}
	return integral.Cmp(n.dec) == 0
}

// Float64 converts n to the nearest float.
func (n Number) Float64() float64 {
	if n.dec == nil {
		return float64(n.small)
	}
	f, err := n.dec.Float64()
	if err != nil {
		return math.NaN()
	}
	return f
}

// Sign returns -1, 0 or 1.
func (n Number) Sign() int {
	if n.dec == nil {
		switch {
		case n.small < 0:
			return -1
		case n.small > 0:
			return 1
		}
		return 0
	}
	return n.dec.Sign()
}

// String renders n as a literal that Parse reads back to an equal number.
func (n Number) String() string {
	if n.dec == nil {
		return fmt.Sprintf("%d", n.small)
	}
	return n.dec.Text('f')
}
