package numeric

import (
	"math"
	"math/big"

	"github.com/cockroachdb/apd/v3"
)

type decimalOp func(d, x, y *apd.Decimal) (apd.Condition, error)

// promoted runs op on the decimal forms of a and b. A result outside the
// exponent range is ErrOverflow; no value is produced after a failed op.
func promoted(op decimalOp, a, b Number) (Number, error) {
	out := new(apd.Decimal)
	cond, err := op(out, a.Decimal(), b.Decimal())
	if err != nil {
		if cond.Overflow() || cond.Underflow() {
			return Number{}, ErrOverflow
		}
		return Number{}, ErrNotRepresentable
	}
	if out.Form != apd.Finite {
		return Number{}, ErrNotRepresentable
	}
	return Number{dec: out}, nil
}

// Add returns a+b, staying native when the sum cannot overflow.
func Add(a, b Number) (Number, error) {
	if a.dec == nil && b.dec == nil {
		if (b.small > 0 && a.small <= math.MaxInt64-b.small) ||
			(b.small <= 0 && a.small >= math.MinInt64-b.small) {
			return FromInt64(a.small + b.small), nil
		}
	}
	return promoted(decimalContext().Add, a, b)
}

// Subtract returns a-b.
func Subtract(a, b Number) (Number, error) {
	if a.dec == nil && b.dec == nil {
		if (b.small < 0 && a.small <= math.MaxInt64+b.small) ||
			(b.small >= 0 && a.small >= math.MinInt64+b.small) {
			return FromInt64(a.small - b.small), nil
		}
	}
	return promoted(decimalContext().Sub, a, b)
}

// Multiply returns a*b.
func Multiply(a, b Number) (Number, error) {
	if a.dec == nil && b.dec == nil {
		if a.small == 0 || b.small == 0 {
			return FromInt64(0), nil
		}
		p := a.small * b.small
		if p/b.small == a.small && !(a.small == -1 && b.small == math.MinInt64) &&
			!(b.small == -1 && a.small == math.MinInt64) {
			return FromInt64(p), nil
		}
	}
	return promoted(decimalContext().Mul, a, b)
}

// Divide returns a/b. Division always produces a decimal.
func Divide(a, b Number) (Number, error) {
	if b.Sign() == 0 {
		return Number{}, ErrDivisionByZero
	}
	return promoted(decimalContext().Quo, a, b)
}

// Negate returns -a; the most negative int64 promotes.
func Negate(a Number) Number {
	if a.dec == nil {
		if a.small != math.MinInt64 {
			return FromInt64(-a.small)
		}
	}
	out := new(apd.Decimal)
	out.Neg(a.Decimal())
	return Number{dec: out}
}

// Abs returns |a|; the most negative int64 promotes rather than overflowing.
func Abs(a Number) Number {
	if a.Sign() < 0 {
		return Negate(a)
	}
	return a
}

// Compare returns -1, 0 or 1. It is total and consistent with Equal.
func Compare(a, b Number) int {
	if a.dec == nil && b.dec == nil {
		switch {
		case a.small < b.small:
			return -1
		case a.small > b.small:
			return 1
		}
		return 0
	}
	return a.Decimal().Cmp(b.Decimal())
}

// Equal reports numeric equality regardless of representation (2 == 2.0).
func Equal(a, b Number) bool { return Compare(a, b) == 0 }

// Mod returns a modulo b with the sign of b (floored modulo).
func Mod(a, b Number) (Number, error) {
	if b.Sign() == 0 {
		return Number{}, ErrDivisionByZero
	}
	if a.dec == nil && b.dec == nil {
		r := a.small % b.small
		if r != 0 && (r < 0) != (b.small < 0) {
			r += b.small
		}
		return FromInt64(r), nil
	}
	r, err := promoted(decimalContext().Rem, a, b)
	if err != nil {
		return Number{}, err
	}
	if r.Sign() != 0 && r.Sign() != b.Sign() {
		return Add(r, b)
	}
	return r, nil
}

func integral(a Number, rounding apd.Rounder) Number {
	if a.dec == nil {
		return a
	}
	c := *decimalContext()
	c.Rounding = rounding
	out := new(apd.Decimal)
	if _, err := c.RoundToIntegralValue(out, a.dec); err != nil {
		return a
	}
	return Number{dec: out}
}

// Round rounds to an integral value, ties to even.
func Round(a Number) Number { return integral(a, apd.RoundHalfEven) }

// Floor rounds towards negative infinity.
func Floor(a Number) Number { return integral(a, apd.RoundFloor) }

// Ceil rounds towards positive infinity.
func Ceil(a Number) Number { return integral(a, apd.RoundCeiling) }

// RoundDecimals rounds to the given number of decimal places, ties to even.
// Negative places round to tens, hundreds, and so on.
func RoundDecimals(a Number, places int32) (Number, error) {
	if a.dec == nil && places >= 0 {
		return a, nil
	}
	out := new(apd.Decimal)
	if _, err := decimalContext().Quantize(out, a.Decimal(), -places); err != nil {
		return Number{}, ErrNotRepresentable
	}
	return Number{dec: out}, nil
}

// Sqrt returns the square root of a non-negative number.
func Sqrt(a Number) (Number, error) {
	if a.Sign() < 0 {
		return Number{}, ErrNotRepresentable
	}
	if i, ok := a.Int64(); ok && a.dec == nil {
		r := int64(math.Sqrt(float64(i)))
		for _, c := range []int64{r - 1, r, r + 1} {
			if c >= 0 && c*c == i {
				return FromInt64(c), nil
			}
		}
	}
	out := new(apd.Decimal)
	if _, err := decimalContext().Sqrt(out, a.Decimal()); err != nil {
		return Number{}, ErrNotRepresentable
	}
	return Number{dec: out}, nil
}

// Pow raises a to b. Non-negative integer exponents of native integers are exact.
func Pow(a, b Number) (Number, error) {
	if a.dec == nil && b.dec == nil && b.small >= 0 {
		acc := FromInt64(1)
		base := a
		var err error
		for e := b.small; e > 0; e >>= 1 {
			if e&1 == 1 {
				if acc, err = Multiply(acc, base); err != nil {
					return Number{}, err
				}
			}
			if e > 1 {
				if base, err = Multiply(base, base); err != nil {
					return Number{}, err
				}
			}
		}
		return acc, nil
	}
	if a.Sign() == 0 && b.Sign() < 0 {
		return Number{}, ErrDivisionByZero
	}
	return promoted(decimalContext().Pow, a, b)
}

// ScaleBy multiplies a by an exact rational factor (unit conversion).
func ScaleBy(a Number, factor *big.Rat) (Number, error) {
	if factor.IsInt() && factor.Num().IsInt64() {
		return Multiply(a, FromInt64(factor.Num().Int64()))
	}
	num, err := FromRat(new(big.Rat).SetInt(factor.Num()))
	if err != nil {
		return Number{}, err
	}
	den, err := FromRat(new(big.Rat).SetInt(factor.Denom()))
	if err != nil {
		return Number{}, err
	}
	scaled, err := Multiply(a, num)
	if err != nil {
		return Number{}, err
	}
	return Divide(scaled, den)
}
