// Package units implements the unit algebra used by number types: symbolic units with
// rational exponents, a rational scalar multiplier, canonicalisation through an
// alias registry and conversion factors between compatible units.
package units

import (
	"fmt"
	"math/big"
	"sort"
)

// Unit is an immutable product of unit symbols raised to rational exponents,
// times a rational multiplier (e.g. 3*m/s^2).
// The zero value is the dimensionless unit 1.
type Unit struct {
	multiplier *big.Rat           // nil means 1
	exponents  map[string]*big.Rat // never holds zero exponents
}

var ratOne = big.NewRat(1, 1)

// One returns the dimensionless unit.
func One() Unit { return Unit{} }

// Symbol returns the unit consisting of a single symbol with exponent 1.
func Symbol(name string) Unit {
	return Unit{exponents: map[string]*big.Rat{name: big.NewRat(1, 1)}}
}

// Scalar returns a dimensionless unit carrying only a multiplier.
func Scalar(m *big.Rat) Unit {
	return Unit{}.withMultiplier(m)
}

// New builds a unit from a multiplier (nil for 1) and symbol exponents.
func New(multiplier *big.Rat, exponents map[string]*big.Rat) Unit {
	u := Unit{}.withMultiplier(multiplier)
	for sym, e := range exponents {
		u = u.times(sym, e)
	}
	return u
}

func (u Unit) withMultiplier(m *big.Rat) Unit {
	if m == nil || m.Cmp(ratOne) == 0 {
		return Unit{exponents: u.exponents}
	}
	return Unit{multiplier: new(big.Rat).Set(m), exponents: u.exponents}
}

// Multiplier returns a copy of the scalar multiplier.
func (u Unit) Multiplier() *big.Rat {
	if u.multiplier == nil {
		return big.NewRat(1, 1)
	}
	return new(big.Rat).Set(u.multiplier)
}

// Exponent returns the exponent of sym (zero when absent).
func (u Unit) Exponent(sym string) *big.Rat {
	if e, ok := u.exponents[sym]; ok {
		return new(big.Rat).Set(e)
	}
	return new(big.Rat)
}

// Symbols returns the symbols with non-zero exponents, sorted.
func (u Unit) Symbols() []string {
	out := make([]string, 0, len(u.exponents))
	for sym := range u.exponents {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// IsScalar reports whether u has no symbols (it may still carry a multiplier).
func (u Unit) IsScalar() bool { return len(u.exponents) == 0 }

// IsOne reports whether u is exactly the dimensionless unit 1.
func (u Unit) IsOne() bool { return u.IsScalar() && u.multiplier == nil }

// WithoutMultiplier returns u with its multiplier reset to 1.
func (u Unit) WithoutMultiplier() Unit { return Unit{exponents: u.exponents} }

// times multiplies in sym^e, dropping the symbol if the exponent sums to zero.
func (u Unit) times(sym string, e *big.Rat) Unit {
	if e.Sign() == 0 {
		return u
	}
	out := Unit{multiplier: u.multiplier, exponents: make(map[string]*big.Rat, len(u.exponents)+1)}
	for k, v := range u.exponents {
		out.exponents[k] = v
	}
	sum := new(big.Rat).Add(u.Exponent(sym), e)
	if sum.Sign() == 0 {
		delete(out.exponents, sym)
	} else {
		out.exponents[sym] = sum
	}
	return out
}

// Times returns u*v: exponents add, multipliers multiply.
func (u Unit) Times(v Unit) Unit {
	out := u.withMultiplier(new(big.Rat).Mul(u.Multiplier(), v.Multiplier()))
	for _, sym := range v.Symbols() {
		out = out.times(sym, v.exponents[sym])
	}
	return out
}

// Reciprocal returns 1/u.
func (u Unit) Reciprocal() Unit {
	out := Unit{}.withMultiplier(new(big.Rat).Inv(u.Multiplier()))
	for _, sym := range u.Symbols() {
		out = out.times(sym, new(big.Rat).Neg(u.exponents[sym]))
	}
	return out
}

// Divide returns u/v.
func (u Unit) Divide(v Unit) Unit { return u.Times(v.Reciprocal()) }

// RaisedTo returns u^n for an integer n.
func (u Unit) RaisedTo(n int) Unit {
	r, err := u.RaisedToRat(big.NewRat(int64(n), 1))
	if err != nil {
		// integer powers of rationals are always exact
		panic(err)
	}
	return r
}

// RootedBy returns the n-th root of u. It fails when the multiplier has no exact
// rational root (exponents are rational, so they can always be divided).
func (u Unit) RootedBy(n int) (Unit, error) {
	if n == 0 {
		return Unit{}, fmt.Errorf("cannot take the zeroth root of %s", u)
	}
	return u.RaisedToRat(big.NewRat(1, int64(n)))
}

// RaisedToRat returns u^p for a rational p.
func (u Unit) RaisedToRat(p *big.Rat) (Unit, error) {
	m, ok := ratPow(u.Multiplier(), p)
	if !ok {
		return Unit{}, fmt.Errorf("multiplier of %s raised to %s is not a rational number", u, p.RatString())
	}
	out := Unit{}.withMultiplier(m)
	for _, sym := range u.Symbols() {
		out = out.times(sym, new(big.Rat).Mul(u.exponents[sym], p))
	}
	return out, nil
}

// Equal reports structural equality (multiplier and every exponent).
func (u Unit) Equal(v Unit) bool {
	if u.Multiplier().Cmp(v.Multiplier()) != 0 || len(u.exponents) != len(v.exponents) {
		return false
	}
	for sym, e := range u.exponents {
		o, ok := v.exponents[sym]
		if !ok || o.Cmp(e) != 0 {
			return false
		}
	}
	return true
}

// SameDimensions reports whether u and v have equal exponents, ignoring multipliers.
func (u Unit) SameDimensions(v Unit) bool {
	return u.WithoutMultiplier().Equal(v.WithoutMultiplier())
}
