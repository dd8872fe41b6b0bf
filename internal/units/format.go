package units

import (
	"math/big"
	"strings"
)

// String renders u in the canonical textual form accepted by Parse:
// an optional multiplier, numerator symbols joined by '*', then one '/sym^n' per
// negative exponent, e.g. "1000*kg*m/s^2". The dimensionless unit prints as "1".
func (u Unit) String() string {
	var num, den []string
	for _, sym := range u.Symbols() {
		e := u.exponents[sym]
		if e.Sign() > 0 {
			num = append(num, symbolPower(sym, e))
		} else {
			den = append(den, symbolPower(sym, new(big.Rat).Neg(e)))
		}
	}
	var sb strings.Builder
	if u.multiplier != nil {
		sb.WriteString(formatRat(u.multiplier))
		if len(num) > 0 {
			sb.WriteString("*")
		}
	} else if len(num) == 0 {
		sb.WriteString("1")
	}
	sb.WriteString(strings.Join(num, "*"))
	for _, d := range den {
		sb.WriteString("/")
		sb.WriteString(d)
	}
	return sb.String()
}

func symbolPower(sym string, e *big.Rat) string {
	switch {
	case e.Cmp(ratOne) == 0:
		return sym
	case e.IsInt():
		return sym + "^" + e.Num().String()
	default:
		return sym + "^(" + e.RatString() + ")"
	}
}
