package units

import "math/big"

// ratPow computes base^p exactly, reporting false when the result is irrational
// (or undefined, as for 0 to a negative power).
func ratPow(base, p *big.Rat) (*big.Rat, bool) {
	if p.Sign() == 0 {
		return big.NewRat(1, 1), true
	}
	if base.Sign() == 0 {
		return new(big.Rat), p.Sign() > 0
	}
	b := new(big.Rat).Set(base)
	e := new(big.Rat).Set(p)
	if e.Sign() < 0 {
		b.Inv(b)
		e.Neg(e)
	}
	if !e.Denom().IsInt64() || !e.Num().IsInt64() {
		return nil, false
	}
	root := e.Denom().Int64()
	if root != 1 {
		num, ok := intRoot(b.Num(), root)
		if !ok {
			return nil, false
		}
		den, ok := intRoot(b.Denom(), root)
		if !ok {
			return nil, false
		}
		b.SetFrac(num, den)
	}
	power := e.Num()
	num := new(big.Int).Exp(b.Num(), power, nil)
	den := new(big.Int).Exp(b.Denom(), power, nil)
	return new(big.Rat).SetFrac(num, den), true
}

// intRoot returns the exact n-th root of x if there is one.
func intRoot(x *big.Int, n int64) (*big.Int, bool) {
	if n <= 0 {
		return nil, false
	}
	if x.Sign() == 0 || n == 1 {
		return new(big.Int).Set(x), true
	}
	neg := x.Sign() < 0
	if neg && n%2 == 0 {
		return nil, false
	}
	a := new(big.Int).Abs(x)
	nb := big.NewInt(n)
	nm1 := big.NewInt(n - 1)
	// Newton iteration from an over-estimate converges to floor(a^(1/n)).
	r := new(big.Int).Lsh(big.NewInt(1), uint((int64(a.BitLen())+n-1)/n))
	for {
		t := new(big.Int).Quo(a, new(big.Int).Exp(r, nm1, nil))
		t.Add(t, new(big.Int).Mul(nm1, r))
		t.Quo(t, nb)
		if t.Cmp(r) >= 0 {
			break
		}
		r = t
	}
	if new(big.Int).Exp(r, nb, nil).Cmp(a) != 0 {
		return nil, false
	}
	if neg {
		r.Neg(r)
	}
	return r, true
}

// formatRat prints integers plainly and fractions as p/q.
func formatRat(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	return r.RatString()
}
