package typesystem

import (
	"math/big"
	"sort"
	"strings"

	"github.com/funvibe/colexpr/internal/units"
)

// UnitExp is a unit that may still contain unit variables: a concrete unit
// times each variable raised to a rational power.
type UnitExp struct {
	Fixed units.Unit
	vars  map[int]*big.Rat
}

// FixedUnit wraps a concrete unit.
func FixedUnit(u units.Unit) UnitExp { return UnitExp{Fixed: u} }

func unitVar(id int) UnitExp {
	return UnitExp{Fixed: units.One(), vars: map[int]*big.Rat{id: big.NewRat(1, 1)}}
}

// IsConcrete reports whether no unit variables remain.
func (u UnitExp) IsConcrete() bool { return len(u.vars) == 0 }

func (u UnitExp) varIDs() []int {
	ids := make([]int, 0, len(u.vars))
	for id := range u.vars {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (u UnitExp) withVar(id int, e *big.Rat) UnitExp {
	out := UnitExp{Fixed: u.Fixed, vars: make(map[int]*big.Rat, len(u.vars)+1)}
	for k, v := range u.vars {
		out.vars[k] = v
	}
	sum := new(big.Rat).Set(e)
	if old, ok := out.vars[id]; ok {
		sum.Add(sum, old)
	}
	if sum.Sign() == 0 {
		delete(out.vars, id)
	} else {
		out.vars[id] = sum
	}
	return out
}

// Times multiplies two unit expressions.
func (u UnitExp) Times(v UnitExp) UnitExp {
	out := UnitExp{Fixed: u.Fixed.Times(v.Fixed)}
	for _, id := range u.varIDs() {
		out = out.withVar(id, u.vars[id])
	}
	for _, id := range v.varIDs() {
		out = out.withVar(id, v.vars[id])
	}
	return out
}

// Reciprocal inverts every exponent and the multiplier.
func (u UnitExp) Reciprocal() UnitExp {
	out := UnitExp{Fixed: u.Fixed.Reciprocal()}
	for _, id := range u.varIDs() {
		out = out.withVar(id, new(big.Rat).Neg(u.vars[id]))
	}
	return out
}

func (u UnitExp) Divide(v UnitExp) UnitExp { return u.Times(v.Reciprocal()) }

// RaisedToRat raises the expression to p. It fails when the concrete part has
// no exact rational power.
func (u UnitExp) RaisedToRat(p *big.Rat) (UnitExp, error) {
	fixed, err := u.Fixed.RaisedToRat(p)
	if err != nil {
		return UnitExp{}, err
	}
	out := UnitExp{Fixed: fixed}
	for _, id := range u.varIDs() {
		out = out.withVar(id, new(big.Rat).Mul(u.vars[id], p))
	}
	return out, nil
}

func (u UnitExp) without(id int) UnitExp {
	out := UnitExp{Fixed: u.Fixed}
	for _, k := range u.varIDs() {
		if k != id {
			out = out.withVar(k, u.vars[k])
		}
	}
	return out
}

func (u UnitExp) format(name func(id int) string) string {
	if u.IsConcrete() {
		return u.Fixed.String()
	}
	var parts []string
	if !u.Fixed.IsOne() {
		parts = append(parts, u.Fixed.String())
	}
	for _, id := range u.varIDs() {
		e := u.vars[id]
		p := name(id)
		if e.Cmp(big.NewRat(1, 1)) != 0 {
			if e.IsInt() {
				p += "^" + e.RatString()
			} else {
				p += "^(" + e.RatString() + ")"
			}
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, "*")
}
