package units

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// Parse reads a unit expression such as "m/s^2", "10^3*m^2 m", "kg*m/s^2",
// "m^(1/2)" or "(m/s)^2". Juxtaposed factors multiply. An empty string or "1"
// is the dimensionless unit. Numeric factors fold into the multiplier.
func Parse(text string) (Unit, error) {
	p := &unitParser{src: []rune(text)}
	p.skipSpace()
	if p.eof() {
		return One(), nil
	}
	u, err := p.product()
	if err != nil {
		return Unit{}, err
	}
	p.skipSpace()
	if !p.eof() {
		return Unit{}, p.errorf("unexpected %q", string(p.src[p.pos]))
	}
	if u.Multiplier().Sign() <= 0 {
		return Unit{}, fmt.Errorf("unit %q has a non-positive multiplier", text)
	}
	return u, nil
}

// MustParse is Parse for unit text known to be valid at compile time.
func MustParse(text string) Unit {
	u, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return u
}

type unitParser struct {
	src []rune
	pos int
}

func (p *unitParser) eof() bool { return p.pos >= len(p.src) }

func (p *unitParser) peek() rune {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *unitParser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *unitParser) errorf(format string, args ...any) error {
	return fmt.Errorf("invalid unit %q at %d: %s", string(p.src), p.pos, fmt.Sprintf(format, args...))
}

func (p *unitParser) product() (Unit, error) {
	acc, err := p.power()
	if err != nil {
		return Unit{}, err
	}
	for {
		p.skipSpace()
		switch c := p.peek(); {
		case c == '*':
			p.pos++
			next, err := p.power()
			if err != nil {
				return Unit{}, err
			}
			acc = acc.Times(next)
		case c == '/':
			p.pos++
			next, err := p.power()
			if err != nil {
				return Unit{}, err
			}
			acc = acc.Divide(next)
		case c == '(' || isSymbolStart(c) || unicode.IsDigit(c):
			next, err := p.power()
			if err != nil {
				return Unit{}, err
			}
			acc = acc.Times(next)
		default:
			return acc, nil
		}
	}
}

func (p *unitParser) power() (Unit, error) {
	base, err := p.factor()
	if err != nil {
		return Unit{}, err
	}
	p.skipSpace()
	if p.peek() != '^' {
		return base, nil
	}
	p.pos++
	exp, err := p.exponent()
	if err != nil {
		return Unit{}, err
	}
	out, err := base.RaisedToRat(exp)
	if err != nil {
		return Unit{}, p.errorf("%v", err)
	}
	return out, nil
}

func (p *unitParser) exponent() (*big.Rat, error) {
	p.skipSpace()
	if p.peek() == '(' {
		p.pos++
		p.skipSpace()
		num, err := p.integer()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		den := big.NewInt(1)
		if p.peek() == '/' {
			p.pos++
			p.skipSpace()
			if den, err = p.integer(); err != nil {
				return nil, err
			}
			if den.Sign() == 0 {
				return nil, p.errorf("zero exponent denominator")
			}
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, p.errorf("expected ')'")
		}
		p.pos++
		return new(big.Rat).SetFrac(num, den), nil
	}
	n, err := p.integer()
	if err != nil {
		return nil, err
	}
	return new(big.Rat).SetInt(n), nil
}

func (p *unitParser) integer() (*big.Int, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	for !p.eof() && unicode.IsDigit(p.src[p.pos]) {
		p.pos++
	}
	n, ok := new(big.Int).SetString(string(p.src[start:p.pos]), 10)
	if !ok {
		return nil, p.errorf("expected an integer")
	}
	return n, nil
}

func (p *unitParser) factor() (Unit, error) {
	p.skipSpace()
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		inner, err := p.product()
		if err != nil {
			return Unit{}, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return Unit{}, p.errorf("expected ')'")
		}
		p.pos++
		return inner, nil
	case unicode.IsDigit(c):
		start := p.pos
		for !p.eof() && (unicode.IsDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
			p.pos++
		}
		r, ok := new(big.Rat).SetString(string(p.src[start:p.pos]))
		if !ok {
			return Unit{}, p.errorf("bad number %q", string(p.src[start:p.pos]))
		}
		if r.Sign() == 0 {
			return Unit{}, p.errorf("zero multiplier")
		}
		return Scalar(r), nil
	case isSymbolStart(c):
		start := p.pos
		for !p.eof() && isSymbolPart(p.src[p.pos]) {
			p.pos++
		}
		return Symbol(string(p.src[start:p.pos])), nil
	case c == 0:
		return Unit{}, p.errorf("unexpected end of unit")
	default:
		return Unit{}, p.errorf("unexpected %q", string(c))
	}
}

func isSymbolStart(c rune) bool {
	return unicode.IsLetter(c) || c == '_' || c == '$' || c == '%' || c == '°' || c == 'µ'
}

func isSymbolPart(c rune) bool {
	return isSymbolStart(c) || unicode.IsDigit(c)
}

// ValidSymbol reports whether name can be used as a unit symbol.
func ValidSymbol(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		if i == 0 && !isSymbolStart(c) || i > 0 && !isSymbolPart(c) {
			return false
		}
	}
	return !strings.ContainsAny(name, "*/^() ")
}
