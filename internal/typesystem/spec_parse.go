package typesystem

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/funvibe/colexpr/internal/units"
)

// ParseSpec parses the written form of a type, e.g. `Number{m/s}`,
// `[Text]`, `(name: Text, age: Number{year})` or `Optional(Date)`.
func ParseSpec(text string) (TypeSpec, error) {
	p := &specParser{src: []rune(text)}
	spec, err := p.spec()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q", string(p.src[p.pos]))
	}
	return spec, nil
}

type specParser struct {
	src []rune
	pos int
}

func (p *specParser) eof() bool { return p.pos >= len(p.src) }

func (p *specParser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *specParser) errorf(format string, args ...any) error {
	return fmt.Errorf("type %q at offset %d: %s", string(p.src), p.pos, fmt.Sprintf(format, args...))
}

func (p *specParser) accept(r rune) bool {
	p.skipSpace()
	if !p.eof() && p.src[p.pos] == r {
		p.pos++
		return true
	}
	return false
}

func (p *specParser) expect(r rune) error {
	if !p.accept(r) {
		return p.errorf("expected %q", string(r))
	}
	return nil
}

func (p *specParser) ident() (string, error) {
	p.skipSpace()
	start := p.pos
	for !p.eof() && (unicode.IsLetter(p.src[p.pos]) || p.src[p.pos] == '_' || (p.pos > start && unicode.IsDigit(p.src[p.pos]))) {
		p.pos++
	}
	if start == p.pos {
		return "", p.errorf("expected a name")
	}
	return string(p.src[start:p.pos]), nil
}

// braced reads the text up to the matching close brace.
func (p *specParser) braced() (string, error) {
	depth := 1
	start := p.pos
	for ; !p.eof(); p.pos++ {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				text := string(p.src[start:p.pos])
				p.pos++
				return text, nil
			}
		}
	}
	return "", p.errorf("unterminated '{'")
}

func (p *specParser) spec() (TypeSpec, error) {
	switch {
	case p.accept('['):
		elem, err := p.spec()
		if err != nil {
			return nil, err
		}
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		return ArraySpec{Elem: elem}, nil
	case p.accept('('):
		var fields []FieldSpec
		for {
			name, err := p.ident()
			if err != nil {
				return nil, err
			}
			if err := p.expect(':'); err != nil {
				return nil, err
			}
			t, err := p.spec()
			if err != nil {
				return nil, err
			}
			fields = append(fields, FieldSpec{Name: name, Type: t})
			if !p.accept(',') {
				break
			}
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return RecordSpec{Fields: fields}, nil
	}

	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	switch name {
	case "Number":
		if !p.accept('{') {
			return NumberSpec{Unit: units.One()}, nil
		}
		text, err := p.braced()
		if err != nil {
			return nil, err
		}
		u, err := units.Parse(strings.TrimSpace(text))
		if err != nil {
			return nil, err
		}
		return NumberSpec{Unit: u}, nil
	case "Text":
		return TextSpec{}, nil
	case "Boolean":
		return BooleanSpec{}, nil
	}
	if k, ok := TemporalKindByName(name); ok {
		return TemporalSpec{Kind: k}, nil
	}
	named := NamedSpec{Name: name}
	if p.accept('(') {
		for {
			arg, err := p.spec()
			if err != nil {
				return nil, err
			}
			named.Args = append(named.Args, arg)
			if !p.accept(',') {
				break
			}
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
	}
	return named, nil
}
