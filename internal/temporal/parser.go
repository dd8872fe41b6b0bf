// Package temporal reads dates and times from free text.
//
// Layouts are arranged in groups. Groups are tried in turn and the first
// group with a matching layout decides the result; two layouts of one group
// reading the same text as different values make the text ambiguous. Each
// Parser remembers which groups succeed and tries the most successful ones
// first, which changes speed but never results.
package temporal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/value"
)

// ErrNoMatch is returned when no layout reads the text.
var ErrNoMatch = errors.New("no known format matches")

// AmbiguousError is returned when two layouts of one group disagree.
type AmbiguousError struct {
	Text   string
	Kind   typesystem.TemporalKind
	First  value.Temporal
	Second value.Temporal
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%q is ambiguous as %s: %s or %s", e.Text, e.Kind, e.First.Inspect(), e.Second.Inspect())
}

// maxHits bounds the usage counters; all counters are halved when one reaches it.
const maxHits = 1 << 16

// Parser reads one temporal kind. It is safe for concurrent use.
type Parser struct {
	kind  typesystem.TemporalKind
	zoned []group
	plain []group
	mu    sync.Mutex
	order []int // group indices, most used first
	hits  []int
}

// NewParser returns a parser for kind with a fresh usage cache.
func NewParser(kind typesystem.TemporalKind) *Parser {
	zoned, plain := groupsFor(kind)
	p := &Parser{kind: kind, zoned: zoned, plain: plain}
	p.order = make([]int, len(plain))
	p.hits = make([]int, len(plain))
	for i := range p.order {
		p.order[i] = i
	}
	return p
}

func (p *Parser) Kind() typesystem.TemporalKind { return p.kind }

// Order returns the current group trial order by group name.
func (p *Parser) Order() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, len(p.order))
	for i, g := range p.order {
		names[i] = p.plain[g].name
	}
	return names
}

// Parse reads text as a value of the parser's kind.
func (p *Parser) Parse(text string) (value.Temporal, error) {
	text = strings.TrimSpace(text)

	p.mu.Lock()
	order := append([]int(nil), p.order...)
	p.mu.Unlock()

	var loc *time.Location
	groups := p.zoned
	if groups != nil {
		if rest, l, ok := splitZoneName(text); ok {
			text, loc, groups = rest, l, p.plain
		}
	} else {
		groups = p.plain
	}

	for _, gi := range order {
		t, found, err := p.tryGroup(groups[gi], text, loc)
		if err != nil {
			return value.Temporal{}, err
		}
		if found {
			p.hit(gi)
			return t, nil
		}
	}
	return value.Temporal{}, fmt.Errorf("%q as %s: %w", text, p.kind, ErrNoMatch)
}

func (p *Parser) tryGroup(g group, text string, loc *time.Location) (value.Temporal, bool, error) {
	var result value.Temporal
	found := false
	for _, layout := range g.layouts {
		var t time.Time
		var err error
		if loc != nil {
			t, err = time.ParseInLocation(layout, text, loc)
		} else {
			t, err = time.Parse(layout, text)
		}
		if err != nil {
			continue
		}
		v := value.NewTemporal(p.kind, t)
		if !found {
			result, found = v, true
			continue
		}
		if eq, _ := value.Equal(result, v); !eq {
			return value.Temporal{}, false, &AmbiguousError{Text: text, Kind: p.kind, First: result, Second: v}
		}
	}
	return result, found, nil
}

func (p *Parser) hit(gi int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hits[gi]++
	if p.hits[gi] >= maxHits {
		for i := range p.hits {
			p.hits[i] /= 2
		}
	}
	sort.SliceStable(p.order, func(i, j int) bool {
		return p.hits[p.order[i]] > p.hits[p.order[j]]
	})
}

// splitZoneName splits a trailing IANA zone name ("Europe/Paris", "UTC") off text.
func splitZoneName(text string) (string, *time.Location, bool) {
	i := strings.LastIndexByte(text, ' ')
	if i <= 0 {
		return "", nil, false
	}
	name := text[i+1:]
	if name != "UTC" && !strings.Contains(name, "/") {
		return "", nil, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return "", nil, false
	}
	return strings.TrimSpace(text[:i]), loc, true
}
