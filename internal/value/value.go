// Package value defines the runtime values produced by evaluating expressions.
package value

import (
	"strconv"
	"strings"
	"time"

	"github.com/funvibe/colexpr/internal/numeric"
	"github.com/funvibe/colexpr/internal/typesystem"
)

type ValueKind string

const (
	NUMBER_VALUE   ValueKind = "NUMBER"
	TEXT_VALUE     ValueKind = "TEXT"
	BOOLEAN_VALUE  ValueKind = "BOOLEAN"
	TEMPORAL_VALUE ValueKind = "TEMPORAL"
	TAGGED_VALUE   ValueKind = "TAGGED"
	RECORD_VALUE   ValueKind = "RECORD"
	LIST_VALUE     ValueKind = "LIST"
	LAMBDA_VALUE   ValueKind = "LAMBDA"
)

// Value is a runtime value. Its concrete type is one of the types below.
type Value interface {
	Kind() ValueKind
	Inspect() string
}

type Number struct {
	V numeric.Number
}

type Text struct {
	V string
}

type Boolean struct {
	V bool
}

// Temporal is a date, time or date-time. Unzoned kinds keep T in UTC; zoned
// kinds keep the zone as T's location. Date parts of time-only kinds are
// 0000-01-01, time parts of date-only kinds are midnight, DateYM has day 1.
type Temporal struct {
	TKind typesystem.TemporalKind
	T     time.Time
}

// Tagged is a value of a tagged type: the tag's position and its payload.
type Tagged struct {
	Index int
	Inner Value // nil for tags without payload
}

// Record holds field values in the layout order of its type.
type Record struct {
	Names  []string
	Values []Value
}

// Lambda is a function argument. It never escapes as a result.
type Lambda struct {
	Arity int
	Fn    func(args []Value) (Value, error)
}

var (
	True  = Boolean{V: true}
	False = Boolean{V: false}
)

func (Number) Kind() ValueKind   { return NUMBER_VALUE }
func (Text) Kind() ValueKind     { return TEXT_VALUE }
func (Boolean) Kind() ValueKind  { return BOOLEAN_VALUE }
func (Temporal) Kind() ValueKind { return TEMPORAL_VALUE }
func (Tagged) Kind() ValueKind   { return TAGGED_VALUE }
func (Record) Kind() ValueKind   { return RECORD_VALUE }
func (Lambda) Kind() ValueKind   { return LAMBDA_VALUE }

func NewNumber(n numeric.Number) Number { return Number{V: n} }
func Int(i int64) Number                { return Number{V: numeric.FromInt64(i)} }
func NewText(s string) Text             { return Text{V: s} }

func NewBoolean(b bool) Boolean {
	if b {
		return True
	}
	return False
}

func NewTemporal(kind typesystem.TemporalKind, t time.Time) Temporal {
	return Temporal{TKind: kind, T: Normalize(kind, t)}
}

// Normalize clears the parts of t that kind does not carry.
func Normalize(kind typesystem.TemporalKind, t time.Time) time.Time {
	switch kind {
	case typesystem.KindDate:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case typesystem.KindDateYM:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case typesystem.KindTime:
		return time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	case typesystem.KindTimeZoned:
		_, offset := t.Zone()
		return time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.FixedZone("", offset))
	case typesystem.KindDateTime:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	default:
		if name := t.Location().String(); name == "" || name == "Local" {
			_, offset := t.Zone()
			return t.In(time.FixedZone("", offset))
		}
		return t
	}
}

// Canonical layouts of temporal values, as written inside temporal literals.
const (
	DateLayout     = "2006-01-02"
	DateYMLayout   = "2006-01"
	TimeLayout     = "15:04:05.999999999"
	DateTimeLayout = "2006-01-02 15:04:05.999999999"
)

// Layout returns the canonical layout of kind without its zone suffix.
func Layout(kind typesystem.TemporalKind) string {
	switch kind {
	case typesystem.KindDate:
		return DateLayout
	case typesystem.KindDateYM:
		return DateYMLayout
	case typesystem.KindTime, typesystem.KindTimeZoned:
		return TimeLayout
	default:
		return DateTimeLayout
	}
}

// ZoneName is the zone suffix of zoned temporal values: an IANA name, or a
// numeric offset for fixed zones.
func ZoneName(t time.Time) string {
	name := t.Location().String()
	switch {
	case name == "UTC":
		return "UTC"
	case name == "" || name == "Local" || name[0] == '+' || name[0] == '-':
		return t.Format("-07:00")
	}
	if _, err := time.LoadLocation(name); err == nil {
		return name
	}
	return t.Format("-07:00")
}

func (n Number) Inspect() string  { return n.V.String() }
func (t Text) Inspect() string    { return strconv.Quote(t.V) }
func (b Boolean) Inspect() string { return strconv.FormatBool(b.V) }

func (t Temporal) Inspect() string {
	s := t.T.Format(Layout(t.TKind))
	if t.TKind == typesystem.KindDateTimeZoned || t.TKind == typesystem.KindTimeZoned {
		s += " " + ZoneName(t.T)
	}
	return s
}

func (t Tagged) Inspect() string {
	s := "#" + strconv.Itoa(t.Index)
	if t.Inner != nil {
		s += "(" + t.Inner.Inspect() + ")"
	}
	return s
}

func (r Record) Inspect() string {
	parts := make([]string, len(r.Names))
	for i, n := range r.Names {
		parts[i] = n + ": " + r.Values[i].Inspect()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (l Lambda) Inspect() string { return "<lambda/" + strconv.Itoa(l.Arity) + ">" }

// Field returns the value of the named field.
func (r Record) Field(name string) (Value, bool) {
	for i, n := range r.Names {
		if n == name {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Call applies the lambda.
func (l Lambda) Call(args ...Value) (Value, error) { return l.Fn(args) }
