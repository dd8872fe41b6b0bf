// Package typesystem holds the concrete types of the expression language, the
// syntax of type annotations, tagged type declarations and the inference-time
// representation used by the checker.
package typesystem

import (
	"sort"
	"strings"

	"github.com/funvibe/colexpr/internal/units"
)

// DataType is a fully resolved type. The set of implementations is closed.
type DataType interface {
	String() string
	Equal(other DataType) bool
	dataType()
}

// TemporalKind distinguishes the temporal types.
type TemporalKind int

const (
	KindDate TemporalKind = iota
	KindTime
	KindDateYM
	KindDateTime
	KindDateTimeZoned
	KindTimeZoned
)

var temporalNames = [...]string{
	KindDate:          "Date",
	KindTime:          "Time",
	KindDateYM:        "DateYM",
	KindDateTime:      "DateTime",
	KindDateTimeZoned: "DateTimeZoned",
	KindTimeZoned:     "TimeZoned",
}

func (k TemporalKind) String() string {
	if int(k) < len(temporalNames) {
		return temporalNames[k]
	}
	return "Temporal?"
}

// TemporalKinds lists every temporal kind in declaration order.
func TemporalKinds() []TemporalKind {
	return []TemporalKind{KindDate, KindTime, KindDateYM, KindDateTime, KindDateTimeZoned, KindTimeZoned}
}

// TemporalKindByName looks up a kind by its type name ("Date", "DateTimeZoned", ...).
func TemporalKindByName(name string) (TemporalKind, bool) {
	for k, n := range temporalNames {
		if n == name {
			return TemporalKind(k), true
		}
	}
	return 0, false
}

// DisplayInfo is a formatting hint for numbers. It never takes part in type equality.
// Numbers are rounded to MaxDecimals unless it is below MinDecimals, padded to
// MinDecimals, and grouped by thousands when Thousands is set.
type DisplayInfo struct {
	MinDecimals int
	MaxDecimals int
	Thousands   bool
}

type NumberType struct {
	Unit    units.Unit
	Display *DisplayInfo
}

type TextType struct{}

type BooleanType struct{}

type TemporalType struct {
	Kind TemporalKind
}

// TagType is one alternative of a tagged type. Inner is nil for tags without payload.
type TagType struct {
	Name  string
	Inner DataType
}

// TaggedType is an instantiated tagged type. Two tagged types are equal when
// their names and type arguments are equal; Tags is derived from those.
type TaggedType struct {
	Name     string
	TypeArgs []DataType
	Tags     []TagType
}

type Field struct {
	Name string
	Type DataType
}

type RecordType struct {
	Fields []Field
}

type ArrayType struct {
	Elem DataType
}

func (NumberType) dataType()   {}
func (TextType) dataType()     {}
func (BooleanType) dataType()  {}
func (TemporalType) dataType() {}
func (TaggedType) dataType()   {}
func (RecordType) dataType()   {}
func (ArrayType) dataType()    {}

var (
	Text     DataType = TextType{}
	Boolean  DataType = BooleanType{}
	Unitless DataType = NumberType{Unit: units.One()}
)

// Number returns the number type with the given unit.
func Number(u units.Unit) NumberType { return NumberType{Unit: u} }

// Temporal returns the temporal type of the given kind.
func Temporal(k TemporalKind) TemporalType { return TemporalType{Kind: k} }

// Array returns the array type of the given element type.
func Array(elem DataType) ArrayType { return ArrayType{Elem: elem} }

func (t NumberType) String() string {
	if t.Unit.IsOne() {
		return "Number"
	}
	return "Number{" + t.Unit.String() + "}"
}

func (TextType) String() string    { return "Text" }
func (BooleanType) String() string { return "Boolean" }

func (t TemporalType) String() string { return t.Kind.String() }

func (t TaggedType) String() string {
	if len(t.TypeArgs) == 0 {
		return t.Name
	}
	args := make([]string, len(t.TypeArgs))
	for i, a := range t.TypeArgs {
		args[i] = a.String()
	}
	return t.Name + "(" + strings.Join(args, ", ") + ")"
}

func (t RecordType) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t ArrayType) String() string { return "[" + t.Elem.String() + "]" }

func (t NumberType) Equal(other DataType) bool {
	o, ok := other.(NumberType)
	return ok && t.Unit.Equal(o.Unit)
}

func (TextType) Equal(other DataType) bool {
	_, ok := other.(TextType)
	return ok
}

func (BooleanType) Equal(other DataType) bool {
	_, ok := other.(BooleanType)
	return ok
}

func (t TemporalType) Equal(other DataType) bool {
	o, ok := other.(TemporalType)
	return ok && o.Kind == t.Kind
}

func (t TaggedType) Equal(other DataType) bool {
	o, ok := other.(TaggedType)
	if !ok || o.Name != t.Name || len(o.TypeArgs) != len(t.TypeArgs) {
		return false
	}
	for i := range t.TypeArgs {
		if !t.TypeArgs[i].Equal(o.TypeArgs[i]) {
			return false
		}
	}
	return true
}

func (t RecordType) Equal(other DataType) bool {
	o, ok := other.(RecordType)
	if !ok || len(o.Fields) != len(t.Fields) {
		return false
	}
	for _, f := range t.Fields {
		g, ok := o.Field(f.Name)
		if !ok || !f.Type.Equal(g) {
			return false
		}
	}
	return true
}

func (t ArrayType) Equal(other DataType) bool {
	o, ok := other.(ArrayType)
	return ok && t.Elem.Equal(o.Elem)
}

// Field returns the type of the named field.
func (t RecordType) Field(name string) (DataType, bool) {
	if i := t.FieldIndex(name); i >= 0 {
		return t.Fields[i].Type, true
	}
	return nil, false
}

// FieldIndex returns the layout position of the named field, or -1.
func (t RecordType) FieldIndex(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// SortedFieldNames returns the field names in lexical order.
func (t RecordType) SortedFieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	sort.Strings(names)
	return names
}

// TagIndex returns the position of the named tag, or -1.
func (t TaggedType) TagIndex(name string) int {
	for i, tag := range t.Tags {
		if tag.Name == name {
			return i
		}
	}
	return -1
}

// IsComparable reports whether values of t can be ordered with < and >.
// Every concrete data type is; only lambdas and type values are not, and
// those never appear as DataType.
func IsComparable(t DataType) bool {
	switch t := t.(type) {
	case NumberType, TextType, BooleanType, TemporalType:
		return true
	case ArrayType:
		return IsComparable(t.Elem)
	case RecordType:
		for _, f := range t.Fields {
			if !IsComparable(f.Type) {
				return false
			}
		}
		return true
	case TaggedType:
		for _, tag := range t.Tags {
			if tag.Inner != nil && !IsComparable(tag.Inner) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
