package typesystem

import "github.com/funvibe/colexpr/internal/units"

// TypeExp is a type during inference. Variables refer to cells of the
// TypeState that created them.
type TypeExp interface {
	typeExp()
}

// VarExp is a type variable.
type VarExp struct {
	ID int
}

// PrimExp wraps a concrete Text, Boolean or Temporal type.
type PrimExp struct {
	Type DataType
}

// NumExp is a number whose unit may contain unit variables.
type NumExp struct {
	Unit    UnitExp
	Display *DisplayInfo
}

type ConsKind int

const (
	ConsArray ConsKind = iota
	ConsTuple
	ConsFunction  // Args holds the parameters followed by the result
	ConsTypeValue // the type of a `type{T}` argument; Args[0] is T
	ConsTagged
)

// ConsExp is a type constructor applied to arguments.
type ConsExp struct {
	Kind ConsKind
	Name string // tagged type name
	Args []TypeExp
}

// RecordExp is a record with a fixed set of fields.
type RecordExp struct {
	Names  []string
	Fields []TypeExp
}

// UnitValueExp is the type of a `unit{u}` argument.
type UnitValueExp struct {
	Unit UnitExp
}

func (*VarExp) typeExp()       {}
func (*PrimExp) typeExp()      {}
func (*NumExp) typeExp()       {}
func (*ConsExp) typeExp()      {}
func (*RecordExp) typeExp()    {}
func (*UnitValueExp) typeExp() {}

// Convenience constructors for the shapes built by function signatures.

func Num(u units.Unit) *NumExp    { return &NumExp{Unit: FixedUnit(u)} }
func NumOf(u UnitExp) *NumExp     { return &NumExp{Unit: u} }
func Prim(t DataType) *PrimExp    { return &PrimExp{Type: t} }
func ArrayOf(elem TypeExp) *ConsExp { return &ConsExp{Kind: ConsArray, Args: []TypeExp{elem}} }
func TupleOf(items ...TypeExp) *ConsExp {
	return &ConsExp{Kind: ConsTuple, Args: items}
}
func TypeValueOf(t TypeExp) *ConsExp { return &ConsExp{Kind: ConsTypeValue, Args: []TypeExp{t}} }
func UnitValueOf(u UnitExp) *UnitValueExp { return &UnitValueExp{Unit: u} }

// FunctionOf builds the type of a lambda taking params and returning result.
func FunctionOf(result TypeExp, params ...TypeExp) *ConsExp {
	args := make([]TypeExp, 0, len(params)+1)
	args = append(args, params...)
	args = append(args, result)
	return &ConsExp{Kind: ConsFunction, Args: args}
}

// TaggedOf builds a tagged type application.
func TaggedOf(name string, args ...TypeExp) *ConsExp {
	return &ConsExp{Kind: ConsTagged, Name: name, Args: args}
}

// FromDataType lifts a concrete type into inference form.
func FromDataType(t DataType) TypeExp {
	switch t := t.(type) {
	case NumberType:
		return &NumExp{Unit: FixedUnit(t.Unit), Display: t.Display}
	case TextType, BooleanType, TemporalType:
		return &PrimExp{Type: t}
	case ArrayType:
		return ArrayOf(FromDataType(t.Elem))
	case RecordType:
		r := &RecordExp{Names: make([]string, len(t.Fields)), Fields: make([]TypeExp, len(t.Fields))}
		for i, f := range t.Fields {
			r.Names[i] = f.Name
			r.Fields[i] = FromDataType(f.Type)
		}
		return r
	case TaggedType:
		args := make([]TypeExp, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			args[i] = FromDataType(a)
		}
		return TaggedOf(t.Name, args...)
	default:
		return nil
	}
}
