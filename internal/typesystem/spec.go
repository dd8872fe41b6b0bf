package typesystem

import (
	"strings"

	"github.com/funvibe/colexpr/internal/units"
)

// TypeSpec is the written form of a type, as it appears in `type{...}`
// literals and in tagged type declarations. A NamedSpec without arguments may
// refer to a type variable of the enclosing declaration.
type TypeSpec interface {
	String() string
	typeSpec()
}

type NumberSpec struct {
	Unit units.Unit
}

type TextSpec struct{}

type BooleanSpec struct{}

type TemporalSpec struct {
	Kind TemporalKind
}

type ArraySpec struct {
	Elem TypeSpec
}

type FieldSpec struct {
	Name string
	Type TypeSpec
}

type RecordSpec struct {
	Fields []FieldSpec
}

// NamedSpec names a tagged type (with arguments) or a type variable.
type NamedSpec struct {
	Name string
	Args []TypeSpec
}

func (NumberSpec) typeSpec()   {}
func (TextSpec) typeSpec()     {}
func (BooleanSpec) typeSpec()  {}
func (TemporalSpec) typeSpec() {}
func (ArraySpec) typeSpec()    {}
func (RecordSpec) typeSpec()   {}
func (NamedSpec) typeSpec()    {}

func (s NumberSpec) String() string {
	if s.Unit.IsOne() {
		return "Number"
	}
	return "Number{" + s.Unit.String() + "}"
}

func (TextSpec) String() string       { return "Text" }
func (BooleanSpec) String() string    { return "Boolean" }
func (s TemporalSpec) String() string { return s.Kind.String() }
func (s ArraySpec) String() string    { return "[" + s.Elem.String() + "]" }

func (s RecordSpec) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (s NamedSpec) String() string {
	if len(s.Args) == 0 {
		return s.Name
	}
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = a.String()
	}
	return s.Name + "(" + strings.Join(args, ", ") + ")"
}

// SpecOf converts a resolved type back into its written form.
func SpecOf(t DataType) TypeSpec {
	switch t := t.(type) {
	case NumberType:
		return NumberSpec{Unit: t.Unit}
	case TextType:
		return TextSpec{}
	case BooleanType:
		return BooleanSpec{}
	case TemporalType:
		return TemporalSpec{Kind: t.Kind}
	case ArrayType:
		return ArraySpec{Elem: SpecOf(t.Elem)}
	case RecordType:
		fields := make([]FieldSpec, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = FieldSpec{Name: f.Name, Type: SpecOf(f.Type)}
		}
		return RecordSpec{Fields: fields}
	case TaggedType:
		args := make([]TypeSpec, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			args[i] = SpecOf(a)
		}
		return NamedSpec{Name: t.Name, Args: args}
	default:
		return nil
	}
}
