package prettyprinter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/value"
)

// Literal renders v, of type t, as an expression that evaluates back to v.
// Lambdas have no literal form.
func Literal(v value.Value, t typesystem.DataType) (string, error) {
	var sb strings.Builder
	if err := writeLiteral(&sb, v, t); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeLiteral(sb *strings.Builder, v value.Value, t typesystem.DataType) error {
	switch v := v.(type) {
	case value.Number:
		sb.WriteString(v.V.String())
		if nt, ok := t.(typesystem.NumberType); ok && !nt.Unit.IsOne() {
			sb.WriteString("{" + nt.Unit.String() + "}")
		}
	case value.Text:
		sb.WriteString(strconv.Quote(v.V))
	case value.Boolean:
		sb.WriteString(strconv.FormatBool(v.V))
	case value.Temporal:
		sb.WriteString(temporalKeyword(v.TKind) + "{" + v.Inspect() + "}")
	case value.Tagged:
		tt, ok := t.(typesystem.TaggedType)
		if !ok || v.Index < 0 || v.Index >= len(tt.Tags) {
			return fmt.Errorf("tagged value %s does not fit type %v", v.Inspect(), t)
		}
		tag := tt.Tags[v.Index]
		sb.WriteString(tt.Name + ":" + tag.Name)
		if tag.Inner != nil && v.Inner != nil {
			sb.WriteString("(")
			if err := writeLiteral(sb, v.Inner, tag.Inner); err != nil {
				return err
			}
			sb.WriteString(")")
		}
	case value.Record:
		rt, ok := t.(typesystem.RecordType)
		if !ok {
			return fmt.Errorf("record value %s does not fit type %v", v.Inspect(), t)
		}
		sb.WriteString("(")
		for i, f := range rt.Fields {
			fv, ok := v.Field(f.Name)
			if !ok {
				return fmt.Errorf("record value %s has no field %s", v.Inspect(), f.Name)
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name + ": ")
			if err := writeLiteral(sb, fv, f.Type); err != nil {
				return err
			}
		}
		sb.WriteString(")")
	case value.List:
		at, ok := t.(typesystem.ArrayType)
		if !ok {
			return fmt.Errorf("list value does not fit type %v", t)
		}
		items, err := value.Materialize(v)
		if err != nil {
			return err
		}
		sb.WriteString("[")
		for i, item := range items {
			if i > 0 {
				sb.WriteString(", ")
			}
			if err := writeLiteral(sb, item, at.Elem); err != nil {
				return err
			}
		}
		sb.WriteString("]")
	default:
		return fmt.Errorf("%s has no literal form", v.Inspect())
	}
	return nil
}
