package engine

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/funvibe/colexpr/internal/config"
	"github.com/funvibe/colexpr/internal/numeric"
	"github.com/funvibe/colexpr/internal/temporal"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/value"
)

// Tag is the Go form of a tagged value other than Optional.
type Tag struct {
	Name  string
	Value any
}

// Marshaller converts between Go values and expression values of a known type.
type Marshaller struct {
	types *typesystem.TypeManager
}

func NewMarshaller(types *typesystem.TypeManager) *Marshaller {
	return &Marshaller{types: types}
}

// ToValue converts a Go value to a value of type t. A nil val gives a nil
// value, which row sources treat as a cell that is not ready. Values that
// already are expression values pass through.
func (m *Marshaller) ToValue(val any, t typesystem.DataType) (value.Value, error) {
	if val == nil {
		return nil, nil
	}
	if v, ok := val.(value.Value); ok {
		return v, nil
	}

	rv := reflect.ValueOf(val)
	for rv.Kind() == reflect.Interface || rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			if tt, ok := t.(typesystem.TaggedType); ok && tt.Name == config.OptionalTypeName {
				return value.Tagged{Index: tt.TagIndex(config.OptionalNoneTag)}, nil
			}
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch t := t.(type) {
	case typesystem.NumberType:
		return toNumber(rv)
	case typesystem.TextType:
		if rv.Kind() == reflect.String {
			return value.NewText(rv.String()), nil
		}
		if s, ok := rv.Interface().(fmt.Stringer); ok {
			return value.NewText(s.String()), nil
		}
	case typesystem.BooleanType:
		if rv.Kind() == reflect.Bool {
			return value.NewBoolean(rv.Bool()), nil
		}
	case typesystem.TemporalType:
		switch x := rv.Interface().(type) {
		case time.Time:
			return value.NewTemporal(t.Kind, x), nil
		case string:
			return temporal.ParseLiteral(t.Kind, x)
		}
	case typesystem.ArrayType:
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			return m.sliceToList(rv, t.Elem)
		}
	case typesystem.RecordType:
		switch rv.Kind() {
		case reflect.Map:
			return m.mapToRecord(rv, t)
		case reflect.Struct:
			return m.structToRecord(rv, t)
		}
	case typesystem.TaggedType:
		return m.toTagged(rv, t)
	}
	return nil, fmt.Errorf("cannot convert %s to %s", rv.Type(), t)
}

func toNumber(rv reflect.Value) (value.Value, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > 1<<63-1 {
			n, err := numeric.Parse(fmt.Sprint(u))
			if err != nil {
				return nil, err
			}
			return value.NewNumber(n), nil
		}
		return value.Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		n, err := numeric.FromFloat64(rv.Float())
		if err != nil {
			return nil, err
		}
		return value.NewNumber(n), nil
	case reflect.String:
		n, err := numeric.Parse(strings.TrimSpace(rv.String()))
		if err != nil {
			return nil, fmt.Errorf("cannot read %q as a number", rv.String())
		}
		return value.NewNumber(n), nil
	}
	if n, ok := rv.Interface().(numeric.Number); ok {
		return value.NewNumber(n), nil
	}
	return nil, fmt.Errorf("cannot convert %s to a number", rv.Type())
}

func (m *Marshaller) sliceToList(rv reflect.Value, elem typesystem.DataType) (value.Value, error) {
	items := make([]value.Value, rv.Len())
	for i := range items {
		v, err := m.ToValue(rv.Index(i).Interface(), elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if v == nil {
			return nil, fmt.Errorf("element %d is nil", i)
		}
		items[i] = v
	}
	return value.NewList(items...), nil
}

func (m *Marshaller) mapToRecord(rv reflect.Value, t typesystem.RecordType) (value.Value, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("record keys must be strings, got %s", rv.Type().Key())
	}
	rec := value.Record{Names: make([]string, len(t.Fields)), Values: make([]value.Value, len(t.Fields))}
	for i, f := range t.Fields {
		fv := rv.MapIndex(reflect.ValueOf(f.Name).Convert(rv.Type().Key()))
		if !fv.IsValid() {
			return nil, fmt.Errorf("missing field %s", f.Name)
		}
		v, err := m.ToValue(fv.Interface(), f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		rec.Names[i], rec.Values[i] = f.Name, v
	}
	if rv.Len() != len(t.Fields) {
		return nil, fmt.Errorf("record has %d fields, %s has %d", rv.Len(), t, len(t.Fields))
	}
	return rec, nil
}

// structToRecord matches exported struct fields by name, case-insensitively,
// so that Distance fills a field named distance.
func (m *Marshaller) structToRecord(rv reflect.Value, t typesystem.RecordType) (value.Value, error) {
	rec := value.Record{Names: make([]string, len(t.Fields)), Values: make([]value.Value, len(t.Fields))}
	for i, f := range t.Fields {
		fv := rv.FieldByNameFunc(func(name string) bool { return strings.EqualFold(name, f.Name) })
		if !fv.IsValid() || !fv.CanInterface() {
			return nil, fmt.Errorf("missing field %s", f.Name)
		}
		v, err := m.ToValue(fv.Interface(), f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		rec.Names[i], rec.Values[i] = f.Name, v
	}
	return rec, nil
}

// toTagged builds Optional values from plain Go values (present unless nil)
// and other tagged values from Tag.
func (m *Marshaller) toTagged(rv reflect.Value, t typesystem.TaggedType) (value.Value, error) {
	if tag, ok := rv.Interface().(Tag); ok {
		idx := t.TagIndex(tag.Name)
		if idx < 0 {
			return nil, fmt.Errorf("type %s has no tag %s", t, tag.Name)
		}
		out := value.Tagged{Index: idx}
		inner := t.Tags[idx].Inner
		switch {
		case inner == nil && tag.Value != nil:
			return nil, fmt.Errorf("%s:%s carries no value", t.Name, tag.Name)
		case inner != nil:
			v, err := m.ToValue(tag.Value, inner)
			if err != nil {
				return nil, fmt.Errorf("%s:%s: %w", t.Name, tag.Name, err)
			}
			if v == nil {
				return nil, fmt.Errorf("%s:%s needs a value", t.Name, tag.Name)
			}
			out.Inner = v
		}
		return out, nil
	}
	if t.Name == config.OptionalTypeName {
		idx := t.TagIndex(config.OptionalSomeTag)
		v, err := m.ToValue(rv.Interface(), t.Tags[idx].Inner)
		if err != nil {
			return nil, err
		}
		return value.Tagged{Index: idx, Inner: v}, nil
	}
	return nil, fmt.Errorf("cannot convert %s to %s; use engine.Tag", rv.Type(), t)
}

// FromValue converts a value of type t to plain Go: integral numbers become
// int64 and other numbers float64, texts string, temporals time.Time, lists
// []any, records map[string]any, Optional nil or its payload, and other
// tagged values Tag.
func (m *Marshaller) FromValue(v value.Value, t typesystem.DataType) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case value.Number:
		if i, ok := x.V.Int64(); ok {
			return i, nil
		}
		return x.V.Float64(), nil
	case value.Text:
		return x.V, nil
	case value.Boolean:
		return x.V, nil
	case value.Temporal:
		return x.T, nil
	case value.List:
		var elem typesystem.DataType
		if at, ok := t.(typesystem.ArrayType); ok {
			elem = at.Elem
		}
		items, err := value.Materialize(x)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(items))
		for i, item := range items {
			if out[i], err = m.FromValue(item, elem); err != nil {
				return nil, err
			}
		}
		return out, nil
	case value.Record:
		rt, _ := t.(typesystem.RecordType)
		out := make(map[string]any, len(x.Names))
		for i, name := range x.Names {
			var ft typesystem.DataType
			for _, f := range rt.Fields {
				if f.Name == name {
					ft = f.Type
				}
			}
			fv, err := m.FromValue(x.Values[i], ft)
			if err != nil {
				return nil, err
			}
			out[name] = fv
		}
		return out, nil
	case value.Tagged:
		tt, ok := t.(typesystem.TaggedType)
		if !ok || x.Index < 0 || x.Index >= len(tt.Tags) {
			return nil, fmt.Errorf("cannot convert tagged value %s without its type", x.Inspect())
		}
		tag := tt.Tags[x.Index]
		inner, err := m.FromValue(x.Inner, tag.Inner)
		if err != nil {
			return nil, err
		}
		if tt.Name == config.OptionalTypeName {
			return inner, nil
		}
		return Tag{Name: tag.Name, Value: inner}, nil
	}
	return nil, fmt.Errorf("unsupported value for conversion: %s", v.Kind())
}
