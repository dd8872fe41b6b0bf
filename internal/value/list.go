package value

import (
	"fmt"
	"strings"
)

// List is an ordered, re-enumerable sequence. Elements may be produced on
// demand, so reading one can fail.
type List interface {
	Value
	Size() int
	Get(i int) (Value, error)
}

// ArrayList is a list backed by a slice.
type ArrayList struct {
	Items []Value
}

func NewList(items ...Value) *ArrayList { return &ArrayList{Items: items} }

func (*ArrayList) Kind() ValueKind { return LIST_VALUE }
func (l *ArrayList) Size() int     { return len(l.Items) }

func (l *ArrayList) Get(i int) (Value, error) {
	if i < 0 || i >= len(l.Items) {
		return nil, fmt.Errorf("index %d out of range [0, %d)", i, len(l.Items))
	}
	return l.Items[i], nil
}

func (l *ArrayList) Inspect() string { return inspectList(l) }

// FuncList produces element i by calling At. It is how columns are exposed
// as lists without copying them.
type FuncList struct {
	N  int
	At func(i int) (Value, error)
}

func (*FuncList) Kind() ValueKind { return LIST_VALUE }
func (l *FuncList) Size() int     { return l.N }

func (l *FuncList) Get(i int) (Value, error) {
	if i < 0 || i >= l.N {
		return nil, fmt.Errorf("index %d out of range [0, %d)", i, l.N)
	}
	return l.At(i)
}

func (l *FuncList) Inspect() string { return inspectList(l) }

func inspectList(l List) string {
	parts := make([]string, 0, l.Size())
	for i := 0; i < l.Size(); i++ {
		v, err := l.Get(i)
		if err != nil {
			parts = append(parts, "<"+err.Error()+">")
			continue
		}
		parts = append(parts, v.Inspect())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Materialize reads every element of l.
func Materialize(l List) ([]Value, error) {
	if a, ok := l.(*ArrayList); ok {
		return a.Items, nil
	}
	out := make([]Value, l.Size())
	for i := range out {
		v, err := l.Get(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Each calls fn for every element in order, stopping at the first error or
// when fn returns false.
func Each(l List, fn func(i int, v Value) (bool, error)) error {
	for i := 0; i < l.Size(); i++ {
		v, err := l.Get(i)
		if err != nil {
			return err
		}
		more, err := fn(i, v)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}
