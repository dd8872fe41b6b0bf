package value

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/colexpr/internal/numeric"
	"github.com/funvibe/colexpr/internal/typesystem"
)

// Compare orders two values of the same type. The order is total and agrees
// with Equal. Records are compared field by field in name order; tagged
// values by tag position, then payload. Reading a lazy list element may fail.
func Compare(a, b Value) (int, error) {
	switch x := a.(type) {
	case Number:
		y, ok := b.(Number)
		if !ok {
			break
		}
		return numeric.Compare(x.V, y.V), nil
	case Text:
		y, ok := b.(Text)
		if !ok {
			break
		}
		return strings.Compare(x.V, y.V), nil
	case Boolean:
		y, ok := b.(Boolean)
		if !ok {
			break
		}
		switch {
		case x.V == y.V:
			return 0, nil
		case !x.V:
			return -1, nil
		default:
			return 1, nil
		}
	case Temporal:
		y, ok := b.(Temporal)
		if !ok {
			break
		}
		return compareTemporal(x, y), nil
	case Tagged:
		y, ok := b.(Tagged)
		if !ok {
			break
		}
		if x.Index != y.Index {
			return cmpInt(x.Index, y.Index), nil
		}
		if x.Inner == nil || y.Inner == nil {
			return 0, nil
		}
		return Compare(x.Inner, y.Inner)
	case Record:
		y, ok := b.(Record)
		if !ok {
			break
		}
		names := append([]string(nil), x.Names...)
		sort.Strings(names)
		for _, n := range names {
			xv, _ := x.Field(n)
			yv, ok := y.Field(n)
			if !ok {
				return 0, fmt.Errorf("record field %s missing", n)
			}
			c, err := Compare(xv, yv)
			if err != nil || c != 0 {
				return c, err
			}
		}
		return 0, nil
	case List:
		y, ok := b.(List)
		if !ok {
			break
		}
		n := x.Size()
		if y.Size() < n {
			n = y.Size()
		}
		for i := 0; i < n; i++ {
			xv, err := x.Get(i)
			if err != nil {
				return 0, err
			}
			yv, err := y.Get(i)
			if err != nil {
				return 0, err
			}
			c, err := Compare(xv, yv)
			if err != nil || c != 0 {
				return c, err
			}
		}
		return cmpInt(x.Size(), y.Size()), nil
	}
	return 0, fmt.Errorf("cannot compare %s with %s", a.Kind(), b.Kind())
}

// Equal reports whether two values of the same type are equal.
func Equal(a, b Value) (bool, error) {
	if x, ok := a.(Number); ok {
		if y, ok := b.(Number); ok {
			return numeric.Equal(x.V, y.V), nil
		}
	}
	c, err := Compare(a, b)
	return c == 0, err
}

// compareTemporal orders zoned values by instant, then zone offset, so that
// equal instants in different zones are distinct values.
func compareTemporal(x, y Temporal) int {
	if x.TKind == typesystem.KindTimeZoned {
		xs := x.T.Hour()*3600e9 + x.T.Minute()*60e9 + x.T.Second()*1e9 + x.T.Nanosecond()
		ys := y.T.Hour()*3600e9 + y.T.Minute()*60e9 + y.T.Second()*1e9 + y.T.Nanosecond()
		if c := cmpInt(xs, ys); c != 0 {
			return c
		}
	} else if c := x.T.Compare(y.T); c != 0 {
		return c
	}
	_, xo := x.T.Zone()
	_, yo := y.T.Zone()
	if c := cmpInt(xo, yo); c != 0 {
		return c
	}
	return strings.Compare(x.T.Location().String(), y.T.Location().String())
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
