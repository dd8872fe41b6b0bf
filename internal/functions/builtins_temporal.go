package functions

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/numeric"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/units"
	"github.com/funvibe/colexpr/internal/value"
)

var (
	dayUnit    = units.Symbol("day")
	secondUnit = units.Symbol("s")
)

func temporalBuiltins() []*Definition {
	var defs []*Definition
	for _, kind := range typesystem.TemporalKinds() {
		t := typesystem.Temporal(kind)
		name := strings.ToLower(t.String()) + "_from_text"
		defs = append(defs, define("temporal", name, &FunctionType{
			Signature:   name + "(Text) -> " + t.String(),
			Description: "Reads a " + t.String() + " in any known format",
			Types:       signature(t, typesystem.Text),
			Instantiate: temporalReader(kind, 0),
		}))
	}

	date := typesystem.Temporal(typesystem.KindDate)
	dated := []typesystem.TemporalKind{typesystem.KindDate, typesystem.KindDateYM, typesystem.KindDateTime, typesystem.KindDateTimeZoned}
	withDay := []typesystem.TemporalKind{typesystem.KindDate, typesystem.KindDateTime, typesystem.KindDateTimeZoned}
	withClock := []typesystem.TemporalKind{typesystem.KindDateTime, typesystem.KindDateTimeZoned}

	defs = append(defs,
		define("temporal", "date_from_ymd", &FunctionType{
			Signature:   "date_from_ymd(Number, Number, Number) -> Date",
			Description: "Builds a date from year, month and day",
			Types:       signature(date, typesystem.Unitless, typesystem.Unitless, typesystem.Unitless),
			Instantiate: fixed(dateFromYMD),
		}),
		define("temporal", "year", part("year", dated, func(t time.Time) int { return t.Year() })...),
		define("temporal", "month", part("month", dated, func(t time.Time) int { return int(t.Month()) })...),
		define("temporal", "day", part("day", withDay, func(t time.Time) int { return t.Day() })...),
		define("temporal", "days_between", &FunctionType{
			Signature:   "days_between(Date, Date) -> Number{day}",
			Description: "Days from the first date to the second",
			Types:       signature(typesystem.Number(dayUnit), date, date),
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				from, to := args[0].(value.Temporal).T, args[1].(value.Temporal).T
				return value.Int(dayNumber(to) - dayNumber(from)), nil
			}),
		}),
	)

	var addDays, secondsBetweenDefs []*FunctionType
	for _, kind := range withDay {
		t := typesystem.Temporal(kind)
		addDays = append(addDays, &FunctionType{
			Signature:   "add_days(" + t.String() + ", Number{day}) -> " + t.String(),
			Description: "Moves a " + t.String() + " by calendar days",
			Types:       signature(t, t, typesystem.Number(dayUnit)),
			Instantiate: fixed(shiftDays(kind)),
		})
	}
	for _, kind := range withClock {
		t := typesystem.Temporal(kind)
		secondsBetweenDefs = append(secondsBetweenDefs, &FunctionType{
			Signature:   "seconds_between(" + t.String() + ", " + t.String() + ") -> Number{s}",
			Description: "Elapsed seconds from the first instant to the second",
			Types:       signature(typesystem.Number(secondUnit), t, t),
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				return ratNumber(secondsBetween(args[0].(value.Temporal).T, args[1].(value.Temporal).T))
			}),
		})
	}
	return append(defs,
		define("temporal", "add_days", addDays...),
		define("temporal", "seconds_between", secondsBetweenDefs...),
	)
}

// dayNumber counts calendar days since 1970-01-01. Unlike time.Duration it
// does not saturate after 292 years.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// secondsBetween is the exact elapsed time from a to b in seconds.
func secondsBetween(a, b time.Time) *big.Rat {
	nanos := new(big.Int).Mul(big.NewInt(b.Unix()-a.Unix()), big.NewInt(int64(time.Second)))
	nanos.Add(nanos, big.NewInt(int64(b.Nanosecond()-a.Nanosecond())))
	return new(big.Rat).SetFrac(nanos, big.NewInt(int64(time.Second)))
}

// part builds one overload per kind extracting a calendar field.
func part(name string, kinds []typesystem.TemporalKind, get func(time.Time) int) []*FunctionType {
	out := make([]*FunctionType, len(kinds))
	for i, kind := range kinds {
		t := typesystem.Temporal(kind)
		out[i] = &FunctionType{
			Signature:   name + "(" + t.String() + ") -> Number",
			Description: "The " + name + " of a " + t.String(),
			Types:       signature(typesystem.Unitless, t),
			Instantiate: fixed(func(args []value.Value) (value.Value, error) {
				return value.Int(int64(get(args[0].(value.Temporal).T))), nil
			}),
		}
	}
	return out
}

func dateFromYMD(args []value.Value) (value.Value, error) {
	var ymd [3]int
	for i, what := range []string{"year", "month", "day"} {
		n, err := integerArg(args[i], what)
		if err != nil {
			return nil, err
		}
		ymd[i] = n
	}
	t := time.Date(ymd[0], time.Month(ymd[1]), ymd[2], 0, 0, 0, 0, time.UTC)
	if t.Year() != ymd[0] || int(t.Month()) != ymd[1] || t.Day() != ymd[2] {
		return nil, userError(diagnostics.ErrR004, diagnostics.MsgArithmetic, fmt.Sprintf("%04d-%02d-%02d is not a valid date", ymd[0], ymd[1], ymd[2]))
	}
	return value.NewTemporal(typesystem.KindDate, t), nil
}

// shiftDays adds whole days on the calendar, keeping the wall clock. Date-times
// also accept a fraction of a day, added as elapsed time.
func shiftDays(kind typesystem.TemporalKind) Instance {
	return func(args []value.Value) (value.Value, error) {
		t := args[0].(value.Temporal).T
		n := numberArg(args[1])
		if days, ok := n.Int64(); ok {
			return value.NewTemporal(kind, t.AddDate(0, 0, int(days))), nil
		}
		if kind == typesystem.KindDate {
			_, err := integerArg(args[1], "days")
			return nil, err
		}
		whole := numeric.Floor(n)
		days, ok := whole.Int64()
		if !ok {
			return nil, userError(diagnostics.ErrR004, diagnostics.MsgArithmetic, "day count "+n.String()+" is out of range")
		}
		frac, err := numeric.Subtract(n, whole)
		if err != nil {
			return nil, arithmeticError(err)
		}
		fracNs, err := numeric.Multiply(frac, numeric.FromInt64(int64(24*time.Hour)))
		if err != nil {
			return nil, arithmeticError(err)
		}
		ns, ok := numeric.Round(fracNs).Int64()
		if !ok {
			return nil, userError(diagnostics.ErrR004, diagnostics.MsgArithmetic, "day count "+n.String()+" is out of range")
		}
		return value.NewTemporal(kind, t.AddDate(0, 0, int(days)).Add(time.Duration(ns))), nil
	}
}
