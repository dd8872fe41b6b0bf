package temporal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/value"
)

// ParseLiteral reads the canonical form written by value.Temporal.Inspect,
// as found inside date{...} and the other temporal literals.
func ParseLiteral(kind typesystem.TemporalKind, text string) (value.Temporal, error) {
	text = strings.TrimSpace(text)
	loc := time.UTC
	if kind == typesystem.KindDateTimeZoned || kind == typesystem.KindTimeZoned {
		i := strings.LastIndexByte(text, ' ')
		if i <= 0 {
			return value.Temporal{}, fmt.Errorf("%s literal %q needs a zone", kind, text)
		}
		l, err := parseZone(text[i+1:])
		if err != nil {
			return value.Temporal{}, err
		}
		text, loc = text[:i], l
	}
	t, err := time.ParseInLocation(value.Layout(kind), text, loc)
	if err != nil {
		return value.Temporal{}, fmt.Errorf("invalid %s literal %q", kind, text)
	}
	return value.NewTemporal(kind, t), nil
}

// parseZone reads "UTC", a signed offset such as "+05:30", or an IANA name.
func parseZone(name string) (*time.Location, error) {
	if name == "UTC" {
		return time.UTC, nil
	}
	if len(name) == 6 && (name[0] == '+' || name[0] == '-') && name[3] == ':' {
		h, err1 := strconv.Atoi(name[1:3])
		m, err2 := strconv.Atoi(name[4:6])
		if err1 == nil && err2 == nil && h < 24 && m < 60 {
			offset := h*3600 + m*60
			if name[0] == '-' {
				offset = -offset
			}
			return time.FixedZone("", offset), nil
		}
	}
	loc, err := time.LoadLocation(name)
	if err != nil || name == "" || name == "Local" {
		return nil, fmt.Errorf("unknown time zone %q", name)
	}
	return loc, nil
}
