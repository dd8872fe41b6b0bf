package temporal

import "github.com/funvibe/colexpr/internal/typesystem"

// group is a set of layouts that can read the same text differently. Layouts
// of different groups never overlap.
type group struct {
	name    string
	layouts []string
}

var dateGroups = []group{
	{"iso", []string{"2006-1-2", "2006/1/2", "2006.1.2", "20060102"}},
	{"slashed", []string{"2/1/2006", "1/2/2006"}},
	{"dashed", []string{"2-1-2006", "1-2-2006"}},
	{"dotted", []string{"2.1.2006"}},
	{"short-year", []string{"2/1/06", "1/2/06"}},
	{"month-name", []string{
		"2 January 2006", "January 2 2006", "January 2, 2006",
		"2 Jan 2006", "Jan 2 2006", "Jan 2, 2006", "2-Jan-2006",
		"Monday, 2 January 2006", "Mon, 2 Jan 2006", "Monday, January 2, 2006",
	}},
}

var dateYMGroups = []group{
	{"iso", []string{"2006-1", "2006/1", "200601"}},
	{"month-first", []string{"1/2006", "1-2006", "1.2006"}},
	{"month-name", []string{"January 2006", "Jan 2006", "Jan-2006", "January, 2006"}},
}

var timeGroups = []group{
	{"24h", []string{"15:04:05", "15:04", "15.04.05", "15.04", "150405"}},
	{"12h", []string{"3:04:05 PM", "3:04 PM", "3:04:05PM", "3:04PM", "3:04:05 pm", "3:04 pm", "3:04pm", "3 PM", "3PM", "3pm"}},
}

// zoneSuffixes are appended to date-time and time layouts for the zoned kinds.
var zoneSuffixes = []string{"Z07:00", " Z07:00", "-0700", " -0700"}

func dateTimeGroups() []group {
	var out []group
	for _, d := range dateGroups {
		g := group{name: d.name}
		for _, dl := range d.layouts {
			for _, tg := range timeGroups {
				for _, tl := range tg.layouts {
					g.layouts = append(g.layouts, dl+" "+tl)
					if d.name == "iso" {
						g.layouts = append(g.layouts, dl+"T"+tl)
					}
				}
			}
		}
		out = append(out, g)
	}
	return out
}

func withZones(groups []group) []group {
	out := make([]group, len(groups))
	for i, g := range groups {
		out[i] = group{name: g.name}
		for _, l := range g.layouts {
			for _, z := range zoneSuffixes {
				out[i].layouts = append(out[i].layouts, l+z)
			}
		}
	}
	return out
}

// groupsFor returns the layouts for kind and, for the zoned kinds, the
// unzoned layouts used when the text ends in a zone name.
func groupsFor(kind typesystem.TemporalKind) (zoned []group, plain []group) {
	switch kind {
	case typesystem.KindDate:
		return nil, dateGroups
	case typesystem.KindDateYM:
		return nil, dateYMGroups
	case typesystem.KindTime:
		return nil, timeGroups
	case typesystem.KindDateTime:
		return nil, dateTimeGroups()
	case typesystem.KindDateTimeZoned:
		dt := dateTimeGroups()
		return withZones(dt), dt
	case typesystem.KindTimeZoned:
		return withZones(timeGroups), timeGroups
	}
	return nil, nil
}
