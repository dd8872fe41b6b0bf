package units

// builtinBases and builtinAliases are the units every registry starts from
// unless a units file replaces them.
var builtinBases = []struct{ name, desc string }{
	{"m", "metre"},
	{"s", "second"},
	{"kg", "kilogram"},
	{"A", "ampere"},
	{"K", "kelvin"},
	{"mol", "mole"},
	{"cd", "candela"},
	{"byte", "byte"},
	{"USD", "US dollar"},
	{"EUR", "euro"},
	{"GBP", "pound sterling"},
	{"person", "person"},
}

var builtinAliases = []struct{ name, def, desc string }{
	{"km", "1000*m", "kilometre"},
	{"cm", "1/100*m", "centimetre"},
	{"mm", "1/1000*m", "millimetre"},
	{"inch", "254/10000*m", "inch"},
	{"foot", "12*inch", "foot"},
	{"yard", "3*foot", "yard"},
	{"mile", "1760*yard", "mile"},
	{"ms", "1/1000*s", "millisecond"},
	{"minute", "60*s", "minute"},
	{"hour", "60*minute", "hour"},
	{"day", "24*hour", "day"},
	{"week", "7*day", "week"},
	{"g", "1/1000*kg", "gram"},
	{"lb", "45359237/100000000*kg", "pound (mass)"},
	{"l", "1/1000*m^3", "litre"},
	{"ml", "1/1000*l", "millilitre"},
	{"N", "kg*m/s^2", "newton"},
	{"J", "N*m", "joule"},
	{"W", "J/s", "watt"},
	{"Hz", "1/s", "hertz"},
	{"KB", "1000*byte", "kilobyte"},
	{"MB", "1000*KB", "megabyte"},
	{"percent", "1/100", "percent"},
}

// DefaultRegistry returns a registry populated with the built-in SI, imperial,
// data and currency units.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, b := range builtinBases {
		if err := r.DeclareBase(b.name, b.desc); err != nil {
			panic(err)
		}
	}
	for _, a := range builtinAliases {
		if err := r.DeclareAlias(a.name, MustParse(a.def), a.desc); err != nil {
			panic(err)
		}
	}
	return r
}
