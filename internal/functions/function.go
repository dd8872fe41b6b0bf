// Package functions holds the built-in function catalogue and overload
// resolution.
//
// A Definition owns one or more overloads. Each overload builds fresh
// parameter and result types inside the caller's TypeState and, once the
// checker has resolved those types, produces the Instance that runs at the
// call site. Overloads of one definition must not overlap: for fully
// resolved argument types at most one of them may accept the call.
package functions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/units"
	"github.com/funvibe/colexpr/internal/value"
)

// Instance is the runtime callable of one call site.
type Instance func(args []value.Value) (value.Value, error)

// InstanceContext is what an overload sees when it is instantiated.
type InstanceContext struct {
	Args   []typesystem.ArgType
	Return typesystem.DataType
	Units  *units.Registry
	Types  *typesystem.TypeManager
}

// FunctionType is one overload.
type FunctionType struct {
	Signature   string
	Description string

	// Types builds fresh parameter and result types in s.
	Types func(s *typesystem.TypeState) (params []typesystem.TypeExp, result typesystem.TypeExp)

	// Instantiate runs once per call site after checking.
	Instantiate func(ctx InstanceContext) (Instance, error)
}

// Definition is a named function with its overloads.
type Definition struct {
	Name      string
	Group     string
	Overloads []*FunctionType
}

// Resolution is the overload chosen for a call site, with the parameter and
// result types it unified against the arguments.
type Resolution struct {
	Overload *FunctionType
	Params   []typesystem.TypeExp
	Result   typesystem.TypeExp
}

// NoOverloadError lists why each overload rejected a call.
type NoOverloadError struct {
	Name    string
	Args    string
	Reasons []string
}

func (e *NoOverloadError) Error() string {
	return fmt.Sprintf("no overload of %s accepts (%s):\n%s", e.Name, e.Args, strings.Join(e.Reasons, "\n"))
}

// UnitError reports a unit conversion that cannot be made.
type UnitError struct {
	From units.Unit
	To   units.Unit
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("cannot convert %s to %s", e.From, e.To)
}

type attempt struct {
	overload *FunctionType
	err      error
}

// Resolve picks the overload accepting args. Every overload is tried on a
// snapshot of s that is rolled back afterwards; the single success is then
// applied for good.
//
// No success yields a *NoOverloadError. Several successes yield a
// *typesystem.AmbiguousError while an argument still holds unbound variables,
// and a *diagnostics.InternalError otherwise.
func (d *Definition) Resolve(s *typesystem.TypeState, args []typesystem.TypeExp) (*Resolution, error) {
	actual := typesystem.TupleOf(args...)

	attempts := make([]attempt, 0, len(d.Overloads))
	for _, ft := range d.Overloads {
		snap := s.Snapshot()
		params, _ := ft.Types(s)
		err := s.Unify(typesystem.TupleOf(params...), actual)
		s.Rollback(snap)
		attempts = append(attempts, attempt{overload: ft, err: err})
	}

	var accepted []*FunctionType
	for _, a := range attempts {
		if a.err == nil {
			accepted = append(accepted, a.overload)
		}
	}

	switch len(accepted) {
	case 0:
		argText := make([]string, len(args))
		for i, a := range args {
			argText[i] = s.Format(a)
		}
		reasons := make([]string, len(attempts))
		for i, a := range attempts {
			reasons[i] = "  " + a.overload.Signature + ": " + a.err.Error()
		}
		return nil, &NoOverloadError{Name: d.Name, Args: strings.Join(argText, ", "), Reasons: reasons}
	case 1:
		ft := accepted[0]
		params, result := ft.Types(s)
		if err := s.Unify(typesystem.TupleOf(params...), actual); err != nil {
			return nil, &diagnostics.InternalError{Message: "overload " + ft.Signature + " failed on replay", Cause: err}
		}
		return &Resolution{Overload: ft, Params: params, Result: result}, nil
	}

	if !s.IsResolved(actual) {
		return nil, &typesystem.AmbiguousError{Type: s.Format(actual)}
	}
	sigs := make([]string, len(accepted))
	for i, ft := range accepted {
		sigs[i] = ft.Signature
	}
	return nil, diagnostics.NewInternalError("overlapping overloads of %s for %s: %s", d.Name, s.Format(actual), strings.Join(sigs, "; "))
}

// Registry maps names to definitions.
type Registry struct {
	defs map[string]*Definition
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds d. Names are unique.
func (r *Registry) Register(d *Definition) error {
	if len(d.Overloads) == 0 {
		return fmt.Errorf("function %s has no overloads", d.Name)
	}
	if _, dup := r.defs[d.Name]; dup {
		return fmt.Errorf("function %s is already registered", d.Name)
	}
	r.defs[d.Name] = d
	return nil
}

func (r *Registry) Lookup(name string) (*Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for n := range r.defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Definitions returns every definition ordered by group, then name.
func (r *Registry) Definitions() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Name < out[j].Name
	})
	return out
}
