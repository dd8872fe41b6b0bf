package units

import (
	"fmt"
	"math/big"
	"sort"
	"sync"
)

// Declaration describes one registered unit symbol.
type Declaration struct {
	Name        string
	Description string
	// Definition is the canonical expansion of an alias; zero for base units.
	Definition Unit
	Alias      bool
}

// Registry holds base units and aliases. Aliases are stored already expanded to
// base units, so canonicalisation is a single substitution pass.
// A Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	decls map[string]Declaration
}

// NewRegistry returns a registry with no units declared. Use DefaultRegistry
// for the built-in ones.
func NewRegistry() *Registry {
	return &Registry{decls: make(map[string]Declaration)}
}

// DeclareBase registers a base (irreducible) unit.
func (r *Registry) DeclareBase(name, description string) error {
	if !ValidSymbol(name) {
		return fmt.Errorf("invalid unit name %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.decls[name]; exists {
		return fmt.Errorf("unit %q is already declared", name)
	}
	r.decls[name] = Declaration{Name: name, Description: description}
	return nil
}

// DeclareAlias registers name as equal to definition, which may only mention
// units that are already declared.
func (r *Registry) DeclareAlias(name string, definition Unit, description string) error {
	if !ValidSymbol(name) {
		return fmt.Errorf("invalid unit name %q", name)
	}
	canon, err := r.Canonical(definition)
	if err != nil {
		return fmt.Errorf("alias %q: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.decls[name]; exists {
		return fmt.Errorf("unit %q is already declared", name)
	}
	r.decls[name] = Declaration{Name: name, Description: description, Definition: canon, Alias: true}
	return nil
}

// Lookup returns the declaration for a symbol.
func (r *Registry) Lookup(name string) (Declaration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decls[name]
	return d, ok
}

// Declarations returns every declaration sorted by name.
func (r *Registry) Declarations() []Declaration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Declaration, 0, len(r.decls))
	for _, d := range r.decls {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Check verifies that every symbol of u is declared.
func (r *Registry) Check(u Unit) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sym := range u.Symbols() {
		if _, ok := r.decls[sym]; !ok {
			return fmt.Errorf("unknown unit %q", sym)
		}
	}
	return nil
}

// Canonical expands every alias in u to base units, merging duplicate symbols and
// folding alias multipliers into the unit multiplier. Canonical is idempotent.
func (r *Registry) Canonical(u Unit) (Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := Scalar(u.Multiplier())
	for _, sym := range u.Symbols() {
		d, ok := r.decls[sym]
		if !ok {
			return Unit{}, fmt.Errorf("unknown unit %q", sym)
		}
		e := u.exponents[sym]
		if !d.Alias {
			out = out.times(sym, e)
			continue
		}
		expanded, err := d.Definition.RaisedToRat(e)
		if err != nil {
			return Unit{}, err
		}
		out = out.Times(expanded)
	}
	return out, nil
}

// CanScaleTo returns the factor f such that a quantity x in unit from equals
// x*f in unit to, or false when the units are not dimensionally compatible.
func (r *Registry) CanScaleTo(from, to Unit) (*big.Rat, bool) {
	a, err := r.Canonical(from)
	if err != nil {
		return nil, false
	}
	b, err := r.Canonical(to)
	if err != nil {
		return nil, false
	}
	if !a.SameDimensions(b) {
		return nil, false
	}
	return new(big.Rat).Quo(a.Multiplier(), b.Multiplier()), true
}

// CanScaleTo is the method form of Registry.CanScaleTo.
func (u Unit) CanScaleTo(target Unit, reg *Registry) (*big.Rat, bool) {
	return reg.CanScaleTo(u, target)
}
