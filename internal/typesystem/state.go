package typesystem

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/funvibe/colexpr/internal/units"
)

type typeCell struct {
	parent int
	bound  TypeExp
}

type trailKind int

const (
	trailParent trailKind = iota
	trailBound
	trailUnit
)

type trailEntry struct {
	kind   trailKind
	id     int
	parent int
	bound  TypeExp
	unit   *UnitExp
}

// Snapshot marks a point of the undo trail.
type Snapshot int

// TypeState is the arena of type and unit variables of one checking pass.
// It is not safe for concurrent use.
type TypeState struct {
	manager *TypeManager
	types   []typeCell
	units   []*UnitExp
	trail   []trailEntry
}

// NewTypeState creates an empty arena resolving tagged types through m.
func NewTypeState(m *TypeManager) *TypeState {
	if m == nil {
		m = NewTypeManager()
	}
	return &TypeState{manager: m}
}

func (s *TypeState) Manager() *TypeManager { return s.manager }

// NewVar allocates a fresh type variable.
func (s *TypeState) NewVar() *VarExp {
	id := len(s.types)
	s.types = append(s.types, typeCell{parent: id})
	return &VarExp{ID: id}
}

// NewUnitVar allocates a fresh unit variable.
func (s *TypeState) NewUnitVar() UnitExp {
	id := len(s.units)
	s.units = append(s.units, nil)
	return unitVar(id)
}

// NewNumVar is a number with a fresh unit variable.
func (s *TypeState) NewNumVar() *NumExp {
	return &NumExp{Unit: s.NewUnitVar()}
}

func (s *TypeState) Snapshot() Snapshot { return Snapshot(len(s.trail)) }

// Rollback undoes every binding made after snap.
func (s *TypeState) Rollback(snap Snapshot) {
	for i := len(s.trail) - 1; i >= int(snap); i-- {
		e := s.trail[i]
		switch e.kind {
		case trailParent:
			s.types[e.id].parent = e.parent
		case trailBound:
			s.types[e.id].bound = e.bound
		case trailUnit:
			s.units[e.id] = e.unit
		}
	}
	s.trail = s.trail[:snap]
}

func (s *TypeState) find(id int) int {
	for s.types[id].parent != id {
		id = s.types[id].parent
	}
	return id
}

// Prune follows variable bindings until it reaches an unbound variable or a
// constructor. Unit expressions of the result are substituted as well.
func (s *TypeState) Prune(t TypeExp) TypeExp {
	switch x := t.(type) {
	case *VarExp:
		root := s.find(x.ID)
		if b := s.types[root].bound; b != nil {
			return s.Prune(b)
		}
		if root == x.ID {
			return x
		}
		return &VarExp{ID: root}
	case *NumExp:
		if x.Unit.IsConcrete() {
			return x
		}
		return &NumExp{Unit: s.PruneUnit(x.Unit), Display: x.Display}
	case *UnitValueExp:
		if x.Unit.IsConcrete() {
			return x
		}
		return &UnitValueExp{Unit: s.PruneUnit(x.Unit)}
	default:
		return t
	}
}

// PruneUnit substitutes bound unit variables. A bound variable whose binding
// has no exact rational power at its exponent is left in place.
func (s *TypeState) PruneUnit(u UnitExp) UnitExp {
	if u.IsConcrete() {
		return u
	}
	out := UnitExp{Fixed: u.Fixed}
	for _, id := range u.varIDs() {
		e := u.vars[id]
		if b := s.units[id]; b != nil {
			if sub, err := s.PruneUnit(*b).RaisedToRat(e); err == nil {
				out = out.Times(sub)
				continue
			}
		}
		out = out.withVar(id, e)
	}
	return out
}

// DefaultUnits binds every unit variable that nothing constrained to the
// unitless unit. Type variables are left alone and still resolve as ambiguous.
func (s *TypeState) DefaultUnits() {
	for id, b := range s.units {
		if b == nil {
			s.bindUnit(id, FixedUnit(units.One()))
		}
	}
}

func (s *TypeState) link(from, to int) {
	s.trail = append(s.trail, trailEntry{kind: trailParent, id: from, parent: s.types[from].parent})
	s.types[from].parent = to
}

func (s *TypeState) bind(id int, t TypeExp) error {
	if s.occurs(id, t) {
		return &MismatchError{Expected: s.Format(&VarExp{ID: id}), Actual: s.Format(t), Detail: "infinite type"}
	}
	s.trail = append(s.trail, trailEntry{kind: trailBound, id: id, bound: s.types[id].bound})
	s.types[id].bound = t
	return nil
}

func (s *TypeState) bindUnit(id int, u UnitExp) {
	s.trail = append(s.trail, trailEntry{kind: trailUnit, id: id, unit: s.units[id]})
	s.units[id] = &u
}

func (s *TypeState) occurs(root int, t TypeExp) bool {
	switch x := s.Prune(t).(type) {
	case *VarExp:
		return x.ID == root
	case *ConsExp:
		for _, a := range x.Args {
			if s.occurs(root, a) {
				return true
			}
		}
	case *RecordExp:
		for _, f := range x.Fields {
			if s.occurs(root, f) {
				return true
			}
		}
	}
	return false
}

// Unify makes expected and actual equal, binding variables as needed. On
// failure some bindings may already have been made; callers that need to
// recover take a Snapshot first.
func (s *TypeState) Unify(expected, actual TypeExp) error {
	err := s.unify(expected, actual)
	if err == nil {
		return nil
	}
	outer := &MismatchError{Expected: s.Format(expected), Actual: s.Format(actual)}
	if inner, ok := err.(*MismatchError); ok {
		if inner.Expected != outer.Expected || inner.Actual != outer.Actual {
			outer.Detail = inner.Error()
		} else {
			outer.Detail = inner.Detail
		}
	}
	return outer
}

func (s *TypeState) mismatch(a, b TypeExp) error {
	return &MismatchError{Expected: s.Format(a), Actual: s.Format(b)}
}

func (s *TypeState) unify(a, b TypeExp) error {
	a, b = s.Prune(a), s.Prune(b)
	if va, ok := a.(*VarExp); ok {
		if vb, ok := b.(*VarExp); ok {
			if va.ID != vb.ID {
				s.link(va.ID, vb.ID)
			}
			return nil
		}
		return s.bind(va.ID, b)
	}
	if vb, ok := b.(*VarExp); ok {
		return s.bind(vb.ID, a)
	}

	switch x := a.(type) {
	case *PrimExp:
		if y, ok := b.(*PrimExp); ok && x.Type.Equal(y.Type) {
			return nil
		}
	case *NumExp:
		if y, ok := b.(*NumExp); ok && s.UnifyUnits(x.Unit, y.Unit) == nil {
			return nil
		}
	case *UnitValueExp:
		if y, ok := b.(*UnitValueExp); ok && s.UnifyUnits(x.Unit, y.Unit) == nil {
			return nil
		}
	case *ConsExp:
		y, ok := b.(*ConsExp)
		if !ok || x.Kind != y.Kind || x.Name != y.Name || len(x.Args) != len(y.Args) {
			break
		}
		for i := range x.Args {
			if err := s.unify(x.Args[i], y.Args[i]); err != nil {
				return err
			}
		}
		return nil
	case *RecordExp:
		y, ok := b.(*RecordExp)
		if !ok || len(x.Names) != len(y.Names) {
			break
		}
		matched := true
		for i, name := range x.Names {
			j := indexOf(y.Names, name)
			if j < 0 {
				matched = false
				break
			}
			if err := s.unify(x.Fields[i], y.Fields[j]); err != nil {
				return err
			}
		}
		if matched {
			return nil
		}
	}
	return s.mismatch(a, b)
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// UnifyUnits makes two unit expressions equal by solving a/b = 1 for one of
// the unbound unit variables it contains.
func (s *TypeState) UnifyUnits(a, b UnitExp) error {
	d := s.PruneUnit(a).Divide(s.PruneUnit(b))
	if d.IsConcrete() {
		if d.Fixed.IsOne() {
			return nil
		}
		return fmt.Errorf("unit %s does not match %s", s.FormatUnit(a), s.FormatUnit(b))
	}
	ids := make([]int, 0, len(d.vars))
	for _, id := range d.varIDs() {
		if s.units[id] == nil {
			ids = append(ids, id)
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		ei := new(big.Rat).Abs(d.vars[ids[i]])
		ej := new(big.Rat).Abs(d.vars[ids[j]])
		return ei.Cmp(ej) < 0
	})
	for _, id := range ids {
		inv := new(big.Rat).Inv(d.vars[id])
		sol, err := d.without(id).RaisedToRat(inv.Neg(inv))
		if err != nil {
			continue
		}
		s.bindUnit(id, sol)
		return nil
	}
	return fmt.Errorf("unit %s does not match %s", s.FormatUnit(a), s.FormatUnit(b))
}

// IsResolved reports whether t contains no unbound type or unit variables.
func (s *TypeState) IsResolved(t TypeExp) bool {
	switch x := s.Prune(t).(type) {
	case *VarExp:
		return false
	case *NumExp:
		return x.Unit.IsConcrete()
	case *UnitValueExp:
		return x.Unit.IsConcrete()
	case *ConsExp:
		for _, a := range x.Args {
			if !s.IsResolved(a) {
				return false
			}
		}
	case *RecordExp:
		for _, f := range x.Fields {
			if !s.IsResolved(f) {
				return false
			}
		}
	}
	return true
}

// ResolveUnit returns the concrete unit of u.
func (s *TypeState) ResolveUnit(u UnitExp) (units.Unit, error) {
	p := s.PruneUnit(u)
	if p.IsConcrete() {
		return p.Fixed, nil
	}
	for _, id := range p.varIDs() {
		if s.units[id] != nil {
			return units.Unit{}, fmt.Errorf("unit %s has no exact rational power %s", s.FormatUnit(*s.units[id]), p.vars[id].RatString())
		}
	}
	return units.Unit{}, &AmbiguousError{Type: "Number{" + s.FormatUnit(u) + "}"}
}

// Resolve returns the concrete type of t. Unbound variables yield an
// AmbiguousError.
func (s *TypeState) Resolve(t TypeExp) (DataType, error) {
	switch x := s.Prune(t).(type) {
	case *VarExp:
		return nil, &AmbiguousError{Type: s.Format(x)}
	case *PrimExp:
		return x.Type, nil
	case *NumExp:
		u, err := s.ResolveUnit(x.Unit)
		if err != nil {
			return nil, err
		}
		return NumberType{Unit: u, Display: x.Display}, nil
	case *RecordExp:
		r := RecordType{Fields: make([]Field, len(x.Names))}
		for i, name := range x.Names {
			ft, err := s.Resolve(x.Fields[i])
			if err != nil {
				return nil, err
			}
			r.Fields[i] = Field{Name: name, Type: ft}
		}
		return r, nil
	case *ConsExp:
		switch x.Kind {
		case ConsArray:
			elem, err := s.Resolve(x.Args[0])
			if err != nil {
				return nil, err
			}
			return ArrayType{Elem: elem}, nil
		case ConsTagged:
			args := make([]DataType, len(x.Args))
			for i, a := range x.Args {
				at, err := s.Resolve(a)
				if err != nil {
					return nil, err
				}
				args[i] = at
			}
			return s.manager.Instantiate(x.Name, args)
		}
	}
	return nil, fmt.Errorf("%s is not a value type", s.Format(t))
}

// LambdaType is the resolved type of a function argument.
type LambdaType struct {
	Params []DataType
	Result DataType
}

func (l LambdaType) String() string {
	parts := make([]string, len(l.Params))
	for i, p := range l.Params {
		parts[i] = p.String()
	}
	return "fn(" + strings.Join(parts, ", ") + ") -> " + l.Result.String()
}

// ArgType is a resolved argument type. Exactly one field is set.
type ArgType struct {
	Data      DataType
	TypeValue DataType
	UnitValue *units.Unit
	Lambda    *LambdaType
}

func (a ArgType) String() string {
	switch {
	case a.Data != nil:
		return a.Data.String()
	case a.TypeValue != nil:
		return "type{" + a.TypeValue.String() + "}"
	case a.UnitValue != nil:
		return "unit{" + a.UnitValue.String() + "}"
	case a.Lambda != nil:
		return a.Lambda.String()
	}
	return "?"
}

// ResolveArg resolves t, accepting the argument-only shapes as well.
func (s *TypeState) ResolveArg(t TypeExp) (ArgType, error) {
	switch x := s.Prune(t).(type) {
	case *UnitValueExp:
		u, err := s.ResolveUnit(x.Unit)
		if err != nil {
			return ArgType{}, err
		}
		return ArgType{UnitValue: &u}, nil
	case *ConsExp:
		switch x.Kind {
		case ConsTypeValue:
			inner, err := s.Resolve(x.Args[0])
			if err != nil {
				return ArgType{}, err
			}
			return ArgType{TypeValue: inner}, nil
		case ConsFunction:
			l := &LambdaType{Params: make([]DataType, len(x.Args)-1)}
			for i, a := range x.Args[:len(x.Args)-1] {
				p, err := s.Resolve(a)
				if err != nil {
					return ArgType{}, err
				}
				l.Params[i] = p
			}
			r, err := s.Resolve(x.Args[len(x.Args)-1])
			if err != nil {
				return ArgType{}, err
			}
			l.Result = r
			return ArgType{Lambda: l}, nil
		}
	}
	d, err := s.Resolve(t)
	if err != nil {
		return ArgType{}, err
	}
	return ArgType{Data: d}, nil
}

// FromSpec lifts a written type. Names found in bindings are type variables.
func (s *TypeState) FromSpec(spec TypeSpec, bindings map[string]TypeExp) (TypeExp, error) {
	switch x := spec.(type) {
	case NumberSpec:
		return Num(x.Unit), nil
	case TextSpec:
		return Prim(Text), nil
	case BooleanSpec:
		return Prim(Boolean), nil
	case TemporalSpec:
		return Prim(Temporal(x.Kind)), nil
	case ArraySpec:
		elem, err := s.FromSpec(x.Elem, bindings)
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	case RecordSpec:
		r := &RecordExp{Names: make([]string, len(x.Fields)), Fields: make([]TypeExp, len(x.Fields))}
		for i, f := range x.Fields {
			if indexOf(r.Names[:i], f.Name) >= 0 {
				return nil, fmt.Errorf("duplicate field %s", f.Name)
			}
			ft, err := s.FromSpec(f.Type, bindings)
			if err != nil {
				return nil, err
			}
			r.Names[i] = f.Name
			r.Fields[i] = ft
		}
		return r, nil
	case NamedSpec:
		if t, ok := bindings[x.Name]; ok && len(x.Args) == 0 {
			return t, nil
		}
		decl, ok := s.manager.Lookup(x.Name)
		if !ok {
			return nil, &UnknownTypeError{Name: x.Name}
		}
		if len(decl.TypeVars) != len(x.Args) {
			return nil, fmt.Errorf("%s expects %d type arguments, got %d", x.Name, len(decl.TypeVars), len(x.Args))
		}
		args := make([]TypeExp, len(x.Args))
		for i, a := range x.Args {
			at, err := s.FromSpec(a, bindings)
			if err != nil {
				return nil, err
			}
			args[i] = at
		}
		return TaggedOf(x.Name, args...), nil
	default:
		return nil, fmt.Errorf("unsupported type spec %T", spec)
	}
}

// FreshTagged returns the named tagged type applied to fresh type variables,
// together with the inner type of each of its tags (nil for bare tags).
func (s *TypeState) FreshTagged(name string) (*ConsExp, []TypeExp, error) {
	decl, ok := s.manager.Lookup(name)
	if !ok {
		return nil, nil, &UnknownTypeError{Name: name}
	}
	bindings := make(map[string]TypeExp, len(decl.TypeVars))
	args := make([]TypeExp, len(decl.TypeVars))
	for i, v := range decl.TypeVars {
		args[i] = s.NewVar()
		bindings[v] = args[i]
	}
	inners := make([]TypeExp, len(decl.Tags))
	for i, tag := range decl.Tags {
		if tag.Inner == nil {
			continue
		}
		inner, err := s.FromSpec(tag.Inner, bindings)
		if err != nil {
			return nil, nil, err
		}
		inners[i] = inner
	}
	return TaggedOf(name, args...), inners, nil
}

// Format prints t for messages. Unbound variables print as ?tN and ?uN.
func (s *TypeState) Format(t TypeExp) string {
	switch x := s.Prune(t).(type) {
	case *VarExp:
		return "?t" + strconv.Itoa(x.ID)
	case *PrimExp:
		return x.Type.String()
	case *NumExp:
		if x.Unit.IsConcrete() && x.Unit.Fixed.IsOne() {
			return "Number"
		}
		return "Number{" + s.FormatUnit(x.Unit) + "}"
	case *UnitValueExp:
		return "unit{" + s.FormatUnit(x.Unit) + "}"
	case *RecordExp:
		parts := make([]string, len(x.Names))
		for i, n := range x.Names {
			parts[i] = n + ": " + s.Format(x.Fields[i])
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *ConsExp:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = s.Format(a)
		}
		switch x.Kind {
		case ConsArray:
			return "[" + args[0] + "]"
		case ConsTuple:
			return "(" + strings.Join(args, ", ") + ")"
		case ConsFunction:
			return "fn(" + strings.Join(args[:len(args)-1], ", ") + ") -> " + args[len(args)-1]
		case ConsTypeValue:
			return "type{" + args[0] + "}"
		default:
			if len(args) == 0 {
				return x.Name
			}
			return x.Name + "(" + strings.Join(args, ", ") + ")"
		}
	}
	return "?"
}

// FormatUnit prints a unit expression for messages.
func (s *TypeState) FormatUnit(u UnitExp) string {
	return s.PruneUnit(u).format(func(id int) string { return "?u" + strconv.Itoa(id) })
}
