package typesystem

import (
	"fmt"
	"sort"
	"sync"

	"github.com/funvibe/colexpr/internal/config"
)

// TagDecl is one alternative of a tagged type declaration.
type TagDecl struct {
	Name  string
	Inner TypeSpec // nil when the tag carries no value
}

// TaggedDecl declares a tagged type, possibly parameterised over type variables.
type TaggedDecl struct {
	Name        string
	TypeVars    []string
	Tags        []TagDecl
	Description string
}

func (d *TaggedDecl) String() string {
	s := d.Name
	if len(d.TypeVars) > 0 {
		s += "("
		for i, v := range d.TypeVars {
			if i > 0 {
				s += ", "
			}
			s += v
		}
		s += ")"
	}
	s += " ="
	for i, t := range d.Tags {
		if i > 0 {
			s += " |"
		}
		s += " " + t.Name
		if t.Inner != nil {
			s += "(" + t.Inner.String() + ")"
		}
	}
	return s
}

// TagIndex returns the position of the named tag, or -1.
func (d *TaggedDecl) TagIndex(name string) int {
	for i, t := range d.Tags {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// TypeManager owns the tagged type declarations visible to one document.
// Declarations may only reference types declared before them, so tagged
// types are never recursive.
type TypeManager struct {
	mu    sync.RWMutex
	decls map[string]*TaggedDecl
}

// NewTypeManager returns a manager holding the built-in Optional type.
func NewTypeManager() *TypeManager {
	m := &TypeManager{decls: make(map[string]*TaggedDecl)}
	err := m.Define(TaggedDecl{
		Name:     config.OptionalTypeName,
		TypeVars: []string{"a"},
		Tags: []TagDecl{
			{Name: config.OptionalNoneTag},
			{Name: config.OptionalSomeTag, Inner: NamedSpec{Name: "a"}},
		},
		Description: "A value that may be absent",
	})
	if err != nil {
		panic(err)
	}
	return m
}

var reservedTypeNames = map[string]bool{
	"Number": true, "Text": true, "Boolean": true,
	"Date": true, "Time": true, "DateYM": true, "DateTime": true,
	"DateTimeZoned": true, "TimeZoned": true,
}

// Define validates and adds a declaration.
func (m *TypeManager) Define(decl TaggedDecl) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fail := func(format string, args ...any) error {
		return &DeclarationError{Name: decl.Name, Message: fmt.Sprintf(format, args...)}
	}
	if decl.Name == "" || reservedTypeNames[decl.Name] {
		return fail("name is reserved")
	}
	if _, exists := m.decls[decl.Name]; exists {
		return fail("already declared")
	}
	if len(decl.Tags) == 0 {
		return fail("needs at least one tag")
	}
	vars := make(map[string]bool, len(decl.TypeVars))
	for _, v := range decl.TypeVars {
		if vars[v] {
			return fail("duplicate type variable %s", v)
		}
		vars[v] = true
	}
	tags := make(map[string]bool, len(decl.Tags))
	for _, t := range decl.Tags {
		if tags[t.Name] {
			return fail("duplicate tag %s", t.Name)
		}
		tags[t.Name] = true
		if t.Inner != nil {
			if err := m.validate(t.Inner, vars); err != nil {
				return fail("tag %s: %v", t.Name, err)
			}
		}
	}
	d := decl
	m.decls[decl.Name] = &d
	return nil
}

func (m *TypeManager) validate(spec TypeSpec, vars map[string]bool) error {
	switch s := spec.(type) {
	case ArraySpec:
		return m.validate(s.Elem, vars)
	case RecordSpec:
		seen := make(map[string]bool, len(s.Fields))
		for _, f := range s.Fields {
			if seen[f.Name] {
				return fmt.Errorf("duplicate field %s", f.Name)
			}
			seen[f.Name] = true
			if err := m.validate(f.Type, vars); err != nil {
				return err
			}
		}
	case NamedSpec:
		if len(s.Args) == 0 && vars[s.Name] {
			return nil
		}
		d, ok := m.decls[s.Name]
		if !ok {
			return &UnknownTypeError{Name: s.Name}
		}
		if len(d.TypeVars) != len(s.Args) {
			return fmt.Errorf("%s expects %d type arguments, got %d", s.Name, len(d.TypeVars), len(s.Args))
		}
		for _, a := range s.Args {
			if err := m.validate(a, vars); err != nil {
				return err
			}
		}
	}
	return nil
}

// Lookup returns the declaration of a tagged type.
func (m *TypeManager) Lookup(name string) (*TaggedDecl, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.decls[name]
	return d, ok
}

// Declarations returns every declaration sorted by name.
func (m *TypeManager) Declarations() []*TaggedDecl {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*TaggedDecl, 0, len(m.decls))
	for _, d := range m.decls {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Instantiate builds the concrete tagged type for the given type arguments.
func (m *TypeManager) Instantiate(name string, args []DataType) (TaggedType, error) {
	d, ok := m.Lookup(name)
	if !ok {
		return TaggedType{}, &UnknownTypeError{Name: name}
	}
	if len(args) != len(d.TypeVars) {
		return TaggedType{}, fmt.Errorf("%s expects %d type arguments, got %d", name, len(d.TypeVars), len(args))
	}
	bindings := make(map[string]DataType, len(args))
	for i, v := range d.TypeVars {
		bindings[v] = args[i]
	}
	t := TaggedType{Name: name, TypeArgs: args, Tags: make([]TagType, len(d.Tags))}
	for i, tag := range d.Tags {
		t.Tags[i] = TagType{Name: tag.Name}
		if tag.Inner != nil {
			inner, err := m.resolve(tag.Inner, bindings)
			if err != nil {
				return TaggedType{}, err
			}
			t.Tags[i].Inner = inner
		}
	}
	return t, nil
}

// Resolve turns a closed type spec into a concrete type.
func (m *TypeManager) Resolve(spec TypeSpec) (DataType, error) {
	return m.resolve(spec, nil)
}

func (m *TypeManager) resolve(spec TypeSpec, bindings map[string]DataType) (DataType, error) {
	switch s := spec.(type) {
	case NumberSpec:
		return NumberType{Unit: s.Unit}, nil
	case TextSpec:
		return Text, nil
	case BooleanSpec:
		return Boolean, nil
	case TemporalSpec:
		return TemporalType{Kind: s.Kind}, nil
	case ArraySpec:
		elem, err := m.resolve(s.Elem, bindings)
		if err != nil {
			return nil, err
		}
		return ArrayType{Elem: elem}, nil
	case RecordSpec:
		fields := make([]Field, len(s.Fields))
		for i, f := range s.Fields {
			t, err := m.resolve(f.Type, bindings)
			if err != nil {
				return nil, err
			}
			fields[i] = Field{Name: f.Name, Type: t}
		}
		return RecordType{Fields: fields}, nil
	case NamedSpec:
		if t, ok := bindings[s.Name]; ok && len(s.Args) == 0 {
			return t, nil
		}
		args := make([]DataType, len(s.Args))
		for i, a := range s.Args {
			t, err := m.resolve(a, bindings)
			if err != nil {
				return nil, err
			}
			args[i] = t
		}
		return m.Instantiate(s.Name, args)
	default:
		return nil, fmt.Errorf("unsupported type spec %T", spec)
	}
}

// Optional returns Optional(inner).
func (m *TypeManager) Optional(inner DataType) TaggedType {
	t, err := m.Instantiate(config.OptionalTypeName, []DataType{inner})
	if err != nil {
		panic(err)
	}
	return t
}
