package typesystem

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/colexpr/internal/units"
)

// TypesFile is the YAML layout of a tagged types file:
//
//	types:
//	  - name: Shape
//	    tags:
//	      - name: Circle
//	        inner: "(radius: Number{m})"
//	      - name: Point
type TypesFile struct {
	Types []FileType `yaml:"types"`
}

type FileType struct {
	Name        string    `yaml:"name"`
	Params      []string  `yaml:"params,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Tags        []FileTag `yaml:"tags"`
}

type FileTag struct {
	Name  string `yaml:"name"`
	Inner string `yaml:"inner,omitempty"`
}

// LoadYAML defines every type of the document. When reg is not nil, units
// mentioned in inner types must be known to it.
func (m *TypeManager) LoadYAML(in io.Reader, reg *units.Registry) error {
	var f TypesFile
	dec := yaml.NewDecoder(in)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return fmt.Errorf("failed to parse types file: %w", err)
	}
	for _, ft := range f.Types {
		decl := TaggedDecl{Name: ft.Name, TypeVars: ft.Params, Description: ft.Description}
		for _, tag := range ft.Tags {
			td := TagDecl{Name: tag.Name}
			if tag.Inner != "" {
				spec, err := ParseSpec(tag.Inner)
				if err != nil {
					return fmt.Errorf("type %s tag %s: %w", ft.Name, tag.Name, err)
				}
				if reg != nil {
					if err := checkSpecUnits(spec, reg); err != nil {
						return fmt.Errorf("type %s tag %s: %w", ft.Name, tag.Name, err)
					}
				}
				td.Inner = spec
			}
			decl.Tags = append(decl.Tags, td)
		}
		if err := m.Define(decl); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile reads a types YAML file.
func (m *TypeManager) LoadFile(path string, reg *units.Registry) error {
	fh, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open types file: %w", err)
	}
	defer fh.Close()
	return m.LoadYAML(fh, reg)
}

func checkSpecUnits(spec TypeSpec, reg *units.Registry) error {
	switch s := spec.(type) {
	case NumberSpec:
		return reg.Check(s.Unit)
	case ArraySpec:
		return checkSpecUnits(s.Elem, reg)
	case RecordSpec:
		for _, f := range s.Fields {
			if err := checkSpecUnits(f.Type, reg); err != nil {
				return err
			}
		}
	case NamedSpec:
		for _, a := range s.Args {
			if err := checkSpecUnits(a, reg); err != nil {
				return err
			}
		}
	}
	return nil
}
