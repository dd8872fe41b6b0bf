package units

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a units file:
//
//	bases:
//	  - name: m
//	    description: metre
//	aliases:
//	  - name: km
//	    unit: 1000*m
type File struct {
	Bases   []FileUnit `yaml:"bases"`
	Aliases []FileUnit `yaml:"aliases"`
}

// FileUnit is one entry of a units file.
type FileUnit struct {
	Name        string `yaml:"name"`
	Unit        string `yaml:"unit,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// LoadYAML declares every unit of the YAML document into r. Aliases are
// declared in file order, so an alias may refer to earlier ones.
func (r *Registry) LoadYAML(in io.Reader) error {
	var f File
	dec := yaml.NewDecoder(in)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return fmt.Errorf("failed to parse units file: %w", err)
	}
	for _, b := range f.Bases {
		if err := r.DeclareBase(b.Name, b.Description); err != nil {
			return err
		}
	}
	for _, a := range f.Aliases {
		if a.Unit == "" {
			return fmt.Errorf("alias %q has no unit definition", a.Name)
		}
		def, err := Parse(a.Unit)
		if err != nil {
			return fmt.Errorf("alias %q: %w", a.Name, err)
		}
		if err := r.DeclareAlias(a.Name, def, a.Description); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile reads a units YAML file into r.
func (r *Registry) LoadFile(path string) error {
	fh, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open units file: %w", err)
	}
	defer fh.Close()
	return r.LoadYAML(fh)
}
