// Package engine is the embedding API of colexpr.
//
// An Engine owns the unit registry, the tagged type declarations and the
// function catalogue. It compiles expression sources against a set of column
// types; a Compiled expression is immutable and can be evaluated against any
// row source with matching columns, from any number of goroutines.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/funvibe/colexpr/internal/analyzer"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/functions"
	"github.com/funvibe/colexpr/internal/numeric"
	"github.com/funvibe/colexpr/internal/parser"
	"github.com/funvibe/colexpr/internal/prettyprinter"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/units"
)

// Options configures New. The zero value gives the built-in units and types.
type Options struct {
	Logger *slog.Logger
	// UnitsFile and TypesFile are YAML files declaring additional units and
	// tagged types. Types may mention units from UnitsFile.
	UnitsFile string
	TypesFile string
	// Precision is the number of significant digits of decimal arithmetic.
	// It applies process-wide: the first engine to set it fixes it, and a
	// later engine asking for a different precision fails to build.
	Precision uint32
}

// Engine compiles expressions.
type Engine struct {
	units      *units.Registry
	types      *typesystem.TypeManager
	functions  *functions.Registry
	marshaller *Marshaller
	logger     *slog.Logger
}

// New returns an engine with the built-in catalogue plus whatever opts loads.
func New(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Precision > 0 {
		if err := numeric.SetPrecision(opts.Precision); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		units:     units.DefaultRegistry(),
		types:     typesystem.NewTypeManager(),
		functions: functions.Builtins(),
		logger:    logger,
	}
	e.marshaller = NewMarshaller(e.types)

	if opts.UnitsFile != "" {
		if err := e.units.LoadFile(opts.UnitsFile); err != nil {
			return nil, fmt.Errorf("failed to load units from %s: %w", opts.UnitsFile, err)
		}
		logger.Debug("loaded units", "file", opts.UnitsFile, "count", len(e.units.Declarations()))
	}
	if opts.TypesFile != "" {
		if err := e.types.LoadFile(opts.TypesFile, e.units); err != nil {
			return nil, fmt.Errorf("failed to load types from %s: %w", opts.TypesFile, err)
		}
		logger.Debug("loaded types", "file", opts.TypesFile, "count", len(e.types.Declarations()))
	}
	return e, nil
}

func (e *Engine) Units() *units.Registry         { return e.units }
func (e *Engine) Types() *typesystem.TypeManager { return e.types }
func (e *Engine) Functions() *functions.Registry { return e.functions }
func (e *Engine) Marshaller() *Marshaller        { return e.marshaller }
func (e *Engine) Logger() *slog.Logger           { return e.logger }

func (e *Engine) environment(columns analyzer.ColumnTypes) *analyzer.Environment {
	return &analyzer.Environment{
		Columns:   columns,
		Types:     e.types,
		Units:     e.units,
		Functions: e.functions,
	}
}

// ParseType reads a type written in expression syntax, such as
// "Number{km/h}" or "Optional(Date)". Units must be registered.
func (e *Engine) ParseType(text string) (typesystem.DataType, error) {
	spec, err := typesystem.ParseSpec(text)
	if err != nil {
		return nil, err
	}
	t, err := e.types.Resolve(spec)
	if err != nil {
		return nil, err
	}
	if err := checkUnits(t, e.units); err != nil {
		return nil, fmt.Errorf("type %s: %w", text, err)
	}
	return t, nil
}

func checkUnits(t typesystem.DataType, reg *units.Registry) error {
	switch t := t.(type) {
	case typesystem.NumberType:
		return reg.Check(t.Unit)
	case typesystem.ArrayType:
		return checkUnits(t.Elem, reg)
	case typesystem.RecordType:
		for _, f := range t.Fields {
			if err := checkUnits(f.Type, reg); err != nil {
				return err
			}
		}
	case typesystem.TaggedType:
		for _, a := range t.TypeArgs {
			if err := checkUnits(a, reg); err != nil {
				return err
			}
		}
	}
	return nil
}

// Compile parses and type-checks source. columns may be nil for expressions
// that read no columns. User errors are returned as *diagnostics.UserError;
// internal errors are logged before being returned.
func (e *Engine) Compile(source string, columns analyzer.ColumnTypes) (*Compiled, error) {
	expr, err := parser.Parse(source)
	if err != nil {
		return nil, e.report(err, "parse", source)
	}
	checked, err := analyzer.Check(expr, e.environment(columns))
	if err != nil {
		return nil, e.report(err, "check", source)
	}
	e.logger.Debug("compiled expression",
		"type", checked.Type().String(),
		"columns", checked.Columns(),
		"entire", checked.EntireColumns())
	return &Compiled{Source: source, checked: checked, logger: e.logger}, nil
}

// Format parses source and prints it in canonical form.
func (e *Engine) Format(source string) (string, error) {
	expr, err := parser.Parse(source)
	if err != nil {
		return "", e.report(err, "parse", source)
	}
	return prettyprinter.Print(expr), nil
}

func (e *Engine) report(err error, stage, source string) error {
	if diagnostics.IsInternal(err) {
		e.logger.Error("internal error", "stage", stage, "source", source, "error", err)
	}
	return err
}
