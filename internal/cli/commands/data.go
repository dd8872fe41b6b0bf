package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/colexpr/internal/analyzer"
	"github.com/funvibe/colexpr/internal/rowsource"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/pkg/engine"
)

// DataOptions selects where column types and rows come from.
type DataOptions struct {
	Columns  []string // name=Type
	DataFile string
	SQLite   string
	Query    string
}

func addDataFlags(cmd *cobra.Command, opts *DataOptions) {
	cmd.Flags().StringArrayVarP(&opts.Columns, "column", "c", nil, "Declare a column as name=Type (repeatable)")
	cmd.Flags().StringVarP(&opts.DataFile, "data", "d", "", "YAML file with columns and rows")
	cmd.Flags().StringVar(&opts.SQLite, "sqlite", "", "SQLite database to read rows from")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "Query selecting the rows (with --sqlite)")
}

// dataFile is the layout of a --data file:
//
//	columns:
//	  - name: distance
//	    type: Number{km}
//	rows:
//	  - distance: 12.5
type dataFile struct {
	Columns []struct {
		Name string `yaml:"name"`
		Type string `yaml:"type"`
	} `yaml:"columns"`
	Rows []map[string]any `yaml:"rows"`
}

// Data is a loaded data source. Table is nil when only column types were
// declared.
type Data struct {
	Types analyzer.ColumnMap
	Table *rowsource.Table
}

// Columns returns what expressions are checked against.
func (d *Data) Columns() analyzer.ColumnTypes {
	if d.Table != nil {
		return d.Table
	}
	return d.Types
}

// Rows is the number of rows available.
func (d *Data) Rows() int {
	if d.Table == nil {
		return 0
	}
	return d.Table.RowCount()
}

func (opts *DataOptions) parseColumns(eng *engine.Engine) (analyzer.ColumnMap, error) {
	types := analyzer.ColumnMap{}
	for _, decl := range opts.Columns {
		name, spec, ok := strings.Cut(decl, "=")
		name = strings.TrimPrefix(strings.TrimSpace(name), "@")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --column %q, want name=Type", decl)
		}
		t, err := eng.ParseType(strings.TrimSpace(spec))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		types[name] = t
	}
	return types, nil
}

// Load reads the data source. --column declarations type the columns of a
// --sqlite query and otherwise stand alone.
func (opts *DataOptions) Load(ctx context.Context, eng *engine.Engine) (*Data, error) {
	declared, err := opts.parseColumns(eng)
	if err != nil {
		return nil, err
	}

	switch {
	case opts.DataFile != "" && opts.SQLite != "":
		return nil, fmt.Errorf("--data and --sqlite are mutually exclusive")
	case opts.DataFile != "":
		if len(declared) > 0 {
			return nil, fmt.Errorf("--column cannot be combined with --data; declare columns in the file")
		}
		return loadDataFile(eng, opts.DataFile)
	case opts.SQLite != "":
		return loadSQLite(ctx, opts.SQLite, opts.Query, declared)
	case opts.Query != "":
		return nil, fmt.Errorf("--query needs --sqlite")
	}
	return &Data{Types: declared}, nil
}

func loadDataFile(eng *engine.Engine, path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var doc dataFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	defs := make([]engine.ColumnDef, len(doc.Columns))
	types := analyzer.ColumnMap{}
	for i, c := range doc.Columns {
		if c.Name == "" {
			return nil, fmt.Errorf("%s: column %d has no name", path, i+1)
		}
		t, err := eng.ParseType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: column %s: %w", path, c.Name, err)
		}
		defs[i] = engine.ColumnDef{Name: c.Name, Type: t}
		types[c.Name] = t
	}
	table, err := eng.NewTable(defs, doc.Rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Data{Types: types, Table: table}, nil
}

func loadSQLite(ctx context.Context, path, query string, declared map[string]typesystem.DataType) (*Data, error) {
	if query == "" {
		return nil, fmt.Errorf("--sqlite needs --query")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database %s: %w", path, err)
	}
	db, err := rowsource.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	table, err := rowsource.LoadSQLite(ctx, db, query, rowsource.SQLiteOptions{Types: declared})
	if err != nil {
		return nil, err
	}
	types := analyzer.ColumnMap{}
	for _, name := range table.ColumnNames() {
		t, _ := table.ColumnType(name)
		types[name] = t
	}
	return &Data{Types: types, Table: table}, nil
}
