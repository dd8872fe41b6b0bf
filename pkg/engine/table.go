package engine

import (
	"fmt"

	"github.com/funvibe/colexpr/internal/rowsource"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/value"
)

// ColumnDef names a column and its type.
type ColumnDef struct {
	Name string
	Type typesystem.DataType
}

// NewTable builds an in-memory row source from Go data. A missing or nil
// cell is not ready.
func (e *Engine) NewTable(defs []ColumnDef, rows []map[string]any) (*rowsource.Table, error) {
	known := make(map[string]bool, len(defs))
	for _, d := range defs {
		known[d.Name] = true
	}
	for i, row := range rows {
		for name := range row {
			if !known[name] {
				return nil, fmt.Errorf("row %d: unknown column %s", i, name)
			}
		}
	}

	table := rowsource.NewTable()
	for _, d := range defs {
		cells := make([]value.Value, len(rows))
		for i, row := range rows {
			v, err := e.marshaller.ToValue(row[d.Name], d.Type)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", i, d.Name, err)
			}
			cells[i] = v
		}
		if err := table.AddColumn(d.Name, d.Type, cells...); err != nil {
			return nil, err
		}
	}
	return table, nil
}
