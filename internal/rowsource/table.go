package rowsource

import (
	"fmt"
	"sync"

	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/value"
)

// Column is one named, typed column. A nil cell is not ready.
type Column struct {
	Name  string
	Type  typesystem.DataType
	Cells []value.Value
}

// Table is an in-memory Source. It is safe for concurrent use; cells may be
// updated while expressions read them.
type Table struct {
	mu      sync.RWMutex
	columns map[string]*Column
	order   []string
	rows    int
}

func NewTable() *Table {
	return &Table{columns: make(map[string]*Column)}
}

// AddColumn appends a column. Every column of a table has the same number of
// rows; the first column fixes it.
func (t *Table) AddColumn(name string, typ typesystem.DataType, cells ...value.Value) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.columns[name]; exists {
		return fmt.Errorf("column %q already exists", name)
	}
	if typ == nil {
		return fmt.Errorf("column %q has no type", name)
	}
	if len(t.order) > 0 && len(cells) != t.rows {
		return fmt.Errorf("column %q has %d rows, table has %d", name, len(cells), t.rows)
	}
	t.columns[name] = &Column{Name: name, Type: typ, Cells: cells}
	t.order = append(t.order, name)
	t.rows = len(cells)
	return nil
}

// Set replaces one cell. A nil v marks the cell not ready.
func (t *Table) Set(column string, row int, v value.Value) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.columns[column]
	if !ok {
		return fmt.Errorf("unknown column %q", column)
	}
	if row < 0 || row >= t.rows {
		return fmt.Errorf("row %d out of range [0, %d)", row, t.rows)
	}
	c.Cells[row] = v
	return nil
}

func (t *Table) Value(column string, row int) (value.Value, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.columns[column]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	if row < 0 || row >= t.rows {
		return nil, fmt.Errorf("row %d out of range [0, %d)", row, t.rows)
	}
	if c.Cells[row] == nil {
		return nil, ErrNotReady
	}
	return c.Cells[row], nil
}

func (t *Table) ColumnType(column string) (typesystem.DataType, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.columns[column]
	if !ok {
		return nil, false
	}
	return c.Type, true
}

// ColumnNames returns the columns in the order they were added.
func (t *Table) ColumnNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.order...)
}

func (t *Table) RowCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rows
}
