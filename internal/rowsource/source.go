// Package rowsource provides the row data an expression reads through its
// @column references.
package rowsource

import (
	"errors"

	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/value"
)

// ErrNotReady is returned for a cell whose content is currently invalid,
// such as one that is still being computed or holds no value.
var ErrNotReady = errors.New("cell not ready")

// Source is a table seen one cell at a time.
type Source interface {
	// Value returns the cell of column at row, or ErrNotReady.
	Value(column string, row int) (value.Value, error)
	ColumnType(column string) (typesystem.DataType, bool)
	RowCount() int
}
