package rowsource

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/funvibe/colexpr/internal/numeric"
	"github.com/funvibe/colexpr/internal/temporal"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/units"
	"github.com/funvibe/colexpr/internal/value"
)

// OpenSQLite opens a SQLite database file read-only.
func OpenSQLite(path string) (*sql.DB, error) {
	return sql.Open("sqlite", "file:"+path+"?mode=ro")
}

// SQLiteOptions controls how query results become columns.
type SQLiteOptions struct {
	// Types overrides the column type derived from the declared SQL type,
	// typically to attach a unit to a numeric column.
	Types map[string]typesystem.DataType
}

// LoadSQLite runs query and copies its result into a Table. NULL cells are
// not ready.
func LoadSQLite(ctx context.Context, db *sql.DB, query string, opts SQLiteOptions) (*Table, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}
	types := make([]typesystem.DataType, len(colTypes))
	parsers := make([]*temporal.Parser, len(colTypes))
	for i, ct := range colTypes {
		if t, ok := opts.Types[ct.Name()]; ok {
			types[i] = t
		} else {
			types[i] = sqlDataType(ct.DatabaseTypeName())
		}
		if tt, ok := types[i].(typesystem.TemporalType); ok {
			parsers[i] = temporal.NewParser(tt.Kind)
		}
	}

	cells := make([][]value.Value, len(colTypes))
	raw := make([]any, len(colTypes))
	ptrs := make([]any, len(colTypes))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	for row := 0; rows.Next(); row++ {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", row, err)
		}
		for i, r := range raw {
			v, err := sqlValue(r, types[i], parsers[i])
			if err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", row, colTypes[i].Name(), err)
			}
			cells[i] = append(cells[i], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	table := NewTable()
	for i, ct := range colTypes {
		if cells[i] == nil {
			cells[i] = []value.Value{}
		}
		if err := table.AddColumn(ct.Name(), types[i], cells[i]...); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// sqlDataType maps a declared SQLite column type. Affinity rules decide
// anything not listed.
func sqlDataType(declared string) typesystem.DataType {
	d := strings.ToUpper(declared)
	switch d {
	case "BOOLEAN", "BOOL":
		return typesystem.Boolean
	case "DATE":
		return typesystem.Temporal(typesystem.KindDate)
	case "TIME":
		return typesystem.Temporal(typesystem.KindTime)
	case "DATETIME", "TIMESTAMP":
		return typesystem.Temporal(typesystem.KindDateTime)
	}
	switch {
	case strings.Contains(d, "INT"),
		strings.Contains(d, "REAL"), strings.Contains(d, "FLOA"), strings.Contains(d, "DOUB"),
		strings.Contains(d, "NUM"), strings.Contains(d, "DEC"):
		return typesystem.Number(units.One())
	}
	return typesystem.Text
}

// sqlValue converts one scanned cell. Temporal text that is not in canonical
// form goes through the column's parser.
func sqlValue(raw any, t typesystem.DataType, parser *temporal.Parser) (value.Value, error) {
	if raw == nil {
		return nil, nil
	}
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}
	switch t := t.(type) {
	case typesystem.NumberType:
		switch r := raw.(type) {
		case int64:
			return value.Int(r), nil
		case float64:
			n, err := numeric.FromFloat64(r)
			if err != nil {
				return nil, err
			}
			return value.NewNumber(n), nil
		case string:
			n, err := numeric.Parse(strings.TrimSpace(r))
			if err != nil {
				return nil, fmt.Errorf("cannot read %q as a number", r)
			}
			return value.NewNumber(n), nil
		}
	case typesystem.TextType:
		switch r := raw.(type) {
		case string:
			return value.NewText(r), nil
		case int64:
			return value.NewText(strconv.FormatInt(r, 10)), nil
		case float64:
			return value.NewText(strconv.FormatFloat(r, 'g', -1, 64)), nil
		case time.Time:
			return value.NewText(r.Format(time.RFC3339Nano)), nil
		}
	case typesystem.BooleanType:
		switch r := raw.(type) {
		case int64:
			return value.NewBoolean(r != 0), nil
		case bool:
			return value.NewBoolean(r), nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(r))
			if err != nil {
				return nil, fmt.Errorf("cannot read %q as a boolean", r)
			}
			return value.NewBoolean(b), nil
		}
	case typesystem.TemporalType:
		switch r := raw.(type) {
		case time.Time:
			return value.NewTemporal(t.Kind, r), nil
		case string:
			if v, err := temporal.ParseLiteral(t.Kind, r); err == nil {
				return v, nil
			}
			return parser.Parse(r)
		}
	}
	return nil, fmt.Errorf("cannot store %T in a %s column", raw, t)
}
