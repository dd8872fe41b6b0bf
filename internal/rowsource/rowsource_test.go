package rowsource

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/units"
	"github.com/funvibe/colexpr/internal/value"
)

func TestTable(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.AddColumn("n", typesystem.Number(units.One()), value.Int(1), nil, value.Int(3)))
	require.NoError(t, table.AddColumn("s", typesystem.Text, value.NewText("a"), value.NewText("b"), value.NewText("c")))

	assert.Equal(t, 3, table.RowCount())
	assert.Equal(t, []string{"n", "s"}, table.ColumnNames())

	v, err := table.Value("n", 0)
	require.NoError(t, err)
	assert.Equal(t, "1", v.Inspect())

	_, err = table.Value("n", 1)
	assert.True(t, errors.Is(err, ErrNotReady))

	require.NoError(t, table.Set("n", 1, value.Int(2)))
	v, err = table.Value("n", 1)
	require.NoError(t, err)
	assert.Equal(t, "2", v.Inspect())

	_, err = table.Value("missing", 0)
	assert.Error(t, err)
	_, err = table.Value("s", 3)
	assert.Error(t, err)

	typ, ok := table.ColumnType("s")
	require.True(t, ok)
	assert.Equal(t, "Text", typ.String())
}

func TestTableRejectsBadColumns(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.AddColumn("a", typesystem.Text, value.NewText("x")))
	assert.Error(t, table.AddColumn("a", typesystem.Text, value.NewText("y")))
	assert.Error(t, table.AddColumn("b", typesystem.Text))
	assert.Error(t, table.AddColumn("c", nil, value.NewText("y")))
	assert.Error(t, table.Set("a", 5, value.NewText("z")))
}

func TestTableConcurrentAccess(t *testing.T) {
	table := NewTable()
	cells := make([]value.Value, 100)
	require.NoError(t, table.AddColumn("n", typesystem.Number(units.One()), cells...))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < 100; i += 4 {
				assert.NoError(t, table.Set("n", i, value.Int(int64(i))))
				_, err := table.Value("n", i)
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()
}

func memoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLoadSQLite(t *testing.T) {
	db := memoryDB(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `
		CREATE TABLE trips (
			name TEXT,
			distance REAL,
			legs INTEGER,
			done BOOLEAN,
			started DATE
		);
		INSERT INTO trips VALUES ('a', 12.5, 2, 1, '2024-01-02');
		INSERT INTO trips VALUES ('b', NULL, 3, 0, '3 March 2024');
	`)
	require.NoError(t, err)

	table, err := LoadSQLite(ctx, db, "SELECT name, distance, legs, done, started FROM trips ORDER BY name", SQLiteOptions{
		Types: map[string]typesystem.DataType{"distance": typesystem.Number(units.Symbol("km"))},
	})
	require.NoError(t, err)
	require.Equal(t, 2, table.RowCount())

	wantTypes := map[string]string{
		"name":     "Text",
		"distance": "Number{km}",
		"legs":     "Number",
		"done":     "Boolean",
		"started":  "Date",
	}
	for col, want := range wantTypes {
		typ, ok := table.ColumnType(col)
		require.True(t, ok, col)
		assert.Equal(t, want, typ.String(), col)
	}

	v, err := table.Value("distance", 0)
	require.NoError(t, err)
	assert.Equal(t, "12.5", v.Inspect())
	_, err = table.Value("distance", 1)
	assert.True(t, errors.Is(err, ErrNotReady))

	v, err = table.Value("done", 1)
	require.NoError(t, err)
	assert.Equal(t, value.False, v)

	v, err = table.Value("started", 0)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", v.Inspect())
	v, err = table.Value("started", 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-03", v.Inspect())
}

func TestLoadSQLiteErrors(t *testing.T) {
	db := memoryDB(t)
	_, err := LoadSQLite(context.Background(), db, "SELECT * FROM missing", SQLiteOptions{})
	assert.Error(t, err)
}
