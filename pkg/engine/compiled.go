package engine

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/funvibe/colexpr/internal/analyzer"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/evaluator"
	"github.com/funvibe/colexpr/internal/rowsource"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/value"
)

// Compiled is a type-checked expression.
type Compiled struct {
	Source string

	checked *analyzer.Checked
	logger  *slog.Logger
}

// Type is the type of every value the expression produces.
func (c *Compiled) Type() typesystem.DataType { return c.checked.Type() }

// Columns lists the columns read from the current row.
func (c *Compiled) Columns() []string { return c.checked.Columns() }

// EntireColumns lists the columns read as a whole.
func (c *Compiled) EntireColumns() []string { return c.checked.EntireColumns() }

// Checked exposes the checked tree, for tools that walk it.
func (c *Compiled) Checked() *analyzer.Checked { return c.checked }

// Evaluate computes the expression for one row of src.
func (c *Compiled) Evaluate(src rowsource.Source, row int) (value.Value, error) {
	v, err := evaluator.New(c.checked, src).Evaluate(row)
	if err != nil && diagnostics.IsInternal(err) {
		c.logger.Error("internal error", "stage", "evaluate", "source", c.Source, "row", row, "error", err)
	}
	return v, err
}

// Result is the outcome of one row. Err holds a user error; rows that fail
// do not stop the others.
type Result struct {
	Row   int
	Value value.Value
	Err   error
}

// EvaluateAll evaluates every row of src with up to workers goroutines
// (GOMAXPROCS when workers <= 0). Results are in row order. An internal
// error or cancellation of ctx stops the run and is returned.
func (c *Compiled) EvaluateAll(ctx context.Context, src rowsource.Source, workers int) ([]Result, error) {
	rows := src.RowCount()
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > rows {
		workers = rows
	}

	ev := evaluator.New(c.checked, src)
	results := make([]Result, rows)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w // per-iteration copy; go directive is below 1.22
		g.Go(func() error {
			for row := w; row < rows; row += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				v, err := ev.Evaluate(row)
				if err != nil && diagnostics.IsInternal(err) {
					c.logger.Error("internal error", "stage", "evaluate", "source", c.Source, "row", row, "error", err)
					return err
				}
				results[row] = Result{Row: row, Value: v, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	c.logger.Debug("evaluated rows", "rows", rows, "workers", workers, "failed", failed)
	return results, nil
}
