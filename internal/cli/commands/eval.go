package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/funvibe/colexpr/internal/cli/config"
	"github.com/funvibe/colexpr/internal/rowsource"
	"github.com/funvibe/colexpr/pkg/engine"
)

// EvalOptions holds options for the eval command.
type EvalOptions struct {
	Data DataOptions
	File string
	Row  int
}

// NewEvalCommand creates the eval command.
func NewEvalCommand() *cobra.Command {
	opts := &EvalOptions{}

	cmd := &cobra.Command{
		Use:   "eval [expression]",
		Short: "Evaluate an expression over rows of data",
		Long: `Evaluate an expression once per row of a data source.

Rows come from a YAML file (--data) or a SQLite query (--sqlite, --query).
Without data, expressions that read no columns are evaluated once.
Rows that fail are reported in the output and make the command exit non-zero.`,
		Example: `  colexpr eval '2{km} + 300{m}'
  colexpr eval --data trips.yaml 'as(unit{km/hour}, @distance / @hours)'
  colexpr eval --sqlite trips.db --query 'select * from trips' -c distance='Number{km}' '@distance * 2'
  colexpr eval -f speed.cx --data trips.yaml --row 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, args, opts)
		},
	}

	addDataFlags(cmd, &opts.Data)
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Read the expression from a file (- for stdin)")
	cmd.Flags().IntVarP(&opts.Row, "row", "r", -1, "Evaluate a single row (0-based)")

	return cmd
}

func runEval(cmd *cobra.Command, args []string, opts *EvalOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	source, err := readSource(cmd, args, opts.File)
	if err != nil {
		return err
	}
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}
	data, err := opts.Data.Load(ctx, eng)
	if err != nil {
		return err
	}
	compiled, err := eng.Compile(source, data.Columns())
	if err != nil {
		return report(cmd, source, err)
	}

	var src rowsource.Source
	if data.Table != nil {
		src = data.Table
	}

	var results []engine.Result
	switch {
	case src == nil:
		read := append(append([]string(nil), compiled.Columns()...), compiled.EntireColumns()...)
		if len(read) > 0 {
			return fmt.Errorf("expression reads @%s; give rows with --data or --sqlite", strings.Join(read, ", @"))
		}
		v, err := compiled.Evaluate(nil, 0)
		if err != nil {
			return report(cmd, source, err)
		}
		results = []engine.Result{{Value: v}}
	case opts.Row >= 0:
		if opts.Row >= data.Rows() {
			return fmt.Errorf("row %d out of range, the data has %d rows", opts.Row, data.Rows())
		}
		v, err := compiled.Evaluate(src, opts.Row)
		if err != nil {
			return report(cmd, source, err)
		}
		results = []engine.Result{{Row: opts.Row, Value: v}}
	default:
		results, err = compiled.EvaluateAll(ctx, src, cfg.Workers)
		if err != nil {
			return err
		}
	}

	lang, _ := cfg.Language()
	rs := &resultSet{compiled: compiled, source: src, results: results, lang: lang}
	if err := rs.render(cmd.OutOrStdout(), cfg.Output, eng.Marshaller()); err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != nil {
			return ErrReported
		}
	}
	return nil
}
