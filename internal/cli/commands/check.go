package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/funvibe/colexpr/internal/cli/config"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Data DataOptions
	File string
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check [expression]",
		Short: "Type-check an expression and print its type",
		Long: `Parse and type-check an expression without evaluating it.

Column types are declared with --column or taken from a data source.
Prints the result type and the columns the expression reads.`,
		Example: `  colexpr check -c distance='Number{km}' -c hours='Number{hour}' '@distance / @hours'
  colexpr check --data trips.yaml -f speed.cx`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	addDataFlags(cmd, &opts.Data)
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Read the expression from a file (- for stdin)")

	return cmd
}

type checkOutput struct {
	Type    string   `json:"type"`
	Columns []string `json:"columns"`
	Entire  []string `json:"entire"`
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
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

	out := checkOutput{
		Type:    compiled.Type().String(),
		Columns: compiled.Columns(),
		Entire:  compiled.EntireColumns(),
	}
	w := cmd.OutOrStdout()
	if cfg.Output == config.OutputJSON {
		if out.Columns == nil {
			out.Columns = []string{}
		}
		if out.Entire == nil {
			out.Entire = []string{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	_, _ = fmt.Fprintln(w, out.Type)
	if cfg.Output == config.OutputPlain {
		return nil
	}
	if len(out.Columns) > 0 {
		_, _ = fmt.Fprintf(w, "reads:  @%s\n", strings.Join(out.Columns, ", @"))
	}
	if len(out.Entire) > 0 {
		_, _ = fmt.Fprintf(w, "entire: @%s\n", strings.Join(out.Entire, ", @"))
	}
	return nil
}
