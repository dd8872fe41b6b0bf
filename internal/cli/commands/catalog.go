package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/funvibe/colexpr/internal/cli/config"
)

// catalog renders a listing as a table, tab-separated lines or JSON objects
// keyed by the lower-cased header.
type catalog struct {
	header table.Row
	rows   []table.Row
}

func (c *catalog) render(w io.Writer, format string) error {
	switch format {
	case config.OutputJSON:
		out := make([]map[string]any, len(c.rows))
		for i, row := range c.rows {
			out[i] = make(map[string]any, len(row))
			for j, cell := range row {
				out[i][strings.ToLower(fmt.Sprint(c.header[j]))] = cell
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case config.OutputPlain:
		for _, row := range c.rows {
			cells := make([]string, len(row))
			for i, cell := range row {
				cells[i] = fmt.Sprint(cell)
			}
			if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
				return err
			}
		}
		return nil
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(c.header)
	t.AppendRows(c.rows)
	t.Render()
	return nil
}

// NewFunctionsCommand creates the functions command.
func NewFunctionsCommand() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "functions [name...]",
		Short: "List built-in functions and their signatures",
		Example: `  colexpr functions
  colexpr functions --group text
  colexpr functions as to_text`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			reg := eng.Functions()

			c := &catalog{header: table.Row{"Name", "Group", "Signature", "Description"}}
			for _, name := range args {
				if _, ok := reg.Lookup(name); !ok {
					return fmt.Errorf("unknown function %s", name)
				}
			}
			for _, d := range reg.Definitions() {
				if group != "" && d.Group != group {
					continue
				}
				if len(args) > 0 && !contains(args, d.Name) {
					continue
				}
				for _, o := range d.Overloads {
					c.rows = append(c.rows, table.Row{d.Name, d.Group, o.Signature, o.Description})
				}
			}
			return c.render(cmd.OutOrStdout(), config.FromContext(cmd.Context()).Output)
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "Only list functions of this group")

	return cmd
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// NewUnitsCommand creates the units command.
func NewUnitsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "units",
		Short: "List known units",
		Long: `List base units and aliases, including those loaded from units_file.
Aliases are shown with their expansion into base units.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			c := &catalog{header: table.Row{"Name", "Kind", "Definition", "Description"}}
			for _, d := range eng.Units().Declarations() {
				kind, def := "base", ""
				if d.Alias {
					kind, def = "alias", d.Definition.String()
				}
				c.rows = append(c.rows, table.Row{d.Name, kind, def, d.Description})
			}
			return c.render(cmd.OutOrStdout(), config.FromContext(cmd.Context()).Output)
		},
	}
}

// NewTypesCommand creates the types command.
func NewTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List tagged types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			c := &catalog{header: table.Row{"Name", "Definition", "Description"}}
			for _, d := range eng.Types().Declarations() {
				c.rows = append(c.rows, table.Row{d.Name, d.String(), d.Description})
			}
			return c.render(cmd.OutOrStdout(), config.FromContext(cmd.Context()).Output)
		},
	}
}
