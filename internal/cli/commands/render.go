package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/language"

	"github.com/funvibe/colexpr/internal/cli/config"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/internal/prettyprinter"
	"github.com/funvibe/colexpr/internal/rowsource"
	"github.com/funvibe/colexpr/internal/typesystem"
	"github.com/funvibe/colexpr/internal/value"
	"github.com/funvibe/colexpr/pkg/engine"
)

// resultSet is what eval renders: the rows it evaluated, the columns the
// expression reads, and one result per row.
type resultSet struct {
	compiled *engine.Compiled
	source   rowsource.Source
	results  []engine.Result
	lang     language.Tag
}

func formatValue(v value.Value, t typesystem.DataType) string {
	if v == nil {
		return ""
	}
	s, err := prettyprinter.Literal(v, t)
	if err != nil {
		return v.Inspect()
	}
	return s
}

func (rs *resultSet) errorText(err error) string {
	if ue, ok := diagnostics.AsUserError(err); ok {
		return ue.Localize(rs.lang)
	}
	return err.Error()
}

func (rs *resultSet) cell(column string, row int) string {
	if rs.source == nil {
		return ""
	}
	v, err := rs.source.Value(column, row)
	if err != nil {
		return "(not ready)"
	}
	t, _ := rs.source.ColumnType(column)
	return formatValue(v, t)
}

func (rs *resultSet) render(w io.Writer, format string, m *engine.Marshaller) error {
	switch format {
	case config.OutputJSON:
		return rs.renderJSON(w, m)
	case config.OutputPlain:
		return rs.renderPlain(w)
	default:
		return rs.renderTable(w)
	}
}

func (rs *resultSet) renderTable(w io.Writer) error {
	cols := rs.compiled.Columns()
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{"row"}
	for _, c := range cols {
		header = append(header, "@"+c)
	}
	header = append(header, "result")
	t.AppendHeader(header)

	failed := 0
	for _, r := range rs.results {
		row := table.Row{r.Row}
		for _, c := range cols {
			row = append(row, rs.cell(c, r.Row))
		}
		if r.Err != nil {
			failed++
			row = append(row, rs.errorText(r.Err))
		} else {
			row = append(row, formatValue(r.Value, rs.compiled.Type()))
		}
		t.AppendRow(row)
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows, %d failed) : %s\n", len(rs.results), failed, rs.compiled.Type())
	return nil
}

func (rs *resultSet) renderPlain(w io.Writer) error {
	for _, r := range rs.results {
		var line string
		if r.Err != nil {
			line = "error: " + rs.errorText(r.Err)
		} else {
			line = formatValue(r.Value, rs.compiled.Type())
		}
		if len(rs.results) > 1 {
			line = strconv.Itoa(r.Row) + "\t" + line
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

type jsonResult struct {
	Row   int    `json:"row"`
	Value any    `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

func (rs *resultSet) renderJSON(w io.Writer, m *engine.Marshaller) error {
	out := make([]jsonResult, len(rs.results))
	for i, r := range rs.results {
		out[i].Row = r.Row
		if r.Err != nil {
			out[i].Error = rs.errorText(r.Err)
			out[i].Code = string(diagnostics.CodeOf(r.Err))
			continue
		}
		v, err := m.FromValue(r.Value, rs.compiled.Type())
		if err != nil {
			return err
		}
		out[i].Value = v
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
