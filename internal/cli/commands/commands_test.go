package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/colexpr/internal/analyzer"
	"github.com/funvibe/colexpr/internal/rowsource"
	"github.com/funvibe/colexpr/internal/testutil"
	"github.com/funvibe/colexpr/internal/value"
	"github.com/funvibe/colexpr/pkg/engine"
)

func TestNewEvalCommand(t *testing.T) {
	cmd := NewEvalCommand()

	assert.Equal(t, "eval [expression]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	for _, flag := range []string{"column", "data", "sqlite", "query", "file", "row"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewCheckCommand(t *testing.T) {
	cmd := NewCheckCommand()

	assert.Equal(t, "check [expression]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	for _, flag := range []string{"column", "data", "file"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestCatalogCommands(t *testing.T) {
	assert.Equal(t, "functions [name...]", NewFunctionsCommand().Use)
	assert.NotNil(t, NewFunctionsCommand().Flags().Lookup("group"))
	assert.Equal(t, "units", NewUnitsCommand().Use)
	assert.Equal(t, "types", NewTypesCommand().Use)
	assert.Equal(t, "repl", NewREPLCommand().Use)
	assert.NotNil(t, NewFmtCommand().Flags().Lookup("write"))
}

func TestReadSource(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("1 + 1"))

	src, err := readSource(cmd, []string{"2"}, "")
	require.NoError(t, err)
	assert.Equal(t, "2", src)

	src, err = readSource(cmd, nil, "-")
	require.NoError(t, err)
	assert.Equal(t, "1 + 1", src)

	_, err = readSource(cmd, []string{"2"}, "x.cx")
	assert.Error(t, err)
	_, err = readSource(cmd, nil, "")
	assert.Error(t, err)
}

func TestIndentFor(t *testing.T) {
	assert.Equal(t, "  ", indentFor("ab+c", 2))
	assert.Equal(t, "\t ", indentFor("\tx + y", 2))
	assert.Equal(t, "", indentFor("abc", 0))
}

func TestReport(t *testing.T) {
	eng, err := engine.New(engine.Options{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	var errOut bytes.Buffer
	cmd.SetErr(&errOut)

	source := "define x = 1\nin x + true"
	_, cerr := eng.Compile(source, nil)
	require.Error(t, cerr)
	assert.ErrorIs(t, report(cmd, source, cerr), ErrReported)
	assert.Contains(t, errOut.String(), "error: [T")
	assert.Contains(t, errOut.String(), "  in x + true\n")

	plain := assert.AnError
	assert.Same(t, plain, report(cmd, source, plain))
}

func newSession(t *testing.T) (*session, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	eng, err := engine.New(engine.Options{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)

	length, err := eng.ParseType("Number{m}")
	require.NoError(t, err)
	table := rowsource.NewTable()
	require.NoError(t, table.AddColumn("length", length, value.Int(3), value.Int(5)))

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	data := &Data{Types: analyzer.ColumnMap{"length": length}, Table: table}
	return &session{cmd: cmd, eng: eng, data: data, out: &out}, &out, &errOut
}

func TestSession(t *testing.T) {
	s, out, errOut := newSession(t)

	assert.False(t, s.handle("@length * 2"))
	assert.Equal(t, "6{m} : Number{m}\n", out.String())

	out.Reset()
	assert.False(t, s.handle(".row 1"))
	assert.False(t, s.handle("@length"))
	assert.Equal(t, "5{m} : Number{m}\n", out.String())

	out.Reset()
	assert.False(t, s.handle(".type @length > 1{m}"))
	assert.Equal(t, "Boolean\n", out.String())

	out.Reset()
	assert.False(t, s.handle(".columns"))
	assert.Equal(t, "@length : Number{m}\n", out.String())

	assert.False(t, s.handle(".row 7"))
	assert.Contains(t, errOut.String(), "row must be between 0 and 1")

	errOut.Reset()
	assert.False(t, s.handle("@length + 1"))
	assert.Contains(t, errOut.String(), "error: [T")

	errOut.Reset()
	assert.False(t, s.handle(".nope"))
	assert.Contains(t, errOut.String(), "unknown command")

	assert.True(t, s.handle(".quit"))
}
