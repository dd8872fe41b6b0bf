package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/funvibe/colexpr/internal/rowsource"
	"github.com/funvibe/colexpr/pkg/engine"
)

const replPrompt = "colexpr> "

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	opts := &DataOptions{}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Evaluate expressions interactively",
		Long: `Start an interactive session. Each line is checked and evaluated
against the current row of the data source. Type .help for commands.`,
		Example: `  colexpr repl --data trips.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			data, err := opts.Load(cmd.Context(), eng)
			if err != nil {
				return err
			}
			return runREPL(cmd, eng, data)
		},
	}

	addDataFlags(cmd, opts)

	return cmd
}

type session struct {
	cmd  *cobra.Command
	eng  *engine.Engine
	data *Data
	row  int
	out  io.Writer
}

func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "colexpr")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}

func runREPL(cmd *cobra.Command, eng *engine.Engine, data *Data) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile(),
		AutoComplete:    newCompleter(eng, data),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	s := &session{cmd: cmd, eng: eng, data: data, out: cmd.OutOrStdout()}
	_, _ = fmt.Fprintf(s.out, "colexpr (%d rows). Type .help for commands, .quit to exit\n", data.Rows())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if quit := s.handle(strings.TrimSpace(line)); quit {
			return nil
		}
	}
}

// handle runs one line and reports whether the session should end.
func (s *session) handle(line string) bool {
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ".") {
		s.evaluate(line)
		return false
	}

	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch strings.ToLower(command) {
	case ".quit", ".exit":
		return true
	case ".help":
		printREPLHelp(s.out)
	case ".type":
		if c := s.compile(rest); c != nil {
			_, _ = fmt.Fprintln(s.out, c.Type())
		}
	case ".fmt":
		out, err := s.eng.Format(rest)
		if err != nil {
			_ = report(s.cmd, rest, err)
			return false
		}
		_, _ = fmt.Fprintln(s.out, out)
	case ".row":
		s.selectRow(rest)
	case ".columns":
		s.printColumns()
	case ".functions":
		names := s.eng.Functions().Names()
		_, _ = fmt.Fprintln(s.out, strings.Join(names, " "))
	default:
		_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "unknown command %s; type .help\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	_, _ = fmt.Fprint(w, `.type EXPR    print the type of EXPR
.fmt EXPR     print EXPR in canonical form
.row [N]      show or select the current row
.columns      list columns and their types
.functions    list function names
.quit         leave
`)
}

func (s *session) compile(source string) *engine.Compiled {
	c, err := s.eng.Compile(source, s.data.Columns())
	if err != nil {
		if rerr := report(s.cmd, source, err); !errors.Is(rerr, ErrReported) {
			_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "Error: %v\n", rerr)
		}
		return nil
	}
	return c
}

func (s *session) evaluate(source string) {
	c := s.compile(source)
	if c == nil {
		return
	}
	var src rowsource.Source
	if s.data.Table != nil {
		src = s.data.Table
	}
	if src == nil && len(c.Columns())+len(c.EntireColumns()) > 0 {
		_, _ = fmt.Fprintln(s.cmd.ErrOrStderr(), "no rows loaded; start the REPL with --data or --sqlite")
		return
	}
	if src != nil && s.row >= src.RowCount() {
		_, _ = fmt.Fprintln(s.cmd.ErrOrStderr(), "the data has no rows")
		return
	}
	v, err := c.Evaluate(src, s.row)
	if err != nil {
		if rerr := report(s.cmd, source, err); !errors.Is(rerr, ErrReported) {
			_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "Error: %v\n", rerr)
		}
		return
	}
	_, _ = fmt.Fprintf(s.out, "%s : %s\n", formatValue(v, c.Type()), c.Type())
}

func (s *session) selectRow(arg string) {
	if arg == "" {
		_, _ = fmt.Fprintf(s.out, "row %d of %d\n", s.row, s.data.Rows())
		return
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 || n >= s.data.Rows() {
		_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "row must be between 0 and %d\n", s.data.Rows()-1)
		return
	}
	s.row = n
}

func (s *session) printColumns() {
	names := make([]string, 0, len(s.data.Types))
	for name := range s.data.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(s.out, "@%s : %s\n", name, s.data.Types[name])
	}
}

func newCompleter(eng *engine.Engine, data *Data) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range eng.Functions().Names() {
		items = append(items, readline.PcItem(name+"("))
	}
	for name := range data.Types {
		items = append(items, readline.PcItem("@"+name))
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".type"),
		readline.PcItem(".fmt"),
		readline.PcItem(".row"),
		readline.PcItem(".columns"),
		readline.PcItem(".functions"),
		readline.PcItem(".quit"),
	)
	return readline.NewPrefixCompleter(items...)
}
