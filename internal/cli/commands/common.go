// Package commands implements the colexpr subcommands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/funvibe/colexpr/internal/cli/config"
	"github.com/funvibe/colexpr/internal/diagnostics"
	"github.com/funvibe/colexpr/pkg/engine"
)

// ErrReported is returned after a diagnostic has already been printed.
var ErrReported = errors.New("expression failed")

// newEngine builds an engine from the configuration in the command context.
func newEngine(cmd *cobra.Command) (*engine.Engine, error) {
	cfg := config.FromContext(cmd.Context())
	return engine.New(engine.Options{
		Logger:    config.GetLogger(cmd.Context()),
		UnitsFile: cfg.UnitsFile,
		TypesFile: cfg.TypesFile,
		Precision: uint32(cfg.Precision),
	})
}

// readSource returns the expression from the positional argument, or from
// file when set. "-" reads standard input.
func readSource(cmd *cobra.Command, args []string, file string) (string, error) {
	switch {
	case file != "" && len(args) > 0:
		return "", fmt.Errorf("give either an expression or --file, not both")
	case file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	case len(args) == 1:
		return args[0], nil
	}
	return "", fmt.Errorf("no expression given")
}

// colorEnabled reports whether w is a terminal that accepts colour.
func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

const (
	ansiRed   = "\x1b[31m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// report prints err to the command's error stream. User errors are localized
// and shown under the offending source line; the returned error is then
// ErrReported. Other errors are returned unchanged.
func report(cmd *cobra.Command, source string, err error) error {
	ue, ok := diagnostics.AsUserError(err)
	if !ok {
		return err
	}
	w := cmd.ErrOrStderr()
	printDiagnostic(w, cmd, source, ue)
	return ErrReported
}

func printDiagnostic(w io.Writer, cmd *cobra.Command, source string, ue *diagnostics.UserError) {
	cfg := config.FromContext(cmd.Context())
	tag, err := cfg.Language()
	if err != nil {
		tag = diagnostics.Languages()[0]
	}
	color := colorEnabled(w)

	prefix := "error"
	if color {
		prefix = ansiBold + ansiRed + prefix + ansiReset
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", prefix, ue.Localize(tag))

	line, col := ue.Token.Line, ue.Token.Column
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) || col < 1 {
		return
	}
	text := lines[line-1]
	_, _ = fmt.Fprintf(w, "  %s\n", text)
	caret := "^"
	if color {
		caret = ansiRed + caret + ansiReset
	}
	_, _ = fmt.Fprintf(w, "  %s%s\n", indentFor(text, col-1), caret)
}

// indentFor keeps tabs so the caret lines up under text.
func indentFor(text string, n int) string {
	var sb strings.Builder
	for i, r := range []rune(text) {
		if i >= n {
			break
		}
		if r == '\t' {
			sb.WriteRune('\t')
		} else {
			sb.WriteRune(' ')
		}
	}
	return sb.String()
}
