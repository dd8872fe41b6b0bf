package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/funvibe/colexpr/internal/config"
	"github.com/funvibe/colexpr/pkg/engine"
)

// FmtOptions holds options for the fmt command.
type FmtOptions struct {
	File  string
	Write bool
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand() *cobra.Command {
	opts := &FmtOptions{}

	cmd := &cobra.Command{
		Use:   "fmt [expression]",
		Short: "Print an expression in canonical form",
		Example: `  colexpr fmt 'define x=1 in x+1'
  colexpr fmt -w -f speed.cx
  colexpr fmt -f exprs/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Write && (opts.File == "" || opts.File == "-") {
				return fmt.Errorf("--write needs --file")
			}
			if info, err := os.Stat(opts.File); err == nil && info.IsDir() {
				if len(args) > 0 {
					return fmt.Errorf("cannot combine an expression argument with a directory")
				}
				eng, err := newEngine(cmd)
				if err != nil {
					return err
				}
				return formatDir(cmd, eng, opts)
			}
			source, err := readSource(cmd, args, opts.File)
			if err != nil {
				return err
			}
			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			out, err := eng.Format(source)
			if err != nil {
				return report(cmd, source, err)
			}
			if opts.Write {
				info, err := os.Stat(opts.File)
				if err != nil {
					return err
				}
				return os.WriteFile(opts.File, []byte(out+"\n"), info.Mode().Perm())
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Read the expression from a file (- for stdin)")
	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "Rewrite the file in place")

	return cmd
}

// formatDir formats every expression file under opts.File. Without --write it
// lists the files whose canonical form differs, the way gofmt -l does.
func formatDir(cmd *cobra.Command, eng *engine.Engine, opts *FmtOptions) error {
	failed := false
	err := filepath.WalkDir(opts.File, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != config.ExpressionFileExt {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		source := string(raw)
		out, err := eng.Format(source)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s:\n", path)
			if rerr := report(cmd, source, err); rerr != ErrReported {
				return rerr
			}
			failed = true
			return nil
		}
		if out+"\n" == source {
			return nil
		}
		if !opts.Write {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return os.WriteFile(path, []byte(out+"\n"), info.Mode().Perm())
	})
	if err != nil {
		return err
	}
	if failed {
		return ErrReported
	}
	return nil
}
