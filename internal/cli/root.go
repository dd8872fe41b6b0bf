// Package cli provides the command-line interface for colexpr.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/funvibe/colexpr/internal/cli/commands"
	"github.com/funvibe/colexpr/internal/cli/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "colexpr",
		Short: "Unit-aware column expressions",
		Long: `colexpr checks and evaluates column expressions: a small, statically
typed language whose numbers carry units of measure, evaluated row by row
against tabular data.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			loaded, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cmd.ErrOrStderr(), loaded.Config)
			if err != nil {
				return err
			}
			if loaded.File != "" {
				logger.Debug("using config file", "file", loaded.File)
			}
			cmd.SetContext(config.WithConfig(cmd.Context(), loaded.Config, logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}} (commit ` + GitCommit + `)
`)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./colexpr.yaml)")
	pf.String("units-file", "", "YAML file with additional units")
	pf.String("types-file", "", "YAML file with additional tagged types")
	pf.Int("precision", 0, "Significant digits of decimal arithmetic")
	pf.Int("workers", 0, "Goroutines evaluating rows (0 = one per CPU)")
	pf.StringP("output", "o", "", "Output format (table|plain|json)")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.String("lang", "", "Language of diagnostics (en|de)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.OutputTable, config.OutputPlain, config.OutputJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewEvalCommand())
	rootCmd.AddCommand(commands.NewFmtCommand())
	rootCmd.AddCommand(commands.NewFunctionsCommand())
	rootCmd.AddCommand(commands.NewUnitsCommand())
	rootCmd.AddCommand(commands.NewTypesCommand())
	rootCmd.AddCommand(commands.NewREPLCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, commands.ErrReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}
