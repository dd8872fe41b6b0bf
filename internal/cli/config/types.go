// Package config loads the colexpr CLI configuration.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"

	intconfig "github.com/funvibe/colexpr/internal/config"
	"github.com/funvibe/colexpr/internal/diagnostics"
)

// Config holds all CLI configuration options.
type Config struct {
	UnitsFile string `koanf:"units_file"`
	TypesFile string `koanf:"types_file"`
	Precision int    `koanf:"precision"`
	Workers   int    `koanf:"workers"`
	Output    string `koanf:"output"`
	LogLevel  string `koanf:"log_level"`
	Lang      string `koanf:"lang"`
}

// Output formats
const (
	OutputTable = "table"
	OutputPlain = "plain"
	OutputJSON  = "json"
)

// Default configuration values
const (
	DefaultOutput   = OutputTable
	DefaultLogLevel = "warn"
	DefaultLang     = "en"
	DefaultWorkers  = 0 // GOMAXPROCS
)

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *Config {
	return &Config{
		Precision: intconfig.DefaultPrecision,
		Workers:   DefaultWorkers,
		Output:    DefaultOutput,
		LogLevel:  DefaultLogLevel,
		Lang:      DefaultLang,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Output {
	case OutputTable, OutputPlain, OutputJSON:
	default:
		return fmt.Errorf("unknown output format %q (want table, plain or json)", c.Output)
	}
	if c.Precision < 1 {
		return fmt.Errorf("precision must be positive, got %d", c.Precision)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Language(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Language resolves Lang against the languages diagnostics are available in.
func (c *Config) Language() (language.Tag, error) {
	tag, err := language.Parse(strings.TrimSpace(c.Lang))
	if err != nil {
		return language.Und, fmt.Errorf("invalid lang %q: %w", c.Lang, err)
	}
	supported := diagnostics.Languages()
	_, idx, conf := language.NewMatcher(supported).Match(tag)
	if conf == language.No {
		return language.English, nil
	}
	return supported[idx], nil
}
