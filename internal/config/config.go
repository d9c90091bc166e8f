// Package config holds hexstorm's settings and loads them from TOML or YAML
// files and HEXSTORM_* environment variables.
//
// Precedence, lowest first: built-in defaults, the config file, the
// environment. A missing config file is not an error.
package config

import (
	"github.com/dshills/hexstorm/internal/logging"
)

// Default configuration values.
const (
	DefaultOctetsPerLine = 16
	DefaultGrouping      = 4
	DefaultDebounceMS    = 100
	MaxOctetsPerLine     = 256
)

// Config is the complete hexstorm configuration.
type Config struct {
	Display DisplayConfig `toml:"display" yaml:"display"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Table   TableConfig   `toml:"table" yaml:"table"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// DisplayConfig controls dump layout.
type DisplayConfig struct {
	OctetsPerLine int `toml:"octets_per_line" yaml:"octets_per_line"`
	Grouping      int `toml:"grouping" yaml:"grouping"`
}

// HistoryConfig controls the undo log.
type HistoryConfig struct {
	// MaxEntries bounds the undo stack; 0 keeps everything.
	MaxEntries int `toml:"max_entries" yaml:"max_entries"`
}

// TableConfig selects the substitution table. Path may list several files
// separated by the OS path list separator; later files override or delete
// entries of earlier ones.
type TableConfig struct {
	Path       string `toml:"path" yaml:"path"`
	Watch      bool   `toml:"watch" yaml:"watch"`
	DebounceMS int    `toml:"debounce_ms" yaml:"debounce_ms"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			OctetsPerLine: DefaultOctetsPerLine,
			Grouping:      DefaultGrouping,
		},
		Table: TableConfig{
			DebounceMS: DefaultDebounceMS,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
	}
}

// Validate checks every setting and returns the first problem found.
func (c *Config) Validate() error {
	d := c.Display
	if d.OctetsPerLine < 1 || d.OctetsPerLine > MaxOctetsPerLine {
		return &ValidationError{Path: "display.octets_per_line", Message: "must be between 1 and 256", Value: d.OctetsPerLine}
	}
	if d.Grouping < 1 || d.Grouping > d.OctetsPerLine {
		return &ValidationError{Path: "display.grouping", Message: "must be between 1 and octets_per_line", Value: d.Grouping}
	}
	if c.History.MaxEntries < 0 {
		return &ValidationError{Path: "history.max_entries", Message: "must not be negative", Value: c.History.MaxEntries}
	}
	if c.Table.DebounceMS < 0 {
		return &ValidationError{Path: "table.debounce_ms", Message: "must not be negative", Value: c.Table.DebounceMS}
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return &ValidationError{Path: "logging.level", Message: "must be debug, info, warn or error", Value: c.Logging.Level}
	}
	switch c.Logging.Format {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return &ValidationError{Path: "logging.format", Message: "must be console or json", Value: c.Logging.Format}
	}
	return nil
}

// LoggerConfig converts the logging section into a logging.Config.
func (c *Config) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	return cfg
}
