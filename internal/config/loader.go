package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HEXSTORM_"

// Load builds a configuration from defaults, the file at path (if any) and
// the environment, then validates it. An empty path or a missing file
// leaves the defaults in place.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := Decode(path, data, cfg); err != nil {
				return nil, err
			}
		case os.IsNotExist(err):
			// File doesn't exist, not an error
		default:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode parses data into cfg, picking the format from the path's
// extension. Values absent from data keep whatever cfg already holds.
func Decode(path string, data []byte, cfg *Config) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	if err != nil {
		return &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return nil
}

// envSetter applies one environment value to a config.
type envSetter func(cfg *Config, value string) error

// envMapping returns the supported environment variables.
func envMapping() map[string]envSetter {
	return map[string]envSetter{
		EnvPrefix + "LOG_LEVEL": func(c *Config, v string) error {
			c.Logging.Level = v
			return nil
		},
		EnvPrefix + "LOG_FORMAT": func(c *Config, v string) error {
			c.Logging.Format = v
			return nil
		},
		EnvPrefix + "TABLE": func(c *Config, v string) error {
			c.Table.Path = v
			return nil
		},
		EnvPrefix + "WATCH_TABLE": func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			c.Table.Watch = b
			return nil
		},
		EnvPrefix + "OCTETS_PER_LINE": intSetter(func(c *Config) *int { return &c.Display.OctetsPerLine }),
		EnvPrefix + "GROUPING":        intSetter(func(c *Config) *int { return &c.Display.Grouping }),
		EnvPrefix + "MAX_UNDO":        intSetter(func(c *Config) *int { return &c.History.MaxEntries }),
	}
}

func intSetter(field func(*Config) *int) envSetter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

// ApplyEnv applies HEXSTORM_* overrides using lookup (usually os.LookupEnv).
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for name, set := range envMapping() {
		value, ok := lookup(name)
		if !ok {
			continue
		}
		if err := set(cfg, value); err != nil {
			return fmt.Errorf("environment %s=%q: %w", name, value, err)
		}
	}
	return nil
}
