// Package config loads the optional YAML configuration file of the
// pastepipe CLI. Flags given on the command line override it.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/gaurav-prasanna/pastepipe/core/match"
)

// MaxInputSize limits the config file size (1MB).
var MaxInputSize = 1 << 20

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInputTooLarge  = errors.New("config exceeds maximum size")
	ErrUnknownFormat  = errors.New("unknown output format")
	ErrUnknownLevel   = errors.New("unknown log level")
	ErrInvalidMatcher = errors.New("invalid matcher")
)

// Formats lists the output formats, in the order help text shows them.
var Formats = []string{"json", "html", "text", "markdown", "pdf"}

// Config holds all configuration for a conversion run.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
	Convert ConvertConfig `yaml:"convert"`
}

// OutputConfig selects what is written and where.
type OutputConfig struct {
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"` // empty = current directory, "-" = stdout
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// ConvertConfig tunes the conversion itself.
type ConvertConfig struct {
	PlainText bool            `yaml:"plainText"` // treat input as text, never HTML
	Linkify   bool            `yaml:"linkify"`   // link bare URLs in text
	Selector  string          `yaml:"selector"`  // CSS selector narrowing fetched pages
	Matchers  []MatcherConfig `yaml:"matchers"`
}

// MatcherConfig adds formatting to every node matching a CSS selector.
type MatcherConfig struct {
	Selector   string         `yaml:"selector"`
	Attributes map[string]any `yaml:"attributes"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Output: OutputConfig{Format: "json"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads and validates the config file at path. Fields the file leaves
// out keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates config data. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	if len(data) > MaxInputSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	cfg := Default()
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}
	for i := range cfg.Convert.Matchers {
		cfg.Convert.Matchers[i].Attributes = normalizeAttributes(cfg.Convert.Matchers[i].Attributes)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if !slices.Contains(Formats, c.Output.Format) {
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, c.Output.Format, strings.Join(Formats, ", "))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	for i, m := range c.Convert.Matchers {
		if _, err := match.CSS(m.Selector); err != nil {
			return fmt.Errorf("%w: matchers[%d]: %v", ErrInvalidMatcher, i, err)
		}
		if len(m.Attributes) == 0 {
			return fmt.Errorf("%w: matchers[%d] sets no attributes", ErrInvalidMatcher, i)
		}
	}
	return nil
}

// SlogLevel parses Level. An empty level means info.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, l.Level)
	}
	return level, nil
}

// normalizeAttributes converts YAML integers to int, the type matchers
// produce, so configured attributes compare equal to built-in ones.
func normalizeAttributes(attrs map[string]any) map[string]any {
	for k, v := range attrs {
		switch x := v.(type) {
		case int64:
			attrs[k] = int(x)
		case uint64:
			attrs[k] = int(x)
		case float64:
			if x == float64(int(x)) {
				attrs[k] = int(x)
			}
		}
	}
	return attrs
}
