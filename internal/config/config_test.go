package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	data := []byte(`
output:
  format: markdown
  dir: ./out
log:
  level: debug
convert:
  linkify: true
  selector: main
  matchers:
    - selector: span.highlight
      attributes:
        background: yellow
        size: 2
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Output.Format != "markdown" || cfg.Output.Dir != "./out" {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if !cfg.Convert.Linkify || cfg.Convert.PlainText || cfg.Convert.Selector != "main" {
		t.Errorf("Convert = %+v", cfg.Convert)
	}
	want := []MatcherConfig{{
		Selector:   "span.highlight",
		Attributes: map[string]any{"background": "yellow", "size": 2},
	}}
	if !reflect.DeepEqual(cfg.Convert.Matchers, want) {
		t.Errorf("Matchers = %#v, want %#v", cfg.Convert.Matchers, want)
	}
	if level, _ := cfg.Log.SlogLevel(); level != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", level)
	}
}

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	for _, data := range []string{"", "log:\n  level: warn\n"} {
		cfg, err := Parse([]byte(data))
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", data, err)
		}
		if cfg.Output.Format != "json" {
			t.Errorf("Parse(%q) format = %q, want json", data, cfg.Output.Format)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want error
	}{
		{"unknown field", "output:\n  colour: red\n", ErrConfigParse},
		{"bad yaml", "output: [\n", ErrConfigParse},
		{"unknown format", "output:\n  format: docx\n", ErrUnknownFormat},
		{"unknown level", "log:\n  level: loud\n", ErrUnknownLevel},
		{"bad selector", "convert:\n  matchers:\n    - selector: 'p['\n      attributes: {bold: true}\n", ErrInvalidMatcher},
		{"no attributes", "convert:\n  matchers:\n    - selector: p\n", ErrInvalidMatcher},
		{"too large", "# " + strings.Repeat("x", MaxInputSize), ErrInputTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "pastepipe.yaml")
	if err := os.WriteFile(path, []byte("output:\n  format: pdf\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output.Format != "pdf" {
		t.Errorf("format = %q, want pdf", cfg.Output.Format)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrConfigNotFound", err)
	}
}
