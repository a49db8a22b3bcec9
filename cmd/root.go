// Package cmd implements the CLI commands for PastePipe using Cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gaurav-prasanna/pastepipe/internal/config"
)

// Persistent flag variables.
var (
	flagConfig   string
	flagLogLevel string
)

// cfg is the merged configuration: file first, then flags.
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "pastepipe",
	Short: "PastePipe converts pasted HTML and text into rich-text deltas",
	Long: `PastePipe is the conversion pipeline behind a rich-text editor's clipboard.
It turns HTML or plain text into a Document Delta, the flat list of
attributed inserts the editor stores, and exports deltas back to HTML.

Usage:
  pastepipe convert [file|-] [flags]
  pastepipe export <delta.json|-> [flags]`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the config file, lets set flags override it and installs the
// default logger.
func setup(cmd *cobra.Command, _ []string) error {
	loaded := config.Default()
	if flagConfig != "" {
		var err error
		if loaded, err = config.Load(flagConfig); err != nil {
			return err
		}
	}
	*cfg = *loaded
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	return nil
}

// formatValue is a pflag.Value restricted to config.Formats.
type formatValue string

var _ pflag.Value = (*formatValue)(nil)

func (f *formatValue) String() string { return string(*f) }

func (f *formatValue) Set(s string) error {
	for _, known := range config.Formats {
		if s == known {
			*f = formatValue(s)
			return nil
		}
	}
	return fmt.Errorf("%w: %q (want one of %s)", config.ErrUnknownFormat, s, strings.Join(config.Formats, ", "))
}

func (f *formatValue) Type() string { return "format" }
