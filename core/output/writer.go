// Package output handles file naming and writing for PastePipe outputs.
// Filenames are derived from the input: a URL becomes domain_path
// (e.g. example_com_docs.json), a file keeps its base name, and standard
// input is written as "clipboard".
package output

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Stdout is the output directory value that writes to standard output.
const Stdout = "-"

const stdinName = "clipboard"

// Writer writes rendered output to disk, or to a stream.
type Writer struct {
	OutputDir string
	stream    io.Writer
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
// If outputDir is Stdout, output goes to os.Stdout.
func New(outputDir string) (*Writer, error) {
	if outputDir == Stdout {
		return NewStream(os.Stdout), nil
	}
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// NewStream creates a Writer that copies every output to w.
func NewStream(w io.Writer) *Writer {
	return &Writer{stream: w}
}

// Write stores data for the given input source and returns where it went.
func (w *Writer) Write(source string, data []byte, ext string) (string, error) {
	if w.stream != nil {
		if _, err := w.stream.Write(data); err != nil {
			return "", fmt.Errorf("writing output: %w", err)
		}
		return Stdout, nil
	}

	path := filepath.Join(w.OutputDir, Filename(source)+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// Filename converts an input source into a flat filename without extension.
// Example: https://example.com/docs/intro → example_com_docs_intro
func Filename(source string) string {
	if source == "" || source == Stdout {
		return stdinName
	}
	if parsed, err := url.Parse(source); err == nil && parsed.Scheme != "" && parsed.Host != "" {
		parts := []string{sanitize(parsed.Host)}
		path := strings.Trim(parsed.Path, "/")
		if path != "" {
			for _, seg := range strings.Split(path, "/") {
				parts = append(parts, sanitize(seg))
			}
		}
		return strings.Join(parts, "_")
	}
	base := filepath.Base(source)
	return sanitize(strings.TrimSuffix(base, filepath.Ext(base)))
}

// sanitize replaces non-alphanumeric characters with underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
