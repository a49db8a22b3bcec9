// Package render provides output renderers for the PastePipe pipeline.
// This file implements the Markdown renderer: the delta is exported to
// semantic HTML first and that HTML is converted to Markdown.
package render

import (
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/gaurav-prasanna/pastepipe/core"
	"github.com/gaurav-prasanna/pastepipe/core/delta"
	"github.com/gaurav-prasanna/pastepipe/core/export"
)

// MarkdownRenderer writes a delta as Markdown. Attributes Markdown has no
// syntax for (color, size, alignment) are dropped.
type MarkdownRenderer struct {
	exporter *export.HTMLExporter
}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{exporter: export.New()}
}

// Render converts the delta into Markdown bytes.
func (r *MarkdownRenderer) Render(d delta.Delta, meta core.Metadata) ([]byte, error) {
	html, err := r.exporter.HTML(d)
	if err != nil {
		return nil, err
	}
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return nil, fmt.Errorf("converting HTML to markdown: %w", err)
	}
	if markdown != "" {
		markdown += "\n"
	}
	return []byte(markdown), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
