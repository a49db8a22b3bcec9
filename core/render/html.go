package render

import (
	"html"
	"strings"

	"github.com/gaurav-prasanna/pastepipe/core"
	"github.com/gaurav-prasanna/pastepipe/core/delta"
	"github.com/gaurav-prasanna/pastepipe/core/export"
)

// HTMLRenderer writes a delta as a standalone HTML page.
type HTMLRenderer struct {
	exporter *export.HTMLExporter
}

// NewHTMLRenderer creates an HTMLRenderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{exporter: export.New()}
}

// Render wraps the exported fragment in a page carrying the metadata's
// title and language.
func (r *HTMLRenderer) Render(d delta.Delta, meta core.Metadata) ([]byte, error) {
	body, err := r.exporter.HTML(d)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html")
	if meta.Language != "" {
		b.WriteString(` lang="` + html.EscapeString(meta.Language) + `"`)
	}
	b.WriteString(">\n<head>\n<meta charset=\"utf-8\">\n")
	if meta.Title != "" {
		b.WriteString("<title>" + html.EscapeString(meta.Title) + "</title>\n")
	}
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("\n</body>\n</html>\n")
	return []byte(b.String()), nil
}

// Extension returns the file extension for HTML output.
func (r *HTMLRenderer) Extension() string {
	return ".html"
}

// TextRenderer writes the delta's plain text. Embeds are dropped.
type TextRenderer struct {
	exporter *export.HTMLExporter
}

// NewTextRenderer creates a TextRenderer.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{exporter: export.New()}
}

func (r *TextRenderer) Render(d delta.Delta, _ core.Metadata) ([]byte, error) {
	return []byte(r.exporter.Text(d)), nil
}

func (r *TextRenderer) Extension() string {
	return ".txt"
}
