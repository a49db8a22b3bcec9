// Package core defines the pipeline interfaces for PastePipe.
// Each stage of the pipeline is a small interface so the CLI and the
// clipboard adapter can be wired and tested stage by stage.
package core

import (
	"context"

	"github.com/gaurav-prasanna/pastepipe/core/delta"
	"github.com/gaurav-prasanna/pastepipe/core/normalize"
	"github.com/gaurav-prasanna/pastepipe/core/walk"
)

// FetchResult holds the raw markup and response metadata from a fetch.
type FetchResult struct {
	URL         string
	StatusCode  int
	ContentType string
	HTML        string
}

// Metadata describes where converted content came from.
type Metadata struct {
	Source      string `json:"source"`
	Title       string `json:"title,omitempty"`
	Language    string `json:"language,omitempty"`
	ConvertedAt string `json:"converted_at"` // ISO8601
}

// Heading is a header line found in a delta.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Link is a linked run found in a delta.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Structure counts the block structure of a delta.
type Structure struct {
	Headings   []Heading `json:"headings"`
	Links      []Link    `json:"links"`
	Lines      int       `json:"lines"`
	ListItems  int       `json:"list_items"`
	CodeLines  int       `json:"code_lines"`
	TableCells int       `json:"table_cells"`
	Embeds     int       `json:"embeds"`
}

// DocumentJSON is the complete JSON output for one conversion.
type DocumentJSON struct {
	Metadata  Metadata    `json:"metadata"`
	Delta     delta.Delta `json:"delta"`
	Text      string      `json:"text"`
	Structure Structure   `json:"structure"`
}

// Fetcher retrieves raw HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Extractor narrows a full page to the fragment worth converting.
type Extractor interface {
	Extract(html string) (string, error)
}

// Normalizer turns raw markup into a sanitized tree.
type Normalizer interface {
	Normalize(raw string) *normalize.Node
}

// Converter turns a clipboard-style payload into a delta.
type Converter interface {
	Convert(in walk.Input) delta.Delta
}

// Exporter turns a delta back into clipboard payloads.
type Exporter interface {
	HTML(d delta.Delta) (string, error)
	Text(d delta.Delta) string
}

// Renderer converts a delta (and metadata) into a final output format.
type Renderer interface {
	Render(d delta.Delta, meta Metadata) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
