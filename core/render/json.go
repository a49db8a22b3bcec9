// JSON renderer: builds the structured JSON output from a delta and its
// metadata. The structure block is read off the delta's lines and
// attributes; nothing is inferred beyond what the formatting says.
package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/pastepipe/core"
	"github.com/gaurav-prasanna/pastepipe/core/delta"
	"github.com/gaurav-prasanna/pastepipe/core/match"
)

// JSONRenderer produces structured JSON output from a delta.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render wraps the delta, its plain text and its structure in one document.
func (r *JSONRenderer) Render(d delta.Delta, meta core.Metadata) ([]byte, error) {
	doc := core.DocumentJSON{
		Metadata:  meta,
		Delta:     d,
		Text:      strings.TrimSuffix(d.Text(), "\n"),
		Structure: Analyze(d),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

// Analyze counts the structure of d.
func Analyze(d delta.Delta) core.Structure {
	s := core.Structure{
		Headings: []core.Heading{},
		Links:    []core.Link{},
	}
	for _, line := range d.Lines() {
		s.Lines++
		switch {
		case line.Attrs[match.AttrHeader] != nil:
			level, _ := intAttr(line.Attrs[match.AttrHeader])
			s.Headings = append(s.Headings, core.Heading{Level: level, Text: line.Content.Text()})
		case line.Attrs[match.AttrList] != nil:
			s.ListItems++
		case line.Attrs[match.AttrCodeBlock] != nil:
			s.CodeLines++
		case line.Attrs[match.AttrTable] != nil || line.Attrs[match.AttrTableHeaderCell] != nil:
			s.TableCells++
		}
		s.Links = appendLinks(s.Links, line.Content)
		for _, op := range line.Content {
			if op.IsEmbed() {
				s.Embeds++
			}
		}
	}
	return s
}

// appendLinks adds one Link per run of ops sharing an href.
func appendLinks(links []core.Link, content delta.Delta) []core.Link {
	open := false
	for _, op := range content {
		href, _ := op.Attrs[match.AttrLink].(string)
		if href == "" || !op.IsText() {
			open = false
			continue
		}
		if last := len(links) - 1; open && links[last].Href == href {
			links[last].Text += op.Text
			continue
		}
		links = append(links, core.Link{Text: op.Text, Href: href})
		open = true
	}
	return links
}

// intAttr reads an integer attribute from either a built delta or one
// decoded from JSON.
func intAttr(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), x == float64(int(x))
	case string:
		i, err := strconv.Atoi(x)
		return i, err == nil
	}
	return 0, false
}
