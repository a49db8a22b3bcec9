package render

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/pastepipe/core"
	"github.com/gaurav-prasanna/pastepipe/core/delta"
)

func sample() delta.Delta {
	return delta.Delta{}.
		Insert("Notes", nil).Insert("\n", delta.Attrs{"header": 1}).
		Insert("Read ", nil).Insert("the docs", delta.Attrs{"link": "https://example.com/docs"}).
		Insert(" now", delta.Attrs{"bold": true}).Insert("\n", nil).
		Insert("first", nil).Insert("\n", delta.Attrs{"list": "ordered"}).
		Insert("second", nil).Insert("\n", delta.Attrs{"list": "ordered"}).
		InsertEmbed("image", "https://example.com/a.png", nil).Insert("\n", nil).
		Insert("x := 1", nil).Insert("\n", delta.Attrs{"code-block": true})
}

// Every renderer must satisfy the pipeline interface.
var _ = []core.Renderer{
	NewJSONRenderer(), NewMarkdownRenderer(), NewPDFRenderer(),
	NewHTMLRenderer(), NewTextRenderer(),
}

func TestJSONRenderer(t *testing.T) {
	t.Parallel()

	meta := core.Metadata{Source: "notes.html", ConvertedAt: "2026-01-02T03:04:05Z"}
	data, err := NewJSONRenderer().Render(sample(), meta)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var got core.DocumentJSON
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, data)
	}
	if got.Metadata != meta {
		t.Errorf("Metadata = %+v, want %+v", got.Metadata, meta)
	}
	if got.Text != "Notes\nRead the docs now\nfirst\nsecond\n\nx := 1" {
		t.Errorf("Text = %q", got.Text)
	}
	if got.Delta.Length() != sample().Length() {
		t.Errorf("Delta length = %d, want %d", got.Delta.Length(), sample().Length())
	}
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	want := core.Structure{
		Headings:  []core.Heading{{Level: 1, Text: "Notes"}},
		Links:     []core.Link{{Text: "the docs", Href: "https://example.com/docs"}},
		Lines:     6,
		ListItems: 2,
		CodeLines: 1,
		Embeds:    1,
	}
	if got := Analyze(sample()); !reflect.DeepEqual(got, want) {
		t.Errorf("Analyze() = %+v, want %+v", got, want)
	}
}

func TestMarkdownRenderer(t *testing.T) {
	t.Parallel()

	data, err := NewMarkdownRenderer().Render(sample(), core.Metadata{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	md := string(data)
	for _, want := range []string{
		"# Notes",
		"[the docs](https://example.com/docs)",
		"**now**",
		"1. first",
		"2. second",
		"![](https://example.com/a.png)",
		"x := 1",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestHTMLRenderer(t *testing.T) {
	t.Parallel()

	data, err := NewHTMLRenderer().Render(sample(), core.Metadata{Title: "A & B", Language: "en"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	page := string(data)
	for _, want := range []string{
		`<html lang="en">`,
		"<title>A &amp; B</title>",
		"<h1>Notes</h1>",
		"<ol><li>first</li><li>second</li></ol>",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q:\n%s", want, page)
		}
	}
}

func TestTextRenderer(t *testing.T) {
	t.Parallel()

	data, err := NewTextRenderer().Render(delta.Delta{}.Insert("a\nb\n", nil), core.Metadata{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a\nb\n" {
		t.Errorf("Render() = %q", data)
	}
}

func TestPDFRenderer(t *testing.T) {
	t.Parallel()

	d := sample().
		Insert("Name", nil).Insert("\n", delta.Attrs{"tableHeaderCell": 1}).
		Insert("Ünïcode cell", nil).Insert("\n", delta.Attrs{"table": 2}).
		Insert("nested", nil).Insert("\n", delta.Attrs{"list": "bullet", "indent": 2})
	data, err := NewPDFRenderer().Render(d, core.Metadata{Title: "Notes", Source: "notes.html"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", data[:min(len(data), 16)])
	}
}

func TestFontStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base  string
		attrs delta.Attrs
		want  []string
	}{
		{"", nil, nil},
		{"", delta.Attrs{"bold": true, "italic": true}, []string{"B", "I"}},
		{"B", delta.Attrs{"bold": true, "underline": true}, []string{"B", "U"}},
	}
	for _, tt := range tests {
		got := fontStyle(tt.base, tt.attrs)
		if len(got) != len(tt.want) {
			t.Errorf("fontStyle(%q, %v) = %q, want letters %v", tt.base, tt.attrs, got, tt.want)
			continue
		}
		for _, s := range tt.want {
			if !strings.Contains(got, s) {
				t.Errorf("fontStyle(%q, %v) = %q, missing %q", tt.base, tt.attrs, got, s)
			}
		}
	}
}
