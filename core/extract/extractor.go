// Package extract implements the Extractor interface.
// It narrows a fetched page to the fragment worth converting by:
//  1. Using an explicit CSS selector when one is given
//  2. Otherwise finding the best content container (<main>, <article>, or <body>)
//  3. Removing page chrome (nav, footer, forms, ads)
//
// Images and video stay: they convert to embeds.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoContent is returned when nothing in the page matches.
var ErrNoContent = errors.New("no content found in HTML")

// noiseSelectors are removed before extraction. They are page chrome, not
// content anyone would paste.
var noiseSelectors = []string{
	"nav", "footer", "header",
	"form", "button", "select", "textarea",
	"canvas", "svg",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
}

// HTMLExtractor returns the main content fragment of a page.
type HTMLExtractor struct {
	selector string
}

type Option func(*HTMLExtractor)

// WithSelector extracts the elements matching a CSS selector instead of the
// main content container.
func WithSelector(selector string) Option {
	return func(e *HTMLExtractor) { e.selector = selector }
}

// New creates an HTMLExtractor.
func New(opts ...Option) *HTMLExtractor {
	e := &HTMLExtractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract takes a full page and returns an HTML fragment holding only its
// content. With a selector, every match is kept in document order.
func (e *HTMLExtractor) Extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	if e.selector != "" {
		return e.extractSelection(doc)
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	// <main> is the most semantically correct, then <article>, then <body>.
	var content *goquery.Selection
	for _, tag := range []string{"main", "article", "body"} {
		sel := doc.Find(tag)
		if sel.Length() > 0 {
			content = sel.First()
			break
		}
	}
	if content == nil {
		return "", ErrNoContent
	}

	result, err := content.Html()
	if err != nil {
		return "", fmt.Errorf("serializing content: %w", err)
	}
	return result, nil
}

func (e *HTMLExtractor) extractSelection(doc *goquery.Document) (string, error) {
	matches := doc.Find(e.selector)
	if matches.Length() == 0 {
		return "", fmt.Errorf("selector %q: %w", e.selector, ErrNoContent)
	}
	var b strings.Builder
	var err error
	matches.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var outer string
		outer, err = goquery.OuterHtml(s)
		if err != nil {
			return false
		}
		b.WriteString(outer)
		return true
	})
	if err != nil {
		return "", fmt.Errorf("serializing %q: %w", e.selector, err)
	}
	return b.String(), nil
}

// Title returns the page's <title>, trimmed.
func Title(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// Language returns the lang attribute of the <html> element, or "" when
// the page does not declare one.
func Language(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	lang, _ := doc.Find("html").First().Attr("lang")
	return strings.TrimSpace(lang)
}
