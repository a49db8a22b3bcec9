package match

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/gaurav-prasanna/pastepipe/core/normalize"
)

// Selector decides which nodes a matcher applies to.
type Selector interface {
	Match(n *normalize.Node) bool
	String() string
}

type kindSelector normalize.Kind

func (k kindSelector) Match(n *normalize.Node) bool {
	if normalize.Kind(k) == normalize.ElementNode {
		return n.IsElement()
	}
	return n.Kind == normalize.Kind(k)
}

func (k kindSelector) String() string {
	return normalize.Kind(k).String() + "-node"
}

// TextNodes selects every text node.
func TextNodes() Selector { return kindSelector(normalize.TextNode) }

// Elements selects every element, line breaks included.
func Elements() Selector { return kindSelector(normalize.ElementNode) }

type tagSelector []string

func (t tagSelector) Match(n *normalize.Node) bool { return n.Is(t...) }
func (t tagSelector) String() string             { return strings.Join(t, ", ") }

// Tags selects elements by tag name.
func Tags(tags ...string) Selector {
	lower := make(tagSelector, len(tags))
	for i, t := range tags {
		lower[i] = strings.ToLower(t)
	}
	return lower
}

type cssSelector struct {
	src string
	sel cascadia.Sel
}

func (c cssSelector) Match(n *normalize.Node) bool {
	return n.IsElement() && n.Source != nil && c.sel.Match(n.Source)
}

func (c cssSelector) String() string { return c.src }

// CSS compiles a CSS selector such as "ul.checklist > li" or "a[href^=http]".
// Matching runs against the parsed document, so combinators see the
// original ancestry.
func CSS(selector string) (Selector, error) {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return nil, fmt.Errorf("compiling selector %q: %w", selector, err)
	}
	return cssSelector{src: selector, sel: sel}, nil
}

// MustCSS is like CSS but panics on an invalid selector.
func MustCSS(selector string) Selector {
	s, err := CSS(selector)
	if err != nil {
		panic(err)
	}
	return s
}

type predicateSelector struct {
	name string
	fn   func(*normalize.Node) bool
}

func (p predicateSelector) Match(n *normalize.Node) bool { return p.fn(n) }
func (p predicateSelector) String() string             { return p.name }

// Predicate selects nodes for which fn returns true.
func Predicate(name string, fn func(*normalize.Node) bool) Selector {
	return predicateSelector{name: name, fn: fn}
}
