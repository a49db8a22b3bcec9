// Package normalize implements the first pipeline stage: it parses raw
// markup with the standard HTML5 parser, strips executable content and
// collapses whitespace, producing a tree the walker can traverse.
//
// Parsing never fails. Malformed markup degrades the way a browser would
// render it because the parser implements the HTML5 recovery rules.
package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// unsafeSelectors are removed with their whole subtree before the tree is
// built. None of their content reaches text extraction.
var unsafeSelectors = []string{
	"head", "script", "style", "noscript", "template",
	"object", "embed", "applet", "frameset",
}

var unsafeTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"object": true, "embed": true, "applet": true, "frameset": true,
}

// HTMLNormalizer turns markup into a normalized Node tree.
type HTMLNormalizer struct{}

// New creates an HTMLNormalizer.
func New() *HTMLNormalizer {
	return &HTMLNormalizer{}
}

// Normalize parses raw and returns the root node, which stands for <body>.
// An empty or unusable input yields a root without children.
func (n *HTMLNormalizer) Normalize(raw string) *Node {
	root := &Node{Kind: ElementNode, Tag: "body"}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return root
	}
	for _, sel := range unsafeSelectors {
		doc.Find(sel).Remove()
	}
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return root
	}
	root.Source = body.Get(0)
	build(root, root.Source)
	collapseWhitespace(root)
	return root
}

// Normalize is a convenience wrapper around HTMLNormalizer.
func Normalize(raw string) *Node {
	return New().Normalize(raw)
}

func build(parent *Node, src *html.Node) {
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if c.Data == "" {
				continue
			}
			parent.Children = append(parent.Children, &Node{
				Kind:   TextNode,
				Text:   c.Data,
				Parent: parent,
				Source: c,
			})
		case html.ElementNode:
			tag := strings.ToLower(c.Data)
			if unsafeTags[tag] {
				continue
			}
			node := &Node{
				Kind:   ElementNode,
				Tag:    tag,
				Attrs:  safeAttrs(c.Attr),
				Parent: parent,
				Source: c,
			}
			node.Style = ParseStyle(node.Attrs["style"])
			parent.Children = append(parent.Children, node)
			switch tag {
			case "br":
				node.Kind = BreakNode
			case "iframe":
				// Fallback content is raw text, never rendered.
			default:
				build(node, c)
			}
		}
	}
}

// safeAttrs copies attributes, dropping event handlers.
func safeAttrs(attrs []html.Attribute) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if strings.HasPrefix(key, "on") || a.Namespace != "" {
			continue
		}
		out[key] = a.Val
	}
	return out
}

// collapseWhitespace rewrites text nodes below n following the HTML
// whitespace rules and drops the ones left empty. Sibling tests look at
// the tree as parsed, so texts are computed before any node is dropped.
func collapseWhitespace(n *Node) {
	if len(n.Children) == 0 {
		return
	}
	texts := make([]string, len(n.Children))
	for i, c := range n.Children {
		if c.Kind != TextNode {
			continue
		}
		var prev, next *Node
		if i > 0 {
			prev = n.Children[i-1]
		}
		if i+1 < len(n.Children) {
			next = n.Children[i+1]
		}
		texts[i] = normalizeText(c, prev, next)
	}
	kept := n.Children[:0]
	for i, c := range n.Children {
		if c.Kind == TextNode {
			if texts[i] == "" {
				continue
			}
			c.Text = texts[i]
		} else {
			collapseWhitespace(c)
		}
		kept = append(kept, c)
	}
	n.Children = kept
}

// normalizeText applies the whitespace rules to t, whose siblings as
// parsed are prev and next.
func normalizeText(t, prev, next *Node) string {
	text := t.Text
	if t.Parent.IsPre() {
		return strings.ReplaceAll(text, "\r\n", "\n")
	}
	if isSpace(text) && strings.ContainsAny(text, "\r\n") && !betweenInline(prev, next) {
		return ""
	}
	text = collapse(text)

	if (prev == nil && lineEdge(t.Parent)) || breaksLine(prev) {
		text = strings.TrimPrefix(text, " ")
	}
	if (next == nil && lineEdge(t.Parent)) || breaksLine(next) {
		text = strings.TrimSuffix(text, " ")
	}
	return text
}

func lineEdge(parent *Node) bool {
	return parent.Parent == nil || parent.IsBlock()
}

func breaksLine(n *Node) bool {
	return n != nil && (n.Kind == BreakNode || n.IsBlock())
}

func betweenInline(prev, next *Node) bool {
	return prev != nil && next != nil &&
		prev.IsElement() && next.IsElement() &&
		!prev.IsBlock() && !next.IsBlock()
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}

func isSpace(s string) bool {
	for _, r := range s {
		if !isASCIISpace(r) {
			return false
		}
	}
	return true
}

// collapse folds runs of ASCII whitespace into one space. U+00A0 is not
// ASCII whitespace and is kept as is.
func collapse(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if isASCIISpace(r) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
