package normalize

import (
	"strings"

	"golang.org/x/net/html"
)

// Kind tags a Node.
type Kind int

const (
	TextNode Kind = iota + 1
	ElementNode
	// BreakNode is the explicit marker a <br> is normalized into.
	BreakNode
)

func (k Kind) String() string {
	switch k {
	case TextNode:
		return "text"
	case ElementNode:
		return "element"
	case BreakNode:
		return "break"
	default:
		return "unknown"
	}
}

// Node is a sanitized, whitespace-normalized markup node.
type Node struct {
	Kind     Kind
	Tag      string            // lower-case tag name; "br" for BreakNode
	Attrs    map[string]string // never contains on* handlers
	Style    Style
	Text     string // text nodes only, already whitespace-processed
	Children []*Node
	Parent   *Node

	// Source is the parsed node this one was built from. CSS selectors
	// match against it.
	Source *html.Node
}

// IsElement reports whether n is an element (line breaks included).
func (n *Node) IsElement() bool {
	return n.Kind == ElementNode || n.Kind == BreakNode
}

// Is reports whether n is an element with one of the given tags.
func (n *Node) Is(tags ...string) bool {
	if !n.IsElement() {
		return false
	}
	for _, t := range tags {
		if n.Tag == t {
			return true
		}
	}
	return false
}

func (n *Node) Attr(name string) string {
	return n.Attrs[name]
}

func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attrs[name]
	return ok
}

func (n *Node) Classes() []string {
	return strings.Fields(n.Attrs["class"])
}

func (n *Node) HasClass(class string) bool {
	for _, c := range n.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

// Closest returns the nearest ancestor (excluding n) with one of tags.
func (n *Node) Closest(tags ...string) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Is(tags...) {
			return p
		}
	}
	return nil
}

// TextContent concatenates the text of n's subtree.
func (n *Node) TextContent() string {
	if n.Kind == TextNode {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// Walk visits n and its descendants depth-first until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// blockTags are elements that occupy their own line(s).
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"canvas": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "iframe": true, "li": true,
	"main": true, "nav": true, "ol": true, "output": true, "p": true,
	"pre": true, "section": true, "table": true, "tbody": true, "td": true,
	"tfoot": true, "th": true, "thead": true, "tr": true, "ul": true,
	"video": true,
}

// containerTags are blocks whose lines come only from their children.
var containerTags = map[string]bool{
	"ol": true, "ul": true, "dl": true, "table": true,
	"thead": true, "tbody": true, "tfoot": true, "tr": true,
}

// IsBlock reports whether n is a block-level element.
func (n *Node) IsBlock() bool {
	return n.Kind == ElementNode && blockTags[n.Tag]
}

// IsLine reports whether n is a block that terminates its own line, i.e. a
// block that is not a pure structural container.
func (n *Node) IsLine() bool {
	return n.IsBlock() && !containerTags[n.Tag]
}

// IsPre reports whether whitespace inside n is preserved.
func (n *Node) IsPre() bool {
	for p := n; p != nil; p = p.Parent {
		if p.Is("pre") {
			return true
		}
		switch p.Style.Get("white-space") {
		case "pre", "pre-wrap", "break-spaces":
			return true
		}
	}
	return false
}
