// Package export converts a Document Delta back into semantic HTML and plain
// text, the inverse of the walk package for the attributes it knows.
//
// Lines are the unit of export. A line's newline attributes pick its block
// element (p, h1-h6, blockquote, li, pre, td/th) and consecutive list, code
// and table lines are grouped into one container. Inline attributes become
// nested inline elements around each text run.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gaurav-prasanna/pastepipe/core/delta"
	"github.com/gaurav-prasanna/pastepipe/core/match"
)

// HTMLExporter renders deltas as HTML fragments.
type HTMLExporter struct{}

// New creates an HTMLExporter.
func New() *HTMLExporter {
	return &HTMLExporter{}
}

// HTML renders d as an HTML fragment.
func (e *HTMLExporter) HTML(d delta.Delta) (string, error) {
	var b strings.Builder
	for _, n := range e.Nodes(d) {
		if err := html.Render(&b, n); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return b.String(), nil
}

// Text returns the plain text of d. Embeds have no text form and are
// dropped.
func (e *HTMLExporter) Text(d delta.Delta) string {
	return d.Text()
}

// Nodes builds the top-level nodes of the HTML fragment for d.
func (e *HTMLExporter) Nodes(d delta.Delta) []*html.Node {
	b := &builder{}
	for _, line := range d.Lines() {
		b.line(line)
	}
	b.closeAll()
	return b.out
}

type listLevel struct {
	indent int
	tag    string
	list   *html.Node
	item   *html.Node
}

type builder struct {
	out []*html.Node

	lists []*listLevel

	code      *html.Node
	codeLines []string

	table *html.Node
	thead *html.Node
	tbody *html.Node
	row   *html.Node
	rowID string
}

func (b *builder) line(l delta.Line) {
	a := l.Attrs
	switch {
	case l.Open:
		b.closeAll()
		b.out = append(b.out, openLine(l.Content)...)
	case a.Has(match.AttrList):
		b.closeCode()
		b.closeTable()
		b.listLine(l)
	case a.Has(match.AttrCodeBlock):
		b.closeLists()
		b.closeTable()
		b.codeLine(l)
	case a.Has(match.AttrTable) || a.Has(match.AttrTableHeaderCell):
		b.closeLists()
		b.closeCode()
		b.tableLine(l)
	default:
		b.closeAll()
		b.out = append(b.out, blockLine(l))
	}
}

func (b *builder) closeAll() {
	b.closeLists()
	b.closeCode()
	b.closeTable()
}

func (b *builder) closeLists() { b.lists = nil }

func (b *builder) closeCode() {
	if b.code == nil {
		return
	}
	if text := strings.Join(b.codeLines, "\n"); text != "" {
		b.code.AppendChild(textNode(text))
	}
	b.code, b.codeLines = nil, nil
}

func (b *builder) closeTable() {
	b.table, b.thead, b.tbody, b.row, b.rowID = nil, nil, nil, nil, ""
}

// blockLine renders a line outside any container: a paragraph, heading or
// blockquote.
func blockLine(l delta.Line) *html.Node {
	tag := "p"
	if lvl, ok := intAttr(l.Attrs[match.AttrHeader]); ok && lvl >= 1 && lvl <= 6 {
		tag = "h" + strconv.Itoa(lvl)
	} else if truthy(l.Attrs[match.AttrBlockquote]) {
		tag = "blockquote"
	}
	n := element(tag)
	if indent, ok := intAttr(l.Attrs[match.AttrIndent]); ok && indent > 0 {
		addClass(n, "ql-indent-"+strconv.Itoa(indent))
	}
	blockClasses(n, l.Attrs)
	appendContent(n, l.Content)
	return n
}

func blockClasses(n *html.Node, a delta.Attrs) {
	if v, ok := a[match.AttrAlign].(string); ok && v != "" {
		addClass(n, "ql-align-"+v)
	}
	if v, ok := a[match.AttrDirection].(string); ok && v != "" {
		addClass(n, "ql-direction-"+v)
	}
}

// listLine places a list line at its indent, nesting a new list inside the
// previous item when the indent grows.
func (b *builder) listLine(l delta.Line) {
	kind, _ := l.Attrs[match.AttrList].(string)
	indent, _ := intAttr(l.Attrs[match.AttrIndent])
	if indent < 0 {
		indent = 0
	}
	tag := "ul"
	if kind == match.ListOrdered {
		tag = "ol"
	}

	for len(b.lists) > 0 && b.top().indent > indent {
		b.lists = b.lists[:len(b.lists)-1]
	}
	if len(b.lists) > 0 && b.top().indent == indent && b.top().tag != tag {
		b.lists = b.lists[:len(b.lists)-1]
	}
	if len(b.lists) == 0 || b.top().indent < indent {
		list := element(tag)
		if len(b.lists) == 0 || b.top().item == nil {
			b.out = append(b.out, list)
		} else {
			b.top().item.AppendChild(list)
		}
		b.lists = append(b.lists, &listLevel{indent: indent, tag: tag, list: list})
	}

	li := element("li")
	if kind == match.ListChecked || kind == match.ListUnchecked {
		li.Attr = append(li.Attr, html.Attribute{Key: "data-list", Val: kind})
	}
	// Nesting depth alone would lose a jump of more than one level.
	if indent != len(b.lists)-1 {
		addClass(li, "ql-indent-"+strconv.Itoa(indent))
	}
	blockClasses(li, l.Attrs)
	appendContent(li, l.Content)
	top := b.top()
	top.list.AppendChild(li)
	top.item = li
}

func (b *builder) top() *listLevel { return b.lists[len(b.lists)-1] }

// codeLine adds a line to the current pre block. Code lines are plain text.
func (b *builder) codeLine(l delta.Line) {
	if b.code == nil {
		b.code = element("pre")
		if lang, ok := l.Attrs[match.AttrCodeBlock].(string); ok && lang != "" && lang != "plain" {
			b.code.Attr = append(b.code.Attr, html.Attribute{Key: "data-language", Val: lang})
		}
		b.out = append(b.out, b.code)
	}
	b.codeLines = append(b.codeLines, l.Content.Text())
}

// tableLine adds a cell. Lines sharing a row index share a tr; header rows
// go to thead. The index is an int when built and a float64 when decoded
// from JSON, so rows compare by its string form.
func (b *builder) tableLine(l delta.Line) {
	a := l.Attrs
	header := a.Has(match.AttrTableHeaderCell)
	id := attrString(a[match.AttrTable])
	if header {
		id = "thead:" + attrString(a[match.AttrTableHeaderCell])
	}

	if b.table == nil {
		b.table = element("table")
		setDimension(b.table, "width", a[match.AttrTableWidth])
		setDimension(b.table, "height", a[match.AttrTableHeight])
		b.out = append(b.out, b.table)
	}
	if b.row == nil || id != b.rowID {
		b.row = element("tr")
		b.rowID = id
		b.section(header).AppendChild(b.row)
	}

	tag := "td"
	if header {
		tag = "th"
	}
	cell := element(tag)
	setDimension(cell, "width", a[match.AttrCellWidth])
	setDimension(cell, "height", a[match.AttrCellHeight])
	appendContent(cell, l.Content)
	b.row.AppendChild(cell)
}

func (b *builder) section(header bool) *html.Node {
	if header {
		if b.thead == nil {
			b.thead = element("thead")
			b.table.AppendChild(b.thead)
		}
		return b.thead
	}
	if b.tbody == nil {
		b.tbody = element("tbody")
		b.table.AppendChild(b.tbody)
	}
	return b.tbody
}

// appendContent appends the inline nodes of content to n, or a br that
// keeps an empty line open.
func appendContent(n *html.Node, content delta.Delta) {
	nodes := inlineNodes(content)
	if len(nodes) == 0 {
		n.AppendChild(element("br"))
		return
	}
	keepSpaces(n, content)
	for _, c := range nodes {
		n.AppendChild(c)
	}
}

// openLine renders a line with no newline as bare inline nodes, wrapped in
// a span only when its spaces need keeping.
func openLine(content delta.Delta) []*html.Node {
	nodes := inlineNodes(content)
	if !collapsible(content.Text()) {
		return nodes
	}
	span := element("span")
	keepSpaces(span, content)
	for _, c := range nodes {
		span.AppendChild(c)
	}
	return []*html.Node{span}
}

// keepSpaces marks n pre-wrap when parsing its text back would collapse
// or trim spaces.
func keepSpaces(n *html.Node, content delta.Delta) {
	if collapsible(content.Text()) {
		n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: "white-space: pre-wrap"})
	}
}

func collapsible(text string) bool {
	return strings.HasPrefix(text, " ") || strings.HasSuffix(text, " ") ||
		strings.Contains(text, "  ") || strings.ContainsAny(text, "\t\r\f")
}

func inlineNodes(content delta.Delta) []*html.Node {
	var out []*html.Node
	for _, op := range content {
		switch {
		case op.IsEmbed():
			if n := embedNode(op); n != nil {
				out = append(out, wrapInline(n, op.Attrs))
			}
		case op.IsText():
			out = append(out, wrapInline(textNode(op.Text), op.Attrs))
		}
	}
	return out
}

func embedNode(op delta.Op) *html.Node {
	switch op.Embed.Key {
	case match.EmbedImage:
		src, ok := match.SanitizeImage(op.Embed.Value)
		if !ok {
			return nil
		}
		img := element("img", html.Attribute{Key: "src", Val: src})
		setDimension(img, "width", op.Attrs[match.AttrWidth])
		setDimension(img, "height", op.Attrs[match.AttrHeight])
		if alt, ok := op.Attrs[match.AttrAlt].(string); ok && alt != "" {
			img.Attr = append(img.Attr, html.Attribute{Key: "alt", Val: alt})
		}
		return img
	case match.EmbedVideo:
		src, ok := match.SanitizeMedia(op.Embed.Value)
		if !ok {
			return nil
		}
		return element("iframe",
			html.Attribute{Key: "class", Val: "ql-video"},
			html.Attribute{Key: "frameborder", Val: "0"},
			html.Attribute{Key: "allowfullscreen", Val: "true"},
			html.Attribute{Key: "src", Val: src})
	}
	return nil
}

// wrapInline wraps n in one element per inline attribute. The link is the
// outermost element.
func wrapInline(n *html.Node, a delta.Attrs) *html.Node {
	if len(a) == 0 {
		return n
	}
	var style []string
	if v, ok := a[match.AttrColor].(string); ok && v != "" {
		style = append(style, "color: "+v)
	}
	if v, ok := a[match.AttrBackground].(string); ok && v != "" {
		style = append(style, "background-color: "+v)
	}
	var class []string
	if v, ok := a[match.AttrFont].(string); ok && v != "" {
		class = append(class, "ql-font-"+v)
	}
	if v, ok := a[match.AttrSize].(string); ok && v != "" {
		class = append(class, "ql-size-"+v)
	}
	if len(style) > 0 || len(class) > 0 {
		span := element("span")
		if len(class) > 0 {
			span.Attr = append(span.Attr, html.Attribute{Key: "class", Val: strings.Join(class, " ")})
		}
		if len(style) > 0 {
			span.Attr = append(span.Attr, html.Attribute{Key: "style", Val: strings.Join(style, "; ")})
		}
		n = wrap(span, n)
	}

	switch a[match.AttrScript] {
	case "sub":
		n = wrap(element("sub"), n)
	case "super":
		n = wrap(element("sup"), n)
	}
	for _, f := range []struct{ key, tag string }{
		{match.AttrCode, "code"},
		{match.AttrStrike, "s"},
		{match.AttrUnderline, "u"},
		{match.AttrItalic, "em"},
		{match.AttrBold, "strong"},
	} {
		if truthy(a[f.key]) {
			n = wrap(element(f.tag), n)
		}
	}
	if href, ok := a[match.AttrLink].(string); ok && href != "" {
		n = wrap(element("a", html.Attribute{Key: "href", Val: match.SanitizeLink(href)}), n)
	}
	return n
}

func wrap(parent, child *html.Node) *html.Node {
	parent.AppendChild(child)
	return parent
}

func element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func addClass(n *html.Node, class string) {
	for i, a := range n.Attr {
		if a.Key == "class" {
			n.Attr[i].Val += " " + class
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
}

func setDimension(n *html.Node, key string, v any) {
	if s := attrString(v); s != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: key, Val: s})
	}
}

func attrString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}

// intAttr reads an integer attribute. Deltas decoded from JSON carry
// numbers as float64.
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

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != "" && x != "false"
	case nil:
		return false
	}
	return true
}
