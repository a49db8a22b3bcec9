package match

import (
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/pastepipe/core/delta"
	"github.com/gaurav-prasanna/pastepipe/core/normalize"
)

// builtinMatchers is the fixed built-in precedence list. Structural
// matchers for specific tags come before the generic format matcher.
func builtinMatchers() []Matcher {
	return []Matcher{
		{Name: "text", Selector: TextNodes(), Transform: matchText, Builtin: true},
		{Name: "newline", Selector: Elements(), Transform: matchNewline, Builtin: true},
		{Name: "break", Selector: Tags("br"), Transform: matchBreak, Builtin: true},
		{Name: "image", Selector: Tags("img"), Transform: matchImage, Builtin: true},
		{Name: "video", Selector: Tags("iframe", "video"), Transform: matchVideo, Builtin: true},
		{Name: "list-item", Selector: Tags("li"), Transform: matchListItem, Builtin: true},
		{Name: "code-block", Selector: Tags("pre"), Transform: matchCodeBlock, Builtin: true},
		{Name: "table-cell", Selector: Tags("td", "th"), Transform: matchTableCell, Builtin: true},
		{Name: "table", Selector: Tags("table"), Transform: matchTable, Builtin: true},
		{Name: "formats", Selector: Elements(), Transform: matchFormats, Builtin: true},
	}
}

func matchText(n *normalize.Node, d delta.Delta, _ State) delta.Delta {
	return d.Insert(n.Text, nil)
}

// matchNewline terminates a line block that does not already end in a
// newline. Empty blocks still get their line.
func matchNewline(n *normalize.Node, d delta.Delta, _ State) delta.Delta {
	if !n.IsLine() || n.Is("iframe", "video") || d.EndsWith(delta.Newline) {
		return d
	}
	return d.Insert(delta.Newline, nil)
}

func matchBreak(_ *normalize.Node, d delta.Delta, _ State) delta.Delta {
	return d.Insert(delta.Newline, nil)
}

func matchImage(n *normalize.Node, d delta.Delta, _ State) delta.Delta {
	src, ok := SanitizeImage(n.Attr("src"))
	if !ok {
		return d
	}
	attrs := delta.Attrs{}
	if w := dimension(n, "width"); w != "" {
		attrs[AttrWidth] = w
	}
	if h := dimension(n, "height"); h != "" {
		attrs[AttrHeight] = h
	}
	if alt := n.Attr("alt"); alt != "" {
		attrs[AttrAlt] = alt
	}
	return d.InsertEmbed(EmbedImage, src, attrs)
}

// matchVideo replaces the element's fallback content with a video embed.
func matchVideo(n *normalize.Node, d delta.Delta, _ State) delta.Delta {
	raw := n.Attr("src")
	if raw == "" {
		for _, c := range n.Children {
			if c.Is("source") && c.Attr("src") != "" {
				raw = c.Attr("src")
				break
			}
		}
	}
	src, ok := SanitizeMedia(raw)
	if !ok {
		return d
	}
	return delta.Delta{}.InsertEmbed(EmbedVideo, src, nil)
}

// matchListItem sets list and indent on the item's own lines. Lines that
// already carry a list attribute belong to a nested list and keep theirs.
func matchListItem(n *normalize.Node, d delta.Delta, s State) delta.Delta {
	kind := ListBullet
	if frame, ok := s.List(); ok {
		kind = frame.Kind
	}
	kind = itemKind(n, kind)

	attrs := delta.Attrs{AttrList: kind}
	indent := s.Depth() - 1
	if v, ok := classInt(n, "ql-indent-"); ok {
		indent = v
	}
	if indent > 0 {
		attrs[AttrIndent] = indent
	}
	return ApplyBlock(d, attrs, nil, func(op delta.Op) bool {
		return !op.Attrs.Has(AttrList)
	})
}

// itemKind honors per-item list markers: data-list, data-checked and a
// leading checkbox input.
func itemKind(n *normalize.Node, inherited string) string {
	switch v := n.Attr("data-list"); v {
	case ListOrdered, ListBullet, ListChecked, ListUnchecked:
		return v
	}
	switch n.Attr("data-checked") {
	case "true":
		return ListChecked
	case "false":
		return ListUnchecked
	}
	var box *normalize.Node
	n.Walk(func(c *normalize.Node) bool {
		if c != n && c.Is("ol", "ul") {
			return false
		}
		if c.Is("input") && strings.EqualFold(c.Attr("type"), "checkbox") {
			box = c
			return false
		}
		return true
	})
	if box != nil {
		if box.HasAttr("checked") {
			return ListChecked
		}
		return ListUnchecked
	}
	return inherited
}

func matchCodeBlock(n *normalize.Node, d delta.Delta, _ State) delta.Delta {
	var lang any = true
	if l := n.Attr("data-language"); l != "" {
		lang = l
	}
	return ApplyBlock(d, delta.Attrs{AttrCodeBlock: lang}, nil, nil)
}

func matchTableCell(n *normalize.Node, d delta.Delta, _ State) delta.Delta {
	row := n.Closest("tr")
	table := n.Closest("table")
	if row == nil || table == nil {
		return d
	}
	id := rowIndex(table, row)
	attrs := delta.Attrs{}
	if n.Is("th") || (row.Parent != nil && row.Parent.Is("thead")) {
		attrs[AttrTableHeaderCell] = id
	} else {
		attrs[AttrTable] = id
	}
	if w := dimension(n, "width"); w != "" {
		attrs[AttrCellWidth] = w
	}
	if h := dimension(n, "height"); h != "" {
		attrs[AttrCellHeight] = h
	}
	return ApplyBlock(d, attrs, nil, nil)
}

func matchTable(n *normalize.Node, d delta.Delta, _ State) delta.Delta {
	attrs := delta.Attrs{}
	if w := dimension(n, "width"); w != "" {
		attrs[AttrTableWidth] = w
	}
	if h := dimension(n, "height"); h != "" {
		attrs[AttrTableHeight] = h
	}
	return ApplyBlock(d, attrs, nil, nil)
}

// rowIndex is the 1-based position of row among table's own rows.
func rowIndex(table, row *normalize.Node) int {
	idx := 0
	found := false
	table.Walk(func(c *normalize.Node) bool {
		if found {
			return false
		}
		if c.Is("tr") && c.Closest("table") == table {
			idx++
			if c == row {
				found = true
				return false
			}
		}
		return true
	})
	return idx
}

// dimension reads a size from inline style, falling back to the attribute.
func dimension(n *normalize.Node, prop string) string {
	if v := strings.TrimSpace(n.Style.Raw(prop)); v != "" {
		return v
	}
	return strings.TrimSpace(n.Attr(prop))
}

// classValue returns the suffix of the first class starting with prefix.
func classValue(n *normalize.Node, prefix string) (string, bool) {
	for _, c := range n.Classes() {
		if v, ok := strings.CutPrefix(c, prefix); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func classInt(n *normalize.Node, prefix string) (int, bool) {
	v, ok := classValue(n, prefix)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}
