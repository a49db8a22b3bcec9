package match

import (
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/pastepipe/core/delta"
	"github.com/gaurav-prasanna/pastepipe/core/normalize"
)

// matchFormats applies the element's own formatting: tag semantics first,
// then Quill-style classes, then inline style. A later source replaces an
// earlier one for the same key, so `<strong style="font-weight: normal">`
// is not bold.
func matchFormats(n *normalize.Node, d delta.Delta, s State) delta.Delta {
	attrs := Formats(n)
	if len(attrs) == 0 {
		return d
	}
	return s.Registry.ApplyFormats(d, attrs)
}

// Formats computes the attributes an element contributes. A nil value is
// an explicit unset that shields the subtree from an ancestor's value.
func Formats(n *normalize.Node) delta.Attrs {
	attrs := delta.Attrs{}
	TagFormats(n, attrs)
	ClassFormats(n, attrs)
	StyleFormats(n, attrs)
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

// TagFormats maps tag semantics to attributes.
func TagFormats(n *normalize.Node, attrs delta.Attrs) {
	switch n.Tag {
	case "b", "strong":
		attrs[AttrBold] = true
	case "i", "em":
		attrs[AttrItalic] = true
	case "u", "ins":
		attrs[AttrUnderline] = true
	case "s", "strike", "del":
		attrs[AttrStrike] = true
	case "code":
		if n.Closest("pre") == nil {
			attrs[AttrCode] = true
		}
	case "sub":
		attrs[AttrScript] = "sub"
	case "sup":
		attrs[AttrScript] = "super"
	case "a":
		if href, ok := n.Attrs["href"]; ok {
			attrs[AttrLink] = SanitizeLink(href)
		}
	case "h1", "h2", "h3", "h4", "h5", "h6":
		attrs[AttrHeader] = int(n.Tag[1] - '0')
	case "blockquote":
		attrs[AttrBlockquote] = true
	case "font":
		if c := n.Attr("color"); c != "" {
			attrs[AttrColor] = c
		}
	}
}

// ClassFormats reads the class names an editor export leaves behind.
func ClassFormats(n *normalize.Node, attrs delta.Attrs) {
	if v, ok := classInt(n, "ql-indent-"); ok && v > 0 {
		attrs[AttrIndent] = v
	}
	if v, ok := classValue(n, "ql-align-"); ok {
		attrs[AttrAlign] = v
	}
	if v, ok := classValue(n, "ql-direction-"); ok {
		attrs[AttrDirection] = v
	}
	if v, ok := classValue(n, "ql-size-"); ok {
		attrs[AttrSize] = v
	}
	if v, ok := classValue(n, "ql-font-"); ok {
		attrs[AttrFont] = v
	}
}

var ignoredColors = map[string]bool{
	"inherit": true, "initial": true, "unset": true,
	"currentcolor": true, "transparent": true,
}

// StyleFormats translates inline CSS declarations.
func StyleFormats(n *normalize.Node, attrs delta.Attrs) {
	st := n.Style
	if len(st) == 0 {
		return
	}
	if bold, ok := fontWeight(st.Get("font-weight")); ok {
		setOrUnset(attrs, AttrBold, bold)
	}
	switch st.Get("font-style") {
	case "italic", "oblique":
		attrs[AttrItalic] = true
	case "normal":
		attrs[AttrItalic] = nil
	}
	for _, prop := range []string{"text-decoration", "text-decoration-line"} {
		v := st.Get(prop)
		if v == "" {
			continue
		}
		if v == "none" {
			attrs[AttrUnderline] = nil
			attrs[AttrStrike] = nil
			continue
		}
		for _, f := range strings.Fields(v) {
			switch f {
			case "underline":
				attrs[AttrUnderline] = true
			case "line-through":
				attrs[AttrStrike] = true
			}
		}
	}
	if c := strings.TrimSpace(st.Raw("color")); c != "" && !ignoredColors[strings.ToLower(c)] {
		attrs[AttrColor] = c
	}
	if c := strings.TrimSpace(st.Raw("background-color")); c != "" && !ignoredColors[strings.ToLower(c)] {
		attrs[AttrBackground] = c
	}
	if st.Get("direction") == "rtl" {
		attrs[AttrDirection] = "rtl"
	}
	switch v := st.Get("text-align"); v {
	case "center", "right", "justify":
		attrs[AttrAlign] = v
	}
	switch st.Get("vertical-align") {
	case "sub":
		attrs[AttrScript] = "sub"
	case "super":
		attrs[AttrScript] = "super"
	}
}

// fontWeight reports whether a font-weight value means bold. ok is false
// for values that say nothing.
func fontWeight(v string) (bold, ok bool) {
	switch v {
	case "":
		return false, false
	case "bold", "bolder":
		return true, true
	case "normal", "lighter":
		return false, true
	}
	w, err := strconv.Atoi(v)
	if err != nil {
		return false, false
	}
	return w >= 600, true
}

func setOrUnset(attrs delta.Attrs, key string, on bool) {
	if on {
		attrs[key] = true
		return
	}
	attrs[key] = nil
}
