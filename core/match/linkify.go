package match

import (
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/pastepipe/core/delta"
	"github.com/gaurav-prasanna/pastepipe/core/normalize"
)

var bareURL = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"]+[^\s<>".,;:!?)\]'}]`)

// Linkify is a text-node transform that turns bare URLs into links. Text
// that is already linked is left alone.
func Linkify() Transform {
	return func(_ *normalize.Node, d delta.Delta, _ State) delta.Delta {
		var out delta.Builder
		for _, op := range d {
			if !op.IsText() || op.Attrs.Has(AttrLink) {
				out.Push(op)
				continue
			}
			linkifyOp(&out, op)
		}
		return out.Delta()
	}
}

func linkifyOp(out *delta.Builder, op delta.Op) {
	text := op.Text
	last := 0
	for _, m := range bareURL.FindAllStringIndex(text, -1) {
		out.Insert(text[last:m[0]], op.Attrs)
		u := text[m[0]:m[1]]
		href := u
		if strings.HasPrefix(strings.ToLower(u), "www.") {
			href = "https://" + u
		}
		attrs := op.Attrs.Clone()
		if attrs == nil {
			attrs = delta.Attrs{}
		}
		attrs[AttrLink] = SanitizeLink(href)
		out.Insert(u, attrs)
		last = m[1]
	}
	out.Insert(text[last:], op.Attrs)
}
