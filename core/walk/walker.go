// Package walk converts a normalized markup tree into a Document Delta.
//
// The walker is depth-first: a node's children are converted and
// concatenated first, then every matcher resolved for the node transforms
// that delta in registry order. Block elements end in a newline that
// carries their block attributes; inline elements overlay attributes on
// the text they contain. Conversion is synchronous and has no side
// effects beyond logging.
package walk

import (
	"fmt"
	"log/slog"

	"github.com/gaurav-prasanna/pastepipe/core/delta"
	"github.com/gaurav-prasanna/pastepipe/core/match"
	"github.com/gaurav-prasanna/pastepipe/core/normalize"
)

// Input is a conversion source. HTML wins over Text when both are set.
type Input struct {
	HTML string
	Text string
}

// Walker converts markup to deltas using a matcher registry.
type Walker struct {
	registry   *match.Registry
	normalizer *normalize.HTMLNormalizer
	logger     *slog.Logger
}

type Option func(*Walker)

// WithLogger sets the logger used to report failing user matchers.
func WithLogger(l *slog.Logger) Option {
	return func(w *Walker) { w.logger = l }
}

// WithRegistry replaces the default registry.
func WithRegistry(r *match.Registry) Option {
	return func(w *Walker) { w.registry = r }
}

// New creates a Walker with the built-in matchers.
func New(opts ...Option) *Walker {
	w := &Walker{normalizer: normalize.New()}
	for _, opt := range opts {
		opt(w)
	}
	if w.registry == nil {
		w.registry = match.NewRegistry()
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

func (w *Walker) Registry() *match.Registry { return w.registry }

// AddMatcher registers a user transform after the built-ins.
func (w *Walker) AddMatcher(sel match.Selector, t match.Transform) error {
	return w.registry.Add(sel, t)
}

// Convert converts HTML when present, otherwise plain text. Both empty
// yields an empty delta.
//
// Converted HTML loses a trailing newline that carries no attributes, so
// the result can be inserted mid-line without splitting it. ConvertHTML
// keeps it.
func (w *Walker) Convert(in Input) delta.Delta {
	if in.HTML == "" {
		return ConvertText(in.Text)
	}
	d := w.ConvertHTML(in.HTML)
	if n := len(d); n > 0 && d[n-1].IsNewline() && len(d[n-1].Attrs) == 0 {
		d = d[:n-1]
	}
	return d
}

// ConvertHTML normalizes raw markup and converts it. Every block it
// produces ends in its newline.
func (w *Walker) ConvertHTML(raw string) delta.Delta {
	return w.ConvertNode(w.normalizer.Normalize(raw))
}

// ConvertNode converts the children of root. The root itself stands for
// the document body and contributes no formatting.
func (w *Walker) ConvertNode(root *normalize.Node) delta.Delta {
	w.registry.Acquire()
	defer w.registry.Release()

	st := match.State{Registry: w.registry}
	return w.children(root, st).Compact()
}

// ConvertText splits plain text into unformatted inserts, one op per line
// segment and per newline.
func ConvertText(text string) delta.Delta {
	return delta.New().Insert(normalizeNewlines(text), nil)
}

func (w *Walker) convert(n *normalize.Node, st match.State) delta.Delta {
	var d delta.Delta
	if n.IsElement() {
		d = w.children(n, st.Enter(n))
	}
	for _, m := range w.registry.Resolve(n) {
		if m.Builtin {
			d = m.Transform(n, d, st)
			continue
		}
		d = w.applyUser(m, n, d, st)
	}
	return d
}

// children concatenates the deltas of n's children. Content that starts a
// block, including a block embed lifted out of an inline run, begins on a
// fresh line: pending inline content gets a plain newline first. A block
// embed already fills its line.
func (w *Walker) children(n *normalize.Node, st match.State) delta.Delta {
	var b delta.Builder
	for _, c := range n.Children {
		cd := w.convert(c, st)
		if !b.Ops().EndsLine(w.registry.IsBlockEmbed) && w.startsBlock(c, cd) {
			b.Insert(delta.Newline, nil)
		}
		b.Concat(cd)
	}
	return b.Delta()
}

func (w *Walker) startsBlock(c *normalize.Node, cd delta.Delta) bool {
	return c.IsBlock() || cd.StartsWithBlockEmbed(w.registry.IsBlockEmbed)
}

// applyUser runs a user transform. A panic is confined to this node: it is
// logged and the delta from before the transform is kept.
func (w *Walker) applyUser(m match.Matcher, n *normalize.Node, d delta.Delta, st match.State) (out delta.Delta) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Warn("matcher failed, skipping it for this node",
				"matcher", m.Name,
				"selector", m.Selector.String(),
				"node", describe(n),
				"panic", fmt.Sprint(r))
			out = d
		}
	}()
	return m.Transform(n, d, st)
}

func describe(n *normalize.Node) string {
	if n.Kind == normalize.TextNode {
		return "#text"
	}
	return "<" + n.Tag + ">"
}

func normalizeNewlines(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\r' {
			if i+1 < len(s) && s[i+1] == '\n' {
				continue
			}
			out = append(out, '\n')
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
