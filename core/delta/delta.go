// Package delta implements the Document Delta: an ordered list of insert,
// retain and delete operations, each carrying a map of formatting attributes.
//
// Deltas are values. Every Delta method returns a new Delta and leaves the
// receiver's backing ops untouched, so a Delta can be shared freely between
// matchers. A Builder appends in place for loops that grow one delta.
//
// Canonical form: every "\n" insert is an op of its own, and adjacent text
// inserts with equal attributes are merged.
package delta

import (
	"reflect"
	"strings"
	"unicode/utf8"
)

type Kind string

const (
	KindInsert Kind = "insert"
	KindRetain Kind = "retain"
	KindDelete Kind = "delete"
)

// Newline is the line terminator. Block attributes ride on it.
const Newline = "\n"

// Attrs is the formatting attached to an op. A nil value means "unset".
type Attrs map[string]any

// Embed is an opaque non-text insert, e.g. {image: "https://..."}.
type Embed struct {
	Key   string
	Value string
}

type Op struct {
	Kind  Kind
	Count int    // retain/delete length
	Text  string // insert text
	Embed *Embed // insert embed, exclusive with Text
	Attrs Attrs
}

// Delta is an ordered sequence of operations.
type Delta []Op

// Len is the op length in document positions: runes for text, 1 for an embed.
func (o Op) Len() int {
	switch o.Kind {
	case KindInsert:
		if o.Embed != nil {
			return 1
		}
		return utf8.RuneCountInString(o.Text)
	default:
		return o.Count
	}
}

// IsNewline reports whether the op is a bare "\n" insert.
func (o Op) IsNewline() bool {
	return o.Kind == KindInsert && o.Embed == nil && o.Text == Newline
}

// IsText reports whether the op inserts text (newlines included).
func (o Op) IsText() bool {
	return o.Kind == KindInsert && o.Embed == nil
}

// IsEmbed reports whether the op inserts an embed.
func (o Op) IsEmbed() bool {
	return o.Kind == KindInsert && o.Embed != nil
}

// New builds a Delta from ops, normalizing them into canonical form.
func New(ops ...Op) Delta {
	var b Builder
	b.Concat(ops)
	return b.Delta()
}

// Insert appends a text insert. Text containing newlines is split so that
// every newline becomes its own op.
func (d Delta) Insert(text string, attrs Attrs) Delta {
	if text == "" {
		return d
	}
	return d.Push(Op{Kind: KindInsert, Text: text, Attrs: attrs})
}

// InsertEmbed appends an embed insert.
func (d Delta) InsertEmbed(key, value string, attrs Attrs) Delta {
	return d.Push(Op{Kind: KindInsert, Embed: &Embed{Key: key, Value: value}, Attrs: attrs})
}

func (d Delta) Retain(n int, attrs Attrs) Delta {
	if n <= 0 {
		return d
	}
	return d.Push(Op{Kind: KindRetain, Count: n, Attrs: attrs})
}

func (d Delta) Delete(n int) Delta {
	if n <= 0 {
		return d
	}
	return d.Push(Op{Kind: KindDelete, Count: n})
}

// Push appends op, merging it with the last op when possible. The
// receiver is copied; use a Builder to append many ops.
func (d Delta) Push(op Op) Delta {
	if op.Len() == 0 {
		return d
	}
	b := NewBuilder(d, 1)
	b.Push(op)
	return b.ops
}

func merge(last, op Op) (Op, bool) {
	if last.Kind != op.Kind || !last.Attrs.Equal(op.Attrs) {
		return Op{}, false
	}
	switch op.Kind {
	case KindDelete, KindRetain:
		last.Count += op.Count
		return last, true
	case KindInsert:
		if last.IsText() && op.IsText() && last.Text != Newline && op.Text != Newline {
			last.Text += op.Text
			return last, true
		}
	}
	return Op{}, false
}

func splitLines(s string) []string {
	var segs []string
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			if s != "" {
				segs = append(segs, s)
			}
			return segs
		}
		if i > 0 {
			segs = append(segs, s[:i])
		}
		segs = append(segs, Newline)
		s = s[i+1:]
	}
}

// Concat returns d followed by other.
func (d Delta) Concat(other Delta) Delta {
	b := NewBuilder(d, len(other))
	b.Concat(other)
	return b.ops
}

// Length is the sum of op lengths.
func (d Delta) Length() int {
	n := 0
	for _, op := range d {
		n += op.Len()
	}
	return n
}

// Text returns the concatenated text inserts. Embeds are skipped.
func (d Delta) Text() string {
	var b strings.Builder
	for _, op := range d {
		if op.IsText() {
			b.WriteString(op.Text)
		}
	}
	return b.String()
}

// EndsWith reports whether the trailing text inserts end with suffix.
// Embeds stop the scan.
func (d Delta) EndsWith(suffix string) bool {
	var tail string
	for i := len(d) - 1; i >= 0 && len(tail) < len(suffix); i-- {
		op := d[i]
		if !op.IsText() {
			break
		}
		tail = op.Text + tail
	}
	return strings.HasSuffix(tail, suffix)
}

// EndsLine reports whether content appended to d starts a fresh line:
// d is empty, ends in a newline, or ends in an embed that isBlock says
// fills a line of its own.
func (d Delta) EndsLine(isBlock func(key string) bool) bool {
	if len(d) == 0 {
		return true
	}
	last := d[len(d)-1]
	if last.IsEmbed() {
		return isBlock(last.Embed.Key)
	}
	return last.IsText() && strings.HasSuffix(last.Text, Newline)
}

// StartsWithBlockEmbed reports whether the first op is an embed whose key
// satisfies isBlock.
func (d Delta) StartsWithBlockEmbed(isBlock func(key string) bool) bool {
	return len(d) > 0 && d[0].IsEmbed() && isBlock(d[0].Embed.Key)
}

// Slice returns the inserts between document positions start and end.
// A negative end means the end of the delta.
func (d Delta) Slice(start, end int) Delta {
	if end < 0 {
		end = d.Length()
	}
	var out Builder
	it := NewIterator(d)
	pos := 0
	for pos < end && it.HasNext() {
		if pos < start {
			op := it.Next(start - pos)
			pos += op.Len()
			continue
		}
		op := it.Next(end - pos)
		out.Push(op)
		pos += op.Len()
	}
	return out.Delta()
}

// Line is one document line: its content and the attributes of the newline
// that ends it. A trailing line without a newline has nil Attrs and Open set.
type Line struct {
	Content Delta
	Attrs   Attrs
	Open    bool
}

// Lines splits an insert-only delta into lines.
func (d Delta) Lines() []Line {
	var (
		lines []Line
		cur   Builder
	)
	for _, op := range d {
		if op.Kind != KindInsert {
			continue
		}
		if op.IsNewline() {
			lines = append(lines, Line{Content: cur.Delta(), Attrs: op.Attrs})
			continue
		}
		cur.Push(op)
	}
	if content := cur.Delta(); len(content) > 0 {
		lines = append(lines, Line{Content: content, Open: true})
	}
	return lines
}

// Map rebuilds the delta with fn applied to each op.
func (d Delta) Map(fn func(Op) Op) Delta {
	if len(d) == 0 {
		return nil
	}
	b := NewBuilder(nil, len(d))
	for _, op := range d {
		b.Push(fn(op))
	}
	if len(b.ops) == 0 {
		return nil
	}
	return b.ops
}

// Clone returns a deep-enough copy: ops and attribute maps are copied.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func (a Attrs) Equal(b Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !reflect.DeepEqual(v, w) {
			return false
		}
	}
	return true
}

// Has reports whether key is present, even with a nil value.
func (a Attrs) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Compact drops keys whose value is nil.
func (a Attrs) Compact() Attrs {
	var out Attrs
	for k, v := range a {
		if v == nil {
			continue
		}
		if out == nil {
			out = make(Attrs, len(a))
		}
		out[k] = v
	}
	return out
}

// ComposeAttrs overlays b onto a. Nil values in b unset keys unless keepNull.
func ComposeAttrs(a, b Attrs, keepNull bool) Attrs {
	out := make(Attrs, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	if !keepNull {
		out = out.Compact()
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Compact removes nil-valued attributes from every op.
func (d Delta) Compact() Delta {
	return d.Map(func(op Op) Op {
		op.Attrs = op.Attrs.Compact()
		return op
	})
}
