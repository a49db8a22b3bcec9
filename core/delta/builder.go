package delta

import "strings"

// Builder accumulates ops in canonical form. Unlike the Delta methods it
// appends in place, so building a delta op by op stays linear. The zero
// value is ready to use.
type Builder struct {
	ops Delta
}

// NewBuilder starts a builder from a copy of d.
func NewBuilder(d Delta, extra int) *Builder {
	ops := make(Delta, len(d), len(d)+extra)
	copy(ops, d)
	return &Builder{ops: ops}
}

// Push appends op, merging it with the last op when possible.
func (b *Builder) Push(op Op) {
	if op.Len() == 0 {
		return
	}
	if len(op.Attrs) == 0 {
		op.Attrs = nil
	} else {
		op.Attrs = op.Attrs.Clone()
	}
	if op.IsText() && op.Text != Newline && strings.Contains(op.Text, Newline) {
		for _, seg := range splitLines(op.Text) {
			b.push(Op{Kind: KindInsert, Text: seg, Attrs: op.Attrs})
		}
		return
	}
	b.push(op)
}

func (b *Builder) push(op Op) {
	n := len(b.ops)
	if n == 0 {
		b.ops = append(b.ops, op)
		return
	}
	last := b.ops[n-1]
	// Inserts go before a trailing delete.
	if op.Kind == KindInsert && last.Kind == KindDelete {
		b.ops = b.ops[:n-1]
		b.push(op)
		b.ops = append(b.ops, last)
		return
	}
	if merged, ok := merge(last, op); ok {
		b.ops[n-1] = merged
		return
	}
	b.ops = append(b.ops, op)
}

// Insert appends a text insert.
func (b *Builder) Insert(text string, attrs Attrs) {
	if text != "" {
		b.Push(Op{Kind: KindInsert, Text: text, Attrs: attrs})
	}
}

// Concat appends every op of d.
func (b *Builder) Concat(d Delta) {
	for _, op := range d {
		b.Push(op)
	}
}

// Ops is a read-only view of the ops built so far.
func (b *Builder) Ops() Delta {
	return b.ops
}

// Delta returns the built delta and resets the builder.
func (b *Builder) Delta() Delta {
	d := b.ops
	b.ops = nil
	return d
}
