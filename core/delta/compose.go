package delta

import "unicode/utf8"

// Iterator walks a delta op by op, allowing partial consumption.
type Iterator struct {
	ops    Delta
	index  int
	offset int
}

func NewIterator(d Delta) *Iterator {
	return &Iterator{ops: d}
}

func (it *Iterator) HasNext() bool {
	return it.PeekLength() < maxLength
}

const maxLength = int(^uint(0) >> 1)

// PeekLength is the remaining length of the current op, or maxLength past the end.
func (it *Iterator) PeekLength() int {
	if it.index >= len(it.ops) {
		return maxLength
	}
	return it.ops[it.index].Len() - it.offset
}

// PeekKind is the kind of the current op. Past the end it is an infinite retain.
func (it *Iterator) PeekKind() Kind {
	if it.index >= len(it.ops) {
		return KindRetain
	}
	return it.ops[it.index].Kind
}

// Next consumes up to n positions of the current op.
func (it *Iterator) Next(n int) Op {
	if it.index >= len(it.ops) {
		return Op{Kind: KindRetain, Count: n}
	}
	op := it.ops[it.index]
	offset := it.offset
	length := op.Len()
	if n >= length-offset {
		n = length - offset
		it.index++
		it.offset = 0
	} else {
		it.offset += n
	}
	switch {
	case op.Kind == KindDelete:
		return Op{Kind: KindDelete, Count: n}
	case op.Kind == KindRetain:
		return Op{Kind: KindRetain, Count: n, Attrs: op.Attrs}
	case op.Embed != nil:
		return op
	default:
		return Op{Kind: KindInsert, Text: runeSlice(op.Text, offset, n), Attrs: op.Attrs}
	}
}

func runeSlice(s string, offset, n int) string {
	start := 0
	for i := 0; i < offset; i++ {
		_, size := utf8.DecodeRuneInString(s[start:])
		start += size
	}
	end := start
	for i := 0; i < n && end < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return s[start:end]
}

// Compose applies other on top of d following operational-transform
// composition: retains in other keep d's content and overlay attributes
// positionally, deletes remove it, inserts add new content.
func (d Delta) Compose(other Delta) Delta {
	a := NewIterator(d)
	b := NewIterator(other)
	var out Builder
	for a.HasNext() || b.HasNext() {
		switch {
		case b.PeekKind() == KindInsert:
			out.Push(b.Next(maxLength))
		case a.PeekKind() == KindDelete:
			out.Push(a.Next(maxLength))
		default:
			n := min(a.PeekLength(), b.PeekLength())
			x := a.Next(n)
			y := b.Next(n)
			if y.Kind != KindRetain {
				// y is a delete. Deleting an insert cancels out.
				if x.Kind == KindRetain {
					out.Push(y)
				}
				continue
			}
			var op Op
			if x.Kind == KindRetain {
				op = Op{Kind: KindRetain, Count: n, Attrs: ComposeAttrs(x.Attrs, y.Attrs, true)}
			} else {
				op = x
				op.Attrs = ComposeAttrs(x.Attrs, y.Attrs, false)
			}
			out.Push(op)
		}
	}
	return out.Delta().chop()
}

// chop drops a trailing attribute-less retain.
func (d Delta) chop() Delta {
	if n := len(d); n > 0 && d[n-1].Kind == KindRetain && len(d[n-1].Attrs) == 0 {
		return d[:n-1]
	}
	return d
}

// Format returns a delta that retains length positions starting at index and
// overlays attrs on them.
func Format(index, length int, attrs Attrs) Delta {
	return Delta{}.Retain(index, nil).Retain(length, attrs)
}

// TransformPosition maps a document position through d. Inserts at or
// before index push it right; deletes before it pull it left.
func (d Delta) TransformPosition(index int) int {
	it := NewIterator(d)
	offset := 0
	for it.HasNext() && offset <= index {
		length := it.PeekLength()
		kind := it.PeekKind()
		it.Next(maxLength)
		switch kind {
		case KindDelete:
			index -= min(length, index-offset)
			continue
		case KindInsert:
			index += length
		}
		offset += length
	}
	return index
}
