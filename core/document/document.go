// Package document holds an in-memory rich-text document: its contents as a
// Delta, the current selection, and listeners notified when either changes.
//
// Changes made with SourceSilent update state without notifying anyone.
package document

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gaurav-prasanna/pastepipe/core/delta"
)

// Source tags who made a change.
type Source string

const (
	SourceUser   Source = "user"
	SourceAPI    Source = "api"
	SourceSilent Source = "silent"
)

var ErrInvalidRange = errors.New("document: invalid range")

// Range is a selection: a caret when Length is 0.
type Range struct {
	Index  int
	Length int
}

// TextChange describes an applied content change.
type TextChange struct {
	Delta    delta.Delta
	Old      delta.Delta
	Source   Source
	Revision uint64
}

// SelectionChange describes a selection move. A nil range means the
// document has no selection.
type SelectionChange struct {
	Range  *Range
	Old    *Range
	Source Source
}

// Document is safe for concurrent use. Listeners run synchronously, after
// the lock is released.
type Document struct {
	mu        sync.RWMutex
	contents  delta.Delta
	selection *Range
	revision  uint64

	textListeners      []func(TextChange)
	selectionListeners []func(SelectionChange)
}

// New creates an empty document. Like every document it ends in a newline.
func New() *Document {
	return &Document{contents: delta.Delta{}.Insert(delta.Newline, nil)}
}

// OnTextChange registers fn for non-silent content changes.
func (d *Document) OnTextChange(fn func(TextChange)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.textListeners = append(d.textListeners, fn)
}

// OnSelectionChange registers fn for non-silent selection changes.
func (d *Document) OnSelectionChange(fn func(SelectionChange)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selectionListeners = append(d.selectionListeners, fn)
}

func (d *Document) Contents() delta.Delta {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.contents
}

func (d *Document) Length() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.contents.Length()
}

func (d *Document) Revision() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

// Slice returns the contents between index and index+length.
func (d *Document) Slice(index, length int) (delta.Delta, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := checkRange(index, length, d.contents.Length()); err != nil {
		return nil, err
	}
	return d.contents.Slice(index, index+length), nil
}

// Text returns the plain text between index and index+length.
func (d *Document) Text(index, length int) (string, error) {
	s, err := d.Slice(index, length)
	if err != nil {
		return "", err
	}
	return s.Text(), nil
}

// UpdateContents composes change onto the contents and moves the selection
// through it. The selection move is part of the change and is not reported
// on its own. It returns the change as applied.
func (d *Document) UpdateContents(change delta.Delta, src Source) (delta.Delta, error) {
	d.mu.Lock()
	old := d.contents
	next := old.Compose(change)
	if !next.EndsWith(delta.Newline) {
		next = next.Insert(delta.Newline, nil)
	}
	for _, op := range next {
		if op.Kind != delta.KindInsert {
			d.mu.Unlock()
			return nil, fmt.Errorf("update contents: change reaches past the end: %w", ErrInvalidRange)
		}
	}
	d.contents = next
	d.revision++
	if d.selection != nil {
		start := change.TransformPosition(d.selection.Index)
		end := change.TransformPosition(d.selection.Index + d.selection.Length)
		d.selection = &Range{Index: start, Length: max(end-start, 0)}
	}
	ev := TextChange{Delta: change, Old: old, Source: src, Revision: d.revision}
	listeners := d.textListeners
	d.mu.Unlock()

	if src != SourceSilent {
		for _, fn := range listeners {
			fn(ev)
		}
	}
	return change, nil
}

// SetContents replaces the whole document.
func (d *Document) SetContents(contents delta.Delta, src Source) (delta.Delta, error) {
	change := delta.Delta{}.Delete(d.Length()).Concat(contents)
	return d.UpdateContents(change, src)
}

// DeleteText removes length positions at index.
func (d *Document) DeleteText(index, length int, src Source) (delta.Delta, error) {
	if err := checkRange(index, length, d.Length()); err != nil {
		return nil, err
	}
	return d.UpdateContents(delta.Delta{}.Retain(index, nil).Delete(length), src)
}

// Selection returns the current selection, if any.
func (d *Document) Selection() (Range, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.selection == nil {
		return Range{}, false
	}
	return *d.selection, true
}

// SetSelection moves the selection, clamped to the document.
func (d *Document) SetSelection(r Range, src Source) error {
	if r.Index < 0 || r.Length < 0 {
		return fmt.Errorf("set selection %+v: %w", r, ErrInvalidRange)
	}
	d.mu.Lock()
	length := d.contents.Length()
	r.Index = min(r.Index, length-1)
	r.Length = min(r.Length, length-1-r.Index)
	old := d.selection
	d.selection = &r
	listeners := d.selectionListeners
	d.mu.Unlock()

	if src != SourceSilent {
		ev := SelectionChange{Range: &r, Old: old, Source: src}
		for _, fn := range listeners {
			fn(ev)
		}
	}
	return nil
}

// Blur clears the selection.
func (d *Document) Blur(src Source) {
	d.mu.Lock()
	old := d.selection
	d.selection = nil
	listeners := d.selectionListeners
	d.mu.Unlock()

	if src != SourceSilent && old != nil {
		ev := SelectionChange{Old: old, Source: src}
		for _, fn := range listeners {
			fn(ev)
		}
	}
}

// Format returns the formatting active at index: the inline attributes of
// the character before it on the same line, plus the block attributes of
// the line containing it.
func (d *Document) Format(index int) delta.Attrs {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := delta.Attrs{}
	pos := 0
	for _, line := range d.contents.Lines() {
		n := line.Content.Length()
		if index > pos+n {
			pos += n + 1
			continue
		}
		if at := index - pos; at > 0 {
			prev := line.Content.Slice(at-1, at)
			if len(prev) > 0 {
				for k, v := range prev[0].Attrs {
					out[k] = v
				}
			}
		}
		for k, v := range line.Attrs {
			out[k] = v
		}
		break
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func checkRange(index, length, docLength int) error {
	if index < 0 || length < 0 || index+length > docLength {
		return fmt.Errorf("range [%d, %d) of %d: %w", index, index+length, docLength, ErrInvalidRange)
	}
	return nil
}
