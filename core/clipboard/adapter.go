package clipboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gaurav-prasanna/pastepipe/core/delta"
	"github.com/gaurav-prasanna/pastepipe/core/document"
	"github.com/gaurav-prasanna/pastepipe/core/export"
	"github.com/gaurav-prasanna/pastepipe/core/match"
	"github.com/gaurav-prasanna/pastepipe/core/normalize"
	"github.com/gaurav-prasanna/pastepipe/core/walk"
)

// Document is the document state the adapter reads and mutates.
type Document interface {
	Contents() delta.Delta
	Length() int
	Format(index int) delta.Attrs
	UpdateContents(change delta.Delta, src document.Source) (delta.Delta, error)
	Selection() (document.Range, bool)
	SetSelection(r document.Range, src document.Source) error
}

// Uploader receives pasted image files and owns inserting whatever it
// produces in place of at.
type Uploader interface {
	Upload(ctx context.Context, at document.Range, files []File) error
}

// Adapter connects clipboard events to a document.
type Adapter struct {
	doc       Document
	walker    *walk.Walker
	exporter  *export.HTMLExporter
	uploader  Uploader
	scheduler Scheduler
	logger    *slog.Logger
}

type Option func(*Adapter)

func WithWalker(w *walk.Walker) Option {
	return func(a *Adapter) { a.walker = w }
}

// WithUploader enables image-file paste.
func WithUploader(u Uploader) Option {
	return func(a *Adapter) { a.uploader = u }
}

// WithScheduler sets where paste results are applied. The default is a
// TaskQueue drained by Flush; Immediate applies them before
// OnCapturePaste returns.
func WithScheduler(s Scheduler) Option {
	return func(a *Adapter) { a.scheduler = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// New creates an Adapter for doc.
func New(doc Document, opts ...Option) *Adapter {
	a := &Adapter{doc: doc, exporter: export.New()}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.walker == nil {
		a.walker = walk.New(walk.WithLogger(a.logger))
	}
	if a.scheduler == nil {
		a.scheduler = &TaskQueue{}
	}
	return a
}

// Walker returns the walker used for conversion, for registering matchers.
func (a *Adapter) Walker() *walk.Walker { return a.walker }

// Flush applies deferred pastes when the scheduler queues them, and
// returns how many ran. The host calls it at the end of each task.
func (a *Adapter) Flush() int {
	if q, ok := a.scheduler.(interface{ Flush() int }); ok {
		return q.Flush()
	}
	return 0
}

// OnCapturePaste handles a paste event. Image files are uploaded when the
// event carries no HTML, or when the HTML is only a placeholder for the
// image. Otherwise the HTML, or the text when there is no HTML, is
// converted and applied through the scheduler.
func (a *Adapter) OnCapturePaste(ctx context.Context, e Event) error {
	if e.DefaultPrevented() {
		return nil
	}
	e.PreventDefault()

	at := a.target()
	html := e.GetData(MIMEHTML)
	text := e.GetData(MIMEText)
	if html == "" && text == "" {
		text = normalizeURIList(e.GetData(MIMEURIList))
	}

	if images := a.uploadable(e.Files()); len(images) > 0 && (html == "" || imagePlaceholder(html)) {
		a.logger.Debug("paste uploads files", "count", len(images), "index", at.Index)
		if err := a.uploader.Upload(ctx, at, images); err != nil {
			return fmt.Errorf("upload pasted files: %w", err)
		}
		return nil
	}
	if html == "" && text == "" {
		a.logger.Debug("paste without payload")
		return nil
	}

	in := walk.Input{HTML: html, Text: text}
	a.scheduler.Defer(func() {
		if err := a.paste(at, in); err != nil {
			a.logger.Error("apply paste", "error", err)
		}
	})
	return nil
}

// target is the current selection, or a caret at the end of the document.
func (a *Adapter) target() document.Range {
	if r, ok := a.doc.Selection(); ok {
		return r
	}
	return document.Range{Index: max(a.doc.Length()-1, 0)}
}

func (a *Adapter) uploadable(files []File) []File {
	if a.uploader == nil {
		return nil
	}
	var out []File
	for _, f := range files {
		if f.IsImage() {
			out = append(out, f)
		}
	}
	return out
}

// paste replaces at with the converted input. The selection lands after the
// pasted content without a notification of its own: listeners learn of the
// move from the text change.
func (a *Adapter) paste(at document.Range, in walk.Input) error {
	pasted := a.Convert(in, a.doc.Format(at.Index))
	change := delta.Delta{}.Retain(at.Index, nil).Delete(at.Length).Concat(pasted)
	if _, err := a.doc.UpdateContents(change, document.SourceUser); err != nil {
		return fmt.Errorf("paste at %d: %w", at.Index, err)
	}
	a.logger.Debug("pasted", "index", at.Index, "length", pasted.Length())
	return a.doc.SetSelection(document.Range{Index: at.Index + pasted.Length()}, document.SourceSilent)
}

// Convert converts a payload for insertion where formats are active.
// Inside a code block the payload is pasted as plain text. Pasted content
// inherits the inline formats it does not set itself.
func (a *Adapter) Convert(in walk.Input, formats delta.Attrs) delta.Delta {
	if lang := formats[match.AttrCodeBlock]; lang != nil {
		text := in.Text
		if text == "" && in.HTML != "" {
			text = a.walker.ConvertHTML(in.HTML).Text()
		}
		return match.ApplyBlock(walk.ConvertText(text), delta.Attrs{match.AttrCodeBlock: lang}, nil, nil)
	}

	inline, _ := a.walker.Registry().Split(formats)
	if in.HTML == "" {
		return match.ApplyInline(walk.ConvertText(in.Text), inline)
	}
	d := a.walker.Convert(walk.Input{HTML: in.HTML})
	// Inside a table the cell's own newline ends the pasted line.
	if n := len(d); n > 0 && d[n-1].IsNewline() && inTable(formats) {
		d = d[:n-1]
	}
	return match.ApplyInline(d, inline)
}

func inTable(formats delta.Attrs) bool {
	return formats[match.AttrTable] != nil || formats[match.AttrTableHeaderCell] != nil
}

// OnCaptureCopy writes the selected range to e as HTML and plain text. A cut
// then deletes the range and puts the caret where it was.
func (a *Adapter) OnCaptureCopy(e Event, isCut bool) error {
	if e.DefaultPrevented() {
		return nil
	}
	sel, ok := a.doc.Selection()
	if !ok || sel.Length == 0 {
		return nil
	}
	html, text, err := a.Copy(sel)
	if err != nil {
		return err
	}
	e.SetData(MIMEText, text)
	e.SetData(MIMEHTML, html)
	e.PreventDefault()
	a.logger.Debug("copied", "index", sel.Index, "length", sel.Length, "cut", isCut)

	if !isCut {
		return nil
	}
	change := delta.Delta{}.Retain(sel.Index, nil).Delete(sel.Length)
	if _, err := a.doc.UpdateContents(change, document.SourceUser); err != nil {
		return fmt.Errorf("cut: %w", err)
	}
	return a.doc.SetSelection(document.Range{Index: sel.Index}, document.SourceSilent)
}

// Copy exports r as HTML and plain text.
func (a *Adapter) Copy(r document.Range) (html, text string, err error) {
	contents := a.doc.Contents()
	if r.Index < 0 || r.Length < 0 || r.Index+r.Length > contents.Length() {
		return "", "", fmt.Errorf("copy %+v: %w", r, document.ErrInvalidRange)
	}
	html, err = a.exporter.HTML(export.Range(contents, r.Index, r.Length))
	if err != nil {
		return "", "", fmt.Errorf("copy: %w", err)
	}
	return html, a.exporter.Text(contents.Slice(r.Index, r.Index+r.Length)), nil
}

// InsertHTML inserts raw markup at the selection, or at the end of the
// document when there is none.
func (a *Adapter) InsertHTML(html string) error {
	return a.InsertHTMLAt(a.target().Index, html)
}

// InsertHTMLAt converts html and inserts it at index synchronously, leaving
// the caret after it. The index must fall before the final newline.
func (a *Adapter) InsertHTMLAt(index int, html string) error {
	if index < 0 || index > a.doc.Length()-1 {
		return fmt.Errorf("insert html at %d: %w", index, document.ErrInvalidRange)
	}
	pasted := a.Convert(walk.Input{HTML: html}, nil)
	change := delta.Delta{}.Retain(index, nil).Concat(pasted)
	if _, err := a.doc.UpdateContents(change, document.SourceAPI); err != nil {
		return fmt.Errorf("insert html at %d: %w", index, err)
	}
	return a.doc.SetSelection(document.Range{Index: index + pasted.Length()}, document.SourceSilent)
}

// SetHTML replaces the whole document with html and puts the caret at the
// start.
func (a *Adapter) SetHTML(html string) error {
	d := a.Convert(walk.Input{HTML: html}, nil)
	change := delta.Delta{}.Delete(a.doc.Length()).Concat(d)
	if _, err := a.doc.UpdateContents(change, document.SourceAPI); err != nil {
		return fmt.Errorf("set html: %w", err)
	}
	return a.doc.SetSelection(document.Range{}, document.SourceSilent)
}

// imagePlaceholder reports whether markup holds nothing but one image, the
// shape some sources put next to a pasted image file.
func imagePlaceholder(html string) bool {
	root := normalize.Normalize(html)
	if strings.TrimSpace(root.TextContent()) != "" {
		return false
	}
	images, other := 0, 0
	root.Walk(func(n *normalize.Node) bool {
		switch {
		case n.Is("img"):
			images++
		case n.Is("iframe", "video", "input"):
			other++
		}
		return true
	})
	return images == 1 && other == 0
}

// normalizeURIList turns a text/uri-list payload into one URL per line,
// dropping comment lines.
func normalizeURIList(list string) string {
	var urls []string
	for _, line := range strings.Split(strings.ReplaceAll(list, "\r\n", "\n"), "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return strings.Join(urls, "\n")
}
