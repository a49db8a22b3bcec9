package cmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gaurav-prasanna/pastepipe/core/clipboard"
	"github.com/gaurav-prasanna/pastepipe/core/delta"
	"github.com/gaurav-prasanna/pastepipe/core/document"
	"github.com/gaurav-prasanna/pastepipe/core/match"
	"github.com/gaurav-prasanna/pastepipe/core/walk"
)

// pasteSource pastes src into an empty document and returns the result.
// Image input becomes a file attachment, the way a browser delivers a
// pasted screenshot.
func pasteSource(ctx context.Context, walker *walk.Walker, src *source, logger *slog.Logger) (delta.Delta, error) {
	doc := document.New()
	adapter := clipboard.New(doc,
		clipboard.WithWalker(walker),
		clipboard.WithUploader(inlineUploader{doc: doc}),
		clipboard.WithLogger(logger),
		// A one-shot paste has no later task to defer to.
		clipboard.WithScheduler(clipboard.Immediate{}),
	)

	var (
		data  = map[string]string{}
		files []clipboard.File
	)
	file := clipboard.File{Name: filepath.Base(src.Name), Data: src.Data}
	switch {
	case src.HTML:
		data[clipboard.MIMEHTML] = string(src.Data)
	case file.IsImage():
		files = append(files, file)
	default:
		data[clipboard.MIMEText] = string(src.Data)
	}

	if err := adapter.OnCapturePaste(ctx, clipboard.NewEvent(data, files...)); err != nil {
		return nil, fmt.Errorf("paste: %w", err)
	}
	return doc.Contents(), nil
}

// inlineUploader "uploads" pasted images by embedding them as data URIs.
type inlineUploader struct {
	doc *document.Document
}

func (u inlineUploader) Upload(_ context.Context, at document.Range, files []clipboard.File) error {
	change := delta.Delta{}.Retain(at.Index, nil).Delete(at.Length)
	for _, f := range files {
		uri := "data:" + f.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
		change = change.InsertEmbed(match.EmbedImage, uri, nil)
	}
	if _, err := u.doc.UpdateContents(change, document.SourceUser); err != nil {
		return fmt.Errorf("insert uploaded images: %w", err)
	}
	return nil
}
