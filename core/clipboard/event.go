// Package clipboard adapts paste, copy and cut events to the conversion
// pipeline: pasted payloads are converted with the walker and applied to a
// document, and copied ranges are exported back to HTML and plain text.
package clipboard

import (
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

// Clipboard payload types.
const (
	MIMEHTML    = "text/html"
	MIMEText    = "text/plain"
	MIMEURIList = "text/uri-list"
)

// Event is a clipboard event as the host delivers it.
type Event interface {
	GetData(mimeType string) string
	SetData(mimeType, value string)
	Files() []File
	PreventDefault()
	DefaultPrevented() bool
}

// File is a file attached to a paste.
type File struct {
	Name string
	Type string
	Data []byte
}

// ContentType returns the declared type, or the sniffed one when the event
// left it blank.
func (f File) ContentType() string {
	if f.Type != "" {
		return f.Type
	}
	return mimetype.Detect(f.Data).String()
}

// IsImage reports whether the file is an image. A declared image type is
// checked against the content, so a renamed script is rejected.
func (f File) IsImage() bool {
	if !strings.HasPrefix(f.ContentType(), "image/") {
		return false
	}
	return strings.HasPrefix(mimetype.Detect(f.Data).String(), "image/")
}

// MemoryEvent is an Event backed by maps, for hosts without a native event
// and for tests.
type MemoryEvent struct {
	mu        sync.Mutex
	data      map[string]string
	files     []File
	prevented bool
}

// NewEvent creates a MemoryEvent holding data and files.
func NewEvent(data map[string]string, files ...File) *MemoryEvent {
	e := &MemoryEvent{data: make(map[string]string, len(data)), files: files}
	for k, v := range data {
		e.data[k] = v
	}
	return e
}

func (e *MemoryEvent) GetData(mimeType string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data[mimeType]
}

func (e *MemoryEvent) SetData(mimeType, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.data == nil {
		e.data = map[string]string{}
	}
	e.data[mimeType] = value
}

func (e *MemoryEvent) Files() []File { return e.files }

func (e *MemoryEvent) PreventDefault() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prevented = true
}

func (e *MemoryEvent) DefaultPrevented() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prevented
}
