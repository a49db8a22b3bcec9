package core_test

import (
	"testing"

	"github.com/gaurav-prasanna/pastepipe/core"
	"github.com/gaurav-prasanna/pastepipe/core/export"
	"github.com/gaurav-prasanna/pastepipe/core/extract"
	"github.com/gaurav-prasanna/pastepipe/core/fetch"
	"github.com/gaurav-prasanna/pastepipe/core/normalize"
	"github.com/gaurav-prasanna/pastepipe/core/walk"
)

var (
	_ core.Fetcher    = fetch.New(nil)
	_ core.Extractor  = extract.New()
	_ core.Normalizer = normalize.New()
	_ core.Converter  = walk.New()
	_ core.Exporter   = export.New()
)

// The stages chain: whatever the normalizer keeps, the converter sees and
// the exporter writes back.
func TestStagesChain(t *testing.T) {
	t.Parallel()

	var (
		n core.Normalizer = normalize.New()
		c core.Converter  = walk.New()
		e core.Exporter   = export.New()
	)
	raw := `<h1 onclick="x()">Title</h1><script>alert(1)</script><p>body</p>`

	if got := n.Normalize(raw).TextContent(); got != "Titlebody" {
		t.Errorf("Normalize().TextContent() = %q, want %q", got, "Titlebody")
	}
	out, err := e.HTML(c.Convert(walk.Input{HTML: raw}))
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	if want := "<h1>Title</h1>body"; out != want {
		t.Errorf("HTML() = %q, want %q", out, want)
	}
}
