package walk

import (
	"encoding/json"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gaurav-prasanna/pastepipe/core/delta"
	"github.com/gaurav-prasanna/pastepipe/core/match"
	"github.com/gaurav-prasanna/pastepipe/core/normalize"
)

type A = delta.Attrs

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func assertDelta(t *testing.T, got, want delta.Delta) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		g, _ := json.Marshal(got)
		w, _ := json.Marshal(want)
		t.Errorf("delta mismatch\n got: %s\nwant: %s", g, w)
	}
}

func TestConvertHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want delta.Delta
	}{
		{
			name: "paragraphs",
			html: "<p>Hello</p><p>World</p>",
			want: delta.Delta{}.Insert("Hello\nWorld\n", nil),
		},
		{
			name: "inline formats",
			html: "<b>bold</b> <i>it</i>",
			want: delta.Delta{}.
				Insert("bold", A{"bold": true}).
				Insert(" ", nil).
				Insert("it", A{"italic": true}),
		},
		{
			name: "nested list flattening",
			html: "<ol><li>One<ol><li>Alpha</li></ol></li></ol>",
			want: delta.Delta{}.
				Insert("One", nil).
				Insert("\n", A{"list": "ordered"}).
				Insert("Alpha", nil).
				Insert("\n", A{"list": "ordered", "indent": 1}),
		},
		{
			name: "sibling order across depths",
			html: "<ul><li>a<ul><li>b<ul><li>c</li></ul></li></ul></li><li>d</li></ul>",
			want: delta.Delta{}.
				Insert("a", nil).Insert("\n", A{"list": "bullet"}).
				Insert("b", nil).Insert("\n", A{"list": "bullet", "indent": 1}).
				Insert("c", nil).Insert("\n", A{"list": "bullet", "indent": 2}).
				Insert("d", nil).Insert("\n", A{"list": "bullet"}),
		},
		{
			name: "explicit indent class wins over depth",
			html: `<ul><li class="ql-indent-2">a</li></ul>`,
			want: delta.Delta{}.Insert("a", nil).Insert("\n", A{"list": "bullet", "indent": 2}),
		},
		{
			name: "checklists",
			html: `<ul data-checked="true"><li>a</li></ul><ul><li data-list="unchecked">b</li><li><input type="checkbox" checked>c</li></ul>`,
			want: delta.Delta{}.
				Insert("a", nil).Insert("\n", A{"list": "checked"}).
				Insert("b", nil).Insert("\n", A{"list": "unchecked"}).
				Insert("c", nil).Insert("\n", A{"list": "checked"}),
		},
		{
			name: "nbsp kept around bold run",
			html: "<span>0&nbsp;<b>1</b>&nbsp;2</span>",
			want: delta.Delta{}.
				Insert("0\u00a0", nil).
				Insert("1", A{"bold": true}).
				Insert("\u00a02", nil),
		},
		{
			name: "empty heading keeps its line",
			html: "<h1></h1><p>x</p>",
			want: delta.Delta{}.
				Insert("\n", A{"header": 1}).
				Insert("x", nil).
				Insert("\n", nil),
		},
		{
			name: "line breaks",
			html: "<p>a<br>b</p><p><br></p>",
			want: delta.Delta{}.Insert("a\nb\n\n", nil),
		},
		{
			name: "inline run before block",
			html: "x<p>y</p>",
			want: delta.Delta{}.Insert("x\ny\n", nil),
		},
		{
			name: "inner color wins",
			html: `<span style="color: red">a<span style="color: blue">b</span>c</span>`,
			want: delta.Delta{}.
				Insert("a", A{"color": "red"}).
				Insert("b", A{"color": "blue"}).
				Insert("c", A{"color": "red"}),
		},
		{
			name: "underline and line-through together",
			html: `<span style="text-decoration: underline line-through">x</span>`,
			want: delta.Delta{}.Insert("x", A{"underline": true, "strike": true}),
		},
		{
			name: "style overrides tag on same node",
			html: `<strong style="font-weight: normal">a</strong>`,
			want: delta.Delta{}.Insert("a", nil),
		},
		{
			name: "style unset shields from ancestor",
			html: `<b>x<span style="font-weight: normal">y</span></b>`,
			want: delta.Delta{}.Insert("x", A{"bold": true}).Insert("y", nil),
		},
		{
			name: "rtl direction",
			html: `<p style="direction: rtl">x</p>`,
			want: delta.Delta{}.Insert("x", nil).Insert("\n", A{"direction": "rtl"}),
		},
		{
			name: "code block",
			html: "<pre>a\n  b</pre>",
			want: delta.Delta{}.
				Insert("a", nil).Insert("\n", A{"code-block": true}).
				Insert("  b", nil).Insert("\n", A{"code-block": true}),
		},
		{
			name: "image embed",
			html: `<p>x<img src="a.png" width="10" onerror="evil()"></p>`,
			want: delta.Delta{}.
				Insert("x", nil).
				InsertEmbed("image", "a.png", A{"width": "10"}).
				Insert("\n", nil),
		},
		{
			name: "unsafe image dropped",
			html: `<img src="javascript:alert(1)">`,
			want: nil,
		},
		{
			name: "link",
			html: `<a href="https://go.dev">Go</a>`,
			want: delta.Delta{}.Insert("Go", A{"link": "https://go.dev"}),
		},
		{
			name: "table",
			html: `<table width="500" style="width: 600px"><thead><tr><th>H</th></tr></thead>` +
				`<tbody><tr><td width="100" height="20">A</td></tr></tbody></table>`,
			want: delta.Delta{}.
				Insert("H", nil).
				Insert("\n", A{"tableHeaderCell": 1, "tableWidth": "600px"}).
				Insert("A", nil).
				Insert("\n", A{"table": 2, "cellWidth": "100", "cellHeight": "20", "tableWidth": "600px"}),
		},
		{
			name: "block embed between paragraphs",
			html: `<p>01</p><iframe src="#"></iframe><p>34</p>`,
			want: delta.Delta{}.
				Insert("01\n", nil).
				InsertEmbed("video", "#", nil).
				Insert("34\n", nil),
		},
		{
			name: "adjacent block embeds",
			html: `<iframe src="a"></iframe><iframe src="b"></iframe>`,
			want: delta.Delta{}.
				InsertEmbed("video", "a", nil).
				InsertEmbed("video", "b", nil),
		},
		{
			name: "table without dimensions",
			html: `<table><tr><td>A</td><td></td></tr></table>`,
			want: delta.Delta{}.
				Insert("A", nil).
				Insert("\n", A{"table": 1}).
				Insert("\n", A{"table": 1}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assertDelta(t, New(WithLogger(quiet())).ConvertHTML(tt.html), tt.want)
		})
	}
}

func TestConvert_BlockEmbedInsideInline(t *testing.T) {
	t.Parallel()

	html := `<h1><a href="https://x.test">Watch <iframe src="https://v.test/1"></iframe> now</a></h1>`
	got := New().ConvertHTML(html)
	want := delta.Delta{}.
		Insert("Watch", A{"link": "https://x.test"}).
		Insert("\n", A{"header": 1}).
		InsertEmbed("video", "https://v.test/1", A{"link": "https://x.test", "header": 1}).
		Insert("now", A{"link": "https://x.test"}).
		Insert("\n", A{"header": 1})
	assertDelta(t, got, want)
}

func TestConvert_InlineOnlyHasNoAttributedNewlines(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"<b>a</b><i>b</i>",
		`<span style="color: red">a<br>b</span>`,
		`<a href="/x"><em>a</em></a> <u>c</u>`,
	}
	for _, in := range inputs {
		for _, op := range New().ConvertHTML(in) {
			if op.IsNewline() && len(op.Attrs) > 0 {
				t.Errorf("ConvertHTML(%q) has attributed newline %v", in, op.Attrs)
			}
		}
	}
}

func TestConvert_ScriptNeverAppears(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`<p>a<script>alert("pwned")</script>b</p>`,
		`<script>alert("pwned")</script>`,
		`<div><noscript>alert("pwned")</noscript><template>alert("pwned")</template></div>`,
		`<img src=x onerror="alert('pwned')">`,
	}
	for _, in := range inputs {
		got := New().ConvertHTML(in)
		data, _ := json.Marshal(got)
		if strings.Contains(string(data), "pwned") {
			t.Errorf("ConvertHTML(%q) leaked script: %s", in, data)
		}
	}
}

func TestConvert_Input(t *testing.T) {
	t.Parallel()

	w := New()
	assertDelta(t, w.Convert(Input{Text: "a\r\nb"}), delta.Delta{}.Insert("a\nb", nil))
	assertDelta(t, w.Convert(Input{HTML: "<b>x</b>", Text: "y"}), delta.Delta{}.Insert("x", A{"bold": true}))
	assertDelta(t, w.Convert(Input{}), nil)
}

func TestConvert_DropsPlainTrailingNewline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want delta.Delta
	}{
		{
			name: "paragraph newline dropped",
			html: "<h1>Test</h1><h2></h2><p>Body</p>",
			want: delta.Delta{}.
				Insert("Test", nil).Insert("\n", A{"header": 1}).
				Insert("\n", A{"header": 2}).
				Insert("Body", nil),
		},
		{
			name: "block newline kept",
			html: "<p>a</p><h2>b</h2>",
			want: delta.Delta{}.Insert("a\nb", nil).Insert("\n", A{"header": 2}),
		},
		{
			name: "text keeps its newline",
			want: delta.Delta{}.Insert("x\n", nil),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := Input{HTML: tt.html}
			if tt.html == "" {
				in.Text = "x\n"
			}
			assertDelta(t, New().Convert(in), tt.want)
		})
	}
}

func TestConvertHTML_LargeInputIsLinear(t *testing.T) {
	t.Parallel()

	const n = 20000
	html := strings.Repeat("<p>hello <b>world</b></p>", n)
	start := time.Now()
	got := New().ConvertHTML(html)
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("ConvertHTML(%d paragraphs) took %v", n, elapsed)
	}
	if len(got) != 3*n {
		t.Errorf("len(ConvertHTML()) = %d ops, want %d", len(got), 3*n)
	}
}

func BenchmarkConvertHTML(b *testing.B) {
	html := strings.Repeat("<p>hello <b>world</b></p>", 2000)
	w := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.ConvertHTML(html)
	}
}

func TestAddMatcher_ComposesInOrder(t *testing.T) {
	t.Parallel()

	w := New()
	suffix := func(s string) match.Transform {
		return func(_ *normalize.Node, d delta.Delta, _ match.State) delta.Delta {
			return d.Insert(s, nil)
		}
	}
	if err := w.AddMatcher(match.TextNodes(), suffix("A")); err != nil {
		t.Fatal(err)
	}
	if err := w.AddMatcher(match.TextNodes(), suffix("B")); err != nil {
		t.Fatal(err)
	}
	assertDelta(t, w.ConvertHTML("<p>x</p>"), delta.Delta{}.Insert("xAB\n", nil))
}

func TestAddMatcher_Linkify(t *testing.T) {
	t.Parallel()

	w := New()
	if err := w.AddMatcher(match.TextNodes(), match.Linkify()); err != nil {
		t.Fatal(err)
	}
	got := w.ConvertHTML("<p>go to https://go.dev now</p>")
	want := delta.Delta{}.
		Insert("go to ", nil).
		Insert("https://go.dev", A{"link": "https://go.dev"}).
		Insert(" now\n", nil)
	assertDelta(t, got, want)
}

func TestAddMatcher_PanicIsIsolated(t *testing.T) {
	t.Parallel()

	w := New(WithLogger(quiet()))
	err := w.AddMatcher(match.Tags("b"), func(*normalize.Node, delta.Delta, match.State) delta.Delta {
		panic("boom")
	})
	if err != nil {
		t.Fatal(err)
	}
	got := w.ConvertHTML("<p><b>x</b> y</p>")
	want := delta.Delta{}.Insert("x", A{"bold": true}).Insert(" y\n", nil)
	assertDelta(t, got, want)
}

func TestAddMatcher_CSSSelector(t *testing.T) {
	t.Parallel()

	w := New()
	highlight := func(_ *normalize.Node, d delta.Delta, _ match.State) delta.Delta {
		return match.ApplyInline(d, A{"background": "yellow"})
	}
	if err := w.AddMatcher(match.MustCSS("span.mark"), highlight); err != nil {
		t.Fatal(err)
	}
	got := w.ConvertHTML(`<span class="mark">a</span><span>b</span>`)
	want := delta.Delta{}.Insert("a", A{"background": "yellow"}).Insert("b", nil)
	assertDelta(t, got, want)
}
