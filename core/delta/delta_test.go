package delta

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestInsert_SplitsNewlines(t *testing.T) {
	t.Parallel()

	got := Delta{}.Insert("a\nb\n\nc", Attrs{"bold": true})
	want := Delta{
		{Kind: KindInsert, Text: "a", Attrs: Attrs{"bold": true}},
		{Kind: KindInsert, Text: "\n", Attrs: Attrs{"bold": true}},
		{Kind: KindInsert, Text: "b", Attrs: Attrs{"bold": true}},
		{Kind: KindInsert, Text: "\n", Attrs: Attrs{"bold": true}},
		{Kind: KindInsert, Text: "\n", Attrs: Attrs{"bold": true}},
		{Kind: KindInsert, Text: "c", Attrs: Attrs{"bold": true}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Insert() = %#v, want %#v", got, want)
	}
}

func TestPush_MergesEqualAttrs(t *testing.T) {
	t.Parallel()

	got := Delta{}.
		Insert("Hello", nil).
		Insert(" world", Attrs{}).
		Insert("!", Attrs{"bold": true}).
		Retain(2, nil).
		Retain(3, nil).
		Delete(1).
		Delete(2)
	want := Delta{
		{Kind: KindInsert, Text: "Hello world"},
		{Kind: KindInsert, Text: "!", Attrs: Attrs{"bold": true}},
		{Kind: KindRetain, Count: 5},
		{Kind: KindDelete, Count: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Push() = %#v, want %#v", got, want)
	}
}

func TestPush_InsertBeforeDelete(t *testing.T) {
	t.Parallel()

	got := Delta{}.Delete(2).Insert("x", nil)
	if got[0].Kind != KindInsert || got[1].Kind != KindDelete {
		t.Fatalf("Push() = %#v, want insert before delete", got)
	}
}

func TestPush_DoesNotAliasReceiver(t *testing.T) {
	t.Parallel()

	base := make(Delta, 0, 8).Insert("a", nil)
	left := base.Insert("\n", nil)
	right := base.Insert("b", Attrs{"bold": true})
	if left[1].Text != "\n" || right[1].Text != "b" {
		t.Fatalf("branches share storage: left=%#v right=%#v", left, right)
	}
}

func TestLengthAndText(t *testing.T) {
	t.Parallel()

	d := Delta{}.Insert("héllo", nil).InsertEmbed("image", "x.png", nil).Insert("\n", nil)
	if got := d.Length(); got != 7 {
		t.Errorf("Length() = %d, want 7", got)
	}
	if got := d.Text(); got != "héllo\n" {
		t.Errorf("Text() = %q, want %q", got, "héllo\n")
	}
}

func TestEndsWith(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		d    Delta
		want bool
	}{
		{"empty", nil, false},
		{"newline", Delta{}.Insert("a\n", nil), true},
		{"text", Delta{}.Insert("a", nil), false},
		{"embed last", Delta{}.Insert("\n", nil).InsertEmbed("video", "v", nil), false},
		{"attributed newline", Delta{}.Insert("a", nil).Insert("\n", Attrs{"header": 1}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.d.EndsWith("\n"); got != tt.want {
				t.Errorf("EndsWith() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEndsLine(t *testing.T) {
	t.Parallel()

	isBlock := func(key string) bool { return key == "video" }
	tests := []struct {
		name string
		d    Delta
		want bool
	}{
		{"empty", nil, true},
		{"newline", Delta{}.Insert("a\n", nil), true},
		{"text", Delta{}.Insert("a", nil), false},
		{"block embed", Delta{}.Insert("a\n", nil).InsertEmbed("video", "v", nil), true},
		{"inline embed", Delta{}.InsertEmbed("image", "i.png", nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.d.EndsLine(isBlock); got != tt.want {
				t.Errorf("EndsLine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuilder(t *testing.T) {
	t.Parallel()

	var b Builder
	b.Insert("a", nil)
	b.Insert("b\nc", nil)
	b.Push(Op{Kind: KindDelete, Count: 1})
	b.Insert("d", nil)
	b.Concat(Delta{}.Insert("e", Attrs{"bold": true}))
	got := b.Delta()
	want := Delta{
		{Kind: KindInsert, Text: "ab"},
		{Kind: KindInsert, Text: "\n"},
		{Kind: KindInsert, Text: "cd"},
		{Kind: KindInsert, Text: "e", Attrs: Attrs{"bold": true}},
		{Kind: KindDelete, Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Delta() = %#v, want %#v", got, want)
	}
	if len(b.Ops()) != 0 {
		t.Errorf("Ops() after Delta() = %#v, want empty", b.Ops())
	}
}

func TestBuilder_CopiesStart(t *testing.T) {
	t.Parallel()

	base := Delta{}.Insert("a", nil)
	b := NewBuilder(base, 1)
	b.Insert("b", nil)
	if base[0].Text != "a" {
		t.Errorf("builder changed its starting delta: %#v", base)
	}
	if got := b.Delta(); got[0].Text != "ab" {
		t.Errorf("Delta() = %#v, want merged ab", got)
	}
}

func TestConcat_ManyOpsIsLinear(t *testing.T) {
	t.Parallel()

	const n = 100000
	var part Delta
	for i := 0; i < n; i++ {
		part = append(part, Op{Kind: KindInsert, Text: "x", Attrs: Attrs{"bold": i%2 == 0}})
	}
	start := time.Now()
	got := Delta{}.Concat(part).Map(func(op Op) Op { return op })
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Concat and Map of %d ops took %v", n, elapsed)
	}
	if len(got) != n {
		t.Errorf("len = %d, want %d", len(got), n)
	}
}

func BenchmarkBuilderPush(b *testing.B) {
	for i := 0; i < b.N; i++ {
		var d Builder
		for j := 0; j < 10000; j++ {
			d.Insert("word", Attrs{"bold": j%2 == 0})
			d.Insert("\n", nil)
		}
		d.Delta()
	}
}

func TestSlice(t *testing.T) {
	t.Parallel()

	d := Delta{}.
		Insert("Title", nil).
		Insert("\n", Attrs{"header": 1}).
		Insert("body", Attrs{"bold": true}).
		Insert("\n", nil)

	got := d.Slice(2, 8)
	want := Delta{}.
		Insert("tle", nil).
		Insert("\n", Attrs{"header": 1}).
		Insert("bo", Attrs{"bold": true})
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Slice(2, 8) = %#v, want %#v", got, want)
	}
	if got := d.Slice(0, -1); !reflect.DeepEqual(got, d) {
		t.Fatalf("Slice(0, -1) = %#v, want whole delta", got)
	}
}

func TestLines(t *testing.T) {
	t.Parallel()

	d := Delta{}.
		Insert("One", nil).
		Insert("\n", Attrs{"list": "ordered"}).
		Insert("\n", nil).
		Insert("tail", nil)
	lines := d.Lines()
	if len(lines) != 3 {
		t.Fatalf("Lines() len = %d, want 3", len(lines))
	}
	if lines[0].Content.Text() != "One" || lines[0].Attrs["list"] != "ordered" {
		t.Errorf("line 0 = %#v", lines[0])
	}
	if len(lines[1].Content) != 0 || lines[1].Open {
		t.Errorf("line 1 = %#v, want empty closed line", lines[1])
	}
	if !lines[2].Open || lines[2].Content.Text() != "tail" {
		t.Errorf("line 2 = %#v, want open tail line", lines[2])
	}
}

func TestCompose(t *testing.T) {
	t.Parallel()

	base := Delta{}.Insert("Hello world", nil).Insert("\n", nil)

	tests := []struct {
		name    string
		overlay Delta
		want    Delta
	}{
		{
			name:    "insert in middle",
			overlay: Delta{}.Retain(5, nil).Insert(",", nil),
			want:    Delta{}.Insert("Hello, world", nil).Insert("\n", nil),
		},
		{
			name:    "delete range",
			overlay: Delta{}.Retain(5, nil).Delete(6),
			want:    Delta{}.Insert("Hello", nil).Insert("\n", nil),
		},
		{
			name:    "format range",
			overlay: Format(6, 5, Attrs{"bold": true}),
			want: Delta{}.
				Insert("Hello ", nil).
				Insert("world", Attrs{"bold": true}).
				Insert("\n", nil),
		},
		{
			name:    "format newline",
			overlay: Format(11, 1, Attrs{"header": 2}),
			want:    Delta{}.Insert("Hello world", nil).Insert("\n", Attrs{"header": 2}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := base.Compose(tt.overlay); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Compose() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestCompose_LaterAttributesWin(t *testing.T) {
	t.Parallel()

	base := Delta{}.Insert("abc", Attrs{"color": "red", "bold": true})
	got := base.Compose(Format(0, 2, Attrs{"color": "blue", "bold": nil}))
	want := Delta{}.
		Insert("ab", Attrs{"color": "blue"}).
		Insert("c", Attrs{"color": "red", "bold": true})
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Compose() = %#v, want %#v", got, want)
	}
}

func TestJSON(t *testing.T) {
	t.Parallel()

	d := Delta{}.
		Insert("Hi", Attrs{"bold": true}).
		InsertEmbed("image", "a.png", nil).
		Insert("\n", nil)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"ops":[{"insert":"Hi","attributes":{"bold":true}},{"insert":{"image":"a.png"}},{"insert":"\n"}]}`
	if string(data) != want {
		t.Fatalf("Marshal() = %s, want %s", data, want)
	}

	var back Delta
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(back, d) {
		t.Fatalf("Unmarshal() = %#v, want %#v", back, d)
	}
}

func TestJSON_Invalid(t *testing.T) {
	t.Parallel()

	var d Delta
	if err := json.Unmarshal([]byte(`{"ops":[{"attributes":{"bold":true}}]}`), &d); err == nil {
		t.Fatal("Unmarshal() error = nil, want error")
	}
}

func TestTransformPosition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		d     Delta
		index int
		want  int
	}{
		{"insert before", Delta{}.Insert("abc", nil), 2, 5},
		{"insert at", Delta{}.Retain(2, nil).Insert("abc", nil), 2, 5},
		{"insert after", Delta{}.Retain(5, nil).Insert("abc", nil), 2, 2},
		{"delete before", Delta{}.Delete(2), 4, 2},
		{"delete across", Delta{}.Retain(1, nil).Delete(5), 3, 1},
		{"format only", Delta{}.Retain(4, Attrs{"bold": true}), 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.d.TransformPosition(tt.index); got != tt.want {
				t.Errorf("TransformPosition(%d) = %d, want %d", tt.index, got, tt.want)
			}
		})
	}
}
