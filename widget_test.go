package hxview

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeMaps struct {
	created []MapConfig
	markers []LngLat
	err     error
}

func (f *fakeMaps) Create(cfg MapConfig) (MapInstance, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, cfg)
	return f, nil
}

func (f *fakeMaps) AddMarker(at LngLat) error {
	f.markers = append(f.markers, at)
	return nil
}

func mapSpec(markers any) map[string]any {
	return map[string]any{"map": map[string]any{
		"id":      exprSpec("'map-' + key"),
		"center":  map[string]any{"lon": 1, "lat": 2},
		"zoom":    3,
		"style":   "streets",
		"markers": markers,
	}}
}

func TestCompileMap(t *testing.T) {
	maps := &fakeMaps{}
	result, err := TestCompile(mapSpec([]any{
		map[string]any{"lon": 4, "lat": 5},
		map[string]any{"lon": exprSpec("lon"), "lat": 6.5},
	}), map[string]any{"key": "a", "lon": 7}, WithMapWidget(maps))
	if err != nil {
		t.Fatalf("TestCompile() error = %v", err)
	}

	want := []any{"div", map[string]any{"style": "width: 100%; height: 300px", "id": "map-a"}}
	if diff := cmp.Diff(want, result.JSONML); diff != "" {
		t.Errorf("JSONML mismatch (-want +got):\n%s", diff)
	}
	if result.Deferred() != 1 {
		t.Fatalf("Deferred() = %d, want 1", result.Deferred())
	}
	if len(maps.created) != 0 {
		t.Fatal("map created before the deferred task ran")
	}

	result.RunDeferred()
	wantCfg := []MapConfig{{
		Container: "map-a",
		Style:     "mapbox://styles/mapbox/streets-v9",
		Zoom:      3,
		Center:    LngLat{Lon: 1, Lat: 2},
	}}
	if diff := cmp.Diff(wantCfg, maps.created); diff != "" {
		t.Errorf("configs mismatch (-want +got):\n%s", diff)
	}
	wantMarkers := []LngLat{{Lon: 4, Lat: 5}, {Lon: 7, Lat: 6.5}}
	if diff := cmp.Diff(wantMarkers, maps.markers); diff != "" {
		t.Errorf("markers mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileMapMarkersError(t *testing.T) {
	_, err := TestCompile(mapSpec(exprSpec("1 +")), map[string]any{"key": "a"}, WithMapWidget(&fakeMaps{}))
	if !IsEncodeError(err) {
		t.Errorf("TestCompile() error = %v, want encode_error", err)
	}
}

func TestCompileMapWidgetFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	maps := &fakeMaps{err: errors.New("no webgl")}
	result, err := TestCompile(mapSpec(nil), map[string]any{"key": "b"},
		WithMapWidget(maps), WithLogger(log.New(&logs, "", 0)))
	if err != nil {
		t.Fatalf("TestCompile() error = %v", err)
	}
	result.RunDeferred()
	if !strings.Contains(logs.String(), "map-b") || !strings.Contains(logs.String(), "no webgl") {
		t.Errorf("log = %q", logs.String())
	}
}

func TestMapWithoutWidget(t *testing.T) {
	var logs bytes.Buffer
	c := NewCompiler("test", WithLogger(log.New(&logs, "", 0)))
	node := DecodeNode(mapSpec(nil))
	for i := 0; i < 3; i++ {
		f, err := c.Compile(nil, node, c.Context(map[string]any{"key": "c"}))
		if err != nil {
			t.Fatalf("Compile() error = %v", err)
		}
		if f.Tag != "div" || f.Attrs["id"] != "map-c" {
			t.Errorf("placeholder = %v", f.JSONML())
		}
	}
	if n := c.Scheduler().(*TaskQueue).Len(); n != 0 {
		t.Errorf("queued %d tasks without a map widget, want 0", n)
	}
	if !strings.Contains(logs.String(), "no map widget configured") {
		t.Errorf("log = %q", logs.String())
	}
}

type fakeHighlighter struct {
	lang, source string
}

func (f *fakeHighlighter) Highlight(lang, source string) (string, error) {
	f.lang, f.source = lang, source
	return `<span class="k">` + strings.ReplaceAll(source, "<", "&lt;") + `</span>`, nil
}

func TestCompileCode(t *testing.T) {
	hl := &fakeHighlighter{}
	result, err := TestCompile(map[string]any{"code": map[string]any{
		"source": exprSpec("src"),
		"lang":   "go",
	}}, map[string]any{"src": "a < b"}, WithHighlighter(hl))
	if err != nil {
		t.Fatalf("TestCompile() error = %v", err)
	}

	want := []any{"pre", map[string]any{"class": "language-go"},
		[]any{"code", map[string]any{"class": "language-go"},
			[]any{"span", map[string]any{"class": "k"}, "a < b"},
		},
	}
	if diff := cmp.Diff(want, result.JSONML); diff != "" {
		t.Errorf("JSONML mismatch (-want +got):\n%s", diff)
	}
	if hl.lang != "go" {
		t.Errorf("highlighter lang = %q", hl.lang)
	}
}

func TestCompileCodeJSON(t *testing.T) {
	hl := &fakeHighlighter{}
	_, err := TestCompile(map[string]any{"code": map[string]any{
		"source": map[string]any{"a": 1},
		"lang":   "json",
	}}, nil, WithHighlighter(hl))
	if err != nil {
		t.Fatalf("TestCompile() error = %v", err)
	}
	if want := "{\n  \"a\": 1\n}"; hl.source != want {
		t.Errorf("highlighted source = %q, want %q", hl.source, want)
	}
}

func TestCompileCodeChroma(t *testing.T) {
	result, err := TestCompile(map[string]any{"code": map[string]any{
		"source": "if a < b && c {}",
		"lang":   "go",
	}}, nil)
	if err != nil {
		t.Fatalf("TestCompile() error = %v", err)
	}
	if !result.HasTag("span") {
		t.Error("expected highlighted spans")
	}
	if !result.TextContains("a < b && c") {
		t.Errorf("Text = %q, want decoded source", result.Text)
	}
}

func TestCompileMarkdown(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   any
	}{
		{
			name:   "single block",
			source: "a &lt;b&gt; c",
			want:   []any{"p", map[string]any{}, "a <b> c"},
		},
		{
			name:   "emphasis",
			source: "some *words*",
			want:   []any{"p", map[string]any{}, "some ", []any{"em", map[string]any{}, "words"}},
		},
		{
			name:   "several blocks",
			source: "# Title\n\nbody",
			want: []any{
				[]any{"h1", map[string]any{}, "Title"},
				[]any{"p", map[string]any{}, "body"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := TestCompile(map[string]any{"markdown": exprSpec("doc")}, map[string]any{"doc": tt.source})
			if err != nil {
				t.Fatalf("TestCompile() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, result.JSONML); diff != "" {
				t.Errorf("JSONML mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type failingMarkdown struct{}

func (failingMarkdown) RenderMarkdown(string) (string, error) {
	return "", errors.New("broken")
}

func TestCompileMarkdownError(t *testing.T) {
	_, err := TestCompile(map[string]any{"markdown": "x"}, nil, WithMarkdown(failingMarkdown{}))
	if r, _ := ReasonOf(err); r != ReasonWidget {
		t.Errorf("TestCompile() error = %v, want widget_error", err)
	}
	if !errors.Is(err, ErrWidget) {
		t.Error("error should match ErrWidget")
	}
}
