package hxview

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
)

func driverRegistry() Registry {
	return NewRegistry(
		View{Name: "root", Node: DecodeNode(map[string]any{
			"tag":      "h1",
			"children": map[string]any{"text": exprSpec("title")},
		})},
		View{Name: "broken", Node: DecodeNode(map[string]any{"name": "missing"})},
	)
}

func TestDriverRender(t *testing.T) {
	p := &RecordingPatcher{}
	d := NewDriver("app", p)
	reg := driverRegistry()
	root, _ := reg.Lookup("root")

	if err := d.Render(context.Background(), reg, &root, map[string]any{"title": "one"}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	// A nil view reuses the stored one.
	if err := d.Render(context.Background(), reg, nil, map[string]any{"title": "two"}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if p.Len() != 2 {
		t.Fatalf("patched %d times, want 2", p.Len())
	}
	if got := p.Fragments[1].TextContent(); got != "two" {
		t.Errorf("second patch text = %q, want two", got)
	}
	if d.View().Name != "root" {
		t.Errorf("View() = %v, want root", d.View())
	}
}

func TestDriverRenderNoView(t *testing.T) {
	d := NewDriver("app", &RecordingPatcher{})
	if err := d.Render(context.Background(), nil, nil, nil); !errors.Is(err, ErrNoView) {
		t.Errorf("Render() error = %v, want ErrNoView", err)
	}
}

func TestDriverCompileFailureSkipsPatch(t *testing.T) {
	var logs bytes.Buffer
	p := &RecordingPatcher{}
	d := NewDriver("app", p, WithLogger(log.New(&logs, "", 0)))
	reg := driverRegistry()
	broken, _ := reg.Lookup("broken")

	err := d.Render(context.Background(), reg, &broken, nil)
	if !IsNoSuchView(err) {
		t.Fatalf("Render() error = %v, want no_such_view", err)
	}
	if p.Len() != 0 {
		t.Error("a failed compile should not patch")
	}
	if !strings.Contains(logs.String(), "broken") {
		t.Errorf("log = %q, want the failing view name", logs.String())
	}
	// The failing view is still the stored one.
	if d.View().Name != "broken" {
		t.Errorf("View() = %v, want broken", d.View())
	}
}

func TestDriverPatchError(t *testing.T) {
	boom := errors.New("boom")
	d := NewDriver("app", &RecordingPatcher{Err: boom})
	reg := driverRegistry()
	root, _ := reg.Lookup("root")
	if err := d.Render(context.Background(), reg, &root, nil); !errors.Is(err, boom) {
		t.Errorf("Render() error = %v, want boom", err)
	}
}

func TestDriverDefersUntilAfterPatch(t *testing.T) {
	var order []string
	p := &RecordingPatcher{OnPatch: func(Fragment) { order = append(order, "patch") }}
	maps := &orderedMaps{order: &order}
	d := NewDriver("app", p, WithMapWidget(maps))

	node := DecodeNode(map[string]any{"map": map[string]any{"id": "m"}})
	if err := d.Render(context.Background(), nil, &View{Name: "map", Node: node}, nil); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Join(order, ",") != "patch,create" {
		t.Errorf("order = %v, want patch before create", order)
	}
}

func TestDriverDeferredRunOnFailure(t *testing.T) {
	var order []string
	maps := &orderedMaps{order: &order}
	d := NewDriver("app", &RecordingPatcher{}, WithMapWidget(maps))

	node := DecodeNode([]any{
		map[string]any{"map": map[string]any{"id": "m"}},
		map[string]any{"bogus": true},
	})
	if err := d.Render(context.Background(), nil, &View{Name: "bad", Node: node}, nil); err == nil {
		t.Fatal("Render() should fail")
	}
	if strings.Join(order, ",") != "create" {
		t.Errorf("order = %v, want the queued task to run", order)
	}
}

type orderedMaps struct {
	order *[]string
}

func (m *orderedMaps) Create(MapConfig) (MapInstance, error) {
	*m.order = append(*m.order, "create")
	return &fakeMaps{}, nil
}

func TestDriverTelemetry(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want bool
	}{
		{"off", nil, false},
		{"option", []Option{WithTelemetry(true)}, true},
		{"setting", []Option{WithSettings(map[string]any{"telemetry": true})}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			opts := append([]Option{WithLogger(log.New(&logs, "", 0))}, tt.opts...)
			d := NewDriver("todo", &RecordingPatcher{}, opts...)
			reg := driverRegistry()
			root, _ := reg.Lookup("root")
			if err := d.Render(context.Background(), reg, &root, nil); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			got := strings.Contains(logs.String(), "[todo][compile ")
			if got != tt.want {
				t.Errorf("telemetry logged = %v, want %v (%q)", got, tt.want, logs.String())
			}
		})
	}
}

func TestTaskQueueDrainsNested(t *testing.T) {
	var q TaskQueue
	var ran []int
	q.Defer(func() {
		ran = append(ran, 1)
		q.Defer(func() { ran = append(ran, 2) })
	})
	q.Drain()
	if len(ran) != 2 || q.Len() != 0 {
		t.Errorf("ran = %v, queued = %d", ran, q.Len())
	}
}

func TestTimed(t *testing.T) {
	v, d := Timed(func() int { return 7 })
	if v != 7 || d < 0 {
		t.Errorf("Timed() = %d, %v", v, d)
	}
}
