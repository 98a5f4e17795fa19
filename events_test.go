package hxview

import (
	"bytes"
	"encoding/json"
	"log"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEventName(t *testing.T) {
	tests := []struct {
		attr string
		want string
	}{
		{"onClick", "click"},
		{"onKeyUp", "keyup"},
		{"oninput", "input"},
	}
	for _, tt := range tests {
		if got := EventName(tt.attr); got != tt.want {
			t.Errorf("EventName(%q) = %q, want %q", tt.attr, got, tt.want)
		}
	}
	if IsEventAttr("class") || !IsEventAttr("onClick") {
		t.Error("IsEventAttr() misclassified attributes")
	}
}

func TestHandlerFire(t *testing.T) {
	updater := &RecordingUpdater{}
	result, err := TestCompile(map[string]any{
		"tag":   "button",
		"attrs": map[string]any{"onClick": "save"},
	}, nil, WithUpdater(updater))
	if err != nil {
		t.Fatalf("TestCompile() error = %v", err)
	}

	h := result.Handler("onClick")
	if h == nil {
		t.Fatal("onClick handler not bound")
	}
	if len(updater.Messages()) != 0 {
		t.Fatal("compiling should not send messages")
	}

	h.Fire(Event{Type: "click"})
	want := []Message{{Effect: "test", Event: "save"}}
	if diff := cmp.Diff(want, updater.Messages()); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestHandlerValue(t *testing.T) {
	files := []File{{Name: "a.txt", Size: 3}}

	tests := []struct {
		name   string
		target Target
		want   any
	}{
		{"trimmed", Target{Value: "  hello "}, "hello "},
		{"blank", Target{Value: "   "}, nil},
		{"empty", Target{Value: ""}, nil},
		{"no value", Target{}, nil},
		{"files win", Target{Value: "x", Files: files}, files},
		{"number", Target{Value: 4.0}, 4.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updater := &RecordingUpdater{}
			result, err := TestCompile(map[string]any{
				"tag":   "input",
				"attrs": map[string]any{"onInput": "changed"},
			}, nil, WithUpdater(updater))
			if err != nil {
				t.Fatalf("TestCompile() error = %v", err)
			}
			result.Handler("onInput").Fire(Event{Type: "input", Target: tt.target})

			msgs := updater.Messages()
			if len(msgs) != 1 {
				t.Fatalf("got %d messages, want 1", len(msgs))
			}
			if diff := cmp.Diff(tt.want, msgs[0].Value); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandlerContext(t *testing.T) {
	updater := &RecordingUpdater{}
	reg := NewRegistry(View{Name: "row", Node: DecodeNode(map[string]any{
		"tag": "li",
		"attrs": map[string]any{
			"onKeyDown": exprSpec("event.key == 'Enter' ? 'submit:' + string(index) : 'type'"),
		},
	})})
	node := DecodeNode(map[string]any{"with": "row", "loop": []any{"a", "b"}})

	result, err := TestCompileView(reg, node, nil, WithUpdater(updater))
	if err != nil {
		t.Fatalf("TestCompileView() error = %v", err)
	}
	hs := result.Fragment.Handlers()
	if len(hs) != 2 {
		t.Fatalf("got %d handlers, want 2", len(hs))
	}
	hs[1].Fire(Event{Type: "keydown", Key: "Enter"})
	hs[0].Fire(Event{Type: "keydown", Key: "a"})

	want := []Message{
		{Effect: "test", Event: "submit:1"},
		{Effect: "test", Event: "type"},
	}
	if diff := cmp.Diff(want, updater.Messages()); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestHandlerNotEvaluatedAtCompile(t *testing.T) {
	// A broken handler expression compiles; it only fails when fired.
	var logs bytes.Buffer
	updater := &RecordingUpdater{}
	result, err := TestCompile(map[string]any{
		"tag":   "button",
		"attrs": map[string]any{"onClick": exprSpec("1 +")},
	}, nil, WithUpdater(updater), WithLogger(log.New(&logs, "", 0)))
	if err != nil {
		t.Fatalf("TestCompile() error = %v", err)
	}

	result.Handler("onClick").Fire(Event{Type: "click"})
	if n := len(updater.Messages()); n != 0 {
		t.Errorf("got %d messages, want none", n)
	}
	if !strings.Contains(logs.String(), "onClick") {
		t.Errorf("log = %q, want handler failure", logs.String())
	}
}

func TestHandlerMarshalJSON(t *testing.T) {
	result, err := TestCompile(map[string]any{
		"tag":   "button",
		"attrs": map[string]any{"onClick": "save"},
	}, nil)
	if err != nil {
		t.Fatalf("TestCompile() error = %v", err)
	}
	b, err := json.Marshal(result.JSONML)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	want := `["button",{"onClick":{"handler":"save"}}]`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}
}
