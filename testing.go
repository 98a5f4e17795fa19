package hxview

import (
	"context"
	"strings"
	"sync"
)

// TestResult holds the result of compiling a spec for testing.
//
// Provides convenience methods for asserting on the fragment tree, the
// handlers bound in it and the widget work it deferred.
type TestResult struct {
	Fragment Fragment
	JSONML   any
	Text     string

	queue *TaskQueue
}

// TestCompile decodes spec and compiles it against model.
//
// Use this for unit tests of view specs that need no registry. Deferred
// widget tasks are queued on the result rather than run; call
// RunDeferred to run them.
//
//	result, err := hxview.TestCompile(map[string]any{
//	    "tag": "p", "children": map[string]any{"text": map[string]any{"expr": "title"}},
//	}, map[string]any{"title": "hello"})
//	if !result.TextContains("hello") {
//	    t.Fatal("missing title")
//	}
func TestCompile(spec any, model map[string]any, opts ...Option) (*TestResult, error) {
	return TestCompileView(nil, DecodeNode(spec), model, opts...)
}

// TestCompileRegistry compiles the view registered under name.
func TestCompileRegistry(reg Registry, name string, model map[string]any, opts ...Option) (*TestResult, error) {
	v, ok := reg.Lookup(name)
	if !ok {
		return nil, newError(name, Context(model), ReasonNoSuchView, nil)
	}
	return TestCompileView(reg, v.Node, model, opts...)
}

// TestCompileView compiles node with reg available for view references.
func TestCompileView(reg Registry, node Node, model map[string]any, opts ...Option) (*TestResult, error) {
	q := &TaskQueue{}
	o := buildOptions(append([]Option{WithScheduler(q)}, opts...))
	c := newCompiler("test", o)
	f, err := c.Compile(reg, node, c.Context(model))
	if err != nil {
		return nil, err
	}
	return &TestResult{
		Fragment: f,
		JSONML:   f.JSONML(),
		Text:     f.TextContent(),
		queue:    q,
	}, nil
}

// TextContains checks if the text content contains a substring.
func (r *TestResult) TextContains(substr string) bool {
	return strings.Contains(r.Text, substr)
}

// HasTag checks if an element with the given tag appears in the tree.
func (r *TestResult) HasTag(tag string) bool {
	found := false
	r.Fragment.walk(func(f Fragment) {
		if f.Kind == ElementFragment && f.Tag == tag {
			found = true
		}
	})
	return found
}

// Handler returns the first handler bound to attr, or nil.
func (r *TestResult) Handler(attr string) *Handler {
	for _, h := range r.Fragment.Handlers() {
		if h.Attr == attr {
			return h
		}
	}
	return nil
}

// Deferred returns the number of widget tasks waiting to run.
func (r *TestResult) Deferred() int {
	return r.queue.Len()
}

// RunDeferred runs the deferred widget tasks.
func (r *TestResult) RunDeferred() {
	r.queue.Drain()
}

// RecordingUpdater is an Updater keeping every message it receives.
type RecordingUpdater struct {
	mu       sync.Mutex
	messages []Message
}

// Update implements Updater.
func (u *RecordingUpdater) Update(msg Message) {
	u.mu.Lock()
	u.messages = append(u.messages, msg)
	u.mu.Unlock()
}

// Messages returns a copy of the received messages.
func (u *RecordingUpdater) Messages() []Message {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]Message(nil), u.messages...)
}

// RecordingPatcher is a Patcher keeping every fragment it is given. Err, if
// set, is returned from Patch instead.
type RecordingPatcher struct {
	mu        sync.Mutex
	Err       error
	Fragments []Fragment
	// OnPatch, if set, is called after a fragment is recorded.
	OnPatch func(Fragment)
}

// Patch implements Patcher.
func (p *RecordingPatcher) Patch(_ context.Context, f Fragment) error {
	p.mu.Lock()
	if p.Err != nil {
		p.mu.Unlock()
		return p.Err
	}
	p.Fragments = append(p.Fragments, f)
	hook := p.OnPatch
	p.mu.Unlock()
	if hook != nil {
		hook(f)
	}
	return nil
}

// Len returns the number of patches applied.
func (p *RecordingPatcher) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Fragments)
}
