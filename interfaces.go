package hxview

import (
	"context"

	"github.com/pthm/hxview/lib/markup"
)

// Encoder evaluates expression-shaped spec fragments against a Context.
//
// Encode must be total and free of side effects visible to the compiler: it
// returns either a value or an error. The default implementation is
// ExprEncoder.
type Encoder interface {
	Encode(expr Expr, ctx Context) (any, error)
}

// EncoderFunc adapts a function to the Encoder interface.
type EncoderFunc func(expr Expr, ctx Context) (any, error)

// Encode calls f(expr, ctx).
func (f EncoderFunc) Encode(expr Expr, ctx Context) (any, error) {
	return f(expr, ctx)
}

// Updater receives messages produced by event handlers. Update is fire and
// forget.
type Updater interface {
	Update(msg Message)
}

// UpdateFunc adapts a function to the Updater interface.
type UpdateFunc func(msg Message)

// Update calls f(msg).
func (f UpdateFunc) Update(msg Message) { f(msg) }

// Patcher applies a fragment tree to a live document. Diffing and
// reconciliation are entirely the patcher's concern.
//
// render.Document is the HTML implementation.
type Patcher interface {
	Patch(ctx context.Context, f Fragment) error
}

// PatchFunc adapts a function to the Patcher interface.
type PatchFunc func(ctx context.Context, f Fragment) error

// Patch calls f(ctx, frag).
func (f PatchFunc) Patch(ctx context.Context, frag Fragment) error {
	return f(ctx, frag)
}

// Scheduler runs tasks after the current render pass has completed. Tasks
// have no ordering guarantee relative to other deferred work and cannot be
// cancelled.
type Scheduler interface {
	Defer(task func())
}

// Highlighter turns source code into highlighted markup.
type Highlighter interface {
	Highlight(lang, source string) (string, error)
}

// MarkdownRenderer turns markdown into markup.
type MarkdownRenderer interface {
	RenderMarkdown(source string) (string, error)
}

// MarkupParser parses markup text into an element tree.
type MarkupParser interface {
	Parse(markup string) ([]*markup.Node, error)
}

// MapWidget constructs interactive map widgets. It is only ever called from
// a deferred task, once the placeholder element exists in the document.
type MapWidget interface {
	Create(cfg MapConfig) (MapInstance, error)
}

// MapInstance is a map created by a MapWidget.
type MapInstance interface {
	AddMarker(at LngLat) error
}
