package hxview

import (
	"encoding/json"
	"log"
	"strings"
	"unicode"
)

// EventPrefix marks attributes that are event handlers rather than values.
const EventPrefix = "on"

// IsEventAttr reports whether the attribute name denotes an event handler.
func IsEventAttr(name string) bool {
	return strings.HasPrefix(name, EventPrefix)
}

// EventName returns the DOM event name for a handler attribute, e.g.
// "onClick" -> "click" and "onKeyUp" -> "keyup".
func EventName(attr string) string {
	return strings.ToLower(strings.TrimPrefix(attr, EventPrefix))
}

// Message is what a fired handler sends to the Updater.
type Message struct {
	Effect string `json:"effect" msgpack:"effect"`
	Event  any    `json:"event" msgpack:"event"`
	Value  any    `json:"value,omitempty" msgpack:"value,omitempty"`
}

// File describes a file selected in a file input.
type File struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
}

// Target is the element an event was dispatched on.
type Target struct {
	Files []File
	Value any
}

// Event is a runtime event delivered to a Handler.
type Event struct {
	Type   string
	Key    string
	Target Target
}

// props returns the bindings an event adds to the handler's context.
func (ev Event) props() map[string]any {
	return map[string]any{
		"event": map[string]any{
			"key": ev.Key,
		},
	}
}

// value extracts the message value from the target: the file list when
// present, else the element value. Strings lose leading whitespace and an
// empty result counts as no value.
func (t Target) value() any {
	var v any = t.Value
	if t.Files != nil {
		v = t.Files
	}
	if s, ok := v.(string); ok {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		if s == "" {
			return nil
		}
		return s
	}
	return v
}

// Handler is the value a Tag's event attribute compiles to.
//
// The handler expression is not evaluated at compile time. Each Fire builds
// a fresh context from the compile-time context and the event, evaluates the
// expression to get the event name, and sends a Message to the Updater.
type Handler struct {
	Attr    string
	Spec    Expr
	Context Context

	effect  string
	encoder Encoder
	updater Updater
	logger  *log.Logger
}

func (c *Compiler) bind(attr string, spec Expr, ctx Context) *Handler {
	return &Handler{
		Attr:    attr,
		Spec:    spec,
		Context: ctx,
		effect:  c.name,
		encoder: c.encoder,
		updater: c.updater,
		logger:  c.logger,
	}
}

// Effect returns the component name the handler reports as.
func (h *Handler) Effect() string {
	return h.effect
}

// Fire dispatches ev. Evaluation errors are logged and nothing is sent.
func (h *Handler) Fire(ev Event) {
	ctx := h.Context.With(ev.props())
	name, err := h.encoder.Encode(h.Spec, ctx)
	if err != nil {
		h.logger.Printf("hxview: error encoding handler event %s (%v): %v", h.Attr, h.Spec, err)
		return
	}
	h.updater.Update(Message{
		Effect: h.effect,
		Event:  name,
		Value:  ev.Target.value(),
	})
}

// MarshalJSON writes the handler as its unevaluated expression.
func (h *Handler) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"handler": h.Spec})
}
