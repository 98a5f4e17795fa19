package render

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/a-h/templ"
	"github.com/pthm/hxview"
)

// HandlerRef identifies a bound handler of one render of a Document. It is
// sealed into the token the browser posts back.
type HandlerRef struct {
	Generation uint64 `msgpack:"g"`
	ID         uint32 `msgpack:"i"`
}

// WireAttrs builds the HTMX attributes delivering DOM events to the event
// endpoint at path. The response replaces target using swap.
//
// tokens maps DOM event names (click, keyup, ...) to handler tokens. All
// events of an element share one hx-post; the token for the event that fired
// is picked in the browser from event.type, together with the event key and
// the element value:
//
//	hx-post="/_e" hx-trigger="click" hx-target="#root" hx-swap="innerHTML"
//	hx-vals="js:{p: {&#34;click&#34;:&#34;...&#34;}[event.type], ...}"
func WireAttrs(path, target string, swap SwapMode, tokens map[string]string) templ.Attributes {
	events := make([]string, 0, len(tokens))
	for ev := range tokens {
		events = append(events, ev)
	}
	sort.Strings(events)

	// json.Marshal escapes <, > and &, which keeps the literal inert.
	data, _ := json.Marshal(tokens)
	vals := "js:{p: " + string(data) + "[event.type], type: event.type, " +
		"key: event.key || '', value: this.value === undefined ? '' : this.value}"

	return templ.Attributes{
		"hx-post":    path,
		"hx-trigger": strings.Join(events, ", "),
		"hx-vals":    vals,
		"hx-target":  "#" + target,
		"hx-swap":    string(swap),
	}
}

// wiring registers the handlers of one render pass.
type wiring struct {
	doc        *Document
	generation uint64
	handlers   map[uint32]*hxview.Handler
}

func (w *wiring) Wire(handlers map[string]*hxview.Handler) (templ.Attributes, error) {
	attrs := make([]string, 0, len(handlers))
	for a := range handlers {
		attrs = append(attrs, a)
	}
	sort.Strings(attrs)

	tokens := make(map[string]string, len(handlers))
	for _, a := range attrs {
		id := uint32(len(w.handlers) + 1)
		w.handlers[id] = handlers[a]
		tok, err := w.doc.enc.Encode(HandlerRef{Generation: w.generation, ID: id}, w.doc.opts.sensitive)
		if err != nil {
			return nil, err
		}
		tokens[hxview.EventName(a)] = tok
	}
	return WireAttrs(w.doc.opts.eventPath, w.doc.opts.rootID, w.doc.opts.swap, tokens), nil
}
