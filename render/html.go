package render

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"

	"github.com/a-h/templ"
	"github.com/pthm/hxview"
)

// Wirer turns an element's event handlers into the attributes that deliver
// browser events back to the server.
//
// Document implements Wirer. Rendering without one drops handlers.
type Wirer interface {
	Wire(handlers map[string]*hxview.Handler) (templ.Attributes, error)
}

var (
	tagName  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9:-]*$`)
	attrName = regexp.MustCompile(`^[^\s"'<>/=]+$`)
)

// voidElements are written without children or an end tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Component returns a templ component writing f as HTML.
//
// Text is escaped, list fragments are spliced into their parent, nil and
// false attributes are omitted and true attributes are written bare.
//
//	render.Render(w, r, render.Component(frag, nil))
func Component(f hxview.Fragment, wire Wirer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return writeFragment(w, f, wire)
	})
}

func writeFragment(w io.Writer, f hxview.Fragment, wire Wirer) error {
	switch f.Kind {
	case hxview.TextFragment:
		_, err := io.WriteString(w, templ.EscapeString(f.Text))
		return err
	case hxview.ListFragment:
		for _, c := range f.Children {
			if err := writeFragment(w, c, wire); err != nil {
				return err
			}
		}
		return nil
	}

	if !tagName.MatchString(f.Tag) {
		return fmt.Errorf("%w: tag %q", ErrInvalidName, f.Tag)
	}
	if _, err := io.WriteString(w, "<"+f.Tag); err != nil {
		return err
	}
	if err := writeAttrs(w, f.Attrs, wire); err != nil {
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	if voidElements[f.Tag] {
		return nil
	}
	for _, c := range f.Children {
		if err := writeFragment(w, c, wire); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</"+f.Tag+">")
	return err
}

func writeAttrs(w io.Writer, attrs hxview.Attrs, wire Wirer) error {
	plain := make(map[string]any, len(attrs))
	var handlers map[string]*hxview.Handler
	for k, v := range attrs {
		if h, ok := v.(*hxview.Handler); ok {
			if handlers == nil {
				handlers = make(map[string]*hxview.Handler)
			}
			handlers[k] = h
			continue
		}
		plain[k] = v
	}
	if len(handlers) > 0 && wire != nil {
		wired, err := wire.Wire(handlers)
		if err != nil {
			return err
		}
		for k, v := range wired {
			plain[k] = v
		}
	}

	keys := make([]string, 0, len(plain))
	for k := range plain {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !attrName.MatchString(k) {
			return fmt.Errorf("%w: attribute %q", ErrInvalidName, k)
		}
		val, bare, ok := attrValue(plain[k])
		if !ok {
			continue
		}
		s := " " + k
		if !bare {
			s += `="` + templ.EscapeString(val) + `"`
		}
		if _, err := io.WriteString(w, s); err != nil {
			return err
		}
	}
	return nil
}

// attrValue formats an attribute value. Maps render as CSS declarations so
// that style may be given as an object.
func attrValue(v any) (val string, bare, ok bool) {
	switch t := v.(type) {
	case nil:
		return "", false, false
	case bool:
		return "", true, t
	case string:
		return t, false, true
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var s string
		for _, k := range keys {
			s += fmt.Sprintf("%s: %v; ", k, t[k])
		}
		return s[:max(len(s)-1, 0)], false, true
	}
	return fmt.Sprint(v), false, true
}
