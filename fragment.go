package hxview

import "fmt"

// FragmentKind tells the shape of a Fragment.
type FragmentKind uint8

const (
	// TextFragment is a string leaf.
	TextFragment FragmentKind = iota
	// ElementFragment is a tag with attributes and children.
	ElementFragment
	// ListFragment is an ordered sequence of fragments with no element of
	// its own. Renderers splice its children into the parent.
	ListFragment
)

// Attrs maps attribute names to values. Event attributes hold a *Handler.
type Attrs map[string]any

// Fragment is a compiled, renderer ready tree.
type Fragment struct {
	Kind     FragmentKind
	Text     string
	Tag      string
	Attrs    Attrs
	Children []Fragment
}

// TextLeaf returns a text fragment.
func TextLeaf(s string) Fragment {
	return Fragment{Kind: TextFragment, Text: s}
}

// Element returns an element fragment.
func Element(tag string, attrs Attrs, children ...Fragment) Fragment {
	return Fragment{Kind: ElementFragment, Tag: tag, Attrs: attrs, Children: children}
}

// ListOf returns a list fragment. It never returns nil children, so an empty
// list and a list built from no items compare equal.
func ListOf(items ...Fragment) Fragment {
	if items == nil {
		items = []Fragment{}
	}
	return Fragment{Kind: ListFragment, Children: items}
}

// emptyElement is what a ViewRef or Either renders when its condition
// selects nothing: a bare container that keeps the tree's shape.
func emptyElement() Fragment {
	return Element("div", nil)
}

// JSONML returns f in the array form [tag, attrs, ...children], with text
// leaves as strings and lists as plain arrays.
func (f Fragment) JSONML() any {
	switch f.Kind {
	case TextFragment:
		return f.Text
	case ElementFragment:
		attrs := make(map[string]any, len(f.Attrs))
		for k, v := range f.Attrs {
			attrs[k] = v
		}
		out := make([]any, 0, len(f.Children)+2)
		out = append(out, f.Tag, attrs)
		for _, c := range f.Children {
			out = append(out, c.JSONML())
		}
		return out
	default:
		out := make([]any, 0, len(f.Children))
		for _, c := range f.Children {
			out = append(out, c.JSONML())
		}
		return out
	}
}

// Handlers returns every event handler bound in f, depth first.
func (f Fragment) Handlers() []*Handler {
	var hs []*Handler
	f.walk(func(f Fragment) {
		for _, v := range f.Attrs {
			if h, ok := v.(*Handler); ok {
				hs = append(hs, h)
			}
		}
	})
	return hs
}

// TextContent concatenates all text leaves of f.
func (f Fragment) TextContent() string {
	var s string
	f.walk(func(f Fragment) {
		if f.Kind == TextFragment {
			s += f.Text
		}
	})
	return s
}

func (f Fragment) walk(fn func(Fragment)) {
	fn(f)
	for _, c := range f.Children {
		c.walk(fn)
	}
}

func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
