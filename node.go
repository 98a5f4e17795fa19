package hxview

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Expr is an expression-shaped fragment of a view spec. It is evaluated
// against a Context by an Encoder; the compiler never inspects it.
type Expr = any

// Node is one node of a view spec tree.
//
// Node is a closed sum type: the only implementations are the types in this
// file. Nodes are built with DecodeNode, which tests the recognized shapes in
// a fixed priority order:
//
//	List, ViewRef, Tag, Text, Loop, Either, Map, Timestamp, Code, Markdown
//
// The first matching shape wins. Anything else decodes to Unsupported, which
// compiles to a view_not_supported error.
type Node interface {
	// Raw returns the source value the node was decoded from, or nil for
	// nodes built in code.
	Raw() any
	node()
}

type source struct{ raw any }

func (s source) Raw() any { return s.raw }
func (source) node()      {}

// List compiles each item in order.
type List struct {
	source
	Items []Node
}

// ViewRef renders a named view, optionally gated by a condition.
type ViewRef struct {
	source
	Name      Expr
	Params    Expr
	Condition Expr
	// HasCondition distinguishes an absent condition (always true) from an
	// explicit null.
	HasCondition bool
}

// Tag is an element with attributes and children.
type Tag struct {
	source
	Tag      string
	Attrs    Expr
	Children Node
}

// Text is a leaf producing a string.
type Text struct {
	source
	Text Expr
}

// Loop renders the view named by With once per item of Loop.
type Loop struct {
	source
	With    Expr
	Loop    Expr
	Context Expr
}

// Either compiles Then when Cond is truthy and Else otherwise.
type Either struct {
	source
	Cond Expr
	Then Node
	Else Node
}

// Map is an interactive map widget.
type Map struct {
	source
	ID      Expr
	Center  Expr
	Zoom    any
	Style   string
	Markers Expr
}

// Timestamp is evaluated as a whole; the value becomes the fragment.
type Timestamp struct {
	source
	Expr Expr
}

// Code is a syntax highlighted source block.
type Code struct {
	source
	Source Expr
	Lang   Expr
}

// Markdown is markdown source rendered to markup.
type Markdown struct {
	source
	Markdown Expr
}

// Unsupported is any value matching no known shape.
type Unsupported struct {
	source
}

// DecodeNode converts a decoded JSON or YAML value into a Node.
func DecodeNode(raw any) Node {
	raw = normalize(raw)
	switch v := raw.(type) {
	case []any:
		items := make([]Node, len(v))
		for i, item := range v {
			items[i] = DecodeNode(item)
		}
		return &List{source: source{raw}, Items: items}
	case map[string]any:
		return decodeObject(v)
	}
	return &Unsupported{source{raw}}
}

func decodeObject(m map[string]any) Node {
	src := source{m}
	switch {
	case has(m, "name"):
		n := &ViewRef{source: src, Name: m["name"], Params: m["params"]}
		n.Condition, n.HasCondition = m["condition"]
		return n
	case has(m, "tag"):
		n := &Tag{source: src, Tag: fmt.Sprint(m["tag"]), Attrs: m["attrs"]}
		if c, ok := m["children"]; ok && c != nil {
			n.Children = DecodeNode(c)
		}
		return n
	case has(m, "text"):
		return &Text{source: src, Text: m["text"]}
	case has(m, "loop"):
		return &Loop{source: src, With: m["with"], Loop: m["loop"], Context: m["context"]}
	case has(m, "either"):
		n := &Either{source: src, Cond: m["either"]}
		if t, ok := m["then"]; ok && t != nil {
			n.Then = DecodeNode(t)
		}
		if e, ok := m["else"]; ok && e != nil {
			n.Else = DecodeNode(e)
		}
		return n
	case has(m, "map"):
		spec, _ := m["map"].(map[string]any)
		n := &Map{source: src}
		if spec != nil {
			n.ID = spec["id"]
			n.Center = spec["center"]
			n.Zoom = spec["zoom"]
			n.Markers = spec["markers"]
			if s, ok := spec["style"].(string); ok {
				n.Style = s
			}
		}
		return n
	case has(m, "timestamp"):
		return &Timestamp{source: src, Expr: m}
	case has(m, "code"):
		spec, _ := m["code"].(map[string]any)
		n := &Code{source: src}
		if spec != nil {
			n.Source = spec["source"]
			n.Lang = spec["lang"]
		}
		return n
	case has(m, "markdown"):
		return &Markdown{source: src, Markdown: m["markdown"]}
	}
	return &Unsupported{src}
}

func has(m map[string]any, key string) bool {
	v, ok := m[key]
	return ok && v != nil
}

// ParseNodeJSON decodes a JSON document into a Node.
func ParseNodeJSON(data []byte) (Node, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	return DecodeNode(raw), nil
}

// ParseNodeYAML decodes a YAML document into a Node.
func ParseNodeYAML(data []byte) (Node, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	return DecodeNode(raw), nil
}

// normalize rewrites map[any]any values (as produced by some decoders) into
// map[string]any, recursively.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	}
	return v
}

// specOf returns the value error records carry for n.
func specOf(n Node) any {
	if n == nil {
		return nil
	}
	if raw := n.Raw(); raw != nil {
		return raw
	}
	return n
}
