package hxview

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// View is a named view spec.
type View struct {
	Name string
	Node Node
}

// Registry maps view names to views. It is read-only during a compile pass.
type Registry map[string]View

// NewRegistry creates a registry holding views.
// Panics if two views share a name.
func NewRegistry(views ...View) Registry {
	reg := make(Registry, len(views))
	for _, v := range views {
		if _, exists := reg[v.Name]; exists {
			panic(fmt.Sprintf("hxview: duplicate view %q", v.Name))
		}
		reg[v.Name] = v
	}
	return reg
}

// Add registers node under name, replacing any previous view.
func (reg Registry) Add(name string, node Node) {
	reg[name] = View{Name: name, Node: node}
}

// Lookup returns the view registered under name.
func (reg Registry) Lookup(name string) (View, bool) {
	v, ok := reg[name]
	return v, ok
}

// DecodeRegistry builds a registry from a decoded document mapping view
// names to entries of the form {view: <node>}. An entry without a view key
// is taken to be the node itself.
func DecodeRegistry(raw map[string]any) Registry {
	reg := make(Registry, len(raw))
	for name, entry := range raw {
		if m := asMap(normalize(entry)); m != nil {
			if v, ok := m["view"]; ok {
				entry = v
			}
		}
		reg.Add(name, DecodeNode(entry))
	}
	return reg
}

// LoadRegistryJSON decodes a JSON views document.
func LoadRegistryJSON(data []byte) (Registry, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	return DecodeRegistry(raw), nil
}

// LoadRegistryYAML decodes a YAML views document.
func LoadRegistryYAML(data []byte) (Registry, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	return DecodeRegistry(raw), nil
}

// Resolve turns a view name spec into the named view's node.
//
// A string is looked up in reg. A map or slice is an expression: it is
// evaluated against ctx and the result resolved again, which lets a view
// pick its layout from model data. Any other value is rejected.
func (c *Compiler) Resolve(reg Registry, nameSpec Expr, ctx Context) (Node, error) {
	n, err := c.resolve(reg, nameSpec, ctx, false)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// resolve evaluates at most once: an expression evaluating to another
// expression is unsupported rather than evaluated again.
func (c *Compiler) resolve(reg Registry, nameSpec Expr, ctx Context, evaluated bool) (Node, *CompileError) {
	switch spec := nameSpec.(type) {
	case string:
		v, ok := reg.Lookup(spec)
		if !ok {
			return nil, newError(spec, ctx, ReasonNoSuchView, nil)
		}
		return v.Node, nil
	case map[string]any, []any:
		if evaluated {
			break
		}
		value, err := c.encoder.Encode(spec, ctx)
		if err != nil {
			return nil, newError(spec, ctx, ReasonViewNameEncode, err)
		}
		return c.resolve(reg, value, ctx, true)
	}
	return nil, newError(nameSpec, ctx, ReasonUnsupportedViewName, nil)
}
