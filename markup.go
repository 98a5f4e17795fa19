package hxview

import (
	"strings"

	"github.com/pthm/hxview/lib/markup"
)

// HTMLParser is the default MarkupParser, backed by lib/markup.
type HTMLParser struct{}

// Parse implements MarkupParser.
func (HTMLParser) Parse(s string) ([]*markup.Node, error) {
	return markup.Parse(s)
}

// FromMarkup converts parsed markup into fragments. Text leaves have their
// entities decoded with markup.UnescapeText.
func FromMarkup(nodes []*markup.Node) []Fragment {
	out := make([]Fragment, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, fromMarkupNode(n))
	}
	return out
}

func fromMarkupNode(n *markup.Node) Fragment {
	if n.Type == markup.TextNode {
		return TextLeaf(markup.UnescapeText(n.Text))
	}
	attrs := make(Attrs, len(n.Attrs))
	for _, a := range n.Attrs {
		attrs[a.Key] = a.Val
	}
	return Element(n.Tag, attrs, FromMarkup(n.Children)...)
}

// blocks drops whitespace-only text between top-level blocks.
func blocks(nodes []*markup.Node) []*markup.Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if n.Type == markup.TextNode && strings.TrimSpace(n.Text) == "" {
			continue
		}
		out = append(out, n)
	}
	return out
}
