// Package markup parses HTML produced by highlighters and markdown
// renderers into a small element tree.
//
// Unlike html.Parse, the parser does not build a full document (no implied
// html, head or body elements) and keeps text exactly as written, entities
// included. Callers decide which entities to decode; see UnescapeText.
package markup

import (
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// NodeType is the type of a Node.
type NodeType uint8

const (
	ElementNode NodeType = iota
	TextNode
)

// Attr is an element attribute.
type Attr struct {
	Key string
	Val string
}

// Node is an element or a text node.
type Node struct {
	Type     NodeType
	Tag      string
	Attrs    []Attr
	Children []*Node
	// Text is the raw text of a text node, entities not decoded.
	Text string
}

// voidElements never have children.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Parse parses a markup fragment into its top-level nodes.
//
// Comments and doctypes are dropped. End tags close the nearest open element
// of the same name; unmatched end tags are ignored and elements left open at
// the end of input are closed implicitly.
func Parse(s string) ([]*Node, error) {
	z := html.NewTokenizer(strings.NewReader(s))
	root := &Node{Type: ElementNode}
	stack := []*Node{root}

	for {
		tt := z.Next()
		top := stack[len(stack)-1]
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, err
			}
			return root.Children, nil
		case html.TextToken:
			top.Children = append(top.Children, &Node{Type: TextNode, Text: string(z.Raw())})
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			n := &Node{Type: ElementNode, Tag: tok.Data}
			for _, a := range tok.Attr {
				n.Attrs = append(n.Attrs, Attr{Key: a.Key, Val: a.Val})
			}
			top.Children = append(top.Children, n)
			if tt == html.StartTagToken && !voidElements[tok.Data] {
				stack = append(stack, n)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Tag == string(name) {
					stack = stack[:i]
					break
				}
			}
		}
	}
}

var (
	entityReplacer = strings.NewReplacer("&lt;", "<", "&gt;", ">")
	numericRef     = regexp.MustCompile(`&#(?:[xX]([0-9a-fA-F]+)|([0-9]+));`)
)

// UnescapeText decodes the entities text leaves may carry: &lt;, &gt;,
// numeric character references and, last, &amp;. Every occurrence is
// decoded. Other named entities are left as they are.
func UnescapeText(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	s = entityReplacer.Replace(s)
	s = numericRef.ReplaceAllStringFunc(s, func(ref string) string {
		m := numericRef.FindStringSubmatch(ref)
		var (
			n   uint64
			err error
		)
		if m[1] != "" {
			n, err = strconv.ParseUint(m[1], 16, 32)
		} else {
			n, err = strconv.ParseUint(m[2], 10, 32)
		}
		if err != nil || n > 0x10FFFF {
			return ref
		}
		return string(rune(n))
	})
	return strings.ReplaceAll(s, "&amp;", "&")
}
