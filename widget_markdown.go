package hxview

import (
	"bytes"

	"github.com/yuin/goldmark"
)

// GoldmarkRenderer converts CommonMark to HTML with goldmark. Raw HTML in
// the source is omitted, goldmark's default.
type GoldmarkRenderer struct {
	md goldmark.Markdown
}

// NewGoldmarkRenderer creates the default MarkdownRenderer.
func NewGoldmarkRenderer() *GoldmarkRenderer {
	return &GoldmarkRenderer{md: goldmark.New()}
}

// RenderMarkdown implements MarkdownRenderer.
func (r *GoldmarkRenderer) RenderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// compileMarkdown renders a single block as its element and several blocks
// as a list fragment.
func (c *Compiler) compileMarkdown(n *Markdown, ctx Context) (Fragment, *CompileError) {
	v, err := c.encode(n, n.Markdown, ctx)
	if err != nil {
		return Fragment{}, err
	}
	out, merr := c.markdown.RenderMarkdown(textOf(v))
	if merr != nil {
		return Fragment{}, newError(specOf(n), ctx, ReasonWidget, merr)
	}
	nodes, perr := c.markup.Parse(out)
	if perr != nil {
		return Fragment{}, newError(specOf(n), ctx, ReasonWidget, perr)
	}
	frags := FromMarkup(blocks(nodes))
	if len(frags) == 1 {
		return frags[0], nil
	}
	return ListOf(frags...), nil
}
