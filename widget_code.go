package hxview

import (
	"encoding/json"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// ChromaHighlighter highlights code with chroma, emitting class based spans
// without a surrounding pre element.
type ChromaHighlighter struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

// NewChromaHighlighter creates the default Highlighter.
func NewChromaHighlighter() *ChromaHighlighter {
	return &ChromaHighlighter{
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
		style: styles.Fallback,
	}
}

// Highlight implements Highlighter. Unknown languages fall back to plain
// text.
func (h *ChromaHighlighter) Highlight(lang, source string) (string, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := h.formatter.Format(&sb, h.style, it); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// compileCode renders pre.language-<lang> > code.language-<lang> around the
// highlighted source. JSON sources that are already structured values are
// indented first.
func (c *Compiler) compileCode(n *Code, ctx Context) (Fragment, *CompileError) {
	source, err := c.encode(n, n.Source, ctx)
	if err != nil {
		return Fragment{}, err
	}
	langValue, err := c.encode(n, n.Lang, ctx)
	if err != nil {
		return Fragment{}, err
	}
	lang := textOf(langValue)
	class := "language-" + lang

	var text string
	if s, ok := source.(string); ok {
		text = s
	} else if lang == "json" {
		b, jerr := json.MarshalIndent(source, "", "  ")
		if jerr != nil {
			return Fragment{}, newError(specOf(n), ctx, ReasonWidget, jerr)
		}
		text = string(b)
	} else {
		text = textOf(source)
	}

	highlighted, herr := c.highlighter.Highlight(lang, text)
	if herr != nil {
		return Fragment{}, newError(specOf(n), ctx, ReasonWidget, herr)
	}
	nodes, perr := c.markup.Parse(highlighted)
	if perr != nil {
		return Fragment{}, newError(specOf(n), ctx, ReasonWidget, perr)
	}
	return Element("pre", Attrs{"class": class},
		Element("code", Attrs{"class": class}, FromMarkup(nodes)...),
	), nil
}
