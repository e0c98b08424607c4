// Package markdown renders Markdown to HTML with goldmark and exposes the
// result as a templ component.
package markdown

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/a-h/templ"
	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Heading ids are left to the TOC extractor, so auto heading ids stay off.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
		renderer.WithNodeRenderers(util.Prioritized(&codeBlockRenderer{}, 100)),
	),
)

// Markdown returns a templ.Component that renders content as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := Render(&buf, content); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Render writes the HTML representation of src to w.
func Render(w io.Writer, src string) error {
	return md.Convert([]byte(src), w)
}

// codeStyle is the chroma style behind CodeCSS.
var codeStyle = styles.Get("github")

// codeFormatter emits class-based spans; the page carries CodeCSS.
var codeFormatter = chromahtml.New(chromahtml.WithClasses(true), chromahtml.PreventSurroundingPre(true))

// CodeCSS returns the stylesheet for highlighted code blocks.
var CodeCSS = sync.OnceValue(func() string {
	var buf bytes.Buffer
	if err := codeFormatter.WriteCSS(&buf, codeStyle); err != nil {
		return ""
	}
	return buf.String()
})

// highlight writes code tokenized for lang. It reports false when lang has
// no lexer, leaving w untouched.
func highlight(w io.Writer, lang, code string) bool {
	lexer := lexers.Get(lang)
	if lexer == nil {
		return false
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return false
	}
	var buf bytes.Buffer
	if err := codeFormatter.Format(&buf, codeStyle, iterator); err != nil {
		return false
	}
	_, _ = w.Write(buf.Bytes())
	return true
}

// codeBlockRenderer renders fenced code with a language badge. Code with a
// known language is highlighted with chroma; the language-xxx class stays
// for client-side tooling.
type codeBlockRenderer struct{}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	lang := string(util.EscapeHTML(n.Language(source)))
	if lang != "" {
		_, _ = w.WriteString(`<div class="code-block-wrapper"><span class="code-lang code-lang-` + lang + `">` + lang + `</span>`)
		_, _ = w.WriteString(`<pre class="code-block"><code class="language-` + lang + `">`)
	} else {
		_, _ = w.WriteString(`<pre class="code-block"><code>`)
	}
	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}
	if lang == "" || !highlight(w, string(n.Language(source)), code.String()) {
		html.DefaultWriter.RawWrite(w, code.Bytes())
	}
	_, _ = w.WriteString("</code></pre>")
	if lang != "" {
		_, _ = w.WriteString("</div>")
	}
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}
