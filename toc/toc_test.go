package toc

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var whitespaceExp = regexp.MustCompile(`\s`)

func assertHTMLSame(t *testing.T, expected, actual string) {
	t.Helper()
	assert.Equal(t, whitespaceExp.ReplaceAllString(expected, ""), whitespaceExp.ReplaceAllString(actual, ""))
}

const example = `
<h6>a <code>very</code> small title</h6>
<h1>Title</h1>
  <h2>Title</h2>
    <h4>Another title, <strong>yes</strong>!</h4>
    <h3>中文，标题 Title&amp;</h3>
      <p>a random paragraph...<br/></p>
      &amp; &#60;
      <!-- comment -->
<h1>Another-h1-1</h1>
  <h5>a very small title</h5>
`

func leaf(level int, id, text, inner string) *Node {
	return &Node{Level: level, ID: id, Text: text, InnerHTML: inner, Children: []*Node{}}
}

func TestEmptyInput(t *testing.T) {
	p := New()
	p.Feed("")
	assert.Empty(t, p.TOC(6, 6))
	assert.Equal(t, "", p.TOCHTML(6, 6))
	assert.Equal(t, "", p.HTML())
}

func TestPassThroughAndAnchors(t *testing.T) {
	p := New()
	p.Feed(`<a href="#">no-effect</a>`)
	assert.Equal(t, `<a href="#">no-effect</a>`, p.HTML())

	p.Feed(`<h1><strong>T</strong>itle</h1>`)
	assert.Equal(t, `<a href="#">no-effect</a><h1><a id="Title" href="#Title" class="anchor"></a><strong>T</strong>itle</h1>`, p.HTML())
}

func TestNonHeaderMarkupIsVerbatim(t *testing.T) {
	in := `<p class="x">a &amp; b<br/><img src="a.png" /></p><!-- note --><div>&#60;</div>`
	p := New()
	p.Feed(in)
	assert.Equal(t, in, p.HTML())
}

func TestTree(t *testing.T) {
	p := New()
	p.Feed(example)

	title := leaf(1, "Title", "Title", "Title")
	title1 := leaf(2, "Title_1", "Title", "Title")
	title1.Children = []*Node{
		leaf(4, "Another-title-yes", "Another title, yes!", "Another title, <strong>yes</strong>!"),
		leaf(3, "中文-标题-Title-amp", "中文，标题 Title&amp;", "中文，标题 Title&amp;"),
	}
	title.Children = []*Node{title1}
	another := leaf(1, "Another-h1-1", "Another-h1-1", "Another-h1-1")
	another.Children = []*Node{leaf(5, "a-very-small-title_1", "a very small title", "a very small title")}

	expected := []*Node{
		leaf(6, "a-very-small-title", "a very small title", "a <code>very</code> small title"),
		title,
		another,
	}

	got, err := json.Marshal(p.TOC(6, 6))
	require.NoError(t, err)
	want, err := json.Marshal(expected)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))

	assert.Contains(t, p.HTML(), `<h3><a id="中文-标题-Title-amp" href="#中文-标题-Title-amp" class="anchor"></a>中文，标题 Title&amp;</h3>`)
	assert.Contains(t, p.HTML(), `&amp; &#60;`)
	assert.Contains(t, p.HTML(), `<!-- comment -->`)
}

func TestTOCHTML(t *testing.T) {
	p := New()
	p.Feed(example)

	expected := `
<ul>
  <li><a href="#Title">Title</a>
    <ul>
      <li><a href="#Title_1">Title</a></li>
    </ul>
  </li>
  <li><a href="#Another-h1-1">Another-h1-1</a>
    <ul>
      <li><a href="#a-very-small-title_1">a very small title</a></li>
    </ul>
  </li>
</ul>`
	assertHTMLSame(t, expected, p.TOCHTML(2, 5))
}

func TestPruning(t *testing.T) {
	p := New()
	p.Feed("<h1>A</h1><h2>B</h2><h4>C</h4>")

	toc := p.TOC(1, 6)
	require.Len(t, toc, 1)
	assert.Equal(t, "A", toc[0].ID)
	assert.Empty(t, toc[0].Children)

	toc = p.TOC(0, 6)
	require.Len(t, toc, 1)
	require.Len(t, toc[0].Children, 1)
	require.Len(t, toc[0].Children[0].Children, 1)

	toc = p.TOC(6, 3)
	require.Len(t, toc[0].Children, 1)
	assert.Empty(t, toc[0].Children[0].Children)

	// Out of range arguments are clamped.
	assert.Equal(t, p.TOC(6, 6), p.TOC(100, 100))
	toc = p.TOC(-3, 0)
	require.Len(t, toc, 1)
	assert.Empty(t, toc[0].Children)
}

func TestCollisionsAcrossLevels(t *testing.T) {
	p := New()
	p.Feed("<h2>Title</h2><h3>Title</h3><h1>Title</h1>")
	toc := p.TOC(6, 6)
	require.Len(t, toc, 2)
	assert.Equal(t, "Title", toc[0].ID)
	assert.Equal(t, "Title_1", toc[0].Children[0].ID)
	assert.Equal(t, "Title_2", toc[1].ID)
}

func TestMalformedMarkup(t *testing.T) {
	p := New()
	p.Feed("<p>before</h2><h2>Open <em>header")
	assert.Equal(t, "<p>before</h2><h2>Open <em>header", p.HTML())
	toc := p.TOC(6, 6)
	require.Len(t, toc, 1)
	assert.Equal(t, 2, toc[0].Level)
}
