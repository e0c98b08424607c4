package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseParser(t *testing.T) {
	var p Base
	whole, err := p.ParseWhole("abc\n---more---\n\ndef")
	require.NoError(t, err)
	assert.Equal(t, "abc\n---more---\n\ndef", whole)

	preview, more, err := p.ParsePreview("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", preview)
	assert.False(t, more)
}

func TestTxtParser(t *testing.T) {
	p := NewTxt()
	raw := "abc\n---more---\n\ndef"

	preview, more, err := p.ParsePreview(raw)
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, "<pre>abc</pre>", preview)

	whole, err := p.ParseWhole(raw)
	require.NoError(t, err)
	assert.Equal(t, "<pre>abc\n\ndef</pre>", whole)

	whole, err = p.ParseWhole("a < b")
	require.NoError(t, err)
	assert.Equal(t, "<pre>a &lt; b</pre>", whole)
}

func TestTxtParserMarkerVariants(t *testing.T) {
	p := NewTxt()
	tests := []struct {
		name    string
		raw     string
		preview string
		more    bool
	}{
		{"no marker", "just text", "<pre>just text</pre>", false},
		{"upper case", "one\n\n----- MORE -----\n\ntwo", "<pre>one</pre>", true},
		{"only first marker", "a\n---more---\nb\n---more---\nc", "<pre>a</pre>", true},
		{"marker at start", "---more---\nrest", "<pre>---more---\nrest</pre>", false},
		{"inline is not a marker", "a ---more--- b", "<pre>a ---more--- b</pre>", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preview, more, err := p.ParsePreview(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.preview, preview)
			assert.Equal(t, tt.more, more)
		})
	}

	whole, err := p.ParseWhole("a\n---more---\nb\n---more---\nc")
	require.NoError(t, err)
	assert.Equal(t, "<pre>a\n\nb\n---more---\nc</pre>", whole)
}

func TestMarkdownParser(t *testing.T) {
	p := NewMarkdown()
	raw := "# Title\n\nintro\n\n<!-- more -->\n\nrest of the post"

	preview, more, err := p.ParsePreview(raw)
	require.NoError(t, err)
	assert.True(t, more)
	assert.Contains(t, preview, "<h1>Title</h1>")
	assert.Contains(t, preview, "<p>intro</p>")
	assert.NotContains(t, preview, "rest of the post")

	whole, err := p.ParseWhole(raw)
	require.NoError(t, err)
	assert.Contains(t, whole, "<p>rest of the post</p>")
	assert.NotContains(t, whole, "more")

	whole, err = p.ParseWhole("abc\n---more---\n\ndef")
	require.NoError(t, err)
	assert.Equal(t, "<p>abc</p>\n<p>def</p>\n", whole)
}

func TestRegistry(t *testing.T) {
	r := NewDefaultRegistry(nil)

	assert.Equal(t, []string{"markdown", "txt"}, r.Formats())
	assert.Equal(t, "txt", r.FormatForExt("txt"))
	assert.Equal(t, "txt", r.FormatForExt("TxT"))
	assert.Equal(t, "markdown", r.FormatForExt("md"))
	assert.Equal(t, "markdown", r.FormatForExt(".MDown"))
	assert.Equal(t, "markdown", r.FormatForExt("Markdown"))
	assert.Equal(t, "", r.FormatForExt("html"))
	assert.Equal(t, "", r.FormatForExt(""))

	require.NotNil(t, r.Resolve("MARKDOWN"))
	assert.Equal(t, "txt", r.Resolve("txt").Name())
	assert.Nil(t, r.Resolve("rst"))

	err := r.Register(NewTxt())
	assert.Error(t, err)
	assert.Error(t, r.Register(nil))
}

func TestRegistryCustomParser(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(Base{}))
	assert.Equal(t, "base", r.FormatForExt("base"))
	assert.IsType(t, Base{}, r.Resolve("Base"))
}
