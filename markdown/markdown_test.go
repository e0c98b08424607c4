package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func render(t *testing.T, input string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Render(&buf, input); err != nil {
		t.Fatalf("Render(%q) failed: %v", input, err)
	}
	return buf.String()
}

func TestRenderInlineFormatting(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"_italic_", "<em>italic</em>"},
		{"use `fmt.Println` here", "<code>fmt.Println</code>"},
		{"`**not bold**`", "<code>**not bold**</code>"},
	}
	for _, tt := range tests {
		got := render(t, tt.input)
		if !strings.Contains(got, tt.expected) {
			t.Errorf("Render(%q) = %q, want it to contain %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderCodeBlock(t *testing.T) {
	got := render(t, "```\ncode here\n```")
	if !strings.Contains(got, `<pre class="code-block"><code>`) {
		t.Errorf("code block without language should use plain code tag: %q", got)
	}
	if !strings.Contains(got, "code here") {
		t.Errorf("code block missing content: %q", got)
	}
	if strings.Contains(got, "code-lang") || strings.Contains(got, "code-block-wrapper") {
		t.Errorf("code block without language should not have badge or wrapper: %q", got)
	}
}

func TestRenderCodeBlockWithLanguage(t *testing.T) {
	got := render(t, "```go\nfmt.Println(\"hello\")\n```")
	if !strings.Contains(got, `class="language-go"`) {
		t.Errorf("code block should have language-go class: %q", got)
	}
	if !strings.Contains(got, `<span class="code-lang code-lang-go">go</span>`) {
		t.Errorf("code block should have language badge: %q", got)
	}
	if !strings.Contains(got, `<div class="code-block-wrapper">`) || !strings.Contains(got, "</code></pre></div>") {
		t.Errorf("code block should be wrapped in a closed div: %q", got)
	}
	if !strings.Contains(got, "&#34;hello&#34;") || strings.Contains(got, `"hello"`) {
		t.Errorf("code content should be escaped: %q", got)
	}
}

func TestRenderCodeBlockHighlighted(t *testing.T) {
	got := render(t, "```go\nfunc main() {}\n```")
	if !strings.Contains(got, `<span class="kd">func</span>`) {
		t.Errorf("go keywords should be highlighted: %q", got)
	}
	if !strings.Contains(got, `<code class="language-go">`) {
		t.Errorf("highlighted block should keep its language class: %q", got)
	}
	if strings.Contains(got, "style=") {
		t.Errorf("highlighting should use classes, not inline styles: %q", got)
	}
}

func TestRenderCodeBlockUnknownLanguage(t *testing.T) {
	got := render(t, "```nosuchlang\n<b>x</b>\n```")
	if !strings.Contains(got, "&lt;b&gt;x&lt;/b&gt;") {
		t.Errorf("unknown language should be written escaped: %q", got)
	}
	if strings.Count(got, "<span") != 1 {
		t.Errorf("unknown language should not be tokenized: %q", got)
	}
}

func TestCodeCSS(t *testing.T) {
	css := CodeCSS()
	if !strings.Contains(css, ".chroma") {
		t.Errorf("CodeCSS should style highlighted blocks: %q", css)
	}
}

func TestRenderHeadings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"# Heading 1", "<h1>Heading 1</h1>"},
		{"## Heading 2", "<h2>Heading 2</h2>"},
		{"###### Heading 6", "<h6>Heading 6</h6>"},
	}
	for _, tt := range tests {
		got := render(t, tt.input)
		if !strings.Contains(got, tt.expected) {
			t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderLists(t *testing.T) {
	got := render(t, "- item 1\n- item 2")
	for _, want := range []string{"<ul>", "<li>item 1</li>", "<li>item 2</li>", "</ul>"} {
		if !strings.Contains(got, want) {
			t.Errorf("unordered list missing %q: %q", want, got)
		}
	}

	got = render(t, "1. first\n2. second\n\nsome text")
	for _, want := range []string{"<ol>", "<li>first</li>", "</ol>", "<p>some text</p>"} {
		if !strings.Contains(got, want) {
			t.Errorf("ordered list missing %q: %q", want, got)
		}
	}
}

func TestRenderTable(t *testing.T) {
	got := render(t, "| a | b |\n|---|---|\n| 1 | 2 |")
	for _, want := range []string{"<table>", "<th>a</th>", "<td>2</td>"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q: %q", want, got)
		}
	}
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown("# Hi").Render(context.Background(), &buf); err != nil {
		t.Fatalf("component render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "<h1>Hi</h1>") {
		t.Errorf("component output = %q", buf.String())
	}
}
