package parsers

import (
	"bytes"
	"regexp"

	"github.com/eringen/filepress/markdown"
)

// markdownMore accepts "<!-- more -->" or a "---more---" line.
var markdownMore = moreMarker{exp: regexp.MustCompile(`(?im)^[ \t]*(?:<!--[ \t]*more[ \t]*-->|-{3,}[ \t]*more[ \t]*-{3,})[ \t]*$`)}

// Markdown renders CommonMark/GFM through goldmark.
type Markdown struct{}

// NewMarkdown returns the markdown parser.
func NewMarkdown() Markdown { return Markdown{} }

func (Markdown) Name() string         { return "markdown" }
func (Markdown) Extensions() []string { return []string{"md", "mdown", "markdown"} }

func (Markdown) ParseWhole(raw string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Render(&buf, markdownMore.join(raw)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (m Markdown) ParsePreview(raw string) (string, bool, error) {
	return markdownMore.preview(raw, m.ParseWhole)
}
