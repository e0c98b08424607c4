package parsers

import (
	"html"
	"regexp"
)

// txtMore matches a "---more---" line, case-insensitive.
var txtMore = moreMarker{exp: regexp.MustCompile(`(?im)^[ \t]*-{3,}[ \t]*more[ \t]*-{3,}[ \t]*$`)}

// Txt renders plain text as a preformatted block.
type Txt struct{}

// NewTxt returns the plain-text parser.
func NewTxt() Txt { return Txt{} }

func (Txt) Name() string         { return "txt" }
func (Txt) Extensions() []string { return []string{"txt"} }

func (Txt) ParseWhole(raw string) (string, error) {
	return "<pre>" + html.EscapeString(txtMore.join(raw)) + "</pre>", nil
}

func (t Txt) ParsePreview(raw string) (string, bool, error) {
	return txtMore.preview(raw, t.ParseWhole)
}
