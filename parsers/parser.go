// Package parsers converts raw content bodies into HTML. Each format is a
// Parser registered under a canonical name and a set of file extensions.
package parsers

import (
	"regexp"
	"strings"
)

// Parser renders raw content of one format.
type Parser interface {
	// Name returns the canonical, lowercase format name.
	Name() string
	// Extensions returns the file extensions (without dot) mapped to this format.
	Extensions() []string
	// ParseWhole renders the complete body with the read-more marker removed.
	ParseWhole(raw string) (string, error)
	// ParsePreview renders the part before the read-more marker and reports
	// whether anything was cut off.
	ParsePreview(raw string) (string, bool, error)
}

// Base passes content through unchanged.
type Base struct{}

func (Base) Name() string         { return "base" }
func (Base) Extensions() []string { return nil }

func (Base) ParseWhole(raw string) (string, error) { return raw, nil }

func (b Base) ParsePreview(raw string) (string, bool, error) {
	html, err := b.ParseWhole(raw)
	return html, false, err
}

// moreMarker splits a body at the first read-more marker.
type moreMarker struct {
	exp *regexp.Regexp
}

// split returns the text before and after the marker. ok is false when there
// is no marker or nothing precedes it.
func (m moreMarker) split(raw string) (before, after string, ok bool) {
	loc := m.exp.FindStringIndex(raw)
	if loc == nil {
		return raw, "", false
	}
	before, after = raw[:loc[0]], raw[loc[1]:]
	if strings.TrimSpace(before) == "" {
		return raw, "", false
	}
	return strings.TrimRight(before, " \t\r\n"), strings.TrimLeft(after, " \t\r\n"), true
}

// join removes the marker, leaving a blank line between both halves.
func (m moreMarker) join(raw string) string {
	before, after, ok := m.split(raw)
	if !ok {
		return raw
	}
	return before + "\n\n" + after
}

// preview renders the text before the marker through whole.
func (m moreMarker) preview(raw string, whole func(string) (string, error)) (string, bool, error) {
	before, _, ok := m.split(raw)
	if !ok {
		html, err := whole(raw)
		return html, false, err
	}
	html, err := whole(before)
	return html, true, err
}
