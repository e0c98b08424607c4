package filepress

import (
	"encoding/json"
	"maps"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Entity is the common part of posts, pages and widgets: a metadata header,
// the raw body and the format the body is written in.
type Entity struct {
	Meta       Meta
	RawContent string

	format string
	site   Site
}

// Format returns the lowercased format name.
func (e *Entity) Format() string {
	return e.format
}

// SetFormat stores the format name, lowercased. Empty values are ignored.
func (e *Entity) SetFormat(format string) {
	if format != "" {
		e.format = strings.ToLower(format)
	}
}

// IsDraft reports the is_draft metadata flag.
func (e *Entity) IsDraft() bool {
	return e.Meta.Bool("is_draft")
}

// Base returns the entity itself, so wrappers can hand it to the renderer.
func (e *Entity) Base() *Entity {
	return e
}

// Body returns the raw, unrendered body.
func (e *Entity) Body() string {
	return e.RawContent
}

// ToMap converts the entity to a serializable map.
func (e *Entity) ToMap() map[string]any {
	meta := maps.Clone(e.Meta)
	if meta == nil {
		meta = Meta{}
	}
	return map[string]any{
		"meta":        meta,
		"format":      e.format,
		"raw_content": e.RawContent,
		"is_draft":    e.IsDraft(),
	}
}

// MarshalJSON implements json.Marshaler.
func (e *Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToMap())
}

// Content is implemented by posts and pages.
type Content interface {
	Key() string
	Title() string
	Body() string
	Base() *Entity
	ToMap() map[string]any
}

// Page is a custom page addressed by a path under pages/.
type Page struct {
	Entity
	UniqueKey string // Canonical identity, always starts with "/"
	RelURL    string // Locator as requested, may keep an index.html suffix
}

// Key returns the canonical identity of the page.
func (p *Page) Key() string {
	return p.UniqueKey
}

// Layout returns the layout name, "page" by default.
func (p *Page) Layout() string {
	if l, ok := p.Meta.String("layout"); ok {
		return l
	}
	return "page"
}

// Title returns the metadata title, or one derived from the last meaningful
// segment of the relative URL.
func (p *Page) Title() string {
	if t, ok := p.Meta.String("title"); ok {
		return t
	}
	if p.RelURL == "" {
		return ""
	}
	segs := strings.Split(p.RelURL, "/")
	pos := len(segs) - 1
	for pos > 0 && isIndexSegment(segs[pos]) {
		pos--
	}
	return titleFromSlug(trimHTMLExt(segs[pos]))
}

// Author returns the metadata author or the site default.
func (p *Page) Author() string {
	if a, ok := p.Meta.String("author"); ok {
		return a
	}
	return p.site.Author
}

// Email returns the metadata email or the site default.
func (p *Page) Email() string {
	if e, ok := p.Meta.String("email"); ok {
		return e
	}
	return p.site.Email
}

// Created returns the creation time, zero if unknown.
func (p *Page) Created() time.Time {
	t, _ := p.Meta.Time("created", p.site.Location())
	return t
}

// Updated returns the update time, defaulting to Created.
func (p *Page) Updated() time.Time {
	if t, ok := p.Meta.Time("updated", p.site.Location()); ok {
		return t
	}
	return p.Created()
}

// ToMap converts the page to a serializable map.
func (p *Page) ToMap() map[string]any {
	m := p.Entity.ToMap()
	m["unique_key"] = p.UniqueKey
	m["rel_url"] = p.RelURL
	m["layout"] = p.Layout()
	m["title"] = p.Title()
	m["author"] = p.Author()
	m["email"] = p.Email()
	m["created"] = formatTime(p.Created())
	m["updated"] = formatTime(p.Updated())
	return m
}

// MarshalJSON implements json.Marshaler.
func (p *Page) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

// Post is a dated entry stored as posts/YYYY-MM-DD-name.ext.
type Post struct {
	Page
}

// postLocatorExp extracts the date and name from a post key or relative URL.
var postLocatorExp = regexp.MustCompile(`(\d{4})/(\d{1,2})/(\d{1,2})/([^/]+)`)

func (p *Post) locator() []string {
	for _, s := range []string{p.UniqueKey, p.RelURL} {
		if m := postLocatorExp.FindStringSubmatch(s); m != nil {
			return m
		}
	}
	return nil
}

// Layout returns the layout name, "post" by default.
func (p *Post) Layout() string {
	if l, ok := p.Meta.String("layout"); ok {
		return l
	}
	return "post"
}

// Title returns the metadata title or one derived from the post name.
func (p *Post) Title() string {
	if t, ok := p.Meta.String("title"); ok {
		return t
	}
	m := p.locator()
	if m == nil {
		return ""
	}
	return titleFromSlug(trimHTMLExt(m[4]))
}

// Created returns the metadata creation time, or midnight of the date
// encoded in the post locator.
func (p *Post) Created() time.Time {
	loc := p.site.Location()
	if t, ok := p.Meta.Time("created", loc); ok {
		return t
	}
	m := p.locator()
	if m == nil {
		return time.Time{}
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}

// Updated returns the update time, defaulting to Created.
func (p *Post) Updated() time.Time {
	if t, ok := p.Meta.Time("updated", p.site.Location()); ok {
		return t
	}
	return p.Created()
}

// Tags returns the tags list, empty if none.
func (p *Post) Tags() []string {
	return p.Meta.List("tags")
}

// Categories returns the categories list, empty if none.
func (p *Post) Categories() []string {
	return p.Meta.List("categories")
}

// ToMap converts the post to a serializable map.
func (p *Post) ToMap() map[string]any {
	m := p.Page.ToMap()
	m["layout"] = p.Layout()
	m["title"] = p.Title()
	m["created"] = formatTime(p.Created())
	m["updated"] = formatTime(p.Updated())
	m["tags"] = p.Tags()
	m["categories"] = p.Categories()
	return m
}

// MarshalJSON implements json.Marshaler.
func (p *Post) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

// Widget is a small content block shown at a named position.
type Widget struct {
	Entity
}

// Position returns the widget position.
func (w *Widget) Position() (string, bool) {
	return w.Meta.String("position")
}

// Order returns the widget order within its position.
func (w *Widget) Order() (int, bool) {
	return w.Meta.Int("order")
}

// ToMap converts the widget to a serializable map.
func (w *Widget) ToMap() map[string]any {
	m := w.Entity.ToMap()
	m["position"] = nil
	if pos, ok := w.Position(); ok {
		m["position"] = pos
	}
	m["order"] = nil
	if order, ok := w.Order(); ok {
		m["order"] = order
	}
	return m
}

// MarshalJSON implements json.Marshaler.
func (w *Widget) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.ToMap())
}

// Counts is the aggregate for one tag or category.
type Counts struct {
	Total     int
	Published int
}

// MarshalJSON encodes the counts as a [total, published] pair.
func (c Counts) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.Total, c.Published})
}

func isIndexSegment(seg string) bool {
	switch seg {
	case "", "index", "index.html", "index.htm":
		return true
	}
	return false
}

func trimHTMLExt(seg string) string {
	for _, ext := range []string{".html", ".htm"} {
		if strings.HasSuffix(seg, ext) {
			return strings.TrimSuffix(seg, ext)
		}
	}
	return seg
}

// titleFromSlug turns "my-first-post" into "My First Post".
func titleFromSlug(slug string) string {
	caser := cases.Title(language.Und, cases.NoLower)
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' })
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}
