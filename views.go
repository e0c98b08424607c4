package filepress

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/filepress/markdown"
)

// Render writes cmp as a 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes cmp as an HTML response with the given status. HEAD
// requests get the headers only.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	if c.Request().Method == http.MethodHead {
		return nil
	}
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// PostSummary is a post with its rendered preview, as listed on index pages.
type PostSummary struct {
	Post    *Post
	Preview Rendered
}

// WidgetView is a widget with its rendered body.
type WidgetView struct {
	Widget *Widget
	HTML   string
}

// IndexData is passed to the Index view.
type IndexData struct {
	Site       Site
	Posts      []PostSummary
	Page       int
	TotalPages int
	Tags       map[string]Counts
	Widgets    []WidgetView
}

// ArchiveEntry is one listed entry. Preview is empty for search results.
type ArchiveEntry struct {
	Entry   Content
	Preview Rendered
}

// ArchiveData is passed to the Archive view for tag, category, date and
// search listings.
type ArchiveData struct {
	Site    Site
	Type    string // Tag, Category, Archive or Search
	Name    string
	Entries []ArchiveEntry
	Widgets []WidgetView
}

// EntryData is passed to the Post and Page views.
type EntryData struct {
	Site     Site
	Entry    Content
	Rendered Rendered
	ShowTOC  bool
	Related  []*Post
	Widgets  []WidgetView
}

// ViewFuncs holds the templ components the App renders. Users may supply
// their own; nil entries fall back to minimal built-in markup.
type ViewFuncs struct {
	Index       func(IndexData) templ.Component
	Post        func(EntryData) templ.Component
	Page        func(EntryData) templ.Component
	Archive     func(ArchiveData) templ.Component
	NotFound    func(Site) templ.Component
	ServerError func(Site) templ.Component
}

func (v ViewFuncs) withDefaults() ViewFuncs {
	if v.Index == nil {
		v.Index = defaultIndex
	}
	if v.Post == nil {
		v.Post = defaultEntry
	}
	if v.Page == nil {
		v.Page = defaultEntry
	}
	if v.Archive == nil {
		v.Archive = defaultArchive
	}
	if v.NotFound == nil {
		v.NotFound = func(s Site) templ.Component { return defaultMessage(s, "Not Found", "The page you requested does not exist.") }
	}
	if v.ServerError == nil {
		v.ServerError = func(s Site) templ.Component { return defaultMessage(s, "Server Error", "Something went wrong.") }
	}
	return v
}

// pageWriter writes a minimal HTML document. The first write error sticks
// and later writes are skipped.
type pageWriter struct {
	w   io.Writer
	err error
}

func (p *pageWriter) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *pageWriter) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *pageWriter) rawf(format string, args ...any) {
	p.raw(fmt.Sprintf(format, args...))
}

func (p *pageWriter) open(site Site, title string) {
	p.raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n<title>")
	if title != "" && title != site.Title {
		p.text(title)
		p.raw(" - ")
	}
	p.text(site.Title)
	p.raw("</title>\n<link rel=\"alternate\" type=\"application/rss+xml\" href=\"/feed.xml\">\n<style>")
	p.raw(markdown.CodeCSS())
	p.raw("</style>\n</head>\n<body>\n<header><a href=\"/\">")
	p.text(site.Title)
	p.raw("</a>")
	if site.Subtitle != "" {
		p.raw(" <small>")
		p.text(site.Subtitle)
		p.raw("</small>")
	}
	p.raw("</header>\n<main>\n")
}

func (p *pageWriter) close(widgets []WidgetView) {
	p.raw("</main>\n")
	if len(widgets) > 0 {
		p.raw("<aside>\n")
		for _, w := range widgets {
			pos, _ := w.Widget.Position()
			p.raw(`<section class="widget widget-`)
			p.text(pos)
			p.raw(`">`)
			p.raw(w.HTML)
			p.raw("</section>\n")
		}
		p.raw("</aside>\n")
	}
	p.raw("</body>\n</html>\n")
}

func defaultIndex(d IndexData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.open(d.Site, "")
		p.raw(`<script type="application/ld+json">`)
		p.raw(WebsiteJsonLD(d.Site))
		p.raw("</script>\n")
		for _, s := range d.Posts {
			p.raw("<article>\n<h2><a href=\"")
			p.text(s.Post.UniqueKey)
			p.raw("\">")
			p.text(s.Post.Title())
			p.raw("</a></h2>\n")
			if created := s.Post.Created(); !created.IsZero() {
				p.rawf("<time datetime=\"%s\">%s</time>\n", created.Format("2006-01-02"), created.Format("Jan 2, 2006"))
			}
			p.raw(s.Preview.HTML)
			if s.Preview.HasMore {
				p.raw("\n<p><a href=\"")
				p.text(s.Post.UniqueKey)
				p.raw("\">Read more</a></p>")
			}
			p.raw("\n</article>\n")
		}
		if d.TotalPages > 1 {
			p.raw("<nav>")
			if d.Page > 1 {
				p.rawf(`<a rel="prev" href="%s">Newer</a> `, pageLink(d.Page-1))
			}
			if d.Page < d.TotalPages {
				p.rawf(`<a rel="next" href="%s">Older</a>`, pageLink(d.Page+1))
			}
			p.raw("</nav>\n")
		}
		p.close(d.Widgets)
		return p.err
	})
}

func pageLink(n int) string {
	if n <= 1 {
		return "/"
	}
	return fmt.Sprintf("/page/%d/", n)
}

func defaultEntry(d EntryData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.open(d.Site, d.Entry.Title())
		p.raw("<article>\n<h1>")
		p.text(d.Entry.Title())
		p.raw("</h1>\n")
		if post, ok := d.Entry.(*Post); ok {
			if created := post.Created(); !created.IsZero() {
				p.rawf("<time datetime=\"%s\">%s</time>\n", created.Format("2006-01-02"), created.Format("Jan 2, 2006"))
			}
			if tags := post.Tags(); len(tags) > 0 {
				p.raw("<p class=\"tags\">")
				p.text(JoinTags(tags))
				p.raw("</p>\n")
			}
			p.raw(`<script type="application/ld+json">`)
			p.raw(BlogPostingJsonLD(post, d.Site))
			p.raw("</script>\n")
		}
		if d.ShowTOC && d.Rendered.TOCHTML != "" {
			p.raw("<nav class=\"toc\">\n")
			p.raw(d.Rendered.TOCHTML)
			p.raw("\n</nav>\n")
		}
		p.raw(d.Rendered.HTML)
		p.raw("\n</article>\n")
		if len(d.Related) > 0 {
			p.raw("<section class=\"related\">\n<h2>Related</h2>\n<ul>\n")
			for _, r := range d.Related {
				p.raw("<li><a href=\"")
				p.text(r.UniqueKey)
				p.raw("\">")
				p.text(r.Title())
				p.raw("</a></li>\n")
			}
			p.raw("</ul>\n</section>\n")
		}
		p.close(d.Widgets)
		return p.err
	})
}

func defaultArchive(d ArchiveData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		heading := d.Type + ": " + d.Name
		p.open(d.Site, heading)
		p.raw("<h1>")
		p.text(heading)
		p.raw("</h1>\n")
		if len(d.Entries) == 0 {
			p.raw("<p>Nothing here yet.</p>\n")
		}
		for _, e := range d.Entries {
			p.raw("<article>\n<h2><a href=\"")
			p.text(e.Entry.Key())
			p.raw("\">")
			p.text(e.Entry.Title())
			p.raw("</a></h2>\n")
			if post, ok := e.Entry.(*Post); ok {
				if created := post.Created(); !created.IsZero() {
					p.rawf("<time datetime=\"%s\">%s</time>\n", created.Format("2006-01-02"), created.Format("Jan 2, 2006"))
				}
			}
			p.raw(e.Preview.HTML)
			p.raw("\n</article>\n")
		}
		p.close(d.Widgets)
		return p.err
	})
}

func defaultMessage(site Site, title, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.open(site, title)
		p.raw("<h1>")
		p.text(title)
		p.raw("</h1>\n<p>")
		p.text(strings.TrimSpace(message))
		p.raw("</p>\n")
		p.close(nil)
		return p.err
	})
}
