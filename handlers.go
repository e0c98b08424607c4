package filepress

import (
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/labstack/echo/v4"
)

func (a *App) setupAPIRoutes(g *echo.Group) {
	g.GET("/site", a.handleAPISite)
	g.GET("/posts", a.handleAPIPosts)
	g.GET("/posts/:year", a.handleAPIPostsByDate)
	g.GET("/posts/:year/:month", a.handleAPIPostsByDate)
	g.GET("/posts/:year/:month/:day", a.handleAPIPostsByDate)
	g.GET("/post/*", a.handleAPIPost)
	g.GET("/pages", a.handleAPIPages)
	g.GET("/pages/*", a.handleAPIPage)
	g.GET("/widgets", a.handleAPIWidgets)
	g.GET("/tags", a.handleAPITags)
	g.GET("/categories", a.handleAPICategories)
	g.GET("/search", a.handleAPISearch)
}

// entityJSON converts c for external exposure: the raw body is dropped and
// the rendered body, if any, is attached.
func entityJSON(c Content, r *Rendered) map[string]any {
	m := c.ToMap()
	delete(m, "raw_content")
	if r != nil {
		m["content"] = r.HTML
		m["has_more"] = r.HasMore
		if r.TOC != nil {
			m["toc"] = r.TOC
			m["toc_html"] = r.TOCHTML
		}
	}
	return m
}

// paginate returns the 1-based page num of items and the page count.
func paginate[T any](items []T, num, perPage int) ([]T, int) {
	if perPage <= 0 {
		return items, 1
	}
	total := (len(items) + perPage - 1) / perPage
	if total == 0 {
		total = 1
	}
	start := (num - 1) * perPage
	if num < 1 || start >= len(items) {
		return []T{}, total
	}
	end := min(start+perPage, len(items))
	return items[start:end], total
}

func pageParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if name != "page" {
		raw = c.Param(name)
	}
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid page %q", raw))
	}
	return n, nil
}

func (a *App) previews(posts []*Post) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(posts))
	for _, p := range posts {
		r, err := a.Store.RenderPreview(p.Base())
		if err != nil {
			return nil, err
		}
		out = append(out, entityJSON(p, &r))
	}
	return out, nil
}

func (a *App) writePostList(c echo.Context, posts []*Post) error {
	num, err := pageParam(c, "page")
	if err != nil {
		return err
	}
	pagePosts, total := paginate(posts, num, a.Config.EntriesPerPage)
	items, err := a.previews(pagePosts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"posts":       items,
		"page":        num,
		"total_pages": total,
	})
}

func (a *App) handleAPISite(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Config.Site)
}

// limitsFromQuery builds Limits from tag, category and author query values
// (comma-separated or repeated) and a created=from,to date range.
func (a *App) limitsFromQuery(c echo.Context) (Limits, error) {
	q := c.QueryParams()
	limits := Limits{}
	for param, key := range map[string]string{"tag": "tags", "category": "categories", "author": "author"} {
		if vals := FilterEmpty(q[param]); len(vals) > 0 {
			limits[key] = vals
		}
	}
	if created := FilterEmpty(q["created"]); len(created) > 0 {
		if len(created) != 2 {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "created takes two dates")
		}
		from, err := civil.ParseDate(created[0])
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		to, err := civil.ParseDate(created[1])
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		limits["created"] = []any{from, to}
	}
	return limits, nil
}

func (a *App) handleAPIPosts(c echo.Context) error {
	limits, err := a.limitsFromQuery(c)
	if err != nil {
		return err
	}
	var posts []*Post
	if len(limits) == 0 {
		posts, err = a.Cache.Posts(a.Config.IncludeDrafts)
	} else {
		posts, err = a.Store.GetPostsWithLimits(a.Config.IncludeDrafts, limits)
	}
	if err != nil {
		return err
	}
	return a.writePostList(c, posts)
}

// handleAPIPostsByDate lists the posts of a year, month or day.
func (a *App) handleAPIPostsByDate(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return echo.ErrNotFound
	}
	month, day := 0, 0
	if m := c.Param("month"); m != "" {
		if month, err = strconv.Atoi(m); err != nil {
			return echo.ErrNotFound
		}
	}
	if d := c.Param("day"); d != "" {
		if day, err = strconv.Atoi(d); err != nil {
			return echo.ErrNotFound
		}
	}

	start := civil.Date{Year: year, Month: 1, Day: 1}
	end := civil.Date{Year: year, Month: 12, Day: 31}
	switch {
	case day > 0:
		start = civil.Date{Year: year, Month: time.Month(month), Day: day}
		end = start
	case month > 0:
		start = civil.Date{Year: year, Month: time.Month(month), Day: 1}
		end = start.AddMonths(1).AddDays(-1)
	}
	if !start.IsValid() || !end.IsValid() {
		return echo.ErrNotFound
	}

	posts, err := a.Store.GetPostsWithLimits(a.Config.IncludeDrafts, Limits{
		"created": []any{start, end},
	})
	if err != nil {
		return err
	}
	return a.writePostList(c, posts)
}

func (a *App) handleAPIPost(c echo.Context) error {
	post, err := a.Store.GetPost(c.Param("*"), a.Config.IncludeDrafts)
	if err != nil {
		return err
	}
	r, err := a.Store.RenderWhole(post.Base(), a.Config.TOCDepth, a.Config.TOCLowestLevel)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entityJSON(post, &r))
}

func (a *App) handleAPIPages(c echo.Context) error {
	pages, err := a.Store.GetPages(a.Config.IncludeDrafts)
	if err != nil {
		return err
	}
	items := make([]map[string]any, 0, len(pages))
	for _, p := range pages {
		items = append(items, entityJSON(p, nil))
	}
	return c.JSON(http.StatusOK, items)
}

func (a *App) handleAPIPage(c echo.Context) error {
	fixed, exists, err := a.Store.FixRelativeURL(PublishPage, c.Param("*"))
	if err != nil {
		return err
	}
	if fixed == "" || exists {
		return echo.ErrNotFound
	}
	page, err := a.Store.GetPage(fixed, a.Config.IncludeDrafts)
	if err != nil {
		return err
	}
	r, err := a.Store.RenderWhole(page.Base(), a.Config.TOCDepth, a.Config.TOCLowestLevel)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entityJSON(page, &r))
}

func (a *App) handleAPIWidgets(c echo.Context) error {
	widgets, err := a.Store.GetWidgets(a.Config.IncludeDrafts, FilterEmpty(c.QueryParams()["position"])...)
	if err != nil {
		return err
	}
	items := make([]map[string]any, 0, len(widgets))
	for _, w := range widgets {
		r, err := a.Store.RenderPreview(w.Base())
		if err != nil {
			return err
		}
		m := w.ToMap()
		delete(m, "raw_content")
		m["content"] = r.HTML
		items = append(items, m)
	}
	return c.JSON(http.StatusOK, items)
}

func (a *App) handleAPITags(c echo.Context) error {
	tags, err := a.Cache.Tags()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

func (a *App) handleAPICategories(c echo.Context) error {
	cats, err := a.Cache.Categories()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cats)
}

func (a *App) handleAPISearch(c echo.Context) error {
	results, err := a.Store.SearchFor(c.QueryParam("q"), a.Config.IncludeDrafts)
	if err != nil {
		return err
	}
	items := make([]map[string]any, 0, len(results))
	for _, r := range results {
		items = append(items, entityJSON(r, nil))
	}
	return c.JSON(http.StatusOK, items)
}

// widgetViews renders every visible widget. A widget that fails to render
// is logged and left out.
func (a *App) widgetViews() []WidgetView {
	widgets, err := a.Store.GetWidgets(a.Config.IncludeDrafts)
	if err != nil {
		a.Logger.Warn("list widgets", "error", err)
		return nil
	}
	views := make([]WidgetView, 0, len(widgets))
	for _, w := range widgets {
		r, err := a.Store.RenderWhole(w.Base(), 0, 0)
		if err != nil {
			a.Logger.Warn("render widget", "error", err)
			continue
		}
		views = append(views, WidgetView{Widget: w, HTML: r.HTML})
	}
	return views
}

func (a *App) handleIndex(c echo.Context) error {
	num, err := pageParam(c, "num")
	if err != nil {
		return echo.ErrNotFound
	}
	posts, err := a.Cache.Posts(a.Config.IncludeDrafts)
	if err != nil {
		return err
	}
	pagePosts, total := paginate(posts, num, a.Config.EntriesPerPage)
	if num > 1 && len(pagePosts) == 0 {
		return echo.ErrNotFound
	}

	summaries := make([]PostSummary, 0, len(pagePosts))
	for _, p := range pagePosts {
		r, err := a.Store.RenderPreview(p.Base())
		if err != nil {
			return err
		}
		summaries = append(summaries, PostSummary{Post: p, Preview: r})
	}
	tags, err := a.Cache.Tags()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Index(IndexData{
		Site:       a.Config.Site,
		Posts:      summaries,
		Page:       num,
		TotalPages: total,
		Tags:       tags,
		Widgets:    a.widgetViews(),
	}))
}

// archiveEntries renders previews for a post listing.
func (a *App) archiveEntries(posts []*Post) ([]ArchiveEntry, error) {
	entries := make([]ArchiveEntry, 0, len(posts))
	for _, p := range posts {
		r, err := a.Store.RenderPreview(p.Base())
		if err != nil {
			return nil, err
		}
		entries = append(entries, ArchiveEntry{Entry: p, Preview: r})
	}
	return entries, nil
}

func (a *App) renderArchive(c echo.Context, kind, name string, entries []ArchiveEntry) error {
	return Render(c, a.Views.Archive(ArchiveData{
		Site:    a.Config.Site,
		Type:    kind,
		Name:    name,
		Entries: entries,
		Widgets: a.widgetViews(),
	}))
}

// handleLimited lists the posts carrying name under key and 404s when
// there are none.
func (a *App) handleLimited(c echo.Context, kind, key, param string) error {
	name, err := url.PathUnescape(c.Param(param))
	if err != nil || strings.TrimSpace(name) == "" {
		return echo.ErrNotFound
	}
	posts, err := a.Store.GetPostsWithLimits(a.Config.IncludeDrafts, Limits{key: []string{name}})
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return echo.ErrNotFound
	}
	entries, err := a.archiveEntries(posts)
	if err != nil {
		return err
	}
	return a.renderArchive(c, kind, name, entries)
}

func (a *App) handleTag(c echo.Context) error {
	return a.handleLimited(c, "Tag", "tags", "tag")
}

func (a *App) handleCategory(c echo.Context) error {
	return a.handleLimited(c, "Category", "categories", "category")
}

// handleArchive lists all posts, or those of a year or month.
func (a *App) handleArchive(c echo.Context) error {
	prefix, name := "/post/", "All"
	if y := c.Param("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil || year < 1 || year > 9999 {
			return echo.ErrNotFound
		}
		prefix += fmt.Sprintf("%04d/", year)
		name = strconv.Itoa(year)
		if m := c.Param("month"); m != "" {
			month, err := strconv.Atoi(m)
			if err != nil || month < 1 || month > 12 {
				return echo.ErrNotFound
			}
			prefix += fmt.Sprintf("%02d/", month)
			name += "." + strconv.Itoa(month)
		}
	}

	posts, err := a.Store.GetPostsWithLimits(a.Config.IncludeDrafts, nil)
	if err != nil {
		return err
	}
	matched := make([]*Post, 0, len(posts))
	for _, p := range posts {
		if strings.HasPrefix(p.UniqueKey, prefix) {
			matched = append(matched, p)
		}
	}
	entries, err := a.archiveEntries(matched)
	if err != nil {
		return err
	}
	return a.renderArchive(c, "Archive", name, entries)
}

func (a *App) handleSearch(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.ErrNotFound
	}
	results, err := a.Store.SearchFor(query, a.Config.IncludeDrafts)
	if err != nil {
		return err
	}
	entries := make([]ArchiveEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, ArchiveEntry{Entry: r})
	}
	return a.renderArchive(c, "Search", fmt.Sprintf("%q", query), entries)
}

func (a *App) handlePost(c echo.Context) error {
	rel := c.Param("*")
	fixed, ok := FixPostRelativeURL(rel)
	if !ok {
		return echo.ErrNotFound
	}
	if fixed != rel {
		return c.Redirect(http.StatusMovedPermanently, "/post/"+fixed)
	}
	post, err := a.Store.GetPost(fixed, a.Config.IncludeDrafts)
	if err != nil {
		return err
	}
	r, err := a.Store.RenderWhole(post.Base(), a.Config.TOCDepth, a.Config.TOCLowestLevel)
	if err != nil {
		return err
	}
	posts, err := a.Cache.Posts(a.Config.IncludeDrafts)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Post(EntryData{
		Site:     a.Config.Site,
		Entry:    post,
		Rendered: r,
		ShowTOC:  a.Config.ShowTOC,
		Related:  FilterRelatedPosts(post, posts),
		Widgets:  a.widgetViews(),
	}))
}

func (a *App) handlePage(c echo.Context) error {
	rel := strings.TrimLeft(c.Param("*"), "/")
	fixed, exists, err := a.Store.FixRelativeURL(PublishPage, rel)
	if err != nil {
		return err
	}
	if fixed == "" {
		return echo.ErrNotFound
	}
	if exists {
		return a.serveFile(c, path.Join(pagesDir, fixed))
	}
	if fixed != rel {
		return c.Redirect(http.StatusMovedPermanently, "/"+fixed)
	}

	page, err := a.Store.GetPage(fixed, a.Config.IncludeDrafts)
	if err != nil {
		return err
	}
	r, err := a.Store.RenderWhole(page.Base(), a.Config.TOCDepth, a.Config.TOCLowestLevel)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Page(EntryData{
		Site:     a.Config.Site,
		Entry:    page,
		Rendered: r,
		ShowTOC:  a.Config.ShowTOC,
		Widgets:  a.widgetViews(),
	}))
}

// serveFile streams a file from the instance filesystem verbatim.
func (a *App) serveFile(c echo.Context, name string) error {
	f, err := a.fs.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return echo.ErrNotFound
		}
		return err
	}
	defer f.Close()

	ctype := mime.TypeByExtension(path.Ext(name))
	if ctype == "" {
		ctype = echo.MIMEOctetStream
	}
	return c.Stream(http.StatusOK, ctype, f)
}
