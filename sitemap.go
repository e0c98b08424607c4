package filepress

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.Posts(false)
	if err != nil {
		return err
	}
	pages, err := a.Store.GetPages(false)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts, pages)
}

func (a *App) renderSitemap(c echo.Context, posts []*Post, pages []*Page) error {
	base := a.Config.Site.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base, "/")},
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, p.UniqueKey),
			LastMod: lastMod(p.Updated()),
		})
	}
	for _, p := range pages {
		if p.UniqueKey == "/" {
			continue
		}
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, p.UniqueKey),
			LastMod: lastMod(p.Updated()),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
