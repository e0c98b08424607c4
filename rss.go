package filepress

import (
	"encoding/xml"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
}

// textPolicy strips all markup from rendered previews.
var textPolicy = bluemonday.StrictPolicy()

// plainText reduces rendered HTML to collapsed plain text.
func plainText(markup string) string {
	text := html.UnescapeString(textPolicy.Sanitize(markup))
	return strings.Join(strings.Fields(text), " ")
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.Posts(false)
	if err != nil {
		return err
	}
	if len(posts) > a.Config.FeedCount {
		posts = posts[:a.Config.FeedCount]
	}
	return a.renderRSS(c, posts)
}

func (a *App) renderRSS(c echo.Context, posts []*Post) error {
	site := a.Config.Site
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		preview, err := a.Store.RenderPreview(p.Base())
		if err != nil {
			return err
		}
		pubDate := ""
		if created := p.Created(); !created.IsZero() {
			pubDate = created.Format(time.RFC1123Z)
		}
		author := ""
		if email := p.Email(); email != "" {
			author = email + " (" + p.Author() + ")"
		}
		postURL := BuildURL(site.URL, p.UniqueKey)
		items = append(items, rssItem{
			Title:       p.Title(),
			Link:        postURL,
			Description: plainText(preview.HTML),
			Author:      author,
			Categories:  p.Categories(),
			PubDate:     pubDate,
			GUID:        postURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       site.Title,
			Link:        BuildURL(site.URL, "/"),
			Description: site.Subtitle,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
