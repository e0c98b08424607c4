package filepress

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"  Go 1.24: range-over-func!  ", "go-1-24-range-over-func"},
		{"---", ""},
		{"Ünïcode only", "n-code-only"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base, key, want string
	}{
		{"http://localhost:8080", "/post/2016/03/01/a/", "http://localhost:8080/post/2016/03/01/a/"},
		{"https://example.com/blog/", "/about.html", "https://example.com/blog/about.html"},
		{"https://example.com", "/", "https://example.com/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BuildURL(tt.base, tt.key))
	}
}

func TestFilterEmpty(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, FilterEmpty([]string{"a, b", " ", "", "c,"}))
	assert.Nil(t, FilterEmpty(nil))
}

func TestFilterRelatedPosts(t *testing.T) {
	mk := func(key string, tags ...any) *Post {
		return &Post{Page: Page{Entity: Entity{Meta: Meta{"tags": tags}}, UniqueKey: key}}
	}
	current := mk("/post/a/", "Go", "web")
	posts := []*Post{
		current,
		mk("/post/b/", "go"),
		mk("/post/c/", "rust"),
		mk("/post/d/", "WEB ", "Go"),
	}
	related := FilterRelatedPosts(current, posts)
	require.Len(t, related, 2)
	assert.Equal(t, "/post/b/", related[0].UniqueKey)
	assert.Equal(t, "/post/d/", related[1].UniqueKey)
}

func TestJsonLD(t *testing.T) {
	site := Site{Title: "Blog", Subtitle: "Notes", Author: "Ada", URL: "https://example.com"}

	var website map[string]any
	require.NoError(t, json.Unmarshal([]byte(WebsiteJsonLD(site)), &website))
	assert.Equal(t, "WebSite", website["@type"])
	assert.Equal(t, "https://example.com/", website["url"])

	post := &Post{Page: Page{
		Entity: Entity{
			Meta: Meta{"title": "Hi", "tags": []any{"go"}, "created": "2016-03-01 10:00:00"},
			site: site,
		},
		UniqueKey: "/post/2016/03/01/hi/",
	}}
	var posting map[string]any
	require.NoError(t, json.Unmarshal([]byte(BlogPostingJsonLD(post, site)), &posting))
	assert.Equal(t, "Hi", posting["headline"])
	assert.Equal(t, "https://example.com/post/2016/03/01/hi/", posting["url"])
	assert.Equal(t, "2016-03-01", posting["datePublished"])
	assert.Equal(t, "go", posting["keywords"])
	assert.Equal(t, "Ada", posting["author"].(map[string]any)["name"])
}

func TestLastMod(t *testing.T) {
	assert.Empty(t, lastMod(time.Time{}))
	assert.Equal(t, "2016-03-05", lastMod(time.Date(2016, 3, 5, 9, 0, 0, 0, time.UTC)))
}
