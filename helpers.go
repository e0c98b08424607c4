package filepress

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
)

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with a site-relative key such as
// "/post/2016/03/02/x/" or "/about.html". The key's trailing slash, or its
// absence, is kept.
func BuildURL(base, key string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	joined := path.Join("/", u.Path, key)
	if strings.HasSuffix(key, "/") && !strings.HasSuffix(joined, "/") {
		joined += "/"
	}
	u.Path = joined
	return u.String()
}

// FilterEmpty splits comma-separated values and drops empty or
// whitespace-only entries.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// FilterRelatedPosts finds posts that share at least one tag with current.
func FilterRelatedPosts(current *Post, posts []*Post) []*Post {
	tagSet := make(map[string]struct{})
	for _, t := range current.Tags() {
		tag := strings.ToLower(strings.TrimSpace(t))
		if tag != "" {
			tagSet[tag] = struct{}{}
		}
	}
	var related []*Post
	for _, p := range posts {
		if p.UniqueKey == current.UniqueKey {
			continue
		}
		for _, t := range p.Tags() {
			tag := strings.ToLower(strings.TrimSpace(t))
			if _, ok := tagSet[tag]; ok {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

// JoinTags joins tags with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema.
func WebsiteJsonLD(site Site) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        site.Title,
		"url":         BuildURL(site.URL, "/"),
		"description": site.Subtitle,
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post *Post, site Site) string {
	postURL := BuildURL(site.URL, post.UniqueKey)
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "BlogPosting",
		"headline": post.Title(),
		"url":      postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if created := post.Created(); !created.IsZero() {
		data["datePublished"] = created.Format("2006-01-02")
		data["dateModified"] = post.Updated().Format("2006-01-02")
	}
	if author := post.Author(); author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  author,
		}
	}
	if site.Title != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  site.Title,
		}
	}
	if tags := post.Tags(); len(tags) > 0 {
		data["keywords"] = strings.Join(tags, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
