package filepress

import (
	"strings"
)

// SearchFor returns the posts, then the pages when page search is enabled,
// whose title or raw body contains query, ignoring case. A blank query
// returns nothing without touching the filesystem.
func (s *Store) SearchFor(query string, includeDraft bool) ([]Content, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Content{}, nil
	}
	needle := strings.ToLower(query)

	posts, err := s.GetPosts(includeDraft)
	if err != nil {
		return nil, err
	}
	results := make([]Content, 0)
	for _, p := range posts {
		if matches(p, needle) {
			results = append(results, p)
		}
	}

	if !s.allowSearchPages {
		return results, nil
	}
	for page, err := range s.Pages(includeDraft) {
		if err != nil {
			return nil, err
		}
		if matches(page, needle) {
			results = append(results, page)
		}
	}
	return results, nil
}

func matches(c Content, needle string) bool {
	return strings.Contains(strings.ToLower(c.Title()), needle) ||
		strings.Contains(strings.ToLower(c.Body()), needle)
}
