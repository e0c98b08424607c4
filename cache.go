package filepress

import (
	"sync"
	"time"
)

// ContentCache is an in-memory TTL cache in front of the Store's list
// queries. It holds every post, drafts included, plus the tag and category
// counts derived from them.
type ContentCache struct {
	mu         sync.RWMutex
	posts      []*Post
	tags       map[string]Counts
	categories map[string]Counts
	fetched    time.Time
	ttl        time.Duration
	store      *Store
}

// NewContentCache creates a ContentCache backed by the given Store.
func NewContentCache(s *Store, ttl time.Duration) *ContentCache {
	return &ContentCache{store: s, ttl: ttl}
}

func (c *ContentCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh scan.
func (c *ContentCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.tags = nil
	c.categories = nil
	c.mu.Unlock()
}

func (c *ContentCache) load() error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.GetPosts(true)
	if err != nil {
		return err
	}
	c.posts = posts
	c.tags = countPosts(posts, (*Post).Tags)
	c.categories = countPosts(posts, (*Post).Categories)
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns the cached state after making sure it is fresh.
// It tries a read lock first and only takes the write lock to reload.
func (c *ContentCache) ensureLoaded() ([]*Post, map[string]Counts, map[string]Counts, error) {
	c.mu.RLock()
	if c.valid() {
		posts, tags, cats := c.posts, c.tags, c.categories
		c.mu.RUnlock()
		return posts, tags, cats, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, nil, err
	}
	return c.posts, c.tags, c.categories, nil
}

// Posts returns the cached posts, newest first. The slice is shared and
// must not be modified.
func (c *ContentCache) Posts(includeDraft bool) ([]*Post, error) {
	posts, _, _, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if includeDraft {
		return posts, nil
	}
	published := make([]*Post, 0, len(posts))
	for _, p := range posts {
		if !p.IsDraft() {
			published = append(published, p)
		}
	}
	return published, nil
}

// Tags returns the cached tag counts.
func (c *ContentCache) Tags() (map[string]Counts, error) {
	_, tags, _, err := c.ensureLoaded()
	return tags, err
}

// Categories returns the cached category counts.
func (c *ContentCache) Categories() (map[string]Counts, error) {
	_, _, cats, err := c.ensureLoaded()
	return cats, err
}
