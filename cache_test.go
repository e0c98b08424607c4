package filepress

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentCache(t *testing.T) {
	s, fsys := newTestStore(t)
	c := NewContentCache(s, time.Hour)

	published, err := c.Posts(false)
	require.NoError(t, err)
	assert.Len(t, published, 4)
	all, err := c.Posts(true)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	tags, err := c.Tags()
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 3, Published: 2}, tags["B"])
	cats, err := c.Categories()
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 2, Published: 2}, cats["Go"])

	require.NoError(t, util.WriteFile(fsys, "posts/2016-04-01-new.md", []byte("---\ntags: [B]\n---\nnew"), 0o644))

	published, err = c.Posts(false)
	require.NoError(t, err)
	assert.Len(t, published, 4, "served from cache until invalidated")

	c.Invalidate()
	published, err = c.Posts(false)
	require.NoError(t, err)
	require.Len(t, published, 5)
	assert.Equal(t, "/post/2016/04/01/new/", published[0].UniqueKey)
	tags, err = c.Tags()
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 4, Published: 3}, tags["B"])
}

func TestContentCacheExpires(t *testing.T) {
	s, fsys := newTestStore(t)
	c := NewContentCache(s, time.Millisecond)

	posts, err := c.Posts(false)
	require.NoError(t, err)
	assert.Len(t, posts, 4)

	require.NoError(t, fsys.Remove("posts/2016-03-01-first.md"))
	time.Sleep(5 * time.Millisecond)

	posts, err = c.Posts(false)
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}
