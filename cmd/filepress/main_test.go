package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eringen/filepress"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "filepress dev\n", out)
}

func TestNewAndList(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-blog")

	out, err := run(t, "new", dir, "--author", "Ada")
	require.NoError(t, err)
	assert.Contains(t, out, "config.yaml")
	assert.FileExists(t, filepath.Join(dir, "pages", "about.md"))

	_, err = run(t, "new", dir)
	assert.ErrorContains(t, err, "already exists")

	out, err = run(t, "list", "posts", "--instance", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Hello, World")

	out, err = run(t, "list", "pages", "--instance", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "/about.html")

	out, err = run(t, "list", "tags", "--instance", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "welcome")

	out, err = run(t, "search", "visiting", "--instance", dir)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))

	out, err = run(t, "search", "Writing", "posts", "--instance", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Hello, World")

	_, err = run(t, "list", "comments", "--instance", dir)
	assert.Error(t, err)
}

func TestPostCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "post", "My First Post", "--instance", dir, "--tags", "go,web", "--draft")
	require.NoError(t, err)
	assert.Contains(t, out, "my-first-post.md")

	matches, err := filepath.Glob(filepath.Join(dir, "posts", "*-my-first-post.md"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	content, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "title: My First Post")
	assert.Contains(t, string(content), "tags: [go, web]")
	assert.Contains(t, string(content), "is_draft: true")
}

func TestWritePost(t *testing.T) {
	store := filepress.NewStore(memfs.New())
	now := time.Date(2016, 3, 1, 12, 0, 0, 0, time.UTC)

	name, err := writePost(store, "Hello", nil, false, now)
	require.NoError(t, err)
	assert.Equal(t, "posts/2016-03-01-hello.md", name)

	post, err := store.GetPost("2016/03/01/hello/", false)
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title())
	assert.True(t, now.Equal(post.Created()))

	_, err = writePost(store, "Hello", nil, false, now)
	assert.ErrorContains(t, err, "already exists")

	_, err = writePost(store, "!!!", nil, false, now)
	assert.Error(t, err)

	raw, err := util.ReadFile(store.Filesystem(), name)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "tags:")
	assert.NotContains(t, string(raw), "is_draft")
}

func TestWritePostQuotesHeaderValues(t *testing.T) {
	store := filepress.NewStore(memfs.New())
	now := time.Date(2016, 3, 1, 12, 0, 0, 0, time.UTC)

	tags := []string{"#go", "c: d", "[x]", "yes"}
	_, err := writePost(store, "Title: with # marks", tags, true, now)
	require.NoError(t, err)

	post, err := store.GetPost("2016/03/01/title-with-marks/", true)
	require.NoError(t, err)
	assert.Equal(t, "Title: with # marks", post.Title())
	assert.Equal(t, tags, post.Tags())
	assert.True(t, post.IsDraft())
	assert.True(t, now.Equal(post.Created()))

	posts, err := store.GetPosts(true)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}
