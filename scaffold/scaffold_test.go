package scaffold

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	fsys := memfs.New()
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	data := NewData("my-blog", now)
	data.Author = "Ada"

	created, err := Write(fsys, data)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"config.yaml",
		"pages/about.md",
		"posts/2026-10-19-hello-world.md",
		"widgets/welcome.md",
	}, created)

	cfg, err := util.ReadFile(fsys, "config.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(cfg), `title: "My Blog"`)
	assert.Contains(t, string(cfg), `author: "Ada"`)
	assert.Contains(t, string(cfg), `timezone: "UTC"`)

	post, err := util.ReadFile(fsys, "posts/2026-10-19-hello-world.md")
	require.NoError(t, err)
	assert.Contains(t, string(post), "created: 2026-10-19")
	assert.Contains(t, string(post), "<!-- more -->")
}

func TestToTitle(t *testing.T) {
	assert.Equal(t, "My Blog", ToTitle("my-blog"))
	assert.Equal(t, "Myblog", ToTitle("myblog"))
	assert.Equal(t, "", ToTitle(""))
}
