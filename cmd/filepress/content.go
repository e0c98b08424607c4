package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/eringen/filepress"
	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (c *cli) postCmd() *cobra.Command {
	var (
		tags  []string
		draft bool
	)
	cmd := &cobra.Command{
		Use:   "post <title>",
		Short: "Create a new post dated today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := c.openStore()
			if err != nil {
				return err
			}
			name, err := writePost(store, args[0], tags, draft, time.Now().In(cfg.Site.Location()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path.Join(cfg.InstancePath, name))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "comma-separated tags")
	cmd.Flags().BoolVar(&draft, "draft", false, "mark the post as a draft")
	return cmd
}

// postHeader is the metadata header written for new posts.
type postHeader struct {
	Title   string   `yaml:"title"`
	Created string   `yaml:"created"`
	Tags    []string `yaml:"tags,omitempty,flow"`
	IsDraft bool     `yaml:"is_draft,omitempty"`
}

// writePost creates posts/YYYY-MM-DD-slug.md and refuses to overwrite.
func writePost(store *filepress.Store, title string, tags []string, draft bool, now time.Time) (string, error) {
	slug := filepress.Slugify(title)
	if slug == "" {
		return "", fmt.Errorf("title %q has no usable characters", title)
	}
	name := path.Join("posts", now.Format("2006-01-02")+"-"+slug+".md")
	fsys := store.Filesystem()
	if _, err := fsys.Stat(name); err == nil {
		return "", fmt.Errorf("%s already exists", name)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	header, err := yaml.Marshal(postHeader{
		Title:   title,
		Created: now.Format(filepress.TimeFormat),
		Tags:    filepress.FilterEmpty(tags),
		IsDraft: draft,
	})
	if err != nil {
		return "", fmt.Errorf("encode header: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")

	if err := fsys.MkdirAll("posts", 0o755); err != nil {
		return "", err
	}
	if err := util.WriteFile(fsys, name, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return name, nil
}

func (c *cli) listCmd() *cobra.Command {
	var drafts bool
	cmd := &cobra.Command{
		Use:       "list <posts|pages|widgets|tags|categories>",
		Aliases:   []string{"l"},
		Short:     "List instance content",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"posts", "pages", "widgets", "tags", "categories"},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := c.openStore()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			if err := list(w, store, args[0], drafts); err != nil {
				return err
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&drafts, "drafts", "d", false, "include drafts")
	return cmd
}

func list(w *tabwriter.Writer, store *filepress.Store, kind string, drafts bool) error {
	switch kind {
	case "posts":
		posts, err := store.GetPosts(drafts)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "DATE\tKEY\tTITLE\tDRAFT")
		for _, p := range posts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", p.Created().Format("2006-01-02"), p.UniqueKey, p.Title(), p.IsDraft())
		}
	case "pages":
		fmt.Fprintln(w, "KEY\tTITLE\tDRAFT")
		for p, err := range store.Pages(drafts) {
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%t\n", p.UniqueKey, p.Title(), p.IsDraft())
		}
	case "widgets":
		widgets, err := store.GetWidgets(drafts)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "POSITION\tORDER\tDRAFT\tSTART")
		for _, wg := range widgets {
			pos, _ := wg.Position()
			order := "-"
			if n, ok := wg.Order(); ok {
				order = fmt.Sprint(n)
			}
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", pos, order, wg.IsDraft(), firstLine(wg.Body()))
		}
	case "tags", "categories":
		get := store.GetTags
		if kind == "categories" {
			get = store.GetCategories
		}
		counts, err := get()
		if err != nil {
			return err
		}
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		slices.Sort(names)
		fmt.Fprintln(w, "NAME\tTOTAL\tPUBLISHED")
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%d\t%d\n", name, counts[name].Total, counts[name].Published)
		}
	default:
		return fmt.Errorf("unknown content kind %q", kind)
	}
	return nil
}

func firstLine(body string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(body), "\n")
	if r := []rune(line); len(r) > 40 {
		return string(r[:40]) + "..."
	}
	return line
}

func (c *cli) searchCmd() *cobra.Command {
	var drafts bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search post and page titles and bodies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := c.openStore()
			if err != nil {
				return err
			}
			results, err := store.SearchFor(strings.Join(args, " "), drafts)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%s\n", r.Key(), r.Title())
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&drafts, "drafts", "d", false, "include drafts")
	return cmd
}
