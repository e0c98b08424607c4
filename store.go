package filepress

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"

	"github.com/eringen/filepress/parsers"
)

var (
	// ErrNotFound is returned when a requested post or page does not exist
	// or is a draft hidden from the caller.
	ErrNotFound = errors.New("filepress: not found")
	// ErrInvalidURL is returned when a locator cannot be canonicalized.
	ErrInvalidURL = errors.New("filepress: invalid url")
	// ErrMalformedMeta is returned when a metadata header cannot be decoded.
	ErrMalformedMeta = errors.New("filepress: malformed metadata")
)

const (
	postsDir   = "posts"
	pagesDir   = "pages"
	widgetsDir = "widgets"
)

var (
	postFileExp  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-.+$`)
	delimiterExp = regexp.MustCompile(`(?m)^-{3,}[ \t\r]*$`)
)

// Store reads posts, pages and widgets from an instance directory tree.
// Every call re-reads the tree; a Store holds no mutable state and is safe
// for concurrent use.
type Store struct {
	fs               billy.Filesystem
	site             Site
	registry         *parsers.Registry
	logger           *slog.Logger
	allowSearchPages bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithSite sets the site defaults used by entity fallbacks.
func WithSite(site Site) StoreOption {
	return func(s *Store) {
		s.site = site
	}
}

// WithRegistry replaces the default parser registry.
func WithRegistry(r *parsers.Registry) StoreOption {
	return func(s *Store) {
		s.registry = r
	}
}

// WithStoreLogger sets the logger used to report skipped files.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithPageSearch enables or disables searching pages in SearchFor.
func WithPageSearch(allow bool) StoreOption {
	return func(s *Store) {
		s.allowSearchPages = allow
	}
}

// NewStore returns a Store reading from fsys, whose root holds the posts,
// pages and widgets directories.
func NewStore(fsys billy.Filesystem, opts ...StoreOption) *Store {
	s := &Store{
		fs:               fsys,
		logger:           slog.Default(),
		allowSearchPages: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.registry == nil {
		s.registry = parsers.NewDefaultRegistry(s.logger)
	}
	return s
}

// OpenStore builds the Store described by cfg.
func OpenStore(cfg Config, fsys billy.Filesystem, opts ...StoreOption) (*Store, error) {
	if cfg.StorageType != "file" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStorage, cfg.StorageType)
	}
	base := []StoreOption{WithSite(cfg.Site), WithPageSearch(cfg.AllowSearchPages)}
	return NewStore(fsys, append(base, opts...)...), nil
}

// Registry returns the parser registry used to classify files.
func (s *Store) Registry() *parsers.Registry {
	return s.registry
}

// Site returns the site defaults.
func (s *Store) Site() Site {
	return s.site
}

// Filesystem returns the instance filesystem.
func (s *Store) Filesystem() billy.Filesystem {
	return s.fs
}

// ReadFile reads a content file and splits its metadata header from the
// body. A file without a complete header is returned whole with empty
// metadata.
func (s *Store) ReadFile(name string) (Meta, string, error) {
	data, err := util.ReadFile(s.fs, name)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", name, err)
	}
	meta, body, err := splitMeta(string(data))
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", name, err)
	}
	return meta, body, nil
}

func splitMeta(text string) (Meta, string, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "---") {
		return Meta{}, text, nil
	}
	locs := delimiterExp.FindAllStringIndex(text, 2)
	if len(locs) < 2 || locs[0][0] != 0 {
		return Meta{}, text, nil
	}

	var meta Meta
	if err := yaml.Unmarshal([]byte(text[locs[0][1]:locs[1][0]]), &meta); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedMeta, err)
	}
	if meta == nil {
		meta = Meta{}
	}
	return meta, strings.TrimLeft(text[locs[1][1]:], " \t\r\n"), nil
}

// readDir lists dir sorted by name. A missing directory is empty.
func (s *Store) readDir(dir string) ([]os.FileInfo, error) {
	infos, err := s.fs.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })
	return infos, nil
}

// classify splits a file name into stem and format. format is empty when
// the extension maps to no registered parser.
func (s *Store) classify(name string) (stem, format string) {
	ext := path.Ext(name)
	if ext == "" || ext == "." {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), s.registry.FormatForExt(ext)
}

// searchFile finds the file in dir whose stem is stem and whose extension
// belongs to a known format.
func (s *Store) searchFile(dir, stem string) (name, format string, err error) {
	infos, err := s.readDir(dir)
	if err != nil {
		return "", "", err
	}
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		st, f := s.classify(info.Name())
		if st == stem && f != "" {
			return path.Join(dir, info.Name()), f, nil
		}
	}
	return "", "", ErrNotFound
}

func (s *Store) loadEntity(name, format string) (Entity, error) {
	meta, body, err := s.ReadFile(name)
	if err != nil {
		return Entity{}, err
	}
	e := Entity{Meta: meta, RawContent: body, site: s.site}
	e.SetFormat(format)
	return e, nil
}

func (s *Store) skip(name string, err error) {
	s.logger.Warn("skipping content file", "path", name, "error", err)
}

// escapes reports a locator that would leave its content directory.
func escapes(rel string) bool {
	return slices.Contains(strings.Split(rel, "/"), "..")
}

// PostFilter narrows the result of GetPosts.
type PostFilter func(*Post) bool

// GetPosts returns all posts, newest first. Drafts are kept only when
// includeDraft is set; every filter must accept a post for it to be kept.
func (s *Store) GetPosts(includeDraft bool, filters ...PostFilter) ([]*Post, error) {
	infos, err := s.readDir(postsDir)
	if err != nil {
		return nil, err
	}

	posts := make([]*Post, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		stem, format := s.classify(info.Name())
		if format == "" || !postFileExp.MatchString(stem) {
			continue
		}
		name := path.Join(postsDir, info.Name())
		e, err := s.loadEntity(name, format)
		if err != nil {
			s.skip(name, err)
			continue
		}
		rel := strings.Replace(stem, "-", "/", 3) + "/"
		post := &Post{Page: Page{Entity: e, UniqueKey: "/post/" + rel, RelURL: rel}}
		if !includeDraft && post.IsDraft() {
			continue
		}
		if !acceptAll(post, filters) {
			continue
		}
		posts = append(posts, post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Created().After(posts[j].Created())
	})
	return posts, nil
}

func acceptAll(p *Post, filters []PostFilter) bool {
	for _, f := range filters {
		if !f(p) {
			return false
		}
	}
	return true
}

// GetPost returns the post addressed by rel, e.g. "2016/3/2/my-post".
// RelURL on the result is rel exactly as given.
func (s *Store) GetPost(rel string, includeDraft bool) (*Post, error) {
	fixed, ok := FixPostRelativeURL(rel)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rel)
	}
	canonical := strings.TrimSuffix(fixed, "index.html")
	stem := strings.ReplaceAll(strings.TrimSuffix(canonical, "/"), "/", "-")

	name, format, err := s.searchFile(postsDir, stem)
	if err != nil {
		return nil, err
	}
	e, err := s.loadEntity(name, format)
	if err != nil {
		return nil, err
	}
	post := &Post{Page: Page{Entity: e, UniqueKey: "/post/" + canonical, RelURL: rel}}
	if !includeDraft && post.IsDraft() {
		return nil, ErrNotFound
	}
	return post, nil
}

// GetPage returns the page addressed by rel, e.g. "about/", "about.html"
// or "a/b/index.html".
func (s *Store) GetPage(rel string, includeDraft bool) (*Page, error) {
	rel = strings.TrimLeft(rel, "/")
	if escapes(rel) {
		return nil, ErrNotFound
	}
	dir, file := path.Split(rel)
	dir = strings.TrimSuffix(dir, "/")

	stem := "index"
	if file != "" {
		stem = strings.TrimSuffix(file, path.Ext(file))
	}

	name, format, err := s.searchFile(path.Join(pagesDir, dir), stem)
	if err != nil {
		return nil, err
	}
	e, err := s.loadEntity(name, format)
	if err != nil {
		return nil, err
	}

	key := "/" + rel
	if strings.HasSuffix(key, "/index.html") {
		key = strings.TrimSuffix(key, "index.html")
	}
	page := &Page{Entity: e, UniqueKey: key, RelURL: rel}
	if !includeDraft && page.IsDraft() {
		return nil, ErrNotFound
	}
	return page, nil
}

// Pages walks pages/ recursively in name order and yields each page
// resolved through GetPage. Hidden drafts and malformed files are skipped.
// The walk stops when the consumer stops or a directory cannot be listed.
func (s *Store) Pages(includeDraft bool) iter.Seq2[*Page, error] {
	return func(yield func(*Page, error) bool) {
		s.walkPages("", includeDraft, yield)
	}
}

func (s *Store) walkPages(dir string, includeDraft bool, yield func(*Page, error) bool) bool {
	infos, err := s.readDir(path.Join(pagesDir, dir))
	if err != nil {
		yield(nil, err)
		return false
	}
	for _, info := range infos {
		if info.IsDir() {
			if !s.walkPages(path.Join(dir, info.Name()), includeDraft, yield) {
				return false
			}
			continue
		}
		stem, format := s.classify(info.Name())
		if format == "" {
			continue
		}
		rel := stem + ".html"
		if stem == "index" {
			rel = ""
		}
		if dir != "" {
			rel = dir + "/" + rel
		}

		page, err := s.GetPage(rel, includeDraft)
		switch {
		case errors.Is(err, ErrNotFound):
			continue
		case err != nil:
			s.skip(path.Join(pagesDir, dir, info.Name()), err)
			continue
		}
		if !yield(page, nil) {
			return false
		}
	}
	return true
}

// GetPages collects Pages into a slice.
func (s *Store) GetPages(includeDraft bool) ([]*Page, error) {
	var pages []*Page
	for page, err := range s.Pages(includeDraft) {
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// GetWidgets returns the widgets sorted by position then order. When
// positions are given only widgets at one of them are returned.
func (s *Store) GetWidgets(includeDraft bool, positions ...string) ([]*Widget, error) {
	infos, err := s.readDir(widgetsDir)
	if err != nil {
		return nil, err
	}

	widgets := make([]*Widget, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		_, format := s.classify(info.Name())
		if format == "" {
			continue
		}
		name := path.Join(widgetsDir, info.Name())
		e, err := s.loadEntity(name, format)
		if err != nil {
			s.skip(name, err)
			continue
		}
		w := &Widget{Entity: e}
		if !includeDraft && w.IsDraft() {
			continue
		}
		if len(positions) > 0 {
			pos, _ := w.Position()
			if !slices.Contains(positions, pos) {
				continue
			}
		}
		widgets = append(widgets, w)
	}

	sort.SliceStable(widgets, func(i, j int) bool {
		pi, _ := widgets[i].Position()
		pj, _ := widgets[j].Position()
		if pi != pj {
			return pi < pj
		}
		oi, iok := widgets[i].Order()
		oj, jok := widgets[j].Order()
		switch {
		case iok && jok:
			return oi < oj
		default:
			return iok && !jok
		}
	})
	return widgets, nil
}

// GetTags counts posts per tag. Drafts count towards the total only.
func (s *Store) GetTags() (map[string]Counts, error) {
	return s.countBy((*Post).Tags)
}

// GetCategories counts posts per category. Drafts count towards the total
// only.
func (s *Store) GetCategories() (map[string]Counts, error) {
	return s.countBy((*Post).Categories)
}

func (s *Store) countBy(names func(*Post) []string) (map[string]Counts, error) {
	posts, err := s.GetPosts(true)
	if err != nil {
		return nil, err
	}
	return countPosts(posts, names), nil
}

func countPosts(posts []*Post, names func(*Post) []string) map[string]Counts {
	result := make(map[string]Counts)
	for _, p := range posts {
		seen := make(map[string]struct{})
		draft := p.IsDraft()
		for _, name := range names(p) {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			c := result[name]
			c.Total++
			if !draft {
				c.Published++
			}
			result[name] = c
		}
	}
	return result
}
