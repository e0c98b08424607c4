package filepress

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/spf13/viper"
)

var (
	// ErrUnsupportedStorage is returned when the configured storage type is unknown.
	ErrUnsupportedStorage = errors.New("filepress: unsupported storage type")
	// ErrUnsupportedMode is returned when the configured serving mode is unknown.
	ErrUnsupportedMode = errors.New("filepress: unsupported mode")
)

// Serving modes.
const (
	ModeAPIOnly  = "api-only"
	ModeViewOnly = "view-only"
	ModeMixed    = "mixed"
)

// Site holds the site-wide defaults that entity properties fall back to.
type Site struct {
	Title    string `mapstructure:"title" json:"title"`
	Subtitle string `mapstructure:"subtitle" json:"subtitle"`
	Author   string `mapstructure:"author" json:"author,omitempty"`
	Email    string `mapstructure:"email" json:"email,omitempty"`
	Timezone string `mapstructure:"timezone" json:"timezone,omitempty"`
	URL      string `mapstructure:"url" json:"url,omitempty"`
}

// Location resolves the site timezone, falling back to UTC.
func (s Site) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Config holds all configuration for a filepress instance.
type Config struct {
	InstancePath string `mapstructure:"instance_path"` // Instance root holding posts/, pages/, widgets/
	StorageType  string `mapstructure:"storage_type"`  // Only "file" is supported
	Mode         string `mapstructure:"mode"`          // api-only, view-only or mixed

	Addr string `mapstructure:"addr"` // Listen address (default ":8080")
	URL  string `mapstructure:"url"`  // Canonical URL used in feed and sitemap

	EntriesPerPage   int  `mapstructure:"entries_per_page"`
	FeedCount        int  `mapstructure:"feed_count"`
	ShowTOC          bool `mapstructure:"show_toc"`
	TOCDepth         int  `mapstructure:"toc_depth"`
	TOCLowestLevel   int  `mapstructure:"toc_lowest_level"`
	AllowSearchPages bool `mapstructure:"allow_search_pages"`
	IncludeDrafts    bool `mapstructure:"include_drafts"` // Draft visibility for public queries

	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Watch    bool          `mapstructure:"watch"` // Invalidate the cache on file changes

	Site Site `mapstructure:"site"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	cfg := Config{
		ShowTOC:          true,
		AllowSearchPages: true,
		Watch:            true,
	}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	if c.InstancePath == "" {
		c.InstancePath = "."
	}
	if c.StorageType == "" {
		c.StorageType = "file"
	}
	if c.Mode == "" {
		c.Mode = ModeMixed
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.URL == "" {
		c.URL = "http://localhost:8080"
	}
	if c.EntriesPerPage == 0 {
		c.EntriesPerPage = 5
	}
	if c.FeedCount == 0 {
		c.FeedCount = 10
	}
	if c.TOCDepth == 0 {
		c.TOCDepth = 3
	}
	if c.TOCLowestLevel == 0 {
		c.TOCLowestLevel = 3
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.Site.Title == "" {
		c.Site.Title = "Untitled"
	}
	if c.Site.Subtitle == "" {
		c.Site.Subtitle = "Yet another filepress site."
	}
	if c.Site.URL == "" {
		c.Site.URL = c.URL
	}
}

func (c Config) validate() error {
	switch c.Mode {
	case ModeAPIOnly, ModeViewOnly, ModeMixed:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedMode, c.Mode)
	}
	if c.StorageType != "file" {
		return fmt.Errorf("%w: %q", ErrUnsupportedStorage, c.StorageType)
	}
	return nil
}

// LoadConfig reads config.yaml from the instance root (if present) and applies
// FILEPRESS_* environment overrides on top of the defaults.
func LoadConfig(instancePath string) (Config, error) {
	v := viper.New()
	def := DefaultConfig()
	def.InstancePath = instancePath

	v.SetDefault("instance_path", def.InstancePath)
	v.SetDefault("storage_type", def.StorageType)
	v.SetDefault("mode", def.Mode)
	v.SetDefault("addr", def.Addr)
	v.SetDefault("url", def.URL)
	v.SetDefault("entries_per_page", def.EntriesPerPage)
	v.SetDefault("feed_count", def.FeedCount)
	v.SetDefault("show_toc", def.ShowTOC)
	v.SetDefault("toc_depth", def.TOCDepth)
	v.SetDefault("toc_lowest_level", def.TOCLowestLevel)
	v.SetDefault("allow_search_pages", def.AllowSearchPages)
	v.SetDefault("include_drafts", def.IncludeDrafts)
	v.SetDefault("cache_ttl", def.CacheTTL)
	v.SetDefault("watch", def.Watch)
	v.SetDefault("site.title", def.Site.Title)
	v.SetDefault("site.subtitle", def.Site.Subtitle)
	v.SetDefault("site.author", "")
	v.SetDefault("site.email", "")
	v.SetDefault("site.timezone", "UTC")
	v.SetDefault("site.url", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(instancePath)
	v.SetEnvPrefix("FILEPRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithLogger sets the structured logger used by the App and its store.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.Logger = logger
	}
}

// WithFilesystem replaces the on-disk instance root, mainly for tests.
func WithFilesystem(fsys billy.Filesystem) Option {
	return func(a *App) {
		a.fs = fsys
	}
}
