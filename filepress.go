// Package filepress serves a directory of plain-text posts, pages and
// widgets as a blog, built with Go, Echo, and templ.
//
// The Store reads the instance tree on every call; the App fronts it with
// a TTL cache, a JSON API, HTML views, an RSS feed and a sitemap. Views
// are templ components supplied through ViewFuncs, with defaults for
// anything left nil.
package filepress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

// App is the central filepress application. It wires together the store,
// cache, watcher, handlers, middleware, and views.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *Store
	Cache  *ContentCache
	Views  ViewFuncs
	Logger *slog.Logger

	fs      billy.Filesystem
	watcher *Watcher
}

// New creates a new filepress App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Logger: slog.Default(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	a.Views = a.Views.withDefaults()

	return a
}

// WithViews replaces the default views. Nil entries keep their default.
func WithViews(views ViewFuncs) Option {
	return func(a *App) {
		a.Views = views
	}
}

// Init validates the configuration and builds the store, cache, middleware
// and routes. Start calls it; tests may call it directly and drive a.Echo.
func (a *App) Init() error {
	if err := a.Config.validate(); err != nil {
		return fmt.Errorf("filepress: %w", err)
	}
	if a.fs == nil {
		a.fs = osfs.New(a.Config.InstancePath)
	}

	store, err := OpenStore(a.Config, a.fs, WithStoreLogger(a.Logger))
	if err != nil {
		return fmt.Errorf("filepress: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewContentCache(a.Store, a.Config.CacheTTL)

	a.setupMiddleware()
	a.setupRoutes()
	return nil
}

// Start initializes the app and serves until ctx is canceled or the server
// fails. When Watch is enabled, file edits invalidate the cache.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	if a.Config.Watch {
		w, err := NewWatcher(a.Config.InstancePath, a.Cache.Invalidate, a.Logger)
		if err != nil {
			return fmt.Errorf("filepress: init watcher: %w", err)
		}
		a.watcher = w
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	g.Go(func() error {
		a.Logger.Info("serving", "addr", a.Config.Addr, "instance", a.Config.InstancePath, "mode", a.Config.Mode)
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.Echo.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close stops the HTTP server immediately. Call this when the app is
// shutting down without canceling the Start context.
func (a *App) Close() error {
	return a.Echo.Close()
}

func (a *App) setupRoutes() {
	e := a.Echo

	if a.Config.Mode != ModeViewOnly {
		a.setupAPIRoutes(e.Group("/api"))
	}
	if a.Config.Mode == ModeAPIOnly {
		return
	}

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleIndex)
	e.GET("/page/:num/", a.handleIndex)
	e.GET("/tags/:tag/", a.handleTag)
	e.GET("/categories/:category/", a.handleCategory)
	e.GET("/archive/", a.handleArchive)
	e.GET("/archive/:year/", a.handleArchive)
	e.GET("/archive/:year/:month/", a.handleArchive)
	e.GET("/search", a.handleSearch)
	e.GET("/post/*", a.handlePost)
	e.GET("/*", a.handlePage)
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
