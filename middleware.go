package filepress

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// listingPathExp matches listing routes that are only registered with a
// trailing slash. Pages and posts have their own canonical redirects.
var listingPathExp = regexp.MustCompile(`^/(?:page/\d+|tags/[^/]+|categories/[^/]+|archive(?:/\d+){0,2})$`)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())

	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			return !listingPathExp.MatchString(c.Request().URL.Path)
		},
	}))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			a.Logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; font-src 'self'",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(cacheControlMiddleware)
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case path == "/sitemap.xml" || path == "/feed.xml":
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case strings.HasPrefix(path, "/api/"):
			c.Response().Header().Set("Cache-Control", "no-cache")
		default:
			c.Response().Header().Set("Cache-Control", "public, max-age=3600")
		}
		return next(c)
	}
}

// httpErrorHandler maps content lookups that failed to 404 and renders
// HTML or JSON depending on the route.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidURL) {
		err = echo.ErrNotFound
	}
	api := strings.HasPrefix(c.Request().URL.Path, "/api/")

	var he *echo.HTTPError
	code := http.StatusInternalServerError
	if errors.As(err, &he) {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", "path", c.Request().URL.Path, "error", err)
	}

	switch {
	case api:
		_ = c.JSON(code, map[string]any{"code": code, "message": http.StatusText(code)})
	case code == http.StatusNotFound:
		_ = RenderStatus(c, code, a.Views.NotFound(a.Config.Site))
	case code >= 500:
		_ = RenderStatus(c, code, a.Views.ServerError(a.Config.Site))
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}
