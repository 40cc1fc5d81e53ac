// Package inkwell is a small blog engine. It indexes markdown posts from a
// content directory into SQLite, serves them with Echo for previewing, and
// exports the whole site as static files.
//
// Users provide templ components via the ViewFuncs struct; inkwell handles
// loading, caching, routing, feeds and the static build.
package inkwell

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eringen/inkwell/content"
	"github.com/eringen/inkwell/site"
)

// ViewFuncs holds the components inkwell calls when rendering pages.
// Both the server and the static builder render through them.
type ViewFuncs struct {
	Home           func(cfg site.Config, meta site.PageMeta, posts []content.Post) templ.Component
	List           func(cfg site.Config, meta site.PageMeta, heading string, page content.Page, basePath string) templ.Component
	Post           func(cfg site.Config, meta site.PageMeta, post content.Post, related []content.Post) templ.Component
	Tags           func(cfg site.Config, meta site.PageMeta, tags []content.TagCount) templ.Component
	Page           func(cfg site.Config, meta site.PageMeta, page content.Post) templ.Component
	NotFound       func(cfg site.Config) templ.Component
	ServerError    func(cfg site.Config) templ.Component
	AdminLogin     func(cfg site.Config, showError bool, csrfToken string) templ.Component
	AdminDashboard func(cfg site.Config, posts []content.Post, skipped []content.Skipped, message, csrfToken string) templ.Component
}

// App is the central inkwell application. It wires together the store,
// cache, content index, handlers, middleware, and views.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *Store
	Cache  *PostCache
	Views  ViewFuncs
	Log    zerolog.Logger

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	imageDir     string

	indexMu sync.Mutex // serializes Reindex

	mu     sync.RWMutex
	pages  map[string]content.Post
	report IndexReport
}

// New creates a new App with the given configuration and views.
func New(cfg Config, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
		Log:    zerolog.Nop(),
		pages:  map[string]content.Post{},
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	if a.imageDir == "" {
		a.imageDir = filepath.Join(filepath.Dir(cfg.DatabasePath), "images")
	}
	return a
}

// Open initializes the store and cache and builds the first index.
func (a *App) Open(ctx context.Context) error {
	if err := a.Config.Validate(); err != nil {
		return fmt.Errorf("inkwell: %w", err)
	}
	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("inkwell: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)

	if _, err := a.Reindex(ctx); err != nil {
		return err
	}
	return nil
}

// Start opens the App, sets up middleware and routes, and serves HTTP
// until ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	if a.Store == nil {
		if err := a.Open(ctx); err != nil {
			return err
		}
	}
	if a.Config.AdminEnabled() {
		a.loginLimiter = NewLoginLimiter(5, time.Minute)
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Echo.Shutdown(shutdownCtx); err != nil {
			a.Log.Error().Err(err).Msg("shutdown")
		}
	}()

	a.Log.Info().Str("addr", a.Config.Addr).Str("url", a.Config.Site.Site.URL).Msg("serving")
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/public/style.css", a.handleStylesheet)
	e.Static("/public", a.Config.StaticDir)
	e.Static("/images", a.imageDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/page/:n/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/tags/", a.handleTags)
	e.GET("/tags/:tag/", a.handleTag)
	e.GET("/tags/:tag/page/:n/", a.handleTag)

	if a.Config.AdminEnabled() {
		e.GET("/admin/", a.handleAdmin)
		e.POST("/admin/login/", a.handleAdminLogin)
		e.POST("/admin/logout/", handleAdminLogout)
		e.POST("/admin/reindex/", a.handleAdminReindex)
	}

	e.GET("/:page/", a.handlePage)
}

// Pages returns a copy of the standalone pages keyed by slug.
func (a *App) Pages() map[string]content.Post {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]content.Post, len(a.pages))
	for k, v := range a.pages {
		out[k] = v
	}
	return out
}

// LastIndex returns the report of the most recent Reindex.
func (a *App) LastIndex() IndexReport {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.report
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
