// Package folio is a content engine for personal academic websites, built
// with Go, Echo, and templ. It indexes publications, pages and reading notes
// written as Markdown with YAML front matter, serves them over HTTP, and
// builds them into a static site.
//
// Users provide their own templ components via the ViewFuncs struct, and
// folio handles loading, indexing, routing, feeds and the static build.
package folio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ViewFuncs holds the templ components the framework calls when rendering
// pages. This is the inversion-of-control mechanism that lets users own and
// customize all templates.
type ViewFuncs struct {
	Home         func(about *ContentRecord, recent []ContentRecord, cfg SiteConfig) templ.Component
	Listing      func(c Collection, records []ContentRecord, activeTag string, tags []string, cfg SiteConfig) templ.Component
	Record       func(r ContentRecord, related []ContentRecord, cfg SiteConfig) templ.Component
	PreviewLogin func(showError bool, csrfToken string, cfg SiteConfig) templ.Component
	NotFound     func(cfg SiteConfig) templ.Component
	ServerError  func(cfg SiteConfig) templ.Component
}

// App is the central folio application. It wires together the store,
// cache, handlers, middleware, and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *RecordCache
	Views  ViewFuncs

	log          *zap.Logger
	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string

	initOnce sync.Once
	initErr  error
	reloadMu sync.Mutex
}

// New creates a new folio App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	return a
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.log
}

// Open initializes the store and loads the content tree. It does not set up
// HTTP routes, so the static build and CLI commands can use it alone.
func (a *App) Open(ctx context.Context) error {
	if a.Store != nil {
		return nil
	}
	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("folio: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewRecordCache(a.Store, a.Config.CacheTTL)
	return a.Reload(ctx)
}

// Reload re-reads the content directory and swaps the store contents. If the
// content tree has errors the previous contents keep being served.
func (a *App) Reload(ctx context.Context) error {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	start := time.Now()
	records, err := LoadDir(a.Config.ContentDir)
	if err != nil {
		a.log.Error("content load failed", zap.String("dir", a.Config.ContentDir), zap.Error(err))
		return fmt.Errorf("folio: load content: %w", err)
	}
	if err := a.Store.Replace(ctx, records); err != nil {
		return fmt.Errorf("folio: index content: %w", err)
	}
	a.Cache.Invalidate()
	a.log.Info("content loaded",
		zap.String("dir", a.Config.ContentDir),
		zap.Int("records", len(records)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Init opens the store and sets up middleware and routes. It is safe to call
// more than once; Start calls it.
func (a *App) Init(ctx context.Context) error {
	a.initOnce.Do(func() {
		if a.Config.PreviewEnabled() && a.Config.SessionSecret == "" {
			a.initErr = errors.New("folio: SessionSecret is required when PreviewPassword is set")
			return
		}
		if err := a.Open(ctx); err != nil {
			a.initErr = err
			return
		}
		a.loginLimiter = NewLoginLimiter(5, time.Minute)
		a.setupMiddleware()
		a.setupRoutes()
		for _, fn := range a.customRoutes {
			fn(a)
		}
	})
	return a.initErr
}

// Start initializes the app and starts the server. It blocks until the server
// stops.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}
	a.log.Info("listening", zap.String("addr", a.Config.Addr))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/public/folio.css", a.handleStylesheet)
	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	for _, c := range Collections {
		if c == Pages {
			continue
		}
		e.GET("/"+string(c)+"/", a.handleListing(c))
	}

	if a.Config.PreviewEnabled() {
		e.GET("/preview/", a.handlePreview)
		e.POST("/preview/login/", a.handlePreviewLogin)
		e.POST("/preview/logout/", handlePreviewLogout)
	}

	e.GET("/*", a.handleRecord)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
