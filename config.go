package folio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string `yaml:"title" env:"FOLIO_SITE_NAME"`               // Site name (default "Folio")
	URL         string `yaml:"url" env:"FOLIO_SITE_URL"`                  // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description" env:"FOLIO_SITE_DESCRIPTION"` // Site description for RSS and meta tags
	Author      string `yaml:"author" env:"FOLIO_SITE_AUTHOR"`            // Author name for JSON-LD

	Addr         string `yaml:"-" env:"FOLIO_ADDR"`          // Listen address (default ":3000")
	ContentDir   string `yaml:"-" env:"FOLIO_CONTENT_DIR"`   // Content tree root (default ".")
	DatabasePath string `yaml:"-" env:"FOLIO_DATABASE_PATH"` // SQLite index path (default "data/content.db")
	OutputDir    string `yaml:"-" env:"FOLIO_OUTPUT_DIR"`    // Static build output (default "_site")

	PreviewPassword string `yaml:"-" env:"FOLIO_PREVIEW_PASSWORD"` // Enables draft preview when set
	SessionSecret   string `yaml:"-" env:"FOLIO_SESSION_SECRET"`   // Required with PreviewPassword
	CookieSecure    bool   `yaml:"-" env:"FOLIO_COOKIE_SECURE"`    // Set true for HTTPS

	CacheTTL time.Duration `yaml:"-" env:"FOLIO_CACHE_TTL"` // Record cache TTL (default 5min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Folio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "."
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/content.db"
	}
	if c.OutputDir == "" {
		c.OutputDir = "_site"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
}

// PreviewEnabled reports whether draft preview routes are served.
func (c SiteConfig) PreviewEnabled() bool {
	return c.PreviewPassword != ""
}

// SiteConfigFile is the site file read from the content directory.
const SiteConfigFile = "_config.yml"

// ResolveContentDir returns dir when it is set, else FOLIO_CONTENT_DIR,
// else the working directory.
func ResolveContentDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	v, err := env.ParseAs[struct {
		Dir string `env:"FOLIO_CONTENT_DIR" envDefault:"."`
	}]()
	if err != nil {
		return "", fmt.Errorf("folio: parse env: %w", err)
	}
	if v.Dir == "" {
		return ".", nil
	}
	return v.Dir, nil
}

// LoadConfig builds a SiteConfig from defaults, the content directory's
// _config.yml and FOLIO_* environment variables, in increasing precedence.
// An empty contentDir is resolved with ResolveContentDir; the directory
// _config.yml was read from is always the configured ContentDir. A missing
// _config.yml is not an error.
func LoadConfig(contentDir string) (SiteConfig, error) {
	dir, err := ResolveContentDir(contentDir)
	if err != nil {
		return SiteConfig{}, err
	}
	var cfg SiteConfig
	b, err := os.ReadFile(filepath.Join(dir, SiteConfigFile))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return SiteConfig{}, fmt.Errorf("folio: parse %s: %w", SiteConfigFile, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return SiteConfig{}, fmt.Errorf("folio: read %s: %w", SiteConfigFile, err)
	}
	if err := env.Parse(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("folio: parse env: %w", err)
	}
	cfg.ContentDir = dir
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger sets the logger used for requests, reloads and builds.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.log = l
	}
}
