package inkwell

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/eringen/inkwell/site"
)

// Config holds everything an inkwell App needs: the site configuration
// consumed by the views plus paths and server settings.
type Config struct {
	Site site.Config // Navigation, metadata and page size

	ContentDir string // Markdown content root (default "content")
	StaticDir  string // User static assets served under /public (default "static")
	OutputDir  string // Static export target (default "public")

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite index path (default "data/blog.db")

	AdminPassword string // Enables /admin/ when set
	SessionSecret string // Required when AdminPassword is set
	CookieSecure  bool   // Set true for HTTPS

	PostCacheTTL  time.Duration // Post cache TTL (default 5min)
	MaxImageWidth int           // Images wider than this are downscaled (default 1200)

	LogLevel  string // zerolog level (default "info")
	LogFormat string // "console" or "json" (default "console")
}

// PostsDir returns the directory holding blog posts, relative to ContentDir.
func (c Config) PostsDir() string { return "posts" }

// PagesDir returns the directory holding standalone pages, relative to ContentDir.
func (c Config) PagesDir() string { return "pages" }

// ImagesDir returns the directory holding post images, relative to ContentDir.
func (c Config) ImagesDir() string { return "images" }

// AdminEnabled reports whether the admin preview area is served.
func (c Config) AdminEnabled() bool { return c.AdminPassword != "" }

func (c *Config) setDefaults() {
	def := site.Default()
	if c.Site.Nav.Len() == 0 {
		c.Site.Nav = def.Nav
	}
	if c.Site.PageSize == 0 {
		c.Site.PageSize = def.PageSize
	}
	m := &c.Site.Site
	if m.Name == "" {
		m.Name = def.Site.Name
	}
	if m.Title == "" {
		m.Title = def.Site.Title
	}
	if m.Description == "" {
		m.Description = def.Site.Description
	}
	if m.URL == "" {
		m.URL = def.Site.URL
	}
	if m.GithubURL == "" {
		m.GithubURL = def.Site.GithubURL
	}
	m.URL = strings.TrimRight(m.URL, "/")

	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.OutputDir == "" {
		c.OutputDir = "public"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.MaxImageWidth == 0 {
		c.MaxImageWidth = 1200
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
}

// Validate checks the site configuration and the settings the server
// depends on.
func (c Config) Validate() error {
	var errs []error
	if err := c.Site.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.AdminEnabled() && c.SessionSecret == "" {
		errs = append(errs, errors.New("admin.session_secret is required when admin.password is set"))
	}
	if out, err := filepath.Abs(c.OutputDir); err != nil {
		errs = append(errs, fmt.Errorf("output_dir: %w", err))
	} else {
		// Build clears output_dir, so it must not hold the working
		// directory or any source directory.
		for _, src := range []string{".", c.ContentDir, c.StaticDir} {
			if contains(out, src) {
				errs = append(errs, fmt.Errorf("output_dir %q would overwrite sources", c.OutputDir))
				break
			}
		}
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// contains reports whether dir, made absolute, is p or an ancestor of p.
func contains(dir, p string) bool {
	abs, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// LoadConfig reads configuration from the YAML file at path (or
// ./inkwell.yaml when path is empty and the file exists), then applies
// INKWELL_* environment overrides such as INKWELL_SITE_URL.
func LoadConfig(path string) (Config, error) {
	v := viper.New()

	def := site.Default()
	v.SetDefault("site.name", def.Site.Name)
	v.SetDefault("site.title", def.Site.Title)
	v.SetDefault("site.description", def.Site.Description)
	v.SetDefault("site.url", def.Site.URL)
	v.SetDefault("site.githubUrl", def.Site.GithubURL)
	v.SetDefault("site.listDrafts", def.Site.ListDrafts)
	v.SetDefault("pageSize", def.PageSize)

	v.SetDefault("content_dir", "content")
	v.SetDefault("static_dir", "static")
	v.SetDefault("output_dir", "public")
	v.SetDefault("addr", ":3000")
	v.SetDefault("database_path", "data/blog.db")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.session_secret", "")
	v.SetDefault("admin.cookie_secure", false)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("images.max_width", 1200)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("inkwell")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("INKWELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("inkwell: read config: %w", err)
		}
	}

	// The page size shares the site schema's spelling.
	if v.InConfig("page_size") {
		return Config{}, errors.New(`inkwell: read config: unknown key "page_size", use "pageSize"`)
	}

	nav := def.Nav
	if used := v.ConfigFileUsed(); used != "" {
		n, err := readNav(afero.NewOsFs(), used)
		if err != nil {
			return Config{}, err
		}
		if n.Len() > 0 {
			nav = n
		}
	}

	cfg := Config{
		Site: site.Config{
			Site: site.Metadata{
				Name:        strings.TrimSpace(v.GetString("site.name")),
				Title:       strings.TrimSpace(v.GetString("site.title")),
				Description: strings.TrimSpace(v.GetString("site.description")),
				URL:         strings.TrimSpace(v.GetString("site.url")),
				GithubURL:   strings.TrimSpace(v.GetString("site.githubUrl")),
				ListDrafts:  v.GetBool("site.listDrafts"),
			},
			Nav:      nav,
			PageSize: v.GetInt("pageSize"),
		},
		ContentDir:    v.GetString("content_dir"),
		StaticDir:     v.GetString("static_dir"),
		OutputDir:     v.GetString("output_dir"),
		Addr:          v.GetString("addr"),
		DatabasePath:  v.GetString("database_path"),
		AdminPassword: v.GetString("admin.password"),
		SessionSecret: v.GetString("admin.session_secret"),
		CookieSecure:  v.GetBool("admin.cookie_secure"),
		PostCacheTTL:  v.GetDuration("cache.ttl"),
		MaxImageWidth: v.GetInt("images.max_width"),
		LogLevel:      v.GetString("log.level"),
		LogFormat:     v.GetString("log.format"),
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("inkwell: invalid config: %w", err)
	}
	return cfg, nil
}

// readNav decodes the nav mapping of a YAML config file directly, since
// viper flattens mappings into unordered maps and menu order matters.
func readNav(fsys afero.Fs, path string) (site.NavMap, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return site.NavMap{}, nil
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return site.NavMap{}, nil
		}
		return site.NavMap{}, fmt.Errorf("inkwell: read nav: %w", err)
	}
	var doc struct {
		Nav site.NavMap `yaml:"nav"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return site.NavMap{}, fmt.Errorf("inkwell: decode nav in %s: %w", path, err)
	}
	return doc.Nav, nil
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

// WithLogger sets the logger used by the App and its request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) {
		a.Log = l
	}
}

// WithImageCacheDir sets where the server writes downscaled images
// (default: "images" next to the database file).
func WithImageCacheDir(dir string) Option {
	return func(a *App) {
		a.imageDir = dir
	}
}
