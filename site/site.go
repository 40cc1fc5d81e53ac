// Package site holds the blog's static configuration: the navigation
// menu, the site metadata record and the listing page size. Values are
// fixed when the configuration is loaded and never change afterwards.
package site

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrInvalid wraps every configuration validation failure.
	ErrInvalid = errors.New("invalid site configuration")

	// ErrDuplicateNavKey is returned when a navigation key appears twice.
	ErrDuplicateNavKey = errors.New("duplicate navigation key")
)

// PageSize is the number of posts shown on each paginated listing page.
const PageSize = 8

// Metadata describes the site for page heads, feeds and canonical links.
type Metadata struct {
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	Title       string `json:"title" yaml:"title" mapstructure:"title"`
	Description string `json:"description" yaml:"description" mapstructure:"description"`
	URL         string `json:"url" yaml:"url" mapstructure:"url"`
	GithubURL   string `json:"githubUrl" yaml:"githubUrl" mapstructure:"githubUrl"`
	// ListDrafts includes unpublished posts in listings.
	ListDrafts bool `json:"listDrafts" yaml:"listDrafts" mapstructure:"listDrafts"`
}

// NavItems is the navigation menu, rendered in this order.
var NavItems = MustNavMap(
	NavEntry{Key: "home", NavItem: NavItem{Path: "/", Title: "home"}},
	NavEntry{Key: "blog", NavItem: NavItem{Path: "/blog", Title: "blog"}},
	NavEntry{Key: "tags", NavItem: NavItem{Path: "/tags", Title: "tags"}},
	NavEntry{Key: "about", NavItem: NavItem{Path: "/about", Title: "about"}},
)

// Site is the metadata of this blog.
var Site = Metadata{
	Name:        "inkwell",
	Title:       "inkwell",
	Description: "Notes on Go, systems and the occasional side project.",
	URL:         "https://inkwell.dev",
	GithubURL:   "https://github.com/eringen/inkwell",
	ListDrafts:  false,
}

// Config bundles the three pieces of site configuration consumed by the
// renderer.
type Config struct {
	Site     Metadata `json:"site" yaml:"site"`
	Nav      NavMap   `json:"nav" yaml:"nav"`
	PageSize int      `json:"pageSize" yaml:"pageSize"`
}

// Default returns the configuration built from Site, NavItems and PageSize.
func Default() Config {
	return Config{
		Site:     Site,
		Nav:      NavItems,
		PageSize: PageSize,
	}
}

// Validate reports every data-shape violation in c, joined into one error.
// Each violation wraps ErrInvalid.
func (c Config) Validate() error {
	var errs []error
	for _, e := range c.Nav.Entries() {
		if !strings.HasPrefix(e.Path, "/") {
			errs = append(errs, fmt.Errorf("nav %q: path %q must start with /: %w", e.Key, e.Path, ErrInvalid))
		}
		if strings.TrimSpace(e.Title) == "" {
			errs = append(errs, fmt.Errorf("nav %q: title is empty: %w", e.Key, ErrInvalid))
		}
	}
	if err := checkAbsoluteURL(c.Site.URL); err != nil {
		errs = append(errs, fmt.Errorf("site url: %w", err))
	}
	if err := checkAbsoluteURL(c.Site.GithubURL); err != nil {
		errs = append(errs, fmt.Errorf("site githubUrl: %w", err))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page size %d must be positive: %w", c.PageSize, ErrInvalid))
	}
	return errors.Join(errs...)
}

func checkAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%q: %v: %w", raw, err, ErrInvalid)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL: %w", raw, ErrInvalid)
	}
	switch u.Scheme {
	case "http", "https":
		return nil
	default:
		return fmt.Errorf("%q: unsupported scheme %q: %w", raw, u.Scheme, ErrInvalid)
	}
}

// PageMeta carries per-page OpenGraph and SEO metadata into the page head.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	Path        string // request path, used to mark the active menu link
	OGType      string // "website" or "article"
}
