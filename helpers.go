package inkwell

import (
	"net/url"
	"path"
	"strings"

	"github.com/eringen/inkwell/content"
	"github.com/eringen/inkwell/site"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// absURL resolves a root-relative path against the site URL.
func absURL(base, p string) string {
	return strings.TrimRight(base, "/") + p
}

// TagPath returns the root-relative listing path of a tag.
func TagPath(tag string) string {
	return content.TagPath(tag)
}

// PagePath returns the root-relative path of a standalone page.
func PagePath(slug string) string {
	return "/" + slug + "/"
}

func (a *App) pageMeta(title, description, p, ogType string) site.PageMeta {
	m := a.Config.Site.Site
	docTitle := m.Title
	if title != "" && title != m.Title {
		docTitle = title + " · " + m.Title
	}
	if description == "" {
		description = m.Description
	}
	return site.PageMeta{
		Title:       docTitle,
		Description: description,
		URL:         absURL(m.URL, p),
		Path:        p,
		OGType:      ogType,
	}
}
