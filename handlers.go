package inkwell

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// includeDrafts reports whether drafts are visible to this request: either
// the site lists drafts or an admin is previewing.
func (a *App) includeDrafts(c echo.Context) bool {
	return a.Config.Site.Site.ListDrafts || (a.Config.AdminEnabled() && IsAdmin(c))
}

// respond renders cmp, turning ErrNotFound into a 404.
func respond(c echo.Context, cmp templ.Component, err error) error {
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	return Render(c, cmp)
}

func (a *App) handleHome(c echo.Context) error {
	cmp, err := a.homeView(c.Request().Context(), a.includeDrafts(c))
	return respond(c, cmp, err)
}

func (a *App) handleBlog(c echo.Context) error {
	n, redirect, err := pageParam(c)
	if err != nil {
		return err
	}
	if redirect {
		return c.Redirect(http.StatusMovedPermanently, "/blog/")
	}
	cmp, err := a.listView(c.Request().Context(), "", n, a.includeDrafts(c))
	return respond(c, cmp, err)
}

func (a *App) handlePost(c echo.Context) error {
	cmp, err := a.postView(c.Request().Context(), c.Param("slug"), a.includeDrafts(c))
	return respond(c, cmp, err)
}

func (a *App) handleTags(c echo.Context) error {
	cmp, err := a.tagsView(c.Request().Context(), a.includeDrafts(c))
	return respond(c, cmp, err)
}

func (a *App) handleTag(c echo.Context) error {
	tag, err := url.PathUnescape(c.Param("tag"))
	if err != nil {
		return echo.ErrNotFound
	}
	n, redirect, err := pageParam(c)
	if err != nil {
		return err
	}
	if redirect {
		return c.Redirect(http.StatusMovedPermanently, TagPath(tag))
	}
	cmp, err := a.listView(c.Request().Context(), tag, n, a.includeDrafts(c))
	return respond(c, cmp, err)
}

func (a *App) handlePage(c echo.Context) error {
	cmp, err := a.pageView(c.Param("page"))
	return respond(c, cmp, err)
}

// pageParam reads the :n route parameter. Page 1 has no /page/1/ form, so
// it asks for a redirect to the listing root.
func pageParam(c echo.Context) (n int, redirect bool, err error) {
	raw := c.Param("n")
	if raw == "" {
		return 1, false, nil
	}
	n, convErr := strconv.Atoi(raw)
	if convErr != nil || n < 1 {
		return 0, false, echo.ErrNotFound
	}
	return n, n == 1, nil
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), "", false)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags(c.Request().Context(), false)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return writeSitemap(c.Response(), a.Config.Site, posts, tags, a.pageSlugs())
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), "", false)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return writeRSS(c.Response(), a.Config.Site, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, robotsTxt(a.Config.Site.Site.URL))
}

// handleStylesheet serves style.css from the static directory when present,
// and the embedded default otherwise.
func (a *App) handleStylesheet(c echo.Context) error {
	if p := filepath.Join(a.Config.StaticDir, "style.css"); isFile(p) {
		return c.File(p)
	}
	b, err := EmbeddedAssets.ReadFile("embedded/style.css")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", b)
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// robotsTxt allows everything except the admin area and points at the sitemap.
func robotsTxt(siteURL string) string {
	return fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: %s\n", absURL(siteURL, "/sitemap.xml"))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config.Site))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("server error")
		_ = RenderStatus(c, code, a.Views.ServerError(a.Config.Site))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

func itoa(n int) string { return strconv.Itoa(n) }
