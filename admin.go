package inkwell

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(a.Config.Site, false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	a.Log.Warn().Str("ip", ip).Msg("admin login failed")
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(a.Config.Site, true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminReindex(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	report, err := a.Reindex(c.Request().Context())
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Indexed %d posts, %d pages, %d images; %d files skipped.",
		report.Posts, report.Pages, report.Images, len(report.Skipped))
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
}

// renderAdminDashboard lists every indexed post, drafts included, along with
// the files the last index skipped.
func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), "", true)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(a.Config.Site, posts, a.LastIndex().Skipped, msg, CsrfToken(c)))
}
