package inkwell

import (
	"bytes"
	"context"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
// The component is rendered to a buffer first so a failing view still
// reaches the error handler with an uncommitted response.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	b, err := renderBytes(c.Request().Context(), cmp)
	if err != nil {
		return err
	}
	return c.HTMLBlob(code, b)
}

func renderBytes(ctx context.Context, cmp templ.Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := cmp.Render(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
