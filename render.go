package folio

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
// The component is rendered before anything is sent, so a failing view
// reaches the error handler instead of producing a truncated page.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	b, err := renderHTML(c.Request().Context(), cmp)
	if err != nil {
		return fmt.Errorf("folio: render %s: %w", c.Request().URL.Path, err)
	}
	return c.HTMLBlob(code, b)
}

func renderHTML(ctx context.Context, cmp templ.Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := cmp.Render(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
