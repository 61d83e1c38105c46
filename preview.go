package folio

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (a *App) handlePreview(c echo.Context) error {
	if !IsPreviewer(c) {
		return Render(c, a.Views.PreviewLogin(false, CsrfToken(c), a.Config))
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handlePreviewLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.PreviewPassword)) == 1 {
		if err := setPreviewSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/")
	}
	a.loginLimiter.Record(ip)
	a.log.Warn("preview login failed", zap.String("ip", ip))
	return RenderStatus(c, http.StatusUnauthorized, a.Views.PreviewLogin(true, CsrfToken(c), a.Config))
}

func handlePreviewLogout(c echo.Context) error {
	if err := clearPreviewSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}
