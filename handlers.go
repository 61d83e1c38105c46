package folio

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// homePermalinks are the page permalinks shown on the home page, in order of
// preference.
var homePermalinks = []string{"/", "/about/"}

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	about := a.homePage(c)
	records, err := a.Cache.List(ctx, "", "")
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(about, recentRecords(records), a.Config))
}

func (a *App) homePage(c echo.Context) *ContentRecord {
	for _, p := range homePermalinks {
		r, err := a.lookup(c, p)
		if err == nil && r.Collection == Pages {
			return &r
		}
	}
	return nil
}

func (a *App) handleListing(col Collection) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		tag := normalizeTag(c.QueryParam("tag"))
		records, err := a.Cache.List(ctx, col, tag)
		if err != nil {
			return err
		}
		all, err := a.Cache.List(ctx, col, "")
		if err != nil {
			return err
		}
		return Render(c, a.Views.Listing(col, records, tag, collectionTags(all), a.Config))
	}
}

// collectionTags returns the sorted tags used by records.
func collectionTags(records []ContentRecord) []string {
	var tags []string
	for _, r := range records {
		tags = append(tags, r.Tags...)
	}
	tags = NormalizeTags(tags)
	sort.Strings(tags)
	return tags
}

func (a *App) handleRecord(c echo.Context) error {
	permalink := "/" + strings.TrimPrefix(c.Param("*"), "/")
	r, err := a.lookup(c, permalink)
	if errors.Is(err, ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config))
	}
	if err != nil {
		return err
	}
	if !r.IsPublished() {
		c.Response().Header().Set("Cache-Control", "no-store")
	}
	records, err := a.Cache.List(c.Request().Context(), r.Collection, "")
	if err != nil {
		return err
	}
	return Render(c, a.Views.Record(r, RelatedRecords(r, records), a.Config))
}

// lookup resolves a permalink from the cache, falling back to drafts for
// preview sessions.
func (a *App) lookup(c echo.Context, permalink string) (ContentRecord, error) {
	ctx := c.Request().Context()
	r, err := a.Cache.Get(ctx, permalink)
	if errors.Is(err, ErrNotFound) && a.Config.PreviewEnabled() && IsPreviewer(c) {
		return a.Store.GetAny(ctx, permalink)
	}
	return r, err
}

func (a *App) handleSitemap(c echo.Context) error {
	records, err := a.Cache.List(c.Request().Context(), "", "")
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return WriteSitemap(c.Response(), a.Config, records)
}

func (a *App) handleFeed(c echo.Context) error {
	records, err := a.Cache.List(c.Request().Context(), "", "")
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return WriteFeed(c.Response(), a.Config, records)
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, RobotsTxt(a.Config))
}

func (a *App) handleStylesheet(c echo.Context) error {
	b, err := EmbeddedAssets.ReadFile("embedded/folio.css")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", b)
}

// RobotsTxt allows everything except the preview routes and points crawlers
// at the sitemap.
func RobotsTxt(cfg SiteConfig) string {
	return fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /preview/\n\nSitemap: %s\n", BuildURL(cfg.URL, "sitemap.xml"))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.log.Error("server error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		_ = RenderStatus(c, code, a.Views.ServerError(a.Config))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
