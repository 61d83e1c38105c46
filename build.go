package folio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/a-h/templ"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BuildOptions controls a static build.
type BuildOptions struct {
	OutDir string
	// Documents also writes each record's text document next to its page.
	Documents bool
}

// BuildResult summarizes a static build.
type BuildResult struct {
	Pages  int
	Images int
}

// Build renders the whole site into opts.OutDir: one index.html per
// published record, the home page, collection listings, feeds, the
// stylesheet and images. Open must have been called.
func (a *App) Build(ctx context.Context, opts BuildOptions) (BuildResult, error) {
	if a.Store == nil {
		return BuildResult{}, fmt.Errorf("folio: build: app is not open")
	}
	out := opts.OutDir
	if out == "" {
		out = a.Config.OutputDir
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return BuildResult{}, err
	}

	records, err := a.Store.List(ctx, Query{})
	if err != nil {
		return BuildResult{}, err
	}

	var res BuildResult
	var pages atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	byCollection := make(map[Collection][]ContentRecord)
	for _, r := range records {
		byCollection[r.Collection] = append(byCollection[r.Collection], r)
	}

	hasRoot := false
	for _, r := range records {
		if r.Permalink == "/" {
			hasRoot = true
		}
		g.Go(func() error {
			cmp := a.Views.Record(r, RelatedRecords(r, byCollection[r.Collection]), a.Config)
			if r.Permalink == "/" {
				cmp = a.Views.Home(&r, recentRecords(records), a.Config)
			}
			if err := writePage(gctx, out, r.Permalink, cmp); err != nil {
				return fmt.Errorf("folio: build %s: %w", r.Permalink, err)
			}
			if opts.Documents {
				doc, err := Document(r)
				if err != nil {
					return err
				}
				if err := writeFile(out, r.Permalink, "index.md", []byte(doc)); err != nil {
					return err
				}
			}
			pages.Add(1)
			return nil
		})
	}

	if !hasRoot {
		g.Go(func() error {
			var about *ContentRecord
			for _, r := range byCollection[Pages] {
				if r.Permalink == "/about/" {
					about = &r
				}
			}
			if err := writePage(gctx, out, "/", a.Views.Home(about, recentRecords(records), a.Config)); err != nil {
				return err
			}
			pages.Add(1)
			return nil
		})
	}

	for _, c := range Collections {
		if c == Pages {
			continue
		}
		g.Go(func() error {
			list := byCollection[c]
			cmp := a.Views.Listing(c, list, "", collectionTags(list), a.Config)
			if err := writePage(gctx, out, "/"+string(c)+"/", cmp); err != nil {
				return err
			}
			pages.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return BuildResult{}, err
	}
	res.Pages = int(pages.Load())

	if err := a.writeSiteFiles(out, records); err != nil {
		return BuildResult{}, err
	}

	images, err := ProcessImages(ctx, a.log, a.Config.ContentDir, out)
	if err != nil {
		return BuildResult{}, fmt.Errorf("folio: build images: %w", err)
	}
	res.Images = len(images)

	a.log.Info("site built",
		zap.String("out", out),
		zap.Int("pages", res.Pages),
		zap.Int("images", res.Images))
	return res, nil
}

func (a *App) writeSiteFiles(out string, records []ContentRecord) error {
	var buf bytes.Buffer
	if err := WriteSitemap(&buf, a.Config, records); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(out, "sitemap.xml"), buf.Bytes(), 0o644); err != nil {
		return err
	}
	buf.Reset()
	if err := WriteFeed(&buf, a.Config, records); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(out, "feed.xml"), buf.Bytes(), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(out, "robots.txt"), []byte(RobotsTxt(a.Config)), 0o644); err != nil {
		return err
	}
	css, err := EmbeddedAssets.ReadFile("embedded/folio.css")
	if err != nil {
		return err
	}
	return writeFile(out, "/public/", "folio.css", css)
}

func recentRecords(records []ContentRecord) []ContentRecord {
	var recent []ContentRecord
	for _, r := range records {
		if r.Collection == Pages {
			continue
		}
		recent = append(recent, r)
		if len(recent) == 10 {
			break
		}
	}
	return recent
}

func writePage(ctx context.Context, out, permalink string, cmp templ.Component) error {
	b, err := renderHTML(ctx, cmp)
	if err != nil {
		return err
	}
	return writeFile(out, permalink, "index.html", b)
}

// writeFile writes name inside the directory a permalink maps to under out.
// Permalinks are cleaned so they cannot escape out.
func writeFile(out, permalink, name string, data []byte) error {
	rel := filepath.FromSlash(strings.TrimPrefix(NormalizePermalink(permalink), "/"))
	dir := filepath.Join(out, rel)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}
