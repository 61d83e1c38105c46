// Package views provides the default HTML components for a folio site.
// Every component is a templ.Component so callers can swap any of them
// through folio.ViewFuncs.
package views

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
)

// Default returns the built-in view set.
func Default() folio.ViewFuncs {
	return folio.ViewFuncs{
		Home:         Home,
		Listing:      Listing,
		Record:       Record,
		PreviewLogin: PreviewLogin,
		NotFound:     NotFound,
		ServerError:  ServerError,
	}
}

// htmlWriter accumulates the first write error so components can emit
// markup without checking every call.
type htmlWriter struct {
	w   io.Writer
	ctx context.Context
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (h *htmlWriter) component(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

func component(fn func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w, ctx: ctx}
		fn(h)
		return h.err
	})
}

// Layout wraps body in the site chrome: head metadata, navigation, footer.
func Layout(cfg folio.SiteConfig, meta folio.PageMeta, body templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		title := cfg.Name
		if meta.Title != "" && meta.Title != cfg.Name {
			title = meta.Title + " | " + cfg.Name
		}
		description := meta.Description
		if description == "" {
			description = cfg.Description
		}
		h.raw("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\"/>")
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		h.raw("<title>")
		h.text(title)
		h.raw("</title>")
		if description != "" {
			h.raw(`<meta name="description"`)
			h.attr("content", description)
			h.raw("/>")
			h.raw(`<meta property="og:description"`)
			h.attr("content", description)
			h.raw("/>")
		}
		h.raw(`<meta property="og:title"`)
		h.attr("content", title)
		h.raw("/>")
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}
		h.raw(`<meta property="og:type"`)
		h.attr("content", ogType)
		h.raw("/>")
		if meta.URL != "" {
			h.raw(`<link rel="canonical"`)
			h.attr("href", meta.URL)
			h.raw("/>")
			h.raw(`<meta property="og:url"`)
			h.attr("content", meta.URL)
			h.raw("/>")
		}
		h.raw(`<link rel="stylesheet" href="/public/folio.css"/>`)
		h.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml"`)
		h.attr("title", cfg.Name)
		h.raw("/>")
		if meta.JSONLD != "" {
			// JSON-LD is produced by json.Marshal, which escapes <, > and &.
			h.raw(`<script type="application/ld+json">` + meta.JSONLD + `</script>`)
		}
		h.raw("</head><body><header class=\"site-header\"><a class=\"site-title\" href=\"/\">")
		h.text(cfg.Name)
		h.raw("</a><nav>")
		for _, c := range folio.Collections {
			if c == folio.Pages {
				continue
			}
			h.raw(`<a`)
			h.attr("href", "/"+string(c)+"/")
			h.raw(">")
			h.text(c.Title())
			h.raw("</a>")
		}
		h.raw("</nav></header><main>")
		h.component(body)
		h.raw("</main><footer class=\"site-footer\">")
		if cfg.Author != "" {
			h.text("© " + cfg.Author)
		}
		h.raw("</footer></body></html>")
	})
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	if active {
		return "tag tag-active"
	}
	return "tag"
}

// FormatDate renders a date-or-year at its authored precision, falling back
// to the raw text when it does not parse.
func FormatDate(raw string) string {
	d, err := folio.ParseDate(raw)
	if err != nil {
		return raw
	}
	return d.Format()
}

// SafeURL returns raw when it is a relative path or an http(s)/mailto URL,
// and "" otherwise.
func SafeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return val
	}
	u, err := url.Parse(val)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto":
		return val
	}
	return ""
}

func tagLink(base, tag string) string {
	return base + "?tag=" + folio.PathEscape(tag)
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
