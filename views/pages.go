package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/folio"
	"github.com/eringen/folio/markdown"
)

// Home renders the about page when one exists, followed by recent entries.
func Home(about *folio.ContentRecord, recent []folio.ContentRecord, cfg folio.SiteConfig) templ.Component {
	meta := folio.PageMeta{
		Title:  cfg.Name,
		URL:    folio.BuildURL(cfg.URL),
		OGType: "website",
		JSONLD: folio.WebsiteJsonLD(cfg),
	}
	return Layout(cfg, meta, component(func(h *htmlWriter) {
		if about != nil {
			h.raw(`<article class="about">`)
			if about.Title != "" {
				h.raw("<h1>")
				h.text(about.Title)
				h.raw("</h1>")
			}
			h.component(markdown.Markdown(about.Body))
			h.raw("</article>")
		}
		if len(recent) > 0 {
			h.raw(`<section class="recent"><h2>Recent</h2>`)
			recordList(h, recent)
			h.raw("</section>")
		}
	}))
}

// Listing renders a collection index with a tag filter.
func Listing(c folio.Collection, records []folio.ContentRecord, activeTag string, tags []string, cfg folio.SiteConfig) templ.Component {
	base := "/" + string(c) + "/"
	meta := folio.PageMeta{
		Title:  c.Title(),
		URL:    folio.BuildURL(cfg.URL, base),
		OGType: "website",
	}
	return Layout(cfg, meta, component(func(h *htmlWriter) {
		h.raw(`<section class="listing"><h1>`)
		h.text(c.Title())
		h.raw("</h1>")
		if len(tags) > 0 {
			h.raw(`<div class="tags">`)
			h.raw(`<a`)
			h.attr("class", TagClass(activeTag == ""))
			h.attr("href", base)
			h.raw(">all</a>")
			for _, t := range tags {
				h.raw("<a")
				h.attr("class", TagClass(t == activeTag))
				h.attr("href", tagLink(base, t))
				h.raw(">")
				h.text(t)
				h.raw("</a>")
			}
			h.raw("</div>")
		}
		if len(records) == 0 {
			h.raw(`<p class="empty">Nothing here yet.</p>`)
		} else {
			recordList(h, records)
		}
		h.raw("</section>")
	}))
}

func recordList(h *htmlWriter, records []folio.ContentRecord) {
	h.raw(`<ul class="records">`)
	for _, r := range records {
		h.raw("<li><a")
		h.attr("href", r.Permalink)
		h.raw(">")
		h.text(r.Title)
		h.raw("</a>")
		if line := joinNonEmpty(", ", r.Venue, FormatDate(r.Date)); line != "" {
			h.raw(` <span class="meta">`)
			h.text(line)
			h.raw("</span>")
		}
		if ex := folio.Excerpt(r); ex != "" {
			h.raw(`<p class="excerpt">`)
			h.text(ex)
			h.raw("</p>")
		}
		h.raw("</li>")
	}
	h.raw("</ul>")
}

// Record renders one content record as a full page.
func Record(r folio.ContentRecord, related []folio.ContentRecord, cfg folio.SiteConfig) templ.Component {
	ogType := "website"
	if r.Collection == folio.Posts || r.Collection == folio.Publications {
		ogType = "article"
	}
	meta := folio.PageMeta{
		Title:       r.Title,
		Description: folio.Excerpt(r),
		URL:         folio.BuildURL(cfg.URL, r.Permalink),
		OGType:      ogType,
		JSONLD:      folio.RecordJsonLD(r, cfg),
	}
	return Layout(cfg, meta, component(func(h *htmlWriter) {
		h.raw("<article")
		h.attr("class", "record record-"+string(r.Collection))
		h.raw("><h1>")
		h.text(r.Title)
		h.raw("</h1>")
		if !r.IsPublished() {
			h.raw(`<p class="draft">Draft</p>`)
		}
		if line := joinNonEmpty(" · ", r.Venue, FormatDate(r.Date)); line != "" {
			h.raw(`<p class="meta">`)
			h.text(line)
			h.raw("</p>")
		}
		if len(r.Tags) > 0 {
			base := "/" + string(r.Collection) + "/"
			h.raw(`<div class="tags">`)
			for _, t := range r.Tags {
				h.raw("<a")
				h.attr("class", TagClass(false))
				h.attr("href", tagLink(base, t))
				h.raw(">")
				h.text(t)
				h.raw("</a>")
			}
			h.raw("</div>")
		}
		h.raw(`<div class="body">`)
		h.component(markdown.Markdown(r.Body))
		h.raw("</div>")
		paper, slides := SafeURL(r.PaperURL), SafeURL(r.SlidesURL)
		if paper != "" || slides != "" {
			h.raw(`<p class="links">`)
			if paper != "" {
				h.raw("<a")
				h.attr("href", paper)
				h.raw(">Download paper</a>")
			}
			if slides != "" {
				h.raw(" <a")
				h.attr("href", slides)
				h.raw(">Slides</a>")
			}
			h.raw("</p>")
		}
		if r.Citation != "" {
			h.raw(`<p class="citation">Recommended citation: `)
			h.text(r.Citation)
			h.raw("</p>")
		}
		h.raw("</article>")
		if len(related) > 0 {
			h.raw(`<aside class="related"><h2>Related</h2>`)
			recordList(h, related)
			h.raw("</aside>")
		}
	}))
}

// PreviewLogin renders the draft preview password form.
func PreviewLogin(showError bool, csrfToken string, cfg folio.SiteConfig) templ.Component {
	meta := folio.PageMeta{Title: "Preview"}
	return Layout(cfg, meta, component(func(h *htmlWriter) {
		h.raw(`<section class="preview-login"><h1>Draft preview</h1>`)
		if showError {
			h.raw(`<p class="error">Wrong password.</p>`)
		}
		h.raw(`<form method="post" action="/preview/login/">`)
		h.raw(`<input type="hidden" name="_csrf"`)
		h.attr("value", csrfToken)
		h.raw("/>")
		h.raw(`<input type="password" name="password" autocomplete="current-password" required/>`)
		h.raw(`<button type="submit">Enter</button></form></section>`)
	}))
}

// NotFound renders the 404 page.
func NotFound(cfg folio.SiteConfig) templ.Component {
	return Layout(cfg, folio.PageMeta{Title: "Not found"}, component(func(h *htmlWriter) {
		h.raw(`<section class="error-page"><h1>Not found</h1><p>The page you asked for does not exist.</p><p><a href="/">Home</a></p></section>`)
	}))
}

// ServerError renders the 500 page.
func ServerError(cfg folio.SiteConfig) templ.Component {
	return Layout(cfg, folio.PageMeta{Title: "Error"}, component(func(h *htmlWriter) {
		h.raw(`<section class="error-page"><h1>Something went wrong</h1><p>Please try again later.</p></section>`)
	}))
}
