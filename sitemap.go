package folio

import (
	"encoding/xml"
	"io"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteSitemap writes a sitemaps.org urlset for the home page, the
// collection listings in use and every record.
func WriteSitemap(w io.Writer, cfg SiteConfig, records []ContentRecord) error {
	base := cfg.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
	}
	seen := make(map[Collection]bool)
	for _, r := range records {
		if r.Collection != Pages && !seen[r.Collection] {
			seen[r.Collection] = true
			urls = append(urls, sitemapURL{Loc: BuildURL(base, "/"+string(r.Collection)+"/")})
		}
	}
	for _, r := range records {
		if r.Permalink == "/" {
			continue
		}
		u := sitemapURL{Loc: BuildURL(base, r.Permalink)}
		if d, err := ParseDate(r.Date); err == nil && d.Precision == PrecisionDay {
			u.LastMod = d.Time.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(sitemap)
}
