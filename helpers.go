package folio

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
)

// Slugify converts a title or file name to a URL-safe slug. Underscores are
// kept so authored keys like 2023_AIAA_GPR survive intact.
func Slugify(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with a permalink or path segments. A trailing
// slash on the last segment is preserved.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	joined := path.Join(pathSegments...)
	u.Path = path.Join(u.Path, joined)
	if len(pathSegments) == 0 || strings.HasSuffix(pathSegments[len(pathSegments)-1], "/") {
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
	}
	return u.String()
}

// RelatedRecords finds records of the same collection that share at least
// one tag with current.
func RelatedRecords(current ContentRecord, records []ContentRecord) []ContentRecord {
	tagSet := make(map[string]struct{}, len(current.Tags))
	for _, t := range current.Tags {
		tagSet[normalizeTag(t)] = struct{}{}
	}
	var related []ContentRecord
	for _, r := range records {
		if r.Permalink == current.Permalink || r.Collection != current.Collection {
			continue
		}
		for _, t := range r.Tags {
			if _, ok := tagSet[normalizeTag(t)]; ok {
				related = append(related, r)
				break
			}
		}
	}
	return related
}

// JoinTags joins tags with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// PathEscape escapes a string for use in a URL path.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = person(cfg.Author)
	}
	return marshalJsonLD(data)
}

// RecordJsonLD returns the JSON-LD block for a record: ScholarlyArticle for
// publications, BlogPosting for posts, WebPage otherwise.
func RecordJsonLD(r ContentRecord, cfg SiteConfig) string {
	pageURL := BuildURL(cfg.URL, r.Permalink)
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"url":      pageURL,
		"name":     r.Title,
	}
	switch r.Collection {
	case Publications:
		data["@type"] = "ScholarlyArticle"
		data["headline"] = r.Title
		if r.Venue != "" {
			data["isPartOf"] = map[string]string{"@type": "Periodical", "name": r.Venue}
		}
		if r.PaperURL != "" {
			data["sameAs"] = r.PaperURL
		}
	case Posts:
		data["@type"] = "BlogPosting"
		data["headline"] = r.Title
		data["mainEntityOfPage"] = map[string]string{"@type": "WebPage", "@id": pageURL}
		if cfg.Name != "" {
			data["publisher"] = map[string]string{"@type": "Organization", "name": cfg.Name}
		}
	default:
		data["@type"] = "WebPage"
	}
	if r.Date != "" {
		data["datePublished"] = r.Date
	}
	if r.Excerpt != "" {
		data["description"] = r.Excerpt
	}
	if cfg.Author != "" {
		data["author"] = person(cfg.Author)
	}
	if len(r.Tags) > 0 {
		data["keywords"] = JoinTags(r.Tags)
	}
	return marshalJsonLD(data)
}

func person(name string) map[string]string {
	return map[string]string{"@type": "Person", "name": name}
}

func marshalJsonLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
