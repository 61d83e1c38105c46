package folio

import (
	"encoding/xml"
	"io"
	"time"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Category    string `xml:"category,omitempty"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

// feedCollections are the collections syndicated in feed.xml.
var feedCollections = map[Collection]bool{Posts: true, Publications: true}

// WriteFeed writes an RSS 2.0 feed of posts and publications.
func WriteFeed(w io.Writer, cfg SiteConfig, records []ContentRecord) error {
	base := cfg.URL
	items := make([]rssItem, 0, len(records))
	for _, r := range records {
		if !feedCollections[r.Collection] {
			continue
		}
		pubDate := ""
		if t := r.Time(); !t.IsZero() {
			pubDate = t.Format(time.RFC1123Z)
		}
		link := BuildURL(base, r.Permalink)
		items = append(items, rssItem{
			Title:       r.Title,
			Link:        link,
			Description: Excerpt(r),
			Category:    string(r.Collection),
			PubDate:     pubDate,
			GUID:        link,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Name,
			Link:        BuildURL(base),
			Description: cfg.Description,
			Items:       items,
		},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(feed)
}
