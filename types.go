package folio

import (
	"fmt"
	"strings"
	"time"
)

// Collection is the content kind a record belongs to.
type Collection string

const (
	Publications Collection = "publications"
	Posts        Collection = "posts"
	Pages        Collection = "pages"
	Talks        Collection = "talks"
	Teaching     Collection = "teaching"
)

// Collections lists every known collection in navigation order.
var Collections = []Collection{Publications, Talks, Teaching, Posts, Pages}

// ParseCollection accepts a collection name with or without the leading
// underscore used by content directories.
func ParseCollection(s string) (Collection, error) {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "_"))
	for _, c := range Collections {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("folio: unknown collection %q", s)
}

// Singular is used for derived permalinks, e.g. /publication/<slug>/.
func (c Collection) Singular() string {
	switch c {
	case Publications:
		return "publication"
	case Talks:
		return "talk"
	default:
		return string(c)
	}
}

// Title is the human label shown in navigation.
func (c Collection) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// ContentRecord is one content file: front matter fields plus the markup body.
type ContentRecord struct {
	Permalink  string     `yaml:"permalink"`
	Title      string     `yaml:"title"`
	Date       string     `yaml:"date,omitempty"`
	Collection Collection `yaml:"collection,omitempty"`
	Category   string     `yaml:"category,omitempty"`
	Tags       []string   `yaml:"tags,omitempty"`
	Excerpt    string     `yaml:"excerpt,omitempty"`
	Venue      string     `yaml:"venue,omitempty"`
	PaperURL   string     `yaml:"paperurl,omitempty"`
	SlidesURL  string     `yaml:"slidesurl,omitempty"`
	Citation   string     `yaml:"citation,omitempty"`
	Teaser     string     `yaml:"teaser,omitempty"`
	BibFile    string     `yaml:"bibfile,omitempty"`
	CiteKeys   []string   `yaml:"citekeys,omitempty"`
	Published  *bool      `yaml:"published,omitempty"`

	// Extra keeps front matter keys folio does not interpret.
	Extra map[string]any `yaml:",inline"`

	Body       string `yaml:"-"`
	SourcePath string `yaml:"-"`
}

// IsPublished reports whether the record is visible to the public. Records
// without a published key are published.
func (r ContentRecord) IsPublished() bool {
	return r.Published == nil || *r.Published
}

// Time returns the parsed date, or the zero time for undated records.
func (r ContentRecord) Time() time.Time {
	d, err := ParseDate(r.Date)
	if err != nil {
		return time.Time{}
	}
	return d.Time
}

// DatePrecision describes how much of a date was authored.
type DatePrecision int

const (
	PrecisionNone DatePrecision = iota
	PrecisionYear
	PrecisionMonth
	PrecisionDay
)

// Date is a parsed date-or-year value.
type Date struct {
	Time      time.Time
	Precision DatePrecision
}

var dateLayouts = []struct {
	layout    string
	precision DatePrecision
}{
	{"2006", PrecisionYear},
	{"2006-01", PrecisionMonth},
	{"2006-01-02", PrecisionDay},
	{time.RFC3339, PrecisionDay},
	{"2006-01-02 15:04:05 -0700", PrecisionDay},
	{"2006-01-02 15:04:05", PrecisionDay},
}

// ParseDate parses YYYY, YYYY-MM, YYYY-MM-DD and timestamp forms. An empty
// string is a valid undated value.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			return Date{Time: t, Precision: l.precision}, nil
		}
	}
	return Date{}, fmt.Errorf("folio: invalid date %q", s)
}

// Format renders the date at its authored precision.
func (d Date) Format() string {
	switch d.Precision {
	case PrecisionYear:
		return d.Time.Format("2006")
	case PrecisionMonth:
		return d.Time.Format("January 2006")
	case PrecisionDay:
		return d.Time.Format("January 2, 2006")
	}
	return ""
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	JSONLD      string
}
