// Package bib formats BibTeX entries as the reference lists appended to
// posts and publications, and keeps those lists in sync with the citekeys
// named in each file's front matter.
package bib

import (
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/nickng/bibtex"
	"github.com/pkg/errors"
)

// Entry holds one BibTeX entry's fields, keyed by lower-cased field name.
type Entry map[string]string

// Get returns the trimmed value of field, or "".
func (e Entry) Get(field string) string {
	return strings.TrimSpace(e[field])
}

// Parse reads a BibTeX database and returns its entries keyed by citekey.
func Parse(r io.Reader) (map[string]Entry, error) {
	db, err := bibtex.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "Cannot parse bibtex")
	}
	entries := make(map[string]Entry, len(db.Entries))
	for _, be := range db.Entries {
		e := make(Entry, len(be.Fields)+1)
		for name, val := range be.Fields {
			if val == nil {
				continue
			}
			e[strings.ToLower(name)] = val.String()
		}
		e["type"] = strings.ToLower(be.Type)
		entries[be.CiteName] = e
	}
	return entries, nil
}

// Library caches parsed BibTeX files by path. It is safe for concurrent use.
type Library struct {
	mu    sync.Mutex
	files map[string]map[string]Entry
}

// NewLibrary returns an empty Library.
func NewLibrary() *Library {
	return &Library{files: make(map[string]map[string]Entry)}
}

// LoadFile parses the BibTeX file at path, reusing an earlier parse of the
// same file.
func (l *Library) LoadFile(path string) (map[string]Entry, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if entries, ok := l.files[key]; ok {
		return entries, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open bib file: %q", path)
	}
	defer f.Close()
	entries, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "bib file %q", path)
	}
	l.files[key] = entries
	return entries, nil
}

var (
	bracesRE = regexp.MustCompile(`[{}]`)
	spaceRE  = regexp.MustCompile(`\s+`)
)

// CleanBraces strips BibTeX grouping braces, as in "{Two-{{Dimensional}}}".
func CleanBraces(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(bracesRE.ReplaceAllString(s, ""))
}

// NormalizeWhitespace collapses runs of whitespace into single spaces.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(spaceRE.ReplaceAllString(s, " "))
}

// FormatAuthors turns a BibTeX author field into "Last, F. M." names
// joined by " and ". Both "Last, First" and "First Last" forms are accepted.
func FormatAuthors(field string) string {
	if field == "" {
		return ""
	}
	var out []string
	for _, raw := range strings.Split(NormalizeWhitespace(field), " and ") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		var last, first string
		if parts := strings.Split(name, ","); len(parts) == 2 {
			last, first = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		} else {
			words := strings.Fields(name)
			last = words[len(words)-1]
			first = strings.Join(words[:len(words)-1], " ")
		}
		var initials []string
		for _, w := range strings.Fields(first) {
			initials = append(initials, string([]rune(w)[0])+".")
		}
		if len(initials) > 0 {
			out = append(out, last+", "+strings.Join(initials, " "))
		} else {
			out = append(out, last)
		}
	}
	return strings.Join(out, " and ")
}

// Link picks the URL a reference title links to. DOIs are preferred.
func Link(e Entry) string {
	doi, url := e.Get("doi"), e.Get("url")
	if doi == "" {
		return url
	}
	switch {
	case strings.HasPrefix(strings.ToLower(doi), "10."):
		return "https://doi.org/" + doi
	case strings.Contains(doi, "doi.org"):
		return doi
	case url != "":
		return url
	default:
		return doi
	}
}

// FormatReference renders one entry as an ordered-list item holding an
// anchored paragraph, so citations can link to "#key".
func FormatReference(key string, e Entry) string {
	authors := FormatAuthors(e.Get("author"))
	year := e.Get("year")
	title := NormalizeWhitespace(CleanBraces(e.Get("title")))
	journal := e.Get("journal")
	volume := e.Get("volume")
	number := e.Get("number")
	pages := e.Get("pages")
	link := Link(e)

	var b strings.Builder
	b.WriteString(`1. <p id="` + html.EscapeString(key) + `">`)
	if authors != "" {
		b.WriteString(` <span style="font-variant: small-caps"> ` + html.EscapeString(authors) + ` </span> `)
	}
	if year != "" {
		b.WriteString(html.EscapeString(year) + " ")
	}
	if title != "" {
		if link != "" {
			b.WriteString(` <a href="` + html.EscapeString(link) + `"> ` + html.EscapeString(title) + `. </a>`)
		} else {
			b.WriteString(" " + html.EscapeString(title) + ". ")
		}
	}
	if journal != "" {
		b.WriteString(" <i> " + html.EscapeString(journal) + "</i>")
	}
	if volume != "" {
		b.WriteString(" <b> " + html.EscapeString(volume) + " </b>")
	}
	if number != "" {
		b.WriteString(" (" + html.EscapeString(number) + ")")
	}
	if pages != "" {
		b.WriteString(" " + html.EscapeString(pages))
	}
	b.WriteString("</p>")
	return b.String()
}
