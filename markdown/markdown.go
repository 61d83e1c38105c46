// Package markdown renders record bodies to sanitised HTML, exposed either as
// bytes or as a templ component.
package markdown

import (
	"context"
	"io"
	"regexp"
	"sync"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	bf "github.com/russross/blackfriday"
)

const (
	htmlFlags = bf.HTML_USE_XHTML |
		bf.HTML_USE_SMARTYPANTS |
		bf.HTML_SMARTYPANTS_FRACTIONS |
		bf.HTML_SMARTYPANTS_DASHES |
		bf.HTML_SMARTYPANTS_LATEX_DASHES |
		bf.HTML_FOOTNOTE_RETURN_LINKS

	extensions = bf.EXTENSION_NO_INTRA_EMPHASIS |
		bf.EXTENSION_TABLES |
		bf.EXTENSION_FENCED_CODE |
		bf.EXTENSION_AUTOLINK |
		bf.EXTENSION_STRIKETHROUGH |
		bf.EXTENSION_SPACE_HEADERS |
		bf.EXTENSION_HEADER_IDS |
		bf.EXTENSION_AUTO_HEADER_IDS |
		bf.EXTENSION_FOOTNOTES |
		bf.EXTENSION_BACKSLASH_LINE_BREAK |
		bf.EXTENSION_DEFINITION_LISTS
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy

	reClass = regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)
)

// Policy returns the sanitising policy applied after rendering: the UGC
// policy plus class names, small-caps author spans and heading anchors used
// by generated reference lists.
func Policy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").Matching(reClass).OnElements("span", "div", "ol", "ul", "li", "p", "code", "pre", "sup", "a")
		p.AllowStyles("font-variant").MatchingEnum("small-caps").OnElements("span")
		p.AllowAttrs("id").Matching(bluemonday.Paragraph).OnElements("h1", "h2", "h3", "h4", "h5", "h6", "p", "li", "sup")
		p.RequireNoFollowOnLinks(false)
		policy = p
	})
	return policy
}

// Render converts Markdown source to sanitised HTML.
func Render(src []byte) []byte {
	renderer := bf.HtmlRenderer(htmlFlags, "", "")
	out := bf.MarkdownOptions(src, renderer, bf.Options{Extensions: extensions})
	return Policy().SanitizeBytes(out)
}

// RenderString is Render for string input.
func RenderString(src string) string {
	return string(Render([]byte(src)))
}

// Markdown returns a templ.Component that renders content as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := w.Write(Render([]byte(content)))
		return err
	})
}
