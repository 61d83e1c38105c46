package folio

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"
)

// documentLayout is the static layout every record document is rendered
// through: the front matter block, then the body.
var documentLayout = template.Must(template.New("document").Parse(
	`{{.FrontMatter}}{{.Body}}`))

type documentFields struct {
	FrontMatter string
	Body        string
}

// RenderDocument writes the record as a text document: its front matter
// followed by the body. ParseRecord on the output yields the same fields.
func RenderDocument(w io.Writer, rec ContentRecord) error {
	front, err := MarshalFrontMatter(rec)
	if err != nil {
		return err
	}
	if err := documentLayout.Execute(w, documentFields{
		FrontMatter: string(front),
		Body:        rec.Body,
	}); err != nil {
		return fmt.Errorf("folio: render %s: %w", rec.Permalink, err)
	}
	return nil
}

// Document returns the rendered text document for rec.
func Document(rec ContentRecord) (string, error) {
	var buf bytes.Buffer
	if err := RenderDocument(&buf, rec); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Excerpt returns the record's excerpt, or the first paragraph of its body
// when none was authored.
func Excerpt(rec ContentRecord) string {
	if rec.Excerpt != "" {
		return rec.Excerpt
	}
	for _, para := range strings.Split(strings.ReplaceAll(rec.Body, "\r\n", "\n"), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" || strings.HasPrefix(para, "#") || strings.HasPrefix(para, "<") {
			continue
		}
		return strings.Join(strings.Fields(para), " ")
	}
	return ""
}
