package bib

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/eringen/folio"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	BeginMark = "<!-- BEGIN:references -->"
	EndMark   = "<!-- END:references -->"
)

// DefaultStyle is placed above the heading when Options.InlineStyle is set.
// It numbers the list items as "[n]".
const DefaultStyle = `<style>
p {
  font-family: sans;
}
a:link {
  color: navy;
  background-color: transparent;
  text-decoration: none;
}
ol {
columns:1;
}
ol > li::marker {
content:"["counter(list-item) "] ";
}
</style>`

// Options controls reference generation and file updates.
type Options struct {
	InlineStyle bool
	DryRun      bool
	// BaseDir resolves relative bibfile paths. Defaults to the file's directory.
	BaseDir string
	// Now stamps the generated block. Defaults to time.Now.
	Now func() time.Time
	// Library caches parsed bib files across calls. A fresh one is used if nil.
	Library *Library
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Block renders the marked reference block for keys. Keys missing from
// entries are listed in a note at the end rather than failing.
func Block(keys []string, entries map[string]Entry, opts Options) string {
	var lines []string
	if opts.InlineStyle {
		lines = append(lines, DefaultStyle, "")
	}
	lines = append(lines,
		"# Reference",
		"Generated bibliography markdown file. Date: "+opts.now().Format("2006-01-02 15:04:05"))

	var missing []string
	for _, k := range keys {
		e, ok := entries[k]
		if !ok {
			missing = append(missing, k)
			continue
		}
		lines = append(lines, FormatReference(k, e), "")
	}
	if len(missing) > 0 {
		lines = append(lines, "> **Note:** Missing BibTeX entries for keys: "+strings.Join(missing, ", "))
	}

	content := strings.TrimRight(strings.Join(lines, "\n"), " \t\r\n") + "\n"
	return BeginMark + "\n" + content + "\n" + EndMark + "\n"
}

// Apply replaces the first marked block in doc with block, or appends block
// after a blank line when doc has none.
func Apply(doc, block string) string {
	if start := strings.Index(doc, BeginMark); start >= 0 {
		if end := strings.Index(doc[start:], EndMark); end >= 0 {
			end += start + len(EndMark)
			return doc[:start] + strings.TrimSpace(block) + doc[end:]
		}
	}
	if !strings.HasSuffix(doc, "\n") {
		doc += "\n"
	}
	if !strings.HasSuffix(doc, "\n\n") {
		doc += "\n"
	}
	return doc + block
}

// Result reports what UpdateFile did to one file.
type Result struct {
	Path    string
	Changed bool
	Message string
	Backup  string
}

type citeFront struct {
	BibFile  string   `yaml:"bibfile"`
	CiteKeys []string `yaml:"citekeys"`
}

// UpdateFile regenerates the reference block of the Markdown file at path
// from its front matter's bibfile and citekeys. Unless DryRun is set, the
// previous content is saved to a backup next to the file first.
func UpdateFile(path string, opts Options) (Result, error) {
	res := Result{Path: path}
	src, err := os.ReadFile(path)
	if err != nil {
		return res, errors.Wrapf(err, "Cannot read markdown file: %q", path)
	}

	var front citeFront
	if raw, _, err := folio.SplitFrontMatter(src); err == nil {
		// Malformed YAML is treated like a file without citations.
		_ = yaml.Unmarshal(raw, &front)
	}
	if front.BibFile == "" || len(front.CiteKeys) == 0 {
		res.Message = "No bibfile or citekeys in frontmatter."
		return res, nil
	}

	bibPath := front.BibFile
	if !filepath.IsAbs(bibPath) {
		base := opts.BaseDir
		if base == "" {
			base = filepath.Dir(path)
		}
		bibPath = filepath.Join(base, bibPath)
	}
	if _, err := os.Stat(bibPath); err != nil {
		res.Message = "Bib file not found: " + front.BibFile
		return res, nil
	}

	lib := opts.Library
	if lib == nil {
		lib = NewLibrary()
	}
	entries, err := lib.LoadFile(bibPath)
	if err != nil {
		return res, err
	}

	original := string(src)
	updated := Apply(original, Block(front.CiteKeys, entries, opts))
	if updated == original {
		res.Message = "No changes."
		return res, nil
	}
	res.Changed = true
	if opts.DryRun {
		res.Message = "Would update (dry run)."
		return res, nil
	}

	backup := BackupPath(path)
	if err := os.WriteFile(backup, src, 0o644); err != nil {
		return res, errors.Wrapf(err, "Cannot write backup: %q", backup)
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return res, errors.Wrapf(err, "Cannot write markdown file: %q", path)
	}
	res.Backup = backup
	res.Message = "Updated. Backup: " + filepath.Base(backup)
	return res, nil
}

// BackupPath names the backup for a Markdown file: "tmp-<name>.bak" in the
// same directory, with a leading YYYY-MM-DD- date dropped from the name.
func BackupPath(path string) string {
	name := filepath.Base(path)
	root := strings.TrimSuffix(name, filepath.Ext(name))
	if parts := strings.SplitN(root, "-", 4); len(parts) == 4 &&
		isDigits(parts[0]) && isDigits(parts[1]) && isDigits(parts[2]) {
		root = parts[3]
	}
	return filepath.Join(filepath.Dir(path), "tmp-"+root+".bak")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// UpdateDir runs UpdateFile on every *.md and *.markdown file directly in
// dir, in name order. Relative bibfiles resolve against dir unless
// opts.BaseDir is set.
func UpdateDir(dir string, opts Options) ([]Result, error) {
	var paths []string
	for _, pattern := range []string{"*.md", "*.markdown"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, errors.Wrapf(err, "Cannot list directory: %q", dir)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	if opts.BaseDir == "" {
		opts.BaseDir = dir
	}
	if opts.Library == nil {
		opts.Library = NewLibrary()
	}

	results := make([]Result, 0, len(paths))
	for _, p := range paths {
		res, err := UpdateFile(p, opts)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Summary formats results the way the refs command prints them: one
// "[CHANGED]" or "[SKIP]" line per file, then a count unless dryRun.
func Summary(dir string, results []Result, dryRun bool) string {
	if len(results) == 0 {
		return "No Markdown files found.\n"
	}
	var b strings.Builder
	changed := 0
	for _, r := range results {
		rel, err := filepath.Rel(dir, r.Path)
		if err != nil {
			rel = r.Path
		}
		prefix := "[SKIP]"
		if r.Changed {
			prefix = "[CHANGED]"
			if !dryRun {
				changed++
			}
		}
		fmt.Fprintf(&b, "%s %s: %s\n", prefix, rel, r.Message)
	}
	if !dryRun {
		fmt.Fprintf(&b, "\nDone. Files updated: %d/%d\n", changed, len(results))
	}
	return b.String()
}
