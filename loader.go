package folio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	contentExts  = map[string]bool{".md": true, ".markdown": true, ".html": true}
	reDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-`)
)

// LoadDir reads every content file under the collection directories of root
// (_publications, _posts, _pages, _talks, _teaching). Parse failures and
// duplicate permalinks are collected and returned together; the records that
// did parse are returned alongside the error.
func LoadDir(root string) ([]ContentRecord, error) {
	var (
		records []ContentRecord
		errs    []error
	)
	for _, c := range Collections {
		dir := filepath.Join(root, "_"+string(c))
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			continue
		}
		err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !contentExts[strings.ToLower(filepath.Ext(p))] {
				return nil
			}
			rec, err := LoadFile(p, c)
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			records = append(records, rec)
			return nil
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("folio: walk %s: %w", dir, err))
		}
	}
	if err := Validate(records); err != nil {
		errs = append(errs, err)
	}
	return records, errors.Join(errs...)
}

// LoadFile parses one content file. Collection and permalink default from the
// directory the file lives in and its file name.
func LoadFile(path string, dirCollection Collection) (ContentRecord, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return ContentRecord{}, err
	}
	rec, err := ParseRecord(src)
	if err != nil {
		return ContentRecord{}, fmt.Errorf("%s: %w", path, err)
	}
	rec.SourcePath = path
	if rec.Collection == "" {
		rec.Collection = dirCollection
	}
	if strings.TrimSpace(rec.Permalink) == "" {
		rec.Permalink = DerivePermalink(rec.Collection, filepath.Base(path))
	}
	rec.Permalink = NormalizePermalink(rec.Permalink)
	if rec.Date != "" {
		if _, err := ParseDate(rec.Date); err != nil {
			return ContentRecord{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	return rec, nil
}

// DerivePermalink builds the default permalink for a file that does not
// declare one: /<collection singular>/<slug>/, or /<slug>/ for pages. A
// leading YYYY-MM-DD- date prefix is dropped from the file name.
func DerivePermalink(c Collection, filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = reDatePrefix.ReplaceAllString(base, "")
	slug := Slugify(base)
	if c == Pages {
		if slug == "" || slug == "index" {
			return "/"
		}
		return "/" + slug + "/"
	}
	return "/" + c.Singular() + "/" + slug + "/"
}
