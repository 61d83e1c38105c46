package folio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when no record has the requested permalink.
	ErrNotFound = errors.New("folio: record not found")
	// ErrDuplicatePermalink is returned when two records share a permalink.
	ErrDuplicatePermalink = errors.New("folio: duplicate permalink")
	// ErrEmptyPermalink is returned for records without a permalink.
	ErrEmptyPermalink = errors.New("folio: empty permalink")
)

// Store is the content index: a SQLite table keyed by permalink. Its
// contents only change as a whole through Replace.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets HTTP readers proceed while a reload swaps the table; writers
	// wait on the busy timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// schemaVersion is bumped whenever the index layout changes. The index is
// rebuilt from the content tree on every open, so older tables are dropped.
const schemaVersion = 2

func (s *Store) ensureSchema() error {
	var version int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}
	if version != schemaVersion {
		if _, err := s.db.Exec(`
DROP TABLE IF EXISTS record_tags;
DROP TABLE IF EXISTS records;
`); err != nil {
			return err
		}
	}
	_, err := s.db.Exec(fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS records (
    permalink TEXT PRIMARY KEY,
    collection TEXT NOT NULL,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    sort_key TEXT NOT NULL,
    published INTEGER NOT NULL DEFAULT 1,
    source_path TEXT NOT NULL DEFAULT '',
    document TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS records_collection ON records (collection, sort_key);
CREATE TABLE IF NOT EXISTS record_tags (
    permalink TEXT NOT NULL,
    tag TEXT NOT NULL,
    PRIMARY KEY (permalink, tag)
);
CREATE INDEX IF NOT EXISTS record_tags_tag ON record_tags (tag);
PRAGMA user_version = %d;
`, schemaVersion))
	return err
}

// NormalizePermalink puts a permalink in its canonical key form: a single
// leading slash and no repeated slashes. A trailing slash is kept as authored.
func NormalizePermalink(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	trailing := strings.HasSuffix(p, "/")
	p = path.Clean("/" + p)
	if trailing && p != "/" {
		p += "/"
	}
	return p
}

// lookupKeys returns the forms a permalink may have been stored under, so
// /publication/x and /publication/x/ resolve to the same record.
func lookupKeys(p string) []string {
	p = NormalizePermalink(p)
	if p == "" || p == "/" {
		return []string{p}
	}
	if strings.HasSuffix(p, "/") {
		return []string{p, strings.TrimSuffix(p, "/")}
	}
	return []string{p, p + "/"}
}

// Validate checks that every record has a non-empty, unique permalink and a
// known collection. Problems are joined so callers can report all of them.
func Validate(records []ContentRecord) error {
	var errs []error
	seen := make(map[string]string, len(records))
	for _, r := range records {
		key := strings.TrimSuffix(NormalizePermalink(r.Permalink), "/")
		if NormalizePermalink(r.Permalink) == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrEmptyPermalink, describe(r)))
			continue
		}
		if _, err := ParseCollection(string(r.Collection)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", describe(r), err))
		}
		if prev, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("%w: %s used by %s and %s", ErrDuplicatePermalink, r.Permalink, prev, describe(r)))
			continue
		}
		seen[key] = describe(r)
	}
	return errors.Join(errs...)
}

func describe(r ContentRecord) string {
	if r.SourcePath != "" {
		return r.SourcePath
	}
	if r.Title != "" {
		return fmt.Sprintf("%q", r.Title)
	}
	return "record"
}

// Replace validates records and atomically swaps them in for the current
// contents. On error the previous contents are left untouched.
func (s *Store) Replace(ctx context.Context, records []ContentRecord) error {
	if err := Validate(records); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM record_tags`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (permalink, collection, title, date, sort_key, published, source_path, document) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	tagStmt, err := tx.PrepareContext(ctx, `INSERT INTO record_tags (permalink, tag) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer tagStmt.Close()

	for _, r := range records {
		r.Permalink = NormalizePermalink(r.Permalink)
		r.Tags = NormalizeTags(r.Tags)
		r.Collection, _ = ParseCollection(string(r.Collection))
		doc, err := Document(r)
		if err != nil {
			return fmt.Errorf("folio: encode %s: %w", r.Permalink, err)
		}
		published := 0
		if r.IsPublished() {
			published = 1
		}
		if _, err := stmt.ExecContext(ctx, r.Permalink, string(r.Collection), r.Title, r.Date,
			sortKey(r), published, r.SourcePath, doc); err != nil {
			return fmt.Errorf("folio: insert %s: %w", r.Permalink, err)
		}
		for _, t := range r.Tags {
			if _, err := tagStmt.ExecContext(ctx, r.Permalink, t); err != nil {
				return fmt.Errorf("folio: tag %s: %w", r.Permalink, err)
			}
		}
	}
	return tx.Commit()
}

// sortKey orders dated records newest first when sorted descending; undated
// records get an empty key and sort last.
func sortKey(r ContentRecord) string {
	t := r.Time()
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05")
}

// Get returns a published record by permalink.
func (s *Store) Get(ctx context.Context, permalink string) (ContentRecord, error) {
	return s.get(ctx, permalink, false)
}

// GetAny returns a record by permalink regardless of published status (for
// draft preview).
func (s *Store) GetAny(ctx context.Context, permalink string) (ContentRecord, error) {
	return s.get(ctx, permalink, true)
}

func (s *Store) get(ctx context.Context, permalink string, drafts bool) (ContentRecord, error) {
	q := `SELECT document, source_path FROM records WHERE permalink = ?`
	if !drafts {
		q += ` AND published = 1`
	}
	for _, key := range lookupKeys(permalink) {
		if key == "" {
			break
		}
		var doc, source string
		err := s.db.QueryRowContext(ctx, q, key).Scan(&doc, &source)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return ContentRecord{}, err
		}
		return decodeRecord(doc, source)
	}
	return ContentRecord{}, ErrNotFound
}

// decodeRecord parses a stored document back into the record it was
// rendered from.
func decodeRecord(doc, source string) (ContentRecord, error) {
	r, err := ParseRecord([]byte(doc))
	if err != nil {
		return ContentRecord{}, fmt.Errorf("folio: decode record: %w", err)
	}
	r.SourcePath = source
	return r, nil
}

// Query filters List results. Zero values match everything published.
type Query struct {
	Collection    Collection
	Tag           string
	IncludeDrafts bool
}

// List returns matching records, newest first, undated last, ties broken by
// permalink.
func (s *Store) List(ctx context.Context, q Query) ([]ContentRecord, error) {
	var (
		where []string
		args  []any
	)
	if !q.IncludeDrafts {
		where = append(where, `published = 1`)
	}
	if q.Collection != "" {
		where = append(where, `collection = ?`)
		args = append(args, string(q.Collection))
	}
	if tag := normalizeTag(q.Tag); tag != "" {
		where = append(where, `EXISTS (SELECT 1 FROM record_tags t WHERE t.permalink = records.permalink AND t.tag = ?)`)
		args = append(args, tag)
	}
	query := `SELECT document, source_path FROM records`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY sort_key = '' ASC, sort_key DESC, permalink ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ContentRecord
	for rows.Next() {
		var doc, source string
		if err := rows.Scan(&doc, &source); err != nil {
			return nil, err
		}
		r, err := decodeRecord(doc, source)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ListTags returns a sorted, deduplicated slice of all tags from published
// records.
func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT DISTINCT t.tag FROM record_tags t
JOIN records r ON r.permalink = t.permalink
WHERE r.published = 1
ORDER BY t.tag`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		result = append(result, tag)
	}
	return result, rows.Err()
}

// Count returns the number of records, drafts included.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n)
	return n, err
}
