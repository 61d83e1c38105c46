package folio

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test_content.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustReplace(t *testing.T, s *Store, records ...ContentRecord) {
	t.Helper()
	if err := s.Replace(context.Background(), records); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
}

func draft() *bool {
	f := false
	return &f
}

func permalinks(records []ContentRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Permalink)
	}
	return out
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
	n, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}

func TestReplaceAndGet(t *testing.T) {
	s := setupTestStore(t)
	rec := ContentRecord{
		Permalink:  "/publication/2023_AIAA_GPR",
		Title:      "Pressure reconstruction from the measured pressure gradient using Gaussian process regression.",
		Date:       "2023-01-09",
		Collection: Publications,
		Category:   "conferences",
		Tags:       []string{"GPR", " pressure "},
		Venue:      "AIAA SciTech Forum",
		Body:       "Abstract.\n",
	}
	mustReplace(t, s, rec)

	got, err := s.Get(context.Background(), rec.Permalink)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	want := rec
	want.Tags = []string{"gpr", "pressure"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get mismatch (-want +got):\n%s", diff)
	}
}

func TestReplaceKeepsParsedRecord(t *testing.T) {
	s := setupTestStore(t)
	src := []byte(`---
title: 'Vortex merger in shear'
permalink: /publication/2024_merger
date: 2024-01-15
collection: publications
tags: [Vortices]
last_modified_at: 2024-02-01
doi_id: 12345678901234567
ratio: 0.25
authors:
  - name: Jane Doe
    orcid: 0000-0002-1825-0097
---
Body text.
`)
	rec, err := ParseRecord(src)
	if err != nil {
		t.Fatalf("ParseRecord failed: %v", err)
	}
	rec.SourcePath = "_publications/2024-01-15-merger.md"
	mustReplace(t, s, rec)

	got, err := s.Get(context.Background(), rec.Permalink)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Errorf("stored record changed (-want +got):\n%s", diff)
	}

	listed, err := s.List(context.Background(), Query{Collection: Publications})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("List returned %d records, want 1", len(listed))
	}
	if diff := cmp.Diff(rec, listed[0]); diff != "" {
		t.Errorf("listed record changed (-want +got):\n%s", diff)
	}

	doc, err := Document(got)
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	if !strings.Contains(doc, "doi_id: 12345678901234567") {
		t.Errorf("document lost integer precision:\n%s", doc)
	}
}

func TestGetTrailingSlashEquivalent(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s,
		ContentRecord{Permalink: "/publication/a", Title: "A", Collection: Publications},
		ContentRecord{Permalink: "/about/", Title: "About", Collection: Pages},
	)

	for _, p := range []string{"/publication/a", "/publication/a/", "publication/a", "/about", "/about/", "//about/"} {
		if _, err := s.Get(context.Background(), p); err != nil {
			t.Errorf("Get(%q) failed: %v", p, err)
		}
	}
}

func TestGetNotFound(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s, ContentRecord{Permalink: "/a/", Title: "A", Collection: Pages})

	for _, p := range []string{"/missing/", ""} {
		if _, err := s.Get(context.Background(), p); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%q) error = %v, want ErrNotFound", p, err)
		}
	}
}

func TestGetDraft(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s, ContentRecord{Permalink: "/post/wip/", Title: "WIP", Collection: Posts, Published: draft()})

	if _, err := s.Get(context.Background(), "/post/wip/"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(draft) error = %v, want ErrNotFound", err)
	}
	got, err := s.GetAny(context.Background(), "/post/wip/")
	if err != nil {
		t.Fatalf("GetAny failed: %v", err)
	}
	if got.IsPublished() {
		t.Error("GetAny returned a published record, want draft")
	}
}

func TestReplaceDuplicateKeepsPrevious(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s, ContentRecord{Permalink: "/kept/", Title: "Kept", Collection: Pages})

	err := s.Replace(context.Background(), []ContentRecord{
		{Permalink: "/publication/x", Title: "One", Collection: Publications},
		{Permalink: "/publication/x/", Title: "Two", Collection: Publications},
	})
	if !errors.Is(err, ErrDuplicatePermalink) {
		t.Fatalf("Replace error = %v, want ErrDuplicatePermalink", err)
	}

	if _, err := s.Get(context.Background(), "/kept/"); err != nil {
		t.Errorf("previous contents lost after failed Replace: %v", err)
	}
	n, _ := s.Count(context.Background())
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestReplaceSwapsContents(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s, ContentRecord{Permalink: "/old/", Title: "Old", Collection: Pages})
	mustReplace(t, s, ContentRecord{Permalink: "/new/", Title: "New", Collection: Pages})

	if _, err := s.Get(context.Background(), "/old/"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old record still present: %v", err)
	}
	if _, err := s.Get(context.Background(), "/new/"); err != nil {
		t.Errorf("new record missing: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		records []ContentRecord
		want    error
	}{
		{"ok", []ContentRecord{{Permalink: "/a/", Collection: Pages}, {Permalink: "/b/", Collection: Posts}}, nil},
		{"empty permalink", []ContentRecord{{Permalink: "  ", Collection: Pages}}, ErrEmptyPermalink},
		{"duplicate", []ContentRecord{{Permalink: "/a", Collection: Pages}, {Permalink: "a/", Collection: Posts}}, ErrDuplicatePermalink},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.records)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}

	if err := Validate([]ContentRecord{{Permalink: "/a/", Collection: "widgets"}}); err == nil {
		t.Error("Validate accepted an unknown collection")
	}
}

func TestListOrdering(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s,
		ContentRecord{Permalink: "/publication/b", Title: "B", Date: "2021", Collection: Publications},
		ContentRecord{Permalink: "/publication/a", Title: "A", Date: "2021", Collection: Publications},
		ContentRecord{Permalink: "/publication/new", Title: "New", Date: "2023-01-09", Collection: Publications},
		ContentRecord{Permalink: "/publication/mid", Title: "Mid", Date: "2022-06", Collection: Publications},
		ContentRecord{Permalink: "/publication/undated", Title: "Undated", Collection: Publications},
		ContentRecord{Permalink: "/about/", Title: "About", Collection: Pages},
	)

	got, err := s.List(context.Background(), Query{Collection: Publications})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"/publication/new", "/publication/mid", "/publication/a", "/publication/b", "/publication/undated"}
	if diff := cmp.Diff(want, permalinks(got)); diff != "" {
		t.Errorf("List order mismatch (-want +got):\n%s", diff)
	}
}

func TestListByTag(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s,
		ContentRecord{Permalink: "/post/a/", Title: "A", Date: "2024-01-02", Collection: Posts, Tags: []string{"Go", "fluids"}},
		ContentRecord{Permalink: "/post/b/", Title: "B", Date: "2024-01-01", Collection: Posts, Tags: []string{"fluids"}},
		ContentRecord{Permalink: "/post/c/", Title: "C", Date: "2024-01-03", Collection: Posts, Tags: []string{"gopher"}},
		ContentRecord{Permalink: "/post/d/", Title: "D", Date: "2024-01-04", Collection: Posts, Tags: []string{"go"}, Published: draft()},
	)

	tests := []struct {
		query Query
		want  []string
	}{
		{Query{Tag: "go"}, []string{"/post/a/"}},
		{Query{Tag: "GO"}, []string{"/post/a/"}},
		{Query{Tag: "go", IncludeDrafts: true}, []string{"/post/d/", "/post/a/"}},
		{Query{Tag: "fluids"}, []string{"/post/a/", "/post/b/"}},
		{Query{Tag: "missing"}, []string{}},
	}
	for _, tt := range tests {
		got, err := s.List(context.Background(), tt.query)
		if err != nil {
			t.Fatalf("List(%+v) failed: %v", tt.query, err)
		}
		if diff := cmp.Diff(tt.want, permalinks(got)); diff != "" {
			t.Errorf("List(%+v) mismatch (-want +got):\n%s", tt.query, diff)
		}
	}
}

func TestTagsWithCommas(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s,
		ContentRecord{Permalink: "/a/", Title: "A", Collection: Posts, Tags: []string{"fluids, turbulence"}},
		ContentRecord{Permalink: "/b/", Title: "B", Collection: Posts, Tags: []string{"fluids", "piv"}},
	)

	got, err := s.List(context.Background(), Query{Tag: "fluids"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if diff := cmp.Diff([]string{"/b/"}, permalinks(got)); diff != "" {
		t.Errorf("List(fluids) mismatch (-want +got):\n%s", diff)
	}

	got, err = s.List(context.Background(), Query{Tag: "fluids, turbulence"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if diff := cmp.Diff([]string{"/a/"}, permalinks(got)); diff != "" {
		t.Errorf("List(fluids, turbulence) mismatch (-want +got):\n%s", diff)
	}

	tags, err := s.ListTags(context.Background())
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if diff := cmp.Diff([]string{"fluids", "fluids, turbulence", "piv"}, tags); diff != "" {
		t.Errorf("ListTags mismatch (-want +got):\n%s", diff)
	}
}

func TestListTags(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s,
		ContentRecord{Permalink: "/a/", Title: "A", Collection: Pages, Tags: []string{"zeta", "alpha"}},
		ContentRecord{Permalink: "/b/", Title: "B", Collection: Pages, Tags: []string{"alpha", "mid"}},
		ContentRecord{Permalink: "/c/", Title: "C", Collection: Pages, Tags: []string{"hidden"}, Published: draft()},
	)

	got, err := s.ListTags(context.Background())
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if diff := cmp.Diff([]string{"alpha", "mid", "zeta"}, got); diff != "" {
		t.Errorf("ListTags mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizePermalink(t *testing.T) {
	tests := map[string]string{
		"":                  "",
		"/":                 "/",
		"about":             "/about",
		"/about/":           "/about/",
		"//publication//x/": "/publication/x/",
		" /publication/x ":  "/publication/x",
		"/a/../b/":          "/b/",
	}
	for in, want := range tests {
		if got := NormalizePermalink(in); got != want {
			t.Errorf("NormalizePermalink(%q) = %q, want %q", in, got, want)
		}
	}
}
