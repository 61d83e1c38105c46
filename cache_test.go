package folio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRecordCache(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s,
		ContentRecord{Permalink: "/publication/a", Title: "A", Date: "2023", Collection: Publications, Tags: []string{"gpr"}},
		ContentRecord{Permalink: "/posts/b/", Title: "B", Date: "2024", Collection: Posts, Tags: []string{"gpr", "notes"}},
		ContentRecord{Permalink: "/posts/draft/", Title: "Draft", Collection: Posts, Tags: []string{"secret"}, Published: draft()},
	)
	c := NewRecordCache(s, time.Minute)
	ctx := context.Background()

	all, err := c.List(ctx, "", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]string{"/posts/b/", "/publication/a"}, permalinks(all)); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}

	pubs, _ := c.List(ctx, Publications, "")
	if diff := cmp.Diff([]string{"/publication/a"}, permalinks(pubs)); diff != "" {
		t.Errorf("List(publications) mismatch (-want +got):\n%s", diff)
	}
	tagged, _ := c.List(ctx, "", "NOTES")
	if diff := cmp.Diff([]string{"/posts/b/"}, permalinks(tagged)); diff != "" {
		t.Errorf("List(tag) mismatch (-want +got):\n%s", diff)
	}

	tags, _ := c.ListTags(ctx)
	if diff := cmp.Diff([]string{"gpr", "notes"}, tags); diff != "" {
		t.Errorf("ListTags mismatch (-want +got):\n%s", diff)
	}

	if _, err := c.Get(ctx, "/publication/a/"); err != nil {
		t.Errorf("Get with trailing slash: %v", err)
	}
	if _, err := c.Get(ctx, "/posts/draft/"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(draft) error = %v, want ErrNotFound", err)
	}
}

func TestRecordCacheInvalidate(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s, ContentRecord{Permalink: "/old/", Title: "Old", Collection: Pages})
	c := NewRecordCache(s, time.Hour)
	ctx := context.Background()

	if _, err := c.Get(ctx, "/old/"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	mustReplace(t, s, ContentRecord{Permalink: "/new/", Title: "New", Collection: Pages})

	// Still served from cache until invalidated.
	if _, err := c.Get(ctx, "/old/"); err != nil {
		t.Errorf("expected cached record before Invalidate: %v", err)
	}
	c.Invalidate()
	if _, err := c.Get(ctx, "/old/"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(/old/) after Invalidate error = %v, want ErrNotFound", err)
	}
	if _, err := c.Get(ctx, "/new/"); err != nil {
		t.Errorf("Get(/new/) after Invalidate: %v", err)
	}
}

func TestRecordCacheExpires(t *testing.T) {
	s := setupTestStore(t)
	mustReplace(t, s, ContentRecord{Permalink: "/old/", Title: "Old", Collection: Pages})
	c := NewRecordCache(s, 20*time.Millisecond)
	ctx := context.Background()

	if _, err := c.Get(ctx, "/old/"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	mustReplace(t, s, ContentRecord{Permalink: "/new/", Title: "New", Collection: Pages})
	time.Sleep(40 * time.Millisecond)

	if _, err := c.Get(ctx, "/new/"); err != nil {
		t.Errorf("Get(/new/) after TTL: %v", err)
	}
}

func TestRecordCacheEmptyStore(t *testing.T) {
	c := NewRecordCache(setupTestStore(t), time.Minute)
	records, err := c.List(context.Background(), "", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}
