package folio

import (
	"context"
	"sync"
	"time"
)

// RecordCache is an in-memory cache of published records and tags with TTL.
type RecordCache struct {
	mu      sync.RWMutex
	records []ContentRecord
	byKey   map[string]int
	tags    []string
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewRecordCache creates a RecordCache backed by the given Store.
func NewRecordCache(s *Store, ttl time.Duration) *RecordCache {
	return &RecordCache{store: s, ttl: ttl}
}

func (c *RecordCache) valid() bool {
	return c.records != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *RecordCache) Invalidate() {
	c.mu.Lock()
	c.records = nil
	c.byKey = nil
	c.tags = nil
	c.mu.Unlock()
}

func (c *RecordCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	records, err := c.store.List(ctx, Query{})
	if err != nil {
		return err
	}
	tags, err := c.store.ListTags(ctx)
	if err != nil {
		return err
	}
	if records == nil {
		records = []ContentRecord{}
	}
	byKey := make(map[string]int, len(records))
	for i, r := range records {
		byKey[r.Permalink] = i
	}
	c.records = records
	c.byKey = byKey
	c.tags = tags
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached records after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *RecordCache) ensureLoaded(ctx context.Context) ([]ContentRecord, map[string]int, []string, error) {
	c.mu.RLock()
	if c.valid() {
		records, byKey, tags := c.records, c.byKey, c.tags
		c.mu.RUnlock()
		return records, byKey, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, nil, nil, err
	}
	return c.records, c.byKey, c.tags, nil
}

// List returns published records matching the collection and tag filters.
// Empty filters match everything.
func (c *RecordCache) List(ctx context.Context, collection Collection, tag string) ([]ContentRecord, error) {
	records, _, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if collection == "" && tag == "" {
		return records, nil
	}
	normalized := normalizeTag(tag)
	var filtered []ContentRecord
	for _, r := range records {
		if collection != "" && r.Collection != collection {
			continue
		}
		if normalized != "" && !hasTag(r, normalized) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

func hasTag(r ContentRecord, tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ListTags returns all unique tags from published records.
func (c *RecordCache) ListTags(ctx context.Context) ([]string, error) {
	_, _, tags, err := c.ensureLoaded(ctx)
	return tags, err
}

// Get returns a single published record by permalink from the cache.
func (c *RecordCache) Get(ctx context.Context, permalink string) (ContentRecord, error) {
	records, byKey, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return ContentRecord{}, err
	}
	for _, key := range lookupKeys(permalink) {
		if i, ok := byKey[key]; ok {
			return records[i], nil
		}
	}
	return ContentRecord{}, ErrNotFound
}
