package cache

import (
	"fmt"
	"path"
	"time"

	"github.com/gitfudge0/werkday/internal/activity"
	"github.com/gitfudge0/werkday/internal/store"
)

// MaxRollingEntries bounds the rolling cache to the most recent entries by
// timestamp. Overflow is dropped; day buckets remain the authoritative store.
const MaxRollingEntries = 500

// RollingCache is a capped, most-recent-first, deduplicated record list kept
// per source as a fast path for recent-activity queries.
type RollingCache struct {
	LastSync time.Time         `json:"lastSync"`
	Records  []activity.Record `json:"records"`
}

// RollingStore persists one rolling cache per upstream source.
type RollingStore struct {
	blobs *store.Store
	now   func() time.Time
}

func NewRollingStore(blobs *store.Store) *RollingStore {
	return &RollingStore{blobs: blobs, now: time.Now}
}

// Get returns the rolling cache for a source, empty if absent.
func (r *RollingStore) Get(source activity.Source) (*RollingCache, error) {
	cache := &RollingCache{}
	if _, err := r.blobs.Read(r.key(source), cache); err != nil {
		return nil, fmt.Errorf("failed to read rolling cache: %w", err)
	}
	return cache, nil
}

// AddActivities inserts new records into the source's rolling cache.
// Existing records are never replaced even if the upstream copy changed;
// the merged list is sorted most recent first and truncated to the cap.
func (r *RollingStore) AddActivities(source activity.Source, newRecords []activity.Record) (*RollingCache, error) {
	cache, err := r.Get(source)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]struct{}, len(cache.Records))
	for _, rec := range cache.Records {
		existing[rec.ID] = struct{}{}
	}

	merged := cache.Records
	for _, rec := range newRecords {
		if _, ok := existing[rec.ID]; ok {
			continue
		}
		existing[rec.ID] = struct{}{}
		merged = append(merged, rec)
	}

	activity.SortByTimestampDesc(merged)
	if len(merged) > MaxRollingEntries {
		merged = merged[:MaxRollingEntries]
	}

	cache.Records = merged
	cache.LastSync = r.now()

	if err := r.blobs.Write(r.key(source), cache); err != nil {
		return nil, fmt.Errorf("failed to write rolling cache: %w", err)
	}
	return cache, nil
}

// Clear drops the source's rolling cache. Losing it costs only the fast-path
// window, never day-granular correctness.
func (r *RollingStore) Clear(source activity.Source) error {
	return r.blobs.Delete(r.key(source))
}

// InRange returns cached records whose timestamps fall within [from, to).
func (c *RollingCache) InRange(from, to time.Time) []activity.Record {
	var out []activity.Record
	for _, rec := range c.Records {
		if rec.Timestamp.Before(from) || !rec.Timestamp.Before(to) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (r *RollingStore) key(source activity.Source) string {
	return path.Join("cache", string(source))
}
