package cache

import (
	"fmt"
	"path"
	"time"

	"github.com/gitfudge0/werkday/internal/activity"
	"github.com/gitfudge0/werkday/internal/store"
)

// DayFormat is the calendar-date key used for daily buckets.
const DayFormat = "2006-01-02"

// DailyBucket holds the fully-resolved activity set for one calendar day.
// A bucket with an empty Records list and a set SyncedAt means "synced, no
// activity"; an absent bucket means "never synced".
type DailyBucket struct {
	Date     string            `json:"date"`
	SyncedAt time.Time         `json:"syncedAt"`
	Records  []activity.Record `json:"records"`
	Counts   activity.Counts   `json:"counts"`
}

// DailyStore persists one bucket per source per calendar day.
type DailyStore struct {
	blobs *store.Store
}

func NewDailyStore(blobs *store.Store) *DailyStore {
	return &DailyStore{blobs: blobs}
}

// Get retrieves the bucket for a date, or nil if that day was never synced.
func (d *DailyStore) Get(source activity.Source, date time.Time) (*DailyBucket, error) {
	var bucket DailyBucket
	found, err := d.blobs.Read(d.key(source, date), &bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to read daily bucket: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &bucket, nil
}

// Put overwrites the bucket for a date wholesale. Upstream is the source of
// truth for the day, so no merging happens here.
func (d *DailyStore) Put(source activity.Source, date time.Time, bucket *DailyBucket) error {
	if err := d.blobs.Write(d.key(source, date), bucket); err != nil {
		return fmt.Errorf("failed to write daily bucket: %w", err)
	}
	return nil
}

// Days lists the dates that have a bucket for the given source.
func (d *DailyStore) Days(source activity.Source) ([]string, error) {
	return d.blobs.Keys(path.Join("activity", string(source)))
}

func (d *DailyStore) key(source activity.Source, date time.Time) string {
	return path.Join("activity", string(source), date.Format(DayFormat))
}
