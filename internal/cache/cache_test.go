package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gitfudge0/werkday/internal/activity"
	"github.com/gitfudge0/werkday/internal/store"
)

func TestDailyStore_PutAndGet(t *testing.T) {
	tempDir := t.TempDir()
	daily := NewDailyStore(store.New(tempDir))

	testDate := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	bucket := &DailyBucket{
		Date:     "2024-03-05",
		SyncedAt: time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC),
		Records: []activity.Record{
			{
				ID:        "jira-issue-PROJ-1",
				Kind:      activity.KindIssue,
				Source:    activity.SourceJira,
				Timestamp: testDate.Add(10 * time.Hour),
				Issue:     &activity.IssueDetail{Key: "PROJ-1", Summary: "Fix login"},
			},
		},
	}

	if err := daily.Put(activity.SourceJira, testDate, bucket); err != nil {
		t.Fatalf("Failed to put bucket: %v", err)
	}

	// Verify file was created
	expectedFile := filepath.Join(tempDir, "activity", "jira", "2024-03-05.json")
	if _, err := os.Stat(expectedFile); os.IsNotExist(err) {
		t.Fatalf("Bucket file was not created: %s", expectedFile)
	}

	got, err := daily.Get(activity.SourceJira, testDate)
	if err != nil {
		t.Fatalf("Failed to get bucket: %v", err)
	}
	if got == nil {
		t.Fatal("Expected bucket, got nil")
	}
	if len(got.Records) != 1 || got.Records[0].ID != "jira-issue-PROJ-1" {
		t.Fatalf("Unexpected bucket records: %+v", got.Records)
	}
}

func TestDailyStore_AbsentVersusEmpty(t *testing.T) {
	daily := NewDailyStore(store.New(t.TempDir()))
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	got, err := daily.Get(activity.SourceJira, date)
	if err != nil {
		t.Fatalf("Unexpected error for absent bucket: %v", err)
	}
	if got != nil {
		t.Fatal("Expected nil for a never-synced day")
	}

	// A synced day with zero activity is a real bucket, not absent.
	empty := &DailyBucket{Date: "2024-03-05", SyncedAt: time.Now(), Records: []activity.Record{}}
	if err := daily.Put(activity.SourceJira, date, empty); err != nil {
		t.Fatalf("Failed to put empty bucket: %v", err)
	}

	got, err = daily.Get(activity.SourceJira, date)
	if err != nil {
		t.Fatalf("Failed to get empty bucket: %v", err)
	}
	if got == nil {
		t.Fatal("Expected empty bucket, got nil")
	}
	if got.SyncedAt.IsZero() {
		t.Error("Expected syncedAt to be set on empty bucket")
	}
	if len(got.Records) != 0 {
		t.Errorf("Expected zero records, got %d", len(got.Records))
	}
}

func TestDailyStore_PutOverwritesWholesale(t *testing.T) {
	daily := NewDailyStore(store.New(t.TempDir()))
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	first := &DailyBucket{Date: "2024-03-05", SyncedAt: time.Now(), Records: []activity.Record{
		{ID: "jira-issue-PROJ-1", Kind: activity.KindIssue, Source: activity.SourceJira},
		{ID: "jira-comment-PROJ-1-10", Kind: activity.KindComment, Source: activity.SourceJira},
	}}
	if err := daily.Put(activity.SourceJira, date, first); err != nil {
		t.Fatalf("Failed to put first bucket: %v", err)
	}

	second := &DailyBucket{Date: "2024-03-05", SyncedAt: time.Now(), Records: []activity.Record{
		{ID: "jira-issue-PROJ-2", Kind: activity.KindIssue, Source: activity.SourceJira},
	}}
	if err := daily.Put(activity.SourceJira, date, second); err != nil {
		t.Fatalf("Failed to put second bucket: %v", err)
	}

	got, err := daily.Get(activity.SourceJira, date)
	if err != nil {
		t.Fatalf("Failed to get bucket: %v", err)
	}
	if len(got.Records) != 1 || got.Records[0].ID != "jira-issue-PROJ-2" {
		t.Errorf("Expected second put to replace the first, got %+v", got.Records)
	}
}

func TestDailyStore_SourcesAreIsolated(t *testing.T) {
	daily := NewDailyStore(store.New(t.TempDir()))
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	bucket := &DailyBucket{Date: "2024-03-05", SyncedAt: time.Now(), Records: []activity.Record{}}
	if err := daily.Put(activity.SourceGitHub, date, bucket); err != nil {
		t.Fatalf("Failed to put github bucket: %v", err)
	}

	got, err := daily.Get(activity.SourceJira, date)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != nil {
		t.Error("Expected jira bucket to be absent when only github was synced")
	}
}
