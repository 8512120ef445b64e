package activity

import (
	"testing"
	"time"
)

func TestDedupe(t *testing.T) {
	ts := time.Now()
	records := []Record{
		{ID: "github-commit-abc", Kind: KindCommit, Source: SourceGitHub, Timestamp: ts},
		{ID: "jira-comment-PROJ-1-10", Kind: KindComment, Source: SourceJira, Timestamp: ts},
		{ID: "github-commit-abc", Kind: KindCommit, Source: SourceGitHub, Timestamp: ts.Add(time.Hour)},
		{ID: "jira-comment-PROJ-1-10", Kind: KindComment, Source: SourceJira, Timestamp: ts},
	}

	out := Dedupe(records)

	if len(out) != 2 {
		t.Fatalf("Expected 2 records after dedupe, got %d", len(out))
	}

	// First occurrence wins: the earlier commit timestamp must be kept.
	if !out[0].Timestamp.Equal(ts) {
		t.Errorf("Expected first occurrence to be kept, got timestamp %v", out[0].Timestamp)
	}
}

func TestSortByTimestampDesc(t *testing.T) {
	base := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	records := []Record{
		{ID: "b", Timestamp: base},
		{ID: "c", Timestamp: base.Add(2 * time.Hour)},
		{ID: "a", Timestamp: base},
		{ID: "d", Timestamp: base.Add(time.Hour)},
	}

	SortByTimestampDesc(records)

	wantOrder := []string{"c", "d", "a", "b"}
	for i, id := range wantOrder {
		if records[i].ID != id {
			t.Errorf("Position %d: expected %q, got %q", i, id, records[i].ID)
		}
	}
}

func TestGroupByKind(t *testing.T) {
	ts := time.Now()
	records := []Record{
		{ID: "1", Kind: KindCommit, Source: SourceGitHub, Timestamp: ts},
		{ID: "2", Kind: KindCommit, Source: SourceGitHub, Timestamp: ts},
		{ID: "3", Kind: KindPullRequest, Source: SourceGitHub, Timestamp: ts},
		{ID: "4", Kind: KindTransition, Source: SourceJira, Timestamp: ts},
	}

	groups := GroupByKind(records)

	if len(groups) != 3 {
		t.Errorf("Expected 3 kind groups, got %d", len(groups))
	}

	if len(groups[KindCommit]) != 2 {
		t.Errorf("Expected 2 commit records, got %d", len(groups[KindCommit]))
	}

	if len(groups[KindPullRequest]) != 1 {
		t.Errorf("Expected 1 pull request record, got %d", len(groups[KindPullRequest]))
	}
}

func TestCount(t *testing.T) {
	ts := time.Now()
	records := []Record{
		{ID: "1", Kind: KindCommit, Source: SourceGitHub, Timestamp: ts, Code: &CodeDetail{Repository: "acme/api"}},
		{ID: "2", Kind: KindPullRequest, Source: SourceGitHub, Timestamp: ts, Code: &CodeDetail{Repository: "acme/api"}},
		{ID: "3", Kind: KindIssue, Source: SourceJira, Timestamp: ts, Issue: &IssueDetail{Key: "PROJ-1"}},
		{ID: "4", Kind: KindTransition, Source: SourceJira, Timestamp: ts, Issue: &IssueDetail{Key: "PROJ-1", Transition: &Transition{From: "To Do", To: "In Progress"}}},
		{ID: "5", Kind: KindWorklog, Source: SourceJira, Timestamp: ts, Issue: &IssueDetail{Key: "PROJ-2", Worklog: &WorklogEntry{Seconds: 5400}}},
		{ID: "6", Kind: KindWorklog, Source: SourceJira, Timestamp: ts, Issue: &IssueDetail{Key: "PROJ-2", Worklog: &WorklogEntry{Seconds: 1800}}},
	}

	c := Count(records)

	if c.Commits != 1 || c.PullRequests != 1 || c.Transitions != 1 || c.Worklogs != 2 {
		t.Errorf("Unexpected per-kind counts: %+v", c)
	}

	// PROJ-1 and PROJ-2, deduplicated across record kinds.
	if c.IssuesTouched != 2 {
		t.Errorf("Expected 2 issues touched, got %d", c.IssuesTouched)
	}

	if c.WorklogSeconds != 7200 {
		t.Errorf("Expected 7200 worklog seconds, got %d", c.WorklogSeconds)
	}

	if c.LoggedHours != 2.0 {
		t.Errorf("Expected 2.0 logged hours, got %v", c.LoggedHours)
	}

	if c.Total != 6 {
		t.Errorf("Expected total 6, got %d", c.Total)
	}
}

func TestCountRoundsLoggedHours(t *testing.T) {
	records := []Record{
		{ID: "1", Kind: KindWorklog, Source: SourceJira, Timestamp: time.Now(),
			Issue: &IssueDetail{Key: "PROJ-1", Worklog: &WorklogEntry{Seconds: 5000}}},
	}

	c := Count(records)

	// 5000s = 1.388... hours, rounded to one decimal.
	if c.LoggedHours != 1.4 {
		t.Errorf("Expected 1.4 logged hours, got %v", c.LoggedHours)
	}
}
