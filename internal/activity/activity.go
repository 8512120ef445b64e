package activity

import (
	"math"
	"sort"
	"time"
)

// Source identifies which upstream system produced a record.
type Source string

const (
	SourceGitHub Source = "github"
	SourceJira   Source = "jira"
)

// Kind represents different types of work activities
type Kind string

const (
	KindCommit      Kind = "commit"
	KindPullRequest Kind = "pull_request"
	KindReview      Kind = "review"
	KindIssue       Kind = "issue"
	KindTransition  Kind = "transition"
	KindComment     Kind = "comment"
	KindWorklog     Kind = "worklog"
)

// Record is a single normalized work activity. Exactly one of Code or Issue
// is set depending on Kind: commit/pull_request/review carry Code,
// issue/transition/comment/worklog carry Issue.
type Record struct {
	ID        string       `json:"id"`
	Kind      Kind         `json:"kind"`
	Source    Source       `json:"source"`
	Timestamp time.Time    `json:"timestamp"`
	URL       string       `json:"url,omitempty"`
	Code      *CodeDetail  `json:"code,omitempty"`
	Issue     *IssueDetail `json:"issue,omitempty"`
}

// CodeDetail holds the fields valid for source-control records.
type CodeDetail struct {
	Title      string `json:"title"`
	Repository string `json:"repository"` // owner/name
	Status     string `json:"status,omitempty"`
}

// IssueDetail holds the fields valid for issue-tracker records. At most one
// of Transition, Comment, Worklog is set, matching the record's Kind.
type IssueDetail struct {
	Key        string        `json:"key"`
	Summary    string        `json:"summary"`
	Project    string        `json:"project,omitempty"`
	Author     string        `json:"author,omitempty"`
	Transition *Transition   `json:"transition,omitempty"`
	Comment    *CommentBody  `json:"comment,omitempty"`
	Worklog    *WorklogEntry `json:"worklog,omitempty"`
}

// Transition captures a status change on an issue.
type Transition struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CommentBody is a comment flattened to plain text and truncated for storage.
type CommentBody struct {
	Body string `json:"body"`
}

// WorklogEntry captures time logged against an issue.
type WorklogEntry struct {
	Duration string `json:"duration,omitempty"`
	Seconds  int    `json:"seconds"`
	Comment  string `json:"comment,omitempty"`
}

// Dedupe returns records with duplicate ids removed, keeping the first
// occurrence of each id in input order.
func Dedupe(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

// SortByTimestampDesc orders records most recent first. Ties break on id so
// the order is stable across syncs.
func SortByTimestampDesc(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].ID < records[j].ID
		}
		return records[i].Timestamp.After(records[j].Timestamp)
	})
}

// GroupByKind groups records by their kind
func GroupByKind(records []Record) map[Kind][]Record {
	groups := make(map[Kind][]Record)
	for _, r := range records {
		groups[r.Kind] = append(groups[r.Kind], r)
	}
	return groups
}

// GroupBySource groups records by their source system
func GroupBySource(records []Record) map[Source][]Record {
	groups := make(map[Source][]Record)
	for _, r := range records {
		groups[r.Source] = append(groups[r.Source], r)
	}
	return groups
}

// Counts summarizes a record list for reporting.
type Counts struct {
	Commits        int     `json:"commits"`
	PullRequests   int     `json:"pullRequests"`
	Reviews        int     `json:"reviews"`
	IssuesTouched  int     `json:"issuesTouched"`
	Transitions    int     `json:"transitions"`
	Comments       int     `json:"comments"`
	Worklogs       int     `json:"worklogs"`
	WorklogSeconds int     `json:"worklogSeconds"`
	LoggedHours    float64 `json:"loggedHours"`
	Total          int     `json:"total"`
}

// Count tallies records per kind. Issues touched are distinct by issue key;
// any tracker record counts toward its key, not only kind=issue.
func Count(records []Record) Counts {
	var c Counts
	issueKeys := make(map[string]struct{})
	for _, r := range records {
		c.Total++
		switch r.Kind {
		case KindCommit:
			c.Commits++
		case KindPullRequest:
			c.PullRequests++
		case KindReview:
			c.Reviews++
		case KindTransition:
			c.Transitions++
		case KindComment:
			c.Comments++
		case KindWorklog:
			c.Worklogs++
			if r.Issue != nil && r.Issue.Worklog != nil {
				c.WorklogSeconds += r.Issue.Worklog.Seconds
			}
		}
		if r.Issue != nil && r.Issue.Key != "" {
			issueKeys[r.Issue.Key] = struct{}{}
		}
	}
	c.IssuesTouched = len(issueKeys)
	c.LoggedHours = math.Round(float64(c.WorklogSeconds)/3600*10) / 10
	return c
}
