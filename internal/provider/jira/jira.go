package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gitfudge0/werkday/internal/activity"
	"github.com/gitfudge0/werkday/internal/config"
	"github.com/gitfudge0/werkday/internal/provider"
)

// First page only, no pagination walking.
const pageSize = 50

// Comment bodies are flattened to plain text and truncated for storage.
const maxCommentLength = 200

type Client struct {
	config  config.JiraConfig
	client  *http.Client
	baseURL string
}

func NewClient(cfg config.JiraConfig) *Client {
	baseURL := ""
	if cfg.Domain != "" {
		baseURL = "https://" + strings.TrimSuffix(cfg.Domain, "/")
	}
	return &Client{
		config: cfg,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL: baseURL,
	}
}

func (c *Client) Source() activity.Source {
	return activity.SourceJira
}

func (c *Client) Connected() bool {
	return c.config.Domain != "" && c.config.Email != "" && c.config.APIToken != ""
}

// User is the authenticated Jira account.
type User struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// Myself looks up the account behind the configured credentials.
func (c *Client) Myself(ctx context.Context) (*User, error) {
	var user User
	if err := c.makeRequest(ctx, c.baseURL+"/rest/api/3/myself", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Project is a Jira project the user can see.
type Project struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	endpoint := fmt.Sprintf("%s/rest/api/3/project/search?maxResults=%d", c.baseURL, pageSize)
	var result struct {
		Values []Project `json:"values"`
	}
	if err := c.makeRequest(ctx, endpoint, &result); err != nil {
		return nil, err
	}
	return result.Values, nil
}

// FetchDay searches issues updated in the day's window and walks each issue's
// changelog entries, comments, and worklogs, keeping only sub-entities whose
// own timestamp falls on the target day. An issue can appear in the search
// because it was touched that day even though its top-level updated reflects
// later activity, so the day match is on the sub-entity, never the issue.
func (c *Client) FetchDay(ctx context.Context, day time.Time) ([]activity.Record, error) {
	if !c.Connected() {
		return nil, provider.ErrNotConnected
	}

	issues, err := c.searchUpdatedIssues(ctx, day)
	if err != nil {
		return nil, err
	}

	var records []activity.Record
	for _, issue := range issues {
		records = append(records, c.normalizeIssue(issue, day)...)
	}
	return records, nil
}

func (c *Client) searchUpdatedIssues(ctx context.Context, day time.Time) ([]searchIssue, error) {
	from, to := provider.DayWindow(day)

	jql := fmt.Sprintf("updated >= %q AND updated < %q",
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	if len(c.config.SelectedProjects) > 0 {
		jql = fmt.Sprintf("%s AND project IN (%s)", jql, strings.Join(c.config.SelectedProjects, ", "))
	}
	jql += " ORDER BY updated DESC"

	searchURL := fmt.Sprintf(
		"%s/rest/api/3/search?jql=%s&fields=summary,updated,status,project,comment,worklog&expand=changelog&maxResults=%d",
		c.baseURL, url.QueryEscape(jql), pageSize)

	var result struct {
		Issues []searchIssue `json:"issues"`
	}
	if err := c.makeRequest(ctx, searchURL, &result); err != nil {
		return nil, err
	}
	return result.Issues, nil
}

type searchIssue struct {
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
		Updated string `json:"updated"` // string to handle Jira's timezone formats
		Status  struct {
			Name string `json:"name"`
		} `json:"status"`
		Project struct {
			Key  string `json:"key"`
			Name string `json:"name"`
		} `json:"project"`
		Comment struct {
			Comments []struct {
				ID      string          `json:"id"`
				Author  author          `json:"author"`
				Body    json.RawMessage `json:"body"`
				Created string          `json:"created"`
			} `json:"comments"`
		} `json:"comment"`
		Worklog struct {
			Worklogs []struct {
				ID               string          `json:"id"`
				Author           author          `json:"author"`
				Started          string          `json:"started"`
				TimeSpent        string          `json:"timeSpent"`
				TimeSpentSeconds int             `json:"timeSpentSeconds"`
				Comment          json.RawMessage `json:"comment"`
			} `json:"worklogs"`
		} `json:"worklog"`
	} `json:"fields"`
	Changelog struct {
		Histories []struct {
			ID      string `json:"id"`
			Author  author `json:"author"`
			Created string `json:"created"`
			Items   []struct {
				Field      string `json:"field"`
				FromString string `json:"fromString"`
				ToString   string `json:"toString"`
			} `json:"items"`
		} `json:"histories"`
	} `json:"changelog"`
}

type author struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
}

// normalizeIssue converts one issue's day-matching sub-entities into records,
// plus a synthetic issue-touched record when at least one matched.
func (c *Client) normalizeIssue(issue searchIssue, day time.Time) []activity.Record {
	var records []activity.Record
	issueURL := fmt.Sprintf("%s/browse/%s", c.baseURL, issue.Key)

	detail := func(a author) *activity.IssueDetail {
		return &activity.IssueDetail{
			Key:     issue.Key,
			Summary: issue.Fields.Summary,
			Project: issue.Fields.Project.Key,
			Author:  a.DisplayName,
		}
	}

	for _, history := range issue.Changelog.Histories {
		ts, err := parseJiraTime(history.Created)
		if err != nil || !provider.SameDay(ts, day) || !c.mine(history.Author) {
			continue
		}
		for _, item := range history.Items {
			if item.Field != "status" {
				continue
			}
			d := detail(history.Author)
			d.Transition = &activity.Transition{From: item.FromString, To: item.ToString}
			records = append(records, activity.Record{
				ID:        fmt.Sprintf("jira-transition-%s-%s", issue.Key, history.ID),
				Kind:      activity.KindTransition,
				Source:    activity.SourceJira,
				Timestamp: ts,
				URL:       issueURL,
				Issue:     d,
			})
		}
	}

	for _, comment := range issue.Fields.Comment.Comments {
		ts, err := parseJiraTime(comment.Created)
		if err != nil || !provider.SameDay(ts, day) || !c.mine(comment.Author) {
			continue
		}
		d := detail(comment.Author)
		d.Comment = &activity.CommentBody{Body: truncate(flattenADF(comment.Body), maxCommentLength)}
		records = append(records, activity.Record{
			ID:        fmt.Sprintf("jira-comment-%s-%s", issue.Key, comment.ID),
			Kind:      activity.KindComment,
			Source:    activity.SourceJira,
			Timestamp: ts,
			URL:       fmt.Sprintf("%s?focusedCommentId=%s", issueURL, comment.ID),
			Issue:     d,
		})
	}

	for _, worklog := range issue.Fields.Worklog.Worklogs {
		ts, err := parseJiraTime(worklog.Started)
		if err != nil || !provider.SameDay(ts, day) || !c.mine(worklog.Author) {
			continue
		}
		d := detail(worklog.Author)
		d.Worklog = &activity.WorklogEntry{
			Duration: worklog.TimeSpent,
			Seconds:  worklog.TimeSpentSeconds,
			Comment:  truncate(flattenADF(worklog.Comment), maxCommentLength),
		}
		records = append(records, activity.Record{
			ID:        fmt.Sprintf("jira-worklog-%s-%s", issue.Key, worklog.ID),
			Kind:      activity.KindWorklog,
			Source:    activity.SourceJira,
			Timestamp: ts,
			URL:       issueURL,
			Issue:     d,
		})
	}

	// The issue itself only counts as touched when something on it matched
	// the day. Its timestamp is the issue's own updated time.
	if len(records) > 0 {
		ts, err := parseJiraTime(issue.Fields.Updated)
		if err == nil {
			d := &activity.IssueDetail{
				Key:     issue.Key,
				Summary: issue.Fields.Summary,
				Project: issue.Fields.Project.Key,
			}
			records = append(records, activity.Record{
				ID:        fmt.Sprintf("jira-issue-%s", issue.Key),
				Kind:      activity.KindIssue,
				Source:    activity.SourceJira,
				Timestamp: ts,
				URL:       issueURL,
				Issue:     d,
			})
		}
	}

	return records
}

// mine filters sub-entities to the configured account when one is set.
func (c *Client) mine(a author) bool {
	return c.config.AccountID == "" || a.AccountID == c.config.AccountID
}

// flattenADF reduces an Atlassian Document Format body to plain text by
// concatenating every text-typed leaf node. Plain-string bodies pass through.
func flattenADF(body json.RawMessage) string {
	if len(body) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(body, &plain); err == nil {
		return plain
	}

	var node map[string]any
	if err := json.Unmarshal(body, &node); err != nil {
		return ""
	}

	var b strings.Builder
	flattenNode(node, &b)
	return strings.TrimSpace(b.String())
}

func flattenNode(node map[string]any, b *strings.Builder) {
	if text, ok := node["text"].(string); ok {
		b.WriteString(text)
	}
	content, ok := node["content"].([]any)
	if !ok {
		return
	}
	for _, child := range content {
		childNode, ok := child.(map[string]any)
		if !ok {
			continue
		}
		if childNode["type"] == "paragraph" && b.Len() > 0 {
			b.WriteString(" ")
		}
		flattenNode(childNode, b)
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func parseJiraTime(timeStr string) (time.Time, error) {
	// Jira timestamps come in a few timezone spellings.
	formats := []string{
		"2006-01-02T15:04:05.000Z0700", // "2025-08-20T18:41:17.540+0200"
		"2006-01-02T15:04:05.000-0700",
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05Z",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse time: %s", timeStr)
}

func (c *Client) makeRequest(ctx context.Context, url string, result any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}

	// Jira Cloud uses basic auth with email and API token.
	req.SetBasicAuth(c.config.Email, c.config.APIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Jira API request failed with status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
