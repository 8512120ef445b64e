package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gitfudge0/werkday/internal/activity"
	"github.com/gitfudge0/werkday/internal/config"
	"github.com/gitfudge0/werkday/internal/provider"
)

const defaultBaseURL = "https://api.github.com"

// First page only, no pagination walking.
const pageSize = 50

type Client struct {
	config  config.GitHubConfig
	client  *http.Client
	baseURL string
}

func NewClient(cfg config.GitHubConfig) *Client {
	return &Client{
		config: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: defaultBaseURL,
	}
}

func (c *Client) Source() activity.Source {
	return activity.SourceGitHub
}

func (c *Client) Connected() bool {
	return c.config.Token != "" && c.config.Username != ""
}

// User is the authenticated GitHub account.
type User struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// CurrentUser looks up the account behind the configured token. Used to
// validate credentials before they are stored.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.makeRequest(ctx, c.baseURL+"/user", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Org is a GitHub organization membership.
type Org struct {
	Login string `json:"login"`
}

func (c *Client) Orgs(ctx context.Context) ([]Org, error) {
	var orgs []Org
	endpoint := fmt.Sprintf("%s/user/orgs?per_page=%d", c.baseURL, pageSize)
	if err := c.makeRequest(ctx, endpoint, nil, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// Repo is a repository the user can push to.
type Repo struct {
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
}

func (c *Client) Repos(ctx context.Context) ([]Repo, error) {
	var repos []Repo
	endpoint := fmt.Sprintf("%s/user/repos?per_page=%d&sort=pushed", c.baseURL, pageSize)
	if err := c.makeRequest(ctx, endpoint, nil, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// FetchDay runs the three search queries for the day concurrently. Each
// branch degrades to an empty result on failure rather than aborting the
// others; partial results are preferred for the activity view.
func (c *Client) FetchDay(ctx context.Context, day time.Time) ([]activity.Record, error) {
	if !c.Connected() {
		return nil, provider.ErrNotConnected
	}

	var commits, authored, reviewed []activity.Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		commits, _ = c.searchCommits(gctx, day)
		return nil
	})
	g.Go(func() error {
		authored, _ = c.searchAuthoredPRs(gctx, day)
		return nil
	})
	g.Go(func() error {
		reviewed, _ = c.searchReviewedPRs(gctx, day)
		return nil
	})
	_ = g.Wait()

	records := make([]activity.Record, 0, len(commits)+len(authored)+len(reviewed))
	records = append(records, commits...)
	records = append(records, authored...)
	records = append(records, reviewed...)
	return records, nil
}

func (c *Client) searchCommits(ctx context.Context, day time.Time) ([]activity.Record, error) {
	from, to := provider.DayWindow(day)

	query := fmt.Sprintf("author:%s committer-date:%s", c.config.Username, day.Format("2006-01-02"))
	query += c.scopeQualifiers()

	searchURL := fmt.Sprintf("%s/search/commits?q=%s&sort=committer-date&order=desc&per_page=%d",
		c.baseURL, url.QueryEscape(query), pageSize)

	var searchResult struct {
		Items []struct {
			SHA    string `json:"sha"`
			Commit struct {
				Message   string `json:"message"`
				Committer struct {
					Date time.Time `json:"date"`
				} `json:"committer"`
			} `json:"commit"`
			HTMLURL    string `json:"html_url"`
			Repository struct {
				FullName string `json:"full_name"`
			} `json:"repository"`
		} `json:"items"`
	}

	if err := c.makeRequest(ctx, searchURL, map[string]string{
		"Accept": "application/vnd.github.cloak-preview+json", // Required for commit search
	}, &searchResult); err != nil {
		return nil, err
	}

	var records []activity.Record
	for _, item := range searchResult.Items {
		// The search API can return broader results than the date qualifier.
		ts := item.Commit.Committer.Date
		if ts.Before(from) || !ts.Before(to) {
			continue
		}

		records = append(records, activity.Record{
			ID:        fmt.Sprintf("github-commit-%s", item.SHA),
			Kind:      activity.KindCommit,
			Source:    activity.SourceGitHub,
			Timestamp: ts,
			URL:       item.HTMLURL,
			Code: &activity.CodeDetail{
				Title:      firstLine(item.Commit.Message),
				Repository: item.Repository.FullName,
			},
		})
	}

	return records, nil
}

func (c *Client) searchAuthoredPRs(ctx context.Context, day time.Time) ([]activity.Record, error) {
	query := fmt.Sprintf("author:%s type:pr created:%s", c.config.Username, day.Format("2006-01-02"))
	return c.searchPRs(ctx, day, query, activity.KindPullRequest)
}

func (c *Client) searchReviewedPRs(ctx context.Context, day time.Time) ([]activity.Record, error) {
	query := fmt.Sprintf("reviewed-by:%s -author:%s type:pr updated:%s",
		c.config.Username, c.config.Username, day.Format("2006-01-02"))
	return c.searchPRs(ctx, day, query, activity.KindReview)
}

func (c *Client) searchPRs(ctx context.Context, day time.Time, query string, kind activity.Kind) ([]activity.Record, error) {
	from, to := provider.DayWindow(day)
	query += c.scopeQualifiers()

	searchURL := fmt.Sprintf("%s/search/issues?q=%s&sort=updated&order=desc&per_page=%d",
		c.baseURL, url.QueryEscape(query), pageSize)

	var searchResult struct {
		Items []struct {
			Number        int       `json:"number"`
			Title         string    `json:"title"`
			HTMLURL       string    `json:"html_url"`
			State         string    `json:"state"`
			CreatedAt     time.Time `json:"created_at"`
			UpdatedAt     time.Time `json:"updated_at"`
			RepositoryURL string    `json:"repository_url"`
			PullRequest   struct {
				MergedAt *time.Time `json:"merged_at"`
			} `json:"pull_request"`
		} `json:"items"`
	}

	if err := c.makeRequest(ctx, searchURL, nil, &searchResult); err != nil {
		return nil, err
	}

	var records []activity.Record
	for _, item := range searchResult.Items {
		ts := item.CreatedAt
		if kind == activity.KindReview {
			ts = item.UpdatedAt
		}
		if ts.Before(from) || !ts.Before(to) {
			continue
		}

		status := item.State
		if item.PullRequest.MergedAt != nil {
			status = "merged"
		}

		repo := repoFromURL(item.RepositoryURL)
		records = append(records, activity.Record{
			ID:        fmt.Sprintf("github-%s-%s-%d", kind, repo, item.Number),
			Kind:      kind,
			Source:    activity.SourceGitHub,
			Timestamp: ts,
			URL:       item.HTMLURL,
			Code: &activity.CodeDetail{
				Title:      item.Title,
				Repository: repo,
				Status:     status,
			},
		})
	}

	return records, nil
}

// scopeQualifiers restricts search queries to the selected repos, or failing
// that the selected orgs.
func (c *Client) scopeQualifiers() string {
	var b strings.Builder
	if len(c.config.SelectedRepos) > 0 {
		for _, repo := range c.config.SelectedRepos {
			fmt.Fprintf(&b, " repo:%s", repo)
		}
		return b.String()
	}
	for _, org := range c.config.SelectedOrgs {
		fmt.Fprintf(&b, " org:%s", org)
	}
	return b.String()
}

// repoFromURL extracts owner/name from an API repository URL like
// https://api.github.com/repos/acme/widgets.
func repoFromURL(repositoryURL string) string {
	idx := strings.Index(repositoryURL, "/repos/")
	if idx < 0 {
		return ""
	}
	return repositoryURL[idx+len("/repos/"):]
}

func firstLine(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		return message[:idx]
	}
	return message
}

func (c *Client) makeRequest(ctx context.Context, url string, extraHeaders map[string]string, result any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "token "+c.config.Token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "werkday/1.0")

	for key, value := range extraHeaders {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GitHub API request failed with status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
