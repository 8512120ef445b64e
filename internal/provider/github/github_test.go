package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gitfudge0/werkday/internal/activity"
	"github.com/gitfudge0/werkday/internal/config"
)

func TestClient_Connected(t *testing.T) {
	tests := []struct {
		name     string
		config   config.GitHubConfig
		expected bool
	}{
		{
			name:     "fully configured",
			config:   config.GitHubConfig{Username: "octocat", Token: "testtoken"},
			expected: true,
		},
		{
			name:     "missing token",
			config:   config.GitHubConfig{Username: "octocat"},
			expected: false,
		},
		{
			name:     "missing username",
			config:   config.GitHubConfig{Token: "testtoken"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.config)
			if c.Connected() != tt.expected {
				t.Errorf("Expected Connected() = %v", tt.expected)
			}
		})
	}
}

func TestClient_FetchDayNotConnected(t *testing.T) {
	c := NewClient(config.GitHubConfig{})
	if _, err := c.FetchDay(context.Background(), time.Now()); err == nil {
		t.Fatal("Expected error when not connected")
	}
}

func newSearchServer(t *testing.T, commits, issues any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "token testtoken" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case strings.HasPrefix(r.URL.Path, "/search/commits"):
			_ = json.NewEncoder(w).Encode(commits)
		case strings.HasPrefix(r.URL.Path, "/search/issues"):
			_ = json.NewEncoder(w).Encode(issues)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestClient_FetchDay(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	commits := map[string]any{
		"items": []map[string]any{
			{
				"sha": "abc123",
				"commit": map[string]any{
					"message":   "Fix login flow\n\nLonger body",
					"committer": map[string]any{"date": "2024-03-05T10:00:00Z"},
				},
				"html_url":   "https://github.com/acme/api/commit/abc123",
				"repository": map[string]any{"full_name": "acme/api"},
			},
			{
				// Outside the day window, must be dropped.
				"sha": "def456",
				"commit": map[string]any{
					"message":   "Older work",
					"committer": map[string]any{"date": "2024-03-04T10:00:00Z"},
				},
				"repository": map[string]any{"full_name": "acme/api"},
			},
		},
	}
	issues := map[string]any{
		"items": []map[string]any{
			{
				"number":         42,
				"title":          "Add rate limiting",
				"html_url":       "https://github.com/acme/api/pull/42",
				"state":          "closed",
				"created_at":     "2024-03-05T09:00:00Z",
				"updated_at":     "2024-03-05T09:30:00Z",
				"repository_url": "https://api.github.com/repos/acme/api",
				"pull_request":   map[string]any{"merged_at": "2024-03-05T11:00:00Z"},
			},
		},
	}

	server := newSearchServer(t, commits, issues)
	defer server.Close()

	c := NewClient(config.GitHubConfig{Username: "octocat", Token: "testtoken"})
	c.baseURL = server.URL

	records, err := c.FetchDay(context.Background(), day)
	if err != nil {
		t.Fatalf("FetchDay failed: %v", err)
	}

	// 1 commit + the same PR item served for both PR queries.
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	byKind := activity.GroupByKind(records)
	commitRecs := byKind[activity.KindCommit]
	if len(commitRecs) != 1 {
		t.Fatalf("Expected 1 commit record, got %d", len(commitRecs))
	}
	if commitRecs[0].ID != "github-commit-abc123" {
		t.Errorf("Unexpected commit id %q", commitRecs[0].ID)
	}
	if commitRecs[0].Code.Title != "Fix login flow" {
		t.Errorf("Expected first line of commit message, got %q", commitRecs[0].Code.Title)
	}

	prRecs := byKind[activity.KindPullRequest]
	if len(prRecs) != 1 {
		t.Fatalf("Expected 1 pull request record, got %d", len(prRecs))
	}
	if prRecs[0].Code.Status != "merged" {
		t.Errorf("Expected merged status, got %q", prRecs[0].Code.Status)
	}
	if prRecs[0].Code.Repository != "acme/api" {
		t.Errorf("Expected repository from repository_url, got %q", prRecs[0].Code.Repository)
	}
}

func TestClient_FetchDayBranchFailureDegradesToEmpty(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/search/commits") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{
			{
				"number":         7,
				"title":          "Tweak config",
				"html_url":       "https://github.com/acme/api/pull/7",
				"state":          "open",
				"created_at":     "2024-03-05T08:00:00Z",
				"updated_at":     "2024-03-05T08:00:00Z",
				"repository_url": "https://api.github.com/repos/acme/api",
			},
		}})
	}))
	defer server.Close()

	c := NewClient(config.GitHubConfig{Username: "octocat", Token: "testtoken"})
	c.baseURL = server.URL

	records, err := c.FetchDay(context.Background(), day)
	if err != nil {
		t.Fatalf("Expected partial results, got error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records from surviving branches, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Kind == activity.KindCommit {
			t.Error("Commit branch failed and must contribute nothing")
		}
	}
}

func TestClient_CurrentUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"login": "octocat", "name": "The Octocat"})
	}))
	defer server.Close()

	c := NewClient(config.GitHubConfig{Username: "octocat", Token: "testtoken"})
	c.baseURL = server.URL

	user, err := c.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if user.Login != "octocat" {
		t.Errorf("Expected login octocat, got %q", user.Login)
	}
}

func TestRepoFromURL(t *testing.T) {
	if got := repoFromURL("https://api.github.com/repos/acme/widgets"); got != "acme/widgets" {
		t.Errorf("Expected acme/widgets, got %q", got)
	}
	if got := repoFromURL("garbage"); got != "" {
		t.Errorf("Expected empty repo for malformed URL, got %q", got)
	}
}

func TestScopeQualifiers(t *testing.T) {
	c := NewClient(config.GitHubConfig{
		Username:      "octocat",
		Token:         "t",
		SelectedOrgs:  []string{"acme"},
		SelectedRepos: []string{"acme/api", "acme/web"},
	})

	// Repos take precedence over orgs.
	got := c.scopeQualifiers()
	if got != " repo:acme/api repo:acme/web" {
		t.Errorf("Unexpected qualifiers: %q", got)
	}

	c = NewClient(config.GitHubConfig{Username: "octocat", Token: "t", SelectedOrgs: []string{"acme"}})
	if got := c.scopeQualifiers(); got != " org:acme" {
		t.Errorf("Unexpected org qualifier: %q", got)
	}
}
