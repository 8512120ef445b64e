package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/gitfudge0/werkday/internal/activity"
	"github.com/gitfudge0/werkday/internal/cache"
	"github.com/gitfudge0/werkday/internal/config"
	"github.com/gitfudge0/werkday/internal/notes"
	"github.com/gitfudge0/werkday/internal/provider"
	"github.com/gitfudge0/werkday/internal/provider/github"
	"github.com/gitfudge0/werkday/internal/provider/jira"
)

var errMissingInput = errors.New("missing input")

func sourceParam(r *http.Request) (activity.Source, error) {
	switch chi.URLParam(r, "integration") {
	case "github":
		return activity.SourceGitHub, nil
	case "jira":
		return activity.SourceJira, nil
	}
	return "", fmt.Errorf("%w: unknown integration", errMissingInput)
}

func parseDate(value string) (time.Time, error) {
	d, err := time.Parse(cache.DayFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", errMissingInput, value)
	}
	return d, nil
}

// parseRange reads from/to date strings, with to defaulting to from.
func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	if fromStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from date is required", errMissingInput)
	}
	from, err := parseDate(fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if toStr == "" {
		return from, from, nil
	}
	to, err := parseDate(toStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from is after to", errMissingInput)
	}
	return from, to, nil
}

func (s *Server) handleIntegrationStatus(w http.ResponseWriter, r *http.Request) {
	source, err := sourceParam(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	cfg, err := s.cfg.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	switch source {
	case activity.SourceGitHub:
		writeJSON(w, http.StatusOK, map[string]any{
			"connected":     github.NewClient(cfg.GitHub).Connected(),
			"username":      cfg.GitHub.Username,
			"selectedOrgs":  cfg.GitHub.SelectedOrgs,
			"selectedRepos": cfg.GitHub.SelectedRepos,
		})
	case activity.SourceJira:
		writeJSON(w, http.StatusOK, map[string]any{
			"connected":        jira.NewClient(cfg.Jira).Connected(),
			"domain":           cfg.Jira.Domain,
			"email":            cfg.Jira.Email,
			"selectedProjects": cfg.Jira.SelectedProjects,
		})
	}
}

func (s *Server) handleIntegrationValidate(w http.ResponseWriter, r *http.Request) {
	source, err := sourceParam(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	switch source {
	case activity.SourceGitHub:
		s.validateGitHub(w, r)
	case activity.SourceJira:
		s.validateJira(w, r)
	}
}

func (s *Server) validateGitHub(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: token is required", errMissingInput))
		return
	}

	client := github.NewClient(config.GitHubConfig{Token: req.Token})
	user, err := client.CurrentUser(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("token validation failed: %w", err))
		return
	}

	if _, err := s.cfg.Apply(config.Update{GitHub: &config.GitHubConfig{
		Token:    req.Token,
		Username: user.Login,
	}}); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"connected": true, "username": user.Login})
}

func (s *Server) validateJira(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Domain   string `json:"domain"`
		Email    string `json:"email"`
		APIToken string `json:"apiToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Domain == "" || req.Email == "" || req.APIToken == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: domain, email and apiToken are required", errMissingInput))
		return
	}

	client := jira.NewClient(config.JiraConfig{Domain: req.Domain, Email: req.Email, APIToken: req.APIToken})
	user, err := client.Myself(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("credential validation failed: %w", err))
		return
	}

	if _, err := s.cfg.Apply(config.Update{Jira: &config.JiraConfig{
		Domain:    req.Domain,
		Email:     req.Email,
		APIToken:  req.APIToken,
		AccountID: user.AccountID,
	}}); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"connected": true, "accountId": user.AccountID, "displayName": user.DisplayName})
}

func (s *Server) handleIntegrationDisconnect(w http.ResponseWriter, r *http.Request) {
	source, err := sourceParam(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	cfg, err := s.cfg.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	switch source {
	case activity.SourceGitHub:
		cfg.GitHub = config.GitHubConfig{}
	case activity.SourceJira:
		cfg.Jira = config.JiraConfig{}
	}
	if err := s.cfg.Save(cfg); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.rolling.Clear(source); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"connected": false})
}

func (s *Server) handleIntegrationActivity(w http.ResponseWriter, r *http.Request) {
	source, err := sourceParam(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	from, to, err := parseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	result, err := s.orch.ActivityForRange(source, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleIntegrationSync(w http.ResponseWriter, r *http.Request) {
	source, err := sourceParam(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	var req struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: invalid body", errMissingInput))
		return
	}
	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	cfg, err := s.cfg.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	p := s.providerFor(cfg, source)
	if p == nil || !p.Connected() {
		writeError(w, http.StatusUnauthorized, provider.ErrNotConnected)
		return
	}

	result, err := s.orch.SyncRange(r.Context(), p, from, to)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleIntegrationCache(w http.ResponseWriter, r *http.Request) {
	source, err := sourceParam(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	cached, err := s.rolling.Get(source)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		from, to, err := parseRange(fromStr, r.URL.Query().Get("to"))
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		start, _ := provider.DayWindow(from)
		_, end := provider.DayWindow(to)
		cached.Records = cached.InRange(start, end)
	}
	writeJSON(w, http.StatusOK, cached)
}

func (s *Server) handleGitHubOrgs(w http.ResponseWriter, r *http.Request) {
	client, err := s.githubClient()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	orgs, err := client.Orgs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, orgs)
}

func (s *Server) handleGitHubRepos(w http.ResponseWriter, r *http.Request) {
	client, err := s.githubClient()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	repos, err := client.Repos(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, repos)
}

func (s *Server) handleJiraProjects(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.cfg.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	client := jira.NewClient(cfg.Jira)
	if !client.Connected() {
		writeError(w, http.StatusUnauthorized, provider.ErrNotConnected)
		return
	}
	projects, err := client.Projects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) githubClient() (*github.Client, error) {
	cfg, err := s.cfg.Load()
	if err != nil {
		return nil, err
	}
	client := github.NewClient(cfg.GitHub)
	if !client.Connected() {
		return nil, provider.ErrNotConnected
	}
	return client, nil
}

func (s *Server) handleSummaryDaily(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	summary, err := s.reports.DailySummary(date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSummaryGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: invalid body", errMissingInput))
		return
	}
	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	summary, err := s.reports.BuildSummary(r.Context(), from, to, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSummaryHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.reports.History()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if history == nil {
		history = []string{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleNotesList(w http.ResponseWriter, r *http.Request) {
	list, err := s.notes.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []notes.Note{}
	}
	writeJSON(w, http.StatusOK, list)
}

type noteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *Server) handleNotesCreate(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Body == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: note body is required", errMissingInput))
		return
	}
	note, err := s.notes.Create(req.Title, req.Body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (s *Server) handleNotesUpdate(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Body == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: note body is required", errMissingInput))
		return
	}
	note, err := s.notes.Update(chi.URLParam(r, "id"), req.Title, req.Body)
	if err != nil {
		if errors.Is(err, notes.ErrNotFound) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleNotesDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.notes.Delete(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, notes.ErrNotFound) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleConfigGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.cfg.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg.Masked())
}

func (s *Server) handleConfigPut(w http.ResponseWriter, r *http.Request) {
	var update config.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: invalid body", errMissingInput))
		return
	}
	cfg, err := s.cfg.Apply(update)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg.Masked())
}
