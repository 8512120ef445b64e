package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/gitfudge0/werkday/internal/activity"
	"github.com/gitfudge0/werkday/internal/cache"
	"github.com/gitfudge0/werkday/internal/common"
	"github.com/gitfudge0/werkday/internal/config"
	"github.com/gitfudge0/werkday/internal/notes"
	"github.com/gitfudge0/werkday/internal/provider"
	"github.com/gitfudge0/werkday/internal/provider/github"
	"github.com/gitfudge0/werkday/internal/provider/jira"
	"github.com/gitfudge0/werkday/internal/report"
	"github.com/gitfudge0/werkday/internal/store"
	"github.com/gitfudge0/werkday/internal/sync"
)

// Server exposes the sync, summary, notes and config operations as a JSON
// API for the browser UI. All work runs synchronously inside the request;
// there are no background jobs.
type Server struct {
	router  chi.Router
	blobs   *store.Store
	cfg     *config.Store
	orch    *sync.Orchestrator
	rolling *cache.RollingStore
	notes   *notes.Store
	reports *report.Builder

	// providerFor is swapped in tests to avoid real upstream calls.
	providerFor func(cfg *config.Config, source activity.Source) provider.Provider
}

func NewServer(dataDir string) *Server {
	blobs := store.New(dataDir)
	daily := cache.NewDailyStore(blobs)
	rolling := cache.NewRollingStore(blobs)
	cfgStore := config.NewStore(blobs)
	noteStore := notes.NewStore(blobs)
	orch := sync.NewOrchestrator(daily, rolling)

	srv := &Server{
		router:      chi.NewRouter(),
		blobs:       blobs,
		cfg:         cfgStore,
		orch:        orch,
		rolling:     rolling,
		notes:       noteStore,
		reports:     report.NewBuilder(orch, noteStore, blobs, cfgStore),
		providerFor: defaultProviderFor,
	}
	srv.routes()
	return srv
}

func defaultProviderFor(cfg *config.Config, source activity.Source) provider.Provider {
	switch source {
	case activity.SourceGitHub:
		return github.NewClient(cfg.GitHub)
	case activity.SourceJira:
		return jira.NewClient(cfg.Jira)
	}
	return nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/integrations/{integration}", func(r chi.Router) {
			r.Get("/status", s.handleIntegrationStatus)
			r.Post("/validate", s.handleIntegrationValidate)
			r.Post("/disconnect", s.handleIntegrationDisconnect)
			r.Get("/activity", s.handleIntegrationActivity)
			r.Post("/sync", s.handleIntegrationSync)
			r.Get("/cache", s.handleIntegrationCache)
		})
		r.Get("/integrations/github/orgs", s.handleGitHubOrgs)
		r.Get("/integrations/github/repos", s.handleGitHubRepos)
		r.Get("/integrations/jira/projects", s.handleJiraProjects)

		r.Get("/summary/daily", s.handleSummaryDaily)
		r.Post("/summary/generate", s.handleSummaryGenerate)
		r.Get("/summary/history", s.handleSummaryHistory)

		r.Get("/notes", s.handleNotesList)
		r.Post("/notes", s.handleNotesCreate)
		r.Put("/notes/{id}", s.handleNotesUpdate)
		r.Delete("/notes/{id}", s.handleNotesDelete)

		r.Get("/config", s.handleConfigGet)
		r.Put("/config", s.handleConfigPut)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps the error taxonomy onto HTTP statuses: missing input is
// 400, missing credentials 401, everything upstream or internal 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errMissingInput):
		return http.StatusBadRequest
	case errors.Is(err, provider.ErrNotConnected):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
