package config

import (
	"fmt"

	"github.com/gitfudge0/werkday/internal/store"
)

// MaskedSecret is the placeholder returned in place of stored secrets.
// Writing it back leaves the underlying secret unchanged.
const MaskedSecret = "***"

const blobKey = "config"

type Config struct {
	GitHub      GitHubConfig      `json:"github"`
	Jira        JiraConfig        `json:"jira"`
	LLM         LLMConfig         `json:"llm"`
	Preferences PreferencesConfig `json:"preferences"`
}

type GitHubConfig struct {
	Token         string   `json:"token,omitempty"`
	Username      string   `json:"username,omitempty"`
	SelectedOrgs  []string `json:"selectedOrgs,omitempty"`
	SelectedRepos []string `json:"selectedRepos,omitempty"`
}

type JiraConfig struct {
	Domain           string   `json:"domain,omitempty"`
	Email            string   `json:"email,omitempty"`
	APIToken         string   `json:"apiToken,omitempty"`
	AccountID        string   `json:"accountId,omitempty"`
	SelectedProjects []string `json:"selectedProjects,omitempty"`
}

type LLMConfig struct {
	APIKey string `json:"apiKey,omitempty"`
	Model  string `json:"model,omitempty"`
}

type PreferencesConfig struct {
	Timezone  string `json:"timezone,omitempty"`
	WeekStart string `json:"weekStart,omitempty"`
}

// Update carries a partial config write. Nil sections are untouched; within a
// provided section, zero-valued fields are untouched and masked secrets are
// treated as "no change".
type Update struct {
	GitHub      *GitHubConfig      `json:"github,omitempty"`
	Jira        *JiraConfig        `json:"jira,omitempty"`
	LLM         *LLMConfig         `json:"llm,omitempty"`
	Preferences *PreferencesConfig `json:"preferences,omitempty"`
}

// Store reads and writes the config blob.
type Store struct {
	blobs *store.Store
}

func NewStore(blobs *store.Store) *Store {
	return &Store{blobs: blobs}
}

// Load returns the stored config, or an empty one if none exists.
func (s *Store) Load() (*Config, error) {
	cfg := &Config{}
	if _, err := s.blobs.Read(blobKey, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// Apply merges an update into the stored config, one level deep per section,
// and persists the result. Updating github.token must not clobber
// github.selectedRepos unless the update provides it.
func (s *Store) Apply(update Update) (*Config, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}

	if update.GitHub != nil {
		mergeGitHub(&cfg.GitHub, update.GitHub)
	}
	if update.Jira != nil {
		mergeJira(&cfg.Jira, update.Jira)
	}
	if update.LLM != nil {
		mergeLLM(&cfg.LLM, update.LLM)
	}
	if update.Preferences != nil {
		mergePreferences(&cfg.Preferences, update.Preferences)
	}

	if err := s.blobs.Write(blobKey, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	return cfg, nil
}

// Save persists cfg as-is, replacing the stored config.
func (s *Store) Save(cfg *Config) error {
	if err := s.blobs.Write(blobKey, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Masked returns a display copy of cfg with non-empty secrets replaced by the
// placeholder. The stored config is never mutated.
func (c *Config) Masked() *Config {
	out := *c
	if out.GitHub.Token != "" {
		out.GitHub.Token = MaskedSecret
	}
	if out.Jira.APIToken != "" {
		out.Jira.APIToken = MaskedSecret
	}
	if out.LLM.APIKey != "" {
		out.LLM.APIKey = MaskedSecret
	}
	return &out
}

func mergeGitHub(dst, src *GitHubConfig) {
	if src.Token != "" && src.Token != MaskedSecret {
		dst.Token = src.Token
	}
	if src.Username != "" {
		dst.Username = src.Username
	}
	if src.SelectedOrgs != nil {
		dst.SelectedOrgs = src.SelectedOrgs
	}
	if src.SelectedRepos != nil {
		dst.SelectedRepos = src.SelectedRepos
	}
}

func mergeJira(dst, src *JiraConfig) {
	if src.Domain != "" {
		dst.Domain = src.Domain
	}
	if src.Email != "" {
		dst.Email = src.Email
	}
	if src.APIToken != "" && src.APIToken != MaskedSecret {
		dst.APIToken = src.APIToken
	}
	if src.AccountID != "" {
		dst.AccountID = src.AccountID
	}
	if src.SelectedProjects != nil {
		dst.SelectedProjects = src.SelectedProjects
	}
}

func mergeLLM(dst, src *LLMConfig) {
	if src.APIKey != "" && src.APIKey != MaskedSecret {
		dst.APIKey = src.APIKey
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
}

func mergePreferences(dst, src *PreferencesConfig) {
	if src.Timezone != "" {
		dst.Timezone = src.Timezone
	}
	if src.WeekStart != "" {
		dst.WeekStart = src.WeekStart
	}
}
