package cmd

import (
	"fmt"
	"time"

	"github.com/gitfudge0/werkday/internal/cache"
	"github.com/gitfudge0/werkday/internal/config"
	"github.com/gitfudge0/werkday/internal/notes"
	"github.com/gitfudge0/werkday/internal/report"
	"github.com/gitfudge0/werkday/internal/store"
	"github.com/gitfudge0/werkday/internal/sync"
)

// app holds the wired-up stores and services the commands share. Everything
// reads and writes under a single data directory.
type app struct {
	dataDir string
	blobs   *store.Store
	cfg     *config.Store
	daily   *cache.DailyStore
	rolling *cache.RollingStore
	orch    *sync.Orchestrator
	notes   *notes.Store
	reports *report.Builder
}

func newApp(dataDir string) (*app, error) {
	if dataDir == "" {
		dir, err := store.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve data directory: %w", err)
		}
		dataDir = dir
	}

	blobs := store.New(dataDir)
	cfg := config.NewStore(blobs)
	daily := cache.NewDailyStore(blobs)
	rolling := cache.NewRollingStore(blobs)
	orch := sync.NewOrchestrator(daily, rolling)
	noteStore := notes.NewStore(blobs)

	return &app{
		dataDir: dataDir,
		blobs:   blobs,
		cfg:     cfg,
		daily:   daily,
		rolling: rolling,
		orch:    orch,
		notes:   noteStore,
		reports: report.NewBuilder(orch, noteStore, blobs, cfg),
	}, nil
}

func parseDate(dateStr string) (time.Time, error) {
	now := time.Now()

	switch dateStr {
	case "today":
		return now, nil
	case "yesterday":
		return now.AddDate(0, 0, -1), nil
	default:
		return time.Parse("2006-01-02", dateStr)
	}
}
