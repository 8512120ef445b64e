package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitfudge0/werkday/internal/activity"
	"github.com/gitfudge0/werkday/internal/provider"
	"github.com/gitfudge0/werkday/internal/provider/github"
	"github.com/gitfudge0/werkday/internal/provider/jira"
)

func SyncCmd() *cobra.Command {
	var source string
	var from string
	var to string
	var dataDir string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync activity from connected integrations",
		Long:  "Fetch activity for a date range from GitHub and Jira and store it day by day for later summaries.",
		RunE: func(cmd *cobra.Command, args []string) error {
			wa, err := newApp(dataDir)
			if err != nil {
				return err
			}

			fromDate, err := parseDate(from)
			if err != nil {
				return fmt.Errorf("invalid from date: %w", err)
			}
			toDate := fromDate
			if to != "" {
				toDate, err = parseDate(to)
				if err != nil {
					return fmt.Errorf("invalid to date: %w", err)
				}
			}

			cfg, err := wa.cfg.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			providers := map[activity.Source]provider.Provider{
				activity.SourceGitHub: github.NewClient(cfg.GitHub),
				activity.SourceJira:   jira.NewClient(cfg.Jira),
			}

			sources := []activity.Source{activity.SourceGitHub, activity.SourceJira}
			if source != "all" {
				src := activity.Source(source)
				if _, ok := providers[src]; !ok {
					return fmt.Errorf("unknown source: %s (must be 'github', 'jira', or 'all')", source)
				}
				sources = []activity.Source{src}
			}

			for _, src := range sources {
				p := providers[src]
				if !p.Connected() {
					fmt.Printf("✗ %s not connected, skipping\n", src)
					continue
				}

				result, err := wa.orch.SyncRange(cmd.Context(), p, fromDate, toDate)
				if err != nil {
					return fmt.Errorf("%s sync failed: %w", src, err)
				}
				fmt.Printf("✓ %s: %d activities for %s", src, result.Counts.Total, result.From)
				if result.From != result.To {
					fmt.Printf(" → %s", result.To)
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "all", "Source to sync: 'github', 'jira', or 'all'")
	cmd.Flags().StringVarP(&from, "from", "f", "today", "Start date (today, yesterday, or YYYY-MM-DD)")
	cmd.Flags().StringVarP(&to, "to", "t", "", "End date (defaults to the start date)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Data directory (defaults to the user config dir)")

	return cmd
}
