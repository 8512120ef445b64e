package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitfudge0/werkday/internal/output"
)

func SumCmd() *cobra.Command {
	var date string
	var to string
	var compact bool
	var narrate bool
	var outputFormat string
	var dataDir string

	cmd := &cobra.Command{
		Use:   "sum",
		Short: "Summarize your synced work activity",
		Long:  "Build a summary for a date or range from already-synced activity and notes. Reads local data only; run 'sync' first to pull fresh activity.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputFormat != "text" && outputFormat != "json" {
				return fmt.Errorf("invalid output format: %s (must be 'text' or 'json')", outputFormat)
			}

			wa, err := newApp(dataDir)
			if err != nil {
				return err
			}

			fromDate, err := parseDate(date)
			if err != nil {
				return fmt.Errorf("invalid date format: %w", err)
			}
			toDate := fromDate
			if to != "" {
				toDate, err = parseDate(to)
				if err != nil {
					return fmt.Errorf("invalid to date: %w", err)
				}
			}

			summary, err := wa.reports.BuildSummary(cmd.Context(), fromDate, toDate, narrate)
			if err != nil {
				return fmt.Errorf("failed to build summary: %w", err)
			}

			formatter := output.NewFormatter()
			switch outputFormat {
			case "json":
				fmt.Print(formatter.FormatJSON(summary))
			case "text":
				if compact {
					fmt.Print(formatter.FormatCompactSummary(summary))
				} else {
					fmt.Print(formatter.FormatSummary(summary))
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "today", "Date to summarize (today, yesterday, or YYYY-MM-DD)")
	cmd.Flags().StringVarP(&to, "to", "t", "", "End date for a range (defaults to the start date)")
	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "Use compact output format (text mode only)")
	cmd.Flags().BoolVarP(&narrate, "narrate", "n", false, "Generate an LLM narrative (requires a configured model key)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format: 'text' or 'json'")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Data directory (defaults to the user config dir)")

	return cmd
}
