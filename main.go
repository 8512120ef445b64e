package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gitfudge0/werkday/cmd"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "werkday",
		Short: "Track and summarize your daily work activity",
		Long:  "Werkday syncs your activity from GitHub and Jira, keeps it locally day by day, and builds daily summaries with optional LLM narratives.",
	}

	rootCmd.AddCommand(cmd.ServeCmd())
	rootCmd.AddCommand(cmd.SyncCmd())
	rootCmd.AddCommand(cmd.SumCmd())
	rootCmd.AddCommand(cmd.ConfigCmd())

	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}
