package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long:  "View configuration for the GitHub and Jira integrations and the LLM.",
	}

	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configPathCmd())

	return cmd
}

func configShowCmd() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current configuration with secrets masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			wa, err := newApp(dataDir)
			if err != nil {
				return err
			}

			cfg, err := wa.cfg.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			masked := cfg.Masked()

			fmt.Println("Current Configuration:")
			fmt.Printf("\nGitHub:")
			fmt.Printf("\n  Username: %s", orUnset(masked.GitHub.Username))
			fmt.Printf("\n  Token: %s", orUnset(masked.GitHub.Token))

			fmt.Printf("\n\nJira:")
			fmt.Printf("\n  Domain: %s", orUnset(masked.Jira.Domain))
			fmt.Printf("\n  Email: %s", orUnset(masked.Jira.Email))
			fmt.Printf("\n  Token: %s", orUnset(masked.Jira.APIToken))

			fmt.Printf("\n\nLLM:")
			fmt.Printf("\n  Model: %s", orUnset(masked.LLM.Model))
			fmt.Printf("\n  API Key: %s", orUnset(masked.LLM.APIKey))
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Data directory (defaults to the user config dir)")

	return cmd
}

func configPathCmd() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  "Display the path to the configuration file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			wa, err := newApp(dataDir)
			if err != nil {
				return err
			}

			fmt.Printf("Configuration file: %s\n", filepath.Join(wa.dataDir, "config.json"))
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Data directory (defaults to the user config dir)")

	return cmd
}

func orUnset(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}
