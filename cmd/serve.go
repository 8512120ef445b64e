package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/gitfudge0/werkday/internal/api"
	"github.com/gitfudge0/werkday/internal/common"
	"github.com/gitfudge0/werkday/internal/store"
)

func ServeCmd() *cobra.Command {
	var port int
	var dataDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  "Serve the JSON API for integrations, activity sync, summaries, and notes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataDir == "" {
				dir, err := store.DefaultDir()
				if err != nil {
					return fmt.Errorf("failed to resolve data directory: %w", err)
				}
				dataDir = dir
			}

			srv := api.NewServer(dataDir)
			addr := fmt.Sprintf(":%d", port)

			common.Logger().Info("server listening", "addr", addr, "dataDir", dataDir)
			return http.ListenAndServe(addr, srv.Handler())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8088, "Port to listen on")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Data directory (defaults to the user config dir)")

	return cmd
}
