package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/analysis"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/api"
)

var servePort int

// serveCmd exposes the calculator over HTTP
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the JSON API:

  GET  /health
  POST /api/v1/metrics
  POST /api/v1/analysis

The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	advisor, err := buildAdvisor(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := api.NewServer(analysis.New(advisor, logger), cfg.Server, logger)
	return srv.ListenAndServe(ctx)
}
