package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/shortscore/internal/api"
	"github.com/wonny/shortscore/internal/api/handlers"
	"github.com/wonny/shortscore/internal/contracts"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Start the REST API server.

Endpoints:
  GET  /health                                  - Health check
  GET  /api/short-interest/{symbol}?days=10     - Composite score
  GET  /api/short-interest?symbols=A,B&days=10  - Ranked scores
  GET  /api/short-interest/{symbol}/history     - Stored snapshots (needs DATABASE_URL)
  GET  /api/short-volume/{symbol}?days=10       - Short volume series
  GET  /api/short-volume/daily/{YYYYMMDD}       - One day's file

Example:
  go run ./cmd/shortscore api
  go run ./cmd/shortscore api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default: PORT env or 8089)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	var history contracts.ScoreRepository
	var health api.HealthChecker
	if a.repo != nil {
		history = a.repo
		health = a.db
	}

	h := handlers.NewShortInterestHandler(a.service, history, a.log)
	router := api.NewRouter(h, health, a.log)
	server := api.New(a.cfg, a.log, router)

	fmt.Fprintf(cmd.OutOrStdout(), "\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	if err := server.Run(ctx); err != nil && err != context.Canceled {
		return err
	}

	a.log.Info("Server stopped")
	return nil
}
