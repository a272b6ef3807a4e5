package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/killallgit/persona-api/api"
	"github.com/killallgit/persona-api/api/types"
	"github.com/killallgit/persona-api/internal/services/ingestion"
	"github.com/killallgit/persona-api/internal/services/workers"
	"github.com/killallgit/persona-api/pkg/config"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the Persona API server with the configured settings.

The server accepts ingestion requests, runs them on the background worker
pool and answers job status and search queries.

Example:
  persona-api serve
  persona-api serve --port 9090
  persona-api serve --host 0.0.0.0 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server flags
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Use config values if flags not provided
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	// Start background workers
	pool := workers.NewWorkerPool(a.jobs, cfg.Jobs.Workers, cfg.Jobs.PollInterval)
	pool.RegisterProcessor(ingestion.NewProcessor(a.orchestrator))

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	if err := pool.Start(workerCtx); err != nil {
		return fmt.Errorf("starting worker pool: %w", err)
	}

	if cfg.Environment == "production" || cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := api.NewServer(cfg.Server, cfg.Security)
	server.SetDependencies(&types.Dependencies{
		DB:         a.db,
		KVStore:    a.kv,
		JobService: a.jobs,
		Ingestion:  a.orchestrator,
		Search:     a.search,
		Creators:   a.creators,
		Chunks:     a.documents,
		WorkerPool: pool,
		Version:    Version,
	})
	if err := server.Initialize(); err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}

	// Channel to receive server errors
	serverErr := make(chan error, 1)

	go func() {
		log.Printf("[INFO] Persona API listening on %s", server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	var runErr error
	select {
	case <-ctx.Done():
		log.Printf("[INFO] Shutting down server...")
	case runErr = <-serverErr:
		log.Printf("[ERROR] %v", runErr)
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] Server forced to shutdown: %v", err)
		if runErr == nil {
			runErr = err
		}
	}

	// Running jobs see their context cancelled and fail with a system error
	cancelWorkers()
	pool.Stop()

	log.Printf("[INFO] Server gracefully stopped")
	return runErr
}
