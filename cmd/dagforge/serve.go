package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/helixml/dagforge"
	"github.com/helixml/dagforge/infrastructure/api"
	apimiddleware "github.com/helixml/dagforge/infrastructure/api/middleware"
	"github.com/helixml/dagforge/internal/config"
	"github.com/helixml/dagforge/internal/log"
	"github.com/spf13/cobra"
)

// shutdownGrace is how long in-flight requests get to finish on SIGINT or
// SIGTERM.
const shutdownGrace = 60 * time.Second

func serveCmd(envFile *string) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                     Server host to bind to (default: 0.0.0.0)
  PORT                     Server port to listen on (default: 8080)
  DATA_DIR                 Data directory (default: ~/.dagforge)
  DB_URL                   Metadata database URL (default: sqlite:///{data_dir}/dagforge.db)
  OUTPUT_DIR               Generated DAG directory (default: {data_dir}/dags_output)
  ARTIFACT_EXTENSION       Generated file extension (default: .py)
  DDL_SCHEMA               Schema for generated CREATE TABLE statements (default: public)
  INTROSPECT_PARALLELISM   Concurrent table introspection (default: 4)
  INTROSPECT_TIMEOUT       Introspection timeout in seconds (default: 30)
  REQUEST_TIMEOUT          API request deadline in seconds, 0 disables;
                           generation batches are exempt (default: 120)
  CORS_ORIGINS             Comma-separated list of allowed browser origins
  LOG_LEVEL                Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT               Log format: pretty, json (default: pretty)`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(*envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	logger := log.NewLogger(cfg)

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	logger.LogAttrs(context.Background(), slog.LevelInfo, "starting dagforge", attrs...)

	client, err := dagforge.New(clientOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("create dagforge client: %w", err)
	}
	defer closeClient(client)

	apiServer := api.NewAPIServer(client, cfg.CORSOrigins(), api.WithRequestTimeout(cfg.RequestTimeout()))
	router := apiServer.Router()

	// Middleware must be registered before MountRoutes.
	router.Use(apimiddleware.CorrelationID)
	router.Use(apimiddleware.Logging(logger))

	apiServer.MountRoutes()

	router.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"name":"dagforge","version":%q}`, version)
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	server := api.NewServer(cfg.Addr(), logger, api.WithTimeouts(api.Timeouts{Request: cfg.RequestTimeout()}))
	server.Router().Mount("/", router)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-sigChan
		logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	}()

	if err := server.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	<-shutdownDone
	return nil
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
