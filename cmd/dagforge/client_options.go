package main

import (
	"fmt"
	"log/slog"

	"github.com/helixml/dagforge"
	"github.com/helixml/dagforge/internal/config"
	"github.com/helixml/dagforge/internal/log"
)

// clientOptions returns the dagforge.Option slice derived from AppConfig.
func clientOptions(cfg config.AppConfig, logger *slog.Logger) []dagforge.Option {
	return []dagforge.Option{
		dagforge.WithDatabaseURL(cfg.DBURL()),
		dagforge.WithDataDir(cfg.DataDir()),
		dagforge.WithOutputDir(cfg.OutputDir()),
		dagforge.WithLogger(logger),
		dagforge.WithDDLSchema(cfg.DDLSchema()),
		dagforge.WithArtifactExtension(cfg.ArtifactExtension()),
		dagforge.WithIntrospectParallelism(cfg.IntrospectParallelism()),
		dagforge.WithIntrospectTimeout(cfg.IntrospectTimeout()),
	}
}

// openClient loads configuration and opens a client for one-shot commands.
// The caller closes the client.
func openClient(envFile string) (*dagforge.Client, config.AppConfig, error) {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return nil, config.AppConfig{}, err
	}
	logger := log.NewLogger(cfg)

	client, err := dagforge.New(clientOptions(cfg, logger)...)
	if err != nil {
		return nil, config.AppConfig{}, fmt.Errorf("create dagforge client: %w", err)
	}
	return client, cfg, nil
}

func closeClient(client *dagforge.Client) {
	if err := client.Close(); err != nil {
		client.Logger().Error("failed to close dagforge client", slog.Any("error", err))
	}
}
