package main

import (
	"fmt"
	"log/slog"

	"github.com/helixml/dagforge"
	"github.com/helixml/dagforge/internal/log"
	"github.com/helixml/dagforge/internal/mcp"
	"github.com/spf13/cobra"
)

func stdioCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

Assistants can list mappings and templates, preview extraction SQL and
target DDL, and generate DAG files. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStdio(*envFile)
		},
	}
}

func runStdio(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	logger := log.NewLogger(cfg)
	logger.Info("starting MCP server",
		slog.String("version", version),
		slog.String("data_dir", cfg.DataDir()),
	)

	client, err := dagforge.New(clientOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("create dagforge client: %w", err)
	}
	defer closeClient(client)

	mcpServer := mcp.NewServer(client.Mappings, client.Templates, client.Generation, client.Artifacts, version, logger)
	return mcpServer.ServeStdio()
}
