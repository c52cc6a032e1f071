// Package dagforge turns source-to-target table mappings into scheduled
// pipeline code.
//
// Dagforge reads table metadata from source catalogs, normalizes it into
// column mappings, renders code templates against those mappings and
// synthesizes target DDL.
//
// Basic usage:
//
//	client, err := dagforge.New(
//	    dagforge.WithSQLite(".dagforge/dagforge.db"),
//	    dagforge.WithOutputDir("./dags"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	created, err := client.Mappings.Create(ctx, service.CreateMappingsParams{
//	    SourceConnID: src.ID(),
//	    TargetConnID: dst.ID(),
//	    Tables:       []string{"HR.EMPLOYEES"},
//	})
//
//	result, err := client.Generation.Generate(ctx, service.GenerateParams{
//	    TemplateID: tpl.ID(),
//	    MappingIDs: ids,
//	    Schedule:   "@daily",
//	})
package dagforge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/helixml/dagforge/application/service"
	"github.com/helixml/dagforge/domain/mapping"
	"github.com/helixml/dagforge/infrastructure/introspect"
	"github.com/helixml/dagforge/infrastructure/output"
	"github.com/helixml/dagforge/infrastructure/persistence"
	"github.com/helixml/dagforge/internal/config"
	"github.com/helixml/dagforge/internal/database"
)

// Client is the main entry point for the dagforge library.
//
// Access resources via struct fields:
//
//	client.Connections.Find(ctx)
//	client.Mappings.PreviewSQL(ctx, ids)
//	client.Generation.Generate(ctx, params)
type Client struct {
	Connections *service.Connections
	Mappings    *service.Mappings
	Templates   *service.Templates
	NamingRules *service.NamingRules
	Generation  *service.Generation
	Artifacts   *service.Artifacts
	Bundles     *service.Bundles

	db     database.Database
	output output.Dir
	logger *slog.Logger
	closed atomic.Bool
	mu     sync.Mutex
}

// New creates a new Client with the given options. It opens and migrates
// the metadata database and prepares the output directory.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.database == databaseUnset {
		return nil, ErrNoDatabase
	}

	logger := cfg.logger
	if logger == nil {
		logger = config.DefaultLogger()
	}

	dataDir, err := config.PrepareDataDir(cfg.dataDir)
	if err != nil {
		return nil, err
	}

	outputDir := cfg.outputDir
	if outputDir == "" {
		outputDir = config.DefaultOutputDir(dataDir)
	}
	out, err := output.NewDir(outputDir)
	if err != nil {
		return nil, err
	}
	if err := out.Ensure(); err != nil {
		return nil, err
	}

	dbURL, err := buildDatabaseURL(cfg)
	if err != nil {
		return nil, fmt.Errorf("build database url: %w", err)
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	if err := persistence.ValidateSchema(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("validate schema: %w", err), errClose)
	}

	connStore := persistence.NewConnectionStore(db)
	mappingStore := persistence.NewMappingStore(db)
	templateStore := persistence.NewTemplateStore(db)
	namingStore := persistence.NewNamingRuleStore(db)
	artifactStore := persistence.NewArtifactStore(db)

	var introspector mapping.Introspector = cfg.introspector
	if introspector == nil {
		introspector = introspect.NewRouter(introspect.WithTimeout(cfg.introspectTimeout))
	}

	client := &Client{
		db:     db,
		output: out,
		logger: logger,
	}

	client.Connections = service.NewConnections(connStore, introspector, logger)
	client.Mappings = service.NewMappings(mappingStore, connStore, introspector, logger,
		service.WithParallelism(cfg.introspectParallelism),
		service.WithDDLSchema(cfg.ddlSchema),
		service.WithMappingsClock(cfg.now),
	)
	client.Templates = service.NewTemplates(templateStore, logger)
	client.NamingRules = service.NewNamingRules(namingStore, logger)
	client.Generation = service.NewGeneration(templateStore, mappingStore, connStore, namingStore, artifactStore, out, logger,
		service.WithExtension(cfg.artifactExtension),
		service.WithGenerationClock(cfg.now),
	)
	client.Artifacts = service.NewArtifacts(artifactStore, out, logger)
	client.Bundles = service.NewBundles(templateStore, connStore, namingStore, logger)

	logger.Info("dagforge client ready",
		slog.String("output_dir", out.Root()),
		slog.String("ddl_schema", cfg.ddlSchema),
		slog.Int("introspect_parallelism", cfg.introspectParallelism),
	)
	return client, nil
}

// Close releases the database connection.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	c.logger.Info("dagforge client closed")
	return nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// OutputDir returns the absolute directory artifacts are written to.
func (c *Client) OutputDir() string {
	return c.output.Root()
}

// buildDatabaseURL constructs the database URL from configuration.
func buildDatabaseURL(cfg *clientConfig) (string, error) {
	switch cfg.database {
	case databaseSQLite:
		return "sqlite:///" + cfg.dbPath, nil
	case databasePostgres:
		return cfg.dbDSN, nil
	default:
		return "", ErrNoDatabase
	}
}
