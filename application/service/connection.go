package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/helixml/dagforge/domain/connection"
	"github.com/helixml/dagforge/domain/mapping"
	"github.com/helixml/dagforge/domain/repository"
)

// ConnectionParams configures a new connection.
type ConnectionParams struct {
	Name     string
	Type     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// Connections manages source and target database connections.
// Embeds Collection for Find/Get.
type Connections struct {
	repository.Collection[connection.Connection]
	store        connection.Store
	introspector mapping.Introspector
	logger       *slog.Logger
}

// NewConnections creates a new Connections service.
func NewConnections(store connection.Store, introspector mapping.Introspector, logger *slog.Logger) *Connections {
	return &Connections{
		Collection:   repository.NewCollection[connection.Connection](store),
		store:        store,
		introspector: introspector,
		logger:       logger,
	}
}

// Create validates and stores a connection.
func (s *Connections) Create(ctx context.Context, params ConnectionParams) (connection.Connection, error) {
	name := strings.TrimSpace(params.Name)
	kind := strings.ToLower(strings.TrimSpace(params.Type))
	if name == "" || kind == "" {
		return connection.Connection{}, invalid("connection name and type are required")
	}
	if params.Port < 0 {
		return connection.Connection{}, invalid("port must not be negative")
	}

	saved, err := s.store.Save(ctx, connection.NewConnection(
		name, kind, params.Host, params.Port, params.Database, params.Username, params.Password,
	))
	if err != nil {
		return connection.Connection{}, fmt.Errorf("save connection: %w", err)
	}

	s.logger.Info("connection created",
		slog.Int64("connection_id", saved.ID()),
		slog.String("name", saved.Name()),
		slog.String("type", saved.Kind()),
	)
	return saved, nil
}

// Delete removes a connection. Mappings referencing it keep their IDs and
// render the connection name as "Unknown".
func (s *Connections) Delete(ctx context.Context, id int64) error {
	conn, err := s.store.FindOne(ctx, repository.WithID(id))
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	if err := s.store.Delete(ctx, conn); err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	s.logger.Info("connection deleted", slog.Int64("connection_id", id))
	return nil
}

// Tables lists the source tables visible through a connection.
func (s *Connections) Tables(ctx context.Context, id int64) ([]string, error) {
	conn, err := s.store.FindOne(ctx, repository.WithID(id))
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}
	tables, err := s.introspector.Tables(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("list tables for %s: %w", conn.Name(), err)
	}
	return tables, nil
}
