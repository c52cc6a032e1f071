package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/helixml/dagforge/domain/connection"
	"github.com/helixml/dagforge/domain/ddl"
	"github.com/helixml/dagforge/domain/mapping"
	"github.com/helixml/dagforge/domain/repository"
	"golang.org/x/sync/errgroup"
)

// DefaultIntrospectParallelism bounds concurrent catalog reads during Create.
const DefaultIntrospectParallelism = 4

// CreateMappingsParams selects source tables to map between two connections.
type CreateMappingsParams struct {
	SourceConnID int64
	TargetConnID int64
	Tables       []string
}

// CreatedMapping is one mapping produced by Create.
type CreatedMapping struct {
	Detail mapping.Detail
	// Fallback is set when source metadata could not be read and the
	// placeholder column was stored instead.
	Fallback bool
	// Cause is the introspection error behind a fallback.
	Cause        error
	Untranslated []string
}

// ColumnParams is the full state of one column in an UpdateColumns call.
// ID is zero for new columns.
type ColumnParams struct {
	ID                    int64
	SourceColumn          string
	SourceType            string
	TargetColumn          string
	TargetType            string
	Order                 int
	IsPK                  bool
	IsNullable            bool
	IsPartition           bool
	LogicalName           string
	SourceComment         string
	TransRule             string
	IsExtractionCondition bool
}

// Preview is the extraction SQL of one mapping.
type Preview struct {
	MappingID   int64
	MappingName string
	SourceSQL   string
}

// BulkFailure is one ID a bulk operation could not process.
type BulkFailure struct {
	ID  int64
	Err error
}

// BulkDeleteResult reports a partially successful bulk delete.
type BulkDeleteResult struct {
	Deleted  []int64
	Failures []BulkFailure
}

// Partial reports whether some but not all IDs were deleted.
func (r BulkDeleteResult) Partial() bool {
	return len(r.Failures) > 0 && len(r.Deleted) > 0
}

// Err joins every failure, or returns nil.
func (r BulkDeleteResult) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = fmt.Errorf("id %d: %w", f.ID, f.Err)
	}
	return errors.Join(errs...)
}

// MappingsOption configures the Mappings service.
type MappingsOption func(*Mappings)

// WithParallelism bounds concurrent catalog reads.
func WithParallelism(n int) MappingsOption {
	return func(s *Mappings) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithDDLSchema sets the schema used in Postgres DDL.
func WithDDLSchema(schema string) MappingsOption {
	return func(s *Mappings) { s.ddlSchema = schema }
}

// WithMappingsClock sets the clock used for DDL headers.
func WithMappingsClock(now func() time.Time) MappingsOption {
	return func(s *Mappings) { s.now = now }
}

// Mappings manages table mappings and their columns.
// Embeds Collection for Find/Get.
type Mappings struct {
	repository.Collection[mapping.Mapping]
	store        mapping.Store
	connections  connection.Store
	introspector mapping.Introspector
	parallelism  int
	ddlSchema    string
	now          func() time.Time
	logger       *slog.Logger
}

// NewMappings creates a new Mappings service.
func NewMappings(
	store mapping.Store,
	connections connection.Store,
	introspector mapping.Introspector,
	logger *slog.Logger,
	opts ...MappingsOption,
) *Mappings {
	s := &Mappings{
		Collection:   repository.NewCollection[mapping.Mapping](store),
		store:        store,
		connections:  connections,
		introspector: introspector,
		parallelism:  DefaultIntrospectParallelism,
		ddlSchema:    ddl.DefaultSchema,
		now:          time.Now,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type described struct {
	meta mapping.TableMetadata
	err  error
}

// Create builds one mapping per selected table. Catalog reads run
// concurrently; a failed read stores the placeholder column instead of
// failing. Mappings are persisted in table order.
func (s *Mappings) Create(ctx context.Context, params CreateMappingsParams) ([]CreatedMapping, error) {
	if params.SourceConnID == 0 || params.TargetConnID == 0 || len(params.Tables) == 0 {
		return nil, invalid("source connection, target connection and tables are required")
	}
	for _, t := range params.Tables {
		if strings.TrimSpace(t) == "" {
			return nil, invalid("table names must not be empty")
		}
	}

	source, err := s.connections.FindOne(ctx, repository.WithID(params.SourceConnID))
	if err != nil {
		return nil, fmt.Errorf("get source connection: %w", err)
	}
	target, err := s.connections.FindOne(ctx, repository.WithID(params.TargetConnID))
	if err != nil {
		return nil, fmt.Errorf("get target connection: %w", err)
	}

	results := make([]described, len(params.Tables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i, table := range params.Tables {
		g.Go(func() error {
			meta, err := s.introspector.Describe(gctx, source, strings.TrimSpace(table))
			results[i] = described{meta: meta, err: err}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	created := make([]CreatedMapping, 0, len(params.Tables))
	for i, table := range params.Tables {
		table = strings.TrimSpace(table)
		res := results[i]
		raw := res.meta.Columns
		if res.err != nil {
			raw = nil
			s.logger.Warn("source metadata unavailable, using placeholder column",
				slog.String("table", table),
				slog.String("connection", source.Name()),
				slog.String("error", res.err.Error()),
			)
		}
		normalized := mapping.Normalize(raw, target.Dialect())

		detail, err := s.store.Create(ctx,
			mapping.NewMapping(source.ID(), target.ID(), table, res.meta.Comment),
			normalized.Columns(),
		)
		if err != nil {
			return created, fmt.Errorf("create mapping for %s: %w", table, err)
		}

		cause := res.err
		if cause == nil && normalized.Fallback() {
			cause = fmt.Errorf("no columns reported for %s", table)
		}
		created = append(created, CreatedMapping{
			Detail:       detail,
			Fallback:     normalized.Fallback(),
			Cause:        cause,
			Untranslated: normalized.Untranslated(),
		})

		s.logger.Info("mapping created",
			slog.Int64("mapping_id", detail.Mapping().ID()),
			slog.String("mapping", detail.Mapping().Name()),
			slog.Int("columns", len(detail.Columns())),
			slog.Bool("fallback", normalized.Fallback()),
			slog.Bool("audit_injected", normalized.AuditInjected()),
		)
	}
	return created, nil
}

// Detail returns a mapping with its ordered columns.
func (s *Mappings) Detail(ctx context.Context, id int64) (mapping.Detail, error) {
	d, err := s.store.Detail(ctx, id)
	if err != nil {
		return mapping.Detail{}, fmt.Errorf("get mapping: %w", err)
	}
	return d, nil
}

// Columns returns a mapping's columns ordered by column_order.
func (s *Mappings) Columns(ctx context.Context, id int64) ([]mapping.Column, error) {
	d, err := s.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	return d.Columns(), nil
}

// UpdateColumns replaces a mapping's column set: listed columns with an ID
// are updated, those without are created, and unlisted ones are removed.
func (s *Mappings) UpdateColumns(ctx context.Context, id int64, params []ColumnParams) ([]mapping.Column, error) {
	columns := make([]mapping.Column, len(params))
	for i, p := range params {
		if strings.TrimSpace(p.SourceColumn) == "" {
			return nil, invalid("column %d: source column is required", i+1)
		}
		columns[i] = mapping.ReconstructColumn(
			p.ID, id,
			p.SourceColumn, p.SourceType, p.TargetColumn, p.TargetType,
			p.Order,
			p.IsPK, p.IsNullable, p.IsPartition,
			p.LogicalName, p.SourceComment, p.TransRule,
			p.IsExtractionCondition,
		)
	}
	if err := mapping.ValidateColumns(columns); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	saved, err := s.store.ReplaceColumns(ctx, id, columns)
	if err != nil {
		return nil, fmt.Errorf("update columns: %w", err)
	}
	s.logger.Info("mapping columns updated",
		slog.Int64("mapping_id", id),
		slog.Int("columns", len(saved)),
	)
	return saved, nil
}

// Delete removes a mapping and its columns.
func (s *Mappings) Delete(ctx context.Context, id int64) error {
	m, err := s.store.FindOne(ctx, repository.WithID(id))
	if err != nil {
		return fmt.Errorf("get mapping: %w", err)
	}
	if err := s.store.Delete(ctx, m); err != nil {
		return fmt.Errorf("delete mapping: %w", err)
	}
	s.logger.Info("mapping deleted", slog.Int64("mapping_id", id))
	return nil
}

// BulkDelete deletes each mapping independently and reports which IDs failed.
func (s *Mappings) BulkDelete(ctx context.Context, ids []int64) (BulkDeleteResult, error) {
	if len(ids) == 0 {
		return BulkDeleteResult{}, invalid("no mapping IDs given")
	}
	var result BulkDeleteResult
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			result.Failures = append(result.Failures, BulkFailure{ID: id, Err: err})
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}
	return result, nil
}

// PreviewSQL returns the extraction SQL for each known mapping, in the order
// given. Unknown IDs are skipped.
func (s *Mappings) PreviewSQL(ctx context.Context, ids []int64) ([]Preview, error) {
	if len(ids) == 0 {
		return nil, invalid("mapping IDs are required")
	}
	details, err := s.store.Details(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load mappings: %w", err)
	}
	previews := make([]Preview, len(details))
	for i, d := range details {
		previews[i] = Preview{
			MappingID:   d.Mapping().ID(),
			MappingName: d.Mapping().Name(),
			SourceSQL:   d.ExtractionSQL(),
		}
	}
	return previews, nil
}

// DDL renders the target table of a mapping in its target connection's
// dialect.
func (s *Mappings) DDL(ctx context.Context, id int64) (string, error) {
	d, err := s.Detail(ctx, id)
	if err != nil {
		return "", err
	}
	target, err := s.connections.FindOne(ctx, repository.WithID(d.Mapping().TargetConnID()))
	if err != nil {
		return "", fmt.Errorf("get target connection: %w", err)
	}
	stmt, err := ddl.Synthesize(d.Mapping().TargetTable(), target.Dialect(), d.Columns(),
		ddl.WithSchema(s.ddlSchema),
		ddl.WithClock(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("generate DDL: %w", err)
	}
	return stmt, nil
}
