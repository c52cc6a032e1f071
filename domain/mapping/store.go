package mapping

import (
	"context"

	"github.com/helixml/dagforge/domain/connection"
	"github.com/helixml/dagforge/domain/repository"
)

// Store persists mappings together with the columns they own. Delete
// removes a mapping's columns with it.
type Store interface {
	repository.Store[Mapping]

	// Create inserts a mapping and its columns atomically.
	Create(ctx context.Context, m Mapping, columns []Column) (Detail, error)

	// Detail loads one mapping with its ordered columns.
	Detail(ctx context.Context, id int64) (Detail, error)

	// Details loads several mappings with their columns inside one read
	// transaction that is finished before returning. Unknown IDs are skipped.
	Details(ctx context.Context, ids []int64) ([]Detail, error)

	// ReplaceColumns makes columns the mapping's full column set. Columns
	// with an ID are updated, columns without one are inserted, and stored
	// columns absent from the set are deleted.
	ReplaceColumns(ctx context.Context, mappingID int64, columns []Column) ([]Column, error)
}

// TableMetadata is what a source catalog reports about one table.
type TableMetadata struct {
	Comment string
	Columns []RawColumn
}

// Introspector reads table metadata from a source database catalog.
type Introspector interface {
	Describe(ctx context.Context, conn connection.Connection, sourceTable string) (TableMetadata, error)
	Tables(ctx context.Context, conn connection.Connection) ([]string, error)
}

// WithMappingID filters by the "mapping_id" column.
func WithMappingID(id int64) repository.Option {
	return repository.WithCondition("mapping_id", id)
}

// WithStatus filters by the "status" column.
func WithStatus(s Status) repository.Option {
	return repository.WithCondition("status", string(s))
}

// WithSourceConnID filters by the "source_conn_id" column.
func WithSourceConnID(id int64) repository.Option {
	return repository.WithCondition("source_conn_id", id)
}
