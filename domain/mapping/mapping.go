// Package mapping derives column-level mappings from source table metadata
// and renders the extraction query for them.
package mapping

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a Mapping.
type Status string

// Mapping lifecycle states.
const (
	StatusDraft     Status = "Draft"
	StatusGenerated Status = "Generated"
)

// Mapping pairs a source table with a target table. It owns an ordered set
// of Columns which are stored separately.
type Mapping struct {
	id              int64
	sourceConnID    int64
	targetConnID    int64
	sourceTable     string
	targetTable     string
	sourceTableDesc string
	status          Status
	createdAt       time.Time
}

// NewMapping creates a Draft mapping. The target table is the last dotted
// part of sourceTable, lowercased.
func NewMapping(sourceConnID, targetConnID int64, sourceTable, sourceTableDesc string) Mapping {
	return Mapping{
		sourceConnID:    sourceConnID,
		targetConnID:    targetConnID,
		sourceTable:     sourceTable,
		targetTable:     TargetTableName(sourceTable),
		sourceTableDesc: sourceTableDesc,
		status:          StatusDraft,
		createdAt:       time.Now(),
	}
}

// ReconstructMapping recreates a Mapping from persistence.
func ReconstructMapping(
	id, sourceConnID, targetConnID int64,
	sourceTable, targetTable, sourceTableDesc string,
	status Status,
	createdAt time.Time,
) Mapping {
	return Mapping{
		id:              id,
		sourceConnID:    sourceConnID,
		targetConnID:    targetConnID,
		sourceTable:     sourceTable,
		targetTable:     targetTable,
		sourceTableDesc: sourceTableDesc,
		status:          status,
		createdAt:       createdAt,
	}
}

// ID returns the mapping ID.
func (m Mapping) ID() int64 { return m.id }

// SourceConnID returns the source connection ID.
func (m Mapping) SourceConnID() int64 { return m.sourceConnID }

// TargetConnID returns the target connection ID.
func (m Mapping) TargetConnID() int64 { return m.targetConnID }

// SourceTable returns the source table, optionally schema-qualified.
func (m Mapping) SourceTable() string { return m.sourceTable }

// TargetTable returns the lowercased target table name.
func (m Mapping) TargetTable() string { return m.targetTable }

// SourceTableDesc returns the source table comment.
func (m Mapping) SourceTableDesc() string { return m.sourceTableDesc }

// Status returns the lifecycle state.
func (m Mapping) Status() Status { return m.status }

// CreatedAt returns the creation time.
func (m Mapping) CreatedAt() time.Time { return m.createdAt }

// Name returns a "source -> target" label.
func (m Mapping) Name() string { return m.sourceTable + " -> " + m.targetTable }

// WithID returns a copy with the given ID.
func (m Mapping) WithID(id int64) Mapping {
	m.id = id
	return m
}

// MarkGenerated returns a copy in the Generated state.
func (m Mapping) MarkGenerated() Mapping {
	m.status = StatusGenerated
	return m
}

// TargetTableName derives the target table from a possibly qualified source.
func TargetTableName(sourceTable string) string {
	parts := strings.Split(sourceTable, ".")
	return strings.ToLower(parts[len(parts)-1])
}

// SourceRef is a catalog lookup key for a source table.
type SourceRef struct {
	Owner string
	Table string
}

// ParseSourceRef splits "owner.table" into upper-cased parts. An unqualified
// table belongs to defaultOwner.
func ParseSourceRef(sourceTable, defaultOwner string) SourceRef {
	parts := strings.Split(sourceTable, ".")
	if len(parts) == 2 {
		return SourceRef{Owner: strings.ToUpper(parts[0]), Table: strings.ToUpper(parts[1])}
	}
	return SourceRef{Owner: strings.ToUpper(defaultOwner), Table: strings.ToUpper(sourceTable)}
}

// Detail is a Mapping together with its Columns sorted by order.
type Detail struct {
	mapping Mapping
	columns []Column
}

// NewDetail pairs a mapping with its columns, sorting them by order.
func NewDetail(m Mapping, columns []Column) Detail {
	return Detail{mapping: m, columns: SortColumns(columns)}
}

// Mapping returns the mapping.
func (d Detail) Mapping() Mapping { return d.mapping }

// Columns returns the ordered columns.
func (d Detail) Columns() []Column {
	result := make([]Column, len(d.columns))
	copy(result, d.columns)
	return result
}

// ExtractionSQL renders the extraction query for the mapping.
func (d Detail) ExtractionSQL() string {
	return ExtractionSQL(d.mapping.sourceTable, d.columns)
}
