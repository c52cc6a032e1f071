package dto

import (
	"time"

	"github.com/helixml/dagforge/infrastructure/api/jsonapi"
)

// MappingCreateRequest is the body of POST /mappings.
type MappingCreateRequest struct {
	SourceConnID int64    `json:"source_conn_id"`
	TargetConnID int64    `json:"target_conn_id"`
	Tables       []string `json:"tables"`
}

// MappingAttributes are the fields of a mapping.
type MappingAttributes struct {
	Name            string    `json:"name"`
	SourceConnID    int64     `json:"source_conn_id"`
	TargetConnID    int64     `json:"target_conn_id"`
	SourceTable     string    `json:"source_table"`
	TargetTable     string    `json:"target_table"`
	SourceTableDesc string    `json:"source_table_desc"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// MappingData is a mapping resource.
type MappingData struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Attributes MappingAttributes `json:"attributes"`
}

// MappingResponse is a mapping with its ordered columns.
type MappingResponse struct {
	Data    MappingData `json:"data"`
	Columns []Column    `json:"columns"`
}

// MappingListResponse is a page of mappings.
type MappingListResponse struct {
	Data  []MappingData  `json:"data"`
	Meta  *jsonapi.Meta  `json:"meta,omitempty"`
	Links *jsonapi.Links `json:"links,omitempty"`
}

// MappingCreated reports one mapping produced by POST /mappings. Warning is
// set when the source catalog could not be read and a placeholder column
// was stored.
type MappingCreated struct {
	MappingData
	Columns      []Column `json:"columns"`
	Warning      string   `json:"warning,omitempty"`
	Untranslated []string `json:"untranslated_types,omitempty"`
}

// MappingCreateResponse lists the mappings created by one request.
type MappingCreateResponse struct {
	Data []MappingCreated `json:"data"`
}

// Column is one column of a mapping. ID is zero for new columns in update
// requests.
type Column struct {
	ID                    int64  `json:"id,omitempty"`
	SourceColumn          string `json:"source_column"`
	SourceType            string `json:"source_type"`
	TargetColumn          string `json:"target_column"`
	TargetType            string `json:"target_type"`
	Order                 int    `json:"column_order"`
	IsPK                  bool   `json:"is_pk"`
	IsNullable            bool   `json:"is_nullable"`
	IsPartition           bool   `json:"is_partition"`
	LogicalName           string `json:"logical_name"`
	SourceComment         string `json:"source_comment"`
	TransRule             string `json:"trans_rule"`
	IsExtractionCondition bool   `json:"is_extraction_condition"`
}

// ColumnsUpdateRequest is the full column set of PUT /mappings/{id}/columns.
type ColumnsUpdateRequest struct {
	Columns []Column `json:"columns"`
}

// ColumnListResponse lists a mapping's columns.
type ColumnListResponse struct {
	Data []Column `json:"data"`
}

// IDsRequest selects resources by ID.
type IDsRequest struct {
	IDs []int64 `json:"ids"`
}

// BulkFailure is an ID a bulk operation could not process.
type BulkFailure struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

// BulkDeleteResponse reports a bulk delete.
type BulkDeleteResponse struct {
	Deleted  []int64       `json:"deleted"`
	Failures []BulkFailure `json:"failures"`
}

// Preview is the extraction SQL of one mapping.
type Preview struct {
	MappingID   int64  `json:"mapping_id"`
	MappingName string `json:"mapping_name"`
	SourceSQL   string `json:"source_sql"`
}

// PreviewResponse lists extraction SQL in request order.
type PreviewResponse struct {
	Data []Preview `json:"data"`
}

// DDL is the target table DDL of one mapping.
type DDL struct {
	MappingID int64  `json:"mapping_id"`
	Statement string `json:"ddl"`
}

// DDLResponse wraps a DDL statement.
type DDLResponse struct {
	Data DDL `json:"data"`
}
