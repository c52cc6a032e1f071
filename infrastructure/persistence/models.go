package persistence

import "time"

// ConnectionModel represents a source or target database connection.
type ConnectionModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;size:100;not null;index"`
	ConnType  string    `gorm:"column:conn_type;size:50;not null"`
	Host      string    `gorm:"column:host;size:255"`
	Port      int       `gorm:"column:port"`
	Database  string    `gorm:"column:database;size:100"`
	Username  string    `gorm:"column:username;size:100"`
	Password  string    `gorm:"column:password;size:255"`
	Status    string    `gorm:"column:status;size:20;default:Inactive"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName returns the table name.
func (ConnectionModel) TableName() string { return "connections" }

// MappingModel represents a source-to-target table mapping.
type MappingModel struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"`
	SourceConnID    int64     `gorm:"column:source_conn_id;not null;index"`
	TargetConnID    int64     `gorm:"column:target_conn_id;not null;index"`
	SourceTable     string    `gorm:"column:source_table;size:255;not null"`
	TargetTable     string    `gorm:"column:target_table;size:255;not null"`
	SourceTableDesc string    `gorm:"column:source_table_desc;size:500"`
	Status          string    `gorm:"column:status;size:50;default:Draft;index"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

// TableName returns the table name.
func (MappingModel) TableName() string { return "mappings" }

// MappingColumnModel represents one column pairing. (mapping_id,
// column_order) is unique.
type MappingColumnModel struct {
	ID                    int64  `gorm:"primaryKey;autoIncrement"`
	MappingID             int64  `gorm:"column:mapping_id;not null;uniqueIndex:idx_mapping_column_order,priority:1"`
	SourceColumn          string `gorm:"column:source_column;size:255;not null"`
	SourceType            string `gorm:"column:source_type;size:50"`
	IsPK                  bool   `gorm:"column:is_pk;default:false"`
	IsNullable            bool   `gorm:"column:is_nullable"`
	ColumnOrder           int    `gorm:"column:column_order;uniqueIndex:idx_mapping_column_order,priority:2"`
	TargetColumn          string `gorm:"column:target_column;size:255"`
	TargetType            string `gorm:"column:target_type;size:50"`
	TargetLogicalName     string `gorm:"column:target_logical_name;size:255"`
	SourceColumnDesc      string `gorm:"column:source_column_desc;size:500"`
	IsExtractionCondition bool   `gorm:"column:is_extraction_condition;default:false"`
	IsPartition           bool   `gorm:"column:is_partition;default:false"`
	TransRule             string `gorm:"column:trans_rule;size:500"`
}

// TableName returns the table name.
func (MappingColumnModel) TableName() string { return "mapping_columns" }

// TemplateModel represents a code template.
type TemplateModel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	Name       string    `gorm:"column:name;size:100;not null"`
	SourceType string    `gorm:"column:source_type;size:50"`
	TargetType string    `gorm:"column:target_type;size:50"`
	Comment    string    `gorm:"column:comment;type:text"`
	Code       string    `gorm:"column:code;type:text;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;index"`
}

// TableName returns the table name.
func (TemplateModel) TableName() string { return "templates" }

// NamingRuleModel holds the single naming rule row. Tokens are a JSON array.
type NamingRuleModel struct {
	ID         int64     `gorm:"primaryKey"`
	RuleTokens string    `gorm:"column:rule_tokens;type:text;not null;default:'[]'"`
	Separator  string    `gorm:"column:separator;size:5;default:_"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (NamingRuleModel) TableName() string { return "naming_rules" }

// ArtifactModel records one generation attempt. Template and mapping IDs
// carry no foreign key so records survive deletion of either.
type ArtifactModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Filename     string    `gorm:"column:filename;size:255;not null"`
	Filepath     string    `gorm:"column:filepath;size:500;not null"`
	TemplateID   *int64    `gorm:"column:template_id;index"`
	MappingID    *int64    `gorm:"column:mapping_id;index"`
	Status       string    `gorm:"column:status;size:50;default:Generated;index"`
	ErrorMessage string    `gorm:"column:error_message;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at;index"`
}

// TableName returns the table name.
func (ArtifactModel) TableName() string { return "generated_artifacts" }
