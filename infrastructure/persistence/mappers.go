package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/helixml/dagforge/domain/artifact"
	"github.com/helixml/dagforge/domain/connection"
	"github.com/helixml/dagforge/domain/mapping"
	"github.com/helixml/dagforge/domain/naming"
	"github.com/helixml/dagforge/domain/template"
)

// ConnectionMapper maps between domain Connection and ConnectionModel.
type ConnectionMapper struct{}

// ToDomain converts a ConnectionModel to a domain Connection.
func (ConnectionMapper) ToDomain(e ConnectionModel) connection.Connection {
	return connection.ReconstructConnection(
		e.ID, e.Name, e.ConnType, e.Host, e.Port,
		e.Database, e.Username, e.Password, e.Status, e.CreatedAt,
	)
}

// ToModel converts a domain Connection to a ConnectionModel.
func (ConnectionMapper) ToModel(c connection.Connection) ConnectionModel {
	return ConnectionModel{
		ID:        c.ID(),
		Name:      c.Name(),
		ConnType:  c.Kind(),
		Host:      c.Host(),
		Port:      c.Port(),
		Database:  c.Database(),
		Username:  c.Username(),
		Password:  c.Password(),
		Status:    c.Status(),
		CreatedAt: c.CreatedAt(),
	}
}

// MappingMapper maps between domain Mapping and MappingModel.
type MappingMapper struct{}

// ToDomain converts a MappingModel to a domain Mapping.
func (MappingMapper) ToDomain(e MappingModel) mapping.Mapping {
	return mapping.ReconstructMapping(
		e.ID, e.SourceConnID, e.TargetConnID,
		e.SourceTable, e.TargetTable, e.SourceTableDesc,
		mapping.Status(e.Status), e.CreatedAt,
	)
}

// ToModel converts a domain Mapping to a MappingModel.
func (MappingMapper) ToModel(m mapping.Mapping) MappingModel {
	return MappingModel{
		ID:              m.ID(),
		SourceConnID:    m.SourceConnID(),
		TargetConnID:    m.TargetConnID(),
		SourceTable:     m.SourceTable(),
		TargetTable:     m.TargetTable(),
		SourceTableDesc: m.SourceTableDesc(),
		Status:          string(m.Status()),
		CreatedAt:       m.CreatedAt(),
	}
}

// ColumnMapper maps between domain Column and MappingColumnModel.
type ColumnMapper struct{}

// ToDomain converts a MappingColumnModel to a domain Column.
func (ColumnMapper) ToDomain(e MappingColumnModel) mapping.Column {
	return mapping.ReconstructColumn(
		e.ID, e.MappingID,
		e.SourceColumn, e.SourceType, e.TargetColumn, e.TargetType,
		e.ColumnOrder,
		e.IsPK, e.IsNullable, e.IsPartition,
		e.TargetLogicalName, e.SourceColumnDesc, e.TransRule,
		e.IsExtractionCondition,
	)
}

// ToModel converts a domain Column to a MappingColumnModel.
func (ColumnMapper) ToModel(c mapping.Column) MappingColumnModel {
	return MappingColumnModel{
		ID:                    c.ID(),
		MappingID:             c.MappingID(),
		SourceColumn:          c.SourceColumn(),
		SourceType:            c.SourceType(),
		IsPK:                  c.IsPK(),
		IsNullable:            c.IsNullable(),
		ColumnOrder:           c.Order(),
		TargetColumn:          c.TargetColumn(),
		TargetType:            c.TargetType(),
		TargetLogicalName:     c.LogicalName(),
		SourceColumnDesc:      c.SourceComment(),
		IsExtractionCondition: c.IsExtractionCondition(),
		IsPartition:           c.IsPartition(),
		TransRule:             c.TransRule(),
	}
}

// TemplateMapper maps between domain Template and TemplateModel.
type TemplateMapper struct{}

// ToDomain converts a TemplateModel to a domain Template.
func (TemplateMapper) ToDomain(e TemplateModel) template.Template {
	return template.ReconstructTemplate(e.ID, e.Name, e.SourceType, e.TargetType, e.Comment, e.Code, e.CreatedAt)
}

// ToModel converts a domain Template to a TemplateModel.
func (TemplateMapper) ToModel(t template.Template) TemplateModel {
	return TemplateModel{
		ID:         t.ID(),
		Name:       t.Name(),
		SourceType: t.SourceType(),
		TargetType: t.TargetType(),
		Comment:    t.Comment(),
		Code:       t.Body(),
		CreatedAt:  t.CreatedAt(),
	}
}

// ArtifactMapper maps between domain Artifact and ArtifactModel.
type ArtifactMapper struct{}

// ToDomain converts an ArtifactModel to a domain Artifact.
func (ArtifactMapper) ToDomain(e ArtifactModel) artifact.Artifact {
	return artifact.ReconstructArtifact(
		e.ID, e.Filename, e.Filepath,
		derefID(e.TemplateID), derefID(e.MappingID),
		artifact.Status(e.Status), e.ErrorMessage, e.CreatedAt,
	)
}

// ToModel converts a domain Artifact to an ArtifactModel.
func (ArtifactMapper) ToModel(a artifact.Artifact) ArtifactModel {
	return ArtifactModel{
		ID:           a.ID(),
		Filename:     a.Filename(),
		Filepath:     a.Filepath(),
		TemplateID:   refID(a.TemplateID()),
		MappingID:    refID(a.MappingID()),
		Status:       string(a.Status()),
		ErrorMessage: a.ErrorMessage(),
		CreatedAt:    a.CreatedAt(),
	}
}

func refID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

// tokenJSON is the stored form of a naming token.
type tokenJSON struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

func encodeTokens(tokens []naming.Token) (string, error) {
	stored := make([]tokenJSON, len(tokens))
	for i, t := range tokens {
		stored[i] = tokenJSON{Type: string(t.Kind()), Value: t.Value()}
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode naming tokens: %w", err)
	}
	return string(b), nil
}

func decodeTokens(raw string) ([]naming.Token, error) {
	if raw == "" {
		return nil, nil
	}
	var stored []tokenJSON
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("decode naming tokens: %w", err)
	}
	tokens := make([]naming.Token, len(stored))
	for i, s := range stored {
		tokens[i] = naming.NewToken(naming.Kind(s.Type), s.Value)
	}
	return tokens, nil
}
