package dto

import (
	"time"

	"github.com/helixml/dagforge/infrastructure/api/jsonapi"
)

// GenerateRequest is the body of POST /artifacts/generate.
type GenerateRequest struct {
	TemplateID int64   `json:"template_id"`
	MappingIDs []int64 `json:"mapping_ids"`
	Prefix     string  `json:"prefix"`
	Schedule   string  `json:"schedule"`
	Catchup    bool    `json:"catchup"`
}

// GenerateItem is the outcome of one mapping in a batch.
type GenerateItem struct {
	MappingID  int64  `json:"mapping_id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	ArtifactID int64  `json:"artifact_id,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Error      string `json:"error,omitempty"`
}

// GenerateResponse summarizes a generation batch.
type GenerateResponse struct {
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Files     []string       `json:"files"`
	Items     []GenerateItem `json:"items"`
}

// ArtifactAttributes are the fields of an artifact record.
type ArtifactAttributes struct {
	Filename     string    `json:"filename"`
	Filepath     string    `json:"filepath"`
	TemplateID   int64     `json:"template_id"`
	MappingID    int64     `json:"mapping_id"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ArtifactData is an artifact resource.
type ArtifactData struct {
	Type       string             `json:"type"`
	ID         string             `json:"id"`
	Attributes ArtifactAttributes `json:"attributes"`
}

// ArtifactResponse is a single artifact.
type ArtifactResponse struct {
	Data ArtifactData `json:"data"`
}

// ArtifactListResponse is a page of artifacts, newest first.
type ArtifactListResponse struct {
	Data  []ArtifactData `json:"data"`
	Meta  *jsonapi.Meta  `json:"meta,omitempty"`
	Links *jsonapi.Links `json:"links,omitempty"`
}

// ArtifactCode is the content of a generated file.
type ArtifactCode struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Code     string `json:"code"`
}

// ArtifactCodeResponse wraps ArtifactCode.
type ArtifactCodeResponse struct {
	Data ArtifactCode `json:"data"`
}

// ImportResponse counts what a bundle import stored.
type ImportResponse struct {
	TemplatesCreated   int  `json:"templates_created"`
	TemplatesUpdated   int  `json:"templates_updated"`
	ConnectionsCreated int  `json:"connections_created"`
	ConnectionsSkipped int  `json:"connections_skipped"`
	NamingRuleSaved    bool `json:"naming_rule_saved"`
}
