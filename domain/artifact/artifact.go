// Package artifact records the outcome of generating code from a template
// for one mapping.
package artifact

import (
	"context"
	"time"

	"github.com/helixml/dagforge/domain/repository"
)

// Status is the recorded outcome of a generation attempt.
type Status string

// Generation outcomes.
const (
	StatusGenerated Status = "Generated"
	StatusError     Status = "Error"
)

// ErrorSentinel is stored as filename and filepath of failed attempts.
const ErrorSentinel = "Error"

// Artifact is an immutable record of one generation attempt. Template and
// mapping references are non-owning and may dangle after those are deleted.
type Artifact struct {
	id           int64
	filename     string
	filepath     string
	templateID   int64
	mappingID    int64
	status       Status
	errorMessage string
	createdAt    time.Time
}

// NewGenerated records a successfully written file.
func NewGenerated(templateID, mappingID int64, filename, filepath string) Artifact {
	return Artifact{
		filename:   filename,
		filepath:   filepath,
		templateID: templateID,
		mappingID:  mappingID,
		status:     StatusGenerated,
		createdAt:  time.Now(),
	}
}

// NewFailed records a failed attempt.
func NewFailed(templateID, mappingID int64, cause error) Artifact {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return Artifact{
		filename:     ErrorSentinel,
		filepath:     ErrorSentinel,
		templateID:   templateID,
		mappingID:    mappingID,
		status:       StatusError,
		errorMessage: msg,
		createdAt:    time.Now(),
	}
}

// ReconstructArtifact recreates an Artifact from persistence.
func ReconstructArtifact(
	id int64,
	filename, filepath string,
	templateID, mappingID int64,
	status Status,
	errorMessage string,
	createdAt time.Time,
) Artifact {
	return Artifact{
		id:           id,
		filename:     filename,
		filepath:     filepath,
		templateID:   templateID,
		mappingID:    mappingID,
		status:       status,
		errorMessage: errorMessage,
		createdAt:    createdAt,
	}
}

// ID returns the artifact ID.
func (a Artifact) ID() int64 { return a.id }

// Filename returns the file base name, or ErrorSentinel.
func (a Artifact) Filename() string { return a.filename }

// Filepath returns the full file path, or ErrorSentinel.
func (a Artifact) Filepath() string { return a.filepath }

// TemplateID returns the template used; 0 when unknown.
func (a Artifact) TemplateID() int64 { return a.templateID }

// MappingID returns the mapping used; 0 when unknown.
func (a Artifact) MappingID() int64 { return a.mappingID }

// Status returns the outcome.
func (a Artifact) Status() Status { return a.status }

// ErrorMessage returns the failure message of an Error artifact.
func (a Artifact) ErrorMessage() string { return a.errorMessage }

// CreatedAt returns the creation time.
func (a Artifact) CreatedAt() time.Time { return a.createdAt }

// Failed reports whether the attempt failed.
func (a Artifact) Failed() bool { return a.status == StatusError }

// HasFile reports whether a generated file is expected on disk.
func (a Artifact) HasFile() bool {
	return a.status == StatusGenerated && a.filepath != "" && a.filepath != ErrorSentinel
}

// WithID returns a copy with the given ID.
func (a Artifact) WithID(id int64) Artifact {
	a.id = id
	return a
}

// Store persists artifacts. Records are only inserted and deleted.
type Store interface {
	repository.Store[Artifact]
	DeleteBy(ctx context.Context, options ...repository.Option) error
}

// WithMappingID filters by the "mapping_id" column.
func WithMappingID(id int64) repository.Option {
	return repository.WithCondition("mapping_id", id)
}

// WithTemplateID filters by the "template_id" column.
func WithTemplateID(id int64) repository.Option {
	return repository.WithCondition("template_id", id)
}

// WithStatus filters by the "status" column.
func WithStatus(s Status) repository.Option {
	return repository.WithCondition("status", string(s))
}
