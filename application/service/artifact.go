package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/helixml/dagforge/domain/artifact"
	"github.com/helixml/dagforge/domain/repository"
)

// Artifacts manages generated artifact records and their files.
// Embeds Collection for Find/Get.
type Artifacts struct {
	repository.Collection[artifact.Artifact]
	store  artifact.Store
	files  ArtifactFiles
	logger *slog.Logger
}

// NewArtifacts creates a new Artifacts service.
func NewArtifacts(store artifact.Store, files ArtifactFiles, logger *slog.Logger) *Artifacts {
	return &Artifacts{
		Collection: repository.NewCollection[artifact.Artifact](store),
		store:      store,
		files:      files,
		logger:     logger,
	}
}

// List returns artifact records, newest first unless options order them.
func (s *Artifacts) List(ctx context.Context, options ...repository.Option) ([]artifact.Artifact, error) {
	if len(repository.Build(options...).Orders()) == 0 {
		options = append(options, repository.WithOrderDesc("created_at"), repository.WithOrderDesc("id"))
	}
	return s.store.Find(ctx, options...)
}

// Code returns an artifact together with the content of its file. Error
// records and files missing on disk both yield ErrNoFile.
func (s *Artifacts) Code(ctx context.Context, id int64) (artifact.Artifact, []byte, error) {
	a, err := s.store.FindOne(ctx, repository.WithID(id))
	if err != nil {
		return artifact.Artifact{}, nil, fmt.Errorf("get artifact: %w", err)
	}
	if !a.HasFile() {
		return a, nil, fmt.Errorf("artifact %d: %w", id, ErrNoFile)
	}
	content, err := s.files.Read(a.Filepath())
	if errors.Is(err, fs.ErrNotExist) {
		return a, nil, fmt.Errorf("artifact %d: %w", id, ErrNoFile)
	}
	if err != nil {
		return a, nil, fmt.Errorf("read artifact %d: %w", id, err)
	}
	return a, content, nil
}

// Delete removes an artifact's file if present, then its record.
func (s *Artifacts) Delete(ctx context.Context, id int64) error {
	a, err := s.store.FindOne(ctx, repository.WithID(id))
	if err != nil {
		return fmt.Errorf("get artifact: %w", err)
	}
	if a.HasFile() {
		if err := s.files.Remove(a.Filepath()); err != nil {
			return fmt.Errorf("remove artifact file: %w", err)
		}
	}
	if err := s.store.Delete(ctx, a); err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}
	s.logger.Info("artifact deleted",
		slog.Int64("artifact_id", id),
		slog.String("file", a.Filename()),
	)
	return nil
}

// BulkDelete deletes each artifact independently and reports which IDs
// failed.
func (s *Artifacts) BulkDelete(ctx context.Context, ids []int64) (BulkDeleteResult, error) {
	if len(ids) == 0 {
		return BulkDeleteResult{}, invalid("no artifact IDs given")
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
