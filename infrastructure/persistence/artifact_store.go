package persistence

import (
	"context"
	"fmt"

	"github.com/helixml/dagforge/domain/artifact"
	"github.com/helixml/dagforge/internal/database"
	"gorm.io/gorm"
)

// ArtifactStore implements artifact.Store using GORM.
type ArtifactStore struct {
	database.Repository[artifact.Artifact, ArtifactModel]
}

// NewArtifactStore creates a new ArtifactStore.
func NewArtifactStore(db database.Database) ArtifactStore {
	return ArtifactStore{
		Repository: database.NewRepository[artifact.Artifact, ArtifactModel](db, ArtifactMapper{}, "artifact"),
	}
}

// Save creates or updates an artifact record.
func (s ArtifactStore) Save(ctx context.Context, a artifact.Artifact) (artifact.Artifact, error) {
	model := s.Mapper().ToModel(a)

	var result *gorm.DB
	if a.ID() == 0 {
		result = s.DB(ctx).Create(&model)
	} else {
		result = s.DB(ctx).Save(&model)
	}
	if result.Error != nil {
		return artifact.Artifact{}, fmt.Errorf("save artifact: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// Delete removes an artifact record.
func (s ArtifactStore) Delete(ctx context.Context, a artifact.Artifact) error {
	model := s.Mapper().ToModel(a)
	if err := s.DB(ctx).Delete(&model).Error; err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}
	return nil
}
