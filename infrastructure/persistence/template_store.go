package persistence

import (
	"context"
	"fmt"

	"github.com/helixml/dagforge/domain/template"
	"github.com/helixml/dagforge/internal/database"
	"gorm.io/gorm"
)

// TemplateStore implements template.Store using GORM.
type TemplateStore struct {
	database.Repository[template.Template, TemplateModel]
}

// NewTemplateStore creates a new TemplateStore.
func NewTemplateStore(db database.Database) TemplateStore {
	return TemplateStore{
		Repository: database.NewRepository[template.Template, TemplateModel](db, TemplateMapper{}, "template"),
	}
}

// Save creates or updates a template.
func (s TemplateStore) Save(ctx context.Context, t template.Template) (template.Template, error) {
	model := s.Mapper().ToModel(t)

	var result *gorm.DB
	if t.ID() == 0 {
		result = s.DB(ctx).Create(&model)
	} else {
		result = s.DB(ctx).Save(&model)
	}
	if result.Error != nil {
		return template.Template{}, fmt.Errorf("save template: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// Delete removes a template. Artifacts keep their template_id.
func (s TemplateStore) Delete(ctx context.Context, t template.Template) error {
	model := s.Mapper().ToModel(t)
	if err := s.DB(ctx).Delete(&model).Error; err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}
