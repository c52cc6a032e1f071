package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/helixml/dagforge/domain/repository"
	"github.com/helixml/dagforge/domain/template"
)

// TemplateParams is the editable content of a template.
type TemplateParams struct {
	Name       string
	SourceType string
	TargetType string
	Comment    string
	Code       string
}

// Templates manages code templates.
// Embeds Collection for Find/Get.
type Templates struct {
	repository.Collection[template.Template]
	store  template.Store
	logger *slog.Logger
}

// NewTemplates creates a new Templates service.
func NewTemplates(store template.Store, logger *slog.Logger) *Templates {
	return &Templates{
		Collection: repository.NewCollection[template.Template](store),
		store:      store,
		logger:     logger,
	}
}

// List returns all templates, newest first.
func (s *Templates) List(ctx context.Context) ([]template.Template, error) {
	return s.store.Find(ctx, repository.WithOrderDesc("created_at"), repository.WithOrderDesc("id"))
}

// Create validates and stores a template.
func (s *Templates) Create(ctx context.Context, params TemplateParams) (template.Template, error) {
	t := template.NewTemplate(params.Name, params.SourceType, params.TargetType, params.Comment, params.Code)
	if err := validateTemplate(t); err != nil {
		return template.Template{}, err
	}
	saved, err := s.store.Save(ctx, t)
	if err != nil {
		return template.Template{}, fmt.Errorf("save template: %w", err)
	}
	s.logger.Info("template created",
		slog.Int64("template_id", saved.ID()),
		slog.String("name", saved.Name()),
		slog.Int("placeholders", len(saved.Placeholders())),
	)
	return saved, nil
}

// Update replaces a template's content.
func (s *Templates) Update(ctx context.Context, id int64, params TemplateParams) (template.Template, error) {
	existing, err := s.store.FindOne(ctx, repository.WithID(id))
	if err != nil {
		return template.Template{}, fmt.Errorf("get template: %w", err)
	}
	t := existing.WithContent(params.Name, params.SourceType, params.TargetType, params.Comment, params.Code)
	if err := validateTemplate(t); err != nil {
		return template.Template{}, err
	}
	saved, err := s.store.Save(ctx, t)
	if err != nil {
		return template.Template{}, fmt.Errorf("save template: %w", err)
	}
	s.logger.Info("template updated", slog.Int64("template_id", id))
	return saved, nil
}

// Delete removes a template. Artifacts generated from it are kept.
func (s *Templates) Delete(ctx context.Context, id int64) error {
	t, err := s.store.FindOne(ctx, repository.WithID(id))
	if err != nil {
		return fmt.Errorf("get template: %w", err)
	}
	if err := s.store.Delete(ctx, t); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	s.logger.Info("template deleted", slog.Int64("template_id", id))
	return nil
}

func validateTemplate(t template.Template) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}
