package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/helixml/dagforge/domain/connection"
	"github.com/helixml/dagforge/domain/naming"
	"github.com/helixml/dagforge/domain/repository"
	"github.com/helixml/dagforge/domain/template"
	"github.com/helixml/dagforge/infrastructure/bundle"
)

// ImportResult counts what an import created or replaced.
type ImportResult struct {
	TemplatesCreated   int
	TemplatesUpdated   int
	ConnectionsCreated int
	ConnectionsSkipped int
	NamingRuleSaved    bool
}

// Bundles exports and imports configuration as YAML bundles.
type Bundles struct {
	templates   template.Store
	connections connection.Store
	naming      naming.Store
	logger      *slog.Logger
}

// NewBundles creates a new Bundles service.
func NewBundles(templates template.Store, connections connection.Store, namingStore naming.Store, logger *slog.Logger) *Bundles {
	return &Bundles{templates: templates, connections: connections, naming: namingStore, logger: logger}
}

// Export collects templates, connections and the naming rule.
func (s *Bundles) Export(ctx context.Context) (bundle.Bundle, error) {
	templates, err := s.templates.Find(ctx, repository.WithOrderAsc("id"))
	if err != nil {
		return bundle.Bundle{}, fmt.Errorf("list templates: %w", err)
	}
	connections, err := s.connections.Find(ctx, repository.WithOrderAsc("id"))
	if err != nil {
		return bundle.Bundle{}, fmt.Errorf("list connections: %w", err)
	}
	var rule *naming.Rule
	active, err := s.naming.Active(ctx)
	switch {
	case err == nil:
		rule = &active
	case errors.Is(err, naming.ErrRuleNotFound):
	default:
		return bundle.Bundle{}, fmt.Errorf("get naming rule: %w", err)
	}
	return bundle.New(rule, templates, connections), nil
}

// Import stores a bundle. Templates replace existing templates of the same
// name; connections whose name already exists are skipped.
func (s *Bundles) Import(ctx context.Context, b bundle.Bundle) (ImportResult, error) {
	var result ImportResult

	rule, err := b.Rule()
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	templates := b.DomainTemplates()
	for _, t := range templates {
		if err := validateTemplate(t); err != nil {
			return result, err
		}
	}

	for _, t := range templates {
		existing, err := s.templates.Find(ctx, template.WithName(t.Name()))
		if err != nil {
			return result, fmt.Errorf("find template %s: %w", t.Name(), err)
		}
		if len(existing) > 0 {
			t = existing[0].WithContent(t.Name(), t.SourceType(), t.TargetType(), t.Comment(), t.Body())
			result.TemplatesUpdated++
		} else {
			result.TemplatesCreated++
		}
		if _, err := s.templates.Save(ctx, t); err != nil {
			return result, fmt.Errorf("save template %s: %w", t.Name(), err)
		}
	}

	for _, c := range b.DomainConnections() {
		exists, err := s.connections.Exists(ctx, connection.WithName(c.Name()))
		if err != nil {
			return result, fmt.Errorf("find connection %s: %w", c.Name(), err)
		}
		if exists {
			result.ConnectionsSkipped++
			continue
		}
		if _, err := s.connections.Save(ctx, c); err != nil {
			return result, fmt.Errorf("save connection %s: %w", c.Name(), err)
		}
		result.ConnectionsCreated++
	}

	if rule != nil {
		if _, err := s.naming.Save(ctx, *rule); err != nil {
			return result, fmt.Errorf("save naming rule: %w", err)
		}
		result.NamingRuleSaved = true
	}

	s.logger.Info("bundle imported",
		slog.Int("templates_created", result.TemplatesCreated),
		slog.Int("templates_updated", result.TemplatesUpdated),
		slog.Int("connections_created", result.ConnectionsCreated),
		slog.Int("connections_skipped", result.ConnectionsSkipped),
		slog.Bool("naming_rule", result.NamingRuleSaved),
	)
	return result, nil
}
