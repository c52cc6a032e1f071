// Package template holds reusable code templates and renders them by
// substituting a fixed vocabulary of placeholders.
package template

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/helixml/dagforge/domain/dialect"
	"github.com/helixml/dagforge/domain/repository"
)

// ErrInvalid indicates a template is missing required fields.
var ErrInvalid = errors.New("invalid template")

// Template is a named code template. The body is opaque text containing
// {{ placeholder }} spans.
type Template struct {
	id         int64
	name       string
	sourceType string
	targetType string
	comment    string
	body       string
	createdAt  time.Time
}

// NewTemplate creates a Template.
func NewTemplate(name, sourceType, targetType, comment, body string) Template {
	return Template{
		name:       name,
		sourceType: sourceType,
		targetType: targetType,
		comment:    comment,
		body:       body,
		createdAt:  time.Now(),
	}
}

// ReconstructTemplate recreates a Template from persistence.
func ReconstructTemplate(id int64, name, sourceType, targetType, comment, body string, createdAt time.Time) Template {
	return Template{
		id:         id,
		name:       name,
		sourceType: sourceType,
		targetType: targetType,
		comment:    comment,
		body:       body,
		createdAt:  createdAt,
	}
}

// ID returns the template ID.
func (t Template) ID() int64 { return t.id }

// Name returns the template name.
func (t Template) Name() string { return t.name }

// SourceType returns the source dialect tag.
func (t Template) SourceType() string { return t.sourceType }

// TargetType returns the target dialect tag.
func (t Template) TargetType() string { return t.targetType }

// SourceDialect returns the parsed source dialect.
func (t Template) SourceDialect() dialect.Dialect { return dialect.Parse(t.sourceType) }

// TargetDialect returns the parsed target dialect.
func (t Template) TargetDialect() dialect.Dialect { return dialect.Parse(t.targetType) }

// Comment returns the free-text comment.
func (t Template) Comment() string { return t.comment }

// Body returns the template text.
func (t Template) Body() string { return t.body }

// CreatedAt returns the creation time.
func (t Template) CreatedAt() time.Time { return t.createdAt }

// WithID returns a copy with the given ID.
func (t Template) WithID(id int64) Template {
	t.id = id
	return t
}

// WithContent returns a copy with every editable field replaced.
func (t Template) WithContent(name, sourceType, targetType, comment, body string) Template {
	t.name = name
	t.sourceType = sourceType
	t.targetType = targetType
	t.comment = comment
	t.body = body
	return t
}

// Validate checks that name and body are present.
func (t Template) Validate() error {
	var missing []string
	if strings.TrimSpace(t.name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(t.body) == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrInvalid, strings.Join(missing, " and "))
	}
	return nil
}

// Placeholders lists the known placeholders referenced by the body.
func (t Template) Placeholders() []Placeholder {
	seen := map[Placeholder]bool{}
	var result []Placeholder
	scan(t.body, func(inner string) (string, bool) {
		if p, ok := Canonical(inner); ok && !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
		return "", false
	})
	return result
}

// Store persists templates.
type Store interface {
	repository.Store[Template]
}

// WithName filters by the "name" column.
func WithName(name string) repository.Option {
	return repository.WithCondition("name", name)
}
