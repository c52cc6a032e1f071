package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/helixml/dagforge/domain/artifact"
	"github.com/helixml/dagforge/domain/connection"
	"github.com/helixml/dagforge/domain/mapping"
	"github.com/helixml/dagforge/domain/naming"
	"github.com/helixml/dagforge/domain/repository"
	"github.com/helixml/dagforge/domain/template"
)

// DefaultArtifactExtension is appended to generated file names.
const DefaultArtifactExtension = ".py"

// unknownConnection names a connection that no longer exists.
const unknownConnection = "Unknown"

// ArtifactFiles stores generated files. Write must never replace an
// existing file.
type ArtifactFiles interface {
	Write(name string, content []byte) (string, error)
	Read(path string) ([]byte, error)
	Exists(path string) bool
	Remove(path string) error
}

// GenerateParams configures a generation batch.
type GenerateParams struct {
	TemplateID int64
	MappingIDs []int64
	Prefix     string
	Schedule   string
	Catchup    bool
}

// GenerationOption configures the Generation service.
type GenerationOption func(*Generation)

// WithExtension sets the generated file extension.
func WithExtension(ext string) GenerationOption {
	return func(s *Generation) {
		if ext != "" {
			s.extension = ext
		}
	}
}

// WithGenerationClock sets the clock used for name timestamps.
func WithGenerationClock(now func() time.Time) GenerationOption {
	return func(s *Generation) { s.now = now }
}

// Generation renders templates against mappings and records the outcome.
type Generation struct {
	templates   template.Store
	mappings    mapping.Store
	connections connection.Store
	naming      naming.Store
	artifacts   artifact.Store
	files       ArtifactFiles
	extension   string
	now         func() time.Time
	logger      *slog.Logger
}

// NewGeneration creates a new Generation service.
func NewGeneration(
	templates template.Store,
	mappings mapping.Store,
	connections connection.Store,
	namingStore naming.Store,
	artifacts artifact.Store,
	files ArtifactFiles,
	logger *slog.Logger,
	opts ...GenerationOption,
) *Generation {
	s := &Generation{
		templates:   templates,
		mappings:    mappings,
		connections: connections,
		naming:      namingStore,
		artifacts:   artifacts,
		files:       files,
		extension:   DefaultArtifactExtension,
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// job is everything the write phase needs for one mapping, read up front.
type job struct {
	mapping    mapping.Mapping
	sourceSQL  string
	sourceConn string
	targetConn string
}

// Generate renders the template for every known mapping in order. All reads
// complete before the first file is written. A failing mapping is recorded
// as an Error artifact and never stops the batch; only invalid input or a
// missing template fails the whole call. Once writing starts, cancelling ctx
// no longer affects the batch: every item is written and recorded.
func (s *Generation) Generate(ctx context.Context, params GenerateParams) (artifact.BatchResult, error) {
	if params.TemplateID == 0 || len(params.MappingIDs) == 0 {
		return artifact.BatchResult{}, invalid("template ID and mapping IDs are required")
	}
	schedule, err := template.ParseSchedule(params.Schedule)
	if err != nil {
		return artifact.BatchResult{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	tpl, err := s.templates.FindOne(ctx, repository.WithID(params.TemplateID))
	if err != nil {
		return artifact.BatchResult{}, fmt.Errorf("get template: %w", err)
	}
	rule := s.activeRule(ctx)
	jobs, err := s.read(ctx, params.MappingIDs)
	if err != nil {
		return artifact.BatchResult{}, err
	}

	writeCtx := context.WithoutCancel(ctx)
	result := artifact.BatchResult{Items: make([]artifact.Item, 0, len(jobs))}
	for _, j := range jobs {
		item := s.generate(writeCtx, tpl, rule, j, params, schedule)
		result.Items = append(result.Items, item)
	}

	s.logger.Info("generation finished",
		slog.Int64("template_id", tpl.ID()),
		slog.Int("requested", len(params.MappingIDs)),
		slog.Int("succeeded", result.Succeeded()),
		slog.Int("failed", result.Failed()),
	)
	return result, nil
}

// activeRule returns the rule to apply, or nil when there is none or it
// cannot be loaded. Names then fall back to the default pattern.
func (s *Generation) activeRule(ctx context.Context) *naming.Rule {
	rule, err := s.naming.Active(ctx)
	if errors.Is(err, naming.ErrRuleNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Warn("naming rule unusable, using default names", slog.String("error", err.Error()))
		return nil
	}
	return &rule
}

func (s *Generation) read(ctx context.Context, ids []int64) ([]job, error) {
	details, err := s.mappings.Details(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load mappings: %w", err)
	}

	connIDs := make([]int64, 0, len(details)*2)
	for _, d := range details {
		connIDs = append(connIDs, d.Mapping().SourceConnID(), d.Mapping().TargetConnID())
	}
	names := map[int64]string{}
	if len(connIDs) > 0 {
		conns, err := s.connections.Find(ctx, repository.WithIDIn(connIDs))
		if err != nil {
			return nil, fmt.Errorf("load connections: %w", err)
		}
		for _, c := range conns {
			names[c.ID()] = c.Name()
		}
	}
	connName := func(id int64) string {
		if n, ok := names[id]; ok {
			return n
		}
		return unknownConnection
	}

	jobs := make([]job, len(details))
	for i, d := range details {
		jobs[i] = job{
			mapping:    d.Mapping(),
			sourceSQL:  d.ExtractionSQL(),
			sourceConn: connName(d.Mapping().SourceConnID()),
			targetConn: connName(d.Mapping().TargetConnID()),
		}
	}
	return jobs, nil
}

func (s *Generation) generate(
	ctx context.Context,
	tpl template.Template,
	rule *naming.Rule,
	j job,
	params GenerateParams,
	schedule template.ScheduleExpr,
) artifact.Item {
	m := j.mapping
	item := artifact.Item{MappingID: m.ID(), Phase: artifact.PhasePending}

	resolution := naming.Resolve(rule, naming.Context{
		SourceTable:    m.SourceTable(),
		TargetTable:    m.TargetTable(),
		SourceConnName: j.sourceConn,
		TargetConnName: j.targetConn,
		Timestamp:      naming.Timestamp(s.now()),
	}, params.Prefix)
	item.Name = resolution.Name()
	if cause := resolution.Cause(); cause != nil {
		s.logger.Warn("naming rule failed, using default name",
			slog.Int64("mapping_id", m.ID()),
			slog.String("error", cause.Error()),
		)
	}

	body := template.Render(tpl.Body(), template.Bindings{
		SourceSQL:   j.sourceSQL,
		SourceTable: m.SourceTable(),
		TargetTable: m.TargetTable(),
		SourceConn:  j.sourceConn,
		TargetConn:  j.targetConn,
		DagName:     item.Name,
		Schedule:    schedule,
		Catchup:     params.Catchup,
	}.Values())

	filename := item.Name + s.extension
	path, err := s.files.Write(filename, []byte(body))
	if err != nil {
		return s.fail(ctx, item, tpl.ID(), fmt.Errorf("write %s: %w", filename, err))
	}
	item.Phase = artifact.PhaseWritten

	recorded, err := s.artifacts.Save(ctx, artifact.NewGenerated(tpl.ID(), m.ID(), filename, path))
	if err != nil {
		if rmErr := s.files.Remove(path); rmErr != nil {
			s.logger.Error("failed to remove unrecorded file", slog.String("path", path), slog.String("error", rmErr.Error()))
		}
		return s.fail(ctx, item, tpl.ID(), fmt.Errorf("record %s: %w", filename, err))
	}
	item.Artifact = recorded
	item.Phase = artifact.PhaseRecorded

	if m.Status() != mapping.StatusGenerated {
		if _, err := s.mappings.Save(ctx, m.MarkGenerated()); err != nil {
			s.logger.Warn("failed to mark mapping generated",
				slog.Int64("mapping_id", m.ID()),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Debug("artifact generated",
		slog.Int64("mapping_id", m.ID()),
		slog.String("file", filename),
	)
	return item
}

func (s *Generation) fail(ctx context.Context, item artifact.Item, templateID int64, cause error) artifact.Item {
	item.Phase = artifact.PhaseFailed
	item.Err = cause
	item.Artifact = artifact.NewFailed(templateID, item.MappingID, cause)

	recorded, err := s.artifacts.Save(ctx, item.Artifact)
	if err != nil {
		s.logger.Error("failed to record generation error",
			slog.Int64("mapping_id", item.MappingID),
			slog.String("error", err.Error()),
		)
	} else {
		item.Artifact = recorded
	}

	s.logger.Warn("generation failed",
		slog.Int64("mapping_id", item.MappingID),
		slog.String("error", cause.Error()),
	)
	return item
}
