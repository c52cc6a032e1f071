// Package mcp exposes mappings, templates and DAG generation as Model
// Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/helixml/dagforge/application/service"
	"github.com/helixml/dagforge/domain/artifact"
	"github.com/helixml/dagforge/domain/mapping"
	"github.com/helixml/dagforge/domain/repository"
	"github.com/helixml/dagforge/domain/template"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// listLimit caps list tool results.
const listLimit = 200

// MappingReader reads mappings and what can be derived from them.
type MappingReader interface {
	Find(ctx context.Context, options ...repository.Option) ([]mapping.Mapping, error)
	PreviewSQL(ctx context.Context, ids []int64) ([]service.Preview, error)
	DDL(ctx context.Context, id int64) (string, error)
}

// TemplateLister lists code templates.
type TemplateLister interface {
	List(ctx context.Context) ([]template.Template, error)
}

// Generator renders DAG files.
type Generator interface {
	Generate(ctx context.Context, params service.GenerateParams) (artifact.BatchResult, error)
}

// ArtifactReader loads generated code.
type ArtifactReader interface {
	Code(ctx context.Context, id int64) (artifact.Artifact, []byte, error)
}

// Server wraps the MCP server with dagforge tools.
type Server struct {
	mcpServer *server.MCPServer
	mappings  MappingReader
	templates TemplateLister
	generator Generator
	artifacts ArtifactReader
	logger    *slog.Logger
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(
	mappings MappingReader,
	templates TemplateLister,
	generator Generator,
	artifacts ArtifactReader,
	version string,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mappings:  mappings,
		templates: templates,
		generator: generator,
		artifacts: artifacts,
		logger:    logger,
	}

	mcpServer := server.NewMCPServer(
		"dagforge",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(mcp.NewTool("list_mappings",
		mcp.WithDescription("List table mappings, newest first"),
		mcp.WithNumber("source_conn_id",
			mcp.Description("Only mappings reading from this connection"),
		),
		mcp.WithString("status",
			mcp.Description("Only mappings in this status"),
			mcp.Enum(string(mapping.StatusDraft), string(mapping.StatusGenerated)),
		),
	), s.handleListMappings)

	mcpServer.AddTool(mcp.NewTool("preview_sql",
		mcp.WithDescription("Show the extraction SELECT built from each mapping's columns"),
		mcp.WithArray("mapping_ids",
			mcp.Required(),
			mcp.Description("Mapping IDs to preview"),
			mcp.Items(map[string]any{"type": "number"}),
		),
	), s.handlePreviewSQL)

	mcpServer.AddTool(mcp.NewTool("mapping_ddl",
		mcp.WithDescription("Show the CREATE TABLE statement for a mapping's target table"),
		mcp.WithNumber("mapping_id",
			mcp.Required(),
			mcp.Description("The mapping ID"),
		),
	), s.handleDDL)

	mcpServer.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List DAG code templates and the placeholders each one uses"),
	), s.handleListTemplates)

	mcpServer.AddTool(mcp.NewTool("generate_dags",
		mcp.WithDescription("Render a template for each mapping and write one DAG file per mapping"),
		mcp.WithNumber("template_id",
			mcp.Required(),
			mcp.Description("The template to render"),
		),
		mcp.WithArray("mapping_ids",
			mcp.Required(),
			mcp.Description("Mappings to generate DAGs for"),
			mcp.Items(map[string]any{"type": "number"}),
		),
		mcp.WithString("prefix",
			mcp.Description("Prefix for generated DAG names"),
		),
		mcp.WithString("schedule",
			mcp.Description("Cron expression or preset such as @daily"),
		),
		mcp.WithBoolean("catchup",
			mcp.Description("Enable Airflow catchup (default: false)"),
		),
	), s.handleGenerate)

	mcpServer.AddTool(mcp.NewTool("get_artifact_code",
		mcp.WithDescription("Return the code of a generated DAG file"),
		mcp.WithNumber("artifact_id",
			mcp.Required(),
			mcp.Description("The artifact ID"),
		),
	), s.handleArtifactCode)
}

func (s *Server) handleListMappings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := []repository.Option{
		repository.WithOrderDesc("created_at"),
		repository.WithOrderDesc("id"),
		repository.WithLimit(listLimit),
	}
	if id := request.GetInt("source_conn_id", 0); id > 0 {
		opts = append(opts, mapping.WithSourceConnID(int64(id)))
	}
	if status := request.GetString("status", ""); status != "" {
		opts = append(opts, mapping.WithStatus(mapping.Status(status)))
	}

	mappings, err := s.mappings.Find(ctx, opts...)
	if err != nil {
		s.logger.Error("list mappings failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("list mappings failed: %v", err)), nil
	}

	type mappingResult struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		SourceTable string `json:"source_table"`
		TargetTable string `json:"target_table"`
		Status      string `json:"status"`
	}

	results := make([]mappingResult, len(mappings))
	for i, m := range mappings {
		results[i] = mappingResult{
			ID:          m.ID(),
			Name:        m.Name(),
			SourceTable: m.SourceTable(),
			TargetTable: m.TargetTable(),
			Status:      string(m.Status()),
		}
	}
	return jsonResult(results)
}

func (s *Server) handlePreviewSQL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := requireIDs(request, "mapping_ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	previews, err := s.mappings.PreviewSQL(ctx, ids)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("preview failed: %v", err)), nil
	}

	type previewResult struct {
		MappingID int64  `json:"mapping_id"`
		Name      string `json:"name"`
		SQL       string `json:"sql"`
	}

	results := make([]previewResult, len(previews))
	for i, p := range previews {
		results[i] = previewResult{MappingID: p.MappingID, Name: p.MappingName, SQL: p.SourceSQL}
	}
	return jsonResult(results)
}

func (s *Server) handleDDL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("mapping_id")
	if err != nil || id <= 0 {
		return mcp.NewToolResultError("mapping_id is required"), nil
	}

	stmt, err := s.mappings.DDL(ctx, int64(id))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ddl failed: %v", err)), nil
	}
	return mcp.NewToolResultText(stmt), nil
}

func (s *Server) handleListTemplates(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates, err := s.templates.List(ctx)
	if err != nil {
		s.logger.Error("list templates failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("list templates failed: %v", err)), nil
	}

	type templateResult struct {
		ID           int64    `json:"id"`
		Name         string   `json:"name"`
		SourceType   string   `json:"source_type"`
		TargetType   string   `json:"target_type"`
		Placeholders []string `json:"placeholders"`
	}

	results := make([]templateResult, len(templates))
	for i, t := range templates {
		names := []string{}
		for _, p := range t.Placeholders() {
			names = append(names, string(p))
		}
		results[i] = templateResult{
			ID:           t.ID(),
			Name:         t.Name(),
			SourceType:   t.SourceType(),
			TargetType:   t.TargetType(),
			Placeholders: names,
		}
	}
	return jsonResult(results)
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templateID, err := request.RequireInt("template_id")
	if err != nil || templateID <= 0 {
		return mcp.NewToolResultError("template_id is required"), nil
	}
	ids, err := requireIDs(request, "mapping_ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.generator.Generate(ctx, service.GenerateParams{
		TemplateID: int64(templateID),
		MappingIDs: ids,
		Prefix:     request.GetString("prefix", ""),
		Schedule:   request.GetString("schedule", ""),
		Catchup:    request.GetBool("catchup", false),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("generate failed: %v", err)), nil
	}

	type itemResult struct {
		MappingID  int64  `json:"mapping_id"`
		Name       string `json:"name"`
		ArtifactID int64  `json:"artifact_id,omitempty"`
		Filename   string `json:"filename,omitempty"`
		Error      string `json:"error,omitempty"`
	}
	type generateResult struct {
		Succeeded int          `json:"succeeded"`
		Failed    int          `json:"failed"`
		Items     []itemResult `json:"items"`
	}

	out := generateResult{
		Succeeded: result.Succeeded(),
		Failed:    result.Failed(),
		Items:     make([]itemResult, len(result.Items)),
	}
	for i, it := range result.Items {
		item := itemResult{MappingID: it.MappingID, Name: it.Name}
		if it.Artifact.ID() != 0 {
			item.ArtifactID = it.Artifact.ID()
			item.Filename = it.Artifact.Filename()
		}
		if it.Err != nil {
			item.Error = it.Err.Error()
		}
		out.Items[i] = item
	}
	return jsonResult(out)
}

func (s *Server) handleArtifactCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("artifact_id")
	if err != nil || id <= 0 {
		return mcp.NewToolResultError("artifact_id is required"), nil
	}

	_, code, err := s.artifacts.Code(ctx, int64(id))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get artifact code: %v", err)), nil
	}
	return mcp.NewToolResultText(string(code)), nil
}

func requireIDs(request mcp.CallToolRequest, name string) ([]int64, error) {
	raw, err := request.RequireIntSlice(name)
	if err != nil || len(raw) == 0 {
		return nil, fmt.Errorf("%s is required", name)
	}
	ids := make([]int64, len(raw))
	for i, id := range raw {
		if id <= 0 {
			return nil, fmt.Errorf("invalid id in %s: %d", name, id)
		}
		ids[i] = int64(id)
	}
	return ids, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// MCPServer returns the underlying MCP server for stdio serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
