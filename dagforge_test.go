package dagforge_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/helixml/dagforge"
	"github.com/helixml/dagforge/application/service"
	"github.com/helixml/dagforge/domain/connection"
	"github.com/helixml/dagforge/domain/mapping"
	"github.com/helixml/dagforge/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticIntrospector map[string]mapping.TableMetadata

func (s staticIntrospector) Describe(_ context.Context, _ connection.Connection, table string) (mapping.TableMetadata, error) {
	meta, ok := s[table]
	if !ok {
		return mapping.TableMetadata{}, os.ErrNotExist
	}
	return meta, nil
}

func (s staticIntrospector) Tables(_ context.Context, _ connection.Connection) ([]string, error) {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names, nil
}

func newClient(t *testing.T, opts ...dagforge.Option) (*dagforge.Client, string) {
	t.Helper()
	tmpDir := t.TempDir()
	base := []dagforge.Option{
		dagforge.WithSQLite(filepath.Join(tmpDir, "dagforge.db")),
		dagforge.WithDataDir(tmpDir),
		dagforge.WithLogger(log.Discard()),
	}
	client, err := dagforge.New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, tmpDir
}

func TestNew_RequiresDatabase(t *testing.T) {
	_, err := dagforge.New()
	assert.ErrorIs(t, err, dagforge.ErrNoDatabase)
}

func TestNew_WithSQLite(t *testing.T) {
	client, tmpDir := newClient(t)

	_, err := os.Stat(filepath.Join(tmpDir, "dagforge.db"))
	assert.NoError(t, err)

	// Output directory defaults to {dataDir}/dags_output and is created.
	info, err := os.Stat(filepath.Join(tmpDir, "dags_output"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(tmpDir, "dags_output"), client.OutputDir())
}

func TestNew_WithDatabaseURL(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "meta.db")

	client, err := dagforge.New(
		dagforge.WithDatabaseURL("sqlite:///"+dbPath),
		dagforge.WithDataDir(tmpDir),
		dagforge.WithLogger(log.Discard()),
	)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestNew_UnrecognizedDatabaseURL(t *testing.T) {
	_, err := dagforge.New(dagforge.WithDatabaseURL("mysql://localhost/db"))
	assert.ErrorIs(t, err, dagforge.ErrNoDatabase)
}

func TestClient_Close_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()
	client, err := dagforge.New(
		dagforge.WithSQLite(filepath.Join(tmpDir, "test.db")),
		dagforge.WithDataDir(tmpDir),
		dagforge.WithLogger(log.Discard()),
	)
	require.NoError(t, err)

	assert.NoError(t, client.Close())
	assert.ErrorIs(t, client.Close(), dagforge.ErrClientClosed)
}

func TestClient_EndToEnd(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	outDir := filepath.Join(t.TempDir(), "dags")
	client, _ := newClient(t,
		dagforge.WithOutputDir(outDir),
		dagforge.WithClock(func() time.Time { return now }),
		dagforge.WithIntrospector(staticIntrospector{
			"HR.EMPLOYEES": {
				Comment: "Employees",
				Columns: []mapping.RawColumn{
					{Name: "EMP_ID", Type: "NUMBER(10)", IsPK: true},
					{Name: "EMP_NAME", Type: "VARCHAR2(100)", IsNullable: true},
				},
			},
		}),
	)
	ctx := context.Background()

	src, err := client.Connections.Create(ctx, service.ConnectionParams{Name: "erp", Type: "oracle", Host: "db", Port: 1521})
	require.NoError(t, err)
	dst, err := client.Connections.Create(ctx, service.ConnectionParams{Name: "warehouse", Type: "postgres", Host: "pg", Port: 5432})
	require.NoError(t, err)

	created, err := client.Mappings.Create(ctx, service.CreateMappingsParams{
		SourceConnID: src.ID(),
		TargetConnID: dst.ID(),
		Tables:       []string{"HR.EMPLOYEES"},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	mappingID := created[0].Detail.Mapping().ID()

	tpl, err := client.Templates.Create(ctx, service.TemplateParams{
		Name:       "oracle_to_pg",
		SourceType: "oracle",
		TargetType: "postgres",
		Code:       "# {{ source_table }} -> {{ target_table }}\nschedule = {{ schedule }}\n",
	})
	require.NoError(t, err)

	result, err := client.Generation.Generate(ctx, service.GenerateParams{
		TemplateID: tpl.ID(),
		MappingIDs: []int64{mappingID},
		Schedule:   "@daily",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded())

	files := result.Files()
	require.Len(t, files, 1)
	content, err := os.ReadFile(filepath.Join(outDir, files[0]))
	require.NoError(t, err)
	assert.Contains(t, string(content), "# HR.EMPLOYEES -> employees")
	assert.Contains(t, string(content), "schedule = '@daily'")

	ddlText, err := client.Mappings.DDL(ctx, mappingID)
	require.NoError(t, err)
	assert.Contains(t, ddlText, "CREATE TABLE")

	artifacts, err := client.Artifacts.List(ctx)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, files[0], artifacts[0].Filename())
}
