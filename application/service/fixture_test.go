package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/helixml/dagforge/domain/connection"
	"github.com/helixml/dagforge/domain/mapping"
	"github.com/helixml/dagforge/infrastructure/output"
	"github.com/helixml/dagforge/infrastructure/persistence"
	"github.com/helixml/dagforge/internal/testdb"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fakeIntrospector struct {
	mu     sync.Mutex
	tables map[string]mapping.TableMetadata
	fail   map[string]error
	calls  int
}

func newFakeIntrospector() *fakeIntrospector {
	return &fakeIntrospector{
		tables: map[string]mapping.TableMetadata{},
		fail:   map[string]error{},
	}
}

func (f *fakeIntrospector) Describe(_ context.Context, _ connection.Connection, table string) (mapping.TableMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.fail[table]; ok {
		return mapping.TableMetadata{}, err
	}
	meta, ok := f.tables[table]
	if !ok {
		return mapping.TableMetadata{}, fmt.Errorf("table %s not found", table)
	}
	return meta, nil
}

func (f *fakeIntrospector) Tables(_ context.Context, _ connection.Connection) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.tables))
	for name := range f.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// flakyFiles fails writes whose name contains failOn. afterWrite runs after
// every successful write.
type flakyFiles struct {
	output.Dir
	failOn     string
	afterWrite func()
}

func (f flakyFiles) Write(name string, content []byte) (string, error) {
	if f.failOn != "" && strings.Contains(name, f.failOn) {
		return "", errors.New("disk full")
	}
	path, err := f.Dir.Write(name, content)
	if err == nil && f.afterWrite != nil {
		f.afterWrite()
	}
	return path, err
}

type fixture struct {
	connStore     persistence.ConnectionStore
	mappingStore  persistence.MappingStore
	templateStore persistence.TemplateStore
	namingStore   persistence.NamingRuleStore
	artifactStore persistence.ArtifactStore
	introspector  *fakeIntrospector
	dir           output.Dir
	files         *flakyFiles

	connections *Connections
	mappings    *Mappings
	templates   *Templates
	naming      *NamingRules
	generation  *Generation
	artifacts   *Artifacts
	bundles     *Bundles

	source connection.Connection
	target connection.Connection
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := testdb.New(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	dir, err := output.NewDir(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		connStore:     persistence.NewConnectionStore(db),
		mappingStore:  persistence.NewMappingStore(db),
		templateStore: persistence.NewTemplateStore(db),
		namingStore:   persistence.NewNamingRuleStore(db),
		artifactStore: persistence.NewArtifactStore(db),
		introspector:  newFakeIntrospector(),
		dir:           dir,
	}
	f.files = &flakyFiles{Dir: dir}

	f.connections = NewConnections(f.connStore, f.introspector, logger)
	f.mappings = NewMappings(f.mappingStore, f.connStore, f.introspector, logger,
		WithParallelism(2), WithMappingsClock(fixedClock))
	f.templates = NewTemplates(f.templateStore, logger)
	f.naming = NewNamingRules(f.namingStore, logger)
	f.generation = NewGeneration(f.templateStore, f.mappingStore, f.connStore, f.namingStore,
		f.artifactStore, f.files, logger, WithGenerationClock(fixedClock))
	f.artifacts = NewArtifacts(f.artifactStore, f.files, logger)
	f.bundles = NewBundles(f.templateStore, f.connStore, f.namingStore, logger)

	f.source, err = f.connections.Create(ctx, ConnectionParams{
		Name: "erp prod", Type: "oracle", Host: "ora.local", Port: 1521,
		Database: "ORCL", Username: "scott", Password: "tiger",
	})
	require.NoError(t, err)
	f.target, err = f.connections.Create(ctx, ConnectionParams{
		Name: "warehouse", Type: "postgres", Host: "pg.local", Port: 5432,
		Database: "dw", Username: "etl",
	})
	require.NoError(t, err)

	f.introspector.tables["HR.EMP"] = mapping.TableMetadata{
		Comment: "Employees",
		Columns: []mapping.RawColumn{
			{Name: "EMP_ID", Type: "NUMBER(10)", IsPK: true, Comment: "Employee id"},
			{Name: "EMP_NAME", Type: "VARCHAR2(100)", IsNullable: true},
		},
	}
	f.introspector.tables["HR.DEPT"] = mapping.TableMetadata{
		Columns: []mapping.RawColumn{
			{Name: "DEPT_ID", Type: "NUMBER(4)", IsPK: true},
			{Name: "ETL_DTM", Type: "DATE", IsNullable: true},
		},
	}
	f.introspector.tables["HR.JOBS"] = mapping.TableMetadata{
		Columns: []mapping.RawColumn{{Name: "JOB_ID", Type: "VARCHAR2(10)", IsPK: true}},
	}
	return f
}

// createMappings maps tables from source to target and returns their IDs.
func (f *fixture) createMappings(t *testing.T, tables ...string) []int64 {
	t.Helper()
	created, err := f.mappings.Create(context.Background(), CreateMappingsParams{
		SourceConnID: f.source.ID(),
		TargetConnID: f.target.ID(),
		Tables:       tables,
	})
	require.NoError(t, err)
	ids := make([]int64, len(created))
	for i, c := range created {
		ids[i] = c.Detail.Mapping().ID()
	}
	return ids
}
