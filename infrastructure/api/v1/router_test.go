package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/dagforge"
	"github.com/helixml/dagforge/domain/connection"
	"github.com/helixml/dagforge/domain/mapping"
	v1 "github.com/helixml/dagforge/infrastructure/api/v1"
	"github.com/helixml/dagforge/infrastructure/api/v1/dto"
	"github.com/helixml/dagforge/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

type fakeIntrospector struct{}

func (fakeIntrospector) Describe(_ context.Context, _ connection.Connection, table string) (mapping.TableMetadata, error) {
	switch table {
	case "HR.EMP":
		return mapping.TableMetadata{
			Comment: "Employees",
			Columns: []mapping.RawColumn{
				{Name: "EMP_ID", Type: "NUMBER(10)", IsPK: true},
				{Name: "EMP_NAME", Type: "VARCHAR2(100)", IsNullable: true},
			},
		}, nil
	case "HR.DEPT":
		return mapping.TableMetadata{
			Columns: []mapping.RawColumn{{Name: "DEPT_ID", Type: "NUMBER", IsPK: true}},
		}, nil
	}
	return mapping.TableMetadata{}, errors.New("ORA-00942: table or view does not exist")
}

func (fakeIntrospector) Tables(context.Context, connection.Connection) ([]string, error) {
	return []string{"HR.DEPT", "HR.EMP"}, nil
}

type testAPI struct {
	t      *testing.T
	router chi.Router
	outDir string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	tmpDir := t.TempDir()
	outDir := filepath.Join(tmpDir, "dags")
	client, err := dagforge.New(
		dagforge.WithSQLite(filepath.Join(tmpDir, "test.db")),
		dagforge.WithDataDir(tmpDir),
		dagforge.WithOutputDir(outDir),
		dagforge.WithLogger(log.Discard()),
		dagforge.WithIntrospector(fakeIntrospector{}),
		dagforge.WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	router := chi.NewRouter()
	router.Mount("/connections", v1.NewConnectionsRouter(client).Routes())
	router.Mount("/mappings", v1.NewMappingsRouter(client).Routes())
	router.Mount("/templates", v1.NewTemplatesRouter(client).Routes())
	router.Mount("/naming-rule", v1.NewNamingRouter(client).Routes())
	router.Mount("/artifacts", v1.NewArtifactsRouter(client).Routes())
	router.Mount("/bundle", v1.NewBundlesRouter(client).Routes())
	return &testAPI{t: t, router: router, outDir: outDir}
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func (a *testAPI) createConnection(name, kind string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/connections", dto.ConnectionCreateRequest{
		Name: name, Type: kind, Host: "db", Port: 1521, Username: "scott", Password: "tiger",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.ConnectionResponse](a.t, w).Data.ID
}

func mustID(t *testing.T, s string) int64 {
	t.Helper()
	id, err := strconv.ParseInt(s, 10, 64)
	require.NoError(t, err)
	return id
}

func (a *testAPI) createMappings(tables ...string) []int64 {
	a.t.Helper()
	src := mustID(a.t, a.createConnection("erp", "oracle"))
	dst := mustID(a.t, a.createConnection("warehouse", "postgres"))
	w := a.do(http.MethodPost, "/mappings", dto.MappingCreateRequest{
		SourceConnID: src, TargetConnID: dst, Tables: tables,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.MappingCreateResponse](a.t, w)
	ids := make([]int64, len(created.Data))
	for i, m := range created.Data {
		ids[i] = mustID(a.t, m.ID)
	}
	return ids
}

func (a *testAPI) createTemplate(code string) int64 {
	a.t.Helper()
	w := a.do(http.MethodPost, "/templates", dto.TemplateRequest{
		Name: "oracle_to_pg", SourceType: "oracle", TargetType: "postgres", Code: code,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return mustID(a.t, decode[dto.TemplateResponse](a.t, w).Data.ID)
}

func TestConnectionsRouter(t *testing.T) {
	a := newTestAPI(t)
	id := a.createConnection("erp", "Oracle")

	w := a.do(http.MethodGet, "/connections", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[dto.ConnectionListResponse](t, w)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "oracle", list.Data[0].Attributes.Type)
	assert.NotContains(t, w.Body.String(), "tiger")
	assert.EqualValues(t, 1, (*list.Meta)["total_count"])

	w = a.do(http.MethodGet, "/connections/"+id+"/tables", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"HR.DEPT", "HR.EMP"}, decode[dto.TableListResponse](t, w).Data)

	w = a.do(http.MethodPost, "/connections", dto.ConnectionCreateRequest{Name: " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodDelete, "/connections/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodGet, "/connections/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMappingsRouter_CreateWithFallback(t *testing.T) {
	a := newTestAPI(t)
	src := mustID(t, a.createConnection("erp", "oracle"))
	dst := mustID(t, a.createConnection("warehouse", "postgres"))

	w := a.do(http.MethodPost, "/mappings", dto.MappingCreateRequest{
		SourceConnID: src, TargetConnID: dst, Tables: []string{"HR.EMP", "HR.MISSING"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.MappingCreateResponse](t, w).Data
	require.Len(t, created, 2)

	assert.Equal(t, "emp", created[0].Attributes.TargetTable)
	assert.Empty(t, created[0].Warning)
	assert.Equal(t, "Draft", created[0].Attributes.Status)

	assert.Contains(t, created[1].Warning, "ORA-00942")
	require.Len(t, created[1].Columns, 1)
	assert.Equal(t, mapping.FallbackLogicalName, created[1].Columns[0].LogicalName)
}

func TestMappingsRouter_CreateValidation(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(http.MethodPost, "/mappings", dto.MappingCreateRequest{Tables: []string{"HR.EMP"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/mappings", `{"tables": "HR.EMP"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/mappings", `{"source": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "unknown fields are rejected")
}

func TestMappingsRouter_ColumnsPreviewAndDDL(t *testing.T) {
	a := newTestAPI(t)
	id := strconv.FormatInt(a.createMappings("HR.EMP")[0], 10)

	w := a.do(http.MethodGet, "/mappings/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[dto.MappingResponse](t, w)
	require.NotEmpty(t, detail.Columns)

	columns := detail.Columns
	columns[0].TransRule = "TRIM(EMP_ID)"
	w = a.do(http.MethodPut, "/mappings/"+id+"/columns", dto.ColumnsUpdateRequest{Columns: columns})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[dto.ColumnListResponse](t, w).Data
	assert.Equal(t, "TRIM(EMP_ID)", updated[0].TransRule)

	dup := append([]dto.Column{}, columns...)
	dup[1].Order = dup[0].Order
	w = a.do(http.MethodPut, "/mappings/"+id+"/columns", dto.ColumnsUpdateRequest{Columns: dup})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/mappings/preview", dto.IDsRequest{IDs: []int64{mustID(t, id)}})
	require.Equal(t, http.StatusOK, w.Code)
	previews := decode[dto.PreviewResponse](t, w).Data
	require.Len(t, previews, 1)
	assert.Contains(t, previews[0].SourceSQL, "SELECT EMP_ID")
	assert.Contains(t, previews[0].SourceSQL, "FROM HR.EMP")
	assert.Equal(t, "HR.EMP -> emp", previews[0].MappingName)

	w = a.do(http.MethodGet, "/mappings/"+id+"/ddl", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[dto.DDLResponse](t, w).Data.Statement, "CREATE TABLE")
}

func TestMappingsRouter_BulkDelete(t *testing.T) {
	a := newTestAPI(t)
	ids := a.createMappings("HR.EMP", "HR.DEPT")

	w := a.do(http.MethodPost, "/mappings/bulk-delete", dto.IDsRequest{IDs: []int64{ids[0], 999}})
	require.Equal(t, http.StatusMultiStatus, w.Code)
	resp := decode[dto.BulkDeleteResponse](t, w)
	assert.Equal(t, []int64{ids[0]}, resp.Deleted)
	require.Len(t, resp.Failures, 1)
	assert.EqualValues(t, 999, resp.Failures[0].ID)

	w = a.do(http.MethodPost, "/mappings/bulk-delete", dto.IDsRequest{IDs: []int64{ids[1]}})
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodPost, "/mappings/bulk-delete", dto.IDsRequest{IDs: []int64{999}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPost, "/mappings/bulk-delete", dto.IDsRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTemplatesRouter(t *testing.T) {
	a := newTestAPI(t)
	id := strconv.FormatInt(a.createTemplate("sql = '{{ source_sql }}'"), 10)

	w := a.do(http.MethodGet, "/templates/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tpl := decode[dto.TemplateResponse](t, w)
	assert.Equal(t, []string{"source_sql"}, tpl.Data.Attributes.Placeholders)

	w = a.do(http.MethodPut, "/templates/"+id, dto.TemplateRequest{Name: "renamed", Code: "x"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "renamed", decode[dto.TemplateResponse](t, w).Data.Attributes.Name)

	w = a.do(http.MethodPut, "/templates/"+id, dto.TemplateRequest{Name: "renamed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodDelete, "/templates/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(http.MethodGet, "/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[dto.TemplateListResponse](t, w).Data)
}

func TestNamingRouter(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(http.MethodGet, "/naming-rule", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[dto.NamingRuleResponse](t, w).Data)

	w = a.do(http.MethodPut, "/naming-rule", dto.NamingRuleRequest{
		Tokens: []dto.NamingToken{
			{Type: "literal", Value: "load"},
			{Type: "src_table"},
		},
		Separator: "-",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/naming-rule", nil)
	rule := decode[dto.NamingRuleResponse](t, w).Data
	require.NotNil(t, rule)
	assert.Equal(t, "-", rule.Separator)
	assert.Len(t, rule.Tokens, 2)

	w = a.do(http.MethodPut, "/naming-rule", dto.NamingRuleRequest{
		Tokens: []dto.NamingToken{{Type: "weekday"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArtifactsRouter_GenerateCodeDownloadDelete(t *testing.T) {
	a := newTestAPI(t)
	mappingIDs := a.createMappings("HR.EMP", "HR.DEPT")
	tplID := a.createTemplate("dag = '{{ dag_name }}'\nschedule = {{ schedule }}\n")

	w := a.do(http.MethodPost, "/artifacts/generate", dto.GenerateRequest{
		TemplateID: tplID,
		MappingIDs: append(mappingIDs, 999),
		Schedule:   "0 6 * * *",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	gen := decode[dto.GenerateResponse](t, w)
	assert.Equal(t, 2, gen.Succeeded)
	assert.Equal(t, 0, gen.Failed)
	require.Len(t, gen.Items, 2)
	assert.Equal(t, "recorded", gen.Items[0].Status)
	for _, f := range gen.Files {
		_, err := os.Stat(filepath.Join(a.outDir, f))
		assert.NoError(t, err)
	}

	artifactID := strconv.FormatInt(gen.Items[0].ArtifactID, 10)

	w = a.do(http.MethodGet, "/artifacts/"+artifactID+"/code", nil)
	require.Equal(t, http.StatusOK, w.Code)
	code := decode[dto.ArtifactCodeResponse](t, w).Data
	assert.Contains(t, code.Code, "schedule = '0 6 * * *'")
	assert.True(t, strings.HasSuffix(code.Filename, ".py"))

	w = a.do(http.MethodGet, "/artifacts/"+artifactID+"/download", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), code.Filename)
	assert.Equal(t, code.Code, w.Body.String())

	w = a.do(http.MethodGet, "/artifacts?mapping_id="+strconv.FormatInt(mappingIDs[1], 10), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[dto.ArtifactListResponse](t, w).Data, 1)

	w = a.do(http.MethodDelete, "/artifacts/"+artifactID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, err := os.Stat(filepath.Join(a.outDir, code.Filename))
	assert.True(t, os.IsNotExist(err))

	w = a.do(http.MethodGet, "/artifacts/"+artifactID+"/code", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestArtifactsRouter_GenerateValidation(t *testing.T) {
	a := newTestAPI(t)
	ids := a.createMappings("HR.EMP")
	tplID := a.createTemplate("x")

	w := a.do(http.MethodPost, "/artifacts/generate", dto.GenerateRequest{TemplateID: tplID, MappingIDs: ids, Schedule: "every day"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/artifacts/generate", dto.GenerateRequest{TemplateID: 999, MappingIDs: ids})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/artifacts?status=Generated&page_size=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[dto.ArtifactListResponse](t, w).Data)
}

func TestMappingsRouter_ListSorting(t *testing.T) {
	a := newTestAPI(t)
	a.createMappings("HR.EMP", "HR.DEPT")

	w := a.do(http.MethodGet, "/mappings?sort=source_table", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	list := decode[dto.MappingListResponse](t, w)
	require.Len(t, list.Data, 2)
	assert.Equal(t, "HR.DEPT", list.Data[0].Attributes.SourceTable)
	assert.Equal(t, "HR.EMP", list.Data[1].Attributes.SourceTable)
	assert.Contains(t, list.Links.Self, "sort=source_table")

	w = a.do(http.MethodGet, "/mappings?sort=-source_table", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list = decode[dto.MappingListResponse](t, w)
	assert.Equal(t, "HR.EMP", list.Data[0].Attributes.SourceTable)

	w = a.do(http.MethodGet, "/mappings?sort=source_columns", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/connections?sort=password", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBundlesRouter(t *testing.T) {
	a := newTestAPI(t)
	a.createTemplate("sql = '{{ source_sql }}'")
	a.createConnection("erp", "oracle")

	w := a.do(http.MethodGet, "/bundle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))
	exported := w.Body.String()
	assert.Contains(t, exported, "oracle_to_pg")
	assert.NotContains(t, exported, "tiger")

	other := newTestAPI(t)
	w = other.do(http.MethodPost, "/bundle", exported)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[dto.ImportResponse](t, w)
	assert.Equal(t, 1, result.TemplatesCreated)
	assert.Equal(t, 1, result.ConnectionsCreated)

	w = other.do(http.MethodPost, "/bundle", "version: \"99\"\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
