package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	_ "modernc.org/sqlite"

	"tablesense/adapters/excel"
	"tablesense/adapters/postgres"
	"tablesense/adapters/static"
	"tablesense/app"
	"tablesense/domain/core"
	"tablesense/domain/project"
	"tablesense/domain/table"
	"tablesense/internal/chunked"
	"tablesense/internal/migration"
)

func testServices(t *testing.T) Services {
	t.Helper()

	leads := &excel.Sheet{Name: "crm_leads", Headers: []string{"id", "status", "amount", "created_at"}}
	for i := 0; i < 12; i++ {
		leads.Rows = append(leads.Rows, table.Record{
			"id":         fmt.Sprint(i + 1),
			"status":     []string{"new", "won", "lost"}[i%3],
			"amount":     fmt.Sprint((i + 1) * 10),
			"created_at": fmt.Sprintf("2025-03-%02d", i+1),
		})
	}
	commissions := &excel.Sheet{
		Name:    "crm_commissions",
		Headers: []string{"provider", "branch", "agent", "amount", "payment_date"},
		Rows: []table.Record{
			{"provider": "Migdal", "branch": "North", "agent": "Dana", "amount": "1000", "payment_date": "2025-03-05"},
			{"provider": "Harel", "branch": "South", "agent": "Avi", "amount": "500", "payment_date": "2025-02-05"},
		},
	}
	store := excel.NewStore(5, leads, commissions)
	resolver := static.NewResolver(&project.Project{
		ID:     "crm",
		Tables: map[string]string{"leads": "crm_leads", "commissions": "crm_commissions"},
	})

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migration.NewRunner().Run(context.Background(), db))

	clock := core.FixedClock(time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC))
	source := app.NewTableSource(resolver, store, chunked.DefaultOptions())
	analyses := app.NewAnalysisService(source, 1000, clock)
	return Services{
		Analyses:  analyses,
		Reports:   app.NewReportService(source, analyses, app.DefaultReportConfig(), clock),
		Templates: app.NewTemplateService(analyses, postgres.NewTemplateRepository(db), clock),
	}
}

func newTestServer(t *testing.T) http.Handler {
	gin.SetMode(gin.TestMode)
	return NewServer(testServices(t), WithRequestTimeout(time.Minute)).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnalysisEndpoint(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodGet, "/api/projects/crm/tables/leads/analysis", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "leads", body["tableName"])
	assert.EqualValues(t, 12, body["totalRows"])
	assert.Len(t, body["columns"], 4)
}

func TestErrorStatuses(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"undeclared table", "/api/projects/crm/tables/salaries/analysis", http.StatusForbidden, "ACCESS_DENIED"},
		{"unknown project", "/api/projects/hr/tables/leads/analysis", http.StatusNotFound, "NOT_FOUND"},
		{"unknown view", "/api/projects/crm/tables/leads/report?view=payroll", http.StatusBadRequest, "INVALID_INPUT"},
		{"bad filter column", "/api/projects/crm/tables/leads/report?filter[a-b]=1", http.StatusBadRequest, "INVALID_INPUT"},
		{"missing template", "/api/templates/nope", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode(t, w)["code"])
		})
	}
}

func TestReportEndpoint(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodGet, "/api/projects/crm/tables/leads/report?filter[status]=won&filter[amount]=gte:50", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rep := decode(t, w)["report"].(map[string]interface{})
	assert.EqualValues(t, 3, rep["totalRows"], "won rows with amount >= 50: 50, 80, 110")
	assert.Equal(t, false, rep["partial"])

	w = do(t, h, http.MethodGet, "/api/projects/crm/tables/commissions/report", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rep = decode(t, w)["report"].(map[string]interface{})
	assert.Equal(t, "commissions", rep["view"])
}

func TestReportExport(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/api/projects/crm/tables/commissions/report.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "commissions.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Summary")
	assert.Contains(t, f.GetSheetList(), "By provider")
}

func TestTemplateLifecycle(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/api/projects/crm/tables/leads/templates/default", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	id := created["id"].(string)
	assert.Equal(t, "Leads dashboard", created["name"])

	w = do(t, h, http.MethodGet, "/api/projects/crm/templates?table=leads", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["templates"], 1)

	w = do(t, h, http.MethodGet, "/api/projects/crm/tables/leads/report.xlsx?template="+id, nil)
	assert.Equal(t, http.StatusOK, w.Code, "new templates allow export")

	edit := map[string]interface{}{
		"name":           "Lead board",
		"fieldSelection": created["fieldSelection"],
		"tableConfig":    map[string]interface{}{"columns": []string{"status"}, "pageSize": 25, "exportEnabled": false},
	}
	w = do(t, h, http.MethodPut, "/api/templates/"+id, edit)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Lead board", decode(t, w)["name"])

	w = do(t, h, http.MethodGet, "/api/projects/crm/tables/leads/report.xlsx?template="+id, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, h, http.MethodPut, "/api/templates/"+id, map[string]interface{}{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodDelete, "/api/templates/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/api/templates/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportExportRejectsForeignTemplate(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/api/projects/crm/tables/leads/templates/default", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"own table", "/api/projects/crm/tables/leads/report.xlsx?template=" + id, http.StatusOK},
		{"own table by physical name", "/api/projects/crm/tables/crm_leads/report.xlsx?template=" + id, http.StatusOK},
		{"other table", "/api/projects/crm/tables/commissions/report.xlsx?template=" + id, http.StatusBadRequest},
		{"other project", "/api/projects/hr/tables/leads/report.xlsx?template=" + id, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestOverviewEndpoint(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/api/projects/crm/overview", map[string]interface{}{"tables": []string{"leads", "commissions"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tables := decode(t, w)["tables"].([]interface{})
	require.Len(t, tables, 2)
	assert.Equal(t, "commissions", tables[1].(map[string]interface{})["tableName"])

	w = do(t, h, http.MethodPost, "/api/projects/crm/overview", map[string]interface{}{"tables": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewApp(t *testing.T) {
	h := NewApp(testServices(t)).Handler()

	tests := []struct {
		name     string
		path     string
		status   int
		contains []string
	}{
		{"analysis only", "/preview/crm/leads", http.StatusOK, []string{"<title>leads</title>", "<table>", "Columns"}},
		{"with report", "/preview/crm/commissions?report=1", http.StatusOK, []string{"Totals", "By provider", "Projection"}},
		{"undeclared table", "/preview/crm/salaries", http.StatusForbidden, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
			for _, s := range tt.contains {
				assert.True(t, strings.Contains(w.Body.String(), s), "missing %q", s)
			}
		})
	}
}
