package routers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weightguard/internal/business"
	"weightguard/internal/model"
	"weightguard/internal/server/ginx"
	"weightguard/internal/server/handlers/maintenance"
	"weightguard/internal/server/handlers/product"
	"weightguard/internal/server/handlers/report"
	"weightguard/internal/server/handlers/settings"
	"weightguard/pkg/config"
	"weightguard/pkg/logger"
)

const (
	adminKey  = "admin-secret"
	viewerKey = "viewer-secret"
)

type stubSettings struct{ saveErr error }

func (s *stubSettings) Load(context.Context) (*model.Settings, error) {
	d := model.DefaultSettings()
	return &d, nil
}

func (s *stubSettings) Save(_ context.Context, in *business.SettingsInput) (*model.Settings, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	d := model.DefaultSettings()
	d.Frequency = in.Frequency
	return &d, nil
}

type stubReports struct{ computed bool }

func (s *stubReports) Build(context.Context) (*model.Report, error) {
	return &model.Report{MissingWeight: []model.ReportItem{{Product: model.Product{ID: 1}}}}, nil
}

func (s *stubReports) Compute(context.Context) (*model.Report, error) {
	s.computed = true
	return &model.Report{}, nil
}

type stubExporter struct{}

func (stubExporter) Export(_ context.Context, w io.Writer) (int, error) {
	_, err := io.WriteString(w, "\ufeffID;Product\n")
	return 0, err
}

type stubChecker struct{}

func (stubChecker) Check(_ context.Context, id int64) (*model.CheckResult, error) {
	switch id {
	case 404:
		return nil, fmt.Errorf("%w: %d", model.ErrProductNotFound, id)
	case 500:
		return nil, errors.New("dial tcp 10.0.0.1:3306: connection refused")
	}
	return &model.CheckResult{ProductID: id}, nil
}

type stubBulk struct{}

func (stubBulk) Apply(_ context.Context, req *business.BulkRequest) (*business.BulkResult, error) {
	return &business.BulkResult{Action: req.Action, Affected: len(req.ProductIDs)}, nil
}

func (stubBulk) UpdateMeasures(_ context.Context, id int64, _ *business.MeasuresInput) (*model.CheckResult, error) {
	return nil, fmt.Errorf("%w: weight must be greater than zero", model.ErrInvalidMeasure)
}

type stubReanalyzer struct{}

func (stubReanalyzer) Run(context.Context) (*model.ReanalysisResult, error) {
	return &model.ReanalysisResult{Processed: 3, Changed: 1}, nil
}

type stubDigest struct{ freq model.Frequency }

func (s *stubDigest) Send(_ context.Context, f model.Frequency) (*model.DigestResult, error) {
	s.freq = f
	return &model.DigestResult{Sent: false, Reason: business.DigestSkipNoProblems}, nil
}

type stubQueue struct{ actions []string }

func (q *stubQueue) Enqueue(_ context.Context, action, _ string, _ interface{}) (string, error) {
	q.actions = append(q.actions, action)
	return "job-123", nil
}

type fixture struct {
	engine   *gin.Engine
	settings *stubSettings
	reports  *stubReports
	digest   *stubDigest
	queue    *stubQueue
}

func newFixture(withQueue bool) *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		settings: &stubSettings{},
		reports:  &stubReports{},
		digest:   &stubDigest{},
		queue:    &stubQueue{},
	}
	var queue maintenance.JobQueue
	if withQueue {
		queue = f.queue
	}
	h := &Handlers{
		Settings:    settings.NewSettingsHandler(f.settings),
		Report:      report.NewReportHandler(f.reports, stubExporter{}),
		Product:     product.NewProductHandler(stubChecker{}, stubBulk{}),
		Maintenance: maintenance.NewMaintenanceHandler(stubReanalyzer{}, f.digest, queue),
	}
	keys := []config.APIKeyConfig{
		{Name: "ops", Key: adminKey, Role: config.RoleAdmin},
		{Name: "dash", Key: viewerKey, Role: config.RoleViewer},
	}
	f.engine = SetupRoutes(h, keys, logger.NewNop())
	return f
}

func (f *fixture) do(method, path, key, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set("X-Api-Key", key)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) ginx.Response {
	t.Helper()
	var resp ginx.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	f := newFixture(true)
	w := f.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestAuth(t *testing.T) {
	f := newFixture(true)

	w := f.do(http.MethodGet, "/api/v1/settings", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodGet, "/api/v1/settings", "wrong", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodGet, "/api/v1/settings", viewerKey, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodPut, "/api/v1/settings", viewerKey, `{"frequency":"weekly"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, http.StatusForbidden, decode(t, w).Meta.Code)

	w = f.do(http.MethodPut, "/api/v1/settings", adminKey, `{"frequency":"weekly"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSettingsValidationError(t *testing.T) {
	f := newFixture(true)
	f.settings.saveErr = fmt.Errorf("%w: weight: minimum must be lower than maximum", model.ErrInvalidSettings)

	w := f.do(http.MethodPut, "/api/v1/settings", adminKey, `{"frequency":"daily"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Meta.Message, "minimum must be lower than maximum")
}

func TestProductCheck(t *testing.T) {
	f := newFixture(true)

	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/v1/products/7/check", adminKey, "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/v1/products/abc/check", adminKey, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/api/v1/products/404/check", adminKey, "").Code)

	w := f.do(http.MethodPost, "/api/v1/products/500/check", adminKey, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}

func TestProductMeasuresAndBulk(t *testing.T) {
	f := newFixture(true)

	w := f.do(http.MethodPatch, "/api/v1/products/7/measures", adminKey, `{"weight":"-1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/v1/products/bulk", adminKey, `{"action":"explode","product_ids":[1]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotEmpty(t, decode(t, w).Meta.Details)

	w = f.do(http.MethodPost, "/api/v1/products/bulk", adminKey, `{"action":"remove_flags","product_ids":[1,2]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"affected":2`)
}

func TestReport(t *testing.T) {
	f := newFixture(true)

	w := f.do(http.MethodGet, "/api/v1/report", viewerKey, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, f.reports.computed)

	f.do(http.MethodGet, "/api/v1/report?fresh=true", viewerKey, "")
	assert.True(t, f.reports.computed)

	w = f.do(http.MethodGet, "/api/v1/report/export.csv", viewerKey, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "products-with-problems-")
	assert.True(t, strings.HasPrefix(w.Body.String(), "\ufeffID;Product"))
}

func TestReanalysisAndDigest(t *testing.T) {
	f := newFixture(true)

	w := f.do(http.MethodPost, "/api/v1/reanalysis", adminKey, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"processed":3`)

	w = f.do(http.MethodPost, "/api/v1/reanalysis?async=true", adminKey, "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{model.ActionCatalogReanalyze}, f.queue.actions)

	w = f.do(http.MethodPost, "/api/v1/digest", adminKey, `{"frequency":"monthly"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.FrequencyMonthly, f.digest.freq)

	w = f.do(http.MethodPost, "/api/v1/digest", adminKey, `{"frequency":"hourly"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/v1/digest?async=true", adminKey, "{}")
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestAsyncWithoutQueue(t *testing.T) {
	f := newFixture(false)
	w := f.do(http.MethodPost, "/api/v1/reanalysis?async=true", adminKey, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
