package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/landscaper/internal/domain/models"
	"github.com/mamadbah2/landscaper/internal/repository/memory"
	"github.com/mamadbah2/landscaper/internal/server/handlers"
	"github.com/mamadbah2/landscaper/internal/service/reporting"
)

type stubSnapshotReader struct {
	snap *models.ProfitabilitySnapshot
}

func (s stubSnapshotReader) LatestSnapshot(_ context.Context, clientID int64) (*models.ProfitabilitySnapshot, error) {
	if s.snap == nil || s.snap.ClientID != clientID {
		return nil, nil
	}
	return s.snap, nil
}

type fixture struct {
	oak   models.Client
	visit models.Visit
}

func newTestEngine(t *testing.T, snapshots handlers.SnapshotReader) (http.Handler, fixture) {
	t.Helper()

	store := memory.NewStore()
	oak := store.AddClient(models.Client{Name: "Oak Lane", MonthlyCharge: 400, IsActive: true})
	mulch := store.AddMaterial(models.Material{Name: "Mulch", DefaultCost: 30})

	now := time.Now().UTC()
	var last models.Visit
	for i, d := range []float64{60, 60, 60, 300} {
		last = store.AddVisit(models.Visit{ClientID: oak.ID, VisitDate: now.AddDate(0, 0, -7*(i+1)), DurationMinutes: d})
	}
	store.LogMaterial(last.ID, mulch.ID, 2, 28)

	svc := reporting.NewService(store, nil, reporting.Options{}, nil)
	analytics := handlers.NewAnalyticsHandler(svc, snapshots, nil)
	return New(nil, analytics, nil), fixture{oak: oak, visit: last}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h, _ := newTestEngine(t, nil)

	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestWebhookRoutesAbsentWithoutHandler(t *testing.T) {
	h, _ := newTestEngine(t, nil)

	rec := get(t, h, "/webhook?hub.mode=subscribe")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClientStatisticsRoute(t *testing.T) {
	h, fx := newTestEngine(t, nil)

	rec := get(t, h, "/api/clients/"+itoa(fx.oak.ID)+"/statistics")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.ClientStatistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, "Oak Lane", stats.ClientName)
	assert.Equal(t, 4, stats.VisitCount)
	assert.Equal(t, 5200.0, stats.ProjectedYearlyLaborCost)
	assert.Equal(t, 433.33, stats.ProposedMonthlyRate)
	assert.Equal(t, -33.33, stats.MonthlyProfitLoss)
	assert.False(t, stats.IsProfitable)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/clients/999/statistics").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/clients/abc/statistics").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/clients/0/statistics").Code)
}

func TestAllStatisticsRoute(t *testing.T) {
	h, _ := newTestEngine(t, nil)

	rec := get(t, h, "/api/statistics?active_only=false")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Clients []models.ClientStatistics `json:"clients"`
		Count   int                       `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/statistics?active_only=maybe").Code)
}

func TestAnomaliesRoute(t *testing.T) {
	h, fx := newTestEngine(t, nil)

	var body struct {
		Visits []models.AnomalousVisit `json:"visits"`
		Count  int                     `json:"count"`
	}

	rec := get(t, h, "/api/anomalies")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Count)
	assert.NotNil(t, body.Visits)

	rec = get(t, h, "/api/anomalies?threshold=200&client_id="+itoa(fx.oak.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, 250.0, body.Visits[0].PercentOfAvg)
	assert.Equal(t, "Oak Lane", body.Visits[0].ClientName)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/anomalies?threshold=high").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/anomalies?client_id=-4").Code)
}

func TestTodoRoute(t *testing.T) {
	h, _ := newTestEngine(t, nil)

	rec := get(t, h, "/api/todo")
	require.Equal(t, http.StatusOK, rec.Code)

	var todo models.TodoList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todo))
	require.Len(t, todo.ClientsMissingServices, 1)
	require.Len(t, todo.ClientsMissingContact, 1)
	assert.Empty(t, todo.VisitsNeedingReview)
}

func TestTrendRoute(t *testing.T) {
	h, fx := newTestEngine(t, nil)

	rec := get(t, h, "/api/clients/"+itoa(fx.oak.ID)+"/trend?mode=cost&year=1999")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"client_id":`+itoa(fx.oak.ID)+`,"mode":"cost","months":[]}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/clients/"+itoa(fx.oak.ID)+"/trend?mode=weekly").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/clients/"+itoa(fx.oak.ID)+"/trend?year=x").Code)
}

func TestVisitMaterialsRoute(t *testing.T) {
	h, fx := newTestEngine(t, nil)

	rec := get(t, h, "/api/visits/"+itoa(fx.visit.ID)+"/materials")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Materials []models.VisitMaterial `json:"materials"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Materials, 1)
	assert.Equal(t, "Mulch", body.Materials[0].Material.Name)
	assert.Equal(t, 28.0, body.Materials[0].CostAtTime)
}

func TestLatestSnapshotRoute(t *testing.T) {
	h, _ := newTestEngine(t, nil)
	assert.Equal(t, http.StatusNotImplemented, get(t, h, "/api/clients/1/snapshots/latest").Code)

	h, fx := newTestEngine(t, stubSnapshotReader{snap: &models.ProfitabilitySnapshot{RunID: "run-7", ClientID: 1}})
	rec := get(t, h, "/api/clients/"+itoa(fx.oak.ID)+"/snapshots/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"run_id":"run-7"`)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/clients/55/snapshots/latest").Code)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
