package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/landscaper/internal/analytics"
	"github.com/mamadbah2/landscaper/internal/domain/models"
	"github.com/mamadbah2/landscaper/internal/repository/memory"
)

var testNow = time.Date(2026, time.May, 4, 9, 0, 0, 0, time.UTC)

type stubSnapshots struct {
	saved []models.ProfitabilitySnapshot
	err   error
}

func (s *stubSnapshots) SaveSnapshots(_ context.Context, snapshots []models.ProfitabilitySnapshot) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, snapshots...)
	return nil
}

type failingStore struct {
	*memory.Store
}

// historyStore counts single-read history loads and fails the per-table lookups.
type historyStore struct {
	*memory.Store
	loads int
}

func (h *historyStore) ClientHistory(ctx context.Context, clientID int64) (*models.ClientHistory, error) {
	h.loads++
	dataset, err := h.Store.Snapshot(ctx, false)
	if err != nil {
		return nil, err
	}
	for _, hist := range dataset.Histories {
		if hist.Client.ID == clientID {
			return &hist, nil
		}
	}
	return nil, nil
}

func (*historyStore) ClientVisits(context.Context, int64) ([]models.Visit, error) {
	return nil, errors.New("per-table lookup")
}

func (failingStore) Snapshot(context.Context, bool) (*models.Dataset, error) {
	return nil, errors.New("connection reset")
}

func newTestService(t *testing.T, store Store, snapshots SnapshotRepository) *Service {
	t.Helper()
	svc := NewService(store, snapshots, Options{}, nil)
	svc.now = func() time.Time { return testNow }
	return svc
}

// seed builds a store with two active clients, one inactive client and a mix of
// configured and logged materials.
func seed() *memory.Store {
	store := memory.NewStore()

	mulch := store.AddMaterial(models.Material{Name: "Mulch", DefaultCost: 30, MaterialType: models.MaterialTypeMaterial})
	fert := store.AddMaterial(models.Material{Name: "Fertilization", DefaultCost: 45, MaterialType: models.MaterialTypeService})

	oak := store.AddClient(models.Client{Name: "Oak Lane", MonthlyCharge: 400, IsActive: true, Email: "oak@example.com", Address: "1 Oak Lane"})
	birch := store.AddClient(models.Client{Name: "Birch Court", MonthlyCharge: 100, IsActive: true})
	store.AddClient(models.Client{Name: "Aspen", MonthlyCharge: 10, IsActive: false, Phone: "555", Address: "2 Aspen"})

	for i, d := range []float64{60, 60, 60, 300} {
		store.AddVisit(models.Visit{ClientID: oak.ID, VisitDate: testNow.AddDate(0, 0, -7*(i+1)), DurationMinutes: d})
	}
	v := store.AddVisit(models.Visit{ClientID: birch.ID, VisitDate: testNow.AddDate(0, -1, 0), DurationMinutes: 90, NeedsReview: true})

	store.AssignMaterial(oak.ID, fert.ID, nil, 4)
	store.LogMaterial(v.ID, mulch.ID, 2, 28)

	return store
}

func TestHourlyRate(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, nil)

	rate, err := svc.HourlyRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25.0, rate)

	store.SetSetting(HourlyRateKey, " 32.50 ")
	rate, err = svc.HourlyRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 32.5, rate)

	store.SetSetting(HourlyRateKey, "not a number")
	rate, err = svc.HourlyRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25.0, rate)
}

func TestClientStatistics(t *testing.T) {
	store := seed()
	svc := newTestService(t, store, nil)

	clients, err := store.Clients(context.Background(), true)
	require.NoError(t, err)
	oak := clients[1]
	require.Equal(t, "Oak Lane", oak.Name)

	stats, err := svc.ClientStatistics(context.Background(), oak.ID)
	require.NoError(t, err)
	require.NotNil(t, stats)

	assert.Equal(t, 4, stats.VisitCount)
	assert.Equal(t, 120.0, stats.AvgTimePerVisit)
	assert.Equal(t, 180.0, stats.ConfiguredServicesCostYearly)
	// 120 min avg -> 100/visit * 52 = 5200 + 180
	assert.Equal(t, 5380.0, stats.EstYearlyCost)
	assert.Equal(t, 448.33, stats.ProposedMonthlyRate)
	assert.False(t, stats.IsProfitable)
}

func TestClientStatisticsUsesSingleReadHistory(t *testing.T) {
	store := &historyStore{Store: seed()}
	svc := newTestService(t, store, nil)

	all, err := svc.AllClientStatistics(context.Background(), true)
	require.NoError(t, err)
	require.NotEmpty(t, all)

	st, err := svc.ClientStatistics(context.Background(), all[0].ClientID)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, all[0], *st)
	assert.Equal(t, 1, store.loads)

	missing, err := svc.ClientStatistics(context.Background(), 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestClientStatisticsMissingClient(t *testing.T) {
	svc := newTestService(t, seed(), nil)

	stats, err := svc.ClientStatistics(context.Background(), 9999)
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestClientStatisticsInvalidID(t *testing.T) {
	svc := newTestService(t, seed(), nil)

	_, err := svc.ClientStatistics(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidClientID)
}

func TestAllClientStatisticsMatchesSingleClient(t *testing.T) {
	store := seed()
	store.SetSetting(HourlyRateKey, "30")
	svc := newTestService(t, store, nil)

	all, err := svc.AllClientStatistics(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Aspen", all[0].ClientName)
	assert.Equal(t, "Birch Court", all[1].ClientName)

	for _, st := range all {
		single, err := svc.ClientStatistics(context.Background(), st.ClientID)
		require.NoError(t, err)
		assert.Equal(t, *single, st)
	}

	active, err := svc.AllClientStatistics(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestAllClientStatisticsPropagatesStoreErrors(t *testing.T) {
	svc := newTestService(t, failingStore{memory.NewStore()}, nil)

	_, err := svc.AllClientStatistics(context.Background(), true)
	assert.Error(t, err)
}

func TestAnomalousVisits(t *testing.T) {
	svc := newTestService(t, seed(), nil)

	flagged, err := svc.AnomalousVisits(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, flagged)

	flagged, err = svc.AnomalousVisits(context.Background(), 200, 0)
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, "Oak Lane", flagged[0].ClientName)
	assert.Equal(t, 250.0, flagged[0].PercentOfAvg)

	flagged, err = svc.AnomalousVisits(context.Background(), 200, flagged[0].ClientID+1000)
	require.NoError(t, err)
	assert.Empty(t, flagged)
}

func TestAnomalousVisitsForInactiveClient(t *testing.T) {
	store := seed()
	elm := store.AddClient(models.Client{Name: "Elm", MonthlyCharge: 50, IsActive: false})
	for i, d := range []float64{30, 30, 30, 150} {
		store.AddVisit(models.Visit{ClientID: elm.ID, VisitDate: testNow.AddDate(0, 0, -7*(i+1)), DurationMinutes: d})
	}
	svc := newTestService(t, store, nil)

	flagged, err := svc.AnomalousVisits(context.Background(), 200, 0)
	require.NoError(t, err)
	for _, a := range flagged {
		assert.NotEqual(t, elm.ID, a.ClientID)
	}

	flagged, err = svc.AnomalousVisits(context.Background(), 200, elm.ID)
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, "Elm", flagged[0].ClientName)
	assert.Equal(t, 150.0, flagged[0].DurationMinutes)
}

func TestTodoList(t *testing.T) {
	svc := newTestService(t, seed(), nil)

	todo, err := svc.TodoList(context.Background())
	require.NoError(t, err)

	require.Len(t, todo.VisitsNeedingReview, 1)
	assert.Equal(t, 90.0, todo.VisitsNeedingReview[0].DurationMinutes)

	require.Len(t, todo.ClientsMissingServices, 1)
	assert.Equal(t, "Birch Court", todo.ClientsMissingServices[0].Name)

	require.Len(t, todo.ClientsMissingContact, 1)
	assert.Equal(t, "Birch Court", todo.ClientsMissingContact[0].Name)

	assert.Empty(t, todo.AnomalousVisits)
}

func TestMonthlyTrend(t *testing.T) {
	store := seed()
	svc := newTestService(t, store, nil)

	clients, err := store.Clients(context.Background(), true)
	require.NoError(t, err)
	birch := clients[0]

	points, err := svc.MonthlyTrend(context.Background(), birch.ID, 0, analytics.TrendCost)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, time.April, points[0].Month.Month())
	// 90 min -> 75 labor + 56 mulch
	assert.Equal(t, 131.0, points[0].Average)

	points, err = svc.MonthlyTrend(context.Background(), 9999, 2026, analytics.TrendTime)
	require.NoError(t, err)
	assert.Nil(t, points)
}

func TestCaptureSnapshot(t *testing.T) {
	snapshots := &stubSnapshots{}
	svc := newTestService(t, seed(), snapshots)

	runID, count, err := svc.CaptureSnapshot(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, runID)
	assert.Equal(t, 2, count)
	require.Len(t, snapshots.saved, 2)
	for _, snap := range snapshots.saved {
		assert.Equal(t, runID, snap.RunID)
		assert.Equal(t, testNow, snap.TakenAt)
		assert.Equal(t, snap.ClientID, snap.Statistics.ClientID)
	}
}

func TestCaptureSnapshotDisabled(t *testing.T) {
	svc := newTestService(t, seed(), nil)

	_, _, err := svc.CaptureSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotsDisabled)
}

func TestGenerateWeeklyReport(t *testing.T) {
	svc := newTestService(t, seed(), nil)

	report, err := svc.GenerateWeeklyReport(context.Background(), testNow)
	require.NoError(t, err)

	assert.Contains(t, report, "Weekly profitability report (2026-05-04)")
	assert.Contains(t, report, "Active clients: 2 (0 profitable, 2 losing money)")
	assert.Contains(t, report, "- Oak Lane: charged $400.00, proposed $448.33 (-$48.33)")
	assert.Contains(t, report, "Visits with unusual durations: 0")
}

func TestGenerateWeeklyReportWithoutClients(t *testing.T) {
	svc := newTestService(t, memory.NewStore(), nil)

	report, err := svc.GenerateWeeklyReport(context.Background(), testNow)
	require.NoError(t, err)
	assert.Contains(t, report, "No active clients yet.")
}

func TestFormatClientSummary(t *testing.T) {
	summary := FormatClientSummary(models.ClientStatistics{
		ClientName:          "Oak Lane",
		ProposedMonthlyRate: 216.67,
		ActualMonthlyCharge: 250,
		MonthlyProfitLoss:   33.33,
		IsProfitable:        true,
	})

	assert.Contains(t, summary, "Oak Lane: PROFITABLE")
	assert.Contains(t, summary, "Monthly profit/loss: +$33.33")
}
