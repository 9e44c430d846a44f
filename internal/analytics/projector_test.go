package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/landscaper/internal/domain/models"
)

func params() Params {
	return Params{HourlyRate: DefaultHourlyRate, Now: fixedNow}
}

func TestProjectZeroVisits(t *testing.T) {
	h := models.ClientHistory{
		Client: models.Client{ID: 1, Name: "New Client", MonthlyCharge: 50},
		ClientMaterials: []models.ClientMaterial{
			configured(models.MaterialTypeMaterial, 120, nil, 1),
			configured(models.MaterialTypeService, 40, nil, 3),
		},
	}

	stats := Project(h, params())

	assert.Zero(t, stats.VisitCount)
	assert.Zero(t, stats.VisitsThisYear)
	assert.Zero(t, stats.AvgTimePerVisit)
	assert.Zero(t, stats.MinTimePerVisit)
	assert.Zero(t, stats.MaxTimePerVisit)
	assert.Zero(t, stats.TotalDuration)
	assert.Zero(t, stats.TotalLaborCost)
	assert.Zero(t, stats.AvgCostPerVisit)
	assert.Zero(t, stats.ProjectedYearlyLaborCost)
	assert.Equal(t, 240.0, stats.EstYearlyCost)
	assert.Equal(t, 20.0, stats.ProposedMonthlyRate)
	assert.Equal(t, 30.0, stats.MonthlyProfitLoss)
	assert.True(t, stats.IsProfitable)
}

func TestProjectLaborCost(t *testing.T) {
	h := models.ClientHistory{
		Client: models.Client{ID: 1, Name: "Oak Lane"},
		Visits: visitsFor(1, 120),
	}

	stats := Project(h, params())

	assert.Equal(t, 100.0, stats.TotalLaborCost)
	assert.Equal(t, 100.0, stats.AvgCostPerVisit)
}

func TestProjectYearlyExtrapolation(t *testing.T) {
	h := models.ClientHistory{
		Client: models.Client{ID: 1, Name: "Maple Court", MonthlyCharge: 200},
		Visits: visitsFor(1, 60),
	}

	stats := Project(h, params())

	assert.Equal(t, 60.0, stats.AvgTimePerVisit)
	assert.Equal(t, 50.0, stats.AvgLaborCostPerVisit)
	assert.Equal(t, 2600.0, stats.ProjectedYearlyLaborCost)
	assert.Equal(t, 2600.0, stats.EstYearlyCost)
	assert.Equal(t, 216.67, stats.ProposedMonthlyRate)
	assert.Equal(t, -16.67, stats.MonthlyProfitLoss)
	assert.False(t, stats.IsProfitable)
}

func TestProjectBreakEvenIsProfitable(t *testing.T) {
	// 30 min -> 25/visit -> 1300/year -> 108.33/month
	h := models.ClientHistory{
		Client: models.Client{ID: 1, Name: "Exact", MonthlyCharge: 1300.0 / 12},
		Visits: visitsFor(1, 30),
	}

	stats := Project(h, params())

	assert.Equal(t, 108.33, stats.ProposedMonthlyRate)
	assert.Equal(t, 0.0, stats.MonthlyProfitLoss)
	assert.True(t, stats.IsProfitable)
}

func TestProjectServiceSplit(t *testing.T) {
	h := models.ClientHistory{
		Client: models.Client{ID: 1, Name: "Split"},
		ClientMaterials: []models.ClientMaterial{
			configured(models.MaterialTypeService, 99, costPtr(10), 3),
		},
	}

	stats := Project(h, params())

	assert.Equal(t, 30.0, stats.ConfiguredServicesCostYearly)
	assert.Zero(t, stats.ConfiguredMaterialsCostYearly)
}

func TestProjectCombinesConfiguredAndLoggedCosts(t *testing.T) {
	visits := visitsFor(7, 60, 120)
	h := models.ClientHistory{
		Client: models.Client{ID: 7, Name: "Combined", MonthlyCharge: 500},
		Visits: visits,
		VisitMaterials: []models.VisitMaterial{
			logged(visits[0].ID, models.MaterialTypeMaterial, 2, 10),
			logged(visits[1].ID, models.MaterialTypeService, 1, 35),
		},
		ClientMaterials: []models.ClientMaterial{
			configured(models.MaterialTypeMaterial, 50, nil, 2),
		},
	}

	stats := Project(h, params())

	assert.Equal(t, 2, stats.VisitCount)
	assert.Equal(t, 20.0, stats.VisitMaterialCost)
	assert.Equal(t, 35.0, stats.VisitServiceCost)
	assert.Equal(t, 120.0, stats.TotalMaterialCost)
	assert.Equal(t, 35.0, stats.TotalServiceCost)
	assert.Equal(t, 155.0, stats.TotalMaterialsServicesCost)
	assert.Equal(t, 180.0, stats.TotalDuration)
	assert.Equal(t, 150.0, stats.TotalLaborCost)
	assert.Equal(t, 152.5, stats.AvgCostPerVisit)
	assert.Equal(t, 60.0, stats.MinTimePerVisit)
	assert.Equal(t, 120.0, stats.MaxTimePerVisit)
	// 90 min avg -> 75/visit * 52 = 3900 labor + 100 configured
	assert.Equal(t, 3900.0, stats.ProjectedYearlyLaborCost)
	assert.Equal(t, 4000.0, stats.EstYearlyCost)
	assert.Equal(t, 333.33, stats.ProposedMonthlyRate)
	assert.Equal(t, 166.67, stats.MonthlyProfitLoss)
}

func TestProjectVisitsThisYear(t *testing.T) {
	h := models.ClientHistory{
		Client: models.Client{ID: 1, Name: "Years"},
		Visits: []models.Visit{
			{ClientID: 1, VisitDate: day(2026, 1, 5), DurationMinutes: 30},
			{ClientID: 1, VisitDate: day(2025, 12, 30), DurationMinutes: 30},
			{ClientID: 1, VisitDate: day(2026, 6, 1), DurationMinutes: 30},
		},
	}

	stats := Project(h, params())

	assert.Equal(t, 3, stats.VisitCount)
	assert.Equal(t, 2, stats.VisitsThisYear)
}

func TestProjectObservedMethod(t *testing.T) {
	h := models.ClientHistory{
		Client: models.Client{ID: 1, Name: "Observed"},
		Visits: []models.Visit{
			{ClientID: 1, VisitDate: day(2026, 1, 1), DurationMinutes: 60},
			{ClientID: 1, VisitDate: day(2026, 12, 31), DurationMinutes: 60},
		},
	}

	p := params()
	p.Method = MethodObserved
	stats := Project(h, p)

	// 2 visits over 364 days -> ~2.005 visits/year at 50 each
	assert.Equal(t, 2.0, stats.ProjectedVisitsPerYear)
	assert.Equal(t, RoundMoney(50*2.0/364*365), stats.ProjectedYearlyLaborCost)
}

func TestProjectRounding(t *testing.T) {
	visits := visitsFor(1, 33.333, 41.27, 17.049)
	h := models.ClientHistory{
		Client: models.Client{ID: 1, Name: "Rounding", MonthlyCharge: 123.456},
		Visits: visits,
		VisitMaterials: []models.VisitMaterial{
			logged(visits[0].ID, models.MaterialTypeMaterial, 1.333, 2.117),
		},
		ClientMaterials: []models.ClientMaterial{
			configured(models.MaterialTypeService, 1.115, nil, 1),
		},
	}

	stats := Project(h, params())

	money := []float64{
		stats.ActualMonthlyCharge, stats.ConfiguredServicesCostYearly, stats.VisitMaterialCost,
		stats.TotalMaterialCost, stats.TotalMaterialsServicesCost, stats.TotalLaborCost,
		stats.AvgCostPerVisit, stats.ProjectedYearlyLaborCost, stats.EstYearlyCost,
		stats.ProposedMonthlyRate, stats.MonthlyProfitLoss,
	}
	for _, v := range money {
		assertPlaces(t, v, 2)
	}

	minutes := []float64{stats.AvgTimePerVisit, stats.MinTimePerVisit, stats.MaxTimePerVisit, stats.TotalDuration}
	for _, v := range minutes {
		assertPlaces(t, v, 1)
	}

	assert.Equal(t, 1.12, stats.ConfiguredServicesCostYearly)
	assert.Equal(t, 123.46, stats.ActualMonthlyCharge)
	assert.Equal(t, 30.6, stats.AvgTimePerVisit)
}

func TestProjectAllMatchesSingleProjection(t *testing.T) {
	histories := []models.ClientHistory{
		{Client: models.Client{ID: 3, Name: "Willow"}, Visits: visitsFor(3, 45, 50)},
		{Client: models.Client{ID: 1, Name: "Birch", MonthlyCharge: 300}, Visits: visitsFor(1, 120)},
		{Client: models.Client{ID: 2, Name: "Aspen"}},
		{Client: models.Client{ID: 4, Name: "Birch", MonthlyCharge: 10}, Visits: visitsFor(4, 15)},
	}

	all := ProjectAll(histories, params())
	require.Len(t, all, 4)

	names := []string{all[0].ClientName, all[1].ClientName, all[2].ClientName, all[3].ClientName}
	assert.Equal(t, []string{"Aspen", "Birch", "Birch", "Willow"}, names)
	assert.Equal(t, int64(1), all[1].ClientID)
	assert.Equal(t, int64(4), all[2].ClientID)

	byID := make(map[int64]models.ClientStatistics)
	for _, s := range all {
		byID[s.ClientID] = s
	}
	for _, h := range histories {
		assert.Equal(t, Project(h, params()), byID[h.Client.ID])
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, MethodWeekly, m)

	m, err = ParseMethod(" Observed ")
	require.NoError(t, err)
	assert.Equal(t, MethodObserved, m)

	_, err = ParseMethod("regression")
	assert.Error(t, err)
}

func assertPlaces(t *testing.T, v float64, places int) {
	t.Helper()
	scaled := v * math.Pow10(places)
	assert.InDelta(t, math.Round(scaled), scaled, 1e-6, "value %v has more than %d decimals", v, places)
}
