package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mamadbah2/landscaper/internal/domain/models"
)

const (
	// CrewSize is the number of crew members billed on every visit.
	CrewSize = 2
	// DefaultHourlyRate is used when no hourly_rate setting is stored.
	DefaultHourlyRate = 25.00
	// DefaultVisitsPerYear is the nominal weekly service year.
	DefaultVisitsPerYear = 52
	monthsPerYear        = 12
)

// Method selects how the average visit is extrapolated to a yearly cost.
type Method string

const (
	// MethodWeekly assumes a fixed number of visits per year (52 by default).
	MethodWeekly Method = "weekly"
	// MethodObserved uses the visit frequency observed between the first and last visit.
	MethodObserved Method = "observed"
)

// ParseMethod validates a projection method name. An empty name selects MethodWeekly.
func ParseMethod(value string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(value))) {
	case "", MethodWeekly:
		return MethodWeekly, nil
	case MethodObserved:
		return MethodObserved, nil
	default:
		return "", fmt.Errorf("unknown projection method %q", value)
	}
}

// Params are the business parameters of a projection run.
type Params struct {
	HourlyRate    float64
	Method        Method
	VisitsPerYear float64
	Now           time.Time
}

func (p Params) normalized() Params {
	if p.HourlyRate < 0 {
		p.HourlyRate = 0
	}
	if p.Method == "" {
		p.Method = MethodWeekly
	}
	if p.VisitsPerYear <= 0 {
		p.VisitsPerYear = DefaultVisitsPerYear
	}
	if p.Now.IsZero() {
		p.Now = time.Now()
	}
	return p
}

// LaborCost is the crew cost of the given number of minutes at the hourly rate.
func LaborCost(minutes, hourlyRate float64) float64 {
	return nonNegative(minutes) / 60 * CrewSize * hourlyRate
}

// Project computes the cost projection and profitability verdict for one client.
func Project(h models.ClientHistory, params Params) models.ClientStatistics {
	p := params.normalized()

	visitCount := len(h.Visits)
	totalDuration := SumDuration(h.Visits)
	avgDuration, _ := MeanDuration(h.Visits)
	shortest, longest := DurationRange(h.Visits)

	configuredMaterials := SumConfiguredCost(h.ClientMaterials, models.MaterialTypeMaterial)
	configuredServices := SumConfiguredCost(h.ClientMaterials, models.MaterialTypeService)
	visitMaterials := SumMaterialCost(h.VisitMaterials, models.MaterialTypeMaterial)
	visitServices := SumMaterialCost(h.VisitMaterials, models.MaterialTypeService)

	totalMaterial := configuredMaterials + visitMaterials
	totalService := configuredServices + visitServices
	totalMaterialsServices := totalMaterial + totalService

	totalLabor := LaborCost(totalDuration, p.HourlyRate)

	var avgCostPerVisit float64
	if visitCount > 0 {
		avgCostPerVisit = (totalLabor + totalMaterialsServices) / float64(visitCount)
	}

	avgLabor := LaborCost(avgDuration, p.HourlyRate)
	visitsPerYear := projectedVisitsPerYear(h.Visits, p)
	projectedLabor := avgLabor * visitsPerYear

	estYearly := projectedLabor + configuredMaterials + configuredServices
	proposedMonthly := estYearly / monthsPerYear
	profitLoss := RoundMoney(nonNegative(h.Client.MonthlyCharge) - proposedMonthly)

	return models.ClientStatistics{
		ClientID:            h.Client.ID,
		ClientName:          h.Client.Name,
		ActualMonthlyCharge: RoundMoney(h.Client.MonthlyCharge),
		HourlyRate:          RoundMoney(p.HourlyRate),

		VisitCount:     visitCount,
		VisitsThisYear: CountInYear(h.Visits, p.Now.Year()),

		ConfiguredMaterialsCostYearly: RoundMoney(configuredMaterials),
		ConfiguredServicesCostYearly:  RoundMoney(configuredServices),
		VisitMaterialCost:             RoundMoney(visitMaterials),
		VisitServiceCost:              RoundMoney(visitServices),
		TotalMaterialCost:             RoundMoney(totalMaterial),
		TotalServiceCost:              RoundMoney(totalService),
		TotalMaterialsServicesCost:    RoundMoney(totalMaterialsServices),

		AvgTimePerVisit: RoundMinutes(avgDuration),
		MinTimePerVisit: RoundMinutes(shortest),
		MaxTimePerVisit: RoundMinutes(longest),
		TotalDuration:   RoundMinutes(totalDuration),

		TotalLaborCost:           RoundMoney(totalLabor),
		AvgLaborCostPerVisit:     RoundMoney(avgLabor),
		AvgCostPerVisit:          RoundMoney(avgCostPerVisit),
		ProjectedVisitsPerYear:   RoundMinutes(visitsPerYear),
		ProjectedYearlyLaborCost: RoundMoney(projectedLabor),
		EstYearlyCost:            RoundMoney(estYearly),
		ProposedMonthlyRate:      RoundMoney(proposedMonthly),
		MonthlyProfitLoss:        profitLoss,
		IsProfitable:             profitLoss >= 0,
	}
}

// ProjectAll projects every client and orders the results by client name, then id.
func ProjectAll(histories []models.ClientHistory, params Params) []models.ClientStatistics {
	p := params.normalized()

	stats := make([]models.ClientStatistics, 0, len(histories))
	for _, h := range histories {
		stats = append(stats, Project(h, p))
	}

	SortStatistics(stats)
	return stats
}

// SortStatistics orders statistics by client name ascending, breaking ties on client id.
func SortStatistics(stats []models.ClientStatistics) {
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].ClientName != stats[j].ClientName {
			return stats[i].ClientName < stats[j].ClientName
		}
		return stats[i].ClientID < stats[j].ClientID
	})
}

func projectedVisitsPerYear(visits []models.Visit, p Params) float64 {
	if p.Method == MethodObserved {
		return ObservedVisitsPerYear(visits)
	}
	return p.VisitsPerYear
}
