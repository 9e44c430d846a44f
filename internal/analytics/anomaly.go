package analytics

import (
	"sort"

	"github.com/mamadbah2/landscaper/internal/domain/models"
)

const (
	// DefaultThresholdPercent flags visits lasting three times the client's average or more.
	DefaultThresholdPercent = 300.0
	minVisitsForBaseline    = 2
)

// DetectAnomalies returns the visits whose duration is at least thresholdPercent of their
// own client's mean visit duration, most anomalous first. Clients with fewer than two visits
// have no baseline and never produce anomalies. A non-positive threshold selects
// DefaultThresholdPercent.
func DetectAnomalies(visits []models.Visit, thresholdPercent float64) []models.AnomalousVisit {
	if thresholdPercent <= 0 {
		thresholdPercent = DefaultThresholdPercent
	}

	type candidate struct {
		row     models.AnomalousVisit
		percent float64
	}
	var found []candidate

	for _, group := range GroupByClient(visits) {
		if len(group) < minVisitsForBaseline {
			continue
		}

		avg, ok := MeanDuration(group)
		if !ok || avg == 0 {
			continue
		}

		for _, v := range group {
			percent := nonNegative(v.DurationMinutes) / avg * 100
			if percent < thresholdPercent {
				continue
			}
			found = append(found, candidate{
				row: models.AnomalousVisit{
					Visit:        v,
					AvgDuration:  RoundMinutes(avg),
					TotalVisits:  len(group),
					PercentOfAvg: roundTo(percent, percentPlaces),
				},
				percent: percent,
			})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if a.percent != b.percent {
			return a.percent > b.percent
		}
		if !a.row.VisitDate.Equal(b.row.VisitDate) {
			return a.row.VisitDate.After(b.row.VisitDate)
		}
		return a.row.ID < b.row.ID
	})

	result := make([]models.AnomalousVisit, 0, len(found))
	for _, c := range found {
		result = append(result, c.row)
	}
	return result
}
