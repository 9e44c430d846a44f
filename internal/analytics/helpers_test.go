package analytics

import (
	"time"

	"github.com/mamadbah2/landscaper/internal/domain/models"
)

var fixedNow = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func visitsFor(clientID int64, durations ...float64) []models.Visit {
	visits := make([]models.Visit, 0, len(durations))
	for i, d := range durations {
		visits = append(visits, models.Visit{
			ID:              clientID*100 + int64(i) + 1,
			ClientID:        clientID,
			VisitDate:       fixedNow.AddDate(0, 0, -7*i),
			DurationMinutes: d,
		})
	}
	return visits
}

func costPtr(v float64) *float64 { return &v }

func configured(kind models.MaterialType, cost float64, custom *float64, multiplier float64) models.ClientMaterial {
	return models.ClientMaterial{
		Material:   models.Material{DefaultCost: cost, MaterialType: kind},
		CustomCost: custom,
		Multiplier: multiplier,
		IsEnabled:  true,
	}
}

func logged(visitID int64, kind models.MaterialType, qty, cost float64) models.VisitMaterial {
	return models.VisitMaterial{
		VisitID:    visitID,
		Material:   models.Material{MaterialType: kind},
		Quantity:   qty,
		CostAtTime: cost,
	}
}
