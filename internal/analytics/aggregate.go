// Package analytics turns raw visit and material rows into per-client cost projections and
// flags visits whose duration looks like a data-entry error. Every function here is pure:
// inputs are treated as an immutable snapshot and are never modified.
package analytics

import (
	"time"

	"github.com/mamadbah2/landscaper/internal/domain/models"
)

// SumDuration adds up visit durations in minutes. Negative durations count as zero.
func SumDuration(visits []models.Visit) float64 {
	var total float64
	for _, v := range visits {
		total += nonNegative(v.DurationMinutes)
	}
	return total
}

// MeanDuration returns the mean visit duration and false when there is nothing to average.
func MeanDuration(visits []models.Visit) (float64, bool) {
	if len(visits) == 0 {
		return 0, false
	}
	return SumDuration(visits) / float64(len(visits)), true
}

// DurationRange returns the shortest and longest visit durations, or zeros for no visits.
func DurationRange(visits []models.Visit) (shortest, longest float64) {
	for i, v := range visits {
		d := nonNegative(v.DurationMinutes)
		if i == 0 || d < shortest {
			shortest = d
		}
		if i == 0 || d > longest {
			longest = d
		}
	}
	return shortest, longest
}

// GroupByClient buckets visits by client id, preserving input order within each bucket.
func GroupByClient(visits []models.Visit) map[int64][]models.Visit {
	groups := make(map[int64][]models.Visit)
	for _, v := range visits {
		groups[v.ClientID] = append(groups[v.ClientID], v)
	}
	return groups
}

// CountInYear counts the visits whose date falls in the given calendar year.
func CountInYear(visits []models.Visit, year int) int {
	var n int
	for _, v := range visits {
		if v.VisitDate.Year() == year {
			n++
		}
	}
	return n
}

// SumMaterialCost adds quantity * cost_at_time over visit materials of the given type.
func SumMaterialCost(items []models.VisitMaterial, kind models.MaterialType) float64 {
	var total float64
	for _, item := range items {
		if item.Material.MaterialType != kind {
			continue
		}
		total += nonNegative(item.Quantity) * nonNegative(item.CostAtTime)
	}
	return total
}

// SumConfiguredCost adds effective_cost * multiplier over enabled client materials of the
// given type.
func SumConfiguredCost(items []models.ClientMaterial, kind models.MaterialType) float64 {
	var total float64
	for _, item := range items {
		if !item.IsEnabled || item.Material.MaterialType != kind {
			continue
		}
		total += nonNegative(item.EffectiveCost()) * nonNegative(item.Multiplier)
	}
	return total
}

// ObservedVisitsPerYear extrapolates the visit frequency seen between the first and last
// visit to a 365-day year. A single-day history yields the raw visit count.
func ObservedVisitsPerYear(visits []models.Visit) float64 {
	if len(visits) == 0 {
		return 0
	}

	first, last := visits[0].VisitDate, visits[0].VisitDate
	for _, v := range visits[1:] {
		if v.VisitDate.Before(first) {
			first = v.VisitDate
		}
		if v.VisitDate.After(last) {
			last = v.VisitDate
		}
	}

	days := int(dateOnly(last).Sub(dateOnly(first)).Hours() / 24)
	if days <= 0 {
		return float64(len(visits))
	}
	return float64(len(visits)) / float64(days) * 365
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
