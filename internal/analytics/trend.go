package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/mamadbah2/landscaper/internal/domain/models"
)

// TrendMode selects what a monthly trend averages.
type TrendMode string

const (
	TrendTime TrendMode = "time"
	TrendCost TrendMode = "cost"
)

// ParseTrendMode validates a trend mode name; empty selects TrendTime.
func ParseTrendMode(value string) (TrendMode, error) {
	switch TrendMode(value) {
	case "", TrendTime:
		return TrendTime, nil
	case TrendCost:
		return TrendCost, nil
	default:
		return "", fmt.Errorf("unknown trend mode %q", value)
	}
}

// MonthlyAverages averages visit time (minutes) or visit cost (labor plus logged materials)
// per calendar month of the given year. Months without visits are omitted.
func MonthlyAverages(visits []models.Visit, items []models.VisitMaterial, year int, mode TrendMode, hourlyRate float64) []models.MonthlyAverage {
	materialCost := make(map[int64]float64)
	for _, item := range items {
		materialCost[item.VisitID] += nonNegative(item.Quantity) * nonNegative(item.CostAtTime)
	}

	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[time.Month]*bucket)

	for _, v := range visits {
		if v.VisitDate.Year() != year {
			continue
		}

		value := nonNegative(v.DurationMinutes)
		if mode == TrendCost {
			value = LaborCost(v.DurationMinutes, hourlyRate) + materialCost[v.ID]
		}

		b, ok := buckets[v.VisitDate.Month()]
		if !ok {
			b = &bucket{}
			buckets[v.VisitDate.Month()] = b
		}
		b.sum += value
		b.count++
	}

	points := make([]models.MonthlyAverage, 0, len(buckets))
	for month, b := range buckets {
		avg := b.sum / float64(b.count)
		if mode == TrendCost {
			avg = RoundMoney(avg)
		} else {
			avg = RoundMinutes(avg)
		}
		points = append(points, models.MonthlyAverage{
			Month:   time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
			Average: avg,
			Visits:  b.count,
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Month.Before(points[j].Month) })
	return points
}
