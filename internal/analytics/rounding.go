package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	moneyPlaces    = 2
	durationPlaces = 1
	percentPlaces  = 1
)

// RoundMoney rounds a currency amount to cents, half away from zero.
func RoundMoney(v float64) float64 {
	return roundTo(v, moneyPlaces)
}

// RoundMinutes rounds a duration in minutes to one decimal place.
func RoundMinutes(v float64) float64 {
	return roundTo(v, durationPlaces)
}

func roundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
