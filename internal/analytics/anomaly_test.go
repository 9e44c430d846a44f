package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectAnomaliesThreshold(t *testing.T) {
	visits := visitsFor(1, 60, 60, 60, 300)

	assert.Empty(t, DetectAnomalies(visits, 300))

	flagged := DetectAnomalies(visits, 200)
	require.Len(t, flagged, 1)
	assert.Equal(t, 300.0, flagged[0].DurationMinutes)
	assert.Equal(t, 120.0, flagged[0].AvgDuration)
	assert.Equal(t, 250.0, flagged[0].PercentOfAvg)
	assert.Equal(t, 4, flagged[0].TotalVisits)
}

func TestDetectAnomaliesIgnoresSingleVisitClients(t *testing.T) {
	visits := append(visitsFor(1, 500), visitsFor(2, 30, 30)...)

	for _, threshold := range []float64{1, 50, 300} {
		for _, a := range DetectAnomalies(visits, threshold) {
			assert.NotEqual(t, int64(1), a.ClientID)
		}
	}
}

func TestDetectAnomaliesUsesEachClientsOwnAverage(t *testing.T) {
	visits := append(visitsFor(1, 10, 10, 10, 10, 100), visitsFor(2, 100, 100, 100)...)

	flagged := DetectAnomalies(visits, 300)

	require.Len(t, flagged, 1)
	assert.Equal(t, int64(1), flagged[0].ClientID)
	assert.Equal(t, 28.0, flagged[0].AvgDuration)
	assert.Equal(t, 357.1, flagged[0].PercentOfAvg)
}

func TestDetectAnomaliesSortsMostAnomalousFirst(t *testing.T) {
	visits := append(visitsFor(1, 10, 10, 10, 70), visitsFor(2, 10, 10, 10, 10, 10, 10, 10, 10, 100)...)

	flagged := DetectAnomalies(visits, 200)

	require.Len(t, flagged, 2)
	assert.Greater(t, flagged[0].PercentOfAvg, flagged[1].PercentOfAvg)
	assert.Equal(t, int64(2), flagged[0].ClientID)
}

func TestDetectAnomaliesSkipsZeroAverage(t *testing.T) {
	assert.Empty(t, DetectAnomalies(visitsFor(1, 0, 0, 0), 100))
}

func TestDetectAnomaliesEmptyInput(t *testing.T) {
	flagged := DetectAnomalies(nil, 300)
	assert.NotNil(t, flagged)
	assert.Empty(t, flagged)
}

func TestDetectAnomaliesDefaultsThreshold(t *testing.T) {
	visits := visitsFor(1, 10, 10, 10, 10, 10, 10, 10, 10, 10, 200)

	assert.Equal(t, DetectAnomalies(visits, DefaultThresholdPercent), DetectAnomalies(visits, 0))
}

func TestDetectAnomaliesCarriesVisitUnchanged(t *testing.T) {
	visits := visitsFor(1, 10, 10, 10, 100)
	visits[3].NeedsReview = true
	visits[3].Notes = "gate locked"
	want := visits[3]

	flagged := DetectAnomalies(visits, 200)

	require.Len(t, flagged, 1)
	assert.Equal(t, want, flagged[0].Visit)
	assert.Equal(t, want, visits[3])
}
