package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/landscaper/internal/domain/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// flags are package level and survive between executions
	statsAll, statsLosing = false, false
	anomalyThreshold, anomalyClient = 0, 0
	trendMode, trendYear = "time", 0
	asJSON, demoMode, envFile = false, false, ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--demo"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestStatsTable(t *testing.T) {
	out, err := run(t, "stats")
	require.NoError(t, err)

	assert.Contains(t, out, "PROPOSED/MO")
	assert.Contains(t, out, "Cedar Ridge")
	assert.Contains(t, out, "Maple Street HOA")
	assert.NotContains(t, out, "Elm Court")
}

func TestStatsAllIncludesInactive(t *testing.T) {
	out, err := run(t, "stats", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Elm Court")
}

func TestStatsJSONSingleClient(t *testing.T) {
	out, err := run(t, "--json", "stats", "4")
	require.NoError(t, err)

	var st models.ClientStatistics
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, "Maple Street HOA", st.ClientName)
	assert.Equal(t, 6, st.VisitCount)
	assert.Equal(t, 360.0, st.ConfiguredServicesCostYearly)
}

func TestStatsUnknownClient(t *testing.T) {
	_, err := run(t, "stats", "999")
	assert.EqualError(t, err, "client 999 not found")

	_, err = run(t, "stats", "abc")
	assert.Error(t, err)
}

func TestStatsLosingFilter(t *testing.T) {
	out, err := run(t, "--json", "stats", "--losing")
	require.NoError(t, err)

	var stats []models.ClientStatistics
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	for _, st := range stats {
		assert.False(t, st.IsProfitable, st.ClientName)
	}
}

func TestAnomalies(t *testing.T) {
	out, err := run(t, "--json", "anomalies")
	require.NoError(t, err)

	var flagged []models.AnomalousVisit
	require.NoError(t, json.Unmarshal([]byte(out), &flagged))
	require.Len(t, flagged, 1)
	assert.Equal(t, "Pine Hollow", flagged[0].ClientName)
	assert.Equal(t, 240.0, flagged[0].DurationMinutes)
	assert.Equal(t, 328.8, flagged[0].PercentOfAvg)

	out, err = run(t, "anomalies", "--threshold", "1000")
	require.NoError(t, err)
	assert.Equal(t, "No anomalous visits\n", out)
}

func TestTodo(t *testing.T) {
	out, err := run(t, "todo")
	require.NoError(t, err)

	assert.Contains(t, out, "Visits flagged for review (1)")
	assert.Contains(t, out, "Unusual visit durations (1)")
	assert.Contains(t, out, "Clients without materials or services (1)\n  - Pine Hollow")
	assert.Contains(t, out, "Clients missing contact details (1)\n  - Pine Hollow")
}

func TestTrendRejectsBadMode(t *testing.T) {
	_, err := run(t, "trend", "5", "--mode", "weekly")
	assert.Error(t, err)

	_, err = run(t, "trend", "5", "--year", "1990")
	assert.NoError(t, err)
}

func TestSnapshotNeedsStorage(t *testing.T) {
	_, err := run(t, "snapshot")
	assert.Error(t, err)
}
