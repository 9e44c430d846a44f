package reporting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mamadbah2/landscaper/internal/domain/models"
)

const (
	dateLayout      = "2006-01-02"
	digestTopLosses = 5
)

// GenerateWeeklyReport builds the plain-text profitability digest sent to the owner.
func (s *Service) GenerateWeeklyReport(ctx context.Context, now time.Time) (string, error) {
	stats, err := s.AllClientStatistics(ctx, true)
	if err != nil {
		return "", fmt.Errorf("project clients: %w", err)
	}

	anomalies, err := s.AnomalousVisits(ctx, 0, 0)
	if err != nil {
		return "", fmt.Errorf("scan anomalies: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly profitability report (%s)\n", now.Format(dateLayout))

	if len(stats) == 0 {
		b.WriteString("No active clients yet.")
		return b.String(), nil
	}

	var losing []models.ClientStatistics
	for _, st := range stats {
		if !st.IsProfitable {
			losing = append(losing, st)
		}
	}

	fmt.Fprintf(&b, "Active clients: %d (%d profitable, %d losing money)\n",
		len(stats), len(stats)-len(losing), len(losing))

	if len(losing) > 0 {
		sort.SliceStable(losing, func(i, j int) bool {
			return losing[i].MonthlyProfitLoss < losing[j].MonthlyProfitLoss
		})
		b.WriteString("Biggest monthly losses:\n")
		for i, st := range losing {
			if i == digestTopLosses {
				break
			}
			fmt.Fprintf(&b, "- %s: charged $%.2f, proposed $%.2f (%s)\n",
				st.ClientName, st.ActualMonthlyCharge, st.ProposedMonthlyRate, signedMoney(st.MonthlyProfitLoss))
		}
	}

	fmt.Fprintf(&b, "Visits with unusual durations: %d", len(anomalies))
	return b.String(), nil
}

// FormatClientSummary renders one client's statistics for a chat reply.
func FormatClientSummary(st models.ClientStatistics) string {
	verdict := "PROFITABLE"
	if !st.IsProfitable {
		verdict = "LOSING MONEY"
	}

	lines := []string{
		fmt.Sprintf("%s: %s", st.ClientName, verdict),
		fmt.Sprintf("Visits: %d total, %d this year", st.VisitCount, st.VisitsThisYear),
		fmt.Sprintf("Avg time per visit: %.1f min (%.1f-%.1f)", st.AvgTimePerVisit, st.MinTimePerVisit, st.MaxTimePerVisit),
		fmt.Sprintf("Projected labor (yearly): $%.2f", st.ProjectedYearlyLaborCost),
		fmt.Sprintf("Configured materials/services (yearly): $%.2f", st.ConfiguredMaterialsCostYearly+st.ConfiguredServicesCostYearly),
		fmt.Sprintf("Est yearly cost: $%.2f", st.EstYearlyCost),
		fmt.Sprintf("Proposed monthly rate: $%.2f", st.ProposedMonthlyRate),
		fmt.Sprintf("Actual monthly charge: $%.2f", st.ActualMonthlyCharge),
		fmt.Sprintf("Monthly profit/loss: %s", signedMoney(st.MonthlyProfitLoss)),
	}
	return strings.Join(lines, "\n")
}

// FormatAnomaly renders one flagged visit the way the review panel shows it.
func FormatAnomaly(a models.AnomalousVisit) string {
	return fmt.Sprintf("%s on %s: %.0f min vs average %.0f min (%.0f%% of normal)",
		a.ClientName, a.VisitDate.Format(dateLayout), a.DurationMinutes, a.AvgDuration, a.PercentOfAvg)
}

func signedMoney(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("+$%.2f", v)
}
