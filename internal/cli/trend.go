package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/landscaper/internal/analytics"
)

var trendCmd = &cobra.Command{
	Use:   "trend <client-id>",
	Short: "Show a client's monthly average visit time or cost",
	Long: `Show a client's average visit time (minutes) or cost (labor plus logged
materials) for each month of a year that had visits.

Examples:
  landscaper trend 12                     # Time, current year
  landscaper trend 12 --mode cost --year 2025`,
	Args: cobra.ExactArgs(1),
	RunE: runTrend,
}

// Flags
var (
	trendMode string
	trendYear int
)

func init() {
	rootCmd.AddCommand(trendCmd)

	trendCmd.Flags().StringVarP(&trendMode, "mode", "m", string(analytics.TrendTime), "What to average: time or cost")
	trendCmd.Flags().IntVarP(&trendYear, "year", "y", 0, "Calendar year (0 means the current year)")
}

func runTrend(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid client id %q", args[0])
	}
	mode, err := analytics.ParseTrendMode(trendMode)
	if err != nil {
		return err
	}

	points, err := app.reporting.MonthlyTrend(cmd.Context(), id, trendYear, mode)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(out, points)
	}
	if len(points) == 0 {
		_, err := fmt.Fprintln(out, "No visits in that year")
		return err
	}

	w := newTable(out)
	fmt.Fprintln(w, "MONTH\tVISITS\tAVERAGE")
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%d\t%.2f\n", p.Month.Format("2006-01"), p.Visits, p.Average)
	}
	return w.Flush()
}
