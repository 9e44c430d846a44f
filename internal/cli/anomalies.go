package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies",
	Short: "List visits much longer than the client's average",
	Long: `List visits whose duration is at least the threshold percent of their client's
average visit duration. Clients need at least two visits to have an average.

Examples:
  landscaper anomalies                  # Configured threshold (300% by default)
  landscaper anomalies --threshold 200  # Anything twice as long as usual
  landscaper anomalies --client 12      # Only client 12`,
	Args: cobra.NoArgs,
	RunE: runAnomalies,
}

// Flags
var (
	anomalyThreshold float64
	anomalyClient    int64
)

func init() {
	rootCmd.AddCommand(anomaliesCmd)

	anomaliesCmd.Flags().Float64VarP(&anomalyThreshold, "threshold", "t", 0, "Threshold percent of the average (0 uses the configured value)")
	anomaliesCmd.Flags().Int64Var(&anomalyClient, "client", 0, "Restrict to one client id")
}

func runAnomalies(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	flagged, err := app.reporting.AnomalousVisits(cmd.Context(), anomalyThreshold, anomalyClient)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(out, flagged)
	}
	if len(flagged) == 0 {
		_, err := fmt.Fprintln(out, "No anomalous visits")
		return err
	}

	w := newTable(out)
	fmt.Fprintln(w, "VISIT\tCLIENT\tDATE\tMINUTES\tAVG MIN\t% OF AVG")
	for _, a := range flagged {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\t%.1f\t%.1f\n",
			a.ID, a.ClientName, a.VisitDate.Format("2006-01-02"), a.DurationMinutes, a.AvgDuration, a.PercentOfAvg)
	}
	return w.Flush()
}
