package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/landscaper/internal/domain/models"
	"github.com/mamadbah2/landscaper/internal/service/reporting"
)

var statsCmd = &cobra.Command{
	Use:   "stats [client-id]",
	Short: "Show projected costs and proposed rates",
	Long: `Show the yearly cost projection and proposed monthly rate per client.

Examples:
  landscaper stats                 # All active clients
  landscaper stats --all           # Include inactive clients
  landscaper stats --losing        # Only clients charged below the proposed rate
  landscaper stats 12              # Full breakdown for client 12`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

// Flags
var (
	statsAll    bool
	statsLosing bool
)

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolVar(&statsAll, "all", false, "Include inactive clients")
	statsCmd.Flags().BoolVar(&statsLosing, "losing", false, "Only show clients losing money")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid client id %q", args[0])
		}
		st, err := app.reporting.ClientStatistics(ctx, id)
		if err != nil {
			return err
		}
		if st == nil {
			return fmt.Errorf("client %d not found", id)
		}
		if asJSON {
			return printJSON(out, st)
		}
		_, err = fmt.Fprintln(out, reporting.FormatClientSummary(*st))
		return err
	}

	stats, err := app.reporting.AllClientStatistics(ctx, !statsAll)
	if err != nil {
		return err
	}

	if statsLosing {
		filtered := stats[:0:0]
		for _, st := range stats {
			if !st.IsProfitable {
				filtered = append(filtered, st)
			}
		}
		stats = filtered
	}

	if asJSON {
		return printJSON(out, stats)
	}
	if len(stats) == 0 {
		_, err := fmt.Fprintln(out, "No clients to show")
		return err
	}

	w := newTable(out)
	fmt.Fprintln(w, "ID\tCLIENT\tVISITS\tAVG MIN\tEST YEARLY\tPROPOSED/MO\tCHARGED/MO\tP/L/MO")
	for _, st := range stats {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.1f\t%.2f\t%.2f\t%.2f\t%s\n",
			st.ClientID, st.ClientName, st.VisitCount, st.AvgTimePerVisit,
			st.EstYearlyCost, st.ProposedMonthlyRate, st.ActualMonthlyCharge, profitLabel(st))
	}
	return w.Flush()
}

func profitLabel(st models.ClientStatistics) string {
	if st.IsProfitable {
		return fmt.Sprintf("+%.2f", st.MonthlyProfitLoss)
	}
	return fmt.Sprintf("%.2f", st.MonthlyProfitLoss)
}
