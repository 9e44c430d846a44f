package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/landscaper/internal/service/reporting"
)

var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Show visits and clients that need attention",
	Args:  cobra.NoArgs,
	RunE:  runTodo,
}

func init() {
	rootCmd.AddCommand(todoCmd)
}

func runTodo(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	todo, err := app.reporting.TodoList(cmd.Context())
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(out, todo)
	}

	fmt.Fprintf(out, "Visits flagged for review (%d)\n", len(todo.VisitsNeedingReview))
	for _, v := range todo.VisitsNeedingReview {
		fmt.Fprintf(out, "  - visit %d on %s, %.0f min\n", v.ID, v.VisitDate.Format("2006-01-02"), v.DurationMinutes)
	}

	fmt.Fprintf(out, "Unusual visit durations (%d)\n", len(todo.AnomalousVisits))
	for _, a := range todo.AnomalousVisits {
		fmt.Fprintf(out, "  - %s\n", reporting.FormatAnomaly(a))
	}

	fmt.Fprintf(out, "Clients without materials or services (%d)\n", len(todo.ClientsMissingServices))
	for _, c := range todo.ClientsMissingServices {
		fmt.Fprintf(out, "  - %s\n", c.Name)
	}

	fmt.Fprintf(out, "Clients missing contact details (%d)\n", len(todo.ClientsMissingContact))
	for _, c := range todo.ClientsMissingContact {
		fmt.Fprintf(out, "  - %s\n", c.Name)
	}
	return nil
}
