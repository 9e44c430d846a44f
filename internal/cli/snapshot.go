package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Store the current projection of every active client",
	Long: `Project every active client and store the result as one snapshot run, the same
way the weekly scheduled job does. Requires MONGODB_URI or the sheets storage driver.`,
	Args: cobra.NoArgs,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	runID, count, err := app.reporting.CaptureSnapshot(cmd.Context())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved snapshot %s for %d clients\n", runID, count)
	return err
}
