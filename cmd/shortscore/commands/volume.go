package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var volumeDays int

// volumeCmd represents the volume command
var volumeCmd = &cobra.Command{
	Use:   "volume SYMBOL",
	Short: "Show a symbol's daily short volume series",
	Long: `Show the records used for scoring: one row per trading day that has
data for the symbol, most recent first, at most --days rows.

Example:
  go run ./cmd/shortscore volume AAPL --days 5`,
	Args: cobra.ExactArgs(1),
	RunE: runVolume,
}

func init() {
	rootCmd.AddCommand(volumeCmd)

	volumeCmd.Flags().IntVarP(&volumeDays, "days", "d", 10, "number of trading days with data")
}

func runVolume(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	series, err := a.service.GetShortVolume(ctx, args[0], volumeDays)
	if err != nil {
		return fmt.Errorf("short volume %s: %w", args[0], err)
	}

	if output == outputJSON {
		return printJSON(out, series)
	}
	printHeader(out, fmt.Sprintf("Short Volume: %s (%d/%d days)", args[0], len(series), volumeDays))
	printRecords(out, series)
	printFooter(out)
	return nil
}
