package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/shortscore/internal/contracts"
	"github.com/wonny/shortscore/internal/external/finra"
)

var dailySymbol string

// dailyCmd represents the daily command
var dailyCmd = &cobra.Command{
	Use:   "daily YYYYMMDD",
	Short: "Show one day's consolidated short volume file",
	Long: `Fetch and parse the consolidated daily short sale volume file for a date.
Files exist from 2018-11-05 onward.

Example:
  go run ./cmd/shortscore daily 20240117
  go run ./cmd/shortscore daily 20240117 --symbol AAPL`,
	Args: cobra.ExactArgs(1),
	RunE: runDaily,
}

func init() {
	rootCmd.AddCommand(dailyCmd)

	dailyCmd.Flags().StringVarP(&dailySymbol, "symbol", "s", "", "only show this symbol")
}

func runDaily(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	date, err := finra.ParseDate(args[0])
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", args[0], err)
	}
	if date.Before(finra.FirstAvailableDate) {
		return fmt.Errorf("no daily file before %s", finra.FormatDate(finra.FirstAvailableDate))
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.service.GetAllShortVolume(ctx, date)
	if err != nil {
		return fmt.Errorf("daily %s: %w", args[0], err)
	}

	if dailySymbol != "" {
		filtered := make([]contracts.ShortVolumeRecord, 0, 1)
		for _, r := range records {
			if r.Symbol == dailySymbol {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	if output == outputJSON {
		return printJSON(out, records)
	}
	printHeader(out, fmt.Sprintf("Daily Short Volume: %s (%d rows)", date.Format("2006-01-02"), len(records)))
	printRecords(out, records)
	printFooter(out)
	return nil
}
