package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history SYMBOL",
	Short: "List stored score snapshots",
	Long: `List score snapshots saved with "score --save", newest first.
Requires DATABASE_URL.

Example:
  go run ./cmd/shortscore history AAPL --limit 20`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 30, "maximum snapshots to list")
}

var historyColumns = []string{"As of", "Days", "Score", "Avg %", "Today %", "Slope"}
var historyWidths = []int{10, 4, 10, 8, 8, 10}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	snapshots, err := a.repo.History(ctx, args[0], historyLimit)
	if err != nil {
		return err
	}

	if output == outputJSON {
		return printJSON(out, snapshots)
	}
	printHeader(out, fmt.Sprintf("Score History: %s", args[0]))
	printTableHeader(out, historyColumns, historyWidths)
	for _, s := range snapshots {
		printTableRow(out, []string{
			s.AsOf.Format("2006-01-02"),
			fmt.Sprintf("%d", s.Days),
			fmtDecimal(s.ShortInterestCompositeScore, 2),
			fmtDecimal(s.ShortInterestPercentAverage, 2),
			fmtDecimal(s.ShortInterestPercentToday, 2),
			fmtDecimal(s.ShortInterestSlope, 4),
		}, historyWidths)
	}
	printFooter(out)
	return nil
}
