package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/shortscore/internal/shortinterest"
	"github.com/wonny/shortscore/internal/watchlist"
)

var (
	scoreDays      int
	scoreSave      bool
	scoreParallel  int
	scoreWatchlist string
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score SYMBOL [SYMBOL...]",
	Short: "Compute the short interest composite score",
	Long: `Compute the composite score over the most recent --days trading days
that have a row for the symbol.

With several symbols each one is scored independently and the results are
ranked by score, highest first. Symbols with no short volume in the window
are listed as omitted.

Example:
  go run ./cmd/shortscore score AAPL --days 10
  go run ./cmd/shortscore score AAPL MSFT --days 5 --save
  go run ./cmd/shortscore score --watchlist megacaps.yaml`,
	Args: func(cmd *cobra.Command, args []string) error {
		if scoreWatchlist != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().IntVarP(&scoreDays, "days", "d", 10, "number of trading days with data to score")
	scoreCmd.Flags().BoolVar(&scoreSave, "save", false, "store the result in the score snapshot table (needs DATABASE_URL)")
	scoreCmd.Flags().IntVar(&scoreParallel, "parallel", 4, "symbols scored concurrently when ranking")
	scoreCmd.Flags().StringVarP(&scoreWatchlist, "watchlist", "w", "", "YAML watchlist (name, days, parallel, symbols) to rank")
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if scoreWatchlist != "" {
		wl, err := watchlist.Load(scoreWatchlist)
		if err != nil {
			return err
		}
		args = wl.Symbols
		scoreDays = wl.Days
		if wl.Parallel > 0 {
			scoreParallel = wl.Parallel
		}
		if output == outputTable {
			fmt.Fprintf(out, "Watchlist: %s (%d symbols)\n", wl.Name, len(wl.Symbols))
		}
	}

	a, err := newApp(ctx, scoreSave)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 1 && scoreWatchlist == "" {
		result, err := a.service.GetShortInterest(ctx, args[0], scoreDays)
		if err != nil {
			return fmt.Errorf("score %s: %w", args[0], err)
		}
		if scoreSave {
			if err := a.repo.Save(ctx, result); err != nil {
				return err
			}
		}
		if output == outputJSON {
			return printJSON(out, result)
		}
		printResult(out, result)
		if scoreSave {
			printSuccess(out, "Snapshot saved")
		}
		return nil
	}

	ranking, err := a.service.Rank(ctx, args, scoreDays, scoreParallel)
	if err != nil {
		return err
	}
	if scoreSave {
		for _, r := range ranking.Ranked {
			if err := a.repo.Save(ctx, r.Result); err != nil {
				return err
			}
		}
	}
	if output == outputJSON {
		return printJSON(out, ranking)
	}
	printRanking(out, ranking)
	return nil
}

var rankColumns = []string{"#", "Symbol", "Score", "Avg %", "Today %", "Slope", "As of"}
var rankWidths = []int{3, 8, 10, 8, 8, 10, 10}

func printRanking(out io.Writer, ranking *shortinterest.Ranking) {
	printHeader(out, fmt.Sprintf("Short Interest Ranking (%d days)", scoreDays))
	printTableHeader(out, rankColumns, rankWidths)
	for i, r := range ranking.Ranked {
		printTableRow(out, []string{
			fmt.Sprintf("%d", i+1),
			r.Symbol,
			fmtDecimal(r.Result.ShortInterestCompositeScore, 2),
			fmtDecimal(r.Result.ShortInterestPercentAverage, 2),
			fmtDecimal(r.Result.ShortInterestPercentToday, 2),
			fmtDecimal(r.Result.ShortInterestSlope, 4),
			r.Result.AsOf.Format("2006-01-02"),
		}, rankWidths)
	}
	printFooter(out)

	if len(ranking.Omitted) > 0 {
		printWarning(out, "No short volume: "+strings.Join(ranking.Omitted, ", "))
	}
	for _, f := range ranking.Failed {
		printWarning(out, fmt.Sprintf("%s failed: %s", f.Symbol, f.Error))
	}
	if scoreSave {
		printSuccess(out, fmt.Sprintf("%d snapshots saved", len(ranking.Ranked)))
	}
}
