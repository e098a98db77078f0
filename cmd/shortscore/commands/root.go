package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

var (
	// Global flags
	verbose bool
	output  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shortscore",
	Short: "FINRA short interest composite scoring",
	Long: `shortscore Unified CLI

Reads FINRA Reg SHO daily short sale volume files, builds a per-symbol
series over recent trading days and scores it (0 = heavily shorted and
rising, 100+ = lightly shorted or falling).

Usage:
  go run ./cmd/shortscore [command]

Examples:
  go run ./cmd/shortscore score AAPL --days 10
  go run ./cmd/shortscore score AAPL MSFT TSLA --days 5
  go run ./cmd/shortscore volume AAPL --days 5
  go run ./cmd/shortscore daily 20240117 --symbol AAPL
  go run ./cmd/shortscore api --port 8089`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch output {
		case outputTable, outputJSON:
			return nil
		default:
			return fmt.Errorf("--output must be %q or %q", outputTable, outputJSON)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", outputTable, "output format (table|json)")
}
