package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/shortscore/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// Every command prints through these so output stays uniform
// ═══════════════════════════════════════════════════════════

const (
	doubleRule = "═══════════════════════════════════════════════════════════"
	singleRule = "───────────────────────────────────────────────────────────"
)

// printHeader prints a titled block header
func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w, doubleRule)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, singleRule)
}

// printFooter closes a block opened by printHeader
func printFooter(w io.Writer) {
	fmt.Fprintln(w, doubleRule)
}

// printKeyValue prints key-value pairs
func printKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "  %-*s : %s\n", keyWidth, key, value)
}

// printSuccess prints a success message
func printSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// printWarning prints a warning message
func printWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// printTableHeader prints a table header
func printTableHeader(w io.Writer, columns []string, widths []int) {
	printTableRow(w, columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// printTableRow prints a table row
func printTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(w, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fmtDecimal rounds for display only; stored and JSON values keep full precision
func fmtDecimal(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}

// printResult prints one score in key-value form
func printResult(w io.Writer, r *contracts.ShortInterestResult) {
	printHeader(w, fmt.Sprintf("Short Interest: %s", r.Symbol))
	printKeyValue(w, "As of", r.AsOf.Format("2006-01-02"), 14)
	printKeyValue(w, "Days", fmt.Sprintf("%d", r.Days), 14)
	printKeyValue(w, "Total volume", r.TotalVolume.String(), 14)
	printKeyValue(w, "Short volume", r.TotalVolumeShort.String(), 14)
	printKeyValue(w, "Short % today", fmtDecimal(r.ShortInterestPercentToday, 2), 14)
	printKeyValue(w, "Short % avg", fmtDecimal(r.ShortInterestPercentAverage, 2), 14)
	printKeyValue(w, "Slope", fmtDecimal(r.ShortInterestSlope, 4), 14)
	printKeyValue(w, "Score", fmtDecimal(r.ShortInterestCompositeScore, 2), 14)
	printFooter(w)
}

var recordColumns = []string{"Date", "Symbol", "Short", "Exempt", "Total", "Short %", "Market"}
var recordWidths = []int{10, 8, 12, 10, 12, 8, 6}

// printRecords prints short volume rows as a table
func printRecords(w io.Writer, records []contracts.ShortVolumeRecord) {
	printTableHeader(w, recordColumns, recordWidths)
	for _, r := range records {
		pct := "n/a"
		if p, err := r.ShortInterestPercent(); err == nil {
			pct = fmtDecimal(p, 2)
		}
		printTableRow(w, []string{
			r.Date.Format("2006-01-02"),
			r.Symbol,
			r.ShortVolume.String(),
			r.ShortExemptVolume.String(),
			r.TotalVolume.String(),
			pct,
			r.Market,
		}, recordWidths)
	}
}
