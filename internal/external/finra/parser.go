package finra

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/shortscore/internal/contracts"
)

const (
	// Newline separates lines in the daily file
	Newline = "\r\n"

	// Delimiter separates columns
	Delimiter = "|"

	// HeaderLines is the number of leading lines skipped before data
	HeaderLines = 1

	// TrailerLines is the number of trailing lines excluded regardless of content.
	// The trailer is not self-describing, so it is never inferred from content.
	TrailerLines = 2

	// DateLayout is the yyyyMMdd layout used in file names and the Date column
	DateLayout = "20060102"

	columnCount = 6
)

// Column order: Date|Symbol|ShortVolume|ShortExemptVolume|TotalVolume|Market
const (
	colDate = iota
	colSymbol
	colShortVolume
	colShortExemptVolume
	colTotalVolume
	colMarket
)

// ParseDaily parses one day's short volume file into records, in file order.
// An empty body has no records. Any malformed data line, or a non-empty body
// too short to hold the header and trailer, fails with a *contracts.ParseError.
func ParseDaily(body string) ([]contracts.ShortVolumeRecord, error) {
	if body == "" {
		return []contracts.ShortVolumeRecord{}, nil
	}

	lines := strings.Split(body, Newline)
	if len(lines) < HeaderLines+TrailerLines {
		// too short to hold a header and trailer: truncated, or not CRLF-delimited
		return nil, &contracts.ParseError{
			Line:   1,
			Reason: fmt.Sprintf("expected at least %d CRLF-delimited lines, got %d", HeaderLines+TrailerLines, len(lines)),
		}
	}
	if len(lines) == HeaderLines+TrailerLines {
		return []contracts.ShortVolumeRecord{}, nil
	}

	data := lines[HeaderLines : len(lines)-TrailerLines]
	records := make([]contracts.ShortVolumeRecord, 0, len(data))

	for i, line := range data {
		rec, err := parseLine(line)
		if err != nil {
			err.Line = i + HeaderLines + 1
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseLine(line string) (contracts.ShortVolumeRecord, *contracts.ParseError) {
	var rec contracts.ShortVolumeRecord

	fields := strings.Split(line, Delimiter)
	if len(fields) != columnCount {
		return rec, &contracts.ParseError{
			Reason: fmt.Sprintf("expected %d columns, got %d", columnCount, len(fields)),
		}
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	date, err := ParseDate(fields[colDate])
	if err != nil {
		return rec, &contracts.ParseError{Reason: "invalid date " + fields[colDate], Err: err}
	}

	if fields[colSymbol] == "" {
		return rec, &contracts.ParseError{Reason: "empty symbol"}
	}

	short, perr := parseVolume("short volume", fields[colShortVolume])
	if perr != nil {
		return rec, perr
	}
	exempt, perr := parseVolume("short exempt volume", fields[colShortExemptVolume])
	if perr != nil {
		return rec, perr
	}
	total, perr := parseVolume("total volume", fields[colTotalVolume])
	if perr != nil {
		return rec, perr
	}

	return contracts.ShortVolumeRecord{
		Date:              date,
		Symbol:            fields[colSymbol],
		ShortVolume:       short,
		ShortExemptVolume: exempt,
		TotalVolume:       total,
		Market:            fields[colMarket],
	}, nil
}

func parseVolume(name, value string) (decimal.Decimal, *contracts.ParseError) {
	v, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &contracts.ParseError{Reason: fmt.Sprintf("non-numeric %s %q", name, value), Err: err}
	}
	if v.IsNegative() {
		return decimal.Zero, &contracts.ParseError{Reason: fmt.Sprintf("negative %s %q", name, value)}
	}
	return v, nil
}

// ParseDate parses a strict 8-digit yyyyMMdd date as UTC midnight
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("want %d digits, got %q", len(DateLayout), s)
	}
	return time.Parse(DateLayout, s)
}

// FormatDate formats a date as yyyyMMdd
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
