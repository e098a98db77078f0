package watchlist

import (
	"fmt"
	"regexp"
)

const (
	maxDays    = 250
	maxSymbols = 500
)

// FINRA symbols are upper case and may carry a class suffix (BRK.A, BRK/B)
var symbolPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9./\-]*$`)

// ValidationError names the offending field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(wl *Watchlist) error {
	if wl.Name == "" {
		return ValidationError{"name", "required"}
	}
	if wl.Days <= 0 || wl.Days > maxDays {
		return ValidationError{"days", fmt.Sprintf("must be between 1 and %d", maxDays)}
	}
	if wl.Parallel < 0 {
		return ValidationError{"parallel", "must not be negative"}
	}

	if len(wl.Symbols) == 0 {
		return ValidationError{"symbols", "at least one symbol required"}
	}
	if len(wl.Symbols) > maxSymbols {
		return ValidationError{"symbols", fmt.Sprintf("at most %d symbols", maxSymbols)}
	}

	seen := make(map[string]bool, len(wl.Symbols))
	for i, s := range wl.Symbols {
		field := fmt.Sprintf("symbols[%d]", i)
		if !symbolPattern.MatchString(s) {
			return ValidationError{field, fmt.Sprintf("invalid symbol %q", s)}
		}
		if seen[s] {
			return ValidationError{field, fmt.Sprintf("duplicate symbol %q", s)}
		}
		seen[s] = true
	}

	return nil
}
