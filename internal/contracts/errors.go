package contracts

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds surfaced by the short interest pipeline. Match with errors.Is.
var (
	ErrRetrieval      = errors.New("retrieval error")
	ErrParse          = errors.New("parse error")
	ErrPrecondition   = errors.New("precondition violated")
	ErrDivisionHazard = errors.New("division hazard: total volume is not positive")
)

// RetrievalError reports a network failure or non-success response from an external feed
type RetrievalError struct {
	Source     string // "finra", "twelvedata"
	Date       time.Time
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *RetrievalError) Error() string {
	msg := fmt.Sprintf("%s: fetch %s", e.Source, e.URL)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RetrievalError) Unwrap() error { return e.Err }

func (e *RetrievalError) Is(target error) bool { return target == ErrRetrieval }

// ParseError reports a malformed line in a feed. Line is 1-based and counts the header.
type ParseError struct {
	Line   int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse error at line %d: %s", e.Line, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
