package codec

import (
	"errors"
	"fmt"
)

// ImportError describes one entry skipped or repaired during import.
type ImportError struct {
	Section string // "entities", "connections" or "notes"
	Index   int
	Field   string
	Reason  string
}

func (e *ImportError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s[%d]: %s", e.Section, e.Index, e.Reason)
	}
	return fmt.Sprintf("%s[%d].%s: %s", e.Section, e.Index, e.Field, e.Reason)
}

// Warnings collects the non-fatal problems of one import.
type Warnings []*ImportError

// Err returns the warnings as an *AggregateError, or nil when empty.
func (w Warnings) Err() error {
	if len(w) == 0 {
		return nil
	}
	errs := make([]error, len(w))
	for i, e := range w {
		errs[i] = e
	}
	return &AggregateError{Errors: errs}
}

// AggregateError represents multiple import problems.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d import problems:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// ImportErrors returns all entries if err is an AggregateError.
// Otherwise returns nil.
func ImportErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
