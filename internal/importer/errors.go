package importer

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound is returned when the ledger file does not exist.
	ErrSourceNotFound = errors.New("ledger source not found")
	// ErrSchemaMismatch is returned when the header row is not the expected column set.
	ErrSchemaMismatch = errors.New("ledger header does not match expected format")
	// ErrRowMalformed is returned for rows with a wrong column count or bad values.
	ErrRowMalformed = errors.New("malformed ledger row")
)

// RowError identifies the ledger row (1-based CSV line) and field that failed to parse.
// It matches ErrRowMalformed with errors.Is.
type RowError struct {
	Row   int
	Field string
	Err   error
}

func (e *RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d: %s: %v", e.Row, e.Field, e.Err)
}

func (e *RowError) Unwrap() []error {
	return []error{ErrRowMalformed, e.Err}
}
