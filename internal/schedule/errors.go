package schedule

import (
	"errors"
	"fmt"
)

// ErrDuplicateEntry signals a violation of the per-user uniqueness invariant
// over (hour, minute, recurrence) for active entries.
var ErrDuplicateEntry = errors.New("an identical schedule entry already exists")

// StoreError represents a persistence failure in the schedule store
type StoreError struct {
	Operation string
	Cause     error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("schedule store error during %s: %v", e.Operation, e.Cause)
}

func (e StoreError) Unwrap() error {
	return e.Cause
}

// WrapStoreError wraps a database error with operation context
func WrapStoreError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return StoreError{Operation: operation, Cause: err}
}
