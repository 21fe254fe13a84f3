package profile

import "fmt"

// StoreError represents a persistence failure in the profile store
type StoreError struct {
	Operation string
	Cause     error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("profile store error during %s: %v", e.Operation, e.Cause)
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
