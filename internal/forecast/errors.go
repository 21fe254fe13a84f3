package forecast

import "fmt"

// ProviderError represents a failed forecast fetch. These are transient from
// the user's point of view: the conversation layer replies with an apology
// and does not retry within the turn.
type ProviderError struct {
	Operation string
	Details   string
	Cause     error
}

func (e ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("forecast provider error during %s: %s (caused by: %v)", e.Operation, e.Details, e.Cause)
	}
	return fmt.Sprintf("forecast provider error during %s: %s", e.Operation, e.Details)
}

func (e ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a ProviderError
func NewProviderError(operation, details string, cause error) ProviderError {
	return ProviderError{Operation: operation, Details: details, Cause: cause}
}
