package geocode

import "fmt"

// ResolveError represents a failed location lookup. Resolution failures are
// user-correctable: the conversation layer replies asking for a clearer
// place description.
type ResolveError struct {
	Query   string
	Details string
	Cause   error
}

func (e ResolveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resolve error for %q: %s (caused by: %v)", e.Query, e.Details, e.Cause)
	}
	return fmt.Sprintf("resolve error for %q: %s", e.Query, e.Details)
}

func (e ResolveError) Unwrap() error {
	return e.Cause
}

// NewResolveError creates a ResolveError
func NewResolveError(query, details string, cause error) ResolveError {
	return ResolveError{Query: query, Details: details, Cause: cause}
}
