package messenger

import "fmt"

// PollError represents a failure reading the inbound message store
type PollError struct {
	Cursor int64
	Cause  error
}

func (e PollError) Error() string {
	return fmt.Sprintf("poll error after cursor %d: %v", e.Cursor, e.Cause)
}

func (e PollError) Unwrap() error {
	return e.Cause
}

// WrapPollError wraps a store error with the cursor position
func WrapPollError(err error, cursor int64) error {
	if err == nil {
		return nil
	}
	return PollError{Cursor: cursor, Cause: err}
}

// DeliveryError represents a failed outbound send
type DeliveryError struct {
	UserID string
	Cause  error
}

func (e DeliveryError) Error() string {
	return fmt.Sprintf("delivery error for user %s: %v", e.UserID, e.Cause)
}

func (e DeliveryError) Unwrap() error {
	return e.Cause
}
