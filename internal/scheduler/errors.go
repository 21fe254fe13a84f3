package scheduler

import (
	"fmt"
)

// SchedulerError defines the interface for scheduler-specific errors
type SchedulerError interface {
	error
	Code() string
	Message() string
	Temporary() bool
}

// schedulerError implements the SchedulerError interface
type schedulerError struct {
	code      string
	message   string
	temporary bool
}

func (e *schedulerError) Error() string {
	return fmt.Sprintf("scheduler error [%s]: %s", e.code, e.message)
}

func (e *schedulerError) Code() string {
	return e.code
}

func (e *schedulerError) Message() string {
	return e.message
}

func (e *schedulerError) Temporary() bool {
	return e.temporary
}

// Error constants
const (
	ErrSchedulerNotRunning     = "scheduler_not_running"
	ErrSchedulerAlreadyRunning = "scheduler_already_running"
	ErrInvalidConfiguration    = "invalid_configuration"
	ErrEntryProcessingFailed   = "entry_processing_failed"
	ErrSweepFailed             = "sweep_failed"
)

// EntryProcessingError is returned when a single due entry cannot be
// advanced or published.
type EntryProcessingError struct {
	schedulerError
	EntryID   string
	Operation string
}

// SweepError wraps a failure of a whole sweep cycle
type SweepError struct {
	schedulerError
	Operation string
}

type ShutdownError struct {
	schedulerError
	TimeoutSeconds int
}

type ConfigurationError struct {
	schedulerError
	Field string
	Value interface{}
}

// Constructor functions
func NewSchedulerError(code, message string) error {
	return &schedulerError{
		code:      code,
		message:   message,
		temporary: false,
	}
}

func NewEntryProcessingError(entryID, operation string, err error) error {
	return &EntryProcessingError{
		schedulerError: schedulerError{
			code:      ErrEntryProcessingFailed,
			message:   fmt.Sprintf("failed to process entry %s during %s: %v", entryID, operation, err),
			temporary: true,
		},
		EntryID:   entryID,
		Operation: operation,
	}
}

func NewSweepError(operation string, err error) error {
	return &SweepError{
		schedulerError: schedulerError{
			code:      ErrSweepFailed,
			message:   fmt.Sprintf("sweep failed during %s: %v", operation, err),
			temporary: true,
		},
		Operation: operation,
	}
}

func NewShutdownError(message string, timeoutSeconds int) error {
	return &ShutdownError{
		schedulerError: schedulerError{
			code:      "shutdown_timeout",
			message:   message,
			temporary: false,
		},
		TimeoutSeconds: timeoutSeconds,
	}
}

func NewConfigurationError(field string, value interface{}, message string) error {
	return &ConfigurationError{
		schedulerError: schedulerError{
			code:      ErrInvalidConfiguration,
			message:   fmt.Sprintf("invalid configuration for field %s (value: %v): %s", field, value, message),
			temporary: false,
		},
		Field: field,
		Value: value,
	}
}

// IsTemporaryError reports whether the error is safe to retry on the next
// sweep.
func IsTemporaryError(err error) bool {
	if schedErr, ok := err.(SchedulerError); ok {
		return schedErr.Temporary()
	}
	return false
}

func IsConfigurationError(err error) bool {
	if schedErr, ok := err.(SchedulerError); ok {
		return schedErr.Code() == ErrInvalidConfiguration
	}
	return false
}
