package common

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ID represents a unique identifier
type ID string

// NewID generates a new unique identifier
func NewID() ID {
	return ID(uuid.New().String())
}

// IsValid checks if the ID is a valid UUID
func (id ID) IsValid() bool {
	_, err := uuid.Parse(string(id))
	return err == nil
}

// String returns the string representation of the ID
func (id ID) String() string {
	return string(id)
}

// MarshalJSON implements json.Marshaler
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*id = ID(s)
	return nil
}

// UserID identifies a conversation partner. It is the opaque handle of the
// message thread (phone number, e-mail address, chat id), not a generated UUID.
type UserID string

// String returns the string representation of the UserID
func (u UserID) String() string {
	return string(u)
}

// OnboardingStage represents where a user is in the first-contact dialog
type OnboardingStage string

const (
	StageAwaitingFirstName OnboardingStage = "awaiting_first_name"
	StageAwaitingLastName  OnboardingStage = "awaiting_last_name"
	StageAwaitingLocation  OnboardingStage = "awaiting_location"
	StageComplete          OnboardingStage = "complete"
)

// String returns the string representation of OnboardingStage
func (s OnboardingStage) String() string {
	return string(s)
}

// IsValid checks if the OnboardingStage is valid
func (s OnboardingStage) IsValid() bool {
	switch s {
	case StageAwaitingFirstName, StageAwaitingLastName, StageAwaitingLocation, StageComplete:
		return true
	default:
		return false
	}
}

// RecurrenceKind represents how often a schedule entry fires
type RecurrenceKind string

const (
	RecurrenceDaily   RecurrenceKind = "daily"
	RecurrenceOneTime RecurrenceKind = "one_time"
)

// String returns the string representation of RecurrenceKind
func (r RecurrenceKind) String() string {
	return string(r)
}

// IsValid checks if the RecurrenceKind is valid
func (r RecurrenceKind) IsValid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceOneTime:
		return true
	default:
		return false
	}
}

// Human returns the phrasing used in confirmation replies
func (r RecurrenceKind) Human() string {
	if r == RecurrenceDaily {
		return "every day"
	}
	return "once"
}

// Common error types
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
}

type InternalError struct {
	Message string
	Cause   error
}

func (e InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal error: %s (caused by: %v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("internal error: %s", e.Message)
}

func (e InternalError) Unwrap() error {
	return e.Cause
}
