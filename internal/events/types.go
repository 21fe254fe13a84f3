package events

import (
	"time"

	"github.com/google/uuid"
)

// Event represents the base event structure with common fields
type Event struct {
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewEvent creates a new base event with generated correlation ID
func NewEvent() Event {
	return Event{
		CorrelationID: uuid.New().String(),
		Timestamp:     time.Now(),
	}
}

// MessageReceived is published by the messenger poller for each new inbound
// message pulled from the local message store.
type MessageReceived struct {
	Event
	UserID     string    `json:"user_id"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// ReplySend requests delivery of an outbound message. Published by the
// conversation service and the scheduler delivery path, consumed by the
// messenger service.
type ReplySend struct {
	Event
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// ScheduleFired describes a schedule entry that matches the current minute
// and is due for delivery. The scheduler engine hands it to the conversation
// service directly so the delivery outcome flows back to entry state.
type ScheduleFired struct {
	Event
	EntryID    string `json:"entry_id"`
	UserID     string `json:"user_id"`
	Hour       int    `json:"hour"`
	Minute     int    `json:"minute"`
	Recurrence string `json:"recurrence"`
}

// Event topics constants
const (
	TopicMessageReceived = "message.received"
	TopicReplySend       = "reply.send"
)
