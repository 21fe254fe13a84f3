package messenger

import (
	"context"

	"weatherbot-api/internal/common"
)

// Provider abstracts the OS-level message transport. The core only ever
// polls for the next unhandled inbound message and sends plain-text replies.
type Provider interface {
	// PollInbound returns the oldest inbound message with ID greater than
	// cursor, or nil when there is nothing new. Idempotent against
	// re-delivery: the caller tracks the cursor.
	PollInbound(ctx context.Context, cursor int64) (*Inbound, error)
	// SendOutbound delivers text to the given conversation
	SendOutbound(ctx context.Context, userID common.UserID, text string) error
}

// CursorStore persists the poller's last-handled marker between runs
type CursorStore interface {
	Load(name string) (int64, error)
	Save(name string, position int64) error
}
