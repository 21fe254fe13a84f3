package messenger

import (
	"time"

	"weatherbot-api/internal/common"
)

// Inbound is one unhandled message pulled from the local message store
type Inbound struct {
	ID         int64         `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     common.UserID `json:"user_id" gorm:"column:user_id;type:varchar(255);not null;index"`
	Text       string        `json:"text" gorm:"type:text"`
	ReceivedAt time.Time     `json:"received_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`
}

// TableName returns the table name for the Inbound model
func (Inbound) TableName() string {
	return "inbound_messages"
}

// Outbound is one message delivered (or queued for the OS transport) by the bot
type Outbound struct {
	ID     int64         `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID common.UserID `json:"user_id" gorm:"column:user_id;type:varchar(255);not null;index"`
	Text   string        `json:"text" gorm:"type:text"`
	SentAt time.Time     `json:"sent_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`
}

// TableName returns the table name for the Outbound model
func (Outbound) TableName() string {
	return "outbound_messages"
}

// PollCursor is the persisted last-handled marker for the inbound poller.
// It is explicit state passed into PollInbound, not ambient state.
type PollCursor struct {
	Name     string `gorm:"primaryKey;type:varchar(64)"`
	Position int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for the PollCursor model
func (PollCursor) TableName() string {
	return "poll_cursors"
}
