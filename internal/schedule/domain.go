package schedule

import (
	"time"

	"weatherbot-api/internal/common"
)

// civilDateLayout is the calendar-day granularity used for duplicate-fire
// suppression of daily entries.
const civilDateLayout = "2006-01-02"

// Entry is one recurring or one-time forecast delivery subscription.
type Entry struct {
	ID          common.ID             `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      common.UserID         `json:"user_id" gorm:"type:varchar(255);not null;index"`
	Hour        int                   `json:"hour" gorm:"not null"`
	Minute      int                   `json:"minute" gorm:"not null"`
	Recurrence  common.RecurrenceKind `json:"recurrence" gorm:"type:varchar(16);not null"`
	LastFiredOn string                `json:"last_fired_on" gorm:"type:varchar(10)"`
	Active      bool                  `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time             `json:"created_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time             `json:"updated_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`
}

// NewEntry creates an active entry for the given local time of day
func NewEntry(userID common.UserID, hour, minute int, recurrence common.RecurrenceKind) *Entry {
	return &Entry{
		ID:         common.NewID(),
		UserID:     userID,
		Hour:       hour,
		Minute:     minute,
		Recurrence: recurrence,
		Active:     true,
	}
}

// IsDue reports whether the entry should fire at the given local time.
// The check is an exact hour+minute match at polling granularity; daily
// entries additionally require that they have not already fired today.
func (e *Entry) IsDue(now time.Time) bool {
	if !e.Active {
		return false
	}
	if now.Hour() != e.Hour || now.Minute() != e.Minute {
		return false
	}
	if e.Recurrence == common.RecurrenceDaily {
		return e.LastFiredOn != now.Format(civilDateLayout)
	}
	return true
}

// MarkFired records a firing at the given time. Daily entries stay active
// with LastFiredOn advanced; one-time entries deactivate.
func (e *Entry) MarkFired(now time.Time) {
	e.LastFiredOn = now.Format(civilDateLayout)
	if e.Recurrence == common.RecurrenceOneTime {
		e.Active = false
	}
}

// TimeOfDay renders the entry's local firing time as e.g. "7:30 AM"
func (e *Entry) TimeOfDay() string {
	t := time.Date(2000, 1, 1, e.Hour, e.Minute, 0, 0, time.UTC)
	return t.Format("3:04 PM")
}

// TableName returns the table name for the Entry model
func (Entry) TableName() string {
	return "schedule_entries"
}
