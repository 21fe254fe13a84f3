package schedule

import "weatherbot-api/internal/common"

// Repository defines persistence operations for schedule entries.
// Implementations must serialize mutations per user so that a cancel
// command and a near-simultaneous scheduler firing cannot interleave.
type Repository interface {
	// Create persists a new entry, returning ErrDuplicateEntry when an
	// active entry with the same (hour, minute, recurrence) already exists
	// for the user.
	Create(entry *Entry) error
	// ListActive returns all active entries
	ListActive() ([]*Entry, error)
	// ListByUser returns all entries owned by userID, active first
	ListByUser(userID common.UserID) ([]*Entry, error)
	// Update replaces the stored entry
	Update(entry *Entry) error
	// Remove deletes the entry
	Remove(id common.ID) error
	// Counts returns (active, total) entry counts
	Counts() (int64, int64, error)
}
