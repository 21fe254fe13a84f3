package schedule

import (
	"sync"
	"time"

	"weatherbot-api/internal/common"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// gormRepository implements the Repository interface using GORM.
// Mutations are serialized through a per-user critical section so that the
// conversation service and the scheduler engine cannot interleave writes to
// the same user's entries.
type gormRepository struct {
	db     *gorm.DB
	logger *zap.Logger

	mu    sync.Mutex
	locks map[common.UserID]*sync.Mutex
}

// NewGormRepository creates a new GORM-based schedule repository
func NewGormRepository(db *gorm.DB, logger *zap.Logger) Repository {
	return &gormRepository{
		db:     db,
		logger: logger,
		locks:  make(map[common.UserID]*sync.Mutex),
	}
}

func (r *gormRepository) userLock(userID common.UserID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[userID] = l
	}
	return l
}

// Create persists a new entry after enforcing the uniqueness invariant
func (r *gormRepository) Create(entry *Entry) error {
	r.logger.Debug("Creating schedule entry",
		zap.String("entry_id", string(entry.ID)),
		zap.String("user_id", string(entry.UserID)),
		zap.Int("hour", entry.Hour),
		zap.Int("minute", entry.Minute),
		zap.String("recurrence", string(entry.Recurrence)))

	if err := validateEntry(entry); err != nil {
		return err
	}

	lock := r.userLock(entry.UserID)
	lock.Lock()
	defer lock.Unlock()

	var existing int64
	err := r.db.Model(&Entry{}).
		Where("user_id = ? AND hour = ? AND minute = ? AND recurrence = ? AND active = ?",
			entry.UserID, entry.Hour, entry.Minute, entry.Recurrence, true).
		Count(&existing).Error
	if err != nil {
		return WrapStoreError(err, "duplicate check")
	}
	if existing > 0 {
		return ErrDuplicateEntry
	}

	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	if err := r.db.Create(entry).Error; err != nil {
		return WrapStoreError(err, "create entry")
	}

	r.logger.Info("Schedule entry created", zap.String("entry_id", string(entry.ID)))
	return nil
}

// ListActive returns all active entries
func (r *gormRepository) ListActive() ([]*Entry, error) {
	var entries []*Entry
	err := r.db.Where("active = ?", true).
		Order("hour, minute").
		Find(&entries).Error
	if err != nil {
		return nil, WrapStoreError(err, "list active entries")
	}
	return entries, nil
}

// ListByUser returns all entries owned by userID
func (r *gormRepository) ListByUser(userID common.UserID) ([]*Entry, error) {
	var entries []*Entry
	err := r.db.Where("user_id = ?", userID).
		Order("active desc, hour, minute").
		Find(&entries).Error
	if err != nil {
		return nil, WrapStoreError(err, "list entries by user")
	}
	return entries, nil
}

// Update replaces the stored entry
func (r *gormRepository) Update(entry *Entry) error {
	lock := r.userLock(entry.UserID)
	lock.Lock()
	defer lock.Unlock()

	entry.UpdatedAt = time.Now()

	result := r.db.Model(&Entry{}).Where("id = ?", entry.ID).
		Select("hour", "minute", "recurrence", "last_fired_on", "active", "updated_at").
		Updates(entry)
	if result.Error != nil {
		return WrapStoreError(result.Error, "update entry")
	}
	if result.RowsAffected == 0 {
		return common.NotFoundError{Resource: "ScheduleEntry", ID: string(entry.ID)}
	}
	return nil
}

// Remove deletes the entry
func (r *gormRepository) Remove(id common.ID) error {
	result := r.db.Where("id = ?", id).Delete(&Entry{})
	if result.Error != nil {
		return WrapStoreError(result.Error, "remove entry")
	}
	if result.RowsAffected == 0 {
		return common.NotFoundError{Resource: "ScheduleEntry", ID: string(id)}
	}
	return nil
}

// Counts returns (active, total) entry counts
func (r *gormRepository) Counts() (int64, int64, error) {
	var active, total int64
	if err := r.db.Model(&Entry{}).Count(&total).Error; err != nil {
		return 0, 0, WrapStoreError(err, "count entries")
	}
	if err := r.db.Model(&Entry{}).Where("active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, WrapStoreError(err, "count active entries")
	}
	return active, total, nil
}

func validateEntry(entry *Entry) error {
	if entry.UserID == "" {
		return common.ValidationError{Field: "user_id", Message: "must not be empty"}
	}
	if entry.Hour < 0 || entry.Hour > 23 {
		return common.ValidationError{Field: "hour", Message: "must be in 0..23"}
	}
	if entry.Minute < 0 || entry.Minute > 59 {
		return common.ValidationError{Field: "minute", Message: "must be in 0..59"}
	}
	if !entry.Recurrence.IsValid() {
		return common.ValidationError{Field: "recurrence", Message: "unknown recurrence kind"}
	}
	return nil
}
