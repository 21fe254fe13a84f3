package scheduler

import (
	"time"

	"weatherbot-api/internal/common"
	"weatherbot-api/internal/events"
	"weatherbot-api/internal/schedule"

	"go.uber.org/zap"
)

// entrySweeper handles one sweep over the active schedule entries
type entrySweeper struct {
	scheduler *scheduler
	logger    *zap.Logger
}

// processDueEntries fetches the active entries and fires the ones matching
// the current minute. It also expires one-time entries whose delivery
// failed earlier and whose match window has since passed.
func (w *entrySweeper) processDueEntries() error {
	startTime := time.Now()
	now := w.scheduler.clock.Now()
	w.logger.Debug("Starting schedule sweep")

	entries, err := w.scheduler.repository.ListActive()
	if err != nil {
		return NewSweepError("list_active_entries", err)
	}

	firedCount := 0
	errorCount := 0

	for _, entry := range entries {
		if !entry.IsDue(now) {
			if entry.Recurrence == common.RecurrenceOneTime {
				if _, failed := w.scheduler.pendingOneTime[entry.ID]; failed {
					w.expireEntry(entry, now)
				}
			}
			continue
		}

		if err := w.fireEntry(entry, now); err != nil {
			w.logger.Error("Failed to fire schedule entry",
				zap.String("entry_id", string(entry.ID)),
				zap.String("user_id", string(entry.UserID)),
				zap.Error(err))
			w.scheduler.metrics.RecordProcessingError(err)
			errorCount++
			continue
		}

		firedCount++
		w.scheduler.metrics.RecordEntryFired()
	}

	sweepDuration := time.Since(startTime)
	w.scheduler.metrics.RecordSweep(sweepDuration)

	if firedCount > 0 || errorCount > 0 {
		w.logger.Info("Schedule sweep completed",
			zap.Int("active_entries", len(entries)),
			zap.Int("fired_count", firedCount),
			zap.Int("error_count", errorCount),
			zap.Duration("sweep_duration", sweepDuration))
	}

	return nil
}

// fireEntry delivers a due entry and advances its state.
//
// One-time entries deliver first: a failed delivery leaves the entry active
// so the next sweep retries it while the minute still matches, after which
// expireEntry deactivates it without delivery. Daily entries advance state
// first, so a delivery failure is a missed day rather than a duplicate send
// on the next sweep; they recover on the next day's matching tick.
func (w *entrySweeper) fireEntry(entry *schedule.Entry, now time.Time) error {
	firedEvent := events.ScheduleFired{
		Event:      events.NewEvent(),
		EntryID:    string(entry.ID),
		UserID:     string(entry.UserID),
		Hour:       entry.Hour,
		Minute:     entry.Minute,
		Recurrence: string(entry.Recurrence),
	}

	if entry.Recurrence == common.RecurrenceOneTime {
		if err := w.scheduler.notifier.HandleScheduleFired(firedEvent); err != nil {
			w.scheduler.pendingOneTime[entry.ID] = now
			return NewEntryProcessingError(string(entry.ID), "deliver", err)
		}
		delete(w.scheduler.pendingOneTime, entry.ID)

		entry.MarkFired(now)
		if err := w.scheduler.repository.Update(entry); err != nil {
			return NewEntryProcessingError(string(entry.ID), "mark_fired", err)
		}
	} else {
		entry.MarkFired(now)
		if err := w.scheduler.repository.Update(entry); err != nil {
			return NewEntryProcessingError(string(entry.ID), "mark_fired", err)
		}
		if err := w.scheduler.notifier.HandleScheduleFired(firedEvent); err != nil {
			return NewEntryProcessingError(string(entry.ID), "deliver", err)
		}
	}

	w.logger.Debug("Schedule entry fired",
		zap.String("entry_id", string(entry.ID)),
		zap.String("user_id", string(entry.UserID)),
		zap.Int("hour", entry.Hour),
		zap.Int("minute", entry.Minute),
		zap.String("recurrence", string(entry.Recurrence)))

	return nil
}

// expireEntry deactivates a one-time entry whose delivery kept failing for
// the whole match window. The fire is missed: no delivery is attempted.
func (w *entrySweeper) expireEntry(entry *schedule.Entry, now time.Time) {
	entry.MarkFired(now)
	if err := w.scheduler.repository.Update(entry); err != nil {
		w.logger.Error("Failed to expire one-time entry",
			zap.String("entry_id", string(entry.ID)), zap.Error(err))
		w.scheduler.metrics.RecordProcessingError(err)
		return
	}
	delete(w.scheduler.pendingOneTime, entry.ID)

	w.logger.Warn("One-time entry missed its window without delivery",
		zap.String("entry_id", string(entry.ID)),
		zap.String("user_id", string(entry.UserID)),
		zap.Int("hour", entry.Hour),
		zap.Int("minute", entry.Minute))
}
