package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"weatherbot-api/internal/common"
	"weatherbot-api/internal/config"
	"weatherbot-api/internal/events"
	"weatherbot-api/internal/schedule"

	"go.uber.org/zap"
)

// Scheduler defines the interface for the background schedule sweeper
type Scheduler interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
	GetMetrics() *SchedulerMetrics
}

// Notifier delivers the forecast for a fired schedule entry. The error
// return makes delivery outcome visible to the sweeper: a failed one-time
// fire must stay active so it can be retried while its minute still matches.
type Notifier interface {
	HandleScheduleFired(event events.ScheduleFired) error
}

// scheduler implements the Scheduler interface
type scheduler struct {
	config     config.SchedulerConfig
	repository schedule.Repository
	notifier   Notifier
	logger     *zap.Logger
	clock      common.Clock
	metrics    *SchedulerMetrics

	// One-time entries whose delivery failed, keyed to the time of the
	// failed fire. Touched only by the single sweep goroutine.
	pendingOneTime map[common.ID]time.Time

	// Context and cancellation
	ctx    context.Context
	cancel context.CancelFunc

	// Goroutine management
	wg      sync.WaitGroup
	ticker  *time.Ticker
	running atomic.Bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg config.SchedulerConfig, repository schedule.Repository, notifier Notifier, logger *zap.Logger, clock common.Clock) (Scheduler, error) {
	if cfg.PollInterval <= 0 {
		return nil, NewConfigurationError("poll_interval", cfg.PollInterval, "must be greater than 0")
	}
	if cfg.PollInterval > 60 {
		return nil, NewConfigurationError("poll_interval", cfg.PollInterval, "must not exceed 60 seconds or minute-precision entries can be skipped")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, NewConfigurationError("shutdown_timeout", cfg.ShutdownTimeout, "must be greater than 0")
	}

	return &scheduler{
		config:         cfg,
		repository:     repository,
		notifier:       notifier,
		logger:         logger,
		clock:          clock,
		metrics:        NewSchedulerMetrics(),
		pendingOneTime: make(map[common.ID]time.Time),
	}, nil
}

// Start begins the scheduler sweep loop
func (s *scheduler) Start(ctx context.Context) error {
	if s.running.Load() {
		return NewSchedulerError(ErrSchedulerAlreadyRunning, "scheduler is already running")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.ticker = time.NewTicker(time.Duration(s.config.PollInterval) * time.Second)
	s.running.Store(true)

	s.logger.Info("Starting schedule sweeper",
		zap.Int("poll_interval_seconds", s.config.PollInterval))

	s.wg.Add(1)
	go s.run()

	s.logger.Info("Schedule sweeper started successfully")
	return nil
}

// Stop gracefully shuts down the scheduler
func (s *scheduler) Stop() error {
	if !s.running.Load() {
		return NewSchedulerError(ErrSchedulerNotRunning, "scheduler is not running")
	}

	s.logger.Info("Stopping schedule sweeper...")

	if s.cancel != nil {
		s.cancel()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}

	// Wait for the sweep loop to complete with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Schedule sweeper stopped successfully")
	case <-time.After(time.Duration(s.config.ShutdownTimeout) * time.Second):
		s.logger.Warn("Scheduler shutdown timed out, sweep may still be running")
		return NewShutdownError("shutdown timeout exceeded", s.config.ShutdownTimeout)
	}

	s.running.Store(false)
	return nil
}

// IsRunning returns true if the scheduler is currently running
func (s *scheduler) IsRunning() bool {
	return s.running.Load()
}

// GetMetrics returns the current scheduler metrics
func (s *scheduler) GetMetrics() *SchedulerMetrics {
	return s.metrics
}

// run is the sweep loop goroutine
func (s *scheduler) run() {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Sweep loop panic recovered, restarting",
				zap.Any("panic", r))
			s.wg.Add(1)
			go s.run()
		}
	}()

	s.logger.Info("Starting sweep loop")

	sweeper := &entrySweeper{
		scheduler: s,
		logger:    s.logger,
	}

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("Sweep loop stopping due to context cancellation")
			return
		case <-s.ticker.C:
			if err := sweeper.processDueEntries(); err != nil {
				s.logger.Error("Failed to process due entries", zap.Error(err))
				s.metrics.RecordProcessingError(err)
			}
		}
	}
}
