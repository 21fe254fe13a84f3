package messenger

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"weatherbot-api/internal/common"
	"weatherbot-api/internal/config"
	"weatherbot-api/internal/events"

	"go.uber.org/zap"
)

// Service drives the inbound polling loop and delivers outbound replies
type Service interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
	CursorPosition() int64
}

// messengerService implements the Service interface
type messengerService struct {
	config   config.MessengerConfig
	provider Provider
	cursors  CursorStore
	eventBus events.EventBus
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	wg      sync.WaitGroup
	ticker  *time.Ticker
	running atomic.Bool
	cursor  atomic.Int64
}

// NewMessengerService creates a new messenger service
func NewMessengerService(cfg config.MessengerConfig, provider Provider, cursors CursorStore, eventBus events.EventBus, logger *zap.Logger) (Service, error) {
	if cfg.PollInterval <= 0 {
		return nil, common.ValidationError{Field: "poll_interval", Message: "must be greater than 0"}
	}
	if cfg.CursorName == "" {
		return nil, common.ValidationError{Field: "cursor_name", Message: "must not be empty"}
	}

	s := &messengerService{
		config:   cfg,
		provider: provider,
		cursors:  cursors,
		eventBus: eventBus,
		logger:   logger,
	}

	if err := eventBus.Subscribe(events.TopicReplySend, s.handleReplySend); err != nil {
		return nil, err
	}

	return s, nil
}

// Start loads the persisted cursor and begins the polling loop
func (s *messengerService) Start(ctx context.Context) error {
	if s.running.Load() {
		return common.InternalError{Message: "messenger service is already running"}
	}

	pos, err := s.cursors.Load(s.config.CursorName)
	if err != nil {
		return err
	}
	s.cursor.Store(pos)

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.ticker = time.NewTicker(time.Duration(s.config.PollInterval) * time.Second)
	s.running.Store(true)

	s.logger.Info("Starting inbound message poller",
		zap.Int("poll_interval_seconds", s.config.PollInterval),
		zap.Int64("cursor", pos))

	s.wg.Add(1)
	go s.pollLoop()

	return nil
}

// Stop gracefully shuts down the polling loop
func (s *messengerService) Stop() error {
	if !s.running.Load() {
		return common.InternalError{Message: "messenger service is not running"}
	}

	s.logger.Info("Stopping inbound message poller...")

	if s.cancel != nil {
		s.cancel()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	s.wg.Wait()

	s.running.Store(false)
	s.logger.Info("Inbound message poller stopped")
	return nil
}

// IsRunning returns true if the poller is currently running
func (s *messengerService) IsRunning() bool {
	return s.running.Load()
}

// CursorPosition returns the current last-handled marker
func (s *messengerService) CursorPosition() int64 {
	return s.cursor.Load()
}

func (s *messengerService) pollLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("Poll loop stopping due to context cancellation")
			return
		case <-s.ticker.C:
			if err := s.drainInbound(); err != nil {
				// Fatal for this tick only; the next tick retries.
				s.logger.Error("Inbound poll tick failed", zap.Error(err))
			}
		}
	}
}

// drainInbound processes all pending inbound messages one turn at a time.
// The cursor is advanced and persisted before dispatch so a crash mid-turn
// drops the message rather than reprocessing it.
func (s *messengerService) drainInbound() error {
	for {
		msg, err := s.provider.PollInbound(s.ctx, s.cursor.Load())
		if err != nil {
			return err
		}
		if msg == nil {
			return nil
		}

		s.cursor.Store(msg.ID)
		if err := s.cursors.Save(s.config.CursorName, msg.ID); err != nil {
			return err
		}

		if msg.Text == "" {
			continue
		}

		s.logger.Info("Inbound message received",
			zap.Int64("message_id", msg.ID),
			zap.String("user_id", string(msg.UserID)),
			zap.Int("text_length", len(msg.Text)))

		event := events.MessageReceived{
			Event:      events.NewEvent(),
			UserID:     string(msg.UserID),
			Text:       msg.Text,
			ReceivedAt: msg.ReceivedAt,
		}
		if err := s.eventBus.Publish(events.TopicMessageReceived, event); err != nil {
			s.logger.Error("Failed to publish inbound message event",
				zap.Int64("message_id", msg.ID),
				zap.Error(err))
		}
	}
}

// handleReplySend delivers outbound replies requested by other services
func (s *messengerService) handleReplySend(event events.ReplySend) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.provider.SendOutbound(ctx, common.UserID(event.UserID), event.Text); err != nil {
		s.logger.Error("Failed to send outbound message",
			zap.String("correlation_id", event.CorrelationID),
			zap.String("user_id", event.UserID),
			zap.Error(err))
	}
}
