package messenger

import (
	"context"
	"sync"
	"testing"
	"time"

	"weatherbot-api/internal/common"
	"weatherbot-api/internal/config"
	"weatherbot-api/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubTransport implements Provider and CursorStore in memory
type stubTransport struct {
	mu      sync.Mutex
	inbound []*Inbound
	sent    []Outbound
	cursors map[string]int64

	pollErr error
	sendErr error
}

func newStubTransport() *stubTransport {
	return &stubTransport{cursors: make(map[string]int64)}
}

func (s *stubTransport) PollInbound(ctx context.Context, cursor int64) (*Inbound, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pollErr != nil {
		return nil, s.pollErr
	}
	for _, msg := range s.inbound {
		if msg.ID > cursor {
			copied := *msg
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubTransport) SendOutbound(ctx context.Context, userID common.UserID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, Outbound{UserID: userID, Text: text, SentAt: time.Now()})
	return nil
}

func (s *stubTransport) Load(name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursors[name], nil
}

func (s *stubTransport) Save(name string, position int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[name] = position
	return nil
}

func (s *stubTransport) sentMessages() []Outbound {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Outbound, len(s.sent))
	copy(out, s.sent)
	return out
}

func testMessengerConfig() config.MessengerConfig {
	return config.MessengerConfig{
		PollInterval: 1,
		CursorName:   "imessage",
	}
}

func TestNewMessengerService_Validation(t *testing.T) {
	tests := []struct {
		name          string
		config        config.MessengerConfig
		expectedError string
	}{
		{
			name:          "zero poll interval",
			config:        config.MessengerConfig{PollInterval: 0, CursorName: "imessage"},
			expectedError: "poll_interval",
		},
		{
			name:          "empty cursor name",
			config:        config.MessengerConfig{PollInterval: 1, CursorName: ""},
			expectedError: "cursor_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := newStubTransport()
			bus := events.NewMockEventBus()

			_, err := NewMessengerService(tt.config, transport, transport, bus, zap.NewNop())

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestMessengerService_StartStop(t *testing.T) {
	transport := newStubTransport()
	transport.cursors["imessage"] = 5
	bus := events.NewMockEventBus()

	svc, err := NewMessengerService(testMessengerConfig(), transport, transport, bus, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, svc.Start(ctx))
	assert.True(t, svc.IsRunning())
	assert.EqualValues(t, 5, svc.CursorPosition(), "cursor restored from store")

	assert.Error(t, svc.Start(ctx), "double start rejected")

	require.NoError(t, svc.Stop())
	assert.False(t, svc.IsRunning())
	assert.Error(t, svc.Stop(), "double stop rejected")
}

func TestMessengerService_DrainInbound(t *testing.T) {
	transport := newStubTransport()
	transport.inbound = []*Inbound{
		{ID: 1, UserID: "user-1", Text: "hello", ReceivedAt: time.Now()},
		{ID: 2, UserID: "user-1", Text: "", ReceivedAt: time.Now()},
		{ID: 3, UserID: "user-2", Text: "weather", ReceivedAt: time.Now()},
	}
	bus := events.NewMockEventBus()

	svc, err := NewMessengerService(testMessengerConfig(), transport, transport, bus, zap.NewNop())
	require.NoError(t, err)

	ms := svc.(*messengerService)
	ms.ctx = context.Background()

	require.NoError(t, ms.drainInbound())

	// Empty-text messages advance the cursor but publish nothing
	published := bus.GetPublishedEvents(events.TopicMessageReceived)
	require.Len(t, published, 2)

	first := published[0].(events.MessageReceived)
	assert.Equal(t, "user-1", first.UserID)
	assert.Equal(t, "hello", first.Text)

	second := published[1].(events.MessageReceived)
	assert.Equal(t, "user-2", second.UserID)
	assert.Equal(t, "weather", second.Text)

	assert.EqualValues(t, 3, ms.CursorPosition())
	assert.EqualValues(t, 3, transport.cursors["imessage"], "cursor persisted")
}

func TestMessengerService_DrainInboundResumesFromCursor(t *testing.T) {
	transport := newStubTransport()
	transport.inbound = []*Inbound{
		{ID: 1, UserID: "user-1", Text: "old", ReceivedAt: time.Now()},
		{ID: 2, UserID: "user-1", Text: "new", ReceivedAt: time.Now()},
	}
	bus := events.NewMockEventBus()

	svc, err := NewMessengerService(testMessengerConfig(), transport, transport, bus, zap.NewNop())
	require.NoError(t, err)

	ms := svc.(*messengerService)
	ms.ctx = context.Background()
	ms.cursor.Store(1)

	require.NoError(t, ms.drainInbound())

	published := bus.GetPublishedEvents(events.TopicMessageReceived)
	require.Len(t, published, 1)
	assert.Equal(t, "new", published[0].(events.MessageReceived).Text)
}

func TestMessengerService_DrainInboundPollFailure(t *testing.T) {
	transport := newStubTransport()
	transport.pollErr = WrapPollError(assert.AnError, 0)
	bus := events.NewMockEventBus()

	svc, err := NewMessengerService(testMessengerConfig(), transport, transport, bus, zap.NewNop())
	require.NoError(t, err)

	ms := svc.(*messengerService)
	ms.ctx = context.Background()

	assert.Error(t, ms.drainInbound())
	assert.Empty(t, bus.GetPublishedEvents(events.TopicMessageReceived))
}

func TestMessengerService_ReplySendDelivery(t *testing.T) {
	transport := newStubTransport()
	bus := events.NewMockEventBus()

	_, err := NewMessengerService(testMessengerConfig(), transport, transport, bus, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, bus.Publish(events.TopicReplySend, events.ReplySend{
		Event:  events.NewEvent(),
		UserID: "user-1",
		Text:   "Davis, CA Forecast:\n\nTonight: 54F. Partly Cloudy",
	}))

	sent := transport.sentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, common.UserID("user-1"), sent[0].UserID)
	assert.Contains(t, sent[0].Text, "Davis, CA Forecast:")
}
