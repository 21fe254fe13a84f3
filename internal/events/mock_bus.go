package events

import (
	"fmt"
	"sync"
)

// MockEventBus provides an in-memory implementation of EventBus for testing.
// Handlers are invoked synchronously, matching the production bus.
type MockEventBus struct {
	subscriptions   map[string][]interface{}
	publishedEvents map[string][]interface{}
	errors          []error
	mutex           sync.RWMutex
}

// NewMockEventBus creates a new MockEventBus instance
func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscriptions:   make(map[string][]interface{}),
		publishedEvents: make(map[string][]interface{}),
	}
}

// Subscribe implements the EventBus interface
func (m *MockEventBus) Subscribe(topic string, handler interface{}) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.subscriptions[topic] = append(m.subscriptions[topic], handler)
	return nil
}

// Unsubscribe implements the EventBus interface
func (m *MockEventBus) Unsubscribe(topic string, handler interface{}) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	handlers := m.subscriptions[topic]
	for i := len(handlers) - 1; i >= 0; i-- {
		if handlers[i] == handler {
			handlers = append(handlers[:i], handlers[i+1:]...)
		}
	}
	m.subscriptions[topic] = handlers
	return nil
}

// Publish implements the EventBus interface
func (m *MockEventBus) Publish(topic string, event interface{}) error {
	m.mutex.Lock()
	m.publishedEvents[topic] = append(m.publishedEvents[topic], event)
	handlers := make([]interface{}, len(m.subscriptions[topic]))
	copy(handlers, m.subscriptions[topic])
	m.mutex.Unlock()

	// Invoke handlers outside the mutex to avoid deadlocks when a handler
	// publishes.
	for _, handler := range handlers {
		m.invokeHandler(handler, event)
	}
	return nil
}

// Close implements the EventBus interface
func (m *MockEventBus) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.subscriptions = make(map[string][]interface{})
	m.publishedEvents = make(map[string][]interface{})
	return nil
}

// GetPublishedEvents returns published events for a topic
func (m *MockEventBus) GetPublishedEvents(topic string) []interface{} {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]interface{}, len(m.publishedEvents[topic]))
	copy(result, m.publishedEvents[topic])
	return result
}

// GetSubscriberCount returns the number of subscribers for a topic
func (m *MockEventBus) GetSubscriberCount(topic string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return len(m.subscriptions[topic])
}

// ClearEvents resets all published events
func (m *MockEventBus) ClearEvents() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.publishedEvents = make(map[string][]interface{})
}

// Errors returns handler invocation failures recorded so far
func (m *MockEventBus) Errors() []error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]error, len(m.errors))
	copy(result, m.errors)
	return result
}

// invokeHandler safely invokes an event handler
func (m *MockEventBus) invokeHandler(handler interface{}, event interface{}) {
	defer func() {
		if r := recover(); r != nil {
			m.mutex.Lock()
			m.errors = append(m.errors, fmt.Errorf("handler panic: %v", r))
			m.mutex.Unlock()
		}
	}()

	invoked := false
	switch h := handler.(type) {
	case func(MessageReceived):
		if e, ok := event.(MessageReceived); ok {
			h(e)
			invoked = true
		}
	case func(ReplySend):
		if e, ok := event.(ReplySend); ok {
			h(e)
			invoked = true
		}
	case func(interface{}):
		h(event)
		invoked = true
	}

	if !invoked {
		m.mutex.Lock()
		m.errors = append(m.errors, fmt.Errorf("type mismatch: handler does not match event type %T", event))
		m.mutex.Unlock()
	}
}
