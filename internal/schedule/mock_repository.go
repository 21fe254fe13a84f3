package schedule

import (
	"sync"

	"weatherbot-api/internal/common"
)

// MockRepository provides an in-memory Repository implementation for testing
type MockRepository struct {
	mu      sync.Mutex
	entries map[common.ID]*Entry

	CreateError error
	ListError   error
	UpdateError error
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		entries: make(map[common.ID]*Entry),
	}
}

func (m *MockRepository) Create(entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateError != nil {
		return m.CreateError
	}
	if err := validateEntry(entry); err != nil {
		return err
	}
	for _, e := range m.entries {
		if e.Active && e.UserID == entry.UserID &&
			e.Hour == entry.Hour && e.Minute == entry.Minute && e.Recurrence == entry.Recurrence {
			return ErrDuplicateEntry
		}
	}
	copied := *entry
	m.entries[entry.ID] = &copied
	return nil
}

func (m *MockRepository) ListActive() ([]*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListError != nil {
		return nil, m.ListError
	}
	var out []*Entry
	for _, e := range m.entries {
		if e.Active {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *MockRepository) ListByUser(userID common.UserID) ([]*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListError != nil {
		return nil, m.ListError
	}
	var out []*Entry
	for _, e := range m.entries {
		if e.UserID == userID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *MockRepository) Update(entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.entries[entry.ID]; !ok {
		return common.NotFoundError{Resource: "ScheduleEntry", ID: string(entry.ID)}
	}
	copied := *entry
	m.entries[entry.ID] = &copied
	return nil
}

func (m *MockRepository) Remove(id common.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return common.NotFoundError{Resource: "ScheduleEntry", ID: string(id)}
	}
	delete(m.entries, id)
	return nil
}

func (m *MockRepository) Counts() (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var active int64
	for _, e := range m.entries {
		if e.Active {
			active++
		}
	}
	return active, int64(len(m.entries)), nil
}

// Get returns the stored entry for test assertions
func (m *MockRepository) Get(id common.ID) (*Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	copied := *e
	return &copied, true
}
