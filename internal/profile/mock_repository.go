package profile

import (
	"sync"

	"weatherbot-api/internal/common"
)

// MockRepository provides an in-memory Repository implementation for testing
type MockRepository struct {
	mu       sync.Mutex
	profiles map[common.UserID]*UserProfile

	GetError error
	PutError error
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		profiles: make(map[common.UserID]*UserProfile),
	}
}

func (m *MockRepository) Get(userID common.UserID) (*UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetError != nil {
		return nil, m.GetError
	}
	if p, ok := m.profiles[userID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, common.NotFoundError{Resource: "UserProfile", ID: string(userID)}
}

func (m *MockRepository) Put(profile *UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutError != nil {
		return m.PutError
	}
	copied := *profile
	m.profiles[profile.UserID] = &copied
	return nil
}

func (m *MockRepository) Count() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.profiles)), nil
}
