package store

import (
	"context"
	"sync"

	"github.com/gofrs/uuid"
)

// Manager hands out one TaskStore per authenticated user, loading state on
// first use.
type Manager struct {
	remote Remote

	mu     sync.Mutex
	stores map[uuid.UUID]*TaskStore
}

func NewManager(remote Remote) *Manager {
	return &Manager{
		remote: remote,
		stores: make(map[uuid.UUID]*TaskStore),
	}
}

// For returns the store for userID, creating and loading it on first call.
// A nil user id means no session: ErrAuthRequired.
func (m *Manager) For(ctx context.Context, userID uuid.UUID) (*TaskStore, error) {
	if userID == uuid.Nil {
		return nil, ErrAuthRequired
	}

	m.mu.Lock()
	s, ok := m.stores[userID]
	if !ok {
		s = NewTaskStore(userID, m.remote)
		m.stores[userID] = s
	}
	m.mu.Unlock()

	if !ok {
		if err := s.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Evict drops a user's cached store, forcing a reload on next access.
func (m *Manager) Evict(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, userID)
}
