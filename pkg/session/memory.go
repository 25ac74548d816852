package session

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns ErrNotFound if the session doesn't exist.
	Get(ctx context.Context, id string) (*Session, error)

	// Put stores a session, replacing one with the same ID.
	Put(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all sessions, newest first.
	List(ctx context.Context) ([]*Session, error)

	// Cleanup removes sessions that finished more than ttl ago and
	// returns how many were removed.
	Cleanup(ctx context.Context, ttl time.Duration) (int, error)
}

// MemoryStore keeps sessions in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) Put(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Finish()
		delete(m.sessions, id)
	}
	return nil
}

func (m *MemoryStore) List(ctx context.Context) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *Session) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) Cleanup(ctx context.Context, ttl time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for id, s := range m.sessions {
		if s.expired(now, ttl) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// RunCleanup calls Cleanup every interval until ctx is done.
func RunCleanup(ctx context.Context, store Store, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = store.Cleanup(ctx, ttl)
		}
	}
}
