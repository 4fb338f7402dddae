package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/onboarding/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]entry
	ttl      time.Duration
	now      func() time.Time
}

type entry struct {
	state     *domain.State
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreTTL expires sessions d after their last save, like the redis store.
// Zero keeps them until deleted.
func WithStoreTTL(d time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = d
	}
}

// WithStoreClock replaces time.Now, for tests.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string]entry),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save keeps a private copy of the state and refreshes its expiry.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.State) error {
	e := entry{state: state.Snapshot()}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = e
	return nil
}

// Load returns a copy so callers can't mutate the stored state by pointer.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if e.expired(s.now()) {
		s.evict(sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return e.state.Snapshot(), nil
}

// Delete removes the state.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// List returns the live session IDs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id, e := range s.sessions {
		if !e.expired(now) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// evict drops an expired entry unless it was saved again meanwhile.
func (s *Store) evict(sessionID string) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[sessionID]; ok && e.expired(now) {
		delete(s.sessions, sessionID)
	}
}
