package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/ports"
)

// mapStore is the smallest StateStore that honours the contract.
type mapStore struct {
	mu   sync.Mutex
	data map[string]*domain.State
}

func (m *mapStore) Save(_ context.Context, id string, state *domain.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = state.Snapshot()
	return nil
}

func (m *mapStore) Load(_ context.Context, id string) (*domain.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.data[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return state.Snapshot(), nil
}

func (m *mapStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *mapStore) List(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestStateStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, &mapStore{data: make(map[string]*domain.State)})
}
