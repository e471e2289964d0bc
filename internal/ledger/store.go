package ledger

import (
	"context"
	"sync"
)

// Store persists one merchant's ledger state.
type Store interface {
	Load(ctx context.Context, merchantID string) (State, error)
	Save(ctx context.Context, merchantID string, st State) error
}

// Replacer is implemented by stores whose Save only appends to the stored
// history. Replace is used when a state does not extend it.
type Replacer interface {
	Replace(ctx context.Context, merchantID string, st State) error
}

// MemoryStore keeps states in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

// Load returns an empty state for unknown merchants.
func (m *MemoryStore) Load(ctx context.Context, merchantID string) (State, error) {
	select {
	case <-ctx.Done():
		return State{}, ctx.Err()
	default:
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[merchantID].clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, merchantID string, st State) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[merchantID] = st.clone()
	return nil
}
