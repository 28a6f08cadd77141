package cart

import (
	"context"
	"sync"
)

// MemoryRepository keeps carts in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewMemoryRepository constructs an empty in-memory cart repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{states: make(map[string]State)}
}

// Load returns the session's cart, or an empty cart when none is stored.
func (r *MemoryRepository) Load(ctx context.Context, sessionID string) (State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.states[sessionID]
	if !ok {
		return Empty(), nil
	}
	return Recompute(cloneLines(state.Lines)), nil
}

// Save stores the session's cart. An empty cart is dropped.
func (r *MemoryRepository) Save(ctx context.Context, sessionID string, state State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state.IsEmpty() {
		delete(r.states, sessionID)
		return nil
	}
	r.states[sessionID] = Recompute(cloneLines(state.Lines))
	return nil
}
