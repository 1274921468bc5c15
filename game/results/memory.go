package results

import (
	"context"
	"sync"
)

// MemoryStore keeps summaries in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	summaries map[string]Summary
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{summaries: make(map[string]Summary)}
}

// SubmitResult stores s. Submitting the same ID twice is a no-op.
func (m *MemoryStore) SubmitResult(ctx context.Context, s Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.summaries[s.ID]; !exists {
		s.Discovered = append([]string(nil), s.Discovered...)
		m.summaries[s.ID] = s
	}
	return nil
}

// Top returns the best limit summaries.
func (m *MemoryStore) Top(ctx context.Context, limit int) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	m.mu.RLock()
	out := make([]Summary, 0, len(m.summaries))
	for _, s := range m.summaries {
		out = append(out, s)
	}
	m.mu.RUnlock()

	rank(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len returns the number of stored summaries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.summaries)
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
