package feed

import (
	"context"
	"sync"

	xerrors "truthchain/internal/errors"
)

// defaultCapacity bounds feed growth; the cap is config-overridable.
const defaultCapacity = 50

// MemoryStore keeps the feed in process memory, newest first.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
}

// NewMemoryStore creates a feed store holding at most capacity entries,
// pre-populated with the given seed.
func NewMemoryStore(capacity int, seed []Entry) *MemoryStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	entries := make([]Entry, 0, capacity)
	entries = append(entries, seed...)
	if len(entries) > capacity {
		entries = entries[:capacity]
	}
	return &MemoryStore{entries: entries, capacity: capacity}
}

// Prepend inserts the entry at the head, evicting the oldest entry when the
// cap is exceeded. Existing order is preserved.
func (m *MemoryStore) Prepend(_ context.Context, entry Entry) error {
	if entry.ID == "" {
		return xerrors.New(xerrors.CodeInvalidArgument, "feed entry id cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append([]Entry{entry}, m.entries...)
	if len(m.entries) > m.capacity {
		m.entries = m.entries[:m.capacity]
	}
	return nil
}

// List returns a copy of the feed, newest first.
func (m *MemoryStore) List(_ context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
