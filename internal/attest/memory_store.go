package attest

import (
	"context"
	"sort"
	"sync"
	"time"

	xerrors "truthchain/internal/errors"
)

// MemoryStore keeps attestation records in memory. It is the default driver;
// durability lives on the ledger itself.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Save archives a record. Records are immutable: saving an existing id is a
// conflict.
func (m *MemoryStore) Save(_ context.Context, record *Record) error {
	if record == nil {
		return xerrors.New(xerrors.CodeInvalidArgument, "record cannot be nil")
	}
	if record.ID == "" {
		return xerrors.New(xerrors.CodeInvalidArgument, "record id cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[record.ID]; ok {
		return xerrors.New(xerrors.CodeConflict, "record already exists")
	}
	if record.CreatedAt == 0 {
		record.CreatedAt = time.Now().Unix()
	}
	clone := *record
	m.records[record.ID] = &clone
	return nil
}

// ListLatest returns up to limit records, newest first.
func (m *MemoryStore) ListLatest(_ context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 20
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]*Record, 0, len(m.records))
	for _, record := range m.records {
		clone := *record
		results = append(results, &clone)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].CreatedAt == results[j].CreatedAt {
			return results[i].ID > results[j].ID
		}
		return results[i].CreatedAt > results[j].CreatedAt
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Count returns the number of archived records.
func (m *MemoryStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
