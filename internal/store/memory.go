package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/mortgage-simulator/internal/simulation"
)

// MemoryStore is a Repository held in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*simulation.Record
	seq     map[uuid.UUID]int
	next    int
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]*simulation.Record),
		seq:     make(map[uuid.UUID]int),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) Save(_ context.Context, ownerID string, record *simulation.Record) (*simulation.Record, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var createdAt time.Time
	if existing, ok := m.records[record.ID]; ok && record.ID != uuid.Nil {
		if existing.OwnerID != ownerID {
			return nil, ErrForbidden
		}
		createdAt = existing.CreatedAt
	}

	stored := stamp(record, ownerID, createdAt, m.now())
	if _, ok := m.seq[stored.ID]; !ok {
		m.next++
		m.seq[stored.ID] = m.next
	}
	m.records[stored.ID] = stored

	return cloneRecord(stored), nil
}

func (m *MemoryStore) FindAll(_ context.Context, ownerID string) ([]*simulation.Record, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	records := []*simulation.Record{}
	for _, r := range m.records {
		if r.OwnerID == ownerID {
			records = append(records, cloneRecord(r))
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return m.seq[records[i].ID] > m.seq[records[j].ID]
	})
	return records, nil
}

func (m *MemoryStore) FindByID(_ context.Context, ownerID string, id uuid.UUID) (*simulation.Record, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	if r.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return cloneRecord(r), nil
}

func (m *MemoryStore) Delete(_ context.Context, ownerID string, id uuid.UUID) error {
	if ownerID == "" {
		return ErrMissingOwner
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	if r.OwnerID != ownerID {
		return ErrForbidden
	}
	delete(m.records, id)
	delete(m.seq, id)
	return nil
}

// cloneRecord copies r so callers never share its schedule with the store.
func cloneRecord(r *simulation.Record) *simulation.Record {
	out := *r
	out.Schedule = append(r.Schedule[:0:0], r.Schedule...)
	return &out
}

func (m *MemoryStore) Close() error {
	return nil
}
