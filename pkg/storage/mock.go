package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/worldforge/pkg/state"
)

// MockStorage is an in-memory Storage for tests and storage-less runs.
type MockStorage struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]record
	pingError error
	saveError error
	now       func() time.Time
}

type record struct {
	snap      state.Snapshot
	updatedAt time.Time
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return NewMockStorageWithClock(time.Now)
}

// NewMockStorageWithClock stamps saves with now.
func NewMockStorageWithClock(now func() time.Time) *MockStorage {
	return &MockStorage{
		snapshots: make(map[uuid.UUID]record),
		now:       now,
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on SaveSnapshot
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveSnapshot(ctx context.Context, id uuid.UUID, snap state.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.snapshots[id] = record{snap: snap.Clone(), updatedAt: m.now()}
	return nil
}

func (m *MockStorage) LoadSnapshot(ctx context.Context, id uuid.UUID) (*state.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.snapshots[id]
	if !ok {
		return nil, nil
	}
	snap := r.snap.Clone()
	return &snap, nil
}

func (m *MockStorage) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, id)
	return nil
}

func (m *MockStorage) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]SessionSummary, 0, len(m.snapshots))
	for id, r := range m.snapshots {
		out = append(out, Summarize(id, r.snap, r.updatedAt))
	}
	SortByRecent(out)
	return out, nil
}

// SortByRecent orders summaries by UpdatedAt, newest first, breaking
// ties by id.
func SortByRecent(s []SessionSummary) {
	slices.SortFunc(s, func(a, b SessionSummary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}
