package state

import (
	"context"
	"sync"

	"fabtrack/internal/core"
	"fabtrack/pkg/progress"
)

// Memory keeps the persisted snapshot in process memory. Used by tests and
// deployments that accept losing the session on restart.
type Memory struct {
	mu    sync.Mutex
	snap  core.Snapshot
	saved bool
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory { return &Memory{} }

// Save implements Store.
func (m *Memory) Save(_ context.Context, snap core.Snapshot) error {
	records := make([]progress.Record, len(snap.Records))
	copy(records, snap.Records)
	snap.Records = records

	m.mu.Lock()
	m.snap = snap
	m.saved = true
	m.mu.Unlock()
	return nil
}

// Load implements Store.
func (m *Memory) Load(_ context.Context) (core.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return core.Snapshot{}, false, nil
	}
	snap := m.snap
	records := make([]progress.Record, len(m.snap.Records))
	copy(records, m.snap.Records)
	snap.Records = records
	return snap, true, nil
}

// Close implements Store.
func (m *Memory) Close() error { return nil }
