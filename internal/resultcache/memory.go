package resultcache

import (
	"context"
	"sync"

	"github.com/lumos-dse/lumos/api/v1alpha1"
)

// Memory is an in-process cache. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records map[string]v1alpha1.SweepRecord
}

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]v1alpha1.SweepRecord)}
}

func (m *Memory) Get(_ context.Context, key string) (v1alpha1.SweepRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[key]
	if !ok {
		return v1alpha1.SweepRecord{}, false, nil
	}
	return *rec.DeepCopy(), true, nil
}

func (m *Memory) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

func (m *Memory) Put(_ context.Context, key string, rec v1alpha1.SweepRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = *rec.DeepCopy()
	return nil
}

func (m *Memory) Flush(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

// snapshot returns a copy of every record.
func (m *Memory) snapshot() map[string]v1alpha1.SweepRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]v1alpha1.SweepRecord, len(m.records))
	for k, v := range m.records {
		out[k] = *v.DeepCopy()
	}
	return out
}
