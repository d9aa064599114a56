package backend

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-memory Backend, used by the stash-size simulator (spec.md
// §4.I, which must eliminate I/O) and by unit tests that don't need real
// disk or network access.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Read(_ context.Context, name string) ([]byte, Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[name]
	if !ok {
		return nil, notFoundLog(name), nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, getLog(name), nil
}

func (m *Memory) Write(_ context.Context, name string, data []byte) (Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[name] = cp
	return putLog(name), nil
}

func (m *Memory) ReadMultiple(ctx context.Context, names []string) ([]ReadResult, error) {
	return readMultipleSequentialOrParallel(ctx, m, names)
}

func (m *Memory) WriteMultiple(ctx context.Context, writes map[string][]byte) ([]Log, error) {
	return writeMultipleSequentialOrParallel(ctx, m, writes)
}

func (m *Memory) ListNames(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
