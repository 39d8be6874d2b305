package state

import "sync"

// Memory is an in-memory store for testing.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get retrieves a value by key.
func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil
	}
	return nil, nil
}

// Put stores a value by key.
func (m *Memory) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

// Delete removes a value by key.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}
