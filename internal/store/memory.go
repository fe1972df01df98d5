package store

import (
	"context"
	"sync"
)

// Memory is an in-process Store fake for unit tests, standing in for the
// teacher pack's mock.Conn pattern of a test double over a real
// dependency.
type Memory struct {
	mu     sync.Mutex
	lists  map[string][][]byte
	values map[string][]byte
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		lists:  make(map[string][][]byte),
		values: make(map[string][]byte),
	}
}

// ListPushLeft implements Store.
func (m *Memory) ListPushLeft(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[key] = append([][]byte{value}, m.lists[key]...)
	return nil
}

// ListPopLeft implements Store.
func (m *Memory) ListPopLeft(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.lists[key]
	if len(l) == 0 {
		return nil, false, nil
	}
	v := l[0]
	m.lists[key] = l[1:]
	return v, true, nil
}

// ListLen implements Store.
func (m *Memory) ListLen(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lists[key]), nil
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	delete(m.lists, key)
	return nil
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}
