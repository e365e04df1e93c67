package segment

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Key identifies a record inside a city save.
type Key struct {
	Type     uint32
	Group    uint32
	Instance uint32
}

func (k Key) String() string {
	return fmt.Sprintf("0x%08x/0x%08x/0x%08x", k.Type, k.Group, k.Instance)
}

var ErrNotFound = errors.New("segment record not found")

// Store is one city save: a set of blobs addressed by Key.
type Store interface {
	Read(ctx context.Context, key Key) ([]byte, error)
	Write(ctx context.Context, key Key, data []byte) error
}

// Deleter is implemented by stores that outlive a single save, where a
// record that is no longer written must be removed explicitly.
type Deleter interface {
	Delete(ctx context.Context, key Key) error
}

// Memory is an in-memory Store.
type Memory struct {
	mu      sync.Mutex
	records map[Key][]byte
}

func NewMemory() *Memory {
	return &Memory{records: make(map[Key][]byte)}
}

func (m *Memory) Read(_ context.Context, key Key) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.records[key]
	if !ok {
		return nil, fmt.Errorf("%v: %w", key, ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) Write(_ context.Context, key Key, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = append([]byte(nil), data...)
	return nil
}

// Delete removes the record. Deleting a missing record is not an error.
func (m *Memory) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
