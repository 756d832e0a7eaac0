package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mansoorceksport/liftlog/internal/domain"
)

// MemoryHistorical1RMStore keeps the serialized index in process memory.
// It stores bytes rather than the map so every Load returns an independent copy.
type MemoryHistorical1RMStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryHistorical1RMStore() *MemoryHistorical1RMStore {
	return &MemoryHistorical1RMStore{}
}

func (m *MemoryHistorical1RMStore) Load(_ context.Context) (domain.Historical1RMIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return domain.Historical1RMIndex{}, nil
	}
	idx := domain.Historical1RMIndex{}
	if err := json.Unmarshal(m.data, &idx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptIndex, err)
	}
	return idx, nil
}

func (m *MemoryHistorical1RMStore) Save(_ context.Context, idx domain.Historical1RMIndex) error {
	if idx == nil {
		idx = domain.Historical1RMIndex{}
	}
	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryHistorical1RMStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}

// Raw returns the persisted document, nil when absent
func (m *MemoryHistorical1RMStore) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data
}

// SetRaw replaces the persisted document verbatim
func (m *MemoryHistorical1RMStore) SetRaw(data []byte) {
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
}
