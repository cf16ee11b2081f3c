package repository

import (
	"context"
	"sync"

	"github.com/m-mizutani/oracle/pkg/interfaces"
)

// Memory is an in-process slot. It is used by tests and by the serve
// command when no persistence is wanted.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

var _ interfaces.Slot = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *Memory) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}
