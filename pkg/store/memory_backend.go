package store

import (
	"context"
	"sync"
)

type MemoryBackend struct {
	groups map[string]map[string]string
	mu     sync.RWMutex
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		groups: map[string]map[string]string{},
	}
}

func (b *MemoryBackend) Load(_ context.Context, name string) (map[string]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return copyValues(b.groups[name]), nil
}

func (b *MemoryBackend) Save(_ context.Context, name string, values map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.groups[name] = copyValues(values)
	return nil
}
