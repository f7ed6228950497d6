package metadata

import (
	"bytes"
	"context"
	"sync"
)

// MemoryRepository keeps everything in a map; nothing survives the process.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string][]byte)}
}

func (r *MemoryRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[key]
	if !ok {
		return nil, nil
	}
	return bytes.Clone(v), nil
}

func (r *MemoryRepository) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := bytes.Clone(value)
	if v == nil {
		v = []byte{}
	}
	r.data[key] = v
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

func (r *MemoryRepository) List(context.Context) (map[string][]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]byte, len(r.data))
	for k, v := range r.data {
		out[k] = bytes.Clone(v)
	}
	return out, nil
}

func (r *MemoryRepository) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = make(map[string][]byte)
	return nil
}
