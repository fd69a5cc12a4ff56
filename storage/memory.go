package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryBackend keeps objects in process memory. Used by tests and by
// STORAGE_BACKEND=memory for local previews.
type MemoryBackend struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{objects: make(map[string]Object)}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) GetObject(ctx context.Context, key string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	data := make([]byte, len(obj.Data))
	copy(data, obj.Data)
	return &Object{Key: key, Data: data, Version: obj.Version}, nil
}

func (m *MemoryBackend) PutObject(ctx context.Context, key string, data []byte, expectedVersion string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.objects[key]
	switch {
	case expectedVersion == "":
	case expectedVersion == AbsentVersion:
		if exists {
			return "", ErrVersionMismatch
		}
	case !exists || current.Version != expectedVersion:
		return "", ErrVersionMismatch
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	version := uuid.NewString()
	m.objects[key] = Object{Key: key, Data: stored, Version: version}
	return version, nil
}

func (m *MemoryBackend) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
