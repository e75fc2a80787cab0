package archive

import (
	"context"
	"fmt"
	"sync"
)

// Memory keeps snapshots in-memory for tests and dry runs.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory archive.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Put stores the snapshot and returns a pseudo URI.
func (a *Memory) Put(_ context.Context, path string, data []byte) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data[path] = append([]byte(nil), data...)
	return "memory://" + path, nil
}

// Get returns a stored snapshot.
func (a *Memory) Get(path string) ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	b, ok := a.data[path]
	return b, ok
}

// Len reports the number of stored snapshots.
func (a *Memory) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.data)
}
