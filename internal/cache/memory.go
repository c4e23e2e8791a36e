package cache

import (
	"context"
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// DefaultSize is the number of reports kept by the memory backend.
const DefaultSize = 128

// Memory is an in-process LRU backend.
type Memory struct {
	mu  sync.Mutex
	lru *lru.Cache
}

// NewMemory creates an LRU holding up to size reports.
func NewMemory(size int) *Memory {
	if size <= 0 {
		size = DefaultSize
	}
	return &Memory{lru: lru.New(size)}
}

// Name returns the backend identifier.
func (m *Memory) Name() string { return string(types.CacheMemory) }

// Get looks up key.
func (m *Memory) Get(_ context.Context, key string) (types.Report, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.lru.Get(key)
	if !ok {
		return types.Report{}, false, nil
	}
	return v.(types.Report), true, nil
}

// Set stores rep under key, evicting the least recently used entry when full.
func (m *Memory) Set(_ context.Context, key string, rep types.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Add(key, rep)
	return nil
}

// Len returns the number of cached reports.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}
