// Package testutil provides shared test fixtures and doubles for campaignlens.
package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dwsmith1983/campaignlens/internal/provider"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Compile-time interface satisfaction checks.
var (
	_ provider.Source = (*MockSource)(nil)
	_ provider.Seeder = (*MockSource)(nil)
)

// MockSource is an in-memory Source for testing.
type MockSource struct {
	mu      sync.Mutex
	dataset *types.Dataset
	loadErr error
	pingErr error

	loads atomic.Int64
}

// NewMockSource creates a mock source serving ds.
func NewMockSource(ds *types.Dataset) *MockSource {
	return &MockSource{dataset: ds}
}

// Name returns the source identifier.
func (m *MockSource) Name() string { return "mock" }

// Load returns the configured dataset or error.
func (m *MockSource) Load(_ context.Context) (*types.Dataset, error) {
	m.loads.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.dataset == nil {
		return &types.Dataset{}, nil
	}
	cp := *m.dataset
	return &cp, nil
}

// Ping returns the configured ping error.
func (m *MockSource) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingErr
}

// Save replaces the served dataset.
func (m *MockSource) Save(_ context.Context, ds *types.Dataset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dataset = ds
	return nil
}

// SetLoadError makes subsequent loads fail with err.
func (m *MockSource) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

// SetPingError makes subsequent pings fail with err.
func (m *MockSource) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

// Loads returns how many times Load was called.
func (m *MockSource) Loads() int64 { return m.loads.Load() }
