// Package provider defines the dataset source interface for campaignlens.
// Sources run once, upfront, outside the recomputation path.
package provider

import (
	"context"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Source loads the four entity tables from some backing store.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string
	// Load reads the complete dataset.
	Load(ctx context.Context) (*types.Dataset, error)
	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}

// Seeder is implemented by sources that can also persist a dataset, used by
// the generate command to populate a store.
type Seeder interface {
	Save(ctx context.Context, ds *types.Dataset) error
}
