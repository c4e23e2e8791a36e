package provider_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/campaignlens/internal/provider"
	"github.com/dwsmith1983/campaignlens/internal/testutil"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

func TestWithBreaker_PassesThrough(t *testing.T) {
	src := testutil.NewMockSource(testutil.ScenarioDataset())
	wrapped := provider.WithBreaker(src, types.BreakerConfig{})

	assert.Equal(t, "mock", wrapped.Name())
	ds, err := wrapped.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Influencers, 4)
	assert.NoError(t, wrapped.Ping(context.Background()))
}

func TestWithBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	src := testutil.NewMockSource(testutil.ScenarioDataset())
	src.SetLoadError(errors.New("connection reset"))
	wrapped := provider.WithBreaker(src, types.BreakerConfig{MaxFailures: 2, OpenTimeout: "1h"})

	for range 2 {
		_, err := wrapped.Load(context.Background())
		require.Error(t, err)
	}
	assert.Equal(t, int64(2), src.Loads())

	_, err := wrapped.Load(context.Background())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int64(2), src.Loads(), "open breaker must not reach the source")

	assert.ErrorIs(t, wrapped.Ping(context.Background()), gobreaker.ErrOpenState)
}
