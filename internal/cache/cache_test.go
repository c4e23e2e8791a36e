package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dwsmith1983/campaignlens/internal/cache"
	"github.com/dwsmith1983/campaignlens/internal/report"
	"github.com/dwsmith1983/campaignlens/internal/store"
	"github.com/dwsmith1983/campaignlens/internal/testutil"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

func TestKey(t *testing.T) {
	a := types.Selection{Platforms: []string{"YouTube", "Instagram"}, Products: []string{"Gritzo"}}
	b := types.Selection{Platforms: []string{"Instagram", "YouTube", "Instagram"}, Products: []string{"Gritzo"}}

	assert.Equal(t, cache.Key(a, "v1"), cache.Key(b, "v1"), "order and duplicates do not matter")
	assert.NotEqual(t, cache.Key(a, "v1"), cache.Key(a, "v2"))
	assert.NotEqual(t, cache.Key(a, "v1"), cache.Key(types.Selection{}, "v1"))
	assert.Len(t, cache.Key(a, "v1"), 16)
}

type countingBuilder struct {
	calls atomic.Int64
}

func (c *countingBuilder) build(ctx context.Context, snap *store.Snapshot, sel types.Selection) types.Report {
	c.calls.Add(1)
	return report.Build(ctx, snap, sel)
}

func TestReports_MemoryHit(t *testing.T) {
	snap := testutil.ScenarioSnapshot(t)
	sel := testutil.AllSelection(snap)
	b := &countingBuilder{}
	mem := cache.NewMemory(4)
	r := cache.New(mem, cache.WithBuilder(b.build))

	first, err := r.Get(context.Background(), snap, sel)
	require.NoError(t, err)
	second, err := r.Get(context.Background(), snap, sel)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), b.calls.Load())
	assert.Equal(t, 1, mem.Len())
	assert.Equal(t, report.Build(context.Background(), snap, sel), first)
}

func TestReports_DistinctSelections(t *testing.T) {
	snap := testutil.ScenarioSnapshot(t)
	all := testutil.AllSelection(snap)
	b := &countingBuilder{}
	r := cache.New(cache.NewMemory(4), cache.WithBuilder(b.build))

	_, err := r.Get(context.Background(), snap, all)
	require.NoError(t, err)
	rep, err := r.Get(context.Background(), snap, all.With(types.DimGender, []string{"Female"}))
	require.NoError(t, err)

	assert.Equal(t, int64(2), b.calls.Load())
	assert.Equal(t, types.AmountFromFloat(500), rep.KPIs.TotalRevenue)
}

func TestReports_ConcurrentMissesBuildOnce(t *testing.T) {
	snap := testutil.ScenarioSnapshot(t)
	sel := testutil.AllSelection(snap)
	b := &countingBuilder{}
	release := make(chan struct{})
	gated := func(ctx context.Context, snap *store.Snapshot, sel types.Selection) types.Report {
		<-release
		return b.build(ctx, snap, sel)
	}
	var entered atomic.Int64
	r := cache.New(cache.NewMemory(4), cache.WithBuilder(func(ctx context.Context, snap *store.Snapshot, sel types.Selection) types.Report {
		entered.Add(1)
		return gated(ctx, snap, sel)
	}))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rep, err := r.Get(context.Background(), snap, sel)
			assert.NoError(t, err)
			assert.Equal(t, types.AmountFromFloat(780), rep.KPIs.TotalRevenue)
		}()
	}
	testutil.Eventually(t, 2*time.Second, func() bool { return entered.Load() == 1 }, "first build to start")
	// Give the remaining callers time to queue behind the in-flight build.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.Equal(t, int64(1), b.calls.Load())
}

func TestReports_NoBackendAlwaysBuilds(t *testing.T) {
	snap := testutil.ScenarioSnapshot(t)
	b := &countingBuilder{}
	r := cache.New(nil, cache.WithBuilder(b.build))

	for range 3 {
		_, err := r.Get(context.Background(), snap, testutil.AllSelection(snap))
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), b.calls.Load())
}

type brokenBackend struct{ sets int }

func (b *brokenBackend) Name() string { return "broken" }
func (b *brokenBackend) Get(context.Context, string) (types.Report, bool, error) {
	return types.Report{}, false, errors.New("connection refused")
}
func (b *brokenBackend) Set(context.Context, string, types.Report) error {
	b.sets++
	return errors.New("connection refused")
}

func TestReports_BackendErrorsFallThrough(t *testing.T) {
	snap := testutil.ScenarioSnapshot(t)
	backend := &brokenBackend{}
	r := cache.New(backend)

	rep, err := r.Get(context.Background(), snap, testutil.AllSelection(snap))
	require.NoError(t, err)
	assert.Equal(t, 7, rep.KPIs.TotalOrders)
	assert.Equal(t, 1, backend.sets)
}

func TestMemory_Evicts(t *testing.T) {
	mem := cache.NewMemory(2)
	ctx := context.Background()
	require.NoError(t, mem.Set(ctx, "a", types.Report{DatasetVersion: "a"}))
	require.NoError(t, mem.Set(ctx, "b", types.Report{DatasetVersion: "b"}))
	_, _, _ = mem.Get(ctx, "a")
	require.NoError(t, mem.Set(ctx, "c", types.Report{DatasetVersion: "c"}))

	_, ok, _ := mem.Get(ctx, "b")
	assert.False(t, ok, "least recently used entry evicted")
	rep, ok, _ := mem.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, "a", rep.DatasetVersion)
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.CacheConfig
		want    string
		wantErr bool
	}{
		{name: "default", want: "memory"},
		{name: "memory", cfg: types.CacheConfig{Backend: types.CacheMemory, Size: 8}, want: "memory"},
		{name: "none", cfg: types.CacheConfig{Backend: types.CacheNone}},
		{name: "redis", cfg: types.CacheConfig{Backend: types.CacheRedis, TTL: "1m", Redis: types.RedisConfig{Addr: "localhost:6379"}}, want: "redis"},
		{name: "redis without addr", cfg: types.CacheConfig{Backend: types.CacheRedis}, wantErr: true},
		{name: "redis bad ttl", cfg: types.CacheConfig{Backend: types.CacheRedis, TTL: "soon", Redis: types.RedisConfig{Addr: "x:1"}}, wantErr: true},
		{name: "unknown", cfg: types.CacheConfig{Backend: "memcached"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := cache.FromConfig(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, b)
				return
			}
			require.NotNil(t, b)
			assert.Equal(t, tt.want, b.Name())
			if rc, ok := b.(*cache.Redis); ok {
				_ = rc.Close()
			}
		})
	}
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
