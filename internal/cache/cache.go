// Package cache memoizes report builds keyed by selection and dataset
// version.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/dwsmith1983/campaignlens/internal/metrics"
	"github.com/dwsmith1983/campaignlens/internal/report"
	"github.com/dwsmith1983/campaignlens/internal/store"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Backend stores built reports by key.
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) (types.Report, bool, error)
	Set(ctx context.Context, key string, rep types.Report) error
}

// BuildFunc computes a report.
type BuildFunc func(ctx context.Context, snap *store.Snapshot, sel types.Selection) types.Report

// Reports serves reports through a Backend, building on miss. Concurrent
// misses for the same key share one build.
type Reports struct {
	backend Backend
	build   BuildFunc
	group   singleflight.Group
	logger  *slog.Logger
}

// Option configures Reports.
type Option func(*Reports)

// WithBuilder replaces report.Build (useful for testing).
func WithBuilder(fn BuildFunc) Option {
	return func(r *Reports) { r.build = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reports) { r.logger = l }
}

// New creates a report cache over backend. A nil backend disables storage
// but still collapses concurrent identical builds.
func New(backend Backend, opts ...Option) *Reports {
	r := &Reports{
		backend: backend,
		build:   report.Build,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Key derives the cache key of a selection over a dataset version.
func Key(sel types.Selection, version string) string {
	h := xxhash.New()
	_, _ = h.WriteString(version)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(sel.Canonical())
	return fmt.Sprintf("%016x", h.Sum64())
}

// Get returns the report for sel over snap. Backend failures are logged and
// fall through to a fresh build.
func (r *Reports) Get(ctx context.Context, snap *store.Snapshot, sel types.Selection) (types.Report, error) {
	key := Key(sel, snap.Version())

	if r.backend != nil {
		rep, ok, err := r.backend.Get(ctx, key)
		switch {
		case err != nil:
			metrics.CacheErrors.Inc(ctx, attribute.String("backend", r.backend.Name()))
			r.logger.Warn("report cache read failed", "backend", r.backend.Name(), "key", key, "error", err)
		case ok:
			metrics.CacheHits.Inc(ctx)
			return rep, nil
		}
		metrics.CacheMisses.Inc(ctx)
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		start := time.Now()
		rep := r.build(ctx, snap, sel)
		metrics.ReportsBuilt.Inc(ctx)
		metrics.ObserveBuild(ctx, time.Since(start))

		if r.backend != nil {
			if err := r.backend.Set(ctx, key, rep); err != nil {
				metrics.CacheErrors.Inc(ctx, attribute.String("backend", r.backend.Name()))
				r.logger.Warn("report cache write failed", "backend", r.backend.Name(), "key", key, "error", err)
			}
		}
		return rep, nil
	})
	if err != nil {
		return types.Report{}, err
	}
	return v.(types.Report), nil
}

// FromConfig builds the backend selected by cfg. The none backend is nil.
func FromConfig(cfg types.CacheConfig) (Backend, error) {
	switch cfg.Backend {
	case types.CacheNone:
		return nil, nil
	case "", types.CacheMemory:
		return NewMemory(cfg.Size), nil
	case types.CacheRedis:
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("redis cache: addr required")
		}
		ttl := DefaultTTL
		if cfg.TTL != "" {
			d, err := time.ParseDuration(cfg.TTL)
			if err != nil {
				return nil, fmt.Errorf("redis cache ttl: %w", err)
			}
			ttl = d
		}
		return NewRedis(cfg.Redis, ttl), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
	}
}
