// Package sources opens the configured dataset source and turns its output
// into a snapshot.
package sources

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dwsmith1983/campaignlens/internal/metrics"
	"github.com/dwsmith1983/campaignlens/internal/provider"
	"github.com/dwsmith1983/campaignlens/internal/provider/csvdir"
	ddbprov "github.com/dwsmith1983/campaignlens/internal/provider/dynamodb"
	pgstore "github.com/dwsmith1983/campaignlens/internal/provider/postgres"
	"github.com/dwsmith1983/campaignlens/internal/provider/s3csv"
	"github.com/dwsmith1983/campaignlens/internal/provider/sqlite"
	"github.com/dwsmith1983/campaignlens/internal/provider/synthetic"
	"github.com/dwsmith1983/campaignlens/internal/store"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// DefaultTimeout bounds one dataset load when source.timeout is unset.
const DefaultTimeout = 30 * time.Second

// Opened is a source ready to load, plus the raw backend for seeding.
type Opened struct {
	// Source is the loader; remote backends are wrapped in a circuit breaker.
	Source provider.Source
	// Backend is the unwrapped source, used for Save and Migrate.
	Backend provider.Source
	closers []func()
}

// Close releases backend connections.
func (o *Opened) Close() {
	for _, c := range o.closers {
		c()
	}
}

// Seeder returns the backend as a provider.Seeder when it can persist datasets.
func (o *Opened) Seeder() (provider.Seeder, bool) {
	s, ok := o.Backend.(provider.Seeder)
	return s, ok
}

// Migrate creates backend tables when the backend supports it.
func (o *Opened) Migrate(ctx context.Context) error {
	if m, ok := o.Backend.(interface{ Migrate(context.Context) error }); ok {
		return m.Migrate(ctx)
	}
	return nil
}

// Open connects to the source selected by cfg.
func Open(ctx context.Context, cfg types.SourceConfig, logger *slog.Logger) (*Opened, error) {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Opened{}
	remote := true

	switch cfg.Type {
	case types.SourceSynthetic:
		o.Backend = synthetic.New(cfg.Synthetic)
		remote = false
	case types.SourceCSV:
		src, err := csvdir.New(cfg.CSV.Dir)
		if err != nil {
			return nil, err
		}
		o.Backend = src
		remote = false
	case types.SourceS3CSV:
		src, err := s3csv.New(ctx, cfg.S3CSV)
		if err != nil {
			return nil, err
		}
		o.Backend = src
	case types.SourcePostgres:
		st, err := pgstore.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		o.Backend = st
		o.closers = append(o.closers, st.Close)
	case types.SourceSQLite:
		st, err := sqlite.New(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		o.Backend = st
		o.closers = append(o.closers, func() { _ = st.Close() })
		remote = false
	case types.SourceDynamoDB:
		p, err := ddbprov.New(ctx, cfg.DynamoDB, ddbprov.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := p.Start(ctx); err != nil {
			return nil, fmt.Errorf("starting dynamodb source: %w", err)
		}
		o.Backend = p
	default:
		return nil, fmt.Errorf("unsupported source type: %q", cfg.Type)
	}

	o.Source = o.Backend
	if remote {
		o.Source = provider.WithBreaker(o.Backend, cfg.Breaker)
	}
	logger.Debug("source opened", "source", o.Backend.Name(), "breaker", remote)
	return o, nil
}

// Timeout returns the configured load timeout.
func Timeout(cfg types.SourceConfig) time.Duration {
	if d, err := time.ParseDuration(cfg.Timeout); err == nil && d > 0 {
		return d
	}
	return DefaultTimeout
}

// Load reads the dataset from src within timeout and builds a snapshot.
func Load(ctx context.Context, src provider.Source, timeout time.Duration, logger *slog.Logger) (*store.Snapshot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	attrs := attribute.String("source", src.Name())
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	ds, err := src.Load(ctx)
	if err != nil {
		metrics.DatasetLoadErrors.Inc(ctx, attrs)
		return nil, fmt.Errorf("loading dataset from %s: %w", src.Name(), err)
	}
	snap, err := store.New(ds, store.WithLogger(logger))
	if err != nil {
		metrics.DatasetLoadErrors.Inc(ctx, attrs)
		return nil, fmt.Errorf("building snapshot: %w", err)
	}
	metrics.DatasetLoads.Inc(ctx, attrs)
	logger.Info("dataset loaded",
		"source", src.Name(),
		"version", snap.Version(),
		"influencers", len(snap.Influencers()),
		"posts", len(snap.Posts()),
		"events", len(snap.Tracking()),
		"elapsed", time.Since(start))
	return snap, nil
}
