package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Breaker defaults.
const (
	defaultMaxFailures = 3
	defaultOpenTimeout = 30 * time.Second
)

// breakerSource guards a remote source with a circuit breaker so repeated
// reloads against a failing backend fail fast.
type breakerSource struct {
	next Source
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps src in a circuit breaker configured by cfg.
func WithBreaker(src Source, cfg types.BreakerConfig) Source {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultMaxFailures
	}
	timeout := defaultOpenTimeout
	if cfg.OpenTimeout != "" {
		if d, err := time.ParseDuration(cfg.OpenTimeout); err == nil && d > 0 {
			timeout = d
		}
	}
	return &breakerSource{
		next: src,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    src.Name(),
			Timeout: timeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= maxFailures
			},
		}),
	}
}

func (b *breakerSource) Name() string { return b.next.Name() }

func (b *breakerSource) Load(ctx context.Context) (*types.Dataset, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Load(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.next.Name(), err)
	}
	return out.(*types.Dataset), nil
}

func (b *breakerSource) Ping(ctx context.Context) error {
	if b.cb.State() == gobreaker.StateOpen {
		return fmt.Errorf("%s: %w", b.next.Name(), gobreaker.ErrOpenState)
	}
	return b.next.Ping(ctx)
}
