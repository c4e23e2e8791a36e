// Package metrics exposes runtime counters via expvar and mirrors them as
// OpenTelemetry instruments.
package metrics

import (
	"context"
	"expvar"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/dwsmith1983/campaignlens"

var meter = otel.Meter(meterName)

var (
	DatasetLoads      = newCounter("dataset_loads", "Datasets loaded from a source")
	DatasetLoadErrors = newCounter("dataset_load_errors", "Dataset loads that failed")
	ReportsBuilt      = newCounter("reports_built", "Recomputation passes run")
	CacheHits         = newCounter("report_cache_hits", "Reports served from cache")
	CacheMisses       = newCounter("report_cache_misses", "Reports not found in cache")
	CacheErrors       = newCounter("report_cache_errors", "Cache backend failures")
	ExportsBuilt      = newCounter("exports_built", "ZIP bundles built")
	ExportsPublished  = newCounter("exports_published", "Bundle deliveries that succeeded")
	ExportsFailed     = newCounter("exports_failed", "Bundle deliveries that failed")
	HTTPRequests      = newCounter("http_requests", "API requests served")
)

var buildDuration = func() metric.Float64Histogram {
	h, err := meter.Float64Histogram("report_build_seconds",
		metric.WithDescription("Time spent in one recomputation pass"),
		metric.WithUnit("s"))
	if err != nil {
		return noop.Float64Histogram{}
	}
	return h
}()

// Counter is an expvar integer paired with an OpenTelemetry counter.
type Counter struct {
	v    *expvar.Int
	inst metric.Int64Counter
}

func newCounter(name, desc string) *Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		c = noop.Int64Counter{}
	}
	return &Counter{v: expvar.NewInt(name), inst: c}
}

// Add increments the counter by n.
func (c *Counter) Add(ctx context.Context, n int64, attrs ...attribute.KeyValue) {
	c.v.Add(n)
	c.inst.Add(ctx, n, metric.WithAttributes(attrs...))
}

// Inc increments the counter by one.
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.Add(ctx, 1, attrs...)
}

// Value returns the process-local count.
func (c *Counter) Value() int64 { return c.v.Value() }

// ObserveBuild records the duration of one report build.
func ObserveBuild(ctx context.Context, d time.Duration) {
	buildDuration.Record(ctx, d.Seconds())
}
