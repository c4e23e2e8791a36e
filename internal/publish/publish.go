// Package publish delivers export bundles to configured sinks.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dwsmith1983/campaignlens/internal/export"
	"github.com/dwsmith1983/campaignlens/internal/metrics"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Bundle is one built ZIP export and the context it was built in.
type Bundle struct {
	ID             string          `json:"id"`
	CreatedAt      time.Time       `json:"createdAt"`
	FileName       string          `json:"fileName"`
	DatasetVersion string          `json:"datasetVersion"`
	Selection      types.Selection `json:"selection"`
	KPIs           types.KPIs      `json:"kpis"`
	Size           int             `json:"size"`
	Locations      []string        `json:"locations,omitempty"`
	Data           []byte          `json:"-"`
}

// NewBundle zips every table of rep. An empty fileName uses the default bundle name.
func NewBundle(rep types.Report, fileName string, now time.Time) (*Bundle, error) {
	data, err := export.Zip(rep)
	if err != nil {
		return nil, fmt.Errorf("building bundle: %w", err)
	}
	if fileName == "" {
		fileName = export.BundleFileName
	}
	id, err := ulid.New(ulid.Timestamp(now), ulid.DefaultEntropy())
	if err != nil {
		return nil, fmt.Errorf("generating bundle id: %w", err)
	}
	return &Bundle{
		ID:             id.String(),
		CreatedAt:      now.UTC(),
		FileName:       fileName,
		DatasetVersion: rep.DatasetVersion,
		Selection:      rep.Selection,
		KPIs:           rep.KPIs,
		Size:           len(data),
		Data:           data,
	}, nil
}

// Sink is a bundle destination.
type Sink interface {
	Send(ctx context.Context, b *Bundle) error
	Name() string
}

// Dispatcher delivers bundles to storage sinks first, then to notification
// sinks so notifications can carry the stored locations.
type Dispatcher struct {
	stores    []Sink
	notifiers []Sink
	logger    *slog.Logger

	s3Client   S3API
	snsClient  SNSAPI
	ebClient   EventBridgeAPI
	httpClient *http.Client
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for delivery failures.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithS3 sets the S3 client handed to s3 sinks.
func WithS3(c S3API) Option {
	return func(d *Dispatcher) { d.s3Client = c }
}

// WithSNS sets the SNS client handed to sns sinks.
func WithSNS(c SNSAPI) Option {
	return func(d *Dispatcher) { d.snsClient = c }
}

// WithEventBridge sets the EventBridge client handed to eventbridge sinks.
func WithEventBridge(c EventBridgeAPI) Option {
	return func(d *Dispatcher) { d.ebClient = c }
}

// WithHTTPClient sets the HTTP client handed to webhook sinks.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) { d.httpClient = c }
}

// NewDispatcher creates a dispatcher from sink configs.
func NewDispatcher(ctx context.Context, configs []types.SinkConfig, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{logger: slog.Default()}
	for _, o := range opts {
		o(d)
	}
	for _, cfg := range configs {
		sink, err := d.newSink(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("creating %s sink: %w", cfg.Type, err)
		}
		d.Add(cfg.Type, sink)
	}
	return d, nil
}

// Add registers a sink. File and S3 sinks are treated as storage.
func (d *Dispatcher) Add(kind types.SinkType, s Sink) {
	switch kind {
	case types.SinkFile, types.SinkS3:
		d.stores = append(d.stores, s)
	default:
		d.notifiers = append(d.notifiers, s)
	}
}

// Len returns the number of registered sinks.
func (d *Dispatcher) Len() int { return len(d.stores) + len(d.notifiers) }

// Dispatch sends the bundle to every sink. A failing sink does not stop the
// others; all failures are returned joined.
func (d *Dispatcher) Dispatch(ctx context.Context, b *Bundle) error {
	var errs []error
	for _, group := range [][]Sink{d.stores, d.notifiers} {
		for _, sink := range group {
			attrs := attribute.String("sink", sink.Name())
			if err := sink.Send(ctx, b); err != nil {
				d.logger.Error("export delivery failed", "sink", sink.Name(), "bundle", b.ID, "error", err)
				metrics.ExportsFailed.Inc(ctx, attrs)
				errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
				continue
			}
			metrics.ExportsPublished.Inc(ctx, attrs)
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) newSink(ctx context.Context, cfg types.SinkConfig) (Sink, error) {
	switch cfg.Type {
	case types.SinkConsole:
		return NewConsoleSink(nil), nil
	case types.SinkFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file sink dir required")
		}
		return NewFileSink(cfg.Dir)
	case types.SinkS3:
		var opts []S3SinkOption
		if d.s3Client != nil {
			opts = append(opts, WithS3Client(d.s3Client))
		}
		return NewS3Sink(ctx, cfg.Bucket, cfg.Prefix, opts...)
	case types.SinkWebhook:
		if cfg.URL == "" {
			return nil, fmt.Errorf("webhook URL required")
		}
		return NewWebhookSink(cfg.URL, d.httpClient), nil
	case types.SinkSNS:
		var opts []SNSSinkOption
		if d.snsClient != nil {
			opts = append(opts, WithSNSClient(d.snsClient))
		}
		return NewSNSSink(ctx, cfg.TopicARN, opts...)
	case types.SinkEventBridge:
		var opts []EventBridgeSinkOption
		if d.ebClient != nil {
			opts = append(opts, WithEventBridgeClient(d.ebClient))
		}
		return NewEventBridgeSink(ctx, cfg.EventBusName, opts...)
	default:
		return nil, fmt.Errorf("unknown sink type %q", cfg.Type)
	}
}
