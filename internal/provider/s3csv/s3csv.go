// Package s3csv loads entity tables from CSV objects under an S3 prefix.
package s3csv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/dwsmith1983/campaignlens/internal/provider/csvdir"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// S3API is the subset of the S3 client used by Source.
type S3API interface {
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, input *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Source reads influencers.csv, posts.csv, tracking_data.csv and payouts.csv
// from s3://bucket/prefix/.
type Source struct {
	client S3API
	bucket string
	prefix string
	region string
}

// Option configures a Source.
type Option func(*Source)

// WithClient sets a custom S3 client (useful for testing).
func WithClient(c S3API) Option {
	return func(s *Source) { s.client = c }
}

// New creates an S3 CSV source.
func New(ctx context.Context, cfg types.S3CSVConfig, opts ...Option) (*Source, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3csv source: bucket required")
	}
	s := &Source{
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		region: cfg.Region,
	}
	for _, o := range opts {
		o(s)
	}
	if s.client == nil {
		var loadOpts []func(*awsconfig.LoadOptions) error
		if s.region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(s.region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		s.client = s3.NewFromConfig(awsCfg)
	}
	return s, nil
}

// Name returns the source identifier.
func (s *Source) Name() string { return string(types.SourceS3CSV) }

func (s *Source) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// Ping checks that every entity object exists.
func (s *Source) Ping(ctx context.Context) error {
	for _, name := range csvdir.Files {
		_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key(name)),
		})
		if err != nil {
			return fmt.Errorf("s3csv source: head s3://%s/%s: %w", s.bucket, s.key(name), err)
		}
	}
	return nil
}

// Load downloads the four objects concurrently and decodes them.
func (s *Source) Load(ctx context.Context) (*types.Dataset, error) {
	bodies := make([][]byte, len(csvdir.Files))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range csvdir.Files {
		g.Go(func() error {
			data, err := s.get(gctx, name)
			if err != nil {
				return err
			}
			bodies[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byName := make(map[string][]byte, len(bodies))
	for i, name := range csvdir.Files {
		byName[name] = bodies[i]
	}
	ds, err := csvdir.Decode(func(name string) (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(byName[name])), nil
	})
	if err != nil {
		return nil, fmt.Errorf("s3csv source s3://%s/%s: %w", s.bucket, s.prefix, err)
	}
	return ds, nil
}

func (s *Source) get(ctx context.Context, name string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, fmt.Errorf("getting s3://%s/%s: %w", s.bucket, s.key(name), err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading s3://%s/%s: %w", s.bucket, s.key(name), err)
	}
	return data, nil
}

// Save uploads ds as four CSV objects.
func (s *Source) Save(ctx context.Context, ds *types.Dataset) error {
	return csvdir.Encode(ds, func(name string) (io.WriteCloser, error) {
		return &objectWriter{ctx: ctx, src: s, name: name}, nil
	})
}

// objectWriter buffers one CSV file and uploads it on Close.
type objectWriter struct {
	bytes.Buffer
	ctx  context.Context
	src  *Source
	name string
}

func (w *objectWriter) Close() error {
	_, err := w.src.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.src.bucket),
		Key:         aws.String(w.src.key(w.name)),
		Body:        bytes.NewReader(w.Bytes()),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("putting s3://%s/%s: %w", w.src.bucket, w.src.key(w.name), err)
	}
	return nil
}
