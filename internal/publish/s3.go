package publish

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by S3Sink.
type S3API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads bundles to S3.
type S3Sink struct {
	client     S3API
	bucketName string
	prefix     string
}

// S3SinkOption configures an S3Sink.
type S3SinkOption func(*S3Sink)

// WithS3Client sets a custom S3 client (useful for testing).
func WithS3Client(c S3API) S3SinkOption {
	return func(s *S3Sink) { s.client = c }
}

// NewS3Sink creates a new S3 export sink.
func NewS3Sink(ctx context.Context, bucketName, prefix string, opts ...S3SinkOption) (*S3Sink, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("S3 bucket name required")
	}
	s := &S3Sink{
		bucketName: bucketName,
		prefix:     strings.TrimRight(prefix, "/"),
	}
	for _, o := range opts {
		o(s)
	}
	if s.client == nil {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		s.client = s3.NewFromConfig(cfg)
	}
	return s, nil
}

// Name returns the sink identifier.
func (s *S3Sink) Name() string { return "s3" }

// Key returns the object key for a bundle.
// Key format: {prefix}/{date}/{id}/{fileName}
func (s *S3Sink) Key(b *Bundle) string {
	key := fmt.Sprintf("%s/%s/%s/%s",
		s.prefix, b.CreatedAt.UTC().Format("2006-01-02"), b.ID, b.FileName)
	return strings.TrimLeft(key, "/")
}

// Send uploads the bundle and records its s3:// URI as a location.
func (s *S3Sink) Send(ctx context.Context, b *Bundle) error {
	key := s.Key(b)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(b.Data),
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		return fmt.Errorf("putting bundle to S3: %w", err)
	}
	b.Locations = append(b.Locations, fmt.Sprintf("s3://%s/%s", s.bucketName, key))
	return nil
}
