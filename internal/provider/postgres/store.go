package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// SecretsAPI is the subset of the Secrets Manager client used to resolve a DSN.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, input *secretsmanager.GetSecretValueInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Store is a Postgres-backed entity source.
type Store struct {
	pool *pgxpool.Pool
}

// Option configures DSN resolution.
type Option func(*options)

type options struct {
	secrets SecretsAPI
}

// WithSecretsClient sets a custom Secrets Manager client (useful for testing).
func WithSecretsClient(c SecretsAPI) Option {
	return func(o *options) { o.secrets = c }
}

// New connects to Postgres and verifies the connection.
func New(ctx context.Context, cfg types.PostgresConfig, opts ...Option) (*Store, error) {
	dsn, err := ResolveDSN(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// ResolveDSN returns cfg.DSN, or reads it from Secrets Manager when
// cfg.DSNSecretARN is set. A secret may hold the DSN itself or a JSON object
// with a "dsn" field.
func ResolveDSN(ctx context.Context, cfg types.PostgresConfig, opts ...Option) (string, error) {
	if cfg.DSNSecretARN == "" {
		if cfg.DSN == "" {
			return "", fmt.Errorf("postgres: dsn or dsnSecretArn required")
		}
		return cfg.DSN, nil
	}

	var o options
	for _, fn := range opts {
		fn(&o)
	}
	if o.secrets == nil {
		var loadOpts []func(*awsconfig.LoadOptions) error
		if cfg.Region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return "", fmt.Errorf("loading AWS config: %w", err)
		}
		o.secrets = secretsmanager.NewFromConfig(awsCfg)
	}

	out, err := o.secrets.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(cfg.DSNSecretARN),
	})
	if err != nil {
		return "", fmt.Errorf("reading postgres secret: %w", err)
	}
	secret := strings.TrimSpace(aws.ToString(out.SecretString))
	if strings.HasPrefix(secret, "{") {
		var v struct {
			DSN string `json:"dsn"`
		}
		if err := json.Unmarshal([]byte(secret), &v); err != nil {
			return "", fmt.Errorf("decoding postgres secret: %w", err)
		}
		secret = v.DSN
	}
	if secret == "" {
		return "", fmt.Errorf("postgres secret %s holds no dsn", cfg.DSNSecretARN)
	}
	return secret, nil
}

// Name returns the source identifier.
func (s *Store) Name() string { return string(types.SourcePostgres) }

// Ping verifies the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate runs the schema DDL to create tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schemaDDL)
	if err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
