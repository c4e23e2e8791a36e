package lambda

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dwsmith1983/campaignlens/internal/provider"
	"github.com/dwsmith1983/campaignlens/internal/publish"
	"github.com/dwsmith1983/campaignlens/internal/sources"
	"github.com/dwsmith1983/campaignlens/internal/telemetry"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Deps holds shared dependencies for Lambda handlers.
type Deps struct {
	Source     provider.Source
	Timeout    time.Duration
	Dispatcher *publish.Dispatcher
	FileName   string
	Logger     *slog.Logger
	Now        func() time.Time
}

// Settings is the environment-derived configuration of a handler.
type Settings struct {
	Source   types.SourceConfig
	Sinks    []types.SinkConfig
	FileName string
}

// SettingsFromEnv reads the handler configuration.
// Reads: AWS_REGION, SOURCE_TYPE, TABLE_NAME, SOURCE_BUCKET, SOURCE_PREFIX,
// POSTGRES_DSN, POSTGRES_SECRET_ARN, SOURCE_TIMEOUT, EXPORT_BUCKET,
// EXPORT_PREFIX, EVENT_BUS_NAME, SNS_TOPIC_ARN, EXPORT_FILE_NAME
func SettingsFromEnv() (Settings, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		return Settings{}, fmt.Errorf("AWS_REGION environment variable required")
	}

	src := types.SourceConfig{
		Type:    types.SourceType(envOrDefault("SOURCE_TYPE", string(types.SourceDynamoDB))),
		Timeout: envOrDefault("SOURCE_TIMEOUT", "60s"),
	}
	switch src.Type {
	case types.SourceDynamoDB:
		src.DynamoDB = types.DynamoDBConfig{TableName: os.Getenv("TABLE_NAME"), Region: region}
		if src.DynamoDB.TableName == "" {
			return Settings{}, fmt.Errorf("TABLE_NAME environment variable required")
		}
	case types.SourceS3CSV:
		src.S3CSV = types.S3CSVConfig{Bucket: os.Getenv("SOURCE_BUCKET"), Prefix: os.Getenv("SOURCE_PREFIX"), Region: region}
		if src.S3CSV.Bucket == "" {
			return Settings{}, fmt.Errorf("SOURCE_BUCKET environment variable required")
		}
	case types.SourcePostgres:
		src.Postgres = types.PostgresConfig{
			DSN:          os.Getenv("POSTGRES_DSN"),
			DSNSecretARN: os.Getenv("POSTGRES_SECRET_ARN"),
			Region:       region,
		}
		if src.Postgres.DSN == "" && src.Postgres.DSNSecretARN == "" {
			return Settings{}, fmt.Errorf("POSTGRES_DSN or POSTGRES_SECRET_ARN environment variable required")
		}
	default:
		return Settings{}, fmt.Errorf("unsupported SOURCE_TYPE %q", src.Type)
	}

	var sinks []types.SinkConfig
	if bucket := os.Getenv("EXPORT_BUCKET"); bucket != "" {
		sinks = append(sinks, types.SinkConfig{
			Type:   types.SinkS3,
			Bucket: bucket,
			Prefix: envOrDefault("EXPORT_PREFIX", "exports"),
		})
	}
	if bus := os.Getenv("EVENT_BUS_NAME"); bus != "" {
		sinks = append(sinks, types.SinkConfig{Type: types.SinkEventBridge, EventBusName: bus})
	}
	if topic := os.Getenv("SNS_TOPIC_ARN"); topic != "" {
		sinks = append(sinks, types.SinkConfig{Type: types.SinkSNS, TopicARN: topic})
	}
	if len(sinks) == 0 {
		return Settings{}, fmt.Errorf("EXPORT_BUCKET, EVENT_BUS_NAME or SNS_TOPIC_ARN environment variable required")
	}

	return Settings{Source: src, Sinks: sinks, FileName: os.Getenv("EXPORT_FILE_NAME")}, nil
}

// Init creates shared dependencies from environment variables.
func Init(ctx context.Context) (*Deps, error) {
	logger := telemetry.NewLogger(types.LogConfig{
		Level:  envOrDefault("LOG_LEVEL", "info"),
		Format: "json",
	}, os.Stderr)

	s, err := SettingsFromEnv()
	if err != nil {
		return nil, err
	}

	opened, err := sources.Open(ctx, s.Source, logger)
	if err != nil {
		return nil, fmt.Errorf("opening %s source: %w", s.Source.Type, err)
	}

	dispatcher, err := publish.NewDispatcher(ctx, s.Sinks, publish.WithLogger(logger))
	if err != nil {
		opened.Close()
		return nil, fmt.Errorf("creating export dispatcher: %w", err)
	}

	return &Deps{
		Source:     opened.Source,
		Timeout:    sources.Timeout(s.Source),
		Dispatcher: dispatcher,
		FileName:   s.FileName,
		Logger:     logger,
		Now:        time.Now,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
