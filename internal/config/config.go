// Package config handles loading and validation of campaignlens.yaml project configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/dwsmith1983/campaignlens/internal/provider/synthetic"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// FileName is the project configuration file looked up in the project dir.
const FileName = "campaignlens.yaml"

// Default server and source settings.
const (
	DefaultAddr          = ":3000"
	DefaultSourceTimeout = "30s"
)

// Default returns the configuration used when no file is present: a seeded
// synthetic dataset, in-memory report cache and text logging.
func Default() *types.ProjectConfig {
	return &types.ProjectConfig{
		Source: types.SourceConfig{
			Type:      types.SourceSynthetic,
			Synthetic: types.GeneratorConfig{Seed: synthetic.DefaultSeed},
			Timeout:   DefaultSourceTimeout,
		},
		Server: types.ServerConfig{Addr: DefaultAddr},
		Cache:  types.CacheConfig{Backend: types.CacheMemory},
		Log:    types.LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads and parses campaignlens.yaml from the given directory, then
// applies environment overrides.
func Load(dir string) (*types.ProjectConfig, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return finish(cfg)
}

// Resolve loads campaignlens.yaml from dir when it exists and falls back to
// the defaults plus environment overrides otherwise.
func Resolve(dir string) (*types.ProjectConfig, error) {
	cfg, err := Load(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return finish(Default())
	}
	return cfg, err
}

// Write stores cfg as campaignlens.yaml in dir. Existing files are left alone
// unless force is set.
func Write(dir string, cfg *types.ProjectConfig, force bool) (string, error) {
	path := filepath.Join(dir, FileName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s already exists", path)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return path, nil
}

func finish(cfg *types.ProjectConfig) (*types.ProjectConfig, error) {
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func validate(cfg *types.ProjectConfig) error {
	src := cfg.Source
	switch src.Type {
	case types.SourceSynthetic:
		if _, err := synthetic.ParseAnchor(src.Synthetic.Anchor); err != nil {
			return fmt.Errorf("source.synthetic.anchor: %w", err)
		}
	case types.SourceCSV:
		if src.CSV.Dir == "" {
			return fmt.Errorf("source.csv.dir is required")
		}
	case types.SourceS3CSV:
		if src.S3CSV.Bucket == "" {
			return fmt.Errorf("source.s3csv.bucket is required")
		}
	case types.SourcePostgres:
		if src.Postgres.DSN == "" && src.Postgres.DSNSecretARN == "" {
			return fmt.Errorf("source.postgres.dsn or source.postgres.dsnSecretArn is required")
		}
	case types.SourceSQLite:
		if src.SQLite.Path == "" {
			return fmt.Errorf("source.sqlite.path is required")
		}
	case types.SourceDynamoDB:
		if src.DynamoDB.TableName == "" {
			return fmt.Errorf("source.dynamodb.tableName is required")
		}
	case "":
		return fmt.Errorf("source.type is required")
	default:
		return fmt.Errorf("unknown source type %q", src.Type)
	}

	durations := map[string]string{
		"source.timeout":             src.Timeout,
		"source.breaker.openTimeout": src.Breaker.OpenTimeout,
		"server.readTimeout":         cfg.Server.ReadTimeout,
		"server.writeTimeout":        cfg.Server.WriteTimeout,
		"cache.ttl":                  cfg.Cache.TTL,
	}
	for field, v := range durations {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}

	switch cfg.Cache.Backend {
	case "", types.CacheMemory, types.CacheNone:
	case types.CacheRedis:
		if cfg.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}

	for i, s := range cfg.Export.Sinks {
		if err := validateSink(s); err != nil {
			return fmt.Errorf("export.sinks[%d]: %w", i, err)
		}
	}

	if lvl := strings.ToLower(cfg.Log.Level); lvl != "" && !slices.Contains([]string{"debug", "info", "warn", "error"}, lvl) {
		return fmt.Errorf("unknown log level %q", cfg.Log.Level)
	}
	if f := cfg.Log.Format; f != "" && f != "text" && f != "json" {
		return fmt.Errorf("unknown log format %q", f)
	}
	return nil
}

func validateSink(s types.SinkConfig) error {
	switch s.Type {
	case types.SinkConsole, types.SinkEventBridge:
	case types.SinkFile:
		if s.Dir == "" {
			return fmt.Errorf("dir is required for file sinks")
		}
	case types.SinkS3:
		if s.Bucket == "" {
			return fmt.Errorf("bucket is required for s3 sinks")
		}
	case types.SinkWebhook:
		if s.URL == "" {
			return fmt.Errorf("url is required for webhook sinks")
		}
	case types.SinkSNS:
		if s.TopicARN == "" {
			return fmt.Errorf("topicArn is required for sns sinks")
		}
	default:
		return fmt.Errorf("unknown sink type %q", s.Type)
	}
	return nil
}
