package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeConfig(t, `source:
  type: dynamodb
  dynamodb:
    tableName: campaignlens
    region: ap-south-1
  breaker:
    maxFailures: 3
    openTimeout: 15s
server:
  addr: ":8080"
cache:
  backend: redis
  ttl: 5m
  redis:
    addr: localhost:6379
export:
  sinks:
    - type: s3
      bucket: exports
      prefix: weekly
    - type: eventbridge
log:
  level: debug
  format: json
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, types.SourceDynamoDB, cfg.Source.Type)
	assert.Equal(t, "campaignlens", cfg.Source.DynamoDB.TableName)
	assert.Equal(t, uint32(3), cfg.Source.Breaker.MaxFailures)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, types.CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
	require.Len(t, cfg.Export.Sinks, 2)
	assert.Equal(t, types.SinkS3, cfg.Export.Sinks[0].Type)
	assert.Equal(t, "json", cfg.Log.Format)
	// Unset fields keep their defaults.
	assert.Equal(t, DefaultSourceTimeout, cfg.Source.Timeout)
}

func TestLoad_KeepsDefaultSeed(t *testing.T) {
	dir := writeConfig(t, "source:\n  type: synthetic\n  synthetic:\n    events: 50\n")
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cfg.Source.Synthetic.Seed)
	assert.Equal(t, 50, cfg.Source.Synthetic.Events)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := writeConfig(t, "source:\n  type: sqlite\n  sqlite:\n    path: from-file.db\n")
	t.Setenv("CAMPAIGNLENS_SQLITE_PATH", "from-env.db")
	t.Setenv("CAMPAIGNLENS_ADDR", ":9999")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Source.SQLite.Path)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent")
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := writeConfig(t, "invalid: [yaml")
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestResolve_FallsBackToDefaults(t *testing.T) {
	t.Setenv("CAMPAIGNLENS_SEED", "7")
	cfg, err := Resolve(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, types.SourceSynthetic, cfg.Source.Type)
	assert.Equal(t, uint64(7), cfg.Source.Synthetic.Seed)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
}

func TestResolve_InvalidFileIsAnError(t *testing.T) {
	dir := writeConfig(t, "source:\n  type: carrier-pigeon\n")
	_, err := Resolve(dir)
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project")
	path, err := Write(dir, Default(), false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Write(dir, Default(), false)
	assert.Error(t, err)
	_, err = Write(dir, Default(), true)
	assert.NoError(t, err)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing source type", "source:\n  type: \"\"\n"},
		{"csv without dir", "source:\n  type: csv\n"},
		{"s3csv without bucket", "source:\n  type: s3csv\n"},
		{"postgres without dsn", "source:\n  type: postgres\n"},
		{"sqlite without path", "source:\n  type: sqlite\n"},
		{"dynamodb without table", "source:\n  type: dynamodb\n"},
		{"bad anchor", "source:\n  type: synthetic\n  synthetic:\n    anchor: yesterday\n"},
		{"bad timeout", "source:\n  type: synthetic\n  timeout: soon\n"},
		{"redis without addr", "cache:\n  backend: redis\n"},
		{"unknown cache", "cache:\n  backend: disk\n"},
		{"webhook without url", "export:\n  sinks:\n    - type: webhook\n"},
		{"unknown sink", "export:\n  sinks:\n    - type: fax\n"},
		{"bad log level", "log:\n  level: loud\n"},
		{"bad log format", "log:\n  format: xml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}
