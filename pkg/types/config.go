package types

// ProjectConfig is the top-level campaignlens.yaml configuration. Values may be
// overridden from the environment through the env tags.
type ProjectConfig struct {
	Source    SourceConfig    `yaml:"source" json:"source"`
	Server    ServerConfig    `yaml:"server,omitempty" json:"server,omitempty"`
	Cache     CacheConfig     `yaml:"cache,omitempty" json:"cache,omitempty"`
	Export    ExportConfig    `yaml:"export,omitempty" json:"export,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty" json:"telemetry,omitempty"`
	Log       LogConfig       `yaml:"log,omitempty" json:"log,omitempty"`
}

// SourceConfig selects and configures the dataset loader.
type SourceConfig struct {
	Type      SourceType      `yaml:"type" json:"type" env:"CAMPAIGNLENS_SOURCE_TYPE"`
	Synthetic GeneratorConfig `yaml:"synthetic,omitempty" json:"synthetic,omitempty"`
	CSV       CSVSourceConfig `yaml:"csv,omitempty" json:"csv,omitempty"`
	S3CSV     S3CSVConfig     `yaml:"s3csv,omitempty" json:"s3csv,omitempty"`
	Postgres  PostgresConfig  `yaml:"postgres,omitempty" json:"postgres,omitempty"`
	SQLite    SQLiteConfig    `yaml:"sqlite,omitempty" json:"sqlite,omitempty"`
	DynamoDB  DynamoDBConfig  `yaml:"dynamodb,omitempty" json:"dynamodb,omitempty"`
	Breaker   BreakerConfig   `yaml:"breaker,omitempty" json:"breaker,omitempty"`
	Timeout   string          `yaml:"timeout,omitempty" json:"timeout,omitempty" env:"CAMPAIGNLENS_SOURCE_TIMEOUT"`
}

// GeneratorConfig controls the synthetic dataset shape.
type GeneratorConfig struct {
	Seed        uint64 `yaml:"seed" json:"seed" env:"CAMPAIGNLENS_SEED"`
	Influencers int    `yaml:"influencers,omitempty" json:"influencers,omitempty"`
	Posts       int    `yaml:"posts,omitempty" json:"posts,omitempty"`
	Events      int    `yaml:"events,omitempty" json:"events,omitempty"`
	Anchor      string `yaml:"anchor,omitempty" json:"anchor,omitempty"` // RFC3339 or YYYY-MM-DD; default: today
}

// CSVSourceConfig points at a directory holding the four entity CSVs.
type CSVSourceConfig struct {
	Dir string `yaml:"dir" json:"dir" env:"CAMPAIGNLENS_CSV_DIR"`
}

// S3CSVConfig points at a bucket prefix holding the four entity CSVs.
type S3CSVConfig struct {
	Bucket string `yaml:"bucket" json:"bucket" env:"CAMPAIGNLENS_S3_BUCKET"`
	Prefix string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Region string `yaml:"region,omitempty" json:"region,omitempty"`
}

// PostgresConfig holds Postgres connection settings. DSNSecretARN, when set,
// names a Secrets Manager secret whose string value is the DSN.
type PostgresConfig struct {
	DSN          string `yaml:"dsn,omitempty" json:"-" env:"CAMPAIGNLENS_POSTGRES_DSN"`
	DSNSecretARN string `yaml:"dsnSecretArn,omitempty" json:"dsnSecretArn,omitempty"`
	Region       string `yaml:"region,omitempty" json:"region,omitempty"`
}

// SQLiteConfig holds the path to a SQLite database file.
type SQLiteConfig struct {
	Path string `yaml:"path" json:"path" env:"CAMPAIGNLENS_SQLITE_PATH"`
}

// DynamoDBConfig holds DynamoDB connection and table settings.
type DynamoDBConfig struct {
	TableName   string `yaml:"tableName" json:"tableName" env:"CAMPAIGNLENS_DYNAMODB_TABLE"`
	Region      string `yaml:"region,omitempty" json:"region,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	CreateTable bool   `yaml:"createTable,omitempty" json:"createTable,omitempty"`
}

// BreakerConfig tunes the circuit breaker wrapped around remote sources.
type BreakerConfig struct {
	MaxFailures uint32 `yaml:"maxFailures,omitempty" json:"maxFailures,omitempty"`
	OpenTimeout string `yaml:"openTimeout,omitempty" json:"openTimeout,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string `yaml:"addr" json:"addr" env:"CAMPAIGNLENS_ADDR"`
	ReadTimeout  string `yaml:"readTimeout,omitempty" json:"readTimeout,omitempty"`
	WriteTimeout string `yaml:"writeTimeout,omitempty" json:"writeTimeout,omitempty"`
	APIKey       string `yaml:"apiKey,omitempty" json:"-" env:"CAMPAIGNLENS_API_KEY"`
}

// CacheConfig configures report memoization.
type CacheConfig struct {
	Backend CacheBackend `yaml:"backend,omitempty" json:"backend,omitempty" env:"CAMPAIGNLENS_CACHE"`
	Size    int          `yaml:"size,omitempty" json:"size,omitempty"`
	TTL     string       `yaml:"ttl,omitempty" json:"ttl,omitempty"`
	Redis   RedisConfig  `yaml:"redis,omitempty" json:"redis,omitempty"`
}

// RedisConfig holds Redis/Valkey connection settings.
type RedisConfig struct {
	Addr      string `yaml:"addr" json:"addr" env:"CAMPAIGNLENS_REDIS_ADDR"`
	Password  string `yaml:"password,omitempty" json:"-" env:"CAMPAIGNLENS_REDIS_PASSWORD"`
	DB        int    `yaml:"db,omitempty" json:"db,omitempty"`
	KeyPrefix string `yaml:"keyPrefix,omitempty" json:"keyPrefix,omitempty"`
}

// ExportConfig lists the sinks a published export bundle is delivered to.
type ExportConfig struct {
	FileName string       `yaml:"fileName,omitempty" json:"fileName,omitempty"`
	Sinks    []SinkConfig `yaml:"sinks,omitempty" json:"sinks,omitempty"`
}

// SinkConfig configures one export sink.
type SinkConfig struct {
	Type         SinkType `yaml:"type" json:"type"`
	Dir          string   `yaml:"dir,omitempty" json:"dir,omitempty"`
	Bucket       string   `yaml:"bucket,omitempty" json:"bucket,omitempty"`
	Prefix       string   `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	URL          string   `yaml:"url,omitempty" json:"url,omitempty"`
	TopicARN     string   `yaml:"topicArn,omitempty" json:"topicArn,omitempty"`
	EventBusName string   `yaml:"eventBusName,omitempty" json:"eventBusName,omitempty"`
}

// TelemetryConfig configures OTLP export of traces and metrics.
type TelemetryConfig struct {
	Endpoint    string `yaml:"endpoint,omitempty" json:"endpoint,omitempty" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool   `yaml:"insecure,omitempty" json:"insecure,omitempty"`
	ServiceName string `yaml:"serviceName,omitempty" json:"serviceName,omitempty" env:"OTEL_SERVICE_NAME"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty" env:"CAMPAIGNLENS_LOG_LEVEL"`
	Format string `yaml:"format,omitempty" json:"format,omitempty" env:"CAMPAIGNLENS_LOG_FORMAT"` // text|json
}
