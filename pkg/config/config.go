package config

import "time"

// Config is the root configuration structure for the RDL toolchain.
// It covers the document parser, named schemas, run history, document
// sources (local watch and Git), the HTTP API, and telemetry.
type Config struct {
	// Parser contains limits applied to every parsed document and schema.
	Parser ParserConfig `yaml:"parser"`

	// Schemas maps schema names to schema files.
	// Example: {"stock": "schemas/stock.schema"}
	Schemas map[string]string `yaml:"schemas"`

	// Documents binds document paths to schemas.
	Documents DocumentsConfig `yaml:"documents"`

	// History contains configuration for storing check results.
	History HistoryConfig `yaml:"history"`

	// Watch contains configuration for re-checking documents on change.
	Watch WatchConfig `yaml:"watch"`

	// Git contains configuration for checking documents from a Git repository.
	Git GitConfig `yaml:"git"`

	// Server contains HTTP API server configuration.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains configuration for logging, metrics, and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ParserConfig contains parser limits.
type ParserConfig struct {
	// MaxDepth is the maximum list/object nesting depth.
	// Default: 128
	MaxDepth int `yaml:"max_depth"`

	// MaxSize is the maximum document size in bytes.
	// Default: 10485760 (10MB)
	MaxSize int64 `yaml:"max_size"`

	// ContextLines is the number of source lines shown around an error.
	// Default: 1. Zero disables context; nil means the default.
	ContextLines *int `yaml:"context_lines"`
}

// DocumentsConfig binds documents to schemas.
type DocumentsConfig struct {
	// Bindings are tried in order; the first whose pattern matches the
	// document path selects the schema.
	Bindings []Binding `yaml:"bindings"`

	// DefaultSchema is used when no binding matches. Empty means the
	// document is only parsed.
	DefaultSchema string `yaml:"default_schema"`
}

// Binding associates a path pattern with a schema name.
type Binding struct {
	// Pattern is a path.Match pattern matched against the slash-separated
	// document path and, failing that, its base name.
	// Example: "quotes/*.rdl"
	Pattern string `yaml:"pattern"`

	// Schema is a key of Config.Schemas.
	Schema string `yaml:"schema"`
}

// HistoryConfig contains configuration for check history storage.
type HistoryConfig struct {
	// Enabled controls whether check results are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend specifies the storage backend.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// StoreDocuments keeps the document text in each record.
	// Default: false (only a SHA-256 hash is stored)
	StoreDocuments bool `yaml:"store_documents"`

	// MaxMessageLength truncates stored error messages.
	// Default: 500
	MaxMessageLength int `yaml:"max_message_length"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`

	// Query contains query configuration.
	Query QueryConfig `yaml:"query"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/history.db"
	Path string `yaml:"path"`

	// Driver selects the database/sql driver.
	// Options: "sqlite" (modernc.org/sqlite, pure Go), "sqlite3" (mattn/go-sqlite3, cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to retain records.
	// 0 keeps records forever.
	// Default: 30
	Days int `yaml:"days"`

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}

// QueryConfig contains history query configuration.
type QueryConfig struct {
	// DefaultLimit is the number of records returned when no limit is given.
	// Default: 100
	DefaultLimit int `yaml:"default_limit"`

	// MaxLimit is the maximum number of records a single query may return.
	// Default: 10000
	MaxLimit int `yaml:"max_limit"`
}

// WatchConfig contains file watching configuration.
type WatchConfig struct {
	// Paths are files or directories to watch. Directories are watched
	// recursively.
	Paths []string `yaml:"paths"`

	// Extensions lists the file extensions treated as documents.
	// Default: [".rdl"]
	Extensions []string `yaml:"extensions"`

	// Debounce is how long to wait after the last change before checking.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`
}

// GitConfig configures checking documents from a Git repository.
type GitConfig struct {
	// Enabled determines if the Git source is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Repository URL (HTTPS or SSH).
	// Example: "https://github.com/company/market-data.git"
	Repository string `yaml:"repository"`

	// Branch to track (supports environment variable expansion).
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path within the repository to look for documents.
	// Default: "" (root directory)
	Path string `yaml:"path"`

	// Auth configures Git authentication.
	Auth GitAuthConfig `yaml:"auth"`

	// Clone configures repository cloning.
	Clone GitCloneConfig `yaml:"clone"`

	// Poll configures change detection.
	Poll GitPollConfig `yaml:"poll"`
}

// GitAuthConfig configures Git authentication.
type GitAuthConfig struct {
	// Type: "token", "ssh", "none"
	// Default: "none"
	Type string `yaml:"type"`

	// Token for HTTPS authentication (supports env vars).
	// Example: "${GITHUB_TOKEN}"
	Token string `yaml:"token"`

	// SSHKeyPath for SSH authentication.
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase for encrypted SSH keys (supports env vars).
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// GitCloneConfig configures repository cloning.
type GitCloneConfig struct {
	// Depth for shallow clones (0 = full clone).
	// Default: 1
	Depth int `yaml:"depth"`

	// LocalPath where the repository is cloned.
	// Default: "data/repo"
	LocalPath string `yaml:"local_path"`

	// CleanOnStart removes the local clone before cloning.
	// Default: false
	CleanOnStart bool `yaml:"clean_on_start"`
}

// GitPollConfig configures change detection for the serve command.
type GitPollConfig struct {
	// Interval between pulls. 0 disables polling.
	// Default: 0
	Interval time.Duration `yaml:"interval"`

	// Timeout for Git operations.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig contains HTTP API server configuration.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes limits request bodies. Defaults to parser.max_size.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// APIKeys, when any are set, are required on every /v1 request as
	// "Authorization: Bearer <key>" or an X-API-Key header.
	APIKeys []APIKeyConfig `yaml:"api_keys"`

	// TLS serves HTTPS instead of HTTP.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig configures HTTPS for the server.
type TLSConfig struct {
	Enabled bool `yaml:"enabled"`

	// CertFile and KeyFile are PEM files. They are re-read when their
	// modification time changes, so renewed certificates need no restart.
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`

	// MinVersion is "1.2" or "1.3".
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`

	// ReloadInterval is how often the files are checked for changes.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"reload_interval"`
}

// APIKeyConfig is one accepted API key.
type APIKeyConfig struct {
	// Name identifies the client in logs and history. Required.
	Name string `yaml:"name"`

	// Key is the secret (supports env vars, e.g. "${RDL_CI_KEY}").
	Key string `yaml:"key"`

	// Disabled rejects the key without removing it.
	Disabled bool `yaml:"disabled"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks credentials (Git tokens, URL passwords) in logs.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`

	// RedactPatterns contains additional redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "rdl"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "checker"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for parse and validation
	// duration (seconds).
	// Default: [0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1]
	DurationBuckets []float64 `yaml:"duration_buckets"`

	// SizeBuckets defines histogram buckets for document size (bytes).
	// Default: [128, 1024, 8192, 65536, 524288, 4194304]
	SizeBuckets []float64 `yaml:"size_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "rdl"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
