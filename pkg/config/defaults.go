package config

import "time"

// Default values for configuration fields.
const (
	// Parser defaults
	DefaultParserMaxDepth     = 128
	DefaultParserMaxSize      = int64(10 * 1024 * 1024) // 10MB
	DefaultParserContextLines = 1

	// History defaults
	DefaultHistoryEnabled          = true
	DefaultHistoryBackend          = "sqlite"
	DefaultHistorySQLitePath       = "data/history.db"
	DefaultHistorySQLiteDriver     = "sqlite"
	DefaultHistorySQLiteMaxOpen    = 10
	DefaultHistorySQLiteMaxIdle    = 5
	DefaultHistorySQLiteWALMode    = true
	DefaultHistorySQLiteBusy       = 5 * time.Second
	DefaultHistoryMaxMessageLength = 500
	DefaultRetentionDays           = 30
	DefaultRetentionSchedule       = "0 3 * * *"
	DefaultQueryDefaultLimit       = 100
	DefaultQueryMaxLimit           = 10000

	// Watch defaults
	DefaultWatchExtension = ".rdl"
	DefaultWatchDebounce  = 100 * time.Millisecond

	// Git defaults
	DefaultGitBranch     = "main"
	DefaultGitAuthType   = "none"
	DefaultGitCloneDepth = 1
	DefaultGitLocalPath  = "data/repo"
	DefaultGitTimeout    = 30 * time.Second

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultTLSMinVersion   = "1.2"
	DefaultTLSReload       = 5 * time.Minute

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultLoggingRedact      = true
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "rdl"
	DefaultMetricsSubsystem   = "checker"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingService     = "rdl"
	DefaultOTLPInsecure       = true
	DefaultOTLPTimeout        = 10 * time.Second
)

var (
	DefaultDurationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}
	DefaultSizeBuckets     = []float64{128, 1024, 8192, 65536, 524288, 4194304}
)

// NewDefault returns a configuration with every default applied. It is
// used when no configuration file is given.
func NewDefault() *Config {
	cfg := &Config{}
	applyBoolDefaults(cfg)
	ApplyDefaults(cfg)
	return cfg
}

// applyBoolDefaults sets booleans whose default is true. It runs before
// the YAML is decoded so that an explicit false in the file wins.
func applyBoolDefaults(cfg *Config) {
	cfg.History.Enabled = DefaultHistoryEnabled
	cfg.History.SQLite.WALMode = DefaultHistorySQLiteWALMode
	cfg.Telemetry.Logging.RedactSecrets = DefaultLoggingRedact
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.OTLP.Insecure = DefaultOTLPInsecure
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Parser defaults
	if cfg.Parser.MaxDepth == 0 {
		cfg.Parser.MaxDepth = DefaultParserMaxDepth
	}
	if cfg.Parser.MaxSize == 0 {
		cfg.Parser.MaxSize = DefaultParserMaxSize
	}
	if cfg.Parser.ContextLines == nil {
		n := DefaultParserContextLines
		cfg.Parser.ContextLines = &n
	}

	if cfg.Schemas == nil {
		cfg.Schemas = make(map[string]string)
	}

	applyHistoryDefaults(&cfg.History)

	// Watch defaults
	if len(cfg.Watch.Extensions) == 0 {
		cfg.Watch.Extensions = []string{DefaultWatchExtension}
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}

	// Git defaults
	if cfg.Git.Branch == "" {
		cfg.Git.Branch = DefaultGitBranch
	}
	if cfg.Git.Auth.Type == "" {
		cfg.Git.Auth.Type = DefaultGitAuthType
	}
	if cfg.Git.Clone.Depth == 0 {
		cfg.Git.Clone.Depth = DefaultGitCloneDepth
	}
	if cfg.Git.Clone.LocalPath == "" {
		cfg.Git.Clone.LocalPath = DefaultGitLocalPath
	}
	if cfg.Git.Poll.Timeout == 0 {
		cfg.Git.Poll.Timeout = DefaultGitTimeout
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.Server.TLS.ReloadInterval == 0 {
		cfg.Server.TLS.ReloadInterval = DefaultTLSReload
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = cfg.Parser.MaxSize
	}

	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyHistoryDefaults(h *HistoryConfig) {
	if h.Backend == "" {
		h.Backend = DefaultHistoryBackend
	}
	if h.SQLite.Path == "" {
		h.SQLite.Path = DefaultHistorySQLitePath
	}
	if h.SQLite.Driver == "" {
		h.SQLite.Driver = DefaultHistorySQLiteDriver
	}
	if h.SQLite.MaxOpenConns == 0 {
		h.SQLite.MaxOpenConns = DefaultHistorySQLiteMaxOpen
	}
	if h.SQLite.MaxIdleConns == 0 {
		h.SQLite.MaxIdleConns = DefaultHistorySQLiteMaxIdle
	}
	if h.SQLite.BusyTimeout == 0 {
		h.SQLite.BusyTimeout = DefaultHistorySQLiteBusy
	}
	if h.MaxMessageLength == 0 {
		h.MaxMessageLength = DefaultHistoryMaxMessageLength
	}
	if h.Retention.Days == 0 {
		h.Retention.Days = DefaultRetentionDays
	}
	if h.Retention.PruneSchedule == "" {
		h.Retention.PruneSchedule = DefaultRetentionSchedule
	}
	if h.Query.DefaultLimit == 0 {
		h.Query.DefaultLimit = DefaultQueryDefaultLimit
	}
	if h.Query.MaxLimit == 0 {
		h.Query.MaxLimit = DefaultQueryMaxLimit
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}

	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultMetricsPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if t.Metrics.Subsystem == "" {
		t.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(t.Metrics.DurationBuckets) == 0 {
		t.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
	if len(t.Metrics.SizeBuckets) == 0 {
		t.Metrics.SizeBuckets = append([]float64(nil), DefaultSizeBuckets...)
	}

	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.SampleRatio == 0 {
		t.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultTracingService
	}
	if t.Tracing.OTLP.Timeout == 0 {
		t.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
}
