// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost                  = "0.0.0.0"
	DefaultPort                  = 8080
	DefaultLogLevel              = "INFO"
	DefaultOutputSubdir          = "dags_output"
	DefaultDBFile                = "dagforge.db"
	DefaultArtifactExtension     = ".py"
	DefaultDDLSchema             = "public"
	DefaultIntrospectParallelism = 4
	DefaultIntrospectTimeout     = 30 * time.Second
	DefaultRequestTimeout        = 120 * time.Second
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// AppConfig holds the main application configuration.
type AppConfig struct {
	host                  string
	port                  int
	dataDir               string
	dbURL                 string
	logLevel              string
	logFormat             LogFormat
	outputDir             string
	artifactExtension     string
	ddlSchema             string
	introspectParallelism int
	introspectTimeout     time.Duration
	requestTimeout        time.Duration
	corsOrigins           []string
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dagforge"
	}
	return filepath.Join(home, ".dagforge")
}

// DefaultOutputDir returns the default artifact directory for a data directory.
func DefaultOutputDir(dataDir string) string {
	return filepath.Join(dataDir, DefaultOutputSubdir)
}

// DefaultLogger returns the default slog logger for library consumers.
func DefaultLogger() *slog.Logger {
	return slog.Default()
}

// PrepareDataDir creates the data directory if it does not exist and returns it.
func PrepareDataDir(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dataDir, nil
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:                  DefaultHost,
		port:                  DefaultPort,
		dataDir:               dataDir,
		dbURL:                 "sqlite:///" + filepath.Join(dataDir, DefaultDBFile),
		logLevel:              DefaultLogLevel,
		logFormat:             LogFormatPretty,
		artifactExtension:     DefaultArtifactExtension,
		ddlSchema:             DefaultDDLSchema,
		introspectParallelism: DefaultIntrospectParallelism,
		introspectTimeout:     DefaultIntrospectTimeout,
		requestTimeout:        DefaultRequestTimeout,
		corsOrigins:           []string{},
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// OutputDir returns the directory generated artifacts are written to.
// Unless set explicitly it lives under the data directory.
func (c AppConfig) OutputDir() string {
	if c.outputDir != "" {
		return c.outputDir
	}
	return DefaultOutputDir(c.dataDir)
}

// ArtifactExtension returns the extension appended to generated files.
func (c AppConfig) ArtifactExtension() string { return c.artifactExtension }

// DDLSchema returns the schema target tables are created in.
func (c AppConfig) DDLSchema() string { return c.ddlSchema }

// IntrospectParallelism returns how many tables are described at once.
func (c AppConfig) IntrospectParallelism() int { return c.introspectParallelism }

// IntrospectTimeout returns the per-call introspection timeout.
func (c AppConfig) IntrospectTimeout() time.Duration { return c.introspectTimeout }

// RequestTimeout returns the HTTP API request deadline. Generation batches
// are not bound by it.
func (c AppConfig) RequestTimeout() time.Duration { return c.requestTimeout }

// CORSOrigins returns the allowed CORS origins. Empty allows none.
func (c AppConfig) CORSOrigins() []string {
	origins := make([]string, len(c.corsOrigins))
	copy(origins, c.corsOrigins)
	return origins
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
}

// EnsureOutputDir creates the output directory if it doesn't exist.
func (c AppConfig) EnsureOutputDir() error {
	return os.MkdirAll(c.OutputDir(), 0o755)
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		c.dataDir = dir
		// Update default DB URL when data dir changes
		if c.dbURL == "" || strings.HasSuffix(c.dbURL, DefaultDBFile) {
			c.dbURL = "sqlite:///" + filepath.Join(dir, DefaultDBFile)
		}
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithOutputDir sets the artifact output directory.
func WithOutputDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.outputDir = dir }
}

// WithArtifactExtension sets the generated file extension. A missing
// leading dot is added.
func WithArtifactExtension(ext string) AppConfigOption {
	return func(c *AppConfig) {
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.artifactExtension = ext
	}
}

// WithDDLSchema sets the schema used in generated DDL.
func WithDDLSchema(schema string) AppConfigOption {
	return func(c *AppConfig) {
		if schema != "" {
			c.ddlSchema = schema
		}
	}
}

// WithIntrospectParallelism sets the number of concurrent introspections.
func WithIntrospectParallelism(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.introspectParallelism = n
		}
	}
}

// WithIntrospectTimeout sets the per-call introspection timeout. Zero
// disables it.
func WithIntrospectTimeout(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d >= 0 {
			c.introspectTimeout = d
		}
	}
}

// WithRequestTimeout sets the HTTP API request deadline. Zero disables it.
func WithRequestTimeout(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d >= 0 {
			c.requestTimeout = d
		}
	}
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		c.corsOrigins = make([]string, len(origins))
		copy(c.corsOrigins, origins)
	}
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Database credentials are masked.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("data_dir", c.dataDir),
		slog.String("output_dir", c.OutputDir()),
		slog.String("log_level", c.logLevel),
		slog.String("db_url", c.maskedDBURL()),
		slog.String("artifact_extension", c.artifactExtension),
		slog.String("ddl_schema", c.ddlSchema),
		slog.Int("introspect_parallelism", c.introspectParallelism),
		slog.Duration("introspect_timeout", c.introspectTimeout),
		slog.Duration("request_timeout", c.requestTimeout),
		slog.Int("cors_origins", len(c.corsOrigins)),
	}
}

func (c AppConfig) maskedDBURL() string {
	if c.dbURL == "" {
		return "(default)"
	}
	if strings.HasPrefix(c.dbURL, "sqlite:") {
		return c.dbURL
	}
	return "postgres://***@***"
}

// ParseList parses a comma-separated list, dropping empty entries.
func ParseList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
