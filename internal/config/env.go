package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.dagforge
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the metadata database URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/dagforge.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// OutputDir is where generated artifacts are written.
	// Env: OUTPUT_DIR
	// Default: {data_dir}/dags_output
	OutputDir string `envconfig:"OUTPUT_DIR"`

	// ArtifactExtension is appended to generated file names.
	// Env: ARTIFACT_EXTENSION (default: .py)
	ArtifactExtension string `envconfig:"ARTIFACT_EXTENSION" default:".py"`

	// DDLSchema is the schema target tables are created in.
	// Env: DDL_SCHEMA (default: public)
	DDLSchema string `envconfig:"DDL_SCHEMA" default:"public"`

	// IntrospectParallelism bounds concurrent table introspection.
	// Env: INTROSPECT_PARALLELISM (default: 4)
	IntrospectParallelism int `envconfig:"INTROSPECT_PARALLELISM" default:"4"`

	// IntrospectTimeout is the per-call introspection timeout in seconds.
	// Env: INTROSPECT_TIMEOUT (default: 30)
	IntrospectTimeout float64 `envconfig:"INTROSPECT_TIMEOUT" default:"30"`

	// RequestTimeout is the HTTP API request deadline in seconds.
	// Env: REQUEST_TIMEOUT (default: 120)
	RequestTimeout float64 `envconfig:"REQUEST_TIMEOUT" default:"120"`

	// CORSOrigins is a comma-separated list of allowed origins.
	// Env: CORS_ORIGINS
	CORSOrigins string `envconfig:"CORS_ORIGINS"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "DAGFORGE" would require DAGFORGE_DATA_DIR instead of DATA_DIR.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// Normalize trims whitespace from string settings and expands a leading
// "~/" in directory paths.
func (e EnvConfig) Normalize() EnvConfig {
	e.Host = strings.TrimSpace(e.Host)
	e.DataDir = expandHome(strings.TrimSpace(e.DataDir))
	e.OutputDir = expandHome(strings.TrimSpace(e.OutputDir))
	e.DBURL = strings.TrimSpace(e.DBURL)
	e.LogLevel = strings.ToUpper(strings.TrimSpace(e.LogLevel))
	e.LogFormat = strings.TrimSpace(e.LogFormat)
	e.ArtifactExtension = strings.TrimSpace(e.ArtifactExtension)
	e.DDLSchema = strings.TrimSpace(e.DDLSchema)
	return e
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.DataDir != "" {
		cfg = applyOption(cfg, WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		cfg = applyOption(cfg, WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.OutputDir != "" {
		cfg = applyOption(cfg, WithOutputDir(e.OutputDir))
	}
	cfg = applyOption(cfg, WithArtifactExtension(e.ArtifactExtension))
	cfg = applyOption(cfg, WithDDLSchema(e.DDLSchema))
	cfg = applyOption(cfg, WithIntrospectParallelism(e.IntrospectParallelism))
	cfg = applyOption(cfg, WithIntrospectTimeout(time.Duration(e.IntrospectTimeout*float64(time.Second))))
	cfg = applyOption(cfg, WithRequestTimeout(time.Duration(e.RequestTimeout*float64(time.Second))))

	if e.CORSOrigins != "" {
		cfg = applyOption(cfg, WithCORSOrigins(ParseList(e.CORSOrigins)))
	}

	return cfg
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
