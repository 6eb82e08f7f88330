package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/zombograph/pkg/introspection"
	"github.com/platinummonkey/zombograph/pkg/observability"
	"github.com/platinummonkey/zombograph/pkg/tables"
	"github.com/platinummonkey/zombograph/pkg/zombodb"
)

// Config holds all application configuration
type Config struct {
	// Database connection
	Database DatabaseConfig `yaml:"database"`

	// Schema generation
	Schema SchemaConfig `yaml:"schema"`

	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Rebuild triggers
	Watch WatchConfig `yaml:"watch"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability"`

	// File is the overlay file the config was read from, if any
	File string `yaml:"-"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// SchemaConfig controls what gets introspected and generated
type SchemaConfig struct {
	Schemas           []string                   `yaml:"schemas"`
	SearchInputField  string                     `yaml:"search_input_field"`
	ScoreField        string                     `yaml:"score_field"`
	SimpleCollections string                     `yaml:"simple_collections"`
	ExcludedTables    []string                   `yaml:"excluded_tables"`
	ExcludedIndexes   []string                   `yaml:"excluded_indexes"`
	Tags              introspection.TagOverrides `yaml:"tags"`
	CacheSize         int                        `yaml:"cache_size"`
	CacheTTL          time.Duration              `yaml:"cache_ttl"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// WatchConfig holds schema rebuild triggers
type WatchConfig struct {
	// Schedule is a standard cron expression; empty disables periodic rebuilds
	Schedule string `yaml:"schedule"`
	// ReloadOnChange rebuilds when the overlay file changes
	ReloadOnChange bool `yaml:"reload_on_change"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel  observability.LogLevel `yaml:"log_level"`
	LogFormat string                 `yaml:"log_format"`

	// Metrics
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// OpenTelemetry
	OTelEnabled        bool          `yaml:"otel_enabled"`
	OTelEndpoint       string        `yaml:"otel_endpoint"`
	OTelServiceName    string        `yaml:"otel_service_name"`
	OTelServiceVersion string        `yaml:"otel_service_version"`
	OTelInsecure       bool          `yaml:"otel_insecure"`
	OTelSampleRatio    float64       `yaml:"otel_sample_ratio"`
	OTelExportInterval time.Duration `yaml:"otel_export_interval"`
}

var graphQLName = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Schema: SchemaConfig{
			Schemas:           []string{"public"},
			SearchInputField:  "search",
			ScoreField:        "_score",
			SimpleCollections: tables.SimpleCollectionsOmit,
			CacheSize:         8,
			CacheTTL:          5 * time.Minute,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5678,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel:           observability.InfoLevel,
			LogFormat:          observability.FormatText,
			MetricsEnabled:     true,
			OTelEndpoint:       "localhost:4317",
			OTelServiceName:    "zombograph",
			OTelServiceVersion: "dev",
			OTelInsecure:       true,
			OTelSampleRatio:    1,
			OTelExportInterval: 30 * time.Second,
		},
	}
}

// Load reads the defaults, overlays the YAML file at path (if path is not
// empty), applies ZOMBOGRAPH_* environment variables and then overrides in
// order, and validates the result
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		cfg.File = path
	}

	cfg.applyEnv()
	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides settings from the environment
func (c *Config) applyEnv() {
	c.Database.URL = getEnv("ZOMBOGRAPH_DATABASE_URL", c.Database.URL)
	c.Database.MaxOpenConns = getEnvInt("ZOMBOGRAPH_DATABASE_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.ConnMaxLifetime = getEnvDuration("ZOMBOGRAPH_DATABASE_CONN_MAX_LIFETIME", c.Database.ConnMaxLifetime)

	c.Schema.Schemas = getEnvList("ZOMBOGRAPH_SCHEMAS", c.Schema.Schemas)
	c.Schema.SearchInputField = getEnv("ZOMBOGRAPH_SEARCH_INPUT_FIELD", c.Schema.SearchInputField)
	c.Schema.ScoreField = getEnv("ZOMBOGRAPH_SCORE_FIELD", c.Schema.ScoreField)
	c.Schema.SimpleCollections = getEnv("ZOMBOGRAPH_SIMPLE_COLLECTIONS", c.Schema.SimpleCollections)
	c.Schema.ExcludedTables = getEnvList("ZOMBOGRAPH_EXCLUDED_TABLES", c.Schema.ExcludedTables)
	c.Schema.ExcludedIndexes = getEnvList("ZOMBOGRAPH_EXCLUDED_INDEXES", c.Schema.ExcludedIndexes)
	c.Schema.CacheSize = getEnvInt("ZOMBOGRAPH_CACHE_SIZE", c.Schema.CacheSize)
	c.Schema.CacheTTL = getEnvDuration("ZOMBOGRAPH_CACHE_TTL", c.Schema.CacheTTL)

	c.Server.Host = getEnv("ZOMBOGRAPH_HOST", c.Server.Host)
	c.Server.Port = getEnvInt("ZOMBOGRAPH_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvDuration("ZOMBOGRAPH_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("ZOMBOGRAPH_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("ZOMBOGRAPH_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Watch.Schedule = getEnv("ZOMBOGRAPH_WATCH_SCHEDULE", c.Watch.Schedule)
	c.Watch.ReloadOnChange = getEnvBool("ZOMBOGRAPH_RELOAD_ON_CHANGE", c.Watch.ReloadOnChange)

	if level := os.Getenv("ZOMBOGRAPH_LOG_LEVEL"); level != "" {
		c.Observability.LogLevel = observability.ParseLogLevel(level)
	}
	c.Observability.LogFormat = getEnv("ZOMBOGRAPH_LOG_FORMAT", c.Observability.LogFormat)
	c.Observability.MetricsEnabled = getEnvBool("ZOMBOGRAPH_METRICS_ENABLED", c.Observability.MetricsEnabled)
	c.Observability.OTelEnabled = getEnvBool("ZOMBOGRAPH_OTEL_ENABLED", c.Observability.OTelEnabled)
	c.Observability.OTelEndpoint = getEnv("ZOMBOGRAPH_OTEL_ENDPOINT", c.Observability.OTelEndpoint)
	c.Observability.OTelServiceName = getEnv("ZOMBOGRAPH_OTEL_SERVICE_NAME", c.Observability.OTelServiceName)
	c.Observability.OTelServiceVersion = getEnv("ZOMBOGRAPH_OTEL_SERVICE_VERSION", c.Observability.OTelServiceVersion)
	c.Observability.OTelInsecure = getEnvBool("ZOMBOGRAPH_OTEL_INSECURE", c.Observability.OTelInsecure)
	c.Observability.OTelSampleRatio = getEnvFloat("ZOMBOGRAPH_OTEL_SAMPLE_RATIO", c.Observability.OTelSampleRatio)
	c.Observability.OTelExportInterval = getEnvDuration("ZOMBOGRAPH_OTEL_EXPORT_INTERVAL", c.Observability.OTelExportInterval)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database URL is required")
	}
	if len(c.Schema.Schemas) == 0 {
		return errors.New("at least one schema is required")
	}

	for name, value := range map[string]string{
		"search input field": c.Schema.SearchInputField,
		"score field":        c.Schema.ScoreField,
	} {
		if !graphQLName.MatchString(value) || strings.HasPrefix(value, "__") {
			return fmt.Errorf("invalid %s name: %q", name, value)
		}
	}

	switch c.Schema.SimpleCollections {
	case tables.SimpleCollectionsOmit, tables.SimpleCollectionsOnly, tables.SimpleCollectionsBoth:
	default:
		return fmt.Errorf("invalid simple collections mode: %s (must be omit, only, or both)", c.Schema.SimpleCollections)
	}

	if c.Schema.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", c.Schema.CacheSize)
	}
	if c.Schema.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must not be negative, got %s", c.Schema.CacheTTL)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Watch.Schedule != "" {
		if _, err := cron.ParseStandard(c.Watch.Schedule); err != nil {
			return fmt.Errorf("invalid watch schedule %q: %w", c.Watch.Schedule, err)
		}
	}

	switch c.Observability.LogFormat {
	case observability.FormatText, observability.FormatJSON:
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Observability.LogFormat)
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return errors.New("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return errors.New("OpenTelemetry service name is required when OTel is enabled")
		}
		if r := c.Observability.OTelSampleRatio; r < 0 || r > 1 {
			return fmt.Errorf("invalid OpenTelemetry sample ratio: %g (must be between 0 and 1)", r)
		}
	}

	return nil
}

// TagOverrides returns the configured smart tags with the excluded tables
// and indexes folded in as "@omit zombodb"
func (c *Config) TagOverrides() introspection.TagOverrides {
	out := introspection.TagOverrides{
		Classes:    copyTagMap(c.Schema.Tags.Classes),
		Indexes:    copyTagMap(c.Schema.Tags.Indexes),
		Attributes: copyTagMap(c.Schema.Tags.Attributes),
	}
	for _, name := range c.Schema.ExcludedTables {
		out.Classes[name] = withOmit(out.Classes[name], zombodb.OmitSearch)
	}
	for _, name := range c.Schema.ExcludedIndexes {
		out.Indexes[name] = withOmit(out.Indexes[name], zombodb.OmitSearch)
	}
	return out
}

// Address returns the listen address of the HTTP server
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func copyTagMap(in map[string]introspection.Tags) map[string]introspection.Tags {
	out := make(map[string]introspection.Tags, len(in))
	for k, v := range in {
		out[k] = v.Merge(nil)
	}
	return out
}

// withOmit adds action to the omit tag. A bare omit already covers it.
func withOmit(tags introspection.Tags, action string) introspection.Tags {
	tags = tags.Merge(nil)
	existing, ok := tags["omit"]
	switch {
	case !ok:
		tags["omit"] = action
	case existing == "":
	default:
		tags["omit"] = existing + "," + action
	}
	return tags
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList returns a comma separated environment variable or a default
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
