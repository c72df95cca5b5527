// Package config loads service settings from a YAML file, CVELOOKUP_* environment
// variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. CVELOOKUP_MATCH_THRESHOLD.
const EnvPrefix = "CVELOOKUP"

// Store backends.
const (
	BackendSQLite   = "sqlite"
	BackendArangoDB = "arangodb"
)

// ErrInvalidConfig is returned when a setting is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full service configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Match    MatchConfig    `mapstructure:"match"`
	Lookup   LookupConfig   `mapstructure:"lookup"`
	Server   ServerConfig   `mapstructure:"server"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Log      LogConfig      `mapstructure:"log"`

	// Queries is resolved from Database.QueriesFile and Database.Backend by Load.
	Queries Queries `mapstructure:"-"`
}

// DatabaseConfig selects and locates the reference store.
type DatabaseConfig struct {
	Backend     string       `mapstructure:"backend"`
	Path        string       `mapstructure:"path"`
	PageSize    int          `mapstructure:"page_size"`
	QueriesFile string       `mapstructure:"queries_file"`
	Arango      ArangoConfig `mapstructure:"arango"`
	Retry       RetryConfig  `mapstructure:"retry"`
}

// ArangoConfig holds the ArangoDB connection settings.
type ArangoConfig struct {
	URL      string `mapstructure:"url"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// RetryConfig bounds the exponential backoff used when opening the store.
type RetryConfig struct {
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	MaxElapsed      time.Duration `mapstructure:"max_elapsed"`
}

// MatchConfig tunes the matchers.
type MatchConfig struct {
	Threshold     int  `mapstructure:"threshold"`
	SummaryWindow int  `mapstructure:"summary_window"`
	NAMatchesAny  bool `mapstructure:"na_matches_any"`
	VersionRanges bool `mapstructure:"version_ranges"`
	SummarySearch bool `mapstructure:"summary_search"`
}

// LookupConfig bounds batch execution.
type LookupConfig struct {
	Workers int           `mapstructure:"workers"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port        int           `mapstructure:"port"`
	BodyLimit   int           `mapstructure:"body_limit"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

// KafkaConfig configures the component event worker.
type KafkaConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	Brokers     []string `mapstructure:"brokers"`
	GroupID     string   `mapstructure:"group_id"`
	InputTopic  string   `mapstructure:"input_topic"`
	OutputTopic string   `mapstructure:"output_topic"`
	Username    string   `mapstructure:"username"`
	Password    string   `mapstructure:"password"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.backend", BackendSQLite)
	v.SetDefault("database.path", "cpe_cve.db")
	v.SetDefault("database.page_size", 10000)
	v.SetDefault("database.queries_file", "")
	v.SetDefault("database.arango.url", "http://localhost:8529")
	v.SetDefault("database.arango.user", "root")
	v.SetDefault("database.arango.password", "")
	v.SetDefault("database.arango.database", "cvelookup")
	v.SetDefault("database.retry.initial_interval", time.Second)
	v.SetDefault("database.retry.max_interval", 10*time.Second)
	v.SetDefault("database.retry.max_elapsed", 30*time.Second)

	v.SetDefault("match.threshold", 3)
	v.SetDefault("match.summary_window", 3)
	v.SetDefault("match.na_matches_any", true)
	v.SetDefault("match.version_ranges", false)
	v.SetDefault("match.summary_search", true)

	v.SetDefault("lookup.workers", 4)
	v.SetDefault("lookup.timeout", 30*time.Second)

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.body_limit", 10*1024*1024)
	v.SetDefault("server.read_timeout", 60*time.Second)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_id", "cvelookup-worker")
	v.SetDefault("kafka.input_topic", "software-components")
	v.SetDefault("kafka.output_topic", "cve-lookup-results")
	v.SetDefault("kafka.username", "")
	v.SetDefault("kafka.password", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
}

// NewViper returns a viper instance with defaults and environment binding applied.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file at path, applies environment overrides
// and resolves the query catalog for the configured backend.
func Load(path string) (*Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	catalog, err := LoadQueries(cfg.Database.QueriesFile)
	if err != nil {
		return nil, err
	}
	if cfg.Queries, err = catalog.For(cfg.Database.Backend); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the lookup engine cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Backend {
	case BackendSQLite, BackendArangoDB:
	default:
		return fmt.Errorf("%w: unknown database backend %q", ErrInvalidConfig, c.Database.Backend)
	}
	switch {
	case c.Database.PageSize <= 0:
		return fmt.Errorf("%w: database.page_size must be positive", ErrInvalidConfig)
	case c.Match.Threshold <= 0:
		return fmt.Errorf("%w: match.threshold must be positive", ErrInvalidConfig)
	case c.Match.SummaryWindow <= 0:
		return fmt.Errorf("%w: match.summary_window must be positive", ErrInvalidConfig)
	case c.Lookup.Workers <= 0:
		return fmt.Errorf("%w: lookup.workers must be positive", ErrInvalidConfig)
	case c.Lookup.Timeout <= 0:
		return fmt.Errorf("%w: lookup.timeout must be positive", ErrInvalidConfig)
	}
	return nil
}
