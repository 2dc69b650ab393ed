package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Valuation ValuationConfig `yaml:"valuation" mapstructure:"valuation"`
	Reference ReferenceConfig `yaml:"reference" mapstructure:"reference"`
}

// StoreConfig selects and configures the property store.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite or postgres
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ValuationConfig tunes valuation runs and portfolio scans.
type ValuationConfig struct {
	MinAlphaPercent float64     `yaml:"min_alpha_percent" mapstructure:"min_alpha_percent"`
	CacheTTLSecs    int         `yaml:"cache_ttl_secs" mapstructure:"cache_ttl_secs"`
	MaxConcurrency  int         `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	LookupRPS       float64     `yaml:"lookup_rps" mapstructure:"lookup_rps"` // 0 = unlimited
	Retry           RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// CacheTTL returns the cache TTL as a duration.
func (v ValuationConfig) CacheTTL() time.Duration {
	return time.Duration(v.CacheTTLSecs) * time.Second
}

// RetryConfig configures retries of property lookups.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
}

// ReferenceConfig points at optional reference data overrides. Empty paths
// keep the built-in tables.
type ReferenceConfig struct {
	TablesPath              string `yaml:"tables_path" mapstructure:"tables_path"`
	InfrastructureShapefile string `yaml:"infrastructure_shapefile" mapstructure:"infrastructure_shapefile"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AGENZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "agenz.db")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("valuation.min_alpha_percent", 20.0)
	v.SetDefault("valuation.cache_ttl_secs", 60)
	v.SetDefault("valuation.max_concurrency", 8)
	v.SetDefault("valuation.lookup_rps", 0.0)
	v.SetDefault("valuation.retry.max_attempts", 3)
	v.SetDefault("valuation.retry.initial_backoff_ms", 200)
	v.SetDefault("reference.tables_path", "")
	v.SetDefault("reference.infrastructure_shapefile", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings the given command mode depends on and
// reports every problem at once. Modes: "cli" and "serve".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "cli", "serve":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			problems = append(problems, "store.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("log.level %q is not a valid level", c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		problems = append(problems, fmt.Sprintf("log.format must be json or console, got %q", c.Log.Format))
	}

	if mode == "serve" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		problems = append(problems, "server.port must be > 0 and <= 65535")
	}

	if c.Valuation.MinAlphaPercent < 0 {
		problems = append(problems, "valuation.min_alpha_percent must be >= 0")
	}
	if c.Valuation.CacheTTLSecs < 0 {
		problems = append(problems, "valuation.cache_ttl_secs must be >= 0")
	}
	if c.Valuation.MaxConcurrency < 1 || c.Valuation.MaxConcurrency > 64 {
		problems = append(problems, "valuation.max_concurrency must be between 1 and 64")
	}
	if c.Valuation.LookupRPS < 0 {
		problems = append(problems, "valuation.lookup_rps must be >= 0")
	}
	if c.Valuation.Retry.MaxAttempts < 0 || c.Valuation.Retry.InitialBackoffMs < 0 {
		problems = append(problems, "valuation.retry values must be >= 0")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
