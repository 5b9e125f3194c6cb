// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Host string `envconfig:"SEARCHCTL_HOST" yaml:"host"`
	Port int    `envconfig:"SEARCHCTL_PORT" yaml:"port"`

	// Engine configuration
	Engine EngineConfig `yaml:"engine"`

	// Validation defaults for the reindex validator
	Validation ValidationConfig `yaml:"validation"`

	// Report base paths
	Reports ReportConfig `yaml:"reports"`

	// Dataset base directory (querysets/ and judgements/ subdirectories)
	Datasets DatasetConfig `yaml:"datasets"`

	// Benchmark defaults for the performance benchmarker
	Benchmark BenchmarkConfig `yaml:"benchmark"`

	// Cache configuration (alias-state read-through cache)
	Cache CacheConfig `yaml:"cache"`

	// Bus configuration (state-transition event bus)
	Bus BusConfig `yaml:"bus"`

	// Logging configuration
	Log LogConfig `yaml:"log"`

	// Security configuration
	Security SecurityConfig `yaml:"security"`
}

// EngineConfig holds search engine connection settings.
type EngineConfig struct {
	// Driver selects the engine port implementation: "bleve" (embedded,
	// for local/dev/test) or "http" (REST client against a running engine).
	Driver string `envconfig:"SEARCHCTL_ENGINE_DRIVER" yaml:"driver"`
	URL    string `envconfig:"SEARCHCTL_ENGINE_URL" yaml:"url"`
}

// ValidationConfig holds the reindex validator's default toggles and
// thresholds; a reindex request may override any of these per-call.
type ValidationConfig struct {
	EnableCountValidation       bool    `envconfig:"SEARCHCTL_VALIDATE_COUNT" yaml:"enable_count_validation"`
	EnableSampleQueryValidation bool    `envconfig:"SEARCHCTL_VALIDATE_SAMPLE_QUERY" yaml:"enable_sample_query_validation"`
	EnableHashValidation        bool    `envconfig:"SEARCHCTL_VALIDATE_HASH" yaml:"enable_hash_validation"`
	SampleTopK                  int     `envconfig:"SEARCHCTL_VALIDATE_SAMPLE_TOP_K" yaml:"sample_top_k"`
	MinJaccard                  float64 `envconfig:"SEARCHCTL_VALIDATE_MIN_JACCARD" yaml:"min_jaccard"`
	HashMaxDocs                 int     `envconfig:"SEARCHCTL_VALIDATE_HASH_MAX_DOCS" yaml:"hash_max_docs"`
	HashPageSize                int     `envconfig:"SEARCHCTL_VALIDATE_HASH_PAGE_SIZE" yaml:"hash_page_size"`
}

// ReportConfig holds the base directories every report/manifest writer
// resolves its output paths under.
type ReportConfig struct {
	BaseDir string `envconfig:"SEARCHCTL_REPORTS_DIR" yaml:"base_dir"`
}

// DatasetConfig holds the root directory the dataset loader resolves
// querysets/ and judgements/ under.
type DatasetConfig struct {
	RootDir string `envconfig:"SEARCHCTL_DATASETS_DIR" yaml:"root_dir"`
}

// BenchmarkConfig holds the performance benchmarker's defaults.
type BenchmarkConfig struct {
	Iterations int `envconfig:"SEARCHCTL_BENCHMARK_ITERATIONS" yaml:"iterations"`
	Warmups    int `envconfig:"SEARCHCTL_BENCHMARK_WARMUPS" yaml:"warmups"`
	TopK       int `envconfig:"SEARCHCTL_BENCHMARK_TOP_K" yaml:"top_k"`
}

// CacheConfig holds alias-state cache settings.
type CacheConfig struct {
	Type     string `envconfig:"SEARCHCTL_CACHE_TYPE" yaml:"type"` // "none" or "redis"
	RedisURL string `envconfig:"SEARCHCTL_REDIS_URL" yaml:"redis_url"`
	TTLSecs  int    `envconfig:"SEARCHCTL_CACHE_TTL_SECONDS" yaml:"ttl_seconds"`
}

// BusConfig holds event bus settings.
type BusConfig struct {
	Type         string `envconfig:"SEARCHCTL_BUS_TYPE" yaml:"type"` // "none", "memory", or "kafka"
	KafkaBrokers string `envconfig:"SEARCHCTL_KAFKA_BROKERS" yaml:"kafka_brokers"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"SEARCHCTL_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"SEARCHCTL_LOG_FORMAT" yaml:"format"`
}

// SecurityConfig holds security settings for the admin HTTP surface.
type SecurityConfig struct {
	APIKey         string `envconfig:"SEARCHCTL_API_KEY" yaml:"api_key"`
	RateLimit      int    `envconfig:"SEARCHCTL_RATE_LIMIT" yaml:"rate_limit"` // requests/sec, 0 = disabled
	RateLimitBurst int    `envconfig:"SEARCHCTL_RATE_LIMIT_BURST" yaml:"rate_limit_burst"`
	CORSOrigins    string `envconfig:"SEARCHCTL_CORS_ORIGINS" yaml:"cors_origins"`
}

// Load loads configuration from environment variables and an optional
// config file. File values override defaults; environment values override
// both.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	setDefaults(cfg)

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.Host = "0.0.0.0"
	cfg.Port = 8080

	cfg.Engine = EngineConfig{
		Driver: "bleve",
	}

	cfg.Validation = ValidationConfig{
		EnableCountValidation:       true,
		EnableSampleQueryValidation: false,
		EnableHashValidation:        false,
		SampleTopK:                  10,
		MinJaccard:                  0.6,
		HashMaxDocs:                 10000,
		HashPageSize:                500,
	}

	cfg.Reports = ReportConfig{
		BaseDir: "./reports",
	}

	cfg.Datasets = DatasetConfig{
		RootDir: "./datasets",
	}

	cfg.Benchmark = BenchmarkConfig{
		Iterations: 20,
		Warmups:    5,
		TopK:       10,
	}

	cfg.Cache = CacheConfig{
		Type:    "none",
		TTLSecs: 30,
	}

	cfg.Bus = BusConfig{
		Type: "memory",
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}

	cfg.Security = SecurityConfig{
		RateLimit:      0,
		RateLimitBurst: 20,
		CORSOrigins:    "*",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}

	validDrivers := map[string]bool{"bleve": true, "http": true}
	if !validDrivers[c.Engine.Driver] {
		errs = append(errs, fmt.Sprintf("invalid engine driver: %s (must be bleve or http)", c.Engine.Driver))
	}

	if c.Validation.MinJaccard < 0 || c.Validation.MinJaccard > 1 {
		errs = append(errs, "validation.min_jaccard must be between 0 and 1")
	}

	if c.Validation.SampleTopK < 1 {
		errs = append(errs, "validation.sample_top_k must be positive")
	}

	if c.Validation.HashMaxDocs < 1 {
		errs = append(errs, "validation.hash_max_docs must be positive")
	}

	if c.Validation.HashPageSize < 1 {
		errs = append(errs, "validation.hash_page_size must be positive")
	}

	if c.Benchmark.Iterations < 1 {
		errs = append(errs, "benchmark.iterations must be at least 1")
	}

	if c.Benchmark.Warmups < 0 {
		errs = append(errs, "benchmark.warmups must be non-negative")
	}

	validCacheTypes := map[string]bool{"none": true, "redis": true}
	if !validCacheTypes[c.Cache.Type] {
		errs = append(errs, fmt.Sprintf("invalid cache type: %s (must be none or redis)", c.Cache.Type))
	}

	validBusTypes := map[string]bool{"none": true, "memory": true, "kafka": true}
	if !validBusTypes[c.Bus.Type] {
		errs = append(errs, fmt.Sprintf("invalid bus type: %s (must be none, memory, or kafka)", c.Bus.Type))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Address returns the server address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Log.Level == "debug"
}
