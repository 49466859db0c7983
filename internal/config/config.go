package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the partdex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	LLM       LLMConfig       `yaml:"llm"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the PostgreSQL catalog connection settings.
type DatabaseConfig struct {
	DSN                string `yaml:"dsn"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_sec"`
	SlowQueryMs        int    `yaml:"slow_query_ms"`
	AutoMigrate        bool   `yaml:"auto_migrate"`
	ReadinessTimeout   int    `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds the Redis result cache settings. No addrs disables caching.
type CacheConfig struct {
	Addrs         []string `yaml:"addrs"`
	Password      string   `yaml:"password"`
	ResultTTLSec  int      `yaml:"result_ttl_sec"`
	FacetsTTLSec  int      `yaml:"facets_ttl_sec"`
	PopularTTLSec int      `yaml:"popular_ttl_sec"`
}

// LLMConfig holds language-model settings. No api key disables enhancement.
type LLMConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	JSONMode   bool   `yaml:"json_mode"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// AnalyticsConfig holds search event sinks. Events always go to the database;
// brokers additionally publish them to Kafka.
type AnalyticsConfig struct {
	Brokers    []string `yaml:"brokers"`
	Topic      string   `yaml:"topic"`
	TimeoutSec int      `yaml:"timeout_sec"`
}

// SearchConfig holds search tuning.
type SearchConfig struct {
	PopularWindowDays   int `yaml:"popular_window_days"`
	BackgroundTimeoutMs int `yaml:"background_timeout_ms"`
}

// ConnMaxLifetime returns the maximum pooled connection age.
func (c DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeSec) * time.Second
}

// SlowQuery returns the slow query log threshold.
func (c DatabaseConfig) SlowQuery() time.Duration {
	return time.Duration(c.SlowQueryMs) * time.Millisecond
}

// Enabled reports whether a cache is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// Enabled reports whether a language model is configured.
func (c LLMConfig) Enabled() bool { return c.APIKey != "" }

// Enabled reports whether events are also published to Kafka.
func (c AnalyticsConfig) Enabled() bool { return len(c.Brokers) > 0 }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references, applying
// defaults and validating the result.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values. List entries left
// blank by an unset ${VAR} are dropped.
func (c *Config) ApplyDefaults() {
	c.Cache.Addrs = compact(c.Cache.Addrs)
	c.Analytics.Brokers = compact(c.Analytics.Brokers)

	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 20
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetimeSec <= 0 {
		c.Database.ConnMaxLifetimeSec = 1800
	}
	if c.Database.SlowQueryMs <= 0 {
		c.Database.SlowQueryMs = 200
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Cache.ResultTTLSec <= 0 {
		c.Cache.ResultTTLSec = 300
	}
	if c.Cache.FacetsTTLSec <= 0 {
		c.Cache.FacetsTTLSec = 3600
	}
	if c.Cache.PopularTTLSec <= 0 {
		c.Cache.PopularTTLSec = 3600
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4"
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 8
	}
	if c.Analytics.Topic == "" {
		c.Analytics.Topic = "partdex.search-events"
	}
	if c.Analytics.TimeoutSec <= 0 {
		c.Analytics.TimeoutSec = 5
	}
	if c.Search.PopularWindowDays <= 0 {
		c.Search.PopularWindowDays = 7
	}
	if c.Search.BackgroundTimeoutMs <= 0 {
		c.Search.BackgroundTimeoutMs = 5000
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) must not exceed max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.LLM.BaseURL != "" && !strings.HasPrefix(c.LLM.BaseURL, "http") {
		return fmt.Errorf("llm.base_url must be an http(s) URL, got %q", c.LLM.BaseURL)
	}
	return nil
}

func compact(vals []string) []string {
	var out []string
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
