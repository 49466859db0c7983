package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{DSN: "host=localhost dbname=partdex"},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Database.DSN = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing dsn")
	}
	if err.Error() != "database.dsn is required" {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestValidate_IdleExceedsOpen(t *testing.T) {
	cfg := validConfig()
	cfg.Database.MaxOpenConns = 2
	cfg.Database.MaxIdleConns = 5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for idle > open")
	}
}

func TestValidate_BadLLMBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()
	cfg.LLM.BaseURL = "api.openai.com/v1"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for base url without scheme")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Database.ConnMaxLifetime() != 30*time.Minute {
		t.Errorf("expected ConnMaxLifetime=30m, got %v", cfg.Database.ConnMaxLifetime())
	}
	if cfg.Database.SlowQuery() != 200*time.Millisecond {
		t.Errorf("expected SlowQuery=200ms, got %v", cfg.Database.SlowQuery())
	}
	if cfg.Cache.ResultTTLSec != 300 || cfg.Cache.FacetsTTLSec != 3600 || cfg.Cache.PopularTTLSec != 3600 {
		t.Errorf("unexpected cache ttls: %+v", cfg.Cache)
	}
	if cfg.LLM.Model != "gpt-4" || cfg.LLM.TimeoutSec != 8 {
		t.Errorf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.Analytics.Topic != "partdex.search-events" {
		t.Errorf("expected default topic, got %q", cfg.Analytics.Topic)
	}
	if cfg.Search.PopularWindowDays != 7 {
		t.Errorf("expected PopularWindowDays=7, got %d", cfg.Search.PopularWindowDays)
	}
	if cfg.Cache.Enabled() || cfg.LLM.Enabled() || cfg.Analytics.Enabled() {
		t.Error("optional dependencies should be disabled by default")
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:  HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Cache: CacheConfig{ResultTTLSec: 60},
		LLM:   LLMConfig{Model: "gpt-4o-mini"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Cache.ResultTTLSec != 60 {
		t.Errorf("expected ResultTTLSec=60, got %d", cfg.Cache.ResultTTLSec)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("expected model override, got %q", cfg.LLM.Model)
	}
}

func TestApplyDefaults_DropsBlankListEntries(t *testing.T) {
	cfg := Config{
		Cache:     CacheConfig{Addrs: []string{"", "redis:6379"}},
		Analytics: AnalyticsConfig{Brokers: []string{" "}},
	}
	cfg.ApplyDefaults()

	if len(cfg.Cache.Addrs) != 1 || cfg.Cache.Addrs[0] != "redis:6379" {
		t.Errorf("Addrs = %v", cfg.Cache.Addrs)
	}
	if cfg.Analytics.Enabled() {
		t.Errorf("Brokers = %v, want none", cfg.Analytics.Brokers)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("PARTDEX_TEST_DSN", "host=db dbname=catalog")
	t.Setenv("PARTDEX_TEST_REDIS", "")

	cfg, err := Parse([]byte(`
http:
  port: ${PARTDEX_TEST_PORT:-9090}
database:
  dsn: ${PARTDEX_TEST_DSN}
cache:
  addrs:
    - ${PARTDEX_TEST_REDIS}
llm:
  json_mode: ${PARTDEX_TEST_JSON:-true}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("Port = %d", cfg.HTTP.Port)
	}
	if cfg.Database.DSN != "host=db dbname=catalog" {
		t.Errorf("DSN = %q", cfg.Database.DSN)
	}
	if cfg.Cache.Enabled() {
		t.Error("unset redis addr should disable the cache")
	}
	if !cfg.LLM.JSONMode {
		t.Error("JSONMode default not applied")
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("http:\n  port: 8080\n"))
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_ShippedConfigs(t *testing.T) {
	t.Setenv("DATABASE_URL", "host=db dbname=partdex")
	t.Setenv("REDIS_ADDR", "redis:6379")
	for _, env := range []string{"local", "prod"} {
		t.Run(env, func(t *testing.T) {
			cfg, err := Load(env)
			if err != nil {
				t.Fatalf("Load(%s): %v", env, err)
			}
			if cfg.HTTP.Port != 8080 {
				t.Errorf("Port = %d", cfg.HTTP.Port)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("PARTDEX_TEST_SET", "value")
	got := string(expandEnvVars([]byte("a=${PARTDEX_TEST_SET} b=${PARTDEX_TEST_UNSET:-fallback} c=${PARTDEX_TEST_UNSET}")))
	if got != "a=value b=fallback c=" {
		t.Errorf("got %q", got)
	}
}
