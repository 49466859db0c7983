package partdex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	dsn         string
	autoMigrate bool

	redisAddrs    []string
	redisPassword string

	openAIKey     string
	openAIModel   string
	openAIBaseURL string

	kafkaBrokers []string
	kafkaTopic   string

	resultTTL       time.Duration
	enhancerTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithPostgres sets the catalog database DSN. Required.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dsn = dsn
	})
}

// WithAutoMigrate creates or updates the catalog and search event tables on connect.
func WithAutoMigrate() Option {
	return optionFunc(func(c *clientConfig) {
		c.autoMigrate = true
	})
}

// WithRedis enables the result cache on a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	})
}

// WithOpenAI enables query enhancement and recommendations through an
// OpenAI-compatible chat API. An empty baseURL uses the OpenAI endpoint.
func WithOpenAI(apiKey, model, baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openAIKey = apiKey
		c.openAIModel = model
		c.openAIBaseURL = baseURL
	})
}

// WithKafka additionally publishes search events to a Kafka topic.
func WithKafka(brokers []string, topic string) Option {
	return optionFunc(func(c *clientConfig) {
		c.kafkaBrokers = brokers
		c.kafkaTopic = topic
	})
}

// WithResultTTL overrides how long search pages stay cached. Default: 5m.
func WithResultTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.resultTTL = ttl
	})
}

// WithEnhancerTimeout bounds the query enhancement call. Default: 8s.
func WithEnhancerTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.enhancerTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
