package partdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/partdex/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/partdex/internal/db/redis"
	"github.com/kailas-cloud/partdex/internal/domain"
	"github.com/kailas-cloud/partdex/internal/domain/search/facet"
	"github.com/kailas-cloud/partdex/internal/domain/search/request"
	"github.com/kailas-cloud/partdex/internal/domain/search/result"
	"github.com/kailas-cloud/partdex/internal/metrics"
	"github.com/kailas-cloud/partdex/internal/repository/catalog"
	"github.com/kailas-cloud/partdex/internal/repository/events"
	"github.com/kailas-cloud/partdex/internal/repository/rescache"
	"github.com/kailas-cloud/partdex/internal/transport/kafka"
	openaiLLM "github.com/kailas-cloud/partdex/internal/transport/openai"
	healthuc "github.com/kailas-cloud/partdex/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/partdex/internal/usecase/recommend"
	searchuc "github.com/kailas-cloud/partdex/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, substituted in tests.
type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) (result.Envelope, error)
	FilterOptions(ctx context.Context) (facet.Options, error)
	InvalidateFilterOptions(ctx context.Context) error
	PopularSearches(ctx context.Context, limit int) ([]string, error)
	Drain(ctx context.Context) error
}

type recommendUseCase interface {
	Recommend(ctx context.Context, req domain.RecommendRequest) (recommenduc.Result, error)
}

// Client is the partdex SDK entry point.
type Client struct {
	searchSvc    searchUseCase
	recommendSvc recommendUseCase
	healthSvc    healthUseCase
	obs          *observer

	// closers run in order on Close, after background work drains.
	closers []func()
}

// New connects to the catalog database and the optional cache, then wires
// the search, recommendation and health services.
// The provided context bounds the initial readiness checks.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.dsn == "" {
		return nil, errors.New("partdex: database DSN required (use WithPostgres)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c := &Client{obs: obs}
	if err := c.connect(ctx, cfg); err != nil {
		c.closeAll()
		return nil, err
	}
	return c, nil
}

func (c *Client) connect(ctx context.Context, cfg *clientConfig) error {
	pg, err := postgres.Open(postgres.Config{DSN: cfg.dsn})
	if err != nil {
		return fmt.Errorf("partdex: %w", err)
	}
	c.closers = append(c.closers, pg.Close)

	if err := pg.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		return fmt.Errorf("partdex: database not ready: %w", err)
	}
	if cfg.autoMigrate {
		if err := pg.AutoMigrate(ctx, append(catalog.Models(), events.Models()...)...); err != nil {
			return fmt.Errorf("partdex: %w", err)
		}
	}

	catalogRepo := catalog.New(pg.Gorm())
	eventRepo := events.New(pg.Gorm())

	searchOpts := []searchuc.Option{
		searchuc.WithPopular(eventRepo),
		searchuc.WithConfig(searchuc.Config{
			ResultTTL:       cfg.resultTTL,
			EnhancerTimeout: cfg.enhancerTimeout,
		}),
	}

	// Pass nil interfaces, not typed nil pointers.
	var cachePinger healthuc.Pinger
	if len(cfg.redisAddrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.redisAddrs,
			Password: cfg.redisPassword,
		})
		if err != nil {
			return fmt.Errorf("partdex: create redis store: %w", err)
		}
		c.closers = append(c.closers, store.Close)
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			return fmt.Errorf("partdex: cache not ready: %w", err)
		}
		cachePinger = store
		searchOpts = append(searchOpts,
			searchuc.WithCache(rescache.New(store, "search", metrics.CacheTotal, zap.NewNop())))
	}

	recorders := events.Fanout{eventRepo}
	if len(cfg.kafkaBrokers) > 0 {
		pub, err := kafka.NewPublisher(kafka.Config{
			Brokers: cfg.kafkaBrokers,
			Topic:   cfg.kafkaTopic,
		})
		if err != nil {
			return fmt.Errorf("partdex: create kafka publisher: %w", err)
		}
		c.closers = append(c.closers, func() { _ = pub.Close() })
		recorders = append(recorders, pub)
	}
	searchOpts = append(searchOpts, searchuc.WithEvents(recorders))

	var llmChecker healthuc.ProviderChecker
	var advisor recommenduc.Advisor
	if cfg.openAIKey != "" {
		llm := openaiLLM.NewClient(&openaiLLM.Config{
			APIKey:  cfg.openAIKey,
			BaseURL: cfg.openAIBaseURL,
			Model:   cfg.openAIModel,
		})
		llmChecker = llm
		advisor = llm
		searchOpts = append(searchOpts, searchuc.WithEnhancer(llm))
	}

	c.searchSvc = searchuc.New(catalogRepo, zap.NewNop(), searchOpts...)
	c.recommendSvc = recommenduc.New(advisor, catalogRepo, 0, zap.NewNop(), recommenduc.WithInteractions(eventRepo))
	c.healthSvc = healthuc.New(pg, cachePinger, llmChecker)
	return nil
}

// Close waits for pending cache writes and search events, bounded by ctx,
// then releases all connections.
func (c *Client) Close(ctx context.Context) error {
	var err error
	if c.searchSvc != nil {
		err = c.searchSvc.Drain(ctx)
	}
	c.closeAll()
	return err
}

func (c *Client) closeAll() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Ping reports whether the catalog database is reachable.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if report := c.healthSvc.Check(ctx); report.Checks[healthuc.CheckDatabase] != healthuc.CheckOK {
		return fmt.Errorf("ping: %w", domain.ErrStoreFailure)
	}
	return nil
}

// Search returns one page of matching components.
// Validation failures wrap ErrInvalidRequest.
func (c *Client) Search(ctx context.Context, q Query) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err, "query", q.Text) }()

	opts := request.DefaultOptions()
	if q.Options != nil {
		opts = *q.Options
	}
	req, err := request.New(q.Text, q.Filters, opts, q.UserID)
	if err != nil {
		return SearchResult{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	res, err = c.searchSvc.Search(ctx, &req)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	c.obs.searchTotal(res.Total)
	return res, nil
}

// FilterOptions lists the filter values present among available components.
func (c *Client) FilterOptions(ctx context.Context) (opts FilterOptions, err error) {
	start := time.Now()
	defer func() { c.obs.observe("filter_options", start, err) }()

	opts, err = c.searchSvc.FilterOptions(ctx)
	if err != nil {
		return FilterOptions{}, fmt.Errorf("filter options: %w", err)
	}
	return opts, nil
}

// InvalidateFilterOptions drops the cached filter options. Call it after
// changing the catalog.
func (c *Client) InvalidateFilterOptions(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("filter_options.invalidate", start, err) }()

	if err = c.searchSvc.InvalidateFilterOptions(ctx); err != nil {
		return fmt.Errorf("invalidate filter options: %w", err)
	}
	return nil
}

// PopularSearches returns the most frequent recent queries.
// limit <= 0 means 10; values above 50 are clamped.
func (c *Client) PopularSearches(ctx context.Context, limit int) (queries []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("popular", start, err) }()

	queries, err = c.searchSvc.PopularSearches(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("popular searches: %w", err)
	}
	return queries, nil
}

// Recommend asks the language model for component profiles and attaches
// matching catalog components. Requires WithOpenAI.
func (c *Client) Recommend(ctx context.Context, in RecommendInput) (rec Recommendations, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recommend", start, err) }()

	rec, err = c.recommendSvc.Recommend(ctx, in)
	if err != nil {
		return Recommendations{}, fmt.Errorf("recommend: %w", err)
	}
	return rec, nil
}
