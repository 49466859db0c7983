package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/partdex/internal/domain"
	"github.com/kailas-cloud/partdex/internal/domain/search/event"
	"github.com/kailas-cloud/partdex/internal/domain/search/facet"
	"github.com/kailas-cloud/partdex/internal/domain/search/filter"
	"github.com/kailas-cloud/partdex/internal/domain/search/request"
	"github.com/kailas-cloud/partdex/internal/domain/search/result"
	"github.com/kailas-cloud/partdex/internal/fuzzy"
	logpkg "github.com/kailas-cloud/partdex/internal/logger"
	"github.com/kailas-cloud/partdex/internal/metrics"
)

// Service orchestrates component search: cache lookup, optional query
// enhancement, catalog fetch, fuzzy re-ranking and analytics.
type Service struct {
	catalog  Catalog
	enhancer Enhancer
	cache    Cache
	events   EventRecorder
	popular  PopularSource
	cfg      Config
	logger   *zap.Logger

	now   func() time.Time
	newID func() string

	bg sync.WaitGroup
}

// Option configures optional collaborators.
type Option func(*Service)

// WithEnhancer enables AI query enhancement. Without it aiEnhanced searches
// behave as if the enhancer failed.
func WithEnhancer(e Enhancer) Option { return func(s *Service) { s.enhancer = e } }

// WithCache enables result caching.
func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }

// WithEvents enables search event recording.
func WithEvents(r EventRecorder) Option { return func(s *Service) { s.events = r } }

// WithPopular enables popular search aggregation.
func WithPopular(p PopularSource) Option { return func(s *Service) { s.popular = p } }

// WithConfig overrides the default TTLs and timeouts.
func WithConfig(cfg Config) Option { return func(s *Service) { s.cfg = cfg.withDefaults() } }

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// New creates a search service.
func New(catalog Catalog, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		catalog: catalog,
		cfg:     DefaultConfig(),
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Search runs one search. Only store failures are returned as errors;
// enhancer, cache and analytics failures degrade the result silently.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Envelope, error) {
	key, err := resultKey(req)
	if err != nil {
		return result.Envelope{}, err
	}

	var cached result.Envelope
	if s.cacheGet(ctx, key, &cached) {
		metrics.SearchRequestsTotal.WithLabelValues("hit", "ok").Inc()
		s.recordEvent(req)
		return cached, nil
	}

	env, err := s.execute(ctx, req)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("miss", "error").Inc()
		return result.Envelope{}, err
	}
	metrics.SearchRequestsTotal.WithLabelValues("miss", "ok").Inc()

	s.cacheSet(ctx, key, env, s.cfg.ResultTTL)
	s.recordEvent(req)
	return env, nil
}

func (s *Service) execute(ctx context.Context, req *request.Request) (result.Envelope, error) {
	opts := req.Options()
	working := req.Query()
	filters := req.Filters()
	var suggestions []string
	var aiMeta *result.AIEnhancements

	if opts.AIEnhanced {
		aiMeta = &result.AIEnhancements{EnhancedQuery: req.Query()}
		if strings.TrimSpace(req.Query()) != "" {
			if enh, ok := s.enhance(ctx, req); ok {
				suggested := filter.FromSuggestions(enh.Filters)
				working = enh.EnhancedQuery
				suggestions = enh.Suggestions
				filters = filter.Merge(filters, suggested)
				aiMeta = &result.AIEnhancements{EnhancedQuery: enh.EnhancedQuery, AIFilters: suggested}
			}
		}
	}

	cq := request.CatalogQuery{Text: working, Filters: filters, Options: opts}
	total, err := s.catalog.Count(ctx, cq)
	if err != nil {
		return result.Envelope{}, fmt.Errorf("count components: %w", err)
	}
	rows, err := s.catalog.Find(ctx, cq)
	if err != nil {
		return result.Envelope{}, fmt.Errorf("find components: %w", err)
	}

	hits := result.Unscored(rows)
	if opts.Fuzzy && strings.TrimSpace(working) != "" && len(rows) > 0 {
		// Ranking never empties a page the store already matched.
		if ranked := fuzzy.Rank(rows, working); len(ranked) > 0 {
			hits = ranked
		}
	}

	return result.New(hits, total, opts.Page, opts.Limit, filters, suggestions, aiMeta), nil
}

// enhance calls the enhancer under its own deadline. Any failure is logged,
// counted and reported as !ok; it never aborts the search.
func (s *Service) enhance(ctx context.Context, req *request.Request) (domain.Enhancement, bool) {
	if s.enhancer == nil {
		return domain.Enhancement{}, false
	}
	ectx, cancel := context.WithTimeout(ctx, s.cfg.EnhancerTimeout)
	defer cancel()

	enh, err := s.enhancer.Enhance(ectx, domain.EnhanceRequest{Query: req.Query()})
	if err != nil {
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ectx.Err(), context.DeadlineExceeded) {
			reason = "timeout"
		}
		metrics.SearchEnhancerFallbackTotal.WithLabelValues(reason).Inc()
		logpkg.FromContextOr(ctx, s.logger).Warn("Query enhancement failed, using raw query",
			zap.String("query", req.Query()), zap.String("reason", reason), zap.Error(err))
		return domain.Enhancement{}, false
	}
	if strings.TrimSpace(enh.EnhancedQuery) == "" {
		metrics.SearchEnhancerFallbackTotal.WithLabelValues("error").Inc()
		return domain.Enhancement{}, false
	}
	return enh, true
}

// FilterOptions returns facet values over available components, cached.
func (s *Service) FilterOptions(ctx context.Context) (facet.Options, error) {
	var opts facet.Options
	if s.cacheGet(ctx, facetsKey, &opts) {
		return opts, nil
	}

	opts, err := s.catalog.FilterOptions(ctx)
	if err != nil {
		return facet.Options{}, fmt.Errorf("filter options: %w", err)
	}
	s.cacheSet(ctx, facetsKey, opts, s.cfg.FacetsTTL)
	return opts, nil
}

// InvalidateFilterOptions drops the cached facets so the next call recomputes them.
func (s *Service) InvalidateFilterOptions(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Delete(ctx, facetsKey); err != nil {
		return fmt.Errorf("invalidate filter options: %w", err)
	}
	return nil
}

// PopularSearches returns the most frequent queries of the trailing window.
// limit <= 0 means DefaultPopularLimit; values above MaxPopularLimit are clamped.
func (s *Service) PopularSearches(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	limit = min(limit, MaxPopularLimit)
	if s.popular == nil {
		return []string{}, nil
	}

	key := popularKey(limit)
	var queries []string
	if s.cacheGet(ctx, key, &queries) {
		return queries, nil
	}

	queries, err := s.popular.Popular(ctx, s.now().Add(-s.cfg.PopularWindow), limit)
	if err != nil {
		return nil, fmt.Errorf("popular searches: %w", err)
	}
	if queries == nil {
		queries = []string{}
	}
	s.cacheSet(ctx, key, queries, s.cfg.PopularTTL)
	return queries, nil
}

// Drain waits for in-flight cache writes and event records, or until ctx is done.
func (s *Service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.bg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain background work: %w", ctx.Err())
	}
}

func (s *Service) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logpkg.FromContextOr(ctx, s.logger).Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return ok
}

// cacheSet encodes value before returning so the background write never
// reads memory the caller now owns.
func (s *Service) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		logpkg.FromContextOr(ctx, s.logger).Warn("Cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.background("cache_write", func(bctx context.Context) error {
		return s.cache.Set(bctx, key, json.RawMessage(data), ttl)
	})
}

// recordEvent logs the caller's query and filters, not the merged ones.
func (s *Service) recordEvent(req *request.Request) {
	if s.events == nil {
		return
	}
	e := event.Event{
		ID:         s.newID(),
		Query:      req.Query(),
		UserID:     req.UserID(),
		Filters:    req.Filters(),
		AIEnhanced: req.Options().AIEnhanced,
		CreatedAt:  s.now().UTC(),
	}
	s.background("event", func(bctx context.Context) error {
		return s.events.Record(bctx, e)
	})
}

// background runs fn detached from the request with its own timeout.
// Failures are logged and counted.
func (s *Service) background(task string, fn func(ctx context.Context) error) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.BackgroundTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			metrics.SearchBackgroundErrorsTotal.WithLabelValues(task).Inc()
			s.logger.Warn("Background search task failed", zap.String("task", task), zap.Error(err))
		}
	}()
}
