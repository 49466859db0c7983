package rescache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/partdex/internal/db"
	"github.com/kailas-cloud/partdex/internal/domain"
)

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Cache stores JSON blobs with expiry. It is an optimization only:
// callers treat every error as recoverable.
type Cache struct {
	store      store
	kind       string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a JSON cache gateway. kind labels metrics ("search", "facets", ...).
// cacheTotal is a counter vec with labels "kind" and "result", passed explicitly.
func New(s store, kind string, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	return &Cache{
		store:      s,
		kind:       kind,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Get decodes the value stored at key into dest. A missing key or a corrupt
// blob reports (false, nil); transport failures wrap domain.ErrCacheFailure.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			c.inc("miss")
			return false, nil
		}
		c.inc("error")
		return false, fmt.Errorf("%w: get %s: %w", domain.ErrCacheFailure, key, err)
	}
	if len(data) == 0 {
		c.inc("miss")
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("Discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		c.inc("miss")
		return false, nil
	}
	c.inc("hit")
	return true, nil
}

// Set encodes value as JSON and stores it with the given TTL.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", domain.ErrCacheFailure, key, err)
	}
	if err := c.store.SetWithTTL(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("%w: set %s: %w", domain.ErrCacheFailure, key, err)
	}
	return nil
}

// Delete removes key. A missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.store.Del(ctx, key); err != nil {
		return fmt.Errorf("%w: delete %s: %w", domain.ErrCacheFailure, key, err)
	}
	return nil
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(c.kind, result).Inc()
	}
}
