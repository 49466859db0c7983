package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/partdex/internal/domain"
	"github.com/kailas-cloud/partdex/internal/domain/component"
	"github.com/kailas-cloud/partdex/internal/domain/search/event"
	"github.com/kailas-cloud/partdex/internal/domain/search/facet"
	"github.com/kailas-cloud/partdex/internal/domain/search/request"
)

// Catalog is the storage contract for component search.
type Catalog interface {
	Count(ctx context.Context, q request.CatalogQuery) (int, error)
	Find(ctx context.Context, q request.CatalogQuery) ([]component.Component, error)
	FilterOptions(ctx context.Context) (facet.Options, error)
}

// Enhancer rewrites free-text queries with a language model.
type Enhancer interface {
	Enhance(ctx context.Context, req domain.EnhanceRequest) (domain.Enhancement, error)
}

// Cache stores JSON-serializable values with expiry.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// EventRecorder persists search analytics.
type EventRecorder interface {
	Record(ctx context.Context, e event.Event) error
}

// PopularSource aggregates recorded searches.
type PopularSource interface {
	Popular(ctx context.Context, since time.Time, limit int) ([]string, error)
}
