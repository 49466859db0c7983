package partdex

import (
	"github.com/kailas-cloud/partdex/internal/domain"
	"github.com/kailas-cloud/partdex/internal/domain/component"
	"github.com/kailas-cloud/partdex/internal/domain/search/facet"
	"github.com/kailas-cloud/partdex/internal/domain/search/filter"
	"github.com/kailas-cloud/partdex/internal/domain/search/request"
	"github.com/kailas-cloud/partdex/internal/domain/search/result"
	"github.com/kailas-cloud/partdex/internal/domain/search/sortby"
	recommenduc "github.com/kailas-cloud/partdex/internal/usecase/recommend"
)

// Catalog and search types shared with the HTTP API.
type (
	Component       = component.Component
	ComponentType   = component.Type
	Filters         = filter.Filters
	PriceRange      = filter.PriceRange
	SearchOptions   = request.Options
	SearchResult    = result.Envelope
	Hit             = result.Hit
	FilterOptions   = facet.Options
	SortKey         = sortby.Key
	SortOrder       = sortby.Order
	RecommendInput  = domain.RecommendRequest
	Recommendation  = domain.Recommendation
	Recommendations = recommenduc.Result
)

// Sort keys and directions.
const (
	SortRelevance = sortby.Relevance
	SortName      = sortby.Name
	SortPrice     = sortby.Price
	SortCreatedAt = sortby.CreatedAt
	SortAsc       = sortby.Asc
	SortDesc      = sortby.Desc
)

// Query is one search. A nil Options uses DefaultSearchOptions.
type Query struct {
	Text    string
	Filters Filters
	Options *SearchOptions
	// UserID is recorded with the search event; it does not affect results.
	UserID string
}

// DefaultSearchOptions returns page 1, limit 20, relevance desc, fuzzy on, AI off.
func DefaultSearchOptions() SearchOptions {
	return request.DefaultOptions()
}
