package result

import (
	"github.com/kailas-cloud/partdex/internal/domain/component"
	"github.com/kailas-cloud/partdex/internal/domain/search/filter"
)

// Hit is a matched component with an optional fuzzy relevance score in [0, 1].
// Score is nil when no fuzzy pass ordered the page.
type Hit struct {
	component.Component
	Score *float64 `json:"score,omitempty"`
}

// AIEnhancements describes what the query enhancer changed.
type AIEnhancements struct {
	EnhancedQuery string         `json:"enhancedQuery"`
	AIFilters     filter.Filters `json:"aiFilters"`
}

// Envelope is one page of search results. It is built once per search, cached
// as-is and never modified afterwards. It carries no server timestamps so a
// cached copy is byte-equal to a freshly computed one.
type Envelope struct {
	Components     []Hit           `json:"components"`
	Total          int             `json:"total"`
	Page           int             `json:"page"`
	TotalPages     int             `json:"totalPages"`
	Filters        filter.Filters  `json:"filters"`
	Suggestions    []string        `json:"suggestions"`
	AIEnhancements *AIEnhancements `json:"aiEnhancements,omitempty"`
}

// New assembles an envelope. Nil slices are replaced by empty ones so the
// JSON form is stable across cache round-trips.
func New(
	hits []Hit, total, page, limit int,
	filters filter.Filters, suggestions []string, enh *AIEnhancements,
) Envelope {
	if hits == nil {
		hits = []Hit{}
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	return Envelope{
		Components:     hits,
		Total:          total,
		Page:           page,
		TotalPages:     TotalPages(total, limit),
		Filters:        filters,
		Suggestions:    suggestions,
		AIEnhancements: enh,
	}
}

// TotalPages returns ceil(total / limit); 0 when limit is not positive.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Unscored wraps components as hits without relevance scores.
func Unscored(components []component.Component) []Hit {
	hits := make([]Hit, len(components))
	for i := range components {
		hits[i] = Hit{Component: components[i]}
	}
	return hits
}
