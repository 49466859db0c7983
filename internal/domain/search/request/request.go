package request

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/partdex/internal/domain/search/filter"
	"github.com/kailas-cloud/partdex/internal/domain/search/sortby"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 512
	DefaultPage    = 1
	DefaultLimit   = 20
	MaxLimit       = 100
	// MaxPage keeps Offset from overflowing at any limit.
	MaxPage        = math.MaxInt / MaxLimit
)

// Options controls pagination, ordering and the optional ranking passes.
type Options struct {
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	SortBy     sortby.Key   `json:"sortBy"`
	SortOrder  sortby.Order `json:"sortOrder"`
	Fuzzy      bool         `json:"fuzzy"`
	AIEnhanced bool         `json:"aiEnhanced"`
}

// DefaultOptions returns page 1, limit 20, relevance desc, fuzzy on, AI off.
func DefaultOptions() Options {
	return Options{
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		SortBy:    sortby.Relevance,
		SortOrder: sortby.Desc,
		Fuzzy:     true,
	}
}

// Normalize fills zero values with defaults, clamps page and limit, and
// validates enums.
func (o Options) Normalize() (Options, error) {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Page > MaxPage {
		o.Page = MaxPage
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if o.SortBy == "" {
		o.SortBy = sortby.Relevance
	}
	if !o.SortBy.IsValid() {
		return Options{}, fmt.Errorf("invalid sortBy: %q", o.SortBy)
	}
	if o.SortOrder == "" {
		o.SortOrder = sortby.Desc
	}
	if !o.SortOrder.IsValid() {
		return Options{}, fmt.Errorf("invalid sortOrder: %q", o.SortOrder)
	}
	return o, nil
}

// Offset returns the number of records skipped before the requested page.
func (o Options) Offset() int {
	return (o.Page - 1) * o.Limit
}

// Request is a validated search query.
type Request struct {
	query   string
	filters filter.Filters
	options Options
	userID  string
}

// New validates and normalizes search parameters. An empty query is allowed
// and matches every record that satisfies the filters.
func New(query string, filters filter.Filters, opts Options, userID string) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	f, err := filters.Normalize()
	if err != nil {
		return Request{}, fmt.Errorf("invalid filters: %w", err)
	}
	o, err := opts.Normalize()
	if err != nil {
		return Request{}, err
	}
	return Request{query: query, filters: f, options: o, userID: userID}, nil
}

// Query returns the search text as given by the caller.
func (r *Request) Query() string { return r.query }

// Filters returns the caller's structured filters.
func (r *Request) Filters() filter.Filters { return r.filters }

// Options returns the normalized options.
func (r *Request) Options() Options { return r.options }

// UserID returns the optional caller identifier ("" when anonymous).
func (r *Request) UserID() string { return r.userID }

// CatalogQuery is what the catalog store evaluates: the working text (possibly
// rewritten by the enhancer), the effective filters and the page to fetch.
type CatalogQuery struct {
	Text    string
	Filters filter.Filters
	Options Options
}
