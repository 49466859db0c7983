package chi

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/partdex/internal/domain/component"
	"github.com/kailas-cloud/partdex/internal/domain/search/filter"
	"github.com/kailas-cloud/partdex/internal/domain/search/request"
	"github.com/kailas-cloud/partdex/internal/domain/search/sortby"
)

// SearchParams are the query parameters of GET /search.
type SearchParams struct {
	Q            *string
	Page         *int
	Limit        *int
	SortBy       *string
	SortOrder    *string
	AIEnhanced   *string
	Fuzzy        *string
	Category     *[]string
	Type         *[]string
	Material     *[]string
	Standard     *[]string
	Manufacturer *[]string
	MinPrice     *float64
	MaxPrice     *float64
	Availability *string
	UserID       *string
}

// PopularParams are the query parameters of GET /search/popular.
type PopularParams struct {
	Limit *int
}

// bindSearchParams binds form-style exploded query parameters. Repeated keys
// fill the multi-valued filters and empty values count as absent. Optional
// parameters are pointers, as oapi-codegen generates them.
func bindSearchParams(q url.Values) (SearchParams, error) {
	q = withoutEmpty(q)
	var p SearchParams
	bindings := []struct {
		name string
		dest any
	}{
		{"q", &p.Q},
		{"page", &p.Page},
		{"limit", &p.Limit},
		{"sortBy", &p.SortBy},
		{"sortOrder", &p.SortOrder},
		{"aiEnhanced", &p.AIEnhanced},
		{"fuzzy", &p.Fuzzy},
		{"category", &p.Category},
		{"type", &p.Type},
		{"material", &p.Material},
		{"standard", &p.Standard},
		{"manufacturer", &p.Manufacturer},
		{"minPrice", &p.MinPrice},
		{"maxPrice", &p.MaxPrice},
		{"availability", &p.Availability},
		{"userId", &p.UserID},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return SearchParams{}, fmt.Errorf("invalid format for parameter %s: %w", b.name, err)
		}
	}
	return p, nil
}

func bindPopularParams(q url.Values) (PopularParams, error) {
	var p PopularParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", withoutEmpty(q), &p.Limit); err != nil {
		return PopularParams{}, fmt.Errorf("invalid format for parameter limit: %w", err)
	}
	return p, nil
}

// toRequest converts GET parameters into a validated search request.
// aiEnhanced is on only for "true", fuzzy is off only for "false", and a
// price range needs both bounds.
func (p SearchParams) toRequest() (request.Request, error) {
	opts := request.DefaultOptions()
	if p.Page != nil {
		opts.Page = *p.Page
	}
	if p.Limit != nil {
		opts.Limit = *p.Limit
	}
	if p.SortBy != nil {
		opts.SortBy = sortby.Key(*p.SortBy)
	}
	if p.SortOrder != nil {
		opts.SortOrder = sortby.Order(*p.SortOrder)
	}
	opts.AIEnhanced = p.AIEnhanced != nil && *p.AIEnhanced == "true"
	opts.Fuzzy = p.Fuzzy == nil || *p.Fuzzy != "false"

	f := filter.Filters{
		Category:     derefSlice(p.Category),
		Material:     derefSlice(p.Material),
		Standard:     derefSlice(p.Standard),
		Manufacturer: derefSlice(p.Manufacturer),
		PriceRange:   filter.NewPriceRange(p.MinPrice, p.MaxPrice),
	}
	for _, t := range derefSlice(p.Type) {
		f.Type = append(f.Type, component.Type(t))
	}
	if p.Availability != nil {
		v := *p.Availability == "true"
		f.Availability = &v
	}

	return request.New(deref(p.Q), f, opts, deref(p.UserID))
}

func withoutEmpty(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, vals := range q {
		for _, v := range vals {
			if strings.TrimSpace(v) != "" {
				out[k] = append(out[k], v)
			}
		}
	}
	return out
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefSlice(p *[]string) []string {
	if p == nil {
		return nil
	}
	return *p
}
