package catalog

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/kailas-cloud/partdex/internal/db"
	"github.com/kailas-cloud/partdex/internal/domain"
	"github.com/kailas-cloud/partdex/internal/domain/component"
	"github.com/kailas-cloud/partdex/internal/domain/search/facet"
	"github.com/kailas-cloud/partdex/internal/domain/search/request"
	"github.com/kailas-cloud/partdex/internal/domain/search/sortby"
)

// DefaultMatchLimit caps FindMatching when Match.Limit is not set.
const DefaultMatchLimit = 3

// Repo reads the component catalog from PostgreSQL.
type Repo struct {
	db *gorm.DB
}

// New creates a catalog repository.
func New(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Count returns the number of components satisfying the full predicate
// (filters and text), independent of pagination.
func (r *Repo) Count(ctx context.Context, q request.CatalogQuery) (int, error) {
	var n int64
	if err := r.countQuery(r.db.WithContext(ctx), q).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("%w: count components: %w", domain.ErrStoreFailure, &db.Error{Op: db.OpCount, Err: err})
	}
	return int(n), nil
}

// Find returns one page of components with their specifications, primary
// image and CAD summaries attached.
func (r *Repo) Find(ctx context.Context, q request.CatalogQuery) ([]component.Component, error) {
	var rows []componentModel
	tx := r.pageQuery(r.db.WithContext(ctx), q)
	tx = withAssociations(tx)
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: find components: %w", domain.ErrStoreFailure, &db.Error{Op: db.OpSelect, Err: err})
	}
	return toDomainList(rows), nil
}

// FindMatching returns up to m.Limit available components resembling a
// recommended profile.
func (r *Repo) FindMatching(ctx context.Context, m component.Match) ([]component.Component, error) {
	var rows []componentModel
	tx := withAssociations(r.matchQuery(r.db.WithContext(ctx), m))
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: find matching components: %w", domain.ErrStoreFailure, &db.Error{Op: db.OpSelect, Err: err})
	}
	return toDomainList(rows), nil
}

// FilterOptions lists distinct facet values over available components.
// The six reads are independent and run concurrently.
func (r *Repo) FilterOptions(ctx context.Context) (facet.Options, error) {
	var opts facet.Options
	g, gctx := errgroup.WithContext(ctx)

	distinct := func(column string, dest *[]string) func() error {
		return func() error {
			vals := []string{}
			err := r.distinctQuery(r.db.WithContext(gctx), column).Pluck(column, &vals).Error
			if err != nil {
				return fmt.Errorf("distinct %s: %w", column, err)
			}
			*dest = vals
			return nil
		}
	}
	g.Go(distinct("category", &opts.Categories))
	g.Go(distinct("type", &opts.Types))
	g.Go(distinct("material", &opts.Materials))
	g.Go(distinct("standard", &opts.Standards))
	g.Go(distinct("manufacturer", &opts.Manufacturers))

	g.Go(func() error {
		var agg struct {
			Min *float64
			Max *float64
		}
		if err := r.priceQuery(r.db.WithContext(gctx)).Scan(&agg).Error; err != nil {
			return fmt.Errorf("price range: %w", err)
		}
		opts.PriceRange = [2]float64{facet.DefaultMinPrice, facet.DefaultMaxPrice}
		if agg.Min != nil && agg.Max != nil {
			opts.PriceRange = [2]float64{*agg.Min, *agg.Max}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return facet.Options{}, fmt.Errorf("%w: filter options: %w", domain.ErrStoreFailure, err)
	}
	return opts, nil
}

func (r *Repo) countQuery(tx *gorm.DB, q request.CatalogQuery) *gorm.DB {
	return applyPredicate(tx.Model(&componentModel{}), q)
}

func (r *Repo) pageQuery(tx *gorm.DB, q request.CatalogQuery) *gorm.DB {
	return applyPredicate(tx.Model(&componentModel{}), q).
		Order(orderBy(q.Options)).
		Offset(q.Options.Offset()).
		Limit(q.Options.Limit)
}

func (r *Repo) matchQuery(tx *gorm.DB, m component.Match) *gorm.DB {
	limit := m.Limit
	if limit <= 0 {
		limit = DefaultMatchLimit
	}
	tx = tx.Model(&componentModel{}).Where("availability = ?", true)
	if t := strings.TrimSpace(m.Type); t != "" {
		p := containsPattern(t)
		tx = tx.Where("(name ILIKE ? OR category ILIKE ? OR description ILIKE ?)", p, p, p)
	}
	if v := strings.TrimSpace(m.Material); v != "" {
		tx = tx.Where("material ILIKE ?", containsPattern(v))
	}
	if v := strings.TrimSpace(m.Standard); v != "" {
		tx = tx.Where("standard ILIKE ?", containsPattern(v))
	}
	return tx.Order("name ASC, id ASC").Limit(limit)
}

func (r *Repo) distinctQuery(tx *gorm.DB, column string) *gorm.DB {
	return tx.Model(&componentModel{}).
		Where("availability = ?", true).
		Where(column + " IS NOT NULL").
		Distinct().
		Order(column + " ASC")
}

func (r *Repo) priceQuery(tx *gorm.DB) *gorm.DB {
	return tx.Model(&componentModel{}).
		Select("MIN(price) AS min, MAX(price) AS max").
		Where("availability = ?", true).
		Where("price IS NOT NULL")
}

// applyPredicate adds the filter conjunction and, for non-empty text, the
// free-text disjunction. Availability defaults to true when unset.
// Tags are only expanded when the column holds an array; CASE fixes the
// evaluation order so a scalar never reaches jsonb_array_elements_text.
func applyPredicate(tx *gorm.DB, q request.CatalogQuery) *gorm.DB {
	f := q.Filters

	available := true
	if f.Availability != nil {
		available = *f.Availability
	}
	tx = tx.Where("availability = ?", available)

	if len(f.Category) > 0 {
		tx = tx.Where("category IN ?", f.Category)
	}
	if len(f.Type) > 0 {
		types := make([]string, len(f.Type))
		for i, t := range f.Type {
			types[i] = string(t)
		}
		tx = tx.Where("type IN ?", types)
	}
	if len(f.Material) > 0 {
		tx = tx.Where("material IN ?", f.Material)
	}
	if len(f.Standard) > 0 {
		tx = tx.Where("standard IN ?", f.Standard)
	}
	if len(f.Manufacturer) > 0 {
		tx = tx.Where("manufacturer IN ?", f.Manufacturer)
	}
	if f.PriceRange != nil {
		tx = tx.Where("price BETWEEN ? AND ?", f.PriceRange.Min, f.PriceRange.Max)
	}

	text := strings.TrimSpace(q.Text)
	if text == "" {
		return tx
	}
	p := containsPattern(text)
	return tx.Where(
		"(name ILIKE ? OR description ILIKE ? OR part_number ILIKE ? OR manufacturer ILIKE ?"+
			" OR CASE WHEN jsonb_typeof(tags) = 'array'"+
			" THEN EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) AS t(tag) WHERE t.tag IN ?)"+
			" ELSE false END)",
		p, p, p, p, strings.Fields(text),
	)
}

// orderBy maps the requested sort to SQL. Relevance has no store-side
// meaning and falls back to name; id breaks ties for stable pagination.
func orderBy(o request.Options) string {
	dir := "DESC"
	if o.SortOrder == sortby.Asc {
		dir = "ASC"
	}
	switch o.SortBy {
	case sortby.Name:
		return "name " + dir + ", id ASC"
	case sortby.Price:
		return "price " + dir + " NULLS LAST, id ASC"
	case sortby.CreatedAt:
		return "created_at " + dir + ", id ASC"
	default:
		return "name ASC, id ASC"
	}
}

func withAssociations(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Specifications", func(sub *gorm.DB) *gorm.DB {
			return sub.Order("name ASC")
		}).
		Preload("Images", "is_primary = ?", true).
		Preload("CADFiles", func(sub *gorm.DB) *gorm.DB {
			return sub.Select("id", "component_id", "filename", "file_type", "format")
		})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere, with LIKE
// metacharacters in s taken literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func toDomainList(rows []componentModel) []component.Component {
	out := make([]component.Component, len(rows))
	for i := range rows {
		out[i] = toDomain(&rows[i])
	}
	return out
}
