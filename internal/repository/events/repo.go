package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kailas-cloud/partdex/internal/db"
	"github.com/kailas-cloud/partdex/internal/domain"
	"github.com/kailas-cloud/partdex/internal/domain/search/event"
)

// Repo persists search events in PostgreSQL.
type Repo struct {
	db *gorm.DB
}

// New creates a search event repository.
func New(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Record appends one search event.
func (r *Repo) Record(ctx context.Context, e event.Event) error {
	m, err := fromDomain(e)
	if err != nil {
		return fmt.Errorf("%w: record search: %w", domain.ErrStoreFailure, err)
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("%w: record search: %w", domain.ErrStoreFailure, &db.Error{Op: db.OpInsert, Err: err})
	}
	return nil
}

// Popular returns the most frequent non-empty queries recorded at or after
// since. Ties are broken by first occurrence.
func (r *Repo) Popular(ctx context.Context, since time.Time, limit int) ([]string, error) {
	queries := []string{}
	if err := r.popularQuery(r.db.WithContext(ctx), since, limit).Pluck("query", &queries).Error; err != nil {
		return nil, fmt.Errorf("%w: popular searches: %w", domain.ErrStoreFailure, &db.Error{Op: db.OpSelect, Err: err})
	}
	return queries, nil
}

func (r *Repo) popularQuery(tx *gorm.DB, since time.Time, limit int) *gorm.DB {
	return tx.Model(&searchModel{}).
		Select("query").
		Where("created_at >= ?", since).
		Where("query <> ?", "").
		Group("query").
		Order("COUNT(*) DESC, MIN(created_at) ASC").
		Limit(limit)
}

// Recorder accepts search events.
type Recorder interface {
	Record(ctx context.Context, e event.Event) error
}

// Fanout delivers every event to all recorders and joins their errors.
// A failing recorder does not stop delivery to the others.
type Fanout []Recorder

// Record implements Recorder.
func (f Fanout) Record(ctx context.Context, e event.Event) error {
	var errs []error
	for _, r := range f {
		if err := r.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
