package events

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/kailas-cloud/partdex/internal/domain/search/event"
)

type searchModel struct {
	ID         string         `gorm:"primaryKey;type:uuid"`
	Query      string         `gorm:"not null;index"`
	UserID     *string        `gorm:"index"`
	Filters    datatypes.JSON `gorm:"type:jsonb"`
	AIEnhanced bool           `gorm:"column:ai_enhanced;not null;default:false"`
	CreatedAt  time.Time      `gorm:"not null;index"`
}

func (searchModel) TableName() string { return "searches" }

// Models lists the analytics tables for schema migration.
func Models() []any {
	return []any{&searchModel{}, &interactionModel{}}
}

func fromDomain(e event.Event) (searchModel, error) {
	m := searchModel{
		ID:         e.ID,
		Query:      e.Query,
		AIEnhanced: e.AIEnhanced,
		CreatedAt:  e.CreatedAt,
	}
	// Unfiltered searches store NULL.
	if !e.Filters.IsEmpty() {
		filters, err := json.Marshal(e.Filters)
		if err != nil {
			return searchModel{}, fmt.Errorf("marshal filters: %w", err)
		}
		m.Filters = datatypes.JSON(filters)
	}
	if e.UserID != "" {
		uid := e.UserID
		m.UserID = &uid
	}
	return m, nil
}
