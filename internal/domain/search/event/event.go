package event

import (
	"time"

	"github.com/kailas-cloud/partdex/internal/domain/search/filter"
)

// Event is an analytics record of one search invocation. Append-only.
type Event struct {
	ID         string         `json:"id"`
	Query      string         `json:"query"`
	UserID     string         `json:"userId,omitempty"`
	Filters    filter.Filters `json:"filters"`
	AIEnhanced bool           `json:"aiEnhanced"`
	CreatedAt  time.Time      `json:"createdAt"`
}
