package domain

import (
	"context"
	"encoding/json"
	"time"
)

// EnhanceRequest is the input to a query enhancement.
type EnhanceRequest struct {
	Query    string
	Context  string
	UserRole string
}

// Enhancement is a language-model rewrite of a free-text query.
// Filters is loosely typed; callers convert it with filter.FromSuggestions.
type Enhancement struct {
	EnhancedQuery string              `json:"enhancedQuery"`
	Suggestions   []string            `json:"suggestions"`
	Filters       map[string][]string `json:"filters"`
}

// RecommendRequest describes an engineering requirement to match components against.
type RecommendRequest struct {
	Requirements string   `json:"requirements"`
	Application  string   `json:"application,omitempty"`
	Constraints  []string `json:"constraints,omitempty"`
	Budget       *float64 `json:"budget,omitempty"`
}

// Recommendation is one suggested component profile.
type Recommendation struct {
	Type       string  `json:"type"`
	Material   string  `json:"material"`
	Standard   string  `json:"standard"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

// RecommendationSet is the model's answer to a RecommendRequest.
type RecommendationSet struct {
	Recommendations    []Recommendation `json:"recommendations"`
	AlternativeOptions []string         `json:"alternativeOptions"`
}

// InteractionRecommendation marks a component recommendation exchange.
const InteractionRecommendation = "COMPONENT_RECOMMENDATION"

// Interaction is one language model exchange kept for analytics.
type Interaction struct {
	ID        string
	Kind      string
	Input     json.RawMessage
	Output    json.RawMessage
	Model     string
	CreatedAt time.Time
}

// HealthChecker verifies availability of an external provider.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
