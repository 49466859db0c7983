package recommend

import (
	"context"

	"github.com/kailas-cloud/partdex/internal/domain"
	"github.com/kailas-cloud/partdex/internal/domain/component"
)

// Advisor produces component recommendations from a requirement description.
type Advisor interface {
	Recommend(ctx context.Context, req domain.RecommendRequest) (domain.RecommendationSet, error)
}

// Catalog looks up available components matching a recommendation.
type Catalog interface {
	FindMatching(ctx context.Context, m component.Match) ([]component.Component, error)
}

// InteractionLog stores language model exchanges.
type InteractionLog interface {
	RecordInteraction(ctx context.Context, in domain.Interaction) error
}

// modelNamer is implemented by advisors that report their model.
type modelNamer interface {
	Model() string
}
