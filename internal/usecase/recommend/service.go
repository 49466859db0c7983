package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/partdex/internal/domain"
	"github.com/kailas-cloud/partdex/internal/domain/component"
	logpkg "github.com/kailas-cloud/partdex/internal/logger"
)

// Request limits.
const (
	MaxRequirementsLength = 2000
	MaxConstraints        = 20
	MatchesPerItem        = 3
	DefaultTimeout        = 20 * time.Second
)

// Item is one recommendation with the catalog components that fit it.
type Item struct {
	Recommendation domain.Recommendation `json:"recommendation"`
	Components     []component.Component `json:"components"`
}

// Result is the answer to a recommendation request: the model's raw answer
// and the catalog matches for each recommendation.
type Result struct {
	AIRecommendations  domain.RecommendationSet `json:"aiRecommendations"`
	MatchingComponents []Item                   `json:"matchingComponents"`
	AlternativeOptions []string                 `json:"alternativeOptions"`
}

// Service answers "what should I use for ..." questions.
type Service struct {
	advisor      Advisor
	catalog      Catalog
	interactions InteractionLog
	timeout      time.Duration
	logger       *zap.Logger
	newID        func() string
	now          func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithInteractions records every answered request in log.
func WithInteractions(log InteractionLog) Option {
	return func(s *Service) { s.interactions = log }
}

// New creates a recommendation service. timeout <= 0 means DefaultTimeout.
func New(advisor Advisor, catalog Catalog, timeout time.Duration, logger *zap.Logger, opts ...Option) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		advisor: advisor,
		catalog: catalog,
		timeout: timeout,
		logger:  logger,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Recommend asks the advisor for component profiles and attaches up to
// MatchesPerItem available components to each. An advisor failure yields an
// empty answer, not an error.
func (s *Service) Recommend(ctx context.Context, req domain.RecommendRequest) (Result, error) {
	req, err := validate(req)
	if err != nil {
		return Result{}, err
	}
	if s.advisor == nil {
		return Result{}, fmt.Errorf("%w: no language model configured", domain.ErrEnhancerFailed)
	}

	actx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	set, err := s.advisor.Recommend(actx, req)
	if err != nil {
		logpkg.FromContextOr(ctx, s.logger).Warn("Recommendation request failed, answering empty", zap.Error(err))
		set = domain.RecommendationSet{}
	}

	items := make([]Item, len(set.Recommendations))
	g, gctx := errgroup.WithContext(ctx)
	for i, rec := range set.Recommendations {
		items[i] = Item{Recommendation: rec, Components: []component.Component{}}
		g.Go(func() error {
			found, err := s.catalog.FindMatching(gctx, component.Match{
				Type:     rec.Type,
				Material: rec.Material,
				Standard: rec.Standard,
				Limit:    MatchesPerItem,
			})
			if err != nil {
				return fmt.Errorf("match %q: %w", rec.Type, err)
			}
			if len(found) > 0 {
				items[i].Components = found
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if set.Recommendations == nil {
		set.Recommendations = []domain.Recommendation{}
	}
	if set.AlternativeOptions == nil {
		set.AlternativeOptions = []string{}
	}
	s.recordInteraction(ctx, req, set)
	return Result{
		AIRecommendations:  set,
		MatchingComponents: items,
		AlternativeOptions: set.AlternativeOptions,
	}, nil
}

// recordInteraction stores the exchange. Failures are logged only.
func (s *Service) recordInteraction(ctx context.Context, req domain.RecommendRequest, set domain.RecommendationSet) {
	if s.interactions == nil {
		return
	}
	log := logpkg.FromContextOr(ctx, s.logger)
	input, err := json.Marshal(req)
	if err != nil {
		log.Warn("Interaction encode failed", zap.Error(err))
		return
	}
	output, err := json.Marshal(set)
	if err != nil {
		log.Warn("Interaction encode failed", zap.Error(err))
		return
	}
	in := domain.Interaction{
		ID:        s.newID(),
		Kind:      domain.InteractionRecommendation,
		Input:     input,
		Output:    output,
		CreatedAt: s.now().UTC(),
	}
	if m, ok := s.advisor.(modelNamer); ok {
		in.Model = m.Model()
	}
	if err := s.interactions.RecordInteraction(ctx, in); err != nil {
		log.Warn("Interaction record failed", zap.Error(err))
	}
}

func validate(req domain.RecommendRequest) (domain.RecommendRequest, error) {
	req.Requirements = strings.TrimSpace(req.Requirements)
	if req.Requirements == "" {
		return req, fmt.Errorf("%w: requirements are required", domain.ErrInvalidRequest)
	}
	if len(req.Requirements) > MaxRequirementsLength {
		return req, fmt.Errorf("%w: requirements too long (max %d chars)", domain.ErrInvalidRequest, MaxRequirementsLength)
	}
	if len(req.Constraints) > MaxConstraints {
		return req, fmt.Errorf("%w: too many constraints (max %d)", domain.ErrInvalidRequest, MaxConstraints)
	}
	if req.Budget != nil && *req.Budget < 0 {
		return req, fmt.Errorf("%w: budget must not be negative", domain.ErrInvalidRequest)
	}
	req.Application = strings.TrimSpace(req.Application)
	return req, nil
}
