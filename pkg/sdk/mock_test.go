package partdex

import (
	"context"

	"github.com/kailas-cloud/partdex/internal/domain"
	"github.com/kailas-cloud/partdex/internal/domain/search/facet"
	"github.com/kailas-cloud/partdex/internal/domain/search/request"
	"github.com/kailas-cloud/partdex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/partdex/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/partdex/internal/usecase/recommend"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn     func(ctx context.Context, req *request.Request) (result.Envelope, error)
	facetsFn     func(ctx context.Context) (facet.Options, error)
	invalidateFn func(ctx context.Context) error
	popularFn    func(ctx context.Context, limit int) ([]string, error)
	drainFn      func(ctx context.Context) error

	searchCalls int
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) (result.Envelope, error) {
	m.searchCalls++
	return m.searchFn(ctx, req)
}

func (m *mockSearchUC) FilterOptions(ctx context.Context) (facet.Options, error) {
	return m.facetsFn(ctx)
}

func (m *mockSearchUC) InvalidateFilterOptions(ctx context.Context) error {
	return m.invalidateFn(ctx)
}

func (m *mockSearchUC) PopularSearches(ctx context.Context, limit int) ([]string, error) {
	return m.popularFn(ctx, limit)
}

func (m *mockSearchUC) Drain(ctx context.Context) error {
	if m.drainFn == nil {
		return nil
	}
	return m.drainFn(ctx)
}

// --- recommendUseCase mock ---

type mockRecommendUC struct {
	fn func(ctx context.Context, req domain.RecommendRequest) (recommenduc.Result, error)
}

func (m *mockRecommendUC) Recommend(ctx context.Context, req domain.RecommendRequest) (recommenduc.Result, error) {
	return m.fn(ctx, req)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}

func newTestClient(search *mockSearchUC, rec *mockRecommendUC, health *mockHealthUC) *Client {
	return &Client{
		searchSvc:    search,
		recommendSvc: rec,
		healthSvc:    health,
	}
}
