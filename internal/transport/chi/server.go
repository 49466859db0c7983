package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/partdex/internal/domain"
	"github.com/kailas-cloud/partdex/internal/domain/search/facet"
	"github.com/kailas-cloud/partdex/internal/domain/search/filter"
	"github.com/kailas-cloud/partdex/internal/domain/search/request"
	"github.com/kailas-cloud/partdex/internal/domain/search/result"
	"github.com/kailas-cloud/partdex/internal/domain/search/sortby"
	logpkg "github.com/kailas-cloud/partdex/internal/logger"
	"github.com/kailas-cloud/partdex/internal/metrics"
	healthuc "github.com/kailas-cloud/partdex/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/partdex/internal/usecase/recommend"
	"github.com/kailas-cloud/partdex/internal/version"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// SearchService is the search use case consumed by the HTTP layer.
type SearchService interface {
	Search(ctx context.Context, req *request.Request) (result.Envelope, error)
	FilterOptions(ctx context.Context) (facet.Options, error)
	InvalidateFilterOptions(ctx context.Context) error
	PopularSearches(ctx context.Context, limit int) ([]string, error)
}

// RecommendService is the recommendation use case consumed by the HTTP layer.
type RecommendService interface {
	Recommend(ctx context.Context, req domain.RecommendRequest) (recommenduc.Result, error)
}

// HealthService reports dependency health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the partdex HTTP API.
type Server struct {
	search        SearchService
	recommend     RecommendService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search SearchService,
	recommend RecommendService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		search:        search,
		recommend:     recommend,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers,
	}
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/search", s.SearchComponents)
	r.Post("/search", s.SearchComponentsBody)
	r.Get("/search/filters", s.GetFilterOptions)
	r.Delete("/search/filters/cache", s.InvalidateFilterOptions)
	r.Get("/search/popular", s.GetPopularSearches)
	r.Post("/recommendations", s.Recommend)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Handler builds the router with the standard middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
	})
	s.Routes(r)
	return r
}

// SearchComponents handles GET /search.
func (s *Server) SearchComponents(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	req, err := params.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	s.runSearch(w, r, &req)
}

// SearchBody is the body of POST /search.
type SearchBody struct {
	Query   *string        `json:"query"`
	Filters filter.Filters `json:"filters"`
	Options SearchOptions  `json:"options"`
	UserID  string         `json:"userId,omitempty"`
}

// SearchOptions are the optional search options of POST /search.
type SearchOptions struct {
	Page       int    `json:"page,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	SortBy     string `json:"sortBy,omitempty"`
	SortOrder  string `json:"sortOrder,omitempty"`
	Fuzzy      *bool  `json:"fuzzy,omitempty"`
	AIEnhanced *bool  `json:"aiEnhanced,omitempty"`
}

// SearchComponentsBody handles POST /search.
func (s *Server) SearchComponentsBody(w http.ResponseWriter, r *http.Request) {
	var body SearchBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Query == nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "query is required")
		return
	}

	opts := request.DefaultOptions()
	opts.Page = body.Options.Page
	opts.Limit = body.Options.Limit
	opts.SortBy = sortby.Key(body.Options.SortBy)
	opts.SortOrder = sortby.Order(body.Options.SortOrder)
	if body.Options.Fuzzy != nil {
		opts.Fuzzy = *body.Options.Fuzzy
	}
	if body.Options.AIEnhanced != nil {
		opts.AIEnhanced = *body.Options.AIEnhanced
	}

	req, err := request.New(*body.Query, body.Filters, opts, body.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	s.runSearch(w, r, &req)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, req *request.Request) {
	r = r.WithContext(logpkg.With(r.Context(),
		zap.String("search_query", req.Query()),
		zap.Bool("ai_enhanced", req.Options().AIEnhanced),
	))
	env, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// GetFilterOptions handles GET /search/filters.
func (s *Server) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.search.FilterOptions(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// InvalidateFilterOptions handles DELETE /search/filters/cache.
func (s *Server) InvalidateFilterOptions(w http.ResponseWriter, r *http.Request) {
	if err := s.search.InvalidateFilterOptions(r.Context()); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PopularResponse is the body of GET /search/popular.
type PopularResponse struct {
	Searches []string `json:"searches"`
}

// GetPopularSearches handles GET /search/popular.
func (s *Server) GetPopularSearches(w http.ResponseWriter, r *http.Request) {
	params, err := bindPopularParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}

	queries, err := s.search.PopularSearches(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PopularResponse{Searches: queries})
}

// Recommend handles POST /recommendations.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var body domain.RecommendRequest
	if !decodeBody(w, r, &body) {
		return
	}

	res, err := s.recommend.Recommend(r.Context(), body)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  healthuc.Status                 `json:"status"`
	Checks  map[string]healthuc.CheckResult `json:"checks"`
	Version string                          `json:"version"`
	Commit  string                          `json:"commit"`
}

// HealthCheck handles GET /health. Only a failing database makes it 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  report.Status,
		Checks:  report.Checks,
		Version: version.Version,
		Commit:  version.Commit,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decodeBody decodes a JSON body or writes a 400. Returns false when the
// response has been written.
func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeBadRequest, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
