package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional dependency is failing; search still works.
	Degraded Status = "degraded"
	// Unhealthy indicates the catalog database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Check names.
const (
	CheckDatabase = "database"
	CheckCache    = "cache"
	CheckLLM      = "llm"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db    Pinger
	cache Pinger
	llm   ProviderChecker
}

// New creates a Service. cache and llm can be nil.
func New(db Pinger, cache Pinger, llm ProviderChecker) *Service {
	return &Service{db: db, cache: cache, llm: llm}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks[CheckDatabase] = result(s.db.Ping(ctx))
	if s.cache != nil {
		checks[CheckCache] = result(s.cache.Ping(ctx))
	}
	if s.llm != nil {
		checks[CheckLLM] = result(s.llm.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[CheckDatabase] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
