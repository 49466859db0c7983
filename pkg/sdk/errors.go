package partdex

import "github.com/kailas-cloud/partdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest = domain.ErrInvalidRequest
	ErrNotFound       = domain.ErrNotFound
	ErrStoreFailure   = domain.ErrStoreFailure
	ErrEnhancerFailed = domain.ErrEnhancerFailed
	ErrCacheFailure   = domain.ErrCacheFailure
)
