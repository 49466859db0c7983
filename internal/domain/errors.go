package domain

import "errors"

var (
	// ErrInvalidRequest signals a malformed or missing request parameter.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrStoreFailure signals a catalog or analytics database failure.
	ErrStoreFailure = errors.New("store failure")
	// ErrEnhancerFailed signals a language-model call that produced no usable answer.
	ErrEnhancerFailed = errors.New("llm provider error")
	// ErrCacheFailure signals an unreachable cache or an unusable cached value.
	ErrCacheFailure = errors.New("cache failure")
)

// KeyPrefix is the namespace for every key partdex writes to the cache.
const KeyPrefix = "partdex:"
