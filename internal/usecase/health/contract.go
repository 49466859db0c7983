package health

import "context"

// Pinger checks availability of a backing store (database or cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks language-model provider availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}
