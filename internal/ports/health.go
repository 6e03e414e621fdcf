package ports

import "context"

// HealthChecker is implemented by components whose availability feeds the
// readiness endpoint (the store, outbound clients).
type HealthChecker interface {
	// Name identifies the component in readiness results.
	Name() string

	// HealthCheck returns nil when the component is healthy, or an error
	// describing the degradation.
	HealthCheck(ctx context.Context) error
}

// HealthRegistry collects health checkers registered at startup and runs
// them on each readiness probe.
type HealthRegistry interface {
	// Register adds a checker. Safe for concurrent use.
	Register(checker HealthChecker)

	// CheckAll runs every registered check and returns results keyed by
	// checker name; nil values indicate healthy components.
	CheckAll(ctx context.Context) map[string]error
}
