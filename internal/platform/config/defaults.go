package config

const (
	defaultServerPort = 8080

	defaultRetryMaxAttempts = 3
	defaultRetryMultiplier  = 2.0

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"server.host":          "0.0.0.0",
		"server.port":          defaultServerPort,
		"server.read_timeout":  "5s",
		"server.write_timeout": "10s",
		"server.idle_timeout":  "120s",

		"log.level":  "info",
		"log.format": "json",

		"store.backend":    "memory",
		"store.redis.addr": "localhost:6379",
		"store.redis.db":   0,

		"payment.base_url":                        "http://localhost:8091",
		"payment.timeout":                         "30s",
		"payment.retry.max_attempts":              defaultRetryMaxAttempts,
		"payment.retry.initial_interval":          "100ms",
		"payment.retry.max_interval":              "10s",
		"payment.retry.multiplier":                defaultRetryMultiplier,
		"payment.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"payment.circuit_breaker.timeout":         "30s",
		"payment.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,
		"payment.rate_limit.requests_per_second":  0,
		"payment.rate_limit.burst_size":           0,

		"notifier.base_url":                        "http://localhost:8092",
		"notifier.timeout":                         "15s",
		"notifier.retry.max_attempts":              defaultRetryMaxAttempts,
		"notifier.retry.initial_interval":          "100ms",
		"notifier.retry.max_interval":              "5s",
		"notifier.retry.multiplier":                defaultRetryMultiplier,
		"notifier.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"notifier.circuit_breaker.timeout":         "30s",
		"notifier.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,
		"notifier.rate_limit.requests_per_second":  0,
		"notifier.rate_limit.burst_size":           0,

		"quota.limits.starter":      2,
		"quota.limits.professional": 5,
		"quota.limits.webshop":      10,
		"quota.limits.business":     999,

		"lifecycle.graph": "client",

		"telemetry.enabled":  false,
		"telemetry.exporter": "stdout",
		"telemetry.endpoint": "",
	}
}
