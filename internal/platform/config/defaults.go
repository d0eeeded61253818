package config

const (
	defaultServerPort = 8080

	// Dispatch is at-most-once; a single attempt is the safe default.
	defaultRetryMaxAttempts = 1
	defaultRetryMultiplier  = 2.0

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1

	defaultCacheSize = 1024
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

		"dispatch.mode": "local",

		"transport.base_url":                        "http://localhost:8081",
		"transport.timeout":                         "30s",
		"transport.retry.max_attempts":              defaultRetryMaxAttempts,
		"transport.retry.initial_interval":          "100ms",
		"transport.retry.max_interval":              "10s",
		"transport.retry.multiplier":                defaultRetryMultiplier,
		"transport.rate_limit.requests_per_second":  0,
		"transport.rate_limit.burst_size":           1,
		"transport.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"transport.circuit_breaker.timeout":         "30s",
		"transport.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,

		"cache.size": defaultCacheSize,
		"cache.ttl":  "30s",

		"storage.driver": "memory",
		"storage.path":   "",

		"telemetry.enabled":  false,
		"telemetry.exporter": "stdout",
		"telemetry.endpoint": "",
	}
}
