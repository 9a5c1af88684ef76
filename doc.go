// Package adminapi is the outbound HTTP client layer of the admin dashboard.
// It wraps a single backend origin behind a uniform response envelope and
// coordinates the cross-cutting concerns around each call:
//
//   - In-memory response caching with TTL and lazy eviction (reads only)
//   - In-flight request de-duplication (concurrent identical reads coalesce)
//   - Bounded exponential-backoff retry for transient server failures
//   - Middleware hooks for auth injection, logging, tracing and 401 handling
//   - Prometheus metrics and structured debug logging via zerolog
//
// Design goals:
//   - One envelope shape for every outcome - success, cache hit, exhausted retry
//   - Functional options configure everything; runtime setters cover the rest
//   - Safe concurrent use of a single *Client instance
//   - Credential access through an injected provider, never ambient state
//
// Typical usage:
//
//	client := adminapi.New("https://api.example.com",
//	    adminapi.WithCredentials(store),
//	    adminapi.WithRetryConfig(adminapi.RetryConfig{MaxRetries: 3, InitialDelay: time.Second, MaxDelay: 10 * time.Second}),
//	    adminapi.WithCacheConfig(adminapi.CacheConfig{Enabled: true, TTL: 5 * time.Minute}),
//	)
//	resp := client.Get(ctx, "/users")
//	users, err := adminapi.Decode[[]User](resp)
//
// Calls never return a transport-level error: the envelope's Err field is the
// sole failure channel. Only GET responses are cached; successful writes
// invalidate cached reads for the same path.
package adminapi
