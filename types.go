package adminapi

import (
	"net/http"
	"time"
)

// Transport executes a prepared *http.Request against the backend origin.
// The default transport wraps net/http; tests and callers may supply their own.
type Transport interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(*http.Request) (*http.Response, error)

func (f TransportFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// CacheConfig controls response caching for idempotent reads. It is mutable
// at runtime through SetCacheConfig; changes affect only future cache
// reads and writes, never entries already stored with a different TTL.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// RetryConfig bounds the exponential-backoff retry executor. The delay before
// retry n is min(InitialDelay * 2^(n-1), MaxDelay); Jitter (0..1) adds a
// uniform random fraction on top and defaults to 0 so delays are exact.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Jitter       float64
}

// Result is the raw transport outcome handed to response hooks: the backend
// status, headers and the fully read body.
type Result struct {
	Status int
	Header http.Header
	Body   []byte
}

// Option configures a Client at construction.
type Option func(*Client)

// DebugConfig gates structured debug logging per concern.
type DebugConfig struct {
	Enabled     bool
	LogRequests bool
	LogCache    bool
	LogRetries  bool
	LogDedup    bool
}

// DefaultDebugConfig returns a config with all concerns selected but logging
// disabled until WithDebug flips Enabled.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:     false,
		LogRequests: true,
		LogCache:    true,
		LogRetries:  true,
		LogDedup:    true,
	}
}
