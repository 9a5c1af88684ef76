package adminapi

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// WithHTTPClient sets a custom *http.Client for the default transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTransport replaces the transport entirely. Retry, cache and dedup
// still apply around it.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithTimeout sets the per-request timeout on the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if c.httpClient != nil {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetryConfig replaces the retry bounds.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(c *Client) {
		c.retryCfg = cfg
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.retryCfg.MaxRetries = n
	}
}

// WithInitialDelay sets the first retry delay.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryCfg.InitialDelay = d
	}
}

// WithMaxDelay caps the retry delay.
func WithMaxDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryCfg.MaxDelay = d
	}
}

// WithJitter sets the jitter fraction for backoff (0.0 to 1.0).
func WithJitter(f float64) Option {
	return func(c *Client) {
		if f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}
		c.retryCfg.Jitter = f
	}
}

// WithCacheConfig replaces the cache configuration.
func WithCacheConfig(cfg CacheConfig) Option {
	return func(c *Client) {
		c.cacheCfg = cfg
	}
}

// WithCustomCache sets a custom cache implementation.
func WithCustomCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithoutCache disables response caching.
func WithoutCache() Option {
	return func(c *Client) {
		c.cacheCfg.Enabled = false
	}
}

// WithoutDeduplication disables in-flight request coalescing.
func WithoutDeduplication() Option {
	return func(c *Client) {
		c.dedupOff = true
	}
}

// WithCredentials injects the credential provider. Installing one adds the
// bearer-token middleware first in the pipeline and the 401 handler last.
func WithCredentials(creds CredentialProvider) Option {
	return func(c *Client) {
		c.creds = creds
	}
}

// WithUnauthorizedHandler registers the redirect signal invoked after a 401
// clears credentials.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// WithMiddleware appends middleware entries in registration order.
func WithMiddleware(middleware ...*Middleware) Option {
	return func(c *Client) {
		c.middleware = append(c.middleware, middleware...)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables debug logging with the default flags.
func WithDebug() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets custom debug flags.
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		c.debug = config
	}
}

// WithMetrics enables Prometheus metrics on the default registerer.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// CallOption adjusts a single call.
type CallOption func(*callOptions)

type callOptions struct {
	query     url.Values
	header    http.Header
	skipCache bool
	cacheTTL  time.Duration
	retry     *RetryConfig
}

func newCallOptions(opts []CallOption) *callOptions {
	co := &callOptions{
		query:  url.Values{},
		header: http.Header{},
	}
	for _, opt := range opts {
		opt(co)
	}
	return co
}

// WithQuery merges query parameters into the call.
func WithQuery(values url.Values) CallOption {
	return func(co *callOptions) {
		for k, vs := range values {
			for _, v := range vs {
				co.query.Add(k, v)
			}
		}
	}
}

// WithQueryParam adds one query parameter.
func WithQueryParam(key, value string) CallOption {
	return func(co *callOptions) {
		co.query.Add(key, value)
	}
}

// WithHeader sets a header on the call.
func WithHeader(key, value string) CallOption {
	return func(co *callOptions) {
		co.header.Set(key, value)
	}
}

// WithNoCache bypasses the cache for this call, both lookup and store.
func WithNoCache() CallOption {
	return func(co *callOptions) {
		co.skipCache = true
	}
}

// WithCallCacheTTL overrides the TTL used when this call's response is stored.
func WithCallCacheTTL(ttl time.Duration) CallOption {
	return func(co *callOptions) {
		co.cacheTTL = ttl
	}
}

// WithCallRetry overrides the retry bounds for this call.
func WithCallRetry(cfg RetryConfig) CallOption {
	return func(co *callOptions) {
		co.retry = &cfg
	}
}

// ValidateConfiguration validates the client configuration and returns an
// error describing every problem found.
func (c *Client) ValidateConfiguration() error {
	var problems []string

	problems = append(problems, c.validateRetryConfig()...)
	problems = append(problems, c.validateCacheConfig()...)
	problems = append(problems, c.validateMiddlewareConfig()...)
	problems = append(problems, c.validateTransportConfig()...)
	problems = append(problems, c.validateExtremeValues()...)

	if len(problems) > 0 {
		return &APIError{
			Type:    ErrorTypeValidation,
			Message: "configuration validation failed",
			Cause:   fmt.Errorf("validation errors: %v", problems),
		}
	}
	return nil
}

func (c *Client) validateRetryConfig() []string {
	var problems []string

	if c.retryCfg.MaxRetries < 0 {
		problems = append(problems, "MaxRetries must be non-negative")
	}
	if c.retryCfg.InitialDelay <= 0 {
		problems = append(problems, "InitialDelay must be positive")
	}
	if c.retryCfg.MaxDelay < c.retryCfg.InitialDelay {
		problems = append(problems, "MaxDelay must be greater than or equal to InitialDelay")
	}
	if c.retryCfg.Jitter < 0 || c.retryCfg.Jitter > 1 {
		problems = append(problems, "Jitter must be between 0 and 1")
	}
	return problems
}

func (c *Client) validateCacheConfig() []string {
	var problems []string

	if c.cacheCfg.Enabled && c.cacheCfg.TTL <= 0 {
		problems = append(problems, "cache TTL must be positive when caching is enabled")
	}
	if c.cache == nil {
		problems = append(problems, "cache cannot be nil")
	}
	return problems
}

func (c *Client) validateMiddlewareConfig() []string {
	var problems []string

	for i, mw := range c.middleware {
		if mw == nil {
			problems = append(problems, fmt.Sprintf("middleware[%d] cannot be nil", i))
		}
	}
	return problems
}

func (c *Client) validateTransportConfig() []string {
	var problems []string

	if c.transport == nil && c.httpClient == nil {
		problems = append(problems, "transport and HTTP client cannot both be nil")
	}
	if c.baseURL == "" {
		problems = append(problems, "base URL cannot be empty")
	}
	return problems
}

func (c *Client) validateExtremeValues() []string {
	var problems []string

	if c.retryCfg.MaxRetries > 100 {
		problems = append(problems, "MaxRetries > 100 may cause excessive resource usage")
	}
	if c.retryCfg.InitialDelay > 10*time.Minute {
		problems = append(problems, "InitialDelay > 10m may cause very long delays")
	}
	if c.retryCfg.MaxDelay > time.Hour {
		problems = append(problems, "MaxDelay > 1h may cause extremely long delays")
	}
	if c.cacheCfg.Enabled && c.cacheCfg.TTL > 24*time.Hour {
		problems = append(problems, "cache TTL > 24h may cause stale data issues")
	}
	return problems
}
