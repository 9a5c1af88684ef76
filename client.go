package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// maxResponseSize caps how much of a backend body is read into memory.
const maxResponseSize = 10 * 1024 * 1024

// Client is the facade over the backend origin. It layers caching,
// deduplication, middleware and retry around the transport call and
// normalizes every outcome into the Response envelope. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	transport  Transport
	userAgent  string

	mu         sync.RWMutex
	middleware []*Middleware
	cacheCfg   CacheConfig
	retryCfg   RetryConfig

	cache    Cache
	dedup    *Deduplicator
	dedupOff bool

	creds          CredentialProvider
	onUnauthorized func()

	metrics *MetricsCollector
	logger  Logger
	debug   *DebugConfig

	validationError error
}

// New constructs a Client for the given origin using the provided functional
// options. A best effort validation is performed; call IsValid /
// ValidationError for errors.
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cacheCfg:   CacheConfig{Enabled: true, TTL: 5 * time.Minute},
		retryCfg:   RetryConfig{MaxRetries: 3, InitialDelay: time.Second, MaxDelay: 10 * time.Second},
		cache:      NewMemoryCache(),
		dedup:      NewDeduplicator(),
		userAgent:  "admin-client/" + Version,
		debug:      DefaultDebugConfig(),
	}

	for _, option := range options {
		option(c)
	}

	if c.transport == nil {
		c.transport = TransportFunc(c.httpClient.Do)
	}
	if c.logger == nil {
		c.logger = NewDefaultLogger()
	}
	if c.debug == nil {
		c.debug = DefaultDebugConfig()
	}
	c.dedup.logger = c.logger
	c.dedup.metrics = c.metrics

	if c.creds != nil {
		// Auth runs first so every later entry observes the final header; the
		// 401 handler runs last so user hooks see the error before the
		// credential store mutates.
		onClear := func() {
			c.metrics.RecordCredentialClear()
			if c.onUnauthorized != nil {
				c.onUnauthorized()
			}
		}
		c.middleware = append([]*Middleware{NewAuthMiddleware(c.creds)}, c.middleware...)
		c.middleware = append(c.middleware, NewUnauthorizedMiddleware(c.creds, onClear))
	}

	if err := c.ValidateConfiguration(); err != nil {
		c.validationError = err
	}
	return c
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

// Get performs a read. Fresh cached responses short-circuit the transport,
// dedup and retry layers entirely; concurrent identical reads coalesce into
// one underlying call.
func (c *Client) Get(ctx context.Context, path string, opts ...CallOption) *Response {
	return c.call(ctx, http.MethodGet, path, nil, opts)
}

// Post performs a create. Never cached; invalidates cached reads for path on
// success.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...CallOption) *Response {
	return c.call(ctx, http.MethodPost, path, body, opts)
}

// Put performs an update. Never cached; invalidates cached reads for path on
// success.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...CallOption) *Response {
	return c.call(ctx, http.MethodPut, path, body, opts)
}

// Delete performs a delete. Never cached; invalidates cached reads for path
// on success.
func (c *Client) Delete(ctx context.Context, path string, opts ...CallOption) *Response {
	return c.call(ctx, http.MethodDelete, path, nil, opts)
}

// SetCacheConfig merges into the current cache configuration: Enabled is
// always applied, a zero TTL keeps the current value. Entries already stored
// keep the TTL they were stored with.
func (c *Client) SetCacheConfig(cfg CacheConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cfg.TTL > 0 {
		c.cacheCfg.TTL = cfg.TTL
	}
	c.cacheCfg.Enabled = cfg.Enabled
}

// SetRetryConfig merges into the current retry configuration. MaxRetries is
// applied when non-negative; zero durations keep the current values.
func (c *Client) SetRetryConfig(cfg RetryConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cfg.MaxRetries >= 0 {
		c.retryCfg.MaxRetries = cfg.MaxRetries
	}
	if cfg.InitialDelay > 0 {
		c.retryCfg.InitialDelay = cfg.InitialDelay
	}
	if cfg.MaxDelay > 0 {
		c.retryCfg.MaxDelay = cfg.MaxDelay
	}
}

// ClearCache drops all cached responses.
func (c *Client) ClearCache() {
	c.cache.Clear()
}

func (c *Client) cacheConfig() CacheConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cacheCfg
}

func (c *Client) retryConfig() RetryConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.retryCfg
}

// call resolves the three-way outcome for one logical request: cache hit,
// transported response, or failure. The cache is consulted before dedup,
// middleware and retry ever run, so a hit touches nothing else.
func (c *Client) call(ctx context.Context, method, path string, body any, opts []CallOption) *Response {
	co := newCallOptions(opts)
	meta := newMetadata()
	start := time.Now()

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			apiErr := &APIError{
				Type:      ErrorTypeEncoding,
				Message:   "encode request body: " + err.Error(),
				Cause:     err,
				RequestID: meta.RequestID,
				Method:    method,
				Path:      path,
				Timestamp: time.Now(),
			}
			c.metrics.RecordError(apiErr.Type, method, path)
			return failureResponse(apiErr, meta)
		}
		payload = b
	}

	sig := Signature(method, path, co.query, payload)

	cacheCfg := c.cacheConfig()
	if method == http.MethodGet && cacheCfg.Enabled && !co.skipCache {
		if entry, ok := c.cache.Get(sig); ok {
			c.metrics.RecordCacheHit(method, path)
			c.metrics.RecordRequest(method, path, entry.Status, time.Since(start))
			c.debugLog(c.debug.LogCache, "cache hit", "requestID", meta.RequestID, "key", sig)
			return successResponse(entry.Data, entry.Status, meta)
		}
		c.metrics.RecordCacheMiss(method, path)
		c.debugLog(c.debug.LogCache, "cache miss", "requestID", meta.RequestID, "key", sig)
	}

	if method == http.MethodGet && !c.dedupOff {
		pending, owner := c.dedup.GetOrCreate(sig)
		if !owner {
			c.metrics.RecordDeduplicationHit(method, path)
			c.debugLog(c.debug.LogDedup, "coalesced into in-flight call", "requestID", meta.RequestID, "key", sig)
			resp, err := pending.Wait(ctx)
			if err != nil {
				apiErr := &APIError{
					Type:      ErrorTypeCanceled,
					Message:   "canceled while awaiting coalesced call",
					Cause:     err,
					RequestID: meta.RequestID,
					Method:    method,
					Path:      path,
					Timestamp: time.Now(),
				}
				return failureResponse(apiErr, meta)
			}
			return resp
		}
		resp := c.execute(ctx, method, path, payload, sig, co, meta, start)
		c.dedup.Complete(sig, resp)
		return resp
	}

	return c.execute(ctx, method, path, payload, sig, co, meta, start)
}

// execute runs the full pipeline for one transported call: request hooks,
// transport with retry, response or error hooks, envelope fold, cache
// write-through and write invalidation.
func (c *Client) execute(ctx context.Context, method, path string, payload []byte, sig string, co *callOptions, meta Metadata, start time.Time) *Response {
	req := &Request{
		Method: method,
		Path:   path,
		Query:  cloneValues(co.query),
		Header: co.header.Clone(),
		Body:   payload,
	}
	if req.Header == nil {
		req.Header = http.Header{}
	}
	if len(payload) > 0 && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	mws := c.snapshotMiddleware()

	c.debugLog(c.debug.LogRequests, "starting request",
		"requestID", meta.RequestID, "method", method, "path", path)

	hctx := ctx
	for _, mw := range mws {
		if mw.OnRequest == nil {
			continue
		}
		next, err := mw.OnRequest(hctx, req)
		if err != nil {
			apiErr := &APIError{
				Type:      ErrorTypeMiddleware,
				Message:   "request middleware failed",
				Cause:     err,
				RequestID: meta.RequestID,
				Method:    method,
				Path:      path,
				Timestamp: time.Now(),
			}
			c.runErrorHooks(hctx, mws, apiErr)
			c.metrics.RecordError(apiErr.Type, method, path)
			return failureResponse(apiErr, meta)
		}
		if next != nil {
			hctx = next
		}
	}

	result, apiErr := c.doWithRetry(hctx, req, co, meta.RequestID)

	status := 0
	if result != nil {
		status = result.Status
	} else if apiErr != nil {
		status = apiErr.StatusCode
	}
	c.metrics.RecordRequest(method, path, status, time.Since(start))

	if apiErr != nil {
		c.runErrorHooks(hctx, mws, apiErr)
		c.metrics.RecordError(apiErr.Type, method, path)
		return failureResponse(apiErr, meta)
	}

	for _, mw := range mws {
		if mw.OnResponse == nil {
			continue
		}
		if err := mw.OnResponse(hctx, result); err != nil {
			apiErr := &APIError{
				Type:       ErrorTypeMiddleware,
				Message:    "response middleware failed",
				Cause:      err,
				RequestID:  meta.RequestID,
				Method:     method,
				Path:       path,
				StatusCode: result.Status,
				Timestamp:  time.Now(),
			}
			c.runErrorHooks(hctx, mws, apiErr)
			c.metrics.RecordError(apiErr.Type, method, path)
			return failureResponse(apiErr, meta)
		}
	}

	data, appMsg, ok := decodeWire(result.Body)
	if !ok {
		// Backend declared failure in the body; transport status stands.
		apiErr := &APIError{
			Type:       ErrorTypeApplication,
			Message:    appMsg,
			RequestID:  meta.RequestID,
			Method:     method,
			Path:       path,
			StatusCode: result.Status,
			Timestamp:  time.Now(),
		}
		c.runErrorHooks(hctx, mws, apiErr)
		c.metrics.RecordError(apiErr.Type, method, path)
		return failureResponse(apiErr, meta)
	}

	cacheCfg := c.cacheConfig()
	if method == http.MethodGet && cacheCfg.Enabled && !co.skipCache {
		ttl := cacheCfg.TTL
		if co.cacheTTL > 0 {
			ttl = co.cacheTTL
		}
		c.cache.Set(sig, &CacheEntry{
			Path:     path,
			Data:     data,
			Status:   result.Status,
			StoredAt: time.Now(),
			TTL:      ttl,
		})
		if mc, isMem := c.cache.(*MemoryCache); isMem {
			c.metrics.RecordCacheSize("default", mc.Len())
		}
		c.debugLog(c.debug.LogCache, "response cached",
			"requestID", meta.RequestID, "key", sig, "ttl", ttl)
	}

	if method == http.MethodPost || method == http.MethodPut || method == http.MethodDelete {
		if n := c.cache.InvalidatePath(path); n > 0 {
			c.debugLog(c.debug.LogCache, "invalidated cached reads",
				"requestID", meta.RequestID, "path", path, "entries", n)
		}
	}

	return successResponse(data, result.Status, meta)
}

// doWithRetry issues the transport call, re-issuing on server-side failures
// per the retry policy. Request hooks have already run; error hooks run only
// after the terminal outcome, never between attempts.
func (c *Client) doWithRetry(ctx context.Context, req *Request, co *callOptions, requestID string) (*Result, *APIError) {
	retryCfg := c.retryConfig()
	if co.retry != nil {
		retryCfg = *co.retry
	}
	policy := NewExponentialRetryPolicy(retryCfg)

	retries := 0
	for {
		result, err := c.transportCall(ctx, req)

		var status int
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, &APIError{
					Type:      ErrorTypeCanceled,
					Message:   "request canceled",
					Cause:     ctx.Err(),
					RequestID: requestID,
					Method:    req.Method,
					Path:      req.Path,
					Attempt:   retries,
					Timestamp: time.Now(),
				}
			}
			// No response received: counts as a transient server-side failure.
			status = http.StatusInternalServerError
		case result.Status < 400:
			return result, nil
		default:
			status = result.Status
		}

		if delay, retry := policy.ShouldRetry(status, retries+1); retry {
			retries++
			c.metrics.RecordRetry(req.Method, req.Path, retries)
			c.debugLog(c.debug.LogRetries, "scheduling retry",
				"requestID", requestID, "attempt", retries, "maxRetries", retryCfg.MaxRetries, "backoff", delay)
			if werr := sleep(ctx, delay); werr != nil {
				return nil, &APIError{
					Type:      ErrorTypeCanceled,
					Message:   "canceled during backoff wait",
					Cause:     werr,
					RequestID: requestID,
					Method:    req.Method,
					Path:      req.Path,
					Attempt:   retries,
					Timestamp: time.Now(),
				}
			}
			continue
		}

		return nil, c.classifyFailure(req, result, err, status, retries, retryCfg.MaxRetries, requestID)
	}
}

func (c *Client) classifyFailure(req *Request, result *Result, cause error, status, retries, maxRetries int, requestID string) *APIError {
	e := &APIError{
		RequestID:  requestID,
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: status,
		Attempt:    retries,
		MaxRetries: maxRetries,
		Timestamp:  time.Now(),
		Cause:      cause,
	}
	switch {
	case cause != nil:
		e.Type = ErrorTypeNetwork
		e.Message = "network request failed"
	case status == http.StatusUnauthorized:
		e.Type = ErrorTypeUnauthorized
		e.Message = wireMessage(result.Body, "unauthorized")
	case status >= 500:
		e.Type = ErrorTypeServer
		e.Message = wireMessage(result.Body, http.StatusText(status))
	default:
		e.Type = ErrorTypeClient
		e.Message = wireMessage(result.Body, http.StatusText(status))
	}
	return e
}

// transportCall builds the concrete *http.Request and reads the full body so
// every later stage works with an owned byte slice.
func (c *Client) transportCall(ctx context.Context, req *Request) (*Result, error) {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := c.transport.RoundTrip(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	return &Result{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   b,
	}, nil
}

func (c *Client) runErrorHooks(ctx context.Context, mws []*Middleware, apiErr *APIError) {
	for _, mw := range mws {
		if mw.OnError != nil {
			mw.OnError(ctx, apiErr)
		}
	}
}

func (c *Client) debugLog(enabled bool, msg string, keysAndValues ...any) {
	if c.debug == nil || !c.debug.Enabled || !enabled || c.logger == nil {
		return
	}
	c.logger.Debug(msg, keysAndValues...)
}

func cloneValues(v map[string][]string) map[string][]string {
	if v == nil {
		return nil
	}
	out := make(map[string][]string, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
