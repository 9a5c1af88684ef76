package adminapi

import (
	"context"
	"net/http"
	"net/url"
)

// Request is the mutable descriptor passed through request hooks before the
// transport call. Hooks may mutate it in place; a later entry sees the
// previous entry's output.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Middleware supplies up to three optional hooks. OnRequest may replace the
// call context (for tracing and similar); returning an error aborts the call
// before the transport. Hooks run in registration order on every phase.
type Middleware struct {
	Name       string
	OnRequest  func(ctx context.Context, req *Request) (context.Context, error)
	OnResponse func(ctx context.Context, res *Result) error
	OnError    func(ctx context.Context, err *APIError)
}

// Use appends a middleware entry at runtime. Phases iterate over a snapshot
// of the entry list, so additions never corrupt an in-progress call.
func (c *Client) Use(mw *Middleware) {
	if mw == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware = append(c.middleware, mw)
}

// RemoveMiddleware removes an entry by identity. In-flight calls keep the
// snapshot they started with.
func (c *Client) RemoveMiddleware(mw *Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, m := range c.middleware {
		if m == mw {
			c.middleware = append(c.middleware[:i], c.middleware[i+1:]...)
			return
		}
	}
}

func (c *Client) snapshotMiddleware() []*Middleware {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := make([]*Middleware, len(c.middleware))
	copy(snapshot, c.middleware)
	return snapshot
}

// NewAuthMiddleware injects a bearer token from the credential provider into
// every outgoing request. Absent tokens leave the request untouched.
func NewAuthMiddleware(creds CredentialProvider) *Middleware {
	return &Middleware{
		Name: "auth",
		OnRequest: func(ctx context.Context, req *Request) (context.Context, error) {
			if token, ok := creds.Token(); ok && token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			return ctx, nil
		},
	}
}

// NewLoggingMiddleware observes the call lifecycle through the Logger.
func NewLoggingMiddleware(logger Logger) *Middleware {
	return &Middleware{
		Name: "logging",
		OnRequest: func(ctx context.Context, req *Request) (context.Context, error) {
			logger.Debug("outgoing request", "method", req.Method, "path", req.Path)
			return ctx, nil
		},
		OnResponse: func(ctx context.Context, res *Result) error {
			logger.Debug("response received", "status", res.Status)
			return nil
		},
		OnError: func(ctx context.Context, err *APIError) {
			logger.Warn("request failed",
				"type", err.Type, "status", err.StatusCode, "message", err.Message)
		},
	}
}

// NewUnauthorizedMiddleware clears stored credentials and signals a redirect
// to the login surface when the backend answers 401. The redirect is a
// signal to an external collaborator, never a direct navigation from here.
func NewUnauthorizedMiddleware(creds CredentialProvider, onRedirect func()) *Middleware {
	return &Middleware{
		Name: "unauthorized",
		OnError: func(ctx context.Context, err *APIError) {
			if err.StatusCode != http.StatusUnauthorized {
				return
			}
			creds.ClearToken()
			if onRedirect != nil {
				onRedirect()
			}
		},
	}
}
