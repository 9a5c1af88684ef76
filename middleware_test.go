package adminapi

import (
	"context"
	"net/http"
	"net/url"
	"testing"
)

func TestAuthMiddlewareInjectsBearerToken(t *testing.T) {
	store := NewMemoryCredentialStore("secret-token")
	mw := NewAuthMiddleware(store)

	req := &Request{Method: "GET", Path: "/items", Header: http.Header{}}
	if _, err := mw.OnRequest(context.Background(), req); err != nil {
		t.Fatalf("OnRequest returned error: %v", err)
	}

	if got := req.Header.Get("Authorization"); got != "Bearer secret-token" {
		t.Errorf("expected bearer header, got %q", got)
	}
}

func TestAuthMiddlewareSkipsAbsentToken(t *testing.T) {
	store := NewMemoryCredentialStore("")
	mw := NewAuthMiddleware(store)

	req := &Request{Method: "GET", Path: "/items", Header: http.Header{}}
	if _, err := mw.OnRequest(context.Background(), req); err != nil {
		t.Fatalf("OnRequest returned error: %v", err)
	}

	if got := req.Header.Get("Authorization"); got != "" {
		t.Errorf("expected no auth header, got %q", got)
	}
}

func TestUnauthorizedMiddlewareClearsOn401(t *testing.T) {
	store := NewMemoryCredentialStore("secret")
	redirects := 0
	mw := NewUnauthorizedMiddleware(store, func() { redirects++ })

	mw.OnError(context.Background(), &APIError{Type: ErrorTypeUnauthorized, StatusCode: 401})

	if _, ok := store.Token(); ok {
		t.Error("401 must clear the stored token")
	}
	if redirects != 1 {
		t.Errorf("expected exactly one redirect signal, got %d", redirects)
	}
}

func TestUnauthorizedMiddlewareIgnoresOtherErrors(t *testing.T) {
	store := NewMemoryCredentialStore("secret")
	redirects := 0
	mw := NewUnauthorizedMiddleware(store, func() { redirects++ })

	mw.OnError(context.Background(), &APIError{Type: ErrorTypeClient, StatusCode: 404})

	if _, ok := store.Token(); !ok {
		t.Error("non-401 errors must not clear the token")
	}
	if redirects != 0 {
		t.Errorf("expected no redirect signal, got %d", redirects)
	}
}

func TestMiddlewareRegistrationOrder(t *testing.T) {
	c := New("http://example.com")

	var order []string
	a := &Middleware{
		Name: "A",
		OnRequest: func(ctx context.Context, req *Request) (context.Context, error) {
			order = append(order, "A.req")
			return ctx, nil
		},
		OnResponse: func(ctx context.Context, res *Result) error {
			order = append(order, "A.res")
			return nil
		},
	}
	b := &Middleware{
		Name: "B",
		OnRequest: func(ctx context.Context, req *Request) (context.Context, error) {
			order = append(order, "B.req")
			return ctx, nil
		},
		OnResponse: func(ctx context.Context, res *Result) error {
			order = append(order, "B.res")
			return nil
		},
	}
	c.Use(a)
	c.Use(b)

	mws := c.snapshotMiddleware()
	req := &Request{Method: "GET", Path: "/x", Header: http.Header{}}
	ctx := context.Background()
	for _, mw := range mws {
		if mw.OnRequest != nil {
			if _, err := mw.OnRequest(ctx, req); err != nil {
				t.Fatal(err)
			}
		}
	}
	for _, mw := range mws {
		if mw.OnResponse != nil {
			if err := mw.OnResponse(ctx, &Result{Status: 200}); err != nil {
				t.Fatal(err)
			}
		}
	}

	want := []string{"A.req", "B.req", "A.res", "B.res"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestMiddlewareChaining(t *testing.T) {
	c := New("http://example.com")

	first := &Middleware{
		OnRequest: func(ctx context.Context, req *Request) (context.Context, error) {
			req.Query.Set("injected", "yes")
			return ctx, nil
		},
	}
	var seen string
	second := &Middleware{
		OnRequest: func(ctx context.Context, req *Request) (context.Context, error) {
			seen = req.Query.Get("injected")
			return ctx, nil
		},
	}
	c.Use(first)
	c.Use(second)

	req := &Request{Method: "GET", Path: "/x", Query: url.Values{}, Header: http.Header{}}
	for _, mw := range c.snapshotMiddleware() {
		if _, err := mw.OnRequest(context.Background(), req); err != nil {
			t.Fatal(err)
		}
	}

	if seen != "yes" {
		t.Error("a later entry must see the previous entry's mutation")
	}
}

func TestSnapshotSurvivesRemoval(t *testing.T) {
	c := New("http://example.com")

	a := &Middleware{Name: "A"}
	b := &Middleware{Name: "B"}
	c.Use(a)
	c.Use(b)

	snapshot := c.snapshotMiddleware()
	c.RemoveMiddleware(a)
	c.RemoveMiddleware(b)

	if len(snapshot) < 2 {
		t.Fatalf("snapshot must be unaffected by removal, len=%d", len(snapshot))
	}
	if len(c.snapshotMiddleware()) >= len(snapshot) {
		t.Error("removal must shrink the live list")
	}
}

func TestRemoveMiddlewareByIdentity(t *testing.T) {
	c := New("http://example.com")

	a := &Middleware{Name: "same"}
	b := &Middleware{Name: "same"}
	c.Use(a)
	c.Use(b)

	before := len(c.snapshotMiddleware())
	c.RemoveMiddleware(a)
	after := len(c.snapshotMiddleware())

	if after != before-1 {
		t.Errorf("expected exactly one entry removed, before=%d after=%d", before, after)
	}
	found := false
	for _, mw := range c.snapshotMiddleware() {
		if mw == b {
			found = true
		}
	}
	if !found {
		t.Error("removal must match by identity, not name")
	}
}
