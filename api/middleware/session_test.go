package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/lumencart/storefront-backend/pkg/auth"
	"github.com/lumencart/storefront-backend/pkg/config"
)

func sessionConfig() config.SessionConfig {
	return config.SessionConfig{JWTSecret: "test-secret", JWTIssuer: "lumencart"}
}

func TestSessionMiddlewareResolvesCustomer(t *testing.T) {
	cfg := sessionConfig()
	customerID := uuid.New()
	token, err := pkgauth.MintCustomerToken(cfg, time.Now(), customerID, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var got string
	handler := Session(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = CustomerIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got != customerID.String() {
		t.Fatalf("expected customer %s got %q", customerID, got)
	}
}

func TestSessionMiddlewareResolvesGuest(t *testing.T) {
	var got string
	handler := Session(sessionConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Session-Id", "guest-123")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got != "guest-123" {
		t.Fatalf("expected guest-123 got %q", got)
	}
}

func TestSessionMiddlewareRejectsAnonymous(t *testing.T) {
	called := false
	handler := Session(sessionConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if called {
		t.Fatalf("handler should not run without a session")
	}
}

func TestSessionMiddlewareRejectsBadToken(t *testing.T) {
	handler := Session(sessionConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestSessionMiddlewarePrefersCustomerOverGuest(t *testing.T) {
	cfg := sessionConfig()
	customerID := uuid.New()
	token, err := pkgauth.MintCustomerToken(cfg, time.Now(), customerID, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var customer, guest string
	handler := Session(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		customer = CustomerIDFromContext(r.Context())
		guest = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Session-Id", "guest-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if customer != customerID.String() {
		t.Fatalf("expected customer %s got %q", customerID, customer)
	}
	if guest != "" {
		t.Fatalf("guest session should not be set when a customer token is present, got %q", guest)
	}
}
