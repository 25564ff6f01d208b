package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authedHandler(t *testing.T, a *Authenticator, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	handler := Middleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware_ValidAPIKey(t *testing.T) {
	a := NewAuthenticator("super-secret")

	req := httptest.NewRequest(http.MethodGet, "/buildings", nil)
	req.Header.Set(HeaderAPIKey, "super-secret")

	rr := authedHandler(t, a, req)
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
}

func TestMiddleware_InvalidAPIKey(t *testing.T) {
	a := NewAuthenticator("super-secret")

	req := httptest.NewRequest(http.MethodGet, "/buildings", nil)
	req.Header.Set(HeaderAPIKey, "wrong")

	rr := authedHandler(t, a, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON error body, got Content-Type %q", ct)
	}
}

func TestMiddleware_MissingCredentials(t *testing.T) {
	a := NewAuthenticator("super-secret")

	req := httptest.NewRequest(http.MethodGet, "/buildings", nil)

	rr := authedHandler(t, a, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
}

func TestMiddleware_BearerToken(t *testing.T) {
	a := NewAuthenticator("super-secret")

	token, err := a.GenerateServiceToken("gateway-1", "read")
	if err != nil {
		t.Fatalf("GenerateServiceToken failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/organizations", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rr := authedHandler(t, a, req)
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
}

func TestMiddleware_InvalidBearerToken(t *testing.T) {
	a := NewAuthenticator("super-secret")

	req := httptest.NewRequest(http.MethodGet, "/organizations", nil)
	req.Header.Set("Authorization", "Bearer garbage")

	rr := authedHandler(t, a, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
}
