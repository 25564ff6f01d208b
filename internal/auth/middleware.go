package auth

import (
	"net/http"
	"strings"
)

// HeaderAPIKey is the request header carrying the static API key.
const HeaderAPIKey = "X-API-Key"

// Middleware returns HTTP middleware that rejects requests lacking a valid
// API key or service token with 401. The X-API-Key header is checked first;
// otherwise a Bearer token in the Authorization header is accepted.
func Middleware(a *Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key := r.Header.Get(HeaderAPIKey); key != "" {
				if err := a.VerifyAPIKey(key); err != nil {
					unauthorized(w)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			authz := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(authz, "Bearer "); ok {
				if _, err := a.ValidateServiceToken(token); err != nil {
					unauthorized(w)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			unauthorized(w)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":{"code":"auth_failed","message":"missing or invalid credentials"}}`))
}
