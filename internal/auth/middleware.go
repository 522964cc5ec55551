// ABOUTME: HTTP middleware for bearer-token authentication
// ABOUTME: Attaches a principal on success and degrades to anonymous on failure

package auth

import (
	"net/http"
	"strings"
)

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and whether one was present in bearer format.
func extractBearerToken(authHeader string) (string, bool) {
	if authHeader == "" {
		return "", false
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", false
	}
	return token, true
}

// Middleware creates an HTTP middleware that attempts bearer-token
// authentication and attaches the resulting Principal to the request
// context.
//
// Contract: this layer never rejects a request. A missing, malformed,
// badly-signed or expired token all proceed with no principal attached and
// are indistinguishable downstream from one another. Rejecting
// unauthenticated access to protected routes is RequireAuth's job.
func Middleware(gate *Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r) // Continue as anonymous
				return
			}

			principal, err := gate.Verify(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAuth creates an HTTP middleware that rejects requests with no
// attached principal. Must be used after Middleware.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"authentication required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
