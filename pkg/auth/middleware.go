package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const identityKey contextKey = "identity"

// errorBody is the JSON envelope for authentication failures.
type errorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Middleware wraps a handler with bearer-token authentication. The token
// is read from the Authorization header ("Bearer <token>"). Requests
// without a valid session get 401 and never reach the handler.
func (v *SessionValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearer(r)
		if token == "" {
			deny(w, http.StatusUnauthorized, "Missing session token")
			return
		}

		identity, err := v.Validate(token)
		if err != nil {
			slog.Warn("invalid session token",
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
			)
			deny(w, http.StatusUnauthorized, "Invalid session token")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole wraps a handler with an opaque allowed/denied role check.
// The identity must already be on the context (Middleware runs first).
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFrom(r.Context())
			if !ok || !identity.HasRole(roles...) {
				deny(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFrom retrieves the authenticated identity from the context.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}

// WithIdentity returns a context carrying the identity. Used by tests and
// internal callers that bypass the HTTP middleware.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func extractBearer(r *http.Request) string {
	value := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if strings.HasPrefix(value, prefix) {
		return strings.TrimPrefix(value, prefix)
	}
	return ""
}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Status: status, Message: message})
}
