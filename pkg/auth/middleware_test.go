package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func testValidator(t *testing.T) *SessionValidator {
	t.Helper()
	v, err := NewSessionValidator([]SessionEntry{
		{Token: "alice-token", UserID: "alice", Roles: []string{"admin"}},
		{Token: "bob-token", UserID: "bob"},
		{Token: "carol-token", UserID: "carol", Roles: []string{"seller"}},
	})
	if err != nil {
		t.Fatalf("NewSessionValidator: %v", err)
	}
	return v
}

func identityEcho(t *testing.T, want string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			t.Error("No identity on context")
			return
		}
		if id.UserID != want {
			t.Errorf("Expected user %q, got %q", want, id.UserID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestNewSessionValidator_RejectsBadEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []SessionEntry
	}{
		{"empty token", []SessionEntry{{Token: "", UserID: "alice"}}},
		{"empty user", []SessionEntry{{Token: "tok", UserID: ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSessionValidator(tt.entries); err == nil {
				t.Error("Expected configuration error")
			}
		})
	}
}

func TestMiddleware_ValidToken(t *testing.T) {
	v := testValidator(t)
	handler := v.Middleware(identityEcho(t, "bob"))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer bob-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

func TestMiddleware_MissingToken(t *testing.T) {
	v := testValidator(t)
	handler := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler reached without a token")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestMiddleware_InvalidToken(t *testing.T) {
	v := testValidator(t)
	handler := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler reached with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestMiddleware_MalformedAuthorizationHeader(t *testing.T) {
	v := testValidator(t)
	handler := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler reached with a malformed header")
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Basic alice-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	v := testValidator(t)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		token    string
		roles    []string
		wantCode int
	}{
		{"admin passes admin check", "alice-token", []string{"admin"}, http.StatusOK},
		{"seller passes admin-or-seller check", "carol-token", []string{"admin", "seller"}, http.StatusOK},
		{"plain user denied", "bob-token", []string{"admin"}, http.StatusForbidden},
		{"seller denied admin-only", "carol-token", []string{"admin"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := v.Middleware(RequireRole(tt.roles...)(ok))

			req := httptest.NewRequest(http.MethodDelete, "/orders/1", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("Expected %d, got %d", tt.wantCode, rec.Code)
			}
		})
	}
}

func TestRequireRole_NoIdentity(t *testing.T) {
	handler := RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler reached without an identity")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", rec.Code)
	}
}
