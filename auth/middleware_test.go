package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddleware(t *testing.T) {
	keys := NewMemoryAPIKeyStore()
	keys.AddKey("ops", "k-admin", RoleAdmin)
	keys.AddKey("ro", "k-reader", "fonts:read")

	var denied error
	mw := Middleware(MiddlewareConfig{
		Authenticator: NewAPIKeyAuthenticator(APIKeyConfig{}, keys),
		Role:          RoleAdmin,
		Deny: func(w http.ResponseWriter, _ *http.Request, status int, err error) {
			denied = err
			w.WriteHeader(status)
		},
	})
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(PrincipalFromContext(r.Context())))
	}))

	tests := []struct {
		name       string
		key        string
		wantStatus int
		wantErr    error
	}{
		{"admin", "k-admin", http.StatusOK, nil},
		{"missing role", "k-reader", http.StatusForbidden, ErrForbidden},
		{"bad key", "k-nope", http.StatusUnauthorized, ErrInvalidCredentials},
		{"no key", "", http.StatusUnauthorized, ErrMissingCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			denied = nil
			req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantErr != nil && !errors.Is(denied, tt.wantErr) {
				t.Errorf("deny error = %v, want %v", denied, tt.wantErr)
			}
			if tt.wantErr == nil && rec.Body.String() != "ops" {
				t.Errorf("body = %q, want principal ops", rec.Body.String())
			}
		})
	}
}

func TestMiddleware_DefaultDeny(t *testing.T) {
	h := Middleware(MiddlewareConfig{
		Authenticator: NewAPIKeyAuthenticator(APIKeyConfig{}, NewMemoryAPIKeyStore()),
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler reached without credentials")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
