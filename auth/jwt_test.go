package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("regen-secret")

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return s
}

func TestJWTAuthenticator_Supports(t *testing.T) {
	a := NewJWTAuthenticator(JWTConfig{}, NewStaticKeyProvider(testSecret))

	tests := []struct {
		name string
		req  *AuthRequest
		want bool
	}{
		{"no header", requestWith(), false},
		{"bearer token", requestWith("Authorization", "Bearer abc"), true},
		{"basic auth", requestWith("Authorization", "Basic abc"), false},
		{"api key only", requestWith("X-API-Key", "abc"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Supports(context.Background(), tt.req); got != tt.want {
				t.Errorf("Supports() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJWTAuthenticator_Authenticate(t *testing.T) {
	a := NewJWTAuthenticator(JWTConfig{Issuer: "fontops", Audience: "admin"}, NewStaticKeyProvider(testSecret))
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	valid := jwt.MapClaims{
		"sub":   "alice",
		"iss":   "fontops",
		"aud":   "admin",
		"exp":   exp.Unix(),
		"roles": []any{RoleAdmin, "viewer"},
	}
	with := func(k string, v any) jwt.MapClaims {
		c := jwt.MapClaims{}
		for ck, cv := range valid {
			c[ck] = cv
		}
		c[k] = v
		return c
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"valid", sign(t, jwt.SigningMethodHS256, testSecret, valid), nil},
		{"expired", sign(t, jwt.SigningMethodHS256, testSecret, with("exp", time.Now().Add(-time.Hour).Unix())), ErrTokenExpired},
		{"wrong issuer", sign(t, jwt.SigningMethodHS256, testSecret, with("iss", "other")), ErrInvalidCredentials},
		{"wrong audience", sign(t, jwt.SigningMethodHS256, testSecret, with("aud", "public")), ErrInvalidCredentials},
		{"wrong key", sign(t, jwt.SigningMethodHS256, []byte("nope"), valid), ErrInvalidCredentials},
		{"unsigned", sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid), ErrInvalidCredentials},
		{"garbage", "not.a.jwt", ErrTokenMalformed},
		{"empty", "", ErrMissingCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.Authenticate(context.Background(), requestWith("Authorization", "Bearer "+tt.token))
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if tt.wantErr != nil {
				if res.Authenticated || !errors.Is(res.Error, tt.wantErr) {
					t.Errorf("Authenticate() = %+v, want failure %v", res, tt.wantErr)
				}
				return
			}
			if !res.Authenticated {
				t.Fatalf("Authenticate() failed: %v", res.Error)
			}
			id := res.Identity
			if id.Principal != "alice" || id.Method != AuthMethodJWT {
				t.Errorf("identity = %+v, want principal alice via jwt", id)
			}
			if !id.HasRole(RoleAdmin) || !id.HasRole("viewer") {
				t.Errorf("Roles = %v", id.Roles)
			}
			if !id.ExpiresAt.Equal(exp) {
				t.Errorf("ExpiresAt = %v, want %v", id.ExpiresAt, exp)
			}
		})
	}
}

func TestJWTAuthenticator_RolesAsString(t *testing.T) {
	a := NewJWTAuthenticator(JWTConfig{RolesClaim: "scope"}, NewStaticKeyProvider(testSecret))
	token := sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "ci", "scope": "fonts:admin fonts:read"})

	res, err := a.Authenticate(context.Background(), requestWith("Authorization", "Bearer "+token))
	if err != nil || !res.Authenticated {
		t.Fatalf("Authenticate() = %+v, %v", res, err)
	}
	if len(res.Identity.Roles) != 2 || !res.Identity.HasRole(RoleAdmin) {
		t.Errorf("Roles = %v, want [fonts:admin fonts:read]", res.Identity.Roles)
	}
}
