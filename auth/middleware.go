package auth

import (
	"fmt"
	"net/http"
)

// DenyFunc writes the response for a rejected request. err wraps one of
// the package's sentinel errors.
type DenyFunc func(w http.ResponseWriter, r *http.Request, status int, err error)

// MiddlewareConfig configures Middleware.
type MiddlewareConfig struct {
	// Authenticator validates credentials. Required.
	Authenticator Authenticator

	// Role, when set, must be held by the identity.
	Role string

	// Deny writes rejections. Default: http.Error with the error text.
	Deny DenyFunc
}

// Middleware returns HTTP middleware that rejects requests without valid
// credentials with 401, and authenticated requests lacking Role with 403.
// Accepted requests carry the identity in their context.
func Middleware(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	deny := cfg.Deny
	if deny == nil {
		deny = func(w http.ResponseWriter, _ *http.Request, status int, err error) {
			http.Error(w, err.Error(), status)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			result, err := cfg.Authenticator.Authenticate(ctx, NewAuthRequest(r))
			if err != nil {
				deny(w, r, http.StatusInternalServerError, fmt.Errorf("auth: %w", err))
				return
			}
			if !result.Authenticated {
				deny(w, r, http.StatusUnauthorized, result.Error)
				return
			}
			if cfg.Role != "" && !result.Identity.HasRole(cfg.Role) {
				deny(w, r, http.StatusForbidden, fmt.Errorf("%w: role %q required", ErrForbidden, cfg.Role))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, result.Identity)))
		})
	}
}
