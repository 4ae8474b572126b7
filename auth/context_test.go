package auth

import (
	"context"
	"testing"
	"time"
)

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	if IdentityFromContext(ctx) != nil || PrincipalFromContext(ctx) != "" {
		t.Fatal("empty context carries an identity")
	}

	id := &Identity{Principal: "ops", Roles: []string{RoleAdmin}}
	ctx = WithIdentity(ctx, id)
	if got := IdentityFromContext(ctx); got != id {
		t.Errorf("IdentityFromContext() = %v, want %v", got, id)
	}
	if got := PrincipalFromContext(ctx); got != "ops" {
		t.Errorf("PrincipalFromContext() = %q, want ops", got)
	}
}

func TestIdentity_IsExpired(t *testing.T) {
	now := time.Unix(1000, 0)
	tests := []struct {
		name string
		exp  time.Time
		want bool
	}{
		{"never", time.Time{}, false},
		{"future", now.Add(time.Second), false},
		{"past", now.Add(-time.Second), true},
	}
	for _, tt := range tests {
		id := &Identity{ExpiresAt: tt.exp}
		if got := id.IsExpired(now); got != tt.want {
			t.Errorf("%s: IsExpired() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
