package auth

import (
	"context"

	authlib "github.com/Maqingtian/campus-hub/internal/platform/auth"
)

// Claims mirrors the shared auth claims type for service convenience.
type Claims = authlib.Claims

// Config mirrors the shared auth config.
type Config = authlib.Config

// WithClaims stores the claims in the request context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return authlib.WithClaims(ctx, claims)
}

// FromContext retrieves claims from context.
func FromContext(ctx context.Context) (*Claims, bool) {
	return authlib.FromContext(ctx)
}

// Member builds claims for a regular signed-in user.
func Member(userID string) *Claims {
	return &Claims{Subject: userID, Role: authlib.RoleMember, Scopes: map[string]struct{}{}}
}

// Admin builds claims for a moderator.
func Admin(userID string) *Claims {
	return &Claims{Subject: userID, Role: authlib.RoleAdmin, Scopes: map[string]struct{}{}}
}
