package auth

import "context"

type contextKey string

const claimsKey contextKey = "campus-hub-auth-claims"

// WithClaims stores claims on the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// FromContext retrieves claims stored by WithClaims.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok && claims != nil
}

// SubjectFromContext returns the acting user id, or "" for anonymous callers.
func SubjectFromContext(ctx context.Context) string {
	if claims, ok := FromContext(ctx); ok {
		return claims.Subject
	}
	return ""
}
