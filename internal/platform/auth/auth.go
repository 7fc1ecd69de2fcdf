package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds signer verification parameters for campus-hub bearer tokens.
type Config struct {
	Secret string
	Issuer string
}

// Role identifies the privilege level carried by a token.
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
)

// ScopeModerate grants moderation rights to tokens without the admin role.
const ScopeModerate = "activities:moderate"

// Claims represents the payload extracted from a JWT.
type Claims struct {
	Subject   string
	Role      Role
	Scopes    map[string]struct{}
	ExpiresAt time.Time
}

// ErrMissingToken is returned when the Authorization header is absent.
var ErrMissingToken = errors.New("missing bearer token")

// ErrInvalidToken wraps parsing/validation errors.
var ErrInvalidToken = errors.New("invalid bearer token")

// Parse validates a JWT and returns normalized claims.
func Parse(token string, cfg Config) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return nil, ErrInvalidToken
	}

	role := RoleMember
	if raw, _ := claims["role"].(string); strings.EqualFold(raw, string(RoleAdmin)) {
		role = RoleAdmin
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	var expiresAt time.Time
	if exp != nil {
		expiresAt = exp.Time
	}

	return &Claims{
		Subject:   subject,
		Role:      role,
		Scopes:    normalizeScopes(claims["scopes"]),
		ExpiresAt: expiresAt,
	}, nil
}

// Sign issues an HS256 token for the supplied claims. Used by tooling and tests.
func Sign(claims Claims, cfg Config) (string, error) {
	scopes := make([]string, 0, len(claims.Scopes))
	for scope := range claims.Scopes {
		scopes = append(scopes, scope)
	}
	mapClaims := jwt.MapClaims{
		"sub":    claims.Subject,
		"role":   string(claims.Role),
		"scopes": scopes,
	}
	if cfg.Issuer != "" {
		mapClaims["iss"] = cfg.Issuer
	}
	if !claims.ExpiresAt.IsZero() {
		mapClaims["exp"] = claims.ExpiresAt.Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims).SignedString([]byte(cfg.Secret))
}

func normalizeScopes(value interface{}) map[string]struct{} {
	out := make(map[string]struct{})
	switch v := value.(type) {
	case []interface{}:
		for _, item := range v {
			if str, ok := item.(string); ok && str != "" {
				out[str] = struct{}{}
			}
		}
	case []string:
		for _, str := range v {
			if str != "" {
				out[str] = struct{}{}
			}
		}
	case string:
		for _, str := range strings.Split(v, " ") {
			str = strings.TrimSpace(str)
			if str != "" {
				out[str] = struct{}{}
			}
		}
	}
	return out
}

// HasScope reports whether the claim set includes the provided scope.
func (c *Claims) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	_, ok := c.Scopes[scope]
	return ok
}

// IsAdmin reports whether the caller carries the admin role or the moderation scope.
func (c *Claims) IsAdmin() bool {
	return c != nil && (c.Role == RoleAdmin || c.HasScope(ScopeModerate))
}
