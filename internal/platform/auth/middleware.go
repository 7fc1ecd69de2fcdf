package auth

import (
	"errors"
	"net/http"
	"strings"
)

// Skipper allows callers to bypass authentication for specific requests.
type Skipper func(r *http.Request) bool

// ErrorHandler writes the response for a rejected token.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Middleware provides HTTP middleware for bearer-token validation.
//
// Requests without an Authorization header pass through anonymously so that
// public reads keep working; handlers decide whether an identity is required.
// A header that is present but invalid is always rejected.
type Middleware struct {
	Config  Config
	Skipper Skipper
	// OnError defaults to a plain-text 401.
	OnError ErrorHandler
}

// NewMiddleware constructs a middleware with optional skipper.
func NewMiddleware(cfg Config, skipper Skipper) Middleware {
	return Middleware{Config: cfg, Skipper: skipper}
}

// Wrap wraps an http.Handler with authentication.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Skipper != nil && m.Skipper(r) {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.parseRequest(r)
		if errors.Is(err, ErrMissingToken) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			if m.OnError != nil {
				m.OnError(w, r, err)
				return
			}
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		ctx := WithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m Middleware) parseRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrMissingToken
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return nil, ErrInvalidToken
	}
	token := strings.TrimSpace(header[len("Bearer "):])
	if token == "" {
		return nil, ErrInvalidToken
	}
	return Parse(token, m.Config)
}
