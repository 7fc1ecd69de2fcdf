package auth

import (
	"net/http"

	authlib "github.com/Maqingtian/campus-hub/internal/platform/auth"
)

// Middleware resolves the acting identity from bearer tokens on incoming requests.
type Middleware struct {
	inner authlib.Middleware
}

// NewMiddleware constructs Middleware with validation config. Rejected tokens
// get the API error envelope.
func NewMiddleware(cfg Config) Middleware {
	skipper := func(r *http.Request) bool {
		return r.URL.Path == "/healthz" || r.URL.Path == "/metrics"
	}
	inner := authlib.NewMiddleware(cfg, skipper)
	inner.OnError = writeUnauthorized
	return Middleware{inner: inner}
}

// Wrap attaches authentication handling to an http.Handler.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return m.inner.Wrap(next)
}

func writeUnauthorized(w http.ResponseWriter, _ *http.Request, _ error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"ok":false,"error":"Unauthorized"}` + "\n"))
}
