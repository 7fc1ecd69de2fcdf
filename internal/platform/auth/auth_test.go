package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "test-secret", Issuer: "campus-hub.test"}

func TestParseRoundTrip(t *testing.T) {
	token, err := Sign(Claims{
		Subject:   "user-1",
		Role:      RoleAdmin,
		Scopes:    map[string]struct{}{"activities:write": {}},
		ExpiresAt: time.Now().Add(time.Hour),
	}, testConfig)
	require.NoError(t, err)

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.True(t, claims.IsAdmin())
	require.True(t, claims.HasScope("activities:write"))
	require.False(t, claims.HasScope("activities:read"))
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := Sign(Claims{Subject: "user-1", ExpiresAt: time.Now().Add(time.Hour)}, Config{Secret: "other", Issuer: testConfig.Issuer})
	require.NoError(t, err)

	_, err = Parse(token, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := Sign(Claims{Subject: "user-1", ExpiresAt: time.Now().Add(-time.Minute)}, testConfig)
	require.NoError(t, err)

	_, err = Parse(token, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseDefaultsToMemberRole(t *testing.T) {
	token, err := Sign(Claims{Subject: "user-2", ExpiresAt: time.Now().Add(time.Hour)}, testConfig)
	require.NoError(t, err)

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.Equal(t, RoleMember, claims.Role)
	require.False(t, claims.IsAdmin())
}

func TestModerationScopeGrantsAdmin(t *testing.T) {
	token, err := Sign(Claims{
		Subject:   "mod-1",
		Scopes:    map[string]struct{}{ScopeModerate: {}},
		ExpiresAt: time.Now().Add(time.Hour),
	}, testConfig)
	require.NoError(t, err)

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.Equal(t, RoleMember, claims.Role)
	require.True(t, claims.IsAdmin())
	require.False(t, (*Claims)(nil).IsAdmin())
}

func TestMiddlewareUsesErrorHandler(t *testing.T) {
	mw := NewMiddleware(testConfig, nil)
	mw.OnError = func(w http.ResponseWriter, _ *http.Request, err error) {
		require.ErrorIs(t, err, ErrInvalidToken)
		w.WriteHeader(http.StatusTeapot)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/activities", nil)
	req.Header.Set("Authorization", "Basic abc")
	rr := httptest.NewRecorder()
	mw.Wrap(http.NotFoundHandler()).ServeHTTP(rr, req)

	require.Equal(t, http.StatusTeapot, rr.Code)
}

func TestMiddlewareAllowsAnonymousRequests(t *testing.T) {
	var sawClaims bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawClaims = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	NewMiddleware(testConfig, nil).Wrap(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/activities", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.False(t, sawClaims)
}

func TestMiddlewareRejectsInvalidToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/activities", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := httptest.NewRecorder()
	NewMiddleware(testConfig, nil).Wrap(next).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMiddlewareStoresClaims(t *testing.T) {
	token, err := Sign(Claims{Subject: "user-3", ExpiresAt: time.Now().Add(time.Hour)}, testConfig)
	require.NoError(t, err)

	var subject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = SubjectFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodPost, "/api/activities/a/signup", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	NewMiddleware(testConfig, nil).Wrap(next).ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "user-3", subject)
}
