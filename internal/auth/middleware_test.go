package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/straye-as/quotation-api/internal/auth"
	"github.com/straye-as/quotation-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-secret"

func scopeEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, ok := auth.FromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("X-Resolved-Source", string(scope.Source))
		_, _ = w.Write([]byte(scope.ID))
	})
}

func token(t *testing.T, key, scope string, expires time.Time) string {
	t.Helper()
	signed, err := auth.NewTokenValidator(key).IssueToken(scope, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	require.NoError(t, err)
	return signed
}

func TestMiddleware_ScopePrecedence(t *testing.T) {
	m := auth.NewMiddleware(&config.AuthConfig{
		JWTSecret:        secret,
		AllowHeaderScope: true,
		DefaultScope:     "shared",
	}, zap.NewNop())
	handler := m.Scope(scopeEcho())
	valid := token(t, secret, "tenant-a", time.Now().Add(time.Hour))

	tests := []struct {
		name       string
		authHeader string
		scopeID    string
		wantStatus int
		wantScope  string
		wantSource string
	}{
		{name: "token wins over header", authHeader: "Bearer " + valid, scopeID: "tenant-b",
			wantStatus: http.StatusOK, wantScope: "tenant-a", wantSource: "token"},
		{name: "header without token", scopeID: "tenant-b",
			wantStatus: http.StatusOK, wantScope: "tenant-b", wantSource: "header"},
		{name: "default", wantStatus: http.StatusOK, wantScope: "shared", wantSource: "default"},
		{name: "bad signature", authHeader: "Bearer " + token(t, "other", "tenant-a", time.Now().Add(time.Hour)),
			wantStatus: http.StatusUnauthorized},
		{name: "expired", authHeader: "Bearer " + token(t, secret, "tenant-a", time.Now().Add(-time.Hour)),
			wantStatus: http.StatusUnauthorized},
		{name: "not bearer", authHeader: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized},
		{name: "invalid scope header", scopeID: "../etc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/companies", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.scopeID != "" {
				req.Header.Set(auth.ScopeHeader, tt.scopeID)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantScope, rec.Body.String())
				assert.Equal(t, tt.wantSource, rec.Header().Get("X-Resolved-Source"))
			}
		})
	}
}

func TestMiddleware_HeaderScopeDisabled(t *testing.T) {
	m := auth.NewMiddleware(&config.AuthConfig{}, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(auth.ScopeHeader, "tenant-b")
	rec := httptest.NewRecorder()

	m.Scope(scopeEcho()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "default", rec.Body.String())
}

func TestTokenValidator(t *testing.T) {
	v := auth.NewTokenValidator(secret)

	sub, err := v.ValidateToken(token(t, secret, "tenant-a", time.Now().Add(time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", sub)

	_, err = v.ValidateToken(token(t, secret, "tenant-a", time.Now().Add(-time.Minute)))
	assert.ErrorIs(t, err, auth.ErrExpiredToken)

	_, err = v.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = auth.NewTokenValidator("").ValidateToken(token(t, secret, "tenant-a", time.Now().Add(time.Minute)))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
