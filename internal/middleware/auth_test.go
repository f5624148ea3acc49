package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unclebandit/edutour-mailer/internal/config"
	"github.com/unclebandit/edutour-mailer/internal/middleware"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func protected(conf config.AuthConfig, seen *string) http.Handler {
	return middleware.JWTAuth(conf, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen, _ = middleware.UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestJWTAuth(t *testing.T) {
	conf := config.AuthConfig{JWTSecret: secret}

	tests := []struct {
		name   string
		header string
		status int
		user   string
	}{
		{name: "missing header", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", status: http.StatusUnauthorized},
		{
			name:   "expired",
			header: "Bearer " + sign(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}),
			status: http.StatusUnauthorized,
		},
		{
			name:   "valid",
			header: "Bearer " + sign(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()}),
			status: http.StatusNoContent,
			user:   "u1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			req := httptest.NewRequest(http.MethodGet, "/campaigns", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			protected(conf, &seen).ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.user, seen)
		})
	}
}

func TestJWTAuthExpiredMessage(t *testing.T) {
	var seen string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()}))
	w := httptest.NewRecorder()
	protected(config.AuthConfig{JWTSecret: secret}, &seen).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token has expired")
}

func TestJWTAuthDisabled(t *testing.T) {
	var seen string
	w := httptest.NewRecorder()
	protected(config.AuthConfig{Disabled: true}, &seen).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, seen)
}
