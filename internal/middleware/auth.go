// internal/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/edutour-mailer/internal/config"
	"github.com/unclebandit/edutour-mailer/internal/handler"
)

type ctxKey int

const userKey ctxKey = iota

// UserID returns the authenticated subject, if any.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userKey).(string)
	return id, ok && id != ""
}

// WithUserID stores id as the authenticated subject.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userKey, id)
}

// JWTAuth checks the bearer token on every request. With auth disabled the
// request passes through without a subject.
func JWTAuth(conf config.AuthConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	secret := []byte(conf.JWTSecret)
	const bearer = "Bearer "

	return func(next http.Handler) http.Handler {
		if conf.Disabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				reject(w, "Authorization header is required")
				return
			}
			if !strings.HasPrefix(header, bearer) {
				reject(w, "Authorization header must start with Bearer ")
				return
			}

			token, err := jwt.Parse(header[len(bearer):], func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return secret, nil
			})
			if err != nil {
				logger.Debug("token rejected", zap.Error(err))
				if errors.Is(err, jwt.ErrTokenExpired) {
					reject(w, "Token has expired")
				} else {
					reject(w, "Invalid token")
				}
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok || !token.Valid {
				reject(w, "Invalid token claims")
				return
			}
			sub, _ := claims.GetSubject()
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), sub)))
		})
	}
}

func reject(w http.ResponseWriter, msg string) {
	handler.WriteJSON(w, http.StatusUnauthorized, handler.ErrorBody{Error: msg})
}
