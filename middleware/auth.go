package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// Authenticate validates the Bearer token on incoming requests and
// stores its claims in the request context.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeAuthError(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeAuthError(w, "invalid authorization header format")
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				writeAuthError(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, "{\n\t\"error\": %q\n}\n", message)
}

func claimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(jwt.MapClaims)
	return claims, ok
}

// UserIDFromContext extracts the authenticated user id set by
// Authenticate. JSON numbers decode as float64.
func UserIDFromContext(ctx context.Context) (int, error) {
	claims, ok := claimsFromContext(ctx)
	if !ok {
		return 0, errors.New("no authentication claims in context")
	}
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.New("token has no user_id claim")
	}
	return int(id), nil
}

// RoleFromContext extracts the role claim, empty when absent.
func RoleFromContext(ctx context.Context) string {
	claims, ok := claimsFromContext(ctx)
	if !ok {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}
