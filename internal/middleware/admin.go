package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/revival/clans/pkg/jwt"
)

const adminClaimsKey contextKey = "adminClaims"

// TokenValidator validates admin bearer tokens.
type TokenValidator interface {
	Validate(token string) (*jwt.Claims, error)
}

// Admin authenticates the JSON admin surface with a bearer token carrying
// the admin role.
func Admin(tokens TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeAdminError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeAdminError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := tokens.Validate(parts[1])
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					writeAdminError(w, http.StatusUnauthorized, "token expired")
					return
				}
				writeAdminError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if !claims.IsAdmin() {
				writeAdminError(w, http.StatusForbidden, "admin role required")
				return
			}

			ctx := context.WithValue(r.Context(), adminClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminClaims extracts the admin token claims from context.
func AdminClaims(ctx context.Context) *jwt.Claims {
	if claims, ok := ctx.Value(adminClaimsKey).(*jwt.Claims); ok {
		return claims
	}
	return nil
}

func writeAdminError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + detail + `"}`))
}
