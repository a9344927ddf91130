package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/citypulse/citypulse/internal/apperr"
	"github.com/citypulse/citypulse/internal/auth"
)

type claimsKey struct{}

// Authenticate validates the bearer token and stores its claims in the
// request context.
func Authenticate(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, apperr.Auth("Missing authorization header"))
				return
			}

			const bearerPrefix = "Bearer "
			if len(header) <= len(bearerPrefix) ||
				!strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
				writeError(w, apperr.Auth("Invalid authorization header"))
				return
			}

			claims, err := jwtService.ValidateToken(header[len(bearerPrefix):])
			if err != nil {
				writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects authenticated requests whose token does not carry
// the admin role. Must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r.Context())
		if claims == nil {
			writeError(w, apperr.Auth("Missing authorization header"))
			return
		}
		if claims.Role != auth.RoleAdmin {
			writeError(w, apperr.Authorization("Admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetClaims retrieves the validated token claims from the context, or nil
// for unauthenticated requests.
func GetClaims(ctx context.Context) *auth.Claims {
	if claims, ok := ctx.Value(claimsKey{}).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// writeError duplicates the response package's error body here to avoid an
// import cycle.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.Status(err))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
