package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/getsy/restaurant-backend/internal/api"
	"github.com/getsy/restaurant-backend/internal/service"
)

// contextKey is a type for context keys
type contextKey string

// Context keys
const (
	UserIDKey contextKey = "userID"
	RoleIDKey contextKey = "roleID"
)

// TokenValidator checks a session token and returns its claims
type TokenValidator interface {
	ValidateToken(tokenString string) (*service.Claims, error)
}

// Auth middleware for authenticating requests. Browsers cannot set headers
// on a WebSocket handshake, so the token may also arrive as ?token=.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				api.Unauthorized(w, "Authorization header required")
				return
			}

			claims, err := validator.ValidateToken(tokenString)
			if err != nil {
				api.Unauthorized(w, "Invalid or expired token")
				return
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				api.Unauthorized(w, "Invalid token subject")
				return
			}
			roleID, err := uuid.Parse(claims.RoleID)
			if err != nil {
				api.Unauthorized(w, "Invalid token role")
				return
			}

			ctx := WithUser(r.Context(), userID, roleID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		token := r.URL.Query().Get("token")
		return token, token != ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireRole middleware for checking user roles
func RequireRole(roleIDs ...uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRoleID(r.Context())
			if !ok {
				api.Unauthorized(w, "Unauthorized")
				return
			}

			for _, allowed := range roleIDs {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			api.Forbidden(w, "Forbidden")
		})
	}
}

// WithUser stores the authenticated user in ctx
func WithUser(ctx context.Context, userID, roleID uuid.UUID) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, RoleIDKey, roleID)
}

// Helper functions for extracting values from context
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return id, ok
}

func GetRoleID(ctx context.Context) (uuid.UUID, bool) {
	role, ok := ctx.Value(RoleIDKey).(uuid.UUID)
	return role, ok
}
