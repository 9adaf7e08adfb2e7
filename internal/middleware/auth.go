package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/invoicer/internal/auth"
	"github.com/mmynk/invoicer/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// UserKey is the key the authenticated user is stored under, both in the
// gin context and in the request context.
const UserKey contextKey = "user"

// TokenResolver turns a bearer token into the user it was issued to.
type TokenResolver interface {
	UserFromToken(ctx context.Context, token string) (*models.User, error)
}

// GetUser returns the authenticated user, or nil before RequireAuth ran.
func GetUser(c *gin.Context) *models.User {
	v, ok := c.Get(string(UserKey))
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// GetUserID returns the authenticated user's ID, or "" if not authenticated.
func GetUserID(c *gin.Context) string {
	if user := GetUser(c); user != nil {
		return user.ID
	}
	return ""
}

// UserFromContext extracts the authenticated user from a request context.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserKey).(*models.User)
	return user
}

// RequireAuth returns a middleware that validates the bearer token in the
// Authorization header, loads its user and stores it on the context.
func RequireAuth(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			Abort(c, http.StatusUnauthorized, CodeUnauthorized, auth.ErrMissingToken.Error(), nil)
			return
		}

		// Parse Bearer token
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			Abort(c, http.StatusUnauthorized, CodeUnauthorized, auth.ErrInvalidToken.Error(), nil)
			return
		}

		user, err := resolver.UserFromToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				Abort(c, http.StatusUnauthorized, CodeUnauthorized, auth.ErrInvalidToken.Error(), nil)
				return
			}
			slog.Error("Failed to resolve token", "error", err)
			Abort(c, http.StatusInternalServerError, CodeInternal, "internal server error", nil)
			return
		}

		c.Set(string(UserKey), user)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), UserKey, user))
		c.Next()
	}
}

// RequireSuperAdmin rejects authenticated users without the super-admin
// flag. It must run after RequireAuth.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			Abort(c, http.StatusUnauthorized, CodeUnauthorized, auth.ErrMissingToken.Error(), nil)
			return
		}
		if !user.IsSuperAdmin {
			Abort(c, http.StatusForbidden, CodeForbidden, "super-admin access required", nil)
			return
		}
		c.Next()
	}
}
