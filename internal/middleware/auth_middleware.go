package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/farellandr/influencehub/internal/helpers"
	"github.com/farellandr/influencehub/internal/payments"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	userIDKey = "user_id"
	roleKey   = "role"
)

// JWTAuthMiddleware verifies the bearer token and stores the caller's
// user_id and role on the context.
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Authorization header required.")
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid authorization header.")
			return
		}

		claims, err := helpers.ParseToken(secret, strings.TrimSpace(token))
		if err != nil {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token.")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

// RequireRoles rejects callers whose role is not listed. It must run after
// JWTAuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFromContext(c)
		if !ok {
			helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
			return
		}
		if !slices.Contains(roles, caller.Role) {
			helpers.RespondWithError(c, http.StatusForbidden, "Insufficient role for this action.")
			return
		}
		c.Next()
	}
}

func CallerFromContext(c *gin.Context) (payments.Caller, bool) {
	rawID, exists := c.Get(userIDKey)
	if !exists {
		return payments.Caller{}, false
	}
	userID, ok := rawID.(uuid.UUID)
	if !ok {
		return payments.Caller{}, false
	}
	return payments.Caller{ID: userID, Role: c.GetString(roleKey)}, true
}
