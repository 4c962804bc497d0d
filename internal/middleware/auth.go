// internal/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-api/internal/i18n"
	"github.com/javajoker/storefront-api/internal/models"
	"github.com/javajoker/storefront-api/internal/utils"
)

// Authenticator resolves a bearer token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, i18n.KeyAuthRequired)
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, i18n.KeyAuthRequired)
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			utils.HandleError(c, err)
			c.Abort()
			return
		}

		// Set user info in context
		c.Set(utils.ContextKeyUser, user)
		c.Set(utils.ContextKeyUserID, user.ID)
		c.Set(utils.ContextKeyLogger, utils.GetLogger(c).WithField("user_id", user.ID))
		c.Next()
	}
}

func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := utils.GetUserFromContext(c)
		if !ok || !user.IsAdmin() {
			utils.AbortWithError(c, http.StatusForbidden, i18n.KeyAdminAccessDenied)
			return
		}
		c.Next()
	}
}
