package middleware

import (
	"net/http"

	"github.com/dlopezm/gin-task-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireRole rejects requests whose principal does not carry the
// required role. Must run after JWTAuth.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.NewUnauthenticatedError("Missing token"))
			c.Abort()
			return
		}

		if principal.Role != requiredRole {
			c.JSON(http.StatusForbidden, models.NewForbiddenError("Insufficient permissions"))
			c.Abort()
			return
		}

		c.Next()
	}
}
