package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flashfix/internal/domain"
	"flashfix/internal/pkg/response"
)

// RequireRole ensures that the authenticated user has one of the allowed roles.
func RequireRole(allowed ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleAny, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}

		role := domain.UserRole(roleAny.(string))
		for _, a := range allowed {
			if role == a {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "Insufficient permissions for this operation")
		c.Abort()
	}
}

// AdminOnly middleware requires admin role
func AdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}

// TechnicianOnly middleware requires technician role
func TechnicianOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleTechnician)
}
