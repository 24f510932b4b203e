package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
	"github.com/nitap-dev/mentor-portal-api/internal/policy"
	appErrors "github.com/nitap-dev/mentor-portal-api/pkg/errors"
	"github.com/nitap-dev/mentor-portal-api/pkg/response"
)

// RequireRoles gates a route on the resolved scope holding at least one of
// the given capabilities. Gating on the scope instead of the stored role
// lets a faculty member with an open HOD appointment through HOD routes.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		scopeValue, exists := c.Get(ContextScopeKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		scope := scopeValue.(*policy.Scope)

		for _, role := range roles {
			if scope.Has(role) {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
