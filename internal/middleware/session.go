package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/nitap-dev/mentor-portal-api/internal/policy"
	"github.com/nitap-dev/mentor-portal-api/internal/service"
	appErrors "github.com/nitap-dev/mentor-portal-api/pkg/errors"
	"github.com/nitap-dev/mentor-portal-api/pkg/response"
)

// ContextUserKey is the gin context key storing session claims.
const ContextUserKey = "currentUser"

// ContextScopeKey is the gin context key storing the resolved access scope.
const ContextScopeKey = "currentScope"

// Session protects routes by requiring a live session cookie. The token is
// validated against both its signature and the session store, and the
// principal's access scope is resolved fresh for every request.
func Session(authService *service.AuthService, resolver *policy.Resolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := authService.Resolve(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		scope, err := resolver.Resolve(c.Request.Context(), claims.PrincipalID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextScopeKey, scope)
		c.Next()
	}
}
