package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nitap-dev/mentor-portal-api/internal/middleware"
	"github.com/nitap-dev/mentor-portal-api/internal/models"
	"github.com/nitap-dev/mentor-portal-api/internal/policy"
)

func currentClaims(c *gin.Context) *models.SessionClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.SessionClaims)
	return claims
}

func currentScope(c *gin.Context) *policy.Scope {
	value, exists := c.Get(middleware.ContextScopeKey)
	if !exists {
		return nil
	}
	scope, _ := value.(*policy.Scope)
	return scope
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
