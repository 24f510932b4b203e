package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
	"github.com/nitap-dev/mentor-portal-api/internal/service"
	"github.com/nitap-dev/mentor-portal-api/pkg/config"
	appErrors "github.com/nitap-dev/mentor-portal-api/pkg/errors"
	"github.com/nitap-dev/mentor-portal-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service. The session token
// travels only in an HTTP-only cookie, never in the response body.
type AuthHandler struct {
	service *service.AuthService
	config  config.SessionConfig
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService, cfg config.SessionConfig) *AuthHandler {
	return &AuthHandler{service: svc, config: cfg}
}

// Login godoc
// @Summary Authenticate principal
// @Description Authenticate by email and password, setting the session cookie
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, res.Token, int(h.config.TTL.Seconds()))
	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary Logout current session
// @Description Revoke the session and clear the cookie
// @Tags Authentication
// @Produce json
// @Success 204 "No Content"
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(h.config.CookieName)
	if err == nil && token != "" {
		if err := h.service.Logout(c.Request.Context(), token); err != nil {
			response.Error(c, err)
			return
		}
	}
	h.setSessionCookie(c, "", -1)
	response.NoContent(c)
}

// Me godoc
// @Summary Current principal
// @Description Return the authenticated principal's identity
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, models.PrincipalInfo{
		ID:    claims.PrincipalID,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil)
}

// ChangePassword godoc
// @Summary Change password
// @Description Verify the old password and set a new one
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.ChangePasswordRequest true "Change password payload"
// @Success 204 "No Content"
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid change password payload"))
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), claims, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.config.CookieName, token, maxAge, "/", h.config.CookieDomain, h.config.CookieSecure, true)
}
