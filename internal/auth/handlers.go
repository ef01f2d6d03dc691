package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mytrader-platform/internal/domain"
)

// Handlers contains the auth HTTP handlers
type Handlers struct {
	service *Service
}

// NewHandlers creates a new Handlers instance
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// Register handles trader registration
// POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "VALIDATION_ERROR",
			"message": err.Error(),
		})
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		writeAuthError(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "registration successful",
		"user":    ToUserResponse(user),
	})
}

// Login handles user login
// POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "VALIDATION_ERROR",
			"message": err.Error(),
		})
		return
	}

	response, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		writeAuthError(c, err, http.StatusUnauthorized)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Refresh handles token refresh
// POST /api/auth/refresh
func (h *Handlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "VALIDATION_ERROR",
			"message": err.Error(),
		})
		return
	}

	response, err := h.service.RefreshTokens(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeAuthError(c, err, http.StatusUnauthorized)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Logout revokes the presented refresh token
// POST /api/auth/logout
func (h *Handlers) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "VALIDATION_ERROR",
			"message": err.Error(),
		})
		return
	}

	if err := h.service.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "INTERNAL_ERROR",
			"message": "failed to logout",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// ChangePassword handles a password change for the authenticated user
// POST /api/auth/change-password
func (h *Handlers) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "VALIDATION_ERROR",
			"message": err.Error(),
		})
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), GetUserID(c), req); err != nil {
		writeAuthError(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

// writeAuthError maps service errors to HTTP responses. AuthError codes
// pick their own status; domain validation errors become 400.
func writeAuthError(c *gin.Context, err error, fallbackStatus int) {
	if authErr, ok := err.(AuthError); ok {
		status := fallbackStatus
		switch authErr.Code {
		case ErrEmailExists.Code:
			status = http.StatusConflict
		case ErrAccountSuspended.Code, ErrAccountDeleted.Code, ErrForbidden.Code:
			status = http.StatusForbidden
		case ErrInvalidCredentials.Code, ErrInvalidToken.Code, ErrTokenExpired.Code:
			status = http.StatusUnauthorized
		case ErrWeakPassword.Code:
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"error":   authErr.Code,
			"message": authErr.Message,
		})
		return
	}

	if domain.IsValidation(err) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "VALIDATION_ERROR",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "INTERNAL_ERROR",
		"message": "request failed",
	})
}
