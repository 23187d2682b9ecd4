package handler

import (
	"errors"
	"net/http"

	"cattlesense/internal/auth/credentials"
	"cattlesense/internal/logger"

	"github.com/gin-gonic/gin"
)

type resetRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestPasswordReset always accepts; whether the address is registered is
// not revealed.
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req resetRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.credentialService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		logger.Error("password reset request failed", map[string]any{
			"error": err.Error(),
		})
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

type resetConfirmBody struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) ConfirmPasswordReset(c *gin.Context) {
	var req resetConfirmBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.credentialService.ConfirmPasswordReset(c.Request.Context(), req.Token, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "password_updated"})
	case errors.Is(err, credentials.ErrInvalidResetToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
	case errors.Is(err, credentials.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update password"})
	}
}
