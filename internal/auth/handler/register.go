package handler

import (
	"errors"
	"net/http"

	"cattlesense/internal/auth/credentials"
	"cattlesense/internal/user"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"required"`
	Name     string    `json:"name"`
	Role     user.Role `json:"role"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	u, err := h.credentialService.Register(
		c.Request.Context(),
		req.Email,
		req.Password,
		req.Name,
		req.Role,
	)

	if err != nil {
		switch {
		case errors.Is(err, credentials.ErrAlreadyRegistered):
			c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
		case errors.Is(err, credentials.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	if err := h.startSession(c, u.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "registered",
		"user":   userSummary(u),
	})
}
