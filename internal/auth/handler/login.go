package handler

import (
	"net/http"

	"cattlesense/internal/guard"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	u, err := h.credentialService.Authenticate(
		c.Request.Context(),
		req.Email,
		req.Password,
	)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := h.startSession(c, u.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	resp := gin.H{
		"status": "logged_in",
		"user":   userSummary(u),
	}

	// The login page carries the originally attempted path; hand it back
	// validated so the client resumes there.
	if next, ok := guard.SafeNext(c.Query("next")); ok {
		resp["redirect_to"] = next
	}

	c.JSON(http.StatusOK, resp)
}
