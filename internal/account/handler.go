package account

import (
	"errors"
	"net/http"

	"cattlesense/internal/auth/credentials"
	"cattlesense/internal/middleware"
	"cattlesense/internal/session"
	"cattlesense/internal/user"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the account API under an authenticated group.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/me", h.me)
	r.PATCH("/me", h.updateProfile)
	r.PUT("/me/settings", h.updateSettings)
	r.POST("/me/password", h.changePassword)
	r.DELETE("/me", h.deleteAccount)
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.service.Me(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                  u.ID,
		"email":               u.Email,
		"display_name":        u.DisplayName,
		"role":                u.Role,
		"photo_url":           u.PhotoURL,
		"phone":               u.Phone,
		"is_active":           u.IsActive,
		"is_profile_complete": u.IsProfileComplete,
		"onboarding_step":     u.OnboardingStep,
		"settings":            u.Settings,
		"created_at":          u.CreatedAt,
		"updated_at":          u.UpdatedAt,
	})
}

type profileUpdateRequest struct {
	DisplayName *string `json:"display_name"`
	PhotoURL    *string `json:"photo_url"`
	Phone       *string `json:"phone"`
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.service.UpdateProfile(c.Request.Context(), c.GetString("userID"), user.ProfileUpdate{
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		Phone:       req.Phone,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) updateSettings(c *gin.Context) {
	var settings user.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	merged, err := h.service.UpdateSettings(c.Request.Context(), c.GetString("userID"), settings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated", "settings": merged})
}

type changePasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

func (h *Handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.service.ChangePassword(c.Request.Context(), c.GetString("userID"), req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "password_updated"})
	case errors.Is(err, credentials.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update password"})
	}
}

func (h *Handler) deleteAccount(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	err := h.service.Delete(c.Request.Context(), sess)
	switch {
	case err == nil:
		session.ClearCookie(c.Writer, session.CookieOptions{
			Path:     "/",
			Secure:   true,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		c.Status(http.StatusNoContent)
	case errors.Is(err, ErrReauthRequired):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "recent login required",
			"code":  "reauth_required",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete account"})
	}
}
