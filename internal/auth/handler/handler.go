package handler

import (
	"net/http"
	"time"

	"cattlesense/internal/auth/credentials"
	"cattlesense/internal/auth/provider"
	"cattlesense/internal/auth/resolver"
	"cattlesense/internal/guard"
	"cattlesense/internal/logger"
	"cattlesense/internal/session"
	"cattlesense/internal/user"

	"github.com/gin-gonic/gin"
)

const sessionTTL = 24 * time.Hour

type Handler struct {
	providers         *provider.Registry
	sessionStore      session.Store
	resolver          resolver.Resolver
	credentialService *credentials.Service
}

func NewHandler(
	registry *provider.Registry,
	sessionStore session.Store,
	resolver resolver.Resolver,
	credentialService *credentials.Service,
) *Handler {
	return &Handler{
		providers:         registry,
		sessionStore:      sessionStore,
		resolver:          resolver,
		credentialService: credentialService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)
	r.POST("/auth/password-reset/request", h.RequestPasswordReset)
	r.POST("/auth/password-reset/confirm", h.ConfirmPasswordReset)
	r.GET("/oauth/login/:provider", h.oauthLogin)
	r.GET("/oauth/callback/:provider", h.oauthCallback)
}

// startSession persists a fresh session and issues its cookie.
func (h *Handler) startSession(c *gin.Context, userID string) error {
	sessionID, err := session.GenerateID()
	if err != nil {
		return err
	}

	now := time.Now()
	expiresAt := now.Add(sessionTTL)

	sess := session.Session{
		SessionID: sessionID,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}

	if err := h.sessionStore.Create(c.Request.Context(), sess); err != nil {
		return err
	}

	session.SetCookie(c.Writer, sessionID, expiresAt, session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info("login succeeded", map[string]any{
		"user_id": userID,
		"ip":      c.ClientIP(),
	})
	return nil
}

// userSummary is the account shape returned after authentication so the
// client can route to onboarding or the dashboard without a second call.
func userSummary(u *user.User) gin.H {
	return gin.H{
		"id":                  u.ID,
		"email":               u.Email,
		"display_name":        u.DisplayName,
		"role":                u.Role,
		"is_profile_complete": u.IsProfileComplete,
		"onboarding_step":     u.OnboardingStep,
	}
}

func (h *Handler) oauthLogin(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	state := generateState(c)
	_, codeChallenge := generatePKCE(c)

	authURL := p.AuthCodeURL(state, codeChallenge)
	c.Redirect(http.StatusFound, authURL)
}

func (h *Handler) oauthCallback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	if !validateState(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	// Provider-side cancellation or consent failure: back to login for a
	// fresh attempt.
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oidc callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		c.Redirect(http.StatusFound, guard.LoginPath)
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oidc callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	codeVerifier := getPKCEVerifier(c)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "missing pkce verifier",
		})
		return
	}

	identity, err := p.ExchangeCode(
		c.Request.Context(),
		code,
		codeVerifier,
	)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	u, err := h.resolver.Resolve(c.Request.Context(), identity)
	if err != nil {
		logger.Error("identity resolution failed", map[string]any{
			"error":    err.Error(),
			"provider": providerName,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to resolve user",
		})
		return
	}

	if err := h.startSession(c, u.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to create session",
		})
		return
	}

	// The page guard takes it from here: incomplete profiles land on
	// onboarding, completed ones on the dashboard.
	c.Redirect(http.StatusFound, guard.DashboardPath)
}

func (h *Handler) Logout(c *gin.Context) {

	// 1. Read session cookie (same pattern as auth middleware)
	cookie, err := c.Request.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		// 2. Delete session from store (best-effort)
		_ = h.sessionStore.Delete(c.Request.Context(), cookie.Value)
	}

	// 3. Clear cookie (must pass options)
	session.ClearCookie(c.Writer, session.CookieOptions{
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// 4. Idempotent response
	c.Status(http.StatusNoContent)
}
