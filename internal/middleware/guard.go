package middleware

import (
	"net/http"
	"time"

	"cattlesense/internal/guard"
	"cattlesense/internal/logger"
	"cattlesense/internal/session"
	"cattlesense/internal/user"

	"github.com/gin-gonic/gin"
)

const (
	currentUserKey    = "currentUser"
	currentSessionKey = "currentSession"
)

// CurrentUser returns the resolved profile record, if any.
func CurrentUser(c *gin.Context) (*user.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*user.User)
	return u, ok
}

// CurrentSession returns the live session, if any.
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(currentSessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok
}

// ResolveUser loads the session and its profile record into the request
// without enforcing anything. Resolution failures are logged and leave the
// request anonymous: unknown state never unlocks anything downstream.
func ResolveUser(sessions session.Store, users user.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Request.Cookie(session.CookieName)
		if err != nil || cookie.Value == "" {
			c.Next()
			return
		}

		sess, err := sessions.Get(c.Request.Context(), cookie.Value)
		if err != nil {
			logger.Error("session lookup failed", map[string]any{
				"error": err.Error(),
			})
			c.Next()
			return
		}
		if sess == nil || time.Now().After(sess.ExpiresAt) {
			c.Next()
			return
		}

		u, err := users.Get(c.Request.Context(), sess.UserID)
		if err != nil {
			logger.Error("profile lookup failed", map[string]any{
				"error":   err.Error(),
				"user_id": sess.UserID,
			})
			c.Next()
			return
		}

		c.Set(currentSessionKey, sess)
		c.Set(currentUserKey, u)
		c.Set("userID", u.ID)
		c.Next()
	}
}

// PageGuard enforces the navigation rules on page routes. It runs after
// ResolveUser and re-evaluates on every request, so completing onboarding
// unlocks protected pages immediately.
func PageGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, _ := CurrentUser(c)

		switch guard.Decide(u, c.Request.URL.Path) {
		case guard.RedirectLogin:
			c.Redirect(http.StatusFound, guard.LoginRedirectURL(c.Request.URL.Path))
			c.Abort()
		case guard.RedirectOnboarding:
			c.Redirect(http.StatusFound, guard.OnboardingPath)
			c.Abort()
		case guard.RedirectDashboard:
			c.Redirect(http.StatusFound, guard.DashboardPath)
			c.Abort()
		default:
			c.Next()
		}
	}
}

// RequireProfileComplete blocks API access until onboarding is done,
// reporting the step so clients can resume the flow.
func RequireProfileComplete() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		if !u.IsProfileComplete {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":           "profile incomplete",
				"onboarding_step": u.OnboardingStep,
			})
			return
		}
		c.Next()
	}
}

// RequireRolePage is the page-route flavor of RequireRole: ineligible
// visitors are sent back to the dashboard instead of receiving a JSON error.
// It runs after PageGuard, which has already dealt with anonymous and
// incomplete visitors.
func RequireRolePage(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u, ok := CurrentUser(c); ok {
			for _, r := range roles {
				if u.Role == r {
					c.Next()
					return
				}
			}
		}
		c.Redirect(http.StatusFound, guard.DashboardPath)
		c.Abort()
	}
}

// RequireRole restricts a route to the given roles.
func RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		for _, r := range roles {
			if u.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "insufficient permissions",
		})
	}
}
