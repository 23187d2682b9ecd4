package guard

import (
	"net/url"
	"strings"

	"cattlesense/internal/user"
)

// Well-known navigation targets.
const (
	LoginPath      = "/login"
	OnboardingPath = "/onboarding"
	DashboardPath  = "/dashboard"
)

// Decision is the outcome of evaluating one navigation attempt.
type Decision int

const (
	// Allow renders the requested target.
	Allow Decision = iota
	// RedirectLogin sends an anonymous visitor to the login page,
	// remembering the attempted path.
	RedirectLogin
	// RedirectOnboarding blocks protected pages until the profile is done.
	RedirectOnboarding
	// RedirectDashboard keeps completed accounts out of onboarding.
	RedirectDashboard
)

var publicPaths = map[string]bool{
	"/":        true,
	"/login":   true,
	"/signup":  true,
	"/about":   true,
	"/careers": true,
	"/help":    true,
	"/legal":   true,
	"/contact": true,
}

var publicPrefixes = []string{
	"/blog",
	"/guides",
}

// Public reports whether the path is reachable without an account.
func Public(path string) bool {
	if publicPaths[path] {
		return true
	}
	for _, p := range publicPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Decide maps (current account, requested path) to a navigation decision.
// A nil account means anonymous, which is also what a failed profile lookup
// resolves to: unknown state never unlocks a protected page.
//
// It is a pure function; callers re-evaluate it on every navigation so a
// completeness change takes effect immediately.
func Decide(u *user.User, path string) Decision {
	if u == nil {
		if Public(path) {
			return Allow
		}
		return RedirectLogin
	}

	if !u.IsProfileComplete {
		if path == OnboardingPath || Public(path) {
			return Allow
		}
		return RedirectOnboarding
	}

	if path == OnboardingPath {
		return RedirectDashboard
	}
	return Allow
}

// LoginRedirectURL builds the login target carrying the attempted path so
// the visitor lands where they were headed after signing in.
func LoginRedirectURL(attempted string) string {
	return LoginPath + "?next=" + url.QueryEscape(attempted)
}

// SafeNext validates a remembered path before redirecting to it: it must be
// a local absolute path, never a full URL.
func SafeNext(next string) (string, bool) {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "", false
	}
	return next, true
}
