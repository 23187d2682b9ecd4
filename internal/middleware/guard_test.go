package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cattlesense/internal/session"
	"cattlesense/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSessionStore struct {
	sessions map[string]session.Session
	failGet  error
	gets     int
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]session.Session)}
}

func (s *memSessionStore) Create(ctx context.Context, sess session.Session) error {
	s.sessions[sess.SessionID] = sess
	return nil
}

func (s *memSessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	s.gets++
	if s.failGet != nil {
		return nil, s.failGet
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s *memSessionStore) Delete(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func (s *memSessionStore) DeleteAllForUser(ctx context.Context, userID string) error {
	for id, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

type guardFixture struct {
	router   *gin.Engine
	users    *user.MemStore
	sessions *memSessionStore
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := user.NewMemStore()
	sessions := newMemSessionStore()

	router := gin.New()
	router.Use(ResolveUser(sessions, users))

	pages := router.Group("/")
	pages.Use(PageGuard())
	pages.GET("/dashboard", func(c *gin.Context) { c.String(http.StatusOK, "dashboard") })
	pages.GET("/onboarding", func(c *gin.Context) { c.String(http.StatusOK, "onboarding") })
	pages.GET("/about", func(c *gin.Context) { c.String(http.StatusOK, "about") })

	api := router.Group("/api")
	api.Use(GinRequireAuth(NewAuthMiddleware(sessions)))
	api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("userID")) })

	admin := router.Group("/admin")
	admin.Use(RequireRole(user.RoleAdmin))
	admin.GET("/tickets", func(c *gin.Context) { c.String(http.StatusOK, "tickets") })

	adminPages := router.Group("/admin")
	adminPages.Use(PageGuard(), RequireRolePage(user.RoleAdmin))
	adminPages.GET("", func(c *gin.Context) { c.String(http.StatusOK, "console") })

	return &guardFixture{router: router, users: users, sessions: sessions}
}

func (f *guardFixture) signIn(t *testing.T, complete bool, role user.Role) string {
	t.Helper()
	u := &user.User{Email: string(role) + "@example.com", Role: role}
	require.NoError(t, f.users.Create(context.Background(), u))
	if complete {
		require.NoError(t, f.users.SetOnboardingState(context.Background(), u.ID, 4, true))
	}

	sess := session.Session{
		SessionID: "sess-" + u.ID,
		UserID:    u.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, f.sessions.Create(context.Background(), sess))
	return sess.SessionID
}

func (f *guardFixture) get(path, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionID})
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestPageGuardRedirectsAnonymousWithNext(t *testing.T) {
	f := newGuardFixture(t)

	w := f.get("/dashboard", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Fdashboard", w.Header().Get("Location"))
}

func TestPageGuardAllowsPublicPagesAnonymously(t *testing.T) {
	f := newGuardFixture(t)

	w := f.get("/about", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPageGuardRoutesIncompleteToOnboarding(t *testing.T) {
	f := newGuardFixture(t)
	sid := f.signIn(t, false, user.RoleResearcher)

	w := f.get("/dashboard", sid)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/onboarding", w.Header().Get("Location"))

	w = f.get("/onboarding", sid)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPageGuardKeepsCompletedOutOfOnboarding(t *testing.T) {
	f := newGuardFixture(t)
	sid := f.signIn(t, true, user.RoleConsumer)

	w := f.get("/dashboard", sid)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.get("/onboarding", sid)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestResolveUserFailsClosedOnStoreErrors(t *testing.T) {
	f := newGuardFixture(t)
	sid := f.signIn(t, true, user.RoleConsumer)
	f.sessions.failGet = errors.New("redis timeout")

	// A lookup error must read as anonymous, never as signed in.
	w := f.get("/dashboard", sid)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login")
}

func TestResolveUserIgnoresExpiredSessions(t *testing.T) {
	f := newGuardFixture(t)
	sid := f.signIn(t, true, user.RoleConsumer)

	sess := f.sessions.sessions[sid]
	sess.ExpiresAt = time.Now().Add(-time.Minute)
	f.sessions.sessions[sid] = sess

	w := f.get("/dashboard", sid)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestRequireRolePageRedirectsNonAdmins(t *testing.T) {
	f := newGuardFixture(t)

	w := f.get("/admin", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login")

	consumer := f.signIn(t, true, user.RoleConsumer)
	w = f.get("/admin", consumer)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	admin := f.signIn(t, true, user.RoleAdmin)
	w = f.get("/admin", admin)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthReusesResolvedSession(t *testing.T) {
	f := newGuardFixture(t)
	sid := f.signIn(t, true, user.RoleConsumer)

	f.sessions.gets = 0
	w := f.get("/api/ping", sid)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.sessions.gets, "session must be looked up once per request")
}

func TestRequireAuthRejectsAnonymousAPIRequests(t *testing.T) {
	f := newGuardFixture(t)

	w := f.get("/api/ping", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	f := newGuardFixture(t)

	w := f.get("/admin/tickets", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	consumer := f.signIn(t, true, user.RoleConsumer)
	w = f.get("/admin/tickets", consumer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := f.signIn(t, true, user.RoleAdmin)
	w = f.get("/admin/tickets", admin)
	assert.Equal(t, http.StatusOK, w.Code)
}
