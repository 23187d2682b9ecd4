package app

import (
	"context"

	"cattlesense/internal/account"
	"cattlesense/internal/auth/credentials"
	"cattlesense/internal/auth/handler"
	"cattlesense/internal/auth/provider"
	"cattlesense/internal/auth/provider/google"
	"cattlesense/internal/auth/resolver"
	"cattlesense/internal/config"
	"cattlesense/internal/content"
	"cattlesense/internal/mailer"
	"cattlesense/internal/middleware"
	"cattlesense/internal/onboarding"
	"cattlesense/internal/session"
	"cattlesense/internal/user"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	userStore := user.NewPostgresStore(infra.DB)
	sessionStore := session.NewRedisStore(infra.Redis.Client)
	identityResolver := resolver.NewDBResolver(infra.DB, userStore)

	googleProvider, err := google.New(
		ctx,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	registry := provider.NewRegistry(
		googleProvider,
	)

	mail := mailer.New(cfg)

	credentialService := credentials.NewService(
		userStore,
		credentials.NewPostgresStore(infra.DB),
		credentials.NewRedisTokenStore(infra.Redis.Client),
		mail,
	)

	authHandler := handler.NewHandler(
		registry,
		sessionStore,
		identityResolver,
		credentialService,
	)

	machine := onboarding.NewMachine(userStore)
	onboardingHandler := onboarding.NewHandler(machine)

	accountService := account.NewService(userStore, credentialService, sessionStore)
	accountHandler := account.NewHandler(accountService)

	contentHandler := content.NewHandler(content.NewPostgresStore(infra.DB))

	authMiddleware := middleware.NewAuthMiddleware(sessionStore)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ResolveUser(sessionStore, userStore))

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	contentHandler.RegisterPublicRoutes(router.Group("/api/public"))

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.GinRequireAuth(authMiddleware))

	onboardingHandler.RegisterRoutes(api)
	accountHandler.RegisterRoutes(api)
	contentHandler.RegisterUserRoutes(api)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireRole(user.RoleAdmin))
	contentHandler.RegisterAdminRoutes(admin)

	// ----------------------------
	// Pages
	// ----------------------------

	registerPages(router)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}

// registerPages mounts the site pages behind the navigation guard. Every
// page request re-evaluates the guard, so a profile completed in another
// tab unlocks the dashboard on the next click.
func registerPages(router *gin.Engine) {
	router.Static("/static", "./web/static")

	pages := router.Group("/")
	pages.Use(middleware.PageGuard())

	serve := func(path, file string) {
		pages.GET(path, func(c *gin.Context) {
			c.File("./web/" + file)
		})
	}

	serve("/", "index.html")
	serve("/login", "login.html")
	serve("/signup", "signup.html")
	serve("/about", "about.html")
	serve("/careers", "careers.html")
	serve("/help", "help.html")
	serve("/legal", "legal.html")
	serve("/contact", "contact.html")
	serve("/blog", "blog.html")
	serve("/blog/:id", "blog_post.html")
	serve("/guides", "guides.html")
	serve("/onboarding", "onboarding.html")
	serve("/dashboard", "dashboard.html")
	serve("/profile", "profile.html")
	serve("/settings", "settings.html")

	adminPages := router.Group("/admin")
	adminPages.Use(middleware.PageGuard(), middleware.RequireRolePage(user.RoleAdmin))
	adminPages.GET("", func(c *gin.Context) {
		c.File("./web/admin.html")
	})
}
