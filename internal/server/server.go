// Package server contains HTTP and WebSocket handlers for the marketplace API.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	_ "postmarket/docs" // swagger docs
	"postmarket/internal/auth"
	"postmarket/internal/cache"
	"postmarket/internal/config"
	"postmarket/internal/database"
	"postmarket/internal/middleware"
	"postmarket/internal/models"
	"postmarket/internal/notifications"
	"postmarket/internal/repository"
	"postmarket/internal/service"
	"postmarket/internal/vendors"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	listingRepo  repository.ListingRepository
	messageRepo  repository.MessageRepository
	reportRepo   repository.ReportRepository

	notifier *notifications.Notifier
	hub      *notifications.Hub
	sms      *vendors.SMSClient

	authService       *service.AuthService
	userService       *service.UserService
	categoryService   *service.CategoryService
	listingService    *service.ListingService
	messageService    *service.MessageService
	moderationService *service.ModerationService
	analyticsService  *service.AnalyticsService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("postmarket-api"),
		userRepo:       repository.NewUserRepository(db),
		categoryRepo:   repository.NewCategoryRepository(db),
		listingRepo:    repository.NewListingRepository(db),
		messageRepo:    repository.NewMessageRepository(db),
		reportRepo:     repository.NewReportRepository(db),
	}

	// A notifier with no Redis client is a no-op publisher, so services can
	// always carry one.
	server.notifier = notifications.NewNotifier(redisClient)
	if redisClient != nil {
		server.hub = notifications.NewHub()
	}

	server.sms = vendors.NewSMSClient(cfg.SMSAPIURL, cfg.SMSAPIKey, redisClient)
	screenshots := vendors.NewScreenshotClient(cfg.ScreenshotAPIURL, cfg.ScreenshotAPIKey, cfg.UploadDir)
	seo := vendors.NewSEOClient(cfg.SEOAPIURL, cfg.SEOAPIKey)
	prober := vendors.NewSiteVerifier()

	tokens := auth.NewTokens(cfg.JWTSecret)
	server.authService = service.NewAuthService(server.userRepo, tokens)
	server.userService = service.NewUserService(server.userRepo)
	server.categoryService = service.NewCategoryService(server.categoryRepo)
	server.listingService = service.NewListingService(
		server.listingRepo, server.categoryRepo, screenshots, seo, prober, server.notifier)
	server.messageService = service.NewMessageService(server.messageRepo, server.userRepo, server.notifier)
	server.moderationService = service.NewModerationService(
		server.reportRepo, server.listingRepo, server.userRepo, server.notifier)
	server.analyticsService = service.NewAnalyticsService(db)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// OpenTelemetry spans per request
	app.Use(middleware.TracingMiddleware())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses. Credentials must be allowed for the session cookie.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Postmarket Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	authGroup.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/logout", s.Logout)

	// Public category routes
	categories := api.Group("/categories")
	categories.Get("/", s.GetCategories)
	categories.Get("/:id", s.GetCategory)

	// Public marketplace browse. Only active listings are visible here;
	// detail pages of non-active listings are reserved to owner and admins.
	// These must be registered before the protected group so they stay
	// reachable without a session. /me needs route-level auth to win over
	// the generic /:id route.
	publicListings := api.Group("/listings")
	publicListings.Get("/", s.BrowseListings)
	publicListings.Get("/me", s.AuthRequired(), s.GetMyListings)
	publicListings.Get("/:id", s.GetListing)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	protected.Get("/auth/me", s.Me)

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/:id", s.GetUserProfile)

	// Phone verification
	phone := protected.Group("/phone")
	phone.Post("/send-code", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "sms_send"), s.SendPhoneCode)
	phone.Post("/verify", middleware.RateLimit(
		s.redis, 10, 10*time.Minute, "sms_verify"), s.VerifyPhoneCode)

	// Listing management routes
	listings := protected.Group("/listings")
	listings.Post("/", middleware.RateLimit(
		s.redis, 5, time.Hour, "create_listing"), s.CreateListing)
	listings.Get("/:id/verification-token", s.GetVerificationToken)
	listings.Post("/:id/verify", middleware.RateLimit(
		s.redis, 10, time.Hour, "verify_site"), s.VerifyListing)
	listings.Post("/:id/refresh-metrics", middleware.RateLimit(
		s.redis, 10, time.Hour, "refresh_metrics"), s.RefreshListingMetrics)
	listings.Post("/:id/screenshot", middleware.RateLimit(
		s.redis, 10, time.Hour, "capture_screenshot"), s.CaptureListingScreenshot)
	listings.Put("/:id", s.UpdateListing)
	listings.Delete("/:id", s.DeleteListing)

	// Message routes
	messages := protected.Group("/messages")
	messages.Post("/", middleware.RateLimit(
		s.redis, 15, time.Minute, "send_message"), s.SendMessage)
	messages.Get("/", s.GetMessages)
	messages.Get("/unread-count", s.GetUnreadCount)
	messages.Get("/:id", s.GetMessage)
	messages.Post("/:id/read", s.MarkMessageRead)
	messages.Post("/:id/replies", middleware.RateLimit(
		s.redis, 15, time.Minute, "reply_message"), s.ReplyMessage)
	messages.Delete("/:id", s.DeleteMessage)

	// Abuse reports
	protected.Post("/reports", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "file_report"), s.FileReport)

	// Websocket endpoint - protected by AuthRequired
	api.Get("/ws", s.AuthRequired(), s.WebsocketHandler())

	// Admin routes
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/overview", s.GetAdminOverview)

	adminUsers := admin.Group("/users")
	adminUsers.Get("/", s.GetAllUsers)
	adminUsers.Post("/:id/role", s.SetUserRole)
	adminUsers.Post("/:id/status", s.SetUserStatus)
	adminUsers.Delete("/:id", s.DeleteUser)

	adminListings := admin.Group("/listings")
	adminListings.Get("/", s.GetAdminListings)
	adminListings.Post("/:id/status", s.SetListingStatus)

	adminCategories := admin.Group("/categories")
	adminCategories.Post("/", s.CreateCategory)
	adminCategories.Put("/:id", s.UpdateCategory)
	adminCategories.Delete("/:id", s.DeleteCategory)

	adminReports := admin.Group("/reports")
	adminReports.Get("/", s.GetReports)
	adminReports.Get("/:id", s.GetReport)
	adminReports.Post("/:id/resolve", s.ResolveReport)
	adminReports.Delete("/:id", s.DeleteReport)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The API stays usable without Redis, but notifications, caching and
		// SMS verification degrade, so readiness reports it.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. It reads the session
// cookie, verifies the token and loads the account. Suspended accounts keep
// their session but are locked out of every protected route.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := auth.SessionToken(c)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication required"))
		}

		userID, err := s.authService.VerifyToken(token)
		if err != nil {
			return models.RespondError(c, err)
		}

		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			// A token for a deleted account is indistinguishable from an
			// invalid one.
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired session"))
		}
		if user.IsSuspended() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Account suspended"))
		}

		c.Locals("userID", user.ID)
		c.Locals("user", user)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that the user is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(*models.User)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication required"))
		}
		if !user.IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Guest Post Marketplace API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire the notification hub to the Redis subscriber if available
	if s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start %s wiring: %v", s.hub.Name(), err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the wiring goroutine
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down %s: %v", s.hub.Name(), err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
