// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"chirp/internal/auth"
	"chirp/internal/cache"
	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/repository"
	"chirp/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
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

	tokens    *auth.TokenManager
	blacklist *auth.Blacklist
	notifier  *notifications.Notifier

	userRepo    repository.UserRepository
	tweetRepo   repository.TweetRepository
	followRepo  repository.FollowRepository
	feedRepo    repository.FeedRepository
	hashtagRepo repository.HashtagRepository
	notifRepo   repository.NotificationRepository

	userService         *service.UserService
	tweetService        *service.TweetService
	socialService       *service.SocialService
	feedService         *service.FeedService
	notificationService *service.NotificationService
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
// Use this in tests or when a bootstrap layer establishes DB/Redis first.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:      cfg,
		db:          db,
		redis:       redisClient,
		tokens:      auth.NewTokenManager(cfg.JWTSecret),
		blacklist:   auth.NewBlacklist(redisClient),
		userRepo:    repository.NewUserRepository(db),
		tweetRepo:   repository.NewTweetRepository(db),
		followRepo:  repository.NewFollowRepository(db),
		feedRepo:    repository.NewFeedRepository(db),
		hashtagRepo: repository.NewHashtagRepository(db),
		notifRepo:   repository.NewNotificationRepository(db),
	}

	// The Prometheus collectors live in the default registry, so the HTTP
	// metrics middleware cannot be constructed more than once per process.
	// Tests build many servers and skip it.
	if cfg.Env != "test" {
		server.promMiddleware = middleware.InitMetrics("chirp-api")
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}

	server.notificationService = service.NewNotificationService(server.notifRepo, server.notifier)
	server.userService = service.NewUserService(server.userRepo, server.tokens, server.blacklist)
	server.socialService = service.NewSocialService(server.userRepo, server.followRepo, server.notificationService)
	server.tweetService = service.NewTweetService(server.tweetRepo, server.userRepo, server.followRepo, server.notificationService)
	server.feedService = service.NewFeedService(server.feedRepo, server.followRepo, server.hashtagRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global in-process rate limit per client, applied before the
	// Redis-backed per-endpoint limits. Keyed by user when the request
	// carries a valid token, by remote address otherwise.
	app.Use(limiter.New(limiter.Config{
		Max:        s.config.RateLimitMax,
		Expiration: time.Duration(s.config.RateLimitWindow) * time.Second,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: middleware.ClientKey(s.tokens),
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				models.NewRateLimitedError())
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
		Title: "Chirp Backend Metrics Dashboard",
	}))

	authRequired := middleware.AuthRequired(s.tokens, s.blacklist)
	optionalAuth := middleware.OptionalAuth(s.tokens, s.blacklist)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	authGroup.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/refresh", s.Refresh)
	authGroup.Post("/logout", authRequired, s.Logout)
	authGroup.Get("/me", authRequired, s.GetMyProfile)
	authGroup.Put("/me", authRequired, s.UpdateMyProfile)
	authGroup.Post("/change-password", authRequired, s.ChangePassword)
	authGroup.Post("/deactivate", authRequired, s.DeactivateAccount)

	// Public tweet routes
	tweets := api.Group("/tweets")
	tweets.Get("/", s.GetPublicTweets)
	tweets.Get("/public", s.GetPublicTweets)
	tweets.Get("/:id/replies", optionalAuth, s.GetTweetReplies)
	tweets.Get("/:id", optionalAuth, s.GetTweet)

	// Protected tweet routes
	protectedTweets := api.Group("/tweets", authRequired)
	protectedTweets.Post("/", middleware.RateLimit(
		s.redis, 30, time.Minute, "create_tweet"), s.CreateTweet)
	protectedTweets.Post("/:id/like", s.ToggleLike)
	protectedTweets.Put("/:id", s.UpdateTweet)
	protectedTweets.Delete("/:id", s.DeleteTweet)

	// User routes
	users := api.Group("/users")
	users.Get("/", middleware.RateLimit(
		s.redis, 30, time.Minute, "user_search"), s.SearchUsers)
	// Specific /:id/:resource routes BEFORE the generic /:id route
	users.Get("/:id/tweets", optionalAuth, s.GetUserTweets)
	users.Get("/:id/followers", optionalAuth, s.GetFollowers)
	users.Get("/:id/following", optionalAuth, s.GetFollowing)
	users.Post("/:id/follow", authRequired, s.FollowUser)
	users.Delete("/:id/follow", authRequired, s.UnfollowUser)
	users.Get("/:id", optionalAuth, s.GetUserProfile)

	// Feed routes
	feed := api.Group("/feed")
	feed.Get("/home", authRequired, s.GetHomeFeed)
	feed.Get("/discover", authRequired, s.GetDiscoverFeed)
	feed.Get("/mentions", authRequired, s.GetMentionsFeed)
	feed.Get("/hashtag/:name", optionalAuth, s.GetHashtagFeed)
	feed.Get("/trending-hashtags", s.GetTrendingHashtags)

	// Notification routes
	notificationsGroup := api.Group("/notifications", authRequired)
	notificationsGroup.Get("/", s.GetNotifications)
	notificationsGroup.Get("/summary", s.GetNotificationSummary)
	notificationsGroup.Get("/unread-count", s.GetUnreadCount)
	notificationsGroup.Post("/read-all", s.MarkAllNotificationsRead)
	notificationsGroup.Post("/:id/read", s.MarkNotificationRead)
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
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
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

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Chirp API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
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
