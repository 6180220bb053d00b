// Package server contains HTTP and WebSocket handlers for the moderation API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "warden/docs" // swagger docs
	"warden/internal/bootstrap"
	"warden/internal/config"
	"warden/internal/middleware"
	"warden/internal/models"
	"warden/internal/notifications"
	"warden/internal/observability"
	"warden/internal/scheduler"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
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
	services       *bootstrap.Services
	adminHub       *notifications.Hub
	noticeHub      *notifications.Hub
	expiry         *scheduler.Service
	stopTracing    func(context.Context) error
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	return newServer(cfg, db, redisClient, bootstrap.Overrides{})
}

func newServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, overrides bootstrap.Overrides) (*Server, error) {
	middleware.InitMiddleware(cfg)

	services, err := bootstrap.NewServices(cfg, db, redisClient, overrides)
	if err != nil {
		return nil, err
	}

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("warden-api"),
		services:       services,
		adminHub:       notifications.NewHub("admin_feed"),
		noticeHub:      notifications.NewHub("user_notices"),
		expiry:         scheduler.NewService(cfg.ExpiryNoticeSchedule, services.Sanctions),
	}, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
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
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Live feeds authenticate with ?token= because browsers cannot set
	// headers on a websocket upgrade.
	api.Get("/me/ws", middleware.WebSocketAuthRequired, s.NoticeStreamHandler())
	api.Get("/admin/ws", middleware.WebSocketAuthRequired, middleware.AdminRequired, s.AdminFeedHandler())

	protected := api.Group("", middleware.AuthRequired)

	screen := protected.Group("/screen")
	screen.Post("/text", s.ScreenText)
	screen.Post("/image", s.ScreenImage)

	protected.Post("/contents", s.SubmitContent)
	protected.Post("/reports", middleware.RateLimit(
		s.redis, s.config.ReportRateLimitPerMinute, time.Minute, "file_report"), s.FileReport)
	protected.Get("/me/status", s.GetMyStatus)

	admin := protected.Group("/admin", middleware.AdminRequired)

	reports := admin.Group("/reports")
	reports.Get("/", s.GetReportQueue)
	reports.Post("/:type/:id/resolve", s.ResolveReports)
	reports.Get("/:type/:id", s.GetReportGroup)

	contents := admin.Group("/contents")
	contents.Post("/:type/:id/restore", s.RestoreContent)
	contents.Delete("/:type/:id", s.DeleteContent)

	users := admin.Group("/users")
	users.Get("/:id/penalties", s.GetPenaltyHistory)
	users.Post("/:id/penalties", s.IssuePenalty)
	users.Delete("/:id/penalties/active", s.RevokePenalty)
	users.Get("/:id", s.GetUserModeration)

	terms := admin.Group("/banned-terms")
	terms.Get("/", s.GetBannedTerms)
	terms.Post("/", s.AddBannedTerm)
	terms.Delete("/", s.RemoveBannedTerm)
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
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis only carries caches, rate limits and the live feeds, so its
	// absence degrades readiness without failing it.
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
	switch {
	case dbStatus != "healthy":
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	case redisStatus != "healthy":
		overallStatus = "degraded"
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

func (s *Server) newApp() *fiber.App {
	uploadMB := s.config.ImageMaxUploadSizeMB
	if uploadMB <= 0 {
		uploadMB = 10
	}
	return fiber.New(fiber.Config{
		AppName: "Warden Moderation API",
		// A submission may carry several images.
		BodyLimit: (uploadMB*maxImagesPerRequest + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
}

// startWiring connects the hubs to Redis pub/sub. Without Redis the feeds
// accept connections but never receive anything.
func (s *Server) startWiring(ctx context.Context) error {
	if s.redis == nil {
		middleware.Logger.Warn("redis unavailable: live moderation feeds are disabled")
		return nil
	}
	if err := s.adminHub.StartAdminWiring(ctx, s.services.Dispatcher); err != nil {
		return fmt.Errorf("start %s wiring: %w", s.adminHub.Name(), err)
	}
	if err := s.noticeHub.StartUserWiring(ctx, s.services.Dispatcher); err != nil {
		return fmt.Errorf("start %s wiring: %w", s.noticeHub.Name(), err)
	}
	return nil
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	stopTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "warden-api",
		ServiceVersion: "1.0",
		Environment:    s.config.Env,
		Enabled:        s.config.TracingEnabled,
		Exporter:       s.config.TracingExporter,
		OTLPEndpoint:   s.config.TracingOTLPEndpoint,
		SamplerRatio:   s.config.TracingSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	s.stopTracing = stopTracing

	app := s.newApp()
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if err := s.startWiring(s.shutdownCtx); err != nil {
		middleware.Logger.Error("live feeds not started", slog.String("error", err.Error()))
	}
	if err := s.expiry.Start(); err != nil {
		return err
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	s.expiry.Stop()

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("http shutdown failed", slog.String("error", err.Error()))
		}
	}

	for _, h := range []*notifications.Hub{s.adminHub, s.noticeHub} {
		if err := h.Shutdown(ctx); err != nil {
			middleware.Logger.Error("hub shutdown failed", slog.String("hub", h.Name()), slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("database close failed", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("redis close failed", slog.String("error", rerr.Error()))
		}
	}

	if s.stopTracing != nil {
		if terr := s.stopTracing(ctx); terr != nil {
			middleware.Logger.Error("trace flush failed", slog.String("error", terr.Error()))
		}
	}

	middleware.Logger.Info("server stopped")
	return nil
}
