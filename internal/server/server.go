// Package server contains the HTTP handlers and page rendering of the application.
package server

import (
	"context"
	"log"
	"time"

	"wouldyourather/internal/cache"
	"wouldyourather/internal/config"
	"wouldyourather/internal/middleware"
	"wouldyourather/internal/repository"
	"wouldyourather/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config             *config.Config
	db                 *gorm.DB
	redis              *redis.Client
	app                *fiber.App
	promMiddleware     *fiberprometheus.FiberPrometheus
	tokens             *middleware.SessionTokens
	userRepo           repository.UserRepository
	questionRepo       repository.QuestionRepository
	answerRepo         repository.AnswerRepository
	authService        *service.AuthService
	questionService    *service.QuestionService
	leaderboardService *service.LeaderboardService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, in which case logout revocation and POST rate
// limiting are disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)

	var revocations middleware.RevocationStore
	if redisClient != nil {
		revocations = cache.NewSessionStore(redisClient)
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("would-you-rather"),
		tokens:         middleware.NewSessionTokens(cfg, revocations),
		userRepo:       userRepo,
		questionRepo:   questionRepo,
		answerRepo:     answerRepo,
	}
	s.authService = service.NewAuthService(userRepo, cfg.BcryptCost)
	s.questionService = service.NewQuestionService(questionRepo, answerRepo)
	s.leaderboardService = service.NewLeaderboardService(userRepo)

	return s, nil
}

// NewApp builds the Fiber app with views, middleware and routes.
func (s *Server) NewApp() (*fiber.App, error) {
	engine, err := newViewEngine()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:      "Would You Rather",
		Views:        engine,
		ErrorHandler: s.errorHandler,
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())

	// The session loader runs before the context middleware so the user id
	// reaches service and repository logs.
	app.Use(middleware.SessionLoader(s.tokens, s.userRepo))
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.StructuredLogger())

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return isAssetPath(c.Path())
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Operational endpoints are never gated.
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	s.setupAssets(app)

	app.Use(middleware.SessionGate())

	app.Get(middleware.LoginPath, s.LoginPage)
	app.Post(middleware.LoginPath, middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	app.Get(middleware.SignupPath, s.SignupPage)
	app.Post(middleware.SignupPath, middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.Signup)
	app.Get("/logout/", s.Logout)
	app.Post("/logout/", s.Logout)

	app.Get(middleware.HomePath, s.Home)
	app.Get("/add/", s.NewQuestionPage)
	app.Post("/add/", middleware.RateLimit(s.redis, 20, 10*time.Minute, "create_question"), s.CreateQuestion)
	app.Get("/question/:id/", s.QuestionDetail)
	app.Post("/question/:id/", s.AnswerQuestion)
	app.Get("/leaderboard/", s.Leaderboard)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: a
// missing client is reported but only a failing one makes the probe fail.
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
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
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
	app, err := s.NewApp()
	if err != nil {
		return err
	}
	s.app = app

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
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
