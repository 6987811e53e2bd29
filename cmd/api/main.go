package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/homebudget/homebudget-backend/internal/config"
	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/dafibh/homebudget/homebudget-backend/internal/handler"
	"github.com/dafibh/homebudget/homebudget-backend/internal/middleware"
	"github.com/dafibh/homebudget/homebudget-backend/internal/repository/file"
	"github.com/dafibh/homebudget/homebudget-backend/internal/repository/postgres"
	"github.com/dafibh/homebudget/homebudget-backend/internal/repository/storage"
	"github.com/dafibh/homebudget/homebudget-backend/internal/service"
	"github.com/dafibh/homebudget/homebudget-backend/internal/session"
	"github.com/dafibh/homebudget/homebudget-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize document storage
	repo, watchable, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("Failed to open document storage")
	}
	defer closeRepo()

	// Initialize persistence and the session
	persister := service.NewPersister(repo, log.Logger, service.PersisterConfig{
		Debounce:     cfg.PersistDebounce,
		AutosaveTick: cfg.AutosaveInterval,
	})
	persister.Start(ctx)

	hub := websocket.NewHub()
	budget := session.New(persister, hub, log.Logger, session.Options{})
	if err := budget.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load budget document")
	}
	log.Info().
		Str("backend", cfg.StorageBackend).
		Int("week", budget.State().Week).
		Msg("Budget document loaded")

	// Reload on external edits of the data file
	if watchable != nil && cfg.WatchDataFile {
		err := watchable.Watch(ctx, func() {
			if err := budget.Reload(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to reload budget document")
				return
			}
			log.Info().Str("path", watchable.Path()).Msg("Budget document reloaded after external change")
		})
		if err != nil {
			log.Warn().Err(err).Msg("Data file watcher not started")
		}
	}

	// Initialize handlers
	handlers := handler.Handlers{
		Budget:    handler.NewBudgetHandler(budget),
		Expenses:  handler.NewExpenseHandler(budget),
		Planner:   handler.NewPlannerHandler(budget),
		Income:    handler.NewIncomeHandler(budget),
		WebSocket: handler.NewWebSocketHandler(hub, budget, cfg.CORSOrigins),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Rate limiting per client IP
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, rateLimitBurst(cfg.RateLimitPerMinute))
	defer rateLimiter.Stop()
	e.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":          "ok",
			"storage":         cfg.StorageBackend,
			"pending_changes": persister.Pending(),
			"clients":         hub.TotalClientCount(),
		})
	})

	// Register API routes
	handler.RegisterRoutes(e, handlers)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.CloseAll()

	// Write anything still pending before exit
	if err := persister.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to save pending changes")
	}
	cancel()

	log.Info().Msg("Server exited")
}

// openRepository builds the document repository for the configured backend. The
// file backend is also returned as watchable so external edits can be picked up.
func openRepository(ctx context.Context, cfg *config.Config) (domain.DocumentRepository, *file.DocumentRepository, func(), error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("ping database: %w", err)
		}
		repo := postgres.NewDocumentRepository(pool, cfg.DocumentKey)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		log.Info().Msg("Connected to database")
		return repo, nil, pool.Close, nil

	case config.StorageS3:
		repo, err := storage.NewS3DocumentRepository(ctx, cfg.S3, cfg.DocumentKey)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Using S3 document storage")
		return repo, nil, func() {}, nil

	default:
		repo := file.NewDocumentRepository(cfg.DataFile, log.Logger)
		log.Info().Str("path", repo.Path()).Msg("Using file document storage")
		return repo, repo, func() {}, nil
	}
}

// rateLimitBurst allows short bursts of a tenth of the per-minute budget
func rateLimitBurst(perMinute int) int {
	if burst := perMinute / 10; burst > 1 {
		return burst
	}
	return 1
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
