package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/roy-raphael/DW-P6-Piiquante/internal/auth"
	"github.com/roy-raphael/DW-P6-Piiquante/internal/background"
	"github.com/roy-raphael/DW-P6-Piiquante/internal/config"
	"github.com/roy-raphael/DW-P6-Piiquante/internal/database"
	"github.com/roy-raphael/DW-P6-Piiquante/internal/handlers"
	middlewareCustom "github.com/roy-raphael/DW-P6-Piiquante/internal/middleware"
	"github.com/roy-raphael/DW-P6-Piiquante/internal/ratelimit"
	"github.com/roy-raphael/DW-P6-Piiquante/internal/repositories"
	"github.com/roy-raphael/DW-P6-Piiquante/internal/routes"
	"github.com/roy-raphael/DW-P6-Piiquante/internal/services"
	"github.com/roy-raphael/DW-P6-Piiquante/internal/storage"
	pkglogger "github.com/roy-raphael/DW-P6-Piiquante/pkg/logger"
)

const limiterSweepInterval = 15 * time.Minute

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Apply pending schema migrations
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	sauceRepo := repositories.NewSauceRepository(db)

	// Initialize image storage
	imageStore, err := storage.NewFileStore(cfg.Images.Dir, logger)
	if err != nil {
		logger.Error("failed to initialize image storage", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize token service
	tokenService, err := auth.NewTokenService(
		cfg.Auth.PrivateKeyPath,
		cfg.Auth.PublicKeyPath,
		cfg.Auth.Issuer,
		cfg.Auth.Audience,
		cfg.Auth.TokenExpiry,
	)
	if err != nil {
		logger.Error("failed to initialize token service", slog.Any("error", err))
		os.Exit(1)
	}

	// Login throttle over two in-memory limiter stores
	attemptStore := ratelimit.NewMemoryStore(cfg.Auth.MaxAttemptsPerWindow, cfg.Auth.AttemptWindow)
	streakStore := ratelimit.NewMemoryStore(0, 0)
	loginThrottle := ratelimit.NewLoginThrottle(attemptStore, streakStore, logger)

	// Periodic sweep of expired limiter records
	cleanupManager := background.NewCleanupManager(logger, limiterSweepInterval, attemptStore, streakStore)

	// Initialize security services
	auditLogger := pkglogger.NewAuditLogger(logger)

	// Initialize services
	authService := services.NewAuthService(userRepo, tokenService, loginThrottle, logger, auditLogger)
	sauceService := services.NewSauceService(sauceRepo, imageStore, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	sauceHandler := handlers.NewSauceHandler(sauceService, imageStore)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig()))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, authHandler, sauceHandler, tokenService, sauceRepo, imageStore.Dir())

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
