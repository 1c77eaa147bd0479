package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/askeland/riskgate/internal/auth"
	"github.com/askeland/riskgate/internal/background"
	"github.com/askeland/riskgate/internal/challenge"
	"github.com/askeland/riskgate/internal/config"
	"github.com/askeland/riskgate/internal/database"
	"github.com/askeland/riskgate/internal/geo"
	"github.com/askeland/riskgate/internal/handlers"
	middlewareCustom "github.com/askeland/riskgate/internal/middleware"
	"github.com/askeland/riskgate/internal/models"
	"github.com/askeland/riskgate/internal/repositories"
	"github.com/askeland/riskgate/internal/risk"
	"github.com/askeland/riskgate/internal/routes"
	"github.com/askeland/riskgate/internal/services"
	pkgauth "github.com/askeland/riskgate/pkg/auth"
	pkghttp "github.com/askeland/riskgate/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

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

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	historyRepo := repositories.NewLoginHistoryRepository(db)
	codeRepo := repositories.NewRecoveryCodeRepository(db)
	tokenRepo := repositories.NewResetTokenRepository(db)
	questionRepo := repositories.NewSecurityQuestionRepository(db)

	// Background cleanup of expired artifacts and old history
	cleanupManager := background.NewCleanupManager(
		codeRepo,
		tokenRepo,
		historyRepo,
		logger,
		cfg.Recovery.CleanupInterval,
		cfg.Recovery.HistoryRetention,
	)

	// Token manager for the authenticated setup endpoints
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTokenExpiry)

	// Timing delay keeps recovery responses constant-time
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:    200,
		RandomDelayMs:  100,
		DelayOnSuccess: true,
	})

	// AWS SES email service
	emailService, err := services.NewAWSSESEmailService(cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}

	// Collaborators feeding the risk engine
	geoResolver := geo.NewResolver(logger)
	riskEngine := risk.NewEngine(logger)

	// Challenge strategies and selector
	otpStrategy := challenge.NewEmailOTP(codeRepo, emailService, logger)
	questionStrategy := challenge.NewSecurityQuestion(questionRepo, logger)
	selector := challenge.NewSelector(
		challenge.NewNoChallenge(),
		otpStrategy,
		questionStrategy,
		questionRepo,
		logger,
	)

	// Initialize services
	resetTokenService := services.NewResetTokenService(tokenRepo, logger)
	questionsService := services.NewSecurityQuestionsService(questionRepo, logger)
	recoveryService := services.NewRecoveryService(
		userRepo,
		historyRepo,
		riskEngine,
		selector,
		resetTokenService,
		emailService,
		geoResolver,
		cfg.Recovery.HistoryLimit,
		cfg.Email.ResetURLBase,
		logger,
	)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	recoveryHandler := handlers.NewRecoveryHandler(recoveryService, timingDelay, ipConfig)
	questionsHandler := handlers.NewSecurityQuestionsHandler(questionsService)
	loginsHandler := handlers.NewLoginsHandler(recoveryService)

	// Bootstrap a local test user if configured
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureBootstrapUser(bootCtx, userRepo, logger); err != nil {
		logger.Error("failed to ensure bootstrap user", slog.Any("error", err))
	}
	bootCancel()

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, recoveryHandler, questionsHandler, loginsHandler, tokenManager)

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

// ensureBootstrapUser seeds an initial account when BOOTSTRAP_USERNAME,
// BOOTSTRAP_EMAIL and BOOTSTRAP_PASSWORD are all set. Intended for local
// development and fresh environments; it is a no-op otherwise.
func ensureBootstrapUser(ctx context.Context, userRepo *repositories.UserRepository, logger *slog.Logger) error {
	username := os.Getenv("BOOTSTRAP_USERNAME")
	email := os.Getenv("BOOTSTRAP_EMAIL")
	password := os.Getenv("BOOTSTRAP_PASSWORD")

	if username == "" || email == "" || password == "" {
		return nil
	}

	exists, err := userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		logger.Info("bootstrap user already exists", slog.String("username", username))
		return nil
	}

	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		return err
	}

	user, err := userRepo.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}

	logger.Info("bootstrap user created",
		slog.String("username", user.Username),
		slog.String("id", user.ID),
	)
	return nil
}
