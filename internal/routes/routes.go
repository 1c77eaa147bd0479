package routes

import (
	"github.com/askeland/riskgate/internal/auth"
	"github.com/askeland/riskgate/internal/handlers"
	"github.com/askeland/riskgate/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	recoveryHandler *handlers.RecoveryHandler,
	questionsHandler *handlers.SecurityQuestionsHandler,
	loginsHandler *handlers.LoginsHandler,
	tokenManager *auth.TokenManager,
) {
	rateLimitConfig := middleware.DefaultRecoveryRateLimit()

	// Public recovery flow - no authentication, tight per-IP rate limit
	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(rateLimitConfig))
		r.Post("/recovery/start", recoveryHandler.Start)
		r.Post("/recovery/challenge", recoveryHandler.Validate)
		r.Post("/recovery/password", recoveryHandler.UpdatePassword)
		r.Get("/recovery/questions", questionsHandler.BankList)
	})

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager))
		r.Post("/security-questions", questionsHandler.Setup)
		r.Get("/security-questions", questionsHandler.List)
	})

	// Internal hook for the authentication system
	router.Post("/internal/logins", loginsHandler.Record)
}
