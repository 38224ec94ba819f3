package routes

import (
	"net/http"
	"time"

	"github.com/ecosnap/ecosnap/internal/app"
	"github.com/ecosnap/ecosnap/internal/handler"
	"github.com/ecosnap/ecosnap/internal/httpx"
	"github.com/ecosnap/ecosnap/internal/middleware"
)

const (
	authRateLimit  = 10
	authRateWindow = 15 * time.Minute
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService)
	classification := handler.NewClassificationHandler(app.ClassificationService)
	prompt := handler.NewPromptHandler(app.PromptService)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", health.Healthz)

	// ============================================================================
	// AUTH (/api/auth/*, rate limited per client IP)
	// ============================================================================

	rateLimit := middleware.RateLimit(middleware.NewRateLimiter(authRateLimit, authRateWindow, app.Done), app.TrustedProxies)

	mux.HandleFunc("POST /api/auth/register", rateLimit(auth.Register))
	mux.HandleFunc("POST /api/auth/login", rateLimit(auth.Login))
	mux.HandleFunc("POST /api/auth/verify-email", rateLimit(auth.VerifyEmail))
	mux.HandleFunc("POST /api/auth/resend-verification", rateLimit(auth.ResendVerification))
	mux.HandleFunc("POST /api/auth/forgot-password", rateLimit(auth.ForgotPassword))
	mux.HandleFunc("POST /api/auth/reset-password", rateLimit(auth.ResetPassword))
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(auth.Me))

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	// Classification
	mux.HandleFunc("POST /api/classify", middleware.RequireAuth(classification.Classify))
	mux.HandleFunc("GET /api/history", middleware.RequireAuth(classification.History))

	// Prompts
	mux.HandleFunc("GET /api/prompts", middleware.RequireAuth(prompt.List))
	mux.HandleFunc("POST /api/prompts", middleware.RequireAuth(prompt.Create))
	mux.HandleFunc("PUT /api/prompts/{id}", middleware.RequireAuth(prompt.Update))
	mux.HandleFunc("DELETE /api/prompts/{id}", middleware.RequireAuth(prompt.Delete))

	// ============================================================================
	// ADMIN
	// ============================================================================

	mux.HandleFunc("GET /api/admin/all-history", middleware.RequireAdmin(classification.AllHistory))
	mux.HandleFunc("GET /api/prompts/admin/all-prompts", middleware.RequireAdmin(prompt.AllPrompts))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "Not found")
	})

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Recover,
		middleware.RequestLogging,
		middleware.CORS(app.Cfg.CORSAllowedOrigins), // Must run before auth so preflights pass unauthenticated
		middleware.MaxBodyBytes(app.Cfg.MaxBodyBytes),
		middleware.AuthMiddleware(app.AuthService),
	)

	return handler
}
