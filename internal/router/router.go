package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"usecase-backend/internal/handlers"
	"usecase-backend/internal/middleware"
)

func New(
	useCaseHandler *handlers.UseCaseHandler,
	limiter *middleware.RateLimiter,
	frontendURL string,
	logger *zap.SugaredLogger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ──── Use Case Diagram Routes ────
	r.With(limiter.Middleware).Post("/usecase", useCaseHandler.Generate)
	r.Get("/usecase/models", useCaseHandler.Models)

	return r
}
