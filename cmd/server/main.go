package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"usecase-backend/internal/config"
	"usecase-backend/internal/handlers"
	"usecase-backend/internal/logging"
	"usecase-backend/internal/middleware"
	"usecase-backend/internal/router"
	"usecase-backend/internal/services"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("✗ Configuration error: %v", err)
	}

	// ──── Step 2: Initialize Logger ────
	logger, err := logging.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("✗ Logger initialization failed: %v", err)
	}
	defer logger.Sync()
	logger.Infow("Starting use case diagram backend", "env", cfg.Env, "render_mode", cfg.RenderMode)

	// ──── Step 3: Initialize OpenAI Backends ────
	if cfg.OpenAI.APIKey == "" {
		logger.Warnw("OPENAI_API_KEY is not set; requests must supply api_key")
	}
	client := services.NewOpenAIClient(cfg.OpenAI)
	dispatcher, err := services.NewDispatcher(services.NewOpenAIBackends(client, cfg.OpenAI, logger), logger)
	if err != nil {
		logger.Fatalw("✗ Dispatcher initialization failed", "error", err)
	}
	logger.Infow("✓ OpenAI backends initialized",
		"o1", cfg.OpenAI.O1Model, "o3", cfg.OpenAI.O3Model, "o4", cfg.OpenAI.O4Model)

	// ──── Step 4: Initialize Services ────
	var renderer services.Renderer
	if cfg.RenderMode == config.RenderModeRendered {
		renderer = services.NewKrokiRenderer(cfg.KrokiURL, cfg.RenderTimeout, logger)
		logger.Infow("✓ Kroki renderer initialized", "url", cfg.KrokiURL, "timeout", cfg.RenderTimeout.String())
	}
	validator := services.NewValidator(cfg.MaxDescriptionLength)
	diagramService := services.NewDiagramService(validator, dispatcher, renderer, renderer != nil, logger)

	// ──── Step 5: Initialize Handlers ────
	useCaseHandler := handlers.NewUseCaseHandler(diagramService, dispatcher, handlers.BodyLimit(cfg.MaxDescriptionLength), logger)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer limiter.Stop()

	// ──── Step 6: Start HTTP Server ────
	r := router.New(useCaseHandler, limiter, cfg.FrontendURL, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.OpenAI.Timeout + cfg.RenderTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Infow("✓ Backend ready", "addr", fmt.Sprintf("http://localhost:%s", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("Server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Infow("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorw("Graceful shutdown failed", "error", err)
		server.Close()
	}
	logger.Infow("Server stopped")
}
