// SwiftBank Assist - conversational banking assistant server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/swiftbank/assist/internal/agent"
	"github.com/swiftbank/assist/internal/api"
	"github.com/swiftbank/assist/internal/bank"
	"github.com/swiftbank/assist/internal/chatws"
	"github.com/swiftbank/assist/internal/config"
	"github.com/swiftbank/assist/internal/identity"
	"github.com/swiftbank/assist/internal/metrics"
	"github.com/swiftbank/assist/internal/middleware"
	"github.com/swiftbank/assist/internal/store"
	"github.com/swiftbank/assist/internal/transcript"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	st := store.NewMemory(cfg.OTPTTL)

	gateway := bank.NewClient(cfg.BankAPIURL, cfg.BankAPITimeout)
	defer func() {
		if closeErr := gateway.Close(); closeErr != nil {
			slog.Error("Failed to close banking gateway", "error", closeErr)
		}
	}()
	slog.Info("Banking gateway initialized", "url", cfg.BankAPIURL)

	transcripts, err := transcript.New(transcript.Config{
		Enabled:   cfg.TranscriptLog.Enabled,
		Dir:       cfg.TranscriptLog.Dir,
		QueueSize: cfg.TranscriptLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize transcript logger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := transcripts.Close(); closeErr != nil {
			slog.Error("Failed to close transcript logger", "error", closeErr)
		}
	}()

	orchestrator := agent.New(st, gateway)

	limiter := api.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	// Initialize handlers.
	apiHandler := api.NewHandler(st, orchestrator, limiter, transcripts)
	wsHandler := chatws.NewHandler(orchestrator, transcripts, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	// Allow only the configured front end in production; credentials are
	// only granted to explicit origins.
	allowedOrigins := []string{"*"}
	if cfg.FrontendURL != "" {
		allowedOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(allowedOrigins))

	// Public routes.
	r.Handle("/metrics", metrics.Handler())

	// Authenticated routes.
	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(gateway))
		apiHandler.RegisterRoutes(r)
		r.Get("/ws/chat", wsHandler.ServeHTTP)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // 0 = no timeout; websocket chat connections are long-lived
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start OTP sweeper.
	store.StartOTPSweeper(ctx, st, cfg.OTPSweepInterval)
	slog.Info("OTP sweeper started", "interval", cfg.OTPSweepInterval, "ttl", cfg.OTPTTL)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
