// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/brijesht/folio/internal/api"
	"github.com/brijesht/folio/internal/auth"
	"github.com/brijesht/folio/internal/content"
	"github.com/brijesht/folio/internal/mcpserver"
	"github.com/brijesht/folio/internal/media"
	"github.com/brijesht/folio/internal/notify"
	"github.com/brijesht/folio/internal/sse"
	"github.com/brijesht/folio/internal/store"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("media_enabled", cfg.Media.Enabled()),
		slog.Bool("smtp_enabled", cfg.SMTP.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize content store.
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	// SSE broker.
	broker := sse.NewBroker()

	// Content service with live events and, when configured, mail
	// notifications for new contact messages.
	svc := content.NewService(db, broker)
	if cfg.SMTP.Enabled() {
		svc.SetNotifier(notify.NewMailer(
			cfg.SMTP.Host,
			strconv.Itoa(cfg.SMTP.Port),
			cfg.SMTP.Username,
			cfg.SMTP.Password,
			cfg.SMTP.To,
		))
	}

	// Two-stage authenticator and session issuer.
	chain := &auth.Chain{
		Static: &auth.Static{
			Email:        cfg.Auth.AdminEmail,
			Password:     cfg.Auth.AdminPassword,
			PasswordHash: cfg.Auth.AdminPasswordHash,
			DisplayName:  cfg.Auth.AdminDisplayName,
		},
	}
	if cfg.Auth.DelegateURL != "" {
		chain.Delegate = auth.NewRemote(cfg.Auth.DelegateURL)
	}
	sessions := auth.NewSessions(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	var uploader *media.Uploader
	if cfg.Media.Enabled() {
		uploader = media.New(cfg.Media.Endpoint, cfg.Media.UploadPreset, cfg.Media.MaxUploadBytes)
	}

	apiRouter := api.NewRouter(svc, chain, sessions, uploader, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		broker.Close()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP server on stdin/stdout. Logs go to stderr so
// the stdio transport stays clean. There are no live subscribers in
// this mode; the HTTP surface is not started.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	svc := content.NewService(db, nil)

	var uploader *media.Uploader
	if cfg.Media.Enabled() {
		uploader = media.New(cfg.Media.Endpoint, cfg.Media.UploadPreset, cfg.Media.MaxUploadBytes)
	}

	logger.Info("Starting MCP server on stdio", slog.String("sqlite_path", cfg.SQLite.Path))
	return mcpserver.New(svc, uploader).ServeStdio()
}
