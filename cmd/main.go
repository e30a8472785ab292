// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/okcommons/community-calendar/internal/auth"
	"github.com/okcommons/community-calendar/internal/config"
	"github.com/okcommons/community-calendar/internal/database"
	"github.com/okcommons/community-calendar/internal/handler"
	"github.com/okcommons/community-calendar/internal/repository"
	"github.com/okcommons/community-calendar/internal/service"
)

func main() {
	ctx := context.Background()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("database")
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		logrus.WithError(err).Fatal("schema")
	}
	logrus.Info("connected to PostgreSQL")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	eventRepo := repository.NewEventRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	authMw := auth.NewMiddleware(tokens, userRepo)

	eventSvc := service.NewEventService(eventRepo)
	accountSvc := service.NewAccountService(userRepo, tokens)

	eventHandler := handler.NewEventHandler(eventSvc)
	accountHandler := handler.NewAccountHandler(accountSvc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // structured access log
	r.Use(handler.CORS(cfg.CORSOrigin))

	// Health
	r.Get("/health", handler.HealthCheck)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", accountHandler.Register)
			r.Post("/login", accountHandler.Login)
		})

		r.Route("/events", func(r chi.Router) {
			// Read paths resolve the credential when present but never
			// reject; write paths demand one.
			r.With(authMw.Optional).Get("/", eventHandler.ListEvents)
			r.With(authMw.Optional).Get("/{id}", eventHandler.GetEvent)

			r.Group(func(r chi.Router) {
				r.Use(authMw.Require)
				r.Post("/", eventHandler.CreateEvent)
				r.Put("/{id}", eventHandler.UpdateEvent)
				r.Delete("/{id}", eventHandler.DeleteEvent)
				r.Post("/{id}/rsvp", eventHandler.SetRSVP)
				r.Post("/{id}/favorite", eventHandler.SetFavorite)
			})
		})
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		logrus.WithField("addr", cfg.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Fatal("graceful shutdown failed")
	}
	logrus.Info("server stopped")
}
