// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Orvia HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (.env honored in dev).
//  3. Open the durable document store.
//  4. Load the price catalog.
//  5. Select the mail transport.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/taibuivan/orvia/internal/api"
	"github.com/taibuivan/orvia/internal/commerce/catalog"
	"github.com/taibuivan/orvia/internal/commerce/order"
	"github.com/taibuivan/orvia/internal/platform/config"
	"github.com/taibuivan/orvia/internal/platform/constants"
	"github.com/taibuivan/orvia/internal/platform/mail"
	"github.com/taibuivan/orvia/internal/platform/store"
	"github.com/taibuivan/orvia/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "orvia"))
	slog.SetDefault(log)

	log.Info("[Orvia] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "orvia"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Int("admin_emails", len(cfg.AdminEmails)),
	)

	// ── 3. Durable Store ──────────────────────────────────────────────────
	fileStore, err := store.Open(cfg.StorePath, log)
	must(log, err, "open document store")

	// ── 4. Price Catalog ──────────────────────────────────────────────────
	priceCatalog, err := catalog.Load(cfg.CatalogPath)
	must(log, err, "load price catalog")
	log.Info("catalog_loaded", slog.Int("services", priceCatalog.Len()))

	// ── 5. Mail Transport ─────────────────────────────────────────────────
	var mailer mail.Sender
	switch cfg.MailDriver {
	case "smtp":
		mailer = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, log)
		log.Info("mail_transport_selected", slog.String("driver", "smtp"), slog.String("host", cfg.SMTPHost))
	default:
		mailer = &mail.LogSender{Logger: log}
		log.Warn("mail_transport_selected", slog.String("driver", "log"))
	}

	// ── 6. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckStore: func() error {
			// The document directory must stay writable for persists to land.
			_, err := os.Stat(filepath.Dir(fileStore.Path()))
			return err
		},
		CheckCatalog: func() error {
			if priceCatalog.Len() == 0 {
				return errors.New("catalog is empty")
			}
			return nil
		},
	}, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	userRepository := store.NewUserStore(fileStore)
	challengeRepository := store.NewChallengeStore(fileStore)
	sessionRepository := store.NewSessionStore(fileStore)
	orderRepository := store.NewOrderStore(fileStore)

	authService := auth.NewService(userRepository, challengeRepository, sessionRepository, mailer, auth.Config{
		SessionSecret:  cfg.SessionSecret,
		OTPTTL:         cfg.OTPTTL,
		OTPMaxAttempts: cfg.OTPMaxAttempts,
		ResendCooldown: cfg.OTPResendCooldown,
		SessionTTL:     cfg.SessionTTL,
		IsAdmin:        cfg.IsAdmin,
	})
	authHandler := auth.NewHandler(authService)

	orderService := order.NewService(orderRepository)
	orderHandler := order.NewHandler(orderService)

	catalogHandler := catalog.NewHandler(priceCatalog)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Order:     orderHandler,
		Catalog:   catalogHandler,
	}

	server := api.NewServer(serverCtx, cfg, log, authService, fileStore, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
