package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/efreitasn/shareledger/internal/config"
	"github.com/efreitasn/shareledger/internal/engine"
	"github.com/efreitasn/shareledger/internal/handler"
	"github.com/efreitasn/shareledger/internal/service"
	"github.com/efreitasn/shareledger/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Instantiate stores.
	companyStore := store.NewCompanyStore()
	subscriptionStore := store.NewSubscriptionStore()

	// Durable archive (optional): open and rebuild in-memory state from it.
	var archive *store.Archive
	eventLog := engine.NewEventLog()
	if cfg.DBPath != "" {
		archive, err = store.OpenArchive(cfg.DBPath)
		if err != nil {
			logger.Error("failed to open archive", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer archive.Close()

		companies, err := archive.Companies()
		if err != nil {
			logger.Error("failed to load companies", slog.String("error", err.Error()))
			os.Exit(1)
		}
		for _, c := range companies {
			if err := companyStore.Create(c); err != nil {
				logger.Error("failed to restore company", slog.String("error", err.Error()))
				os.Exit(1)
			}
		}

		events, err := archive.Events()
		if err != nil {
			logger.Error("failed to load events", slog.String("error", err.Error()))
			os.Exit(1)
		}
		for _, rec := range events {
			if err := eventLog.Restore(rec); err != nil {
				logger.Error("failed to restore event", slog.String("error", err.Error()))
				os.Exit(1)
			}
		}

		logger.Info("archive loaded",
			slog.String("path", cfg.DBPath),
			slog.Int("companies", len(companies)),
			slog.Int("events", len(events)),
		)
	}

	// Services.
	notifySvc := service.NewNotifyService(subscriptionStore, companyStore, cfg.WebhookTimeout)
	companySvc := service.NewCompanyService(companyStore, archive)
	cache := service.NewSnapshotCache(cfg.SweepInterval, eventLog.Version)
	ledgerSvc := service.NewLedgerService(eventLog, companyStore, archive, cache, notifySvc)

	// Router.
	router := handler.NewRouter(companySvc, ledgerSvc, notifySvc, logger)

	// Start cache sweeper with cancellable context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache.Start(ctx)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, cancel context (stops sweeper goroutine).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	logger.Info("server stopped")
}
