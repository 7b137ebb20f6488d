package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rahaft/bcasco-site/internal/app"
	"github.com/rahaft/bcasco-site/internal/platform/config"
	"github.com/rahaft/bcasco-site/internal/platform/logger"
	"github.com/rahaft/bcasco-site/internal/platform/metrics"
	"github.com/rahaft/bcasco-site/internal/router"
)

// @title BCASCO Site API
// @version 1.0
// @description Edición inline de contenido, editor de eventos, formularios y relay hacia Sheets/email.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{}).Error("config_error", map[string]any{"error": err})
		os.Exit(1)
	}
	log := app.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Error("storage_error", map[string]any{"error": err})
		os.Exit(1)
	}
	defer func() { _ = closeStore() }()

	verifier, err := app.NewVerifier(cfg)
	if err != nil {
		log.Error("auth_error", map[string]any{"error": err})
		os.Exit(1)
	}
	if verifier == nil {
		log.Warn("auth_dev_mode", map[string]any{"note": "X-Debug-User-* headers are trusted"})
	}

	svc := app.New(app.Options{
		Config:      cfg,
		Log:         log,
		Metrics:     metrics.New(),
		Store:       store,
		EmailSender: app.NewEmailSender(cfg, log),
	})

	stopWorker := svc.Relay.StartWorker(ctx, cfg.RelayInterval)
	defer stopWorker()
	stopReaper := svc.Workspaces.StartReaper(ctx, time.Minute)
	defer stopReaper()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.NewRouter(router.Options{AuthVerifier: verifier, Services: svc}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("starting server", map[string]any{"addr": cfg.Addr()})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server_error", map[string]any{"error": err})
		os.Exit(1)
	}
	log.Info("server stopped", nil)
}
