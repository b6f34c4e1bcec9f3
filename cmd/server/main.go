package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"sigcheck/internal/api"
	"sigcheck/internal/api/handlers"
	"sigcheck/internal/api/middleware"
	"sigcheck/internal/engine/signature"
	"sigcheck/internal/pkg/logger"
	"sigcheck/internal/platform/auth"
	"sigcheck/internal/platform/config"
)

func main() {
	configPath := flag.String("config", os.Getenv("SIGCHECK_CONFIG"), "Path to config.yaml (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging)

	if cfg.Webhooks.Secret == "" {
		log.Warn().Msg("webhooks.secret is empty; webhook validation will answer missing_secret")
	}
	if cfg.Webhooks.ExposeDebug {
		log.Warn().Msg("webhooks.expose_debug is on; expected signatures are returned on mismatch")
	}

	// Services
	webhookSvc := signature.NewService(cfg.Webhooks.Secret)
	verifySvc := signature.NewService(cfg.Webhooks.VerifySecretOrDefault())
	tokenSvc := auth.NewTokenService(cfg.Auth)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	// Router
	deps := &api.Dependencies{
		SignatureHandler: handlers.NewSignatureHandler(cfg.Webhooks, cfg.Server.MaxBodyBytes, webhookSvc, verifySvc),
		HealthHandler:    handlers.NewHealthHandler(webhookSvc, verifySvc),
		MetricsHandler:   handlers.NewMetricsHandler(),
		AuthMiddleware:   middleware.NewAuthMiddleware(tokenSvc, auth.ScopeGenerate),
		MetricsPath:      metricsPath,
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Bool("auth", tokenSvc.Enabled()).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
