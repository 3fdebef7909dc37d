package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	server "app_reviews/internal/adapters/http_server"
	"app_reviews/internal/adapters/observability"
	"app_reviews/internal/app"
	"app_reviews/internal/shared"
)

func main() {
	_ = godotenv.Load() // optional .env

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// deps
	repo, closeStore, err := cfg.OpenStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store failed")
	}
	defer closeStore()
	cache, closeCache, err := cfg.OpenCache(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.CacheDriver).Msg("open cache failed")
	}
	defer closeCache()

	q := app.NewQueryService(repo, cache, cfg.CacheTTL)
	runner := app.NewAnalysisService(cfg.Source(), repo, cache, cfg.Policy(), cfg.CacheTTL).
		WithObserver(observability.PipelineObserver{})

	if cfg.RunOnStart {
		if rep, err := runner.Run(ctx); err != nil {
			log.Error().Err(err).Msg("startup run failed")
		} else {
			log.Info().Str("report", rep.ID).Msg("startup run stored")
		}
	}

	// http
	srv := server.New(server.Options{RateLimitRPS: cfg.RateLimitRPS})
	if cfg.MetricsAddr == "" {
		srv.Mount("/metrics", observability.MetricsHandler(reg))
	}
	srv.MountHandlers(&server.Handlers{Q: q, Runner: runner})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Str("cache", cfg.CacheDriver).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
