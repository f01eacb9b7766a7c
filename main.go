package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"votetopics/pkg/api"
	"votetopics/pkg/app"
	"votetopics/pkg/config"
	"votetopics/pkg/logging"
	"votetopics/pkg/scheduler"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (defaults to $VOTETOPICS_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	if cfg.Server.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize")
	}

	if cfg.Schedule.Cron != "" {
		sched, err := scheduler.New(cfg.Schedule.Cron, a.Pipeline, cfg.Pipeline.RunBudget+time.Minute, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create scheduler")
		}
		sched.Start()
		defer sched.Stop()
	}

	router := api.NewRouter(a.Pipeline, a.Store, api.Options{
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		Logger:         logger,
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
	if err := a.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("closing connections")
	}
}
