package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"votetopics/pkg/app"
	"votetopics/pkg/config"
	"votetopics/pkg/logging"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config (defaults to $VOTETOPICS_CONFIG)")
		dryRun     = flag.Bool("dry-run", false, "Use an in-memory store; nothing is written or published")
		logFormat  = flag.String("log-format", "", "Override log format (json or console)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if *dryRun {
		cfg.Store.Driver = config.DriverMemory
		cfg.Events.KafkaBrokers = nil
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize")
	}

	start := time.Now()
	res, err := a.Pipeline.Run(ctx)
	if cerr := a.Close(context.Background()); cerr != nil {
		logger.Error().Err(cerr).Msg("closing connections")
	}
	if err != nil {
		logger.Error().Err(err).Msg("run failed")
		stop()
		os.Exit(1)
	}
	fmt.Printf("%s (sources=%d failed=%d items=%d rejected=%d duplicates=%d swept=%d) in %s\n",
		res.Message, res.Stats.Sources, res.Stats.SourceFailures, res.Stats.Items,
		res.Stats.Rejected, res.Stats.Duplicates, res.Stats.Swept, time.Since(start).Round(time.Millisecond))
}
