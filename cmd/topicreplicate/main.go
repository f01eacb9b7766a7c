package main

import (
	"context"
	"flag"
	"time"

	"votetopics/pkg/config"
	"votetopics/pkg/db"
	"votetopics/pkg/logging"
	"votetopics/pkg/replication"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config (defaults to $VOTETOPICS_CONFIG)")
		from       = flag.String("from", config.DriverMongo, "Source store driver (supabase, postgres, mongo)")
		to         = flag.String("to", config.DriverSupabase, "Target store driver (supabase, postgres, mongo)")
		batchSize  = flag.Int("batch", 100, "Topics per insert batch")
		workers    = flag.Int("workers", 5, "Number of parallel batch workers")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()

	source, err := openStore(ctx, cfg, *from)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", *from).Msg("failed to open source store")
	}
	defer source.Close(ctx)

	target, err := openStore(ctx, cfg, *to)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", *to).Msg("failed to open target store")
	}
	defer target.Close(ctx)

	r, err := replication.NewReplicator(replication.Config{
		Source:    source,
		Target:    target,
		BatchSize: *batchSize,
		Workers:   *workers,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create replicator")
	}

	start := time.Now()
	logger.Info().Str("from", *from).Str("to", *to).Msg("replicating topics")
	stats, err := r.Replicate(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("replication failed")
	}
	logger.Info().Int("inserted", stats.Inserted).Int("skipped", stats.Skipped).Dur("took", time.Since(start)).Msg("done")
}

func openStore(ctx context.Context, cfg config.Config, driver string) (db.Store, error) {
	storeCfg := cfg.Store
	storeCfg.Driver = driver
	check := cfg
	check.Store = storeCfg
	if err := check.Validate(); err != nil {
		return nil, err
	}
	return db.Open(ctx, storeCfg)
}
