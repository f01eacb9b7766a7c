// Package app assembles the configured store, cache, publisher and pipeline
// shared by the server and the one-shot tool.
package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"votetopics/pkg/cache"
	"votetopics/pkg/config"
	"votetopics/pkg/db"
	"votetopics/pkg/events"
	"votetopics/pkg/logging"
	"votetopics/pkg/pipeline"
)

// App owns the long-lived connections of a process.
type App struct {
	Store    db.Store
	Pipeline *pipeline.Pipeline

	cache     *cache.ArticleCache
	publisher *events.Publisher
	log       zerolog.Logger
}

// Build opens the store and the optional Redis cache and Kafka publisher.
// An unreachable cache is logged and skipped; store failures are returned.
func Build(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{log: logging.Component(logger, "app")}

	store, err := db.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.log.Info().Str("driver", cfg.Store.Driver).Msg("topic store ready")

	deps := pipeline.Dependencies{Store: store, Logger: logger}

	if cfg.Cache.RedisAddr != "" {
		c, err := cache.NewArticleCache(ctx, cache.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			TTL:      cfg.Cache.TTL,
		})
		if err != nil {
			a.log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("article cache disabled")
		} else {
			a.cache = c
			deps.Cache = c
		}
	}

	if len(cfg.Events.KafkaBrokers) > 0 {
		a.publisher = events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.Topic)
		deps.Publisher = a.publisher
		a.log.Info().Strs("brokers", cfg.Events.KafkaBrokers).Str("topic", cfg.Events.Topic).Msg("topic events enabled")
	}

	a.Pipeline = pipeline.FromConfig(cfg, deps)
	return a, nil
}

// Close releases every connection Build opened.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close(ctx))
	}
	return errors.Join(errs...)
}
