package db

import (
	"context"
	"fmt"

	"votetopics/pkg/config"
)

// Open connects the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverSupabase:
		client := NewSupabaseClient(SupabaseConfig{
			SupabaseURL: cfg.SupabaseURL,
			SupabaseKey: cfg.SupabaseKey,
			Table:       cfg.Table,
		})
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		return client, nil

	case config.DriverPostgres:
		return OpenPostgresStore(ctx, PostgresConfig{
			DSN:          cfg.DSN,
			Table:        cfg.Table,
			MaxOpenConns: cfg.MaxOpenConns,
		})

	case config.DriverMongo:
		client, err := NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.Table)
		if err != nil {
			return nil, err
		}
		if err := client.Connect(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		return client, nil

	case config.DriverMemory:
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
