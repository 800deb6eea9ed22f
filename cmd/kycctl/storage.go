package main

import (
	"context"
	"errors"
	"fmt"

	"medstaff-dashboard/internal/config"
	"medstaff-dashboard/internal/domain/ports/repository"
	pg "medstaff-dashboard/internal/infra/db/postgres"
	"medstaff-dashboard/internal/infra/persistence"
	red "medstaff-dashboard/internal/infra/redis"
	"medstaff-dashboard/internal/infra/security"
)

// openSnapshots connects to the configured snapshot backend. The returned func
// releases the connection.
func openSnapshots(ctx context.Context) (*persistence.SnapshotStore, func(), error) {
	var (
		kv      repository.KeyValueStore
		cleanup func()
	)
	switch cfg.Storage.Driver {
	case config.StorageRedis:
		client, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		kv, cleanup = red.NewKVStore(client), func() { _ = client.Close() }
	case config.StoragePostgres:
		pool, err := pg.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		kv, cleanup = pg.NewKVStore(pool), pool.Close
	default:
		return nil, nil, errors.New("storage.driver=memory lives inside the service process; nothing to inspect")
	}

	var opts []persistence.Option
	enc, err := security.NewOptional(cfg.Security.EncryptionKey)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("encryption: %w", err)
	}
	if enc != nil {
		opts = append(opts, persistence.WithEncrypter(enc))
	}
	return persistence.NewSnapshotStore(kv, logger, opts...), cleanup, nil
}
