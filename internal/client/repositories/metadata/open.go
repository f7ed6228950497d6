package metadata

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophtodo/internal/client/config"
)

// Open builds the repository selected by cfg.Driver. The returned close
// function releases the underlying connection and is never nil.
func Open(ctx context.Context, cfg config.Storage) (Repository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemoryRepository(), noop, nil

	case config.DriverSQLite:
		db, err := OpenSQLite(ctx, cfg.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite: %w", err)
		}
		return NewSQLRepository(db, SQLite), db.Close, nil

	case config.DriverPostgres:
		db, err := OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, noop, err
		}
		return NewSQLRepository(db, Postgres), db.Close, nil

	case config.DriverRedis:
		rdb, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return NewRedisRepository(rdb, cfg.RedisNamespace), rdb.Close, nil

	case config.DriverS3:
		cli, err := NewS3Client(ctx, S3Options{
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
		if err != nil {
			return nil, noop, err
		}
		return NewS3Repository(cli, cfg.S3.Bucket, cfg.S3.Prefix), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
