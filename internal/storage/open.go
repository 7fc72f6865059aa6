package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/config"
)

// Open returns the backend named by cfg.Store and a func that releases it.
// The postgres backend shares pool and never closes it.
func Open(ctx context.Context, cfg config.CartConfig, pool *pgxpool.Pool) (KV, func(), error) {
	noop := func() {}
	switch cfg.Store {
	case config.StoreMemory:
		return NewMemory(), noop, nil
	case config.StoreFile:
		f, err := NewFile(cfg.FileDir)
		if err != nil {
			return nil, nil, err
		}
		return f, noop, nil
	case config.StoreRedis:
		r, err := NewRedis(ctx, redisOptions(cfg))
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	case config.StorePostgres:
		if pool == nil {
			return nil, nil, errors.New("postgres cart store requires a database pool")
		}
		return NewPostgres(pool), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown cart store %q", cfg.Store)
	}
}

func redisOptions(cfg config.CartConfig) RedisOptions {
	return RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   cfg.RedisPrefix,
	}
}
