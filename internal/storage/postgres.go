package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresKV struct {
	pool *pgxpool.Pool
}

// NewPostgres stores values in the kv_store table created by the migrations.
func NewPostgres(pool *pgxpool.Pool) KV {
	return &postgresKV{pool: pool}
}

func (r *postgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `
SELECT value
FROM kv_store
WHERE key = $1
`
	var value []byte
	if err := r.pool.QueryRow(ctx, q, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (r *postgresKV) Set(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO kv_store (key, value)
VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET
    value = EXCLUDED.value,
    updated_at = now()
`
	_, err := r.pool.Exec(ctx, q, key, value)
	return err
}

func (r *postgresKV) Delete(ctx context.Context, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key)
	return err
}

func (r *postgresKV) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
